// Package tui provides a Bubble Tea terminal UI for the save editor:
// a scrollback viewport over the command output, a status bar, and an
// input line with history. It runs the same commands as the plain CLI.
package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"empiresedit/edit"
	"empiresedit/reconcile"
	"empiresedit/session"
	"empiresedit/types"
)

// styledLine is one line of accumulated output with its classification,
// kept unstyled so the viewport can be re-rendered on resize.
type styledLine struct {
	text string
	kind lineKind
}

// Model is the Bubble Tea model for the editor TUI.
type Model struct {
	session  *session.Session
	patchDir string
	assets   reconcile.AssetDirs

	viewport viewport.Model
	input    textinput.Model
	history  *history

	rawLines []styledLine

	width    int
	height   int
	ready    bool
	loading  bool
	quitting bool
}

// outputMsg carries command output into the Update loop.
type outputMsg struct {
	input string // echoed command (empty for none)
	lines []styledLine
}

// loadDoneMsg delivers the result of a background file load.
type loadDoneMsg struct {
	res session.LoadResult
}

// New creates a TUI model wired to the given session.
func New(s *session.Session, patchDir string, assets reconcile.AssetDirs) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Focus()
	ti.CharLimit = 256
	ti.PromptStyle = styleInputPrompt

	return Model{
		session:  s,
		patchDir: patchDir,
		assets:   assets,
		input:    ti,
		history:  newHistory(100),
	}
}

// Run starts the Bubble Tea program.
func Run(s *session.Session, patchDir string, assets reconcile.AssetDirs) error {
	m := New(s, patchDir, assets)
	p := tea.NewProgram(m, tea.WithAltScreen())
	_, err := p.Run()
	return err
}

// Init shows the greeting.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, func() tea.Msg {
		return outputMsg{lines: []styledLine{
			{text: "Social Empires/Wars save file editor.", kind: kindHeader},
			{text: "Type help for available commands.", kind: kindSystem},
		}}
	})
}

// Update handles messages (key presses, window resize, command output).
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		vpHeight := m.height - 2 // 1 status bar + 1 input line
		if vpHeight < 1 {
			vpHeight = 1
		}

		if !m.ready {
			m.viewport = viewport.New(m.width, vpHeight)
			m.viewport.KeyMap = viewportKeyMap()
			m.ready = true
		} else {
			m.viewport.Width = m.width
			m.viewport.Height = vpHeight
		}

		m.refreshViewport()

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			m.quitting = true
			return m, tea.Quit

		case "enter":
			return m.handleEnter()

		case "up":
			if prev, ok := m.history.prev(); ok {
				m.input.SetValue(prev)
				m.input.CursorEnd()
			}
			return m, nil

		case "down":
			if next, ok := m.history.next(); ok {
				m.input.SetValue(next)
				m.input.CursorEnd()
			} else {
				m.input.SetValue("")
			}
			return m, nil

		case "pgup", "pgdown":
			var vpCmd tea.Cmd
			m.viewport, vpCmd = m.viewport.Update(msg)
			return m, vpCmd
		}

	case outputMsg:
		m = m.appendOutput(msg)

	case loadDoneMsg:
		m.loading = false
		m = m.appendOutput(outputMsg{lines: m.installResult(msg.res)})
	}

	var inputCmd tea.Cmd
	m.input, inputCmd = m.input.Update(msg)
	cmds = append(cmds, inputCmd)

	return m, tea.Batch(cmds...)
}

// handleEnter processes the submitted command line.
func (m Model) handleEnter() (tea.Model, tea.Cmd) {
	input := strings.TrimSpace(m.input.Value())
	m.input.SetValue("")

	if input == "" {
		return m, nil
	}
	m.history.push(input)

	parts := strings.Fields(input)
	cmd := strings.ToLower(parts[0])
	args := parts[1:]

	if cmd == "quit" || cmd == "exit" {
		m.quitting = true
		return m, tea.Quit
	}

	// open runs in the background: echo the command now, install the
	// result when it arrives. An open issued while one is pending
	// abandons the earlier result.
	if cmd == "open" {
		if len(args) == 0 {
			m = m.appendOutput(outputMsg{input: input, lines: errLines("open requires a file path.")})
			return m, nil
		}
		m.loading = true
		m = m.appendOutput(outputMsg{input: input, lines: sysLines("Loading " + args[0] + "…")})
		ch := session.LoadAsync(args[0], m.patchDir, true)
		return m, func() tea.Msg {
			return loadDoneMsg{res: <-ch}
		}
	}

	m = m.appendOutput(outputMsg{input: input, lines: m.runCommand(cmd, args)})
	return m, nil
}

// installResult adopts a finished load into the session.
func (m *Model) installResult(res session.LoadResult) []styledLine {
	var lines []styledLine
	for _, skip := range res.Skipped {
		lines = append(lines, styledLine{text: fmt.Sprintf("skipped: %v", skip), kind: kindSystem})
	}
	if err := m.session.Install(res); err != nil {
		return append(lines, styledLine{text: fmt.Sprintf("Load failed: %v", err), kind: kindError})
	}
	if res.Catalog != nil {
		return append(lines, styledLine{
			text: fmt.Sprintf("Loaded config: %d definitions.", res.Catalog.Len()), kind: kindSystem})
	}
	return append(lines, styledLine{
		text: fmt.Sprintf("Loaded save: %d town(s).", len(res.Save.Maps)), kind: kindSystem})
}

// runCommand executes a synchronous editor command and returns its
// output lines.
func (m *Model) runCommand(cmd string, args []string) []styledLine {
	switch cmd {
	case "save":
		return m.cmdSave(args)
	case "towns":
		return m.cmdTowns()
	case "town":
		return m.cmdTown(args)
	case "list":
		return m.cmdList()
	case "items":
		return m.cmdItems()
	case "find":
		return m.cmdFind(args)
	case "missing":
		return m.cmdMissing()
	case "add":
		return m.cmdAdd(args)
	case "del", "delete":
		return m.cmdDelete(args)
	case "res":
		return m.cmdRes(args)
	case "info":
		return m.cmdInfo()
	case "help":
		return m.cmdHelp()
	default:
		return errLines(fmt.Sprintf("Unknown command: %s. Type help for available commands.", cmd))
	}
}

func (m *Model) cmdSave(args []string) []styledLine {
	if m.session.Mode != session.ModeSave {
		return errLines("Only available in save mode.")
	}
	var path string
	if len(args) > 0 {
		path = args[0]
	}
	if err := m.session.WriteSave(path); err != nil {
		return errLines(fmt.Sprintf("Save failed: %v", err))
	}
	return sysLines("Saved file: " + m.session.SavePath)
}

func (m *Model) cmdTowns() []styledLine {
	names := m.session.TownNames()
	if len(names) == 0 {
		return errLines("No save file loaded.")
	}
	active := m.session.TownIndex()
	lines := make([]styledLine, 0, len(names))
	for i, name := range names {
		marker := " "
		if i == active {
			marker = "*"
		}
		lines = append(lines, styledLine{text: fmt.Sprintf("%s %d. %s", marker, i, name)})
	}
	return lines
}

func (m *Model) cmdTown(args []string) []styledLine {
	if len(args) == 0 {
		return errLines("town requires an index.")
	}
	index, err := strconv.Atoi(args[0])
	if err != nil {
		return errLines("town requires a numeric index.")
	}
	names := m.session.TownNames()
	if len(names) == 0 {
		return errLines("No save file loaded.")
	}
	effective := m.session.SwitchTown(index)
	return sysLines(fmt.Sprintf("Active town: %d. %s", effective, names[effective]))
}

func (m *Model) cmdList() []styledLine {
	town, err := m.session.Town()
	if err != nil {
		return errLines(err.Error())
	}
	if len(town.Items) == 0 {
		return sysLines("No items in this town.")
	}
	lines := []styledLine{{
		text: fmt.Sprintf("%4s  %6s  %-24s %s", "row", "id", "name", "position"),
		kind: kindHeader,
	}}
	for i, inst := range town.Items {
		d := m.session.Display(inst)
		line := styledLine{
			text: fmt.Sprintf("%4d  %6d  %-24s (%d, %d)", i, inst.ID, d.Name, inst.X, inst.Y),
		}
		if !d.Known {
			line.kind = kindMissing
		}
		lines = append(lines, line)
	}
	return lines
}

func (m *Model) cmdItems() []styledLine {
	if m.session.Catalog == nil {
		return errLines("No config loaded.")
	}
	defs := m.session.Catalog.All()
	lines := make([]styledLine, 0, len(defs))
	for _, def := range defs {
		name := def.Name
		if name == "" {
			name = "Unnamed"
		}
		text := fmt.Sprintf("%6d  %-24s", def.ID, name)
		if _, ok := m.assets.Resolve(def.ImgName); ok {
			text += " " + def.ImgName
		}
		lines = append(lines, styledLine{text: text})
	}
	return lines
}

func (m *Model) cmdFind(args []string) []styledLine {
	if len(args) == 0 {
		return errLines("find requires a numeric id.")
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return errLines("Enter a valid numeric ID.")
	}
	rows, err := m.session.Find(id)
	if err != nil {
		return errLines(err.Error())
	}
	if len(rows) == 0 {
		return sysLines("No matching items found.")
	}
	return sysLines(fmt.Sprintf("Found %d matching item(s) at rows %v.", len(rows), rows))
}

func (m *Model) cmdMissing() []styledLine {
	missing, err := m.session.MissingIDs()
	if err != nil {
		return errLines(err.Error())
	}
	if len(missing) == 0 {
		return sysLines("No missing IDs.")
	}
	return []styledLine{{
		text: fmt.Sprintf("IDs not in config: %v", missing),
		kind: kindMissing,
	}}
}

func (m *Model) cmdAdd(args []string) []styledLine {
	if m.session.Mode != session.ModeSave {
		return errLines("Only available in save mode.")
	}
	if len(args) == 0 {
		return errLines("add requires an item id.")
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return errLines("Enter a valid numeric ID.")
	}
	count := 1
	if len(args) > 1 {
		if count, err = strconv.Atoi(args[1]); err != nil {
			return errLines("Enter a valid quantity.")
		}
	}
	at := edit.DefaultPlacement
	if len(args) > 3 {
		x, xerr := strconv.ParseInt(args[2], 10, 64)
		y, yerr := strconv.ParseInt(args[3], 10, 64)
		if xerr != nil || yerr != nil {
			return errLines("Enter valid numeric coordinates.")
		}
		at = types.Placement{X: x, Y: y}
	}
	if err := m.session.Add(id, count, at); err != nil {
		return errLines(fmt.Sprintf("Add failed: %v", err))
	}
	return sysLines(fmt.Sprintf("Added %dx ID %d.", count, id))
}

func (m *Model) cmdDelete(args []string) []styledLine {
	if m.session.Mode != session.ModeSave {
		return errLines("Only available in save mode.")
	}
	if len(args) == 0 {
		return errLines("del requires at least one row index.")
	}
	rows := make([]int, 0, len(args))
	for _, a := range args {
		r, err := strconv.Atoi(a)
		if err != nil {
			return errLines(fmt.Sprintf("Invalid row index %q.", a))
		}
		rows = append(rows, r)
	}
	if err := m.session.Delete(rows); err != nil {
		return errLines(fmt.Sprintf("Delete failed: %v", err))
	}
	return sysLines(fmt.Sprintf("Deleted %d item(s).", len(rows)))
}

func (m *Model) cmdRes(args []string) []styledLine {
	if m.session.Mode != session.ModeSave {
		return errLines("Only available in save mode.")
	}
	if len(args) == 0 {
		return errLines("res requires key=value pairs.")
	}
	values := map[string]any{}
	for _, a := range args {
		key, val, ok := strings.Cut(a, "=")
		if !ok {
			return errLines(fmt.Sprintf("Invalid assignment %q, want key=value.", a))
		}
		if key == "race" {
			values[key] = val
			continue
		}
		n, err := strconv.ParseInt(val, 10, 64)
		if err != nil {
			return errLines(fmt.Sprintf("Invalid value for %s: %q.", key, val))
		}
		values[key] = n
	}
	if err := m.session.UpdateResources(values); err != nil {
		return errLines(fmt.Sprintf("Update failed: %v", err))
	}
	return sysLines("Player resources updated.")
}

func (m *Model) cmdInfo() []styledLine {
	s := m.session
	lines := sysLines("Mode: " + s.Mode.String())
	if s.Catalog != nil {
		lines = append(lines, sysLines(fmt.Sprintf("Config: %d definitions", s.Catalog.Len()))...)
	}
	if s.Save == nil {
		return append(lines, sysLines("No save file loaded.")...)
	}
	if s.Save.Player != nil {
		lines = append(lines, sysLines(fmt.Sprintf("PID: %s | Name: %s | Cash: %d",
			s.Save.Player.PID(), s.Save.Player.Name(), s.Save.Player.Cash()))...)
	}
	if s.Save.Private != nil {
		lines = append(lines, sysLines(fmt.Sprintf("Mana: %d", s.Save.Private.Mana()))...)
	}
	if town, err := s.Town(); err == nil {
		lines = append(lines, sysLines(fmt.Sprintf(
			"Town %d: %d item(s), coins %d, xp %d, level %d, stone %d, wood %d, food %d",
			s.TownIndex(), len(town.Items), town.Int("coins"), town.Int("xp"),
			town.Int("level"), town.Int("stone"), town.Int("wood"), town.Int("food")))...)
	}
	return lines
}

func (m *Model) cmdHelp() []styledLine {
	help := []string{
		"open <path>         — Load a config or save file",
		"save [path]         — Write the save file (save mode)",
		"towns / town <n>    — List towns / switch the active town",
		"list                — List the active town's items",
		"items               — List config definitions",
		"find <id>           — Rows holding the given item id",
		"missing             — Save item ids absent from the config",
		"add <id> [n] [x y]  — Append n instances (default 1 at 54,54)",
		"del <rows...>       — Delete rows from the active town",
		"res key=value ...   — Update resources",
		"info / help / quit",
		"",
		"Navigation: PgUp/PgDn to scroll, Up/Down for command history",
	}
	lines := make([]styledLine, len(help))
	for i, h := range help {
		lines[i] = styledLine{text: h}
	}
	return lines
}

// appendOutput adds lines to the scrollback and refreshes the viewport.
func (m Model) appendOutput(msg outputMsg) Model {
	if msg.input != "" {
		m.rawLines = append(m.rawLines, styledLine{text: msg.input, kind: kindInput})
	}
	m.rawLines = append(m.rawLines, msg.lines...)
	m.rawLines = append(m.rawLines, styledLine{})
	m.refreshViewport()
	return m
}

// refreshViewport re-styles the scrollback at the current width and
// scrolls to the bottom.
func (m *Model) refreshViewport() {
	if !m.ready {
		return
	}
	styled := make([]string, len(m.rawLines))
	for i, rl := range m.rawLines {
		if rl.text == "" {
			continue
		}
		styled[i] = renderLine(rl.text, rl.kind)
	}
	m.viewport.SetContent(strings.Join(styled, "\n"))
	m.viewport.GotoBottom()
}

// View renders the full layout: viewport + status bar + input.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if !m.ready {
		return "Loading..."
	}
	return m.viewport.View() + "\n" + m.renderStatusBar() + "\n" + m.input.View()
}

func sysLines(texts ...string) []styledLine {
	lines := make([]styledLine, len(texts))
	for i, t := range texts {
		lines[i] = styledLine{text: t, kind: kindSystem}
	}
	return lines
}

func errLines(text string) []styledLine {
	return []styledLine{{text: text, kind: kindError}}
}

// viewportKeyMap returns a viewport keymap with Up/Down disabled
// (we use those for input history).
func viewportKeyMap() viewport.KeyMap {
	return viewport.KeyMap{
		PageDown:     key.NewBinding(key.WithKeys("pgdown")),
		PageUp:       key.NewBinding(key.WithKeys("pgup")),
		HalfPageDown: key.NewBinding(key.WithKeys("ctrl+d")),
		HalfPageUp:   key.NewBinding(key.WithKeys("ctrl+u")),
		Up:           key.NewBinding(key.WithDisabled()),
		Down:         key.NewBinding(key.WithDisabled()),
	}
}
