// Package cli provides the plain line-oriented front end for the save
// editor: prompt, command dispatch, and output formatting. It drives the
// session and never touches the raw save arrays itself.
package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"empiresedit/edit"
	"empiresedit/reconcile"
	"empiresedit/session"
	"empiresedit/types"
)

// CLI handles terminal interaction with the editor session.
type CLI struct {
	Session      *session.Session
	In           io.Reader
	Out          io.Writer
	PatchDir     string
	AssetDirs    reconcile.AssetDirs
	ApplyPatches bool
	EchoInput    bool // echo each input line after the prompt (for script playback)
}

// New creates a CLI wired to the given session.
func New(s *session.Session) *CLI {
	return &CLI{
		Session:      s,
		In:           os.Stdin,
		Out:          os.Stdout,
		ApplyPatches: true,
	}
}

// Run starts the command loop: prompt → input → dispatch → output.
func (c *CLI) Run() {
	scanner := bufio.NewScanner(c.In)
	for {
		c.print("> ")
		if !scanner.Scan() {
			break
		}
		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			continue
		}
		// Skip comment lines (for script files).
		if strings.HasPrefix(input, "#") {
			continue
		}
		if c.EchoInput {
			c.printLine(input)
		}

		if c.dispatch(input) {
			return
		}
	}
}

// dispatch runs one command line. Returns true when the editor should
// exit.
func (c *CLI) dispatch(input string) bool {
	parts := strings.Fields(input)
	cmd := strings.ToLower(parts[0])
	args := parts[1:]

	switch cmd {
	case "quit", "exit":
		c.printSystem("Goodbye.")
		return true
	case "open":
		c.cmdOpen(args)
	case "save":
		c.cmdSave(args)
	case "towns":
		c.cmdTowns()
	case "town":
		c.cmdTown(args)
	case "list":
		c.cmdList()
	case "items":
		c.cmdItems()
	case "find":
		c.cmdFind(args)
	case "missing":
		c.cmdMissing()
	case "add":
		c.cmdAdd(args)
	case "del", "delete":
		c.cmdDelete(args)
	case "res":
		c.cmdRes(args)
	case "info":
		c.cmdInfo()
	case "help":
		c.cmdHelp()
	default:
		c.printSystem(fmt.Sprintf("Unknown command: %s. Type help for available commands.", cmd))
	}
	return false
}

func (c *CLI) cmdOpen(args []string) {
	if len(args) == 0 {
		c.printSystem("open requires a file path.")
		return
	}
	path := args[0]

	// Load in the background; nothing in the session changes until the
	// result is installed, so waiting here is the only suspension point.
	res := <-session.LoadAsync(path, c.PatchDir, c.ApplyPatches)
	for _, skip := range res.Skipped {
		c.printSystem(fmt.Sprintf("skipped: %v", skip))
	}
	if err := c.Session.Install(res); err != nil {
		c.printSystem(fmt.Sprintf("Load failed: %v", err))
		return
	}

	if res.Catalog != nil {
		c.printSystem(fmt.Sprintf("Loaded config: %d definitions.", res.Catalog.Len()))
		return
	}
	doc := res.Save
	pid, name := "Unknown", "Unknown"
	if doc.Player != nil {
		if p := doc.Player.PID(); p != "" {
			pid = p
		}
		if n := doc.Player.Name(); n != "" {
			name = n
		}
	}
	c.printSystem(fmt.Sprintf("Loaded save: PID: %s | Name: %s | %d town(s).", pid, name, len(doc.Maps)))
}

func (c *CLI) cmdSave(args []string) {
	if c.Session.Mode != session.ModeSave {
		c.printSystem("Only available in save mode.")
		return
	}
	var path string
	if len(args) > 0 {
		path = args[0]
	}
	if err := c.Session.WriteSave(path); err != nil {
		c.printSystem(fmt.Sprintf("Save failed: %v", err))
		return
	}
	c.printSystem(fmt.Sprintf("Saved file: %s", c.Session.SavePath))
}

func (c *CLI) cmdTowns() {
	names := c.Session.TownNames()
	if len(names) == 0 {
		c.printSystem("No save file loaded.")
		return
	}
	active := c.Session.TownIndex()
	for i, name := range names {
		marker := " "
		if i == active {
			marker = "*"
		}
		c.printLine(fmt.Sprintf("%s %d. %s", marker, i, name))
	}
}

func (c *CLI) cmdTown(args []string) {
	if len(args) == 0 {
		c.printSystem("town requires an index.")
		return
	}
	index, err := strconv.Atoi(args[0])
	if err != nil {
		c.printSystem("town requires a numeric index.")
		return
	}
	names := c.Session.TownNames()
	if len(names) == 0 {
		c.printSystem("No save file loaded.")
		return
	}
	effective := c.Session.SwitchTown(index)
	c.printSystem(fmt.Sprintf("Active town: %d. %s", effective, names[effective]))
}

func (c *CLI) cmdList() {
	town, err := c.Session.Town()
	if err != nil {
		c.printSystem(fmt.Sprintf("%v", err))
		return
	}
	if len(town.Items) == 0 {
		c.printSystem("No items in this town.")
		return
	}
	for i, inst := range town.Items {
		d := c.Session.Display(inst)
		line := fmt.Sprintf("%4d  %6d  %-24s (%d, %d)", i, inst.ID, d.Name, inst.X, inst.Y)
		if d.Known {
			if path, ok := c.AssetDirs.Resolve(d.ImgName); ok {
				line += "  " + path
			}
		}
		c.printLine(line)
	}
}

func (c *CLI) cmdItems() {
	if c.Session.Catalog == nil {
		c.printSystem("No config loaded.")
		return
	}
	for _, def := range c.Session.Catalog.All() {
		name := def.Name
		if name == "" {
			name = "Unnamed"
		}
		c.printLine(fmt.Sprintf("%6d  %s", def.ID, name))
	}
}

func (c *CLI) cmdFind(args []string) {
	if len(args) == 0 {
		c.printSystem("find requires a numeric id.")
		return
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		c.printSystem("Enter a valid numeric ID.")
		return
	}
	rows, err := c.Session.Find(id)
	if err != nil {
		c.printSystem(fmt.Sprintf("%v", err))
		return
	}
	if len(rows) == 0 {
		c.printSystem("No matching items found.")
		return
	}
	c.printSystem(fmt.Sprintf("Found %d matching item(s) at rows %v.", len(rows), rows))
}

func (c *CLI) cmdMissing() {
	missing, err := c.Session.MissingIDs()
	if err != nil {
		c.printSystem(fmt.Sprintf("%v", err))
		return
	}
	if len(missing) == 0 {
		c.printSystem("No missing IDs.")
		return
	}
	c.printSystem(fmt.Sprintf("IDs not in config: %v", missing))
}

func (c *CLI) cmdAdd(args []string) {
	if c.Session.Mode != session.ModeSave {
		c.printSystem("Only available in save mode.")
		return
	}
	if len(args) == 0 {
		c.printSystem("add requires an item id.")
		return
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		c.printSystem("Enter a valid numeric ID.")
		return
	}
	count := 1
	if len(args) > 1 {
		count, err = strconv.Atoi(args[1])
		if err != nil {
			c.printSystem("Enter a valid quantity.")
			return
		}
	}
	at := edit.DefaultPlacement
	if len(args) > 3 {
		x, xerr := strconv.ParseInt(args[2], 10, 64)
		y, yerr := strconv.ParseInt(args[3], 10, 64)
		if xerr != nil || yerr != nil {
			c.printSystem("Enter valid numeric coordinates.")
			return
		}
		at = types.Placement{X: x, Y: y}
	}

	if err := c.Session.Add(id, count, at); err != nil {
		c.printSystem(fmt.Sprintf("Add failed: %v", err))
		return
	}
	name := "Unknown"
	if c.Session.Catalog != nil {
		if def, ok := c.Session.Catalog.Lookup(id); ok && def.Name != "" {
			name = def.Name
		}
	}
	c.printSystem(fmt.Sprintf("Added %dx %s (ID: %d).", count, name, id))
}

func (c *CLI) cmdDelete(args []string) {
	if c.Session.Mode != session.ModeSave {
		c.printSystem("Only available in save mode.")
		return
	}
	if len(args) == 0 {
		c.printSystem("del requires at least one row index.")
		return
	}
	rows := make([]int, 0, len(args))
	for _, a := range args {
		r, err := strconv.Atoi(a)
		if err != nil {
			c.printSystem(fmt.Sprintf("Invalid row index %q.", a))
			return
		}
		rows = append(rows, r)
	}
	if err := c.Session.Delete(rows); err != nil {
		c.printSystem(fmt.Sprintf("Delete failed: %v", err))
		return
	}
	c.printSystem(fmt.Sprintf("Deleted %d item(s).", len(rows)))
}

func (c *CLI) cmdRes(args []string) {
	if c.Session.Mode != session.ModeSave {
		c.printSystem("Only available in save mode.")
		return
	}
	if len(args) == 0 {
		c.printSystem("res requires key=value pairs (cash, coins, xp, level, stone, wood, food, mana, race, skin).")
		return
	}
	values := map[string]any{}
	for _, a := range args {
		key, val, ok := strings.Cut(a, "=")
		if !ok {
			c.printSystem(fmt.Sprintf("Invalid assignment %q, want key=value.", a))
			return
		}
		if key == "race" {
			values[key] = val
			continue
		}
		n, err := strconv.ParseInt(val, 10, 64)
		if err != nil {
			c.printSystem(fmt.Sprintf("Invalid value for %s: %q.", key, val))
			return
		}
		values[key] = n
	}
	if err := c.Session.UpdateResources(values); err != nil {
		c.printSystem(fmt.Sprintf("Update failed: %v", err))
		return
	}
	c.printSystem("Player resources updated.")
}

func (c *CLI) cmdInfo() {
	s := c.Session
	c.printSystem(fmt.Sprintf("Mode: %s", s.Mode))
	if s.CurrentFile != "" {
		c.printSystem(fmt.Sprintf("File: %s", s.CurrentFile))
	}
	if s.Catalog != nil {
		c.printSystem(fmt.Sprintf("Config: %d definitions", s.Catalog.Len()))
	}
	if s.Save == nil {
		c.printSystem("No save file loaded.")
		return
	}
	if s.Save.Player != nil {
		c.printSystem(fmt.Sprintf("PID: %s | Name: %s | Cash: %d",
			s.Save.Player.PID(), s.Save.Player.Name(), s.Save.Player.Cash()))
	}
	if s.Save.Private != nil {
		c.printSystem(fmt.Sprintf("Mana: %d", s.Save.Private.Mana()))
	}
	town, err := s.Town()
	if err != nil {
		return
	}
	c.printSystem(fmt.Sprintf("Town %d: %d item(s), coins %d, xp %d, level %d, stone %d, wood %d, food %d",
		s.TownIndex(), len(town.Items), town.Int("coins"), town.Int("xp"),
		town.Int("level"), town.Int("stone"), town.Int("wood"), town.Int("food")))
}

func (c *CLI) cmdHelp() {
	help := []string{
		"Files:",
		"  open <path>         — Load a config or save file",
		"  save [path]         — Write the save file (save mode)",
		"",
		"Browsing:",
		"  towns               — List towns (* marks the active one)",
		"  town <n>            — Switch the active town",
		"  list                — List the active town's items",
		"  items               — List config definitions",
		"  find <id>           — Rows holding the given item id",
		"  missing             — Save item ids absent from the config",
		"  info                — Session and player summary",
		"",
		"Editing (save mode):",
		"  add <id> [n] [x y]  — Append n instances (default 1 at 54,54)",
		"  del <rows...>       — Delete rows from the active town",
		"  res key=value ...   — Update resources (cash, coins, xp, level,",
		"                        stone, wood, food, mana, race, skin)",
		"",
		"  help / quit",
	}
	for _, line := range help {
		c.printLine(line)
	}
}

func (c *CLI) printLine(text string) {
	fmt.Fprintln(c.Out, text)
}

func (c *CLI) print(text string) {
	fmt.Fprint(c.Out, text)
}

func (c *CLI) printSystem(text string) {
	fmt.Fprintf(c.Out, "[%s]\n", text)
}
