package tui

import (
	"github.com/charmbracelet/lipgloss"
)

// Styles used throughout the TUI. The palette follows the desktop
// editor's dark theme: grey chrome, white data, red for problems.
var (
	styleStatusBar = lipgloss.NewStyle().
			Background(lipgloss.Color("236")).
			Foreground(lipgloss.Color("252")).
			Bold(true)

	styleInputPrompt = lipgloss.NewStyle().
				Foreground(lipgloss.Color("34"))

	styleUserInput = lipgloss.NewStyle().
			Foreground(lipgloss.Color("34"))

	styleSystem = lipgloss.NewStyle().
			Foreground(lipgloss.Color("243"))

	styleError = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))

	styleHeader = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("255"))

	styleRow = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252"))

	styleMissing = lipgloss.NewStyle().
			Foreground(lipgloss.Color("208"))
)

// lineKind classifies an output line for styling.
type lineKind int

const (
	kindRow lineKind = iota
	kindHeader
	kindSystem
	kindError
	kindMissing
	kindInput
)

// renderLine applies the style for a line kind.
func renderLine(text string, kind lineKind) string {
	switch kind {
	case kindInput:
		return styleUserInput.Render("> " + text)
	case kindHeader:
		return styleHeader.Render(text)
	case kindSystem:
		return styleSystem.Render("[" + text + "]")
	case kindError:
		return styleError.Render("[" + text + "]")
	case kindMissing:
		return styleMissing.Render(text)
	default:
		return styleRow.Render(text)
	}
}
