package tui

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// renderStatusBar produces a full-width inverted status line showing the
// open file, mode, active town, and what is loaded.
func (m Model) renderStatusBar() string {
	s := m.session

	file := "no file"
	if s.CurrentFile != "" {
		file = filepath.Base(s.CurrentFile)
	}
	left := fmt.Sprintf(" %s | %s mode", file, s.Mode)

	var right string
	switch {
	case m.loading:
		right = "loading… "
	case s.Save != nil:
		names := s.TownNames()
		if len(names) == 0 {
			right = "no towns "
			break
		}
		idx := s.TownIndex()
		count := 0
		if t, err := s.Town(); err == nil {
			count = len(t.Items)
		}
		right = fmt.Sprintf("%s (%d/%d) | %d item(s) ", names[idx], idx+1, len(names), count)
	case s.Catalog != nil:
		right = fmt.Sprintf("%d definition(s) ", s.Catalog.Len())
	default:
		right = "open a file to begin "
	}

	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 0 {
		gap = 0
	}

	bar := left + strings.Repeat(" ", gap) + right
	return styleStatusBar.Width(m.width).Render(bar)
}
