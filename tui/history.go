package tui

// history keeps recently entered commands for Up/Down recall.
type history struct {
	entries []string
	cursor  int // len(entries) = fresh input, lower = navigating back
	limit   int
}

func newHistory(limit int) *history {
	return &history{limit: limit}
}

// push records a command and resets navigation. Repeats of the latest
// entry are not stored twice.
func (h *history) push(cmd string) {
	if n := len(h.entries); n == 0 || h.entries[n-1] != cmd {
		h.entries = append(h.entries, cmd)
		if len(h.entries) > h.limit {
			h.entries = h.entries[1:]
		}
	}
	h.cursor = len(h.entries)
}

// prev steps back through history; ok is false when there is nothing
// older.
func (h *history) prev() (string, bool) {
	if h.cursor == 0 {
		return "", false
	}
	h.cursor--
	return h.entries[h.cursor], true
}

// next steps forward; ok is false once past the newest entry, meaning
// the input line should go back to fresh.
func (h *history) next() (string, bool) {
	if h.cursor >= len(h.entries) {
		return "", false
	}
	h.cursor++
	if h.cursor == len(h.entries) {
		return "", false
	}
	return h.entries[h.cursor], true
}
