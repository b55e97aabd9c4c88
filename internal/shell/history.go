package shell

// History is the append-only list of submitted lines with a recall cursor.
// The cursor always stays in [0, Len()]; Len() means "past the end", where
// the edit buffer is empty.
type History struct {
	entries []string
	cursor  int
}

// Add appends a line and moves the cursor past the end.
func (h *History) Add(line string) {
	h.entries = append(h.entries, line)
	h.cursor = len(h.entries)
}

// Up moves the cursor one entry back and returns that entry. At the first
// entry, or with no history, it does nothing and reports false.
func (h *History) Up() (string, bool) {
	if h.cursor <= 0 {
		return "", false
	}
	h.cursor--
	return h.entries[h.cursor], true
}

// Down moves the cursor one entry forward. Moving past the last entry
// parks the cursor at Len() and returns an empty buffer.
func (h *History) Down() string {
	if h.cursor < len(h.entries)-1 {
		h.cursor++
		return h.entries[h.cursor]
	}
	h.cursor = len(h.entries)
	return ""
}

// Cursor returns the recall position.
func (h *History) Cursor() int {
	return h.cursor
}

// Len returns the number of recorded lines.
func (h *History) Len() int {
	return len(h.entries)
}

// Entries returns a copy of the recorded lines, oldest first.
func (h *History) Entries() []string {
	out := make([]string, len(h.entries))
	copy(out, h.entries)
	return out
}
