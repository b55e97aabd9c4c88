package desktop

import (
	"sync"
	"time"

	"github.com/drakeos/drakeos/internal/events"
)

// DefaultConsoleLines is the number of lines the console keeps.
const DefaultConsoleLines = 100

// LineKind classifies a console line.
type LineKind string

// Console line kinds.
const (
	LineInfo    LineKind = "info"
	LineSystem  LineKind = "system"
	LineSuccess LineKind = "success"
	LineError   LineKind = "error"
)

// Line is one console entry.
type Line struct {
	Time    time.Time `json:"time"`
	Kind    LineKind  `json:"kind"`
	Message string    `json:"message"`
}

// Timestamp formats the line time as shown in the console, "15:04:05".
func (l Line) Timestamp() string {
	return l.Time.Format("15:04:05")
}

// Console is the user-visible activity log. Old lines are dropped once the
// limit is reached. It is safe for concurrent use.
type Console struct {
	mu       sync.Mutex
	lines    []Line
	maxLines int
	now      func() time.Time

	appended events.Listeners[Line]
	cleared  events.Listeners[struct{}]
}

// NewConsole creates a console holding at most maxLines lines.
func NewConsole(maxLines int, now func() time.Time) *Console {
	if maxLines <= 0 {
		maxLines = DefaultConsoleLines
	}
	if now == nil {
		now = time.Now
	}
	return &Console{maxLines: maxLines, now: now}
}

// Log appends an info line.
func (c *Console) Log(msg string) { c.append(LineInfo, msg) }

// System appends a system line.
func (c *Console) System(msg string) { c.append(LineSystem, msg) }

// Success appends a success line.
func (c *Console) Success(msg string) { c.append(LineSuccess, msg) }

// Error appends an error line.
func (c *Console) Error(msg string) { c.append(LineError, msg) }

func (c *Console) append(kind LineKind, msg string) {
	line := Line{Time: c.now(), Kind: kind, Message: msg}

	c.mu.Lock()
	c.lines = append(c.lines, line)
	if over := len(c.lines) - c.maxLines; over > 0 {
		c.lines = append(c.lines[:0:0], c.lines[over:]...)
	}
	c.mu.Unlock()

	c.appended.Notify(line)
}

// Clear empties the console and notes that it was cleared.
func (c *Console) Clear() {
	c.mu.Lock()
	c.lines = nil
	c.mu.Unlock()

	c.cleared.Notify(struct{}{})
	c.System("Terminal cleared")
}

// Lines returns a copy of the current lines, oldest first.
func (c *Console) Lines() []Line {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Line, len(c.lines))
	copy(out, c.lines)
	return out
}

// Len returns the number of kept lines.
func (c *Console) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.lines)
}

// OnLine registers fn for every appended line.
func (c *Console) OnLine(fn func(Line)) (unsubscribe func()) {
	return c.appended.Subscribe(fn)
}

// OnClear registers fn for console clears.
func (c *Console) OnClear(fn func()) (unsubscribe func()) {
	return c.cleared.Subscribe(func(struct{}) { fn() })
}
