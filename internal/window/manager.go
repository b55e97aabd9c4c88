// Package window manages the set of open file windows: one session per
// file path, stacking order, cascading placement and drag/resize geometry.
package window

import (
	"sort"

	"github.com/drakeos/drakeos/internal/events"
	"github.com/drakeos/drakeos/internal/vfs"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Rect is a window's position and size in pixels.
type Rect struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Viewport is the visible desktop area. A zero viewport disables
// position clamping.
type Viewport struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Mode tells UpdateGeometry whether the change comes from a drag or a resize.
type Mode int

// Geometry update modes.
const (
	Drag Mode = iota
	Resize
)

// Options holds the placement and sizing constants.
type Options struct {
	BaseX        int // Cascade origin
	BaseY        int
	Offset       int // Cascade step per window
	CascadeSlots int // Positions before the cascade wraps

	Width  int // Default size
	Height int

	// Windows for files with this app type get the tall size.
	TallAppType string
	TallWidth   int
	TallHeight  int

	MinWidth  int
	MinHeight int

	ZBase int // First z-order handed out is ZBase+1
}

// DefaultOptions returns the stock desktop layout constants.
func DefaultOptions() Options {
	return Options{
		BaseX:        100,
		BaseY:        80,
		Offset:       30,
		CascadeSlots: 5,
		Width:        500,
		Height:       400,
		TallAppType:  "audio",
		TallWidth:    380,
		TallHeight:   520,
		MinWidth:     320,
		MinHeight:    200,
		ZBase:        100,
	}
}

// Session is one open window.
type Session struct {
	ID       string    `json:"id"`
	Path     string    `json:"path"`
	Name     string    `json:"name"`
	Geometry Rect      `json:"geometry"`
	ZOrder   int       `json:"zOrder"`
	File     *vfs.Node `json:"-"`
}

// ChangeType names what happened to a session.
type ChangeType string

// Session change kinds.
const (
	ChangeOpen     ChangeType = "open"
	ChangeFocus    ChangeType = "focus"
	ChangeGeometry ChangeType = "geometry"
	ChangeClose    ChangeType = "close"
)

// Change describes a session state transition.
type Change struct {
	Type    ChangeType
	Session Session
}

// Manager owns every open session. It is not safe for concurrent use; the
// caller serializes access the way an event loop would.
type Manager struct {
	opts     Options
	viewport Viewport
	sessions map[string]*Session
	zCounter int
	cascade  int
	gesture  *Gesture

	closed  events.Listeners[*vfs.Node]
	changed events.Listeners[Change]

	logger *zap.Logger
	newID  func() string
}

// NewManager creates a manager with the given options. A nil logger is
// replaced with a no-op logger.
func NewManager(opts Options, logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.CascadeSlots < 1 {
		opts.CascadeSlots = 1
	}
	return &Manager{
		opts:     opts,
		sessions: make(map[string]*Session),
		zCounter: opts.ZBase,
		logger:   logger,
		newID:    func() string { return "win-" + uuid.NewString() },
	}
}

// SetViewport records the current viewport bounds used to clamp drags.
func (m *Manager) SetViewport(v Viewport) {
	m.viewport = v
}

// Viewport returns the current viewport bounds.
func (m *Manager) Viewport() Viewport {
	return m.viewport
}

// OnClose registers a teardown callback run once for every closed window.
func (m *Manager) OnClose(fn func(file *vfs.Node)) (unsubscribe func()) {
	return m.closed.Subscribe(fn)
}

// OnChange registers a callback for every session transition.
func (m *Manager) OnChange(fn func(Change)) (unsubscribe func()) {
	return m.changed.Subscribe(fn)
}

// Open returns the session for file, creating it when needed. An existing
// session is brought to front and returned unchanged; created reports
// whether a new session was allocated.
func (m *Manager) Open(file *vfs.Node) (s Session, created bool) {
	if file == nil {
		return Session{}, false
	}
	if existing, ok := m.sessions[file.Path]; ok {
		m.BringToFront(file.Path)
		return *existing, false
	}

	sess := &Session{
		ID:       m.newID(),
		Path:     file.Path,
		Name:     file.Name,
		Geometry: m.initialGeometry(file),
		File:     file,
	}
	m.sessions[file.Path] = sess
	m.zCounter++
	sess.ZOrder = m.zCounter

	m.logger.Debug("window opened",
		zap.String("id", sess.ID),
		zap.String("path", sess.Path),
		zap.Int("z", sess.ZOrder),
	)
	m.changed.Notify(Change{Type: ChangeOpen, Session: *sess})
	return *sess, true
}

func (m *Manager) initialGeometry(file *vfs.Node) Rect {
	k := m.cascade
	m.cascade = (m.cascade + 1) % m.opts.CascadeSlots

	r := Rect{
		X:      m.opts.BaseX + k*m.opts.Offset,
		Y:      m.opts.BaseY + k*m.opts.Offset,
		Width:  m.opts.Width,
		Height: m.opts.Height,
	}
	if m.opts.TallAppType != "" && file.AppType == m.opts.TallAppType {
		r.Width = m.opts.TallWidth
		r.Height = m.opts.TallHeight
	}
	return r
}

// Close removes the session for path and runs the teardown callbacks. It
// returns the closed file, or nil when nothing was open at path.
func (m *Manager) Close(path string) (*vfs.Node, bool) {
	sess, ok := m.sessions[path]
	if !ok {
		return nil, false
	}
	delete(m.sessions, path)
	if m.gesture != nil && m.gesture.path == path {
		m.gesture = nil
	}

	m.logger.Debug("window closed", zap.String("id", sess.ID), zap.String("path", path))
	m.closed.Notify(sess.File)
	m.changed.Notify(Change{Type: ChangeClose, Session: *sess})
	return sess.File, true
}

// CloseAll closes every session through Close.
func (m *Manager) CloseAll() {
	paths := make([]string, 0, len(m.sessions))
	for p := range m.sessions {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	for _, p := range paths {
		m.Close(p)
	}
}

// BringToFront gives the session at path the highest z-order.
func (m *Manager) BringToFront(path string) bool {
	sess, ok := m.sessions[path]
	if !ok {
		return false
	}
	m.zCounter++
	sess.ZOrder = m.zCounter
	m.changed.Notify(Change{Type: ChangeFocus, Session: *sess})
	return true
}

// UpdateGeometry replaces the geometry of the session at path. Sizes are
// clamped to the minimums; drags are also kept inside the viewport.
func (m *Manager) UpdateGeometry(path string, r Rect, mode Mode) (Session, bool) {
	sess, ok := m.sessions[path]
	if !ok {
		return Session{}, false
	}

	if r.Width < m.opts.MinWidth {
		r.Width = m.opts.MinWidth
	}
	if r.Height < m.opts.MinHeight {
		r.Height = m.opts.MinHeight
	}
	if mode == Drag && m.viewport.Width > 0 && m.viewport.Height > 0 {
		r.X = clamp(r.X, 0, m.viewport.Width-r.Width)
		r.Y = clamp(r.Y, 0, m.viewport.Height-r.Height)
	}

	sess.Geometry = r
	m.changed.Notify(Change{Type: ChangeGeometry, Session: *sess})
	return *sess, true
}

// Move drags the session at path to x, y keeping its size.
func (m *Manager) Move(path string, x, y int) (Session, bool) {
	sess, ok := m.sessions[path]
	if !ok {
		return Session{}, false
	}
	g := sess.Geometry
	return m.UpdateGeometry(path, Rect{X: x, Y: y, Width: g.Width, Height: g.Height}, Drag)
}

// Resize changes the size of the session at path keeping its position.
func (m *Manager) Resize(path string, width, height int) (Session, bool) {
	sess, ok := m.sessions[path]
	if !ok {
		return Session{}, false
	}
	g := sess.Geometry
	return m.UpdateGeometry(path, Rect{X: g.X, Y: g.Y, Width: width, Height: height}, Resize)
}

// Get returns the session at path.
func (m *Manager) Get(path string) (Session, bool) {
	sess, ok := m.sessions[path]
	if !ok {
		return Session{}, false
	}
	return *sess, true
}

// IsOpen reports whether a session exists for path.
func (m *Manager) IsOpen(path string) bool {
	_, ok := m.sessions[path]
	return ok
}

// Len returns the number of open sessions.
func (m *Manager) Len() int {
	return len(m.sessions)
}

// List returns all sessions back to front.
func (m *Manager) List() []Session {
	out := make([]Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ZOrder < out[j].ZOrder })
	return out
}

// Front returns the frontmost session.
func (m *Manager) Front() (Session, bool) {
	list := m.List()
	if len(list) == 0 {
		return Session{}, false
	}
	return list[len(list)-1], true
}

func clamp(v, lo, hi int) int {
	if v > hi {
		v = hi
	}
	if v < lo {
		v = lo
	}
	return v
}
