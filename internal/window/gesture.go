package window

// Gesture is an in-progress drag or resize started by a pointer press.
// Only one gesture is active per manager at a time.
type Gesture struct {
	m       *Manager
	path    string
	mode    Mode
	startX  int
	startY  int
	initial Rect
}

// BeginDrag starts dragging the session at path from pointer position
// px, py. It fails when path is unknown or another gesture is active.
func (m *Manager) BeginDrag(path string, px, py int) (*Gesture, bool) {
	return m.begin(path, Drag, px, py)
}

// BeginResize starts resizing the session at path from pointer position
// px, py. It fails when path is unknown or another gesture is active.
func (m *Manager) BeginResize(path string, px, py int) (*Gesture, bool) {
	return m.begin(path, Resize, px, py)
}

func (m *Manager) begin(path string, mode Mode, px, py int) (*Gesture, bool) {
	if m.gesture != nil {
		return nil, false
	}
	sess, ok := m.sessions[path]
	if !ok {
		return nil, false
	}
	m.BringToFront(path)
	g := &Gesture{
		m:       m,
		path:    path,
		mode:    mode,
		startX:  px,
		startY:  py,
		initial: sess.Geometry,
	}
	m.gesture = g
	return g, true
}

// Active reports whether the gesture still drives its window.
func (g *Gesture) Active() bool {
	return g.m.gesture == g
}

// Move applies a pointer movement relative to the gesture start.
func (g *Gesture) Move(px, py int) (Session, bool) {
	if !g.Active() {
		return Session{}, false
	}
	dx, dy := px-g.startX, py-g.startY
	r := g.initial
	switch g.mode {
	case Drag:
		r.X += dx
		r.Y += dy
	case Resize:
		r.Width += dx
		r.Height += dy
	}
	return g.m.UpdateGeometry(g.path, r, g.mode)
}

// End releases the gesture.
func (g *Gesture) End() {
	if g.Active() {
		g.m.gesture = nil
	}
}
