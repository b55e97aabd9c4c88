package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/drakeos/drakeos/internal/audio"
	"github.com/drakeos/drakeos/internal/desktop"
	"github.com/drakeos/drakeos/internal/events"
	"github.com/drakeos/drakeos/internal/vfs"
	"github.com/gin-gonic/gin"
)

const handlerTree = `{
  "path": "/", "type": "folder", "name": "",
  "children": [
    {"path": "/home", "type": "folder", "name": "home", "children": [
      {"path": "/home/drake", "type": "folder", "name": "drake", "children": [
        {"path": "/home/drake/About.md", "type": "file", "name": "About.md", "fileType": "markdown", "content": "# About\nhello"},
        {"path": "/home/drake/.notes", "type": "file", "name": ".notes", "fileType": "text", "content": "shh"},
        {"path": "/home/drake/Projects", "type": "folder", "name": "Projects"}
      ]}
    ]}
  ]
}`

func setupRouter(t *testing.T, load bool) (*gin.Engine, *State) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	state := NewState()
	bus := events.NewBroadcaster()
	if load {
		tree, err := vfs.Parse([]byte(handlerTree), vfs.Options{})
		if err != nil {
			t.Fatalf("Parse failed: %v", err)
		}
		d := desktop.New(tree, desktop.Config{
			Now: func() time.Time { return time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC) },
		}, desktop.Deps{Broadcaster: bus})
		d.Boot()
		state.Set(d)
	}

	r := gin.New()
	Register(r, state, bus, nil)
	return r, state
}

func do(r http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), v); err != nil {
		t.Fatalf("decode %q: %v", w.Body.String(), err)
	}
}

func TestNotLoadedAnswers503(t *testing.T) {
	r, _ := setupRouter(t, false)

	for _, path := range []string{"/api/tree", "/api/desktop", "/api/windows", "/api/console"} {
		w := do(r, http.MethodGet, path, nil)
		if w.Code != http.StatusServiceUnavailable {
			t.Errorf("%s: expected 503, got %d", path, w.Code)
		}
	}
}

func TestGetDesktop(t *testing.T) {
	r, _ := setupRouter(t, true)

	w := do(r, http.MethodGet, "/api/desktop", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var resp DesktopResponse
	decode(t, w, &resp)
	if resp.Path != "/home/drake" {
		t.Errorf("expected home, got %s", resp.Path)
	}
	if len(resp.Entries) != 2 {
		t.Errorf("expected 2 visible entries, got %d", len(resp.Entries))
	}
}

func TestNavigateStatusCodes(t *testing.T) {
	r, _ := setupRouter(t, true)

	tests := []struct {
		path string
		want int
	}{
		{"/home/drake/Projects", http.StatusOK},
		{"/missing", http.StatusNotFound},
		{"/home/drake/About.md", http.StatusBadRequest},
	}
	for _, tt := range tests {
		w := do(r, http.MethodPost, "/api/navigate", gin.H{"path": tt.path})
		if w.Code != tt.want {
			t.Errorf("%s: expected %d, got %d", tt.path, tt.want, w.Code)
		}
	}

	w := do(r, http.MethodPost, "/api/navigate", gin.H{})
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for missing path, got %d", w.Code)
	}

	w = do(r, http.MethodPost, "/api/home", nil)
	var resp DesktopResponse
	decode(t, w, &resp)
	if resp.Path != "/home/drake" {
		t.Errorf("expected home, got %s", resp.Path)
	}
}

func TestToggleHidden(t *testing.T) {
	r, _ := setupRouter(t, true)

	w := do(r, http.MethodPost, "/api/hidden", nil)
	var resp DesktopResponse
	decode(t, w, &resp)
	if !resp.ShowHidden || len(resp.Entries) != 3 {
		t.Errorf("expected hidden entries shown, got %+v", resp.Listing)
	}
}

func TestWindowLifecycle(t *testing.T) {
	r, state := setupRouter(t, true)

	w := do(r, http.MethodPost, "/api/windows", gin.H{"path": "/home/drake/About.md"})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var opened desktop.OpenWindow
	decode(t, w, &opened)
	if opened.ID == "" || opened.View == nil || opened.View.Kind != "markdown" {
		t.Errorf("unexpected window %+v", opened)
	}

	w = do(r, http.MethodPost, "/api/windows", gin.H{"path": "/home/drake/Projects"})
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400 opening a folder, got %d", w.Code)
	}

	w = do(r, http.MethodGet, "/api/views/home/drake/About.md", nil)
	if w.Code != http.StatusOK {
		t.Errorf("expected view, got %d", w.Code)
	}

	w = do(r, http.MethodPut, "/api/windows/geometry", gin.H{
		"path": "/home/drake/About.md", "x": 10, "y": 10, "width": 100, "height": 50, "mode": "resize",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var sess struct {
		Geometry struct{ Width, Height int } `json:"geometry"`
	}
	decode(t, w, &sess)
	if sess.Geometry.Width != 320 || sess.Geometry.Height != 200 {
		t.Errorf("expected minimum size clamp, got %+v", sess.Geometry)
	}

	w = do(r, http.MethodPut, "/api/windows/geometry", gin.H{"path": "/home/drake/About.md", "mode": "spin"})
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for bad mode, got %d", w.Code)
	}

	w = do(r, http.MethodPost, "/api/windows/focus", gin.H{"path": "/home/drake/About.md"})
	if w.Code != http.StatusOK {
		t.Errorf("expected focus 200, got %d", w.Code)
	}

	w = do(r, http.MethodDelete, "/api/windows/home/drake/About.md", nil)
	if w.Code != http.StatusOK {
		t.Errorf("expected close 200, got %d", w.Code)
	}
	w = do(r, http.MethodDelete, "/api/windows/home/drake/About.md", nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("expected second close 404, got %d", w.Code)
	}

	state.Do(func(d *desktop.Desktop) {
		if len(d.OpenWindows()) != 0 {
			t.Errorf("expected no windows, got %d", len(d.OpenWindows()))
		}
	})
}

func TestShellEndpoints(t *testing.T) {
	r, _ := setupRouter(t, true)

	w := do(r, http.MethodPost, "/api/shell", ShellRequest{Line: "cd Projects"})
	var resp ShellResponse
	decode(t, w, &resp)
	if resp.Desktop != "/home/drake/Projects" || resp.Path != "/home/drake/Projects" {
		t.Errorf("expected cd to sync the desktop, got %+v", resp)
	}
	if resp.Prompt != "drake@drakeos:~/Projects$ " {
		t.Errorf("unexpected prompt %q", resp.Prompt)
	}

	w = do(r, http.MethodPost, "/api/shell", ShellRequest{Line: "cat nope"})
	resp = ShellResponse{}
	decode(t, w, &resp)
	if resp.Error != "cat: nope: No such file or directory" {
		t.Errorf("unexpected error line %q", resp.Error)
	}

	w = do(r, http.MethodPost, "/api/shell/history/up", nil)
	var up struct {
		Line  string `json:"line"`
		Moved bool   `json:"moved"`
	}
	decode(t, w, &up)
	if !up.Moved || up.Line != "cat nope" {
		t.Errorf("expected last command recalled, got %+v", up)
	}

	w = do(r, http.MethodPost, "/api/shell/history/down", nil)
	var down struct {
		Line string `json:"line"`
	}
	decode(t, w, &down)
	if down.Line != "" {
		t.Errorf("expected empty line past the newest entry, got %q", down.Line)
	}

	w = do(r, http.MethodGet, "/api/shell/history", nil)
	var hist struct {
		Entries []string `json:"entries"`
	}
	decode(t, w, &hist)
	if len(hist.Entries) != 2 {
		t.Errorf("expected 2 history entries, got %v", hist.Entries)
	}
}

func TestGetNode(t *testing.T) {
	r, _ := setupRouter(t, true)

	w := do(r, http.MethodGet, "/api/nodes/home/drake", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var resp NodeResponse
	decode(t, w, &resp)
	if len(resp.Children) != 3 {
		t.Errorf("expected all 3 children including hidden, got %d", len(resp.Children))
	}
	if resp.Node.Children != nil {
		t.Error("expected the node to be sent without its subtree")
	}

	w = do(r, http.MethodGet, "/api/nodes/nowhere", nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", w.Code)
	}
}

func TestStateReplace(t *testing.T) {
	state := NewState()
	tree, _ := vfs.Parse([]byte(handlerTree), vfs.Options{})

	built := 0
	build := func(tr *vfs.Tree) *desktop.Desktop {
		built++
		return desktop.New(tr, desktop.Config{}, desktop.Deps{})
	}
	state.Replace(tree, build)
	state.Replace(tree, build)

	if built != 1 {
		t.Errorf("expected the desktop built once, got %d", built)
	}
	if !state.Loaded() {
		t.Error("expected state loaded")
	}
}

func TestMusicControls(t *testing.T) {
	r, state := setupRouter(t, true)
	_ = state.Do(func(d *desktop.Desktop) {
		d.Player().SetPlaylist([]audio.Track{
			{Name: "One", File: "one.mp3"},
			{Name: "Two", File: "two.mp3"},
			{Name: "Three", File: "three.mp3"},
		}, "")
	})

	var resp MusicResponse
	w := do(r, http.MethodPost, "/api/music/next", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	decode(t, w, &resp)
	if resp.Current == nil || resp.Current.Index != 1 || resp.Current.Name != "Two" {
		t.Errorf("expected track 1, got %+v", resp.Current)
	}

	w = do(r, http.MethodPost, "/api/music/prev", nil)
	decode(t, w, &resp)
	w = do(r, http.MethodPost, "/api/music/prev", nil)
	decode(t, w, &resp)
	if resp.Current == nil || resp.Current.Index != 2 {
		t.Errorf("expected prev to wrap to track 2, got %+v", resp.Current)
	}

	w = do(r, http.MethodPost, "/api/music/ended", nil)
	decode(t, w, &resp)
	if resp.Current == nil || resp.Current.Index != 0 {
		t.Errorf("expected ended to wrap to track 0, got %+v", resp.Current)
	}

	w = do(r, http.MethodPost, "/api/music/toggle", nil)
	decode(t, w, &resp)
	if !resp.Playing {
		t.Error("expected toggle to start playback")
	}

	w = do(r, http.MethodPut, "/api/music/volume", gin.H{"level": 2.5})
	decode(t, w, &resp)
	if resp.Volume != 1 {
		t.Errorf("expected volume clamped to 1, got %v", resp.Volume)
	}
	w = do(r, http.MethodPut, "/api/music/volume", gin.H{})
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for missing level, got %d", w.Code)
	}
}

func TestMusicNotLoaded(t *testing.T) {
	r, _ := setupRouter(t, false)

	w := do(r, http.MethodPost, "/api/music/next", nil)
	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("expected 503, got %d", w.Code)
	}
}
