package desktop

import (
	"strings"

	"github.com/drakeos/drakeos/internal/metrics"
	"github.com/drakeos/drakeos/internal/render"
	"github.com/drakeos/drakeos/internal/shell"
	"github.com/drakeos/drakeos/internal/vfs"
	"github.com/drakeos/drakeos/internal/window"
	"go.uber.org/zap"
)

// OpenWindow is an open session with its rendered view.
type OpenWindow struct {
	window.Session
	View *render.View `json:"view"`
}

// OpenFile opens file in a window. An already open file is only brought to
// front; it is rendered exactly once per window.
func (d *Desktop) OpenFile(file *vfs.Node) (OpenWindow, error) {
	if file == nil {
		return OpenWindow{}, vfs.ErrNotFound
	}
	if file.IsFolder() {
		return OpenWindow{}, vfs.PathError("open", file.Path, vfs.ErrIsAFolder)
	}

	d.console.Log("open " + file.Name)

	if d.windows.IsOpen(file.Path) {
		sess, _ := d.windows.Open(file)
		return OpenWindow{Session: sess, View: d.views[file.Path]}, nil
	}

	view, err := d.registry.Render(file)
	if err != nil {
		d.console.Error(err.Error())
		d.logger.Warn("render failed", zap.String("path", file.Path), zap.Error(err))
		return OpenWindow{}, err
	}
	d.views[file.Path] = view

	sess, _ := d.windows.Open(file)
	metrics.RecordWindowOpen()
	metrics.SetWindowsOpen(d.windows.Len())

	if view.Kind == render.KindLink && view.ExternalURL != "" {
		d.console.Success("exec: opening " + view.ExternalURL)
	}
	return OpenWindow{Session: sess, View: view}, nil
}

// Close closes the window for path.
func (d *Desktop) Close(path string) bool {
	_, ok := d.windows.Close(path)
	return ok
}

// CloseAll closes every window.
func (d *Desktop) CloseAll() {
	d.windows.CloseAll()
}

// Focus brings the window for path to front.
func (d *Desktop) Focus(path string) bool {
	return d.windows.BringToFront(path)
}

// UpdateGeometry sets a window's geometry.
func (d *Desktop) UpdateGeometry(path string, r window.Rect, mode window.Mode) (window.Session, bool) {
	return d.windows.UpdateGeometry(path, r, mode)
}

// SetViewport records the client viewport used to clamp drags.
func (d *Desktop) SetViewport(v window.Viewport) {
	d.windows.SetViewport(v)
}

// OpenWindows lists open windows back to front.
func (d *Desktop) OpenWindows() []OpenWindow {
	sessions := d.windows.List()
	out := make([]OpenWindow, len(sessions))
	for i, s := range sessions {
		out[i] = OpenWindow{Session: s, View: d.views[s.Path]}
	}
	return out
}

// WindowView returns the rendered view of the open window at path.
func (d *Desktop) WindowView(path string) (*render.View, bool) {
	v, ok := d.views[path]
	return v, ok
}

// Run executes a shell line and mirrors it in the console.
func (d *Desktop) Run(line string) shell.Result {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return shell.Result{}
	}

	d.console.Log("$ " + trimmed)
	res := d.shell.Execute(line)
	if res.Clear {
		d.console.Clear()
		return res
	}
	for _, l := range res.Lines {
		d.console.Log(l)
	}
	if res.Err != nil {
		d.console.Error(res.Err.Error())
	}
	return res
}
