package desktop

import (
	"errors"

	"github.com/drakeos/drakeos/internal/events"
	"github.com/drakeos/drakeos/internal/render"
	"github.com/drakeos/drakeos/internal/vfs"
	"github.com/drakeos/drakeos/internal/vpath"
	"go.uber.org/zap"
)

// Entry is one icon in the folder grid.
type Entry struct {
	Name     string       `json:"name"`
	Path     string       `json:"path"`
	Type     vfs.NodeType `json:"type"`
	FileType string       `json:"fileType,omitempty"`
	AppType  string       `json:"appType,omitempty"`
	Icon     string       `json:"icon,omitempty"`
	Hidden   bool         `json:"hidden,omitempty"`
	Kind     render.Kind  `json:"kind,omitempty"`
	Open     bool         `json:"open,omitempty"`
}

// Listing is what the desktop shows for the current folder.
type Listing struct {
	Path        string        `json:"path"`
	Title       string        `json:"title"`
	ShowHidden  bool          `json:"showHidden"`
	Breadcrumbs []vpath.Crumb `json:"breadcrumbs"`
	Entries     []Entry       `json:"entries"`
}

// Navigate shows the folder at path. Absent paths and files are refused
// with a console error and the current folder is kept.
func (d *Desktop) Navigate(path string) error {
	p := vpath.Normalize(path)
	node := d.tree.GetNode(p)
	switch {
	case node == nil:
		d.console.Error("Path not found: " + path)
		return vfs.PathError("navigate", p, vfs.ErrNotFound)
	case !node.IsFolder():
		d.console.Error("Not a folder: " + path)
		return vfs.PathError("navigate", p, vfs.ErrNotAFolder)
	}

	d.current = p
	d.console.Log("cd " + p)
	d.bus.Publish(events.Event{Type: events.TypeNavigate, Path: p})
	return nil
}

// GoUp navigates to the parent of the current folder.
func (d *Desktop) GoUp() error {
	return d.Navigate(vpath.Parent(d.current))
}

// GoHome navigates to the home folder.
func (d *Desktop) GoHome() error {
	return d.Navigate(d.cfg.Home)
}

// ToggleHidden flips hidden-entry visibility and refreshes the folder.
func (d *Desktop) ToggleHidden() bool {
	d.showHidden = !d.showHidden
	if d.showHidden {
		d.console.System("show hidden files")
	} else {
		d.console.System("hide hidden files")
	}
	d.bus.Publish(events.Event{Type: events.TypeHidden, Payload: d.showHidden})

	if err := d.Navigate(d.current); err != nil {
		d.logger.Debug("refresh failed", zap.String("path", d.current), zap.Error(err))
	}
	return d.showHidden
}

// View lists the current folder.
func (d *Desktop) View() Listing {
	children := d.tree.ListChildren(d.current, d.showHidden)
	entries := make([]Entry, 0, len(children))
	for _, c := range children {
		e := Entry{
			Name:     c.Name,
			Path:     c.Path,
			Type:     c.Type,
			FileType: c.FileType,
			AppType:  c.AppType,
			Icon:     c.Icon,
			Hidden:   c.IsHidden(),
		}
		if !c.IsFolder() {
			e.Kind = render.Select(c)
			e.Open = d.windows.IsOpen(c.Path)
		}
		entries = append(entries, e)
	}
	return Listing{
		Path:        d.current,
		Title:       d.Title(),
		ShowHidden:  d.showHidden,
		Breadcrumbs: vpath.Breadcrumbs(d.current),
		Entries:     entries,
	}
}

// Activate handles a click on path: folders are entered, files opened.
func (d *Desktop) Activate(path string) error {
	p := vpath.Normalize(path)
	node := d.tree.GetNode(p)
	if node == nil {
		d.console.Error("Path not found: " + path)
		return vfs.PathError("activate", p, vfs.ErrNotFound)
	}
	if node.IsFolder() {
		return d.Navigate(p)
	}
	_, err := d.OpenFile(node)
	return err
}

// OpenPath opens the file at path in a window.
func (d *Desktop) OpenPath(path string) error {
	p := vpath.Normalize(path)
	node := d.tree.GetNode(p)
	switch {
	case node == nil:
		return vfs.PathError("open", p, vfs.ErrNotFound)
	case node.IsFolder():
		return vfs.PathError("open", p, vfs.ErrIsAFolder)
	}
	_, err := d.OpenFile(node)
	return err
}

// OpenMusicPlayer opens the audio app.
func (d *Desktop) OpenMusicPlayer() error {
	node := d.tree.GetNode(d.cfg.MusicPlayer)
	if node == nil || node.IsFolder() {
		d.console.Error("Music player not found")
		return vfs.PathError("open", d.cfg.MusicPlayer, vfs.ErrNotFound)
	}
	_, err := d.OpenFile(node)
	return err
}

// IsNotFound reports whether err means the path is absent.
func IsNotFound(err error) bool {
	return errors.Is(err, vfs.ErrNotFound)
}

// IsTypeMismatch reports whether err means a folder/file mismatch.
func IsTypeMismatch(err error) bool {
	return errors.Is(err, vfs.ErrNotAFolder) || errors.Is(err, vfs.ErrIsAFolder)
}
