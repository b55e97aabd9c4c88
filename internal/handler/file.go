package handler

import (
	"net/http"

	"github.com/drakeos/drakeos/internal/desktop"
	"github.com/drakeos/drakeos/internal/vfs"
	"github.com/drakeos/drakeos/internal/vpath"
	"github.com/drakeos/drakeos/internal/window"
	"github.com/gin-gonic/gin"
)

// GeometryRequest moves or resizes a window. Viewport, when set, updates
// the area drags are clamped to.
type GeometryRequest struct {
	Path     string           `json:"path" binding:"required"`
	X        int              `json:"x"`
	Y        int              `json:"y"`
	Width    int              `json:"width"`
	Height   int              `json:"height"`
	Mode     string           `json:"mode"` // drag, resize
	Viewport *window.Viewport `json:"viewport,omitempty"`
}

// WindowHandler handles file window requests
type WindowHandler struct {
	state *State
}

// NewWindowHandler creates a new window handler
func NewWindowHandler(state *State) *WindowHandler {
	return &WindowHandler{state: state}
}

// ListWindows returns the open windows back to front
func (h *WindowHandler) ListWindows(c *gin.Context) {
	h.state.with(c, func(d *desktop.Desktop) {
		c.JSON(http.StatusOK, gin.H{
			"windows": d.OpenWindows(),
		})
	})
}

// OpenWindow opens a file; an open file is only brought to front
func (h *WindowHandler) OpenWindow(c *gin.Context) {
	path, ok := bindPath(c)
	if !ok {
		return
	}
	p := vpath.Normalize(path)

	h.state.with(c, func(d *desktop.Desktop) {
		node := d.Tree().GetNode(p)
		if node == nil {
			writeError(c, vfs.PathError("open", p, vfs.ErrNotFound))
			return
		}
		w, err := d.OpenFile(node)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, w)
	})
}

// CloseWindow closes the window for a path
func (h *WindowHandler) CloseWindow(c *gin.Context) {
	p := vpath.Normalize(c.Param("path"))

	h.state.with(c, func(d *desktop.Desktop) {
		if !d.Close(p) {
			c.JSON(http.StatusNotFound, gin.H{
				"error": "window not open: " + p,
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"message": "window closed",
			"path":    p,
		})
	})
}

// CloseAll closes every window
func (h *WindowHandler) CloseAll(c *gin.Context) {
	h.state.with(c, func(d *desktop.Desktop) {
		d.CloseAll()
		c.JSON(http.StatusOK, gin.H{
			"message": "all windows closed",
		})
	})
}

// Focus brings a window to front
func (h *WindowHandler) Focus(c *gin.Context) {
	path, ok := bindPath(c)
	if !ok {
		return
	}
	p := vpath.Normalize(path)

	h.state.with(c, func(d *desktop.Desktop) {
		if !d.Focus(p) {
			c.JSON(http.StatusNotFound, gin.H{
				"error": "window not open: " + p,
			})
			return
		}
		sess, _ := d.Windows().Get(p)
		c.JSON(http.StatusOK, sess)
	})
}

// UpdateGeometry applies a drag or resize
func (h *WindowHandler) UpdateGeometry(c *gin.Context) {
	var req GeometryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "path is required",
		})
		return
	}

	var mode window.Mode
	switch req.Mode {
	case "", "drag":
		mode = window.Drag
	case "resize":
		mode = window.Resize
	default:
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "mode must be drag or resize",
		})
		return
	}
	p := vpath.Normalize(req.Path)

	h.state.with(c, func(d *desktop.Desktop) {
		if req.Viewport != nil {
			d.SetViewport(*req.Viewport)
		}
		sess, ok := d.UpdateGeometry(p, window.Rect{X: req.X, Y: req.Y, Width: req.Width, Height: req.Height}, mode)
		if !ok {
			c.JSON(http.StatusNotFound, gin.H{
				"error": "window not open: " + p,
			})
			return
		}
		c.JSON(http.StatusOK, sess)
	})
}

// GetView returns the rendered content of an open window
func (h *WindowHandler) GetView(c *gin.Context) {
	p := vpath.Normalize(c.Param("path"))

	h.state.with(c, func(d *desktop.Desktop) {
		view, ok := d.WindowView(p)
		if !ok {
			c.JSON(http.StatusNotFound, gin.H{
				"error": "window not open: " + p,
			})
			return
		}
		c.JSON(http.StatusOK, view)
	})
}
