package handler

import (
	"net/http"

	"github.com/drakeos/drakeos/internal/desktop"
	"github.com/gin-gonic/gin"
)

// DesktopResponse is the folder view plus the open windows.
type DesktopResponse struct {
	desktop.Listing
	Windows []desktop.OpenWindow `json:"windows"`
}

// DesktopHandler handles navigation requests
type DesktopHandler struct {
	state *State
}

// NewDesktopHandler creates a new desktop handler
func NewDesktopHandler(state *State) *DesktopHandler {
	return &DesktopHandler{state: state}
}

func snapshot(d *desktop.Desktop) DesktopResponse {
	return DesktopResponse{Listing: d.View(), Windows: d.OpenWindows()}
}

// GetDesktop returns the current folder view
func (h *DesktopHandler) GetDesktop(c *gin.Context) {
	h.state.with(c, func(d *desktop.Desktop) {
		c.JSON(http.StatusOK, snapshot(d))
	})
}

// Navigate shows another folder
func (h *DesktopHandler) Navigate(c *gin.Context) {
	path, ok := bindPath(c)
	if !ok {
		return
	}
	h.state.with(c, func(d *desktop.Desktop) {
		if err := d.Navigate(path); err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, snapshot(d))
	})
}

// GoUp shows the parent folder
func (h *DesktopHandler) GoUp(c *gin.Context) {
	h.state.with(c, func(d *desktop.Desktop) {
		if err := d.GoUp(); err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, snapshot(d))
	})
}

// GoHome shows the home folder
func (h *DesktopHandler) GoHome(c *gin.Context) {
	h.state.with(c, func(d *desktop.Desktop) {
		if err := d.GoHome(); err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, snapshot(d))
	})
}

// ToggleHidden flips hidden-entry visibility
func (h *DesktopHandler) ToggleHidden(c *gin.Context) {
	h.state.with(c, func(d *desktop.Desktop) {
		d.ToggleHidden()
		c.JSON(http.StatusOK, snapshot(d))
	})
}

// Activate enters a folder or opens a file, like a click on its icon
func (h *DesktopHandler) Activate(c *gin.Context) {
	path, ok := bindPath(c)
	if !ok {
		return
	}
	h.state.with(c, func(d *desktop.Desktop) {
		if err := d.Activate(path); err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, snapshot(d))
	})
}

// OpenMusicPlayer opens the audio app from the taskbar
func (h *DesktopHandler) OpenMusicPlayer(c *gin.Context) {
	h.state.with(c, func(d *desktop.Desktop) {
		if err := d.OpenMusicPlayer(); err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, snapshot(d))
	})
}

// GetConsole returns the activity log
func (h *DesktopHandler) GetConsole(c *gin.Context) {
	h.state.with(c, func(d *desktop.Desktop) {
		c.JSON(http.StatusOK, gin.H{
			"lines": d.Console().Lines(),
		})
	})
}
