package handler

import (
	"net/http"

	"github.com/drakeos/drakeos/internal/desktop"
	"github.com/drakeos/drakeos/internal/shell"
	"github.com/gin-gonic/gin"
)

// ShellRequest is one line typed at the prompt
type ShellRequest struct {
	Line string `json:"line"`
}

// ShellResponse is the outcome of a line plus the new prompt
type ShellResponse struct {
	shell.Result
	Error  string `json:"error,omitempty"`
	Prompt string `json:"prompt"`
	Path   string `json:"path"`
	// Desktop is the folder the desktop shows after the command
	Desktop string `json:"desktop"`
}

// ShellHandler handles shell requests
type ShellHandler struct {
	state *State
}

// NewShellHandler creates a new shell handler
func NewShellHandler(state *State) *ShellHandler {
	return &ShellHandler{state: state}
}

// Execute runs a command line
func (h *ShellHandler) Execute(c *gin.Context) {
	var req ShellRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "invalid request body",
		})
		return
	}

	h.state.with(c, func(d *desktop.Desktop) {
		res := d.Run(req.Line)
		resp := ShellResponse{
			Result:  res,
			Prompt:  d.Shell().Prompt(),
			Path:    d.Shell().Path(),
			Desktop: d.CurrentPath(),
		}
		if res.Err != nil {
			resp.Error = res.Err.Error()
		}
		c.JSON(http.StatusOK, resp)
	})
}

// GetHistory returns the command history
func (h *ShellHandler) GetHistory(c *gin.Context) {
	h.state.with(c, func(d *desktop.Desktop) {
		hist := d.Shell().History()
		c.JSON(http.StatusOK, gin.H{
			"entries": hist.Entries(),
			"cursor":  hist.Cursor(),
		})
	})
}

// HistoryUp recalls the previous command
func (h *ShellHandler) HistoryUp(c *gin.Context) {
	h.state.with(c, func(d *desktop.Desktop) {
		line, ok := d.Shell().History().Up()
		c.JSON(http.StatusOK, gin.H{
			"line":  line,
			"moved": ok,
		})
	})
}

// HistoryDown recalls the next command; past the newest it yields ""
func (h *ShellHandler) HistoryDown(c *gin.Context) {
	h.state.with(c, func(d *desktop.Desktop) {
		c.JSON(http.StatusOK, gin.H{
			"line": d.Shell().History().Down(),
		})
	})
}
