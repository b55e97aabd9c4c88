// Package handler exposes the desktop over HTTP and WebSocket.
package handler

import (
	"errors"
	"net/http"
	"sync"

	"github.com/drakeos/drakeos/internal/desktop"
	"github.com/drakeos/drakeos/internal/vfs"
	"github.com/gin-gonic/gin"
)

// errNotLoaded is reported until the first tree has been loaded.
var errNotLoaded = errors.New("filesystem not loaded")

// State owns the desktop and serializes every access to it. Handlers only
// touch the desktop inside Do.
type State struct {
	mu   sync.Mutex
	desk *desktop.Desktop
}

// NewState creates an empty state; requests answer 503 until Set is called.
func NewState() *State {
	return &State{}
}

// Set installs the desktop.
func (s *State) Set(d *desktop.Desktop) {
	s.mu.Lock()
	s.desk = d
	s.mu.Unlock()
}

// Loaded reports whether a desktop is installed.
func (s *State) Loaded() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.desk != nil
}

// Do runs fn with exclusive access to the desktop.
func (s *State) Do(fn func(d *desktop.Desktop)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.desk == nil {
		return errNotLoaded
	}
	fn(s.desk)
	return nil
}

// Replace swaps in a freshly loaded tree, installing a desktop through
// build when none exists yet.
func (s *State) Replace(tree *vfs.Tree, build func(*vfs.Tree) *desktop.Desktop) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.desk == nil {
		s.desk = build(tree)
		return
	}
	s.desk.Replace(tree)
}

// with runs fn under the state lock or answers 503.
func (s *State) with(c *gin.Context, fn func(d *desktop.Desktop)) {
	if err := s.Do(fn); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"error": err.Error(),
		})
	}
}

// writeError maps desktop errors to status codes.
func writeError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case desktop.IsNotFound(err):
		status = http.StatusNotFound
	case desktop.IsTypeMismatch(err):
		status = http.StatusBadRequest
	case errors.Is(err, vfs.ErrUnreadableContent):
		status = http.StatusUnprocessableEntity
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

// pathRequest is the body of the path-addressed POST endpoints.
type pathRequest struct {
	Path string `json:"path" binding:"required"`
}

func bindPath(c *gin.Context) (string, bool) {
	var req pathRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "path is required",
		})
		return "", false
	}
	return req.Path, true
}
