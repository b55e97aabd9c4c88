package handler

import (
	"net/http"

	"github.com/drakeos/drakeos/internal/desktop"
	"github.com/drakeos/drakeos/internal/render"
	"github.com/drakeos/drakeos/internal/vfs"
	"github.com/drakeos/drakeos/internal/vpath"
	"github.com/gin-gonic/gin"
)

// NodeResponse describes a single node without its subtree.
type NodeResponse struct {
	Node     *vfs.Node   `json:"node"`
	Kind     render.Kind `json:"kind,omitempty"`
	Children []ChildInfo `json:"children,omitempty"`
}

// ChildInfo is one entry of a folder's listing.
type ChildInfo struct {
	Name   string       `json:"name"`
	Path   string       `json:"path"`
	Type   vfs.NodeType `json:"type"`
	Hidden bool         `json:"hidden,omitempty"`
}

// TreeHandler handles tree API requests
type TreeHandler struct {
	state *State
}

// NewTreeHandler creates a new tree handler
func NewTreeHandler(state *State) *TreeHandler {
	return &TreeHandler{state: state}
}

// GetTree returns the whole tree as loaded
func (h *TreeHandler) GetTree(c *gin.Context) {
	h.state.with(c, func(d *desktop.Desktop) {
		c.JSON(http.StatusOK, gin.H{
			"count": d.Tree().Count(),
			"root":  d.Tree().Root(),
		})
	})
}

// GetNode returns one node; folders include their full child listing,
// hidden entries included.
func (h *TreeHandler) GetNode(c *gin.Context) {
	p := vpath.Normalize(c.Param("path"))

	h.state.with(c, func(d *desktop.Desktop) {
		node := d.Tree().GetNode(p)
		if node == nil {
			writeError(c, vfs.PathError("stat", p, vfs.ErrNotFound))
			return
		}

		flat := *node
		flat.Children = nil
		resp := NodeResponse{Node: &flat}
		if node.IsFolder() {
			for _, child := range d.Tree().ListChildren(p, true) {
				resp.Children = append(resp.Children, ChildInfo{
					Name:   child.Name,
					Path:   child.Path,
					Type:   child.Type,
					Hidden: child.IsHidden(),
				})
			}
		} else {
			resp.Kind = render.Select(node)
		}
		c.JSON(http.StatusOK, resp)
	})
}
