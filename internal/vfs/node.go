// Package vfs holds the in-memory virtual tree the desktop and the shell
// both read from. A Tree is built once from a serialized root node and is
// read-only afterwards.
package vfs

import (
	"encoding/json"
	"strings"
)

// NodeType discriminates folders from files.
type NodeType string

// Node types as they appear in the tree source.
const (
	TypeFolder NodeType = "folder"
	TypeFile   NodeType = "file"
)

// Node is one entry of the tree. The path is authoritative and fully
// qualified; children are owned by their parent.
type Node struct {
	Path   string   `json:"path"`
	Type   NodeType `json:"type"`
	Name   string   `json:"name"`
	Hidden bool     `json:"hidden,omitempty"`

	// File-only attributes
	FileType    string          `json:"fileType,omitempty"`
	AppType     string          `json:"appType,omitempty"`
	Content     string          `json:"content,omitempty"`
	Icon        string          `json:"icon,omitempty"`
	URL         string          `json:"url,omitempty"`
	Description string          `json:"description,omitempty"`
	Config      json.RawMessage `json:"config,omitempty"`

	Children []*Node `json:"children,omitempty"`
}

// IsFolder reports whether n is a folder.
func (n *Node) IsFolder() bool {
	return n != nil && n.Type == TypeFolder
}

// IsHidden reports whether n is hidden, either explicitly or by a leading
// dot in its name.
func (n *Node) IsHidden() bool {
	return n.Hidden || strings.HasPrefix(n.Name, ".")
}

// HasContent reports whether n carries a readable text payload.
func (n *Node) HasContent() bool {
	return n.Content != ""
}

// Extension returns the lowercase extension of the node name.
func (n *Node) Extension() string {
	return ExtensionOf(n.Name)
}

// ExtensionOf returns the lowercase text after the final "." of name, or ""
// when name has no dot.
func ExtensionOf(name string) string {
	i := strings.LastIndexByte(name, '.')
	if i < 0 {
		return ""
	}
	return strings.ToLower(name[i+1:])
}
