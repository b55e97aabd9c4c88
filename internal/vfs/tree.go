package vfs

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/drakeos/drakeos/internal/vpath"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// Source fetches the serialized tree description.
type Source interface {
	Fetch(ctx context.Context) ([]byte, error)
}

// Options tunes how a tree is built.
type Options struct {
	// Language selects the collation used to order siblings by name.
	// The zero value means English.
	Language language.Tag
}

type entry struct {
	node   *Node
	parent *Node
}

// Tree is a loaded, immutable virtual tree with a path index.
type Tree struct {
	root   *Node
	index  map[string]entry
	sorted map[string][]*Node // folder path -> children in listing order
}

// Load fetches the tree description from src and builds a Tree. On any
// failure no tree is returned and the error wraps ErrLoadFailure.
func Load(ctx context.Context, src Source, opts Options) (*Tree, error) {
	data, err := src.Fetch(ctx)
	if err != nil {
		return nil, PathError("load", "", fmt.Errorf("%w: fetch: %v", ErrLoadFailure, err))
	}
	return Parse(data, opts)
}

// Parse decodes a serialized root node and builds a Tree.
func Parse(data []byte, opts Options) (*Tree, error) {
	var root Node
	if err := json.Unmarshal(data, &root); err != nil {
		return nil, PathError("load", "", fmt.Errorf("%w: parse: %v", ErrLoadFailure, err))
	}
	return Build(&root, opts)
}

// Build indexes root in a single traversal. Every child path must equal
// its parent path joined with its name; a violation fails the build.
func Build(root *Node, opts Options) (*Tree, error) {
	if root == nil {
		return nil, PathError("load", "", fmt.Errorf("%w: empty tree", ErrLoadFailure))
	}
	if root.Path == "" {
		root.Path = vpath.Root
	}
	root.Path = vpath.Normalize(root.Path)

	t := &Tree{
		root:   root,
		index:  make(map[string]entry),
		sorted: make(map[string][]*Node),
	}
	if err := t.indexNode(root, nil); err != nil {
		return nil, err
	}

	tag := opts.Language
	if tag == language.Und {
		tag = language.English
	}
	col := collate.New(tag)
	for path, e := range t.index {
		if !e.node.IsFolder() {
			continue
		}
		children := make([]*Node, 0, len(e.node.Children))
		for _, c := range e.node.Children {
			if c != nil {
				children = append(children, c)
			}
		}
		sort.SliceStable(children, func(i, j int) bool {
			a, b := children[i], children[j]
			if a.IsFolder() != b.IsFolder() {
				return a.IsFolder()
			}
			return col.CompareString(a.Name, b.Name) < 0
		})
		t.sorted[path] = children
	}
	return t, nil
}

func (t *Tree) indexNode(n, parent *Node) error {
	switch n.Type {
	case TypeFolder:
	case TypeFile:
		if len(n.Children) > 0 {
			return PathError("load", n.Path, fmt.Errorf("%w: file has children", ErrLoadFailure))
		}
	default:
		return PathError("load", n.Path, fmt.Errorf("%w: unknown node type %q", ErrLoadFailure, n.Type))
	}

	if parent != nil {
		if n.Name == "" {
			return PathError("load", n.Path, fmt.Errorf("%w: node has no name", ErrLoadFailure))
		}
		want := vpath.Join(parent.Path, n.Name)
		if vpath.Normalize(n.Path) != want {
			return PathError("load", n.Path, fmt.Errorf("%w: path does not match parent %q and name %q", ErrLoadFailure, parent.Path, n.Name))
		}
		n.Path = want
	}
	if _, dup := t.index[n.Path]; dup {
		return PathError("load", n.Path, fmt.Errorf("%w: duplicate path", ErrLoadFailure))
	}
	t.index[n.Path] = entry{node: n, parent: parent}

	for _, child := range n.Children {
		if child == nil {
			continue
		}
		if err := t.indexNode(child, n); err != nil {
			return err
		}
	}
	return nil
}

// Root returns the root node. Queries on a nil tree behave like queries
// on an empty one.
func (t *Tree) Root() *Node {
	if t == nil {
		return nil
	}
	return t.root
}

// Count returns the number of indexed nodes.
func (t *Tree) Count() int {
	if t == nil {
		return 0
	}
	return len(t.index)
}

// Exists reports whether path is in the tree.
func (t *Tree) Exists(path string) bool {
	if t == nil {
		return false
	}
	_, ok := t.index[path]
	return ok
}

// IsFolder reports whether path is a folder in the tree.
func (t *Tree) IsFolder(path string) bool {
	return t.GetNode(path).IsFolder()
}

// GetNode returns the node at path, or nil.
func (t *Tree) GetNode(path string) *Node {
	if t == nil {
		return nil
	}
	e, ok := t.index[path]
	if !ok {
		return nil
	}
	return e.node
}

// GetParent returns the parent of the node at path, or nil for the root
// and for absent paths.
func (t *Tree) GetParent(path string) *Node {
	if t == nil {
		return nil
	}
	e, ok := t.index[path]
	if !ok {
		return nil
	}
	return e.parent
}

// ListChildren returns the children of the folder at path, folders first
// and then by collated name. Hidden children are dropped unless
// includeHidden is set. Absent paths and files yield an empty slice.
func (t *Tree) ListChildren(path string, includeHidden bool) []*Node {
	if t == nil {
		return []*Node{}
	}
	children, ok := t.sorted[path]
	if !ok {
		return []*Node{}
	}
	out := make([]*Node, 0, len(children))
	for _, c := range children {
		if !includeHidden && c.IsHidden() {
			continue
		}
		out = append(out, c)
	}
	return out
}

// Walk visits every node depth first, parents before children. Returning
// false from fn skips the node's children.
func (t *Tree) Walk(fn func(n, parent *Node) bool) {
	if t == nil {
		return
	}
	var walk func(n, parent *Node)
	walk = func(n, parent *Node) {
		if !fn(n, parent) {
			return
		}
		for _, c := range t.sorted[n.Path] {
			walk(c, n)
		}
	}
	walk(t.root, nil)
}
