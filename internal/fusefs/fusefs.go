// Package fusefs exports a virtual tree as a read-only FUSE filesystem.
// Folders appear as directories, files expose their text payload.
package fusefs

import (
	"context"
	"os"
	"sync"
	"syscall"
	"time"

	"bazil.org/fuse"
	bazilfs "bazil.org/fuse/fs"
	"github.com/drakeos/drakeos/internal/vfs"
	"github.com/drakeos/drakeos/internal/vpath"
	"go.uber.org/zap"
)

const (
	dirMode  = os.ModeDir | 0555
	fileMode = 0444

	// attrValid bounds how long the kernel trusts attributes after SetTree.
	attrValid = time.Second
)

// FS is the filesystem root. The tree can be swapped while mounted.
type FS struct {
	mu     sync.RWMutex
	tree   *vfs.Tree
	mtime  time.Time
	uid    uint32
	gid    uint32
	logger *zap.Logger
}

// New creates a filesystem over tree.
func New(tree *vfs.Tree, logger *zap.Logger) *FS {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FS{
		tree:   tree,
		mtime:  time.Now(),
		uid:    uint32(os.Getuid()),
		gid:    uint32(os.Getgid()),
		logger: logger,
	}
}

// SetTree replaces the exported tree.
func (f *FS) SetTree(tree *vfs.Tree) {
	f.mu.Lock()
	f.tree = tree
	f.mtime = time.Now()
	f.mu.Unlock()
}

func (f *FS) snapshot() (*vfs.Tree, time.Time) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.tree, f.mtime
}

// Root implements the bazilfs.FS interface.
func (f *FS) Root() (bazilfs.Node, error) {
	return &Dir{fs: f, path: vpath.Root}, nil
}

func (f *FS) node(path string) bazilfs.Node {
	tree, _ := f.snapshot()
	n := tree.GetNode(path)
	switch {
	case n == nil:
		return nil
	case n.IsFolder():
		return &Dir{fs: f, path: path}
	default:
		return &File{fs: f, path: path}
	}
}

func (f *FS) fill(a *fuse.Attr, mode os.FileMode, size int) {
	_, mtime := f.snapshot()
	a.Valid = attrValid
	a.Mode = mode
	a.Size = uint64(size)
	a.Mtime = mtime
	a.Atime = mtime
	a.Ctime = mtime
	a.Uid = f.uid
	a.Gid = f.gid
	a.BlockSize = 4096
	a.Blocks = uint64((size + 511) / 512)
}

// Dir is a folder node.
type Dir struct {
	fs   *FS
	path string
}

// Attr implements the Node interface.
func (d *Dir) Attr(_ context.Context, a *fuse.Attr) error {
	tree, _ := d.fs.snapshot()
	if !tree.IsFolder(d.path) {
		return syscall.ENOENT
	}
	d.fs.fill(a, dirMode, 0)
	return nil
}

// Lookup implements the NodeStringLookuper interface.
func (d *Dir) Lookup(_ context.Context, name string) (bazilfs.Node, error) {
	child := d.fs.node(vpath.Join(d.path, name))
	if child == nil {
		return nil, syscall.ENOENT
	}
	return child, nil
}

// ReadDirAll implements the HandleReadDirAller interface. Hidden entries
// are listed like any other.
func (d *Dir) ReadDirAll(_ context.Context) ([]fuse.Dirent, error) {
	tree, _ := d.fs.snapshot()
	if !tree.IsFolder(d.path) {
		return nil, syscall.ENOENT
	}

	entries := []fuse.Dirent{
		{Name: ".", Type: fuse.DT_Dir},
		{Name: "..", Type: fuse.DT_Dir},
	}
	for _, c := range tree.ListChildren(d.path, true) {
		typ := fuse.DT_File
		if c.IsFolder() {
			typ = fuse.DT_Dir
		}
		entries = append(entries, fuse.Dirent{Name: c.Name, Type: typ})
	}
	d.fs.logger.Debug("readdir", zap.String("path", d.path), zap.Int("entries", len(entries)-2))
	return entries, nil
}

// File is a file node.
type File struct {
	fs   *FS
	path string
}

// Attr implements the Node interface.
func (f *File) Attr(_ context.Context, a *fuse.Attr) error {
	data, err := f.data()
	if err != nil {
		return err
	}
	f.fs.fill(a, fileMode, len(data))
	return nil
}

// Open implements the NodeOpener interface, refusing write access. Page
// cache is not kept across opens since the tree may be swapped.
func (f *File) Open(_ context.Context, req *fuse.OpenRequest, _ *fuse.OpenResponse) (bazilfs.Handle, error) {
	if !req.Flags.IsReadOnly() {
		return nil, syscall.EROFS
	}
	return f, nil
}

// ReadAll implements the HandleReadAller interface.
func (f *File) ReadAll(_ context.Context) ([]byte, error) {
	return f.data()
}

func (f *File) data() ([]byte, error) {
	tree, _ := f.fs.snapshot()
	n := tree.GetNode(f.path)
	if n == nil || n.IsFolder() {
		return nil, syscall.ENOENT
	}
	return Contents(n), nil
}

// Contents is what a file reads as: its text payload, else the link URL,
// else its raw app config.
func Contents(n *vfs.Node) []byte {
	switch {
	case n.Content != "":
		return []byte(n.Content)
	case n.URL != "":
		return []byte(n.URL + "\n")
	case len(n.Config) > 0:
		return append([]byte(nil), n.Config...)
	}
	return nil
}
