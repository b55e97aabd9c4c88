package fusefs

import (
	"context"
	"os"
	"syscall"
	"testing"

	"bazil.org/fuse"
	"github.com/drakeos/drakeos/internal/vfs"
)

const fuseTree = `{
  "path": "/", "type": "folder", "name": "",
  "children": [
    {"path": "/docs", "type": "folder", "name": "docs", "children": [
      {"path": "/docs/readme.md", "type": "file", "name": "readme.md", "content": "# Hi"},
      {"path": "/docs/.hidden", "type": "file", "name": ".hidden", "content": "x"},
      {"path": "/docs/site.link", "type": "file", "name": "site.link", "url": "https://example.com"}
    ]}
  ]
}`

func setupFS(t *testing.T) *FS {
	t.Helper()
	tree, err := vfs.Parse([]byte(fuseTree), vfs.Options{})
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	return New(tree, nil)
}

func TestLookupAndRead(t *testing.T) {
	f := setupFS(t)
	ctx := context.Background()

	root, _ := f.Root()
	docs, err := root.(*Dir).Lookup(ctx, "docs")
	if err != nil {
		t.Fatalf("Lookup docs failed: %v", err)
	}

	attr := &fuse.Attr{}
	if err := docs.Attr(ctx, attr); err != nil {
		t.Fatalf("Attr failed: %v", err)
	}
	if attr.Mode != os.ModeDir|0555 {
		t.Errorf("expected read-only directory mode, got %v", attr.Mode)
	}

	node, err := docs.(*Dir).Lookup(ctx, "readme.md")
	if err != nil {
		t.Fatalf("Lookup readme failed: %v", err)
	}
	file := node.(*File)
	if err := file.Attr(ctx, attr); err != nil {
		t.Fatalf("Attr failed: %v", err)
	}
	if attr.Mode != 0444 || attr.Size != 4 {
		t.Errorf("unexpected file attr mode=%v size=%d", attr.Mode, attr.Size)
	}
	data, err := file.ReadAll(ctx)
	if err != nil || string(data) != "# Hi" {
		t.Errorf("expected content, got %q (%v)", data, err)
	}

	if _, err := docs.(*Dir).Lookup(ctx, "missing"); err != syscall.ENOENT {
		t.Errorf("expected ENOENT, got %v", err)
	}
}

func TestReadDirListsHidden(t *testing.T) {
	f := setupFS(t)
	ctx := context.Background()

	dir := &Dir{fs: f, path: "/docs"}
	entries, err := dir.ReadDirAll(ctx)
	if err != nil {
		t.Fatalf("ReadDirAll failed: %v", err)
	}
	names := map[string]bool{}
	for _, e := range entries {
		names[e.Name] = true
	}
	for _, want := range []string{".", "..", "readme.md", ".hidden", "site.link"} {
		if !names[want] {
			t.Errorf("expected %s in listing", want)
		}
	}
}

func TestOpenRefusesWrites(t *testing.T) {
	f := setupFS(t)
	file := &File{fs: f, path: "/docs/readme.md"}

	_, err := file.Open(context.Background(), &fuse.OpenRequest{Flags: fuse.OpenWriteOnly}, &fuse.OpenResponse{})
	if err != syscall.EROFS {
		t.Errorf("expected EROFS, got %v", err)
	}
	h, err := file.Open(context.Background(), &fuse.OpenRequest{Flags: fuse.OpenReadOnly}, &fuse.OpenResponse{})
	if err != nil || h == nil {
		t.Errorf("expected read-only open to succeed, got %v", err)
	}
}

func TestLinkContentsAndSwap(t *testing.T) {
	f := setupFS(t)
	file := &File{fs: f, path: "/docs/site.link"}
	data, _ := file.ReadAll(context.Background())
	if string(data) != "https://example.com\n" {
		t.Errorf("expected url, got %q", data)
	}

	empty, _ := vfs.Parse([]byte(`{"path":"/","type":"folder","name":""}`), vfs.Options{})
	f.SetTree(empty)
	if _, err := file.ReadAll(context.Background()); err != syscall.ENOENT {
		t.Errorf("expected ENOENT after swap, got %v", err)
	}
}

func TestOpenDoesNotKeepCacheAcrossSwaps(t *testing.T) {
	f := setupFS(t)
	file := &File{fs: f, path: "/docs/readme.md"}

	resp := &fuse.OpenResponse{}
	if _, err := file.Open(context.Background(), &fuse.OpenRequest{Flags: fuse.OpenReadOnly}, resp); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Flags&fuse.OpenKeepCache != 0 {
		t.Errorf("expected no keep-cache flag, got %v", resp.Flags)
	}

	var a fuse.Attr
	if err := file.Attr(context.Background(), &a); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a.Valid <= 0 || a.Valid > attrValid {
		t.Errorf("expected attribute validity within %v, got %v", attrValid, a.Valid)
	}
}
