package fs

import (
	"context"
	"os"
	"path/filepath"
)

// LocalSource reads the tree description from a file on disk.
type LocalSource struct {
	path string
}

// NewLocalSource creates a LocalSource for the given file.
func NewLocalSource(path string) *LocalSource {
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	return &LocalSource{path: path}
}

// Path returns the absolute path of the source file.
func (l *LocalSource) Path() string {
	return l.path
}

// Fetch reads the whole file.
func (l *LocalSource) Fetch(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return os.ReadFile(l.path)
}

func (l *LocalSource) String() string {
	return l.path
}
