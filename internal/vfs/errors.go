package vfs

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound indicates a path is absent from the tree
	ErrNotFound = errors.New("no such file or directory")

	// ErrNotAFolder indicates an operation expected a folder and got a file
	ErrNotAFolder = errors.New("not a directory")

	// ErrIsAFolder indicates an operation expected a file and got a folder
	ErrIsAFolder = errors.New("is a directory")

	// ErrUnreadableContent indicates a file node carries no content payload
	ErrUnreadableContent = errors.New("cannot read file")

	// ErrLoadFailure indicates the tree source could not be fetched or parsed
	ErrLoadFailure = errors.New("filesystem load failed")
)

// Error wraps a tree error with the operation and the affected path.
type Error struct {
	Op   string // Operation that failed (e.g., "load", "navigate")
	Path string // Affected path
	Err  error  // Underlying error
}

func (e *Error) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// PathError is a shorthand for building an *Error.
func PathError(op, path string, err error) error {
	return &Error{Op: op, Path: path, Err: err}
}
