// Package vpath provides pure helpers for slash-separated virtual paths.
//
// All paths handled here are POSIX style and rooted at "/". Nothing in this
// package touches the host filesystem.
package vpath

import "strings"

// Root is the path of the tree root.
const Root = "/"

// Crumb is one breadcrumb entry: a segment name and the cumulative path
// leading to it.
type Crumb struct {
	Name string `json:"name"`
	Path string `json:"path"`
}

// Segments splits a path on "/" and drops empty segments.
func Segments(path string) []string {
	parts := strings.Split(path, "/")
	segs := make([]string, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			segs = append(segs, p)
		}
	}
	return segs
}

// Parent returns the parent of path. Paths with fewer than two segments
// have "/" as their parent.
func Parent(path string) string {
	segs := Segments(path)
	if len(segs) <= 1 {
		return Root
	}
	return "/" + strings.Join(segs[:len(segs)-1], "/")
}

// Base returns the last segment of path, or "" for the root.
func Base(path string) string {
	segs := Segments(path)
	if len(segs) == 0 {
		return ""
	}
	return segs[len(segs)-1]
}

// IsAbs reports whether path starts at the root.
func IsAbs(path string) bool {
	return strings.HasPrefix(path, "/")
}

// Normalize collapses repeated separators and strips a trailing separator
// unless the path is the root. The empty path normalizes to the root.
// "." and ".." segments are kept as they are; use Resolve to walk them.
func Normalize(path string) string {
	if path == "" {
		return Root
	}
	var b strings.Builder
	b.Grow(len(path))
	prevSlash := false
	for i := 0; i < len(path); i++ {
		c := path[i]
		if c == '/' {
			if prevSlash {
				continue
			}
			prevSlash = true
		} else {
			prevSlash = false
		}
		b.WriteByte(c)
	}
	out := b.String()
	if len(out) > 1 && strings.HasSuffix(out, "/") {
		out = out[:len(out)-1]
	}
	return out
}

// Resolve resolves relative against base. An absolute relative path is
// returned normalized. Otherwise ".." pops a segment (clamping at the root),
// "." and empty segments are skipped and anything else is pushed.
func Resolve(base, relative string) string {
	if IsAbs(relative) {
		return Normalize(relative)
	}
	segs := Segments(base)
	for _, seg := range strings.Split(relative, "/") {
		switch seg {
		case "", ".":
		case "..":
			if len(segs) > 0 {
				segs = segs[:len(segs)-1]
			}
		default:
			segs = append(segs, seg)
		}
	}
	return "/" + strings.Join(segs, "/")
}

// Join appends name to dir and normalizes the result.
func Join(dir, name string) string {
	return Normalize(dir + "/" + name)
}

// Breadcrumbs returns the cumulative crumbs of path, root excluded.
func Breadcrumbs(path string) []Crumb {
	segs := Segments(path)
	crumbs := make([]Crumb, 0, len(segs))
	current := ""
	for _, seg := range segs {
		current += "/" + seg
		crumbs = append(crumbs, Crumb{Name: seg, Path: current})
	}
	return crumbs
}
