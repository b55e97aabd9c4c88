// Package fs provides the sources a tree description is fetched from:
// a local file, a file at a git ref, an HTTP URL or an S3 object.
package fs

import (
	"context"
	"fmt"
	"net/url"
	"strings"
)

// Source fetches the raw tree description.
type Source interface {
	Fetch(ctx context.Context) ([]byte, error)
	String() string
}

// ParseSource builds a Source from a URI.
//
//	/srv/data/filesystem.json                     local file
//	file:///srv/data/filesystem.json              local file
//	git:///srv/site?ref=main&path=data/fs.json    file at a git ref
//	https://example.com/data/filesystem.json      HTTP(S)
//	s3://bucket/data/filesystem.json              S3 object
func ParseSource(uri string) (Source, error) {
	if uri == "" {
		return nil, fmt.Errorf("empty source")
	}
	if !strings.Contains(uri, "://") {
		return NewLocalSource(uri), nil
	}

	u, err := url.Parse(uri)
	if err != nil {
		return nil, fmt.Errorf("invalid source %q: %w", uri, err)
	}

	switch u.Scheme {
	case "file":
		return NewLocalSource(u.Path), nil
	case "git":
		q := u.Query()
		ref := q.Get("ref")
		if ref == "" {
			ref = "HEAD"
		}
		file := q.Get("path")
		if file == "" {
			return nil, fmt.Errorf("git source %q: missing path parameter", uri)
		}
		return NewGitSource(u.Path, ref, file), nil
	case "http", "https":
		return NewHTTPSource(uri, nil), nil
	case "s3":
		key := strings.TrimPrefix(u.Path, "/")
		if u.Host == "" || key == "" {
			return nil, fmt.Errorf("s3 source %q: expected s3://bucket/key", uri)
		}
		return NewS3Source(u.Host, key, nil), nil
	default:
		return nil, fmt.Errorf("unsupported source scheme %q", u.Scheme)
	}
}
