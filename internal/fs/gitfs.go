package fs

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
)

// GitSource reads the tree description from a file at a git ref (branch,
// tag, or commit) without touching the working copy.
type GitSource struct {
	repoPath string
	ref      string
	file     string
}

// NewGitSource creates a GitSource reading file from ref in the repository at repoPath.
func NewGitSource(repoPath, ref, file string) *GitSource {
	return &GitSource{repoPath: repoPath, ref: ref, file: strings.TrimPrefix(file, "/")}
}

func (g *GitSource) git(ctx context.Context, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, "git", append([]string{"-C", g.repoPath}, args...)...)
	cmd.Env = append(os.Environ(), "GIT_TERMINAL_PROMPT=0")
	out, err := cmd.Output()
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			stderr := strings.TrimSpace(string(exitErr.Stderr))
			if strings.Contains(stderr, "does not exist") || strings.Contains(stderr, "not exist") {
				return nil, os.ErrNotExist
			}
			return nil, fmt.Errorf("git %s: %s", strings.Join(args, " "), stderr)
		}
		return nil, err
	}
	return out, nil
}

// Fetch returns the file contents at the configured ref.
func (g *GitSource) Fetch(ctx context.Context) ([]byte, error) {
	if g.file == "" {
		return nil, fmt.Errorf("git source: no file given")
	}
	return g.git(ctx, "show", g.ref+":"+g.file)
}

// Revision resolves the ref to a commit hash.
func (g *GitSource) Revision(ctx context.Context) (string, error) {
	out, err := g.git(ctx, "rev-parse", "--verify", g.ref)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(out)), nil
}

func (g *GitSource) String() string {
	return fmt.Sprintf("git:%s@%s:%s", g.repoPath, g.ref, g.file)
}
