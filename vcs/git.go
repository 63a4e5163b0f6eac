// Package vcs integrates codemod with git. It shells out to the git binary
// rather than reimplementing the object model, so behavior matches whatever
// git the user has configured.
package vcs

import (
	"bytes"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// Sentinel errors for version-control preconditions.
var (
	// ErrGitNotFound is returned when no git binary is on PATH.
	ErrGitNotFound = errors.New("git binary not found in PATH")

	// ErrNotARepo is returned when the project directory is not inside a
	// git working tree.
	ErrNotARepo = errors.New("not a git repository")

	// ErrDirtyTree is returned when the working tree has uncommitted
	// changes.
	ErrDirtyTree = errors.New("working tree has uncommitted changes")
)

// Git runs git commands against one working directory.
type Git struct {
	dir string
}

// New returns a Git bound to dir, verifying the binary exists and dir is
// inside a repository.
func New(dir string) (*Git, error) {
	if _, err := exec.LookPath("git"); err != nil {
		return nil, ErrGitNotFound
	}

	g := &Git{dir: dir}
	out, err := g.run("rev-parse", "--is-inside-work-tree")
	if err != nil || strings.TrimSpace(out) != "true" {
		return nil, fmt.Errorf("%w: %s", ErrNotARepo, dir)
	}
	return g, nil
}

// Dir returns the bound working directory.
func (g *Git) Dir() string {
	return g.dir
}

// RequireClean returns ErrDirtyTree if the working tree has any staged,
// unstaged, or untracked changes.
func (g *Git) RequireClean() error {
	out, err := g.run("status", "--porcelain")
	if err != nil {
		return fmt.Errorf("git status: %w", err)
	}
	if strings.TrimSpace(out) != "" {
		return ErrDirtyTree
	}
	return nil
}

// CommitAll stages everything under the working directory and commits it
// with message. A no-op commit (nothing changed) is not an error.
func (g *Git) CommitAll(message string) error {
	if _, err := g.run("add", "-A"); err != nil {
		return fmt.Errorf("git add: %w", err)
	}

	out, err := g.run("status", "--porcelain")
	if err != nil {
		return fmt.Errorf("git status: %w", err)
	}
	if strings.TrimSpace(out) == "" {
		return nil
	}

	if _, err := g.run("commit", "-m", message); err != nil {
		return fmt.Errorf("git commit: %w", err)
	}
	return nil
}

// Head returns the abbreviated hash of the current commit.
func (g *Git) Head() (string, error) {
	out, err := g.run("rev-parse", "--short", "HEAD")
	if err != nil {
		return "", fmt.Errorf("git rev-parse: %w", err)
	}
	return strings.TrimSpace(out), nil
}

// run executes one git command in the bound directory and returns combined
// stdout; stderr is folded into the error on failure.
func (g *Git) run(args ...string) (string, error) {
	cmd := exec.Command("git", args...)
	cmd.Dir = g.dir

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			msg = err.Error()
		}
		return "", fmt.Errorf("git %s: %s", args[0], msg)
	}
	return stdout.String(), nil
}
