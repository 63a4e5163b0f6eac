// Package fileset defines the file-edit payload exchanged with the model.
//
// A FileSet is the trusted, validated form of the model's answer: a list of
// complete file bodies keyed by project-relative paths. It is also the shape
// the prompt instructs the model to produce, so the JSON tags here are the
// wire schema.
package fileset

import (
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// Sentinel errors for file set validation.
var (
	// ErrEmpty is returned when a file set contains no files.
	ErrEmpty = errors.New("file set contains no files")

	// ErrNoPath is returned when a record has an empty path.
	ErrNoPath = errors.New("file record has no path")

	// ErrPathEscape is returned when a record's path resolves outside the
	// project root.
	ErrPathEscape = errors.New("file path escapes project root")
)

// FileRecord is one complete file: a path and its full content.
// Content is always the whole file body, never a diff.
type FileRecord struct {
	Path    string `json:"filepath"`
	Content string `json:"code"`
}

// UnmarshalJSON accepts both the canonical {filepath, code} spelling and the
// {path, content} spelling some models produce.
func (r *FileRecord) UnmarshalJSON(data []byte) error {
	var raw struct {
		Filepath string  `json:"filepath"`
		Code     *string `json:"code"`
		Path     string  `json:"path"`
		Content  *string `json:"content"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	r.Path = raw.Filepath
	if r.Path == "" {
		r.Path = raw.Path
	}

	switch {
	case raw.Code != nil:
		r.Content = *raw.Code
	case raw.Content != nil:
		r.Content = *raw.Content
	default:
		r.Content = ""
	}
	return nil
}

// FileSet is the parsed set of file edits proposed by the model.
type FileSet struct {
	Files []FileRecord `json:"files"`
}

// Validate checks the structural invariants of the file set: at least one
// file, and a non-empty path on every record.
func (fs *FileSet) Validate() error {
	if fs == nil || len(fs.Files) == 0 {
		return ErrEmpty
	}
	for i, f := range fs.Files {
		if strings.TrimSpace(f.Path) == "" {
			return fmt.Errorf("%w (record %d)", ErrNoPath, i)
		}
	}
	return nil
}

// Paths returns the record paths in order.
func (fs *FileSet) Paths() []string {
	paths := make([]string, len(fs.Files))
	for i, f := range fs.Files {
		paths[i] = f.Path
	}
	return paths
}

// Marshal serializes the file set in the canonical wire shape.
func (fs *FileSet) Marshal() ([]byte, error) {
	return json.Marshal(fs)
}

// Resolve resolves a record path against root and enforces that the result
// stays within root. Relative paths are joined to root; absolute paths are
// accepted only when already inside it.
func Resolve(root, path string) (string, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return "", fmt.Errorf("resolve root: %w", err)
	}

	target := path
	if !filepath.IsAbs(target) {
		target = filepath.Join(absRoot, target)
	}
	target = filepath.Clean(target)

	rel, err := filepath.Rel(absRoot, target)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %s", ErrPathEscape, path)
	}
	return target, nil
}
