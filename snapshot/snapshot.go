// Package snapshot captures the ordered set of project source files sent to
// the model at the start of a run.
package snapshot

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"unicode/utf8"

	"github.com/codemodkit/codemod/fileset"
)

// Snapshot is the project state captured at the start of a run. It is built
// fresh per invocation and never mutated afterwards.
type Snapshot struct {
	// Root is the absolute directory the snapshot was taken from.
	Root string

	// Files holds the captured records in traversal order.
	Files []fileset.FileRecord
}

// Scan walks root recursively and returns a snapshot of every regular,
// UTF-8-decodable file. Any directory whose bare name exactly matches an
// entry in exclude is pruned entirely. Symlinks are not followed, and
// non-text files are skipped rather than failing the scan. Any read error
// aborts the whole snapshot; there is no partial-snapshot fallback.
func Scan(root string, exclude []string) (*Snapshot, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", root, err)
	}

	excluded := make(map[string]bool, len(exclude))
	for _, name := range exclude {
		excluded[name] = true
	}

	snap := &Snapshot{Root: absRoot}

	err = filepath.WalkDir(absRoot, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != absRoot && excluded[d.Name()] {
				return filepath.SkipDir
			}
			return nil
		}
		// Symlinks (including symlinked directories) are skipped to avoid
		// cycles and surprise escapes from the tree.
		if !d.Type().IsRegular() {
			return nil
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		if !utf8.Valid(data) {
			return nil
		}

		rel, err := filepath.Rel(absRoot, path)
		if err != nil {
			return err
		}
		snap.Files = append(snap.Files, fileset.FileRecord{
			Path:    filepath.ToSlash(rel),
			Content: string(data),
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", root, err)
	}
	return snap, nil
}

// Len returns the number of captured files.
func (s *Snapshot) Len() int {
	if s == nil {
		return 0
	}
	return len(s.Files)
}
