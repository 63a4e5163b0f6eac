// Package apply materializes a parsed file set to disk.
//
// Application is not transactional across files: a failure partway through
// leaves earlier files written. Each individual file is all-or-nothing, though;
// content goes to a temp file in the target directory first and is renamed
// over the destination, so a crash or error never leaves a half-written
// file.
package apply

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/codemodkit/codemod/fileset"
)

// ErrWriteFailure wraps any failure to materialize a file set. Callers
// should treat it as recoverable and retry the round trip.
var ErrWriteFailure = errors.New("failed to write file set")

// Files writes every record in the set, resolving paths against root and
// creating missing parent directories. The first failure stops application
// and is returned; files already written stay in place.
func Files(fs *fileset.FileSet, root string) error {
	if err := fs.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrWriteFailure, err)
	}

	for _, record := range fs.Files {
		target, err := fileset.Resolve(root, record.Path)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrWriteFailure, err)
		}
		if err := writeFile(target, record.Content); err != nil {
			return fmt.Errorf("%w: %s: %v", ErrWriteFailure, record.Path, err)
		}
	}
	return nil
}

// writeFile overwrites (or creates) target with content, all-or-nothing.
func writeFile(target, content string) error {
	dir := filepath.Dir(target)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".codemod-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	if _, err := tmp.WriteString(content); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, target); err != nil {
		os.Remove(tmpName)
		return err
	}
	return nil
}
