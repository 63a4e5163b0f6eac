package apply

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codemodkit/codemod/fileset"
	"github.com/codemodkit/codemod/snapshot"
)

func TestFiles_WritesNewFiles(t *testing.T) {
	root := t.TempDir()
	fs := &fileset.FileSet{Files: []fileset.FileRecord{
		{Path: "main.py", Content: "print('hi')\n"},
		{Path: "pkg/util.py", Content: "def util():\n    pass\n"},
	}}

	require.NoError(t, Files(fs, root))

	got, err := os.ReadFile(filepath.Join(root, "main.py"))
	require.NoError(t, err)
	assert.Equal(t, "print('hi')\n", string(got))

	got, err = os.ReadFile(filepath.Join(root, "pkg", "util.py"))
	require.NoError(t, err)
	assert.Equal(t, "def util():\n    pass\n", string(got))
}

func TestFiles_OverwritesExisting(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "app.py")
	require.NoError(t, os.WriteFile(path, []byte("old"), 0o644))

	fs := &fileset.FileSet{Files: []fileset.FileRecord{
		{Path: "app.py", Content: "new"},
	}}
	require.NoError(t, Files(fs, root))

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "new", string(got))
}

func TestFiles_EmptyContentTruncates(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "emptied.py")
	require.NoError(t, os.WriteFile(path, []byte("full of code"), 0o644))

	fs := &fileset.FileSet{Files: []fileset.FileRecord{
		{Path: "emptied.py", Content: ""},
	}}
	require.NoError(t, Files(fs, root))

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Empty(t, string(got))
}

func TestFiles_RejectsEscapingPath(t *testing.T) {
	root := t.TempDir()
	fs := &fileset.FileSet{Files: []fileset.FileRecord{
		{Path: "../outside.py", Content: "nope"},
	}}

	err := Files(fs, root)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrWriteFailure)
	assert.NoFileExists(t, filepath.Join(filepath.Dir(root), "outside.py"))
}

func TestFiles_RejectsInvalidSet(t *testing.T) {
	err := Files(&fileset.FileSet{}, t.TempDir())
	assert.ErrorIs(t, err, ErrWriteFailure)
}

func TestFiles_LeavesNoTempFiles(t *testing.T) {
	root := t.TempDir()
	fs := &fileset.FileSet{Files: []fileset.FileRecord{
		{Path: "a.py", Content: "a"},
		{Path: "b.py", Content: "b"},
	}}
	require.NoError(t, Files(fs, root))

	entries, err := os.ReadDir(root)
	require.NoError(t, err)
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	assert.ElementsMatch(t, []string{"a.py", "b.py"}, names)
}

// Applying a file set and scanning the project back must reproduce the same
// paths and contents.
func TestFiles_ScanRoundTrip(t *testing.T) {
	root := t.TempDir()
	fs := &fileset.FileSet{Files: []fileset.FileRecord{
		{Path: "app/main.py", Content: "import util\n\nutil.run()\n"},
		{Path: "app/util.py", Content: "def run():\n    print(42)\n"},
		{Path: "README.md", Content: "# demo\n"},
	}}
	require.NoError(t, Files(fs, root))

	snap, err := snapshot.Scan(root, nil)
	require.NoError(t, err)
	require.Len(t, snap.Files, len(fs.Files))

	want := map[string]string{}
	for _, r := range fs.Files {
		want[r.Path] = r.Content
	}
	for _, r := range snap.Files {
		assert.Equal(t, want[r.Path], r.Content, "content mismatch for %s", r.Path)
	}
}
