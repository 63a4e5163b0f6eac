package fileset

import (
	"encoding/json"
	"errors"
	"path/filepath"
	"testing"
)

func TestFileRecord_UnmarshalCanonical(t *testing.T) {
	var r FileRecord
	if err := json.Unmarshal([]byte(`{"filepath":"a/b.go","code":"package b\n"}`), &r); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if r.Path != "a/b.go" {
		t.Errorf("Path = %q, want %q", r.Path, "a/b.go")
	}
	if r.Content != "package b\n" {
		t.Errorf("Content = %q", r.Content)
	}
}

func TestFileRecord_UnmarshalAlternateKeys(t *testing.T) {
	var r FileRecord
	if err := json.Unmarshal([]byte(`{"path":"x.txt","content":"hi"}`), &r); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if r.Path != "x.txt" || r.Content != "hi" {
		t.Errorf("got %+v", r)
	}
}

func TestFileRecord_UnmarshalEmptyCode(t *testing.T) {
	// An explicitly empty body is valid: the model may truncate a file.
	var r FileRecord
	if err := json.Unmarshal([]byte(`{"filepath":"empty.txt","code":""}`), &r); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if r.Content != "" {
		t.Errorf("Content = %q, want empty", r.Content)
	}
}

func TestFileSet_Validate(t *testing.T) {
	tests := []struct {
		name    string
		fs      *FileSet
		wantErr error
	}{
		{"nil set", nil, ErrEmpty},
		{"no files", &FileSet{}, ErrEmpty},
		{"blank path", &FileSet{Files: []FileRecord{{Path: "  "}}}, ErrNoPath},
		{"ok", &FileSet{Files: []FileRecord{{Path: "a.txt", Content: "x"}}}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.fs.Validate()
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestResolve_Confinement(t *testing.T) {
	root := t.TempDir()

	tests := []struct {
		name    string
		path    string
		wantErr bool
	}{
		{"relative inside", "src/main.go", false},
		{"dot slash", "./hello.txt", false},
		{"parent escape", "../outside.txt", true},
		{"nested escape", "a/../../outside.txt", true},
		{"absolute inside", filepath.Join(root, "ok.txt"), false},
		{"absolute outside", filepath.Join(filepath.Dir(root), "bad.txt"), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Resolve(root, tt.path)
			if tt.wantErr {
				if !errors.Is(err, ErrPathEscape) {
					t.Fatalf("Resolve(%q) err = %v, want ErrPathEscape", tt.path, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Resolve(%q) err = %v", tt.path, err)
			}
			rel, err := filepath.Rel(root, got)
			if err != nil || rel == ".." {
				t.Errorf("Resolve(%q) = %q, not inside root", tt.path, got)
			}
		})
	}
}

func TestFileSet_MarshalRoundTrip(t *testing.T) {
	fs := &FileSet{Files: []FileRecord{
		{Path: "hello.txt", Content: "hello world"},
		{Path: "src/app.py", Content: "print('hi')\n"},
	}}

	data, err := fs.Marshal()
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	var got FileSet
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if len(got.Files) != 2 || got.Files[0] != fs.Files[0] || got.Files[1] != fs.Files[1] {
		t.Errorf("round trip mismatch: %+v", got)
	}
}
