package parser

import (
	"errors"
	"math/rand"
	"strings"
	"testing"

	"github.com/codemodkit/codemod/fileset"
)

// =============================================================================
// Recovery Extraction Tests
// =============================================================================

func TestExtract_BareObject(t *testing.T) {
	fs, err := Extract(`{"files":[{"filepath":"hello.txt","code":"hello world"}]}`)
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if len(fs.Files) != 1 {
		t.Fatalf("got %d files, want 1", len(fs.Files))
	}
	if fs.Files[0].Path != "hello.txt" || fs.Files[0].Content != "hello world" {
		t.Errorf("got %+v", fs.Files[0])
	}
}

func TestExtract_WrappedInProse(t *testing.T) {
	response := `Sure! Here is the change you asked for:

{"files": [{"filepath": "src/app.py", "code": "print('hi')\n"}]}

Let me know if you need anything else.`

	fs, err := Extract(response)
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if fs.Files[0].Path != "src/app.py" {
		t.Errorf("Path = %q", fs.Files[0].Path)
	}
}

func TestExtract_MarkdownFence(t *testing.T) {
	response := "```json\n{\"files\":[{\"filepath\":\"a.txt\",\"code\":\"a\"}]}\n```"

	fs, err := Extract(response)
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if len(fs.Files) != 1 {
		t.Errorf("got %d files", len(fs.Files))
	}
}

// Content containing braces must survive the first-{/last-} slicing because
// the last '}' of the response is still the payload's own closing brace.
func TestExtract_BracesInContent(t *testing.T) {
	response := `prose {"files":[{"filepath":"m.go","code":"func main() {}\n"}]}`

	fs, err := Extract(response)
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if fs.Files[0].Content != "func main() {}\n" {
		t.Errorf("Content = %q", fs.Files[0].Content)
	}
}

func TestExtract_ParseFailures(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{"empty", ""},
		{"no braces", "I could not produce a change."},
		{"truncated", `Sure! {"files": [`},
		{"only open brace", "{"},
		{"close before open", "} nothing {"},
		{"wrong shape", `{"answer": 42}`},
		{"files not array", `{"files": "nope"}`},
		{"empty files", `{"files": []}`},
		{"record without path", `{"files":[{"code":"x"}]}`},
		{"trailing garbage inside", `{"files":[{"filepath":"a","code":"b"}] extra}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Extract(tt.text)
			if !errors.Is(err, ErrParseFailure) {
				t.Errorf("Extract(%q) error = %v, want ErrParseFailure", tt.text, err)
			}
		})
	}
}

// Extract must never panic, whatever bytes arrive.
func TestExtract_ArbitraryInput(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 500; i++ {
		n := rng.Intn(256)
		b := make([]byte, n)
		for j := range b {
			b[j] = byte(rng.Intn(256))
		}
		// Bias toward brace-heavy inputs.
		if i%3 == 0 {
			b = append([]byte("{{}"), b...)
			b = append(b, '}')
		}

		fs, err := Extract(string(b))
		if err == nil {
			if verr := fs.Validate(); verr != nil {
				t.Fatalf("Extract returned invalid set without error: %v", verr)
			}
		}
	}
}

// parse(serialize(fs)) == fs for any valid file set.
func TestExtract_SerializeIdentity(t *testing.T) {
	original := &fileset.FileSet{Files: []fileset.FileRecord{
		{Path: "hello.txt", Content: "hello world"},
		{Path: "nested/dir/file.py", Content: "x = '}{'\n"},
		{Path: "empty.txt", Content: ""},
	}}

	data, err := original.Marshal()
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	got, err := Extract("noise before " + string(data) + " noise after")
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if len(got.Files) != len(original.Files) {
		t.Fatalf("got %d files, want %d", len(got.Files), len(original.Files))
	}
	for i := range got.Files {
		if got.Files[i] != original.Files[i] {
			t.Errorf("file %d = %+v, want %+v", i, got.Files[i], original.Files[i])
		}
	}
}

func TestExtract_LargeContent(t *testing.T) {
	big := strings.Repeat("line of code\n", 10000)
	fs := &fileset.FileSet{Files: []fileset.FileRecord{{Path: "big.txt", Content: big}}}
	data, _ := fs.Marshal()

	got, err := Extract(string(data))
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if got.Files[0].Content != big {
		t.Error("large content mangled")
	}
}
