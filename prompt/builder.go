package prompt

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/invopop/jsonschema"

	"github.com/codemodkit/codemod/fileset"
	"github.com/codemodkit/codemod/snapshot"
)

// ResponseExample is the required response shape, reproduced verbatim in the
// user message. The recovery parser assumes exactly this schema.
const ResponseExample = `{"files": [{"filepath": "relative/path/to/file", "code": "the complete file content"}]}`

const systemTemplate = `You are an expert {{language}} developer acting as an automated code modification assistant.
Apply the requested modification to the project files you are given.
Preserve all existing functionality unless the instruction explicitly says otherwise.
Return complete files only: never leave placeholders, ellipses, or unfinished sections.
If no project files are supplied, you may introduce new files from scratch.`

const userTemplate = `Instruction:
{{instruction}}

Respond with exactly one JSON object and no other text, in this shape:

{{example}}

The object must conform to this JSON schema:

{{schema}}

Every "code" value is the complete new content of that file, never a diff or a fragment.

Project files:

{{files}}`

// Builder constructs the system and user messages for a modification
// request.
type Builder struct {
	engine   *Engine
	language string
	schema   string
}

// NewBuilder creates a builder for the given source-language label. The
// label only flavors the system message; the wire schema is fixed.
func NewBuilder(language string) (*Builder, error) {
	schema, err := responseSchema()
	if err != nil {
		return nil, err
	}
	return &Builder{
		engine:   NewEngine(),
		language: language,
		schema:   schema,
	}, nil
}

// Build renders the system and user messages for one round trip. The same
// pair is reused verbatim across retries of a run.
func (b *Builder) Build(instruction string, snap *snapshot.Snapshot) (system, user string, err error) {
	system, err = b.engine.Render(systemTemplate, map[string]any{
		"language": b.language,
	})
	if err != nil {
		return "", "", fmt.Errorf("render system prompt: %w", err)
	}

	user, err = b.engine.Render(userTemplate, map[string]any{
		"instruction": instruction,
		"example":     ResponseExample,
		"schema":      b.schema,
		"files":       formatSnapshot(snap),
	})
	if err != nil {
		return "", "", fmt.Errorf("render user prompt: %w", err)
	}
	return system, user, nil
}

// formatSnapshot renders the captured files as path-headed blocks.
func formatSnapshot(snap *snapshot.Snapshot) string {
	if snap.Len() == 0 {
		return "(the project is currently empty)"
	}

	var sb strings.Builder
	for _, f := range snap.Files {
		sb.WriteString("--- ")
		sb.WriteString(f.Path)
		sb.WriteString(" ---\n")
		sb.WriteString(f.Content)
		if !strings.HasSuffix(f.Content, "\n") {
			sb.WriteByte('\n')
		}
		sb.WriteByte('\n')
	}
	return strings.TrimRight(sb.String(), "\n")
}

// responseSchema generates the JSON schema of the file set wire type.
func responseSchema() (string, error) {
	reflector := jsonschema.Reflector{
		Anonymous:      true,
		DoNotReference: true,
	}
	schema := reflector.Reflect(&fileset.FileSet{})

	data, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal response schema: %w", err)
	}
	return string(data), nil
}
