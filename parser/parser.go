package parser

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/codemodkit/codemod/fileset"
)

// ErrParseFailure is returned for any completion that does not contain a
// decodable file set. Callers should treat it as recoverable and retry the
// round trip.
var ErrParseFailure = errors.New("malformed completion payload")

// Parser extracts a file set from an LLM response.
type Parser struct{}

// New creates a response parser.
func New() *Parser {
	return &Parser{}
}

// Extract locates the candidate JSON object in text and decodes it as a
// file set. The candidate is the substring from the first '{' to the last
// '}' inclusive; everything around it is treated as commentary and ignored.
func (p *Parser) Extract(text string) (*fileset.FileSet, error) {
	candidate, err := p.candidate(text)
	if err != nil {
		return nil, err
	}

	var fs fileset.FileSet
	if err := json.Unmarshal([]byte(candidate), &fs); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParseFailure, err)
	}
	if err := fs.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParseFailure, err)
	}
	return &fs, nil
}

// candidate returns the first-'{' to last-'}' substring of text.
func (p *Parser) candidate(text string) (string, error) {
	start := strings.IndexByte(text, '{')
	end := strings.LastIndexByte(text, '}')
	if start < 0 || end < start {
		return "", fmt.Errorf("%w: no JSON object delimiters", ErrParseFailure)
	}
	return text[start : end+1], nil
}

// Extract is a convenience function using a default parser.
func Extract(text string) (*fileset.FileSet, error) {
	return New().Extract(text)
}
