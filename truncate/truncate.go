// Package truncate provides token-aware text truncation. The runner uses it
// to excerpt malformed completions into attempt-failure logs without dumping
// an entire response to the terminal.
package truncate

import (
	"strings"

	"github.com/codemodkit/codemod/tokens"
)

// Strategy defines where content is removed from.
type Strategy int

const (
	// FromEnd removes content from the end (default).
	FromEnd Strategy = iota

	// FromMiddle removes content from the middle, keeping start and end.
	FromMiddle
)

// DefaultEndSuffix marks end truncation.
const DefaultEndSuffix = "..."

// DefaultMiddleSuffix marks middle truncation.
const DefaultMiddleSuffix = " ...[truncated]... "

// Truncator truncates text to fit within token limits.
type Truncator struct {
	counter  tokens.Counter
	strategy Strategy
	suffix   string
}

// New creates a truncator with the given strategy.
func New(strategy Strategy) *Truncator {
	suffix := DefaultEndSuffix
	if strategy == FromMiddle {
		suffix = DefaultMiddleSuffix
	}
	return &Truncator{
		counter:  tokens.NewEstimatingCounter(),
		strategy: strategy,
		suffix:   suffix,
	}
}

// WithSuffix sets a custom truncation marker.
func (t *Truncator) WithSuffix(suffix string) *Truncator {
	t.suffix = suffix
	return t
}

// Truncate reduces the text to fit within the token limit. Returns the
// truncated text and whether truncation occurred.
func (t *Truncator) Truncate(text string, maxTokens int) (string, bool) {
	if t.counter.FitsInLimit(text, maxTokens) {
		return text, false
	}

	if t.strategy == FromMiddle {
		return t.truncateMiddle(text, maxTokens), true
	}
	return t.truncateEnd(text, maxTokens), true
}

// truncateEnd keeps the longest prefix that fits, found by binary search.
func (t *Truncator) truncateEnd(text string, maxTokens int) string {
	target := maxTokens - t.counter.Count(t.suffix)
	if target <= 0 {
		return t.suffix
	}

	runes := []rune(text)
	low, high := 0, len(runes)
	for low < high {
		mid := (low + high + 1) / 2
		if t.counter.FitsInLimit(string(runes[:mid]), target) {
			low = mid
		} else {
			high = mid - 1
		}
	}
	if low == 0 {
		return t.suffix
	}
	return string(runes[:low]) + t.suffix
}

// truncateMiddle keeps roughly half the budget from each end.
func (t *Truncator) truncateMiddle(text string, maxTokens int) string {
	target := maxTokens - t.counter.Count(t.suffix)
	if target <= 0 {
		return t.suffix
	}

	runes := []rune(text)
	half := target / 2

	keep := t.runesForTokens(runes, half)
	endStart := len(runes) - keep
	if endStart < keep {
		endStart = keep
	}

	var sb strings.Builder
	sb.WriteString(string(runes[:keep]))
	sb.WriteString(t.suffix)
	if endStart < len(runes) {
		sb.WriteString(string(runes[endStart:]))
	}
	return sb.String()
}

// runesForTokens returns how many leading runes fit within maxTokens.
func (t *Truncator) runesForTokens(runes []rune, maxTokens int) int {
	low, high := 0, len(runes)
	for low < high {
		mid := (low + high + 1) / 2
		if t.counter.FitsInLimit(string(runes[:mid]), maxTokens) {
			low = mid
		} else {
			high = mid - 1
		}
	}
	return low
}

// Excerpt is a convenience for log lines: a middle-out truncation that
// preserves both the start of a malformed completion (the prose preamble)
// and its tail (where truncation damage usually is).
func Excerpt(text string, maxTokens int) string {
	out, _ := New(FromMiddle).Truncate(strings.ReplaceAll(text, "\n", `\n`), maxTokens)
	return out
}
