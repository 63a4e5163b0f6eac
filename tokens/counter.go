// Package tokens provides token-count estimation and per-model context
// limits, used for the pre-flight check before a prompt is sent.
package tokens

import "unicode/utf8"

// DefaultCharsPerToken is the default character-to-token ratio.
// Approximately 4 characters equals 1 token for English text.
const DefaultCharsPerToken = 4.0

// DefaultReservedPercent is the share of a model's context window reserved
// for the response when checking whether a prompt fits.
const DefaultReservedPercent = 10

// Counter estimates token counts for text.
type Counter interface {
	// Count estimates the number of tokens in the given text.
	Count(text string) int

	// FitsInLimit returns true if the text fits within the token limit.
	FitsInLimit(text string, limit int) bool
}

// EstimatingCounter uses a character-to-token ratio for estimation. Exact
// counts depend on the backend's tokenizer; for a go/no-go pre-flight check
// the ~4 chars/token heuristic is plenty.
type EstimatingCounter struct {
	// CharsPerToken is the average characters per token.
	CharsPerToken float64
}

// NewEstimatingCounter creates a token counter with the default ratio.
func NewEstimatingCounter() *EstimatingCounter {
	return &EstimatingCounter{
		CharsPerToken: DefaultCharsPerToken,
	}
}

// Count estimates the number of tokens in the given text.
func (c *EstimatingCounter) Count(text string) int {
	runeCount := utf8.RuneCountInString(text)
	return int(float64(runeCount)/c.CharsPerToken + 0.5)
}

// FitsInLimit returns true if the text fits within the token limit.
func (c *EstimatingCounter) FitsInLimit(text string, limit int) bool {
	return c.Count(text) <= limit
}

// EstimateTokens is a convenience function using the default estimator.
func EstimateTokens(text string) int {
	return NewEstimatingCounter().Count(text)
}

// ModelLimits contains context window sizes for common models.
var ModelLimits = map[string]int{
	"gpt-4o":        128000,
	"gpt-4o-mini":   128000,
	"gpt-4-turbo":   128000,
	"gpt-4":         8192,
	"gpt-3.5-turbo": 16385,

	// Default fallback for unrecognized models.
	"default": 100000,
}

// GetModelLimit returns the context window for a model, or the default if
// the model is not listed.
func GetModelLimit(model string) int {
	if limit, ok := ModelLimits[model]; ok {
		return limit
	}
	return ModelLimits["default"]
}

// FitsModel reports whether text fits the model's context window after
// reserving DefaultReservedPercent for the response.
func FitsModel(text, model string) bool {
	limit := GetModelLimit(model)
	usable := limit - limit*DefaultReservedPercent/100
	return NewEstimatingCounter().FitsInLimit(text, usable)
}
