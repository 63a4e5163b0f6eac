// Package model provides model escalation and cost estimation.
//
// Escalation is the runner's answer to a model that keeps producing
// malformed file sets: after a configurable number of consecutive parse
// failures, switch to the next (more capable) model in the chain and keep
// retrying there.
package model

// EscalationChain defines the order of models to try.
type EscalationChain struct {
	// Models in ascending order of capability.
	Models []string

	// After is the number of consecutive failures on one model before
	// escalating to the next. Values below 1 are treated as 1.
	After int
}

// NewChain builds a chain from a primary model and an optional fallback.
// An empty fallback yields a single-model chain (no escalation).
func NewChain(primary, fallback string, after int) *EscalationChain {
	models := []string{primary}
	if fallback != "" && fallback != primary {
		models = append(models, fallback)
	}
	return &EscalationChain{Models: models, After: after}
}

// Pick returns the model to use given the number of consecutive parse
// failures so far. Callers detect an escalation by comparing successive
// picks.
func (e *EscalationChain) Pick(failures int) string {
	if len(e.Models) == 0 {
		return ""
	}

	after := e.After
	if after < 1 {
		after = 1
	}

	idx := failures / after
	if idx >= len(e.Models) {
		idx = len(e.Models) - 1
	}
	return e.Models[idx]
}

// Highest returns the most capable model in the chain.
func (e *EscalationChain) Highest() string {
	if len(e.Models) == 0 {
		return ""
	}
	return e.Models[len(e.Models)-1]
}
