package model

import "strings"

// Pricing holds per-million-token pricing for a model, in USD.
type Pricing struct {
	InputPerMillion  float64
	OutputPerMillion float64
}

// Prices contains published pricing for common hosted models. Unlisted
// models estimate at zero cost.
var Prices = map[string]Pricing{
	"gpt-4o":        {InputPerMillion: 2.50, OutputPerMillion: 10.00},
	"gpt-4o-mini":   {InputPerMillion: 0.15, OutputPerMillion: 0.60},
	"gpt-4-turbo":   {InputPerMillion: 10.00, OutputPerMillion: 30.00},
	"gpt-4":         {InputPerMillion: 30.00, OutputPerMillion: 60.00},
	"gpt-3.5-turbo": {InputPerMillion: 0.50, OutputPerMillion: 1.50},
}

// EstimateCost returns the estimated USD cost of a request. Model matching
// falls back to the longest listed prefix, so dated variants
// ("gpt-4o-2024-08-06") price like their family.
func EstimateCost(model string, inputTokens, outputTokens int) float64 {
	pricing, ok := Prices[model]
	if !ok {
		match := ""
		for name := range Prices {
			if strings.HasPrefix(model, name) && len(name) > len(match) {
				match = name
			}
		}
		if match == "" {
			return 0
		}
		pricing = Prices[match]
	}

	return float64(inputTokens)/1e6*pricing.InputPerMillion +
		float64(outputTokens)/1e6*pricing.OutputPerMillion
}
