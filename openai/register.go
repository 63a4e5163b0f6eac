package openai

import "github.com/codemodkit/codemod/provider"

func init() {
	provider.Register("openai", newFromProviderConfig)
}

// newFromProviderConfig is the factory registered with the provider
// registry.
func newFromProviderConfig(cfg provider.Config) (provider.Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return New(cfg), nil
}
