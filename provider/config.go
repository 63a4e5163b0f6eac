package provider

import (
	"fmt"
	"time"
)

// DefaultTimeout bounds a single completion round trip.
const DefaultTimeout = 5 * time.Minute

// Config holds the settings needed to construct a backend client.
type Config struct {
	// Provider is the backend name to construct. Required.
	Provider string `json:"provider" yaml:"provider" toml:"provider"`

	// Endpoint is the base URL of the completion API, without the
	// /v1/chat/completions path.
	Endpoint string `json:"endpoint" yaml:"endpoint" toml:"endpoint"`

	// APIKey is the bearer token sent with every request.
	APIKey string `json:"api_key" yaml:"api_key" toml:"api_key"`

	// Model is the model identifier to request.
	Model string `json:"model" yaml:"model" toml:"model"`

	// Timeout is the maximum duration of one completion request.
	// 0 uses DefaultTimeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout" toml:"timeout"`

	// MaxTokens limits response length. 0 uses the backend default.
	MaxTokens int `json:"max_tokens" yaml:"max_tokens" toml:"max_tokens"`

	// Temperature controls response randomness.
	Temperature float64 `json:"temperature" yaml:"temperature" toml:"temperature"`
}

// Validate checks that the configuration can construct a client.
func (c *Config) Validate() error {
	if c.Provider == "" {
		return fmt.Errorf("provider is required")
	}
	if c.Model == "" {
		return fmt.Errorf("model is required")
	}
	if c.Timeout < 0 {
		return fmt.Errorf("timeout must be >= 0, got %v", c.Timeout)
	}
	return nil
}

// WithModel returns a copy of the config with the specified model.
func (c Config) WithModel(model string) Config {
	c.Model = model
	return c
}

// WithEndpoint returns a copy of the config with the specified endpoint.
func (c Config) WithEndpoint(endpoint string) Config {
	c.Endpoint = endpoint
	return c
}
