// Package config holds the run configuration for codemod: where the
// completion API lives, which model to use, how the project is scanned, and
// how the retry loop behaves.
//
// Configuration is resolved in three layers, later layers winning:
// built-in defaults, a TOML or YAML config file, and CODEMOD_* environment
// variables. Command-line flags are applied on top by the CLI.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/codemodkit/codemod/provider"
)

// DefaultExcludes lists directory names pruned from every scan.
var DefaultExcludes = []string{
	".git",
	".hg",
	".svn",
	"node_modules",
	"vendor",
	"dist",
	"build",
	"target",
	"__pycache__",
	".venv",
	".idea",
	".vscode",
}

// Duration wraps time.Duration with config-file text forms ("90s", "5m").
type Duration time.Duration

// UnmarshalText implements encoding.TextUnmarshaler (used by TOML).
func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = Duration(parsed)
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(unmarshal func(any) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	return d.UnmarshalText([]byte(s))
}

// Config is the full run configuration.
type Config struct {
	// --- Completion API ---

	// Provider is the completion backend name.
	Provider string `toml:"provider" yaml:"provider"`

	// Endpoint is the base URL of the completion API.
	Endpoint string `toml:"endpoint" yaml:"endpoint"`

	// APIKey is the bearer token. Usually supplied via CODEMOD_API_KEY or
	// OPENAI_API_KEY rather than the config file.
	APIKey string `toml:"api_key" yaml:"api_key"`

	// Model is the model identifier to request.
	Model string `toml:"model" yaml:"model"`

	// FallbackModel, when set, is escalated to after EscalateAfter
	// consecutive malformed completions.
	FallbackModel string `toml:"fallback_model" yaml:"fallback_model"`

	// Timeout bounds one completion round trip. 0 uses the provider
	// default.
	Timeout Duration `toml:"timeout" yaml:"timeout"`

	// MaxTokens limits response length. 0 uses the backend default.
	MaxTokens int `toml:"max_tokens" yaml:"max_tokens"`

	// Temperature controls response randomness.
	Temperature float64 `toml:"temperature" yaml:"temperature"`

	// --- Prompt ---

	// Language is the source-language label inserted into the system
	// prompt.
	Language string `toml:"language" yaml:"language"`

	// --- Project scan ---

	// Exclude lists directory names pruned entirely from the scan.
	Exclude []string `toml:"exclude" yaml:"exclude"`

	// --- Retry loop ---

	// MaxAttempts caps full-pipeline retries. 0 retries indefinitely,
	// matching the tool's historical behavior.
	MaxAttempts int `toml:"max_attempts" yaml:"max_attempts"`

	// EscalateAfter is the number of consecutive malformed completions
	// before switching to FallbackModel.
	EscalateAfter int `toml:"escalate_after" yaml:"escalate_after"`

	// --- Version control ---

	// Git refuses to run against a dirty working tree and commits applied
	// changes on success.
	Git bool `toml:"git" yaml:"git"`

	// --- Flag-only settings (not read from config files) ---

	// DryRun prints the proposed file set instead of writing it.
	DryRun bool `toml:"-" yaml:"-"`

	// Verbose enables debug logging.
	Verbose bool `toml:"-" yaml:"-"`
}

// Default returns the built-in configuration.
func Default() Config {
	exclude := make([]string, len(DefaultExcludes))
	copy(exclude, DefaultExcludes)

	return Config{
		Provider:      "openai",
		Endpoint:      "https://api.openai.com",
		Model:         "gpt-4o",
		Language:      "python",
		Exclude:       exclude,
		EscalateAfter: 3,
		Timeout:       Duration(provider.DefaultTimeout),
	}
}

// LoadFromEnv overrides fields from CODEMOD_* environment variables.
// CODEMOD_API_KEY falls back to OPENAI_API_KEY.
func (c *Config) LoadFromEnv() {
	if v := os.Getenv("CODEMOD_PROVIDER"); v != "" {
		c.Provider = v
	}
	if v := os.Getenv("CODEMOD_ENDPOINT"); v != "" {
		c.Endpoint = v
	}
	if v := os.Getenv("CODEMOD_API_KEY"); v != "" {
		c.APIKey = v
	} else if v := os.Getenv("OPENAI_API_KEY"); v != "" && c.APIKey == "" {
		c.APIKey = v
	}
	if v := os.Getenv("CODEMOD_MODEL"); v != "" {
		c.Model = v
	}
	if v := os.Getenv("CODEMOD_FALLBACK_MODEL"); v != "" {
		c.FallbackModel = v
	}
	if v := os.Getenv("CODEMOD_LANGUAGE"); v != "" {
		c.Language = v
	}
	if v := os.Getenv("CODEMOD_GIT"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.Git = b
		}
	}
	if v := os.Getenv("CODEMOD_MAX_ATTEMPTS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.MaxAttempts = n
		}
	}
	if v := os.Getenv("CODEMOD_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.Timeout = Duration(d)
		}
	}
}

// Validate checks that the configuration can drive a run.
func (c *Config) Validate() error {
	if c.Provider == "" {
		return fmt.Errorf("provider is required")
	}
	if c.Endpoint == "" {
		return fmt.Errorf("endpoint is required")
	}
	if c.Model == "" {
		return fmt.Errorf("model is required")
	}
	if c.APIKey == "" {
		return fmt.Errorf("api_key is required (set CODEMOD_API_KEY or OPENAI_API_KEY)")
	}
	if c.MaxAttempts < 0 {
		return fmt.Errorf("max_attempts must be >= 0, got %d", c.MaxAttempts)
	}
	if c.Timeout < 0 {
		return fmt.Errorf("timeout must be >= 0, got %v", time.Duration(c.Timeout))
	}
	return nil
}

// ProviderConfig converts the run configuration into a backend client
// configuration.
func (c *Config) ProviderConfig() provider.Config {
	return provider.Config{
		Provider:    c.Provider,
		Endpoint:    c.Endpoint,
		APIKey:      c.APIKey,
		Model:       c.Model,
		Timeout:     time.Duration(c.Timeout),
		MaxTokens:   c.MaxTokens,
		Temperature: c.Temperature,
	}
}
