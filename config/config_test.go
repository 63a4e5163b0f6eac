package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, "openai", cfg.Provider)
	assert.Equal(t, "https://api.openai.com", cfg.Endpoint)
	assert.Contains(t, cfg.Exclude, "node_modules")
	assert.Contains(t, cfg.Exclude, ".git")
	assert.Zero(t, cfg.MaxAttempts, "default retry policy is unbounded")
}

func TestLoad_TOML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "codemod.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
endpoint = "http://localhost:8080"
model = "gpt-4o-mini"
fallback_model = "gpt-4o"
language = "go"
git = true
max_attempts = 7
timeout = "90s"
exclude = ["node_modules", "zig-cache"]
`), 0o644))

	cfg, err := Load(path, dir)
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:8080", cfg.Endpoint)
	assert.Equal(t, "gpt-4o-mini", cfg.Model)
	assert.Equal(t, "gpt-4o", cfg.FallbackModel)
	assert.Equal(t, "go", cfg.Language)
	assert.True(t, cfg.Git)
	assert.Equal(t, 7, cfg.MaxAttempts)
	assert.Equal(t, 90*time.Second, time.Duration(cfg.Timeout))
	assert.Equal(t, []string{"node_modules", "zig-cache"}, cfg.Exclude)
}

func TestLoad_YAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "codemod.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
endpoint: http://localhost:9090
model: gpt-4o
language: rust
timeout: 45s
`), 0o644))

	cfg, err := Load(path, dir)
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:9090", cfg.Endpoint)
	assert.Equal(t, "rust", cfg.Language)
	assert.Equal(t, 45*time.Second, time.Duration(cfg.Timeout))
}

func TestLoad_SearchesDefaultNames(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".codemod.toml"), []byte(`model = "found"`), 0o644))

	cfg, err := Load("", dir)
	require.NoError(t, err)
	assert.Equal(t, "found", cfg.Model)
}

func TestLoad_NoFileUsesDefaults(t *testing.T) {
	cfg, err := Load("", t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, Default().Model, cfg.Model)
}

func TestLoad_ExplicitMissingFileFails(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.toml"), t.TempDir())
	assert.Error(t, err)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "codemod.toml")
	require.NoError(t, os.WriteFile(path, []byte(`model = "from-file"`), 0o644))

	t.Setenv("CODEMOD_MODEL", "from-env")
	t.Setenv("CODEMOD_GIT", "true")
	t.Setenv("CODEMOD_MAX_ATTEMPTS", "3")

	cfg, err := Load(path, dir)
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.Model)
	assert.True(t, cfg.Git)
	assert.Equal(t, 3, cfg.MaxAttempts)
}

func TestLoadFromEnv_APIKeyFallback(t *testing.T) {
	t.Setenv("CODEMOD_API_KEY", "")
	t.Setenv("OPENAI_API_KEY", "openai-key")

	cfg := Default()
	cfg.LoadFromEnv()
	assert.Equal(t, "openai-key", cfg.APIKey)

	t.Setenv("CODEMOD_API_KEY", "codemod-key")
	cfg = Default()
	cfg.LoadFromEnv()
	assert.Equal(t, "codemod-key", cfg.APIKey)
}

func TestValidate(t *testing.T) {
	valid := Default()
	valid.APIKey = "k"
	require.NoError(t, valid.Validate())

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"missing endpoint", func(c *Config) { c.Endpoint = "" }},
		{"missing model", func(c *Config) { c.Model = "" }},
		{"missing api key", func(c *Config) { c.APIKey = "" }},
		{"negative attempts", func(c *Config) { c.MaxAttempts = -1 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			cfg.APIKey = "k"
			tt.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestProviderConfig(t *testing.T) {
	cfg := Default()
	cfg.APIKey = "k"
	cfg.Timeout = Duration(time.Minute)

	pc := cfg.ProviderConfig()
	assert.Equal(t, cfg.Endpoint, pc.Endpoint)
	assert.Equal(t, "k", pc.APIKey)
	assert.Equal(t, time.Minute, pc.Timeout)
}
