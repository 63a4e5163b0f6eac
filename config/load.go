package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// Default config file names, searched in order in the working directory.
var configFileNames = []string{
	"codemod.toml",
	".codemod.toml",
	"codemod.yaml",
	".codemod.yaml",
}

// Load resolves the configuration: defaults, then the config file (explicit
// path, or the first default name found in dir), then environment
// variables. A missing explicit path is an error; a missing default file is
// not.
func Load(path, dir string) (Config, error) {
	cfg := Default()

	if path == "" {
		path = findConfigFile(dir)
	} else if _, err := os.Stat(path); err != nil {
		return cfg, fmt.Errorf("config file: %w", err)
	}

	if path != "" {
		if err := decodeFile(path, &cfg); err != nil {
			return cfg, err
		}
	}

	cfg.LoadFromEnv()
	return cfg, nil
}

// findConfigFile returns the first default config file present in dir, or
// empty.
func findConfigFile(dir string) string {
	for _, name := range configFileNames {
		candidate := filepath.Join(dir, name)
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}
	return ""
}

// decodeFile decodes a TOML or YAML config file into cfg, chosen by
// extension.
func decodeFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("config file: %w", err)
		}
		return fmt.Errorf("read config %s: %w", path, err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		if err := toml.Unmarshal(data, cfg); err != nil {
			return fmt.Errorf("parse config %s: %w", path, err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return fmt.Errorf("parse config %s: %w", path, err)
		}
	default:
		return fmt.Errorf("config %s: unsupported format %q", path, filepath.Ext(path))
	}
	return nil
}
