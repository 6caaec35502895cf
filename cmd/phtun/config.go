package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
)

const (
	configKeyURL = "url"
	configKeyKey = "key"
)

// cliConfig is the phtun configuration file.
type cliConfig struct {
	URL string `toml:"url,omitempty"`
	Key string `toml:"key,omitempty"`
}

func isValidKey(key string) bool {
	return key == configKeyURL || key == configKeyKey
}

func (c *cliConfig) get(key string) string {
	if key == configKeyURL {
		return c.URL
	}
	return c.Key
}

func (c *cliConfig) set(key, value string) {
	if key == configKeyURL {
		c.URL = value
		return
	}
	c.Key = value
}

// configPath returns $XDG_CONFIG_HOME/phtun/config.toml, falling back to
// ~/.config when XDG_CONFIG_HOME is unset.
func configPath(getenv func(string) string) string {
	dir := getenv("XDG_CONFIG_HOME")
	if dir == "" {
		dir = filepath.Join(getenv("HOME"), ".config")
	}
	return filepath.Join(dir, "phtun", "config.toml")
}

// loadConfig reads the file at path. A missing file is an empty config.
func loadConfig(path string) (*cliConfig, error) {
	b, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return &cliConfig{}, nil
	}
	if err != nil {
		return nil, err
	}
	var cfg cliConfig
	if err := toml.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrConfigUnmarshal, path, err)
	}
	return &cfg, nil
}

func saveConfig(path string, cfg *cliConfig) error {
	b, err := toml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrConfigMarshal, err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("%w: %v", ErrConfigWrite, err)
	}
	if err := os.WriteFile(path, b, 0o600); err != nil {
		return fmt.Errorf("%w: %v", ErrConfigWrite, err)
	}
	return nil
}
