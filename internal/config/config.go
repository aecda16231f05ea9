// Package config loads the user-level launcher configuration.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config captures the registry endpoint, cache location and fallback
// execution settings for the launcher.
type Config struct {
	Version   int            `yaml:"version"`
	Registry  RegistryConfig `yaml:"registry"`
	CacheDir  string         `yaml:"cache_dir"`
	Installer []string       `yaml:"installer"`
}

// RegistryConfig describes how to reach the package registry.
type RegistryConfig struct {
	URL            string `yaml:"url"`
	TimeoutSeconds int    `yaml:"timeout_s"`
}

// Default returns the baseline configuration.
func Default() Config {
	return Config{
		Version: 1,
		Registry: RegistryConfig{
			URL:            "https://pkg.example.org",
			TimeoutSeconds: 30,
		},
		Installer: []string{"pkgrun-exec"},
	}
}

// Load reads the configuration file at path, returning defaults when the
// file does not exist.
func Load(path string) (Config, error) {
	contents, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			cfg := Default()
			cfg.ApplyDefaults()
			return cfg, nil
		}
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(contents, &cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	cfg.ApplyDefaults()
	return cfg, nil
}

// ApplyDefaults ensures fields fall back to sensible defaults when the YAML
// omits them.
func (c *Config) ApplyDefaults() {
	defaults := Default()

	if c.Version == 0 {
		c.Version = defaults.Version
	}
	if c.Registry.URL == "" {
		c.Registry.URL = defaults.Registry.URL
	}
	if c.Registry.TimeoutSeconds <= 0 {
		c.Registry.TimeoutSeconds = defaults.Registry.TimeoutSeconds
	}
	if len(c.Installer) == 0 {
		c.Installer = append([]string{}, defaults.Installer...)
	}
}

// HTTPTimeout returns the registry timeout as a duration.
func (c Config) HTTPTimeout() time.Duration {
	return time.Duration(c.Registry.TimeoutSeconds) * time.Second
}
