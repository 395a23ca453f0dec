package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"

	"gopkg.in/yaml.v3"
)

// Load loads configuration with priority: defaults < file < flags.
func Load() (*Config, error) {
	cfg := Default()

	// Try to load from file (explicit path takes priority)
	configPath := ConfigPath()
	if configPath == "" {
		configPath = findConfigFile()
	}

	if configPath != "" {
		if err := loadFromFile(cfg, configPath); err != nil {
			return nil, fmt.Errorf("loading config from %s: %w", configPath, err)
		}
	}

	applyFlags(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// searchPaths lists where Load looks for a config file when -config is not
// given, most specific first.
func searchPaths() []string {
	return []string{
		"meshinfo.yaml",
		filepath.Join(ConfigDir(), "config.yaml"),
	}
}

// findConfigFile returns the first existing entry of searchPaths, or "".
func findConfigFile() string {
	for _, path := range searchPaths() {
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path
		}
	}
	return ""
}

// ConfigDir returns the per-user meshprep directory under os.UserConfigDir,
// or .meshprep in the working directory when the platform has none.
func ConfigDir() string {
	root, err := os.UserConfigDir()
	if err != nil {
		wd, _ := os.Getwd()
		return filepath.Join(wd, ".meshprep")
	}
	switch runtime.GOOS {
	case "darwin", "windows":
		return filepath.Join(root, "Meshprep")
	}
	return filepath.Join(root, "meshprep")
}

// loadFromFile loads config from a YAML file, merging with existing values.
// Unknown keys are rejected so a misspelled option does not pass silently.
func loadFromFile(cfg *Config, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}
