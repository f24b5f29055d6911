package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/mitchellh/go-homedir"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Load loads configuration with priority: defaults < file < flags.
// A nil f loads defaults and any config file found in the standard locations.
func Load(f *Flags) (*Config, error) {
	if f == nil {
		f = &Flags{}
	}

	// Start with defaults
	cfg := Default()

	// Explicit path takes priority
	configPath := f.Config
	if configPath == "" {
		configPath = findConfigFile()
	}

	if configPath != "" {
		if err := loadFromFile(cfg, configPath); err != nil {
			return nil, fmt.Errorf("loading config from %s: %w", configPath, err)
		}
	}

	// Apply CLI flags (highest priority)
	if err := applyFlags(cfg, f); err != nil {
		return nil, err
	}

	expandPaths(cfg)
	return cfg, nil
}

// findConfigFile looks for config in standard locations.
func findConfigFile() string {
	var candidates []string
	for _, dir := range []string{".", ConfigDir()} {
		candidates = append(candidates,
			filepath.Join(dir, "config.yaml"),
			filepath.Join(dir, "config.toml"))
	}

	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// ConfigDir returns the OS-appropriate config directory.
func ConfigDir() string {
	switch runtime.GOOS {
	case "darwin":
		home, _ := homedir.Dir()
		return filepath.Join(home, "Library", "Application Support", "HytopiaImporter")
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), "HytopiaImporter")
	default: // Linux and others
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			return filepath.Join(xdg, "hytopia-importer")
		}
		home, _ := homedir.Dir()
		return filepath.Join(home, ".config", "hytopia-importer")
	}
}

// loadFromFile merges a YAML or TOML file into cfg. TOML is chosen by the
// .toml extension.
func loadFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if isTOML(path) {
		return toml.Unmarshal(data, cfg)
	}
	return yaml.Unmarshal(data, cfg)
}

func isTOML(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".toml")
}

// expandPaths resolves a leading ~ in every path setting.
func expandPaths(cfg *Config) {
	for _, p := range []*string{
		&cfg.Import.TextureDir,
		&cfg.Import.ModelDir,
		&cfg.Import.OutputDir,
		&cfg.Library.Path,
		&cfg.Logging.LogFile,
	} {
		if expanded, err := homedir.Expand(*p); err == nil {
			*p = expanded
		}
	}
}
