package config

import (
	"flag"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/mitchellh/go-homedir"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	// Test import defaults
	if cfg.Import.Min != [3]float64{-50, 0, -50} {
		t.Errorf("expected min (-50,0,-50), got %v", cfg.Import.Min)
	}
	if cfg.Import.Max != [3]float64{50, 64, 50} {
		t.Errorf("expected max (50,64,50), got %v", cfg.Import.Max)
	}
	if !cfg.Import.ImportBlocks || !cfg.Import.ImportEntities || !cfg.Import.CullFaces {
		t.Error("expected blocks, entities and culling enabled by default")
	}
	if cfg.Import.OutputDir != "hytopia-out" {
		t.Errorf("expected output dir hytopia-out, got %s", cfg.Import.OutputDir)
	}

	// Test watch defaults
	if time.Duration(cfg.Watch.Debounce) != 500*time.Millisecond {
		t.Errorf("expected debounce 500ms, got %v", time.Duration(cfg.Watch.Debounce))
	}

	// Test logging defaults
	if cfg.Logging.Level != "info" {
		t.Errorf("expected log level 'info', got %s", cfg.Logging.Level)
	}
	if cfg.Logging.LogFile != "" {
		t.Errorf("expected empty log file, got %s", cfg.Logging.LogFile)
	}
}

func TestLoadFromFile(t *testing.T) {
	// Create temporary config file
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	yamlContent := `
import:
  texture_dir: "/assets/textures"
  model_dir: "/assets/models"
  min: [-10, 0, -10]
  max: [10, 32, 10]
  cull_faces: false

library:
  path: "/tmp/lib.db"

watch:
  debounce: 2s

logging:
  level: "debug"
  log_file: "import.log"
`

	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	// Load config
	cfg := Default()
	if err := loadFromFile(cfg, configPath); err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	// Verify values were loaded
	if cfg.Import.TextureDir != "/assets/textures" {
		t.Errorf("expected texture dir /assets/textures, got %s", cfg.Import.TextureDir)
	}
	if cfg.Import.Min != [3]float64{-10, 0, -10} {
		t.Errorf("expected min (-10,0,-10), got %v", cfg.Import.Min)
	}
	if cfg.Import.Max != [3]float64{10, 32, 10} {
		t.Errorf("expected max (10,32,10), got %v", cfg.Import.Max)
	}
	if cfg.Import.CullFaces {
		t.Error("expected cull_faces to be false")
	}
	if !cfg.Import.ImportBlocks {
		t.Error("expected import_blocks to keep its default")
	}
	if cfg.Library.Path != "/tmp/lib.db" {
		t.Errorf("expected library path /tmp/lib.db, got %s", cfg.Library.Path)
	}
	if time.Duration(cfg.Watch.Debounce) != 2*time.Second {
		t.Errorf("expected debounce 2s, got %v", time.Duration(cfg.Watch.Debounce))
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("expected log level 'debug', got %s", cfg.Logging.Level)
	}
	if cfg.Logging.LogFile != "import.log" {
		t.Errorf("expected log file 'import.log', got %s", cfg.Logging.LogFile)
	}
}

func TestLoadFromTOML(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.toml")

	tomlContent := `
[import]
texture_dir = "/assets/textures"
min = [-5.0, 0.0, -5.0]
import_entities = false

[watch]
debounce = "250ms"
`
	if err := os.WriteFile(configPath, []byte(tomlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg := Default()
	if err := loadFromFile(cfg, configPath); err != nil {
		t.Fatalf("failed to load config: %v", err)
	}
	if cfg.Import.TextureDir != "/assets/textures" {
		t.Errorf("expected texture dir /assets/textures, got %s", cfg.Import.TextureDir)
	}
	if cfg.Import.Min != [3]float64{-5, 0, -5} {
		t.Errorf("expected min (-5,0,-5), got %v", cfg.Import.Min)
	}
	if cfg.Import.ImportEntities {
		t.Error("expected import_entities to be false")
	}
	if time.Duration(cfg.Watch.Debounce) != 250*time.Millisecond {
		t.Errorf("expected debounce 250ms, got %v", time.Duration(cfg.Watch.Debounce))
	}
}

func TestLoadFromFileInvalid(t *testing.T) {
	// Create temporary config file with invalid YAML
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "invalid.yaml")

	invalidYAML := `
import:
  min: not a list
  invalid syntax here
`

	if err := os.WriteFile(configPath, []byte(invalidYAML), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	// Try to load - should error
	cfg := Default()
	err := loadFromFile(cfg, configPath)
	if err == nil {
		t.Error("expected error loading invalid YAML, got nil")
	}
}

func TestLoadFromFileBadDuration(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(configPath, []byte("watch:\n  debounce: soon\n"), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}
	if err := loadFromFile(Default(), configPath); err == nil {
		t.Error("expected error for an unparseable duration")
	}
}

func TestLoadFromFileMissing(t *testing.T) {
	cfg := Default()
	err := loadFromFile(cfg, "/nonexistent/path/config.yaml")
	if err == nil {
		t.Error("expected error loading missing file, got nil")
	}
}

func TestConfigDir(t *testing.T) {
	dir := ConfigDir()

	// Just verify it returns a non-empty path
	// Actual path depends on OS
	if dir == "" {
		t.Error("ConfigDir returned empty string")
	}

	// Verify path is absolute
	if !filepath.IsAbs(dir) {
		t.Errorf("ConfigDir should return absolute path, got %s", dir)
	}
}

func TestFindConfigFile(t *testing.T) {
	// Save current directory
	origDir, _ := os.Getwd()
	defer os.Chdir(origDir)

	// Keep the user's own config out of the search
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	// Create temp directory and change to it
	tmpDir := t.TempDir()
	os.Chdir(tmpDir)

	// No config file exists - should return empty
	path := findConfigFile()
	if path != "" {
		t.Errorf("expected empty path when no config exists, got %s", path)
	}

	// A TOML file in the current directory is found too
	configPath := filepath.Join(tmpDir, "config.toml")
	if err := os.WriteFile(configPath, []byte("[import]\n"), 0644); err != nil {
		t.Fatalf("failed to create test config: %v", err)
	}

	// Should find it now
	path = findConfigFile()
	if path == "" {
		t.Error("expected to find config.toml in current directory")
	}
}

func TestApplyFlags(t *testing.T) {
	tests := []struct {
		name   string
		flags  Flags
		verify func(*testing.T, *Config)
	}{
		{
			name:  "debug flag",
			flags: Flags{Debug: true},
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Logging.Level != "debug" {
					t.Errorf("expected log level 'debug', got %s", cfg.Logging.Level)
				}
			},
		},
		{
			name:  "directory flags",
			flags: Flags{TextureDir: "tex", ModelDir: "models", OutputDir: "out"},
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Import.TextureDir != "tex" || cfg.Import.ModelDir != "models" || cfg.Import.OutputDir != "out" {
					t.Errorf("directories not applied: %+v", cfg.Import)
				}
			},
		},
		{
			name:  "bounds flags",
			flags: Flags{Min: "0,0,0", Max: "1, 0, 1"},
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Import.Min != [3]float64{0, 0, 0} {
					t.Errorf("expected min (0,0,0), got %v", cfg.Import.Min)
				}
				if cfg.Import.Max != [3]float64{1, 0, 1} {
					t.Errorf("expected max (1,0,1), got %v", cfg.Import.Max)
				}
			},
		},
		{
			name:  "switch flags",
			flags: Flags{NoBlocks: true, NoEntities: true, NoCull: true},
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Import.ImportBlocks || cfg.Import.ImportEntities || cfg.Import.CullFaces {
					t.Errorf("switches not applied: %+v", cfg.Import)
				}
			},
		},
		{
			name:  "debounce flag",
			flags: Flags{Debounce: time.Second},
			verify: func(t *testing.T, cfg *Config) {
				if time.Duration(cfg.Watch.Debounce) != time.Second {
					t.Errorf("expected debounce 1s, got %v", time.Duration(cfg.Watch.Debounce))
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Apply flags to default config
			cfg := Default()
			if err := applyFlags(cfg, &tt.flags); err != nil {
				t.Fatalf("applyFlags: %v", err)
			}
			tt.verify(t, cfg)
		})
	}
}

func TestApplyFlagsBadBounds(t *testing.T) {
	if err := applyFlags(Default(), &Flags{Min: "1,2"}); err == nil {
		t.Error("expected error for a two-component min")
	}
}

func TestRegisterFlags(t *testing.T) {
	var f Flags
	fs := flag.NewFlagSet("import", flag.ContinueOnError)
	f.RegisterGlobal(fs)
	f.RegisterWatch(fs)

	err := fs.Parse([]string{"-debug", "-textures", "tex", "-min", "1,2,3", "-no-cull", "-debounce", "2s", "map.json"})
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if !f.Debug || f.TextureDir != "tex" || f.Min != "1,2,3" || !f.NoCull || f.Debounce != 2*time.Second {
		t.Errorf("flags not parsed: %+v", f)
	}
	if fs.Arg(0) != "map.json" {
		t.Errorf("expected positional map.json, got %q", fs.Arg(0))
	}
}

func TestLoadPriority(t *testing.T) {
	// Create temporary config file
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	yamlContent := `
import:
  texture_dir: "/from/file"
  model_dir: "/models/from/file"
`

	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	// Flag overrides the config file
	cfg, err := Load(&Flags{Config: configPath, TextureDir: "/from/flag"})
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	// Texture dir should be from flag, not file
	if cfg.Import.TextureDir != "/from/flag" {
		t.Errorf("expected texture dir from flag, got %s", cfg.Import.TextureDir)
	}

	// Model dir should be from file since no flag override
	if cfg.Import.ModelDir != "/models/from/file" {
		t.Errorf("expected model dir from file, got %s", cfg.Import.ModelDir)
	}
}

func TestLoadExpandsHome(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	homedir.DisableCache = true
	defer func() { homedir.DisableCache = false }()

	if _, err := Load(&Flags{Config: filepath.Join(t.TempDir(), "missing.yaml")}); err == nil {
		t.Fatal("expected error for a missing explicit config")
	}

	configPath := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(configPath, []byte("import:\n  texture_dir: \"~/textures\"\n"), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}
	cfg, err := Load(&Flags{Config: configPath})
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}
	if want := filepath.Join(home, "textures"); cfg.Import.TextureDir != want {
		t.Errorf("expected %s, got %s", want, cfg.Import.TextureDir)
	}
}

func TestSaveToRoundTrip(t *testing.T) {
	for _, name := range []string{"config.yaml", "config.toml"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "nested", name)
			cfg := Default()
			cfg.Import.TextureDir = "/assets"
			cfg.Watch.Debounce = Duration(3 * time.Second)
			if err := cfg.SaveTo(path); err != nil {
				t.Fatalf("SaveTo: %v", err)
			}

			loaded := Default()
			if err := loadFromFile(loaded, path); err != nil {
				t.Fatalf("reload: %v", err)
			}
			if loaded.Import.TextureDir != "/assets" {
				t.Errorf("expected texture dir /assets, got %s", loaded.Import.TextureDir)
			}
			if time.Duration(loaded.Watch.Debounce) != 3*time.Second {
				t.Errorf("expected debounce 3s, got %v", time.Duration(loaded.Watch.Debounce))
			}
			if loaded.Import.Max != cfg.Import.Max {
				t.Errorf("expected max %v, got %v", cfg.Import.Max, loaded.Import.Max)
			}
		})
	}
}

func TestOptionsAndLibraryPath(t *testing.T) {
	cfg := Default()
	cfg.Import.Min = [3]float64{0, 0, 0}
	cfg.Import.Max = [3]float64{1, 0, 1}
	opts := cfg.Import.Options("map.json")
	if opts.MapPath != "map.json" || opts.Max.Z != 1 || !opts.CullFaces {
		t.Errorf("unexpected options: %+v", opts)
	}

	if got := cfg.LibraryPath(); got != filepath.Join("hytopia-out", "library.db") {
		t.Errorf("unexpected library path %s", got)
	}
	cfg.Library.Path = "/var/lib.db"
	if got := cfg.LibraryPath(); got != "/var/lib.db" {
		t.Errorf("unexpected library path %s", got)
	}
}
