// Package config handles importer configuration loading and management.
package config

import (
	"path/filepath"
	"time"

	"github.com/Faultbox/hytopia-importer/internal/importer"
	"github.com/Faultbox/hytopia-importer/internal/voxel"
	"github.com/Faultbox/hytopia-importer/internal/watch"
)

// Config holds all importer settings.
type Config struct {
	Import  ImportConfig  `yaml:"import" toml:"import"`
	Library LibraryConfig `yaml:"library" toml:"library"`
	Watch   WatchConfig   `yaml:"watch" toml:"watch"`
	Logging LoggingConfig `yaml:"logging" toml:"logging"`
}

// ImportConfig holds the defaults for import runs.
type ImportConfig struct {
	TextureDir     string     `yaml:"texture_dir" toml:"texture_dir"`
	ModelDir       string     `yaml:"model_dir" toml:"model_dir"`
	OutputDir      string     `yaml:"output_dir" toml:"output_dir"`
	Min            [3]float64 `yaml:"min,flow" toml:"min"`
	Max            [3]float64 `yaml:"max,flow" toml:"max"`
	ImportBlocks   bool       `yaml:"import_blocks" toml:"import_blocks"`
	ImportEntities bool       `yaml:"import_entities" toml:"import_entities"`
	CullFaces      bool       `yaml:"cull_faces" toml:"cull_faces"`
}

// LibraryConfig holds the artifact manifest settings.
type LibraryConfig struct {
	Path string `yaml:"path" toml:"path"` // Empty means library.db inside the output directory
}

// WatchConfig holds watch mode settings.
type WatchConfig struct {
	Debounce Duration `yaml:"debounce" toml:"debounce"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level" toml:"level"`
	LogFile string `yaml:"log_file" toml:"log_file"`
}

// Duration is a time.Duration written as "500ms" in both YAML and TOML.
type Duration time.Duration

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(b []byte) error {
	v, err := time.ParseDuration(string(b))
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

// Default returns a Config with sensible default values.
func Default() *Config {
	opts := importer.DefaultOptions()
	return &Config{
		Import: ImportConfig{
			OutputDir:      "hytopia-out",
			Min:            [3]float64{opts.Min.X, opts.Min.Y, opts.Min.Z},
			Max:            [3]float64{opts.Max.X, opts.Max.Y, opts.Max.Z},
			ImportBlocks:   opts.ImportBlocks,
			ImportEntities: opts.ImportEntities,
			CullFaces:      opts.CullFaces,
		},
		Watch: WatchConfig{
			Debounce: Duration(watch.DefaultDebounce),
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}

// Options returns importer options for mapPath.
func (c ImportConfig) Options(mapPath string) importer.Options {
	return importer.Options{
		MapPath:        mapPath,
		TextureDir:     c.TextureDir,
		ModelDir:       c.ModelDir,
		Min:            voxel.Coord{X: c.Min[0], Y: c.Min[1], Z: c.Min[2]},
		Max:            voxel.Coord{X: c.Max[0], Y: c.Max[1], Z: c.Max[2]},
		ImportBlocks:   c.ImportBlocks,
		ImportEntities: c.ImportEntities,
		CullFaces:      c.CullFaces,
	}
}

// LibraryPath returns where the artifact manifest lives.
func (c *Config) LibraryPath() string {
	if c.Library.Path != "" {
		return c.Library.Path
	}
	return filepath.Join(c.Import.OutputDir, "library.db")
}
