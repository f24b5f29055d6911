package config

import (
	"flag"
	"fmt"
	"time"

	"github.com/Faultbox/hytopia-importer/pkg/hytopia"
)

// Flags holds command-line overrides. Zero values leave the config untouched.
type Flags struct {
	Config string
	Debug  bool

	TextureDir string
	ModelDir   string
	OutputDir  string
	Min, Max   string // "x,y,z"
	NoBlocks   bool
	NoEntities bool
	NoCull     bool
	Debounce   time.Duration
}

// RegisterGlobal adds the flags every command accepts.
func (f *Flags) RegisterGlobal(fs *flag.FlagSet) {
	fs.StringVar(&f.Config, "config", "", "Path to config file (YAML or TOML)")
	fs.BoolVar(&f.Debug, "debug", false, "Enable debug logging")
}

// RegisterImport adds the import flags.
func (f *Flags) RegisterImport(fs *flag.FlagSet) {
	fs.StringVar(&f.TextureDir, "textures", "", "Texture directory")
	fs.StringVar(&f.ModelDir, "models", "", "Model directory")
	fs.StringVar(&f.OutputDir, "out", "", "Output directory")
	fs.StringVar(&f.Min, "min", "", "Region minimum as x,y,z")
	fs.StringVar(&f.Max, "max", "", "Region maximum as x,y,z")
	fs.BoolVar(&f.NoBlocks, "no-blocks", false, "Skip blocks")
	fs.BoolVar(&f.NoEntities, "no-entities", false, "Skip entities")
	fs.BoolVar(&f.NoCull, "no-cull", false, "Keep hidden faces")
}

// RegisterWatch adds the import flags plus the watch flags.
func (f *Flags) RegisterWatch(fs *flag.FlagSet) {
	f.RegisterImport(fs)
	fs.DurationVar(&f.Debounce, "debounce", 0, "Quiet time before re-importing")
}

// applyFlags applies CLI flag overrides to the config.
func applyFlags(cfg *Config, f *Flags) error {
	if f.Debug {
		cfg.Logging.Level = "debug"
	}
	if f.TextureDir != "" {
		cfg.Import.TextureDir = f.TextureDir
	}
	if f.ModelDir != "" {
		cfg.Import.ModelDir = f.ModelDir
	}
	if f.OutputDir != "" {
		cfg.Import.OutputDir = f.OutputDir
	}
	if f.Min != "" {
		v, err := parseVec(f.Min)
		if err != nil {
			return fmt.Errorf("-min: %w", err)
		}
		cfg.Import.Min = v
	}
	if f.Max != "" {
		v, err := parseVec(f.Max)
		if err != nil {
			return fmt.Errorf("-max: %w", err)
		}
		cfg.Import.Max = v
	}
	if f.NoBlocks {
		cfg.Import.ImportBlocks = false
	}
	if f.NoEntities {
		cfg.Import.ImportEntities = false
	}
	if f.NoCull {
		cfg.Import.CullFaces = false
	}
	if f.Debounce > 0 {
		cfg.Watch.Debounce = Duration(f.Debounce)
	}
	return nil
}

func parseVec(s string) ([3]float64, error) {
	x, y, z, err := hytopia.ParseCoord(s)
	return [3]float64{x, y, z}, err
}
