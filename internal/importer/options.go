package importer

import (
	"os"

	"github.com/mitchellh/go-homedir"

	"github.com/Faultbox/hytopia-importer/internal/diag"
	"github.com/Faultbox/hytopia-importer/internal/voxel"
)

// Options configures one import.
type Options struct {
	MapPath    string
	TextureDir string // optional; blocks fall back to flat colours without it
	ModelDir   string // optional; entities are skipped without it

	Min, Max voxel.Coord

	ImportBlocks   bool
	ImportEntities bool
	CullFaces      bool
}

// DefaultOptions returns options importing everything with culling enabled.
func DefaultOptions() Options {
	return Options{
		Min:            voxel.Coord{X: -50, Y: 0, Z: -50},
		Max:            voxel.Coord{X: 50, Y: 64, Z: 50},
		ImportBlocks:   true,
		ImportEntities: true,
		CullFaces:      true,
	}
}

// Bounds returns the import region.
func (o Options) Bounds() voxel.Bounds {
	return voxel.Bounds{Min: o.Min, Max: o.Max}
}

// expandDirs resolves ~ in the directory options and reports directories that
// do not exist. A missing directory is cleared so later stages fall back.
func (o *Options) expandDirs() []diag.Warning {
	var warnings []diag.Warning
	for _, dir := range []*string{&o.TextureDir, &o.ModelDir} {
		if *dir == "" {
			continue
		}
		if expanded, err := homedir.Expand(*dir); err == nil {
			*dir = expanded
		}
		info, err := os.Stat(*dir)
		if err != nil || !info.IsDir() {
			warnings = append(warnings, diag.Newf(diag.MissingDirectory, *dir, "directory not found"))
			*dir = ""
		}
	}
	return warnings
}
