// Package worldgen generates sample Hytopia maps from a noise height field.
package worldgen

import (
	"errors"
	"math/rand"

	"github.com/ojrac/opensimplex-go"

	"github.com/Faultbox/hytopia-importer/pkg/hytopia"
)

// Block type ids used by DefaultTypes.
const (
	Grass = iota + 1
	Dirt
	Stone
	Water
	Log
)

// TreeModel is the model placed by Options.Trees.
const TreeModel = "models/environment/oak-tree.gltf"

// ErrInvalidSize is returned for non-positive map dimensions.
var ErrInvalidSize = errors.New("width, depth and max height must be positive")

// DefaultTypes returns the block type table Generate uses when Options.Types is empty.
func DefaultTypes() []hytopia.BlockType {
	return []hytopia.BlockType{
		{ID: Grass, Name: "grass", TextureURI: "blocks/grass", IsMultiTexture: true},
		{ID: Dirt, Name: "dirt", TextureURI: "blocks/dirt.png"},
		{ID: Stone, Name: "stone", TextureURI: "blocks/stone.png"},
		{ID: Water, Name: "water", TextureURI: "blocks/water.png", IsLiquid: true},
		{ID: Log, Name: "oak-log", TextureURI: "blocks/oak-log", IsMultiTexture: true},
	}
}

// Options controls generation.
type Options struct {
	Seed      int64
	Width     int // along X
	Depth     int // along Z
	MaxHeight int
	// WaterLevel fills columns lower than it with water. Zero disables water.
	WaterLevel int
	// Trees places up to this many tree entities on grass.
	Trees int
	Types []hytopia.BlockType

	Scale       float32
	Octaves     int
	Lacunarity  float32
	Persistence float32
}

// DefaultOptions returns a 32×32 hilly map.
func DefaultOptions() Options {
	return Options{
		Seed:        1,
		Width:       32,
		Depth:       32,
		MaxHeight:   12,
		WaterLevel:  3,
		Trees:       4,
		Scale:       24,
		Octaves:     4,
		Lacunarity:  2,
		Persistence: 0.5,
	}
}

// Generate builds a map. Columns are centred on the origin and the same
// options always produce the same map.
func Generate(opts Options) (*hytopia.Map, error) {
	if opts.Width <= 0 || opts.Depth <= 0 || opts.MaxHeight <= 0 {
		return nil, ErrInvalidSize
	}
	def := DefaultOptions()
	if opts.Scale <= 0 {
		opts.Scale = def.Scale
	}
	if opts.Octaves <= 0 {
		opts.Octaves = def.Octaves
	}
	if opts.Lacunarity <= 0 {
		opts.Lacunarity = def.Lacunarity
	}
	if opts.Persistence <= 0 {
		opts.Persistence = def.Persistence
	}
	types := opts.Types
	if len(types) == 0 {
		types = DefaultTypes()
	}

	noise := opensimplex.New32(opts.Seed)
	m := &hytopia.Map{
		BlockTypes: types,
		Blocks:     make(map[string]int),
		Entities:   make(map[string]hytopia.Entity),
	}

	var grassTops [][3]int
	x0, z0 := -opts.Width/2, -opts.Depth/2
	for x := x0; x < x0+opts.Width; x++ {
		for z := z0; z < z0+opts.Depth; z++ {
			h := height(noise, x, z, opts)
			for y := 0; y <= h; y++ {
				m.Blocks[key(x, y, z)] = layer(y, h, opts.WaterLevel)
			}
			for y := h + 1; y < opts.WaterLevel; y++ {
				m.Blocks[key(x, y, z)] = Water
			}
			if h >= opts.WaterLevel {
				grassTops = append(grassTops, [3]int{x, h + 1, z})
			}
		}
	}

	rng := rand.New(rand.NewSource(opts.Seed))
	for i := 0; i < opts.Trees && len(grassTops) > 0; i++ {
		j := rng.Intn(len(grassTops))
		p := grassTops[j]
		grassTops = append(grassTops[:j], grassTops[j+1:]...)
		m.Entities[key(p[0], p[1], p[2])] = hytopia.Entity{
			Name:       "tree",
			ModelURI:   TreeModel,
			ModelScale: 1 + float64(rng.Intn(3))/2,
			RigidBodyOptions: hytopia.RigidBodyOptions{
				Rotation: yaw(rng.Intn(4)),
			},
		}
	}
	return m, nil
}

// height samples fractal noise, following the octave loop of a classic
// terrain generator, and maps it to 0..MaxHeight-1.
func height(noise opensimplex.Noise32, x, z int, opts Options) int {
	var val, norm float32
	fx, fz := float32(x), float32(z)
	amp := float32(1)
	for i := 0; i < opts.Octaves; i++ {
		val += noise.Eval2(fx/opts.Scale, fz/opts.Scale) * amp
		norm += amp
		fx *= opts.Lacunarity
		fz *= opts.Lacunarity
		amp *= opts.Persistence
	}
	h := int((val/norm + 1) / 2 * float32(opts.MaxHeight))
	switch {
	case h < 0:
		return 0
	case h >= opts.MaxHeight:
		return opts.MaxHeight - 1
	}
	return h
}

func layer(y, top, water int) int {
	switch {
	case y == top && top >= water:
		return Grass
	case y >= top-2:
		return Dirt
	}
	return Stone
}

// yaw returns a rotation of quarter turns about the game's up (Y) axis.
func yaw(quarter int) *hytopia.Quaternion {
	s := [4][2]float64{{0, 1}, {0.7071067811865476, 0.7071067811865476}, {1, 0}, {0.7071067811865476, -0.7071067811865476}}[quarter%4]
	return &hytopia.Quaternion{Y: s[0], W: s[1]}
}

func key(x, y, z int) string {
	return hytopia.FormatCoord(float64(x), float64(y), float64(z))
}
