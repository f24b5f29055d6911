// Package material turns block types into surface descriptions for the host scene.
package material

import (
	"image"
	"image/color"
	"sync"

	"go.uber.org/zap"

	"github.com/Faultbox/hytopia-importer/internal/assets"
	"github.com/Faultbox/hytopia-importer/internal/atlas"
	"github.com/Faultbox/hytopia-importer/internal/diag"
	"github.com/Faultbox/hytopia-importer/internal/logger"
	"github.com/Faultbox/hytopia-importer/internal/texture"
	"github.com/Faultbox/hytopia-importer/pkg/hytopia"
)

// DefaultName is the material used for block ids missing from the registry.
const DefaultName = "hytopia_default"

// Kind says where a surface's base colour comes from.
type Kind int

const (
	KindTexture Kind = iota // single image over each face
	KindAtlas               // 3×2 per-face atlas
	KindColor               // flat colour
)

func (k Kind) String() string {
	switch k {
	case KindTexture:
		return "texture"
	case KindAtlas:
		return "atlas"
	case KindColor:
		return "color"
	}
	return "unknown"
}

// Surface describes a material.
type Surface struct {
	Name          string
	Kind          Kind
	TexturePath   string      // KindTexture
	Image         image.Image // KindTexture
	Atlas         *atlas.Atlas
	Color         color.RGBA // KindColor
	Roughness     float32
	SpecularIOR   float32
	Alpha         float32
	Transmission  float32
	Interpolation string
	Blend         bool // alpha blending, for liquids
}

// Mapper returns the UV mapper meshes using this surface need.
func (s *Surface) Mapper() atlas.Mapper {
	if s.Kind == KindAtlas {
		return atlas.Layout{}
	}
	return atlas.Simple{}
}

// ImageName returns the name of the image backing the surface, or "" for flat colours.
func (s *Surface) ImageName() string {
	switch s.Kind {
	case KindAtlas:
		return s.Atlas.Name
	case KindTexture:
		return hytopia.SafeName(s.Name) + "_diffuse"
	}
	return ""
}

// Name returns the material name for a block type name.
func Name(block string) string {
	return hytopia.NamePrefix + hytopia.SafeName(block)
}

func newSurface(name string) *Surface {
	return &Surface{
		Name:          name,
		Roughness:     0.5,
		Alpha:         1,
		Interpolation: "Closest",
	}
}

// Stats counts what a resolver produced.
type Stats struct {
	Materials int
	Textured  int
	Atlases   int
	Colored   int
	Missing   int
}

// Resolver creates surfaces for block types, once per material name.
type Resolver struct {
	textures texture.Resolver
	images   *assets.Manager
	atlases  *atlas.Cache

	mu      sync.Mutex
	cache   map[string]*Surface
	missing map[string]bool
}

// NewResolver creates a resolver looking for textures under textureDir.
// An empty textureDir gives every block a flat colour.
func NewResolver(textureDir string, images *assets.Manager, atlases *atlas.Cache) *Resolver {
	return &Resolver{
		textures: texture.NewResolver(textureDir),
		images:   images,
		atlases:  atlases,
		cache:    make(map[string]*Surface),
		missing:  make(map[string]bool),
	}
}

// Resolve returns the surface for bt. A texture that cannot be found or decoded
// degrades to a colour derived from the block name.
func (r *Resolver) Resolve(bt hytopia.BlockType) (*Surface, []diag.Warning) {
	name := Name(bt.Name)

	r.mu.Lock()
	defer r.mu.Unlock()

	if s, ok := r.cache[name]; ok {
		return s, nil
	}

	var (
		s        *Surface
		warnings []diag.Warning
	)
	if bt.IsMultiTexture {
		s, warnings = r.atlasSurface(name, bt)
	} else {
		s, warnings = r.textureSurface(name, bt)
	}
	if bt.IsLiquid {
		liquid(s)
	}

	r.cache[name] = s
	logger.Debug("created material",
		zap.String("material", name),
		zap.Stringer("kind", s.Kind),
		zap.Bool("liquid", bt.IsLiquid))
	return s, warnings
}

func (r *Resolver) textureSurface(name string, bt hytopia.BlockType) (*Surface, []diag.Warning) {
	if bt.TextureURI == "" || r.textures.Base == "" {
		return r.colorSurface(name, bt, false), nil
	}

	path, ok := r.textures.Resolve(bt.TextureURI)
	if !ok {
		return r.colorSurface(name, bt, true), r.missingTexture(bt.TextureURI, nil)
	}
	img, err := r.images.LoadImage(path)
	if err != nil {
		return r.colorSurface(name, bt, true), r.missingTexture(path, err)
	}

	s := newSurface(name)
	s.Kind = KindTexture
	s.TexturePath = path
	s.Image = img
	return s, nil
}

func (r *Resolver) atlasSurface(name string, bt hytopia.BlockType) (*Surface, []diag.Warning) {
	if bt.TextureURI == "" || r.textures.Base == "" {
		return r.colorSurface(name, bt, false), nil
	}

	dir, ok := r.textures.ResolveDir(bt.TextureURI)
	if !ok {
		return r.colorSurface(name, bt, true), r.missingTexture(bt.TextureURI, nil)
	}
	a, warnings, err := r.atlases.GetOrBuild(bt.Name, dir, r.images.LoadImage)
	if err != nil {
		return r.colorSurface(name, bt, true), append(warnings, r.missingTexture(dir, err)...)
	}

	s := newSurface(name)
	s.Kind = KindAtlas
	s.Atlas = a
	return s, warnings
}

func (r *Resolver) colorSurface(name string, bt hytopia.BlockType, failed bool) *Surface {
	s := newSurface(name)
	s.Kind = KindColor
	s.Color = texture.FallbackColor(bt.Name)
	if failed {
		s.Roughness = 0.8
	}
	return s
}

// missingTexture reports ref once per resolver.
func (r *Resolver) missingTexture(ref string, err error) []diag.Warning {
	if r.missing[ref] {
		return nil
	}
	r.missing[ref] = true

	w := diag.New(diag.MissingTexture, ref, err)
	logger.Warn("texture not found, using fallback colour", w.Fields()...)
	return []diag.Warning{w}
}

func liquid(s *Surface) {
	s.Blend = true
	s.Alpha = 0.7
	s.Transmission = 0.9
	s.Roughness = 0.1
	if s.Kind == KindColor {
		s.Color = color.RGBA{R: 51, G: 153, B: 255, A: 179}
	}
}

// Default returns the magenta material for unknown block types.
func (r *Resolver) Default() *Surface {
	r.mu.Lock()
	defer r.mu.Unlock()

	if s, ok := r.cache[DefaultName]; ok {
		return s
	}
	s := newSurface(DefaultName)
	s.Kind = KindColor
	s.Color = texture.Magenta
	r.cache[DefaultName] = s
	return s
}

// Stats returns counts of the materials created so far.
func (r *Resolver) Stats() Stats {
	r.mu.Lock()
	defer r.mu.Unlock()

	st := Stats{Materials: len(r.cache), Missing: len(r.missing)}
	for _, s := range r.cache {
		switch s.Kind {
		case KindTexture:
			st.Textured++
		case KindAtlas:
			st.Atlases++
		case KindColor:
			st.Colored++
		}
	}
	return st
}

// Reset forgets every material and missing-texture report.
func (r *Resolver) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cache = make(map[string]*Surface)
	r.missing = make(map[string]bool)
}
