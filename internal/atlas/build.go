package atlas

import (
	"errors"
	"fmt"
	"image"
	"image/draw"
	"path/filepath"
	"sync"

	"github.com/anthonynsimon/bild/clone"
	"github.com/anthonynsimon/bild/transform"
	"go.uber.org/zap"

	"github.com/Faultbox/hytopia-importer/internal/diag"
	"github.com/Faultbox/hytopia-importer/internal/logger"
	"github.com/Faultbox/hytopia-importer/internal/texture"
	"github.com/Faultbox/hytopia-importer/internal/voxel"
	"github.com/Faultbox/hytopia-importer/pkg/hytopia"
)

// ErrNoFaceTextures is returned when none of a block's face images could be loaded.
var ErrNoFaceTextures = errors.New("no face textures loaded")

// LoadFunc loads one face image.
type LoadFunc func(path string) (image.Image, error)

// Atlas is a packed multi-texture image.
type Atlas struct {
	Name     string
	Image    *image.RGBA
	CellSize int
	Missing  []voxel.Direction
}

// ImagePrefix starts the name of every atlas image.
const ImagePrefix = "atlas_"

// ImageName returns the image name used for a block's atlas.
func ImageName(block string) string {
	return ImagePrefix + hytopia.SafeName(block)
}

// Rotate turns img clockwise by the given number of quarter turns.
// It only permutes pixels.
func Rotate(img *image.RGBA, quarterTurns int) *image.RGBA {
	q := ((quarterTurns % 4) + 4) % 4
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()

	dw, dh := w, h
	if q%2 == 1 {
		dw, dh = h, w
	}
	out := image.NewRGBA(image.Rect(0, 0, dw, dh))

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			var dx, dy int
			switch q {
			case 0:
				dx, dy = x, y
			case 1:
				dx, dy = h-1-y, x
			case 2:
				dx, dy = w-1-x, h-1-y
			case 3:
				dx, dy = y, w-1-x
			}
			out.SetRGBA(dx, dy, img.RGBAAt(b.Min.X+x, b.Min.Y+y))
		}
	}
	return out
}

// Build loads the six face images of a multi-texture block from dir and packs them.
//
// The cell size is the larger side of the first face that loads, in layout order.
// Other faces are scaled to fit, and faces that fail to load become magenta cells.
func Build(name, dir string, load LoadFunc) (*Atlas, []diag.Warning, error) {
	var (
		images   [6]*image.RGBA
		warnings []diag.Warning
		size     int
		missing  []voxel.Direction
	)

	for _, f := range Faces {
		path := filepath.Join(dir, f.File)
		img, err := load(path)
		if err != nil {
			missing = append(missing, f.Direction)
			warnings = append(warnings, diag.New(diag.MissingAtlasFace, name+"/"+f.File, err))
			continue
		}
		if size == 0 {
			b := img.Bounds()
			size = max(b.Dx(), b.Dy())
		}
		images[f.Direction] = clone.AsRGBA(img)
	}

	if size == 0 {
		return nil, nil, fmt.Errorf("%w for %s in %s", ErrNoFaceTextures, name, dir)
	}

	out := image.NewRGBA(image.Rect(0, 0, Columns*size, Rows*size))
	for _, f := range Faces {
		r := PixelRect(f.Cell, size)
		face := images[f.Direction]
		if face == nil {
			draw.Draw(out, r, image.NewUniform(texture.Magenta), image.Point{}, draw.Src)
			continue
		}
		if b := face.Bounds(); b.Dx() != size || b.Dy() != size {
			face = transform.Resize(face, size, size, transform.NearestNeighbor)
		}
		face = Rotate(face, 1)
		draw.Draw(out, r, face, face.Bounds().Min, draw.Src)
	}

	for _, w := range warnings {
		logger.Warn("atlas face missing, using magenta", w.Fields()...)
	}
	logger.Debug("built texture atlas",
		zap.String("atlas", ImageName(name)),
		zap.Int("cell_size", size),
		zap.Int("missing_faces", len(missing)))

	return &Atlas{Name: ImageName(name), Image: out, CellSize: size, Missing: missing}, warnings, nil
}

type cached struct {
	atlas *Atlas
	err   error
}

// Cache builds each block's atlas at most once per session. Failures are cached too.
type Cache struct {
	mu      sync.Mutex
	entries map[string]cached
}

// NewCache creates an empty atlas cache.
func NewCache() *Cache {
	return &Cache{entries: make(map[string]cached)}
}

// GetOrBuild returns the atlas for block name, building it on first use.
// Warnings are only returned by the call that built it.
func (c *Cache) GetOrBuild(name, dir string, load LoadFunc) (*Atlas, []diag.Warning, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.entries[name]; ok {
		return e.atlas, nil, e.err
	}
	a, warnings, err := Build(name, dir, load)
	c.entries[name] = cached{atlas: a, err: err}
	return a, warnings, err
}

// Len returns the number of cached blocks.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Reset empties the cache.
func (c *Cache) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]cached)
}
