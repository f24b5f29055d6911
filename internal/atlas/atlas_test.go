package atlas

import (
	"errors"
	"image"
	"image/color"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/hytopia-importer/internal/diag"
	"github.com/Faultbox/hytopia-importer/internal/texture"
	"github.com/Faultbox/hytopia-importer/internal/voxel"
)

// faceColors gives each face image a distinct solid colour.
var faceColors = map[string]color.RGBA{
	"+y.png": {10, 0, 0, 255},
	"-x.png": {20, 0, 0, 255},
	"+x.png": {30, 0, 0, 255},
	"+z.png": {40, 0, 0, 255},
	"-z.png": {50, 0, 0, 255},
	"-y.png": {60, 0, 0, 255},
}

func solid(size int, c color.RGBA) *image.RGBA {
	return texture.Swatch(c, size)
}

// fakeLoader serves solid face images of the given sizes; absent entries fail.
func fakeLoader(sizes map[string]int) (LoadFunc, *int) {
	calls := 0
	return func(path string) (image.Image, error) {
		calls++
		file := filepath.Base(path)
		size, ok := sizes[file]
		if !ok {
			return nil, errors.New("file not found")
		}
		return solid(size, faceColors[file]), nil
	}, &calls
}

func allFaces(size int) map[string]int {
	sizes := make(map[string]int)
	for f := range faceColors {
		sizes[f] = size
	}
	return sizes
}

func TestCellRectMatchesPixelRect(t *testing.T) {
	const size = 16
	for _, f := range Faces {
		uv := AtlasUV(f.Direction)
		px := PixelRect(f.Cell, size)

		// Convert UV (origin bottom-left) to pixels (origin top-left).
		w, h := float32(Columns*size), float32(Rows*size)
		x0 := int(uv[0][0]*w + 0.5)
		x1 := int(uv[2][0]*w + 0.5)
		y0 := int(h - uv[2][1]*h + 0.5)
		y1 := int(h - uv[0][1]*h + 0.5)
		assert.Equal(t, px, image.Rect(x0, y0, x1, y1), f.Direction.String())
	}
}

func TestAtlasUVCornerOrder(t *testing.T) {
	uv := AtlasUV(voxel.PosZ)
	r := CellRect(Cell{2, 1})
	assert.Equal(t, r.UMin, uv[0][0])
	assert.Equal(t, r.VMin, uv[0][1])
	assert.Equal(t, r.UMax, uv[1][0])
	assert.Equal(t, r.VMax, uv[2][1])
	assert.Equal(t, r.UMin, uv[3][0])
	assert.Equal(t, float32(1), r.UMax)
	assert.Equal(t, float32(1), r.VMax)

	// Every cell of the grid is used exactly once.
	seen := make(map[Cell]bool)
	for _, f := range Faces {
		assert.False(t, seen[f.Cell], "cell %v reused", f.Cell)
		seen[f.Cell] = true
	}
	assert.Len(t, seen, Columns*Rows)
}

func TestMappers(t *testing.T) {
	var m Mapper = Simple{}
	assert.Equal(t, SimpleUV(), m.FaceUV(voxel.NegZ))
	m = Layout{}
	assert.Equal(t, AtlasUV(voxel.NegZ), m.FaceUV(voxel.NegZ))
}

func TestRotate(t *testing.T) {
	// 2x1 image: A B
	img := image.NewRGBA(image.Rect(0, 0, 2, 1))
	a, b := color.RGBA{1, 0, 0, 255}, color.RGBA{2, 0, 0, 255}
	img.SetRGBA(0, 0, a)
	img.SetRGBA(1, 0, b)

	cw := Rotate(img, 1)
	require.Equal(t, image.Rect(0, 0, 1, 2), cw.Bounds())
	assert.Equal(t, a, cw.RGBAAt(0, 0))
	assert.Equal(t, b, cw.RGBAAt(0, 1))

	ccw := Rotate(img, 3)
	assert.Equal(t, b, ccw.RGBAAt(0, 0))
	assert.Equal(t, a, ccw.RGBAAt(0, 1))

	assert.Equal(t, img.Pix, Rotate(Rotate(img, 2), 2).Pix)
	assert.Equal(t, img.Pix, Rotate(img, 4).Pix)
}

func TestBuildPlacesFacesInTheirCells(t *testing.T) {
	load, _ := fakeLoader(allFaces(8))

	a, warnings, err := Build("Oak Log", "/textures/blocks/oak-log", load)
	require.NoError(t, err)
	assert.Empty(t, warnings)
	assert.Equal(t, "atlas_Oak_Log", a.Name)
	assert.Equal(t, 8, a.CellSize)
	assert.Equal(t, image.Rect(0, 0, 24, 16), a.Image.Bounds())

	for _, f := range Faces {
		r := PixelRect(f.Cell, a.CellSize)
		want := faceColors[f.File]
		assert.Equal(t, want, a.Image.RGBAAt(r.Min.X, r.Min.Y), f.File)
		assert.Equal(t, want, a.Image.RGBAAt(r.Max.X-1, r.Max.Y-1), f.File)
	}
}

func TestBuildScalesToFirstFace(t *testing.T) {
	sizes := allFaces(4)
	sizes["+y.png"] = 16 // first in layout order
	load, _ := fakeLoader(sizes)

	a, _, err := Build("grass", "dir", load)
	require.NoError(t, err)
	assert.Equal(t, 16, a.CellSize)

	r := PixelRect(Faces[voxel.PosZ].Cell, 16)
	assert.Equal(t, faceColors["-y.png"], a.Image.RGBAAt(r.Max.X-1, r.Max.Y-1))
}

func TestBuildMissingFaceIsMagenta(t *testing.T) {
	sizes := allFaces(4)
	delete(sizes, "-z.png")
	load, _ := fakeLoader(sizes)

	a, warnings, err := Build("grass", "dir", load)
	require.NoError(t, err)
	assert.Equal(t, 1, diag.Count(warnings, diag.MissingAtlasFace))
	assert.Equal(t, []voxel.Direction{voxel.NegZ}, a.Missing)

	r := PixelRect(Faces[voxel.NegZ].Cell, 4)
	assert.Equal(t, texture.Magenta, a.Image.RGBAAt(r.Min.X+1, r.Min.Y+1))
}

func TestBuildNoFaces(t *testing.T) {
	load, _ := fakeLoader(nil)
	a, _, err := Build("grass", "dir", load)
	assert.Nil(t, a)
	assert.ErrorIs(t, err, ErrNoFaceTextures)
}

func TestCacheBuildsOnce(t *testing.T) {
	c := NewCache()
	load, calls := fakeLoader(allFaces(2))

	a1, _, err := c.GetOrBuild("grass", "dir", load)
	require.NoError(t, err)
	a2, w2, err := c.GetOrBuild("grass", "dir", load)
	require.NoError(t, err)
	assert.Same(t, a1, a2)
	assert.Nil(t, w2)
	assert.Equal(t, 6, *calls)

	empty, failCalls := fakeLoader(nil)
	_, _, err = c.GetOrBuild("void", "dir", empty)
	assert.ErrorIs(t, err, ErrNoFaceTextures)
	_, _, err = c.GetOrBuild("void", "dir", empty)
	assert.ErrorIs(t, err, ErrNoFaceTextures)
	assert.Equal(t, 6, *failCalls, "failures are cached")

	assert.Equal(t, 2, c.Len())
	c.Reset()
	assert.Zero(t, c.Len())
}
