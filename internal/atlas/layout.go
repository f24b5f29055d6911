// Package atlas packs the six face textures of a multi-texture block into one
// 3×2 image and maps cube faces to their UV rectangles.
package atlas

import (
	"image"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/hytopia-importer/internal/voxel"
)

// Grid dimensions of the atlas, in cells.
const (
	Columns = 3
	Rows    = 2
)

// Cell addresses one atlas cell. Row 0 is the bottom half in UV space.
type Cell struct {
	Col, Row int
}

// Face binds a cube face to its atlas cell and the source image that fills it.
type Face struct {
	Direction voxel.Direction
	Cell      Cell
	File      string
}

// Faces is the atlas layout, indexed by direction. The source file names follow
// the game's texture pack convention, which labels faces differently from the
// cube directions they end up on after the axis remap.
var Faces = [6]Face{
	voxel.NegX: {voxel.NegX, Cell{0, 0}, "+y.png"},
	voxel.PosX: {voxel.PosX, Cell{1, 0}, "-x.png"},
	voxel.NegY: {voxel.NegY, Cell{2, 0}, "+x.png"},
	voxel.PosY: {voxel.PosY, Cell{0, 1}, "+z.png"},
	voxel.NegZ: {voxel.NegZ, Cell{1, 1}, "-z.png"},
	voxel.PosZ: {voxel.PosZ, Cell{2, 1}, "-y.png"},
}

// Rect is a UV rectangle.
type Rect struct {
	UMin, VMin, UMax, VMax float32
}

// CellRect returns the UV rectangle covered by c.
func CellRect(c Cell) Rect {
	return Rect{
		UMin: float32(c.Col) / Columns,
		VMin: float32(c.Row) / Rows,
		UMax: float32(c.Col+1) / Columns,
		VMax: float32(c.Row+1) / Rows,
	}
}

// PixelRect returns the pixel rectangle of c in an atlas with the given cell size.
// Image rows grow downwards, so UV row 0 is the lower half of the image.
func PixelRect(c Cell, size int) image.Rectangle {
	x0 := c.Col * size
	y0 := (Rows - 1 - c.Row) * size
	return image.Rect(x0, y0, x0+size, y0+size)
}

// AtlasUV returns the four face-corner UVs for direction d.
func AtlasUV(d voxel.Direction) [4]mgl32.Vec2 {
	r := CellRect(Faces[d].Cell)
	return [4]mgl32.Vec2{
		{r.UMin, r.VMin},
		{r.UMax, r.VMin},
		{r.UMax, r.VMax},
		{r.UMin, r.VMax},
	}
}

// SimpleUV returns the full-texture UVs used by single-texture blocks.
func SimpleUV() [4]mgl32.Vec2 {
	return [4]mgl32.Vec2{{0, 0}, {1, 0}, {1, 1}, {0, 1}}
}

// Mapper assigns UVs to the corners of a cube face.
type Mapper interface {
	FaceUV(d voxel.Direction) [4]mgl32.Vec2
}

// Simple maps every face onto the whole texture.
type Simple struct{}

func (Simple) FaceUV(voxel.Direction) [4]mgl32.Vec2 { return SimpleUV() }

// Layout maps each face onto its atlas cell.
type Layout struct{}

func (Layout) FaceUV(d voxel.Direction) [4]mgl32.Vec2 { return AtlasUV(d) }
