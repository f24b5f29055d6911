// Package coords converts between the game's Y-up grid and the target's Z-up space.
//
// The game stores positions as (h1, height, h2). The target expects (-h1, h2, height),
// which keeps the handedness of the world when viewed from above.
package coords

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/go-gl/mathgl/mgl64"

	"github.com/Faultbox/hytopia-importer/internal/voxel"
)

// ToTargetSpace maps a grid position plus a unit-cube corner offset into target space,
// then adds the centering offset. The sum is formed in float64 and narrowed last, so
// regions far from the grid origin keep unit precision once centred.
func ToTargetSpace(grid voxel.Coord, corner mgl32.Vec3, center mgl64.Vec3) mgl32.Vec3 {
	x := grid.X + float64(corner[0])
	y := grid.Y + float64(corner[1])
	z := grid.Z + float64(corner[2])
	p := mgl64.Vec3{-x, z, y}.Add(center)
	return mgl32.Vec3{float32(p[0]), float32(p[1]), float32(p[2])}
}

// Remap applies the axis remapping to a source-space direction vector.
func Remap(v mgl32.Vec3) mgl32.Vec3 {
	return mgl32.Vec3{-v[0], v[2], v[1]}
}

// Unmap is the inverse of Remap.
func Unmap(v mgl32.Vec3) mgl32.Vec3 {
	return mgl32.Vec3{-v[0], v[2], v[1]}
}

// CenterOffset returns the translation that moves the horizontal midpoint of b to the
// target origin. Height is never re-centered.
func CenterOffset(b voxel.Bounds) mgl64.Vec3 {
	mid := b.Center()
	return mgl64.Vec3{mid.X, -mid.Z, 0}
}

// TargetNormal returns the outward normal of a source face direction in target space.
func TargetNormal(d voxel.Direction) mgl32.Vec3 {
	off := d.Offset()
	return Remap(mgl32.Vec3{float32(off.X), float32(off.Y), float32(off.Z)})
}

// SourceDirection infers which source cube face a target-space normal belongs to,
// using the dominant axis of the un-remapped normal.
func SourceDirection(normal mgl32.Vec3) voxel.Direction {
	n := Unmap(normal)
	ax, ay, az := math32.Abs(n[0]), math32.Abs(n[1]), math32.Abs(n[2])

	switch {
	case ax >= ay && ax >= az:
		if n[0] < 0 {
			return voxel.NegX
		}
		return voxel.PosX
	case ay >= az:
		if n[1] < 0 {
			return voxel.NegY
		}
		return voxel.PosY
	default:
		if n[2] < 0 {
			return voxel.NegZ
		}
		return voxel.PosZ
	}
}
