// Package mesh builds per-block-type quad geometry from visible cube faces.
package mesh

import (
	"errors"
	"fmt"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/hytopia-importer/internal/atlas"
	"github.com/Faultbox/hytopia-importer/internal/coords"
	"github.com/Faultbox/hytopia-importer/internal/voxel"
)

// Geometry errors.
var (
	ErrNoFaces     = errors.New("mesh has no faces")
	ErrVertexCount = errors.New("vertex count does not match face count")
	ErrIndexRange  = errors.New("face index out of range")
	ErrNonFinite   = errors.New("non-finite vertex data")
)

// Geometry is the mesh of one block type. Face i owns vertices 4i..4i+3,
// stored in the corner order of the source face; vertices are never shared.
type Geometry struct {
	BlockType int
	Name      string
	Positions []mgl32.Vec3
	UVs       []mgl32.Vec2 // per vertex, filled by AssignUV
	Faces     [][4]uint32  // winding order
	Normals   []mgl32.Vec3 // per face
	// Directions holds the source cube face of each quad. It is empty for
	// fallback geometry, whose UVs are then inferred from the normals.
	Directions []voxel.Direction
	Fallback   bool
}

// addQuad appends one face. Its winding is flipped when it disagrees with want.
func (g *Geometry) addQuad(quad [4]mgl32.Vec3, want mgl32.Vec3) {
	base := uint32(len(g.Positions))
	g.Positions = append(g.Positions, quad[:]...)

	n := quadNormal(quad)
	face := [4]uint32{base, base + 1, base + 2, base + 3}
	if n.Dot(want) < 0 {
		face = [4]uint32{base, base + 3, base + 2, base + 1}
		n = n.Mul(-1)
	}
	g.Faces = append(g.Faces, face)
	g.Normals = append(g.Normals, n)
}

// quadNormal returns the unit normal of a quad from the cross product of its
// diagonals, or the zero vector when the quad has no area.
func quadNormal(q [4]mgl32.Vec3) mgl32.Vec3 {
	n := q[2].Sub(q[0]).Cross(q[3].Sub(q[1]))
	l := n.Len()
	if l < 1e-12 || math32.IsNaN(l) || math32.IsInf(l, 0) {
		return mgl32.Vec3{}
	}
	return n.Mul(1 / l)
}

// isDegenerate reports whether two corners of the quad coincide.
func isDegenerate(q [4]mgl32.Vec3) bool {
	for i := 0; i < 4; i++ {
		for j := i + 1; j < 4; j++ {
			if q[i] == q[j] {
				return true
			}
		}
	}
	return false
}

// AssignUV sets per-vertex UVs from the mapper, using recorded face directions
// or, when there are none, the direction inferred from each face normal.
func (g *Geometry) AssignUV(m atlas.Mapper) {
	g.UVs = make([]mgl32.Vec2, len(g.Positions))
	explicit := len(g.Directions) == len(g.Faces)

	for i := range g.Faces {
		var d voxel.Direction
		if explicit {
			d = g.Directions[i]
		} else {
			d = coords.SourceDirection(g.Normals[i])
		}
		uv := m.FaceUV(d)
		for k := 0; k < 4; k++ {
			g.UVs[4*i+k] = uv[k]
		}
	}
}

// Validate checks the geometry can be handed to a host.
func (g *Geometry) Validate() error {
	if len(g.Faces) == 0 {
		return ErrNoFaces
	}
	if len(g.Positions) != 4*len(g.Faces) || len(g.Normals) != len(g.Faces) {
		return fmt.Errorf("%w: %d vertices, %d faces", ErrVertexCount, len(g.Positions), len(g.Faces))
	}
	for i, f := range g.Faces {
		for _, idx := range f {
			if int(idx) >= len(g.Positions) {
				return fmt.Errorf("%w: face %d index %d", ErrIndexRange, i, idx)
			}
		}
	}
	for i, p := range g.Positions {
		if !finite(p) {
			return fmt.Errorf("%w: vertex %d %v", ErrNonFinite, i, p)
		}
	}
	if g.UVs != nil && len(g.UVs) != len(g.Positions) {
		return fmt.Errorf("%w: %d uvs for %d vertices", ErrVertexCount, len(g.UVs), len(g.Positions))
	}
	return nil
}

func finite(v mgl32.Vec3) bool {
	for _, c := range v {
		if math32.IsNaN(c) || math32.IsInf(c, 0) {
			return false
		}
	}
	return true
}

// Bounds returns the axis-aligned extent of the vertices.
func (g *Geometry) Bounds() (min, max mgl32.Vec3) {
	if len(g.Positions) == 0 {
		return
	}
	min, max = g.Positions[0], g.Positions[0]
	for _, p := range g.Positions[1:] {
		for i := 0; i < 3; i++ {
			min[i] = math32.Min(min[i], p[i])
			max[i] = math32.Max(max[i], p[i])
		}
	}
	return min, max
}
