package mesh

import (
	"fmt"
	"sort"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/go-gl/mathgl/mgl64"
	"go.uber.org/zap"

	"github.com/Faultbox/hytopia-importer/internal/atlas"
	"github.com/Faultbox/hytopia-importer/internal/coords"
	"github.com/Faultbox/hytopia-importer/internal/diag"
	"github.com/Faultbox/hytopia-importer/internal/logger"
	"github.com/Faultbox/hytopia-importer/internal/voxel"
)

// Group is the set of meshes produced by one build, ordered by block type id.
type Group struct {
	Meshes []*Geometry
}

// FaceCount returns the total number of faces in the group.
func (g *Group) FaceCount() int {
	n := 0
	for _, m := range g.Meshes {
		n += len(m.Faces)
	}
	return n
}

// Builder turns face records into target-space geometry.
type Builder struct {
	Center mgl64.Vec3
	// UV, when set, picks the mapper used to assign UVs to each block type's mesh.
	UV func(blockType int) atlas.Mapper
}

// Build creates one mesh per block type present in faces.
//
// Quads whose corners collapse are skipped. When a block type ends up with no
// usable faces, its mesh is replaced by one unit cube per occupied cell.
func (b *Builder) Build(occ *voxel.OccupancyMap, faces []voxel.FaceRecord) (*Group, []diag.Warning) {
	log := logger.Named("mesh")

	byType := make(map[int][]voxel.FaceRecord)
	for _, f := range faces {
		byType[f.BlockType] = append(byType[f.BlockType], f)
	}
	ids := make([]int, 0, len(byType))
	for id := range byType {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	var (
		group    = &Group{}
		warnings []diag.Warning
		cells    map[int][]voxel.Coord
	)
	for _, id := range ids {
		g := &Geometry{BlockType: id}
		for _, f := range byType[id] {
			quad := b.quad(f.Position, f.Corners)
			if isDegenerate(quad) {
				w := diag.Newf(diag.DegenerateFace, fmt.Sprintf("%v %s", f.Position, f.Direction),
					"face corners collapse in target space")
				log.Warn("skipping degenerate face", w.Fields()...)
				warnings = append(warnings, w)
				continue
			}
			g.addQuad(quad, coords.TargetNormal(f.Direction))
			g.Directions = append(g.Directions, f.Direction)
		}

		if err := g.Validate(); err != nil {
			if cells == nil {
				cells = occ.ByType()
			}
			w := diag.New(diag.GeometryFallback, fmt.Sprintf("block type %d", id), err)
			log.Warn("mesh finalisation failed, using unit cubes", w.Fields()...)
			warnings = append(warnings, w)
			g = b.cubes(id, cells[id])
		}

		if b.UV != nil {
			g.AssignUV(b.UV(id))
		}
		group.Meshes = append(group.Meshes, g)
		log.Debug("built mesh",
			zap.Int("block_type", id),
			zap.Int("faces", len(g.Faces)),
			zap.Bool("fallback", g.Fallback))
	}
	return group, warnings
}

func (b *Builder) quad(pos voxel.Coord, corners [4]voxel.Coord) [4]mgl32.Vec3 {
	var q [4]mgl32.Vec3
	for i, c := range corners {
		q[i] = coords.ToTargetSpace(pos, mgl32.Vec3{float32(c.X), float32(c.Y), float32(c.Z)}, b.Center)
	}
	return q
}

// cubes builds six faces for every cell without culling or direction metadata.
func (b *Builder) cubes(id int, cells []voxel.Coord) *Geometry {
	g := &Geometry{BlockType: id, Fallback: true}
	for _, c := range cells {
		for _, d := range voxel.Directions {
			g.addQuad(b.quad(c, d.Corners()), coords.TargetNormal(d))
		}
	}
	return g
}
