package mesh

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/Faultbox/hytopia-importer/internal/atlas"
	"github.com/Faultbox/hytopia-importer/internal/coords"
	"github.com/Faultbox/hytopia-importer/internal/diag"
	"github.com/Faultbox/hytopia-importer/internal/logger"
	"github.com/Faultbox/hytopia-importer/internal/voxel"
)

func buildCulled(t *testing.T, cells map[voxel.Coord]int, b *Builder) (*Group, []diag.Warning) {
	t.Helper()
	occ := voxel.NewOccupancyMap(cells)
	return b.Build(occ, voxel.ComputeVisibleFaces(occ))
}

func TestBuildTwoAdjacentCells(t *testing.T) {
	group, warnings := buildCulled(t, map[voxel.Coord]int{{X: 0, Y: 0, Z: 0}: 1, {X: 1, Y: 0, Z: 0}: 1}, &Builder{})
	assert.Empty(t, warnings)
	require.Len(t, group.Meshes, 1)

	g := group.Meshes[0]
	assert.Equal(t, 1, g.BlockType)
	assert.Len(t, g.Faces, 10)
	assert.Len(t, g.Positions, 40)
	assert.Len(t, g.Directions, 10)
	assert.False(t, g.Fallback)
	assert.NoError(t, g.Validate())
	assert.Equal(t, 10, group.FaceCount())
}

func TestBuildGroupsByTypeInIDOrder(t *testing.T) {
	group, _ := buildCulled(t, map[voxel.Coord]int{{X: 0, Y: 0, Z: 0}: 7, {X: 0, Y: 1, Z: 0}: 2, {X: 5, Y: 0, Z: 0}: 7}, &Builder{})
	require.Len(t, group.Meshes, 2)
	assert.Equal(t, 2, group.Meshes[0].BlockType)
	assert.Equal(t, 7, group.Meshes[1].BlockType)
	assert.Len(t, group.Meshes[0].Faces, 5)
	assert.Len(t, group.Meshes[1].Faces, 11)
}

func TestNormalsPointOutward(t *testing.T) {
	group, _ := buildCulled(t, map[voxel.Coord]int{{X: 3, Y: -2, Z: 4}: 1}, &Builder{Center: mgl64.Vec3{1, 2, 3}})
	g := group.Meshes[0]
	require.Len(t, g.Faces, 6)

	for i, d := range g.Directions {
		want := coords.TargetNormal(d)
		assert.InDelta(t, 1, g.Normals[i].Dot(want), 1e-5, d.String())

		// The winding reproduces the stored normal.
		f := g.Faces[i]
		q := [4]mgl32.Vec3{g.Positions[f[0]], g.Positions[f[1]], g.Positions[f[2]], g.Positions[f[3]]}
		assert.InDelta(t, 1, quadNormal(q).Dot(want), 1e-5, d.String())
	}
}

func TestAddQuadFlipsInwardWinding(t *testing.T) {
	g := &Geometry{}
	quad := [4]mgl32.Vec3{{0, 0, 0}, {1, 0, 0}, {1, 1, 0}, {0, 1, 0}} // normal +Z
	g.addQuad(quad, mgl32.Vec3{0, 0, -1})

	assert.Equal(t, [4]uint32{0, 3, 2, 1}, g.Faces[0])
	assert.Equal(t, mgl32.Vec3{0, 0, -1}, g.Normals[0])
	// Vertices keep their corner order.
	assert.Equal(t, quad[1], g.Positions[1])
}

func TestBuildPositionsUseTransform(t *testing.T) {
	group, _ := buildCulled(t, map[voxel.Coord]int{{X: 5, Y: 2, Z: -3}: 1}, &Builder{})
	min, max := group.Meshes[0].Bounds()
	assert.Equal(t, mgl32.Vec3{-6, -3, 2}, min)
	assert.Equal(t, mgl32.Vec3{-5, -2, 3}, max)
}

func TestDegenerateFacesFallBackToCubes(t *testing.T) {
	// At this magnitude a unit step is lost in float32, so every quad collapses.
	far := voxel.Coord{X: 1e9, Y: 0, Z: 1e9}
	group, warnings := buildCulled(t, map[voxel.Coord]int{far: 4}, &Builder{})

	assert.Equal(t, 6, diag.Count(warnings, diag.DegenerateFace))
	assert.Equal(t, 1, diag.Count(warnings, diag.GeometryFallback))

	require.Len(t, group.Meshes, 1)
	g := group.Meshes[0]
	assert.True(t, g.Fallback)
	assert.Empty(t, g.Directions)
	assert.Len(t, g.Faces, 6)
}

func TestDegenerateFacesAreLoggedAsWarnings(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	prev := logger.Log
	logger.Log = zap.New(core)
	defer func() { logger.Log = prev }()

	far := voxel.Coord{X: 1e9, Y: 0, Z: 1e9}
	buildCulled(t, map[voxel.Coord]int{far: 4}, &Builder{})

	assert.Equal(t, 6, logs.FilterMessage("skipping degenerate face").Len())
}

func TestCenteredFarRegionKeepsFaces(t *testing.T) {
	b := voxel.Bounds{
		Min: voxel.Coord{X: 20000000, Y: 0, Z: 0},
		Max: voxel.Coord{X: 20000002, Y: 1, Z: 1},
	}
	cell := voxel.Coord{X: 20000001, Y: 0, Z: 0}
	group, warnings := buildCulled(t, map[voxel.Coord]int{cell: 1}, &Builder{Center: coords.CenterOffset(b)})

	assert.Empty(t, warnings)
	require.Len(t, group.Meshes, 1)
	g := group.Meshes[0]
	assert.False(t, g.Fallback)
	assert.Len(t, g.Faces, 6)

	min, max := g.Bounds()
	assert.Equal(t, mgl32.Vec3{-1, -0.5, 0}, min)
	assert.Equal(t, mgl32.Vec3{0, 0.5, 1}, max)
}

func TestFallbackCubesInferDirectionsFromNormals(t *testing.T) {
	b := &Builder{}
	g := b.cubes(1, []voxel.Coord{{X: 0, Y: 0, Z: 0}})
	require.NoError(t, g.Validate())
	assert.Empty(t, g.Directions)

	g.AssignUV(atlas.Layout{})
	require.Len(t, g.UVs, 24)
	for i, d := range voxel.Directions {
		want := atlas.AtlasUV(d)
		for k := 0; k < 4; k++ {
			assert.Equal(t, want[k], g.UVs[4*i+k], d.String())
		}
	}
}

func TestAssignUVUsesRecordedDirections(t *testing.T) {
	group, _ := buildCulled(t, map[voxel.Coord]int{{X: 0, Y: 0, Z: 0}: 1}, &Builder{
		UV: func(int) atlas.Mapper { return atlas.Layout{} },
	})
	g := group.Meshes[0]
	require.Len(t, g.UVs, len(g.Positions))
	for i, d := range g.Directions {
		assert.Equal(t, atlas.AtlasUV(d)[0], g.UVs[4*i], d.String())
	}
	assert.NoError(t, g.Validate())

	g.AssignUV(atlas.Simple{})
	assert.Equal(t, mgl32.Vec2{1, 1}, g.UVs[2])
}

func TestValidate(t *testing.T) {
	assert.ErrorIs(t, (&Geometry{}).Validate(), ErrNoFaces)

	g := &Geometry{
		Positions: []mgl32.Vec3{{0, 0, 0}, {1, 0, 0}, {1, 1, 0}},
		Faces:     [][4]uint32{{0, 1, 2, 3}},
		Normals:   []mgl32.Vec3{{0, 0, 1}},
	}
	assert.ErrorIs(t, g.Validate(), ErrVertexCount)

	g.Positions = append(g.Positions, mgl32.Vec3{0, 1, 0})
	g.Faces[0] = [4]uint32{0, 1, 2, 9}
	assert.ErrorIs(t, g.Validate(), ErrIndexRange)

	g.Faces[0] = [4]uint32{0, 1, 2, 3}
	nan := float32(0)
	g.Positions[3] = mgl32.Vec3{nan / nan, 0, 0}
	assert.ErrorIs(t, g.Validate(), ErrNonFinite)
}
