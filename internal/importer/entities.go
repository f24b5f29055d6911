package importer

import (
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/go-gl/mathgl/mgl64"
	"go.uber.org/zap"

	"github.com/Faultbox/hytopia-importer/internal/coords"
	"github.com/Faultbox/hytopia-importer/internal/diag"
	"github.com/Faultbox/hytopia-importer/internal/scene"
	"github.com/Faultbox/hytopia-importer/internal/voxel"
	"github.com/Faultbox/hytopia-importer/pkg/hytopia"
)

// EntityName returns the object name for a model file: entity_ plus the file stem.
func EntityName(modelURI string) string {
	base := filepath.Base(filepath.FromSlash(modelURI))
	return EntityPrefix + hytopia.SafeName(strings.TrimSuffix(base, filepath.Ext(base)))
}

// EntityRotation converts a Y-up game rotation into the target's Z-up space.
// Models face the opposite way once imported, so the result is turned half a
// revolution about the up axis.
func EntityRotation(q *hytopia.Quaternion) mgl32.Quat {
	r := mgl32.QuatIdent()
	if q != nil {
		r = mgl32.Quat{W: float32(q.W), V: mgl32.Vec3{float32(q.X), float32(q.Z), float32(q.Y)}}.Normalize()
	}
	turn := mgl32.QuatRotate(-math.Pi, mgl32.Vec3{0, 0, 1})
	return turn.Mul(r).Normalize()
}

// EntityTransform places an entity found at grid position pos.
func EntityTransform(pos voxel.Coord, e hytopia.Entity, center mgl64.Vec3) scene.Transform {
	s := float32(e.Scale())
	return scene.Transform{
		Location: coords.ToTargetSpace(pos, mgl32.Vec3{}, center),
		Rotation: EntityRotation(e.RigidBodyOptions.Rotation),
		Scale:    mgl32.Vec3{s, s, s},
	}
}

// importEntities places the entities inside the region. Unlike block keys, an
// entity key that does not parse is dropped rather than placed at the origin.
func (im *Importer) importEntities(m *hytopia.Map, opts Options, center mgl64.Vec3, coll scene.NodeID, sum *Summary) {
	bounds := opts.Bounds()

	keys := make([]string, 0, len(m.Entities))
	for k := range m.Entities {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		e := m.Entities[key]
		x, y, z, err := hytopia.ParseCoord(key)
		if err != nil {
			w := diag.New(diag.MalformedCoord, key, err)
			im.log.Warn("skipping entity with malformed position", w.Fields()...)
			sum.Warnings = append(sum.Warnings, w)
			continue
		}
		pos := voxel.Coord{X: x, Y: y, Z: z}
		if !bounds.Contains(pos) {
			continue
		}

		model, ok := im.modelPath(opts.ModelDir, e.ModelURI)
		if !ok {
			w := diag.Newf(diag.EntitySkipped, key, "model %q not found under %q", e.ModelURI, opts.ModelDir)
			im.log.Warn("skipping entity", w.Fields()...)
			sum.Warnings = append(sum.Warnings, w)
			continue
		}

		id := im.host.AddModel(EntityName(e.ModelURI), coll, model, EntityTransform(pos, e, center))
		sum.Objects = append(sum.Objects, id)
		sum.Stats.Entities++
		im.log.Debug("placed entity",
			zap.String("model", e.ModelURI),
			zap.String("position", key))
	}
}

func (im *Importer) modelPath(dir, uri string) (string, bool) {
	if dir == "" || uri == "" {
		return "", false
	}
	p := filepath.Join(dir, filepath.FromSlash(uri))
	info, err := os.Stat(p)
	if err != nil || info.IsDir() {
		return "", false
	}
	return p, true
}
