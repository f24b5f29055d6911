// Package importer turns a Hytopia map into meshes, materials and model
// placements in a host scene.
package importer

import (
	"fmt"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Faultbox/hytopia-importer/internal/atlas"
	"github.com/Faultbox/hytopia-importer/internal/coords"
	"github.com/Faultbox/hytopia-importer/internal/diag"
	"github.com/Faultbox/hytopia-importer/internal/logger"
	"github.com/Faultbox/hytopia-importer/internal/material"
	"github.com/Faultbox/hytopia-importer/internal/mesh"
	"github.com/Faultbox/hytopia-importer/internal/scene"
	"github.com/Faultbox/hytopia-importer/internal/voxel"
	"github.com/Faultbox/hytopia-importer/pkg/hytopia"
)

// Naming conventions for imported content. Clear relies on them.
const (
	ObjectPrefix   = "Hytopia_"
	EntityPrefix   = "entity_"
	CollectionName = "World Map"
)

// Host is the scene the importer writes into.
type Host interface {
	EnsureCollection(name string) scene.NodeID
	AddMesh(name string, parent scene.NodeID, g *mesh.Geometry, surf *material.Surface) scene.NodeID
	AddModel(name string, parent scene.NodeID, model string, t scene.Transform) scene.NodeID
	MoveToCollection(id, coll scene.NodeID)
	SetHidden(id scene.NodeID, hidden, recursive bool)
	RemoveByPrefix(prefixes ...string) int
	RemoveCollection(name string) bool
	RemoveMaterials(prefix string) int
}

// Importer runs imports against a host.
type Importer struct {
	host Host
	log  *zap.Logger
}

// New creates an importer writing into host.
func New(host Host) *Importer {
	return &Importer{host: host, log: logger.Named("importer")}
}

// Import loads the map and builds everything inside the region.
//
// Invalid bounds and unreadable maps fail before the host is touched. Missing
// textures, atlas faces, models and broken geometry degrade to fallbacks and
// make the import partial.
func (im *Importer) Import(sess *Session, opts Options) *Summary {
	start := time.Now()
	sum := &Summary{ID: uuid.New().String()}
	log := im.log.With(zap.String("import_id", sum.ID))

	bounds := opts.Bounds()
	if err := bounds.Validate(); err != nil {
		sum.Err = err
		return sum.finish(start)
	}
	m, err := hytopia.LoadMap(opts.MapPath)
	if err != nil {
		sum.Err = err
		return sum.finish(start)
	}
	sum.Warnings = append(sum.Warnings, opts.expandDirs()...)

	log.Info("importing map",
		zap.String("map", opts.MapPath),
		zap.Stringer("min", opts.Min),
		zap.Stringer("max", opts.Max),
		zap.Int("block_types", len(m.BlockTypes)),
		zap.Int("blocks", len(m.Blocks)),
		zap.Int("entities", len(m.Entities)))

	center := coords.CenterOffset(bounds)
	coll := im.host.EnsureCollection(CollectionName)

	if opts.ImportBlocks {
		im.importBlocks(sess, m, opts, center, coll, sum)
	}
	if opts.ImportEntities {
		im.importEntities(m, opts, center, coll, sum)
	}

	for _, id := range sum.Objects {
		im.host.MoveToCollection(id, coll)
	}
	im.host.SetHidden(coll, false, true)

	sum.finish(start)
	log.Info("import finished",
		zap.Stringer("status", sum.Status),
		zap.Int("objects", len(sum.Objects)),
		zap.Int("faces", sum.Stats.Faces),
		zap.Int("warnings", len(sum.Warnings)),
		zap.Duration("took", sum.Duration))
	return sum
}

func (im *Importer) importBlocks(sess *Session, m *hytopia.Map, opts Options, center mgl64.Vec3, coll scene.NodeID, sum *Summary) {
	occ, warnings, err := voxel.BuildIndex(m.Blocks, opts.Bounds())
	sum.Warnings = append(sum.Warnings, warnings...)
	if err != nil {
		// Bounds were validated above.
		sum.Err = err
		return
	}
	sum.Stats.BlocksInBounds = occ.Len()
	if occ.Len() == 0 {
		im.log.Info("no blocks inside bounds")
		return
	}

	var faces []voxel.FaceRecord
	if opts.CullFaces {
		faces = voxel.ComputeVisibleFaces(occ)
		sum.Stats.CulledFaces = 6*occ.Len() - len(faces)
	} else {
		faces = voxel.GenerateAllFaces(occ)
	}

	// Materials are resolved only for types that end up with a mesh, so a
	// fully enclosed type never reports a missing texture.
	reg := m.Registry()
	mats := sess.Materials(opts.TextureDir)
	surfaces := make(map[int]*material.Surface)
	names := make(map[int]string)
	resolve := func(id int) *material.Surface {
		if s, ok := surfaces[id]; ok {
			return s
		}
		bt, ok := reg[id]
		if !ok {
			w := diag.Newf(diag.UnknownBlockType, fmt.Sprintf("block type %d", id), "not in blockTypes")
			im.log.Warn("unknown block type, using default material", w.Fields()...)
			sum.Warnings = append(sum.Warnings, w)
			surfaces[id] = mats.Default()
			names[id] = fmt.Sprintf("%sunknown_%d", ObjectPrefix, id)
			return surfaces[id]
		}
		s, warnings := mats.Resolve(bt)
		sum.Warnings = append(sum.Warnings, warnings...)
		surfaces[id] = s
		names[id] = ObjectPrefix + hytopia.SafeName(bt.Name)
		return s
	}

	b := &mesh.Builder{
		Center: center,
		UV:     func(id int) atlas.Mapper { return resolve(id).Mapper() },
	}
	group, warnings := b.Build(occ, faces)
	sum.Warnings = append(sum.Warnings, warnings...)

	for _, g := range group.Meshes {
		surf := resolve(g.BlockType)
		if err := g.Validate(); err != nil {
			w := diag.New(diag.GeometryFallback, names[g.BlockType], err)
			im.log.Warn("dropping invalid mesh", w.Fields()...)
			sum.Warnings = append(sum.Warnings, w)
			continue
		}
		id := im.host.AddMesh(names[g.BlockType], coll, g, surf)
		sum.Objects = append(sum.Objects, id)
		sum.Stats.Meshes++
		sum.Stats.Faces += len(g.Faces)
		if g.Fallback {
			sum.Stats.Fallbacks++
		}
	}

	st := mats.Stats()
	sum.Stats.Materials = st.Materials
	sum.Stats.Atlases = st.Atlases
}

// Clear removes everything a previous import created and empties the session caches.
func (im *Importer) Clear(sess *Session) int {
	n := im.host.RemoveByPrefix(ObjectPrefix, EntityPrefix)
	if im.host.RemoveCollection(CollectionName) {
		n++
	}
	mats := im.host.RemoveMaterials(hytopia.NamePrefix)
	if sess != nil {
		sess.Reset()
	}
	im.log.Info("cleared imported content", zap.Int("objects", n), zap.Int("materials", mats))
	return n
}
