// Package export writes an imported scene to disk: Wavefront OBJ meshes, a
// shared MTL library, PNG images and an entity placement list.
package export

import (
	"bufio"
	"fmt"
	"image"
	"image/png"
	"io"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/Faultbox/hytopia-importer/internal/logger"
	"github.com/Faultbox/hytopia-importer/internal/material"
	"github.com/Faultbox/hytopia-importer/internal/scene"
	"github.com/Faultbox/hytopia-importer/internal/texture"
	"github.com/Faultbox/hytopia-importer/pkg/hytopia"
)

// File names shared by every export.
const (
	MaterialLibrary = "materials.mtl"
	EntityList      = "entities.yaml"
)

// swatchSize is the edge length of flat-colour PNGs.
const swatchSize = 16

// Kind classifies written files.
type Kind string

const (
	KindMesh     Kind = "mesh"
	KindMaterial Kind = "material"
	KindImage    Kind = "image"
	KindEntities Kind = "entities"
)

// Artifact is one file written by an export.
type Artifact struct {
	Name string // scene name of the object, material or image
	Kind Kind
	Path string
}

// Placement is one entity in entities.yaml.
type Placement struct {
	Name     string     `yaml:"name"`
	Model    string     `yaml:"model"`
	Location [3]float32 `yaml:"location,flow"`
	Rotation [4]float32 `yaml:"rotation,flow"` // w, x, y, z
	Scale    [3]float32 `yaml:"scale,flow"`
}

// Writer exports scenes into Dir.
type Writer struct {
	Dir string
	log *zap.Logger
}

// New creates a writer for dir.
func New(dir string) *Writer {
	return &Writer{Dir: dir, log: logger.Named("export")}
}

// Write exports every live object of s. Hidden objects are written too.
func (w *Writer) Write(s *scene.Scene) ([]Artifact, error) {
	if err := os.MkdirAll(w.Dir, 0755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	var (
		out        []Artifact
		placements []Placement
	)
	for _, id := range s.Objects() {
		n := s.Node(id)
		switch n.Kind {
		case scene.KindMesh:
			path := filepath.Join(w.Dir, n.Name+".obj")
			if err := writeFile(path, func(f io.Writer) error { return WriteOBJ(f, n) }); err != nil {
				return out, err
			}
			out = append(out, Artifact{Name: n.Name, Kind: KindMesh, Path: path})
		case scene.KindModel:
			placements = append(placements, placementOf(n))
		}
	}

	mats, err := w.writeMaterials(s)
	out = append(out, mats...)
	if err != nil {
		return out, err
	}

	if len(placements) > 0 {
		path := filepath.Join(w.Dir, EntityList)
		data, err := yaml.Marshal(placements)
		if err != nil {
			return out, fmt.Errorf("encoding entities: %w", err)
		}
		if err := os.WriteFile(path, data, 0644); err != nil {
			return out, fmt.Errorf("writing entities: %w", err)
		}
		out = append(out, Artifact{Name: EntityList, Kind: KindEntities, Path: path})
	}

	w.log.Info("scene exported",
		zap.String("dir", w.Dir),
		zap.Int("files", len(out)),
		zap.Int("entities", len(placements)))
	return out, nil
}

func placementOf(n *scene.Node) Placement {
	t := n.Transform
	return Placement{
		Name:     n.Name,
		Model:    n.Model,
		Location: [3]float32(t.Location),
		Rotation: [4]float32{t.Rotation.W, t.Rotation.V[0], t.Rotation.V[1], t.Rotation.V[2]},
		Scale:    [3]float32(t.Scale),
	}
}

// WriteOBJ writes one mesh object. Every vertex gets its own texture
// coordinate and every face its own normal.
func WriteOBJ(w io.Writer, n *scene.Node) error {
	g := n.Mesh
	if g == nil {
		return fmt.Errorf("%s: not a mesh", n.Name)
	}
	bw := bufio.NewWriter(w)

	fmt.Fprintln(bw, "# hytopia-importer")
	fmt.Fprintln(bw, "mtllib", MaterialLibrary)
	fmt.Fprintln(bw, "o", n.Name)
	for _, p := range g.Positions {
		fmt.Fprintf(bw, "v %g %g %g\n", p[0], p[1], p[2])
	}
	hasUV := len(g.UVs) == len(g.Positions)
	if hasUV {
		for _, uv := range g.UVs {
			fmt.Fprintf(bw, "vt %g %g\n", uv[0], uv[1])
		}
	}
	for _, nm := range g.Normals {
		fmt.Fprintf(bw, "vn %g %g %g\n", nm[0], nm[1], nm[2])
	}
	if n.Material != "" {
		fmt.Fprintln(bw, "usemtl", n.Material)
	}
	for i, face := range g.Faces {
		fmt.Fprint(bw, "f")
		for _, v := range face {
			if hasUV {
				fmt.Fprintf(bw, " %d/%d/%d", v+1, v+1, i+1)
			} else {
				fmt.Fprintf(bw, " %d//%d", v+1, i+1)
			}
		}
		fmt.Fprintln(bw)
	}
	return bw.Flush()
}

// writeMaterials writes the MTL library and the images its materials use.
func (w *Writer) writeMaterials(s *scene.Scene) ([]Artifact, error) {
	names := s.Materials()
	if len(names) == 0 {
		return nil, nil
	}

	var out []Artifact
	images := make(map[string]string) // material name -> PNG file name
	for _, name := range names {
		surf, _ := s.Material(name)
		file, img := imageOf(s, surf)
		if img == nil {
			continue
		}
		path := filepath.Join(w.Dir, file)
		if err := writeFile(path, func(f io.Writer) error { return png.Encode(f, img) }); err != nil {
			return out, err
		}
		images[name] = file
		out = append(out, Artifact{Name: file, Kind: KindImage, Path: path})
	}

	path := filepath.Join(w.Dir, MaterialLibrary)
	err := writeFile(path, func(f io.Writer) error {
		bw := bufio.NewWriter(f)
		for _, name := range names {
			surf, _ := s.Material(name)
			writeMTL(bw, surf, images[name])
		}
		return bw.Flush()
	})
	if err != nil {
		return out, err
	}
	return append(out, Artifact{Name: MaterialLibrary, Kind: KindMaterial, Path: path}), nil
}

// imageOf returns the PNG file name and pixels backing surf. Flat colours get
// a small swatch so every material has a texture slot.
func imageOf(s *scene.Scene, surf *material.Surface) (string, image.Image) {
	if name := surf.ImageName(); name != "" {
		img, ok := s.Image(name)
		if !ok {
			return "", nil
		}
		return name + ".png", img
	}
	return hytopia.SafeName(surf.Name) + "_color.png", texture.Swatch(surf.Color, swatchSize)
}

func writeMTL(w io.Writer, surf *material.Surface, file string) {
	fmt.Fprintln(w, "newmtl", surf.Name)
	if surf.Kind == material.KindColor {
		c := surf.Color
		fmt.Fprintf(w, "Kd %.4f %.4f %.4f\n", float64(c.R)/255, float64(c.G)/255, float64(c.B)/255)
	} else {
		fmt.Fprintln(w, "Kd 1.0000 1.0000 1.0000")
	}
	fmt.Fprintf(w, "Pr %.4f\n", surf.Roughness)
	fmt.Fprintf(w, "Ni %.4f\n", surf.SpecularIOR)
	if surf.Alpha < 1 {
		fmt.Fprintf(w, "d %.4f\n", surf.Alpha)
		fmt.Fprintf(w, "Tf %.4f %.4f %.4f\n", surf.Transmission, surf.Transmission, surf.Transmission)
	}
	if file != "" {
		fmt.Fprintln(w, "map_Kd", file)
	}
	fmt.Fprintln(w)
}

func writeFile(path string, fill func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if err := fill(f); err != nil {
		f.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", path, err)
	}
	return nil
}
