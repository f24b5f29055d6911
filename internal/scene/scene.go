// Package scene is an in-memory host scene: a hierarchy of named collections,
// meshes and model placements, plus the materials and images they reference.
//
// Nodes live in an arena and refer to each other by index. Hierarchy walks use
// explicit stacks, so deep trees never grow the call stack.
package scene

import (
	"fmt"
	"image"
	"sort"
	"strings"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/hytopia-importer/internal/material"
	"github.com/Faultbox/hytopia-importer/internal/mesh"
)

// NodeID indexes a node in the arena. It stays valid until the node is removed.
type NodeID int

// None is the parent of the root.
const None NodeID = -1

// Kind classifies nodes.
type Kind int

const (
	KindRoot Kind = iota
	KindCollection
	KindMesh
	KindModel
)

func (k Kind) String() string {
	switch k {
	case KindRoot:
		return "root"
	case KindCollection:
		return "collection"
	case KindMesh:
		return "mesh"
	case KindModel:
		return "model"
	}
	return "unknown"
}

// Transform places a node relative to the scene origin.
type Transform struct {
	Location mgl32.Vec3
	Rotation mgl32.Quat
	Scale    mgl32.Vec3
}

// Identity returns the transform that leaves a node where it is.
func Identity() Transform {
	return Transform{Rotation: mgl32.QuatIdent(), Scale: mgl32.Vec3{1, 1, 1}}
}

// Node is one entry of the scene hierarchy.
type Node struct {
	Name      string
	Kind      Kind
	Parent    NodeID
	Children  []NodeID
	Hidden    bool
	Transform Transform
	Mesh      *mesh.Geometry // KindMesh
	Material  string         // KindMesh
	Model     string         // KindModel: path of the model file
	removed   bool
}

// Scene is the host scene.
type Scene struct {
	nodes     []Node
	names     map[string]NodeID
	materials map[string]*material.Surface
	images    map[string]image.Image
}

// New creates a scene holding only its root.
func New() *Scene {
	s := &Scene{}
	s.reset()
	return s
}

func (s *Scene) reset() {
	s.nodes = []Node{{Name: "Scene", Kind: KindRoot, Parent: None, Transform: Identity()}}
	s.names = map[string]NodeID{"Scene": 0}
	s.materials = make(map[string]*material.Surface)
	s.images = make(map[string]image.Image)
}

// Root returns the root node id.
func (s *Scene) Root() NodeID { return 0 }

// Node returns the node with the given id, or nil if it was removed.
func (s *Scene) Node(id NodeID) *Node {
	if id < 0 || int(id) >= len(s.nodes) || s.nodes[id].removed {
		return nil
	}
	return &s.nodes[id]
}

// Lookup finds a node by exact name.
func (s *Scene) Lookup(name string) (NodeID, bool) {
	id, ok := s.names[name]
	return id, ok
}

// uniqueName returns base, or base with the first free ".NNN" suffix.
func (s *Scene) uniqueName(base string) string {
	if _, taken := s.names[base]; !taken {
		return base
	}
	for i := 1; ; i++ {
		name := fmt.Sprintf("%s.%03d", base, i)
		if _, taken := s.names[name]; !taken {
			return name
		}
	}
}

func (s *Scene) add(n Node) NodeID {
	n.Name = s.uniqueName(n.Name)
	id := NodeID(len(s.nodes))
	s.nodes = append(s.nodes, n)
	s.names[n.Name] = id
	if p := s.Node(n.Parent); p != nil {
		p.Children = append(p.Children, id)
	}
	return id
}

// EnsureCollection returns the collection with the given name under the root,
// creating it when absent.
func (s *Scene) EnsureCollection(name string) NodeID {
	if id, ok := s.names[name]; ok && s.nodes[id].Kind == KindCollection {
		return id
	}
	return s.add(Node{Name: name, Kind: KindCollection, Parent: s.Root(), Transform: Identity()})
}

// AddMesh links a mesh object under parent and registers its material.
// The stored name may carry a ".NNN" suffix when name is taken.
func (s *Scene) AddMesh(name string, parent NodeID, g *mesh.Geometry, surf *material.Surface) NodeID {
	n := Node{Name: name, Kind: KindMesh, Parent: parent, Transform: Identity(), Mesh: g}
	if surf != nil {
		n.Material = s.EnsureMaterial(surf)
	}
	id := s.add(n)
	g.Name = s.nodes[id].Name
	return id
}

// AddModel places a model file under parent.
func (s *Scene) AddModel(name string, parent NodeID, model string, t Transform) NodeID {
	return s.add(Node{Name: name, Kind: KindModel, Parent: parent, Model: model, Transform: t})
}

// Descendants returns every node below id in depth-first pre-order.
func (s *Scene) Descendants(id NodeID) []NodeID {
	n := s.Node(id)
	if n == nil {
		return nil
	}
	var out []NodeID
	stack := reverse(n.Children)
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		out = append(out, cur)
		stack = append(stack, reverse(s.nodes[cur].Children)...)
	}
	return out
}

func reverse(ids []NodeID) []NodeID {
	out := make([]NodeID, len(ids))
	for i, id := range ids {
		out[len(ids)-1-i] = id
	}
	return out
}

// SetHidden shows or hides a node, and optionally everything below it.
func (s *Scene) SetHidden(id NodeID, hidden, recursive bool) {
	n := s.Node(id)
	if n == nil {
		return
	}
	n.Hidden = hidden
	if !recursive {
		return
	}
	for _, d := range s.Descendants(id) {
		s.nodes[d].Hidden = hidden
	}
}

// TopLevel returns the ancestor of id that sits directly under the root.
func (s *Scene) TopLevel(id NodeID) NodeID {
	for {
		n := s.Node(id)
		if n == nil || n.Parent == None || n.Parent == s.Root() {
			return id
		}
		id = n.Parent
	}
}

// MoveToCollection re-parents the top-level ancestor of id under coll.
// Objects already inside coll are left alone.
func (s *Scene) MoveToCollection(id, coll NodeID) {
	top := s.TopLevel(id)
	if top == coll || s.Node(top) == nil || s.Node(coll) == nil {
		return
	}
	for cur := coll; cur != None; cur = s.nodes[cur].Parent {
		if cur == top {
			return // coll lives inside top
		}
	}
	s.detach(top)
	s.nodes[top].Parent = coll
	s.nodes[coll].Children = append(s.nodes[coll].Children, top)
}

func (s *Scene) detach(id NodeID) {
	p := s.Node(s.nodes[id].Parent)
	if p == nil {
		return
	}
	for i, c := range p.Children {
		if c == id {
			p.Children = append(p.Children[:i], p.Children[i+1:]...)
			return
		}
	}
}

// Remove deletes a node and everything below it. The root cannot be removed.
func (s *Scene) Remove(id NodeID) int {
	if id == s.Root() || s.Node(id) == nil {
		return 0
	}
	s.detach(id)
	doomed := append([]NodeID{id}, s.Descendants(id)...)
	for _, d := range doomed {
		n := &s.nodes[d]
		delete(s.names, n.Name)
		n.removed = true
		n.Children = nil
		n.Mesh = nil
	}
	return len(doomed)
}

// RemoveByPrefix removes every node whose name starts with one of the prefixes,
// together with its children, and returns how many nodes were removed.
func (s *Scene) RemoveByPrefix(prefixes ...string) int {
	removed := 0
	for i := range s.nodes {
		id := NodeID(i)
		n := s.Node(id)
		if n == nil || id == s.Root() {
			continue
		}
		for _, p := range prefixes {
			if strings.HasPrefix(n.Name, p) {
				removed += s.Remove(id)
				break
			}
		}
	}
	return removed
}

// RemoveCollection removes the named collection and its contents.
func (s *Scene) RemoveCollection(name string) bool {
	id, ok := s.names[name]
	if !ok || s.nodes[id].Kind != KindCollection {
		return false
	}
	s.Remove(id)
	return true
}

// Objects returns the live mesh and model nodes in creation order.
func (s *Scene) Objects() []NodeID {
	var out []NodeID
	for i := range s.nodes {
		n := &s.nodes[i]
		if !n.removed && (n.Kind == KindMesh || n.Kind == KindModel) {
			out = append(out, NodeID(i))
		}
	}
	return out
}

// Len returns the number of live nodes, root included.
func (s *Scene) Len() int {
	return len(s.names)
}

// EnsureMaterial registers surf under its name. An existing material with the
// same name is kept, as are the images it references.
func (s *Scene) EnsureMaterial(surf *material.Surface) string {
	if _, ok := s.materials[surf.Name]; ok {
		return surf.Name
	}
	s.materials[surf.Name] = surf
	switch surf.Kind {
	case material.KindAtlas:
		s.EnsureImage(surf.ImageName(), surf.Atlas.Image)
	case material.KindTexture:
		s.EnsureImage(surf.ImageName(), surf.Image)
	}
	return surf.Name
}

// EnsureImage registers img under name unless the name is taken.
func (s *Scene) EnsureImage(name string, img image.Image) string {
	if _, ok := s.images[name]; !ok {
		s.images[name] = img
	}
	return name
}

// Material returns a registered material.
func (s *Scene) Material(name string) (*material.Surface, bool) {
	m, ok := s.materials[name]
	return m, ok
}

// Image returns a registered image.
func (s *Scene) Image(name string) (image.Image, bool) {
	img, ok := s.images[name]
	return img, ok
}

// Materials returns registered material names in sorted order.
func (s *Scene) Materials() []string {
	return sortedKeys(s.materials)
}

// Images returns registered image names in sorted order.
func (s *Scene) Images() []string {
	return sortedKeys(s.images)
}

// RemoveMaterials drops materials, and the images they reference, whose names
// start with prefix.
func (s *Scene) RemoveMaterials(prefix string) int {
	n := 0
	for name, m := range s.materials {
		if !strings.HasPrefix(name, prefix) {
			continue
		}
		if img := m.ImageName(); img != "" {
			delete(s.images, img)
		}
		delete(s.materials, name)
		n++
	}
	return n
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
