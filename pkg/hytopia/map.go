// Package hytopia provides parsers for Hytopia world map files.
package hytopia

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
)

// Map format errors.
var (
	ErrInvalidMap        = errors.New("invalid map JSON")
	ErrMissingBlockTypes = errors.New("map file missing 'blockTypes' section")
	ErrMissingBlocks     = errors.New("map file missing 'blocks' section")
	ErrMalformedCoord    = errors.New("malformed coordinate key")
)

// BlockType describes one entry of the map's block type table.
type BlockType struct {
	ID             int    `json:"id"`
	Name           string `json:"name"`
	TextureURI     string `json:"textureUri"`     // File for single-texture blocks, directory for multi-texture
	IsMultiTexture bool   `json:"isMultiTexture"` // Different image per cube face
	IsLiquid       bool   `json:"isLiquid,omitempty"`
}

// Quaternion is a rotation in the game's Y-up convention.
type Quaternion struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
	W float64 `json:"w"`
}

// RigidBodyOptions holds the physics options an entity was placed with.
// Only the rotation is used by the importer.
type RigidBodyOptions struct {
	Rotation *Quaternion `json:"rotation,omitempty"`
}

// Entity is a model placed in the world.
type Entity struct {
	Name             string           `json:"name,omitempty"`
	ModelURI         string           `json:"modelUri"`
	ModelScale       float64          `json:"modelScale,omitempty"`
	RigidBodyOptions RigidBodyOptions `json:"rigidBodyOptions"`
}

// Scale returns the model scale, defaulting to 1 when unset.
func (e Entity) Scale() float64 {
	if e.ModelScale == 0 {
		return 1
	}
	return e.ModelScale
}

// Map represents a parsed Hytopia map file.
type Map struct {
	BlockTypes []BlockType       `json:"blockTypes"`
	Blocks     map[string]int    `json:"blocks"`             // "x,y,z" -> block type id
	Entities   map[string]Entity `json:"entities,omitempty"` // "x,y,z" -> entity
}

// Registry maps block type ids to their descriptors.
type Registry map[int]BlockType

// rawMap is used to detect missing sections, which json.Unmarshal would leave nil silently.
type rawMap struct {
	BlockTypes json.RawMessage `json:"blockTypes"`
	Blocks     json.RawMessage `json:"blocks"`
}

// rawBlockType keeps the id optional so entries without one can be dropped.
type rawBlockType struct {
	ID *int `json:"id"`
	BlockType
}

// ParseMap parses a map file from raw bytes.
func ParseMap(data []byte) (*Map, error) {
	var raw rawMap
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidMap, err)
	}
	if isAbsent(raw.BlockTypes) {
		return nil, ErrMissingBlockTypes
	}
	if isAbsent(raw.Blocks) {
		return nil, ErrMissingBlocks
	}

	var types []rawBlockType
	if err := json.Unmarshal(raw.BlockTypes, &types); err != nil {
		return nil, fmt.Errorf("%w: blockTypes: %v", ErrInvalidMap, err)
	}

	m := &Map{}
	if err := json.Unmarshal(data, m); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidMap, err)
	}

	// Replace with the id-checked table.
	m.BlockTypes = m.BlockTypes[:0]
	for _, t := range types {
		if t.ID == nil {
			continue
		}
		bt := t.BlockType
		bt.ID = *t.ID
		m.BlockTypes = append(m.BlockTypes, bt)
	}
	if m.Blocks == nil {
		m.Blocks = map[string]int{}
	}

	return m, nil
}

func isAbsent(msg json.RawMessage) bool {
	return len(msg) == 0 || bytes.Equal(bytes.TrimSpace(msg), []byte("null"))
}

// LoadMap reads and parses a map file from disk.
func LoadMap(path string) (*Map, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading map %s: %w", path, err)
	}
	m, err := ParseMap(data)
	if err != nil {
		return nil, fmt.Errorf("parsing map %s: %w", path, err)
	}
	return m, nil
}

// Marshal encodes the map as JSON.
func (m *Map) Marshal() ([]byte, error) {
	return json.MarshalIndent(m, "", "  ")
}

// Registry builds the id lookup for the block type table.
// Later entries win when an id is repeated.
func (m *Map) Registry() Registry {
	reg := make(Registry, len(m.BlockTypes))
	for _, bt := range m.BlockTypes {
		reg[bt.ID] = bt
	}
	return reg
}

// IDs returns the registered ids in ascending order.
func (r Registry) IDs() []int {
	ids := make([]int, 0, len(r))
	for id := range r {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

// ParseCoord parses an "x,y,z" key.
func ParseCoord(key string) (x, y, z float64, err error) {
	parts := strings.Split(key, ",")
	if len(parts) != 3 {
		return 0, 0, 0, fmt.Errorf("%w: %q", ErrMalformedCoord, key)
	}
	var v [3]float64
	for i, p := range parts {
		v[i], err = strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return 0, 0, 0, fmt.Errorf("%w: %q", ErrMalformedCoord, key)
		}
	}
	return v[0], v[1], v[2], nil
}

// FormatCoord builds an "x,y,z" key.
func FormatCoord(x, y, z float64) string {
	return strconv.FormatFloat(x, 'f', -1, 64) + "," +
		strconv.FormatFloat(y, 'f', -1, 64) + "," +
		strconv.FormatFloat(z, 'f', -1, 64)
}
