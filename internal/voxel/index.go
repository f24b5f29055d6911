package voxel

import (
	"sort"

	"go.uber.org/zap"

	"github.com/Faultbox/hytopia-importer/internal/diag"
	"github.com/Faultbox/hytopia-importer/internal/logger"
	"github.com/Faultbox/hytopia-importer/pkg/hytopia"
)

// OccupancyMap maps occupied grid cells to block type ids.
// It is read-only once built.
type OccupancyMap struct {
	cells  map[Coord]int
	coords []Coord // sorted, for stable traversal
}

// NewOccupancyMap builds a map directly from cells.
func NewOccupancyMap(cells map[Coord]int) *OccupancyMap {
	occ := &OccupancyMap{cells: make(map[Coord]int, len(cells))}
	for c, id := range cells {
		occ.cells[c] = id
	}
	occ.sort()
	return occ
}

func (o *OccupancyMap) sort() {
	o.coords = make([]Coord, 0, len(o.cells))
	for c := range o.cells {
		o.coords = append(o.coords, c)
	}
	sort.Slice(o.coords, func(i, j int) bool { return o.coords[i].Less(o.coords[j]) })
}

// Len returns the number of occupied cells.
func (o *OccupancyMap) Len() int {
	return len(o.cells)
}

// Get returns the block type at c.
func (o *OccupancyMap) Get(c Coord) (int, bool) {
	id, ok := o.cells[c]
	return id, ok
}

// Has reports whether c is occupied.
func (o *OccupancyMap) Has(c Coord) bool {
	_, ok := o.cells[c]
	return ok
}

// Coords returns the occupied cells in traversal order. The slice must not be modified.
func (o *OccupancyMap) Coords() []Coord {
	return o.coords
}

// ByType groups occupied cells by block type, each group in traversal order.
func (o *OccupancyMap) ByType() map[int][]Coord {
	groups := make(map[int][]Coord)
	for _, c := range o.coords {
		id := o.cells[c]
		groups[id] = append(groups[id], c)
	}
	return groups
}

// Types returns the distinct block type ids in ascending order.
func (o *OccupancyMap) Types() []int {
	seen := make(map[int]bool)
	var ids []int
	for _, id := range o.cells {
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	sort.Ints(ids)
	return ids
}

// BuildIndex parses "x,y,z" keys and keeps the cells inside b.
//
// Malformed keys are coerced to the origin and reported; they are still subject
// to the bounds check. The only error is an invalid region.
func BuildIndex(raw map[string]int, b Bounds) (*OccupancyMap, []diag.Warning, error) {
	if err := b.Validate(); err != nil {
		return &OccupancyMap{cells: map[Coord]int{}}, nil, err
	}

	var warnings []diag.Warning
	if v := b.Volume(); v > LargeVolumeCells {
		w := diag.Newf(diag.LargeVolume, b.Min.String()+".."+b.Max.String(),
			"import volume %.0f exceeds %d cells and may be slow", v, LargeVolumeCells)
		logger.Warn("large import volume", w.Fields()...)
		warnings = append(warnings, w)
	}

	// Sorted keys keep coercion collisions deterministic.
	keys := make([]string, 0, len(raw))
	for k := range raw {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	occ := &OccupancyMap{cells: make(map[Coord]int)}
	for _, key := range keys {
		x, y, z, err := hytopia.ParseCoord(key)
		if err != nil {
			w := diag.New(diag.MalformedCoord, key, err)
			logger.Warn("malformed block coordinate, using origin", w.Fields()...)
			warnings = append(warnings, w)
		}
		c := Coord{x, y, z}
		if b.Contains(c) {
			occ.cells[c] = raw[key]
		}
	}
	occ.sort()

	logger.Debug("built occupancy index",
		zap.Int("total", len(raw)),
		zap.Int("in_bounds", occ.Len()))

	return occ, warnings, nil
}
