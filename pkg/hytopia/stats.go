package hytopia

import (
	"math"
	"sort"
)

// Stats summarizes a map for display.
type Stats struct {
	BlockTypes     int
	MultiTexture   int
	Blocks         int
	Entities       int
	MalformedKeys  int
	Min, Max       [3]float64 // Block extents; zero when the map has no valid blocks
	BlocksPerType  map[int]int
	UnknownTypeIDs []int
}

// Stats computes block and entity counts and the block extents.
func (m *Map) Stats() Stats {
	s := Stats{
		BlockTypes:    len(m.BlockTypes),
		Blocks:        len(m.Blocks),
		Entities:      len(m.Entities),
		BlocksPerType: make(map[int]int),
	}
	for _, bt := range m.BlockTypes {
		if bt.IsMultiTexture {
			s.MultiTexture++
		}
	}

	reg := m.Registry()
	unknown := make(map[int]bool)

	s.Min = [3]float64{math.Inf(1), math.Inf(1), math.Inf(1)}
	s.Max = [3]float64{math.Inf(-1), math.Inf(-1), math.Inf(-1)}
	valid := 0
	for key, id := range m.Blocks {
		s.BlocksPerType[id]++
		if _, ok := reg[id]; !ok && !unknown[id] {
			unknown[id] = true
			s.UnknownTypeIDs = append(s.UnknownTypeIDs, id)
		}

		x, y, z, err := ParseCoord(key)
		if err != nil {
			s.MalformedKeys++
			continue
		}
		valid++
		for i, v := range [3]float64{x, y, z} {
			s.Min[i] = math.Min(s.Min[i], v)
			s.Max[i] = math.Max(s.Max[i], v)
		}
	}
	sort.Ints(s.UnknownTypeIDs)
	if valid == 0 {
		s.Min, s.Max = [3]float64{}, [3]float64{}
	}
	return s
}
