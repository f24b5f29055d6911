// Package voxel provides the sparse block index and face visibility culling
// for Hytopia worlds.
package voxel

import (
	"errors"
	"fmt"
)

// ErrInvalidBounds is returned when an import region is empty or inverted.
var ErrInvalidBounds = errors.New("invalid bounds")

// LargeVolumeCells is the region size above which imports are flagged as slow.
const LargeVolumeCells = 1_000_000

// Coord is a grid position in the game's convention: X and Z horizontal, Y up.
type Coord struct {
	X, Y, Z float64
}

// Add returns c + o.
func (c Coord) Add(o Coord) Coord {
	return Coord{c.X + o.X, c.Y + o.Y, c.Z + o.Z}
}

// Less orders coordinates by Y, then Z, then X.
func (c Coord) Less(o Coord) bool {
	if c.Y != o.Y {
		return c.Y < o.Y
	}
	if c.Z != o.Z {
		return c.Z < o.Z
	}
	return c.X < o.X
}

func (c Coord) String() string {
	return fmt.Sprintf("(%g,%g,%g)", c.X, c.Y, c.Z)
}

// Bounds is a closed axis-aligned region.
type Bounds struct {
	Min, Max Coord
}

// Validate rejects inverted regions and regions that are degenerate on every axis.
// A flat slab (Min == Max on one or two axes) is a valid import region.
func (b Bounds) Validate() error {
	min := [3]float64{b.Min.X, b.Min.Y, b.Min.Z}
	max := [3]float64{b.Max.X, b.Max.Y, b.Max.Z}

	open := false
	for i := range min {
		if min[i] > max[i] {
			return fmt.Errorf("%w: min %v exceeds max %v", ErrInvalidBounds, b.Min, b.Max)
		}
		if min[i] < max[i] {
			open = true
		}
	}
	if !open {
		return fmt.Errorf("%w: min %v must be less than max %v", ErrInvalidBounds, b.Min, b.Max)
	}
	return nil
}

// Contains reports whether c lies within the region on every axis.
func (b Bounds) Contains(c Coord) bool {
	return b.Min.X <= c.X && c.X <= b.Max.X &&
		b.Min.Y <= c.Y && c.Y <= b.Max.Y &&
		b.Min.Z <= c.Z && c.Z <= b.Max.Z
}

// Volume returns the number of unit cells in the region. Bounds are inclusive,
// so a flat slab still counts one layer of cells.
func (b Bounds) Volume() float64 {
	return (b.Max.X - b.Min.X + 1) * (b.Max.Y - b.Min.Y + 1) * (b.Max.Z - b.Min.Z + 1)
}

// Center returns the midpoint of the region.
func (b Bounds) Center() Coord {
	return Coord{
		(b.Min.X + b.Max.X) / 2,
		(b.Min.Y + b.Max.Y) / 2,
		(b.Min.Z + b.Max.Z) / 2,
	}
}
