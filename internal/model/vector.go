package model

import (
	"gonum.org/v1/gonum/spatial/r3"
)

// Vec is a point or direction in the environment.
type Vec = r3.Vec

// Forward is the heading an agent starts with.
var Forward = Vec{Z: 1}

// Bounds is an axis-aligned box.
type Bounds struct {
	Min Vec `json:"min" yaml:"min"`
	Max Vec `json:"max" yaml:"max"`
}

// Center returns the middle of the box.
func (b Bounds) Center() Vec {
	return r3.Scale(0.5, r3.Add(b.Min, b.Max))
}

// Extents returns the half size along each axis.
func (b Bounds) Extents() Vec {
	return r3.Scale(0.5, r3.Sub(b.Max, b.Min))
}

// Diagonal is the length of the box diagonal, the largest distance two
// points inside it can have.
func (b Bounds) Diagonal() float64 {
	return r3.Norm(r3.Sub(b.Max, b.Min))
}

// Contains reports whether p lies inside the box, edges included.
func (b Bounds) Contains(p Vec) bool {
	return p.X >= b.Min.X && p.X <= b.Max.X &&
		p.Y >= b.Min.Y && p.Y <= b.Max.Y &&
		p.Z >= b.Min.Z && p.Z <= b.Max.Z
}

// Distance is the Euclidean distance between a and b.
func Distance(a, b Vec) float64 {
	return r3.Norm(r3.Sub(a, b))
}
