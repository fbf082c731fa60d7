// Package info implements how agents judge, accept and forget resource
// claims.
package info

import (
	"math"

	"github.com/rcliao/birdswarm/internal/model"
)

// Model holds the propagation constants shared by every agent of an
// environment. The maximum comparison distance is derived from the limits
// and recomputed whenever they change.
type Model struct {
	maxHops int
	maxAge  float64
	bounds  model.Bounds
	maxSize float64
	maxDiff float64
}

// NewModel builds a model for the given hop and age limits, environment
// bounds and largest possible resource size.
func NewModel(maxHops int, maxAge float64, bounds model.Bounds, maxSize float64) *Model {
	m := &Model{maxHops: maxHops, maxAge: maxAge}
	m.SetLimits(bounds, maxSize)
	return m
}

// SetLimits updates the environment limits and the derived maximum distance.
func (m *Model) SetLimits(bounds model.Bounds, maxSize float64) {
	m.bounds = bounds
	m.maxSize = maxSize
	d := bounds.Diagonal()
	m.maxDiff = math.Sqrt(m.maxAge*m.maxAge + maxSize*maxSize + d*d)
}

func (m *Model) MaxHops() int             { return m.maxHops }
func (m *Model) MaxAge() float64          { return m.maxAge }
func (m *Model) MaxDifference() float64   { return m.maxDiff }
func (m *Model) Bounds() model.Bounds     { return m.bounds }
func (m *Model) MaxResourceSize() float64 { return m.maxSize }

// HopCertainty is 1 for a first-hand record and decays linearly with every
// transfer. It goes negative past MaxHops.
func (m *Model) HopCertainty(hops int) float64 {
	if hops < 0 {
		hops = 0
	}
	return 1 - float64(hops)/float64(max(m.maxHops, 1))
}

// AgeCertainty decays linearly with age and goes negative past MaxAge.
func (m *Model) AgeCertainty(age float64) float64 {
	limit := m.maxAge
	if limit <= 0 {
		limit = 1
	}
	return 1 - age/limit
}

// Certainty is the mean of hop and age certainty.
func (m *Model) Certainty(r *model.InformationRecord, now float64) float64 {
	return 0.5 * (m.HopCertainty(r.Hops) + m.AgeCertainty(r.Age(now)))
}

// Equality measures how different two records are, from 0 (identical) to 1
// (unrelated). Records of different kinds are always 1.
func (m *Model) Equality(a, b *model.InformationRecord, now float64) float64 {
	if a.Kind != b.Kind {
		return 1
	}
	dAge := a.Age(now) - b.Age(now)
	dSize := a.Size - b.Size
	dPos := model.Distance(a.Position, b.Position)
	dist := math.Sqrt(dAge*dAge + dSize*dSize + dPos*dPos)

	if m.maxDiff <= 0 {
		if dist == 0 {
			return 0
		}
		return 1
	}
	return math.Min(dist/m.maxDiff, 1)
}
