package info

import (
	"math"

	"github.com/rcliao/birdswarm/internal/model"
)

// Params are the per-agent acceptance thresholds.
type Params struct {
	// CertaintyThreshold is the certainty a record needs to be kept. It is
	// compared, never divided by, so 0 keeps every record whose certainty
	// has not decayed below zero.
	CertaintyThreshold float64
	// EqualityThreshold is the equality measure below which two records are
	// the same claim.
	EqualityThreshold float64
}

// Store is one agent's private knowledge. Records are deduplicated by the
// equality measure, not by id, and are never shared with other stores.
type Store struct {
	model   *Model
	params  Params
	records []*model.InformationRecord
}

// NewStore returns an empty store judged by m.
func NewStore(m *Model, p Params) *Store {
	return &Store{model: m, params: p}
}

func (s *Store) Len() int       { return len(s.records) }
func (s *Store) Params() Params { return s.params }
func (s *Store) Model() *Model  { return s.model }

// At returns the record at index i. Callers must not modify it.
func (s *Store) At(i int) *model.InformationRecord {
	return s.records[i]
}

// Records returns copies of every stored record.
func (s *Store) Records() []model.InformationRecord {
	out := make([]model.InformationRecord, len(s.records))
	for i, r := range s.records {
		out[i] = *r
	}
	return out
}

// Duplicate returns the index of a stored record equal to candidate, or -1.
func (s *Store) Duplicate(candidate *model.InformationRecord, now float64) int {
	for i, r := range s.records {
		if s.model.Equality(r, candidate, now) < s.params.EqualityThreshold {
			return i
		}
	}
	return -1
}

// Gather decides whether to keep a copy of candidate. It returns the stored
// copy and true when accepted. A copy with Hops == 0 is a first-hand
// sighting.
func (s *Store) Gather(candidate *model.InformationRecord, now float64) (*model.InformationRecord, bool) {
	if candidate == nil {
		return nil, false
	}
	if s.Duplicate(candidate, now) >= 0 {
		return nil, false
	}

	c := candidate.Clone()
	c.Gathered = now
	if c.Hops == model.HopsUnobserved {
		c.FirstSeen = now
		c.Hops = 0
	} else {
		c.Hops++
	}
	c.Certainty = s.model.Certainty(c, now)

	if c.Certainty < s.params.CertaintyThreshold {
		return nil, false
	}
	s.records = append(s.records, c)
	return c, true
}

// Update recomputes every certainty and drops records that fell below the
// threshold or outlived the maximum age. It returns the removed records.
func (s *Store) Update(now float64) []*model.InformationRecord {
	var removed []*model.InformationRecord
	for i := len(s.records) - 1; i >= 0; i-- {
		r := s.records[i]
		r.Certainty = s.model.Certainty(r, now)
		if r.Certainty < s.params.CertaintyThreshold || r.Age(now) > s.model.MaxAge() {
			removed = append(removed, r)
			s.removeAt(i)
		}
	}
	return removed
}

// DiscreditAt removes every claim within radius of position.
func (s *Store) DiscreditAt(position model.Vec, radius float64) []*model.InformationRecord {
	var removed []*model.InformationRecord
	for i := len(s.records) - 1; i >= 0; i-- {
		if model.Distance(s.records[i].Position, position) <= radius {
			removed = append(removed, s.records[i])
			s.removeAt(i)
		}
	}
	return removed
}

// Nearest returns the index of the claim closest to position, or -1 when
// the store is empty.
func (s *Store) Nearest(position model.Vec) int {
	best, bestDist := -1, math.Inf(1)
	for i, r := range s.records {
		if d := model.Distance(r.Position, position); d < bestDist {
			best, bestDist = i, d
		}
	}
	return best
}

func (s *Store) removeAt(i int) {
	last := len(s.records) - 1
	copy(s.records[i:], s.records[i+1:])
	s.records[last] = nil
	s.records = s.records[:last]
}
