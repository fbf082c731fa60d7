// Package model defines the core swarm data types.
package model

// Kind identifies what an information record is about.
type Kind int

const (
	// KindResource marks a claim about a food source.
	KindResource Kind = iota
)

func (k Kind) String() string {
	switch k {
	case KindResource:
		return "resource"
	}
	return "unknown"
}

// HopsUnobserved marks a record still held by its resource, never gathered
// by an agent.
const HopsUnobserved = -1

// InformationRecord is a claim about a resource location.
type InformationRecord struct {
	ID        string  `json:"id"`
	SourceID  string  `json:"source_id"`
	FirstSeen float64 `json:"first_seen"`
	Gathered  float64 `json:"gathered"`
	Hops      int     `json:"hops"`
	Certainty float64 `json:"certainty"`
	Kind      Kind    `json:"kind"`
	Position  Vec     `json:"position"`
	Size      float64 `json:"size"`
}

// Observed reports whether the record has been gathered by an agent at
// least once.
func (r *InformationRecord) Observed() bool {
	return r.Hops != HopsUnobserved
}

// Age is the time since the original discovery. Records that were never
// gathered have no age yet.
func (r *InformationRecord) Age(now float64) float64 {
	if !r.Observed() {
		return 0
	}
	return now - r.FirstSeen
}

// Clone returns an independent copy.
func (r *InformationRecord) Clone() *InformationRecord {
	if r == nil {
		return nil
	}
	c := *r
	return &c
}
