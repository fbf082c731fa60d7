package model

// Need names.
const (
	NeedFood        = "food"
	NeedInformation = "information"
)

// Needs maps need names to saturation levels in [0,1].
type Needs map[string]float64

// NewNeeds returns needs with every named need fully saturated.
func NewNeeds(names ...string) Needs {
	n := make(Needs, len(names))
	for _, name := range names {
		n[name] = 1
	}
	return n
}

// Get returns the level of a need; unknown needs are 0.
func (n Needs) Get(name string) float64 {
	return n[name]
}

// Set stores a level, clamped to [0,1].
func (n Needs) Set(name string, v float64) {
	n[name] = clamp01(v)
}

// Add changes a level by delta and returns the clamped result.
func (n Needs) Add(name string, delta float64) float64 {
	v := clamp01(n[name] + delta)
	n[name] = v
	return v
}

func clamp01(v float64) float64 {
	switch {
	case v != v: // NaN
		return 0
	case v < 0:
		return 0
	case v > 1:
		return 1
	}
	return v
}
