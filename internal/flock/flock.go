// Package flock combines flocking and goal seeking forces into one
// displacement per tick.
package flock

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/rcliao/birdswarm/internal/model"
)

// Weights scale the forces of the active behavior.
type Weights struct {
	Cohesion   float64
	Separation float64
	Target     float64
	Alignment  float64
}

// Neighbor is what the mover knows about another agent.
type Neighbor struct {
	ID       int
	Position model.Vec
	Velocity model.Vec
}

// Input is everything one step depends on.
type Input struct {
	Position         model.Vec
	PreviousVelocity model.Vec
	Target           model.Vec

	// Visible neighbors drive cohesion and alignment, Near ones separation.
	// Near neighbors are excluded from cohesion by ID.
	Visible []Neighbor
	Near    []Neighbor

	Weights Weights

	BoundsCenter model.Vec
	// OutsideMultiplier is 0 inside the bounds and 1 outside.
	OutsideMultiplier float64

	Dt          float64
	MinVelocity float64
	MaxVelocity float64
}

// Result is the outcome of one step. The individual forces are returned
// for inspection.
type Result struct {
	Velocity model.Vec
	Position model.Vec

	Separation model.Vec
	Cohesion   model.Vec
	Target     model.Vec
	Boundary   model.Vec
}

// Step computes the next velocity and position.
func Step(in Input) Result {
	var res Result

	near := make(map[int]struct{}, len(in.Near))
	for _, n := range in.Near {
		near[n.ID] = struct{}{}
		res.Separation = r3.Add(res.Separation, r3.Sub(in.Position, n.Position))
	}
	for _, n := range in.Visible {
		if _, ok := near[n.ID]; ok {
			continue
		}
		res.Cohesion = r3.Add(res.Cohesion, r3.Sub(n.Position, in.Position))
	}
	res.Target = r3.Sub(in.Target, in.Position)
	if in.OutsideMultiplier != 0 {
		res.Boundary = r3.Sub(in.BoundsCenter, in.Position)
	}

	force := r3.Scale(in.Weights.Separation, res.Separation)
	force = r3.Add(force, r3.Scale(in.Weights.Cohesion, res.Cohesion))
	force = r3.Add(force, r3.Scale(in.Weights.Target, res.Target))
	force = r3.Add(force, r3.Scale(in.OutsideMultiplier, res.Boundary))

	v := r3.Add(in.PreviousVelocity, r3.Scale(in.Dt, force))

	if len(in.Visible) > 0 && in.Weights.Alignment != 0 {
		var sum model.Vec
		for _, n := range in.Visible {
			sum = r3.Add(sum, n.Velocity)
		}
		avg := r3.Scale(1/float64(len(in.Visible)), sum)
		heading := r3.Add(v, r3.Scale(in.Weights.Alignment, avg))
		if speed := r3.Norm(v); usable(heading) && speed > 0 {
			v = r3.Scale(speed/r3.Norm(heading), heading)
		}
	}

	res.Velocity = Clamp(v, in.PreviousVelocity, in.MinVelocity, in.MaxVelocity)
	res.Position = r3.Add(in.Position, r3.Scale(in.Dt, res.Velocity))
	return res
}

// Clamp limits the magnitude of v to [lo, hi]. A zero or invalid v takes
// the direction of fallback, or model.Forward.
func Clamp(v, fallback model.Vec, lo, hi float64) model.Vec {
	dir := v
	if !usable(dir) {
		dir = fallback
	}
	if !usable(dir) {
		dir = model.Forward
	}
	speed := r3.Norm(v)
	if !usable(v) {
		speed = 0
	}
	speed = math.Max(lo, math.Min(speed, hi))
	return r3.Scale(speed/r3.Norm(dir), dir)
}

// usable reports whether v has a finite, non-zero length.
func usable(v model.Vec) bool {
	n := r3.Norm(v)
	return n > 0 && !math.IsInf(n, 0) && !math.IsNaN(n)
}
