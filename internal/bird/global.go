package bird

import (
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/rcliao/birdswarm/internal/flock"
	"github.com/rcliao/birdswarm/internal/model"
)

// Global moves the agent every tick with the weights of its current state.
// It is never exited during the agent's lifetime.
type Global struct {
	velocity model.Vec
	last     flock.Result
}

func (g *Global) Enter(a *Agent) {
	g.velocity = r3.Scale(a.settings.Bird.MaxVelocity, model.Forward)
}

func (g *Global) Execute(a *Agent) {
	s := a.State()
	if s == nil {
		return
	}
	g.last = flock.Step(flock.Input{
		Position:          a.position,
		PreviousVelocity:  g.velocity,
		Target:            a.target,
		Visible:           a.neighbors(a.visible),
		Near:              a.neighbors(a.near),
		Weights:           s.Weights(),
		BoundsCenter:      a.settings.Bounds.Center(),
		OutsideMultiplier: a.outside,
		Dt:                a.world.Dt(),
		MinVelocity:       a.settings.Bird.MinVelocity,
		MaxVelocity:       a.settings.Bird.MaxVelocity,
	})
	g.velocity = g.last.Velocity
	a.position = g.last.Position
}

func (g *Global) Exit(a *Agent) {}

// ChangeDirection keeps the current speed and picks a random heading.
func (g *Global) ChangeDirection(a *Agent) {
	rnd := a.world.Rand()
	dir := model.Vec{
		X: 2*rnd.Float64() - 1,
		Y: 2*rnd.Float64() - 1,
		Z: 2*rnd.Float64() - 1,
	}
	if r3.Norm(dir) == 0 {
		return
	}
	speed := r3.Norm(g.velocity)
	if speed == 0 {
		speed = a.settings.Bird.MaxVelocity
	}
	g.velocity = r3.Scale(speed, r3.Unit(dir))
}

// neighbors resolves handles, skipping agents that no longer exist.
func (a *Agent) neighbors(hs []Handle) []flock.Neighbor {
	out := make([]flock.Neighbor, 0, len(hs))
	for _, h := range hs {
		other, ok := a.lookup(h)
		if !ok {
			continue
		}
		out = append(out, flock.Neighbor{
			ID:       int(h),
			Position: other.position,
			Velocity: other.global.velocity,
		})
	}
	return out
}
