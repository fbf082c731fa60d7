package bird

import (
	"github.com/rcliao/birdswarm/internal/flock"
	"github.com/rcliao/birdswarm/internal/model"
)

// Explore wanders the world and oscillates between flocking and
// dispersing.
type Explore struct {
	weights      flock.Weights
	baseCohesion float64
	lowCohesion  float64

	changeDirectionAfter float64
	changeCohesionAfter  float64
	minStateTime         float64

	inState   timer
	direction timer
	cohesion  timer
}

func newExplore(s Settings) *Explore {
	w := weights(s.Movement.Explore)
	return &Explore{
		weights:              w,
		baseCohesion:         w.Cohesion,
		lowCohesion:          s.Bird.Explore.LowCohesion,
		changeDirectionAfter: s.Bird.Explore.ChangeDirectionAfter,
		changeCohesionAfter:  s.Bird.Explore.ChangeCohesionAfter,
		minStateTime:         s.Bird.Explore.MinStateTime,
	}
}

func (e *Explore) Name() string           { return StateExplore }
func (e *Explore) Weights() flock.Weights { return e.weights }

func (e *Explore) Enter(a *Agent) {
	e.inState.reset()
	e.direction.reset()
	e.cohesion.reset()
	e.weights.Cohesion = e.baseCohesion
	a.entered(e)
}

func (e *Explore) Execute(a *Agent) {
	dt := a.world.Dt()
	e.inState.tick(dt)
	e.direction.tick(dt)
	e.cohesion.tick(dt)

	if e.changeDirectionAfter > 0 && e.direction.elapsed(e.changeDirectionAfter) {
		e.direction.reset()
		a.global.ChangeDirection(a)
	}
	if e.changeCohesionAfter > 0 && e.cohesion.elapsed(e.changeCohesionAfter) {
		e.cohesion.reset()
		e.toggleCohesion()
	}

	if e.inState.elapsed(e.minStateTime) && a.Hungry() && a.knowledge.Len() > 0 {
		a.ChangeState(a.feed)
	}
}

func (e *Explore) toggleCohesion() {
	if e.weights.Cohesion == e.baseCohesion {
		e.weights.Cohesion = e.lowCohesion
		return
	}
	e.weights.Cohesion = e.baseCohesion
}

func (e *Explore) Exit(a *Agent) {}

func (e *Explore) OnFoundFood(a *Agent, position model.Vec) {
	switch {
	case a.Hungry():
		a.ChangeState(a.feed)
	case !a.IgnoresBirds() && a.Informed():
		a.ChangeState(a.communicate)
	}
}

func (e *Explore) OnFoundNeighbor(a *Agent, h Handle) {
	if a.IgnoresBirds() {
		return
	}
	a.handshake(h)
}
