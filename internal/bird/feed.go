package bird

import (
	"github.com/rcliao/birdswarm/internal/flock"
	"github.com/rcliao/birdswarm/internal/model"
)

// Feed flies to the nearest known food and discredits claims that turn out
// to be false.
type Feed struct {
	weights  flock.Weights
	onTarget timer
}

func (f *Feed) Name() string           { return StateFeed }
func (f *Feed) Weights() flock.Weights { return f.weights }

func (f *Feed) Enter(a *Agent) {
	f.onTarget.reset()
	a.entered(f)
	if !a.retarget() {
		a.ChangeState(a.explore)
	}
}

func (f *Feed) Execute(a *Agent) {
	if a.knowledge.Len() == 0 || !a.Hungry() {
		a.ChangeState(a.explore)
		return
	}
	f.onTarget.tick(a.world.Dt())

	cfg := a.settings.Bird.Feed
	arrived := model.Distance(a.position, a.target) <= cfg.DiscreditDistance
	if !arrived && !f.onTarget.elapsed(cfg.DiscreditAfter) {
		return
	}
	// Food still present would have been eaten by now.
	a.DiscreditFoodAt(a.target)
	f.onTarget.reset()
	if !a.retarget() {
		a.ChangeState(a.explore)
	}
}

func (f *Feed) Exit(a *Agent) {}

// OnFoundFood retargets when the new food is closer.
func (f *Feed) OnFoundFood(a *Agent, position model.Vec) {
	if model.Distance(a.position, position) < model.Distance(a.position, a.target) {
		a.target = position
		f.onTarget.reset()
	}
}

func (f *Feed) OnFoundNeighbor(a *Agent, h Handle) {}
