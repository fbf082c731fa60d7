package bird

import (
	"github.com/rcliao/birdswarm/internal/flock"
	"github.com/rcliao/birdswarm/internal/fsm"
	"github.com/rcliao/birdswarm/internal/model"
)

// State is a switchable behavior of an agent.
type State interface {
	fsm.State[*Agent]
	Name() string
	// Weights are the movement weights applied while the state is active.
	Weights() flock.Weights
	OnFoundFood(a *Agent, position model.Vec)
	OnFoundNeighbor(a *Agent, h Handle)
}

const (
	StateExplore     = "explore"
	StateFeed        = "feed"
	StateCommunicate = "communicate"
)

// timer counts simulated seconds.
type timer float64

func (t *timer) tick(dt float64)           { *t += timer(dt) }
func (t *timer) reset()                    { *t = 0 }
func (t timer) elapsed(limit float64) bool { return float64(t) >= limit }
