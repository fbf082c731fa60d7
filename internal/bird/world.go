// Package bird implements the swarm agent: its needs, knowledge, behavior
// states and the gossip exchange between agents.
package bird

import (
	"math/rand"

	"github.com/rcliao/birdswarm/internal/model"
)

// Handle is a non-owning reference to an agent, resolved through World.
type Handle int

// NoHandle never resolves.
const NoHandle Handle = -1

// World is what an agent needs from the simulation around it.
type World interface {
	// Now is the simulated time in seconds.
	Now() float64
	// Dt is the length of the current tick.
	Dt() float64
	Rand() *rand.Rand
	// Lookup resolves a handle. It fails for agents that no longer exist.
	Lookup(h Handle) (*Agent, bool)
	// Notify receives read-only telemetry. Its behavior never affects the
	// agent.
	Notify(e Event)
}

// Offer is anything in the environment that holds a resource claim.
type Offer interface {
	Information() *model.InformationRecord
}

// Consumable is a resource an agent can eat from.
type Consumable interface {
	Offer
	// Consume takes up to requested and returns the amount granted.
	Consume(requested float64) float64
}

// EventKind enumerates telemetry events.
type EventKind int

const (
	EventStateChanged EventKind = iota
	EventInformationGathered
	EventInformationPruned
	EventFoodDiscovered
	EventFoodDiscredited
	EventFed
	EventInformationSent
	EventExchangeCompleted
)

var eventNames = map[EventKind]string{
	EventStateChanged:        "state_changed",
	EventInformationGathered: "information_gathered",
	EventInformationPruned:   "information_pruned",
	EventFoodDiscovered:      "food_discovered",
	EventFoodDiscredited:     "food_discredited",
	EventFed:                 "fed",
	EventInformationSent:     "information_sent",
	EventExchangeCompleted:   "exchange_completed",
}

func (k EventKind) String() string {
	if s, ok := eventNames[k]; ok {
		return s
	}
	return "unknown"
}

// Event is a telemetry notification. Record is a private copy.
type Event struct {
	Kind    EventKind
	Agent   Handle
	Time    float64
	State   string
	Partner Handle
	Record  *model.InformationRecord
	Amount  float64
}
