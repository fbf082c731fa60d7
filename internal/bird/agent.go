package bird

import (
	"math"
	"slices"

	"github.com/sirupsen/logrus"

	"github.com/rcliao/birdswarm/internal/config"
	"github.com/rcliao/birdswarm/internal/flock"
	"github.com/rcliao/birdswarm/internal/fsm"
	"github.com/rcliao/birdswarm/internal/info"
	"github.com/rcliao/birdswarm/internal/model"
)

// Settings are the immutable per-agent settings.
type Settings struct {
	Variant       config.Variant
	Bird          config.Bird
	Communication config.Communication
	Movement      config.Movement
	Bounds        model.Bounds
}

// NewSettings derives the settings of one variant from a config.
func NewSettings(cfg *config.Config, v config.Variant) Settings {
	return Settings{
		Variant:       v,
		Bird:          cfg.Bird,
		Communication: cfg.CommunicationFor(v),
		Movement:      cfg.Movement,
		Bounds:        cfg.Environment.Bounds,
	}
}

// Agent is one bird.
type Agent struct {
	handle   Handle
	world    World
	settings Settings
	log      logrus.FieldLogger

	fsm         *fsm.Machine[*Agent]
	explore     *Explore
	feed        *Feed
	communicate *Communicate
	global      *Global

	knowledge *info.Store
	needs     model.Needs

	position model.Vec
	target   model.Vec
	outside  float64
	visible  []Handle
	near     []Handle
	removed  bool
}

// New creates an agent at position and starts it in Explore.
func New(h Handle, w World, m *info.Model, s Settings, position model.Vec, log logrus.FieldLogger) *Agent {
	if log == nil {
		log = logrus.StandardLogger()
	}
	a := &Agent{
		handle:   h,
		world:    w,
		settings: s,
		log:      log.WithField("bird", int(h)),
		fsm:      fsm.New[*Agent](),
		knowledge: info.NewStore(m, info.Params{
			CertaintyThreshold: s.Communication.CertaintyThreshold,
			EqualityThreshold:  s.Communication.EqualityThreshold,
		}),
		needs:    model.NewNeeds(model.NeedFood, model.NeedInformation),
		position: position,
		target:   s.Bounds.Center(),
	}
	a.needs.Set(model.NeedInformation, 0)

	a.explore = newExplore(s)
	a.feed = &Feed{weights: weights(s.Movement.Feed)}
	a.communicate = &Communicate{weights: weights(s.Movement.Communicate)}
	a.global = &Global{}
	a.fsm.Configure(a, a.explore, a.global)
	return a
}

func weights(w config.Weights) flock.Weights {
	return flock.Weights{
		Cohesion:   w.Cohesion,
		Separation: w.Separation,
		Target:     w.Target,
		Alignment:  w.Alignment,
	}
}

func (a *Agent) Handle() Handle             { return a.handle }
func (a *Agent) Settings() Settings         { return a.settings }
func (a *Agent) Knowledge() *info.Store     { return a.knowledge }
func (a *Agent) Needs() model.Needs         { return a.needs }
func (a *Agent) Position() model.Vec        { return a.position }
func (a *Agent) Velocity() model.Vec        { return a.global.velocity }
func (a *Agent) Target() model.Vec          { return a.target }
func (a *Agent) LastMovement() flock.Result { return a.global.last }
func (a *Agent) Removed() bool              { return a.removed }

// State returns the active behavior state.
func (a *Agent) State() State {
	s, _ := a.fsm.Current().(State)
	return s
}

// StateName is the name of the active state, or "none".
func (a *Agent) StateName() string {
	if s := a.State(); s != nil {
		return s.Name()
	}
	return "none"
}

func (a *Agent) Exploring() bool     { return a.fsm.IsInState(a.explore) }
func (a *Agent) Feeding() bool       { return a.fsm.IsInState(a.feed) }
func (a *Agent) Communicating() bool { return a.fsm.IsInState(a.communicate) }

// Hungry reports whether food saturation fell below the eating threshold.
func (a *Agent) Hungry() bool {
	return a.needs.Get(model.NeedFood) < a.settings.Bird.EatingThreshold
}

// Informed reports whether the agent knows enough to share.
func (a *Agent) Informed() bool {
	return a.needs.Get(model.NeedInformation) >= a.settings.Bird.InformationThreshold
}

// IgnoresBirds reports whether the agent stays out of gossip exchanges.
func (a *Agent) IgnoresBirds() bool {
	return a.settings.Communication.IgnoreBirds || a.settings.Communication.Mute
}

// SetPosition teleports the agent.
func (a *Agent) SetPosition(p model.Vec) {
	a.position = p
}

// ChangeState switches the behavior state.
func (a *Agent) ChangeState(s State) bool {
	return a.fsm.ChangeState(s, false)
}

// Update runs one tick: needs decay, the state machine, then pruning.
func (a *Agent) Update() {
	if a.removed {
		return
	}
	a.needs.Add(model.NeedFood, -a.settings.Bird.FoodDecayPerSecond*a.world.Dt())

	a.fsm.Update()

	if pruned := a.knowledge.Update(a.world.Now()); len(pruned) > 0 {
		a.refreshInformationNeed()
		for _, r := range pruned {
			a.notify(Event{Kind: EventInformationPruned, Record: r})
		}
	}
}

// Remove tears down every gossip link. The agent ignores all calls
// afterwards.
func (a *Agent) Remove() {
	if a.removed {
		return
	}
	a.communicate.abortAll(a)
	a.removed = true
}

// GatherInformation offers a record to the agent. It returns true when a
// copy was kept. A first-hand sighting is reported to the active state
// before returning.
func (a *Agent) GatherInformation(r *model.InformationRecord) bool {
	if a.removed || r == nil {
		return false
	}
	got, ok := a.knowledge.Gather(r, a.world.Now())
	if !ok {
		return false
	}
	a.refreshInformationNeed()
	a.notify(Event{Kind: EventInformationGathered, Record: got.Clone()})

	if got.Hops == 0 {
		a.notify(Event{Kind: EventFoodDiscovered, Record: got.Clone()})
		if s := a.State(); s != nil {
			s.OnFoundFood(a, got.Position)
		}
	}
	return true
}

// DiscreditFoodAt forgets every claim at position.
func (a *Agent) DiscreditFoodAt(position model.Vec) int {
	radius := math.Max(a.settings.Bird.Feed.DiscreditDistance, 1e-6)
	removed := a.knowledge.DiscreditAt(position, radius)
	if len(removed) == 0 {
		return 0
	}
	a.refreshInformationNeed()
	for _, r := range removed {
		a.notify(Event{Kind: EventFoodDiscredited, Record: r})
	}
	return len(removed)
}

// Eat takes as much food from c as the agent can hold and keeps a copy of
// the food's claim. Only hungry agents eat.
func (a *Agent) Eat(c Consumable) float64 {
	if a.removed || c == nil || !a.Hungry() {
		return 0
	}
	capacity := a.settings.Bird.MaxFoodCapacity
	requested := (1 - a.needs.Get(model.NeedFood)) * capacity
	granted := c.Consume(requested)
	if granted <= 0 {
		return 0
	}
	a.needs.Add(model.NeedFood, granted/capacity)
	a.notify(Event{Kind: EventFed, Amount: granted})
	a.GatherInformation(c.Information())
	return granted
}

func (a *Agent) refreshInformationNeed() {
	a.needs.Set(model.NeedInformation, float64(a.knowledge.Len())*a.settings.Bird.InformationPerRecord)
}

func (a *Agent) retarget() bool {
	i := a.knowledge.Nearest(a.position)
	if i < 0 {
		return false
	}
	a.target = a.knowledge.At(i).Position
	return true
}

func (a *Agent) notify(e Event) {
	e.Agent = a.handle
	e.Time = a.world.Now()
	if e.State == "" {
		e.State = a.StateName()
	}
	a.world.Notify(e)
}

// entered is called by every switchable state on Enter.
func (a *Agent) entered(s State) {
	a.log.WithFields(logrus.Fields{
		"state": s.Name(),
		"time":  a.world.Now(),
	}).Debug("state changed")
	a.notify(Event{Kind: EventStateChanged, State: s.Name()})
}

// Perception entry points. Each is delivered at most once per actual
// enter or exit.

// OnResourceSighted gathers the claim of a resource in sight.
func (a *Agent) OnResourceSighted(o Offer) {
	if o == nil {
		return
	}
	a.GatherInformation(o.Information())
}

// OnResourceTouched is called when the agent is close enough to eat.
func (a *Agent) OnResourceTouched(c Consumable) {
	a.Eat(c)
}

func (a *Agent) OnNeighborSighted(h Handle)     { a.visible = addHandle(a.visible, h) }
func (a *Agent) OnNeighborLost(h Handle)        { a.visible = removeHandle(a.visible, h) }
func (a *Agent) OnNearNeighborSighted(h Handle) { a.near = addHandle(a.near, h) }
func (a *Agent) OnNearNeighborLost(h Handle)    { a.near = removeHandle(a.near, h) }

// OnNeighborContact reports another agent within talking distance.
func (a *Agent) OnNeighborContact(h Handle) {
	if a.removed || a.IgnoresBirds() {
		return
	}
	if s := a.State(); s != nil {
		s.OnFoundNeighbor(a, h)
	}
}

// OnNeighborContactLost ends a gossip exchange with h, if any.
func (a *Agent) OnNeighborContactLost(h Handle) {
	a.AbortCommunication(h)
}

// SetOutsideBounds sets the boundary return multiplier.
func (a *Agent) SetOutsideBounds(outside bool) {
	a.outside = 0
	if outside {
		a.outside = 1
	}
}

// VisibleNeighbors returns the handles currently in sight.
func (a *Agent) VisibleNeighbors() []Handle { return slices.Clone(a.visible) }

// NearNeighbors returns the handles currently crowding the agent.
func (a *Agent) NearNeighbors() []Handle { return slices.Clone(a.near) }

func addHandle(hs []Handle, h Handle) []Handle {
	if slices.Contains(hs, h) {
		return hs
	}
	return append(hs, h)
}

func removeHandle(hs []Handle, h Handle) []Handle {
	if i := slices.Index(hs, h); i >= 0 {
		return slices.Delete(hs, i, i+1)
	}
	return hs
}
