package bird

import (
	"math/rand"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rcliao/birdswarm/internal/config"
	"github.com/rcliao/birdswarm/internal/info"
	"github.com/rcliao/birdswarm/internal/model"
)

type testWorld struct {
	now    float64
	dt     float64
	rnd    *rand.Rand
	model  *info.Model
	agents []*Agent
	events []Event
}

func newTestWorld(t *testing.T) *testWorld {
	t.Helper()
	cfg := config.Default()
	return &testWorld{
		dt:  0.02,
		rnd: rand.New(rand.NewSource(1)),
		model: info.NewModel(cfg.Bird.MaxHops, cfg.Bird.MaxAge,
			cfg.Environment.Bounds, cfg.Food.MaxAmount),
	}
}

func (w *testWorld) Now() float64     { return w.now }
func (w *testWorld) Dt() float64      { return w.dt }
func (w *testWorld) Rand() *rand.Rand { return w.rnd }
func (w *testWorld) Notify(e Event)   { w.events = append(w.events, e) }

func (w *testWorld) Lookup(h Handle) (*Agent, bool) {
	if h < 0 || int(h) >= len(w.agents) || w.agents[h] == nil {
		return nil, false
	}
	return w.agents[h], true
}

func (w *testWorld) spawn(s Settings) *Agent {
	log := logrus.New()
	log.SetLevel(logrus.WarnLevel)
	a := New(Handle(len(w.agents)), w, w.model, s, model.Vec{}, log)
	w.agents = append(w.agents, a)
	return a
}

// tick advances time and updates agents in registry order.
func (w *testWorld) tick() {
	w.now += w.dt
	for _, a := range w.agents {
		if a != nil {
			a.Update()
		}
	}
}

func (w *testWorld) count(kind EventKind) int {
	n := 0
	for _, e := range w.events {
		if e.Kind == kind {
			n++
		}
	}
	return n
}

func testSettings(v config.Variant) Settings {
	cfg := config.Default()
	return NewSettings(&cfg, v)
}

func food(pos model.Vec) *model.InformationRecord {
	return &model.InformationRecord{
		ID:       "rec",
		SourceID: "food",
		Hops:     model.HopsUnobserved,
		Kind:     model.KindResource,
		Position: pos,
		Size:     5,
	}
}

var (
	farA = model.Vec{X: -40, Y: 0, Z: -40}
	farB = model.Vec{X: 40, Y: 0, Z: 40}
	farC = model.Vec{X: 0, Y: 30, Z: 0}
)

func TestNewAgentStartsExploring(t *testing.T) {
	w := newTestWorld(t)
	a := w.spawn(testSettings(config.VariantStandard))

	assert.True(t, a.Exploring())
	assert.Equal(t, StateExplore, a.StateName())
	assert.False(t, a.Hungry())
	assert.False(t, a.Informed())
	assert.Equal(t, 1, w.count(EventStateChanged))
}

func TestFirstHandSightingTriggersFeedWhenHungry(t *testing.T) {
	w := newTestWorld(t)
	a := w.spawn(testSettings(config.VariantStandard))
	a.Needs().Set(model.NeedFood, 0.1)

	require.True(t, a.GatherInformation(food(farA)))

	r := a.Knowledge().At(0)
	assert.Equal(t, 0, r.Hops)
	assert.Equal(t, w.now, r.FirstSeen)
	assert.InDelta(t, 1.0, r.Certainty, 1e-9)
	assert.True(t, a.Feeding())
	assert.Equal(t, farA, a.Target())
	assert.Equal(t, 1, w.count(EventFoodDiscovered))
}

func TestFirstHandSightingTriggersCommunicateWhenInformed(t *testing.T) {
	w := newTestWorld(t)
	s := testSettings(config.VariantStandard)
	s.Bird.InformationThreshold = 0.1
	a := w.spawn(s)

	require.True(t, a.GatherInformation(food(farA)))
	assert.True(t, a.Informed())
	assert.True(t, a.Communicating())

	// Nobody to talk to: the idle guard sends the bird back to exploring.
	for range 200 {
		w.tick()
	}
	assert.True(t, a.Exploring())
}

func TestHopChainThroughAgents(t *testing.T) {
	w := newTestWorld(t)
	s := testSettings(config.VariantStandard)
	a, b, c := w.spawn(s), w.spawn(s), w.spawn(s)

	w.now = 5
	require.True(t, a.GatherInformation(food(farA)))
	require.True(t, b.GatherInformation(a.Knowledge().At(0)))
	require.True(t, c.GatherInformation(b.Knowledge().At(0)))

	ra, rb, rc := a.Knowledge().At(0), b.Knowledge().At(0), c.Knowledge().At(0)
	assert.Equal(t, []int{0, 1, 2}, []int{ra.Hops, rb.Hops, rc.Hops})
	assert.Equal(t, ra.FirstSeen, rb.FirstSeen)
	assert.Equal(t, ra.FirstSeen, rc.FirstSeen)
	assert.Less(t, rb.Certainty, ra.Certainty)
	assert.Less(t, rc.Certainty, rb.Certainty)

	// Copies are independent.
	a.Knowledge().At(0).Size = 99
	assert.Equal(t, 5.0, rb.Size)
}

func TestGossipExchangeCompletes(t *testing.T) {
	w := newTestWorld(t)
	s := testSettings(config.VariantStandard)
	a, b := w.spawn(s), w.spawn(s)
	for _, p := range []model.Vec{farA, farB, farC} {
		require.True(t, a.GatherInformation(food(p)))
	}
	require.True(t, a.Exploring())

	a.OnNeighborContact(b.Handle())
	require.True(t, a.Communicating())
	require.True(t, b.Communicating())
	require.Len(t, a.Partners(), 1)
	require.Len(t, b.Partners(), 1)

	for range 500 {
		w.tick()
		if !a.Communicating() && !b.Communicating() {
			break
		}
	}

	assert.True(t, a.Exploring())
	assert.True(t, b.Exploring())
	assert.Empty(t, a.Partners())
	assert.Empty(t, b.Partners())
	assert.Equal(t, 3, b.Knowledge().Len())
	for _, r := range b.Knowledge().Records() {
		assert.Equal(t, 1, r.Hops)
	}
	assert.Equal(t, 3, w.count(EventInformationSent))
	assert.Equal(t, 2, w.count(EventExchangeCompleted))
}

func TestAbortCommunicationIsSymmetricAndIdempotent(t *testing.T) {
	w := newTestWorld(t)
	s := testSettings(config.VariantStandard)
	a, b := w.spawn(s), w.spawn(s)

	a.OnNeighborContact(b.Handle())
	require.Len(t, a.Partners(), 1)
	require.Len(t, b.Partners(), 1)

	a.AbortCommunication(b.Handle())
	assert.Empty(t, a.Partners())
	assert.Empty(t, b.Partners())
	assert.True(t, a.Exploring())
	assert.True(t, b.Exploring())

	assert.NotPanics(t, func() {
		a.AbortCommunication(b.Handle())
		b.AbortCommunication(a.Handle())
		a.AbortCommunication(NoHandle)
	})
}

func TestLeavingContactRangeEndsExchange(t *testing.T) {
	w := newTestWorld(t)
	s := testSettings(config.VariantStandard)
	a, b := w.spawn(s), w.spawn(s)

	a.OnNeighborContact(b.Handle())
	b.OnNeighborContactLost(a.Handle())

	assert.Empty(t, a.Partners())
	assert.Empty(t, b.Partners())
}

func TestMuteBirdRefusesCommunication(t *testing.T) {
	w := newTestWorld(t)
	a := w.spawn(testSettings(config.VariantStandard))
	m := w.spawn(testSettings(config.VariantMute))

	a.OnNeighborContact(m.Handle())
	assert.True(t, a.Exploring())
	assert.Empty(t, a.Partners())

	assert.False(t, m.Communicate(a.Handle()))
	m.OnNeighborContact(a.Handle())
	assert.True(t, m.Exploring())
	assert.Empty(t, m.Partners())
}

func TestFeedingBirdRefusesCommunication(t *testing.T) {
	w := newTestWorld(t)
	s := testSettings(config.VariantStandard)
	a, f := w.spawn(s), w.spawn(s)
	f.Needs().Set(model.NeedFood, 0.1)
	require.True(t, f.GatherInformation(food(farA)))
	require.True(t, f.Feeding())

	a.OnNeighborContact(f.Handle())

	assert.True(t, f.Feeding())
	assert.Empty(t, a.Partners())
	assert.True(t, a.Exploring())
}

func TestDanglingPartnerIsDropped(t *testing.T) {
	w := newTestWorld(t)
	s := testSettings(config.VariantStandard)
	a, b := w.spawn(s), w.spawn(s)
	a.OnNeighborContact(b.Handle())
	require.Len(t, a.Partners(), 1)

	w.agents[b.Handle()] = nil
	assert.NotPanics(t, w.tick)

	assert.Empty(t, a.Partners())
	assert.True(t, a.Exploring())
}

func TestRemoveTearsDownPartners(t *testing.T) {
	w := newTestWorld(t)
	s := testSettings(config.VariantStandard)
	a, b := w.spawn(s), w.spawn(s)
	a.OnNeighborContact(b.Handle())

	b.Remove()

	assert.True(t, b.Removed())
	assert.Empty(t, a.Partners())
	assert.True(t, a.Exploring())
	assert.False(t, b.GatherInformation(food(farA)))
}

func TestUpdateOrderDecidesWhoSeesChangesFirst(t *testing.T) {
	received := func(order []int) bool {
		w := newTestWorld(t)
		s := testSettings(config.VariantStandard)
		a, b := w.spawn(s), w.spawn(s)
		require.True(t, a.GatherInformation(food(farA)))
		a.OnNeighborContact(b.Handle())

		w.now += w.dt
		for _, i := range order {
			w.agents[i].Update()
		}
		for _, p := range a.Partners() {
			if p.Handle == b.Handle() {
				return p.HasReceivedAllInfo
			}
		}
		return false
	}

	// a asks first and b answers in the same tick.
	assert.True(t, received([]int{0, 1}))
	// b updates first, so a's request waits for b's next answer slot.
	assert.False(t, received([]int{1, 0}))
}

func TestFeedDiscreditsFoodThatIsNotThere(t *testing.T) {
	w := newTestWorld(t)
	a := w.spawn(testSettings(config.VariantStandard))
	a.Needs().Set(model.NeedFood, 0.1)
	require.True(t, a.GatherInformation(food(farA)))
	require.True(t, a.Feeding())

	a.SetPosition(farA)
	w.tick()

	assert.Equal(t, 0, a.Knowledge().Len())
	assert.True(t, a.Exploring())
	assert.Equal(t, 1, w.count(EventFoodDiscredited))
}

func TestFeedRetargetsAfterTimeout(t *testing.T) {
	w := newTestWorld(t)
	w.dt = 0.25
	s := testSettings(config.VariantStandard)
	s.Bird.Feed.DiscreditAfter = 1
	a := w.spawn(s)
	a.Needs().Set(model.NeedFood, 0.1)

	require.True(t, a.GatherInformation(food(farA)))
	require.True(t, a.GatherInformation(food(farB)))
	require.True(t, a.Feeding())
	first := a.Target()

	for range 4 {
		w.tick()
	}

	assert.True(t, a.Feeding())
	assert.Equal(t, 1, a.Knowledge().Len())
	assert.NotEqual(t, first, a.Target())
}

func TestFeedLeavesWhenSated(t *testing.T) {
	w := newTestWorld(t)
	a := w.spawn(testSettings(config.VariantStandard))
	a.Needs().Set(model.NeedFood, 0.1)
	require.True(t, a.GatherInformation(food(farA)))
	require.True(t, a.Feeding())

	a.Needs().Set(model.NeedFood, 1)
	w.tick()
	assert.True(t, a.Exploring())
}

func TestExploreOscillatesCohesion(t *testing.T) {
	w := newTestWorld(t)
	w.dt = 0.25
	s := testSettings(config.VariantStandard)
	s.Bird.Explore.ChangeCohesionAfter = 0.5
	a := w.spawn(s)
	base := a.explore.Weights().Cohesion
	require.NotEqual(t, base, s.Bird.Explore.LowCohesion)

	var seen []float64
	for range 6 {
		w.tick()
		seen = append(seen, a.State().Weights().Cohesion)
	}

	low := s.Bird.Explore.LowCohesion
	assert.Equal(t, []float64{base, low, low, base, base, low}, seen)
}

func TestExploreChangesDirection(t *testing.T) {
	w := newTestWorld(t)
	w.dt = 0.25
	s := testSettings(config.VariantStandard)
	s.Bird.Explore.ChangeDirectionAfter = 0.5
	a := w.spawn(s)

	w.tick()
	before := a.Velocity()
	w.tick()

	assert.NotEqual(t, before, a.Velocity())
}

func TestExploreFeedsWhenHungryAndKnowing(t *testing.T) {
	w := newTestWorld(t)
	w.dt = 0.25
	a := w.spawn(testSettings(config.VariantStandard))
	require.True(t, a.GatherInformation(food(farA)))
	require.True(t, a.Exploring())

	a.Needs().Set(model.NeedFood, 0.1)
	for range 4 {
		w.tick()
	}
	assert.True(t, a.Feeding())
}

type testFood struct {
	record *model.InformationRecord
	amount float64
}

func (f *testFood) Information() *model.InformationRecord { return f.record }

func (f *testFood) Consume(requested float64) float64 {
	granted := min(requested, f.amount)
	f.amount -= granted
	return granted
}

func TestEatOnlyWhenHungry(t *testing.T) {
	w := newTestWorld(t)
	a := w.spawn(testSettings(config.VariantStandard))
	f := &testFood{record: food(farA), amount: 10}

	assert.Zero(t, a.Eat(f))

	a.Needs().Set(model.NeedFood, 0.4)
	a.OnResourceTouched(f)

	assert.InDelta(t, 1.0, a.Needs().Get(model.NeedFood), 1e-9)
	assert.InDelta(t, 8.8, f.amount, 1e-9)
	assert.Zero(t, a.Eat(f))
	assert.Equal(t, 1, a.Knowledge().Len())
	assert.Equal(t, 1, w.count(EventFed))
}

func TestUpdatePrunesAndDecaysNeeds(t *testing.T) {
	w := newTestWorld(t)
	a := w.spawn(testSettings(config.VariantStandard))
	require.True(t, a.GatherInformation(food(farA)))
	assert.InDelta(t, 0.1, a.Needs().Get(model.NeedInformation), 1e-9)

	w.now = 200
	w.tick()

	assert.Equal(t, 0, a.Knowledge().Len())
	assert.Zero(t, a.Needs().Get(model.NeedInformation))
	assert.Less(t, a.Needs().Get(model.NeedFood), 1.0)
	assert.Equal(t, 1, w.count(EventInformationPruned))
}

func TestMovementUsesResolvedNeighbors(t *testing.T) {
	w := newTestWorld(t)
	s := testSettings(config.VariantStandard)
	a, b := w.spawn(s), w.spawn(s)
	b.SetPosition(model.Vec{X: 5})

	a.OnNeighborSighted(b.Handle())
	a.OnNeighborSighted(b.Handle())
	a.OnNeighborSighted(Handle(42))
	assert.Len(t, a.VisibleNeighbors(), 2)

	w.tick()
	assert.Greater(t, a.LastMovement().Cohesion.X, 0.0)

	a.OnNeighborLost(b.Handle())
	a.OnNeighborLost(Handle(42))
	assert.Empty(t, a.VisibleNeighbors())
}
