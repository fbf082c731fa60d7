package sim

import (
	"math/rand"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/rcliao/birdswarm/internal/config"
	"github.com/rcliao/birdswarm/internal/model"
)

// Environment owns the bounds and the food supply.
type Environment struct {
	settings config.Environment
	food     config.Food
	rnd      *rand.Rand
	ids      *IDSource
	log      logrus.FieldLogger

	foods       []*Food
	distributed float64
	timer       float64

	tally foodTally
}

// foodTally accumulates food statistics between two measurements.
type foodTally struct {
	spawned     int
	removed     int
	discovered  int
	discoveries []float64
	lifetimes   []float64
}

// NewEnvironment distributes the initial food.
func NewEnvironment(cfg *config.Config, rnd *rand.Rand, ids *IDSource, log logrus.FieldLogger) *Environment {
	e := &Environment{
		settings: cfg.Environment,
		food:     cfg.Food,
		rnd:      rnd,
		ids:      ids,
		log:      log,
	}
	for i := 0; i < e.settings.InitialFood && e.distributed < e.settings.MaxDistributedAmountOfFood; i++ {
		e.distribute(0)
	}
	return e
}

func (e *Environment) Bounds() model.Bounds { return e.settings.Bounds }
func (e *Environment) Foods() []*Food       { return e.foods }
func (e *Environment) Distributed() float64 { return e.distributed }

// Step removes depleted and expired food and distributes new food when
// the timer fires and the cap allows it.
func (e *Environment) Step(now, dt float64) {
	kept := e.foods[:0]
	for _, f := range e.foods {
		if f.Depleted() || f.Expired(now) {
			e.remove(f, now)
			continue
		}
		kept = append(kept, f)
	}
	clear(e.foods[len(kept):])
	e.foods = kept

	e.timer -= dt
	if e.timer <= 0 && e.distributed < e.settings.MaxDistributedAmountOfFood {
		e.timer = e.settings.DistributeFoodAfter
		e.distribute(now)
	}
}

func (e *Environment) distribute(now float64) *Food {
	b := e.settings.Bounds
	pos := model.Vec{
		X: b.Min.X + e.rnd.Float64()*(b.Max.X-b.Min.X),
		Y: b.Min.Y + e.rnd.Float64()*(b.Max.Y-b.Min.Y),
		Z: b.Min.Z + e.rnd.Float64()*(b.Max.Z-b.Min.Z),
	}

	amount := e.food.MinAmount
	if left := e.settings.MaxDistributedAmountOfFood - e.distributed; left > amount {
		amount += e.rnd.Float64() * (left - amount)
	}
	amount = min(amount, e.food.MaxAmount)
	lifetime := e.food.MinTimeAlive + e.rnd.Float64()*(e.food.MaxTimeAlive-e.food.MinTimeAlive)

	id, err := uuid.NewRandomFromReader(e.rnd)
	if err != nil {
		id = uuid.New()
	}
	f := &Food{
		id: id,
		record: &model.InformationRecord{
			ID:        e.ids.New(),
			SourceID:  id.String(),
			FirstSeen: -1,
			Gathered:  -1,
			Hops:      model.HopsUnobserved,
			Certainty: 1,
			Kind:      model.KindResource,
			Position:  pos,
			Size:      amount,
		},
		amount:       amount,
		spawnedAt:    now,
		expiresAt:    now + lifetime,
		discoveredAt: -1,
	}
	e.foods = append(e.foods, f)
	e.distributed += amount
	e.tally.spawned++

	e.log.WithFields(logrus.Fields{
		"food":   id.String(),
		"amount": amount,
		"time":   now,
	}).Debug("food distributed")
	return f
}

// remove takes f out of the supply. The cap only counts what is left.
func (e *Environment) remove(f *Food, now float64) {
	e.distributed = max(0, e.distributed-f.amount)
	e.tally.removed++
	e.tally.lifetimes = append(e.tally.lifetimes, now-f.spawnedAt)
}

// discovered records the first sighting of the food with the given source
// id.
func (e *Environment) discovered(sourceID string, now float64) {
	for _, f := range e.foods {
		if f.record.SourceID != sourceID {
			continue
		}
		if !f.Discovered() {
			f.discoveredAt = now
			e.tally.discovered++
			e.tally.discoveries = append(e.tally.discoveries, now-f.spawnedAt)
		}
		return
	}
}

// consumed keeps the distributed total in step with eating.
func (e *Environment) consumed(amount float64) {
	e.distributed = max(0, e.distributed-amount)
}

// flush returns the tally since the last call and starts a new one.
func (e *Environment) flush() foodTally {
	t := e.tally
	e.tally = foodTally{}
	return t
}
