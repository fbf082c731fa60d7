// Package sim drives a swarm: it owns the clock, the random source, the
// agent registry, the environment and the measurement schedule.
package sim

import (
	"context"
	"fmt"
	"math/rand"

	"github.com/sirupsen/logrus"

	"github.com/rcliao/birdswarm/internal/bird"
	"github.com/rcliao/birdswarm/internal/config"
	"github.com/rcliao/birdswarm/internal/info"
	"github.com/rcliao/birdswarm/internal/model"
)

// Observer receives every agent event.
type Observer interface {
	Notify(e bird.Event)
}

// SampleObserver receives every sample as it is taken.
type SampleObserver interface {
	ObserveSample(s model.Sample)
}

// Counters are swarm-wide totals since the start of the run.
type Counters struct {
	Ticks           int     `json:"ticks"`
	StateChanges    int     `json:"state_changes"`
	Gathered        int     `json:"gathered"`
	Pruned          int     `json:"pruned"`
	FoodDiscovered  int     `json:"food_discovered"`
	FoodDiscredited int     `json:"food_discredited"`
	Meals           int     `json:"meals"`
	Eaten           float64 `json:"eaten"`
	Sent            int     `json:"sent"`
	Exchanges       int     `json:"exchanges"`
}

// Simulation is the world agents live in. It is not safe for concurrent
// use.
type Simulation struct {
	cfg config.Config
	log logrus.FieldLogger
	rnd *rand.Rand
	ids *IDSource

	model      *info.Model
	env        *Environment
	perception *Perception
	scheduler  *Scheduler

	now      float64
	agents   []*bird.Agent
	counters Counters
	samples  []model.Sample

	observers       []Observer
	sampleObservers []SampleObserver
}

// New validates cfg, builds the environment and spawns the population.
func New(cfg config.Config, log logrus.FieldLogger) (*Simulation, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if log == nil {
		log = logrus.StandardLogger()
	}

	rnd := rand.New(rand.NewSource(cfg.Seed))
	s := &Simulation{
		cfg:        cfg,
		log:        log,
		rnd:        rnd,
		ids:        NewIDSource(rand.New(rand.NewSource(cfg.Seed))),
		model:      info.NewModel(cfg.Bird.MaxHops, cfg.Bird.MaxAge, cfg.Environment.Bounds, cfg.Food.MaxAmount),
		perception: NewPerception(cfg.Perception, cfg.Environment.Bounds),
		scheduler:  NewScheduler(cfg.Environment.MeasureInterval, cfg.Environment.MaxMeasureTime),
	}
	s.env = NewEnvironment(&s.cfg, rnd, s.ids, log)
	s.scheduler.Register(s)

	for _, g := range cfg.Population {
		settings := bird.NewSettings(&s.cfg, g.Variant)
		for range g.Count {
			s.Spawn(settings, s.randomPosition())
		}
	}
	return s, nil
}

func (s *Simulation) Now() float64              { return s.now }
func (s *Simulation) Dt() float64               { return s.cfg.Dt }
func (s *Simulation) Rand() *rand.Rand          { return s.rnd }
func (s *Simulation) Config() config.Config     { return s.cfg }
func (s *Simulation) Model() *info.Model        { return s.model }
func (s *Simulation) Environment() *Environment { return s.env }
func (s *Simulation) Scheduler() *Scheduler     { return s.scheduler }
func (s *Simulation) Counters() Counters        { return s.counters }
func (s *Simulation) Samples() []model.Sample   { return s.samples }
func (s *Simulation) IDs() *IDSource            { return s.ids }

// Agents returns the registry. Removed agents keep their slot.
func (s *Simulation) Agents() []*bird.Agent { return s.agents }

// Lookup resolves a handle to a live agent.
func (s *Simulation) Lookup(h bird.Handle) (*bird.Agent, bool) {
	if h < 0 || int(h) >= len(s.agents) {
		return nil, false
	}
	a := s.agents[h]
	if a == nil || a.Removed() {
		return nil, false
	}
	return a, true
}

// AddObserver subscribes o to agent events.
func (s *Simulation) AddObserver(o Observer) {
	s.observers = append(s.observers, o)
}

// AddSampleObserver subscribes o to samples.
func (s *Simulation) AddSampleObserver(o SampleObserver) {
	s.sampleObservers = append(s.sampleObservers, o)
}

// Spawn adds an agent at position and returns its handle.
func (s *Simulation) Spawn(settings bird.Settings, position model.Vec) bird.Handle {
	h := bird.Handle(len(s.agents))
	s.agents = append(s.agents, bird.New(h, s, s.model, settings, position, s.log))
	return h
}

// Remove takes an agent out of the swarm. Its slot is never reused.
func (s *Simulation) Remove(h bird.Handle) {
	if a, ok := s.Lookup(h); ok {
		a.Remove()
	}
}

// Notify updates the counters and fans the event out to observers.
func (s *Simulation) Notify(e bird.Event) {
	switch e.Kind {
	case bird.EventStateChanged:
		s.counters.StateChanges++
	case bird.EventInformationGathered:
		s.counters.Gathered++
	case bird.EventInformationPruned:
		s.counters.Pruned++
	case bird.EventFoodDiscovered:
		s.counters.FoodDiscovered++
		if e.Record != nil {
			s.env.discovered(e.Record.SourceID, e.Time)
		}
	case bird.EventFoodDiscredited:
		s.counters.FoodDiscredited++
	case bird.EventFed:
		s.counters.Meals++
		s.counters.Eaten += e.Amount
		s.env.consumed(e.Amount)
	case bird.EventInformationSent:
		s.counters.Sent++
	case bird.EventExchangeCompleted:
		s.counters.Exchanges++
	}
	for _, o := range s.observers {
		o.Notify(e)
	}
}

// Step advances the simulation by one tick.
func (s *Simulation) Step() {
	s.now += s.cfg.Dt
	s.counters.Ticks++

	s.env.Step(s.now, s.cfg.Dt)
	s.perception.Step(s.agents, s.env.Foods())
	for _, a := range s.agents {
		if a != nil && !a.Removed() {
			a.Update()
		}
	}
	s.scheduler.Step(s.now)
}

// Run steps ticks times, stopping early when ctx is done.
func (s *Simulation) Run(ctx context.Context, ticks int) error {
	s.log.WithFields(logrus.Fields{
		"birds": len(s.agents),
		"ticks": ticks,
		"seed":  s.cfg.Seed,
	}).Info("simulation started")

	for i := 0; i < ticks; i++ {
		if err := ctx.Err(); err != nil {
			s.log.WithField("tick", s.counters.Ticks).Warn("simulation interrupted")
			return fmt.Errorf("run interrupted at tick %d: %w", s.counters.Ticks, err)
		}
		s.Step()
	}

	s.log.WithFields(logrus.Fields{
		"time":    s.now,
		"samples": len(s.samples),
		"meals":   s.counters.Meals,
	}).Info("simulation finished")
	return nil
}

// CollectMeasurements takes a sample and hands it to the sample observers.
func (s *Simulation) CollectMeasurements(now float64) {
	smp := measure(now, s.agents, s.env.flush())
	s.samples = append(s.samples, smp)

	s.log.WithFields(logrus.Fields{
		"time":          smp.Timestamp,
		"hungry":        smp.HungryBirds,
		"feeding":       smp.FeedingBirds,
		"communicating": smp.CommunicatingBirds,
		"avg_hops":      smp.AverageHops,
	}).Info("measurement")

	for _, o := range s.sampleObservers {
		o.ObserveSample(smp)
	}
}

func (s *Simulation) randomPosition() model.Vec {
	b := s.cfg.Environment.Bounds
	return model.Vec{
		X: b.Min.X + s.rnd.Float64()*(b.Max.X-b.Min.X),
		Y: b.Min.Y + s.rnd.Float64()*(b.Max.Y-b.Min.Y),
		Z: b.Min.Z + s.rnd.Float64()*(b.Max.Z-b.Min.Z),
	}
}
