package sim

import (
	"gonum.org/v1/gonum/stat"

	"github.com/rcliao/birdswarm/internal/bird"
	"github.com/rcliao/birdswarm/internal/model"
)

// Sampler is called by the scheduler every measurement interval.
type Sampler interface {
	CollectMeasurements(now float64)
}

// Scheduler calls its samplers on a fixed simulated interval.
type Scheduler struct {
	interval float64
	until    float64 // 0 means no limit
	next     float64
	samplers []Sampler
}

func NewScheduler(interval, until float64) *Scheduler {
	return &Scheduler{interval: interval, until: until, next: interval}
}

// Register adds a sampler. Samplers are called in registration order.
func (s *Scheduler) Register(smp Sampler) {
	s.samplers = append(s.samplers, smp)
}

// Step fires at most once per call.
func (s *Scheduler) Step(now float64) bool {
	if s.interval <= 0 || len(s.samplers) == 0 {
		return false
	}
	if s.until > 0 && now > s.until {
		return false
	}
	if now < s.next {
		return false
	}
	for s.next <= now {
		s.next += s.interval
	}
	for _, smp := range s.samplers {
		smp.CollectMeasurements(now)
	}
	return true
}

// measure takes a sample of the swarm. The food tally is the one
// accumulated since the previous sample.
func measure(now float64, agents []*bird.Agent, tally foodTally) model.Sample {
	smp := model.Sample{
		Timestamp:                now,
		DiscoveredFood:           tally.discovered,
		SpawnedFood:              tally.spawned,
		RemovedFood:              tally.removed,
		AverageDiscoveryDuration: mean(tally.discoveries),
		AverageFoodLifetime:      mean(tally.lifetimes),
	}

	var hops, ages, certainties []float64
	copies := make(map[string]int)
	for _, a := range agents {
		if a == nil || a.Removed() {
			continue
		}
		if a.Hungry() {
			smp.HungryBirds++
		}
		switch {
		case a.Feeding():
			smp.FeedingBirds++
		case a.Communicating():
			smp.CommunicatingBirds++
		case a.Exploring():
			smp.ExploringBirds++
		}
		for _, r := range a.Knowledge().Records() {
			hops = append(hops, float64(r.Hops))
			ages = append(ages, r.Age(now))
			certainties = append(certainties, r.Certainty)
			copies[r.SourceID]++
		}
	}

	smp.AverageHops = mean(hops)
	smp.AverageInformationAge = mean(ages)
	smp.AverageInformationCertainty = mean(certainties)
	if len(copies) > 0 {
		smp.AverageDuplicatesPerInformation = float64(len(hops)) / float64(len(copies))
	}
	return smp
}

// mean is 0 for no values.
func mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	return stat.Mean(xs, nil)
}
