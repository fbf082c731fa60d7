// Package metrics exposes swarm telemetry as Prometheus metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/rcliao/birdswarm/internal/bird"
	"github.com/rcliao/birdswarm/internal/model"
)

// Metrics translates agent events and samples into Prometheus metrics.
// It implements sim.Observer and sim.SampleObserver.
type Metrics struct {
	// Event metrics
	Events      *prometheus.CounterVec
	Transitions *prometheus.CounterVec
	FoodEaten   prometheus.Counter
	RecordHops  prometheus.Histogram

	// Sample metrics
	Birds             *prometheus.GaugeVec
	HungryBirds       prometheus.Gauge
	AverageHops       prometheus.Gauge
	AverageCertainty  prometheus.Gauge
	AverageAge        prometheus.Gauge
	AverageDuplicates prometheus.Gauge
	FoodSpawned       prometheus.Counter
	FoodRemoved       prometheus.Counter
	FoodDiscovered    prometheus.Counter
	DiscoveryDuration prometheus.Gauge
	SimulatedTime     prometheus.Gauge
}

// New registers the metrics with reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Events: f.NewCounterVec(prometheus.CounterOpts{
			Name: "birdswarm_events_total",
			Help: "Total number of agent events by kind",
		}, []string{"kind"}),

		Transitions: f.NewCounterVec(prometheus.CounterOpts{
			Name: "birdswarm_state_transitions_total",
			Help: "Total number of behavior state changes by entered state",
		}, []string{"state"}),

		FoodEaten: f.NewCounter(prometheus.CounterOpts{
			Name: "birdswarm_food_eaten_total",
			Help: "Total amount of food eaten",
		}),

		// hop count of every record a bird kept
		RecordHops: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "birdswarm_record_hops",
			Help:    "Hop count of gathered information records",
			Buckets: prometheus.LinearBuckets(0, 1, 12),
		}),

		Birds: f.NewGaugeVec(prometheus.GaugeOpts{
			Name: "birdswarm_birds",
			Help: "Number of birds by behavior state at the last sample",
		}, []string{"state"}),

		HungryBirds: f.NewGauge(prometheus.GaugeOpts{
			Name: "birdswarm_hungry_birds",
			Help: "Number of hungry birds at the last sample",
		}),

		AverageHops: f.NewGauge(prometheus.GaugeOpts{
			Name: "birdswarm_information_hops_avg",
			Help: "Average hop count of all held records",
		}),

		AverageCertainty: f.NewGauge(prometheus.GaugeOpts{
			Name: "birdswarm_information_certainty_avg",
			Help: "Average certainty of all held records",
		}),

		AverageAge: f.NewGauge(prometheus.GaugeOpts{
			Name: "birdswarm_information_age_seconds_avg",
			Help: "Average age of all held records in simulated seconds",
		}),

		AverageDuplicates: f.NewGauge(prometheus.GaugeOpts{
			Name: "birdswarm_information_copies_avg",
			Help: "Average number of copies held per food source",
		}),

		FoodSpawned: f.NewCounter(prometheus.CounterOpts{
			Name: "birdswarm_food_spawned_total",
			Help: "Total number of food sources distributed",
		}),

		FoodRemoved: f.NewCounter(prometheus.CounterOpts{
			Name: "birdswarm_food_removed_total",
			Help: "Total number of food sources eaten up or expired",
		}),

		FoodDiscovered: f.NewCounter(prometheus.CounterOpts{
			Name: "birdswarm_food_discovered_total",
			Help: "Total number of food sources seen by a bird",
		}),

		DiscoveryDuration: f.NewGauge(prometheus.GaugeOpts{
			Name: "birdswarm_food_discovery_duration_seconds_avg",
			Help: "Average time from distribution to first sighting in the last interval",
		}),

		SimulatedTime: f.NewGauge(prometheus.GaugeOpts{
			Name: "birdswarm_simulated_time_seconds",
			Help: "Simulated time of the last sample",
		}),
	}
}

// Notify records an agent event.
func (m *Metrics) Notify(e bird.Event) {
	m.Events.WithLabelValues(e.Kind.String()).Inc()
	switch e.Kind {
	case bird.EventStateChanged:
		m.Transitions.WithLabelValues(e.State).Inc()
	case bird.EventFed:
		m.FoodEaten.Add(e.Amount)
	case bird.EventInformationGathered:
		if e.Record != nil {
			m.RecordHops.Observe(float64(e.Record.Hops))
		}
	}
}

// ObserveSample records a measurement.
func (m *Metrics) ObserveSample(s model.Sample) {
	m.Birds.WithLabelValues(bird.StateExplore).Set(float64(s.ExploringBirds))
	m.Birds.WithLabelValues(bird.StateFeed).Set(float64(s.FeedingBirds))
	m.Birds.WithLabelValues(bird.StateCommunicate).Set(float64(s.CommunicatingBirds))
	m.HungryBirds.Set(float64(s.HungryBirds))

	m.AverageHops.Set(s.AverageHops)
	m.AverageCertainty.Set(s.AverageInformationCertainty)
	m.AverageAge.Set(s.AverageInformationAge)
	m.AverageDuplicates.Set(s.AverageDuplicatesPerInformation)

	m.FoodSpawned.Add(float64(s.SpawnedFood))
	m.FoodRemoved.Add(float64(s.RemovedFood))
	m.FoodDiscovered.Add(float64(s.DiscoveredFood))
	m.DiscoveryDuration.Set(s.AverageDiscoveryDuration)
	m.SimulatedTime.Set(s.Timestamp)
}
