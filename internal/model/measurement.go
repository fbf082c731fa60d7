package model

import "time"

// Run is one recorded simulation run.
type Run struct {
	ID         string     `json:"id"`
	Label      string     `json:"label"`
	Seed       int64      `json:"seed"`
	Ticks      int        `json:"ticks"`
	Dt         float64    `json:"dt"`
	Birds      int        `json:"birds"`
	Config     string     `json:"config,omitempty"`
	StartedAt  time.Time  `json:"started_at"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
	Samples    []Sample   `json:"samples,omitempty"`
}

// Sample is a snapshot of the swarm taken at a simulated timestamp.
type Sample struct {
	Timestamp float64 `json:"timestamp"`

	HungryBirds        int `json:"hungry_birds"`
	FeedingBirds       int `json:"feeding_birds"`
	CommunicatingBirds int `json:"communicating_birds"`
	ExploringBirds     int `json:"exploring_birds"`

	DiscoveredFood           int     `json:"discovered_food"`
	SpawnedFood              int     `json:"spawned_food"`
	RemovedFood              int     `json:"removed_food"`
	AverageDiscoveryDuration float64 `json:"avg_discovery_duration"` // spawn until first discovery
	AverageFoodLifetime      float64 `json:"avg_food_lifetime"`

	AverageHops                     float64 `json:"avg_hops"`
	AverageDuplicatesPerInformation float64 `json:"avg_duplicates_per_information"`
	AverageInformationAge           float64 `json:"avg_information_age"`
	AverageInformationCertainty     float64 `json:"avg_information_certainty"`
}
