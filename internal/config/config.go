// Package config holds the immutable settings a simulation is built from.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/rcliao/birdswarm/internal/model"
)

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("invalid config")

// Variant selects a bird's communication profile.
type Variant string

const (
	VariantStandard Variant = "standard"
	// VariantGossip remembers uncertain information (certainty threshold 0).
	VariantGossip Variant = "gossip"
	// VariantCertain only keeps very certain information.
	VariantCertain Variant = "certain"
	// VariantMute never talks to other birds.
	VariantMute Variant = "mute"
)

var validVariants = map[Variant]bool{
	VariantStandard: true,
	VariantGossip:   true,
	VariantCertain:  true,
	VariantMute:     true,
}

// Config is the complete settings tree. Times are simulated seconds.
type Config struct {
	Seed  int64   `yaml:"seed"`
	Ticks int     `yaml:"ticks"`
	Dt    float64 `yaml:"dt"`

	Environment   Environment   `yaml:"environment"`
	Food          Food          `yaml:"food"`
	Bird          Bird          `yaml:"bird"`
	Communication Communication `yaml:"communication"`
	Movement      Movement      `yaml:"movement"`
	Perception    Perception    `yaml:"perception"`
	Population    []Group       `yaml:"population"`
}

// Environment bounds the world and paces food distribution and measuring.
type Environment struct {
	Bounds                     model.Bounds `yaml:"bounds"`
	MaxDistributedAmountOfFood float64      `yaml:"max_distributed_amount_of_food"`
	DistributeFoodAfter        float64      `yaml:"distribute_food_after"`
	InitialFood                int          `yaml:"initial_food"`
	MeasureInterval            float64      `yaml:"measure_interval"`
	MaxMeasureTime             float64      `yaml:"max_measure_time"` // 0 measures for the whole run
}

// Food configures food sources.
type Food struct {
	MaxAmount    float64 `yaml:"max_amount"`
	MinAmount    float64 `yaml:"min_amount"`
	MinTimeAlive float64 `yaml:"min_time_alive"`
	MaxTimeAlive float64 `yaml:"max_time_alive"`
}

// Bird holds needs, information and state timing settings shared by all birds.
type Bird struct {
	MaxHops int     `yaml:"max_hops"`
	MaxAge  float64 `yaml:"max_age"`

	EatingThreshold    float64 `yaml:"eating_threshold"`
	MaxFoodCapacity    float64 `yaml:"max_food_capacity"`
	FoodDecayPerSecond float64 `yaml:"food_decay_per_second"`

	InformationThreshold float64 `yaml:"information_threshold"`
	InformationPerRecord float64 `yaml:"information_per_record"`

	MinVelocity float64 `yaml:"min_velocity"`
	MaxVelocity float64 `yaml:"max_velocity"`

	Explore     Explore     `yaml:"explore"`
	Feed        Feed        `yaml:"feed"`
	Communicate Communicate `yaml:"communicate"`
}

type Explore struct {
	ChangeDirectionAfter float64 `yaml:"change_direction_after"`
	ChangeCohesionAfter  float64 `yaml:"change_cohesion_after"`
	MinStateTime         float64 `yaml:"min_state_time"`
	LowCohesion          float64 `yaml:"low_cohesion"`
}

type Feed struct {
	DiscreditDistance float64 `yaml:"discredit_distance"`
	DiscreditAfter    float64 `yaml:"discredit_after"`
}

type Communicate struct {
	IdleTimeout float64 `yaml:"idle_timeout"`
}

// Communication is a bird's propagation profile.
type Communication struct {
	CertaintyThreshold float64 `yaml:"certainty_threshold"`
	EqualityThreshold  float64 `yaml:"equality_threshold"`
	// Timeout is the time between two records sent in a gossip exchange.
	Timeout      float64 `yaml:"timeout"`
	StaggerStart bool    `yaml:"stagger_start"`
	IgnoreBirds  bool    `yaml:"ignore_birds"`
	Mute         bool    `yaml:"mute"`
}

// Weights are the movement force multipliers of one behavior state.
type Weights struct {
	Cohesion   float64 `yaml:"cohesion"`
	Separation float64 `yaml:"separation"`
	Target     float64 `yaml:"target"`
	Alignment  float64 `yaml:"alignment"`
}

type Movement struct {
	Explore     Weights `yaml:"explore"`
	Feed        Weights `yaml:"feed"`
	Communicate Weights `yaml:"communicate"`
}

// Perception ranges used by the distance based perception layer.
type Perception struct {
	VisibleRange float64 `yaml:"visible_range"`
	NearRange    float64 `yaml:"near_range"`
	ContactRange float64 `yaml:"contact_range"`
}

// Group is a number of birds sharing a variant.
type Group struct {
	Variant Variant `yaml:"variant"`
	Count   int     `yaml:"count"`
}

// Birds returns the total population size.
func (c *Config) Birds() int {
	n := 0
	for _, g := range c.Population {
		n += g.Count
	}
	return n
}

// CommunicationFor returns the communication profile of a variant.
func (c *Config) CommunicationFor(v Variant) Communication {
	cs := c.Communication
	switch v {
	case VariantGossip:
		cs.CertaintyThreshold = 0
	case VariantCertain:
		cs.CertaintyThreshold = 0.7
	case VariantMute:
		cs.Mute = true
	}
	return cs
}

// Load reads a YAML file and overlays it on the defaults.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	return Parse(data)
}

// Parse overlays YAML data on the defaults and validates the result.
// Unknown keys are rejected.
func Parse(data []byte) (Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Marshal renders the config as YAML.
func (c Config) Marshal() ([]byte, error) {
	return yaml.Marshal(c)
}
