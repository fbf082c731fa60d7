package config

import "github.com/rcliao/birdswarm/internal/model"

// Default returns the reference configuration.
func Default() Config {
	const (
		maxBirds        = 60
		maxFoodCapacity = 2.0
	)
	maxDistributed := maxFoodCapacity * maxBirds * 0.5

	return Config{
		Seed:  1,
		Ticks: 3000,
		Dt:    0.02,
		Environment: Environment{
			Bounds: model.Bounds{
				Min: model.Vec{X: -50, Y: 0, Z: -50},
				Max: model.Vec{X: 50, Y: 40, Z: 50},
			},
			MaxDistributedAmountOfFood: maxDistributed,
			DistributeFoodAfter:        2,
			InitialFood:                20,
			MeasureInterval:            1,
		},
		Food: Food{
			// a single source never holds more than a tenth of all food
			MaxAmount:    maxDistributed * 0.1,
			MinAmount:    1,
			MinTimeAlive: 60,
			MaxTimeAlive: 6000,
		},
		Bird: Bird{
			MaxHops:              10,
			MaxAge:               180,
			EatingThreshold:      0.5,
			MaxFoodCapacity:      maxFoodCapacity,
			FoodDecayPerSecond:   0.01,
			InformationThreshold: 0.5,
			InformationPerRecord: 0.1,
			MinVelocity:          2,
			MaxVelocity:          10,
			Explore: Explore{
				ChangeDirectionAfter: 5,
				ChangeCohesionAfter:  10,
				MinStateTime:         1,
				LowCohesion:          0.2,
			},
			Feed: Feed{
				DiscreditDistance: 1,
				DiscreditAfter:    30,
			},
			Communicate: Communicate{
				IdleTimeout: 2,
			},
		},
		Communication: Communication{
			CertaintyThreshold: 0.3,
			EqualityThreshold:  0.1,
			Timeout:            0.2,
		},
		Movement: Movement{
			Explore:     Weights{Cohesion: 1, Separation: 2, Target: 0.5, Alignment: 1},
			Feed:        Weights{Cohesion: 0, Separation: 0, Target: 50, Alignment: 0},
			Communicate: Weights{Cohesion: 1, Separation: 2, Target: 0, Alignment: 1},
		},
		Perception: Perception{
			VisibleRange: 15,
			NearRange:    3,
			ContactRange: 1.5,
		},
		Population: []Group{
			{Variant: VariantStandard, Count: 40},
			{Variant: VariantGossip, Count: 10},
			{Variant: VariantCertain, Count: 5},
			{Variant: VariantMute, Count: 5},
		},
	}
}
