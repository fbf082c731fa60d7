package config

import (
	"errors"
	"fmt"
)

// Validate checks every range and returns all problems at once.
func (c *Config) Validate() error {
	var errs []error
	check := func(ok bool, format string, args ...any) {
		if !ok {
			errs = append(errs, fmt.Errorf(format, args...))
		}
	}

	check(c.Ticks >= 0, "ticks must not be negative, got %d", c.Ticks)
	check(c.Dt > 0, "dt must be positive, got %v", c.Dt)

	b := c.Environment.Bounds
	check(b.Min.X < b.Max.X && b.Min.Y < b.Max.Y && b.Min.Z < b.Max.Z,
		"environment bounds min %v must be below max %v on every axis", b.Min, b.Max)
	check(c.Environment.MaxDistributedAmountOfFood >= 0, "environment.max_distributed_amount_of_food must not be negative")
	check(c.Environment.DistributeFoodAfter > 0, "environment.distribute_food_after must be positive")
	check(c.Environment.MeasureInterval > 0, "environment.measure_interval must be positive")

	check(c.Food.MinAmount > 0 && c.Food.MinAmount <= c.Food.MaxAmount,
		"food amounts must satisfy 0 < min (%v) <= max (%v)", c.Food.MinAmount, c.Food.MaxAmount)
	check(c.Food.MinTimeAlive > 0 && c.Food.MinTimeAlive <= c.Food.MaxTimeAlive,
		"food lifetimes must satisfy 0 < min (%v) <= max (%v)", c.Food.MinTimeAlive, c.Food.MaxTimeAlive)

	check(c.Bird.MaxHops > 0, "bird.max_hops must be positive, got %d", c.Bird.MaxHops)
	check(c.Bird.MaxAge > 0, "bird.max_age must be positive, got %v", c.Bird.MaxAge)
	check(inUnit(c.Bird.EatingThreshold), "bird.eating_threshold must be in [0,1]")
	check(inUnit(c.Bird.InformationThreshold), "bird.information_threshold must be in [0,1]")
	check(c.Bird.MaxFoodCapacity > 0, "bird.max_food_capacity must be positive")
	check(c.Bird.FoodDecayPerSecond >= 0, "bird.food_decay_per_second must not be negative")
	check(c.Bird.InformationPerRecord >= 0, "bird.information_per_record must not be negative")
	check(c.Bird.MinVelocity >= 0 && c.Bird.MinVelocity <= c.Bird.MaxVelocity,
		"velocities must satisfy 0 <= min (%v) <= max (%v)", c.Bird.MinVelocity, c.Bird.MaxVelocity)
	check(c.Bird.Explore.ChangeDirectionAfter > 0, "bird.explore.change_direction_after must be positive")
	check(c.Bird.Explore.ChangeCohesionAfter > 0, "bird.explore.change_cohesion_after must be positive")
	check(c.Bird.Feed.DiscreditDistance >= 0, "bird.feed.discredit_distance must not be negative")
	check(c.Bird.Feed.DiscreditAfter > 0, "bird.feed.discredit_after must be positive")
	check(c.Bird.Communicate.IdleTimeout > 0, "bird.communicate.idle_timeout must be positive")

	check(c.Communication.CertaintyThreshold <= 1, "communication.certainty_threshold must be at most 1")
	check(inUnit(c.Communication.EqualityThreshold), "communication.equality_threshold must be in [0,1]")
	check(c.Communication.Timeout >= 0, "communication.timeout must not be negative")

	p := c.Perception
	check(p.ContactRange > 0 && p.ContactRange <= p.NearRange && p.NearRange <= p.VisibleRange,
		"perception ranges must satisfy 0 < contact (%v) <= near (%v) <= visible (%v)",
		p.ContactRange, p.NearRange, p.VisibleRange)

	for i, g := range c.Population {
		check(validVariants[g.Variant], "population[%d]: unknown variant %q", i, g.Variant)
		check(g.Count >= 0, "population[%d]: count must not be negative", i)
	}

	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrInvalid, errors.Join(errs...))
}

func inUnit(v float64) bool {
	return v >= 0 && v <= 1
}
