package config

import (
	"fmt"
	"strconv"
)

// Environment variables that override the run-level settings.
const (
	EnvSeed  = "BIRDSWARM_SEED"
	EnvTicks = "BIRDSWARM_TICKS"
	EnvDt    = "BIRDSWARM_DT"
)

// ApplyEnv overrides seed, ticks and dt from the environment and validates
// the result. Unset or empty variables are ignored. getenv is usually
// os.Getenv.
func (c *Config) ApplyEnv(getenv func(string) string) error {
	if v := getenv(EnvSeed); v != "" {
		seed, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvSeed, err)
		}
		c.Seed = seed
	}
	if v := getenv(EnvTicks); v != "" {
		ticks, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvTicks, err)
		}
		c.Ticks = ticks
	}
	if v := getenv(EnvDt); v != "" {
		dt, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvDt, err)
		}
		c.Dt = dt
	}
	return c.Validate()
}
