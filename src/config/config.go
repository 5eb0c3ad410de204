package config

import (
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/pkg/errors"

	"termlife/src/universe"
)

//Config holds the run configuration
//values come from the environment first, then command line flags may override them
//Seed 0 means seeding from the clock
type Config struct {
	Size             int           `env:"LIFE_SIZE"              envDefault:"64"`
	AliveProbability float64       `env:"LIFE_ALIVE_PROBABILITY" envDefault:"0.2"`
	Interval         time.Duration `env:"LIFE_INTERVAL"          envDefault:"250ms"`
	MaxSteps         int           `env:"LIFE_MAX_STEPS"         envDefault:"0"`
	Seed             int64         `env:"LIFE_SEED"`
	Headless         bool          `env:"LIFE_HEADLESS"`
	StopWhenStill    bool          `env:"LIFE_STOP_WHEN_STILL"`
	NoColor          bool          `env:"LIFE_NO_COLOR"`
}

//ErrInvalidProbability is the error of the universe package, so both layers match with errors.Is
var ErrInvalidProbability = universe.ErrInvalidProbability

//Load loads configuration from environment variables
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, errors.Wrap(err, "parse env")
	}
	return cfg, nil
}

//Validate checks the configuration before anything is allocated
func (c Config) Validate() error {
	if c.Size <= 0 {
		return errors.Wrapf(universe.ErrInvalidSize, "size %d", c.Size)
	}
	if !(c.AliveProbability >= 0 && c.AliveProbability <= 1) {
		return errors.Wrapf(ErrInvalidProbability, "probability %v", c.AliveProbability)
	}
	if c.Interval < 0 {
		return errors.Errorf("interval must not be negative: %v", c.Interval)
	}
	if c.MaxSteps < 0 {
		return errors.Errorf("max steps must not be negative: %d", c.MaxSteps)
	}
	return nil
}

//ResolveSeed returns the configured seed or a seed taken from the clock
func (c Config) ResolveSeed(now time.Time) int64 {
	if c.Seed != 0 {
		return c.Seed
	}
	return now.UnixNano()
}

func (c Config) UniverseOptions() universe.Options {
	return universe.Options{
		Size:             c.Size,
		AliveProbability: c.AliveProbability,
	}
}
