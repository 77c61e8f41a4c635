// Package config loads evolution run settings from YAML files. File values
// overlay the defaults; validation happens after the overlay so a partial
// file cannot sneak an invalid combination past the engine.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"fractalforge/internal/evo"
)

type Config struct {
	Evolution Evolution `yaml:"evolution"`
	Store     Store     `yaml:"store"`
}

type Evolution struct {
	PopulationSize        int     `yaml:"population_size"`
	MaxGenerations        int     `yaml:"max_generations"`
	MutationRate          float64 `yaml:"mutation_rate"`
	ElitePercentage       float64 `yaml:"elite_percentage"`
	TournamentSize        int     `yaml:"tournament_size"`
	TargetFitness         float64 `yaml:"target_fitness"`
	StagnationGenerations int     `yaml:"stagnation_generations"`
	Workers               int     `yaml:"workers"`
	PollIntervalMS        int     `yaml:"poll_interval_ms"`
	SampleSize            int     `yaml:"sample_size"`
	Seed                  int64   `yaml:"seed"`

	Weights evo.FitnessWeights `yaml:"weights"`
}

type Store struct {
	Kind string `yaml:"kind"`
	Path string `yaml:"path"`
}

// Default mirrors evo.DefaultParameters plus the sqlite store.
func Default() Config {
	params := evo.DefaultParameters()
	return Config{
		Evolution: Evolution{
			PopulationSize:        params.PopulationSize,
			MaxGenerations:        params.MaxGenerations,
			MutationRate:          params.MutationRate,
			ElitePercentage:       params.ElitePercentage,
			TournamentSize:        params.TournamentSize,
			TargetFitness:         params.TargetFitness,
			StagnationGenerations: params.StagnationGenerations,
			Workers:               params.Workers,
			PollIntervalMS:        int(params.PollInterval / time.Millisecond),
			SampleSize:            params.SampleSize,
			Seed:                  1,
			Weights:               params.Weights,
		},
		Store: Store{
			Kind: "sqlite",
			Path: "fractalforge.db",
		},
	}
}

// Load reads a YAML file over the defaults and validates the result.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Parameters converts the file representation to engine parameters.
func (c *Config) Parameters() evo.Parameters {
	params := evo.DefaultParameters()
	params.PopulationSize = c.Evolution.PopulationSize
	params.MaxGenerations = c.Evolution.MaxGenerations
	params.MutationRate = c.Evolution.MutationRate
	params.ElitePercentage = c.Evolution.ElitePercentage
	params.TournamentSize = c.Evolution.TournamentSize
	params.TargetFitness = c.Evolution.TargetFitness
	params.StagnationGenerations = c.Evolution.StagnationGenerations
	params.Workers = c.Evolution.Workers
	params.PollInterval = time.Duration(c.Evolution.PollIntervalMS) * time.Millisecond
	params.SampleSize = c.Evolution.SampleSize
	params.Weights = c.Evolution.Weights
	return params
}

func (c *Config) Validate() error {
	params := c.Parameters()
	if err := params.Validate(); err != nil {
		return err
	}
	switch c.Store.Kind {
	case "memory":
	case "sqlite":
		if c.Store.Path == "" {
			return fmt.Errorf("store path is required for sqlite")
		}
	default:
		return fmt.Errorf("unknown store kind: %s", c.Store.Kind)
	}
	return nil
}
