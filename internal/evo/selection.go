package evo

import (
	"fmt"
	"math/rand"

	"fractalforge/internal/model"
)

// Selector chooses a parent from a fitness-evaluated population.
type Selector interface {
	Name() string
	PickParent(rng *rand.Rand, population []model.Genome) (model.Genome, error)
}

// TournamentSelector samples candidates uniformly with replacement and
// keeps the one with the highest fitness.
type TournamentSelector struct {
	TournamentSize int
}

func (TournamentSelector) Name() string {
	return "tournament"
}

func (s TournamentSelector) PickParent(rng *rand.Rand, population []model.Genome) (model.Genome, error) {
	if rng == nil {
		return model.Genome{}, fmt.Errorf("random source is required")
	}
	if len(population) == 0 {
		return model.Genome{}, fmt.Errorf("population is empty")
	}

	tournamentSize := s.TournamentSize
	if tournamentSize <= 0 {
		tournamentSize = 3
	}

	best := population[rng.Intn(len(population))]
	for i := 1; i < tournamentSize; i++ {
		candidate := population[rng.Intn(len(population))]
		if candidate.Fitness > best.Fitness {
			best = candidate
		}
	}
	return best, nil
}

// RouletteSelector picks parents with probability proportional to fitness.
// Zero-fitness populations fall back to a uniform pick.
type RouletteSelector struct{}

func (RouletteSelector) Name() string {
	return "roulette"
}

func (RouletteSelector) PickParent(rng *rand.Rand, population []model.Genome) (model.Genome, error) {
	if rng == nil {
		return model.Genome{}, fmt.Errorf("random source is required")
	}
	if len(population) == 0 {
		return model.Genome{}, fmt.Errorf("population is empty")
	}

	total := 0.0
	for _, g := range population {
		if g.Fitness > 0 {
			total += g.Fitness
		}
	}
	if total <= 0 {
		return population[rng.Intn(len(population))], nil
	}

	pick := rng.Float64() * total
	acc := 0.0
	for _, g := range population {
		if g.Fitness <= 0 {
			continue
		}
		acc += g.Fitness
		if pick <= acc {
			return g, nil
		}
	}
	return population[len(population)-1], nil
}

// selectParents runs the selector repeatedly until count parents are
// chosen, sampling with replacement.
func selectParents(rng *rand.Rand, selector Selector, population []model.Genome, count int) ([]model.Genome, error) {
	parents := make([]model.Genome, 0, count)
	for i := 0; i < count; i++ {
		parent, err := selector.PickParent(rng, population)
		if err != nil {
			return nil, err
		}
		parents = append(parents, parent)
	}
	return parents, nil
}
