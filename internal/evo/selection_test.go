package evo

import (
	"math/rand"
	"testing"

	"fractalforge/internal/genome"
	"fractalforge/internal/model"
)

func gradedPopulation(size int) []model.Genome {
	population := make([]model.Genome, size)
	for i := range population {
		population[i] = genome.New()
		population[i].Fitness = float64(i) / float64(size)
		population[i].JuliaReal.Value = float64(i)
	}
	return population
}

func TestTournamentSelectorPrefersFitter(t *testing.T) {
	population := gradedPopulation(20)
	selector := TournamentSelector{TournamentSize: 3}
	rng := rand.New(rand.NewSource(11))

	picks := 0
	aboveMedian := 0
	for i := 0; i < 500; i++ {
		parent, err := selector.PickParent(rng, population)
		if err != nil {
			t.Fatalf("pick parent: %v", err)
		}
		picks++
		if parent.Fitness >= 0.5 {
			aboveMedian++
		}
	}
	// A 3-way tournament picks above the median with probability 7/8.
	if float64(aboveMedian)/float64(picks) < 0.7 {
		t.Fatalf("only %d/%d picks above the median", aboveMedian, picks)
	}
}

func TestTournamentSelectorEdgeCases(t *testing.T) {
	selector := TournamentSelector{}
	rng := rand.New(rand.NewSource(1))

	if _, err := selector.PickParent(nil, gradedPopulation(4)); err == nil {
		t.Error("expected error for nil rng")
	}
	if _, err := selector.PickParent(rng, nil); err == nil {
		t.Error("expected error for empty population")
	}

	// A single-genome population always yields that genome.
	single := gradedPopulation(1)
	parent, err := selector.PickParent(rng, single)
	if err != nil {
		t.Fatalf("pick parent: %v", err)
	}
	if parent.JuliaReal.Value != single[0].JuliaReal.Value {
		t.Error("single-genome population returned a different genome")
	}
}

func TestRouletteSelectorProportionalToFitness(t *testing.T) {
	population := gradedPopulation(4)
	population[0].Fitness = 0
	population[1].Fitness = 0.1
	population[2].Fitness = 0.1
	population[3].Fitness = 0.8

	selector := RouletteSelector{}
	rng := rand.New(rand.NewSource(3))
	counts := map[float64]int{}
	for i := 0; i < 1000; i++ {
		parent, err := selector.PickParent(rng, population)
		if err != nil {
			t.Fatalf("pick parent: %v", err)
		}
		counts[parent.JuliaReal.Value]++
	}
	if counts[0] != 0 {
		t.Errorf("zero-fitness genome picked %d times", counts[0])
	}
	if counts[3] < 600 {
		t.Errorf("dominant genome picked %d/1000 times", counts[3])
	}
}

func TestRouletteSelectorUniformFallback(t *testing.T) {
	population := gradedPopulation(5)
	for i := range population {
		population[i].Fitness = 0
	}
	selector := RouletteSelector{}
	rng := rand.New(rand.NewSource(5))

	seen := map[float64]bool{}
	for i := 0; i < 200; i++ {
		parent, err := selector.PickParent(rng, population)
		if err != nil {
			t.Fatalf("pick parent: %v", err)
		}
		seen[parent.JuliaReal.Value] = true
	}
	if len(seen) < 3 {
		t.Errorf("uniform fallback visited only %d genomes", len(seen))
	}
}

func TestSelectParents(t *testing.T) {
	population := gradedPopulation(10)
	rng := rand.New(rand.NewSource(7))
	parents, err := selectParents(rng, TournamentSelector{TournamentSize: 2}, population, 6)
	if err != nil {
		t.Fatalf("select parents: %v", err)
	}
	if len(parents) != 6 {
		t.Fatalf("len = %d, want 6", len(parents))
	}
}
