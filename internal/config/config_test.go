package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "run.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	if cfg.Evolution.PopulationSize != 50 || cfg.Evolution.MaxGenerations != 1000 {
		t.Errorf("evolution defaults = %+v", cfg.Evolution)
	}
	if cfg.Store.Kind != "sqlite" {
		t.Errorf("store kind = %q", cfg.Store.Kind)
	}
}

func TestLoadOverlaysDefaults(t *testing.T) {
	path := writeConfig(t, `
evolution:
  population_size: 20
  max_generations: 5
  mutation_rate: 0.25
  weights:
    complexity: 0.5
store:
  kind: memory
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Evolution.PopulationSize != 20 || cfg.Evolution.MaxGenerations != 5 {
		t.Errorf("overridden values = %+v", cfg.Evolution)
	}
	// Untouched keys keep their defaults.
	if cfg.Evolution.TournamentSize != 3 || cfg.Evolution.TargetFitness != 0.95 {
		t.Errorf("defaults lost: %+v", cfg.Evolution)
	}
	if cfg.Evolution.Weights.Complexity != 0.5 {
		t.Errorf("weights.complexity = %v", cfg.Evolution.Weights.Complexity)
	}
	if cfg.Evolution.Weights.Symmetry != 0.1 {
		t.Errorf("weights.symmetry default lost: %v", cfg.Evolution.Weights.Symmetry)
	}
	if cfg.Store.Kind != "memory" {
		t.Errorf("store kind = %q", cfg.Store.Kind)
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	cases := []string{
		"evolution:\n  population_size: 0\n",
		"evolution:\n  target_fitness: 1.5\n",
		"evolution:\n  sample_size: 4\n",
		"store:\n  kind: cloud\n",
		"store:\n  kind: sqlite\n  path: \"\"\n",
	}
	for i, content := range cases {
		if _, err := Load(writeConfig(t, content)); err == nil {
			t.Errorf("case %d: expected an error", i)
		}
	}
}

func TestLoadRejectsMalformedYAML(t *testing.T) {
	if _, err := Load(writeConfig(t, "evolution: [")); err == nil {
		t.Fatal("expected a parse error")
	}
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("expected a read error")
	}
}

func TestParametersConversion(t *testing.T) {
	cfg := Default()
	cfg.Evolution.Workers = 4
	cfg.Evolution.PollIntervalMS = 25

	params := cfg.Parameters()
	if params.Workers != 4 {
		t.Errorf("workers = %d", params.Workers)
	}
	if params.PollInterval != 25*time.Millisecond {
		t.Errorf("poll interval = %v", params.PollInterval)
	}
	if err := params.Validate(); err != nil {
		t.Fatalf("converted parameters invalid: %v", err)
	}
}
