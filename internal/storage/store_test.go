package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"fractalforge/internal/genome"
	"fractalforge/internal/model"
)

// storeBackends builds one of each Store implementation so the contract
// tests run identically against both.
func storeBackends(t *testing.T) map[string]Store {
	t.Helper()
	sqlite := NewSQLiteStore(filepath.Join(t.TempDir(), "test.db"))
	t.Cleanup(func() { sqlite.Close() })
	return map[string]Store{
		"memory": NewMemoryStore(),
		"sqlite": sqlite,
	}
}

func testEntry(name string, fitness float64) model.GalleryEntry {
	g := genome.New()
	g.JuliaReal.Value = fitness // marker
	return model.GalleryEntry{
		VersionedRecord: model.VersionedRecord{
			SchemaVersion: CurrentSchemaVersion,
			CodecVersion:  CurrentCodecVersion,
		},
		ID:         "id-" + name,
		Genome:     g,
		Fitness:    fitness,
		Name:       name,
		Generation: 3,
		CreatedAt:  time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestGalleryEntryLifecycle(t *testing.T) {
	for backend, store := range storeBackends(t) {
		t.Run(backend, func(t *testing.T) {
			ctx := context.Background()
			if err := store.Init(ctx); err != nil {
				t.Fatalf("init: %v", err)
			}

			if _, ok, err := store.GetGalleryEntry(ctx, "missing"); err != nil || ok {
				t.Fatalf("missing entry: ok=%v err=%v", ok, err)
			}

			first := testEntry("first", 0.4)
			second := testEntry("second", 0.9)
			for _, entry := range []model.GalleryEntry{first, second} {
				if err := store.SaveGalleryEntry(ctx, entry); err != nil {
					t.Fatalf("save %s: %v", entry.Name, err)
				}
			}

			got, ok, err := store.GetGalleryEntry(ctx, first.ID)
			if err != nil || !ok {
				t.Fatalf("get: ok=%v err=%v", ok, err)
			}
			if got.Name != "first" || got.Fitness != 0.4 || got.Generation != 3 {
				t.Errorf("entry = %+v", got)
			}
			if got.Genome.JuliaReal.Value != 0.4 {
				t.Errorf("genome not preserved: %v", got.Genome.JuliaReal.Value)
			}
			if !got.CreatedAt.Equal(first.CreatedAt) {
				t.Errorf("created_at = %v", got.CreatedAt)
			}

			list, err := store.ListGalleryEntries(ctx)
			if err != nil {
				t.Fatalf("list: %v", err)
			}
			if len(list) != 2 || list[0].Name != "first" || list[1].Name != "second" {
				t.Fatalf("list order = %v", list)
			}

			// Saving the same ID again overwrites instead of duplicating.
			first.Fitness = 0.45
			if err := store.SaveGalleryEntry(ctx, first); err != nil {
				t.Fatalf("resave: %v", err)
			}
			list, _ = store.ListGalleryEntries(ctx)
			if len(list) != 2 || list[0].Fitness != 0.45 {
				t.Fatalf("after resave: %v", list)
			}

			if err := store.DeleteGalleryEntry(ctx, first.ID); err != nil {
				t.Fatalf("delete: %v", err)
			}
			if _, ok, _ := store.GetGalleryEntry(ctx, first.ID); ok {
				t.Error("deleted entry still present")
			}
			list, _ = store.ListGalleryEntries(ctx)
			if len(list) != 1 || list[0].Name != "second" {
				t.Errorf("after delete: %v", list)
			}
		})
	}
}

func TestPopulationRoundTrip(t *testing.T) {
	for backend, store := range storeBackends(t) {
		t.Run(backend, func(t *testing.T) {
			ctx := context.Background()
			if err := store.Init(ctx); err != nil {
				t.Fatalf("init: %v", err)
			}

			if _, ok, err := store.GetPopulation(ctx, "missing"); err != nil || ok {
				t.Fatalf("missing population: ok=%v err=%v", ok, err)
			}

			population := make([]model.Genome, 4)
			for i := range population {
				population[i] = genome.New()
				population[i].Fitness = float64(i) * 0.1
				population[i].Generation = 7
			}
			if err := store.SavePopulation(ctx, "run-1", population); err != nil {
				t.Fatalf("save: %v", err)
			}

			restored, ok, err := store.GetPopulation(ctx, "run-1")
			if err != nil || !ok {
				t.Fatalf("get: ok=%v err=%v", ok, err)
			}
			if len(restored) != 4 {
				t.Fatalf("restored %d genomes", len(restored))
			}
			for i, g := range restored {
				if g.Fitness != float64(i)*0.1 || g.Generation != 7 {
					t.Errorf("genome %d = fitness %v gen %d", i, g.Fitness, g.Generation)
				}
			}

			// Mutating the caller's slice must not change the stored copy.
			population[0].Fitness = 99
			restored, _, _ = store.GetPopulation(ctx, "run-1")
			if restored[0].Fitness == 99 {
				t.Error("store aliased the caller slice")
			}
		})
	}
}

func TestRunStatsRoundTrip(t *testing.T) {
	for backend, store := range storeBackends(t) {
		t.Run(backend, func(t *testing.T) {
			ctx := context.Background()
			if err := store.Init(ctx); err != nil {
				t.Fatalf("init: %v", err)
			}

			stats := model.RunStats{
				VersionedRecord: model.VersionedRecord{
					SchemaVersion: CurrentSchemaVersion,
					CodecVersion:  CurrentCodecVersion,
				},
				RunID:            "run-7",
				Generations:      42,
				BestFitness:      0.87,
				AverageFitness:   0.61,
				BestByGeneration: []float64{0.2, 0.5, 0.87},
				CompletedAt:      time.Date(2024, 6, 2, 8, 30, 0, 0, time.UTC),
				PopulationSize:   50,
				TargetFitness:    0.95,
			}
			if err := store.SaveRunStats(ctx, stats); err != nil {
				t.Fatalf("save: %v", err)
			}

			restored, ok, err := store.GetRunStats(ctx, "run-7")
			if err != nil || !ok {
				t.Fatalf("get: ok=%v err=%v", ok, err)
			}
			if restored.Generations != 42 || restored.BestFitness != 0.87 {
				t.Errorf("stats = %+v", restored)
			}
			if len(restored.BestByGeneration) != 3 || restored.BestByGeneration[2] != 0.87 {
				t.Errorf("history = %v", restored.BestByGeneration)
			}

			if _, ok, err := store.GetRunStats(ctx, "other"); err != nil || ok {
				t.Errorf("missing stats: ok=%v err=%v", ok, err)
			}
		})
	}
}

func TestSQLitePersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "persist.db")

	store := NewSQLiteStore(path)
	if err := store.Init(ctx); err != nil {
		t.Fatalf("init: %v", err)
	}
	if err := store.SaveGalleryEntry(ctx, testEntry("durable", 0.77)); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	reopened := NewSQLiteStore(path)
	if err := reopened.Init(ctx); err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()
	entry, ok, err := reopened.GetGalleryEntry(ctx, "id-durable")
	if err != nil || !ok {
		t.Fatalf("get after reopen: ok=%v err=%v", ok, err)
	}
	if entry.Fitness != 0.77 {
		t.Errorf("fitness = %v", entry.Fitness)
	}
}

func TestFactory(t *testing.T) {
	if _, err := NewStore("memory", ""); err != nil {
		t.Errorf("memory: %v", err)
	}
	store, err := NewStore("sqlite", filepath.Join(t.TempDir(), "f.db"))
	if err != nil {
		t.Fatalf("sqlite: %v", err)
	}
	if err := store.Init(context.Background()); err != nil {
		t.Fatalf("init: %v", err)
	}
	if err := CloseIfSupported(store); err != nil {
		t.Errorf("close: %v", err)
	}
	if err := CloseIfSupported(NewMemoryStore()); err != nil {
		t.Errorf("close memory: %v", err)
	}
	if _, err := NewStore("cloud", ""); err == nil {
		t.Error("expected an error for an unknown kind")
	}
}
