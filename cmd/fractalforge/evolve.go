package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"fractalforge/internal/config"
	"fractalforge/internal/evo"
	"fractalforge/internal/gallery"
	"fractalforge/internal/genome"
	"fractalforge/internal/model"
	"fractalforge/internal/storage"
)

type evolveOptions struct {
	configPath string
	seed       int64
	runID      string
	saveTop    int
	outGenome  string
	seedGenome string
	quiet      bool
}

func evolveCmd() *cobra.Command {
	opts := evolveOptions{}
	cmd := &cobra.Command{
		Use:   "evolve",
		Short: "run the genetic engine and persist the results",
		Args:  cobra.ExactArgs(0),
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmd.SilenceUsage = true
			return runEvolve(cmd.Context(), opts)
		},
	}
	cmd.Flags().StringVar(&opts.configPath, "config", "", "YAML run configuration, empty = defaults")
	cmd.Flags().Int64Var(&opts.seed, "seed", 0, "RNG seed override, 0 = config value")
	cmd.Flags().StringVar(&opts.runID, "run-id", "", "run identifier, empty = random UUID")
	cmd.Flags().IntVar(&opts.saveTop, "save-top", 3, "gallery entries to keep from the final population")
	cmd.Flags().StringVar(&opts.outGenome, "out-genome", "", "write the best genome as gene-record JSON")
	cmd.Flags().StringVar(&opts.seedGenome, "seed-genome", "", "seed the population from a gene-record JSON file")
	cmd.Flags().BoolVar(&opts.quiet, "quiet", false, "suppress per-generation output")
	return cmd
}

func runEvolve(ctx context.Context, opts evolveOptions) error {
	cfg := config.Default()
	if opts.configPath != "" {
		loaded, err := config.Load(opts.configPath)
		if err != nil {
			return err
		}
		cfg = loaded
	}

	params := cfg.Parameters()
	engine, err := evo.NewEngine(params)
	if err != nil {
		return err
	}

	seed := cfg.Evolution.Seed
	if opts.seed != 0 {
		seed = opts.seed
	}
	if err := engine.Initialize(seed); err != nil {
		return err
	}
	if opts.seedGenome != "" {
		g, err := loadGenome(opts.seedGenome)
		if err != nil {
			return err
		}
		if err := engine.SeedWithFractal(g, params.PopulationSize/4); err != nil {
			return err
		}
	}

	var mu sync.Mutex
	bestByGeneration := make([]float64, 0, params.MaxGenerations)
	engine.SetGenerationCallback(func(generation int, stats evo.Stats) {
		mu.Lock()
		bestByGeneration = append(bestByGeneration, stats.BestFitness)
		mu.Unlock()
		if !opts.quiet {
			fmt.Printf("gen %4d  best %.4f  avg %.4f  diversity %.3f  stagnation %d\n",
				generation, stats.BestFitness, stats.AverageFitness,
				stats.DiversityIndex, stats.StagnationCount)
		}
	})
	engine.SetBestFoundCallback(func(g model.Genome, fitness float64) {
		if !opts.quiet {
			fmt.Printf("new best: fitness %.4f at generation %d\n", fitness, g.Generation)
		}
	})

	if err := engine.StartEvolution(); err != nil {
		return err
	}

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt)
	defer signal.Stop(interrupt)
	go func() {
		<-interrupt
		fmt.Fprintln(os.Stderr, "interrupted, stopping evolution")
		engine.StopEvolution()
	}()

	engine.Wait()

	stats := engine.Stats()
	runID := opts.runID
	if runID == "" {
		runID = uuid.NewString()
	}

	if err := persistRun(ctx, &cfg, engine, stats, runID, opts.saveTop, bestByGeneration); err != nil {
		return err
	}

	if best, ok := engine.BestIndividual(); ok {
		fmt.Printf("run %s finished: %d generations, best fitness %.4f\n",
			runID, stats.CurrentGeneration, stats.BestFitness)
		if opts.outGenome != "" {
			if err := saveGenome(opts.outGenome, &best); err != nil {
				return fmt.Errorf("write genome %s: %w", opts.outGenome, err)
			}
		}
	}
	return nil
}

func persistRun(ctx context.Context, cfg *config.Config, engine *evo.Engine, stats evo.Stats, runID string, saveTop int, bestByGeneration []float64) error {
	store, err := storage.NewStore(cfg.Store.Kind, cfg.Store.Path)
	if err != nil {
		return err
	}
	if err := store.Init(ctx); err != nil {
		return err
	}
	defer storage.CloseIfSupported(store)

	run := model.RunStats{
		VersionedRecord: model.VersionedRecord{
			SchemaVersion: storage.CurrentSchemaVersion,
			CodecVersion:  storage.CurrentCodecVersion,
		},
		RunID:             runID,
		Generations:       stats.CurrentGeneration,
		BestFitness:       stats.BestFitness,
		AverageFitness:    stats.AverageFitness,
		BestByGeneration:  bestByGeneration,
		StagnationCount:   stats.StagnationCount,
		CompletedAt:       time.Now().UTC(),
		PopulationSize:    engine.Parameters().PopulationSize,
		TargetFitness:     engine.Parameters().TargetFitness,
		ReachedTarget:     stats.BestFitness >= engine.Parameters().TargetFitness,
		EvaluationsPerSec: stats.EvaluationsPerSecond,
	}
	if err := store.SaveRunStats(ctx, run); err != nil {
		return fmt.Errorf("save run stats: %w", err)
	}
	if err := store.SavePopulation(ctx, runID, engine.ExportPopulation()); err != nil {
		return fmt.Errorf("save population: %w", err)
	}

	if saveTop <= 0 {
		return nil
	}
	gal := gallery.New()
	if err := gal.LoadFrom(ctx, store); err != nil {
		return fmt.Errorf("load gallery: %w", err)
	}
	evaluator, err := evo.NewFitnessEvaluator(engine.Parameters().SampleSize)
	if err != nil {
		return err
	}
	for i, g := range engine.BestIndividuals(saveTop) {
		fractalCfg := genome.ToConfig(&g)
		entry := gal.AddFractal(g, g.Fitness, "", fmt.Sprintf("run %s rank %d", runID, i+1))
		entry.FitnessBreakdown = evaluator.Breakdown(&fractalCfg)
		if err := store.SaveGalleryEntry(ctx, entry); err != nil {
			return fmt.Errorf("save gallery entry: %w", err)
		}
	}
	return nil
}
