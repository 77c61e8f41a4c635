// Package evo implements the genetic search over fractal genomes: fitness
// scoring on sample grids, tournament selection, and the background
// generation loop with pause/resume/stop control.
package evo

import (
	"fmt"
	"math"
	"math/rand"
	"runtime"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"fractalforge/internal/genome"
	"fractalforge/internal/model"
)

// State is the engine lifecycle. Stopped is terminal for the current run
// but the engine can be re-Initialized into Idle.
type State int32

const (
	StateIdle State = iota
	StateRunning
	StatePaused
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	case StatePaused:
		return "paused"
	case StateStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// Parameters configures one evolution run. Zero values are rejected by
// Validate rather than silently clamped; the engine refuses to start when
// misconfigured.
type Parameters struct {
	PopulationSize        int
	MaxGenerations        int
	MutationRate          float64
	ElitePercentage       float64
	TournamentSize        int
	TargetFitness         float64
	StagnationGenerations int

	// Workers bounds fitness-evaluation parallelism; 0 means GOMAXPROCS.
	Workers int
	// PollInterval is the pause/stop check granularity of the loop.
	PollInterval time.Duration
	// SampleSize is the fitness grid edge length.
	SampleSize int
	// HighFitnessThreshold triggers the best-found callback.
	HighFitnessThreshold float64
	// InitialMutationBoost amplifies the global rate when seeding the
	// initial population, guaranteeing diversity around the default genome.
	InitialMutationBoost float64

	Weights FitnessWeights
}

// DefaultParameters mirrors the reference evolution settings.
func DefaultParameters() Parameters {
	return Parameters{
		PopulationSize:        50,
		MaxGenerations:        1000,
		MutationRate:          0.15,
		ElitePercentage:       0.1,
		TournamentSize:        3,
		TargetFitness:         0.95,
		StagnationGenerations: 50,
		Workers:               0,
		PollInterval:          50 * time.Millisecond,
		SampleSize:            64,
		HighFitnessThreshold:  0.9,
		InitialMutationBoost:  5.0,
		Weights:               DefaultFitnessWeights(),
	}
}

// Validate rejects configuration errors up front.
func (p *Parameters) Validate() error {
	if p.PopulationSize <= 0 {
		return fmt.Errorf("population size must be > 0, got %d", p.PopulationSize)
	}
	if p.MaxGenerations <= 0 {
		return fmt.Errorf("max generations must be > 0, got %d", p.MaxGenerations)
	}
	if p.MutationRate < 0 {
		return fmt.Errorf("mutation rate must be >= 0, got %v", p.MutationRate)
	}
	if p.ElitePercentage < 0 || p.ElitePercentage > 1 {
		return fmt.Errorf("elite percentage must be in [0,1], got %v", p.ElitePercentage)
	}
	if p.TargetFitness <= 0 || p.TargetFitness > 1 {
		return fmt.Errorf("target fitness must be in (0,1], got %v", p.TargetFitness)
	}
	if p.StagnationGenerations <= 0 {
		return fmt.Errorf("stagnation generations must be > 0, got %d", p.StagnationGenerations)
	}
	if p.Workers < 0 {
		return fmt.Errorf("workers must be >= 0, got %d", p.Workers)
	}
	if p.SampleSize < 8 {
		return fmt.Errorf("sample size must be >= 8, got %d", p.SampleSize)
	}
	if err := p.Weights.validate(); err != nil {
		return err
	}
	return nil
}

// Stats is a value snapshot of run progress.
type Stats struct {
	CurrentGeneration    int
	BestFitness          float64
	AverageFitness       float64
	DiversityIndex       float64
	StagnationCount      int
	CurrentMutationRate  float64
	GenerationsPerSecond float64
	EvaluationsPerSecond float64
}

// GenerationCallback fires once per completed generation, synchronously
// from the worker goroutine. Handlers must not block indefinitely.
type GenerationCallback func(generation int, stats Stats)

// BestFoundCallback fires when the best fitness first exceeds the
// high-fitness threshold and on every improvement above it afterwards.
type BestFoundCallback func(best model.Genome, fitness float64)

// Engine owns the population and runs the generation loop on a dedicated
// background goroutine between StartEvolution and StopEvolution. All
// outside reads copy under the same mutex the loop holds while replacing
// the population.
type Engine struct {
	params    Parameters
	evaluator *FitnessEvaluator
	selector  Selector

	state  atomic.Int32
	paused atomic.Bool

	mu         sync.Mutex
	population []model.Genome
	stats      Stats
	rng        *rand.Rand

	done chan struct{}

	callbackMu         sync.Mutex
	generationCallback GenerationCallback
	bestFoundCallback  BestFoundCallback
	bestReported       float64
}

// NewEngine validates the parameters and builds an idle engine.
func NewEngine(params Parameters) (*Engine, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	if params.Workers == 0 {
		params.Workers = runtime.GOMAXPROCS(0)
	}
	if params.PollInterval <= 0 {
		params.PollInterval = 50 * time.Millisecond
	}
	if params.HighFitnessThreshold <= 0 {
		params.HighFitnessThreshold = 0.9
	}
	if params.InitialMutationBoost <= 0 {
		params.InitialMutationBoost = 5.0
	}
	evaluator, err := NewFitnessEvaluator(params.SampleSize)
	if err != nil {
		return nil, err
	}
	e := &Engine{
		params:    params,
		evaluator: evaluator,
		selector:  TournamentSelector{TournamentSize: params.TournamentSize},
	}
	e.state.Store(int32(StateIdle))
	return e, nil
}

func (e *Engine) Parameters() Parameters { return e.params }

// Initialize seeds the RNG and builds the initial population by strongly
// mutating default genomes, so the search does not start from a single
// point. Re-initializing a stopped engine returns it to Idle.
func (e *Engine) Initialize(seed int64) error {
	if State(e.state.Load()) == StateRunning || State(e.state.Load()) == StatePaused {
		return fmt.Errorf("engine is %s; stop it before re-initializing", State(e.state.Load()))
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	e.rng = rand.New(rand.NewSource(seed))
	e.population = make([]model.Genome, 0, e.params.PopulationSize)
	for i := 0; i < e.params.PopulationSize; i++ {
		g := genome.New()
		genome.Mutate(&g, e.rng, e.params.InitialMutationBoost)
		g.Generation = 0
		e.population = append(e.population, g)
	}
	e.stats = Stats{CurrentMutationRate: e.params.MutationRate}
	e.bestReported = 0
	e.paused.Store(false)
	e.state.Store(int32(StateIdle))
	return nil
}

// StartEvolution spawns the generation loop. Starting a running engine or
// an uninitialized one is a no-op (the latter reports an error so callers
// can tell misconfiguration from idempotence).
func (e *Engine) StartEvolution() error {
	e.mu.Lock()
	initialized := len(e.population) > 0
	e.mu.Unlock()
	if !initialized {
		return fmt.Errorf("engine is not initialized")
	}
	if !e.state.CompareAndSwap(int32(StateIdle), int32(StateRunning)) &&
		!e.state.CompareAndSwap(int32(StateStopped), int32(StateRunning)) {
		return nil
	}

	e.paused.Store(false)
	done := make(chan struct{})
	e.mu.Lock()
	e.done = done
	e.mu.Unlock()
	go e.evolutionLoop(done)
	return nil
}

// StopEvolution signals termination and waits for the loop to exit. After
// it returns no further population mutation occurs. Stopping an idle
// engine is a no-op.
func (e *Engine) StopEvolution() {
	st := State(e.state.Load())
	if st != StateRunning && st != StatePaused {
		return
	}
	e.state.Store(int32(StateStopped))
	e.mu.Lock()
	done := e.done
	e.mu.Unlock()
	if done != nil {
		<-done
	}
}

// Wait blocks until the current run finishes, whether by reaching its
// target, stagnating, exhausting generations, or being stopped. It returns
// immediately when no run has been started.
func (e *Engine) Wait() {
	e.mu.Lock()
	done := e.done
	e.mu.Unlock()
	if done != nil {
		<-done
	}
}

// PauseEvolution suspends the loop at the next generation boundary. The
// loop idles on PollInterval while paused instead of spinning.
func (e *Engine) PauseEvolution() {
	if e.state.CompareAndSwap(int32(StateRunning), int32(StatePaused)) {
		e.paused.Store(true)
	}
}

// ResumeEvolution reverses PauseEvolution.
func (e *Engine) ResumeEvolution() {
	if e.state.CompareAndSwap(int32(StatePaused), int32(StateRunning)) {
		e.paused.Store(false)
	}
}

func (e *Engine) State() State  { return State(e.state.Load()) }
func (e *Engine) IsRunning() bool {
	st := State(e.state.Load())
	return st == StateRunning || st == StatePaused
}
func (e *Engine) IsPaused() bool { return e.paused.Load() }

// Snapshot copies the current population.
func (e *Engine) Snapshot() []model.Genome {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]model.Genome, len(e.population))
	copy(out, e.population)
	return out
}

// BestIndividual returns a copy of the highest-fitness genome.
func (e *Engine) BestIndividual() (model.Genome, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if len(e.population) == 0 {
		return model.Genome{}, false
	}
	best := e.population[0]
	for _, g := range e.population[1:] {
		if g.Fitness > best.Fitness {
			best = g
		}
	}
	return best, true
}

// BestIndividuals returns up to count genomes sorted descending by fitness.
func (e *Engine) BestIndividuals(count int) []model.Genome {
	snapshot := e.Snapshot()
	sortByFitnessDesc(snapshot)
	if count < len(snapshot) {
		snapshot = snapshot[:count]
	}
	return snapshot
}

// Stats returns a value snapshot of the run statistics.
func (e *Engine) Stats() Stats {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.stats
}

// SetGenerationCallback registers the per-generation hook.
func (e *Engine) SetGenerationCallback(cb GenerationCallback) {
	e.callbackMu.Lock()
	e.generationCallback = cb
	e.callbackMu.Unlock()
}

// SetBestFoundCallback registers the high-fitness hook.
func (e *Engine) SetBestFoundCallback(cb BestFoundCallback) {
	e.callbackMu.Lock()
	e.bestFoundCallback = cb
	e.callbackMu.Unlock()
}

// ImportPopulation replaces the population wholesale. The engine must not
// be running.
func (e *Engine) ImportPopulation(population []model.Genome) error {
	if e.IsRunning() {
		return fmt.Errorf("cannot import while evolution is running")
	}
	if len(population) != e.params.PopulationSize {
		return fmt.Errorf("population size mismatch: got %d, want %d", len(population), e.params.PopulationSize)
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.population = make([]model.Genome, len(population))
	copy(e.population, population)
	return nil
}

// ExportPopulation copies the population out.
func (e *Engine) ExportPopulation() []model.Genome {
	return e.Snapshot()
}

// SeedWithFractal inserts copies of a known-good genome, replacing the
// tail of the current population.
func (e *Engine) SeedWithFractal(g model.Genome, copies int) error {
	if e.IsRunning() {
		return fmt.Errorf("cannot seed while evolution is running")
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if copies > len(e.population) {
		copies = len(e.population)
	}
	for i := 0; i < copies; i++ {
		e.population[len(e.population)-1-i] = g
	}
	return nil
}

func (e *Engine) evolutionLoop(done chan struct{}) {
	defer close(done)
	defer e.state.Store(int32(StateStopped))

	started := time.Now()
	evaluations := 0

	for {
		st := State(e.state.Load())
		if st == StateStopped {
			return
		}
		if st == StatePaused {
			time.Sleep(e.params.PollInterval)
			continue
		}

		e.mu.Lock()
		generation := e.stats.CurrentGeneration
		population := make([]model.Genome, len(e.population))
		copy(population, e.population)
		e.mu.Unlock()

		if generation >= e.params.MaxGenerations {
			return
		}

		e.evaluatePopulation(population)
		evaluations += len(population)
		sortByFitnessDesc(population)

		stats := e.updateStats(population, generation, started, evaluations)
		e.reportBest(population[0], stats.BestFitness)

		if stats.BestFitness >= e.params.TargetFitness ||
			stats.StagnationCount >= e.params.StagnationGenerations {
			e.commitPopulation(population, stats)
			e.fireGenerationCallback(generation, stats)
			return
		}

		next, err := e.breed(population, generation)
		if err != nil {
			// Breeding only fails on an empty parent pool, which Validate
			// rules out; treat it as a stop rather than a panic.
			e.commitPopulation(population, stats)
			return
		}

		stats.CurrentGeneration = generation + 1
		e.commitPopulation(next, stats)
		e.fireGenerationCallback(generation, stats)
	}
}

// evaluatePopulation scores every genome, fanning out across workers.
// Genomes have no cross-dependency, so only the join matters.
func (e *Engine) evaluatePopulation(population []model.Genome) {
	workerCount := e.params.Workers
	if workerCount > len(population) {
		workerCount = len(population)
	}

	jobs := make(chan int)
	var wg sync.WaitGroup
	wg.Add(workerCount)
	for w := 0; w < workerCount; w++ {
		go func() {
			defer wg.Done()
			for idx := range jobs {
				population[idx].Fitness = e.evaluator.EvaluateGenome(&population[idx], e.params.Weights)
			}
		}()
	}
	for i := range population {
		jobs <- i
	}
	close(jobs)
	wg.Wait()
}

func (e *Engine) updateStats(ranked []model.Genome, generation int, started time.Time, evaluations int) Stats {
	e.mu.Lock()
	defer e.mu.Unlock()

	best := ranked[0].Fitness
	sum := 0.0
	for _, g := range ranked {
		sum += g.Fitness
	}

	if best > e.stats.BestFitness {
		e.stats.StagnationCount = 0
	} else {
		e.stats.StagnationCount++
	}
	e.stats.BestFitness = best
	e.stats.AverageFitness = sum / float64(len(ranked))
	e.stats.DiversityIndex = diversityIndex(ranked)
	e.stats.CurrentMutationRate = e.params.MutationRate

	elapsed := time.Since(started).Seconds()
	if elapsed > 0 {
		e.stats.GenerationsPerSecond = float64(generation+1) / elapsed
		e.stats.EvaluationsPerSecond = float64(evaluations) / elapsed
	}
	return e.stats
}

func (e *Engine) commitPopulation(population []model.Genome, stats Stats) {
	e.mu.Lock()
	e.population = population
	e.stats = stats
	e.mu.Unlock()
}

// breed builds the next generation: the elite prefix survives unchanged,
// the rest comes from crossover of tournament-selected parents followed by
// mutation at the configured rate.
func (e *Engine) breed(ranked []model.Genome, generation int) ([]model.Genome, error) {
	parentCount := e.params.PopulationSize / 2
	if parentCount < 1 {
		parentCount = 1
	}
	parents, err := selectParents(e.rng, e.selector, ranked, parentCount)
	if err != nil {
		return nil, err
	}

	next := make([]model.Genome, 0, e.params.PopulationSize)
	eliteCount := int(math.Round(float64(e.params.PopulationSize) * e.params.ElitePercentage))
	if eliteCount > len(ranked) {
		eliteCount = len(ranked)
	}
	next = append(next, ranked[:eliteCount]...)

	for len(next) < e.params.PopulationSize {
		parentA := parents[e.rng.Intn(len(parents))]
		parentB := parents[e.rng.Intn(len(parents))]
		child := genome.Crossover(&parentA, &parentB, e.rng)
		genome.Mutate(&child, e.rng, e.params.MutationRate)
		child.Generation = generation + 1
		next = append(next, child)
	}
	return next, nil
}

func (e *Engine) reportBest(best model.Genome, fitness float64) {
	e.callbackMu.Lock()
	cb := e.bestFoundCallback
	shouldFire := cb != nil && fitness >= e.params.HighFitnessThreshold && fitness > e.bestReported
	if shouldFire {
		e.bestReported = fitness
	}
	e.callbackMu.Unlock()

	if shouldFire {
		cb(best, fitness)
	}
}

func (e *Engine) fireGenerationCallback(generation int, stats Stats) {
	e.callbackMu.Lock()
	cb := e.generationCallback
	e.callbackMu.Unlock()
	if cb != nil {
		cb(generation, stats)
	}
}

// diversityIndex is the mean pairwise structural distance of the
// population, a coarse proxy for genetic spread.
func diversityIndex(population []model.Genome) float64 {
	if len(population) < 2 {
		return 0
	}
	total := 0.0
	pairs := 0
	for i := range population {
		for j := i + 1; j < len(population); j++ {
			total += genome.Distance(&population[i], &population[j])
			pairs++
		}
	}
	return total / float64(pairs)
}

func sortByFitnessDesc(population []model.Genome) {
	sort.SliceStable(population, func(i, j int) bool {
		return population[i].Fitness > population[j].Fitness
	})
}
