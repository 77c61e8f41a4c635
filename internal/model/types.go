package model

import "time"

// VersionedRecord captures schema and codec evolution for persistent data.
type VersionedRecord struct {
	SchemaVersion int `json:"schema_version"`
	CodecVersion  int `json:"codec_version"`
}

// Gene is a single bounded, mutation-tagged scalar parameter.
// Value stays inside [Min, Max] after every mutation.
type Gene struct {
	Value        float64 `json:"value"`
	MutationRate float64 `json:"mutation_rate"`
	Min          float64 `json:"min"`
	Max          float64 `json:"max"`
}

// Clamp forces Value back into [Min, Max].
func (g *Gene) Clamp() {
	if g.Value < g.Min {
		g.Value = g.Min
	}
	if g.Value > g.Max {
		g.Value = g.Max
	}
}

// Genome is the flat genetic encoding of one deformable fractal
// configuration: every tunable field of fractal.Config has a gene here.
type Genome struct {
	VersionedRecord

	JuliaReal       Gene `json:"julia_real"`
	JuliaImag       Gene `json:"julia_imag"`
	EscapeThreshold Gene `json:"escape_threshold"`

	AngleA        Gene `json:"angle_a"`
	FreqA         Gene `json:"freq_a"`
	PhaseA        Gene `json:"phase_a"`
	FunctionA     Gene `json:"function_a"`
	EdgeGlowA     Gene `json:"edge_glow_a"`
	EdgeHueShiftA Gene `json:"edge_hue_shift_a"`

	AngleB        Gene `json:"angle_b"`
	FreqB         Gene `json:"freq_b"`
	PhaseB        Gene `json:"phase_b"`
	FunctionB     Gene `json:"function_b"`
	EdgeGlowB     Gene `json:"edge_glow_b"`
	EdgeHueShiftB Gene `json:"edge_hue_shift_b"`

	FunctionBlend  Gene `json:"function_blend"`
	DeformMix      Gene `json:"deform_mix"`
	Shift          Gene `json:"shift"`
	EdgeSaturation Gene `json:"edge_saturation"`

	// Evolutionary metadata. Fitness is 0 until evaluated. ParentGenerations
	// records the generation numbers of both parents, informational only.
	Fitness           float64 `json:"fitness"`
	Generation        int     `json:"generation"`
	Age               int     `json:"age"`
	ParentGenerations []int   `json:"parent_generations,omitempty"`
}

// GeneRecord is the flat named tuple used for genome import/export at the
// persistence boundary. The core does not prescribe a serialization syntax.
type GeneRecord struct {
	Key          string  `json:"key"`
	Value        float64 `json:"value"`
	Min          float64 `json:"min"`
	Max          float64 `json:"max"`
	MutationRate float64 `json:"mutation_rate"`
}

// GalleryEntry is a high-fitness genome snapshot with display metadata.
// Entries are immutable once added, except via explicit removal.
type GalleryEntry struct {
	VersionedRecord
	ID               string             `json:"id"`
	Genome           Genome             `json:"genome"`
	Fitness          float64            `json:"fitness"`
	Name             string             `json:"name"`
	Description      string             `json:"description"`
	Generation       int                `json:"generation"`
	CreatedAt        time.Time          `json:"created_at"`
	Tags             string             `json:"tags,omitempty"`
	Thumbnail        []byte             `json:"thumbnail,omitempty"`
	FitnessBreakdown map[string]float64 `json:"fitness_breakdown,omitempty"`
}

// RunStats is the persisted per-run evolution summary.
type RunStats struct {
	VersionedRecord
	RunID             string    `json:"run_id"`
	Generations       int       `json:"generations"`
	BestFitness       float64   `json:"best_fitness"`
	AverageFitness    float64   `json:"average_fitness"`
	BestByGeneration  []float64 `json:"best_by_generation"`
	StagnationCount   int       `json:"stagnation_count"`
	CompletedAt       time.Time `json:"completed_at"`
	PopulationSize    int       `json:"population_size"`
	TargetFitness     float64   `json:"target_fitness"`
	ReachedTarget     bool      `json:"reached_target"`
	EvaluationsPerSec float64   `json:"evaluations_per_sec"`
}
