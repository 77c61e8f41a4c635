// Package genome implements the genetic operators over the flat fractal
// parameter encoding: phenotype application and read-back, bounded Gaussian
// mutation, uniform crossover and the structural distance metric.
package genome

import (
	"fmt"
	"math"
	"math/rand"

	"fractalforge/internal/fractal"
	"fractalforge/internal/model"
)

const (
	SupportedSchemaVersion = 1
	SupportedCodecVersion  = 1
)

// New returns the reference default genome: gene values, bounds and
// mutation rates mirror the default deformable configuration.
func New() model.Genome {
	return model.Genome{
		VersionedRecord: model.VersionedRecord{
			SchemaVersion: SupportedSchemaVersion,
			CodecVersion:  SupportedCodecVersion,
		},

		JuliaReal:       model.Gene{Value: 0.355, MutationRate: 0.05, Min: -2, Max: 2},
		JuliaImag:       model.Gene{Value: 0.355, MutationRate: 0.05, Min: -2, Max: 2},
		EscapeThreshold: model.Gene{Value: 4.0, MutationRate: 0.02, Min: 2, Max: 10},

		AngleA:        model.Gene{Value: 0, MutationRate: 0.1, Min: -math.Pi, Max: math.Pi},
		FreqA:         model.Gene{Value: 1, MutationRate: 0.08, Min: 0.1, Max: 3},
		PhaseA:        model.Gene{Value: 0, MutationRate: 0.1, Min: -math.Pi, Max: math.Pi},
		FunctionA:     model.Gene{Value: 0, MutationRate: 0.3, Min: 0, Max: 10},
		EdgeGlowA:     model.Gene{Value: 1, MutationRate: 0.05, Min: 0.1, Max: 2},
		EdgeHueShiftA: model.Gene{Value: 1, MutationRate: 0.05, Min: 0.1, Max: 2},

		AngleB:        model.Gene{Value: 0, MutationRate: 0.1, Min: -math.Pi, Max: math.Pi},
		FreqB:         model.Gene{Value: 1, MutationRate: 0.08, Min: 0.1, Max: 3},
		PhaseB:        model.Gene{Value: 0, MutationRate: 0.1, Min: -math.Pi, Max: math.Pi},
		FunctionB:     model.Gene{Value: 1, MutationRate: 0.3, Min: 0, Max: 10},
		EdgeGlowB:     model.Gene{Value: 1, MutationRate: 0.05, Min: 0.1, Max: 2},
		EdgeHueShiftB: model.Gene{Value: 1, MutationRate: 0.05, Min: 0.1, Max: 2},

		FunctionBlend:  model.Gene{Value: 0, MutationRate: 0.03, Min: 0, Max: 1},
		DeformMix:      model.Gene{Value: 0, MutationRate: 0.03, Min: 0, Max: 1},
		Shift:          model.Gene{Value: 0, MutationRate: 0.05, Min: -2, Max: 2},
		EdgeSaturation: model.Gene{Value: 1, MutationRate: 0.02, Min: 0, Max: 2},
	}
}

type geneRef struct {
	key  string
	gene *model.Gene
}

// geneRefs returns every gene in its fixed canonical order. Mutation,
// crossover and import/export all walk this list, which keeps RNG draw
// order deterministic for a given seed.
func geneRefs(g *model.Genome) []geneRef {
	return []geneRef{
		{"julia_real", &g.JuliaReal},
		{"julia_imag", &g.JuliaImag},
		{"escape_threshold", &g.EscapeThreshold},
		{"angle_a", &g.AngleA},
		{"freq_a", &g.FreqA},
		{"phase_a", &g.PhaseA},
		{"function_a", &g.FunctionA},
		{"edge_glow_a", &g.EdgeGlowA},
		{"edge_hue_shift_a", &g.EdgeHueShiftA},
		{"angle_b", &g.AngleB},
		{"freq_b", &g.FreqB},
		{"phase_b", &g.PhaseB},
		{"function_b", &g.FunctionB},
		{"edge_glow_b", &g.EdgeGlowB},
		{"edge_hue_shift_b", &g.EdgeHueShiftB},
		{"function_blend", &g.FunctionBlend},
		{"deform_mix", &g.DeformMix},
		{"shift", &g.Shift},
		{"edge_saturation", &g.EdgeSaturation},
	}
}

// GeneCount is the number of genes in a genome.
func GeneCount() int {
	g := New()
	return len(geneRefs(&g))
}

// ApplyToFractal writes every gene value into the corresponding
// configuration field. Function selector genes resolve with round-then-mod,
// so any in-bounds float decodes to a valid selector.
func ApplyToFractal(g *model.Genome, cfg *fractal.Config) {
	cfg.Kind = fractal.KindDeformable
	cfg.JuliaConstant = complex(g.JuliaReal.Value, g.JuliaImag.Value)
	cfg.EscapeThreshold = g.EscapeThreshold.Value

	cfg.StateA = fractal.DeformState{
		Angle:        g.AngleA.Value,
		Freq:         g.FreqA.Value,
		Phase:        g.PhaseA.Value,
		Function:     fractal.WrapFunction(g.FunctionA.Value),
		EdgeGlow:     g.EdgeGlowA.Value,
		EdgeHueShift: g.EdgeHueShiftA.Value,
	}
	cfg.StateB = fractal.DeformState{
		Angle:        g.AngleB.Value,
		Freq:         g.FreqB.Value,
		Phase:        g.PhaseB.Value,
		Function:     fractal.WrapFunction(g.FunctionB.Value),
		EdgeGlow:     g.EdgeGlowB.Value,
		EdgeHueShift: g.EdgeHueShiftB.Value,
	}

	cfg.FunctionBlend = g.FunctionBlend.Value
	cfg.DeformMix = g.DeformMix.Value
	cfg.Shift = g.Shift.Value
	cfg.EdgeSaturation = g.EdgeSaturation.Value
}

// ExtractFromFractal reads the configuration back into gene values, the
// exact inverse of ApplyToFractal. Used to seed a genome from a hand-tuned
// configuration.
func ExtractFromFractal(cfg *fractal.Config, g *model.Genome) {
	g.JuliaReal.Value = real(cfg.JuliaConstant)
	g.JuliaImag.Value = imag(cfg.JuliaConstant)
	g.EscapeThreshold.Value = cfg.EscapeThreshold

	g.AngleA.Value = cfg.StateA.Angle
	g.FreqA.Value = cfg.StateA.Freq
	g.PhaseA.Value = cfg.StateA.Phase
	g.FunctionA.Value = float64(cfg.StateA.Function)
	g.EdgeGlowA.Value = cfg.StateA.EdgeGlow
	g.EdgeHueShiftA.Value = cfg.StateA.EdgeHueShift

	g.AngleB.Value = cfg.StateB.Angle
	g.FreqB.Value = cfg.StateB.Freq
	g.PhaseB.Value = cfg.StateB.Phase
	g.FunctionB.Value = float64(cfg.StateB.Function)
	g.EdgeGlowB.Value = cfg.StateB.EdgeGlow
	g.EdgeHueShiftB.Value = cfg.StateB.EdgeHueShift

	g.FunctionBlend.Value = cfg.FunctionBlend
	g.DeformMix.Value = cfg.DeformMix
	g.Shift.Value = cfg.Shift
	g.EdgeSaturation.Value = cfg.EdgeSaturation
}

// ToConfig is a convenience wrapper returning a fresh configuration with
// the genome applied.
func ToConfig(g *model.Genome) fractal.Config {
	cfg := fractal.NewConfig()
	ApplyToFractal(g, &cfg)
	return cfg
}

// Mutate perturbs each gene independently: with probability
// gene.MutationRate * globalRate the value receives Gaussian noise with
// standard deviation 0.1*(max-min), then clamps back into bounds. The
// generator is owned by the caller and consumed gene by gene in canonical
// order.
func Mutate(g *model.Genome, rng *rand.Rand, globalRate float64) {
	for _, ref := range geneRefs(g) {
		if rng.Float64() < ref.gene.MutationRate*globalRate {
			sigma := 0.1 * (ref.gene.Max - ref.gene.Min)
			ref.gene.Value += rng.NormFloat64() * sigma
			ref.gene.Clamp()
		}
	}
}

// Crossover builds a child by uniform crossover: each gene value comes from
// either parent with equal probability, independently per gene, and the
// child's mutation rate for that gene is the mean of both parents' rates.
// Lineage records both parents' generation numbers.
func Crossover(parentA, parentB *model.Genome, rng *rand.Rand) model.Genome {
	child := *parentA
	child.Fitness = 0
	child.Age = 0
	child.ParentGenerations = []int{parentA.Generation, parentB.Generation}

	childRefs := geneRefs(&child)
	otherRefs := geneRefs(parentB)
	for i, ref := range childRefs {
		if rng.Float64() < 0.5 {
			ref.gene.Value = otherRefs[i].gene.Value
		}
		ref.gene.MutationRate = (ref.gene.MutationRate + otherRefs[i].gene.MutationRate) * 0.5
	}
	return child
}

// structuralKeys is the fixed gene subset the distance metric sums over:
// the julia constant, escape threshold and both states' shape parameters.
var structuralKeys = map[string]bool{
	"julia_real":       true,
	"julia_imag":       true,
	"escape_threshold": true,
	"angle_a":          true,
	"freq_a":           true,
	"phase_a":          true,
	"function_a":       true,
	"angle_b":          true,
	"freq_b":           true,
	"phase_b":          true,
	"function_b":       true,
}

// Distance is the L1 norm over the structural genes: symmetric, zero iff
// both genomes agree on that subset, triangle inequality holds.
func Distance(a, b *model.Genome) float64 {
	refsA := geneRefs(a)
	refsB := geneRefs(b)
	total := 0.0
	for i, ref := range refsA {
		if structuralKeys[ref.key] {
			total += math.Abs(ref.gene.Value - refsB[i].gene.Value)
		}
	}
	return total
}

// Export flattens the genome into named records for external persistence.
func Export(g *model.Genome) []model.GeneRecord {
	refs := geneRefs(g)
	records := make([]model.GeneRecord, 0, len(refs))
	for _, ref := range refs {
		records = append(records, model.GeneRecord{
			Key:          ref.key,
			Value:        ref.gene.Value,
			Min:          ref.gene.Min,
			Max:          ref.gene.Max,
			MutationRate: ref.gene.MutationRate,
		})
	}
	return records
}

// Import writes named records back into the genome. Unknown keys are
// rejected; absent keys keep their current values.
func Import(g *model.Genome, records []model.GeneRecord) error {
	byKey := make(map[string]*model.Gene, GeneCount())
	for _, ref := range geneRefs(g) {
		byKey[ref.key] = ref.gene
	}
	for _, record := range records {
		gene, ok := byKey[record.Key]
		if !ok {
			return fmt.Errorf("unknown gene key: %s", record.Key)
		}
		gene.Value = record.Value
		gene.Min = record.Min
		gene.Max = record.Max
		gene.MutationRate = record.MutationRate
		gene.Clamp()
	}
	return nil
}
