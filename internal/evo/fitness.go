package evo

import (
	"fmt"
	"math"

	"fractalforge/internal/fractal"
	"fractalforge/internal/genome"
	"fractalforge/internal/model"
)

// FitnessWeights weighs the visual-quality heuristics. Weights are
// nonnegative and need not sum to one; the final score is clamped to [0,1].
type FitnessWeights struct {
	Complexity     float64 `yaml:"complexity"`
	Symmetry       float64 `yaml:"symmetry"`
	ColorDiversity float64 `yaml:"color_diversity"`
	EdgeDefinition float64 `yaml:"edge_definition"`
	Stability      float64 `yaml:"stability"`
	Performance    float64 `yaml:"performance"`
}

// DefaultFitnessWeights favors complexity and color diversity.
func DefaultFitnessWeights() FitnessWeights {
	return FitnessWeights{
		Complexity:     0.3,
		Symmetry:       0.1,
		ColorDiversity: 0.2,
		EdgeDefinition: 0.15,
		Stability:      0.03,
		Performance:    0.02,
	}
}

func (w FitnessWeights) validate() error {
	for name, v := range map[string]float64{
		"complexity":      w.Complexity,
		"symmetry":        w.Symmetry,
		"color_diversity": w.ColorDiversity,
		"edge_definition": w.EdgeDefinition,
		"stability":       w.Stability,
		"performance":     w.Performance,
	} {
		if v < 0 {
			return fmt.Errorf("fitness weight %s must be >= 0, got %v", name, v)
		}
	}
	return nil
}

const colorHistogramBins = 10

// FitnessEvaluator scores configurations on a low-resolution sample grid.
// Scoring is a pure function of configuration and grid size: no RNG, so
// repeated evaluations of an unmodified configuration are bit-identical.
type FitnessEvaluator struct {
	sampleSize int
}

// NewFitnessEvaluator builds an evaluator rendering sampleSize*sampleSize
// grids. Grids below 8x8 cannot carry the neighborhood heuristics.
func NewFitnessEvaluator(sampleSize int) (*FitnessEvaluator, error) {
	if sampleSize < 8 {
		return nil, fmt.Errorf("sample size must be >= 8, got %d", sampleSize)
	}
	return &FitnessEvaluator{sampleSize: sampleSize}, nil
}

func (e *FitnessEvaluator) SampleSize() int { return e.sampleSize }

// Evaluate renders the configuration and returns the weighted sum of the
// sub-scores, clamped to [0,1].
func (e *FitnessEvaluator) Evaluate(cfg *fractal.Config, weights FitnessWeights) float64 {
	samples := fractal.RenderSamples(cfg, e.sampleSize)

	fitness := weights.Complexity*e.complexity(samples) +
		weights.Symmetry*e.symmetry(samples) +
		weights.ColorDiversity*e.colorDiversity(samples) +
		weights.EdgeDefinition*e.edgeDefinition(samples) +
		weights.Stability*stability(cfg) +
		weights.Performance*performance(cfg)

	return clamp01(fitness)
}

// EvaluateGenome applies the genome to a fresh configuration and scores it.
func (e *FitnessEvaluator) EvaluateGenome(g *model.Genome, weights FitnessWeights) float64 {
	cfg := genome.ToConfig(g)
	return e.Evaluate(&cfg, weights)
}

// Breakdown reports each unweighted sub-score by name, for gallery metadata.
func (e *FitnessEvaluator) Breakdown(cfg *fractal.Config) map[string]float64 {
	samples := fractal.RenderSamples(cfg, e.sampleSize)
	return map[string]float64{
		"complexity":      e.complexity(samples),
		"symmetry":        e.symmetry(samples),
		"color_diversity": e.colorDiversity(samples),
		"edge_definition": e.edgeDefinition(samples),
		"stability":       stability(cfg),
		"performance":     performance(cfg),
	}
}

// complexity averages the 3x3-neighborhood standard deviation over interior
// pixels, scaled and clamped to 1.
func (e *FitnessEvaluator) complexity(samples []float64) float64 {
	size := e.sampleSize
	total := 0.0
	for y := 1; y < size-1; y++ {
		for x := 1; x < size-1; x++ {
			center := samples[y*size+x]
			variance := 0.0
			for dy := -1; dy <= 1; dy++ {
				for dx := -1; dx <= 1; dx++ {
					diff := samples[(y+dy)*size+(x+dx)] - center
					variance += diff * diff
				}
			}
			total += math.Sqrt(variance / 9)
		}
	}
	return math.Min(1, total/(float64(size*size)*0.1))
}

// symmetry averages 1-|left-right| over horizontally mirrored pairs.
func (e *FitnessEvaluator) symmetry(samples []float64) float64 {
	size := e.sampleSize
	score := 0.0
	comparisons := 0
	for y := 0; y < size; y++ {
		for x := 0; x < size/2; x++ {
			left := samples[y*size+x]
			right := samples[y*size+(size-1-x)]
			score += 1 - math.Abs(left-right)
			comparisons++
		}
	}
	return score / float64(comparisons)
}

// colorDiversity is the Shannon entropy of a 10-bin sample histogram,
// normalized by log(10).
func (e *FitnessEvaluator) colorDiversity(samples []float64) float64 {
	var histogram [colorHistogramBins]int
	for _, v := range samples {
		bin := int(v * colorHistogramBins)
		if bin < 0 {
			bin = 0
		}
		if bin >= colorHistogramBins {
			bin = colorHistogramBins - 1
		}
		histogram[bin]++
	}

	entropy := 0.0
	total := float64(len(samples))
	for _, count := range histogram {
		if count > 0 {
			p := float64(count) / total
			entropy -= p * math.Log(p)
		}
	}
	return entropy / math.Log(colorHistogramBins)
}

// edgeDefinition averages the central-difference gradient magnitude over
// interior pixels, scaled and clamped.
func (e *FitnessEvaluator) edgeDefinition(samples []float64) float64 {
	size := e.sampleSize
	strength := 0.0
	for y := 1; y < size-1; y++ {
		for x := 1; x < size-1; x++ {
			dx := samples[y*size+(x+1)] - samples[y*size+(x-1)]
			dy := samples[(y+1)*size+x] - samples[(y-1)*size+x]
			strength += math.Sqrt(dx*dx + dy*dy)
		}
	}
	return math.Min(1, strength/(float64(size*size)*0.5))
}

// stability penalizes julia constants far from the known-stable disk.
func stability(cfg *fractal.Config) float64 {
	re := real(cfg.JuliaConstant)
	im := imag(cfg.JuliaConstant)
	magSq := re*re + im*im
	return math.Exp(-magSq / 4)
}

// performance penalizes configurations that are expensive to render.
func performance(cfg *fractal.Config) float64 {
	return math.Max(0, 1-float64(cfg.MaxIterations)/1000)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
