package fractal

import (
	"math"
	"math/rand"
)

// GenerationParams bias procedural configuration generation.
type GenerationParams struct {
	// ComplexityBias in [0,1] raises the iteration cap: 100 + bias*200.
	ComplexityBias float64
	// ColorfulnessBias in [0,1] lifts edge saturation.
	ColorfulnessBias float64
	// AllowWildFunctions admits the numerically aggressive transforms
	// (sinh, cosh, tan and friends) with 30% probability per state.
	AllowWildFunctions bool
	// PreferStableFractals draws the julia constant near known-good
	// values instead of uniformly over [-1,1]^2.
	PreferStableFractals bool
}

func DefaultGenerationParams() GenerationParams {
	return GenerationParams{
		ComplexityBias:       0.5,
		ColorfulnessBias:     0.7,
		AllowWildFunctions:   true,
		PreferStableFractals: true,
	}
}

// Julia constants known to produce connected, visually rich sets. Random
// generation perturbs one of these instead of gambling on the whole plane.
var stableJuliaConstants = []complex128{
	complex(-0.4, 0.6),
	complex(-0.75, 0.11),
	complex(-0.8, 0.156),
	complex(-0.7269, 0.1889),
	complex(0.285, 0.01),
	complex(-0.835, -0.2321),
	complex(-0.123, 0.745),
}

var safeFunctions = []DeformFunction{FuncSin, FuncCos, FuncAbs, FuncAtan}

var wildFunctions = []DeformFunction{
	FuncSinh, FuncCosh, FuncSqrtAbs, FuncTan, FuncSinAbs, FuncCosSquare,
}

// Generate builds a full deformable configuration from the generator. The
// generator is owned by the caller; seeding it is how callers reproduce a
// generated fractal.
func Generate(rng *rand.Rand, params GenerationParams) Config {
	cfg := NewConfig()

	cfg.JuliaConstant = generateJuliaConstant(rng, params.PreferStableFractals)
	cfg.StateA = generateDeformState(rng, params.AllowWildFunctions)
	cfg.StateB = generateDeformState(rng, params.AllowWildFunctions)

	cfg.FunctionBlend = rng.Float64()
	cfg.DeformMix = rng.Float64()
	cfg.Shift = rng.Float64()*2 - 1
	cfg.EdgeSaturation = 0.5 + 1.5*params.ColorfulnessBias

	cfg.MaxIterations = 100 + int(params.ComplexityBias*200)
	return cfg
}

func generateJuliaConstant(rng *rand.Rand, preferStable bool) complex128 {
	if !preferStable {
		return complex(rng.Float64()*2-1, rng.Float64()*2-1)
	}
	base := stableJuliaConstants[rng.Intn(len(stableJuliaConstants))]
	const variation = 0.1
	return base + complex(
		(rng.Float64()*2-1)*variation,
		(rng.Float64()*2-1)*variation,
	)
}

func generateDeformState(rng *rand.Rand, allowWild bool) DeformState {
	return DeformState{
		Angle:        rng.Float64()*2*math.Pi - math.Pi,
		Freq:         0.5 + rng.Float64()*2.5,
		Phase:        rng.Float64() * 2 * math.Pi,
		Function:     selectRandomFunction(rng, allowWild),
		EdgeGlow:     0.5 + rng.Float64()*1.5,
		EdgeHueShift: 0.5 + rng.Float64()*1.5,
	}
}

func selectRandomFunction(rng *rand.Rand, allowWild bool) DeformFunction {
	if allowWild && rng.Float64() < 0.3 {
		return wildFunctions[rng.Intn(len(wildFunctions))]
	}
	return safeFunctions[rng.Intn(len(safeFunctions))]
}
