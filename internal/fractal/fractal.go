package fractal

import (
	"fmt"
	"math"
	"math/rand"
)

// Kind discriminates the two supported fractal families. Only two concrete
// kinds exist, so a tagged variant replaces dynamic dispatch in the
// per-pixel loop.
type Kind int

const (
	KindDeformable Kind = iota
	KindMandelbrot
)

func (k Kind) String() string {
	switch k {
	case KindDeformable:
		return "deformable"
	case KindMandelbrot:
		return "mandelbrot"
	default:
		return "unknown"
	}
}

// View maps pixels to points for on-screen rendering. It has no effect on
// fitness sampling, which uses its own centered transform.
type View struct {
	Zoom    float64
	OffsetX float64
	OffsetY float64
}

// Breathing rhythmically overrides DeformMix as a pure function of elapsed
// wall-clock seconds and a configured duration.
type Breathing struct {
	Enabled  bool
	Duration float64
}

// Config is the complete phenotype of one fractal: the iteration constants,
// two deformation states, blend controls and view parameters. It is mutated
// in place by genome application or by the UI bridge.
type Config struct {
	Kind Kind

	JuliaConstant   complex128
	EscapeThreshold float64 // squared escape radius, must be > 0
	MaxIterations   int

	StateA DeformState
	StateB DeformState

	FunctionBlend  float64
	DeformMix      float64
	Shift          float64
	EdgeSaturation float64

	View      View
	Breathing Breathing
}

// Result reports one escape-time evaluation.
type Result struct {
	Iterations       int
	Escaped          bool
	MagnitudeSquared float64
}

// NewConfig returns the reference deformable configuration: the classic
// julia constant (-0.7, 0.27015) with the default A/B deformation poles.
func NewConfig() Config {
	return Config{
		Kind:            KindDeformable,
		JuliaConstant:   complex(-0.7, 0.27015),
		EscapeThreshold: 4.0,
		MaxIterations:   100,
		StateA: DeformState{
			Angle: 0.3, Freq: 1.2, Phase: 0.0,
			Function: FuncSin, EdgeGlow: 1.5, EdgeHueShift: 0.9,
		},
		StateB: DeformState{
			Angle: -0.2, Freq: 1.8, Phase: 0.5,
			Function: FuncCos, EdgeGlow: 1.1, EdgeHueShift: 1.3,
		},
		FunctionBlend:  0.5,
		DeformMix:      0.5,
		Shift:          0.0,
		EdgeSaturation: 1.0,
		View:           View{Zoom: 1.0},
		Breathing:      Breathing{Duration: 4.0},
	}
}

// Validate rejects configurations the engine must refuse to evaluate.
func (c *Config) Validate() error {
	if c.EscapeThreshold <= 0 {
		return fmt.Errorf("escape threshold must be > 0, got %v", c.EscapeThreshold)
	}
	if c.MaxIterations <= 0 {
		return fmt.Errorf("max iterations must be > 0, got %d", c.MaxIterations)
	}
	if c.View.Zoom <= 0 {
		return fmt.Errorf("zoom must be > 0, got %v", c.View.Zoom)
	}
	return nil
}

// Clone returns an independent copy.
func (c *Config) Clone() Config {
	return *c
}

// EffectiveDeformMix applies the breathing override when enabled.
func (c *Config) EffectiveDeformMix(elapsedSeconds float64) float64 {
	if !c.Breathing.Enabled {
		return c.DeformMix
	}
	duration := c.Breathing.Duration
	if duration <= 0 {
		duration = 1.0
	}
	phase := elapsedSeconds / duration * 2 * math.Pi
	return 0.5 + 0.5*math.Sin(phase)
}

// Evaluate iterates the map for one point and reports the escape iteration,
// whether it escaped, and the final squared magnitude. A non-finite iterate
// is treated as an escape at the current iteration: extreme deformation
// parameters overflow float64 and must not abort a frame.
func (c *Config) Evaluate(point complex128) Result {
	return c.evaluate(point, c.DeformMix)
}

// EvaluateAt is Evaluate with the breathing override applied for the given
// elapsed time.
func (c *Config) EvaluateAt(point complex128, elapsedSeconds float64) Result {
	return c.evaluate(point, c.EffectiveDeformMix(elapsedSeconds))
}

func (c *Config) evaluate(point complex128, deformMix float64) Result {
	var z, constant complex128
	switch c.Kind {
	case KindMandelbrot:
		z, constant = 0, point
	default:
		z, constant = point, c.JuliaConstant
	}

	for i := 0; i < c.MaxIterations; i++ {
		if c.Kind == KindMandelbrot {
			z = z*z + constant
		} else {
			deformA := Deform(z, c.StateA, c.Shift)
			deformB := Deform(z, c.StateB, c.Shift)
			blended := deformA*complex(1-deformMix, 0) + deformB*complex(deformMix, 0)
			z = blended*blended + constant
		}

		if !isFinite(z) {
			return Result{Iterations: i, Escaped: true, MagnitudeSquared: math.Inf(1)}
		}
		if magSq := magnitudeSquared(z); magSq > c.EscapeThreshold {
			return Result{Iterations: i, Escaped: true, MagnitudeSquared: magSq}
		}
	}
	return Result{Iterations: c.MaxIterations, Escaped: false, MagnitudeSquared: magnitudeSquared(z)}
}

// EvaluateSmooth returns the continuous iteration count used for banding-free
// coloring: i + 1 - log2(log2(|z|)) on escape, maxIterations for interior
// points. The log-log term is defined only for |z| > 1; degenerate escapes
// fall back to the raw iteration count.
func (c *Config) EvaluateSmooth(point complex128) float64 {
	return c.smooth(c.Evaluate(point))
}

// EvaluateSmoothAt is EvaluateSmooth with the breathing override applied.
func (c *Config) EvaluateSmoothAt(point complex128, elapsedSeconds float64) float64 {
	return c.smooth(c.evaluate(point, c.EffectiveDeformMix(elapsedSeconds)))
}

func (c *Config) smooth(res Result) float64 {
	if !res.Escaped {
		return float64(c.MaxIterations)
	}
	magnitude := math.Sqrt(res.MagnitudeSquared)
	if !(magnitude > 1) || math.IsInf(magnitude, 1) {
		return float64(res.Iterations)
	}
	smooth := float64(res.Iterations) + 1 - math.Log2(math.Log2(magnitude))
	return math.Max(0, smooth)
}

// Randomize rerolls the julia constant and both deformation states from the
// supplied generator. The generator is owned by the caller and is never
// reseeded here, so a run is reproducible from a single top-level seed.
func (c *Config) Randomize(rng *rand.Rand) {
	signed := func() float64 { return rng.Float64()*2 - 1 }

	c.JuliaConstant = complex(signed(), signed())
	for _, state := range []*DeformState{&c.StateA, &c.StateB} {
		state.Angle = signed() * math.Pi
		state.Freq = 0.5 + math.Abs(signed())*2.0
		state.Phase = signed() * math.Pi
		state.Function = DeformFunction(rng.Intn(int(FunctionCount)))
	}
}

func magnitudeSquared(z complex128) float64 {
	return real(z)*real(z) + imag(z)*imag(z)
}

func isFinite(z complex128) bool {
	return !math.IsNaN(real(z)) && !math.IsInf(real(z), 0) &&
		!math.IsNaN(imag(z)) && !math.IsInf(imag(z), 0)
}
