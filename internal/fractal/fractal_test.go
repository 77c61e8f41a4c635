package fractal

import (
	"math"
	"math/rand"
	"testing"
)

func TestNewConfigDefaults(t *testing.T) {
	cfg := NewConfig()
	if cfg.Kind != KindDeformable {
		t.Fatalf("kind = %v", cfg.Kind)
	}
	if cfg.JuliaConstant != complex(-0.7, 0.27015) {
		t.Errorf("julia constant = %v", cfg.JuliaConstant)
	}
	if cfg.EscapeThreshold != 4.0 || cfg.MaxIterations != 100 {
		t.Errorf("escape %v maxIter %d", cfg.EscapeThreshold, cfg.MaxIterations)
	}
	if cfg.StateA.Function != FuncSin || cfg.StateB.Function != FuncCos {
		t.Errorf("default functions = %v, %v", cfg.StateA.Function, cfg.StateB.Function)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	cases := []func(*Config){
		func(c *Config) { c.EscapeThreshold = 0 },
		func(c *Config) { c.EscapeThreshold = -1 },
		func(c *Config) { c.MaxIterations = 0 },
		func(c *Config) { c.View.Zoom = 0 },
	}
	for i, breakIt := range cases {
		cfg := NewConfig()
		breakIt(&cfg)
		if err := cfg.Validate(); err == nil {
			t.Errorf("case %d: expected validation error", i)
		}
	}
}

// The escape loop must agree with an independently written rendition of the
// same recurrence: blend the two deformation poles of z, square, add the
// julia constant, stop on threshold or iteration cap.
func TestEvaluateMatchesReferenceLoop(t *testing.T) {
	// Both the default 50/50 mix and the deformMix=0 case (pure pole A)
	// against the classic julia constant from a fixed starting point.
	mixed := NewConfig()
	mixed.MaxIterations = 50
	pureA := NewConfig()
	pureA.MaxIterations = 50
	pureA.DeformMix = 0

	points := []complex128{
		0,
		complex(0.1, 0.1),
		complex(-0.5, 0.6),
		complex(1.2, -0.4),
		complex(-1.9, 1.9),
	}
	for _, cfg := range []*Config{&mixed, &pureA} {
		for _, point := range points {
			z := point
			refIterations := cfg.MaxIterations
			refEscaped := false
			for i := 0; i < cfg.MaxIterations; i++ {
				a := Deform(z, cfg.StateA, cfg.Shift)
				b := Deform(z, cfg.StateB, cfg.Shift)
				blended := a*complex(1-cfg.DeformMix, 0) + b*complex(cfg.DeformMix, 0)
				z = blended*blended + cfg.JuliaConstant
				if real(z)*real(z)+imag(z)*imag(z) > cfg.EscapeThreshold {
					refIterations = i
					refEscaped = true
					break
				}
			}

			res := cfg.Evaluate(point)
			if res.Iterations != refIterations || res.Escaped != refEscaped {
				t.Errorf("mix %v point %v: got (%d, %v), reference (%d, %v)",
					cfg.DeformMix, point, res.Iterations, res.Escaped, refIterations, refEscaped)
			}
			if res.Escaped && res.MagnitudeSquared <= cfg.EscapeThreshold {
				t.Errorf("point %v: escaped with magSq %v below threshold", point, res.MagnitudeSquared)
			}
		}
	}
}

func TestEvaluateDeterministic(t *testing.T) {
	cfg := NewConfig()
	point := complex(0.05, -0.3)
	first := cfg.Evaluate(point)
	for i := 0; i < 5; i++ {
		if got := cfg.Evaluate(point); got != first {
			t.Fatalf("evaluation %d differs: %+v vs %+v", i, got, first)
		}
	}
}

func TestMandelbrotKind(t *testing.T) {
	cfg := NewConfig()
	cfg.Kind = KindMandelbrot

	// c = 0 stays at the origin forever.
	res := cfg.Evaluate(0)
	if res.Escaped || res.Iterations != cfg.MaxIterations {
		t.Errorf("c=0: %+v", res)
	}

	// c = 2: z goes 2, 6, ... so |z|^2 first exceeds 4 at iteration 1.
	res = cfg.Evaluate(complex(2, 0))
	if !res.Escaped || res.Iterations != 1 {
		t.Errorf("c=2: %+v", res)
	}
	if res.MagnitudeSquared != 36 {
		t.Errorf("c=2: magSq = %v, want 36", res.MagnitudeSquared)
	}

	// The deformation states must not leak into the mandelbrot recurrence.
	modified := cfg
	modified.StateA.Freq = 99
	modified.StateB.Function = FuncSinh
	if got := modified.Evaluate(complex(0.3, 0.2)); got != cfg.Evaluate(complex(0.3, 0.2)) {
		t.Error("deformation state changed a mandelbrot evaluation")
	}
}

func TestNonFiniteIterateCountsAsEscape(t *testing.T) {
	cfg := NewConfig()
	// cosh overflows float64 past ~710, so the very first iterate is +Inf.
	cfg.StateA = DeformState{Freq: 1000, Function: FuncCosh}
	cfg.StateB = DeformState{Freq: 1000, Function: FuncCosh}

	res := cfg.Evaluate(complex(1, 1))
	if !res.Escaped {
		t.Fatal("expected overflow to count as escape")
	}
	if res.Iterations != 0 {
		t.Errorf("iterations = %d, want 0", res.Iterations)
	}
	if !math.IsInf(res.MagnitudeSquared, 1) {
		t.Errorf("magSq = %v, want +Inf", res.MagnitudeSquared)
	}

	// Smooth coloring cannot take log(log(Inf)); it falls back to the raw count.
	if got := cfg.EvaluateSmooth(complex(1, 1)); got != 0 {
		t.Errorf("smooth = %v, want 0", got)
	}
}

func TestSmoothInteriorAndEscape(t *testing.T) {
	cfg := NewConfig()
	cfg.Kind = KindMandelbrot

	if got := cfg.EvaluateSmooth(0); got != float64(cfg.MaxIterations) {
		t.Errorf("interior smooth = %v, want %d", got, cfg.MaxIterations)
	}

	// c = 2 escapes at iteration 1 with |z| = 6: smooth = 2 - log2(log2(6)).
	want := 2 - math.Log2(math.Log2(6))
	if got := cfg.EvaluateSmooth(complex(2, 0)); math.Abs(got-want) > 1e-12 {
		t.Errorf("smooth = %v, want %v", got, want)
	}

	// Smooth values never go negative even for instant escapes.
	cfg.EscapeThreshold = 1e-6
	for _, p := range []complex128{complex(3, 0), complex(100, 100)} {
		if got := cfg.EvaluateSmooth(p); got < 0 {
			t.Errorf("smooth(%v) = %v, want >= 0", p, got)
		}
	}
}

func TestEffectiveDeformMixBreathing(t *testing.T) {
	cfg := NewConfig()
	cfg.DeformMix = 0.3

	if got := cfg.EffectiveDeformMix(10); got != 0.3 {
		t.Errorf("disabled breathing: %v", got)
	}

	cfg.Breathing.Enabled = true
	cfg.Breathing.Duration = 4
	cases := []struct {
		elapsed float64
		want    float64
	}{
		{0, 0.5},
		{1, 1.0},
		{3, 0.0},
	}
	for _, tc := range cases {
		if got := cfg.EffectiveDeformMix(tc.elapsed); math.Abs(got-tc.want) > 1e-12 {
			t.Errorf("mix(%v) = %v, want %v", tc.elapsed, got, tc.want)
		}
	}

	// A zero duration must not divide by zero.
	cfg.Breathing.Duration = 0
	got := cfg.EffectiveDeformMix(0.25)
	if math.IsNaN(got) || got < 0 || got > 1 {
		t.Errorf("zero duration mix = %v", got)
	}
}

func TestEvaluateAtUsesBreathingClock(t *testing.T) {
	cfg := NewConfig()
	cfg.Breathing.Enabled = true
	cfg.Breathing.Duration = 4

	point := complex(0.2, 0.2)
	atPeak := cfg.EvaluateAt(point, 1)   // mix 1.0: pure pole B
	atTrough := cfg.EvaluateAt(point, 3) // mix 0.0: pure pole A

	pureB := cfg.Clone()
	pureB.Breathing.Enabled = false
	pureB.DeformMix = 1.0
	if atPeak != pureB.Evaluate(point) {
		t.Error("peak breathing does not match DeformMix = 1")
	}
	pureA := cfg.Clone()
	pureA.Breathing.Enabled = false
	pureA.DeformMix = 0.0
	if atTrough != pureA.Evaluate(point) {
		t.Error("trough breathing does not match DeformMix = 0")
	}
}

func TestRandomize(t *testing.T) {
	a := NewConfig()
	b := NewConfig()
	a.Randomize(rand.New(rand.NewSource(7)))
	b.Randomize(rand.New(rand.NewSource(7)))
	if a != b {
		t.Fatal("same seed produced different configurations")
	}

	c := NewConfig()
	c.Randomize(rand.New(rand.NewSource(8)))
	if a.JuliaConstant == c.JuliaConstant {
		t.Error("different seeds produced the same julia constant")
	}

	// Randomize rerolls shape parameters only.
	if a.EscapeThreshold != 4.0 || a.MaxIterations != 100 {
		t.Errorf("randomize touched iteration limits: %v, %d", a.EscapeThreshold, a.MaxIterations)
	}
	for _, state := range []DeformState{a.StateA, a.StateB} {
		if state.Freq < 0.5 || state.Freq > 2.5 {
			t.Errorf("freq %v out of range", state.Freq)
		}
		if state.Function < 0 || state.Function >= FunctionCount {
			t.Errorf("function %v out of range", state.Function)
		}
	}
}

func TestCloneIsIndependent(t *testing.T) {
	cfg := NewConfig()
	clone := cfg.Clone()
	clone.JuliaConstant = complex(0.1, 0.1)
	clone.StateA.Freq = 9
	if cfg.JuliaConstant != complex(-0.7, 0.27015) || cfg.StateA.Freq != 1.2 {
		t.Fatal("mutating a clone changed the original")
	}
}
