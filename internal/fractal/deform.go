package fractal

import "math"

// DeformFunction selects the nonlinear map applied inside a deformation
// stage. Ordinal positions are part of the genome encoding: genomes store
// the selector as a bounded float and resolve it with round-then-mod, so
// the order of these constants must not change.
type DeformFunction int

const (
	FuncSin DeformFunction = iota
	FuncCos
	FuncAbs
	FuncAtan
	FuncSinh
	FuncCosh
	FuncSqrtAbs
	FuncAsin
	FuncTan
	FuncSinAbs
	FuncCosSquare

	FunctionCount
)

var functionNames = [...]string{
	"sin", "cos", "abs", "atan", "sinh", "cosh",
	"sqrt_abs", "asin", "tan", "sin_abs", "cos_square",
}

func (f DeformFunction) String() string {
	if f < 0 || f >= FunctionCount {
		return "unknown"
	}
	return functionNames[f]
}

// WrapFunction resolves a raw gene value to a valid selector with
// round-then-mod semantics. The result is always in [0, FunctionCount).
func WrapFunction(value float64) DeformFunction {
	idx := int(math.Round(value)) % int(FunctionCount)
	if idx < 0 {
		idx += int(FunctionCount)
	}
	return DeformFunction(idx)
}

// DeformState is one pole of deformation. EdgeGlow and EdgeHueShift are
// visual-only weights carried for the coloring layer; they do not affect
// iteration.
type DeformState struct {
	Angle        float64
	Freq         float64
	Phase        float64
	Function     DeformFunction
	EdgeGlow     float64
	EdgeHueShift float64
}

// Deform applies one deformation stage to z: rotate by the state angle,
// collapse the rotated point to the scalar t = freq*(re+im)+phase+shift,
// push t through the selected function, and average the rotated point with
// the transformed one. Frequency 0 is legal and collapses t to phase+shift.
func Deform(z complex128, state DeformState, globalShift float64) complex128 {
	rotated := rotate(z, state.Angle)
	t := state.Freq*(real(rotated)+imag(rotated)) + state.Phase + globalShift
	transformed := applyFunction(rotated, t, state.Function)
	return rotated*0.5 + transformed*0.5
}

// applyFunction broadcasts the scalar transform of t into both components,
// except for the per-axis functions (abs, sqrt_abs) which act on the rotated
// components directly. The duplication of the scalar into both axes is
// intentional: downstream blending, not per-axis independence, drives the
// visual result.
func applyFunction(rotated complex128, t float64, fn DeformFunction) complex128 {
	switch fn {
	case FuncSin:
		s := math.Sin(t)
		return complex(s, s)
	case FuncCos:
		c := math.Cos(t)
		return complex(c, c)
	case FuncAbs:
		return complex(math.Abs(real(rotated)), math.Abs(imag(rotated)))
	case FuncAtan:
		a := math.Atan(t)
		return complex(a, a)
	case FuncSinh:
		s := math.Sinh(t)
		return complex(s, s)
	case FuncCosh:
		c := math.Cosh(t)
		return complex(c, c)
	case FuncSqrtAbs:
		return complex(math.Sqrt(math.Abs(real(rotated))), math.Sqrt(math.Abs(imag(rotated))))
	case FuncAsin:
		a := math.Asin(clamp(t, -1, 1))
		return complex(a, a)
	case FuncTan:
		return complex(math.Tan(t), math.Tanh(t))
	case FuncSinAbs:
		s := math.Sin(math.Abs(t))
		return complex(s, s)
	case FuncCosSquare:
		c := math.Cos(t)
		return complex(c*c, c*c)
	default:
		return rotated
	}
}

func rotate(z complex128, angle float64) complex128 {
	c := math.Cos(angle)
	s := math.Sin(angle)
	return complex(c*real(z)-s*imag(z), s*real(z)+c*imag(z))
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
