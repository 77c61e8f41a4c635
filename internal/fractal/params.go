package fractal

// Named parameter keys exposed at the renderer/export boundary. Internal
// algorithms never branch on these; they exist for callers that probe
// configurations by name (grid, palette and export layers).
const (
	ParamJuliaReal       = "julia_real"
	ParamJuliaImag       = "julia_imag"
	ParamEscapeThreshold = "escape_threshold"
	ParamFunctionBlend   = "function_blend"
	ParamDeformMix       = "deform_mix"
	ParamShift           = "shift"
	ParamEdgeSaturation  = "edge_saturation"
	ParamZoom            = "zoom"
	ParamOffsetX         = "offset_x"
	ParamOffsetY         = "offset_y"
)

// Params is the loosely typed view of a configuration used by external
// collaborators (shader bridge, exporters).
type Params map[string]float64

// Get reports the named value. Missing names are non-fatal: callers supply
// their own fallback.
func (p Params) Get(name string) (float64, bool) {
	v, ok := p[name]
	return v, ok
}

// GetOrDefault returns the named value or def when absent.
func (p Params) GetOrDefault(name string, def float64) float64 {
	if v, ok := p[name]; ok {
		return v
	}
	return def
}

// Params snapshots the configuration as a name/value map.
func (c *Config) Params() Params {
	return Params{
		ParamJuliaReal:       real(c.JuliaConstant),
		ParamJuliaImag:       imag(c.JuliaConstant),
		ParamEscapeThreshold: c.EscapeThreshold,
		ParamFunctionBlend:   c.FunctionBlend,
		ParamDeformMix:       c.DeformMix,
		ParamShift:           c.Shift,
		ParamEdgeSaturation:  c.EdgeSaturation,
		ParamZoom:            c.View.Zoom,
		ParamOffsetX:         c.View.OffsetX,
		ParamOffsetY:         c.View.OffsetY,
	}
}

// SetParam writes a named value back into the configuration. Unknown names
// report false and leave the configuration untouched.
func (c *Config) SetParam(name string, value float64) bool {
	switch name {
	case ParamJuliaReal:
		c.JuliaConstant = complex(value, imag(c.JuliaConstant))
	case ParamJuliaImag:
		c.JuliaConstant = complex(real(c.JuliaConstant), value)
	case ParamEscapeThreshold:
		c.EscapeThreshold = value
	case ParamFunctionBlend:
		c.FunctionBlend = value
	case ParamDeformMix:
		c.DeformMix = value
	case ParamShift:
		c.Shift = value
	case ParamEdgeSaturation:
		c.EdgeSaturation = value
	case ParamZoom:
		c.View.Zoom = value
	case ParamOffsetX:
		c.View.OffsetX = value
	case ParamOffsetY:
		c.View.OffsetY = value
	default:
		return false
	}
	return true
}
