package fractal

import "testing"

func TestParamsSnapshot(t *testing.T) {
	cfg := NewConfig()
	params := cfg.Params()

	if v, ok := params.Get(ParamJuliaReal); !ok || v != -0.7 {
		t.Errorf("julia_real = %v, %v", v, ok)
	}
	if v, ok := params.Get(ParamZoom); !ok || v != 1.0 {
		t.Errorf("zoom = %v, %v", v, ok)
	}
	if _, ok := params.Get("no_such_param"); ok {
		t.Error("unknown key reported present")
	}
	if got := params.GetOrDefault("no_such_param", 7.5); got != 7.5 {
		t.Errorf("GetOrDefault = %v", got)
	}
}

func TestSetParamRoundTrip(t *testing.T) {
	cfg := NewConfig()
	writes := map[string]float64{
		ParamJuliaReal:       0.355,
		ParamJuliaImag:       0.355,
		ParamEscapeThreshold: 9,
		ParamFunctionBlend:   0.25,
		ParamDeformMix:       0.75,
		ParamShift:           1.1,
		ParamEdgeSaturation:  0.8,
		ParamZoom:            2,
		ParamOffsetX:         -0.5,
		ParamOffsetY:         0.25,
	}
	for name, value := range writes {
		if !cfg.SetParam(name, value) {
			t.Fatalf("SetParam(%q) rejected", name)
		}
	}
	params := cfg.Params()
	for name, value := range writes {
		if got := params[name]; got != value {
			t.Errorf("%s = %v, want %v", name, got, value)
		}
	}
	if cfg.JuliaConstant != complex(0.355, 0.355) {
		t.Errorf("julia constant = %v", cfg.JuliaConstant)
	}

	before := cfg
	if cfg.SetParam("no_such_param", 1) {
		t.Error("unknown key accepted")
	}
	if cfg != before {
		t.Error("rejected write modified the configuration")
	}
}
