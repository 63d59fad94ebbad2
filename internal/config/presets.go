package config

var Presets = map[string]map[string]*Config{
	"decay": {
		"reference": {
			Model: "decay", Method: "rk4", T0: 0, T1: 0.1, Steps: 1,
			InitState: []float64{1.0},
		},
		"unit": {
			Model: "decay", Method: "rk4", T0: 0, T1: 1, Steps: 10,
			InitState: []float64{1.0},
		},
		"backward": {
			Model: "decay", Method: "rk4", T0: 1, T1: 0, Steps: 20,
			InitState: []float64{0.36787944117144233},
		},
	},
	"oscillator": {
		"cycle": {
			Model: "oscillator", Method: "rk4", T0: 0, T1: 6.283185307179586, Steps: 100,
			InitState: []float64{1.0, 0.0},
		},
		"euler-drift": {
			Model: "oscillator", Method: "euler", T0: 0, T1: 10, Steps: 1000,
			InitState: []float64{1.0, 0.0},
		},
	},
	"pendulum": {
		"small": {
			Model: "pendulum", Method: "rk4", T0: 0, T1: 20, Steps: 2000,
			InitState: []float64{0.2, 0.0},
		},
		"large": {
			Model: "pendulum", Method: "rk4", T0: 0, T1: 20, Steps: 2000,
			InitState: []float64{2.5, 0.0},
		},
		"spinning": {
			Model: "pendulum", Method: "rk4", T0: 0, T1: 30, Steps: 3000,
			InitState: []float64{0.1, 8.0},
		},
	},
	"lorenz": {
		"butterfly": {
			Model: "lorenz", Method: "rk4", T0: 0, T1: 40, Steps: 8000,
			InitState: []float64{1.0, 1.0, 1.0},
		},
	},
	"vanderpol": {
		"limit-cycle": {
			Model: "vanderpol", Method: "rk4", T0: 0, T1: 30, Steps: 3000,
			InitState: []float64{2.0, 0.0},
		},
		"stiff": {
			Model: "vanderpol", Method: "rk4", T0: 0, T1: 30, Steps: 30000,
			InitState: []float64{2.0, 0.0}, Params: map[string]float64{"mu": 10},
		},
	},
	"logistic": {
		"growth": {
			Model: "logistic", Method: "rk4", T0: 0, T1: 10, Steps: 100,
			InitState: []float64{0.5},
		},
	},
}

// GetPreset returns a copy of the named preset, or nil.
func GetPreset(model, preset string) *Config {
	modelPresets, ok := Presets[model]
	if !ok {
		return nil
	}
	cfg, ok := modelPresets[preset]
	if !ok {
		return nil
	}
	out := cfg.Clone()
	out.ValidateState = true
	return out
}

func ListPresets(model string) []string {
	modelPresets, ok := Presets[model]
	if !ok {
		return nil
	}
	names := make([]string, 0, len(modelPresets))
	for name := range modelPresets {
		names = append(names, name)
	}
	return names
}
