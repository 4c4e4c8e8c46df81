package config

// Presets are named starting points keyed by model then scenario. Each
// preset is merged over DefaultConfig by Preset, so only the fields a
// scenario changes are listed.
var Presets = map[string]map[string]*Config{
	"motor_speed": {
		"ident": {
			Model: "motor_speed", Signal: "prbs", Ts: 0.01, Duration: 10.0, Noise: 0.002,
			SignalOpts: SignalConfig{Amplitude: 2.0, BitPeriod: 0.05},
			Ident:      IdentConfig{Method: "oe", NA: 2, NB: 2, Delay: 1, Split: 0.7},
		},
		"step": {
			Model: "motor_speed", Signal: "step", Ts: 0.005, Duration: 3.0,
			SignalOpts: SignalConfig{Amplitude: 1.0, Delay: 0.1},
		},
		"chirp": {
			Model: "motor_speed", Signal: "chirp", Ts: 0.005, Duration: 20.0, Noise: 0.002,
			SignalOpts: SignalConfig{Amplitude: 1.0, Frequency: 0.1},
			Ident:      IdentConfig{Method: "oe", NA: 2, NB: 2, Delay: 1, Split: 0.7},
		},
		"regulate": {
			Model: "motor_speed", Signal: "step", Ts: 0.005, Duration: 4.0,
			Controller: ControlConfig{Kind: "pid", Kp: 80, Ki: 200, Kd: 0.5, Target: 1.0},
		},
	},
	"motor_position": {
		"ident": {
			Model: "motor_position", Signal: "doublet", Ts: 0.01, Duration: 10.0, Noise: 0.001,
			SignalOpts: SignalConfig{Amplitude: 1.0, Delay: 0.5},
			Ident:      IdentConfig{Method: "arx", NA: 3, NB: 3, Delay: 1, Split: 0.7},
		},
		"servo": {
			Model: "motor_position", Signal: "step", Ts: 0.005, Duration: 2.0,
			Design: DesignConfig{Method: "place", Zeta: 0.8, Wn: 12.0},
		},
		"lqr": {
			Model: "motor_position", Signal: "step", Ts: 0.005, Duration: 2.0,
			Design: DesignConfig{Method: "lqr", Q: []float64{1, 1, 100}, R: []float64{0.1}},
		},
	},
}

// Preset returns the named scenario merged over the defaults, or nil
// when either key is unknown.
func Preset(model, name string) *Config {
	modelPresets, ok := Presets[model]
	if !ok {
		return nil
	}
	p, ok := modelPresets[name]
	if !ok {
		return nil
	}
	cfg := DefaultConfig()
	merge(cfg, p)
	return cfg
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

func merge(dst, src *Config) {
	if src.Model != "" {
		dst.Model = src.Model
	}
	if src.Integrator != "" {
		dst.Integrator = src.Integrator
	}
	if src.Signal != "" {
		dst.Signal = src.Signal
	}
	if src.Ts != 0 {
		dst.Ts = src.Ts
	}
	if src.Dt != 0 {
		dst.Dt = src.Dt
	}
	if src.Duration != 0 {
		dst.Duration = src.Duration
	}
	if src.Seed != 0 {
		dst.Seed = src.Seed
	}
	if src.Noise != 0 {
		dst.Noise = src.Noise
	}
	if src.Motor != (MotorConfig{}) {
		dst.Motor = src.Motor
	}
	if src.SignalOpts != (SignalConfig{}) {
		dst.SignalOpts = src.SignalOpts
	}
	if src.Ident != (IdentConfig{}) {
		dst.Ident = src.Ident
	}
	if src.Design.Method != "" {
		dst.Design = src.Design
	}
	if src.Controller.Kind != "" {
		dst.Controller = src.Controller
	}
}
