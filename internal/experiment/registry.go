package experiment

import (
	"fmt"

	"github.com/huckl3b3rry87/ctrlab/internal/config"
	"github.com/huckl3b3rry87/ctrlab/internal/control"
	"github.com/huckl3b3rry87/ctrlab/internal/dynamo"
	"github.com/huckl3b3rry87/ctrlab/internal/integrators"
	"github.com/huckl3b3rry87/ctrlab/internal/lti"
	"github.com/huckl3b3rry87/ctrlab/internal/metrics"
	"github.com/huckl3b3rry87/ctrlab/internal/signal"
)

type Registry struct {
	models      map[string]func(lti.MotorParams) (*lti.StateSpace, error)
	integrators map[string]func() dynamo.Integrator
	signals     map[string]func(config.SignalConfig, float64, int64) signal.Waveform
	controllers map[string]func(config.ControlConfig) dynamo.Controller
}

func NewRegistry() *Registry {
	r := &Registry{
		models:      make(map[string]func(lti.MotorParams) (*lti.StateSpace, error)),
		integrators: make(map[string]func() dynamo.Integrator),
		signals:     make(map[string]func(config.SignalConfig, float64, int64) signal.Waveform),
		controllers: make(map[string]func(config.ControlConfig) dynamo.Controller),
	}

	r.models["motor_speed"] = lti.MotorSpeed
	r.models["motor_position"] = lti.MotorPosition

	r.integrators["euler"] = func() dynamo.Integrator { return integrators.NewEuler() }
	r.integrators["rk4"] = func() dynamo.Integrator { return integrators.NewRK4() }
	r.integrators["rk45"] = func() dynamo.Integrator { return integrators.NewRK45() }

	r.signals["step"] = func(s config.SignalConfig, duration float64, seed int64) signal.Waveform {
		return signal.Step{Amplitude: s.Amplitude, Delay: s.Delay}
	}
	r.signals["doublet"] = func(s config.SignalConfig, duration float64, seed int64) signal.Waveform {
		width := s.BitPeriod
		if width <= 0 {
			width = duration / 4
		}
		return signal.Doublet{Amplitude: s.Amplitude, Start: s.Delay, Width: width}
	}
	r.signals["sine"] = func(s config.SignalConfig, duration float64, seed int64) signal.Waveform {
		return signal.Sine{Amplitude: s.Amplitude, Freq: s.Frequency}
	}
	r.signals["chirp"] = func(s config.SignalConfig, duration float64, seed int64) signal.Waveform {
		return signal.Chirp{Amplitude: s.Amplitude, F0: s.Frequency, F1: 20 * s.Frequency, Duration: duration}
	}
	r.signals["prbs"] = func(s config.SignalConfig, duration float64, seed int64) signal.Waveform {
		return signal.PRBS{Amplitude: s.Amplitude, BitPeriod: s.BitPeriod, Seed: seed}
	}

	r.controllers["none"] = func(c config.ControlConfig) dynamo.Controller {
		return control.NewNone(1)
	}
	r.controllers["pid"] = func(c config.ControlConfig) dynamo.Controller {
		return control.NewPID(c.Kp, c.Ki, c.Kd, c.Target)
	}

	return r
}

func (r *Registry) Model(name string, p lti.MotorParams) (*lti.StateSpace, error) {
	fn, ok := r.models[name]
	if !ok {
		return nil, fmt.Errorf("unknown model: %s", name)
	}
	return fn(p)
}

func (r *Registry) Integrator(name string) (dynamo.Integrator, error) {
	fn, ok := r.integrators[name]
	if !ok {
		return nil, fmt.Errorf("unknown integrator: %s", name)
	}
	return fn(), nil
}

func (r *Registry) Signal(name string, s config.SignalConfig, duration float64, seed int64) (signal.Waveform, error) {
	fn, ok := r.signals[name]
	if !ok {
		return nil, fmt.Errorf("unknown signal: %s", name)
	}
	return fn(s, duration, seed), nil
}

func (r *Registry) Controller(name string, c config.ControlConfig) (dynamo.Controller, error) {
	fn, ok := r.controllers[name]
	if !ok {
		return nil, fmt.Errorf("unknown controller: %s", name)
	}
	return fn(c), nil
}

func (r *Registry) ListModels() []string {
	names := make([]string, 0, len(r.models))
	for name := range r.models {
		names = append(names, name)
	}
	return names
}

// DefaultMetrics returns the metrics recorded for a closed-loop run
// regulating the last state to target.
func (r *Registry) DefaultMetrics(stateDim int, target float64) []dynamo.Metric {
	return []dynamo.Metric{
		metrics.NewControlEffort(),
		metrics.NewTrackingError(stateDim-1, target),
		metrics.NewSettling(stateDim-1, target, 0.02*target),
	}
}
