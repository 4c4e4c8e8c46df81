package sim

import (
	"context"
	"fmt"

	"github.com/huckl3b3rry87/ctrlab/internal/dynamo"
)

// Simulator runs a plant under a controller with a fixed or adaptive step,
// collecting states, inputs, outputs and metric values.
type Simulator struct {
	sys        dynamo.System
	integrator dynamo.Integrator
	controller dynamo.Controller
	metrics    []dynamo.Metric
	observers  []dynamo.Observer
}

func New(sys dynamo.System, integrator dynamo.Integrator, controller dynamo.Controller) *Simulator {
	return &Simulator{
		sys:        sys,
		integrator: integrator,
		controller: controller,
		metrics:    make([]dynamo.Metric, 0),
		observers:  make([]dynamo.Observer, 0),
	}
}

func (s *Simulator) AddMetric(m dynamo.Metric)     { s.metrics = append(s.metrics, m) }
func (s *Simulator) AddObserver(o dynamo.Observer) { s.observers = append(s.observers, o) }

func (s *Simulator) Run(ctx context.Context, x0 dynamo.State, cfg dynamo.Config) (*dynamo.Result, error) {
	if err := s.validateConfig(cfg); err != nil {
		return nil, err
	}
	if len(x0) != s.sys.StateDim() {
		return nil, fmt.Errorf("%w: got %d states, system has %d",
			dynamo.ErrDimensionMismatch, len(x0), s.sys.StateDim())
	}

	steps := int(cfg.Duration / cfg.Dt)
	// Capacity hint only; capped so a tiny dt with a long duration cannot
	// exhaust memory up front before the run (or its context) progresses.
	capSteps := steps
	if capSteps > 1<<20 {
		capSteps = 1 << 20
	}
	result := &dynamo.Result{
		States:  make([]dynamo.State, 0, capSteps+1),
		Inputs:  make([]dynamo.Input, 0, capSteps),
		Times:   make([]float64, 0, capSteps+1),
		Metrics: make(map[string]float64),
		Errors:  make([]error, 0),
	}

	outSys, hasOutput := s.sys.(dynamo.OutputSystem)
	if hasOutput {
		result.Outputs = make([][]float64, 0, capSteps+1)
	}

	for _, m := range s.metrics {
		m.Reset()
	}

	x := x0.Clone()
	t := 0.0
	dt := cfg.Dt

	result.States = append(result.States, x.Clone())
	result.Times = append(result.Times, t)

	for i := 0; ; i++ {
		if cfg.Adaptive {
			if cfg.Duration-t < 1e-12 {
				break
			}
		} else if i >= steps {
			break
		}

		select {
		case <-ctx.Done():
			return result, ctx.Err()
		default:
		}

		u := s.computeInput(x, t)

		if hasOutput {
			result.Outputs = append(result.Outputs, outSys.Output(x, u, t))
		}

		for _, m := range s.metrics {
			m.Observe(x, u, t)
		}
		for _, obs := range s.observers {
			obs.OnStep(x, u, t)
		}

		var newX dynamo.State
		var stepErr error
		taken := dt

		if cfg.Adaptive {
			h := dt
			if rem := cfg.Duration - t; h > rem {
				h = rem
			}
			newX, taken, dt, stepErr = s.adaptiveStep(x, u, t, h, cfg)
		} else {
			newX = s.integrator.Step(s.sys, x, u, t, dt)
		}

		if stepErr != nil {
			result.Errors = append(result.Errors, stepErr)
		}

		if cfg.ValidateState && !newX.IsValid() {
			err := dynamo.SimError{Time: t, Step: i, Message: "invalid state (NaN/Inf)"}
			result.Errors = append(result.Errors, err)
			break
		}

		x = newX
		t += taken
		result.StepsTaken++

		result.States = append(result.States, x.Clone())
		result.Inputs = append(result.Inputs, u)
		result.Times = append(result.Times, t)
	}

	if hasOutput && len(result.Outputs) < len(result.States) {
		u := s.computeInput(x, t)
		result.Outputs = append(result.Outputs, outSys.Output(x, u, t))
	}

	for _, m := range s.metrics {
		result.Metrics[m.Name()] = m.Value()
	}

	return result, nil
}

func (s *Simulator) computeInput(x dynamo.State, t float64) dynamo.Input {
	if s.controller == nil {
		return make(dynamo.Input, s.sys.InputDim())
	}
	return s.controller.Compute(x, t)
}

func (s *Simulator) validateConfig(cfg dynamo.Config) error {
	if cfg.Dt <= 0 {
		return fmt.Errorf("sim: dt must be positive, got %f", cfg.Dt)
	}
	if cfg.Duration <= 0 {
		return fmt.Errorf("sim: duration must be positive, got %f", cfg.Duration)
	}
	if cfg.Adaptive && cfg.Tolerance <= 0 {
		return fmt.Errorf("sim: tolerance must be positive for adaptive stepping")
	}
	return nil
}

// adaptiveStep integrates one step of size dt and returns the new state,
// the step actually taken and the suggested size for the next one.
func (s *Simulator) adaptiveStep(x dynamo.State, u dynamo.Input, t, dt float64, cfg dynamo.Config) (dynamo.State, float64, float64, error) {
	if adaptive, ok := s.integrator.(dynamo.AdaptiveIntegrator); ok {
		next, dtNew, err := adaptive.StepAdaptive(s.sys, x, u, t, dt, cfg.Tolerance)
		if dtNew < cfg.MinDt {
			return next, dt, cfg.MinDt, dynamo.ErrStepTooSmall
		}
		if dtNew > cfg.MaxDt {
			dtNew = cfg.MaxDt
		}
		return next, dt, dtNew, err
	}

	// Step doubling for integrators without an embedded error estimate.
	x1 := s.integrator.Step(s.sys, x, u, t, dt)
	xHalf := s.integrator.Step(s.sys, x, u, t, dt/2)
	x2 := s.integrator.Step(s.sys, xHalf, u, t+dt/2, dt/2)

	err := x1.Sub(x2).Norm()

	if err > cfg.Tolerance && dt > cfg.MinDt {
		return s.adaptiveStep(x, u, t, dt/2, cfg)
	}

	next := dt
	if err < cfg.Tolerance/10 && dt*2 <= cfg.MaxDt {
		next = dt * 2
	}

	return x2, dt, next, nil
}
