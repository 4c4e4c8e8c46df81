package dynamo

import (
	"fmt"
	"math"
)

type State []float64

func (s State) Clone() State {
	c := make(State, len(s))
	copy(c, s)
	return c
}

func (s State) IsValid() bool {
	for _, v := range s {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

func (s State) Norm() float64 {
	sum := 0.0
	for _, v := range s {
		sum += v * v
	}
	return math.Sqrt(sum)
}

func (s State) Add(other State) State {
	result := make(State, len(s))
	for i := range s {
		if i < len(other) {
			result[i] = s[i] + other[i]
		} else {
			result[i] = s[i]
		}
	}
	return result
}

func (s State) Sub(other State) State {
	result := make(State, len(s))
	for i := range s {
		if i < len(other) {
			result[i] = s[i] - other[i]
		} else {
			result[i] = s[i]
		}
	}
	return result
}

func (s State) Scale(factor float64) State {
	result := make(State, len(s))
	for i := range s {
		result[i] = s[i] * factor
	}
	return result
}

type Input []float64

// System is a (possibly nonlinear) ODE plant: dx/dt = f(x, u, t).
type System interface {
	Derive(x State, u Input, t float64) State
	StateDim() int
	InputDim() int
}

// OutputSystem adds a measurement map y = h(x, u, t) on top of the state
// equations. Linear state-space models expose y = Cx + Du through this.
type OutputSystem interface {
	System
	Output(x State, u Input, t float64) []float64
	OutputDim() int
}

type Integrator interface {
	Step(sys System, x State, u Input, t, dt float64) State
}

type AdaptiveIntegrator interface {
	Integrator
	StepAdaptive(sys System, x State, u Input, t, dt, tol float64) (State, float64, error)
}

// Controller computes the plant input from the current state. The reference
// signal, if any, is owned by the controller itself.
type Controller interface {
	Compute(x State, t float64) Input
}

type Metric interface {
	Name() string
	Observe(x State, u Input, t float64)
	Value() float64
	Reset()
}

type Observer interface {
	OnStep(x State, u Input, t float64)
}

// Configurable controllers support live parameter tuning from the TUI.
type Configurable interface {
	GetParams() map[string]float64
	SetParam(name string, value float64) error
}

type Config struct {
	Dt            float64
	Duration      float64
	Seed          int64
	Tolerance     float64
	MaxDt         float64
	MinDt         float64
	Adaptive      bool
	ValidateState bool
}

func DefaultConfig() Config {
	return Config{
		Dt:            0.001,
		Duration:      5.0,
		Tolerance:     1e-6,
		MaxDt:         0.01,
		MinDt:         1e-9,
		Adaptive:      false,
		ValidateState: true,
	}
}

type Result struct {
	States     []State
	Inputs     []Input
	Outputs    [][]float64
	Times      []float64
	Metrics    map[string]float64
	StepsTaken int
	Errors     []error
}

type SimError struct {
	Time    float64
	Step    int
	Message string
}

func (e SimError) Error() string {
	return fmt.Sprintf("step %d (t=%.4f): %s", e.Step, e.Time, e.Message)
}
