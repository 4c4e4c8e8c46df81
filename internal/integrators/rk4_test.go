package integrators

import (
	"math"
	"testing"

	"github.com/huckl3b3rry87/ctrlab/internal/dynamo"
)

// decay is dx/dt = -a x, with exact solution x0 * exp(-a t).
type decay struct {
	a float64
}

func (d decay) Derive(x dynamo.State, u dynamo.Input, t float64) dynamo.State {
	return dynamo.State{-d.a * x[0]}
}

func (d decay) StateDim() int { return 1 }
func (d decay) InputDim() int { return 0 }

// forced is dx/dt = -x + u, exercising the input path.
type forced struct{}

func (forced) Derive(x dynamo.State, u dynamo.Input, t float64) dynamo.State {
	return dynamo.State{-x[0] + u[0]}
}

func (forced) StateDim() int { return 1 }
func (forced) InputDim() int { return 1 }

func TestEulerConvergesFirstOrder(t *testing.T) {
	sys := decay{a: 1}
	exact := math.Exp(-1)

	errAt := func(dt float64) float64 {
		x := dynamo.State{1}
		e := NewEuler()
		steps := int(1 / dt)
		for i := 0; i < steps; i++ {
			x = e.Step(sys, x, nil, float64(i)*dt, dt)
		}
		return math.Abs(x[0] - exact)
	}

	coarse := errAt(0.01)
	fine := errAt(0.001)
	if ratio := coarse / fine; ratio < 5 || ratio > 20 {
		t.Errorf("expected ~10x error reduction for 10x smaller step, got %f", ratio)
	}
}

func TestRK4Accuracy(t *testing.T) {
	sys := decay{a: 1}
	r := NewRK4()

	x := dynamo.State{1}
	dt := 0.01
	for i := 0; i < 100; i++ {
		x = r.Step(sys, x, nil, float64(i)*dt, dt)
	}

	exact := math.Exp(-1)
	if math.Abs(x[0]-exact) > 1e-9 {
		t.Errorf("rk4 error %g exceeds 1e-9", math.Abs(x[0]-exact))
	}
}

func TestRK4SteadyStateWithInput(t *testing.T) {
	r := NewRK4()
	x := dynamo.State{0}
	u := dynamo.Input{2}
	dt := 0.01
	for i := 0; i < 2000; i++ {
		x = r.Step(forced{}, x, u, float64(i)*dt, dt)
	}
	// Steady state of dx = -x + 2 is x = 2.
	if math.Abs(x[0]-2) > 1e-6 {
		t.Errorf("expected steady state 2, got %f", x[0])
	}
}
