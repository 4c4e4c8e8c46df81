package integrators

import "github.com/huckl3b3rry87/ctrlab/internal/dynamo"

// RK4 is the classical fourth-order Runge-Kutta method with a fixed step.
type RK4 struct{}

func NewRK4() *RK4 {
	return &RK4{}
}

func (r *RK4) Step(sys dynamo.System, x dynamo.State, u dynamo.Input, t, dt float64) dynamo.State {
	n := len(x)

	k1 := sys.Derive(x, u, t)

	x2 := make(dynamo.State, n)
	for i := 0; i < n; i++ {
		x2[i] = x[i] + dt/2*k1[i]
	}
	k2 := sys.Derive(x2, u, t+dt/2)

	x3 := make(dynamo.State, n)
	for i := 0; i < n; i++ {
		x3[i] = x[i] + dt/2*k2[i]
	}
	k3 := sys.Derive(x3, u, t+dt/2)

	x4 := make(dynamo.State, n)
	for i := 0; i < n; i++ {
		x4[i] = x[i] + dt*k3[i]
	}
	k4 := sys.Derive(x4, u, t+dt)

	out := make(dynamo.State, n)
	for i := 0; i < n; i++ {
		out[i] = x[i] + dt/6*(k1[i]+2*k2[i]+2*k3[i]+k4[i])
	}
	return out
}
