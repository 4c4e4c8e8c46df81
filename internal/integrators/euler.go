package integrators

import "github.com/huckl3b3rry87/ctrlab/internal/dynamo"

type Euler struct{}

func NewEuler() *Euler {
	return &Euler{}
}

func (e *Euler) Step(sys dynamo.System, x dynamo.State, u dynamo.Input, t, dt float64) dynamo.State {
	dx := sys.Derive(x, u, t)
	out := make(dynamo.State, len(x))
	for i := range x {
		out[i] = x[i] + dt*dx[i]
	}
	return out
}
