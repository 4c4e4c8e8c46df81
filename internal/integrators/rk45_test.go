package integrators

import (
	"math"
	"testing"

	"github.com/huckl3b3rry87/ctrlab/internal/dynamo"
)

func TestRK45MatchesExact(t *testing.T) {
	sys := decay{a: 2}
	r := NewRK45()

	x := dynamo.State{1}
	tNow := 0.0
	dt := 0.01
	for tNow < 1.0 {
		h := math.Min(dt, 1.0-tNow)
		x = r.Step(sys, x, nil, tNow, h)
		tNow += h
	}

	exact := math.Exp(-2)
	if math.Abs(x[0]-exact) > 1e-8 {
		t.Errorf("rk45 error %g exceeds 1e-8", math.Abs(x[0]-exact))
	}
}

func TestRK45AdaptiveShrinksOnTightTolerance(t *testing.T) {
	sys := decay{a: 50}
	r := NewRK45()

	_, dtLoose, err := r.StepAdaptive(sys, dynamo.State{1}, nil, 0, 0.1, 1e-3)
	if err != nil {
		t.Fatal(err)
	}
	_, dtTight, err := r.StepAdaptive(sys, dynamo.State{1}, nil, 0, 0.1, 1e-9)
	if err != nil {
		t.Fatal(err)
	}

	if dtTight >= dtLoose {
		t.Errorf("expected tighter tolerance to propose smaller step: %g >= %g", dtTight, dtLoose)
	}
}

func BenchmarkRK4(b *testing.B) {
	sys := decay{a: 1}
	r := NewRK4()
	x := dynamo.State{1}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		x = r.Step(sys, x, nil, 0, 0.01)
	}
	_ = x
}

func BenchmarkRK45(b *testing.B) {
	sys := decay{a: 1}
	r := NewRK45()
	x := dynamo.State{1}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		x = r.Step(sys, x, nil, 0, 0.01)
	}
	_ = x
}
