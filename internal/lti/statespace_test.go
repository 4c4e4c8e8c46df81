package lti

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"

	"github.com/huckl3b3rry87/ctrlab/internal/dynamo"
	"github.com/huckl3b3rry87/ctrlab/internal/integrators"
)

func TestNewStateSpaceValidatesDims(t *testing.T) {
	a := mat.NewDense(2, 2, nil)
	b := mat.NewDense(3, 1, nil)
	c := mat.NewDense(1, 2, nil)
	if _, err := NewStateSpace(a, b, c, nil); err == nil {
		t.Error("expected dimension error for mismatched B")
	}
}

func TestMotorSpeedStable(t *testing.T) {
	ss, err := MotorSpeed(DefaultMotorParams())
	if err != nil {
		t.Fatal(err)
	}
	if !ss.IsStable() {
		t.Error("motor speed model should be stable")
	}
}

func TestMotorPositionHasIntegrator(t *testing.T) {
	ss, err := MotorPosition(DefaultMotorParams())
	if err != nil {
		t.Fatal(err)
	}
	poles, err := ss.Poles()
	if err != nil {
		t.Fatal(err)
	}
	foundOrigin := false
	for _, p := range poles {
		if math.Abs(real(p)) < 1e-9 && math.Abs(imag(p)) < 1e-9 {
			foundOrigin = true
		}
	}
	if !foundOrigin {
		t.Error("position model should have a pole at the origin")
	}
}

func TestDCGainMatchesFormula(t *testing.T) {
	p := DefaultMotorParams()
	ss, err := MotorSpeed(p)
	if err != nil {
		t.Fatal(err)
	}
	g, err := ss.DCGain()
	if err != nil {
		t.Fatal(err)
	}
	want := p.Kt / (p.R*p.B + p.Kt*p.Ke)
	if math.Abs(g.At(0, 0)-want) > 1e-12 {
		t.Errorf("dc gain: got %f want %f", g.At(0, 0), want)
	}
}

func TestControllabilityFullRank(t *testing.T) {
	ss, err := MotorSpeed(DefaultMotorParams())
	if err != nil {
		t.Fatal(err)
	}
	ctrb := ss.Controllability()
	var lu mat.LU
	lu.Factorize(ctrb)
	if math.Abs(lu.Det()) < 1e-12 {
		t.Error("motor speed model should be controllable")
	}
}

// Discretizing under ZOH and propagating one sample must agree with
// continuous integration over the same interval for a held input.
func TestZOHMatchesContinuousOneStep(t *testing.T) {
	ss, err := MotorSpeed(DefaultMotorParams())
	if err != nil {
		t.Fatal(err)
	}
	ts := 0.05
	d, err := DiscretizeZOH(ss, ts)
	if err != nil {
		t.Fatal(err)
	}

	x0 := []float64{0.2, -0.1}
	u := []float64{1.0}

	discrete := d.Propagate(x0, u)

	rk := integrators.NewRK45()
	x := dynamo.State(x0).Clone()
	steps := 50
	h := ts / float64(steps)
	for i := 0; i < steps; i++ {
		x = rk.Step(ss, x, dynamo.Input(u), float64(i)*h, h)
	}

	for i := range discrete {
		if math.Abs(discrete[i]-x[i]) > 1e-7 {
			t.Errorf("state %d: zoh %g vs continuous %g", i, discrete[i], x[i])
		}
	}
}

func TestTustinPreservesStability(t *testing.T) {
	ss, err := MotorSpeed(DefaultMotorParams())
	if err != nil {
		t.Fatal(err)
	}
	d, err := DiscretizeTustin(ss, 0.1)
	if err != nil {
		t.Fatal(err)
	}
	poles, err := d.Poles()
	if err != nil {
		t.Fatal(err)
	}
	for _, p := range poles {
		if mag := math.Hypot(real(p), imag(p)); mag >= 1 {
			t.Errorf("discrete pole magnitude %f should be inside unit circle", mag)
		}
	}
}

func TestDiscreteOutputMatchesC(t *testing.T) {
	ss, err := MotorSpeed(DefaultMotorParams())
	if err != nil {
		t.Fatal(err)
	}
	d, err := DiscretizeZOH(ss, 0.01)
	if err != nil {
		t.Fatal(err)
	}
	y := d.Output([]float64{0.5, 2.0}, []float64{0})
	if math.Abs(y[0]-2.0) > 1e-12 {
		t.Errorf("expected speed output 2.0, got %f", y[0])
	}
}

func TestFeedbackShiftsPoles(t *testing.T) {
	ss, err := MotorSpeed(DefaultMotorParams())
	if err != nil {
		t.Fatal(err)
	}
	k := mat.NewDense(1, 2, []float64{5, 3})
	cl, err := ss.Feedback(k)
	if err != nil {
		t.Fatal(err)
	}
	if !cl.IsStable() {
		t.Error("closed loop with stabilizing gains should remain stable")
	}
	openPoles, _ := ss.Poles()
	closedPoles, _ := cl.Poles()
	if MaxRootDistance(openPoles, closedPoles) < 1e-6 {
		t.Error("feedback should move the poles")
	}
}
