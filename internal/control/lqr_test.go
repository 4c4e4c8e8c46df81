package control

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"

	"github.com/huckl3b3rry87/ctrlab/internal/lti"
)

func TestLQRScalarKnownSolution(t *testing.T) {
	// For x' = u with Q = R = 1, the Riccati solution is X = 1 and K = 1.
	ss, err := lti.NewStateSpace(
		mat.NewDense(1, 1, []float64{0}),
		mat.NewDense(1, 1, []float64{1}),
		mat.NewDense(1, 1, []float64{1}),
		nil,
	)
	if err != nil {
		t.Fatal(err)
	}

	k, err := LQR(ss, mat.NewDense(1, 1, []float64{1}), mat.NewDense(1, 1, []float64{1}))
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(k.At(0, 0)-1) > 1e-8 {
		t.Errorf("expected K=1, got %f", k.At(0, 0))
	}
}

func TestLQRDoubleIntegratorKnownSolution(t *testing.T) {
	// Double integrator with Q = I, R = 1 has K = [1, sqrt(3)].
	ss, err := lti.NewStateSpace(
		mat.NewDense(2, 2, []float64{0, 1, 0, 0}),
		mat.NewDense(2, 1, []float64{0, 1}),
		mat.NewDense(1, 2, []float64{1, 0}),
		nil,
	)
	if err != nil {
		t.Fatal(err)
	}

	q := mat.NewDense(2, 2, []float64{1, 0, 0, 1})
	r := mat.NewDense(1, 1, []float64{1})
	k, err := LQR(ss, q, r)
	if err != nil {
		t.Fatal(err)
	}

	if math.Abs(k.At(0, 0)-1) > 1e-7 {
		t.Errorf("K[0]: got %f want 1", k.At(0, 0))
	}
	if math.Abs(k.At(0, 1)-math.Sqrt(3)) > 1e-7 {
		t.Errorf("K[1]: got %f want %f", k.At(0, 1), math.Sqrt(3))
	}
}

func TestLQRStabilizesMotor(t *testing.T) {
	ss := motorSpeed(t)
	q := mat.NewDense(2, 2, []float64{10, 0, 0, 10})
	r := mat.NewDense(1, 1, []float64{0.1})

	k, err := LQR(ss, q, r)
	if err != nil {
		t.Fatal(err)
	}

	cl, err := ss.Feedback(k)
	if err != nil {
		t.Fatal(err)
	}
	if !cl.IsStable() {
		t.Error("lqr closed loop must be stable")
	}
}

func TestLQRValidatesWeights(t *testing.T) {
	ss := motorSpeed(t)
	if _, err := LQR(ss, mat.NewDense(1, 1, []float64{1}), mat.NewDense(1, 1, []float64{1})); err == nil {
		t.Error("expected error for wrong Q dimensions")
	}
	if _, err := LQR(ss, mat.NewDense(2, 2, nil), mat.NewDense(1, 1, []float64{0})); err == nil {
		t.Error("expected error for singular R")
	}
}
