package control

import (
	"math"
	"testing"

	"github.com/huckl3b3rry87/ctrlab/internal/lti"
)

func TestRootLocusPolesMoveWithGain(t *testing.T) {
	// G = 1/(s(s+2)): closed loop is s^2 + 2s + k.
	g, err := lti.NewTransferFunction([]float64{1}, []float64{1, 2, 0})
	if err != nil {
		t.Fatal(err)
	}

	locus, err := RootLocus(g, []float64{0.5, 1, 2, 4})
	if err != nil {
		t.Fatal(err)
	}
	if len(locus) != 4 {
		t.Fatalf("expected 4 locus points, got %d", len(locus))
	}

	// For k=4 the poles are -1 +/- sqrt(3)i.
	want := []complex128{complex(-1, math.Sqrt(3)), complex(-1, -math.Sqrt(3))}
	if d := lti.MaxRootDistance(locus[3].Poles, want); d > 1e-9 {
		t.Errorf("poles at k=4 off by %g", d)
	}
}

func TestGainForDamping(t *testing.T) {
	// Closed loop s^2 + 2s + k has zeta = 1/sqrt(k); zeta=0.707 at k=2.
	g, err := lti.NewTransferFunction([]float64{1}, []float64{1, 2, 0})
	if err != nil {
		t.Fatal(err)
	}

	k, err := GainForDamping(g, LogGains(0.1, 10, 400), 1/math.Sqrt2)
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(k-2) > 0.1 {
		t.Errorf("expected gain near 2, got %f", k)
	}
}

func TestGainForDampingValidates(t *testing.T) {
	g, _ := lti.NewTransferFunction([]float64{1}, []float64{1, 1})
	if _, err := GainForDamping(g, LogGains(0.1, 10, 10), 1.5); err == nil {
		t.Error("expected error for damping ratio above 1")
	}
}

func TestLogGains(t *testing.T) {
	gains := LogGains(0.1, 10, 5)
	if len(gains) != 5 {
		t.Fatalf("expected 5 gains, got %d", len(gains))
	}
	if math.Abs(gains[0]-0.1) > 1e-12 || math.Abs(gains[4]-10) > 1e-9 {
		t.Errorf("endpoints wrong: %v", gains)
	}
	for i := 1; i < len(gains); i++ {
		if gains[i] <= gains[i-1] {
			t.Error("gains must be increasing")
		}
	}
}
