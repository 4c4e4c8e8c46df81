package control

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"

	"github.com/huckl3b3rry87/ctrlab/internal/lti"
)

func motorSpeed(t *testing.T) *lti.StateSpace {
	t.Helper()
	ss, err := lti.MotorSpeed(lti.DefaultMotorParams())
	if err != nil {
		t.Fatal(err)
	}
	return ss
}

func closedLoopPoles(t *testing.T, ss *lti.StateSpace, k *mat.Dense) []complex128 {
	t.Helper()
	cl, err := ss.Feedback(k)
	if err != nil {
		t.Fatal(err)
	}
	poles, err := cl.Poles()
	if err != nil {
		t.Fatal(err)
	}
	return poles
}

func TestPlaceRealPoles(t *testing.T) {
	ss := motorSpeed(t)
	want := []complex128{complex(-5, 0), complex(-8, 0)}

	k, err := Place(ss, want)
	if err != nil {
		t.Fatal(err)
	}

	got := closedLoopPoles(t, ss, k)
	if d := lti.MaxRootDistance(got, want); d > 1e-6 {
		t.Errorf("placed poles off by %g", d)
	}
}

func TestPlaceComplexPair(t *testing.T) {
	ss := motorSpeed(t)
	want := []complex128{complex(-3, 4), complex(-3, -4)}

	k, err := Place(ss, want)
	if err != nil {
		t.Fatal(err)
	}

	got := closedLoopPoles(t, ss, k)
	if d := lti.MaxRootDistance(got, want); d > 1e-6 {
		t.Errorf("placed poles off by %g", d)
	}
}

func TestPlaceThirdOrder(t *testing.T) {
	ss, err := lti.MotorPosition(lti.DefaultMotorParams())
	if err != nil {
		t.Fatal(err)
	}
	want := []complex128{complex(-2, 2), complex(-2, -2), complex(-20, 0)}

	k, err := Place(ss, want)
	if err != nil {
		t.Fatal(err)
	}

	got := closedLoopPoles(t, ss, k)
	if d := lti.MaxRootDistance(got, want); d > 1e-5 {
		t.Errorf("placed poles off by %g", d)
	}
}

func TestPlaceRejectsBadInput(t *testing.T) {
	ss := motorSpeed(t)
	if _, err := Place(ss, []complex128{complex(-1, 0)}); err == nil {
		t.Error("expected error for wrong pole count")
	}
	if _, err := Place(ss, []complex128{complex(-1, 2), complex(-3, 0)}); err == nil {
		t.Error("expected error for non-conjugate pole set")
	}
}

func TestDominantPoles(t *testing.T) {
	poles := []complex128{complex(-1, 2), complex(-1, -2), complex(-20, 0)}
	zeta, wn := DominantPoles(poles)
	wantWn := math.Sqrt(5)
	if math.Abs(wn-wantWn) > 1e-12 {
		t.Errorf("wn: got %f want %f", wn, wantWn)
	}
	if math.Abs(zeta-1/wantWn) > 1e-12 {
		t.Errorf("zeta: got %f want %f", zeta, 1/wantWn)
	}
}

func TestPolesFromSpec(t *testing.T) {
	poles, err := PolesFromSpec(0.7, 4, 3)
	if err != nil {
		t.Fatal(err)
	}
	if len(poles) != 3 {
		t.Fatalf("expected 3 poles, got %d", len(poles))
	}
	zeta, wn := DominantPoles(poles)
	if math.Abs(zeta-0.7) > 1e-9 || math.Abs(wn-4) > 1e-9 {
		t.Errorf("dominant pair: zeta=%f wn=%f", zeta, wn)
	}

	if _, err := PolesFromSpec(1.5, 4, 2); err == nil {
		t.Error("expected error for zeta > 1")
	}
}
