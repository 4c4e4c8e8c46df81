package signal

import (
	"math"
	"testing"
)

func TestStepDelay(t *testing.T) {
	s := Step{Amplitude: 2, Delay: 0.5}
	if s.At(0.4) != 0 {
		t.Error("step should be zero before delay")
	}
	if s.At(0.6) != 2 {
		t.Error("step should be at amplitude after delay")
	}
}

func TestDoubletIntegratesToZero(t *testing.T) {
	d := Doublet{Amplitude: 1, Start: 0.1, Width: 0.2}
	sum := 0.0
	dt := 1e-4
	for tt := 0.0; tt < 1.0; tt += dt {
		sum += d.At(tt) * dt
	}
	if math.Abs(sum) > 1e-3 {
		t.Errorf("doublet should integrate to ~0, got %f", sum)
	}
}

func TestPRBSDeterministic(t *testing.T) {
	p := PRBS{Amplitude: 1, BitPeriod: 0.1, Seed: 42}
	for _, tt := range []float64{0, 0.05, 0.33, 1.7} {
		if p.At(tt) != p.At(tt) {
			t.Fatal("prbs must be a pure function of time")
		}
		if v := math.Abs(p.At(tt)); v != 1 {
			t.Errorf("prbs magnitude should be 1, got %f", v)
		}
	}
}

func TestPRBSSwitches(t *testing.T) {
	p := PRBS{Amplitude: 1, BitPeriod: 0.1, Seed: 7}
	switches := 0
	prev := p.At(0)
	for i := 1; i < 200; i++ {
		v := p.At(float64(i) * 0.1)
		if v != prev {
			switches++
		}
		prev = v
	}
	if switches < 50 {
		t.Errorf("expected a rich switching sequence, got %d transitions", switches)
	}
}

func TestChirpStartsAtZeroPhase(t *testing.T) {
	c := Chirp{Amplitude: 1, F0: 1, F1: 10, Duration: 5}
	if c.At(0) != 0 {
		t.Errorf("chirp should start at zero, got %f", c.At(0))
	}
}

func TestAsControllerDrivesChannelZero(t *testing.T) {
	ctrl := AsController(Step{Amplitude: 3}, 2)
	u := ctrl.Compute(nil, 1.0)
	if len(u) != 2 || u[0] != 3 || u[1] != 0 {
		t.Errorf("unexpected input vector %v", u)
	}
}
