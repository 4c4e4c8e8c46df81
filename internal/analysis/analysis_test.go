package analysis

import (
	"math"
	"testing"

	"github.com/huckl3b3rry87/ctrlab/internal/lti"
)

func TestFFTSineFrequency(t *testing.T) {
	ts := 0.01
	n := 1024
	data := make([]float64, n)
	for i := range data {
		data[i] = math.Sin(2 * math.Pi * 5 * float64(i) * ts)
	}

	f := DominantFrequency(data, ts)
	if math.Abs(f-5) > 0.2 {
		t.Errorf("expected dominant frequency near 5 Hz, got %f", f)
	}
}

func TestPowerSpectrumHandlesNonPow2(t *testing.T) {
	data := make([]float64, 1000)
	ps := PowerSpectrum(data)
	if len(ps) != 256 {
		t.Errorf("expected spectrum trimmed to 512-point fft, got %d bins", len(ps))
	}
}

func TestFrequencyResponseFirstOrder(t *testing.T) {
	// G = 1/(s+1): |G(j1)| = -3.01 dB, phase -45 deg.
	g, err := lti.NewTransferFunction([]float64{1}, []float64{1, 1})
	if err != nil {
		t.Fatal(err)
	}
	resp := FrequencyResponse(g, 1, 1, 2)
	if resp != nil {
		t.Fatal("degenerate grid should return nil")
	}

	resp = FrequencyResponse(g, 0.999, 1.001, 3)
	mid := resp[1]
	if math.Abs(mid.MagDB - -3.0103) > 0.01 {
		t.Errorf("expected -3 dB at corner, got %f", mid.MagDB)
	}
	if math.Abs(mid.PhaseDeg - -45) > 0.1 {
		t.Errorf("expected -45 deg at corner, got %f", mid.PhaseDeg)
	}
}

func TestBandwidthFirstOrder(t *testing.T) {
	g, err := lti.NewTransferFunction([]float64{2}, []float64{1, 1})
	if err != nil {
		t.Fatal(err)
	}
	bw := Bandwidth(g, 0.01, 100, 500)
	if math.Abs(bw-1) > 0.1 {
		t.Errorf("expected bandwidth near 1 rad/s, got %f", bw)
	}
}

func TestAnalyzeStepSecondOrder(t *testing.T) {
	// Underdamped second order: zeta=0.5, wn=2.
	zeta, wn := 0.5, 2.0
	wd := wn * math.Sqrt(1-zeta*zeta)
	n := 5000
	times := make([]float64, n)
	y := make([]float64, n)
	for i := range y {
		tt := float64(i) * 0.002
		times[i] = tt
		y[i] = 1 - math.Exp(-zeta*wn*tt)*(math.Cos(wd*tt)+zeta*wn/wd*math.Sin(wd*tt))
	}

	info := AnalyzeStep(times, y)

	wantOvershoot := 100 * math.Exp(-math.Pi*zeta/math.Sqrt(1-zeta*zeta))
	if math.Abs(info.Overshoot-wantOvershoot) > 1 {
		t.Errorf("overshoot: got %f want %f", info.Overshoot, wantOvershoot)
	}
	wantPeak := math.Pi / wd
	if math.Abs(info.PeakTime-wantPeak) > 0.05 {
		t.Errorf("peak time: got %f want %f", info.PeakTime, wantPeak)
	}
	if math.Abs(info.FinalValue-1) > 0.01 {
		t.Errorf("final value: got %f want 1", info.FinalValue)
	}
	if info.RiseTime <= 0 || info.SettlingTime <= 0 {
		t.Error("rise and settling times should be positive")
	}
}
