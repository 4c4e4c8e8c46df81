package signal

import (
	"math"

	"github.com/huckl3b3rry87/ctrlab/internal/dynamo"
)

// Waveform is a scalar excitation signal u(t).
type Waveform interface {
	At(t float64) float64
}

// Step is a delayed step of the given amplitude.
type Step struct {
	Amplitude float64
	Delay     float64
}

func (s Step) At(t float64) float64 {
	if t < s.Delay {
		return 0
	}
	return s.Amplitude
}

// Doublet is a symmetric pulse pair, a common identification input.
type Doublet struct {
	Amplitude float64
	Start     float64
	Width     float64
}

func (d Doublet) At(t float64) float64 {
	switch {
	case t < d.Start:
		return 0
	case t < d.Start+d.Width:
		return d.Amplitude
	case t < d.Start+2*d.Width:
		return -d.Amplitude
	default:
		return 0
	}
}

// Sine is a fixed-frequency sinusoid. Freq is in Hz.
type Sine struct {
	Amplitude float64
	Freq      float64
	Phase     float64
}

func (s Sine) At(t float64) float64 {
	return s.Amplitude * math.Sin(2*math.Pi*s.Freq*t+s.Phase)
}

// Chirp sweeps linearly from F0 to F1 Hz over Duration.
type Chirp struct {
	Amplitude float64
	F0        float64
	F1        float64
	Duration  float64
}

func (c Chirp) At(t float64) float64 {
	if c.Duration <= 0 {
		return 0
	}
	k := (c.F1 - c.F0) / c.Duration
	phase := 2 * math.Pi * (c.F0*t + k*t*t/2)
	return c.Amplitude * math.Sin(phase)
}

// PRBS is a pseudo-random binary sequence switching between +/- Amplitude
// with the given bit period. The sequence is a pure function of the seed,
// so runs are reproducible.
type PRBS struct {
	Amplitude float64
	BitPeriod float64
	Seed      int64
}

func (p PRBS) At(t float64) float64 {
	if p.BitPeriod <= 0 || t < 0 {
		return 0
	}
	idx := uint64(t / p.BitPeriod)
	if bitAt(idx, uint64(p.Seed)) {
		return p.Amplitude
	}
	return -p.Amplitude
}

// bitAt hashes the bit index with the seed (splitmix64 finalizer) and
// takes the top bit.
func bitAt(idx, seed uint64) bool {
	z := idx + seed + 0x9e3779b97f4a7c15
	z = (z ^ (z >> 30)) * 0xbf58476d1ce4e5b9
	z = (z ^ (z >> 27)) * 0x94d049bb133111eb
	z ^= z >> 31
	return z>>63 == 1
}

// openLoop drives a plant input channel from a waveform, with no feedback.
type openLoop struct {
	w   Waveform
	dim int
}

// AsController adapts a waveform to the controller interface so open-loop
// excitation runs through the same simulation loop as closed-loop control.
// The waveform drives input channel 0; remaining channels are zero.
func AsController(w Waveform, dim int) dynamo.Controller {
	return &openLoop{w: w, dim: dim}
}

func (o *openLoop) Compute(x dynamo.State, t float64) dynamo.Input {
	u := make(dynamo.Input, o.dim)
	if o.dim > 0 {
		u[0] = o.w.At(t)
	}
	return u
}
