package ident

import (
	"fmt"
	"math"

	"github.com/huckl3b3rry87/ctrlab/internal/store"
)

// Model is a discrete-time polynomial input/output model
//
//	y[k] = -a1 y[k-1] - ... - ana y[k-na] + b1 u[k-d] + ... + bnb u[k-d-nb+1]
//
// identified at sample period Ts. A holds a1..ana (the monic leading 1 is
// implicit), B holds b1..bnb, and Delay is the input dead time d in samples.
type Model struct {
	A     []float64
	B     []float64
	Delay int
	Ts    float64
}

func (m *Model) Order() (na, nb int) {
	return len(m.A), len(m.B)
}

// start returns the first index with a full regression window.
func (m *Model) start() int {
	na, nb := m.Order()
	k := na
	if d := m.Delay + nb - 1; d > k {
		k = d
	}
	if k < 1 {
		k = 1
	}
	return k
}

// Predict computes one-step-ahead predictions using measured outputs in
// the regressor. The first start() entries repeat the measurements.
func (m *Model) Predict(d *store.Dataset) []float64 {
	n := d.Len()
	pred := make([]float64, n)
	s := m.start()
	for k := 0; k < s && k < n; k++ {
		pred[k] = d.Outputs[k]
	}
	for k := s; k < n; k++ {
		pred[k] = m.regress(d.Outputs, d.Inputs, k)
	}
	return pred
}

// Simulate computes the free-run response, feeding predictions back in
// place of measured outputs.
func (m *Model) Simulate(d *store.Dataset) []float64 {
	n := d.Len()
	out := make([]float64, n)
	s := m.start()
	for k := 0; k < s && k < n; k++ {
		out[k] = d.Outputs[k]
	}
	for k := s; k < n; k++ {
		out[k] = m.regress(out, d.Inputs, k)
	}
	return out
}

func (m *Model) regress(y, u []float64, k int) float64 {
	v := 0.0
	for i, a := range m.A {
		v -= a * y[k-1-i]
	}
	for j, b := range m.B {
		idx := k - m.Delay - j
		if idx >= 0 {
			v += b * u[idx]
		}
	}
	return v
}

// IsStable reports whether the model's autoregressive polynomial has all
// roots inside the unit circle.
func (m *Model) IsStable() bool {
	// Companion-free check via the simulated impulse response decaying.
	na := len(m.A)
	if na == 0 {
		return true
	}
	y := make([]float64, na+200)
	y[na] = 1
	for k := na + 1; k < len(y); k++ {
		v := 0.0
		for i, a := range m.A {
			v -= a * y[k-1-i]
		}
		y[k] = v
		if math.IsNaN(v) || math.Abs(v) > 1e12 {
			return false
		}
	}
	head := math.Abs(y[na])
	tail := 0.0
	for _, v := range y[len(y)-10:] {
		tail = math.Max(tail, math.Abs(v))
	}
	return tail < head
}

func (m *Model) String() string {
	return fmt.Sprintf("ident.Model{na=%d nb=%d delay=%d Ts=%g}", len(m.A), len(m.B), m.Delay, m.Ts)
}
