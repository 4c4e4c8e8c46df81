package metrics

import (
	"math"

	"github.com/huckl3b3rry87/ctrlab/internal/dynamo"
)

// TrackingError integrates |x[idx] - target| over time (IAE).
type TrackingError struct {
	name   string
	idx    int
	target float64
	sum    float64
	prevT  float64
	first  bool
}

func NewTrackingError(stateIdx int, target float64) *TrackingError {
	return &TrackingError{name: "tracking_error", idx: stateIdx, target: target, first: true}
}

func (m *TrackingError) Name() string {
	return m.name
}

func (m *TrackingError) Observe(x dynamo.State, u dynamo.Input, t float64) {
	if m.idx >= len(x) {
		return
	}
	if m.first {
		m.prevT = t
		m.first = false
		return
	}
	dt := t - m.prevT
	m.sum += math.Abs(x[m.idx]-m.target) * dt
	m.prevT = t
}

func (m *TrackingError) Value() float64 {
	return m.sum
}

func (m *TrackingError) Reset() {
	m.sum = 0
	m.first = true
}

// Settling reports the fraction of observed samples within the band
// around the target, a rough settledness score in [0, 1].
type Settling struct {
	name    string
	idx     int
	target  float64
	band    float64
	inBand  int
	samples int
}

func NewSettling(stateIdx int, target, band float64) *Settling {
	return &Settling{name: "settling", idx: stateIdx, target: target, band: band}
}

func (m *Settling) Name() string {
	return m.name
}

func (m *Settling) Observe(x dynamo.State, u dynamo.Input, t float64) {
	if m.idx >= len(x) {
		return
	}
	m.samples++
	if math.Abs(x[m.idx]-m.target) <= m.band {
		m.inBand++
	}
}

func (m *Settling) Value() float64 {
	if m.samples == 0 {
		return 0
	}
	return float64(m.inBand) / float64(m.samples)
}

func (m *Settling) Reset() {
	m.inBand = 0
	m.samples = 0
}
