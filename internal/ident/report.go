package ident

import (
	"errors"
	"math"

	"github.com/huckl3b3rry87/ctrlab/internal/store"
)

// ErrUnstableModel indicates an identified model whose free-run response
// diverges.
var ErrUnstableModel = errors.New("ident: unstable model")

// Report summarizes model quality on a dataset.
type Report struct {
	RMSE         float64 // one-step prediction error
	SimRMSE      float64 // free-run simulation error
	FitPercent   float64 // 100 * (1 - ||y - ysim|| / ||y - mean(y)||)
	BaselineRMSE float64 // constant-mean predictor error
}

// Evaluate computes prediction and simulation quality for the model on
// (typically held-out) data.
func Evaluate(m *Model, d *store.Dataset) Report {
	s := m.start()
	pred := m.Predict(d)
	ysim := m.Simulate(d)

	mean := 0.0
	n := 0
	for k := s; k < d.Len(); k++ {
		mean += d.Outputs[k]
		n++
	}
	if n == 0 {
		return Report{}
	}
	mean /= float64(n)

	var ssPred, ssSim, ssMean float64
	for k := s; k < d.Len(); k++ {
		ep := d.Outputs[k] - pred[k]
		es := d.Outputs[k] - ysim[k]
		em := d.Outputs[k] - mean
		ssPred += ep * ep
		ssSim += es * es
		ssMean += em * em
	}

	rep := Report{
		RMSE:         math.Sqrt(ssPred / float64(n)),
		SimRMSE:      math.Sqrt(ssSim / float64(n)),
		BaselineRMSE: math.Sqrt(ssMean / float64(n)),
	}
	if ssMean > 0 {
		rep.FitPercent = 100 * (1 - math.Sqrt(ssSim/ssMean))
	}
	return rep
}

// Residuals returns one-step prediction residuals, aligned with the
// dataset (leading entries are zero).
func Residuals(m *Model, d *store.Dataset) []float64 {
	pred := m.Predict(d)
	out := make([]float64, d.Len())
	for k := m.start(); k < d.Len(); k++ {
		out[k] = d.Outputs[k] - pred[k]
	}
	return out
}
