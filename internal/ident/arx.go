package ident

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/huckl3b3rry87/ctrlab/internal/store"
)

// FitARX estimates an ARX model of the requested order by linear least
// squares on the one-step regression
//
//	y[k] = phi[k]^T theta,  phi = [-y[k-1]..-y[k-na], u[k-d]..u[k-d-nb+1]]
//
// solved through a QR factorization of the regression matrix.
func FitARX(d *store.Dataset, na, nb, delay int) (*Model, error) {
	if na < 1 || nb < 1 || delay < 0 {
		return nil, fmt.Errorf("ident: need na >= 1, nb >= 1, delay >= 0, got na=%d nb=%d delay=%d", na, nb, delay)
	}
	m := &Model{A: make([]float64, na), B: make([]float64, nb), Delay: delay, Ts: d.SamplePeriod()}

	s := m.start()
	rows := d.Len() - s
	cols := na + nb
	if rows < 2*cols {
		return nil, fmt.Errorf("ident: %d samples insufficient for %d parameters", d.Len(), cols)
	}

	phi := mat.NewDense(rows, cols, nil)
	y := mat.NewDense(rows, 1, nil)
	for r := 0; r < rows; r++ {
		k := s + r
		for i := 0; i < na; i++ {
			phi.Set(r, i, -d.Outputs[k-1-i])
		}
		for j := 0; j < nb; j++ {
			idx := k - delay - j
			if idx >= 0 {
				phi.Set(r, na+j, d.Inputs[idx])
			}
		}
		y.Set(r, 0, d.Outputs[k])
	}

	var qr mat.QR
	qr.Factorize(phi)
	var theta mat.Dense
	if err := qr.SolveTo(&theta, false, y); err != nil {
		return nil, fmt.Errorf("ident: least squares solve failed: %w", err)
	}

	for i := 0; i < na; i++ {
		m.A[i] = theta.At(i, 0)
	}
	for j := 0; j < nb; j++ {
		m.B[j] = theta.At(na+j, 0)
	}
	return m, nil
}
