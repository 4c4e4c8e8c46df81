package ident

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/huckl3b3rry87/ctrlab/internal/store"
)

// OEOptions tune the output-error prediction-error minimization.
type OEOptions struct {
	MaxIterations int
	Tolerance     float64 // relative cost improvement threshold
	LambdaInit    float64 // initial Levenberg-Marquardt damping
}

func DefaultOEOptions() OEOptions {
	return OEOptions{
		MaxIterations: 50,
		Tolerance:     1e-9,
		LambdaInit:    1e-3,
	}
}

// FitOE estimates an output-error model by minimizing the free-run
// simulation residuals with a Levenberg-Marquardt iteration, seeded by the
// ARX estimate. This is the prediction-error method specialized to the
// output-error structure: the loss is the sum of squared simulated-output
// errors, and the Jacobian is formed by forward differences on the
// parameter vector.
func FitOE(d *store.Dataset, na, nb, delay int, opts OEOptions) (*Model, error) {
	m, err := FitARX(d, na, nb, delay)
	if err != nil {
		return nil, err
	}
	if opts.MaxIterations <= 0 {
		return m, nil
	}

	theta := append(append([]float64{}, m.A...), m.B...)
	cost := oeCost(theta, na, nb, delay, m.Ts, d)
	lambda := opts.LambdaInit

	for iter := 0; iter < opts.MaxIterations; iter++ {
		jac, res := oeJacobian(theta, na, nb, delay, m.Ts, d)

		var jtj mat.Dense
		jtj.Mul(jac.T(), jac)
		var jtr mat.VecDense
		jtr.MulVec(jac.T(), res)

		improved := false
		for try := 0; try < 8; try++ {
			damped := mat.DenseCopyOf(&jtj)
			n, _ := damped.Dims()
			for i := 0; i < n; i++ {
				damped.Set(i, i, damped.At(i, i)*(1+lambda))
			}

			var step mat.VecDense
			if err := step.SolveVec(damped, &jtr); err != nil {
				lambda *= 10
				continue
			}

			trial := make([]float64, len(theta))
			for i := range theta {
				trial[i] = theta[i] - step.AtVec(i)
			}

			trialCost := oeCost(trial, na, nb, delay, m.Ts, d)
			if trialCost < cost {
				rel := (cost - trialCost) / math.Max(cost, 1e-30)
				theta = trial
				cost = trialCost
				lambda = math.Max(lambda/10, 1e-12)
				improved = true
				if rel < opts.Tolerance {
					iter = opts.MaxIterations
				}
				break
			}
			lambda *= 10
		}
		if !improved {
			break
		}
	}

	out := &Model{A: theta[:na], B: theta[na:], Delay: delay, Ts: m.Ts}
	if !out.IsStable() {
		// Fall back to the equation-error estimate rather than return a
		// model whose free run diverges.
		return m, fmt.Errorf("ident: output-error refinement produced an unstable model: %w", ErrUnstableModel)
	}
	return out, nil
}

func oeCost(theta []float64, na, nb, delay int, ts float64, d *store.Dataset) float64 {
	m := &Model{A: theta[:na], B: theta[na:], Delay: delay, Ts: ts}
	ysim := m.Simulate(d)
	cost := 0.0
	for k := m.start(); k < d.Len(); k++ {
		e := d.Outputs[k] - ysim[k]
		if math.IsNaN(e) || math.IsInf(e, 0) {
			return math.Inf(1)
		}
		cost += e * e
	}
	return cost
}

// oeJacobian returns d(residual)/d(theta) by forward differences and the
// residual vector at theta.
func oeJacobian(theta []float64, na, nb, delay int, ts float64, d *store.Dataset) (*mat.Dense, *mat.VecDense) {
	m := &Model{A: theta[:na], B: theta[na:], Delay: delay, Ts: ts}
	base := m.Simulate(d)
	s := m.start()
	rows := d.Len() - s

	res := mat.NewVecDense(rows, nil)
	for r := 0; r < rows; r++ {
		res.SetVec(r, base[s+r]-d.Outputs[s+r])
	}

	jac := mat.NewDense(rows, len(theta), nil)
	for p := range theta {
		h := 1e-7 * math.Max(math.Abs(theta[p]), 1)
		bumped := append([]float64{}, theta...)
		bumped[p] += h
		mb := &Model{A: bumped[:na], B: bumped[na:], Delay: delay, Ts: ts}
		ysim := mb.Simulate(d)
		for r := 0; r < rows; r++ {
			jac.Set(r, p, (ysim[s+r]-base[s+r])/h)
		}
	}
	return jac, res
}
