package control

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/huckl3b3rry87/ctrlab/internal/lti"
)

// LQR computes the optimal state feedback gain K = R^-1 B^T X minimizing
// the quadratic cost integral of x^T Q x + u^T R u, where X solves the
// continuous algebraic Riccati equation
//
//	A^T X + X A - X B R^-1 B^T X + Q = 0
func LQR(ss *lti.StateSpace, Q, R *mat.Dense) (*mat.Dense, error) {
	nx, nu, _ := ss.Dims()
	if qr, qc := Q.Dims(); qr != nx || qc != nx {
		return nil, fmt.Errorf("control: Q must be %dx%d", nx, nx)
	}
	if rr, rc := R.Dims(); rr != nu || rc != nu {
		return nil, fmt.Errorf("control: R must be %dx%d", nu, nu)
	}

	X, err := solveCARE(ss.A, ss.B, Q, R)
	if err != nil {
		return nil, err
	}

	var rinv mat.Dense
	if err := rinv.Inverse(R); err != nil {
		return nil, fmt.Errorf("control: R must be invertible: %w", err)
	}

	k := mat.NewDense(nu, nx, nil)
	var bt mat.Dense
	bt.Mul(&rinv, ss.B.T())
	k.Mul(&bt, X)
	return k, nil
}

// solveCARE finds the stabilizing Riccati solution by the matrix sign
// function of the Hamiltonian
//
//	H = [A, -B R^-1 B^T; -Q, -A^T]
//
// The stable invariant subspace spans [I; X], so sign(H)[I; X] = -[I; X]
// yields an overdetermined linear system for X.
func solveCARE(A, B, Q, R *mat.Dense) (*mat.Dense, error) {
	n, _ := A.Dims()

	var rinv mat.Dense
	if err := rinv.Inverse(R); err != nil {
		return nil, fmt.Errorf("control: R must be invertible: %w", err)
	}
	var brinv, brb mat.Dense
	brinv.Mul(B, &rinv)
	brb.Mul(&brinv, B.T())

	h := mat.NewDense(2*n, 2*n, nil)
	h.Slice(0, n, 0, n).(*mat.Dense).Copy(A)
	tl := h.Slice(0, n, n, 2*n).(*mat.Dense)
	tl.Scale(-1, &brb)
	bl := h.Slice(n, 2*n, 0, n).(*mat.Dense)
	bl.Scale(-1, Q)
	br := h.Slice(n, 2*n, n, 2*n).(*mat.Dense)
	br.Scale(-1, A.T())

	s, err := matSign(h)
	if err != nil {
		return nil, err
	}

	// Stack [S12; S22 + I] X = [-(S11 + I); -S21].
	m := mat.NewDense(2*n, n, nil)
	m.Slice(0, n, 0, n).(*mat.Dense).Copy(s.Slice(0, n, n, 2*n))
	s22 := mat.DenseCopyOf(s.Slice(n, 2*n, n, 2*n))
	for i := 0; i < n; i++ {
		s22.Set(i, i, s22.At(i, i)+1)
	}
	m.Slice(n, 2*n, 0, n).(*mat.Dense).Copy(s22)

	rhs := mat.NewDense(2*n, n, nil)
	s11 := mat.DenseCopyOf(s.Slice(0, n, 0, n))
	for i := 0; i < n; i++ {
		s11.Set(i, i, s11.At(i, i)+1)
	}
	s11.Scale(-1, s11)
	rhs.Slice(0, n, 0, n).(*mat.Dense).Copy(s11)
	s21 := mat.DenseCopyOf(s.Slice(n, 2*n, 0, n))
	s21.Scale(-1, s21)
	rhs.Slice(n, 2*n, 0, n).(*mat.Dense).Copy(s21)

	var x mat.Dense
	if err := x.Solve(m, rhs); err != nil {
		return nil, fmt.Errorf("control: riccati subspace solve failed: %w", err)
	}
	return &x, nil
}

// matSign runs the scaled Newton iteration Z <- (Z + Z^-1)/2.
func matSign(z0 *mat.Dense) (*mat.Dense, error) {
	const (
		maxIter = 100
		tol     = 1e-12
	)
	n, _ := z0.Dims()
	z := mat.DenseCopyOf(z0)

	for iter := 0; iter < maxIter; iter++ {
		var inv mat.Dense
		if err := inv.Inverse(z); err != nil {
			return nil, fmt.Errorf("control: hamiltonian sign iteration hit a singular matrix: %w", err)
		}

		// Determinant scaling accelerates convergence.
		var lu mat.LU
		lu.Factorize(z)
		det := math.Abs(lu.Det())
		c := 1.0
		if det > 0 && !math.IsInf(det, 0) {
			c = math.Pow(det, -1/float64(n))
		}

		next := mat.NewDense(n, n, nil)
		scaled := mat.NewDense(n, n, nil)
		scaled.Scale(c, z)
		invScaled := mat.NewDense(n, n, nil)
		invScaled.Scale(1/c, &inv)
		next.Add(scaled, invScaled)
		next.Scale(0.5, next)

		var diff mat.Dense
		diff.Sub(next, z)
		if mat.Norm(&diff, 1) < tol*mat.Norm(z, 1) {
			return next, nil
		}
		z = next
	}
	return nil, fmt.Errorf("control: matrix sign iteration did not converge")
}
