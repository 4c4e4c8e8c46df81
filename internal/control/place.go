package control

import (
	"fmt"
	"math"
	"math/cmplx"

	"gonum.org/v1/gonum/mat"

	"github.com/huckl3b3rry87/ctrlab/internal/lti"
)

// Place computes the single-input state feedback gain K such that the
// eigenvalues of A - BK are the requested poles, using Ackermann's formula
//
//	K = [0 ... 0 1] Ctrb^-1 phi(A)
//
// where phi is the desired characteristic polynomial. The pole set must be
// closed under conjugation and match the system order.
func Place(ss *lti.StateSpace, poles []complex128) (*mat.Dense, error) {
	nx, nu, _ := ss.Dims()
	if nu != 1 {
		return nil, fmt.Errorf("control: pole placement requires a single-input system, got %d inputs", nu)
	}
	if len(poles) != nx {
		return nil, fmt.Errorf("control: need %d poles for an order-%d system, got %d", nx, nx, len(poles))
	}

	coeffs, err := realPoly(poles)
	if err != nil {
		return nil, err
	}

	// phi(A) by Horner iteration on matrices.
	phi := mat.NewDense(nx, nx, nil)
	for i := 0; i < nx; i++ {
		phi.Set(i, i, coeffs[0])
	}
	for _, c := range coeffs[1:] {
		var next mat.Dense
		next.Mul(phi, ss.A)
		for i := 0; i < nx; i++ {
			next.Set(i, i, next.At(i, i)+c)
		}
		phi = mat.DenseCopyOf(&next)
	}

	ctrb := ss.Controllability()
	var inv mat.Dense
	if err := inv.Inverse(ctrb); err != nil {
		return nil, fmt.Errorf("control: system is not controllable: %w", err)
	}

	// Last row of Ctrb^-1 times phi(A).
	lastRow := mat.NewDense(1, nx, nil)
	for j := 0; j < nx; j++ {
		lastRow.Set(0, j, inv.At(nx-1, j))
	}
	k := mat.NewDense(1, nx, nil)
	k.Mul(lastRow, phi)
	return k, nil
}

// realPoly expands prod(s - p_i) and verifies the coefficients are real,
// i.e. the pole set is closed under conjugation.
func realPoly(roots []complex128) ([]float64, error) {
	coeffs := []complex128{1}
	for _, r := range roots {
		next := make([]complex128, len(coeffs)+1)
		for i, c := range coeffs {
			next[i] += c
			next[i+1] -= c * r
		}
		coeffs = next
	}
	out := make([]float64, len(coeffs))
	for i, c := range coeffs {
		if math.Abs(imag(c)) > 1e-8*(1+cmplx.Abs(c)) {
			return nil, fmt.Errorf("control: pole set is not conjugate-symmetric")
		}
		out[i] = real(c)
	}
	return out, nil
}

// DominantPoles returns damping ratio and natural frequency of the pole
// pair closest to the imaginary axis.
func DominantPoles(poles []complex128) (zeta, wn float64) {
	if len(poles) == 0 {
		return 0, 0
	}
	dominant := poles[0]
	for _, p := range poles[1:] {
		if real(p) > real(dominant) {
			dominant = p
		}
	}
	wn = cmplx.Abs(dominant)
	if wn == 0 {
		return 0, 0
	}
	zeta = -real(dominant) / wn
	return zeta, wn
}

// PolesFromSpec converts a damping-ratio / natural-frequency requirement
// into a dominant second-order pole pair, padding higher-order systems
// with fast real poles.
func PolesFromSpec(zeta, wn float64, order int) ([]complex128, error) {
	if zeta <= 0 || zeta > 1 || wn <= 0 {
		return nil, fmt.Errorf("control: need 0 < zeta <= 1 and wn > 0, got zeta=%g wn=%g", zeta, wn)
	}
	if order < 2 {
		return nil, fmt.Errorf("control: dominant-pair design needs order >= 2, got %d", order)
	}
	re := -zeta * wn
	im := wn * math.Sqrt(1-zeta*zeta)
	poles := []complex128{complex(re, im), complex(re, -im)}
	// Non-dominant poles a decade faster on the real axis.
	for i := 2; i < order; i++ {
		poles = append(poles, complex(10*re-float64(i-2)*wn, 0))
	}
	return poles, nil
}
