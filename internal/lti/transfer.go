package lti

import (
	"fmt"
	"math"
	"math/cmplx"

	"gonum.org/v1/gonum/mat"
)

// TransferFunction is a rational transfer function in the Laplace variable,
//
//	G(s) = Num(s) / Den(s)
//
// with coefficients stored in descending powers of s.
type TransferFunction struct {
	Num []float64
	Den []float64
}

// NewTransferFunction trims leading zero coefficients and validates that the
// denominator is nonzero and the function is proper (deg Num <= deg Den).
func NewTransferFunction(num, den []float64) (*TransferFunction, error) {
	num = trimLeadingZeros(num)
	den = trimLeadingZeros(den)
	if len(den) == 0 || (len(den) == 1 && den[0] == 0) {
		return nil, fmt.Errorf("lti: zero denominator polynomial")
	}
	if len(num) == 0 {
		num = []float64{0}
	}
	if len(num) > len(den) {
		return nil, fmt.Errorf("lti: improper transfer function (deg num %d > deg den %d)",
			len(num)-1, len(den)-1)
	}
	return &TransferFunction{Num: num, Den: den}, nil
}

// Monic scales both polynomials so the denominator's leading coefficient is 1.
func (g *TransferFunction) Monic() *TransferFunction {
	lead := g.Den[0]
	num := make([]float64, len(g.Num))
	den := make([]float64, len(g.Den))
	for i, v := range g.Num {
		num[i] = v / lead
	}
	for i, v := range g.Den {
		den[i] = v / lead
	}
	return &TransferFunction{Num: num, Den: den}
}

// Eval evaluates G(s) at a complex frequency.
func (g *TransferFunction) Eval(s complex128) complex128 {
	return polyEval(g.Num, s) / polyEval(g.Den, s)
}

// Poles returns the roots of the denominator.
func (g *TransferFunction) Poles() ([]complex128, error) {
	return PolyRoots(g.Den)
}

// Zeros returns the roots of the numerator.
func (g *TransferFunction) Zeros() ([]complex128, error) {
	return PolyRoots(g.Num)
}

// DCGain returns G(0). Infinite for integrating plants.
func (g *TransferFunction) DCGain() float64 {
	den := g.Den[len(g.Den)-1]
	if den == 0 {
		return math.Inf(1)
	}
	return g.Num[len(g.Num)-1] / den
}

// IsStable reports whether all poles lie strictly in the open left half plane.
func (g *TransferFunction) IsStable() bool {
	poles, err := g.Poles()
	if err != nil {
		return false
	}
	for _, p := range poles {
		if real(p) >= 0 {
			return false
		}
	}
	return true
}

// Series returns g*h, the cascade interconnection.
func (g *TransferFunction) Series(h *TransferFunction) (*TransferFunction, error) {
	return NewTransferFunction(polyMul(g.Num, h.Num), polyMul(g.Den, h.Den))
}

// Gain returns k*g.
func (g *TransferFunction) Gain(k float64) *TransferFunction {
	num := make([]float64, len(g.Num))
	for i, v := range g.Num {
		num[i] = k * v
	}
	den := make([]float64, len(g.Den))
	copy(den, g.Den)
	return &TransferFunction{Num: num, Den: den}
}

// Feedback returns the unity negative feedback loop k*g / (1 + k*g).
func (g *TransferFunction) Feedback(k float64) (*TransferFunction, error) {
	kn := make([]float64, len(g.Num))
	for i, v := range g.Num {
		kn[i] = k * v
	}
	return NewTransferFunction(kn, polyAdd(g.Den, kn))
}

// ToStateSpace realizes the transfer function in controllable canonical form.
func (g *TransferFunction) ToStateSpace() (*StateSpace, error) {
	m := g.Monic()
	n := len(m.Den) - 1
	if n == 0 {
		return nil, fmt.Errorf("lti: static gain has no state-space realization")
	}

	// Pad numerator to n+1 coefficients: b0 s^n + ... + bn.
	b := make([]float64, n+1)
	copy(b[n+1-len(m.Num):], m.Num)
	a := m.Den[1:] // a1 ... an

	A := mat.NewDense(n, n, nil)
	for i := 0; i < n-1; i++ {
		A.Set(i, i+1, 1)
	}
	for j := 0; j < n; j++ {
		A.Set(n-1, j, -a[n-1-j])
	}

	B := mat.NewDense(n, 1, nil)
	B.Set(n-1, 0, 1)

	// Strictly proper remainder after removing the direct feedthrough b0.
	C := mat.NewDense(1, n, nil)
	for j := 0; j < n; j++ {
		C.Set(0, j, b[n-j]-a[n-1-j]*b[0])
	}

	D := mat.NewDense(1, 1, []float64{b[0]})
	return NewStateSpace(A, B, C, D)
}

// FromStateSpace converts a SISO state-space model to a transfer function
// using the Faddeev-LeVerrier resolvent expansion:
//
//	(sI-A)^-1 = (T0 s^(n-1) + ... + T_{n-1}) / charpoly(s)
func FromStateSpace(ss *StateSpace) (*TransferFunction, error) {
	nx, nu, ny := ss.Dims()
	if nu != 1 || ny != 1 {
		return nil, fmt.Errorf("lti: transfer function conversion requires SISO, got %d inputs %d outputs", nu, ny)
	}

	den := make([]float64, nx+1)
	den[0] = 1
	num := make([]float64, nx+1)

	T := eye(nx)
	for k := 1; k <= nx; k++ {
		// num coefficient of s^(n-k) is C T_{k-1} B.
		var ct, ctb mat.Dense
		ct.Mul(ss.C, T)
		ctb.Mul(&ct, ss.B)
		num[k] = ctb.At(0, 0)

		var m mat.Dense
		m.Mul(ss.A, T)
		tr := 0.0
		for i := 0; i < nx; i++ {
			tr += m.At(i, i)
		}
		den[k] = -tr / float64(k)

		T = mat.DenseCopyOf(&m)
		for i := 0; i < nx; i++ {
			T.Set(i, i, T.At(i, i)+den[k])
		}
	}

	d := ss.D.At(0, 0)
	if d != 0 {
		for i := range den {
			num[i] += d * den[i]
		}
	}
	return NewTransferFunction(num, den)
}

// PolyRoots computes the roots of a real polynomial (descending coefficients)
// as the eigenvalues of its companion matrix.
func PolyRoots(coeffs []float64) ([]complex128, error) {
	coeffs = trimLeadingZeros(coeffs)
	n := len(coeffs) - 1
	if n <= 0 {
		return nil, nil
	}

	comp := mat.NewDense(n, n, nil)
	for i := 1; i < n; i++ {
		comp.Set(i, i-1, 1)
	}
	for i := 0; i < n; i++ {
		comp.Set(i, n-1, -coeffs[n-i]/coeffs[0])
	}

	var eig mat.Eigen
	if ok := eig.Factorize(comp, mat.EigenNone); !ok {
		return nil, fmt.Errorf("lti: companion matrix eigenvalue decomposition failed")
	}
	return eig.Values(nil), nil
}

func polyEval(coeffs []float64, s complex128) complex128 {
	var acc complex128
	for _, c := range coeffs {
		acc = acc*s + complex(c, 0)
	}
	return acc
}

func polyMul(a, b []float64) []float64 {
	out := make([]float64, len(a)+len(b)-1)
	for i, av := range a {
		for j, bv := range b {
			out[i+j] += av * bv
		}
	}
	return out
}

func polyAdd(a, b []float64) []float64 {
	n := len(a)
	if len(b) > n {
		n = len(b)
	}
	out := make([]float64, n)
	copy(out[n-len(a):], a)
	for i, bv := range b {
		out[n-len(b)+i] += bv
	}
	return out
}

func trimLeadingZeros(coeffs []float64) []float64 {
	i := 0
	for i < len(coeffs)-1 && coeffs[i] == 0 {
		i++
	}
	if i == len(coeffs) {
		return nil
	}
	return coeffs[i:]
}

func eye(n int) *mat.Dense {
	m := mat.NewDense(n, n, nil)
	for i := 0; i < n; i++ {
		m.Set(i, i, 1)
	}
	return m
}

// SortRoots orders roots by real part then imaginary part, for stable
// comparison against requested pole locations.
func SortRoots(roots []complex128) []complex128 {
	out := make([]complex128, len(roots))
	copy(out, roots)
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && rootLess(out[j], out[j-1]); j-- {
			out[j], out[j-1] = out[j-1], out[j]
		}
	}
	return out
}

func rootLess(a, b complex128) bool {
	if real(a) != real(b) {
		return real(a) < real(b)
	}
	return imag(a) < imag(b)
}

// MaxRootDistance returns the largest pairwise distance between two sorted
// root sets, used to compare achieved against requested pole locations.
func MaxRootDistance(got, want []complex128) float64 {
	g := SortRoots(got)
	w := SortRoots(want)
	if len(g) != len(w) {
		return math.Inf(1)
	}
	maxDist := 0.0
	for i := range g {
		if d := cmplx.Abs(g[i] - w[i]); d > maxDist {
			maxDist = d
		}
	}
	return maxDist
}
