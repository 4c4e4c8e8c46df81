package lti

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/huckl3b3rry87/ctrlab/internal/dynamo"
)

// StateSpace is a continuous-time linear time-invariant model
//
//	x'(t) = A x(t) + B u(t)
//	y(t)  = C x(t) + D u(t)
//
// using the traditional matrices of modern control theory.
type StateSpace struct {
	A *mat.Dense
	B *mat.Dense
	C *mat.Dense
	D *mat.Dense
}

// NewStateSpace validates dimensions and returns the model. D may be nil,
// in which case a zero feedthrough of conforming size is used.
func NewStateSpace(A, B, C, D *mat.Dense) (*StateSpace, error) {
	n, nc := A.Dims()
	if n != nc {
		return nil, fmt.Errorf("lti: A must be square, got %dx%d", n, nc)
	}
	bn, nu := B.Dims()
	if bn != n {
		return nil, fmt.Errorf("lti: B rows (%d) must match A order (%d)", bn, n)
	}
	ny, cn := C.Dims()
	if cn != n {
		return nil, fmt.Errorf("lti: C columns (%d) must match A order (%d)", cn, n)
	}
	if D == nil {
		D = mat.NewDense(ny, nu, nil)
	}
	dy, du := D.Dims()
	if dy != ny || du != nu {
		return nil, fmt.Errorf("lti: D must be %dx%d, got %dx%d", ny, nu, dy, du)
	}
	return &StateSpace{A: A, B: B, C: C, D: D}, nil
}

// Dims returns state, input and output dimensions.
func (ss *StateSpace) Dims() (nx, nu, ny int) {
	nx, _ = ss.A.Dims()
	_, nu = ss.B.Dims()
	ny, _ = ss.C.Dims()
	return nx, nu, ny
}

// Poles returns the eigenvalues of A.
func (ss *StateSpace) Poles() ([]complex128, error) {
	var eig mat.Eigen
	if ok := eig.Factorize(ss.A, mat.EigenNone); !ok {
		return nil, fmt.Errorf("lti: eigenvalue decomposition failed")
	}
	return eig.Values(nil), nil
}

// IsStable reports whether all poles lie strictly in the open left half plane.
func (ss *StateSpace) IsStable() bool {
	poles, err := ss.Poles()
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

// DCGain returns -C A^-1 B + D, the steady-state gain matrix.
// Fails if A is singular (integrating plant).
func (ss *StateSpace) DCGain() (*mat.Dense, error) {
	_, nu, ny := ss.Dims()
	var x mat.Dense
	if err := x.Solve(ss.A, ss.B); err != nil {
		return nil, fmt.Errorf("lti: dc gain undefined (A singular): %w", err)
	}
	g := mat.NewDense(ny, nu, nil)
	g.Mul(ss.C, &x)
	g.Scale(-1, g)
	g.Add(g, ss.D)
	return g, nil
}

// Derive implements dynamo.System: dx/dt = Ax + Bu.
func (ss *StateSpace) Derive(x dynamo.State, u dynamo.Input, t float64) dynamo.State {
	nx, nu, _ := ss.Dims()
	xv := mat.NewVecDense(nx, x)
	dx := mat.NewVecDense(nx, nil)
	dx.MulVec(ss.A, xv)
	if len(u) == nu && nu > 0 {
		bu := mat.NewVecDense(nx, nil)
		bu.MulVec(ss.B, mat.NewVecDense(nu, u))
		dx.AddVec(dx, bu)
	}
	out := make(dynamo.State, nx)
	copy(out, dx.RawVector().Data)
	return out
}

// Output implements dynamo.OutputSystem: y = Cx + Du.
func (ss *StateSpace) Output(x dynamo.State, u dynamo.Input, t float64) []float64 {
	nx, nu, ny := ss.Dims()
	y := mat.NewVecDense(ny, nil)
	y.MulVec(ss.C, mat.NewVecDense(nx, x))
	if len(u) == nu && nu > 0 {
		du := mat.NewVecDense(ny, nil)
		du.MulVec(ss.D, mat.NewVecDense(nu, u))
		y.AddVec(y, du)
	}
	out := make([]float64, ny)
	copy(out, y.RawVector().Data)
	return out
}

func (ss *StateSpace) StateDim() int {
	nx, _, _ := ss.Dims()
	return nx
}

func (ss *StateSpace) InputDim() int {
	_, nu, _ := ss.Dims()
	return nu
}

func (ss *StateSpace) OutputDim() int {
	_, _, ny := ss.Dims()
	return ny
}

// Controllability returns the controllability matrix [B AB ... A^(n-1)B].
func (ss *StateSpace) Controllability() *mat.Dense {
	nx, nu, _ := ss.Dims()
	ctrb := mat.NewDense(nx, nx*nu, nil)
	col := mat.DenseCopyOf(ss.B)
	for k := 0; k < nx; k++ {
		ctrb.Slice(0, nx, k*nu, (k+1)*nu).(*mat.Dense).Copy(col)
		next := mat.NewDense(nx, nu, nil)
		next.Mul(ss.A, col)
		col = next
	}
	return ctrb
}

// Feedback returns the closed-loop system x' = (A - BK)x + Br, y = Cx under
// full state feedback u = r - Kx.
func (ss *StateSpace) Feedback(K *mat.Dense) (*StateSpace, error) {
	nx, nu, _ := ss.Dims()
	kr, kc := K.Dims()
	if kr != nu || kc != nx {
		return nil, fmt.Errorf("lti: gain must be %dx%d, got %dx%d", nu, nx, kr, kc)
	}
	bk := mat.NewDense(nx, nx, nil)
	bk.Mul(ss.B, K)
	acl := mat.DenseCopyOf(ss.A)
	acl.Sub(acl, bk)
	return NewStateSpace(acl, mat.DenseCopyOf(ss.B), mat.DenseCopyOf(ss.C), mat.DenseCopyOf(ss.D))
}
