package lti

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// Discrete is a sampled linear model
//
//	x[k+1] = Ad x[k] + Bd u[k]
//	y[k]   = Cd x[k] + Dd u[k]
//
// with sample period Ts.
type Discrete struct {
	A  *mat.Dense
	B  *mat.Dense
	C  *mat.Dense
	D  *mat.Dense
	Ts float64
}

// Propagate returns the next state for one sample step.
func (d *Discrete) Propagate(x, u []float64) []float64 {
	nx, _ := d.A.Dims()
	_, nu := d.B.Dims()
	next := mat.NewVecDense(nx, nil)
	next.MulVec(d.A, mat.NewVecDense(nx, x))
	if len(u) == nu && nu > 0 {
		bu := mat.NewVecDense(nx, nil)
		bu.MulVec(d.B, mat.NewVecDense(nu, u))
		next.AddVec(next, bu)
	}
	out := make([]float64, nx)
	copy(out, next.RawVector().Data)
	return out
}

// Output returns y[k] for the given state and input.
func (d *Discrete) Output(x, u []float64) []float64 {
	nx, _ := d.A.Dims()
	_, nu := d.B.Dims()
	ny, _ := d.C.Dims()
	y := mat.NewVecDense(ny, nil)
	y.MulVec(d.C, mat.NewVecDense(nx, x))
	if len(u) == nu && nu > 0 {
		du := mat.NewVecDense(ny, nil)
		du.MulVec(d.D, mat.NewVecDense(nu, u))
		y.AddVec(y, du)
	}
	out := make([]float64, ny)
	copy(out, y.RawVector().Data)
	return out
}

// Poles returns the eigenvalues of Ad.
func (d *Discrete) Poles() ([]complex128, error) {
	var eig mat.Eigen
	if ok := eig.Factorize(d.A, mat.EigenNone); !ok {
		return nil, fmt.Errorf("lti: eigenvalue decomposition failed")
	}
	return eig.Values(nil), nil
}

// DiscretizeZOH converts a continuous model to discrete time under a
// zero-order hold on the input, via the augmented matrix exponential
//
//	exp([A B; 0 0] Ts) = [Ad Bd; 0 I]
func DiscretizeZOH(ss *StateSpace, ts float64) (*Discrete, error) {
	if ts <= 0 {
		return nil, fmt.Errorf("lti: sample period must be positive, got %g", ts)
	}
	nx, nu, _ := ss.Dims()

	aug := mat.NewDense(nx+nu, nx+nu, nil)
	aug.Slice(0, nx, 0, nx).(*mat.Dense).Copy(ss.A)
	aug.Slice(0, nx, nx, nx+nu).(*mat.Dense).Copy(ss.B)
	aug.Scale(ts, aug)

	var e mat.Dense
	e.Exp(aug)

	ad := mat.DenseCopyOf(e.Slice(0, nx, 0, nx))
	bd := mat.DenseCopyOf(e.Slice(0, nx, nx, nx+nu))
	return &Discrete{
		A:  ad,
		B:  bd,
		C:  mat.DenseCopyOf(ss.C),
		D:  mat.DenseCopyOf(ss.D),
		Ts: ts,
	}, nil
}

// DiscretizeTustin converts a continuous model to discrete time with the
// bilinear (trapezoidal) transform.
func DiscretizeTustin(ss *StateSpace, ts float64) (*Discrete, error) {
	if ts <= 0 {
		return nil, fmt.Errorf("lti: sample period must be positive, got %g", ts)
	}
	nx, nu, ny := ss.Dims()

	// E = I - A Ts/2
	e := eye(nx)
	half := mat.NewDense(nx, nx, nil)
	half.Scale(ts/2, ss.A)
	e.Sub(e, half)

	// F = I + A Ts/2
	f := eye(nx)
	f.Add(f, half)

	var ad mat.Dense
	if err := ad.Solve(e, f); err != nil {
		return nil, fmt.Errorf("lti: tustin transform singular at Ts=%g: %w", ts, err)
	}

	bts := mat.NewDense(nx, nu, nil)
	bts.Scale(ts, ss.B)
	var bd mat.Dense
	if err := bd.Solve(e, bts); err != nil {
		return nil, fmt.Errorf("lti: tustin transform singular at Ts=%g: %w", ts, err)
	}

	var einv mat.Dense
	if err := einv.Solve(e, eye(nx)); err != nil {
		return nil, fmt.Errorf("lti: tustin transform singular at Ts=%g: %w", ts, err)
	}
	cd := mat.NewDense(ny, nx, nil)
	cd.Mul(ss.C, &einv)

	dd := mat.NewDense(ny, nu, nil)
	dd.Mul(cd, ss.B)
	dd.Scale(ts/2, dd)
	dd.Add(dd, ss.D)

	return &Discrete{
		A:  &ad,
		B:  &bd,
		C:  cd,
		D:  dd,
		Ts: ts,
	}, nil
}
