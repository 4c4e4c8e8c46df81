package lti

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// MotorParams are the physical constants of a brushed DC motor.
type MotorParams struct {
	R  float64 // armature resistance [ohm]
	L  float64 // armature inductance [H]
	Kt float64 // torque constant [N*m/A]
	Ke float64 // back-EMF constant [V*s/rad]
	J  float64 // rotor inertia [kg*m^2]
	B  float64 // viscous friction [N*m*s/rad]
}

// DefaultMotorParams are the bench-motor constants used by the presets.
func DefaultMotorParams() MotorParams {
	return MotorParams{
		R:  1.0,
		L:  0.5,
		Kt: 0.01,
		Ke: 0.01,
		J:  0.01,
		B:  0.1,
	}
}

func (p MotorParams) validate() error {
	if p.R <= 0 || p.L <= 0 || p.J <= 0 {
		return fmt.Errorf("lti: motor R, L and J must be positive")
	}
	if p.Kt <= 0 || p.Ke <= 0 {
		return fmt.Errorf("lti: motor constants Kt and Ke must be positive")
	}
	if p.B < 0 {
		return fmt.Errorf("lti: motor friction must be non-negative")
	}
	return nil
}

// MotorSpeed builds the voltage-to-speed model with state [current, speed]:
//
//	di/dt = (-R i - Ke w + v) / L
//	dw/dt = ( Kt i - B w     ) / J
//	y     = w
func MotorSpeed(p MotorParams) (*StateSpace, error) {
	if err := p.validate(); err != nil {
		return nil, err
	}
	A := mat.NewDense(2, 2, []float64{
		-p.R / p.L, -p.Ke / p.L,
		p.Kt / p.J, -p.B / p.J,
	})
	B := mat.NewDense(2, 1, []float64{1 / p.L, 0})
	C := mat.NewDense(1, 2, []float64{0, 1})
	return NewStateSpace(A, B, C, nil)
}

// MotorPosition builds the voltage-to-position model with state
// [current, speed, angle]; y = angle.
func MotorPosition(p MotorParams) (*StateSpace, error) {
	if err := p.validate(); err != nil {
		return nil, err
	}
	A := mat.NewDense(3, 3, []float64{
		-p.R / p.L, -p.Ke / p.L, 0,
		p.Kt / p.J, -p.B / p.J, 0,
		0, 1, 0,
	})
	B := mat.NewDense(3, 1, []float64{1 / p.L, 0, 0})
	C := mat.NewDense(1, 3, []float64{0, 0, 1})
	return NewStateSpace(A, B, C, nil)
}

// MotorSpeedTF returns the voltage-to-speed transfer function
//
//	G(s) = Kt / ((L s + R)(J s + B) + Kt Ke)
func MotorSpeedTF(p MotorParams) (*TransferFunction, error) {
	if err := p.validate(); err != nil {
		return nil, err
	}
	den := polyMul([]float64{p.L, p.R}, []float64{p.J, p.B})
	den[len(den)-1] += p.Kt * p.Ke
	return NewTransferFunction([]float64{p.Kt}, den)
}

// MotorPositionTF returns the voltage-to-position transfer function,
// the speed model cascaded with an integrator.
func MotorPositionTF(p MotorParams) (*TransferFunction, error) {
	speed, err := MotorSpeedTF(p)
	if err != nil {
		return nil, err
	}
	integ := &TransferFunction{Num: []float64{1}, Den: []float64{1, 0}}
	return speed.Series(integ)
}
