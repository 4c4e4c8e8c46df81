package mip

import (
	"fmt"
	"math"
)

// VarKind classifies a decision variable.
type VarKind int

const (
	Continuous VarKind = iota
	Integer
	Binary
)

func (k VarKind) String() string {
	switch k {
	case Continuous:
		return "continuous"
	case Integer:
		return "integer"
	case Binary:
		return "binary"
	default:
		return "unknown"
	}
}

// Variable is a bounded decision variable.
type Variable struct {
	Name  string
	Kind  VarKind
	Lower float64
	Upper float64
}

// LinearConstraint is lower <= coeffs^T x <= upper. Use +-Inf for
// one-sided rows.
type LinearConstraint struct {
	Coeffs []float64
	Lower  float64
	Upper  float64
}

// ConvexConstraint is a smooth convex inequality g(x) <= 0 with a
// gradient, the handle outer approximation needs to generate cuts.
type ConvexConstraint struct {
	Name string
	F    func(x []float64) float64
	Grad func(x []float64) []float64
}

// Problem is a mixed-integer convex program: minimize a linear objective
// over linear and smooth convex constraints with continuous, integer and
// binary variables.
type Problem struct {
	Vars      []Variable
	Objective []float64
	Linear    []LinearConstraint
	Convex    []ConvexConstraint
}

// Validate checks dimensions and bounds.
func (p *Problem) Validate() error {
	n := len(p.Vars)
	if n == 0 {
		return fmt.Errorf("mip: problem has no variables")
	}
	if len(p.Objective) != n {
		return fmt.Errorf("mip: objective has %d coefficients for %d variables", len(p.Objective), n)
	}
	for i, v := range p.Vars {
		if v.Lower > v.Upper {
			return fmt.Errorf("mip: variable %d (%s) has empty bound [%g, %g]", i, v.Name, v.Lower, v.Upper)
		}
		if v.Kind == Binary && (v.Lower < 0 || v.Upper > 1) {
			return fmt.Errorf("mip: binary variable %d (%s) must have bounds within [0, 1]", i, v.Name)
		}
		if v.Kind != Continuous && (math.IsInf(v.Lower, 0) || math.IsInf(v.Upper, 0)) {
			return fmt.Errorf("mip: integer variable %d (%s) must be bounded", i, v.Name)
		}
	}
	for i, c := range p.Linear {
		if len(c.Coeffs) != n {
			return fmt.Errorf("mip: linear constraint %d has %d coefficients for %d variables", i, len(c.Coeffs), n)
		}
	}
	for i, c := range p.Convex {
		if c.F == nil || c.Grad == nil {
			return fmt.Errorf("mip: convex constraint %d needs both value and gradient", i)
		}
	}
	return nil
}

// IntegerIndices lists the positions of integer and binary variables.
func (p *Problem) IntegerIndices() []int {
	var idx []int
	for i, v := range p.Vars {
		if v.Kind != Continuous {
			idx = append(idx, i)
		}
	}
	return idx
}

// ObjectiveValue evaluates the linear objective.
func (p *Problem) ObjectiveValue(x []float64) float64 {
	v := 0.0
	for i, c := range p.Objective {
		v += c * x[i]
	}
	return v
}

// MaxViolation returns the largest constraint violation at x, over bounds,
// linear rows and convex constraints.
func (p *Problem) MaxViolation(x []float64) float64 {
	worst := 0.0
	for i, v := range p.Vars {
		if d := v.Lower - x[i]; d > worst {
			worst = d
		}
		if d := x[i] - v.Upper; d > worst {
			worst = d
		}
	}
	for _, c := range p.Linear {
		ax := 0.0
		for i, a := range c.Coeffs {
			ax += a * x[i]
		}
		if d := c.Lower - ax; d > worst {
			worst = d
		}
		if d := ax - c.Upper; d > worst {
			worst = d
		}
	}
	for _, c := range p.Convex {
		if d := c.F(x); d > worst {
			worst = d
		}
	}
	return worst
}
