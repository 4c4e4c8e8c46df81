package mip

import (
	"context"
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/optimize/convex/lp"
)

// EnumMILP is a reference master backend: it enumerates every integer
// assignment within bounds and solves the continuous LP restriction for
// each with gonum's simplex. Only suitable for small problems; real
// deployments adapt an external MILP engine behind MILPSolver instead.
type EnumMILP struct {
	// MaxNodes caps the number of enumerated assignments.
	MaxNodes int
}

func (e *EnumMILP) maxNodes() int {
	if e.MaxNodes > 0 {
		return e.MaxNodes
	}
	return 1 << 16
}

func (e *EnumMILP) SolveMILP(ctx context.Context, p *Problem, cuts []Cut) (*Solution, error) {
	intIdx := p.IntegerIndices()
	ranges := make([][2]int, len(intIdx))
	nodes := 1
	for k, i := range intIdx {
		lo := int(math.Ceil(p.Vars[i].Lower))
		hi := int(math.Floor(p.Vars[i].Upper))
		if hi < lo {
			return &Solution{Status: StatusInfeasible}, nil
		}
		ranges[k] = [2]int{lo, hi}
		nodes *= hi - lo + 1
		if nodes > e.maxNodes() {
			return nil, fmt.Errorf("mip: enumeration exceeds %d nodes", e.maxNodes())
		}
	}

	var best *Solution
	assign := make([]int, len(intIdx))
	for k := range assign {
		assign[k] = ranges[k][0]
	}
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		sol, err := e.solveRestriction(p, cuts, intIdx, assign)
		if err != nil {
			return nil, err
		}
		if sol != nil && (best == nil || sol.Objective < best.Objective) {
			best = sol
		}

		k := 0
		for k < len(assign) {
			assign[k]++
			if assign[k] <= ranges[k][1] {
				break
			}
			assign[k] = ranges[k][0]
			k++
		}
		if k == len(assign) {
			break
		}
	}
	if best == nil {
		return &Solution{Status: StatusInfeasible}, nil
	}
	return best, nil
}

// solveRestriction solves the LP with the integer variables pinned to
// the given assignment. Returns (nil, nil) when that restriction is
// infeasible.
func (e *EnumMILP) solveRestriction(p *Problem, cuts []Cut, intIdx []int, assign []int) (*Solution, error) {
	n := len(p.Vars)

	var gRows [][]float64
	var h []float64
	addRow := func(row []float64, rhs float64) {
		gRows = append(gRows, row)
		h = append(h, rhs)
	}
	unit := func(i int, s float64) []float64 {
		r := make([]float64, n)
		r[i] = s
		return r
	}
	for i, v := range p.Vars {
		if !math.IsInf(v.Upper, 1) {
			addRow(unit(i, 1), v.Upper)
		}
		if !math.IsInf(v.Lower, -1) {
			addRow(unit(i, -1), -v.Lower)
		}
	}
	for _, c := range p.Linear {
		if !math.IsInf(c.Upper, 1) {
			addRow(append([]float64{}, c.Coeffs...), c.Upper)
		}
		if !math.IsInf(c.Lower, -1) {
			neg := make([]float64, n)
			for i, a := range c.Coeffs {
				neg[i] = -a
			}
			addRow(neg, -c.Lower)
		}
	}
	for _, c := range cuts {
		addRow(append([]float64{}, c.Coeffs...), c.RHS)
	}
	// Convert needs at least one inequality row.
	if len(gRows) == 0 {
		addRow(make([]float64, n), 1)
	}
	g := mat.NewDense(len(gRows), n, nil)
	for r, row := range gRows {
		g.SetRow(r, row)
	}

	var a mat.Matrix
	var b []float64
	if len(intIdx) > 0 {
		ad := mat.NewDense(len(intIdx), n, nil)
		for r, i := range intIdx {
			ad.Set(r, i, 1)
			b = append(b, float64(assign[r]))
		}
		a = ad
	}

	cStd, aStd, bStd := lp.Convert(p.Objective, g, h, a, b)
	opt, xStd, err := lp.Simplex(cStd, aStd, bStd, 1e-10, nil)
	if err != nil {
		if errors.Is(err, lp.ErrInfeasible) {
			return nil, nil
		}
		return nil, fmt.Errorf("mip: simplex: %w", err)
	}

	// Standard form splits each free variable into positive and negative
	// parts, laid out ahead of the slacks.
	x := make([]float64, n)
	for i := range x {
		x[i] = xStd[i] - xStd[n+i]
	}
	return &Solution{Status: StatusOptimal, X: x, Objective: opt}, nil
}

// GradConvex is a reference continuous backend: a quadratic-penalty
// projected-gradient method for the fixed-integer subproblem. Adequate
// for small smooth problems and for testing the coordinator.
type GradConvex struct {
	// Iterations per penalty level.
	Iterations int
}

func (g *GradConvex) iters() int {
	if g.Iterations > 0 {
		return g.Iterations
	}
	return 400
}

func (g *GradConvex) SolveFixed(ctx context.Context, p *Problem, fixed map[int]float64) (*Solution, error) {
	n := len(p.Vars)
	x := make([]float64, n)
	for i, v := range p.Vars {
		switch {
		case !math.IsInf(v.Lower, -1) && !math.IsInf(v.Upper, 1):
			x[i] = (v.Lower + v.Upper) / 2
		case !math.IsInf(v.Lower, -1):
			x[i] = v.Lower
		case !math.IsInf(v.Upper, 1):
			x[i] = v.Upper
		}
	}
	projectBox(p, fixed, x)

	for mu := 10.0; mu <= 1e8; mu *= 10 {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		g.descend(p, fixed, x, mu)
	}

	if p.MaxViolation(x) > 1e-6 {
		return &Solution{Status: StatusInfeasible}, nil
	}
	return &Solution{Status: StatusOptimal, X: x, Objective: p.ObjectiveValue(x)}, nil
}

func (g *GradConvex) descend(p *Problem, fixed map[int]float64, x []float64, mu float64) {
	step := 1.0
	cand := make([]float64, len(x))
	for k := 0; k < g.iters(); k++ {
		f0, grad := penalty(p, x, mu)
		moved := false
		for step > 1e-15 {
			for i := range x {
				cand[i] = x[i] - step*grad[i]
			}
			projectBox(p, fixed, cand)
			if f1, _ := penalty(p, cand, mu); f1 < f0 {
				copy(x, cand)
				step *= 1.5
				moved = true
				break
			}
			step *= 0.5
		}
		if !moved {
			return
		}
	}
}

// penalty evaluates c^T x plus quadratic penalties on linear and convex
// violations, and its gradient.
func penalty(p *Problem, x []float64, mu float64) (float64, []float64) {
	n := len(x)
	f := p.ObjectiveValue(x)
	grad := append([]float64{}, p.Objective...)

	for _, c := range p.Linear {
		ax := 0.0
		for i, a := range c.Coeffs {
			ax += a * x[i]
		}
		if d := ax - c.Upper; !math.IsInf(c.Upper, 1) && d > 0 {
			f += mu * d * d
			for i, a := range c.Coeffs {
				grad[i] += 2 * mu * d * a
			}
		}
		if d := c.Lower - ax; !math.IsInf(c.Lower, -1) && d > 0 {
			f += mu * d * d
			for i, a := range c.Coeffs {
				grad[i] -= 2 * mu * d * a
			}
		}
	}
	for _, c := range p.Convex {
		if v := c.F(x); v > 0 {
			f += mu * v * v
			cg := c.Grad(x)
			for i := 0; i < n; i++ {
				grad[i] += 2 * mu * v * cg[i]
			}
		}
	}
	return f, grad
}

func projectBox(p *Problem, fixed map[int]float64, x []float64) {
	for i, v := range p.Vars {
		if f, ok := fixed[i]; ok {
			x[i] = f
			continue
		}
		x[i] = math.Min(math.Max(x[i], v.Lower), v.Upper)
	}
}
