package mip

import (
	"context"
	"fmt"
	"math"
	"time"
)

// OuterApprox coordinates a MILP master with a continuous convex
// subproblem solver. Each round solves the polyhedral relaxation for a
// lower bound and an integer assignment, then the convex subproblem at
// that assignment for a feasible incumbent, and adds gradient cuts
//
//	g(x0) + grad g(x0)^T (x - x0) <= 0
//
// linearizing each convex constraint at the visited points. Iteration
// stops when the relative gap between bounds closes.
type OuterApprox struct {
	milp   MILPSolver
	convex ConvexSolver
	opts   Options
}

func NewOuterApprox(milp MILPSolver, convex ConvexSolver, opts Options) *OuterApprox {
	if opts.MaxIterations <= 0 {
		opts.MaxIterations = DefaultOptions().MaxIterations
	}
	if opts.RelGap <= 0 {
		opts.RelGap = DefaultOptions().RelGap
	}
	return &OuterApprox{milp: milp, convex: convex, opts: opts}
}

// Solve runs the outer-approximation loop. The returned solution carries
// the best incumbent on StatusOptimal and StatusUserLimit.
func (oa *OuterApprox) Solve(ctx context.Context, p *Problem) (*Solution, error) {
	if err := p.Validate(); err != nil {
		return &Solution{Status: StatusError}, err
	}

	deadline := time.Time{}
	if oa.opts.TimeLimit > 0 {
		deadline = time.Now().Add(oa.opts.TimeLimit)
	}

	var cuts []Cut
	lower := math.Inf(-1)
	upper := math.Inf(1)
	var incumbent []float64
	intIdx := p.IntegerIndices()

	for iter := 1; iter <= oa.opts.MaxIterations; iter++ {
		if err := ctx.Err(); err != nil {
			return oa.limitSolution(incumbent, p, lower, upper, iter), nil
		}
		if !deadline.IsZero() && time.Now().After(deadline) {
			return oa.limitSolution(incumbent, p, lower, upper, iter), nil
		}

		master, err := oa.milp.SolveMILP(ctx, p, cuts)
		if err != nil {
			return &Solution{Status: StatusError, Iterations: iter}, fmt.Errorf("mip: master solve: %w", err)
		}
		switch master.Status {
		case StatusOptimal:
		case StatusInfeasible:
			// The polyhedral relaxation is a superset of the feasible
			// region, so an infeasible master proves infeasibility.
			return &Solution{Status: StatusInfeasible, Iterations: iter}, nil
		default:
			return &Solution{Status: master.Status, Iterations: iter}, nil
		}

		if master.Objective > lower {
			lower = master.Objective
		}

		added := oa.addCuts(p, master.X, &cuts)

		fixed := make(map[int]float64, len(intIdx))
		for _, i := range intIdx {
			fixed[i] = math.Round(master.X[i])
		}
		sub, err := oa.convex.SolveFixed(ctx, p, fixed)
		if err != nil {
			return &Solution{Status: StatusError, Iterations: iter}, fmt.Errorf("mip: subproblem solve: %w", err)
		}

		if sub.Status == StatusOptimal {
			if obj := p.ObjectiveValue(sub.X); obj < upper {
				upper = obj
				incumbent = append([]float64{}, sub.X...)
			}
			if !oa.opts.MIPDriven {
				added += oa.addCuts(p, sub.X, &cuts)
			}
		}

		gap := relGap(lower, upper)
		if oa.opts.Logger != nil {
			oa.opts.Logger.Info("outer approximation iteration",
				"iter", iter, "lower", lower, "upper", upper, "gap", gap, "cuts", len(cuts))
		}

		if incumbent != nil && gap <= oa.opts.RelGap {
			return &Solution{
				Status:     StatusOptimal,
				X:          incumbent,
				Objective:  upper,
				Gap:        gap,
				Iterations: iter,
			}, nil
		}

		// No violated constraint anywhere and no new information: the
		// master point itself is feasible for the full problem.
		if added == 0 && sub.Status != StatusOptimal {
			if p.MaxViolation(master.X) <= 1e-9 {
				return &Solution{
					Status:     StatusOptimal,
					X:          master.X,
					Objective:  master.Objective,
					Gap:        0,
					Iterations: iter,
				}, nil
			}
			return &Solution{Status: StatusInfeasible, Iterations: iter}, nil
		}
	}

	return oa.limitSolution(incumbent, p, lower, upper, oa.opts.MaxIterations), nil
}

// addCuts linearizes every convex constraint violated at x0 and appends
// the resulting cuts, returning how many were added.
func (oa *OuterApprox) addCuts(p *Problem, x0 []float64, cuts *[]Cut) int {
	added := 0
	for _, c := range p.Convex {
		v := c.F(x0)
		if v <= 1e-9 {
			continue
		}
		grad := c.Grad(x0)
		coeffs := make([]float64, len(x0))
		rhs := -v
		for i := range x0 {
			coeffs[i] = grad[i]
			rhs += grad[i] * x0[i]
		}
		*cuts = append(*cuts, Cut{Coeffs: coeffs, RHS: rhs})
		added++
	}
	return added
}

func (oa *OuterApprox) limitSolution(incumbent []float64, p *Problem, lower, upper float64, iter int) *Solution {
	s := &Solution{Status: StatusUserLimit, Gap: relGap(lower, upper), Iterations: iter}
	if incumbent != nil {
		s.X = incumbent
		s.Objective = upper
	}
	return s
}

func relGap(lower, upper float64) float64 {
	if math.IsInf(upper, 1) || math.IsInf(lower, -1) {
		return math.Inf(1)
	}
	return (upper - lower) / math.Max(math.Abs(upper), 1e-10)
}
