package mip

import (
	"context"
	"log/slog"
	"time"
)

// Cut is a linear inequality coeffs^T x <= rhs added to the polyhedral
// master problem.
type Cut struct {
	Coeffs []float64
	RHS    float64
}

// MILPSolver solves the polyhedral master problem: the original problem
// without its convex constraints, plus the accumulated cuts, with
// integrality enforced. External MILP engines are adapted behind this
// interface.
type MILPSolver interface {
	SolveMILP(ctx context.Context, p *Problem, cuts []Cut) (*Solution, error)
}

// ConvexSolver solves the continuous subproblem with the integer and
// binary variables fixed to the given values (indexed by variable
// position; non-fixed entries are ignored). External NLP/conic engines
// are adapted behind this interface.
type ConvexSolver interface {
	SolveFixed(ctx context.Context, p *Problem, fixed map[int]float64) (*Solution, error)
}

// Options configure the outer-approximation coordination loop.
type Options struct {
	// RelGap is the relative optimality gap at which iteration stops.
	RelGap float64
	// MaxIterations bounds the number of master/subproblem rounds.
	MaxIterations int
	// TimeLimit bounds wall time; zero means unlimited.
	TimeLimit time.Duration
	// MIPDriven selects whether the MILP master drives iteration (cuts
	// are generated at master solutions) or the continuous side drives
	// (cuts also generated at subproblem optima).
	MIPDriven bool
	// Logger, when set, receives one record per iteration.
	Logger *slog.Logger
}

func DefaultOptions() Options {
	return Options{
		RelGap:        1e-6,
		MaxIterations: 100,
	}
}
