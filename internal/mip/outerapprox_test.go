package mip_test

import (
	"context"
	"math"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/huckl3b3rry87/ctrlab/internal/mip"
)

// ballProblem maximizes x1+x2 over integer points inside a disc of
// squared radius 13. The optimum is x1+x2 = 5 at (2,3) or (3,2).
func ballProblem() *mip.Problem {
	return &mip.Problem{
		Vars: []mip.Variable{
			{Name: "x1", Kind: mip.Integer, Lower: 0, Upper: 5},
			{Name: "x2", Kind: mip.Integer, Lower: 0, Upper: 5},
		},
		Objective: []float64{-1, -1},
		Convex: []mip.ConvexConstraint{{
			Name: "disc",
			F: func(x []float64) float64 {
				return x[0]*x[0] + x[1]*x[1] - 13
			},
			Grad: func(x []float64) []float64 {
				return []float64{2 * x[0], 2 * x[1]}
			},
		}},
	}
}

// switchedProblem maximizes a continuous x that a binary decision b
// unlocks: x <= 2+3b linearly and x^2 <= 9 convexly. The optimum is
// x=3, b=1.
func switchedProblem() *mip.Problem {
	return &mip.Problem{
		Vars: []mip.Variable{
			{Name: "x", Kind: mip.Continuous, Lower: 0, Upper: 10},
			{Name: "b", Kind: mip.Binary, Lower: 0, Upper: 1},
		},
		Objective: []float64{-1, 0},
		Linear: []mip.LinearConstraint{
			{Coeffs: []float64{1, -3}, Lower: math.Inf(-1), Upper: 2},
		},
		Convex: []mip.ConvexConstraint{{
			Name: "quad",
			F: func(x []float64) float64 {
				return x[0]*x[0] - 9
			},
			Grad: func(x []float64) []float64 {
				return []float64{2 * x[0], 0}
			},
		}},
	}
}

func newSolver(opts mip.Options) *mip.OuterApprox {
	return mip.NewOuterApprox(&mip.EnumMILP{}, &mip.GradConvex{}, opts)
}

var _ = Describe("OuterApprox", func() {
	ctx := context.Background()

	It("solves a pure-integer convex program to optimality", func() {
		sol, err := newSolver(mip.DefaultOptions()).Solve(ctx, ballProblem())
		Expect(err).NotTo(HaveOccurred())
		Expect(sol.Status).To(Equal(mip.StatusOptimal))
		Expect(sol.Objective).To(BeNumerically("~", -5, 1e-9))
		Expect(sol.X[0] + sol.X[1]).To(BeNumerically("~", 5, 1e-9))
		Expect(sol.X[0]*sol.X[0] + sol.X[1]*sol.X[1]).To(BeNumerically("<=", 13+1e-9))
	})

	It("closes the gap on a mixed problem with a continuous part", func() {
		opts := mip.DefaultOptions()
		opts.RelGap = 1e-3
		sol, err := newSolver(opts).Solve(ctx, switchedProblem())
		Expect(err).NotTo(HaveOccurred())
		Expect(sol.Status).To(Equal(mip.StatusOptimal))
		Expect(sol.X[0]).To(BeNumerically("~", 3, 0.01))
		Expect(sol.X[1]).To(BeNumerically("~", 1, 1e-6))
		Expect(sol.Objective).To(BeNumerically("~", -3, 0.01))
		Expect(sol.Gap).To(BeNumerically("<=", 1e-3))
	})

	It("reports infeasibility when bounds and rows contradict", func() {
		p := &mip.Problem{
			Vars: []mip.Variable{
				{Name: "x", Kind: mip.Integer, Lower: 0, Upper: 3},
			},
			Objective: []float64{1},
			Linear: []mip.LinearConstraint{
				{Coeffs: []float64{1}, Lower: 5, Upper: math.Inf(1)},
			},
		}
		sol, err := newSolver(mip.DefaultOptions()).Solve(ctx, p)
		Expect(err).NotTo(HaveOccurred())
		Expect(sol.Status).To(Equal(mip.StatusInfeasible))
	})

	It("returns the incumbent under an iteration limit", func() {
		opts := mip.DefaultOptions()
		opts.MaxIterations = 1
		sol, err := newSolver(opts).Solve(ctx, switchedProblem())
		Expect(err).NotTo(HaveOccurred())
		Expect(sol.Status).To(Equal(mip.StatusUserLimit))
		Expect(sol.X).NotTo(BeNil())
		Expect(sol.X[0]).To(BeNumerically("~", 3, 0.01))
	})

	It("stops on the wall-time limit", func() {
		opts := mip.DefaultOptions()
		opts.TimeLimit = time.Nanosecond
		sol, err := newSolver(opts).Solve(ctx, switchedProblem())
		Expect(err).NotTo(HaveOccurred())
		Expect(sol.Status).To(Equal(mip.StatusUserLimit))
	})

	It("rejects malformed problems", func() {
		sol, err := newSolver(mip.DefaultOptions()).Solve(ctx, &mip.Problem{})
		Expect(err).To(HaveOccurred())
		Expect(sol.Status).To(Equal(mip.StatusError))
	})
})

var _ = Describe("EnumMILP", func() {
	ctx := context.Background()

	It("optimizes over a mixed integer and continuous polytope", func() {
		p := &mip.Problem{
			Vars: []mip.Variable{
				{Name: "x1", Kind: mip.Integer, Lower: 0, Upper: 2},
				{Name: "x2", Kind: mip.Continuous, Lower: 0, Upper: 2},
			},
			Objective: []float64{-1, -2},
			Linear: []mip.LinearConstraint{
				{Coeffs: []float64{1, 1}, Lower: math.Inf(-1), Upper: 3},
			},
		}
		sol, err := (&mip.EnumMILP{}).SolveMILP(ctx, p, nil)
		Expect(err).NotTo(HaveOccurred())
		Expect(sol.Status).To(Equal(mip.StatusOptimal))
		Expect(sol.Objective).To(BeNumerically("~", -5, 1e-8))
		Expect(sol.X[0]).To(BeNumerically("~", 1, 1e-8))
		Expect(sol.X[1]).To(BeNumerically("~", 2, 1e-8))
	})

	It("honors accumulated cuts", func() {
		p := &mip.Problem{
			Vars: []mip.Variable{
				{Name: "x", Kind: mip.Integer, Lower: 0, Upper: 5},
			},
			Objective: []float64{-1},
		}
		cut := mip.Cut{Coeffs: []float64{1}, RHS: 3.5}
		sol, err := (&mip.EnumMILP{}).SolveMILP(ctx, p, []mip.Cut{cut})
		Expect(err).NotTo(HaveOccurred())
		Expect(sol.Status).To(Equal(mip.StatusOptimal))
		Expect(sol.X[0]).To(BeNumerically("~", 3, 1e-8))
	})
})
