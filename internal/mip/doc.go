// Package mip defines mixed-integer convex programs and solves them by
// outer approximation: a MILP master over a growing polyhedral
// relaxation alternating with continuous subproblems at fixed integer
// assignments. Solver backends plug in behind the MILPSolver and
// ConvexSolver interfaces; EnumMILP and GradConvex are small reference
// backends for tests and demos.
package mip
