// Package dynamo provides core simulation primitives for dynamical systems.
//
// The package defines the fundamental interfaces and types for numerical
// simulation of ordinary differential equations (ODEs):
//
//   - [State]: vector representing system state
//   - [System]: interface for ODE plants (dx/dt = f(x, u, t))
//   - [OutputSystem]: plants with a measurement equation y = h(x, u, t)
//   - [Integrator]: numerical integrator interface
//   - [Controller]: feedback controller interface
//
// Concrete plants live in the lti package, integrators in the integrators
// package, and the run loop in the sim package.
//
// # Thread Safety
//
// Simulator instances are NOT thread-safe. For parallel runs use
// [github.com/huckl3b3rry87/ctrlab/internal/sim.Ensemble].
package dynamo
