// Package control provides feedback controllers and gain design.
//
// Controllers implement the [dynamo.Controller] interface:
//
//   - [PID]: Proportional-Integral-Derivative controller
//   - [StateFeedback]: static-gain full state feedback
//   - [None]: passthrough controller (zero input)
//
// Gain design:
//
//   - [Place]: pole placement by Ackermann's formula
//   - [LQR]: linear quadratic regulator via the continuous algebraic
//     Riccati equation (matrix sign function of the Hamiltonian)
//   - [RootLocus], [GainForDamping]: classical loop-gain design
//
// Controllers implementing [dynamo.Configurable] support live tuning.
package control
