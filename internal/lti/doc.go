// Package lti builds and manipulates linear time-invariant models.
//
// Two equivalent representations are supported:
//
//   - [StateSpace]: matrices A, B, C, D on gonum dense matrices
//   - [TransferFunction]: rational polynomials in descending powers of s
//
// with conversions both ways (controllable canonical realization, and the
// Faddeev-LeVerrier resolvent expansion for SISO models), pole/zero
// computation via companion-matrix eigenvalues, and ZOH/Tustin
// discretization. [MotorSpeed] and [MotorPosition] assemble DC-motor models
// from physical constants.
package lti
