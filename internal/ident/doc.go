// Package ident fits discrete-time polynomial models to sampled
// input/output data.
//
// [FitARX] solves the equation-error least squares problem directly;
// [FitOE] refines it into an output-error model by prediction-error
// minimization over free-run residuals (Levenberg-Marquardt). [Evaluate]
// scores a model on held-out data against a constant-mean baseline, and
// [OrderSearch] picks a model order by validation error.
package ident
