// Package fit turns the forward model into a scalar optimization
// objective and drives parameter estimation against empirical MEG
// spectra.
//
// A [Problem] binds a prepared connectome, a lowpass smoothing kernel,
// an empirical spectra matrix, and the frequency bins to sweep. Its
// Cost method returns the negative mean Pearson correlation between
// model and empirical per-region spectra: lower is better, with -1 the
// best achievable value. Cost is deterministic, never panics on
// boundary parameter values, and applies a fixed degenerate-curve
// policy (zero-sum curves score 0) so that a derivative-free optimizer
// always sees a well-defined landscape.
//
// [Fit] wraps Cost in a basin-hopping-style global search: repeated
// Nelder-Mead local minimizations from randomly displaced, bounds-
// clamped starting points with Metropolis acceptance.
package fit
