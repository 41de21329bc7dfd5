// Package signal provides the small spectrum-domain utilities shared by
// the forward model and the fitting pipeline: complex magnitude
// extraction, decibel conversion, mean-centering, same-length
// convolution, window generation, and basic down-sampling.
//
// The routines operate on plain float64/complex128 slices and follow
// permissive floating-point semantics: zero or negative magnitudes pass
// through the dB conversion as -Inf/NaN rather than raising errors.
package signal
