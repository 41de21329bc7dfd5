// Package filter provides FIR kernel design for the spectral fitting
// pipeline. The fit cost smooths each model power spectrum with a
// lowpass kernel before comparing it against empirical spectra; this
// package designs that kernel as a Hamming-windowed sinc with unity DC
// gain.
package filter
