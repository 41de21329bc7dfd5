package signal

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// Mag2dB converts a magnitude response to decibels: 20*log10(x).
// Zero values map to -Inf and negative values to NaN, per standard
// floating-point semantics.
func Mag2dB(x []float64) []float64 {
	out := make([]float64, len(x))
	for i, v := range x {
		out[i] = 20 * math.Log10(v)
	}
	return out
}

// Demean returns x shifted to zero arithmetic mean.
func Demean(x []float64) []float64 {
	if len(x) == 0 {
		return nil
	}
	mean := floats.Sum(x) / float64(len(x))
	out := make([]float64, len(x))
	for i, v := range x {
		out[i] = v - mean
	}
	return out
}
