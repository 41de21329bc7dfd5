package signal

import "github.com/cwbudde/algo-vecmath"

// Magnitude returns |z| for each element of in, using the SIMD
// magnitude kernel on the unpacked real and imaginary parts.
func Magnitude(in []complex128) []float64 {
	if len(in) == 0 {
		return nil
	}

	n := len(in)
	re := make([]float64, n)
	im := make([]float64, n)
	for i, c := range in {
		re[i] = real(c)
		im[i] = imag(c)
	}

	out := make([]float64, n)
	vecmath.Magnitude(out, re, im)
	return out
}
