package signal

import "math"

// Hamming returns the symmetric n-point Hamming window
// w[i] = 0.54 - 0.46*cos(2*pi*i/(n-1)).
func Hamming(n int) []float64 {
	if n <= 0 {
		return nil
	}
	if n == 1 {
		return []float64{1}
	}
	out := make([]float64, n)
	for i := range out {
		out[i] = 0.54 - 0.46*math.Cos(2*math.Pi*float64(i)/float64(n-1))
	}
	return out
}
