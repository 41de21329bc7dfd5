package signal

import "errors"

// ErrBadSampleCount is returned when the requested output length is
// not between 1 and len(x).
var ErrBadSampleCount = errors.New("signal: output sample count out of range")

// Downsample reduces x to n points by stride decimation: the simplest
// possible resampling, keeping every floor(len(x)/n)-th sample.
func Downsample(x []float64, n int) ([]float64, error) {
	if n <= 0 || n > len(x) {
		return nil, ErrBadSampleCount
	}
	step := len(x) / n
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		out[i] = x[i*step]
	}
	return out, nil
}
