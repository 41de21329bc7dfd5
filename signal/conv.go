package signal

import "errors"

// Errors returned by the convolution routines.
var (
	ErrEmptyInput  = errors.New("signal: empty input")
	ErrEmptyKernel = errors.New("signal: empty kernel")
)

// ConvolveSame performs direct linear convolution of x with kernel and
// returns the centered portion with the same length as x. The kernel is
// expected to be shorter than or equal to x; odd-length kernels keep
// the output aligned with the input.
func ConvolveSame(x, kernel []float64) ([]float64, error) {
	if len(x) == 0 {
		return nil, ErrEmptyInput
	}
	if len(kernel) == 0 {
		return nil, ErrEmptyKernel
	}

	full := convolveFull(x, kernel)
	start := (len(kernel) - 1) / 2
	out := make([]float64, len(x))
	copy(out, full[start:start+len(x)])
	return out, nil
}

// convolveFull computes the full linear convolution, length
// len(x)+len(kernel)-1. Direct time-domain evaluation; the kernels in
// this codebase are a few dozen taps at most.
func convolveFull(x, kernel []float64) []float64 {
	out := make([]float64, len(x)+len(kernel)-1)
	for i, xv := range x {
		for j, kv := range kernel {
			out[i+j] += xv * kv
		}
	}
	return out
}
