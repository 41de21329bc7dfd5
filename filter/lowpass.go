package filter

import (
	"errors"
	"math"

	"github.com/cwbudde/algo-vecmath"

	"github.com/jenncummings/spectrome/signal"
)

// Errors returned by kernel design.
var (
	ErrInvalidCutoff = errors.New("filter: cutoff must satisfy 0 < cutoff < sampleRate/2")
	ErrInvalidTaps   = errors.New("filter: taps must be an odd integer >= 3")
)

// Lowpass designs a linear-phase lowpass FIR kernel by the windowed-sinc
// method: an ideal sinc response truncated to taps points, shaped by a
// Hamming window, and normalized to unity DC gain. taps must be odd so
// that same-length convolution stays centered on the input.
func Lowpass(cutoff, sampleRate float64, taps int) ([]float64, error) {
	if sampleRate <= 0 || cutoff <= 0 || cutoff >= sampleRate/2 {
		return nil, ErrInvalidCutoff
	}
	if taps < 3 || taps%2 == 0 {
		return nil, ErrInvalidTaps
	}

	fc := cutoff / sampleRate
	mid := (taps - 1) / 2

	h := make([]float64, taps)
	for i := range h {
		h[i] = 2 * fc * sinc(2*fc*float64(i-mid))
	}
	vecmath.MulBlockInPlace(h, signal.Hamming(taps))

	// Unity gain at DC.
	var sum float64
	for _, v := range h {
		sum += v
	}
	for i := range h {
		h[i] /= sum
	}
	return h, nil
}

// sinc is the normalized sinc function sin(pi*x)/(pi*x).
func sinc(x float64) float64 {
	if x == 0 {
		return 1
	}
	px := math.Pi * x
	return math.Sin(px) / px
}
