package meg

import (
	"errors"
	"fmt"
	"math"

	algofft "github.com/MeKo-Christian/algo-fft"
	"gonum.org/v1/gonum/mat"

	"github.com/jenncummings/spectrome/signal"
)

// Errors returned by PSD estimation.
var (
	ErrShortSignal   = errors.New("meg: signal shorter than one segment")
	ErrBadSegment    = errors.New("meg: segment length must be >= 2")
	ErrBadSampleRate = errors.New("meg: sample rate must be positive")
)

// Welch estimates the one-sided power spectral density of x by
// averaging Hamming-windowed periodograms over 50%-overlapping segments
// of segLen samples. It returns the frequency axis (Hz) and the PSD,
// both of length fftSize/2+1 where fftSize is the next power of two at
// or above segLen.
func Welch(x []float64, sampleRate float64, segLen int) (freqs, psd []float64, err error) {
	if sampleRate <= 0 {
		return nil, nil, ErrBadSampleRate
	}
	if segLen < 2 {
		return nil, nil, ErrBadSegment
	}
	if len(x) < segLen {
		return nil, nil, ErrShortSignal
	}

	fftSize := nextPowerOf2(segLen)
	plan, err := algofft.NewPlan64(fftSize)
	if err != nil {
		return nil, nil, fmt.Errorf("meg: creating FFT plan: %w", err)
	}

	window := signal.Hamming(segLen)
	var winPower float64
	for _, w := range window {
		winPower += w * w
	}
	scale := 1 / (sampleRate * winPower)

	nbins := fftSize/2 + 1
	psd = make([]float64, nbins)
	in := make([]complex128, fftSize)
	out := make([]complex128, fftSize)

	hop := segLen / 2
	segments := 0
	for start := 0; start+segLen <= len(x); start += hop {
		for i := 0; i < segLen; i++ {
			in[i] = complex(x[start+i]*window[i], 0)
		}
		for i := segLen; i < fftSize; i++ {
			in[i] = 0
		}
		if err := plan.Forward(out, in); err != nil {
			return nil, nil, fmt.Errorf("meg: fft: %w", err)
		}
		for i := 0; i < nbins; i++ {
			re, im := real(out[i]), imag(out[i])
			psd[i] += (re*re + im*im) * scale
		}
		segments++
	}

	for i := range psd {
		psd[i] /= float64(segments)
	}
	// One-sided spectrum: interior bins carry both halves.
	for i := 1; i < nbins-1; i++ {
		psd[i] *= 2
	}

	freqs = make([]float64, nbins)
	for i := range freqs {
		freqs[i] = float64(i) * sampleRate / float64(fftSize)
	}
	return freqs, psd, nil
}

// FromTimecourses computes per-region Welch spectra from a
// regions-by-samples timecourse matrix, returning magnitude spectra
// (square root of the PSD) bin by bin.
func FromTimecourses(timecourses *mat.Dense, sampleRate float64, segLen int) (*Spectra, error) {
	r, c := timecourses.Dims()
	if r == 0 || c == 0 {
		return nil, ErrEmptySpectra
	}

	var freqs []float64
	var data []float64
	row := make([]float64, c)
	for i := 0; i < r; i++ {
		mat.Row(row, i, timecourses)
		f, psd, err := Welch(row, sampleRate, segLen)
		if err != nil {
			return nil, err
		}
		if freqs == nil {
			freqs = f
			data = make([]float64, 0, r*len(f))
		}
		for _, p := range psd {
			data = append(data, math.Sqrt(p))
		}
	}

	return &Spectra{
		Freqs: freqs,
		Data:  mat.NewDense(r, len(freqs), data),
	}, nil
}

func nextPowerOf2(n int) int {
	p := 1
	for p < n {
		p *= 2
	}
	return p
}
