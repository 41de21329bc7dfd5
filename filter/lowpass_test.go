package filter

import (
	"errors"
	"math"
	"testing"
)

func TestLowpassDesign(t *testing.T) {
	h, err := Lowpass(5, 600, 15)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(h) != 15 {
		t.Fatalf("kernel length = %d, expected 15", len(h))
	}

	// Unity DC gain.
	var sum float64
	for _, v := range h {
		sum += v
	}
	if math.Abs(sum-1) > 1e-12 {
		t.Errorf("DC gain = %v, expected 1", sum)
	}

	// Linear phase: symmetric about the center tap.
	for i := 0; i < len(h)/2; i++ {
		if math.Abs(h[i]-h[len(h)-1-i]) > 1e-12 {
			t.Errorf("kernel not symmetric at %d: %v vs %v", i, h[i], h[len(h)-1-i])
		}
	}

	// Center tap dominates for a lowpass.
	for i, v := range h {
		if i != len(h)/2 && math.Abs(v) > math.Abs(h[len(h)/2]) {
			t.Errorf("tap %d (%v) exceeds center tap (%v)", i, v, h[len(h)/2])
		}
	}
}

func TestLowpassAttenuatesHighFrequency(t *testing.T) {
	h, err := Lowpass(10, 200, 31)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Frequency response magnitude at DC vs near Nyquist.
	response := func(f float64) float64 {
		var re, im float64
		for i, v := range h {
			phase := -2 * math.Pi * f / 200 * float64(i)
			re += v * math.Cos(phase)
			im += v * math.Sin(phase)
		}
		return math.Hypot(re, im)
	}
	if dc := response(0); math.Abs(dc-1) > 1e-12 {
		t.Errorf("response at DC = %v, expected 1", dc)
	}
	if hi := response(90); hi > 0.05 {
		t.Errorf("response at 90 Hz = %v, expected strong attenuation", hi)
	}
}

func TestLowpassErrors(t *testing.T) {
	if _, err := Lowpass(0, 600, 15); !errors.Is(err, ErrInvalidCutoff) {
		t.Errorf("expected ErrInvalidCutoff, got %v", err)
	}
	if _, err := Lowpass(300, 600, 15); !errors.Is(err, ErrInvalidCutoff) {
		t.Errorf("expected ErrInvalidCutoff for cutoff at Nyquist, got %v", err)
	}
	if _, err := Lowpass(5, 600, 14); !errors.Is(err, ErrInvalidTaps) {
		t.Errorf("expected ErrInvalidTaps for even taps, got %v", err)
	}
	if _, err := Lowpass(5, 600, 1); !errors.Is(err, ErrInvalidTaps) {
		t.Errorf("expected ErrInvalidTaps for single tap, got %v", err)
	}
}
