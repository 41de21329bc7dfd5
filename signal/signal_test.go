package signal

import (
	"errors"
	"math"
	"testing"
)

func almostEqual(t *testing.T, got, want []float64, tol float64) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("length mismatch: got %d, expected %d", len(got), len(want))
	}
	for i := range got {
		if math.Abs(got[i]-want[i]) > tol {
			t.Errorf("element %d = %v, expected %v", i, got[i], want[i])
		}
	}
}

func TestConvolveSame(t *testing.T) {
	tests := []struct {
		name     string
		x        []float64
		kernel   []float64
		expected []float64
	}{
		{
			name:     "identity kernel",
			x:        []float64{1, 2, 3, 4, 5},
			kernel:   []float64{1},
			expected: []float64{1, 2, 3, 4, 5},
		},
		{
			name:     "three tap box",
			x:        []float64{1, 2, 3, 4, 5},
			kernel:   []float64{1, 1, 1},
			expected: []float64{3, 6, 9, 12, 9},
		},
		{
			name:     "centered impulse",
			x:        []float64{0, 0, 1, 0, 0},
			kernel:   []float64{0.5, 1, 0.5},
			expected: []float64{0, 0.5, 1, 0.5, 0},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ConvolveSame(tt.x, tt.kernel)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			almostEqual(t, got, tt.expected, 1e-12)
		})
	}
}

func TestConvolveSameLengthPreserved(t *testing.T) {
	// Output length must equal the input length for odd kernels of any
	// size, including kernels longer than the input.
	for _, n := range []int{1, 2, 7, 40} {
		for _, k := range []int{1, 3, 5, 41} {
			x := make([]float64, n)
			kernel := make([]float64, k)
			for i := range kernel {
				kernel[i] = 1 / float64(k)
			}
			got, err := ConvolveSame(x, kernel)
			if err != nil {
				t.Fatalf("n=%d k=%d: unexpected error: %v", n, k, err)
			}
			if len(got) != n {
				t.Errorf("n=%d k=%d: output length %d", n, k, len(got))
			}
		}
	}
}

func TestConvolveSameErrors(t *testing.T) {
	if _, err := ConvolveSame(nil, []float64{1}); !errors.Is(err, ErrEmptyInput) {
		t.Errorf("expected ErrEmptyInput, got %v", err)
	}
	if _, err := ConvolveSame([]float64{1}, nil); !errors.Is(err, ErrEmptyKernel) {
		t.Errorf("expected ErrEmptyKernel, got %v", err)
	}
}

func TestMag2dB(t *testing.T) {
	got := Mag2dB([]float64{1, 10, 100})
	almostEqual(t, got, []float64{0, 20, 40}, 1e-12)

	zero := Mag2dB([]float64{0})
	if !math.IsInf(zero[0], -1) {
		t.Errorf("Mag2dB(0) = %v, expected -Inf", zero[0])
	}
}

func TestDemean(t *testing.T) {
	got := Demean([]float64{1, 2, 3, 4})
	almostEqual(t, got, []float64{-1.5, -0.5, 0.5, 1.5}, 1e-12)

	var sum float64
	for _, v := range got {
		sum += v
	}
	if sum != 0 {
		t.Errorf("demeaned sum = %v, expected exactly 0", sum)
	}
}

func TestDemeanConstantIsExactlyZero(t *testing.T) {
	got := Demean([]float64{7.25, 7.25, 7.25})
	for i, v := range got {
		if v != 0 {
			t.Errorf("element %d = %v, expected exact 0", i, v)
		}
	}
}

func TestMagnitude(t *testing.T) {
	in := []complex128{3 + 4i, 0, -1, 2i}
	got := Magnitude(in)
	almostEqual(t, got, []float64{5, 0, 1, 2}, 1e-12)

	if Magnitude(nil) != nil {
		t.Error("expected nil for empty input")
	}
}

func TestHamming(t *testing.T) {
	w := Hamming(5)
	if len(w) != 5 {
		t.Fatalf("length = %d, expected 5", len(w))
	}
	// Symmetric with peak at the center and 0.08 endpoints.
	if math.Abs(w[0]-0.08) > 1e-12 || math.Abs(w[4]-0.08) > 1e-12 {
		t.Errorf("endpoints = %v, %v, expected 0.08", w[0], w[4])
	}
	if math.Abs(w[2]-1) > 1e-12 {
		t.Errorf("center = %v, expected 1", w[2])
	}
	if math.Abs(w[1]-w[3]) > 1e-15 {
		t.Errorf("window not symmetric: %v != %v", w[1], w[3])
	}

	if got := Hamming(1); len(got) != 1 || got[0] != 1 {
		t.Errorf("Hamming(1) = %v, expected [1]", got)
	}
}

func TestDownsample(t *testing.T) {
	x := []float64{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}
	got, err := Downsample(x, 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	almostEqual(t, got, []float64{0, 2, 4, 6, 8}, 0)

	if _, err := Downsample(x, 0); !errors.Is(err, ErrBadSampleCount) {
		t.Errorf("expected ErrBadSampleCount, got %v", err)
	}
	if _, err := Downsample(x, 11); !errors.Is(err, ErrBadSampleCount) {
		t.Errorf("expected ErrBadSampleCount, got %v", err)
	}
}
