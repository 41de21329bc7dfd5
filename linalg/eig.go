package linalg

import (
	"errors"
	"math"
	"math/cmplx"

	"gonum.org/v1/gonum/mat"
)

// Errors returned by the eigendecomposition routines.
var (
	ErrEmpty         = errors.New("linalg: empty matrix")
	ErrNonSquare     = errors.New("linalg: matrix is not square")
	ErrNoConvergence = errors.New("linalg: QR iteration did not converge")
)

// ulp is the unit of least precision at 1.0, used as the relative
// deflation and small-denominator threshold.
var ulp = math.Nextafter(1, 2) - 1

// Eig computes the eigenvalues and right eigenvectors of a general
// complex square matrix.
//
// The returned eigenvectors are the columns of the n-by-n matrix,
// normalized to unit Euclidean norm, with vectors[:,j] corresponding to
// values[j]. Eigenvalues are returned in the order produced by the QR
// iteration; use [SortAscendingReal] or [SortAscendingMagnitude] for a
// deterministic ordering.
//
// The algorithm is the dense unsymmetric standard: reduce to upper
// Hessenberg form with Householder reflections, drive the Hessenberg
// matrix to upper triangular (Schur) form with Wilkinson-shifted QR
// steps while accumulating the unitary transforms, then back-substitute
// on the triangular factor. Complexity is O(n³) time and O(n²) memory.
func Eig(a mat.CMatrix) (values []complex128, vectors *mat.CDense, err error) {
	r, c := a.Dims()
	if r == 0 || c == 0 {
		return nil, nil, ErrEmpty
	}
	if r != c {
		return nil, nil, ErrNonSquare
	}

	n := r
	t := make([]complex128, n*n)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			t[i*n+j] = a.At(i, j)
		}
	}

	// z accumulates every unitary similarity transform applied to t,
	// so that a = z * t * z^H holds throughout.
	z := make([]complex128, n*n)
	for i := 0; i < n; i++ {
		z[i*n+i] = 1
	}

	hessenberg(t, z, n)
	if err := schur(t, z, n); err != nil {
		return nil, nil, err
	}

	values = make([]complex128, n)
	for i := 0; i < n; i++ {
		values[i] = t[i*n+i]
	}

	v := triangularVectors(t, z, n)
	return values, mat.NewCDense(n, n, v), nil
}

// hessenberg reduces t to upper Hessenberg form in place using
// Householder reflections, accumulating the transforms into z.
func hessenberg(t, z []complex128, n int) {
	v := make([]complex128, n)
	for k := 0; k < n-2; k++ {
		// Householder vector for column k below the subdiagonal.
		var norm float64
		for i := k + 1; i < n; i++ {
			norm += real(t[i*n+k])*real(t[i*n+k]) + imag(t[i*n+k])*imag(t[i*n+k])
		}
		norm = math.Sqrt(norm)
		if norm == 0 {
			continue
		}

		alpha := t[(k+1)*n+k]
		phase := complex(1, 0)
		if alpha != 0 {
			phase = alpha / complex(cmplx.Abs(alpha), 0)
		}
		beta := -phase * complex(norm, 0)

		m := n - k - 1
		v[0] = alpha - beta
		for i := 1; i < m; i++ {
			v[i] = t[(k+1+i)*n+k]
		}
		var vnorm float64
		for i := 0; i < m; i++ {
			vnorm += real(v[i])*real(v[i]) + imag(v[i])*imag(v[i])
		}
		vnorm = math.Sqrt(vnorm)
		if vnorm == 0 {
			continue
		}
		for i := 0; i < m; i++ {
			v[i] /= complex(vnorm, 0)
		}

		// Left update: t[k+1:, k:] -= 2 v (v^H t[k+1:, k:]).
		for j := k; j < n; j++ {
			var s complex128
			for i := 0; i < m; i++ {
				s += cmplx.Conj(v[i]) * t[(k+1+i)*n+j]
			}
			s *= 2
			for i := 0; i < m; i++ {
				t[(k+1+i)*n+j] -= s * v[i]
			}
		}

		// Right update: t[:, k+1:] -= 2 (t[:, k+1:] v) v^H.
		for i := 0; i < n; i++ {
			var s complex128
			for j := 0; j < m; j++ {
				s += t[i*n+k+1+j] * v[j]
			}
			s *= 2
			for j := 0; j < m; j++ {
				t[i*n+k+1+j] -= s * cmplx.Conj(v[j])
			}
		}

		// Accumulate z = z * P.
		for i := 0; i < n; i++ {
			var s complex128
			for j := 0; j < m; j++ {
				s += z[i*n+k+1+j] * v[j]
			}
			s *= 2
			for j := 0; j < m; j++ {
				z[i*n+k+1+j] -= s * cmplx.Conj(v[j])
			}
		}

		t[(k+1)*n+k] = beta
		for i := k + 2; i < n; i++ {
			t[i*n+k] = 0
		}
	}
}

// schur drives the upper Hessenberg matrix t to upper triangular form
// using implicitly shifted QR steps with Givens rotations, accumulating
// the rotations into z.
func schur(t, z []complex128, n int) error {
	var anorm float64
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			anorm += cmplx.Abs(t[i*n+j])
		}
	}
	if anorm == 0 {
		anorm = 1
	}

	totalIters := 0
	maxIters := 30 * n
	iters := 0

	hi := n - 1
	for hi > 0 {
		// Deflate converged subdiagonal entries.
		lo := hi
		for lo > 0 {
			sm := cmplx.Abs(t[(lo-1)*n+lo-1]) + cmplx.Abs(t[lo*n+lo])
			if sm == 0 {
				sm = anorm
			}
			if cmplx.Abs(t[lo*n+lo-1]) <= ulp*sm {
				t[lo*n+lo-1] = 0
				break
			}
			lo--
		}
		if lo == hi {
			hi--
			iters = 0
			continue
		}

		if totalIters >= maxIters {
			return ErrNoConvergence
		}
		totalIters++
		iters++

		var shift complex128
		if iters%10 == 0 {
			// Exceptional shift to break symmetric stagnation.
			shift = t[hi*n+hi] + complex(0.75*cmplx.Abs(t[hi*n+hi-1]), 0)
		} else {
			shift = wilkinsonShift(t, n, hi)
		}

		// One implicit single-shift sweep over the active block.
		x := t[lo*n+lo] - shift
		y := t[(lo+1)*n+lo]
		for k := lo; k < hi; k++ {
			cs, sn := givens(x, y)

			jmin := k - 1
			if jmin < 0 {
				jmin = 0
			}
			for j := jmin; j < n; j++ {
				a := t[k*n+j]
				b := t[(k+1)*n+j]
				t[k*n+j] = complex(cs, 0)*a + sn*b
				t[(k+1)*n+j] = -cmplx.Conj(sn)*a + complex(cs, 0)*b
			}

			imax := k + 2
			if imax > hi {
				imax = hi
			}
			for i := 0; i <= imax; i++ {
				a := t[i*n+k]
				b := t[i*n+k+1]
				t[i*n+k] = complex(cs, 0)*a + cmplx.Conj(sn)*b
				t[i*n+k+1] = -sn*a + complex(cs, 0)*b
			}

			for i := 0; i < n; i++ {
				a := z[i*n+k]
				b := z[i*n+k+1]
				z[i*n+k] = complex(cs, 0)*a + cmplx.Conj(sn)*b
				z[i*n+k+1] = -sn*a + complex(cs, 0)*b
			}

			if k < hi-1 {
				x = t[(k+1)*n+k]
				y = t[(k+2)*n+k]
			}
		}
	}
	return nil
}

// wilkinsonShift returns the eigenvalue of the trailing 2x2 block that
// is closer to the bottom-right entry.
func wilkinsonShift(t []complex128, n, hi int) complex128 {
	a := t[(hi-1)*n+hi-1]
	b := t[(hi-1)*n+hi]
	c := t[hi*n+hi-1]
	d := t[hi*n+hi]

	half := (a - d) / 2
	disc := cmplx.Sqrt(half*half + b*c)
	l1 := d + half + disc
	l2 := d + half - disc
	if cmplx.Abs(l1-d) < cmplx.Abs(l2-d) {
		return l1
	}
	return l2
}

// givens returns the rotation [[c, s], [-conj(s), c]] with real c that
// maps (f, g) to (r, 0).
func givens(f, g complex128) (float64, complex128) {
	if g == 0 {
		return 1, 0
	}
	if f == 0 {
		return 0, cmplx.Conj(g) / complex(cmplx.Abs(g), 0)
	}
	af := cmplx.Abs(f)
	d := math.Hypot(af, cmplx.Abs(g))
	cs := af / d
	sn := (f / complex(af, 0)) * cmplx.Conj(g) / complex(d, 0)
	return cs, sn
}

// triangularVectors computes unit-norm right eigenvectors from the
// triangular Schur factor t and the accumulated unitary z.
func triangularVectors(t, z []complex128, n int) []complex128 {
	var tnorm float64
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			if ab := cmplx.Abs(t[i*n+j]); ab > tnorm {
				tnorm = ab
			}
		}
	}
	if tnorm == 0 {
		tnorm = 1
	}
	smin := ulp * tnorm

	out := make([]complex128, n*n)
	y := make([]complex128, n)
	for j := 0; j < n; j++ {
		lambda := t[j*n+j]
		for i := range y {
			y[i] = 0
		}
		y[j] = 1
		for i := j - 1; i >= 0; i-- {
			var s complex128
			for m := i + 1; m <= j; m++ {
				s += t[i*n+m] * y[m]
			}
			den := t[i*n+i] - lambda
			if cmplx.Abs(den) < smin {
				den = complex(smin, 0)
			}
			y[i] = -s / den
		}

		// Transform back: v = z * y, then normalize.
		var norm float64
		for i := 0; i < n; i++ {
			var s complex128
			for m := 0; m <= j; m++ {
				s += z[i*n+m] * y[m]
			}
			out[i*n+j] = s
			norm += real(s)*real(s) + imag(s)*imag(s)
		}
		norm = math.Sqrt(norm)
		if norm > 0 {
			for i := 0; i < n; i++ {
				out[i*n+j] /= complex(norm, 0)
			}
		}
	}
	return out
}
