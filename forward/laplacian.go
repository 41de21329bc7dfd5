package forward

import (
	"errors"
	"math"
	"math/cmplx"

	"gonum.org/v1/gonum/mat"
)

// ErrShapeMismatch is returned when the connectivity and distance
// matrices are not square matrices of the same size.
var ErrShapeMismatch = errors.New("forward: connectivity and distance matrices must be square and equal-shaped")

// selfLoopWeight is the diagonal term of the normalized Laplacian.
const selfLoopWeight = 0.8

// degreeMaskFraction: regions whose combined in+out degree falls below
// this fraction of the mean combined degree are treated as effectively
// disconnected. Their degrees are forced to +Inf so their normalization
// term vanishes without removing them from the matrix.
const degreeMaskFraction = 0.2

// spacing1 is the gap between 1.0 and the next float64, guarding the
// degree normalization against exact-zero denominators.
var spacing1 = math.Nextafter(1, 2) - 1

// ComplexLaplacian assembles the delay-weighted, degree-normalized
// complex Laplacian
//
//	L = 0.8*I - diag(1/(sqrt(rowdeg*coldeg)+eps)) * C .* exp(-i*w*D/speed*0.001)
//
// where the elementwise exponential encodes per-edge propagation delay
// as a frequency-dependent phase. The matrix is rebuilt on every call;
// nothing is cached and the inputs are not mutated.
func ComplexLaplacian(conn, dist mat.Matrix, w, speed float64) (*mat.CDense, error) {
	n, m := conn.Dims()
	dr, dc := dist.Dims()
	if n == 0 || n != m || dr != dc || n != dr {
		return nil, ErrShapeMismatch
	}

	rowdeg, coldeg := degrees(conn)
	maskLowDegree(rowdeg, coldeg)

	data := make([]complex128, n*n)
	for i := 0; i < n; i++ {
		norm := 1 / (math.Sqrt(rowdeg[i]*coldeg[i]) + spacing1)
		for j := 0; j < n; j++ {
			tau := 0.001 * dist.At(i, j) / speed
			delayed := complex(conn.At(i, j), 0) * cmplx.Exp(complex(0, -tau*w))
			l := -complex(norm, 0) * delayed
			if i == j {
				l += selfLoopWeight
			}
			data[i*n+j] = l
		}
	}
	return mat.NewCDense(n, n, data), nil
}

// degrees returns the row sums and column sums of conn.
func degrees(conn mat.Matrix) (rowdeg, coldeg []float64) {
	n, _ := conn.Dims()
	rowdeg = make([]float64, n)
	coldeg = make([]float64, n)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			v := conn.At(i, j)
			rowdeg[i] += v
			coldeg[j] += v
		}
	}
	return rowdeg, coldeg
}

// maskLowDegree forces the degrees of near-isolated regions to +Inf so
// that 1/sqrt(rowdeg*coldeg) becomes exactly zero for them.
func maskLowDegree(rowdeg, coldeg []float64) {
	n := len(rowdeg)
	if n == 0 {
		return
	}
	var mean float64
	for i := 0; i < n; i++ {
		mean += rowdeg[i] + coldeg[i]
	}
	mean /= float64(n)

	for i := 0; i < n; i++ {
		if rowdeg[i]+coldeg[i] < degreeMaskFraction*mean {
			rowdeg[i] = math.Inf(1)
			coldeg[i] = math.Inf(1)
		}
	}
}
