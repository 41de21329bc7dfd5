package linalg

import (
	"math/cmplx"
	"sort"

	"gonum.org/v1/gonum/mat"
)

// SortAscendingReal reorders the eigenpairs in place so that the
// eigenvalues are ascending by real part. The columns of vectors are
// permuted alongside values.
func SortAscendingReal(values []complex128, vectors *mat.CDense) {
	sortPairs(values, vectors, func(a, b complex128) bool {
		return real(a) < real(b)
	})
}

// SortAscendingMagnitude reorders the eigenpairs in place so that the
// eigenvalues are ascending by modulus.
func SortAscendingMagnitude(values []complex128, vectors *mat.CDense) {
	sortPairs(values, vectors, func(a, b complex128) bool {
		return cmplx.Abs(a) < cmplx.Abs(b)
	})
}

func sortPairs(values []complex128, vectors *mat.CDense, less func(a, b complex128) bool) {
	n := len(values)
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(i, j int) bool {
		return less(values[idx[i]], values[idx[j]])
	})

	sorted := make([]complex128, n)
	for i, k := range idx {
		sorted[i] = values[k]
	}
	copy(values, sorted)

	if vectors == nil {
		return
	}
	r, c := vectors.Dims()
	if c != n {
		return
	}
	cols := make([]complex128, r*c)
	for newCol, oldCol := range idx {
		for i := 0; i < r; i++ {
			cols[i*c+newCol] = vectors.At(i, oldCol)
		}
	}
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			vectors.Set(i, j, cols[i*c+j])
		}
	}
}
