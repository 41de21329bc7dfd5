package connectome

import (
	"errors"

	"gonum.org/v1/gonum/mat"
)

// ErrBadPermutation is returned when a permutation does not index every
// row of the matrix exactly once.
var ErrBadPermutation = errors.New("connectome: invalid permutation")

// HCPOrder returns the permutation that maps the raw HCP template CSV
// ordering (subcortical first) to the DK86 convention: 68 cortical
// regions followed by 18 subcortical ones.
func HCPOrder() []int {
	perm := make([]int, 0, NumRegions)
	for i := 18; i < 86; i++ {
		perm = append(perm, i)
	}
	for i := 0; i < 18; i++ {
		perm = append(perm, i)
	}
	return perm
}

// juliaCorticalLH is the left-hemisphere cortical ordering used by the
// source-localized MEG pipeline.
var juliaCorticalLH = []int{
	0, 1, 2, 3, 4, 6, 7, 8, 10, 11, 12, 13, 14,
	15, 17, 16, 18, 19, 20, 21, 22, 23, 24, 25,
	26, 27, 28, 29, 30, 31, 5, 32, 33, 9,
}

// juliaSubcortLH is the left-hemisphere subcortical ordering in the
// same pipeline.
var juliaSubcortLH = []int{0, 40, 36, 39, 38, 37, 35, 34, 0}

// JuliaOrder returns the DK86 region permutation used to align
// connectomes with the MEG source-localization ordering, the indices of
// the regions with no MEG coverage, and the cortical region indices.
func JuliaOrder() (perm, noMEG, cortical []int) {
	lh := juliaCorticalLH
	perm = make([]int, 0, len(lh)*2+len(juliaSubcortLH)*2)
	for _, v := range lh {
		perm = append(perm, v)
	}
	for _, v := range lh {
		perm = append(perm, v+34+7)
	}
	for _, v := range juliaSubcortLH {
		perm = append(perm, v)
	}
	for _, v := range juliaSubcortLH {
		perm = append(perm, v+34+1)
	}

	noMEG = []int{68, 77, 76, 85}

	cortical = make([]int, 0, len(lh)*2)
	for _, v := range lh {
		cortical = append(cortical, v)
	}
	for _, v := range lh {
		cortical = append(cortical, v+34)
	}
	return perm, noMEG, cortical
}

// Reorder returns a copy of m with rows and columns permuted by perm:
// out[i][j] = m[perm[i]][perm[j]].
func Reorder(m *mat.Dense, perm []int) (*mat.Dense, error) {
	n, c := m.Dims()
	if n != c || len(perm) != n {
		return nil, ErrBadPermutation
	}
	seen := make([]bool, n)
	for _, p := range perm {
		if p < 0 || p >= n || seen[p] {
			return nil, ErrBadPermutation
		}
		seen[p] = true
	}

	out := mat.NewDense(n, n, nil)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			out.Set(i, j, m.At(perm[i], perm[j]))
		}
	}
	return out, nil
}
