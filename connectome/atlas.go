package connectome

import (
	"errors"
	"fmt"
)

// Region counts for the extended Desikan-Killiany atlas.
const (
	NumRegions  = 86 // 68 cortical + 18 subcortical
	NumCortical = 68
)

// Errors returned by atlas construction.
var (
	ErrEmptyAtlas      = errors.New("connectome: atlas has no regions")
	ErrDuplicateRegion = errors.New("connectome: duplicate region name")
)

// Atlas is a validated, ordered mapping from region names to matrix
// row/column indices. It is constructed once at load time so that the
// numeric pipeline can work purely with integer indices.
type Atlas struct {
	names []string
	index map[string]int
}

// NewAtlas builds an atlas from an ordered list of region names. Names
// must be unique; the list order defines the matrix index space.
func NewAtlas(names []string) (*Atlas, error) {
	if len(names) == 0 {
		return nil, ErrEmptyAtlas
	}
	index := make(map[string]int, len(names))
	for i, name := range names {
		if _, dup := index[name]; dup {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateRegion, name)
		}
		index[name] = i
	}
	return &Atlas{names: append([]string(nil), names...), index: index}, nil
}

// Len returns the number of regions.
func (a *Atlas) Len() int { return len(a.names) }

// Index returns the matrix index for a region name.
func (a *Atlas) Index(name string) (int, bool) {
	i, ok := a.index[name]
	return i, ok
}

// Name returns the region name at matrix index i.
func (a *Atlas) Name(i int) string { return a.names[i] }

// Names returns the region names in matrix order.
func (a *Atlas) Names() []string {
	return append([]string(nil), a.names...)
}

// Cortical returns the indices of the cortical regions: by DK86
// convention the first 68 entries, or all entries for smaller atlases.
func (a *Atlas) Cortical() []int {
	n := NumCortical
	if len(a.names) < n {
		n = len(a.names)
	}
	out := make([]int, n)
	for i := range out {
		out[i] = i
	}
	return out
}
