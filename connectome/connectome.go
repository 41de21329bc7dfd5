package connectome

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"gonum.org/v1/gonum/mat"
)

// Default HCP template connectome file names.
const (
	DefaultConnectivityCSV = "mean80_fibercount.csv"
	DefaultDistanceCSV     = "mean80_fiberlength.csv"
)

// Errors returned by connectome loading and preparation.
var (
	ErrShapeMismatch = errors.New("connectome: connectivity and distance matrices must be square and equal-shaped")
	ErrRaggedCSV     = errors.New("connectome: csv rows have inconsistent lengths")
)

// Connectome holds a structural connectome: fiber-count connectivity C
// and fiber-length distance D over the same region index space.
type Connectome struct {
	C *mat.Dense
	D *mat.Dense
}

// New wraps existing connectivity and distance matrices after checking
// that they share a square shape.
func New(c, d *mat.Dense) (*Connectome, error) {
	cr, cc := c.Dims()
	dr, dc := d.Dims()
	if cr == 0 || cr != cc || dr != dc || cr != dr {
		return nil, ErrShapeMismatch
	}
	return &Connectome{C: c, D: d}, nil
}

// LoadHCP reads the HCP template connectome from dir and reorders both
// matrices to the DK86 convention via [HCPOrder]. The connectivity CSV
// carries a header row; the distance CSV does not. Empty file names
// fall back to the defaults.
func LoadHCP(dir, connectivityCSV, distanceCSV string) (*Connectome, error) {
	if connectivityCSV == "" {
		connectivityCSV = DefaultConnectivityCSV
	}
	if distanceCSV == "" {
		distanceCSV = DefaultDistanceCSV
	}

	c, err := readMatrixCSV(filepath.Join(dir, connectivityCSV), true)
	if err != nil {
		return nil, fmt.Errorf("connectome: loading connectivity: %w", err)
	}
	d, err := readMatrixCSV(filepath.Join(dir, distanceCSV), false)
	if err != nil {
		return nil, fmt.Errorf("connectome: loading distances: %w", err)
	}

	conn, err := New(c, d)
	if err != nil {
		return nil, err
	}
	if err := conn.Reorder(HCPOrder()); err != nil {
		return nil, err
	}
	return conn, nil
}

// Reorder permutes both matrices in place by perm.
func (c *Connectome) Reorder(perm []int) error {
	rc, err := Reorder(c.C, perm)
	if err != nil {
		return err
	}
	rd, err := Reorder(c.D, perm)
	if err != nil {
		return err
	}
	c.C, c.D = rc, rd
	return nil
}

// BiSymmetric symmetrizes the connectivity matrix across hemispheres:
// the two intra-hemisphere blocks are replaced by their elementwise
// maximum, and likewise for the two inter-hemisphere blocks. linds and
// rinds list the left- and right-hemisphere region indices and must
// have equal length.
func (c *Connectome) BiSymmetric(linds, rinds []int) error {
	if len(linds) != len(rinds) {
		return ErrShapeMismatch
	}
	n := len(linds)

	intra := make([]float64, n*n)
	inter := make([]float64, n*n)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			intra[i*n+j] = maxf(c.C.At(linds[i], linds[j]), c.C.At(rinds[i], rinds[j]))
			inter[i*n+j] = maxf(c.C.At(linds[i], rinds[j]), c.C.At(rinds[i], linds[j]))
		}
	}
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			c.C.Set(linds[i], linds[j], intra[i*n+j])
			c.C.Set(rinds[i], rinds[j], intra[i*n+j])
			c.C.Set(linds[i], rinds[j], inter[i*n+j])
			c.C.Set(rinds[i], linds[j], inter[i*n+j])
		}
	}
	return nil
}

// ReduceExtremeDir clips connectivity outliers at threshFactor times
// the mean positive entry, then applies the directional blend
// maxDir*C + (1-maxDir)*C. The blend is kept in this historical form
// for compatibility with previously published fits.
func (c *Connectome) ReduceExtremeDir(maxDir, threshFactor float64) {
	var sum float64
	var count int
	r, cols := c.C.Dims()
	for i := 0; i < r; i++ {
		for j := 0; j < cols; j++ {
			if v := c.C.At(i, j); v > 0 {
				sum += v
				count++
			}
		}
	}
	if count == 0 {
		return
	}
	thr := threshFactor * sum / float64(count)

	for i := 0; i < r; i++ {
		for j := 0; j < cols; j++ {
			v := c.C.At(i, j)
			if v > thr {
				v = thr
			}
			c.C.Set(i, j, maxDir*v+(1-maxDir)*v)
		}
	}
}

// readMatrixCSV parses a square numeric CSV matrix.
func readMatrixCSV(path string, skipHeader bool) (*mat.Dense, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return parseMatrixCSV(f, skipHeader)
}

func parseMatrixCSV(r io.Reader, skipHeader bool) (*mat.Dense, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	var rows [][]float64
	first := true
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		if first && skipHeader {
			first = false
			continue
		}
		first = false

		row := make([]float64, len(record))
		for i, field := range record {
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, fmt.Errorf("parsing row %d: %w", len(rows), err)
			}
			row[i] = v
		}
		rows = append(rows, row)
	}

	if len(rows) == 0 {
		return nil, ErrShapeMismatch
	}
	n := len(rows[0])
	if len(rows) != n {
		return nil, ErrShapeMismatch
	}
	data := make([]float64, 0, n*n)
	for _, row := range rows {
		if len(row) != n {
			return nil, ErrRaggedCSV
		}
		data = append(data, row...)
	}
	return mat.NewDense(n, n, data), nil
}

func maxf(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}
