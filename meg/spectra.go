package meg

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"

	"gonum.org/v1/gonum/mat"
)

// Errors returned by spectra handling.
var (
	ErrEmptySpectra = errors.New("meg: no spectra")
	ErrBadCSVHeader = errors.New("meg: first csv row must hold numeric frequency bins")
	ErrRaggedCSV    = errors.New("meg: csv rows have inconsistent lengths")
)

// Spectra holds per-region power spectra: one row per region, one
// column per frequency bin, in the same region ordering as the
// connectome matrices.
type Spectra struct {
	Freqs  []float64  // frequency axis (Hz), length = columns of Data
	Data   *mat.Dense // regions x bins magnitude matrix
	Labels []string   // optional region names, length = rows of Data
}

// Regions returns the number of regions (rows).
func (s *Spectra) Regions() int {
	r, _ := s.Data.Dims()
	return r
}

// Bins returns the number of frequency bins (columns).
func (s *Spectra) Bins() int {
	_, c := s.Data.Dims()
	return c
}

// MeanSpectrum returns the mean spectrum across all regions.
func MeanSpectrum(s *Spectra) []float64 {
	r, c := s.Data.Dims()
	out := make([]float64, c)
	if r == 0 {
		return out
	}
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			out[j] += s.Data.At(i, j)
		}
	}
	for j := range out {
		out[j] /= float64(r)
	}
	return out
}

// ReadCSV parses a spectra matrix. The first row lists the frequency
// bins; every following row is a region label followed by one magnitude
// per bin.
func ReadCSV(r io.Reader) (*Spectra, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("meg: reading header: %w", err)
	}
	freqs := make([]float64, 0, len(header))
	for _, field := range header {
		v, err := strconv.ParseFloat(field, 64)
		if err != nil {
			return nil, ErrBadCSVHeader
		}
		freqs = append(freqs, v)
	}

	var labels []string
	var data []float64
	rows := 0
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		if len(record) != len(freqs)+1 {
			return nil, ErrRaggedCSV
		}
		labels = append(labels, record[0])
		for _, field := range record[1:] {
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, fmt.Errorf("meg: parsing row %d: %w", rows, err)
			}
			data = append(data, v)
		}
		rows++
	}
	if rows == 0 {
		return nil, ErrEmptySpectra
	}

	return &Spectra{
		Freqs:  freqs,
		Data:   mat.NewDense(rows, len(freqs), data),
		Labels: labels,
	}, nil
}
