package fit

import (
	"errors"
	"math"
	"sync"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/jenncummings/spectrome/forward"
	"github.com/jenncummings/spectrome/signal"
)

// Errors returned by problem construction.
var (
	ErrShapeMismatch = errors.New("fit: connectivity and distance matrices must be square and equal-shaped")
	ErrBinMismatch   = errors.New("fit: frequency bins must match empirical spectrum columns")
	ErrBadKernel     = errors.New("fit: lowpass kernel must have odd length")
	ErrNoRegions     = errors.New("fit: no regions with empirical coverage")
	ErrRegionRange   = errors.New("fit: region index outside empirical matrix")
)

// ProblemConfig assembles the inputs of a fitting problem.
type ProblemConfig struct {
	// Conn and Dist are the prepared connectivity and distance
	// matrices, square and equal-shaped.
	Conn, Dist *mat.Dense

	// Lowpass is the smoothing kernel applied to each model magnitude
	// curve before dB conversion. Must have odd length for centered
	// same-length convolution.
	Lowpass []float64

	// Empirical holds one magnitude spectrum per region (rows) over
	// the same frequency bins the model sweeps (columns).
	Empirical *mat.Dense

	// FreqsHz are the frequency bins (Hz) at which the forward model
	// is evaluated. Length must equal the empirical column count.
	FreqsHz []float64

	// Regions lists the region indices with valid empirical coverage.
	// Nil selects the conventional cortical range 0..67.
	Regions []int

	// Workers bounds the number of goroutines sweeping frequency bins
	// concurrently. Values below 2 evaluate serially.
	Workers int
}

// Problem is a validated, reusable fitting objective. All validation
// happens in [NewProblem]; Cost itself follows permissive numeric
// propagation and always returns a scalar.
type Problem struct {
	conn, dist *mat.Dense
	lowpass    []float64
	empirical  *mat.Dense
	freqs      []float64
	regions    []int
	workers    int
}

// NewProblem validates the configuration once so that repeated Cost
// calls never have to.
func NewProblem(cfg ProblemConfig) (*Problem, error) {
	cr, cc := cfg.Conn.Dims()
	dr, dc := cfg.Dist.Dims()
	if cr == 0 || cr != cc || dr != dc || cr != dr {
		return nil, ErrShapeMismatch
	}
	if len(cfg.Lowpass) == 0 || len(cfg.Lowpass)%2 == 0 {
		return nil, ErrBadKernel
	}
	er, ec := cfg.Empirical.Dims()
	if ec != len(cfg.FreqsHz) || len(cfg.FreqsHz) == 0 {
		return nil, ErrBinMismatch
	}

	regions := cfg.Regions
	if regions == nil {
		n := 68
		if er < n {
			n = er
		}
		regions = make([]int, n)
		for i := range regions {
			regions[i] = i
		}
	}
	if len(regions) == 0 {
		return nil, ErrNoRegions
	}
	for _, r := range regions {
		if r < 0 || r >= er {
			return nil, ErrRegionRange
		}
	}

	return &Problem{
		conn:      cfg.Conn,
		dist:      cfg.Dist,
		lowpass:   append([]float64(nil), cfg.Lowpass...),
		empirical: cfg.Empirical,
		freqs:     append([]float64(nil), cfg.FreqsHz...),
		regions:   append([]int(nil), regions...),
		workers:   cfg.Workers,
	}, nil
}

// Regions returns the region indices the objective scores.
func (p *Problem) Regions() []int {
	return append([]int(nil), p.regions...)
}

// Cost evaluates the objective at parameter vector x
// (tau_e, tau_i, alpha, speed, gei, gii, tau_C): the negative mean
// Pearson correlation between the aligned model and empirical spectra
// over the covered regions.
//
// The call is deterministic and tolerates boundary or out-of-range
// parameters; degenerate numerics surface as NaN rather than panics.
func (p *Problem) Cost(x []float64) float64 {
	prm, err := forward.ParamsFromVector(x)
	if err != nil {
		return math.NaN()
	}

	model, err := p.sweep(prm)
	if err != nil {
		return math.NaN()
	}

	scores := make([]float64, len(p.regions))
	for i, region := range p.regions {
		qdata := make([]float64, len(p.freqs))
		mat.Row(qdata, region, p.empirical)
		if floats.Sum(qdata) != 0 {
			qdata = signal.Demean(signal.Mag2dB(qdata))
		}

		qmodel, err := p.modelCurve(model[i])
		if err != nil {
			return math.NaN()
		}

		scores[i] = scoreCurves(qdata, qmodel)
	}
	return -stat.Mean(scores, nil)
}

// ModelSpectra returns the model's predicted magnitude spectra for the
// covered regions at parameters prm, after lowpass smoothing: one row
// per covered region, one column per frequency bin. This is the linear-
// magnitude curve the objective aligns against the empirical data,
// useful for inspection and plotting.
func (p *Problem) ModelSpectra(prm forward.Params) (*mat.Dense, error) {
	model, err := p.sweep(prm)
	if err != nil {
		return nil, err
	}
	out := mat.NewDense(len(p.regions), len(p.freqs), nil)
	for i := range p.regions {
		smoothed, err := signal.ConvolveSame(signal.Magnitude(model[i]), p.lowpass)
		if err != nil {
			return nil, err
		}
		out.SetRow(i, smoothed)
	}
	return out, nil
}

// sweep evaluates the forward model across all frequency bins and
// collects the complex region responses of the covered regions, one
// slice per region.
func (p *Problem) sweep(prm forward.Params) ([][]complex128, error) {
	bins := len(p.freqs)
	model := make([][]complex128, len(p.regions))
	for i := range model {
		model[i] = make([]complex128, bins)
	}

	evalBin := func(j int) error {
		w := 2 * math.Pi * p.freqs[j]
		res, err := forward.NetworkTransferFunction(p.conn, p.dist, w, prm)
		if err != nil {
			return err
		}
		for i, region := range p.regions {
			model[i][j] = res.RegionResponse[region]
		}
		return nil
	}

	if p.workers < 2 {
		for j := 0; j < bins; j++ {
			if err := evalBin(j); err != nil {
				return nil, err
			}
		}
		return model, nil
	}

	workers := p.workers
	if workers > bins {
		workers = bins
	}
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		firstErr error
	)
	next := make(chan int)
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range next {
				if err := evalBin(j); err != nil {
					mu.Lock()
					if firstErr == nil {
						firstErr = err
					}
					mu.Unlock()
				}
			}
		}()
	}
	for j := 0; j < bins; j++ {
		next <- j
	}
	close(next)
	wg.Wait()
	if firstErr != nil {
		return nil, firstErr
	}
	return model, nil
}

// modelCurve converts one region's complex response sweep into the
// aligned comparison curve: magnitude, lowpass smoothing, dB, zero
// mean.
func (p *Problem) modelCurve(response []complex128) ([]float64, error) {
	smoothed, err := signal.ConvolveSame(signal.Magnitude(response), p.lowpass)
	if err != nil {
		return nil, err
	}
	return signal.Demean(signal.Mag2dB(smoothed)), nil
}

// scoreCurves is the single curve-validity gate for the per-region
// agreement score: a curve that sums to exactly zero (an all-zero
// empirical row, or a model curve flattened to a constant) scores 0,
// neither rewarding nor penalizing the region; valid pairs score their
// Pearson correlation.
func scoreCurves(empirical, model []float64) float64 {
	if floats.Sum(empirical) == 0 || floats.Sum(model) == 0 {
		return 0
	}
	return stat.Correlation(empirical, model, nil)
}
