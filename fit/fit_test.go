package fit

import (
	"errors"
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"

	"github.com/jenncummings/spectrome/forward"
)

// testConnectome returns a small symmetric toy network with unit
// distances off the diagonal.
func testConnectome() (conn, dist *mat.Dense) {
	conn = mat.NewDense(4, 4, []float64{
		0, 1, 1, 0,
		1, 0, 0, 1,
		1, 0, 0, 1,
		0, 1, 1, 0,
	})
	dist = mat.NewDense(4, 4, nil)
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			if i != j {
				dist.Set(i, j, 10)
			}
		}
	}
	return conn, dist
}

func testFreqs() []float64 {
	freqs := make([]float64, 20)
	for i := range freqs {
		freqs[i] = 2 + float64(i)
	}
	return freqs
}

var testKernel = []float64{0.25, 0.5, 0.25}

func testProblem(t *testing.T, empirical *mat.Dense, regions []int, workers int) *Problem {
	t.Helper()
	conn, dist := testConnectome()
	p, err := NewProblem(ProblemConfig{
		Conn:      conn,
		Dist:      dist,
		Lowpass:   testKernel,
		Empirical: empirical,
		FreqsHz:   testFreqs(),
		Regions:   regions,
		Workers:   workers,
	})
	if err != nil {
		t.Fatalf("NewProblem: %v", err)
	}
	return p
}

// modelEmpirical synthesizes an empirical matrix that matches the model
// spectra exactly at prm, so the objective's best value is attainable.
func modelEmpirical(t *testing.T, prm forward.Params, regions []int, workers int) *mat.Dense {
	t.Helper()
	placeholder := mat.NewDense(4, len(testFreqs()), nil)
	p := testProblem(t, placeholder, regions, workers)
	spectra, err := p.ModelSpectra(prm)
	if err != nil {
		t.Fatalf("ModelSpectra: %v", err)
	}
	empirical := mat.NewDense(4, len(testFreqs()), nil)
	for i, region := range regions {
		row := make([]float64, len(testFreqs()))
		mat.Row(row, i, spectra)
		empirical.SetRow(region, row)
	}
	return empirical
}

func TestNewProblemErrors(t *testing.T) {
	conn, dist := testConnectome()
	freqs := testFreqs()
	empirical := mat.NewDense(4, len(freqs), nil)

	tests := []struct {
		name string
		cfg  ProblemConfig
		want error
	}{
		{
			name: "shape mismatch",
			cfg: ProblemConfig{
				Conn: mat.NewDense(3, 3, nil), Dist: dist,
				Lowpass: testKernel, Empirical: empirical, FreqsHz: freqs,
			},
			want: ErrShapeMismatch,
		},
		{
			name: "even kernel",
			cfg: ProblemConfig{
				Conn: conn, Dist: dist,
				Lowpass: []float64{0.5, 0.5}, Empirical: empirical, FreqsHz: freqs,
			},
			want: ErrBadKernel,
		},
		{
			name: "bin mismatch",
			cfg: ProblemConfig{
				Conn: conn, Dist: dist,
				Lowpass: testKernel, Empirical: empirical, FreqsHz: freqs[:5],
			},
			want: ErrBinMismatch,
		},
		{
			name: "empty regions",
			cfg: ProblemConfig{
				Conn: conn, Dist: dist,
				Lowpass: testKernel, Empirical: empirical, FreqsHz: freqs,
				Regions: []int{},
			},
			want: ErrNoRegions,
		},
		{
			name: "region out of range",
			cfg: ProblemConfig{
				Conn: conn, Dist: dist,
				Lowpass: testKernel, Empirical: empirical, FreqsHz: freqs,
				Regions: []int{0, 4},
			},
			want: ErrRegionRange,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewProblem(tt.cfg); !errors.Is(err, tt.want) {
				t.Errorf("NewProblem() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestCostPerfectMatch(t *testing.T) {
	regions := []int{0, 1, 2, 3}
	prm := forward.DefaultParams()
	empirical := modelEmpirical(t, prm, regions, 0)
	p := testProblem(t, empirical, regions, 0)

	got := p.Cost(prm.Vector())
	if math.Abs(got-(-1)) > 1e-9 {
		t.Errorf("Cost at generating parameters = %v, want -1", got)
	}
}

func TestCostZeroEmpiricalRegion(t *testing.T) {
	regions := []int{0, 1}
	prm := forward.DefaultParams()
	empirical := modelEmpirical(t, prm, regions, 0)
	// Region 1 has no empirical coverage: it scores 0.
	for j := 0; j < len(testFreqs()); j++ {
		empirical.Set(1, j, 0)
	}
	p := testProblem(t, empirical, regions, 0)

	got := p.Cost(prm.Vector())
	if math.Abs(got-(-0.5)) > 1e-9 {
		t.Errorf("Cost with one zero region = %v, want -0.5", got)
	}
}

func TestCostDeterministic(t *testing.T) {
	regions := []int{0, 1, 2, 3}
	prm := forward.DefaultParams()
	empirical := modelEmpirical(t, prm, regions, 0)
	p := testProblem(t, empirical, regions, 0)

	x := prm.Vector()
	x[2] = 1.7 // perturb alpha off the generating value
	first := p.Cost(x)
	second := p.Cost(x)
	if first != second {
		t.Errorf("repeated Cost calls differ: %v vs %v", first, second)
	}

	parallel := testProblem(t, empirical, regions, 4)
	if got := parallel.Cost(x); got != first {
		t.Errorf("parallel Cost = %v, serial = %v", got, first)
	}
}

func TestCostBadVector(t *testing.T) {
	regions := []int{0, 1}
	empirical := mat.NewDense(4, len(testFreqs()), nil)
	p := testProblem(t, empirical, regions, 0)

	if got := p.Cost([]float64{1, 2, 3}); !math.IsNaN(got) {
		t.Errorf("Cost with short vector = %v, want NaN", got)
	}
}

func TestCostRange(t *testing.T) {
	regions := []int{0, 1, 2, 3}
	prm := forward.DefaultParams()
	empirical := modelEmpirical(t, prm, regions, 0)
	p := testProblem(t, empirical, regions, 0)

	x := prm.Vector()
	x[0] = 0.02
	x[5] = 3
	got := p.Cost(x)
	if math.IsNaN(got) || got < -1 || got > 1 {
		t.Errorf("Cost = %v, want a finite value in [-1, 1]", got)
	}
}

func TestFitDeterministic(t *testing.T) {
	regions := []int{0, 1, 2, 3}
	prm := forward.DefaultParams()
	empirical := modelEmpirical(t, prm, regions, 0)
	p := testProblem(t, empirical, regions, 0)

	cfg := Config{Hops: 2, Seed: 7}
	first, err := Fit(p, cfg)
	if err != nil {
		t.Fatalf("Fit: %v", err)
	}
	second, err := Fit(p, cfg)
	if err != nil {
		t.Fatalf("Fit: %v", err)
	}
	if first.Params != second.Params || first.Cost != second.Cost {
		t.Errorf("seeded runs diverge: %+v vs %+v", first, second)
	}
	if first.FuncEvals != second.FuncEvals {
		t.Errorf("evaluation counts diverge: %d vs %d", first.FuncEvals, second.FuncEvals)
	}
}

func TestFitRecoversGeneratingParameters(t *testing.T) {
	regions := []int{0, 1, 2, 3}
	prm := forward.DefaultParams()
	empirical := modelEmpirical(t, prm, regions, 0)
	p := testProblem(t, empirical, regions, 0)

	// Bounds wide enough to contain the generating parameters, so the
	// clamp never moves the starting point.
	bounds := &Bounds{
		Min: []float64{0.001, 0.001, 0.1, 1, 0.5, 0.5, 0.001},
		Max: []float64{0.03, 0.03, 5, 20, 10, 10, 0.03},
	}
	res, err := Fit(p, Config{Initial: prm, Bounds: bounds, Hops: 1, Seed: 1})
	if err != nil {
		t.Fatalf("Fit: %v", err)
	}
	// The generating parameters score -1; starting there the search
	// must not end anywhere worse.
	if res.Cost > -1+1e-6 {
		t.Errorf("Fit cost = %v, want close to -1", res.Cost)
	}
	if res.Hops != 1 {
		t.Errorf("Hops = %d, want 1", res.Hops)
	}
	if res.FuncEvals == 0 {
		t.Error("FuncEvals = 0, expected evaluations to be counted")
	}
}

func TestFitBadBounds(t *testing.T) {
	regions := []int{0}
	empirical := mat.NewDense(4, len(testFreqs()), nil)
	p := testProblem(t, empirical, regions, 0)

	_, err := Fit(p, Config{Bounds: &Bounds{Min: []float64{0}, Max: []float64{1}}})
	if !errors.Is(err, ErrBadBounds) {
		t.Errorf("expected ErrBadBounds, got %v", err)
	}

	inverted := DefaultBounds()
	inverted.Min[0], inverted.Max[0] = inverted.Max[0], inverted.Min[0]
	if _, err := Fit(p, Config{Bounds: inverted}); !errors.Is(err, ErrBadBounds) {
		t.Errorf("expected ErrBadBounds, got %v", err)
	}
}

func TestBoundsClamp(t *testing.T) {
	b := DefaultBounds()
	x := []float64{-1, 100, 1, 10, 5, 5, 0.01}
	b.clamp(x)
	if x[0] != b.Min[0] {
		t.Errorf("x[0] = %v, want clamped to %v", x[0], b.Min[0])
	}
	if x[1] != b.Max[1] {
		t.Errorf("x[1] = %v, want clamped to %v", x[1], b.Max[1])
	}
	if x[3] != 10 {
		t.Errorf("x[3] = %v, want untouched 10", x[3])
	}
}
