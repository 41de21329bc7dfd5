package fit

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"math/rand"

	"gonum.org/v1/gonum/optimize"

	"github.com/jenncummings/spectrome/forward"
)

// Errors returned by the optimization driver.
var (
	ErrBadBounds = errors.New("fit: bounds must have one min/max pair per parameter with min <= max")
	ErrBadConfig = errors.New("fit: hops, step size and temperature must be positive")
)

// Bounds limits the parameter search box, one pair per entry of the
// parameter vector.
type Bounds struct {
	Min, Max []float64
}

// DefaultBounds returns the physiologically plausible search box.
func DefaultBounds() *Bounds {
	return &Bounds{
		Min: []float64{0.005, 0.005, 0.1, 5, 0.5, 0.5, 0.005},
		Max: []float64{0.03, 0.2, 5, 20, 10, 10, 0.03},
	}
}

func (b *Bounds) validate() error {
	if len(b.Min) != forward.NumParams || len(b.Max) != forward.NumParams {
		return ErrBadBounds
	}
	for i := range b.Min {
		if b.Min[i] > b.Max[i] {
			return ErrBadBounds
		}
	}
	return nil
}

// clamp projects x onto the bounds box in place.
func (b *Bounds) clamp(x []float64) {
	for i := range x {
		if x[i] < b.Min[i] {
			x[i] = b.Min[i]
		}
		if x[i] > b.Max[i] {
			x[i] = b.Max[i]
		}
	}
}

// Config controls the global parameter search.
type Config struct {
	// Initial is the starting parameter set. The zero value selects
	// [forward.DefaultParams].
	Initial forward.Params

	// Bounds limits the search box; nil selects [DefaultBounds].
	Bounds *Bounds

	// Hops is the number of basin hops: random restarts each followed
	// by a Nelder-Mead local minimization. Zero selects 20.
	Hops int

	// StepSize scales the uniform random displacement applied between
	// hops, as a fraction of each parameter's bound range. Zero
	// selects 0.25.
	StepSize float64

	// Temperature controls Metropolis acceptance of uphill hops. Zero
	// selects 1.
	Temperature float64

	// Seed makes the hop sequence reproducible.
	Seed int64

	// Logger receives per-hop progress. Nil discards.
	Logger *slog.Logger
}

// Result is the outcome of a parameter search.
type Result struct {
	Params    forward.Params // best parameter set found
	Cost      float64        // objective value at Params
	FuncEvals int            // total objective evaluations
	Hops      int            // hops performed
}

// Fit runs a basin-hopping-style search for the parameters minimizing
// prob's cost: repeated Nelder-Mead local minimizations from randomly
// displaced, bounds-clamped starting points, with Metropolis acceptance
// deciding which minimum seeds the next hop. The search is
// deterministic for a given seed.
func Fit(prob *Problem, cfg Config) (*Result, error) {
	bounds := cfg.Bounds
	if bounds == nil {
		bounds = DefaultBounds()
	}
	if err := bounds.validate(); err != nil {
		return nil, err
	}

	initial := cfg.Initial
	if initial == (forward.Params{}) {
		initial = forward.DefaultParams()
	}
	hops := cfg.Hops
	if hops == 0 {
		hops = 20
	}
	step := cfg.StepSize
	if step == 0 {
		step = 0.25
	}
	temp := cfg.Temperature
	if temp == 0 {
		temp = 1
	}
	if hops < 0 || step < 0 || temp < 0 {
		return nil, ErrBadConfig
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	rng := rand.New(rand.NewSource(cfg.Seed))
	evals := 0
	objective := func(x []float64) float64 {
		evals++
		clamped := append([]float64(nil), x...)
		bounds.clamp(clamped)
		return prob.Cost(clamped)
	}

	current := initial.Vector()
	bounds.clamp(current)
	currentCost, x, err := localMinimize(objective, current)
	if err != nil {
		return nil, err
	}
	current = x

	best := append([]float64(nil), current...)
	bestCost := currentCost
	logger.Info("initial minimization", "cost", currentCost)

	for hop := 1; hop <= hops; hop++ {
		trial := make([]float64, len(current))
		for i := range trial {
			span := bounds.Max[i] - bounds.Min[i]
			trial[i] = current[i] + (2*rng.Float64()-1)*step*span
		}
		bounds.clamp(trial)

		trialCost, trialX, err := localMinimize(objective, trial)
		if err != nil {
			return nil, err
		}
		bounds.clamp(trialX)

		accept := trialCost <= currentCost ||
			rng.Float64() < math.Exp((currentCost-trialCost)/temp)
		if accept {
			current = trialX
			currentCost = trialCost
		}
		if trialCost < bestCost {
			best = append(best[:0], trialX...)
			bestCost = trialCost
		}
		logger.Info("hop complete",
			"hop", hop, "cost", trialCost, "best", bestCost, "accepted", accept)
	}

	prm, err := forward.ParamsFromVector(best)
	if err != nil {
		return nil, err
	}
	return &Result{
		Params:    prm,
		Cost:      bestCost,
		FuncEvals: evals,
		Hops:      hops,
	}, nil
}

// localMinimize runs a Nelder-Mead descent from x0 and returns the
// minimum found. Convergence-status errors from the optimizer are not
// fatal for a derivative-free landscape; only setup failures are.
func localMinimize(f func([]float64) float64, x0 []float64) (float64, []float64, error) {
	problem := optimize.Problem{Func: f}
	result, err := optimize.Minimize(problem, x0, nil, &optimize.NelderMead{})
	if err != nil {
		if result == nil {
			return 0, nil, fmt.Errorf("fit: local minimization: %w", err)
		}
		// Keep the partial minimum when the optimizer only failed to
		// certify convergence.
	}
	return result.F, result.X, nil
}
