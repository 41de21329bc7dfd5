package forward

import (
	"fmt"
	"math"
	"math/cmplx"

	"gonum.org/v1/gonum/mat"

	"github.com/jenncummings/spectrome/linalg"
)

// excitatoryFraction is the fraction of the signal at a node that is
// recurrent excitatory.
const excitatoryFraction = 0.5

// modeClampFraction sets the floor on |q1| relative to its maximum
// across modes, preventing near-zero denominators from blowing up the
// per-mode response.
const modeClampFraction = 0.05

// Result is the forward solution at a single angular frequency.
type Result struct {
	// FreqResp is the complex response of each retained eigenmode,
	// length K. Mode 0 is the near-uniform mode and is excluded from
	// the spatial aggregates below.
	FreqResp []complex128

	// Eigenvalues are the K retained Laplacian eigenvalues, ascending
	// by real part on the default truncated path.
	Eigenvalues []complex128

	// Eigenvectors holds the retained eigenmodes as columns (N x K).
	// When K = 0 (a network of fewer than two regions) the field is a
	// single all-zero placeholder column, since dense storage cannot
	// represent a zero-width matrix.
	Eigenvectors *mat.CDense

	// RegionResponse is each region's complex frequency response,
	// length N: the mode responses k = 1..K-1 weighted by their
	// eigenvector loadings.
	RegionResponse []complex128

	// FCModel is the model functional-connectivity matrix (N x N),
	// normalized by the square root of the regional response magnitude
	// on both sides.
	FCModel *mat.CDense
}

// NetworkTransferFunction evaluates the spectral graph model at
// angular frequency w (rad/s).
//
// conn and dist must be square and equal-shaped; that is the only
// validated precondition. Everything else follows permissive numeric
// propagation: out-of-range parameters yield NaN/Inf-valued results
// rather than errors.
//
// By default K = 2N/3 eigenmodes are retained (ascending real part);
// see [WithAllModes] for the full decomposition.
func NetworkTransferFunction(conn, dist mat.Matrix, w float64, p Params, opts ...Option) (*Result, error) {
	cfg := applyOptions(opts)

	lap, err := ComplexLaplacian(conn, dist, w, p.Speed)
	if err != nil {
		return nil, err
	}
	n, _ := conn.Dims()

	values, vectors, err := linalg.Eig(lap)
	if err != nil {
		return nil, fmt.Errorf("forward: eigendecomposition: %w", err)
	}

	k := 2 * n / 3
	if cfg.allModes {
		linalg.SortAscendingMagnitude(values, vectors)
		k = n
	} else {
		linalg.SortAscendingReal(values, vectors)
	}

	ev := values[:k]
	vv := mat.NewCDense(n, max(k, 1), nil)
	if k > 0 {
		for i := 0; i < n; i++ {
			for j := 0; j < k; j++ {
				vv.Set(i, j, vectors.At(i, j))
			}
		}
	}

	iw := complex(0, w)

	// Local neural-mass transfer functions: second-order lowpass forms
	// for the excitatory and inhibitory populations, mixed by the gain
	// parameters into a total cortical response.
	he := complex(1/(p.TauE*p.TauE), 0) / square(iw+complex(1/p.TauE, 0))
	hi := complex(p.Gii/(p.TauI*p.TauI), 0) / square(iw+complex(1/p.TauI, 0))

	hed := complex(p.Alpha/p.TauE, 0) / (iw + complex(p.Alpha/p.TauE, 0)*he)
	hid := complex(p.Alpha/p.TauI, 0) / (iw + complex(p.Alpha/p.TauI, 0)*hi)
	heid := complex(p.Gei, 0) * he * hi / (1 + complex(p.Gei, 0)*he*hi)

	const a = excitatoryFraction
	htotal := complex(a, 0)*hed +
		complex((1-a)/2, 0)*hid +
		complex((1-a)/2, 0)*heid

	// Mode-frequency coupling, with the |q1| floor applied while
	// preserving phase.
	q1 := make([]complex128, k)
	var qmax float64
	for m := 0; m < k; m++ {
		q1[m] = complex(p.TauC/p.Alpha, 0) * (iw + complex(p.Alpha/p.TauC, 0)*he*ev[m])
		if ab := cmplx.Abs(q1[m]); ab > qmax {
			qmax = ab
		}
	}
	qthr := modeClampFraction * qmax

	freqresp := make([]complex128, k)
	for m := 0; m < k; m++ {
		mag := cmplx.Abs(q1[m])
		if mag < qthr {
			mag = qthr
		}
		freqresp[m] = htotal / cmplx.Rect(mag, cmplx.Phase(q1[m]))
	}

	// Spatial aggregation over modes 1..K-1; the DC-like mode carries
	// no spatial discriminability.
	region := make([]complex128, n)
	for m := 1; m < k; m++ {
		fr := freqresp[m]
		for i := 0; i < n; i++ {
			region[i] += fr * vv.At(i, m)
		}
	}

	// FC = Vv[:,1:K] diag(freqresp[1:K]^2) Vv[:,1:K]^T, then scaled by
	// 1/sqrt(|region response|) on both sides.
	fc := make([]complex128, n*n)
	for m := 1; m < k; m++ {
		fr2 := freqresp[m] * freqresp[m]
		for i := 0; i < n; i++ {
			vi := vv.At(i, m) * fr2
			for j := 0; j < n; j++ {
				fc[i*n+j] += vi * vv.At(j, m)
			}
		}
	}
	inv := make([]float64, n)
	for i := 0; i < n; i++ {
		inv[i] = 1 / math.Sqrt(cmplx.Abs(region[i]))
	}
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			fc[i*n+j] *= complex(inv[i]*inv[j], 0)
		}
	}

	return &Result{
		FreqResp:       freqresp,
		Eigenvalues:    ev,
		Eigenvectors:   vv,
		RegionResponse: region,
		FCModel:        mat.NewCDense(n, n, fc),
	}, nil
}

func square(z complex128) complex128 { return z * z }
