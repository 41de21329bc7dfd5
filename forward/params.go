package forward

import "errors"

// NumParams is the length of the model parameter vector.
const NumParams = 7

// ErrParamCount is returned when a parameter vector does not contain
// exactly NumParams entries.
var ErrParamCount = errors.New("forward: parameter vector must have 7 entries")

// Params holds the neural-mass model parameters. All values are
// strictly positive in the physiologically valid regime.
type Params struct {
	TauE  float64 // excitatory time constant (s)
	TauI  float64 // inhibitory time constant (s)
	Alpha float64 // global coupling strength
	Speed float64 // transmission velocity (m/s)
	Gei   float64 // excitatory-inhibitory gain, relative to E-E
	Gii   float64 // inhibitory-inhibitory gain, relative to E-E
	TauC  float64 // cortico-cortical propagation time constant (s)
}

// DefaultParams returns the canonical parameter set used as an
// optimization starting point.
func DefaultParams() Params {
	return Params{
		TauE:  0.012,
		TauI:  0.003,
		Alpha: 1.0,
		Speed: 5.0,
		Gei:   4.0,
		Gii:   1.0,
		TauC:  0.006,
	}
}

// ParamsFromVector builds Params from the ordered vector
// (tau_e, tau_i, alpha, speed, gei, gii, tau_C).
func ParamsFromVector(x []float64) (Params, error) {
	if len(x) != NumParams {
		return Params{}, ErrParamCount
	}
	return Params{
		TauE:  x[0],
		TauI:  x[1],
		Alpha: x[2],
		Speed: x[3],
		Gei:   x[4],
		Gii:   x[5],
		TauC:  x[6],
	}, nil
}

// Vector returns the parameters in optimizer order.
func (p Params) Vector() []float64 {
	return []float64{p.TauE, p.TauI, p.Alpha, p.Speed, p.Gei, p.Gii, p.TauC}
}
