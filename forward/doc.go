// Package forward implements the spectral graph model's forward
// solution: a frequency-domain network transfer function built on the
// complex, delay-weighted Laplacian of a structural connectome.
//
// For a connectivity matrix C, a fiber-distance matrix D, an angular
// frequency w, and a set of neural-mass parameters, the model couples a
// local excitatory/inhibitory transfer function to the Laplacian
// eigenmodes and predicts each region's complex frequency response plus
// a model functional-connectivity matrix.
//
// The solver is a pure function of its inputs. Degenerate inputs are
// not rejected; following standard floating-point semantics they
// propagate NaN or Inf values instead of raising errors, so a
// long-running optimization loop is never aborted by one bad parameter
// trial.
package forward
