// Package connectome loads and prepares structural connectomes for the
// spectral graph model: region-to-region fiber-count (connectivity) and
// fiber-length (distance) matrices in the 86-region Desikan-Killiany
// atlas ordering.
//
// The package owns the region bookkeeping that the numeric model must
// never see: CSV ingest, the HCP-to-DK permutation, hemisphere
// bi-symmetrization, extreme-direction reduction, and an [Atlas] type
// that validates the region-name-to-index mapping once at load time
// instead of carrying string keys through the computation.
package connectome
