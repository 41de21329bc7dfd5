// Package meg turns source-localized MEG recordings into the empirical
// power spectra consumed by the fitting pipeline.
//
// A [Spectra] value is a regions-by-bins magnitude matrix sharing the
// connectome's region ordering. Spectra can be ingested directly from
// CSV exports or computed from raw region timecourses with [Welch]
// averaged periodograms.
package meg
