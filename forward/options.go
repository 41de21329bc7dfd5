package forward

// config holds transfer-function policy settings.
type config struct {
	allModes bool
}

// Option mutates the transfer-function configuration.
type Option func(*config)

// WithAllModes disables eigenmode truncation: all N modes are retained
// and eigenvalues are ordered ascending by modulus instead of by real
// part. The truncated path (K = 2N/3, real-part ordering) is the
// default and the one production fits exercise.
func WithAllModes() Option {
	return func(cfg *config) {
		cfg.allModes = true
	}
}

func applyOptions(opts []Option) config {
	var cfg config
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return cfg
}
