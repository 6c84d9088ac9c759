package pool

// Option configures pool construction.
type Option func(*settings)

type settings struct {
	name      string
	metrics   *Metrics
	onRelease []func()
	onDetach  []func()
}

func applyOptions(opts []Option) settings {
	cfg := settings{name: "default"}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return cfg
}

// WithName sets the pool name used in metrics labels and diagnostics.
func WithName(name string) Option {
	return func(s *settings) {
		if name != "" {
			s.name = name
		}
	}
}

// WithMetrics attaches instrumentation to the pool. A nil Metrics leaves the
// pool uninstrumented.
func WithMetrics(m *Metrics) Option {
	return func(s *settings) {
		s.metrics = m
	}
}

// WithReleaseHook registers fn to run after a guard returns its value to the
// pool. Hooks run outside the pool lock.
func WithReleaseHook(fn func()) Option {
	return func(s *settings) {
		if fn != nil {
			s.onRelease = append(s.onRelease, fn)
		}
	}
}

// WithDetachHook registers fn to run when a guard is detached and its value
// leaves the pool's custody.
func WithDetachHook(fn func()) Option {
	return func(s *settings) {
		if fn != nil {
			s.onDetach = append(s.onDetach, fn)
		}
	}
}
