package render

const (
	// DefaultQuantum is the number of frames rendered per block.
	DefaultQuantum = 128
	// DefaultMaxDelay bounds delay nodes created without an explicit limit.
	DefaultMaxDelay = 1.0
)

type config struct {
	quantum  int
	maxDelay float64
}

// Option configures a Context.
type Option func(*config)

// WithQuantum sets the render block size in frames.
func WithQuantum(frames int) Option {
	return func(c *config) {
		if frames > 0 {
			c.quantum = frames
		}
	}
}

// WithMaxDelay sets the default maximum delay in seconds for delay nodes.
func WithMaxDelay(seconds float64) Option {
	return func(c *config) {
		if seconds > 0 {
			c.maxDelay = seconds
		}
	}
}

func applyOptions(opts []Option) config {
	cfg := config{quantum: DefaultQuantum, maxDelay: DefaultMaxDelay}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	return cfg
}
