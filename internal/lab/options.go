package lab

import (
	"io"
	"log/slog"
	"math/rand/v2"

	"github.com/cwbudde/acoustics-lab/dsp/noise"
	"github.com/cwbudde/acoustics-lab/internal/observe"
)

const (
	// DefaultFFTSize is the transform size of every analyser tap.
	DefaultFFTSize = 2048
	// DefaultWeightingSmoothing is the spectrum smoothing of the weighting tap.
	DefaultWeightingSmoothing = 0.85
	// DefaultANCSmoothing is the spectrum smoothing of the three ANC taps.
	DefaultANCSmoothing = 0.8
	// DefaultMasterGain is the output volume after Init.
	DefaultMasterGain = 0.5
	// DefaultFrequency is the initial tone frequency in Hz.
	DefaultFrequency = 1000.0
)

type options struct {
	fftSize            int
	weightingSmoothing float64
	ancSmoothing       float64
	masterGain         float64
	white              noise.WhiteSource
	logger             *slog.Logger
	metrics            *observe.Metrics
}

// Option configures an Engine.
type Option func(*options)

// WithFFTSize sets the analyser transform size.
func WithFFTSize(n int) Option {
	return func(o *options) {
		o.fftSize = n
	}
}

// WithSmoothing sets the spectrum smoothing of the weighting tap and of the
// ANC taps. Values must be in [0, 1).
func WithSmoothing(weighting, anc float64) Option {
	return func(o *options) {
		o.weightingSmoothing = weighting
		o.ancSmoothing = anc
	}
}

// WithMasterGain sets the output volume applied at Init.
func WithMasterGain(g float64) Option {
	return func(o *options) {
		o.masterGain = g
	}
}

// WithNoiseSource sets the white-noise stream the pink buffer is colored
// from. A seeded source makes the buffer reproducible.
func WithNoiseSource(white noise.WhiteSource) Option {
	return func(o *options) {
		o.white = white
	}
}

// WithLogger sets the engine logger. The default discards.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithMetrics sets the instruments mode transitions are counted on. The
// default is [observe.DefaultMetrics].
func WithMetrics(m *observe.Metrics) Option {
	return func(o *options) {
		if m != nil {
			o.metrics = m
		}
	}
}

func applyOptions(opts []Option) options {
	o := options{
		fftSize:            DefaultFFTSize,
		weightingSmoothing: DefaultWeightingSmoothing,
		ancSmoothing:       DefaultANCSmoothing,
		masterGain:         DefaultMasterGain,
		white:              globalWhite{},
		logger:             slog.New(slog.NewTextHandler(io.Discard, nil)),
	}

	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}

	if o.metrics == nil {
		o.metrics = observe.DefaultMetrics()
	}

	return o
}

// globalWhite draws from the math/rand/v2 top-level generator.
type globalWhite struct{}

func (globalWhite) Float64() float64 {
	return rand.Float64()
}
