// Package window provides the analysis windows used by the renderer's
// analyser node.
package window

import (
	"math"

	"github.com/cwbudde/algo-vecmath"
)

// Type identifies a window function.
type Type int

const (
	TypeRectangular Type = iota
	TypeHann
	// TypeBlackman is the classic Blackman window (alpha = 0.16), the
	// window browser analysers apply before their FFT.
	TypeBlackman
)

// Option configures window generation.
type Option func(*config)

type config struct {
	periodic bool
}

// WithPeriodic configures periodic form (FFT framing) instead of symmetric form.
func WithPeriodic() Option {
	return func(c *config) {
		c.periodic = true
	}
}

// Generate returns window coefficients of the given length.
func Generate(t Type, length int, opts ...Option) []float64 {
	if length <= 0 {
		return nil
	}

	var cfg config

	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	denom := float64(length - 1)
	if cfg.periodic || length == 1 {
		denom = float64(length)
	}

	out := make([]float64, length)
	for i := range out {
		x := 2 * math.Pi * float64(i) / denom

		switch t {
		case TypeHann:
			out[i] = 0.5 - 0.5*math.Cos(x)
		case TypeBlackman:
			out[i] = 0.42 - 0.5*math.Cos(x) + 0.08*math.Cos(2*x)
		default:
			out[i] = 1
		}
	}

	return out
}

// Apply multiplies buf in-place by precomputed coefficients. Both slices
// must have the same length.
func Apply(buf, coeffs []float64) {
	if len(buf) == 0 || len(buf) != len(coeffs) {
		return
	}

	vecmath.MulBlockInPlace(buf, coeffs)
}

// CoherentGain returns the mean of the window coefficients.
func CoherentGain(coeffs []float64) float64 {
	if len(coeffs) == 0 {
		return 0
	}

	sum := 0.0
	for _, w := range coeffs {
		sum += w
	}

	return sum / float64(len(coeffs))
}
