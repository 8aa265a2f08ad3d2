package render

import (
	"errors"
	"fmt"
	"math"

	algofft "github.com/MeKo-Christian/algo-fft"
	"github.com/cwbudde/algo-vecmath"

	"github.com/cwbudde/acoustics-lab/dsp/core"
	"github.com/cwbudde/acoustics-lab/dsp/graph"
	"github.com/cwbudde/acoustics-lab/dsp/window"
)

const (
	// DefaultFFTSize is the analysis length of an analyser node.
	DefaultFFTSize = 2048
	// DefaultMinDecibels maps to byte 0 in FrequencyData.
	DefaultMinDecibels = -100.0
	// DefaultMaxDecibels maps to byte 255 in FrequencyData.
	DefaultMaxDecibels = -30.0
)

// ErrInvalidFFTSize is returned for analyser sizes that are not a power of
// two in [32, 32768].
var ErrInvalidFFTSize = errors.New("render: fft size must be a power of two in [32, 32768]")

// Analyser passes its input through unchanged and keeps the most recent
// FFT-size samples for spectrum and waveform snapshots.
type Analyser struct {
	base

	c         *Context
	fftSize   int
	smoothing float64
	minDB     float64
	maxDB     float64

	ring  []float64
	write int

	win      []float64
	frame    []float64
	plan     *algofft.Plan[complex128]
	fftIn    []complex128
	fftOut   []complex128
	re, im   []float64
	mag      []float64
	smoothed []float64
	// analysedAt is the frame count of the last spectrum update; -1 before
	// the first one.
	analysedAt int64
}

// NewAnalyser creates an analyser with the given FFT size and temporal
// smoothing constant in [0, 1).
func (c *Context) NewAnalyser(fftSize int, smoothing float64) (*Analyser, error) {
	if fftSize < 32 || fftSize > 32768 || fftSize&(fftSize-1) != 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidFFTSize, fftSize)
	}

	if smoothing < 0 || smoothing >= 1 || math.IsNaN(smoothing) {
		return nil, fmt.Errorf("render: smoothing must be in [0, 1): %v", smoothing)
	}

	plan, err := algofft.NewPlan64(fftSize)
	if err != nil {
		return nil, fmt.Errorf("render: analyser fft plan: %w", err)
	}

	bins := fftSize / 2
	n := &Analyser{
		c:          c,
		fftSize:    fftSize,
		smoothing:  smoothing,
		minDB:      DefaultMinDecibels,
		maxDB:      DefaultMaxDecibels,
		ring:       make([]float64, fftSize),
		win:        window.Generate(window.TypeBlackman, fftSize, window.WithPeriodic()),
		frame:      make([]float64, fftSize),
		plan:       plan,
		fftIn:      make([]complex128, fftSize),
		fftOut:     make([]complex128, fftSize),
		re:         make([]float64, bins),
		im:         make([]float64, bins),
		mag:        make([]float64, bins),
		smoothed:   make([]float64, bins),
		analysedAt: -1,
	}

	if err := c.register(func(id graph.NodeID) processor {
		n.id = id
		return n
	}); err != nil {
		return nil, err
	}

	return n, nil
}

// FFTSize returns the analysis length.
func (n *Analyser) FFTSize() int {
	return n.fftSize
}

// FrequencyBinCount returns the number of spectrum bins, FFTSize/2.
func (n *Analyser) FrequencyBinCount() int {
	return n.fftSize / 2
}

// Smoothing returns the temporal smoothing constant.
func (n *Analyser) Smoothing() float64 {
	return n.smoothing
}

func (n *Analyser) process(_ *Context, in, out []float64) {
	copy(out, in)

	for _, x := range in {
		n.ring[n.write] = x

		n.write++
		if n.write == len(n.ring) {
			n.write = 0
		}
	}
}

// FloatFrequencyData returns the smoothed spectrum in dB, one value per bin.
// The spectrum is recomputed at most once per rendered quantum; repeated
// calls in between return the same snapshot.
func (n *Analyser) FloatFrequencyData() []float64 {
	n.c.mu.Lock()
	defer n.c.mu.Unlock()

	n.analyse()

	out := make([]float64, len(n.smoothed))
	for k, v := range n.smoothed {
		out[k] = core.LinearToDB(v)
	}

	return out
}

// FrequencyData returns the smoothed spectrum mapped linearly from
// [minDecibels, maxDecibels] to [0, 255].
func (n *Analyser) FrequencyData() []byte {
	n.c.mu.Lock()
	defer n.c.mu.Unlock()

	n.analyse()

	scale := 255 / (n.maxDB - n.minDB)
	out := make([]byte, len(n.smoothed))

	for k, v := range n.smoothed {
		db := core.LinearToDB(v)
		out[k] = byte(core.Clamp(math.Floor(scale*(db-n.minDB)), 0, 255))
	}

	return out
}

// FloatTimeDomainData returns the most recent FFTSize input samples, oldest
// first.
func (n *Analyser) FloatTimeDomainData() []float64 {
	n.c.mu.Lock()
	defer n.c.mu.Unlock()

	out := make([]float64, n.fftSize)
	n.snapshot(out)

	return out
}

// TimeDomainData returns the most recent FFTSize input samples mapped to
// bytes as 128·(1+x), clamped to [0, 255].
func (n *Analyser) TimeDomainData() []byte {
	n.c.mu.Lock()
	defer n.c.mu.Unlock()

	samples := make([]float64, n.fftSize)
	n.snapshot(samples)

	out := make([]byte, n.fftSize)
	for i, x := range samples {
		out[i] = byte(core.Clamp(math.Floor(128*(1+x)), 0, 255))
	}

	return out
}

// snapshot copies the ring oldest-first into dst. Caller holds the context
// lock.
func (n *Analyser) snapshot(dst []float64) {
	k := copy(dst, n.ring[n.write:])
	copy(dst[k:], n.ring[:n.write])
}

// analyse updates the smoothed magnitudes if audio was rendered since the
// previous update. Caller holds the context lock.
func (n *Analyser) analyse() {
	if n.analysedAt == n.c.frame {
		return
	}

	n.analysedAt = n.c.frame

	n.snapshot(n.frame)
	window.Apply(n.frame, n.win)

	for i, x := range n.frame {
		n.fftIn[i] = complex(x, 0)
	}

	if err := n.plan.Forward(n.fftOut, n.fftIn); err != nil {
		return
	}

	norm := 1 / float64(n.fftSize)
	for k := range n.re {
		n.re[k] = real(n.fftOut[k]) * norm
		n.im[k] = imag(n.fftOut[k]) * norm
	}

	vecmath.Magnitude(n.mag, n.re, n.im)

	tau := n.smoothing
	for k, m := range n.mag {
		v := tau*n.smoothed[k] + (1-tau)*m
		if math.IsNaN(v) || math.IsInf(v, 0) {
			v = 0
		}

		n.smoothed[k] = v
	}
}
