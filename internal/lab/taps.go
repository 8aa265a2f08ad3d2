package lab

import (
	"sync/atomic"

	"github.com/cwbudde/acoustics-lab/stats/level"
)

// Tap names.
const (
	TapWeighting = "weighting"
	TapSource    = "source"
	TapAntiNoise = "anti-noise"
	TapResult    = "result"
)

// Tap is a read-only view of an analyser. Reads never take the engine lock,
// so visualisation can poll at any cadence while control calls run. Before
// Init and after Close every read returns nil.
type Tap struct {
	name string
	node atomic.Pointer[analyserRef]
}

type analyserRef struct {
	AnalyserNode
}

func newTap(name string) *Tap {
	return &Tap{name: name}
}

func (t *Tap) attach(n AnalyserNode) {
	if n == nil {
		t.node.Store(nil)
		return
	}

	t.node.Store(&analyserRef{n})
}

// Name identifies the tap.
func (t *Tap) Name() string {
	return t.name
}

// Ready reports whether the tap is attached to a live analyser.
func (t *Tap) Ready() bool {
	return t.node.Load() != nil
}

// FFTSize returns the analysis length, or 0 when detached.
func (t *Tap) FFTSize() int {
	if n := t.node.Load(); n != nil {
		return n.FFTSize()
	}

	return 0
}

// FrequencyData returns FFTSize/2 spectrum bytes, 0 at -100 dB and 255 at
// -30 dB.
func (t *Tap) FrequencyData() []byte {
	if n := t.node.Load(); n != nil {
		return n.FrequencyData()
	}

	return nil
}

// TimeDomainData returns FFTSize waveform bytes, 128 at zero.
func (t *Tap) TimeDomainData() []byte {
	if n := t.node.Load(); n != nil {
		return n.TimeDomainData()
	}

	return nil
}

// FloatFrequencyData returns the smoothed spectrum in dB.
func (t *Tap) FloatFrequencyData() []float64 {
	if n := t.node.Load(); n != nil {
		return n.FloatFrequencyData()
	}

	return nil
}

// FloatTimeDomainData returns the most recent FFTSize samples.
func (t *Tap) FloatTimeDomainData() []float64 {
	if n := t.node.Load(); n != nil {
		return n.FloatTimeDomainData()
	}

	return nil
}

// Level summarises the most recent FFTSize samples. A detached tap reports
// an empty block.
func (t *Tap) Level() level.Stats {
	return level.Calculate(t.FloatTimeDomainData())
}

// WeightingTap observes the weighting chain output.
func (e *Engine) WeightingTap() *Tap {
	return e.taps[0]
}

// SourceTap observes the direct ANC path.
func (e *Engine) SourceTap() *Tap {
	return e.taps[1]
}

// AntiNoiseTap observes the delayed, inverted ANC path.
func (e *Engine) AntiNoiseTap() *Tap {
	return e.taps[2]
}

// ResultTap observes the sum of both ANC paths.
func (e *Engine) ResultTap() *Tap {
	return e.taps[3]
}

// Taps returns all four taps: weighting, source, anti-noise, result.
func (e *Engine) Taps() []*Tap {
	return append([]*Tap(nil), e.taps[:]...)
}
