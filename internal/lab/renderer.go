package lab

import (
	"github.com/cwbudde/acoustics-lab/dsp/graph"
	"github.com/cwbudde/acoustics-lab/dsp/noise"
)

// Node is a vertex in the renderer graph.
type Node interface {
	ID() graph.NodeID
}

// Param is an automatable node parameter. Times are renderer clock
// seconds.
type Param interface {
	Value() float64
	ValueAt(t float64) float64
	SetValueAtTime(v, t float64)
	LinearRampToValueAtTime(v, t float64)
	CancelScheduledValues(t float64)
}

// GainNode multiplies its input by a gain param.
type GainNode interface {
	Node
	Gain() Param
}

// DelayNode delays its input by a param in seconds.
type DelayNode interface {
	Node
	DelayTime() Param
}

// FilterNode is one biquad stage.
type FilterNode interface {
	Node
	Stage() StageSpec
}

// SourceNode produces audio once started. Stop is idempotent.
type SourceNode interface {
	Node
	Start() error
	Stop()
}

// OscillatorNode is a sine source with a frequency param.
type OscillatorNode interface {
	SourceNode
	Frequency() Param
}

// AnalyserNode passes audio through and exposes spectrum and waveform
// snapshots.
type AnalyserNode interface {
	Node
	FFTSize() int
	FrequencyBinCount() int
	FrequencyData() []byte
	TimeDomainData() []byte
	FloatFrequencyData() []float64
	FloatTimeDomainData() []float64
}

// Renderer is the real-time audio capability the engine drives. Node
// inputs sum all incoming edges.
type Renderer interface {
	SampleRate() float64
	CurrentTime() float64

	NewGain(initial float64) (GainNode, error)
	NewDelay(maxDelay float64) (DelayNode, error)
	NewBiquad(stage StageSpec) (FilterNode, error)
	NewBufferSource(buf *noise.Buffer, loop bool) (SourceNode, error)
	NewOscillator(freq float64) (OscillatorNode, error)
	NewAnalyser(fftSize int, smoothing float64) (AnalyserNode, error)
	Destination() Node

	// Apply commits a batch of connects and disconnects atomically,
	// disconnects first.
	Apply(tx *graph.Tx) error
	// Release disconnects and discards nodes.
	Release(nodes ...Node)
	Close() error
}

// Factory creates the renderer during Init.
type Factory func() (Renderer, error)
