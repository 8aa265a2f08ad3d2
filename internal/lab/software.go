package lab

import (
	"github.com/cwbudde/acoustics-lab/dsp/graph"
	"github.com/cwbudde/acoustics-lab/dsp/noise"
	"github.com/cwbudde/acoustics-lab/dsp/render"
)

// Software is a [Renderer] backed by the pure-Go renderer.
type Software struct {
	ctx *render.Context
}

// NewSoftware adapts ctx to the engine's renderer interface.
func NewSoftware(ctx *render.Context) *Software {
	return &Software{ctx: ctx}
}

// SoftwareFactory returns a factory creating a fresh software renderer at
// sampleRate.
func SoftwareFactory(sampleRate float64, opts ...render.Option) Factory {
	return func() (Renderer, error) {
		ctx, err := render.NewContext(sampleRate, opts...)
		if err != nil {
			return nil, err
		}

		return NewSoftware(ctx), nil
	}
}

// Context returns the underlying render context, for pulling audio.
func (s *Software) Context() *render.Context {
	return s.ctx
}

func (s *Software) SampleRate() float64 {
	return s.ctx.SampleRate()
}

func (s *Software) CurrentTime() float64 {
	return s.ctx.CurrentTime()
}

func (s *Software) NewGain(initial float64) (GainNode, error) {
	n, err := s.ctx.NewGain(initial)
	if err != nil {
		return nil, err
	}

	return softGain{n}, nil
}

func (s *Software) NewDelay(maxDelay float64) (DelayNode, error) {
	n, err := s.ctx.NewDelay(maxDelay)
	if err != nil {
		return nil, err
	}

	return softDelay{n}, nil
}

func (s *Software) NewBiquad(stage StageSpec) (FilterNode, error) {
	n, err := s.ctx.NewBiquad(stage.Kind, stage.Frequency, stage.Q, stage.GainDB)
	if err != nil {
		return nil, err
	}

	return softFilter{n: n, stage: stage}, nil
}

func (s *Software) NewBufferSource(buf *noise.Buffer, loop bool) (SourceNode, error) {
	if buf == nil {
		return nil, render.ErrNilBuffer
	}

	n, err := s.ctx.NewBufferSource(buf, loop)
	if err != nil {
		return nil, err
	}

	return n, nil
}

func (s *Software) NewOscillator(freq float64) (OscillatorNode, error) {
	n, err := s.ctx.NewOscillator(freq)
	if err != nil {
		return nil, err
	}

	return softOscillator{n}, nil
}

func (s *Software) NewAnalyser(fftSize int, smoothing float64) (AnalyserNode, error) {
	n, err := s.ctx.NewAnalyser(fftSize, smoothing)
	if err != nil {
		return nil, err
	}

	return n, nil
}

func (s *Software) Destination() Node {
	return s.ctx.Destination()
}

func (s *Software) Apply(tx *graph.Tx) error {
	return s.ctx.Apply(tx)
}

func (s *Software) Release(nodes ...Node) {
	rn := make([]render.Node, 0, len(nodes))

	for _, n := range nodes {
		switch v := n.(type) {
		case nil:
		case interface{ unwrap() render.Node }:
			rn = append(rn, v.unwrap())
		default:
			rn = append(rn, v)
		}
	}

	s.ctx.Release(rn...)
}

func (s *Software) Close() error {
	return s.ctx.Close()
}

type softGain struct{ n *render.Gain }

func (g softGain) ID() graph.NodeID { return g.n.ID() }
func (g softGain) Gain() Param { return g.n.Gain() }
func (g softGain) unwrap() render.Node { return g.n }

type softDelay struct{ n *render.Delay }

func (d softDelay) ID() graph.NodeID { return d.n.ID() }
func (d softDelay) DelayTime() Param { return d.n.DelayTime() }
func (d softDelay) unwrap() render.Node { return d.n }

type softFilter struct {
	n     *render.Biquad
	stage StageSpec
}

func (f softFilter) ID() graph.NodeID { return f.n.ID() }
func (f softFilter) Stage() StageSpec { return f.stage }
func (f softFilter) unwrap() render.Node { return f.n }

type softOscillator struct{ n *render.Oscillator }

func (o softOscillator) ID() graph.NodeID { return o.n.ID() }
func (o softOscillator) Start() error { return o.n.Start() }
func (o softOscillator) Stop() { o.n.Stop() }
func (o softOscillator) Frequency() Param { return o.n.Frequency() }
func (o softOscillator) unwrap() render.Node { return o.n }
