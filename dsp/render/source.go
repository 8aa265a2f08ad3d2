package render

import (
	"errors"
	"math"
	"sync"

	"github.com/cwbudde/acoustics-lab/dsp/graph"
)

// ErrNilBuffer is returned when a buffer source has no samples.
var ErrNilBuffer = errors.New("render: nil or empty buffer")

// Samples is a read-only mono sample array such as a noise buffer.
type Samples interface {
	Len() int
	At(i int) float32
}

type sourceState int

const (
	sourceIdle sourceState = iota
	sourcePlaying
	sourceStopped
)

// transport holds the start/stop state shared by all source nodes.
type transport struct {
	mu    *sync.Mutex
	state sourceState
}

// Start begins playback at the next rendered frame.
func (t *transport) Start() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.state != sourceIdle {
		return ErrAlreadyStarted
	}

	t.state = sourcePlaying

	return nil
}

// Stop ends playback. Stopping a stopped or never started source is a
// no-op.
func (t *transport) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.state = sourceStopped
}

// Playing reports whether the source currently produces output.
func (t *transport) Playing() bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.state == sourcePlaying
}

// BufferSource plays a sample buffer, optionally looping it.
type BufferSource struct {
	base
	transport
	buf  Samples
	loop bool
	pos  int
}

// NewBufferSource creates a source playing buf at one buffer sample per
// frame.
func (c *Context) NewBufferSource(buf Samples, loop bool) (*BufferSource, error) {
	if buf == nil || buf.Len() == 0 {
		return nil, ErrNilBuffer
	}

	n := &BufferSource{transport: transport{mu: &c.mu}, buf: buf, loop: loop}

	if err := c.register(func(id graph.NodeID) processor {
		n.id = id
		return n
	}); err != nil {
		return nil, err
	}

	return n, nil
}

// Loop reports whether the buffer wraps around at its end.
func (n *BufferSource) Loop() bool {
	return n.loop
}

func (n *BufferSource) process(_ *Context, _, out []float64) {
	if n.state != sourcePlaying {
		clear(out)
		return
	}

	size := n.buf.Len()

	for i := range out {
		if n.pos >= size {
			if !n.loop {
				clear(out[i:])
				n.state = sourceStopped

				return
			}

			n.pos = 0
		}

		out[i] = float64(n.buf.At(n.pos))
		n.pos++
	}
}

// Oscillator generates a sine wave with an a-rate frequency param.
type Oscillator struct {
	base
	transport
	frequency *Param
	freqs     []float64
	phase     float64
}

// NewOscillator creates a sine oscillator at freq Hz.
func (c *Context) NewOscillator(freq float64) (*Oscillator, error) {
	nyquist := c.sampleRate / 2
	n := &Oscillator{
		transport: transport{mu: &c.mu},
		freqs:     make([]float64, c.cfg.quantum),
	}
	n.frequency = newParam(&c.mu, c.now, "frequency", freq, -nyquist, nyquist)

	if err := c.register(func(id graph.NodeID) processor {
		n.id = id
		return n
	}); err != nil {
		return nil, err
	}

	return n, nil
}

// Frequency returns the frequency param in Hz.
func (n *Oscillator) Frequency() *Param {
	return n.frequency
}

func (n *Oscillator) process(c *Context, _, out []float64) {
	n.frequency.fill(n.freqs, c.now(), c.step())

	if n.state != sourcePlaying {
		clear(out)
		return
	}

	step := c.step()
	for i, f := range n.freqs {
		out[i] = math.Sin(2 * math.Pi * n.phase)

		n.phase += f * step
		n.phase -= math.Floor(n.phase)
	}
}
