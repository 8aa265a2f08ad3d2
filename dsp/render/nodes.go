package render

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-vecmath"

	"github.com/cwbudde/acoustics-lab/dsp/delay"
	"github.com/cwbudde/acoustics-lab/dsp/filter/biquad"
	"github.com/cwbudde/acoustics-lab/dsp/filter/design"
	"github.com/cwbudde/acoustics-lab/dsp/graph"
)

// Gain scales its input by an a-rate gain param.
type Gain struct {
	base
	gain  *Param
	curve []float64
}

// NewGain creates a gain node with the given initial gain.
func (c *Context) NewGain(initial float64) (*Gain, error) {
	n := &Gain{curve: make([]float64, c.cfg.quantum)}
	n.gain = newParam(&c.mu, c.now, "gain", initial, math.Inf(-1), math.Inf(1))

	if err := c.register(func(id graph.NodeID) processor {
		n.id = id
		return n
	}); err != nil {
		return nil, err
	}

	return n, nil
}

// Gain returns the gain param.
func (n *Gain) Gain() *Param {
	return n.gain
}

func (n *Gain) process(c *Context, in, out []float64) {
	n.gain.fill(n.curve, c.now(), c.step())
	vecmath.MulBlock(out, in, n.curve)
}

// Delay delays its input by an a-rate delay time in seconds.
type Delay struct {
	base
	delayTime  *Param
	line       *delay.Line
	times      []float64
	sampleRate float64
}

// NewDelay creates a delay node able to delay up to maxDelay seconds. A
// non-positive maxDelay selects the context default.
func (c *Context) NewDelay(maxDelay float64) (*Delay, error) {
	if maxDelay <= 0 {
		maxDelay = c.cfg.maxDelay
	}

	line, err := delay.ForMaxDelay(maxDelay * c.sampleRate)
	if err != nil {
		return nil, fmt.Errorf("render: delay node: %w", err)
	}

	n := &Delay{
		line:       line,
		times:      make([]float64, c.cfg.quantum),
		sampleRate: c.sampleRate,
	}
	n.delayTime = newParam(&c.mu, c.now, "delayTime", 0, 0, maxDelay)

	if err := c.register(func(id graph.NodeID) processor {
		n.id = id
		return n
	}); err != nil {
		return nil, err
	}

	return n, nil
}

// DelayTime returns the delay param in seconds.
func (n *Delay) DelayTime() *Param {
	return n.delayTime
}

func (n *Delay) process(c *Context, in, out []float64) {
	n.delayTime.fill(n.times, c.now(), c.step())

	for i, x := range in {
		n.line.Write(x)
		out[i] = n.line.ReadFractional(n.times[i] * n.sampleRate)
	}
}

// Biquad is a second-order filter whose parameters are evaluated once per
// quantum.
type Biquad struct {
	base
	kind       design.Type
	frequency  *Param
	q          *Param
	gain       *Param
	section    *biquad.Section
	coeffs     biquad.Coefficients
	sampleRate float64

	lastFreq, lastQ, lastGain float64
}

// NewBiquad creates a filter node. The initial design must be realizable at
// the context sample rate.
func (c *Context) NewBiquad(kind design.Type, freq, q, gainDB float64) (*Biquad, error) {
	coeffs, err := design.Design(kind, freq, q, gainDB, c.sampleRate)
	if err != nil {
		return nil, fmt.Errorf("render: biquad node: %w", err)
	}

	nyquist := c.sampleRate / 2
	n := &Biquad{
		kind:       kind,
		section:    biquad.NewSection(coeffs),
		coeffs:     coeffs,
		sampleRate: c.sampleRate,
		lastFreq:   freq,
		lastQ:      q,
		lastGain:   gainDB,
	}
	n.frequency = newParam(&c.mu, c.now, "frequency", freq, 0, nyquist)
	n.q = newParam(&c.mu, c.now, "Q", q, math.Inf(-1), math.Inf(1))
	n.gain = newParam(&c.mu, c.now, "gain", gainDB, math.Inf(-1), math.Inf(1))

	if err := c.register(func(id graph.NodeID) processor {
		n.id = id
		return n
	}); err != nil {
		return nil, err
	}

	return n, nil
}

// Type returns the filter response type.
func (n *Biquad) Type() design.Type {
	return n.kind
}

// Frequency returns the cutoff or center frequency param in Hz.
func (n *Biquad) Frequency() *Param {
	return n.frequency
}

// Q returns the quality factor param.
func (n *Biquad) Q() *Param {
	return n.q
}

// GainDB returns the gain param in dB.
func (n *Biquad) GainDB() *Param {
	return n.gain
}

// Coefficients returns the coefficients used for the last rendered quantum.
func (n *Biquad) Coefficients() biquad.Coefficients {
	n.frequency.mu.Lock()
	defer n.frequency.mu.Unlock()

	return n.coeffs
}

func (n *Biquad) process(c *Context, in, out []float64) {
	now := c.now()
	freq := n.frequency.kRate(now)
	q := n.q.kRate(now)
	gain := n.gain.kRate(now)

	if freq != n.lastFreq || q != n.lastQ || gain != n.lastGain {
		// Unrealizable targets keep the previous response.
		if coeffs, err := design.Design(n.kind, freq, q, gain, n.sampleRate); err == nil {
			n.coeffs = coeffs
			n.section.SetCoefficients(coeffs)
		}

		n.lastFreq, n.lastQ, n.lastGain = freq, q, gain
	}

	copy(out, in)
	n.section.ProcessBlock(out)
}
