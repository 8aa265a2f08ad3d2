package lab

import (
	"fmt"
	"strings"

	"github.com/cwbudde/acoustics-lab/dsp/graph"
)

// SourceKind selects the weighting demo input.
type SourceKind int

const (
	// SourceNoise loops the shared pink-noise buffer.
	SourceNoise SourceKind = iota
	// SourceTone is a sine at the configured frequency.
	SourceTone
)

// ParseSourceKind accepts "noise" and "tone" (or "sine").
func ParseSourceKind(name string) (SourceKind, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "noise", "pink":
		return SourceNoise, nil
	case "tone", "sine":
		return SourceTone, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownSource, name)
	}
}

func (k SourceKind) String() string {
	switch k {
	case SourceNoise:
		return "noise"
	case SourceTone:
		return "tone"
	default:
		return fmt.Sprintf("SourceKind(%d)", int(k))
	}
}

// SetSourceKind selects noise or tone for the weighting demo. While the
// demo plays, the active source is stopped and replaced; the filter chain
// is left as is.
func (e *Engine) SetSourceKind(kind SourceKind) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.ready(); err != nil {
		return err
	}

	if kind != SourceNoise && kind != SourceTone {
		return fmt.Errorf("%w: %d", ErrUnknownSource, int(kind))
	}

	if kind == e.kind {
		return nil
	}

	e.kind = kind
	e.log.Debug("source kind changed", "kind", kind)

	if e.mode != ModeWeighting || !e.playing {
		return nil
	}

	e.stopWeightingSource()

	return e.startWeightingSource()
}

// SetFrequency sets the tone frequency in Hz. A playing tone follows
// immediately.
func (e *Engine) SetFrequency(freq float64) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.ready(); err != nil {
		return err
	}

	nyquist := e.r.SampleRate() / 2
	if !(freq > 0 && freq < nyquist) {
		return fmt.Errorf("%w: %g Hz (nyquist %g Hz)", ErrInvalidFrequency, freq, nyquist)
	}

	e.frequency = freq

	if e.weighting.osc != nil {
		e.weighting.osc.Frequency().SetValueAtTime(freq, e.r.CurrentTime())
	}

	return nil
}

// newSource creates, but does not connect, a source of the current kind.
// osc is non-nil for tones.
func (e *Engine) newSource() (src SourceNode, osc OscillatorNode, err error) {
	if e.kind == SourceTone {
		osc, err = e.r.NewOscillator(e.frequency)
		if err != nil {
			return nil, nil, fmt.Errorf("create oscillator: %w", err)
		}

		return osc, osc, nil
	}

	src, err = e.r.NewBufferSource(e.pink, true)
	if err != nil {
		return nil, nil, fmt.Errorf("create noise source: %w", err)
	}

	return src, nil, nil
}

// startWeightingSource connects a fresh source to the chain input and
// starts it.
func (e *Engine) startWeightingSource() error {
	src, osc, err := e.newSource()
	if err != nil {
		return err
	}

	if err := e.r.Apply(new(graph.Tx).Connect(src.ID(), e.weighting.input.ID())); err != nil {
		e.r.Release(src)
		return fmt.Errorf("connect source: %w", err)
	}

	if err := src.Start(); err != nil {
		e.r.Release(src)
		return fmt.Errorf("start source: %w", err)
	}

	e.weighting.source = src
	e.weighting.osc = osc
	e.playing = true

	return nil
}

// stopWeightingSource stops and discards the active source, if any.
func (e *Engine) stopWeightingSource() {
	e.playing = false

	src := e.weighting.source
	if src == nil {
		return
	}

	src.Stop()
	e.r.Release(src)

	e.weighting.source = nil
	e.weighting.osc = nil
}
