package render

import (
	"testing"

	"github.com/cwbudde/acoustics-lab/dsp/graph"
)

// constSamples is a buffer of n identical samples.
type constSamples struct {
	v float32
	n int
}

func (s constSamples) Len() int { return s.n }
func (s constSamples) At(int) float32 { return s.v }

// sliceSamples plays back a fixed slice.
type sliceSamples []float32

func (s sliceSamples) Len() int { return len(s) }
func (s sliceSamples) At(i int) float32 { return s[i] }

func newTestContext(t *testing.T, sampleRate float64, opts ...Option) *Context {
	t.Helper()

	c, err := NewContext(sampleRate, opts...)
	if err != nil {
		t.Fatalf("NewContext: %v", err)
	}

	return c
}

func mustApply(t *testing.T, c *Context, tx *graph.Tx) {
	t.Helper()

	if err := c.Apply(tx); err != nil {
		t.Fatalf("Apply: %v", err)
	}
}

func startedSource(t *testing.T, c *Context, buf Samples, loop bool) *BufferSource {
	t.Helper()

	src, err := c.NewBufferSource(buf, loop)
	if err != nil {
		t.Fatalf("NewBufferSource: %v", err)
	}

	if err := src.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}

	return src
}

func render(c *Context, frames int) []float32 {
	out := make([]float32, frames)
	c.Render(out)

	return out
}
