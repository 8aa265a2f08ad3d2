package noise

import (
	"errors"
	"fmt"
)

// BufferSeconds is the length of the looped noise buffer.
const BufferSeconds = 2

// outputScale keeps the summed Kellet branches roughly within [-1, 1].
const outputScale = 0.11

// ErrNilSource is returned when no white-noise source is supplied.
var ErrNilSource = errors.New("noise: nil white-noise source")

// WhiteSource yields uniformly distributed values in [0, 1).
// *rand.Rand from math/rand and math/rand/v2 both satisfy it.
type WhiteSource interface {
	Float64() float64
}

// Buffer is an immutable mono sample buffer.
type Buffer struct {
	samples    []float32
	sampleRate float64
}

// Len returns the number of samples.
func (b *Buffer) Len() int {
	return len(b.samples)
}

// At returns sample i. Callers loop by reducing i modulo Len.
func (b *Buffer) At(i int) float32 {
	return b.samples[i]
}

// SampleRate returns the rate the buffer was generated for.
func (b *Buffer) SampleRate() float64 {
	return b.sampleRate
}

// Duration returns the buffer length in seconds.
func (b *Buffer) Duration() float64 {
	if b.sampleRate <= 0 {
		return 0
	}

	return float64(len(b.samples)) / b.sampleRate
}

// CopyTo copies the samples into dst and returns the number copied.
func (b *Buffer) CopyTo(dst []float32) int {
	return copy(dst, b.samples)
}

// kellet holds the branch state of the pink-noise filter.
type kellet struct {
	b0, b1, b2, b3, b4, b5, b6 float64
}

// next colors one white sample w in [-1, 1].
func (k *kellet) next(w float64) float64 {
	k.b0 = 0.99886*k.b0 + w*0.0555179
	k.b1 = 0.99332*k.b1 + w*0.0750759
	k.b2 = 0.96900*k.b2 + w*0.1538520
	k.b3 = 0.86650*k.b3 + w*0.3104856
	k.b4 = 0.55000*k.b4 + w*0.5329522
	k.b5 = -0.7616*k.b5 - w*0.0168980

	out := (k.b0 + k.b1 + k.b2 + k.b3 + k.b4 + k.b5 + k.b6 + w*0.5362) * outputScale
	k.b6 = w * 0.115926

	return out
}

// Generate colors sampleCount values drawn from white into a pink-noise
// buffer. Identical white streams produce bit-identical buffers.
func Generate(sampleCount int, sampleRate float64, white WhiteSource) (*Buffer, error) {
	if sampleCount <= 0 {
		return nil, fmt.Errorf("noise: sample count must be > 0: %d", sampleCount)
	}

	if sampleRate <= 0 {
		return nil, fmt.Errorf("noise: sample rate must be > 0: %f", sampleRate)
	}

	if white == nil {
		return nil, ErrNilSource
	}

	var k kellet

	samples := make([]float32, sampleCount)
	for i := range samples {
		w := white.Float64()*2 - 1
		samples[i] = float32(k.next(w))
	}

	return &Buffer{samples: samples, sampleRate: sampleRate}, nil
}

// NewPinkBuffer generates the standard two-second loop for sampleRate.
func NewPinkBuffer(sampleRate float64, white WhiteSource) (*Buffer, error) {
	return Generate(int(BufferSeconds*sampleRate), sampleRate, white)
}
