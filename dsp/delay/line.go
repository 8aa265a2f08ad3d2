// Package delay provides the circular delay line behind the renderer's
// delay node.
package delay

import (
	"fmt"
	"math"

	"github.com/cwbudde/acoustics-lab/dsp/core"
	"github.com/cwbudde/acoustics-lab/dsp/interp"
)

// Line is a circular delay line with integer and fractional taps.
type Line struct {
	buffer   []float64
	writePos int
}

// New returns a delay line of fixed size.
func New(size int) (*Line, error) {
	if size <= 0 {
		return nil, fmt.Errorf("delay size must be > 0: %d", size)
	}

	return &Line{buffer: make([]float64, size)}, nil
}

// ForMaxDelay returns a line able to serve fractional reads up to
// maxDelay samples.
func ForMaxDelay(maxDelay float64) (*Line, error) {
	if maxDelay < 0 || math.IsNaN(maxDelay) || math.IsInf(maxDelay, 0) {
		return nil, fmt.Errorf("max delay must be finite and >= 0: %f", maxDelay)
	}

	return New(int(math.Ceil(maxDelay)) + 4)
}

// Len returns internal buffer size.
func (d *Line) Len() int {
	return len(d.buffer)
}

// MaxDelay returns the largest delay ReadFractional honors.
func (d *Line) MaxDelay() float64 {
	return float64(len(d.buffer) - 3)
}

// Write writes one sample.
func (d *Line) Write(sample float64) {
	d.buffer[d.writePos] = sample

	d.writePos++
	if d.writePos >= len(d.buffer) {
		d.writePos = 0
	}
}

// Read reads an integer delay in samples. Read(0) returns the most recently
// written sample.
func (d *Line) Read(delay int) float64 {
	size := len(d.buffer)
	readPos := ((d.writePos-1-delay)%size + size) % size

	return d.buffer[readPos]
}

// ReadFractional reads with cubic Hermite interpolation. The delay is
// clamped to [0, MaxDelay()].
func (d *Line) ReadFractional(delay float64) float64 {
	if math.IsNaN(delay) {
		delay = 0
	}

	delay = core.Clamp(delay, 0, d.MaxDelay())

	p := int(math.Floor(delay))
	t := delay - float64(p)

	if t == 0 {
		return d.Read(p)
	}

	xm1 := d.Read(max(0, p-1))
	x0 := d.Read(p)
	x1 := d.Read(p + 1)
	x2 := d.Read(p + 2)

	return interp.Hermite4(t, xm1, x0, x1, x2)
}

// Reset clears line state.
func (d *Line) Reset() {
	for i := range d.buffer {
		d.buffer[i] = 0
	}

	d.writePos = 0
}
