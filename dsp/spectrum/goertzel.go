package spectrum

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidFrequency is returned for target frequencies outside
// [0, sampleRate/2] or non-positive sample rates.
var ErrInvalidFrequency = errors.New("spectrum: frequency must be within [0, sampleRate/2]")

// Goertzel evaluates one DFT term of the samples processed since the last
// Reset. The target frequency need not fall on a bin; the magnitude is the
// DTFT magnitude at that frequency.
type Goertzel struct {
	frequency  float64
	sampleRate float64
	coeff      float64
	s0, s1     float64
	n          int
}

// NewGoertzel creates an analyzer for frequency (Hz).
func NewGoertzel(frequency, sampleRate float64) (*Goertzel, error) {
	if !(sampleRate > 0) || math.IsInf(sampleRate, 0) ||
		!(frequency >= 0 && frequency <= sampleRate/2) {
		return nil, fmt.Errorf("%w: %g Hz at fs %g", ErrInvalidFrequency, frequency, sampleRate)
	}

	return &Goertzel{
		frequency:  frequency,
		sampleRate: sampleRate,
		coeff:      2 * math.Cos(2*math.Pi*frequency/sampleRate),
	}, nil
}

// Frequency returns the target frequency in Hz.
func (g *Goertzel) Frequency() float64 {
	return g.frequency
}

// Reset clears the internal state.
func (g *Goertzel) Reset() {
	g.s0, g.s1, g.n = 0, 0, 0
}

// ProcessBlock updates the internal state with a block of samples.
func (g *Goertzel) ProcessBlock(input []float64) {
	s0, s1 := g.s0, g.s1

	coeff := g.coeff
	for _, x := range input {
		s := x + coeff*s0 - s1
		s1 = s0
		s0 = s
	}

	g.s0, g.s1 = s0, s1
	g.n += len(input)
}

// Power returns |X|² of the target frequency.
func (g *Goertzel) Power() float64 {
	return g.s0*g.s0 + g.s1*g.s1 - g.coeff*g.s0*g.s1
}

// Magnitude returns |X| of the target frequency.
func (g *Goertzel) Magnitude() float64 {
	p := g.Power()
	if p <= 0 {
		return 0
	}

	return math.Sqrt(p)
}

// Amplitude returns the peak amplitude of a sinusoid at the target
// frequency, 2|X|/N. It is exact when the block spans whole periods.
func (g *Goertzel) Amplitude() float64 {
	if g.n == 0 {
		return 0
	}

	return 2 * g.Magnitude() / float64(g.n)
}

// ToneAmplitude measures the amplitude of the freq component of x.
func ToneAmplitude(x []float64, freq, sampleRate float64) (float64, error) {
	g, err := NewGoertzel(freq, sampleRate)
	if err != nil {
		return 0, err
	}

	g.ProcessBlock(x)

	return g.Amplitude(), nil
}
