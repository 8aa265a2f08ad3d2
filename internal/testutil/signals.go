// Package testutil holds signal generators and assertions shared by the
// package tests.
package testutil

import (
	"math"
	"math/rand"

	"github.com/cwbudde/acoustics-lab/dsp/spectrum"
	"github.com/cwbudde/acoustics-lab/stats/level"
)

// DeterministicSine generates a deterministic sine wave.
func DeterministicSine(freqHz, sampleRate, amplitude float64, length int) []float64 {
	out := make([]float64, length)
	step := 2 * math.Pi * freqHz / sampleRate
	for i := range out {
		out[i] = amplitude * math.Sin(step*float64(i))
	}
	return out
}

// DeterministicNoise generates white noise with a fixed seed for reproducibility.
func DeterministicNoise(seed int64, amplitude float64, length int) []float64 {
	out := make([]float64, length)
	rng := SeededWhite(seed)
	for i := range out {
		out[i] = (rng.Float64()*2 - 1) * amplitude
	}
	return out
}

// SeededWhite returns a uniform [0, 1) source with a fixed seed, usable as a
// noise synthesizer input.
func SeededWhite(seed int64) *rand.Rand {
	return rand.New(rand.NewSource(seed))
}

// Float64s widens rendered float32 frames.
func Float64s(in []float32) []float64 {
	out := make([]float64, len(in))
	for i, v := range in {
		out[i] = float64(v)
	}
	return out
}

// RMS returns the root mean square of x.
func RMS(x []float64) float64 {
	return level.RMS(x)
}

// ToneAmplitude estimates the amplitude of the freqHz component of x. x
// should span whole periods. Invalid frequencies yield NaN.
func ToneAmplitude(x []float64, freqHz, sampleRate float64) float64 {
	amp, err := spectrum.ToneAmplitude(x, freqHz, sampleRate)
	if err != nil {
		return math.NaN()
	}
	return amp
}
