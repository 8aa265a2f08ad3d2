// Package level summarises blocks of samples for level meters.
package level

import (
	"math"

	"github.com/cwbudde/acoustics-lab/dsp/core"
)

// Floor is the dB value reported for silent blocks.
const Floor = -120.0

// Stats holds the level of one block of samples.
type Stats struct {
	Length        int
	DC            float64 // mean
	RMS           float64
	Peak          float64 // max |x|
	CrestFactor   float64 // peak / RMS, 0 for silence
	ZeroCrossings int
}

// RMSDB returns the RMS level in dBFS, at least [Floor].
func (s Stats) RMSDB() float64 {
	return core.FloorDB(core.LinearToDB(s.RMS), Floor)
}

// PeakDB returns the peak level in dBFS, at least [Floor].
func (s Stats) PeakDB() float64 {
	return core.FloorDB(core.LinearToDB(s.Peak), Floor)
}

// CrestFactorDB returns the crest factor in dB, 0 for silence.
func (s Stats) CrestFactorDB() float64 {
	if s.CrestFactor == 0 {
		return 0
	}

	return core.LinearToDB(s.CrestFactor)
}

// Calculate computes all statistics in a single pass.
func Calculate(signal []float64) Stats {
	n := len(signal)
	if n == 0 {
		return Stats{}
	}

	var (
		sum, sumSq, peak float64
		crossings        int
	)

	for i, x := range signal {
		sum += x
		sumSq += x * x

		if a := math.Abs(x); a > peak {
			peak = a
		}

		if i > 0 && signal[i-1]*x < 0 {
			crossings++
		}
	}

	nf := float64(n)
	rms := math.Sqrt(sumSq / nf)

	var crest float64
	if rms > 0 {
		crest = peak / rms
	}

	return Stats{
		Length:        n,
		DC:            sum / nf,
		RMS:           rms,
		Peak:          peak,
		CrestFactor:   crest,
		ZeroCrossings: crossings,
	}
}

// RMS returns the root-mean-square of the signal.
func RMS(signal []float64) float64 {
	if len(signal) == 0 {
		return 0
	}

	var sumSq float64
	for _, x := range signal {
		sumSq += x * x
	}

	return math.Sqrt(sumSq / float64(len(signal)))
}
