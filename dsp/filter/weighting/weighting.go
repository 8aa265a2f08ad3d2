package weighting

import (
	"math"
)

// IEC 61672 analog prototype pole frequencies (Hz).
const (
	f1 = 20.598997 // double pole for A, B, C
	f2 = 107.65265 // single pole for A
	f3 = 158.48932 // single pole for B
	f4 = 737.86223 // single pole for A
	f5 = 12194.217 // double pole for A, B, C
)

// referenceHz is the normalization frequency.
const referenceHz = 1000.0

// Type identifies a frequency weighting curve.
type Type int

const (
	// TypeA approximates the 40-phon equal-loudness contour.
	TypeA Type = iota

	// TypeB approximates the 70-phon equal-loudness contour.
	TypeB

	// TypeC approximates the 100-phon equal-loudness contour.
	TypeC

	// TypeZ applies no weighting.
	TypeZ
)

// String returns a human-readable name for the weighting type.
func (t Type) String() string {
	switch t {
	case TypeA:
		return "A"
	case TypeB:
		return "B"
	case TypeC:
		return "C"
	case TypeZ:
		return "Z"
	default:
		return "Unknown"
	}
}

// ReferenceDB returns the weighting curve t at freq (Hz) in dB relative to
// 1 kHz. Non-positive frequencies return -Inf for A, B and C.
func ReferenceDB(t Type, freq float64) float64 {
	if t == TypeZ {
		return 0
	}

	if freq <= 0 {
		return math.Inf(-1)
	}

	return 20 * math.Log10(magnitude(t, freq)/magnitude(t, referenceHz))
}

// Curve evaluates [ReferenceDB] for each frequency in freqs.
func Curve(t Type, freqs []float64) []float64 {
	out := make([]float64, len(freqs))
	for i, f := range freqs {
		out[i] = ReferenceDB(t, f)
	}

	return out
}

// magnitude is |H(j2πf)| of the unnormalized analog prototype, written
// per pole pair so each term is a first-order |s/(s+ω)| or |ω/(s+ω)|.
func magnitude(t Type, f float64) float64 {
	hp := func(fp float64) float64 { return f / math.Hypot(f, fp) }
	lp := math.Pow(f5/math.Hypot(f, f5), 2)
	base := hp(f1) * hp(f1) * lp

	switch t {
	case TypeA:
		return base * hp(f2) * hp(f4)
	case TypeB:
		return base * hp(f3)
	case TypeC:
		return base
	default:
		return 1
	}
}
