package design

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/cwbudde/acoustics-lab/dsp/core"
	"github.com/cwbudde/acoustics-lab/dsp/filter/biquad"
)

// ErrUnrealizable is returned when a cutoff frequency is outside (0, Nyquist).
var ErrUnrealizable = errors.New("design: frequency outside (0, nyquist)")

// ErrUnknownType is returned for filter types the designers do not cover.
var ErrUnknownType = errors.New("design: unknown filter type")

const defaultQ = 1 / math.Sqrt2

// Type identifies a biquad filter response.
type Type int

const (
	TypeLowpass Type = iota
	TypeHighpass
	TypePeaking
	TypeHighShelf
)

// String returns the lower-case name used by browser biquad nodes.
func (t Type) String() string {
	switch t {
	case TypeLowpass:
		return "lowpass"
	case TypeHighpass:
		return "highpass"
	case TypePeaking:
		return "peaking"
	case TypeHighShelf:
		return "highshelf"
	default:
		return "unknown"
	}
}

// ParseType maps a browser-style filter type name to a [Type].
func ParseType(name string) (Type, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "lowpass":
		return TypeLowpass, nil
	case "highpass":
		return TypeHighpass, nil
	case "peaking":
		return TypePeaking, nil
	case "highshelf":
		return TypeHighShelf, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownType, name)
	}
}

// UsesGain reports whether gainDB affects the response of t.
func (t Type) UsesGain() bool {
	return t == TypePeaking || t == TypeHighShelf
}

// UsesQ reports whether q affects the response of t. High-shelf stages use
// a fixed shelf slope of 1.
func (t Type) UsesQ() bool {
	return t != TypeHighShelf
}

// Design returns coefficients for a filter of type t.
func Design(t Type, freq, q, gainDB, sampleRate float64) (biquad.Coefficients, error) {
	if _, ok := normalizedW0(freq, sampleRate); !ok {
		return biquad.Coefficients{}, fmt.Errorf("%w: %s at %g Hz, fs %g", ErrUnrealizable, t, freq, sampleRate)
	}

	switch t {
	case TypeLowpass:
		return Lowpass(freq, q, sampleRate), nil
	case TypeHighpass:
		return Highpass(freq, q, sampleRate), nil
	case TypePeaking:
		return Peak(freq, gainDB, q, sampleRate), nil
	case TypeHighShelf:
		return HighShelf(freq, gainDB, sampleRate), nil
	default:
		return biquad.Coefficients{}, fmt.Errorf("%w: %d", ErrUnknownType, int(t))
	}
}

// Lowpass designs a lowpass biquad at freq (Hz) with quality factor q.
func Lowpass(freq, q, sampleRate float64) biquad.Coefficients {
	w0, ok := normalizedW0(freq, sampleRate)
	if !ok {
		return biquad.Coefficients{}
	}

	q = normalizedQ(q)
	cw := math.Cos(w0)
	alpha := math.Sin(w0) / (2 * q)

	b1 := 1 - cw
	b0 := b1 / 2
	b2 := b0

	return normalizeBiquad(b0, b1, b2, 1+alpha, -2*cw, 1-alpha)
}

// Highpass designs a highpass biquad at freq (Hz) with quality factor q.
func Highpass(freq, q, sampleRate float64) biquad.Coefficients {
	w0, ok := normalizedW0(freq, sampleRate)
	if !ok {
		return biquad.Coefficients{}
	}

	q = normalizedQ(q)
	cw := math.Cos(w0)
	alpha := math.Sin(w0) / (2 * q)

	b0 := (1 + cw) / 2
	b1 := -(1 + cw)
	b2 := b0

	return normalizeBiquad(b0, b1, b2, 1+alpha, -2*cw, 1-alpha)
}

// Peak designs a peaking-EQ biquad with gain in dB.
func Peak(freq, gainDB, q, sampleRate float64) biquad.Coefficients {
	w0, ok := normalizedW0(freq, sampleRate)
	if !ok {
		return biquad.Coefficients{}
	}

	q = normalizedQ(q)
	cw := math.Cos(w0)
	alpha := math.Sin(w0) / (2 * q)
	a := core.DBToLinear(gainDB / 2)

	b0 := 1 + alpha*a
	b1 := -2 * cw
	b2 := 1 - alpha*a
	a0 := 1 + alpha/a
	a1 := -2 * cw
	a2 := 1 - alpha/a

	return normalizeBiquad(b0, b1, b2, a0, a1, a2)
}

// HighShelf designs a high-shelf biquad with gain in dB and shelf slope 1,
// the slope browser biquad nodes use for shelves.
func HighShelf(freq, gainDB, sampleRate float64) biquad.Coefficients {
	w0, ok := normalizedW0(freq, sampleRate)
	if !ok {
		return biquad.Coefficients{}
	}

	cw := math.Cos(w0)
	alpha := math.Sin(w0) / (2 * defaultQ)
	a := core.DBToLinear(gainDB / 2)
	beta := 2 * math.Sqrt(a) * alpha

	b0 := a * ((a + 1) + (a-1)*cw + beta)
	b1 := -2 * a * ((a - 1) + (a+1)*cw)
	b2 := a * ((a + 1) + (a-1)*cw - beta)
	a0 := (a + 1) - (a-1)*cw + beta
	a1 := 2 * ((a - 1) - (a+1)*cw)
	a2 := (a + 1) - (a-1)*cw - beta

	return normalizeBiquad(b0, b1, b2, a0, a1, a2)
}

func normalizedW0(freq, sampleRate float64) (float64, bool) {
	if sampleRate <= 0 || math.IsNaN(sampleRate) || math.IsInf(sampleRate, 0) {
		return 0, false
	}

	nyquist := sampleRate / 2
	if freq <= 0 || freq >= nyquist || math.IsNaN(freq) || math.IsInf(freq, 0) {
		return 0, false
	}

	return 2 * math.Pi * freq / sampleRate, true
}

func normalizedQ(q float64) float64 {
	if q <= 0 || math.IsNaN(q) || math.IsInf(q, 0) {
		return defaultQ
	}

	return q
}

func normalizeBiquad(b0, b1, b2, a0, a1, a2 float64) biquad.Coefficients {
	if a0 == 0 || math.IsNaN(a0) || math.IsInf(a0, 0) {
		return biquad.Coefficients{}
	}

	return biquad.Coefficients{
		B0: b0 / a0,
		B1: b1 / a0,
		B2: b2 / a0,
		A1: a1 / a0,
		A2: a2 / a0,
	}
}
