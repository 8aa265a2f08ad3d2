package biquad

import (
	"math"
	"math/cmplx"
)

// Response computes the complex frequency response H(e^jw) of a biquad
// at the given frequency (Hz) and sample rate (Hz).
func (c Coefficients) Response(freqHz, sampleRate float64) complex128 {
	w := 2 * math.Pi * freqHz / sampleRate
	ejw := cmplx.Exp(complex(0, -w))
	ej2w := cmplx.Exp(complex(0, -2*w))

	num := complex(c.B0, 0) + complex(c.B1, 0)*ejw + complex(c.B2, 0)*ej2w
	den := complex(1, 0) + complex(c.A1, 0)*ejw + complex(c.A2, 0)*ej2w

	return num / den
}

// MagnitudeDB returns 20*log10(|H(f)|).
func (c Coefficients) MagnitudeDB(freqHz, sampleRate float64) float64 {
	return 20 * math.Log10(math.Max(1e-12, cmplx.Abs(c.Response(freqHz, sampleRate))))
}

// CascadeResponse returns the product of the section responses, i.e. the
// response of the sections connected in series.
func CascadeResponse(coeffs []Coefficients, freqHz, sampleRate float64) complex128 {
	h := complex(1, 0)
	for i := range coeffs {
		h *= coeffs[i].Response(freqHz, sampleRate)
	}

	return h
}

// CascadeMagnitudeDB returns the cascaded magnitude response in dB.
func CascadeMagnitudeDB(coeffs []Coefficients, freqHz, sampleRate float64) float64 {
	return 20 * math.Log10(math.Max(1e-12, cmplx.Abs(CascadeResponse(coeffs, freqHz, sampleRate))))
}
