package biquad

import (
	"math/cmplx"
	"testing"
)

func TestResponse_Passthrough(t *testing.T) {
	c := Passthrough()
	for _, freq := range []float64{0, 100, 1000, 10000, 24000} {
		if mag := cmplx.Abs(c.Response(freq, 48000)); !almostEqual(mag, 1, 1e-12) {
			t.Errorf("freq=%v: |H|=%v, want 1", freq, mag)
		}
	}
}

func TestResponse_TwoTapAverageNullsNyquist(t *testing.T) {
	c := Coefficients{B0: 0.5, B1: 0.5}
	if mag := cmplx.Abs(c.Response(24000, 48000)); mag > 1e-12 {
		t.Fatalf("|H(nyquist)| = %v, want 0", mag)
	}
	if db := c.MagnitudeDB(0, 48000); !almostEqual(db, 0, 1e-12) {
		t.Fatalf("DC gain = %v dB, want 0", db)
	}
}

func TestCascadeResponse(t *testing.T) {
	a := Coefficients{B0: 0.5, B1: 0.5}
	b := Coefficients{B0: 2}

	for _, f := range []float64{50, 1000, 9000} {
		want := a.Response(f, 48000) * b.Response(f, 48000)
		got := CascadeResponse([]Coefficients{a, b}, f, 48000)
		if cmplx.Abs(got-want) > 1e-12 {
			t.Fatalf("f=%v: got %v, want %v", f, got, want)
		}
	}

	if got := CascadeResponse(nil, 1000, 48000); got != 1 {
		t.Fatalf("empty cascade = %v, want 1", got)
	}

	if db := CascadeMagnitudeDB([]Coefficients{b, b}, 1000, 48000); !almostEqual(db, 20*0.6020599913279624, 1e-9) {
		t.Fatalf("cascade dB = %v", db)
	}
}
