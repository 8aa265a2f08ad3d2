package design

import (
	"errors"
	"math"
	"testing"

	"github.com/cwbudde/acoustics-lab/dsp/filter/biquad"
)

const sr = 48000.0

func almostEqual(a, b, eps float64) bool {
	return math.Abs(a-b) <= eps
}

func db(c biquad.Coefficients, f float64) float64 {
	return c.MagnitudeDB(f, sr)
}

func TestDesigners_ResponseShape(t *testing.T) {
	t.Parallel()

	lp := Lowpass(1000, defaultQ, sr)
	if !(db(lp, 100) > db(lp, 10000)) {
		t.Fatal("lowpass shape check failed")
	}
	if !almostEqual(db(lp, 1000), -3.0103, 0.01) {
		t.Fatalf("butterworth lowpass at cutoff = %v dB, want -3.01", db(lp, 1000))
	}

	hp := Highpass(1000, defaultQ, sr)
	if !(db(hp, 10000) > db(hp, 100)) {
		t.Fatal("highpass shape check failed")
	}
	if !almostEqual(db(hp, 1000), -3.0103, 0.01) {
		t.Fatalf("butterworth highpass at cutoff = %v dB, want -3.01", db(hp, 1000))
	}
}

func TestPeak_CenterGain(t *testing.T) {
	t.Parallel()

	for _, gain := range []float64{-12, -3, 3, 12} {
		c := Peak(2500, gain, 0.5, sr)
		if got := db(c, 2500); !almostEqual(got, gain, 1e-6) {
			t.Errorf("gain %v: center = %v dB", gain, got)
		}
		if got := db(c, 1); math.Abs(got) > 0.05 {
			t.Errorf("gain %v: DC = %v dB, want ~0", gain, got)
		}
	}
}

func TestHighShelf_PlateauGain(t *testing.T) {
	t.Parallel()

	c := HighShelf(100, -20, sr)
	if got := db(c, 10000); !almostEqual(got, -20, 0.05) {
		t.Fatalf("shelf plateau = %v dB, want -20", got)
	}
	if got := db(c, 1); math.Abs(got) > 0.05 {
		t.Fatalf("shelf DC = %v dB, want 0", got)
	}
	if got := db(c, 100); !almostEqual(got, -10, 0.05) {
		t.Fatalf("shelf midpoint = %v dB, want -10", got)
	}
}

func TestDesign_DispatchAndErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		typ  Type
		want biquad.Coefficients
	}{
		{"lowpass", TypeLowpass, Lowpass(8000, 0.5, sr)},
		{"highpass", TypeHighpass, Highpass(8000, 0.5, sr)},
		{"peaking", TypePeaking, Peak(8000, 3, 0.5, sr)},
		{"highshelf", TypeHighShelf, HighShelf(8000, 3, sr)},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			got, err := Design(tc.typ, 8000, 0.5, 3, sr)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tc.want {
				t.Fatalf("got %+v, want %+v", got, tc.want)
			}
		})
	}

	if _, err := Design(TypeLowpass, 24000, 0.5, 0, sr); !errors.Is(err, ErrUnrealizable) {
		t.Fatalf("nyquist cutoff: err = %v, want ErrUnrealizable", err)
	}
	if _, err := Design(TypeLowpass, 0, 0.5, 0, sr); !errors.Is(err, ErrUnrealizable) {
		t.Fatalf("zero cutoff: err = %v, want ErrUnrealizable", err)
	}
	if _, err := Design(Type(99), 1000, 0.5, 0, sr); !errors.Is(err, ErrUnknownType) {
		t.Fatalf("bad type: err = %v, want ErrUnknownType", err)
	}
}

func TestParseType(t *testing.T) {
	t.Parallel()

	for _, typ := range []Type{TypeLowpass, TypeHighpass, TypePeaking, TypeHighShelf} {
		got, err := ParseType(" " + typ.String() + " ")
		if err != nil || got != typ {
			t.Fatalf("ParseType(%q) = %v, %v", typ.String(), got, err)
		}
	}
	if _, err := ParseType("bandpass"); !errors.Is(err, ErrUnknownType) {
		t.Fatalf("err = %v, want ErrUnknownType", err)
	}
}

func TestInvalidParamsYieldZero(t *testing.T) {
	t.Parallel()

	if c := Lowpass(-1, 0.5, sr); !c.IsZero() {
		t.Fatalf("negative cutoff produced %+v", c)
	}
	if c := Highpass(1000, 0.5, 0); !c.IsZero() {
		t.Fatalf("zero sample rate produced %+v", c)
	}
	// Non-positive Q falls back to Butterworth.
	if Lowpass(1000, 0, sr) != Lowpass(1000, defaultQ, sr) {
		t.Fatal("q<=0 should fall back to 1/sqrt(2)")
	}
}
