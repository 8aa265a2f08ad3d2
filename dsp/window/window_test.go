package window

import (
	"math"
	"testing"
)

func TestGenerateShapes(t *testing.T) {
	for _, typ := range []Type{TypeRectangular, TypeHann, TypeBlackman} {
		w := Generate(typ, 64)
		if len(w) != 64 {
			t.Fatalf("type %d: len=%d, want 64", typ, len(w))
		}

		for i, v := range w {
			if math.IsNaN(v) || v < -1e-12 || v > 1+1e-12 {
				t.Fatalf("type %d: coefficient[%d] = %v out of [0,1]", typ, i, v)
			}
		}

		// Symmetric windows mirror around the center.
		for i := range w {
			if math.Abs(w[i]-w[len(w)-1-i]) > 1e-12 {
				t.Fatalf("type %d: not symmetric at %d", typ, i)
			}
		}
	}
}

func TestBlackmanEndpoints(t *testing.T) {
	w := Generate(TypeBlackman, 65)
	if math.Abs(w[0]) > 1e-12 || math.Abs(w[64]) > 1e-12 {
		t.Fatalf("endpoints = %v, %v, want 0", w[0], w[64])
	}
	if math.Abs(w[32]-1) > 1e-12 {
		t.Fatalf("center = %v, want 1", w[32])
	}
}

func TestPeriodicForm(t *testing.T) {
	w := Generate(TypeHann, 8, WithPeriodic())
	if math.Abs(w[4]-1) > 1e-12 {
		t.Fatalf("periodic hann center = %v, want 1", w[4])
	}
	if math.Abs(w[0]) > 1e-12 {
		t.Fatalf("periodic hann w[0] = %v, want 0", w[0])
	}
	if math.Abs(CoherentGain(w)-0.5) > 1e-12 {
		t.Fatalf("periodic hann coherent gain = %v, want 0.5", CoherentGain(w))
	}
}

func TestApply(t *testing.T) {
	buf := []float64{2, 2, 2, 2}
	coeffs := []float64{0, 0.5, 1, 0.25}
	Apply(buf, coeffs)

	want := []float64{0, 1, 2, 0.5}
	for i := range buf {
		if math.Abs(buf[i]-want[i]) > 1e-12 {
			t.Fatalf("buf[%d] = %v, want %v", i, buf[i], want[i])
		}
	}

	// Length mismatch leaves the buffer untouched.
	Apply(buf, []float64{0})
	if buf[1] != 1 {
		t.Fatalf("mismatched apply modified buffer: %v", buf)
	}
}

func TestGenerateInvalidLength(t *testing.T) {
	if w := Generate(TypeHann, 0); w != nil {
		t.Fatalf("Generate(0) = %v, want nil", w)
	}
}
