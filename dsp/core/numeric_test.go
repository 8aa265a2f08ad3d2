package core

import (
	"math"
	"testing"
)

func TestClamp(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		value  float64
		lo, hi float64
		want   float64
	}{
		{name: "inside", value: 0.5, lo: 0, hi: 1, want: 0.5},
		{name: "below", value: -1, lo: 0, hi: 1, want: 0},
		{name: "above", value: 2, lo: 0, hi: 1, want: 1},
		{name: "swapped", value: 2, lo: 1, hi: 0, want: 1},
		{name: "negative infinity", value: math.Inf(-1), lo: 0, hi: 255, want: 0},
		{name: "positive infinity", value: math.Inf(1), lo: 0, hi: 255, want: 255},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := Clamp(tt.value, tt.lo, tt.hi); got != tt.want {
				t.Fatalf("Clamp(%v, %v, %v) = %v, want %v", tt.value, tt.lo, tt.hi, got, tt.want)
			}
		})
	}
}

func TestDBConversions(t *testing.T) {
	t.Parallel()

	if db := LinearToDB(DBToLinear(-6)); math.Abs(db+6) > 1e-10 {
		t.Fatalf("LinearToDB(DBToLinear(-6)) = %v, want -6", db)
	}

	// A shelf or peak gain g uses the amplitude 10^(g/40).
	if a := DBToLinear(20.0 / 2); math.Abs(a-math.Sqrt(10)) > 1e-12 {
		t.Fatalf("DBToLinear(10) = %v, want sqrt(10)", a)
	}

	if !math.IsInf(LinearToDB(0), -1) {
		t.Fatal("expected -Inf for zero")
	}

	if !math.IsNaN(LinearToDB(-1)) {
		t.Fatal("expected NaN for negative amplitude")
	}
}

func TestFloorDB(t *testing.T) {
	t.Parallel()

	for _, tc := range []struct{ in, want float64 }{
		{-20, -20}, {-150, -120}, {math.Inf(-1), -120}, {math.NaN(), -120}, {6, 6},
	} {
		if got := FloorDB(tc.in, -120); got != tc.want {
			t.Fatalf("FloorDB(%v) = %v, want %v", tc.in, got, tc.want)
		}
	}
}
