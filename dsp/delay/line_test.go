package delay

import (
	"math"
	"testing"
)

func approxEqual(a, b, eps float64) bool {
	return math.Abs(a-b) < eps
}

func TestNewValidation(t *testing.T) {
	if _, err := New(0); err == nil {
		t.Fatal("expected error for size=0")
	}

	if _, err := New(-1); err == nil {
		t.Fatal("expected error for size=-1")
	}

	if _, err := ForMaxDelay(-1); err == nil {
		t.Fatal("expected error for negative max delay")
	}
}

func TestForMaxDelayCapacity(t *testing.T) {
	d, err := ForMaxDelay(100.5)
	if err != nil {
		t.Fatal(err)
	}

	if d.MaxDelay() < 100.5 {
		t.Fatalf("MaxDelay = %v, want >= 100.5", d.MaxDelay())
	}
}

func TestReadIntegerDelay(t *testing.T) {
	d, err := New(8)
	if err != nil {
		t.Fatal(err)
	}

	for i := 1; i <= 5; i++ {
		d.Write(float64(i))
	}

	for delay, want := range []float64{5, 4, 3, 2, 1} {
		if got := d.Read(delay); got != want {
			t.Fatalf("Read(%d) = %v, want %v", delay, got, want)
		}
	}
}

func TestReadWrapsAround(t *testing.T) {
	d, err := New(4)
	if err != nil {
		t.Fatal(err)
	}

	for i := 1; i <= 10; i++ {
		d.Write(float64(i))
	}

	if got := d.Read(0); got != 10 {
		t.Fatalf("Read(0) = %v, want 10", got)
	}

	if got := d.Read(3); got != 7 {
		t.Fatalf("Read(3) = %v, want 7", got)
	}
}

func TestReadFractionalOnRamp(t *testing.T) {
	d, err := ForMaxDelay(32)
	if err != nil {
		t.Fatal(err)
	}

	// Hermite interpolation is exact on linear input.
	for i := range 40 {
		d.Write(float64(i))
	}

	for _, delay := range []float64{0, 1.25, 2.5, 10.75} {
		want := 39 - delay
		if got := d.ReadFractional(delay); !approxEqual(got, want, 1e-12) {
			t.Fatalf("ReadFractional(%v) = %v, want %v", delay, got, want)
		}
	}
}

func TestReadFractionalClamps(t *testing.T) {
	d, err := New(8)
	if err != nil {
		t.Fatal(err)
	}

	for i := range 8 {
		d.Write(float64(i))
	}

	if got := d.ReadFractional(-3); got != d.Read(0) {
		t.Fatalf("negative delay = %v, want %v", got, d.Read(0))
	}

	if got, want := d.ReadFractional(1000), d.ReadFractional(d.MaxDelay()); got != want {
		t.Fatalf("oversized delay = %v, want %v", got, want)
	}
}

func TestReset(t *testing.T) {
	d, err := New(4)
	if err != nil {
		t.Fatal(err)
	}

	d.Write(1)
	d.Write(2)
	d.Reset()

	for i := range 4 {
		if got := d.Read(i); got != 0 {
			t.Fatalf("Read(%d) after reset = %v", i, got)
		}
	}
}
