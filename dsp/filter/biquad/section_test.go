package biquad

import (
	"math"
	"testing"
)

const eps = 1e-12

func almostEqual(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol
}

func TestNewSection(t *testing.T) {
	c := Coefficients{B0: 1, B1: 2, B2: 3, A1: 4, A2: 5}
	s := NewSection(c)
	if s.Coefficients != c {
		t.Fatalf("coefficients mismatch: got %v, want %v", s.Coefficients, c)
	}
	if st := s.State(); st != [2]float64{0, 0} {
		t.Fatalf("initial state not zero: %v", st)
	}
}

func TestProcessSample_Passthrough(t *testing.T) {
	s := NewSection(Passthrough())
	for i, x := range []float64{1, 0, -1, 0.5, 0.25} {
		if y := s.ProcessSample(x); !almostEqual(y, x, eps) {
			t.Errorf("sample %d: got %v, want %v", i, y, x)
		}
	}
}

func TestProcessSample_DFIIT(t *testing.T) {
	// Impulse through B0=0.25 B1=0.5 B2=0.25 A1=-0.2 A2=0.04, traced by hand.
	s := NewSection(Coefficients{B0: 0.25, B1: 0.5, B2: 0.25, A1: -0.2, A2: 0.04})

	want := []float64{0.25, 0.55, 0.35, 0.048, -0.0044, -0.0028}
	for i, w := range want {
		var x float64
		if i == 0 {
			x = 1
		}
		if y := s.ProcessSample(x); !almostEqual(y, w, 1e-12) {
			t.Fatalf("y[%d] = %v, want %v", i, y, w)
		}
	}
}

func TestProcessBlock_MatchesProcessSample(t *testing.T) {
	c := Coefficients{B0: 0.2, B1: -0.1, B2: 0.05, A1: -0.6, A2: 0.2}

	for _, n := range []int{0, 1, 2, 7, 128} {
		in := make([]float64, n)
		for i := range in {
			in[i] = math.Sin(float64(i) * 0.3)
		}

		ref := NewSection(c)
		want := make([]float64, n)
		for i, x := range in {
			want[i] = ref.ProcessSample(x)
		}

		blk := NewSection(c)
		got := append([]float64(nil), in...)
		blk.ProcessBlock(got)

		for i := range got {
			if !almostEqual(got[i], want[i], 1e-14) {
				t.Fatalf("n=%d index %d: got %v, want %v", n, i, got[i], want[i])
			}
		}
		if blk.State() != ref.State() {
			t.Fatalf("n=%d: state mismatch %v vs %v", n, blk.State(), ref.State())
		}
	}
}

func TestSetCoefficientsKeepsState(t *testing.T) {
	s := NewSection(Coefficients{B0: 0.5, B1: 0.5})
	s.ProcessSample(1)
	before := s.State()

	s.SetCoefficients(Coefficients{B0: 1})
	if s.State() != before {
		t.Fatalf("state changed on retune: %v -> %v", before, s.State())
	}
}

func TestResetAndSetState(t *testing.T) {
	s := NewSection(Coefficients{B0: 0.25, B1: 0.5, B2: 0.25, A1: -0.2, A2: 0.04})
	s.ProcessSample(1)
	saved := s.State()

	s.Reset()
	if s.State() != [2]float64{} {
		t.Fatalf("reset left state %v", s.State())
	}

	s.SetState(saved)
	if s.State() != saved {
		t.Fatalf("SetState = %v, want %v", s.State(), saved)
	}
}

func TestCoefficientsIsZero(t *testing.T) {
	if !(Coefficients{}).IsZero() {
		t.Fatal("zero value should report IsZero")
	}
	if Passthrough().IsZero() {
		t.Fatal("passthrough should not report IsZero")
	}
}
