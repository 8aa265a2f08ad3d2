package render

import (
	"testing"

	"github.com/cwbudde/acoustics-lab/dsp/graph"
	"github.com/cwbudde/acoustics-lab/internal/testutil"
)

func TestParamTimeline(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		schedule func(p *Param)
		at       []float64
		want     []float64
	}{
		{
			name:     "no events holds the initial value",
			schedule: func(*Param) {},
			at:       []float64{0, 1, 10},
			want:     []float64{0.25, 0.25, 0.25},
		},
		{
			name:     "step takes effect at its time",
			schedule: func(p *Param) { p.SetValueAtTime(2, 0.1) },
			at:       []float64{0, 0.0999, 0.1, 0.5},
			want:     []float64{0.25, 0.25, 2, 2},
		},
		{
			name:     "ramp without predecessor starts at the clock",
			schedule: func(p *Param) { p.LinearRampToValueAtTime(1.25, 0.1) },
			at:       []float64{0, 0.05, 0.1, 0.2},
			want:     []float64{0.25, 0.75, 1.25, 1.25},
		},
		{
			name: "ramp starts at the preceding event",
			schedule: func(p *Param) {
				p.SetValueAtTime(1, 0.1)
				p.LinearRampToValueAtTime(3, 0.2)
			},
			at:   []float64{0.05, 0.1, 0.15, 0.3},
			want: []float64{0.25, 1, 2, 3},
		},
		{
			name: "cancel drops later events",
			schedule: func(p *Param) {
				p.SetValueAtTime(1, 0.1)
				p.SetValueAtTime(5, 0.3)
				p.CancelScheduledValues(0.2)
			},
			at:   []float64{0.25, 0.5},
			want: []float64{1, 1},
		},
		{
			name: "equal times keep call order",
			schedule: func(p *Param) {
				p.SetValueAtTime(1, 0.1)
				p.SetValueAtTime(2, 0.1)
			},
			at:   []float64{0.1},
			want: []float64{2},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			c := newTestContext(t, 1000, WithQuantum(10))

			g, err := c.NewGain(0.25)
			if err != nil {
				t.Fatalf("NewGain: %v", err)
			}

			tc.schedule(g.Gain())

			for i, at := range tc.at {
				testutil.RequireNearlyEqual(t, tc.name, g.Gain().ValueAt(at), tc.want[i], 1e-12)
			}
		})
	}
}

func TestParamRampIsRenderedPerSample(t *testing.T) {
	t.Parallel()

	const fs = 1000.0

	c := newTestContext(t, fs, WithQuantum(10))
	src := startedSource(t, c, constSamples{v: 1, n: 64}, true)

	g, err := c.NewGain(0)
	if err != nil {
		t.Fatalf("NewGain: %v", err)
	}

	mustApply(t, c, new(graph.Tx).Chain(src.ID(), g.ID(), c.Destination().ID()))
	g.Gain().LinearRampToValueAtTime(1, 0.1)

	out := testutil.Float64s(render(c, 150))
	for k := 0; k <= 100; k++ {
		testutil.RequireNearlyEqual(t, "ramp sample", out[k], float64(k)/100, 1e-6)
	}

	for k := 100; k < len(out); k++ {
		if out[k] != 1 {
			t.Fatalf("sample %d after ramp = %v, want 1", k, out[k])
		}
	}

	if step := testutil.MaxStep(out); step > 1/(0.1*fs)+1e-6 {
		t.Fatalf("max per-sample step = %v, want <= %v", step, 1/(0.1*fs))
	}
}

func TestParamValueFollowsClock(t *testing.T) {
	t.Parallel()

	c := newTestContext(t, 1000, WithQuantum(10))

	g, err := c.NewGain(0)
	if err != nil {
		t.Fatalf("NewGain: %v", err)
	}

	g.Gain().LinearRampToValueAtTime(1, 0.1)
	c.Advance(0.05)

	testutil.RequireNearlyEqual(t, "clock", c.CurrentTime(), 0.05, 1e-12)
	testutil.RequireNearlyEqual(t, "mid ramp", g.Gain().Value(), 0.5, 1e-12)

	// Re-anchoring at the current value keeps the curve continuous.
	now := c.CurrentTime()
	v := g.Gain().ValueAt(now)
	g.Gain().CancelScheduledValues(now)
	g.Gain().SetValueAtTime(v, now)
	g.Gain().LinearRampToValueAtTime(0, now+0.1)

	testutil.RequireNearlyEqual(t, "re-anchored", g.Gain().ValueAt(now), 0.5, 1e-12)
	testutil.RequireNearlyEqual(t, "halfway back", g.Gain().ValueAt(now+0.05), 0.25, 1e-12)

	c.Advance(0.2)
	testutil.RequireNearlyEqual(t, "settled", g.Gain().Value(), 0, 0)
}

func TestParamSetValueDropsEvents(t *testing.T) {
	t.Parallel()

	c := newTestContext(t, 1000)

	d, err := c.NewDelay(0.1)
	if err != nil {
		t.Fatalf("NewDelay: %v", err)
	}

	d.DelayTime().LinearRampToValueAtTime(0.05, 1)
	d.DelayTime().SetValue(0.02)

	testutil.RequireNearlyEqual(t, "after SetValue", d.DelayTime().ValueAt(2), 0.02, 0)
}

func TestParamClampsToRange(t *testing.T) {
	t.Parallel()

	c := newTestContext(t, 1000)

	d, err := c.NewDelay(0.1)
	if err != nil {
		t.Fatalf("NewDelay: %v", err)
	}

	d.DelayTime().SetValue(5)
	testutil.RequireNearlyEqual(t, "upper clamp", d.DelayTime().Value(), 0.1, 0)

	d.DelayTime().SetValue(-1)
	testutil.RequireNearlyEqual(t, "lower clamp", d.DelayTime().Value(), 0, 0)
}
