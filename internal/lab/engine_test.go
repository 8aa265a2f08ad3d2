package lab

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"testing"

	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/cwbudde/acoustics-lab/dsp/render"
	"github.com/cwbudde/acoustics-lab/internal/observe"
	"github.com/cwbudde/acoustics-lab/internal/testutil"
)

func TestControlBeforeInit(t *testing.T) {
	t.Parallel()

	e := NewEngine(SoftwareFactory(testRate))

	calls := map[string]func() error{
		"SetSourceKind":      func() error { return e.SetSourceKind(SourceTone) },
		"SetFrequency":       func() error { return e.SetFrequency(440) },
		"SetWeighting":       func() error { _, err := e.SetWeighting(ProfileA); return err },
		"StartWeightingDemo": e.StartWeightingDemo,
		"StopWeightingDemo":  e.StopWeightingDemo,
		"StartANCDemo":       e.StartANCDemo,
		"StopANCDemo":        e.StopANCDemo,
		"StopAll":            e.StopAll,
		"ToggleANC":          func() error { return e.ToggleANC(true) },
		"SetPhase":           func() error { return e.SetPhase(90) },
		"SetLatency":         func() error { return e.SetLatency(true) },
		"SetMasterGain":      func() error { return e.SetMasterGain(0.2) },
	}

	for name, call := range calls {
		if err := call(); !errors.Is(err, ErrNotInitialized) {
			t.Fatalf("%s before Init: error = %v, want ErrNotInitialized", name, err)
		}
	}

	for _, tap := range e.Taps() {
		if tap.Ready() || tap.FrequencyData() != nil || tap.TimeDomainData() != nil {
			t.Fatalf("tap %s readable before Init", tap.Name())
		}
	}

	if e.Mode() != ModeUninitialized {
		t.Fatalf("Mode = %v, want uninitialized", e.Mode())
	}
}

func TestInitFailure(t *testing.T) {
	t.Parallel()

	deviceErr := errors.New("no audio device")

	e := NewEngine(func() (Renderer, error) { return nil, deviceErr })

	err := e.Init()
	if !errors.Is(err, ErrInitFailed) || !errors.Is(err, deviceErr) {
		t.Fatalf("Init error = %v, want ErrInitFailed wrapping the device error", err)
	}

	if e.Mode() != ModeUninitialized {
		t.Fatalf("Mode = %v after failed Init, want uninitialized", e.Mode())
	}

	tests := []struct {
		name string
		opts []Option
	}{
		{"bad smoothing", []Option{WithSmoothing(0.85, 1)}},
		{"bad fft size", []Option{WithFFTSize(1000)}},
		{"bad master gain", []Option{WithMasterGain(2)}},
	}

	for _, tc := range tests {
		e := NewEngine(SoftwareFactory(testRate), tc.opts...)
		if err := e.Init(); !errors.Is(err, ErrInitFailed) {
			t.Fatalf("%s: Init error = %v, want ErrInitFailed", tc.name, err)
		}
	}

	if err := NewEngine(SoftwareFactory(0)).Init(); !errors.Is(err, render.ErrInvalidSampleRate) {
		t.Fatalf("zero sample rate: Init error = %v, want ErrInvalidSampleRate", err)
	}
}

func TestInitBuildsWeightingChain(t *testing.T) {
	t.Parallel()

	e, ctx := newTestEngine(t)

	if err := e.Init(); err != nil {
		t.Fatalf("second Init: %v", err)
	}

	if e.Mode() != ModeIdle {
		t.Fatalf("Mode = %v, want idle", e.Mode())
	}

	if got := ctx.NodeCount(); got != baseNodes {
		t.Fatalf("NodeCount = %d, want %d", got, baseNodes)
	}

	if stages := chainFrom(t, ctx, e.weighting.input.ID(), e.weighting.output.ID()); len(stages) != 0 {
		t.Fatalf("flat chain has stages %v", stages)
	}

	if !ctx.Connected(e.master, ctx.Destination()) {
		t.Fatal("master gain not connected to the destination")
	}

	for _, tap := range e.Taps() {
		if !tap.Ready() || tap.FFTSize() != DefaultFFTSize {
			t.Fatalf("tap %s: ready %v fft %d", tap.Name(), tap.Ready(), tap.FFTSize())
		}

		if got := len(tap.FrequencyData()); got != DefaultFFTSize/2 {
			t.Fatalf("tap %s: %d frequency bytes, want %d", tap.Name(), got, DefaultFFTSize/2)
		}

		if got := len(tap.TimeDomainData()); got != DefaultFFTSize {
			t.Fatalf("tap %s: %d time bytes, want %d", tap.Name(), got, DefaultFFTSize)
		}
	}

	testutil.RequireNearlyEqual(t, "master gain", e.master.Gain().Value(), DefaultMasterGain, 0)
}

func TestModeTransitions(t *testing.T) {
	t.Parallel()

	e, _ := newTestEngine(t)

	steps := []struct {
		name    string
		do      func() error
		mode    Mode
		playing bool
		anc     bool
	}{
		{"start weighting", e.StartWeightingDemo, ModeWeighting, true, false},
		{"stop weighting", e.StopWeightingDemo, ModeWeighting, false, false},
		{"start weighting again", e.StartWeightingDemo, ModeWeighting, true, false},
		{"start anc tears weighting down", e.StartANCDemo, ModeANC, false, true},
		{"toggle anc", func() error { return e.ToggleANC(true) }, ModeANC, false, true},
		{"stop anc", e.StopANCDemo, ModeANC, false, false},
		{"start anc again", e.StartANCDemo, ModeANC, false, true},
		{"set weighting tears anc down", func() error { _, err := e.SetWeighting(ProfileC); return err }, ModeWeighting, false, false},
		{"start anc", e.StartANCDemo, ModeANC, false, true},
		{"start weighting tears anc down", e.StartWeightingDemo, ModeWeighting, true, false},
		{"stop all", e.StopAll, ModeWeighting, false, false},
	}

	for _, s := range steps {
		if err := s.do(); err != nil {
			t.Fatalf("%s: %v", s.name, err)
		}

		st := e.Status()
		if st.Mode != s.mode || st.Playing != s.playing || st.ANC.Running != s.anc {
			t.Fatalf("%s: mode %v playing %v anc %v, want %v %v %v",
				s.name, st.Mode, st.Playing, st.ANC.Running, s.mode, s.playing, s.anc)
		}
	}
}

func TestSetMasterGain(t *testing.T) {
	t.Parallel()

	e, ctx := newTestEngine(t)

	for _, g := range []float64{-0.1, 1.01} {
		if err := e.SetMasterGain(g); !errors.Is(err, ErrInvalidGain) {
			t.Fatalf("SetMasterGain(%v) error = %v, want ErrInvalidGain", g, err)
		}
	}

	if err := e.SetMasterGain(0.2); err != nil {
		t.Fatalf("SetMasterGain: %v", err)
	}

	if e.MasterGain() != 0.2 {
		t.Fatalf("MasterGain = %v, want 0.2", e.MasterGain())
	}

	gain := e.master.Gain()
	now := ctx.CurrentTime()
	testutil.RequireNearlyEqual(t, "ramp midpoint", gain.ValueAt(now+MasterRampWindow.Seconds()/2), 0.35, 1e-9)

	renderSeconds(ctx, 0.05)
	testutil.RequireNearlyEqual(t, "settled", gain.Value(), 0.2, 1e-12)
}

func TestClose(t *testing.T) {
	t.Parallel()

	e, ctx := newTestEngine(t)

	if err := e.StartANCDemo(); err != nil {
		t.Fatalf("StartANCDemo: %v", err)
	}

	for range 2 {
		if err := e.Close(); err != nil {
			t.Fatalf("Close: %v", err)
		}
	}

	if e.Mode() != ModeClosed {
		t.Fatalf("Mode = %v, want closed", e.Mode())
	}

	if err := e.StartWeightingDemo(); !errors.Is(err, ErrClosed) {
		t.Fatalf("StartWeightingDemo after Close: %v, want ErrClosed", err)
	}

	if err := e.Init(); !errors.Is(err, ErrClosed) {
		t.Fatalf("Init after Close: %v, want ErrClosed", err)
	}

	if e.ResultTap().Ready() {
		t.Fatal("tap still attached after Close")
	}

	if got := ctx.NodeCount(); got != 1 {
		t.Fatalf("NodeCount after Close = %d, want only the destination", got)
	}
}

func TestEngineLogsTransitions(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	e, _ := newTestEngine(t, WithLogger(logger))

	if err := e.StartANCDemo(); err != nil {
		t.Fatalf("StartANCDemo: %v", err)
	}

	out := buf.String()
	for _, want := range []string{"engine initialized", "mode transition", "to=anc"} {
		if !strings.Contains(out, want) {
			t.Fatalf("log output missing %q:\n%s", want, out)
		}
	}
}

func TestEngineCountsTransitions(t *testing.T) {
	t.Parallel()

	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = mp.Shutdown(context.Background()) })

	m, err := observe.NewMetrics(mp)
	if err != nil {
		t.Fatalf("NewMetrics: %v", err)
	}

	e, _ := newTestEngine(t, WithMetrics(m))

	if err := e.StartWeightingDemo(); err != nil {
		t.Fatalf("StartWeightingDemo: %v", err)
	}

	// Starting again stays in weighting and is not a transition.
	if err := e.StartWeightingDemo(); err != nil {
		t.Fatalf("StartWeightingDemo: %v", err)
	}

	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("Collect: %v", err)
	}

	got := map[string]int64{}

	for _, sm := range rm.ScopeMetrics {
		for _, met := range sm.Metrics {
			if met.Name != "acoustics_lab.mode.transitions" {
				continue
			}

			for _, dp := range met.Data.(metricdata.Sum[int64]).DataPoints {
				from, _ := dp.Attributes.Value("from")
				to, _ := dp.Attributes.Value("to")
				got[from.AsString()+">"+to.AsString()] += dp.Value
			}
		}
	}

	want := map[string]int64{"uninitialized>idle": 1, "idle>weighting": 1}
	if len(got) != len(want) {
		t.Fatalf("transitions = %v, want %v", got, want)
	}

	for k, v := range want {
		if got[k] != v {
			t.Fatalf("transitions = %v, want %v", got, want)
		}
	}
}

func TestConcurrentControl(t *testing.T) {
	t.Parallel()

	e, ctx := newTestEngine(t)

	var wg sync.WaitGroup

	stop := make(chan struct{})

	wg.Add(1)

	go func() {
		defer wg.Done()

		buf := make([]float32, 512)

		for {
			select {
			case <-stop:
				return
			default:
				ctx.Render(buf)
			}
		}
	}()

	var control sync.WaitGroup
	for w := range 4 {
		control.Add(1)

		go func() {
			defer control.Done()

			for i := range 25 {
				switch (w + i) % 6 {
				case 0:
					_ = e.StartWeightingDemo()
				case 1:
					_, _ = e.SetWeighting(Profiles[i%len(Profiles)])
				case 2:
					_ = e.StartANCDemo()
				case 3:
					_ = e.ToggleANC(i%2 == 0)
				case 4:
					_ = e.SetPhase(float64(i * 14 % 360))
				case 5:
					_ = e.ResultTap().FrequencyData()
				}
			}
		}()
	}

	control.Wait()
	close(stop)
	wg.Wait()

	if err := e.StopAll(); err != nil {
		t.Fatalf("StopAll: %v", err)
	}

	if got := ctx.NodeCount(); got != baseNodes+len(e.WeightingStages()) {
		t.Fatalf("NodeCount = %d, want %d: leaked nodes", got, baseNodes+len(e.WeightingStages()))
	}
}
