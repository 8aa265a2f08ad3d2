package config_test

import (
	"errors"
	"flag"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/cwbudde/acoustics-lab/internal/config"
)

func TestLoadFromReaderDefaults(t *testing.T) {
	t.Parallel()

	cfg, err := config.LoadFromReader(strings.NewReader(""))
	if err != nil {
		t.Fatalf("empty document: %v", err)
	}

	want := config.Default()
	if cfg.Audio != want.Audio || cfg.Demo != want.Demo || cfg.Analyser != want.Analyser {
		t.Fatalf("empty document = %+v, want defaults %+v", cfg, want)
	}
}

func TestLoadFromReaderOverrides(t *testing.T) {
	t.Parallel()

	yaml := `
audio:
  sample_rate: 44100
  buffer_size: 20ms
  master_gain: 0.3
demo:
  start: anc
  profile: A
  phase: 160
  latency: true
analyser:
  anc_smoothing: 0.5
web:
  enabled: false
log:
  level: debug
`

	cfg, err := config.LoadFromReader(strings.NewReader(yaml))
	if err != nil {
		t.Fatalf("LoadFromReader: %v", err)
	}

	if cfg.Audio.SampleRate != 44100 || cfg.Audio.BufferSize != 20*time.Millisecond || cfg.Audio.MasterGain != 0.3 {
		t.Errorf("audio = %+v", cfg.Audio)
	}

	if cfg.Demo.Start != config.DemoANC || cfg.Demo.Profile != "A" || cfg.Demo.Phase != 160 || !cfg.Demo.Latency {
		t.Errorf("demo = %+v", cfg.Demo)
	}

	if cfg.Demo.Source != "noise" || cfg.Demo.Frequency != 1000 {
		t.Errorf("unset demo fields lost their defaults: %+v", cfg.Demo)
	}

	if cfg.Analyser.ANCSmoothing != 0.5 || cfg.Analyser.WeightingSmoothing != 0.85 {
		t.Errorf("analyser = %+v", cfg.Analyser)
	}

	if cfg.Web.Enabled || !cfg.Web.Metrics {
		t.Errorf("web = %+v, want disabled with metrics kept", cfg.Web)
	}

	if cfg.Log.Level != config.LogDebug {
		t.Errorf("log.level = %q, want debug", cfg.Log.Level)
	}
}

func TestLoadFromReaderUnknownField(t *testing.T) {
	t.Parallel()

	_, err := config.LoadFromReader(strings.NewReader("audio:\n  samplerate: 48000\n"))
	if err == nil || !strings.Contains(err.Error(), "samplerate") {
		t.Fatalf("unknown field error = %v, want mention of samplerate", err)
	}
}

func TestValidateJoinsErrors(t *testing.T) {
	t.Parallel()

	yaml := `
audio:
  sample_rate: 1000
  master_gain: 1.5
demo:
  start: party
  profile: d
  source: square
  phase: 400
analyser:
  fft_size: 1000
  anc_smoothing: 1
log:
  level: loud
`

	_, err := config.LoadFromReader(strings.NewReader(yaml))
	if err == nil {
		t.Fatal("expected validation errors, got nil")
	}

	for _, want := range []string{
		"audio.sample_rate", "audio.master_gain", "demo.start", "demo.profile",
		"demo.source", "demo.phase", "analyser.fft_size", "analyser.anc_smoothing", "log.level",
	} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error should mention %s, got: %v", want, err)
		}
	}
}

func TestValidateCrossFields(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		edit func(*config.Config)
		want string
	}{
		{"frequency above nyquist", func(c *config.Config) { c.Demo.Frequency = 30000 }, "demo.frequency"},
		{"web without address", func(c *config.Config) { c.Web.ListenAddr = "" }, "web.listen_addr"},
		{"tui without log file", func(c *config.Config) { c.Log.File = "" }, "log.file"},
		{"zero refresh", func(c *config.Config) { c.Analyser.Refresh = 0 }, "analyser.refresh"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			cfg := config.Default()
			tc.edit(cfg)

			err := config.Validate(cfg)
			if err == nil || !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("Validate = %v, want mention of %s", err, tc.want)
			}
		})
	}

	if err := config.Validate(config.Default()); err != nil {
		t.Fatalf("defaults do not validate: %v", err)
	}
}

func TestLoadMissingFile(t *testing.T) {
	t.Parallel()

	_, err := config.Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("Load missing file = %v, want ErrNotExist", err)
	}
}

func TestFlagsOverrideFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "lab.yaml")
	if err := os.WriteFile(path, []byte("demo:\n  profile: c\n  frequency: 440\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	flags := config.RegisterFlags(fs)

	if err := fs.Parse([]string{"-config", path, "-profile", "b", "-no-web", "-no-metrics", "-latency"}); err != nil {
		t.Fatalf("Parse: %v", err)
	}

	cfg, err := flags.Resolve()
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}

	if cfg.Demo.Profile != "b" {
		t.Errorf("profile = %q, want flag value b", cfg.Demo.Profile)
	}

	if cfg.Demo.Frequency != 440 {
		t.Errorf("frequency = %g, want file value 440", cfg.Demo.Frequency)
	}

	if cfg.Web.Enabled || cfg.Web.Metrics || !cfg.Demo.Latency || !cfg.TUI.Enabled {
		t.Errorf("web %v metrics %v latency %v tui %v", cfg.Web.Enabled, cfg.Web.Metrics, cfg.Demo.Latency, cfg.TUI.Enabled)
	}
}

func TestFlagsValidated(t *testing.T) {
	t.Parallel()

	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	flags := config.RegisterFlags(fs)

	if err := fs.Parse([]string{"-gain", "3"}); err != nil {
		t.Fatalf("Parse: %v", err)
	}

	if _, err := flags.Resolve(); err == nil || !strings.Contains(err.Error(), "audio.master_gain") {
		t.Fatalf("Resolve = %v, want master gain error", err)
	}
}

func TestLogLevel(t *testing.T) {
	t.Parallel()

	if !config.LogWarn.IsValid() || config.LogLevel("trace").IsValid() {
		t.Fatal("IsValid mismatch")
	}

	if config.LogDebug.Level().String() != "DEBUG" || config.LogLevel("").Level().String() != "INFO" {
		t.Fatal("Level mapping mismatch")
	}
}
