package config

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"
)

var (
	validProfiles = []string{"flat", "z", "a", "b", "c"}
	validSources  = []string{"noise", "pink", "tone", "sine"}
)

// Load reads the YAML configuration file at path and returns a validated
// [Config]. It is a convenience wrapper around [LoadFromReader].
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("config: open %q: %w", path, err)
	}
	defer f.Close()

	cfg, err := LoadFromReader(f)
	if err != nil {
		return nil, fmt.Errorf("config: parse %q: %w", path, err)
	}

	return cfg, nil
}

// LoadFromReader decodes a YAML config from r on top of [Default] and
// validates the result. Unknown keys are rejected. An empty document yields
// the defaults.
func LoadFromReader(r io.Reader) (*Config, error) {
	cfg := Default()

	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("config: decode yaml: %w", err)
	}

	if err := Validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks that cfg contains a coherent set of values. It returns a
// joined error listing every failure found.
func Validate(cfg *Config) error {
	var errs []error

	a := cfg.Audio
	if a.SampleRate < 8000 || a.SampleRate > 192000 {
		errs = append(errs, fmt.Errorf("audio.sample_rate %d is out of range [8000, 192000]", a.SampleRate))
	}

	if a.BufferSize < 0 {
		errs = append(errs, fmt.Errorf("audio.buffer_size %s is negative", a.BufferSize))
	}

	if !(a.MasterGain >= 0 && a.MasterGain <= 1) {
		errs = append(errs, fmt.Errorf("audio.master_gain %g is out of range [0, 1]", a.MasterGain))
	}

	d := cfg.Demo
	if !d.Start.IsValid() {
		errs = append(errs, fmt.Errorf("demo.start %q is invalid; valid values: none, weighting, anc", d.Start))
	}

	if !oneOf(d.Profile, validProfiles) {
		errs = append(errs, fmt.Errorf("demo.profile %q is invalid; valid values: %s", d.Profile, strings.Join(validProfiles, ", ")))
	}

	if !oneOf(d.Source, validSources) {
		errs = append(errs, fmt.Errorf("demo.source %q is invalid; valid values: %s", d.Source, strings.Join(validSources, ", ")))
	}

	if nyquist := float64(a.SampleRate) / 2; !(d.Frequency > 0 && d.Frequency < nyquist) {
		errs = append(errs, fmt.Errorf("demo.frequency %g must be in (0, %g)", d.Frequency, nyquist))
	}

	if !(d.Phase >= 0 && d.Phase <= 360) {
		errs = append(errs, fmt.Errorf("demo.phase %g is out of range [0, 360]", d.Phase))
	}

	an := cfg.Analyser
	if an.FFTSize < 32 || an.FFTSize > 32768 || an.FFTSize&(an.FFTSize-1) != 0 {
		errs = append(errs, fmt.Errorf("analyser.fft_size %d must be a power of two in [32, 32768]", an.FFTSize))
	}

	if !validSmoothing(an.WeightingSmoothing) {
		errs = append(errs, fmt.Errorf("analyser.weighting_smoothing %g is out of range [0, 1)", an.WeightingSmoothing))
	}

	if !validSmoothing(an.ANCSmoothing) {
		errs = append(errs, fmt.Errorf("analyser.anc_smoothing %g is out of range [0, 1)", an.ANCSmoothing))
	}

	if an.Refresh <= 0 {
		errs = append(errs, fmt.Errorf("analyser.refresh %s must be positive", an.Refresh))
	}

	if cfg.Web.Enabled && cfg.Web.ListenAddr == "" {
		errs = append(errs, errors.New("web.listen_addr is required when web.enabled is true"))
	}

	if cfg.Log.Level != "" && !cfg.Log.Level.IsValid() {
		errs = append(errs, fmt.Errorf("log.level %q is invalid; valid values: debug, info, warn, error", cfg.Log.Level))
	}

	if cfg.TUI.Enabled && cfg.Log.File == "" {
		errs = append(errs, errors.New("log.file is required when tui.enabled is true"))
	}

	return errors.Join(errs...)
}

func oneOf(v string, valid []string) bool {
	return slices.Contains(valid, strings.ToLower(strings.TrimSpace(v)))
}

func validSmoothing(v float64) bool {
	return v >= 0 && v < 1 && !math.IsNaN(v)
}
