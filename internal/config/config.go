// Package config provides the configuration schema and loader for the
// acoustics-lab native player.
package config

import (
	"log/slog"
	"time"
)

// LogLevel controls log verbosity.
type LogLevel string

const (
	LogDebug LogLevel = "debug"
	LogInfo  LogLevel = "info"
	LogWarn  LogLevel = "warn"
	LogError LogLevel = "error"
)

// IsValid reports whether l is a recognised log level.
func (l LogLevel) IsValid() bool {
	switch l {
	case LogDebug, LogInfo, LogWarn, LogError:
		return true
	}

	return false
}

// Level maps l to a slog level. Unknown levels map to Info.
func (l LogLevel) Level() slog.Level {
	switch l {
	case LogDebug:
		return slog.LevelDebug
	case LogWarn:
		return slog.LevelWarn
	case LogError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Demo selects which demo the player starts with.
type Demo string

const (
	DemoNone      Demo = "none"
	DemoWeighting Demo = "weighting"
	DemoANC       Demo = "anc"
)

// IsValid reports whether d is a recognised demo.
func (d Demo) IsValid() bool {
	return d == DemoNone || d == DemoWeighting || d == DemoANC
}

// Config is the root configuration structure. It is typically loaded from a
// YAML file using [Load] or [LoadFromReader].
type Config struct {
	Audio    AudioConfig    `yaml:"audio"`
	Demo     DemoConfig     `yaml:"demo"`
	Analyser AnalyserConfig `yaml:"analyser"`
	Web      WebConfig      `yaml:"web"`
	TUI      TUIConfig      `yaml:"tui"`
	Log      LogConfig      `yaml:"log"`
}

// AudioConfig holds device and output settings.
type AudioConfig struct {
	// SampleRate in Hz. The device is opened at this rate.
	SampleRate int `yaml:"sample_rate"`

	// BufferSize is the device buffer duration. Zero lets the driver pick.
	BufferSize time.Duration `yaml:"buffer_size"`

	// MasterGain is the output volume in [0, 1].
	MasterGain float64 `yaml:"master_gain"`
}

// DemoConfig holds the initial demo state.
type DemoConfig struct {
	// Start is the demo running at startup.
	Start Demo `yaml:"start"`

	// Profile is the weighting profile: flat, a, b or c.
	Profile string `yaml:"profile"`

	// Source is the weighting source: noise or tone.
	Source string `yaml:"source"`

	// Frequency is the tone frequency in Hz.
	Frequency float64 `yaml:"frequency"`

	// Phase is the anti-noise phase in degrees, [0, 360].
	Phase float64 `yaml:"phase"`

	// Latency enables the simulated processing latency.
	Latency bool `yaml:"latency"`
}

// AnalyserConfig holds the tap settings.
type AnalyserConfig struct {
	FFTSize            int     `yaml:"fft_size"`
	WeightingSmoothing float64 `yaml:"weighting_smoothing"`
	ANCSmoothing       float64 `yaml:"anc_smoothing"`

	// Refresh is the snapshot interval of the TUI and web front ends.
	Refresh time.Duration `yaml:"refresh"`
}

// WebConfig holds the optional browser UI settings.
type WebConfig struct {
	Enabled    bool   `yaml:"enabled"`
	ListenAddr string `yaml:"listen_addr"`
	// Metrics serves Prometheus metrics at /metrics.
	Metrics bool `yaml:"metrics"`
}

// TUIConfig holds the terminal UI settings.
type TUIConfig struct {
	Enabled bool `yaml:"enabled"`
}

// LogConfig holds logging settings. The player logs to File because the TUI
// owns the terminal.
type LogConfig struct {
	File  string   `yaml:"file"`
	Level LogLevel `yaml:"level"`
}

// Default returns the configuration used when no file is given. Values
// decoded from YAML override these.
func Default() *Config {
	return &Config{
		Audio: AudioConfig{
			SampleRate: 48000,
			BufferSize: 40 * time.Millisecond,
			MasterGain: 0.5,
		},
		Demo: DemoConfig{
			Start:     DemoNone,
			Profile:   "flat",
			Source:    "noise",
			Frequency: 1000,
			Phase:     180,
		},
		Analyser: AnalyserConfig{
			FFTSize:            2048,
			WeightingSmoothing: 0.85,
			ANCSmoothing:       0.8,
			Refresh:            50 * time.Millisecond,
		},
		Web: WebConfig{
			Enabled:    true,
			ListenAddr: "localhost:8080",
			Metrics:    true,
		},
		TUI: TUIConfig{Enabled: true},
		Log: LogConfig{
			File:  "acoustics-lab.log",
			Level: LogInfo,
		},
	}
}
