package config

import (
	"flag"
	"time"
)

// Flags binds command-line overrides for the most common settings. Only
// flags that were set on the command line are applied, so YAML values
// survive unless explicitly overridden.
type Flags struct {
	fs *flag.FlagSet

	ConfigPath string

	sampleRate int
	bufferSize time.Duration
	masterGain float64
	start      string
	profile    string
	source     string
	frequency  float64
	phase      float64
	latency    bool
	fftSize    int
	webAddr    string
	noWeb      bool
	noMetrics  bool
	noTUI      bool
	logFile    string
	logLevel   string
}

// RegisterFlags defines the player flags on fs. Defaults shown in -help are
// those of [Default].
func RegisterFlags(fs *flag.FlagSet) *Flags {
	d := Default()
	f := &Flags{fs: fs}

	fs.StringVar(&f.ConfigPath, "config", "", "path to a YAML configuration file")
	fs.IntVar(&f.sampleRate, "rate", d.Audio.SampleRate, "output sample rate in Hz")
	fs.DurationVar(&f.bufferSize, "buffer", d.Audio.BufferSize, "device buffer duration")
	fs.Float64Var(&f.masterGain, "gain", d.Audio.MasterGain, "master gain in [0, 1]")
	fs.StringVar(&f.start, "demo", string(d.Demo.Start), "demo to start: none, weighting, anc")
	fs.StringVar(&f.profile, "profile", d.Demo.Profile, "weighting profile: flat, a, b, c")
	fs.StringVar(&f.source, "source", d.Demo.Source, "weighting source: noise, tone")
	fs.Float64Var(&f.frequency, "freq", d.Demo.Frequency, "tone frequency in Hz")
	fs.Float64Var(&f.phase, "phase", d.Demo.Phase, "anti-noise phase in degrees")
	fs.BoolVar(&f.latency, "latency", d.Demo.Latency, "simulate 50 ms processing latency")
	fs.IntVar(&f.fftSize, "fft", d.Analyser.FFTSize, "analyser FFT size")
	fs.StringVar(&f.webAddr, "addr", d.Web.ListenAddr, "web UI listen address")
	fs.BoolVar(&f.noWeb, "no-web", false, "disable the web UI")
	fs.BoolVar(&f.noMetrics, "no-metrics", false, "do not serve /metrics")
	fs.BoolVar(&f.noTUI, "no-tui", false, "disable the terminal UI")
	fs.StringVar(&f.logFile, "log", d.Log.File, "log file path")
	fs.StringVar(&f.logLevel, "log-level", string(d.Log.Level), "log level: debug, info, warn, error")

	return f
}

// Apply copies every flag that was set on the command line into cfg.
func (f *Flags) Apply(cfg *Config) {
	f.fs.Visit(func(fl *flag.Flag) {
		switch fl.Name {
		case "rate":
			cfg.Audio.SampleRate = f.sampleRate
		case "buffer":
			cfg.Audio.BufferSize = f.bufferSize
		case "gain":
			cfg.Audio.MasterGain = f.masterGain
		case "demo":
			cfg.Demo.Start = Demo(f.start)
		case "profile":
			cfg.Demo.Profile = f.profile
		case "source":
			cfg.Demo.Source = f.source
		case "freq":
			cfg.Demo.Frequency = f.frequency
		case "phase":
			cfg.Demo.Phase = f.phase
		case "latency":
			cfg.Demo.Latency = f.latency
		case "fft":
			cfg.Analyser.FFTSize = f.fftSize
		case "addr":
			cfg.Web.ListenAddr = f.webAddr
		case "no-web":
			cfg.Web.Enabled = !f.noWeb
		case "no-metrics":
			cfg.Web.Metrics = !f.noMetrics
		case "no-tui":
			cfg.TUI.Enabled = !f.noTUI
		case "log":
			cfg.Log.File = f.logFile
		case "log-level":
			cfg.Log.Level = LogLevel(f.logLevel)
		}
	})
}

// Resolve loads the file named by -config, or [Default] when none was
// given, applies the flag overrides and validates the result.
func (f *Flags) Resolve() (*Config, error) {
	cfg := Default()

	if f.ConfigPath != "" {
		var err error

		cfg, err = Load(f.ConfigPath)
		if err != nil {
			return nil, err
		}
	}

	f.Apply(cfg)

	if err := Validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}
