// Command acoustics-lab plays the frequency-weighting and active noise
// cancellation demos on the default audio device. It is controlled from a
// terminal UI and, optionally, a browser page.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"
	"golang.org/x/term"

	"github.com/cwbudde/acoustics-lab/internal/config"
	"github.com/cwbudde/acoustics-lab/internal/lab"
	"github.com/cwbudde/acoustics-lab/internal/observe/prom"
	"github.com/cwbudde/acoustics-lab/internal/web"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "acoustics-lab:", err)
		os.Exit(1)
	}
}

func run() error {
	flags := config.RegisterFlags(flag.CommandLine)
	flag.Parse()

	cfg, err := flags.Resolve()
	if err != nil {
		return err
	}

	headless := cfg.TUI.Enabled && !term.IsTerminal(int(os.Stdout.Fd()))
	if headless {
		cfg.TUI.Enabled = false
	}

	logger, closeLog, err := newLogger(cfg.Log, cfg.TUI.Enabled)
	if err != nil {
		return err
	}
	defer closeLog()

	slog.SetDefault(logger)
	logger.Info("acoustics-lab starting", "args", os.Args[1:], "sampleRate", cfg.Audio.SampleRate)

	if headless {
		logger.Warn("stdout is not a terminal, terminal UI disabled")
	}

	provider, err := prom.InitProvider(prom.ProviderConfig{})
	if err != nil {
		return fmt.Errorf("metrics: %w", err)
	}

	defer func() {
		if err := provider.Shutdown(context.Background()); err != nil {
			logger.Warn("metrics shutdown", "error", err)
		}
	}()

	engine := lab.NewEngine(deviceFactory(cfg.Audio),
		lab.WithFFTSize(cfg.Analyser.FFTSize),
		lab.WithSmoothing(cfg.Analyser.WeightingSmoothing, cfg.Analyser.ANCSmoothing),
		lab.WithMasterGain(cfg.Audio.MasterGain),
		lab.WithLogger(logger),
	)

	if err := engine.Init(); err != nil {
		return err
	}

	defer func() {
		if err := engine.Close(); err != nil {
			logger.Warn("engine close", "error", err)
		}
	}()

	if err := applyDemo(engine, cfg.Demo); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)

	if cfg.Web.Enabled {
		opts := []web.Option{web.WithRefresh(cfg.Analyser.Refresh), web.WithLogger(logger)}
		if cfg.Web.Metrics {
			opts = append(opts, web.WithMetricsHandler(provider.Handler()))
		}

		srv, err := web.NewServer(engine, opts...)
		if err != nil {
			return err
		}

		g.Go(func() error {
			return srv.ListenAndServe(ctx, cfg.Web.ListenAddr)
		})
	}

	if cfg.TUI.Enabled {
		g.Go(func() error {
			return runTUI(ctx, engine, cfg.Analyser.Refresh)
		})
	} else {
		logger.Info("running without terminal UI, press Ctrl+C to stop")
		g.Go(func() error {
			<-ctx.Done()
			return nil
		})
	}

	err = g.Wait()
	logger.Info("acoustics-lab stopped", "error", err)

	if errors.Is(err, errQuit) {
		return nil
	}

	return err
}

// applyDemo sets the configured initial state and starts the configured
// demo.
func applyDemo(e *lab.Engine, d config.DemoConfig) error {
	kind, err := lab.ParseSourceKind(d.Source)
	if err != nil {
		return err
	}

	profile, err := lab.ParseProfile(d.Profile)
	if err != nil {
		return err
	}

	steps := []error{
		e.SetSourceKind(kind),
		e.SetFrequency(d.Frequency),
		e.SetPhase(d.Phase),
		e.SetLatency(d.Latency),
	}

	if profile != lab.ProfileFlat || d.Start == config.DemoWeighting {
		_, err := e.SetWeighting(profile)
		steps = append(steps, err)
	}

	switch d.Start {
	case config.DemoWeighting:
		steps = append(steps, e.StartWeightingDemo())
	case config.DemoANC:
		steps = append(steps, e.StartANCDemo())
	}

	return errors.Join(steps...)
}

// newLogger writes to cfg.File when the terminal is taken by the TUI, and
// to stderr otherwise.
func newLogger(cfg config.LogConfig, toFile bool) (*slog.Logger, func(), error) {
	opts := &slog.HandlerOptions{Level: cfg.Level.Level()}

	if !toFile {
		return slog.New(slog.NewTextHandler(os.Stderr, opts)), func() {}, nil
	}

	file, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}

	return slog.New(slog.NewTextHandler(file, opts)), func() { _ = file.Close() }, nil
}
