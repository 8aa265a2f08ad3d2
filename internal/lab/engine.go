package lab

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/cwbudde/acoustics-lab/dsp/graph"
	"github.com/cwbudde/acoustics-lab/dsp/noise"
)

// Mode is the top-level engine state.
type Mode int

const (
	ModeUninitialized Mode = iota
	ModeIdle
	ModeWeighting
	ModeANC
	ModeClosed
)

func (m Mode) String() string {
	switch m {
	case ModeUninitialized:
		return "uninitialized"
	case ModeIdle:
		return "idle"
	case ModeWeighting:
		return "weighting"
	case ModeANC:
		return "anc"
	case ModeClosed:
		return "closed"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// Status is a snapshot of the engine's control state.
type Status struct {
	Mode       Mode
	Playing    bool
	Source     SourceKind
	Frequency  float64
	Profile    Profile
	Stages     []StageSpec
	ANC        ANCState
	MasterGain float64
	SampleRate float64
}

// Engine coordinates the weighting and ANC demos on one renderer. All
// methods are safe for concurrent use.
type Engine struct {
	mu sync.Mutex

	factory Factory
	opts    options
	log     *slog.Logger

	r    Renderer
	mode Mode

	pink       *noise.Buffer
	master     GainNode
	masterGain float64

	kind      SourceKind
	frequency float64
	playing   bool

	weighting weightingChain
	anc       ancPath
	taps      [4]*Tap
}

// NewEngine returns an uninitialized engine that creates its renderer with
// factory during Init.
func NewEngine(factory Factory, opts ...Option) *Engine {
	o := applyOptions(opts)

	return &Engine{
		factory:    factory,
		opts:       o,
		log:        o.logger,
		masterGain: o.masterGain,
		frequency:  DefaultFrequency,
		anc:        ancPath{state: ANCState{PhaseDegrees: PerfectPhase}},
		taps: [4]*Tap{
			newTap(TapWeighting),
			newTap(TapSource),
			newTap(TapAntiNoise),
			newTap(TapResult),
		},
	}
}

// Init creates the renderer, the pink-noise buffer, the master gain, the
// weighting junctions and all analyser taps, and connects the flat
// weighting chain. Calling Init again is a no-op. Any failure is reported
// as ErrInitFailed and leaves the engine uninitialized.
func (e *Engine) Init() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	switch e.mode {
	case ModeClosed:
		return ErrClosed
	case ModeUninitialized:
	default:
		return nil
	}

	if e.factory == nil {
		return fmt.Errorf("%w: no renderer factory", ErrInitFailed)
	}

	if !(e.masterGain >= 0 && e.masterGain <= 1) {
		return fmt.Errorf("%w: %w: %g", ErrInitFailed, ErrInvalidGain, e.masterGain)
	}

	r, err := e.factory()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInitFailed, err)
	}

	if err := e.build(r); err != nil {
		if cerr := r.Close(); cerr != nil {
			err = errors.Join(err, cerr)
		}

		return fmt.Errorf("%w: %w", ErrInitFailed, err)
	}

	e.r = r
	e.setMode(ModeIdle)
	e.log.Info("engine initialized", "sampleRate", r.SampleRate(), "fftSize", e.opts.fftSize)

	return nil
}

// build creates the persistent nodes on r. On error the engine fields are
// left untouched.
func (e *Engine) build(r Renderer) error {
	pink, err := noise.NewPinkBuffer(r.SampleRate(), e.opts.white)
	if err != nil {
		return fmt.Errorf("noise buffer: %w", err)
	}

	master, err := r.NewGain(e.masterGain)
	if err != nil {
		return fmt.Errorf("master gain: %w", err)
	}

	input, err := r.NewGain(1)
	if err != nil {
		return fmt.Errorf("weighting input: %w", err)
	}

	output, err := r.NewGain(1)
	if err != nil {
		return fmt.Errorf("weighting output: %w", err)
	}

	var analysers [4]AnalyserNode

	for i := range analysers {
		smoothing := e.opts.ancSmoothing
		if i == 0 {
			smoothing = e.opts.weightingSmoothing
		}

		analysers[i], err = r.NewAnalyser(e.opts.fftSize, smoothing)
		if err != nil {
			return fmt.Errorf("%s tap: %w", e.taps[i].name, err)
		}
	}

	tx := new(graph.Tx).
		Connect(master.ID(), r.Destination().ID()).
		Chain(input.ID(), output.ID(), analysers[0].ID(), master.ID())

	if err := r.Apply(tx); err != nil {
		return fmt.Errorf("connect weighting chain: %w", err)
	}

	e.pink = pink
	e.master = master
	e.weighting = weightingChain{input: input, output: output, tap: analysers[0], profile: ProfileFlat}
	e.anc.sourceTap, e.anc.antiTap, e.anc.resultTap = analysers[1], analysers[2], analysers[3]

	for i, t := range e.taps {
		t.attach(analysers[i])
	}

	return nil
}

// Close stops every demo, releases all nodes and closes the renderer. Later
// control calls return ErrClosed.
func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	switch e.mode {
	case ModeClosed:
		return nil
	case ModeUninitialized:
		e.setMode(ModeClosed)
		return nil
	}

	e.stopWeightingSource()
	e.teardownANC()

	for _, t := range e.taps {
		t.attach(nil)
	}

	w := &e.weighting
	nodes := append(asNodes(w.stages), w.input, w.output, w.tap, e.master,
		e.anc.sourceTap, e.anc.antiTap, e.anc.resultTap)
	e.r.Release(nodes...)

	err := e.r.Close()
	e.setMode(ModeClosed)

	return err
}

// StopAll stops whichever demo is running. The mode is kept.
func (e *Engine) StopAll() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.ready(); err != nil {
		return err
	}

	e.stopWeightingSource()
	e.teardownANC()

	return nil
}

// SetMasterGain ramps the output volume to g, [0, 1], over
// MasterRampWindow.
func (e *Engine) SetMasterGain(g float64) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.ready(); err != nil {
		return err
	}

	if !(g >= 0 && g <= 1) {
		return fmt.Errorf("%w: %g", ErrInvalidGain, g)
	}

	e.masterGain = g
	scheduleRamp(e.r, e.master.Gain(), g, MasterRampWindow)

	return nil
}

// MasterGain returns the most recently requested output volume.
func (e *Engine) MasterGain() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.masterGain
}

// Mode returns the current top-level state.
func (e *Engine) Mode() Mode {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.mode
}

// Playing reports whether the weighting demo has a live source.
func (e *Engine) Playing() bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.playing
}

// ANCState returns the ANC configuration.
func (e *Engine) ANCState() ANCState {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.anc.state
}

// SourceKind returns the selected weighting source.
func (e *Engine) SourceKind() SourceKind {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.kind
}

// Frequency returns the tone frequency in Hz.
func (e *Engine) Frequency() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.frequency
}

// Profile returns the active weighting profile.
func (e *Engine) Profile() Profile {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.weighting.profile
}

// Renderer returns the renderer created by Init, or nil.
func (e *Engine) Renderer() Renderer {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.r
}

// Graph returns the topology of the active demo.
func (e *Engine) Graph() GraphHandle {
	e.mu.Lock()
	defer e.mu.Unlock()

	switch e.mode {
	case ModeWeighting:
		return e.weighting.handle()
	case ModeANC:
		return e.anc.handle(e.master)
	default:
		return GraphHandle{}
	}
}

// Status returns a snapshot of the control state.
func (e *Engine) Status() Status {
	e.mu.Lock()
	defer e.mu.Unlock()

	s := Status{
		Mode:       e.mode,
		Playing:    e.playing,
		Source:     e.kind,
		Frequency:  e.frequency,
		Profile:    e.weighting.profile,
		ANC:        e.anc.state,
		MasterGain: e.masterGain,
	}

	for _, st := range e.weighting.stages {
		s.Stages = append(s.Stages, st.Stage())
	}

	if e.r != nil {
		s.SampleRate = e.r.SampleRate()
	}

	return s
}

// ready rejects control calls outside the initialized states. Caller holds
// mu.
func (e *Engine) ready() error {
	switch e.mode {
	case ModeUninitialized:
		return ErrNotInitialized
	case ModeClosed:
		return ErrClosed
	default:
		return nil
	}
}

func (e *Engine) setMode(m Mode) {
	if m == e.mode {
		return
	}

	e.log.Debug("mode transition", "from", e.mode, "to", m)
	e.opts.metrics.RecordTransition(context.Background(), e.mode.String(), m.String())
	e.mode = m
}

