package lab

import (
	"fmt"
	"math"
	"time"

	"github.com/cwbudde/acoustics-lab/dsp/graph"
)

const (
	// PerfectPhase is the phase at which the anti-noise path cancels
	// exactly.
	PerfectPhase = 180.0
	// MaxPhaseErrorDelay is the extra delay at 180° of phase error.
	MaxPhaseErrorDelay = 2 * time.Millisecond
	// LatencyDelay is added when latency simulation is on.
	LatencyDelay = 50 * time.Millisecond

	// ancMaxDelay bounds the anti-noise delay node in seconds.
	ancMaxDelay = 0.1
)

// ANCState is the user-facing configuration of the ANC demo.
type ANCState struct {
	PhaseDegrees   float64
	LatencyEnabled bool
	ANCEnabled     bool
	Running        bool
}

// Delay returns the anti-noise path delay implied by the state.
func (s ANCState) Delay() time.Duration {
	return DelayFor(s.PhaseDegrees, s.LatencyEnabled)
}

// InversionGain returns the gain the inverted path ramps towards.
func (s ANCState) InversionGain() float64 {
	if s.ANCEnabled {
		return -1
	}

	return 0
}

// DelayFor maps a phase setting to the anti-noise delay. The error from
// 180° scales linearly up to 2 ms at 0° or 360°; latency adds 50 ms.
func DelayFor(phaseDegrees float64, latency bool) time.Duration {
	return time.Duration(math.Round(delaySeconds(phaseDegrees, latency) * float64(time.Second)))
}

func delaySeconds(phaseDegrees float64, latency bool) float64 {
	phaseError := math.Abs(PerfectPhase - phaseDegrees)
	d := phaseError / 180 * MaxPhaseErrorDelay.Seconds()

	if latency {
		d += LatencyDelay.Seconds()
	}

	return d
}

// ancPath is the ANC demo topology:
//
//	source → direct → sourceTap ──────────────┐
//	source → delay → inverter → antiTap → resultTap → master
//
// The taps double as summing junctions and persist across runs; the other
// nodes are created per run.
type ancPath struct {
	sourceTap AnalyserNode
	antiTap   AnalyserNode
	resultTap AnalyserNode

	state ANCState

	source   SourceNode
	direct   GainNode
	delay    DelayNode
	inverter GainNode
}

func (a *ancPath) perRun() []Node {
	return []Node{a.source, a.direct, a.delay, a.inverter}
}

func (a *ancPath) handle(master Node) GraphHandle {
	if !a.state.Running {
		return GraphHandle{}
	}

	edges := []graph.Edge{
		{From: a.source.ID(), To: a.direct.ID()},
		{From: a.direct.ID(), To: a.sourceTap.ID()},
		{From: a.sourceTap.ID(), To: a.resultTap.ID()},
		{From: a.source.ID(), To: a.delay.ID()},
		{From: a.delay.ID(), To: a.inverter.ID()},
		{From: a.inverter.ID(), To: a.antiTap.ID()},
		{From: a.antiTap.ID(), To: a.resultTap.ID()},
		{From: a.resultTap.ID(), To: master.ID()},
	}

	nodes := []graph.NodeID{
		a.source.ID(), a.direct.ID(), a.delay.ID(), a.inverter.ID(),
		a.sourceTap.ID(), a.antiTap.ID(), a.resultTap.ID(),
	}

	return GraphHandle{Nodes: nodes, Edges: edges}
}

// StartANCDemo builds and starts the two-path ANC graph. Any running demo
// is stopped first. Cancellation starts disabled; the stored phase and
// latency settings determine the initial delay.
func (e *Engine) StartANCDemo() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.ready(); err != nil {
		return err
	}

	e.stopWeightingSource()
	e.teardownANC()

	if err := e.buildANC(); err != nil {
		return err
	}

	e.setMode(ModeANC)

	return nil
}

// StopANCDemo disconnects the ANC path and releases its per-run nodes.
// Stopping a stopped demo is a no-op.
func (e *Engine) StopANCDemo() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.ready(); err != nil {
		return err
	}

	e.teardownANC()

	return nil
}

// ToggleANC ramps the inverted path gain to -1 (on) or 0 (off) over
// RampWindow. The topology is not touched. Without a running ANC demo the
// call is a no-op; every run starts with cancellation off.
func (e *Engine) ToggleANC(enabled bool) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.ready(); err != nil {
		return err
	}

	a := &e.anc
	if !a.state.Running {
		e.log.Debug("anc toggle ignored, demo not running", "enabled", enabled)
		return nil
	}

	a.state.ANCEnabled = enabled
	scheduleRamp(e.r, a.inverter.Gain(), a.state.InversionGain(), RampWindow)

	e.log.Debug("anc toggled", "enabled", enabled)

	return nil
}

// SetPhase sets the anti-noise phase in degrees, [0, 360]. While running,
// the delay ramps to the new value over RampWindow.
func (e *Engine) SetPhase(degrees float64) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.ready(); err != nil {
		return err
	}

	if !(degrees >= 0 && degrees <= 360) {
		return fmt.Errorf("%w: %g", ErrPhaseOutOfRange, degrees)
	}

	e.anc.state.PhaseDegrees = degrees
	e.retuneDelay()

	return nil
}

// SetLatency toggles the simulated processing latency. While running, the
// delay ramps to the new value over RampWindow.
func (e *Engine) SetLatency(enabled bool) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.ready(); err != nil {
		return err
	}

	e.anc.state.LatencyEnabled = enabled
	e.retuneDelay()

	return nil
}

func (e *Engine) retuneDelay() {
	a := &e.anc
	if !a.state.Running {
		return
	}

	d := delaySeconds(a.state.PhaseDegrees, a.state.LatencyEnabled)
	scheduleRamp(e.r, a.delay.DelayTime(), d, RampWindow)

	e.log.Debug("anc delay retuned", "phase", a.state.PhaseDegrees,
		"latency", a.state.LatencyEnabled, "delay", DelayFor(a.state.PhaseDegrees, a.state.LatencyEnabled))
}

func (e *Engine) buildANC() error {
	a := &e.anc

	var created []Node

	fail := func(what string, err error) error {
		e.r.Release(created...)
		return fmt.Errorf("anc %s: %w", what, err)
	}

	source, err := e.r.NewBufferSource(e.pink, true)
	if err != nil {
		return fail("source", err)
	}

	created = append(created, source)

	direct, err := e.r.NewGain(1)
	if err != nil {
		return fail("direct gain", err)
	}

	created = append(created, direct)

	delay, err := e.r.NewDelay(ancMaxDelay)
	if err != nil {
		return fail("delay", err)
	}

	created = append(created, delay)

	inverter, err := e.r.NewGain(0)
	if err != nil {
		return fail("inversion gain", err)
	}

	created = append(created, inverter)

	now := e.r.CurrentTime()
	delay.DelayTime().SetValueAtTime(delaySeconds(a.state.PhaseDegrees, a.state.LatencyEnabled), now)

	tx := new(graph.Tx).
		Chain(source.ID(), direct.ID(), a.sourceTap.ID(), a.resultTap.ID()).
		Chain(source.ID(), delay.ID(), inverter.ID(), a.antiTap.ID(), a.resultTap.ID()).
		Connect(a.resultTap.ID(), e.master.ID())

	if err := e.r.Apply(tx); err != nil {
		return fail("connect", err)
	}

	if err := source.Start(); err != nil {
		e.disconnectANCTaps()
		return fail("start", err)
	}

	a.source, a.direct, a.delay, a.inverter = source, direct, delay, inverter
	a.state.ANCEnabled = false
	a.state.Running = true

	return nil
}

// teardownANC stops the ANC source, disconnects every path node and
// releases the per-run nodes. It is a no-op when the demo is not running.
func (e *Engine) teardownANC() {
	a := &e.anc
	if !a.state.Running {
		return
	}

	a.source.Stop()
	e.disconnectANCTaps()
	e.r.Release(a.perRun()...)

	a.source, a.direct, a.delay, a.inverter = nil, nil, nil, nil
	a.state.ANCEnabled = false
	a.state.Running = false

	e.log.Debug("anc path torn down")
}

func (e *Engine) disconnectANCTaps() {
	a := &e.anc

	tx := new(graph.Tx).
		DisconnectAll(a.sourceTap.ID()).
		DisconnectAll(a.antiTap.ID()).
		DisconnectAll(a.resultTap.ID())

	if err := e.r.Apply(tx); err != nil {
		e.log.Warn("disconnect anc taps", "error", err)
	}
}
