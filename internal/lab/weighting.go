package lab

import (
	"fmt"

	"github.com/cwbudde/acoustics-lab/dsp/graph"
)

// GraphHandle is a snapshot of the nodes and edges a demo has connected.
type GraphHandle struct {
	Nodes []graph.NodeID
	Edges []graph.Edge
}

// weightingChain is the weighting demo topology:
//
//	source → input → stages… → output → tap → master
type weightingChain struct {
	input  GainNode
	output GainNode
	tap    AnalyserNode

	profile Profile
	stages  []FilterNode

	source SourceNode
	osc    OscillatorNode
}

func (w *weightingChain) ids() []graph.NodeID {
	ids := make([]graph.NodeID, 0, len(w.stages)+2)
	ids = append(ids, w.input.ID())

	for _, s := range w.stages {
		ids = append(ids, s.ID())
	}

	return append(ids, w.output.ID())
}

func (w *weightingChain) handle() GraphHandle {
	ids := w.ids()
	edges := make([]graph.Edge, 0, len(ids))

	for i := 1; i < len(ids); i++ {
		edges = append(edges, graph.Edge{From: ids[i-1], To: ids[i]})
	}

	return GraphHandle{Nodes: ids, Edges: edges}
}

// SetWeighting rebuilds the filter cascade between the chain input and
// output. The old stages are disconnected and the new ones connected in one
// transaction; the old stage nodes are then released. A running ANC demo is
// torn down first.
func (e *Engine) SetWeighting(p Profile) (GraphHandle, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.ready(); err != nil {
		return GraphHandle{}, err
	}

	if !p.Valid() {
		return GraphHandle{}, fmt.Errorf("%w: %d", ErrUnknownProfile, int(p))
	}

	if e.mode == ModeANC {
		e.teardownANC()
	}

	if err := e.applyProfile(p); err != nil {
		return GraphHandle{}, err
	}

	if e.mode != ModeWeighting {
		e.setMode(ModeWeighting)
	}

	return e.weighting.handle(), nil
}

// applyProfile swaps the cascade. On error the previous cascade stays
// connected.
func (e *Engine) applyProfile(p Profile) error {
	w := &e.weighting

	specs := p.Stages()
	stages := make([]FilterNode, 0, len(specs))

	for _, spec := range specs {
		n, err := e.r.NewBiquad(spec)
		if err != nil {
			e.r.Release(asNodes(stages)...)
			return fmt.Errorf("profile %s: stage %s: %w", p, spec, err)
		}

		stages = append(stages, n)
	}

	tx := new(graph.Tx).DisconnectAll(w.input.ID())
	for _, old := range w.stages {
		tx.DisconnectAll(old.ID())
	}

	ids := make([]graph.NodeID, 0, len(stages)+2)
	ids = append(ids, w.input.ID())

	for _, s := range stages {
		ids = append(ids, s.ID())
	}

	tx.Chain(append(ids, w.output.ID())...)

	if err := e.r.Apply(tx); err != nil {
		e.r.Release(asNodes(stages)...)
		return fmt.Errorf("profile %s: %w", p, err)
	}

	e.r.Release(asNodes(w.stages)...)

	w.stages = stages
	w.profile = p

	e.log.Debug("weighting applied", "profile", p, "stages", len(stages))

	return nil
}

// WeightingStages returns the specs of the connected filter stages, input
// side first.
func (e *Engine) WeightingStages() []StageSpec {
	e.mu.Lock()
	defer e.mu.Unlock()

	out := make([]StageSpec, len(e.weighting.stages))
	for i, s := range e.weighting.stages {
		out[i] = s.Stage()
	}

	return out
}

// StartWeightingDemo starts a source of the selected kind feeding the
// weighting chain. A running ANC demo or weighting source is stopped first.
func (e *Engine) StartWeightingDemo() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.ready(); err != nil {
		return err
	}

	if e.mode == ModeANC {
		e.teardownANC()
	}

	e.stopWeightingSource()

	if err := e.startWeightingSource(); err != nil {
		return err
	}

	e.setMode(ModeWeighting)

	return nil
}

// StopWeightingDemo stops the weighting source. The chain and profile are
// kept. Stopping a stopped demo is a no-op.
func (e *Engine) StopWeightingDemo() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.ready(); err != nil {
		return err
	}

	e.stopWeightingSource()

	return nil
}

func asNodes[T Node](ns []T) []Node {
	out := make([]Node, len(ns))
	for i, n := range ns {
		out[i] = n
	}

	return out
}
