package render

import (
	"errors"
	"fmt"
	"sync"

	"github.com/cwbudde/acoustics-lab/dsp/graph"
)

var (
	// ErrClosed is returned by operations on a closed context.
	ErrClosed = errors.New("render: context closed")
	// ErrInvalidSampleRate is returned for non-positive sample rates.
	ErrInvalidSampleRate = errors.New("render: sample rate must be > 0")
	// ErrAlreadyStarted is returned when a source node is started after it
	// was started or stopped.
	ErrAlreadyStarted = errors.New("render: source can only be started once")
	// ErrForeignNode is returned for nodes created by another context.
	ErrForeignNode = errors.New("render: node belongs to another context")
)

// Node is a vertex in the render graph.
type Node interface {
	ID() graph.NodeID
}

// processor is implemented by every node kind. in holds the summed inputs
// for the block; out receives the node output.
type processor interface {
	Node
	process(c *Context, in, out []float64)
}

type base struct {
	id graph.NodeID
}

// ID returns the graph identifier of the node.
func (b base) ID() graph.NodeID {
	return b.id
}

// Context renders a node graph one quantum at a time.
type Context struct {
	mu sync.Mutex

	cfg        config
	sampleRate float64
	frame      int64
	closed     bool

	g       *graph.Graph
	nodes   map[graph.NodeID]processor
	outputs map[graph.NodeID][]float64
	nextID  graph.NodeID
	dest    *Destination

	mix      []float64
	block    []float32
	blockPos int
}

// NewContext creates a context rendering at sampleRate frames per second.
func NewContext(sampleRate float64, opts ...Option) (*Context, error) {
	if !(sampleRate > 0) {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSampleRate, sampleRate)
	}

	cfg := applyOptions(opts)
	c := &Context{
		cfg:        cfg,
		sampleRate: sampleRate,
		g:          graph.New(),
		nodes:      map[graph.NodeID]processor{},
		outputs:    map[graph.NodeID][]float64{},
		mix:        make([]float64, cfg.quantum),
		block:      make([]float32, cfg.quantum),
		blockPos:   cfg.quantum,
	}

	dest := &Destination{}
	if err := c.register(func(id graph.NodeID) processor {
		dest.id = id
		return dest
	}); err != nil {
		return nil, err
	}

	c.dest = dest

	return c, nil
}

// SampleRate returns the render rate in Hz.
func (c *Context) SampleRate() float64 {
	return c.sampleRate
}

// Quantum returns the block size in frames.
func (c *Context) Quantum() int {
	return c.cfg.quantum
}

// CurrentTime returns the clock in seconds: the time of the next frame to
// be rendered.
func (c *Context) CurrentTime() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.now()
}

// Frame returns the number of frames rendered so far.
func (c *Context) Frame() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.frame
}

// Destination returns the output node. Its summed input is what Render
// produces.
func (c *Context) Destination() *Destination {
	return c.dest
}

// Apply commits a topology transaction atomically with respect to Render.
func (c *Context) Apply(tx *graph.Tx) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return ErrClosed
	}

	return c.g.Apply(tx)
}

// Connected reports whether the edge from→to exists.
func (c *Context) Connected(from, to Node) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.g.Connected(from.ID(), to.ID())
}

// Inputs returns the IDs of the nodes feeding n.
func (c *Context) Inputs(n Node) []graph.NodeID {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.g.Inputs(n.ID())
}

// Edges returns every edge in the graph.
func (c *Context) Edges() []graph.Edge {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.g.Edges()
}

// NodeCount returns the number of live nodes including the destination.
func (c *Context) NodeCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.g.Len()
}

// Release disconnects and forgets nodes. Releasing the destination or an
// already released node is a no-op.
func (c *Context) Release(nodes ...Node) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, n := range nodes {
		if n == nil || n.ID() == c.dest.id {
			continue
		}

		id := n.ID()
		if p, ok := c.nodes[id]; !ok || p != n {
			continue
		}

		c.g.RemoveNode(id)
		delete(c.nodes, id)
		delete(c.outputs, id)
	}
}

// Close stops rendering. Render yields silence afterwards.
func (c *Context) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.closed = true

	return nil
}

// Render fills dst with the next frames of the destination mix, clipped to
// [-1, 1]. Render is meant for a single consumer goroutine.
func (c *Context) Render(dst []float32) {
	for len(dst) > 0 {
		if c.blockPos >= len(c.block) {
			c.renderQuantum()
			c.blockPos = 0
		}

		n := copy(dst, c.block[c.blockPos:])
		c.blockPos += n
		dst = dst[n:]
	}
}

// Advance renders and discards frames until the clock has moved forward by
// at least seconds.
func (c *Context) Advance(seconds float64) {
	frames := int(seconds*c.sampleRate + 0.5)
	buf := make([]float32, c.cfg.quantum)

	for frames > 0 {
		n := min(frames, len(buf))
		c.Render(buf[:n])
		frames -= n
	}
}

func (c *Context) renderQuantum() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		clear(c.block)
		c.frame += int64(len(c.block))

		return
	}

	for _, id := range c.g.Order() {
		p := c.nodes[id]
		out := c.outputs[id]

		clear(c.mix)

		c.g.EachInput(id, c.sumInto)

		p.process(c, c.mix, out)
	}

	for i, v := range c.outputs[c.dest.id] {
		c.block[i] = float32(max(-1, min(1, v)))
	}

	c.frame += int64(len(c.block))
}

func (c *Context) sumInto(from graph.NodeID) {
	for i, v := range c.outputs[from] {
		c.mix[i] += v
	}
}

// register allocates an ID and output buffer for a new node.
func (c *Context) register(build func(graph.NodeID) processor) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return ErrClosed
	}

	c.nextID++
	id := c.nextID

	p := build(id)
	if err := c.g.AddNode(id); err != nil {
		return err
	}

	c.nodes[id] = p
	c.outputs[id] = make([]float64, c.cfg.quantum)

	return nil
}

// now returns the clock in seconds. Caller holds mu.
func (c *Context) now() float64 {
	return float64(c.frame) / c.sampleRate
}

func (c *Context) step() float64 {
	return 1 / c.sampleRate
}

// Destination is the graph sink.
type Destination struct {
	base
}

func (d *Destination) process(_ *Context, in, out []float64) {
	copy(out, in)
}
