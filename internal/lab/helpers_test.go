package lab

import (
	"testing"

	"github.com/cwbudde/acoustics-lab/dsp/graph"
	"github.com/cwbudde/acoustics-lab/dsp/render"
	"github.com/cwbudde/acoustics-lab/internal/testutil"
)

const testRate = 48000.0

// baseNodes is the node count after Init: destination, master, weighting
// input and output, and four analysers.
const baseNodes = 8

func newTestEngine(t *testing.T, opts ...Option) (*Engine, *render.Context) {
	t.Helper()

	ctx, err := render.NewContext(testRate)
	if err != nil {
		t.Fatalf("NewContext: %v", err)
	}

	factory := func() (Renderer, error) { return NewSoftware(ctx), nil }
	opts = append([]Option{WithNoiseSource(testutil.SeededWhite(1))}, opts...)

	e := NewEngine(factory, opts...)
	if err := e.Init(); err != nil {
		t.Fatalf("Init: %v", err)
	}

	t.Cleanup(func() { _ = e.Close() })

	return e, ctx
}

func hasNode(ctx *render.Context, id graph.NodeID) bool {
	for _, edge := range ctx.Edges() {
		if edge.From == id || edge.To == id {
			return true
		}
	}

	return false
}

// chainFrom follows single outgoing edges from id until it reaches stop and
// returns the nodes strictly between them.
func chainFrom(t *testing.T, ctx *render.Context, from, stop graph.NodeID) []graph.NodeID {
	t.Helper()

	next := map[graph.NodeID][]graph.NodeID{}
	for _, e := range ctx.Edges() {
		next[e.From] = append(next[e.From], e.To)
	}

	var between []graph.NodeID

	cur := from
	for steps := 0; ; steps++ {
		outs := next[cur]
		if len(outs) != 1 {
			t.Fatalf("node %d has %d outputs, want 1", cur, len(outs))
		}

		cur = outs[0]
		if cur == stop {
			return between
		}

		between = append(between, cur)

		if steps > 32 {
			t.Fatal("chain does not terminate")
		}
	}
}

func renderSeconds(ctx *render.Context, seconds float64) []float64 {
	out := make([]float32, int(seconds*ctx.SampleRate()))
	ctx.Render(out)

	return testutil.Float64s(out)
}
