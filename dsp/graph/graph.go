package graph

import (
	"errors"
	"fmt"
	"slices"
)

var (
	// ErrUnknownNode is returned when an edge references a node that is not
	// part of the graph.
	ErrUnknownNode = errors.New("graph: unknown node")
	// ErrDuplicateNode is returned when adding a node ID twice.
	ErrDuplicateNode = errors.New("graph: duplicate node")
	// ErrDuplicateEdge is returned when a transaction connects an edge that
	// already exists.
	ErrDuplicateEdge = errors.New("graph: duplicate edge")
	// ErrSelfLoop is returned when a node is connected to itself.
	ErrSelfLoop = errors.New("graph: self loop")
	// ErrCycle is returned when a transaction would introduce a cycle.
	ErrCycle = errors.New("graph: contains cycle")
)

// NodeID identifies a node. IDs are assigned by the caller.
type NodeID uint64

// Edge is a directed connection from one node's output to another node's
// input. Multiple edges into the same node are summed by the renderer.
type Edge struct {
	From NodeID
	To   NodeID
}

// String formats the edge as "from->to".
func (e Edge) String() string {
	return fmt.Sprintf("%d->%d", e.From, e.To)
}

// Graph is a directed acyclic graph of nodes. It is not safe for
// concurrent use; the renderer guards it with its own lock.
type Graph struct {
	outgoing map[NodeID][]NodeID
	incoming map[NodeID][]NodeID
	order    []NodeID
}

// New returns an empty graph.
func New() *Graph {
	return &Graph{
		outgoing: map[NodeID][]NodeID{},
		incoming: map[NodeID][]NodeID{},
	}
}

// AddNode registers an unconnected node.
func (g *Graph) AddNode(id NodeID) error {
	if g.Has(id) {
		return fmt.Errorf("%w: %d", ErrDuplicateNode, id)
	}

	g.outgoing[id] = nil
	g.incoming[id] = nil
	g.order = append(g.order, id)

	return nil
}

// RemoveNode drops a node and every edge touching it. Removing an unknown
// node is a no-op.
func (g *Graph) RemoveNode(id NodeID) {
	if !g.Has(id) {
		return
	}

	for _, to := range g.outgoing[id] {
		g.incoming[to] = without(g.incoming[to], id)
	}

	for _, from := range g.incoming[id] {
		g.outgoing[from] = without(g.outgoing[from], id)
	}

	delete(g.outgoing, id)
	delete(g.incoming, id)
	g.order = without(g.order, id)
}

// Has reports whether id is part of the graph.
func (g *Graph) Has(id NodeID) bool {
	_, ok := g.outgoing[id]

	return ok
}

// Len returns the number of nodes.
func (g *Graph) Len() int {
	return len(g.outgoing)
}

// Connected reports whether the edge from→to exists.
func (g *Graph) Connected(from, to NodeID) bool {
	return slices.Contains(g.outgoing[from], to)
}

// Inputs returns the nodes feeding id, in connection order.
func (g *Graph) Inputs(id NodeID) []NodeID {
	return slices.Clone(g.incoming[id])
}

// EachInput calls fn for every node feeding id without allocating.
func (g *Graph) EachInput(id NodeID, fn func(NodeID)) {
	for _, from := range g.incoming[id] {
		fn(from)
	}
}

// Outputs returns the nodes id feeds, in connection order.
func (g *Graph) Outputs(id NodeID) []NodeID {
	return slices.Clone(g.outgoing[id])
}

// Edges returns all edges sorted by (From, To).
func (g *Graph) Edges() []Edge {
	var edges []Edge

	for from, tos := range g.outgoing {
		for _, to := range tos {
			edges = append(edges, Edge{From: from, To: to})
		}
	}

	slices.SortFunc(edges, func(a, b Edge) int {
		if a.From != b.From {
			return cmpID(a.From, b.From)
		}

		return cmpID(a.To, b.To)
	})

	return edges
}

// Order returns the nodes in topological order: every node appears after
// all nodes feeding it. The slice is shared; callers must not modify it.
func (g *Graph) Order() []NodeID {
	return g.order
}

// Apply commits tx. All disconnects are applied before any connect. On error
// the graph is left unchanged.
func (g *Graph) Apply(tx *Tx) error {
	if tx == nil || tx.Empty() {
		return nil
	}

	next := g.clone()

	for _, id := range tx.isolate {
		if !next.Has(id) {
			return fmt.Errorf("disconnect %d: %w", id, ErrUnknownNode)
		}

		for _, to := range next.outgoing[id] {
			next.incoming[to] = without(next.incoming[to], id)
		}

		next.outgoing[id] = nil
	}

	for _, e := range tx.disconnect {
		if !next.Has(e.From) || !next.Has(e.To) {
			return fmt.Errorf("disconnect %s: %w", e, ErrUnknownNode)
		}

		next.outgoing[e.From] = without(next.outgoing[e.From], e.To)
		next.incoming[e.To] = without(next.incoming[e.To], e.From)
	}

	for _, e := range tx.connect {
		if !next.Has(e.From) || !next.Has(e.To) {
			return fmt.Errorf("connect %s: %w", e, ErrUnknownNode)
		}

		if e.From == e.To {
			return fmt.Errorf("connect %s: %w", e, ErrSelfLoop)
		}

		if next.Connected(e.From, e.To) {
			return fmt.Errorf("connect %s: %w", e, ErrDuplicateEdge)
		}

		next.outgoing[e.From] = append(next.outgoing[e.From], e.To)
		next.incoming[e.To] = append(next.incoming[e.To], e.From)
	}

	order, err := next.sort()
	if err != nil {
		return err
	}

	g.outgoing = next.outgoing
	g.incoming = next.incoming
	g.order = order

	return nil
}

// sort orders the nodes with Kahn's algorithm. Ties are broken by the
// previous order so unrelated nodes keep a stable position.
func (g *Graph) sort() ([]NodeID, error) {
	indegree := make(map[NodeID]int, len(g.incoming))
	for id, in := range g.incoming {
		indegree[id] = len(in)
	}

	queue := make([]NodeID, 0, len(g.order))
	for _, id := range g.order {
		if indegree[id] == 0 {
			queue = append(queue, id)
		}
	}

	order := make([]NodeID, 0, len(g.order))
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]

		order = append(order, id)
		for _, to := range g.outgoing[id] {
			indegree[to]--
			if indegree[to] == 0 {
				queue = append(queue, to)
			}
		}
	}

	if len(order) != len(g.order) {
		return nil, ErrCycle
	}

	return order, nil
}

func (g *Graph) clone() *Graph {
	c := &Graph{
		outgoing: make(map[NodeID][]NodeID, len(g.outgoing)),
		incoming: make(map[NodeID][]NodeID, len(g.incoming)),
		order:    slices.Clone(g.order),
	}

	for id, tos := range g.outgoing {
		c.outgoing[id] = slices.Clone(tos)
	}

	for id, froms := range g.incoming {
		c.incoming[id] = slices.Clone(froms)
	}

	return c
}

func without(ids []NodeID, id NodeID) []NodeID {
	return slices.DeleteFunc(ids, func(x NodeID) bool { return x == id })
}

func cmpID(a, b NodeID) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
