package graph

// Tx batches topology changes for [Graph.Apply].
type Tx struct {
	isolate    []NodeID
	disconnect []Edge
	connect    []Edge
}

// Disconnect removes the edge from→to. Disconnecting an edge that does not
// exist is a no-op.
func (tx *Tx) Disconnect(from, to NodeID) *Tx {
	tx.disconnect = append(tx.disconnect, Edge{From: from, To: to})

	return tx
}

// DisconnectAll removes every outgoing edge of id.
func (tx *Tx) DisconnectAll(id NodeID) *Tx {
	tx.isolate = append(tx.isolate, id)

	return tx
}

// Connect adds the edge from→to.
func (tx *Tx) Connect(from, to NodeID) *Tx {
	tx.connect = append(tx.connect, Edge{From: from, To: to})

	return tx
}

// Chain connects ids in series: ids[0]→ids[1]→…
func (tx *Tx) Chain(ids ...NodeID) *Tx {
	for i := 1; i < len(ids); i++ {
		tx.Connect(ids[i-1], ids[i])
	}

	return tx
}

// Empty reports whether the transaction carries no changes.
func (tx *Tx) Empty() bool {
	return len(tx.isolate) == 0 && len(tx.disconnect) == 0 && len(tx.connect) == 0
}

// Connects returns the edges the transaction will add.
func (tx *Tx) Connects() []Edge {
	return append([]Edge(nil), tx.connect...)
}
