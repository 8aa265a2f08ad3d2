// Package graph models an audio signal graph as an explicit directed graph
// of node IDs.
//
// Topology changes are batched into a [Tx]. [Graph.Apply] performs every
// disconnect of the transaction before any connect, validates the result
// (known nodes, no duplicate fan-in edge, no cycle) and commits it as a
// whole, so a reader never observes a half-rewired graph.
package graph
