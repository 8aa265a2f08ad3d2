// Package render is a small software audio renderer with a browser-style
// node graph.
//
// A [Context] owns a sample clock, a [graph.Graph] of nodes and their
// automatable [Param]s. Nodes are gain, delay, biquad filter, looping buffer
// source, sine oscillator and analyser; every node input sums all of its
// incoming edges. [Context.Render] pulls mono float32 frames in quanta of
// 128 samples, evaluating param automation per sample (gain, delay,
// oscillator frequency) or per quantum (biquad parameters).
//
// Control calls (node creation, topology transactions, param scheduling,
// analyser reads) may run concurrently with Render. They share one mutex
// that Render holds for a single quantum at a time.
package render
