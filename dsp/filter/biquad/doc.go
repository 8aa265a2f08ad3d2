// Package biquad provides the second-order IIR section used by the
// renderer's biquad-filter node.
//
// A [Section] runs Direct Form II Transposed processing for one set of
// [Coefficients]. Coefficients can be swapped while the section keeps its
// delay-line state, which is how live parameter changes stay click-free.
// Coefficient design lives in dsp/filter/design.
package biquad
