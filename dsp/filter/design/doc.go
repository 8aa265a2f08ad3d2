// Package design provides RBJ cookbook biquad designers for the filter
// kinds the renderer's biquad-filter node supports: highpass, lowpass,
// peaking and high-shelf.
//
// Designers return [biquad.Coefficients] normalized so that a0 = 1. Parameters
// that cannot be realized at the given sample rate (cutoff at or above
// Nyquist, non-positive cutoff) yield a zero value from the individual
// designers and an error from [Design].
package design
