// Package lab is the signal-graph engine behind the weighting and active
// noise cancellation demonstrations.
//
// An [Engine] owns one [Renderer] and switches between two demos. The
// weighting demo feeds a noise or tone source through a biquad cascade that
// approximates the A, B or C weighting curve. The ANC demo sums a noise
// source with a delayed, inverted copy of itself; the phase error and an
// optional latency are modelled as extra delay on the inverted path.
//
// The engine never blocks on the render clock: every control call is a
// topology transaction or a time-stamped parameter ramp.
package lab
