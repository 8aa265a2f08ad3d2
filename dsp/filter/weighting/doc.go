// Package weighting provides the IEC 61672 A, B, C and Z frequency weighting
// curves as analytic reference magnitudes.
//
// The lab's weighting demo plays coarse biquad approximations of these
// curves; this package supplies the standard curves they are compared
// against. All curves are normalized to 0 dB at 1 kHz.
package weighting
