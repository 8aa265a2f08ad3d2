// Package interp provides the fractional-read kernels used by the delay
// line.
//
//   - [Linear2]:  2-point linear interpolation
//   - [Hermite4]: 4-point cubic Hermite, exact at integer positions
package interp
