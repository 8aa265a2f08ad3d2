// Package spectrum measures the level of single frequencies in rendered
// signals with the Goertzel algorithm.
package spectrum
