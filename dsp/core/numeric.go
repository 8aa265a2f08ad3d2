// Package core holds the scalar conversions shared by the DSP packages.
package core

import "math"

// Clamp limits value to the inclusive range [lo, hi]. -Inf and +Inf clamp
// to the bounds.
func Clamp(value, lo, hi float64) float64 {
	if lo > hi {
		lo, hi = hi, lo
	}

	if value < lo {
		return lo
	}

	if value > hi {
		return hi
	}

	return value
}

// DBToLinear converts dB to linear amplitude (20*log10 convention).
func DBToLinear(db float64) float64 {
	return math.Pow(10, db/20)
}

// LinearToDB converts linear amplitude to dB (20*log10 convention).
// Returns -Inf for zero and NaN for negative values.
func LinearToDB(linear float64) float64 {
	if linear < 0 {
		return math.NaN()
	}

	if linear == 0 {
		return math.Inf(-1)
	}

	return 20 * math.Log10(linear)
}

// FloorDB clamps db to [floor, +Inf). NaN maps to floor.
func FloorDB(db, floor float64) float64 {
	if math.IsNaN(db) || db < floor {
		return floor
	}

	return db
}
