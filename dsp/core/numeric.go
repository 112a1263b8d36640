package core

import "math"

// Clamp limits value to [lo, hi]. Swapped bounds are reordered.
func Clamp(value, lo, hi float64) float64 {
	if lo > hi {
		lo, hi = hi, lo
	}

	return math.Max(lo, math.Min(value, hi))
}

// Finite reports whether x is neither NaN nor infinite.
func Finite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}

// Lerp maps t in [0, 1] linearly onto [lo, hi]. t is clamped first.
func Lerp(lo, hi, t float64) float64 {
	t = Clamp(t, 0, 1)
	return lo + (hi-lo)*t
}

// DBToLinear converts decibels to an amplitude factor.
func DBToLinear(db float64) float64 {
	return math.Pow(10, db/20)
}

// LinearToDB converts an amplitude factor to decibels: -Inf for zero, NaN
// for negative input.
func LinearToDB(linear float64) float64 {
	switch {
	case linear < 0:
		return math.NaN()
	case linear == 0:
		return math.Inf(-1)
	default:
		return 20 * math.Log10(linear)
	}
}
