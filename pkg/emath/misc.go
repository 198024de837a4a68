package emath

import "math"

// Some functions that only operate on basic types, that are useful

// UnitPow2 divides v by the smallest power of two that is >= v, which
// lands any v > 0 in the half open interval (0.5, 1]; exact powers of
// two map to 1. Frexp gives v = frac * 2^exp with frac in [0.5,1), so
// there is no log2 rounding to worry about. Returns NaN for v <= 0, or
// for Inf/NaN input.
func UnitPow2(v float64) float64 {
	if v <= 0 || math.IsInf(v, 0) || math.IsNaN(v) {
		return math.NaN()
	}
	frac, _ := math.Frexp(v)
	if frac == 0.5 {
		return 1.0
	}
	return frac
}

// SaturateU8 rounds to nearest (ties to even) and pins into [0,255].
// NaN maps to 0.
func SaturateU8(v float64) uint8 {
	v = math.RoundToEven(v)
	switch {
	case v >= 255: return 255
	case v > 0:    return uint8(v)
	}
	return 0
}
