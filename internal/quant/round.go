package quant

import "math"

// RoundHalfToEven rounds x to the nearest integer value, resolving exact
// .5 ties toward the even neighbor (banker's rounding). The tie-break rule
// is part of the quantization contract: round-half-up produces different
// zero-points for inputs that land exactly on a rounding boundary.
//
// The float32 -> float64 promotion is exact, so the float64 rounding
// result matches a native float32 nearbyint in round-to-nearest-even mode.
func RoundHalfToEven(x float32) float32 {
	return float32(math.RoundToEven(float64(x)))
}
