package utils

import "math"

// NormalizeL2 scales x in place to unit length, accumulating in float64.
// It reports false, leaving x untouched, for a zero vector.
func NormalizeL2(x []float32) bool {
	var sum float64
	for _, v := range x {
		sum += float64(v) * float64(v)
	}
	if sum == 0 {
		return false
	}
	inv := 1 / math.Sqrt(sum)
	for i, v := range x {
		x[i] = float32(float64(v) * inv)
	}
	return true
}
