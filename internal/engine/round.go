package engine

import "math"

// RoundKm rounds to 2 decimals. Sums are rounded after every addition, not
// only at the end, so totals never show artifacts like 99.99999999994.
func RoundKm(v float64) float64 {
	return math.Round(v*100) / 100
}
