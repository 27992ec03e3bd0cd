// Package score converts heterogeneous store score representations onto one
// comparable scale.
package score

// MaxDistance is the largest meaningful vector distance. Cosine distance
// ranges over [0, 2]; anything at or beyond this bound scores zero.
const MaxDistance = 2.0

// FromDistance converts a raw vector distance to a [0,1] similarity score.
// Monotonically non-increasing in distance, clamped at both ends, so vector
// hits sort on the same scale as keyword and hybrid relevance scores.
func FromDistance(distance float64) float64 {
	ratio := distance / MaxDistance
	if ratio > 1 {
		ratio = 1
	}
	s := 1 - ratio
	if s < 0 {
		return 0
	}
	return s
}
