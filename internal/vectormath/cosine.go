package vectormath

import (
	"fmt"
	"math"
)

// DimensionError indicates two vectors of unequal length were compared
type DimensionError struct {
	Left  int
	Right int
}

func (e *DimensionError) Error() string {
	return fmt.Sprintf("vector dimensions don't match: %d vs %d", e.Left, e.Right)
}

// CosineSimilarity returns the cosine of the angle between two vectors,
// a value in [-1, 1]. A zero-magnitude vector on either side yields 0.0
// ("no signal") rather than an error.
func CosineSimilarity(a, b []float64) (float64, error) {
	if len(a) != len(b) {
		return 0, &DimensionError{Left: len(a), Right: len(b)}
	}

	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}

	if normA == 0 || normB == 0 {
		return 0, nil
	}

	return dot / (math.Sqrt(normA) * math.Sqrt(normB)), nil
}
