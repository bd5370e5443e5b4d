package vectormath

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCosineSimilarity(t *testing.T) {
	t.Run("Self similarity is maximal", func(t *testing.T) {
		vectors := [][]float64{
			{1, 0},
			{0.3, -0.7, 0.2},
			{5, 5, 5, 5},
		}

		for _, v := range vectors {
			score, err := CosineSimilarity(v, v)
			require.NoError(t, err)
			assert.InDelta(t, 1.0, score, 1e-9)
		}
	})

	t.Run("Opposite vectors score -1", func(t *testing.T) {
		v := []float64{0.4, -1.2, 3}
		neg := make([]float64, len(v))
		for i := range v {
			neg[i] = -v[i]
		}

		score, err := CosineSimilarity(v, neg)
		require.NoError(t, err)
		assert.InDelta(t, -1.0, score, 1e-9)
	})

	t.Run("Zero vector yields zero score", func(t *testing.T) {
		for _, n := range []int{1, 3, 8} {
			zero := make([]float64, n)
			other := make([]float64, n)
			for i := range other {
				other[i] = float64(i + 1)
			}

			score, err := CosineSimilarity(zero, other)
			require.NoError(t, err)
			assert.Equal(t, 0.0, score)

			score, err = CosineSimilarity(other, zero)
			require.NoError(t, err)
			assert.Equal(t, 0.0, score)
		}
	})

	t.Run("Symmetric", func(t *testing.T) {
		a := []float64{0.1, 0.9, -0.3}
		b := []float64{-0.5, 0.2, 0.8}

		ab, err := CosineSimilarity(a, b)
		require.NoError(t, err)
		ba, err := CosineSimilarity(b, a)
		require.NoError(t, err)

		assert.Equal(t, ab, ba)
	})

	t.Run("Orthogonal vectors score zero", func(t *testing.T) {
		score, err := CosineSimilarity([]float64{1, 0}, []float64{0, 1})
		require.NoError(t, err)
		assert.InDelta(t, 0.0, score, 1e-9)
	})

	t.Run("Dimension mismatch is an error", func(t *testing.T) {
		_, err := CosineSimilarity([]float64{1, 2}, []float64{1, 2, 3})
		require.Error(t, err)

		var dimErr *DimensionError
		require.ErrorAs(t, err, &dimErr)
		assert.Equal(t, 2, dimErr.Left)
		assert.Equal(t, 3, dimErr.Right)
	})
}
