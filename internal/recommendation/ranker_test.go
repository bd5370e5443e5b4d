package recommendation

import (
	"math"
	"testing"
	"time"

	"github.com/mlee/socialnet-backend/config"
	"github.com/mlee/socialnet-backend/pkg/logger"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.NewLogger(&config.LoggingConfig{Level: "info", Format: "console"})
	require.NoError(t, err)
	return log
}

func testRanker(t *testing.T) *Ranker {
	t.Helper()
	ranker, err := NewRanker(&config.RecommendationConfig{}, testLogger(t))
	require.NoError(t, err)
	return ranker
}

func noFloor() RankOptions {
	return RankOptions{MinScore: math.Inf(-1)}
}

func TestNewRanker(t *testing.T) {
	t.Run("Rejects unparseable tie epsilon", func(t *testing.T) {
		_, err := NewRanker(&config.RecommendationConfig{TieEpsilon: "lots"}, testLogger(t))
		assert.Error(t, err)
	})

	t.Run("Nil config uses defaults", func(t *testing.T) {
		ranker, err := NewRanker(nil, testLogger(t))
		require.NoError(t, err)
		assert.Equal(t, 0.05, ranker.tieEpsilon)
	})
}

func TestRanker_Rank(t *testing.T) {
	ranker := testRanker(t)

	a := Candidate{ID: uuid.New(), Vector: []float64{1, 0}}
	b := Candidate{ID: uuid.New(), Vector: []float64{0, 1}}
	c := Candidate{ID: uuid.New(), Vector: []float64{0.9, 0.1}}

	t.Run("Orders by descending similarity and truncates to k", func(t *testing.T) {
		opts := noFloor()
		opts.K = 2
		results := ranker.Rank([]float64{1, 0}, []Candidate{a, b, c}, opts)

		require.Len(t, results, 2)
		assert.Equal(t, a.ID, results[0].ID)
		assert.InDelta(t, 1.0, results[0].Score, 1e-9)
		assert.Equal(t, c.ID, results[1].ID)
		assert.InDelta(t, 0.9938837, results[1].Score, 1e-6)
	})

	t.Run("Zero k returns everything", func(t *testing.T) {
		results := ranker.Rank([]float64{1, 0}, []Candidate{a, b, c}, noFloor())
		assert.Len(t, results, 3)
	})

	t.Run("Excluded candidates never appear", func(t *testing.T) {
		opts := noFloor()
		opts.Exclude = map[uuid.UUID]struct{}{a.ID: {}}
		results := ranker.Rank([]float64{1, 0}, []Candidate{a, b, c}, opts)

		require.Len(t, results, 2)
		assert.Equal(t, c.ID, results[0].ID)
		assert.Equal(t, b.ID, results[1].ID)
	})

	t.Run("Min score is an inclusive floor", func(t *testing.T) {
		results := ranker.Rank([]float64{1, 0}, []Candidate{a, b, c}, RankOptions{MinScore: 0.5})

		require.Len(t, results, 2)
		for _, entry := range results {
			assert.GreaterOrEqual(t, entry.Score, 0.5)
		}
	})

	t.Run("Mismatched vector length skips the candidate only", func(t *testing.T) {
		broken := Candidate{ID: uuid.New(), Vector: []float64{1, 0, 0}}
		results := ranker.Rank([]float64{1, 0}, []Candidate{a, broken, b}, noFloor())

		require.Len(t, results, 2)
		assert.Equal(t, a.ID, results[0].ID)
		assert.Equal(t, b.ID, results[1].ID)
	})

	t.Run("Empty pool returns empty result", func(t *testing.T) {
		results := ranker.Rank([]float64{1, 0}, nil, noFloor())
		assert.Empty(t, results)
	})

	t.Run("Freshness breaks near-ties when enabled", func(t *testing.T) {
		now := time.Now()
		older := Candidate{ID: uuid.New(), Vector: []float64{1, 0}, CreatedAt: now.Add(-time.Hour)}
		newer := Candidate{ID: uuid.New(), Vector: []float64{1, 0.1}, CreatedAt: now}

		opts := noFloor()
		results := ranker.Rank([]float64{1, 0}, []Candidate{older, newer}, opts)
		assert.Equal(t, older.ID, results[0].ID, "pure score order without tie-break")

		opts.FreshnessTieBreak = true
		results = ranker.Rank([]float64{1, 0}, []Candidate{older, newer}, opts)
		assert.Equal(t, newer.ID, results[0].ID, "recency wins inside the epsilon band")
	})
}

func TestRanker_RecommendPosts(t *testing.T) {
	ranker := testRanker(t)
	owner := uuid.New()
	other := uuid.New()

	pool := []Candidate{
		{ID: uuid.New(), Vector: []float64{1, 0}, OwnerID: other, CreatedAt: time.Now()},
		{ID: uuid.New(), Vector: []float64{0, 1}, OwnerID: other, CreatedAt: time.Now()},
	}

	t.Run("Ranks the pool and excludes own posts", func(t *testing.T) {
		own := Candidate{ID: uuid.New(), Vector: []float64{1, 0}, OwnerID: owner, CreatedAt: time.Now()}
		result := ranker.RecommendPosts([]float64{1, 0}, append(pool, own), owner, math.Inf(-1), 10)

		require.False(t, result.Insufficient)
		require.Len(t, result.Items, 2)
		for _, entry := range result.Items {
			assert.NotEqual(t, own.ID, entry.ID)
		}
	})

	t.Run("Missing source vector is insufficient", func(t *testing.T) {
		result := ranker.RecommendPosts(nil, pool, owner, math.Inf(-1), 10)
		assert.True(t, result.Insufficient)
		assert.Empty(t, result.Items)
	})

	t.Run("Empty pool is insufficient", func(t *testing.T) {
		result := ranker.RecommendPosts([]float64{1, 0}, nil, owner, math.Inf(-1), 10)
		assert.True(t, result.Insufficient)
	})

	t.Run("Everything below the floor is insufficient", func(t *testing.T) {
		result := ranker.RecommendPosts([]float64{1, 0}, pool, owner, 2.0, 10)
		assert.True(t, result.Insufficient)
	})
}
