package recommendation

import (
	"testing"
	"time"

	"github.com/mlee/socialnet-backend/config"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubSocial struct {
	recentUsers []uuid.UUID
	recentPosts []uuid.UUID
	connected   map[uuid.UUID]struct{}
}

func (s *stubSocial) RecentUserIDs(limit int, exclude uuid.UUID) ([]uuid.UUID, error) {
	if limit > len(s.recentUsers) {
		limit = len(s.recentUsers)
	}
	return s.recentUsers[:limit], nil
}

func (s *stubSocial) RecentPostIDs(limit int, excludeOwner uuid.UUID) ([]uuid.UUID, error) {
	if limit > len(s.recentPosts) {
		limit = len(s.recentPosts)
	}
	return s.recentPosts[:limit], nil
}

func (s *stubSocial) ConnectedUserIDs(userID uuid.UUID) (map[uuid.UUID]struct{}, error) {
	if s.connected == nil {
		return map[uuid.UUID]struct{}{}, nil
	}
	return s.connected, nil
}

func testService(t *testing.T, embeddings EmbeddingReader, repo Repository, social SocialReader) Service {
	t.Helper()
	ranker := testRanker(t)
	materializer, err := NewMaterializer(&config.RecommendationConfig{}, embeddings, repo, ranker, testLogger(t))
	require.NoError(t, err)

	svc, err := NewService(&config.RecommendationConfig{}, embeddings, repo, social, ranker, materializer, testLogger(t))
	require.NoError(t, err)
	return svc
}

func TestService_GetUserRecommendations(t *testing.T) {
	sourceID := uuid.New()
	similarID := uuid.New()
	dissimilarID := uuid.New()

	makeEmbeddings := func() *stubEmbeddings {
		return &stubEmbeddings{
			vectors: map[uuid.UUID][]float64{sourceID: {1, 0}},
			users: []Candidate{
				{ID: sourceID, Vector: []float64{1, 0}},
				{ID: similarID, Vector: []float64{0.9, 0.1}},
				{ID: dissimilarID, Vector: []float64{-1, 0}},
			},
		}
	}

	t.Run("Returns similarity-ordered users excluding self", func(t *testing.T) {
		svc := testService(t, makeEmbeddings(), newMemoryRepo(), &stubSocial{})

		recommendations, err := svc.GetUserRecommendations(sourceID, 10)

		require.NoError(t, err)
		require.Len(t, recommendations, 1, "negative-similarity candidate stays below the default floor")
		assert.Equal(t, similarID, recommendations[0].UserID)
		assert.Equal(t, "Similar profile", recommendations[0].Reason)
		assert.Greater(t, recommendations[0].Score, 0.9)
	})

	t.Run("No embedding falls back to recent users", func(t *testing.T) {
		newcomer := uuid.New()
		embeddings := makeEmbeddings()
		delete(embeddings.vectors, sourceID)
		social := &stubSocial{recentUsers: []uuid.UUID{newcomer}}
		svc := testService(t, embeddings, newMemoryRepo(), social)

		recommendations, err := svc.GetUserRecommendations(sourceID, 10)

		require.NoError(t, err)
		require.Len(t, recommendations, 1)
		assert.Equal(t, newcomer, recommendations[0].UserID)
		assert.Equal(t, "Recently joined (no similarity signal yet)", recommendations[0].Reason)
		assert.Zero(t, recommendations[0].Score)
	})

	t.Run("Fallback filters exclusions from the recent list", func(t *testing.T) {
		newcomer := uuid.New()
		embeddings := makeEmbeddings()
		delete(embeddings.vectors, sourceID)
		social := &stubSocial{
			recentUsers: []uuid.UUID{sourceID, similarID, newcomer},
			connected:   map[uuid.UUID]struct{}{similarID: {}},
		}
		svc := testService(t, embeddings, newMemoryRepo(), social)

		recommendations, err := svc.GetUserRecommendations(sourceID, 10)

		require.NoError(t, err)
		require.Len(t, recommendations, 1)
		assert.Equal(t, newcomer, recommendations[0].UserID)
	})

	t.Run("Connected users are excluded from similarity results", func(t *testing.T) {
		social := &stubSocial{connected: map[uuid.UUID]struct{}{similarID: {}}}
		svc := testService(t, makeEmbeddings(), newMemoryRepo(), social)

		recommendations, err := svc.GetUserRecommendations(sourceID, 10)

		require.NoError(t, err)
		for _, entry := range recommendations {
			assert.NotEqual(t, similarID, entry.UserID)
		}
	})

	t.Run("Dismissed candidates are excluded from similarity results", func(t *testing.T) {
		repo := newMemoryRepo()
		repo.put(sourceID, similarID, StatusDismissed, 0.9)
		social := &stubSocial{recentUsers: []uuid.UUID{uuid.New()}}
		svc := testService(t, makeEmbeddings(), repo, social)

		recommendations, err := svc.GetUserRecommendations(sourceID, 10)

		require.NoError(t, err)
		for _, entry := range recommendations {
			assert.NotEqual(t, similarID, entry.UserID)
		}
	})
}

func TestService_GetPostRecommendations(t *testing.T) {
	sourceID := uuid.New()
	authorID := uuid.New()
	matchingPost := uuid.New()

	makeEmbeddings := func() *stubEmbeddings {
		return &stubEmbeddings{
			vectors: map[uuid.UUID][]float64{sourceID: {1, 0}},
			posts: []Candidate{
				{ID: matchingPost, Vector: []float64{0.9, 0.1}, OwnerID: authorID, CreatedAt: time.Now()},
			},
		}
	}

	t.Run("Returns similar posts", func(t *testing.T) {
		svc := testService(t, makeEmbeddings(), newMemoryRepo(), &stubSocial{})

		recommendations, err := svc.GetPostRecommendations(sourceID, 10)

		require.NoError(t, err)
		require.Len(t, recommendations, 1)
		assert.Equal(t, matchingPost, recommendations[0].PostID)
		assert.Equal(t, "Similar to your profile", recommendations[0].Reason)
	})

	t.Run("No embedding falls back to recent posts", func(t *testing.T) {
		recentPost := uuid.New()
		embeddings := makeEmbeddings()
		delete(embeddings.vectors, sourceID)
		social := &stubSocial{recentPosts: []uuid.UUID{recentPost}}
		svc := testService(t, embeddings, newMemoryRepo(), social)

		recommendations, err := svc.GetPostRecommendations(sourceID, 10)

		require.NoError(t, err)
		require.Len(t, recommendations, 1)
		assert.Equal(t, recentPost, recommendations[0].PostID)
		assert.Equal(t, "Recently posted (no similarity signal yet)", recommendations[0].Reason)
	})

	t.Run("Own posts trigger the fallback when nothing else matches", func(t *testing.T) {
		recentPost := uuid.New()
		embeddings := makeEmbeddings()
		embeddings.posts[0].OwnerID = sourceID
		social := &stubSocial{recentPosts: []uuid.UUID{recentPost}}
		svc := testService(t, embeddings, newMemoryRepo(), social)

		recommendations, err := svc.GetPostRecommendations(sourceID, 10)

		require.NoError(t, err)
		require.Len(t, recommendations, 1)
		assert.Equal(t, recentPost, recommendations[0].PostID)
	})
}

func TestService_Refresh(t *testing.T) {
	sourceID := uuid.New()
	otherID := uuid.New()

	embeddings := &stubEmbeddings{
		vectors: map[uuid.UUID][]float64{sourceID: {1, 0}},
		users: []Candidate{
			{ID: sourceID, Vector: []float64{1, 0}},
			{ID: otherID, Vector: []float64{0.9, 0.1}},
		},
	}

	t.Run("Materializes and reports the written count", func(t *testing.T) {
		repo := newMemoryRepo()
		svc := testService(t, embeddings, repo, &stubSocial{})

		count, err := svc.Refresh(sourceID)

		require.NoError(t, err)
		assert.Equal(t, 1, count)
	})

	t.Run("RefreshAll tolerates users without embeddings", func(t *testing.T) {
		repo := newMemoryRepo()
		svc := testService(t, embeddings, repo, &stubSocial{})

		err := svc.RefreshAll()

		require.NoError(t, err)

		record, err := repo.Find(sourceID, otherID)
		require.NoError(t, err)
		assert.NotNil(t, record, "the user with an embedding still got refreshed")
	})
}

func TestService_UpdateStatus(t *testing.T) {
	sourceID := uuid.New()
	candidateID := uuid.New()

	makeService := func(repo Repository) Service {
		return testService(t, &stubEmbeddings{}, repo, &stubSocial{})
	}

	t.Run("Valid transition is persisted", func(t *testing.T) {
		repo := newMemoryRepo()
		repo.put(sourceID, candidateID, StatusGenerated, 0.8)
		svc := makeService(repo)

		err := svc.UpdateStatus(sourceID, candidateID, StatusViewed)

		require.NoError(t, err)
		record, err := repo.Find(sourceID, candidateID)
		require.NoError(t, err)
		assert.Equal(t, StatusViewed, record.Status)
	})

	t.Run("Unknown status rejected", func(t *testing.T) {
		repo := newMemoryRepo()
		repo.put(sourceID, candidateID, StatusGenerated, 0.8)
		svc := makeService(repo)

		err := svc.UpdateStatus(sourceID, candidateID, Status("archived"))
		assert.ErrorContains(t, err, "invalid status")
	})

	t.Run("Missing record rejected", func(t *testing.T) {
		svc := makeService(newMemoryRepo())

		err := svc.UpdateStatus(sourceID, candidateID, StatusViewed)
		assert.ErrorContains(t, err, "not found")
	})

	t.Run("Terminal records stay frozen", func(t *testing.T) {
		repo := newMemoryRepo()
		repo.put(sourceID, candidateID, StatusDismissed, 0.8)
		svc := makeService(repo)

		err := svc.UpdateStatus(sourceID, candidateID, StatusAccepted)
		assert.ErrorContains(t, err, "cannot transition")

		record, err := repo.Find(sourceID, candidateID)
		require.NoError(t, err)
		assert.Equal(t, StatusDismissed, record.Status)
	})
}
