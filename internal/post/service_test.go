package post

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/mlee/socialnet-backend/config"
	"github.com/mlee/socialnet-backend/internal/embedding"
	"github.com/mlee/socialnet-backend/pkg/logger"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mocks are mutex-protected since CreatePost embeds asynchronously

type memoryRepo struct {
	mu    sync.Mutex
	posts map[uuid.UUID]*Post
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{posts: make(map[uuid.UUID]*Post)}
}

func (r *memoryRepo) Create(post *Post) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	clone := *post
	r.posts[post.ID] = &clone
	return nil
}

func (r *memoryRepo) FindByID(id uuid.UUID) (*Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	post, ok := r.posts[id]
	if !ok {
		return nil, errors.New("post not found")
	}
	clone := *post
	return &clone, nil
}

func (r *memoryRepo) FindByUserID(userID uuid.UUID, page, limit int) ([]*Post, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []*Post
	for _, post := range r.posts {
		if post.UserID == userID {
			clone := *post
			result = append(result, &clone)
		}
	}
	return result, int64(len(result)), nil
}

func (r *memoryRepo) FindByEmbeddingStatus(status string) ([]*Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []*Post
	for _, post := range r.posts {
		if post.EmbeddingStatus == status {
			clone := *post
			result = append(result, &clone)
		}
	}
	return result, nil
}

func (r *memoryRepo) FindUpdatedSince(since time.Time) ([]*Post, error) {
	return nil, nil
}

func (r *memoryRepo) UpdateEmbeddingStatus(id uuid.UUID, status string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	post, ok := r.posts[id]
	if !ok {
		return errors.New("post not found")
	}
	post.EmbeddingStatus = status
	return nil
}

func (r *memoryRepo) Delete(id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.posts, id)
	return nil
}

type stubOwners struct {
	profiles map[uuid.UUID]embedding.UserProfile
}

func (s *stubOwners) ProfileByID(id uuid.UUID) (embedding.UserProfile, error) {
	profile, ok := s.profiles[id]
	if !ok {
		return embedding.UserProfile{}, errors.New("user not found")
	}
	return profile, nil
}

type stubEmbedder struct {
	mu     sync.Mutex
	calls  int
	failOn uuid.UUID
}

func (s *stubEmbedder) Ensure(e embedding.Entity, force bool) (*embedding.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if e.ID == s.failOn {
		return nil, errors.New("provider unavailable")
	}
	return &embedding.Result{Status: embedding.StatusCreated}, nil
}

type stubEmbeddingStore struct {
	mu      sync.Mutex
	deleted []uuid.UUID
}

func (s *stubEmbeddingStore) DeleteByEntity(kind embedding.Kind, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deleted = append(s.deleted, id)
	return nil
}

type fixture struct {
	svc      Service
	repo     *memoryRepo
	embedder *stubEmbedder
	store    *stubEmbeddingStore
	ownerID  uuid.UUID
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	log, err := logger.NewLogger(&config.LoggingConfig{Level: "info", Format: "console"})
	require.NoError(t, err)

	ownerID := uuid.New()
	repo := newMemoryRepo()
	embedder := &stubEmbedder{}
	store := &stubEmbeddingStore{}
	owners := &stubOwners{profiles: map[uuid.UUID]embedding.UserProfile{
		ownerID: {ID: ownerID, Biography: "likes hiking"},
	}}

	return &fixture{
		svc:      NewService(repo, owners, embedder, store, log),
		repo:     repo,
		embedder: embedder,
		store:    store,
		ownerID:  ownerID,
	}
}

func TestPost_IsOwnedBy(t *testing.T) {
	owner := uuid.New()
	post := &Post{ID: uuid.New(), UserID: owner}

	assert.True(t, post.IsOwnedBy(owner))
	assert.False(t, post.IsOwnedBy(uuid.New()))
}

func TestService_CreatePost(t *testing.T) {
	f := newFixture(t)

	post, err := f.svc.CreatePost(f.ownerID, "hello world")

	require.NoError(t, err)
	assert.Equal(t, "hello world", post.Content)
	assert.Equal(t, EmbeddingStatusPending, post.EmbeddingStatus)

	stored, err := f.repo.FindByID(post.ID)
	require.NoError(t, err)
	assert.Equal(t, f.ownerID, stored.UserID)
}

func TestService_DeletePost(t *testing.T) {
	t.Run("Owner delete cascades the embedding", func(t *testing.T) {
		f := newFixture(t)
		post, err := f.svc.CreatePost(f.ownerID, "to be removed")
		require.NoError(t, err)

		require.NoError(t, f.svc.DeletePost(post.ID, f.ownerID))

		_, err = f.repo.FindByID(post.ID)
		assert.Error(t, err)

		f.store.mu.Lock()
		defer f.store.mu.Unlock()
		assert.Contains(t, f.store.deleted, post.ID)
	})

	t.Run("Non-owner cannot delete", func(t *testing.T) {
		f := newFixture(t)
		post, err := f.svc.CreatePost(f.ownerID, "mine")
		require.NoError(t, err)

		err = f.svc.DeletePost(post.ID, uuid.New())
		assert.ErrorContains(t, err, "not found")

		stored, err := f.repo.FindByID(post.ID)
		require.NoError(t, err)
		assert.NotNil(t, stored)
	})
}

func TestService_RetryFailedEmbeddings(t *testing.T) {
	seedFailedPost := func(f *fixture, content string) *Post {
		post := &Post{
			ID:              uuid.New(),
			UserID:          f.ownerID,
			Content:         content,
			EmbeddingStatus: EmbeddingStatusFailed,
		}
		require.NoError(t, f.repo.Create(post))
		return post
	}

	t.Run("Failed posts are regenerated and marked success", func(t *testing.T) {
		f := newFixture(t)
		post := seedFailedPost(f, "second chance")

		require.NoError(t, f.svc.RetryFailedEmbeddings())

		stored, err := f.repo.FindByID(post.ID)
		require.NoError(t, err)
		assert.Equal(t, EmbeddingStatusSuccess, stored.EmbeddingStatus)
	})

	t.Run("Nothing to retry is a no-op", func(t *testing.T) {
		f := newFixture(t)

		require.NoError(t, f.svc.RetryFailedEmbeddings())
		assert.Equal(t, 0, f.embedder.calls)
	})

	t.Run("Persistent failures keep the failed status and surface an error", func(t *testing.T) {
		f := newFixture(t)
		broken := seedFailedPost(f, "still broken")
		f.embedder.failOn = broken.ID
		fine := seedFailedPost(f, "recovers")

		err := f.svc.RetryFailedEmbeddings()
		assert.ErrorContains(t, err, "1 of 2")

		stored, err := f.repo.FindByID(broken.ID)
		require.NoError(t, err)
		assert.Equal(t, EmbeddingStatusFailed, stored.EmbeddingStatus)

		stored, err = f.repo.FindByID(fine.ID)
		require.NoError(t, err)
		assert.Equal(t, EmbeddingStatusSuccess, stored.EmbeddingStatus)
	})
}

func TestService_GetUserPosts(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.CreatePost(f.ownerID, "one")
	require.NoError(t, err)
	_, err = f.svc.CreatePost(f.ownerID, "two")
	require.NoError(t, err)

	posts, total, err := f.svc.GetUserPosts(f.ownerID, 0, 0)

	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, posts, 2)
}
