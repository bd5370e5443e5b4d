package post

import (
	"errors"
	"fmt"
	"time"

	"github.com/mlee/socialnet-backend/internal/embedding"
	"github.com/mlee/socialnet-backend/pkg/logger"
	"github.com/google/uuid"
)

// service implements the Service interface
type service struct {
	repo       Repository
	owners     OwnerProfiles
	embedder   Embedder
	embeddings EmbeddingStore
	logger     *logger.Logger
}

// NewService creates a new post service
func NewService(repo Repository, owners OwnerProfiles, embedder Embedder, embeddings EmbeddingStore, log *logger.Logger) Service {
	return &service{
		repo:       repo,
		owners:     owners,
		embedder:   embedder,
		embeddings: embeddings,
		logger:     log.WithComponent("post-service"),
	}
}

func (s *service) CreatePost(userID uuid.UUID, content string) (*Post, error) {
	s.logger.Info("Creating post for user " + userID.String())

	post := &Post{
		ID:              uuid.New(),
		UserID:          userID,
		Content:         content,
		EmbeddingStatus: EmbeddingStatusPending,
		CreatedAt:       time.Now(),
		UpdatedAt:       time.Now(),
	}

	if err := s.repo.Create(post); err != nil {
		s.logger.Error("Failed to create post for user " + userID.String() + ": " + err.Error())
		return nil, err
	}

	// Asynchronously generate the embedding
	go func() {
		if err := s.generateEmbedding(post); err != nil {
			s.logger.Error("Failed to generate embedding for post " + post.ID.String() + ": " + err.Error())
		}
	}()

	s.logger.Info("Post created successfully: " + post.ID.String() + " for user " + userID.String())

	return post, nil
}

func (s *service) GetPost(id uuid.UUID) (*Post, error) {
	return s.repo.FindByID(id)
}

func (s *service) GetUserPosts(userID uuid.UUID, page, limit int) ([]*Post, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	return s.repo.FindByUserID(userID, page, limit)
}

func (s *service) DeletePost(id uuid.UUID, userID uuid.UUID) error {
	post, err := s.repo.FindByID(id)
	if err != nil {
		return err
	}

	// Verify ownership
	if !post.IsOwnedBy(userID) {
		return errors.New("post not found")
	}

	if err := s.repo.Delete(id); err != nil {
		return err
	}

	// Cascade the embedding record with its owning post
	if err := s.embeddings.DeleteByEntity(embedding.KindPost, id); err != nil {
		s.logger.Error("Failed to delete embedding for post " + id.String() + ": " + err.Error())
		return err
	}

	s.logger.Info("Post deleted: " + id.String())

	return nil
}

// RetryFailedEmbeddings regenerates embeddings for posts whose last attempt
// failed. Run periodically by the background worker.
func (s *service) RetryFailedEmbeddings() error {
	posts, err := s.repo.FindByEmbeddingStatus(EmbeddingStatusFailed)
	if err != nil {
		return fmt.Errorf("failed to list posts with failed embeddings: %w", err)
	}

	if len(posts) == 0 {
		return nil
	}

	s.logger.Info(fmt.Sprintf("Retrying embeddings for %d posts", len(posts)))

	failures := 0
	for _, post := range posts {
		if err := s.generateEmbedding(post); err != nil {
			failures++
			s.logger.Error("Embedding retry failed for post " + post.ID.String() + ": " + err.Error())
		}
	}

	if failures > 0 {
		return fmt.Errorf("%d of %d embedding retries failed", failures, len(posts))
	}

	return nil
}

func (s *service) generateEmbedding(post *Post) error {
	owner, err := s.owners.ProfileByID(post.UserID)
	if err != nil {
		return fmt.Errorf("failed to load owner profile: %w", err)
	}

	entity := embedding.PostEntity(embedding.PostContent{
		ID:      post.ID,
		Content: post.Content,
		Owner:   owner,
	})

	if _, err := s.embedder.Ensure(entity, false); err != nil {
		if statusErr := s.repo.UpdateEmbeddingStatus(post.ID, EmbeddingStatusFailed); statusErr != nil {
			s.logger.Error("Failed to mark embedding failed for post " + post.ID.String() + ": " + statusErr.Error())
		}
		return err
	}

	return s.repo.UpdateEmbeddingStatus(post.ID, EmbeddingStatusSuccess)
}
