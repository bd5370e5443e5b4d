package user

import (
	"time"

	"github.com/mlee/socialnet-backend/internal/embedding"
)

// EmbeddingSource feeds user profiles into the embedding backfill
type EmbeddingSource struct {
	repo Repository
}

// NewEmbeddingSource creates a backfill source over all users
func NewEmbeddingSource(repo Repository) *EmbeddingSource {
	return &EmbeddingSource{repo: repo}
}

func (s *EmbeddingSource) Name() string {
	return "users"
}

func (s *EmbeddingSource) ListEntities(since time.Time) ([]embedding.Entity, error) {
	users, err := s.repo.FindUpdatedSince(since)
	if err != nil {
		return nil, err
	}

	entities := make([]embedding.Entity, 0, len(users))
	for _, u := range users {
		entities = append(entities, embedding.UserEntity(u.Profile()))
	}

	return entities, nil
}
