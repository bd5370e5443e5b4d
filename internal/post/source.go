package post

import (
	"time"

	"github.com/mlee/socialnet-backend/internal/embedding"
)

// EmbeddingSource feeds posts into the embedding backfill
type EmbeddingSource struct {
	repo   Repository
	owners OwnerProfiles
}

// NewEmbeddingSource creates a backfill source over all posts
func NewEmbeddingSource(repo Repository, owners OwnerProfiles) *EmbeddingSource {
	return &EmbeddingSource{repo: repo, owners: owners}
}

func (s *EmbeddingSource) Name() string {
	return "posts"
}

func (s *EmbeddingSource) ListEntities(since time.Time) ([]embedding.Entity, error) {
	posts, err := s.repo.FindUpdatedSince(since)
	if err != nil {
		return nil, err
	}

	entities := make([]embedding.Entity, 0, len(posts))
	for _, p := range posts {
		owner, err := s.owners.ProfileByID(p.UserID)
		if err != nil {
			return nil, err
		}

		entities = append(entities, embedding.PostEntity(embedding.PostContent{
			ID:      p.ID,
			Content: p.Content,
			Owner:   owner,
		}))
	}

	return entities, nil
}
