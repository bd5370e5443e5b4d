package post

import (
	"time"

	"github.com/mlee/socialnet-backend/internal/embedding"
	"github.com/google/uuid"
)

// Embedding generation status values
const (
	EmbeddingStatusPending = "pending"
	EmbeddingStatusSuccess = "success"
	EmbeddingStatusFailed  = "failed"
)

// Post represents a user-authored post ("string") with optimized GORM tags
type Post struct {
	ID              uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	UserID          uuid.UUID `json:"user_id" gorm:"type:uuid;not null;index"`
	Content         string    `json:"content" gorm:"type:text;not null"`
	EmbeddingStatus string    `json:"embedding_status" gorm:"size:20;default:'pending'"`
	CreatedAt       time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt       time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// IsOwnedBy checks if the post belongs to the given user
func (p *Post) IsOwnedBy(userID uuid.UUID) bool {
	return p.UserID == userID
}

// TableName returns the table name for GORM
func (Post) TableName() string {
	return "posts"
}

// Repository defines the interface for post data access
type Repository interface {
	Create(post *Post) error
	FindByID(id uuid.UUID) (*Post, error)
	FindByUserID(userID uuid.UUID, page, limit int) ([]*Post, int64, error)
	FindByEmbeddingStatus(status string) ([]*Post, error)
	FindUpdatedSince(since time.Time) ([]*Post, error)
	UpdateEmbeddingStatus(id uuid.UUID, status string) error
	Delete(id uuid.UUID) error
}

// OwnerProfiles resolves a post owner's projection profile
type OwnerProfiles interface {
	ProfileByID(id uuid.UUID) (embedding.UserProfile, error)
}

// Embedder keeps post embeddings in sync with post content
type Embedder interface {
	Ensure(e embedding.Entity, force bool) (*embedding.Result, error)
}

// EmbeddingStore is the slice of the embedding store the post feature needs
// for cascade deletes
type EmbeddingStore interface {
	DeleteByEntity(kind embedding.Kind, id uuid.UUID) error
}

// Service defines the interface for post business logic
type Service interface {
	CreatePost(userID uuid.UUID, content string) (*Post, error)
	GetPost(id uuid.UUID) (*Post, error)
	GetUserPosts(userID uuid.UUID, page, limit int) ([]*Post, int64, error)
	DeletePost(id uuid.UUID, userID uuid.UUID) error
	RetryFailedEmbeddings() error
}

// CreatePostRequest represents post creation request
type CreatePostRequest struct {
	Content string `json:"content" binding:"required"`
}
