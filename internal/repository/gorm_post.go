package repository

import (
	"fmt"
	"time"

	postPkg "github.com/mlee/socialnet-backend/internal/post"
	"github.com/mlee/socialnet-backend/pkg/logger"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// gormPostRepository implements the post.Repository interface
type gormPostRepository struct {
	db     *gorm.DB
	logger *logger.Logger
}

// NewGORMPostRepository creates a new GORM-based post repository
func NewGORMPostRepository(db *gorm.DB, log *logger.Logger) postPkg.Repository {
	return &gormPostRepository{
		db:     db,
		logger: log.WithComponent("gorm-post-repository"),
	}
}

func (r *gormPostRepository) Create(post *postPkg.Post) error {
	if err := r.db.Create(post).Error; err != nil {
		r.logger.Error("Failed to create post " + post.ID.String() + ": " + err.Error())
		return fmt.Errorf("failed to create post: %w", err)
	}

	return nil
}

func (r *gormPostRepository) FindByID(id uuid.UUID) (*postPkg.Post, error) {
	var post postPkg.Post

	// Use primary key lookup for optimal performance
	err := r.db.First(&post, id).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("post not found")
		}

		r.logger.Error("Database error finding post " + id.String() + ": " + err.Error())
		return nil, fmt.Errorf("database error: %w", err)
	}

	return &post, nil
}

func (r *gormPostRepository) FindByUserID(userID uuid.UUID, page, limit int) ([]*postPkg.Post, int64, error) {
	var posts []*postPkg.Post
	var total int64

	if err := r.db.Model(&postPkg.Post{}).Where("user_id = ?", userID).Count(&total).Error; err != nil {
		r.logger.Error("Database error counting posts: " + err.Error())
		return nil, 0, fmt.Errorf("database error: %w", err)
	}

	err := r.db.Where("user_id = ?", userID).
		Order("created_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&posts).Error
	if err != nil {
		r.logger.Error("Database error listing posts: " + err.Error())
		return nil, 0, fmt.Errorf("database error: %w", err)
	}

	return posts, total, nil
}

func (r *gormPostRepository) FindByEmbeddingStatus(status string) ([]*postPkg.Post, error) {
	var posts []*postPkg.Post

	if err := r.db.Where("embedding_status = ?", status).Find(&posts).Error; err != nil {
		r.logger.Error("Database error listing posts by embedding status: " + err.Error())
		return nil, fmt.Errorf("database error: %w", err)
	}

	return posts, nil
}

func (r *gormPostRepository) FindUpdatedSince(since time.Time) ([]*postPkg.Post, error) {
	var posts []*postPkg.Post

	query := r.db.Order("updated_at ASC")
	if !since.IsZero() {
		query = query.Where("updated_at >= ?", since)
	}

	if err := query.Find(&posts).Error; err != nil {
		r.logger.Error("Database error listing posts: " + err.Error())
		return nil, fmt.Errorf("database error: %w", err)
	}

	return posts, nil
}

func (r *gormPostRepository) UpdateEmbeddingStatus(id uuid.UUID, status string) error {
	err := r.db.Model(&postPkg.Post{}).
		Where("id = ?", id).
		Update("embedding_status", status).Error
	if err != nil {
		r.logger.Error("Failed to update embedding status for post " + id.String() + ": " + err.Error())
		return fmt.Errorf("failed to update embedding status: %w", err)
	}

	return nil
}

func (r *gormPostRepository) Delete(id uuid.UUID) error {
	if err := r.db.Delete(&postPkg.Post{}, id).Error; err != nil {
		r.logger.Error("Failed to delete post " + id.String() + ": " + err.Error())
		return fmt.Errorf("failed to delete post: %w", err)
	}

	return nil
}
