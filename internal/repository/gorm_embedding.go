package repository

import (
	"fmt"

	embeddingPkg "github.com/mlee/socialnet-backend/internal/embedding"
	"github.com/mlee/socialnet-backend/pkg/logger"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// gormEmbeddingStore implements the embedding.Store interface
type gormEmbeddingStore struct {
	db     *gorm.DB
	logger *logger.Logger
}

// NewGORMEmbeddingStore creates a new GORM-based embedding store backed by a
// pgvector column
func NewGORMEmbeddingStore(db *gorm.DB, log *logger.Logger) embeddingPkg.Store {
	return &gormEmbeddingStore{
		db:     db,
		logger: log.WithComponent("gorm-embedding-store"),
	}
}

func (s *gormEmbeddingStore) FindByEntity(kind embeddingPkg.Kind, id uuid.UUID) (*embeddingPkg.Record, error) {
	var record embeddingPkg.Record

	err := s.db.Where("entity_kind = ? AND entity_id = ?", kind, id).
		First(&record).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}

		s.logger.Error("Database error finding embedding for " + string(kind) + " " + id.String() + ": " + err.Error())
		return nil, fmt.Errorf("database error: %w", err)
	}

	return &record, nil
}

func (s *gormEmbeddingStore) Upsert(record *embeddingPkg.Record) (bool, error) {
	var existing embeddingPkg.Record

	err := s.db.Where("entity_kind = ? AND entity_id = ?", record.EntityKind, record.EntityID).
		First(&existing).Error
	if err == gorm.ErrRecordNotFound {
		if err := s.db.Create(record).Error; err != nil {
			s.logger.Error("Failed to create embedding record: " + err.Error())
			return false, fmt.Errorf("failed to create embedding record: %w", err)
		}
		return true, nil
	}
	if err != nil {
		s.logger.Error("Database error during embedding upsert: " + err.Error())
		return false, fmt.Errorf("database error: %w", err)
	}

	// Vector, hash, and model version change together in one write so that a
	// stored hash always matches the vector it describes
	err = s.db.Model(&embeddingPkg.Record{}).
		Where("entity_kind = ? AND entity_id = ?", record.EntityKind, record.EntityID).
		Updates(map[string]any{
			"vector":        record.Vector,
			"model_version": record.ModelVersion,
			"content_hash":  record.ContentHash,
			"updated_at":    record.UpdatedAt,
		}).Error
	if err != nil {
		s.logger.Error("Failed to update embedding record: " + err.Error())
		return false, fmt.Errorf("failed to update embedding record: %w", err)
	}

	return false, nil
}

func (s *gormEmbeddingStore) DeleteByEntity(kind embeddingPkg.Kind, id uuid.UUID) error {
	err := s.db.Where("entity_kind = ? AND entity_id = ?", kind, id).
		Delete(&embeddingPkg.Record{}).Error
	if err != nil {
		s.logger.Error("Failed to delete embedding for " + string(kind) + " " + id.String() + ": " + err.Error())
		return fmt.Errorf("failed to delete embedding record: %w", err)
	}

	return nil
}
