package repository

import (
	"fmt"

	recommendationPkg "github.com/mlee/socialnet-backend/internal/recommendation"
	"github.com/mlee/socialnet-backend/pkg/logger"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// gormRecommendationRepository implements the recommendation.Repository interface
type gormRecommendationRepository struct {
	db     *gorm.DB
	logger *logger.Logger
}

// NewGORMRecommendationRepository creates a new GORM-based recommendation repository
func NewGORMRecommendationRepository(db *gorm.DB, log *logger.Logger) recommendationPkg.Repository {
	return &gormRecommendationRepository{
		db:     db,
		logger: log.WithComponent("gorm-recommendation-repository"),
	}
}

func (r *gormRecommendationRepository) TerminalCandidateIDs(sourceUserID uuid.UUID) (map[uuid.UUID]struct{}, error) {
	var ids []uuid.UUID

	err := r.db.Model(&recommendationPkg.Record{}).
		Where("source_user_id = ?", sourceUserID).
		Where("status IN ?", []recommendationPkg.Status{recommendationPkg.StatusDismissed, recommendationPkg.StatusAccepted}).
		Pluck("candidate_user_id", &ids).Error
	if err != nil {
		r.logger.Error("Database error listing terminal recommendations: " + err.Error())
		return nil, fmt.Errorf("database error: %w", err)
	}

	terminal := make(map[uuid.UUID]struct{}, len(ids))
	for _, id := range ids {
		terminal[id] = struct{}{}
	}

	return terminal, nil
}

func (r *gormRecommendationRepository) Find(sourceUserID, candidateUserID uuid.UUID) (*recommendationPkg.Record, error) {
	var record recommendationPkg.Record

	err := r.db.Where("source_user_id = ? AND candidate_user_id = ?", sourceUserID, candidateUserID).
		First(&record).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}

		r.logger.Error("Database error finding recommendation: " + err.Error())
		return nil, fmt.Errorf("database error: %w", err)
	}

	return &record, nil
}

func (r *gormRecommendationRepository) Upsert(record *recommendationPkg.Record) error {
	existing, err := r.Find(record.SourceUserID, record.CandidateUserID)
	if err != nil {
		return err
	}

	if existing == nil {
		if err := r.db.Create(record).Error; err != nil {
			r.logger.Error("Failed to create recommendation record: " + err.Error())
			return fmt.Errorf("failed to create recommendation record: %w", err)
		}
		return nil
	}

	// Terminal rows are permanently excluded upstream; this is a backstop so
	// regeneration can never overwrite a human decision
	if existing.Status.Terminal() {
		return nil
	}

	existing.SimilarityScore = record.SimilarityScore
	existing.Status = record.Status
	existing.Context = record.Context

	if err := r.db.Save(existing).Error; err != nil {
		r.logger.Error("Failed to update recommendation record: " + err.Error())
		return fmt.Errorf("failed to update recommendation record: %w", err)
	}

	return nil
}

func (r *gormRecommendationRepository) UpdateStatus(sourceUserID, candidateUserID uuid.UUID, status recommendationPkg.Status) error {
	err := r.db.Model(&recommendationPkg.Record{}).
		Where("source_user_id = ? AND candidate_user_id = ?", sourceUserID, candidateUserID).
		Update("status", status).Error
	if err != nil {
		r.logger.Error("Failed to update recommendation status: " + err.Error())
		return fmt.Errorf("failed to update recommendation status: %w", err)
	}

	return nil
}
