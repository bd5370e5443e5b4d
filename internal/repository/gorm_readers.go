package repository

import (
	"fmt"
	"time"

	connectionPkg "github.com/mlee/socialnet-backend/internal/connection"
	embeddingPkg "github.com/mlee/socialnet-backend/internal/embedding"
	recommendationPkg "github.com/mlee/socialnet-backend/internal/recommendation"
	"github.com/mlee/socialnet-backend/pkg/logger"
	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"
)

// gormEmbeddingReader implements the recommendation.EmbeddingReader interface
type gormEmbeddingReader struct {
	db     *gorm.DB
	logger *logger.Logger
}

// NewGORMEmbeddingReader creates a GORM-based vector reader for ranking
func NewGORMEmbeddingReader(db *gorm.DB, log *logger.Logger) recommendationPkg.EmbeddingReader {
	return &gormEmbeddingReader{
		db:     db,
		logger: log.WithComponent("gorm-embedding-reader"),
	}
}

func (r *gormEmbeddingReader) UserVector(userID uuid.UUID) ([]float64, error) {
	var record embeddingPkg.Record

	err := r.db.Where("entity_kind = ? AND entity_id = ?", embeddingPkg.KindUser, userID).
		First(&record).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}

		r.logger.Error("Database error loading user vector: " + err.Error())
		return nil, fmt.Errorf("database error: %w", err)
	}

	return record.Vector64(), nil
}

func (r *gormEmbeddingReader) UserCandidates() ([]recommendationPkg.Candidate, error) {
	var records []*embeddingPkg.Record

	err := r.db.Where("entity_kind = ?", embeddingPkg.KindUser).
		Find(&records).Error
	if err != nil {
		r.logger.Error("Database error listing user embeddings: " + err.Error())
		return nil, fmt.Errorf("database error: %w", err)
	}

	candidates := make([]recommendationPkg.Candidate, 0, len(records))
	for _, record := range records {
		candidates = append(candidates, recommendationPkg.Candidate{
			ID:     record.EntityID,
			Vector: record.Vector64(),
		})
	}

	return candidates, nil
}

func (r *gormEmbeddingReader) PostCandidates() ([]recommendationPkg.Candidate, error) {
	type postEmbeddingRow struct {
		EntityID  uuid.UUID
		Vector    pgvector.Vector
		UserID    uuid.UUID
		CreatedAt time.Time
	}

	var rows []postEmbeddingRow

	err := r.db.Table("embeddings").
		Select("embeddings.entity_id, embeddings.vector, posts.user_id, posts.created_at").
		Joins("JOIN posts ON posts.id = embeddings.entity_id").
		Where("embeddings.entity_kind = ?", embeddingPkg.KindPost).
		Scan(&rows).Error
	if err != nil {
		r.logger.Error("Database error listing post embeddings: " + err.Error())
		return nil, fmt.Errorf("database error: %w", err)
	}

	candidates := make([]recommendationPkg.Candidate, 0, len(rows))
	for _, row := range rows {
		raw := row.Vector.Slice()
		vector := make([]float64, len(raw))
		for i, v := range raw {
			vector[i] = float64(v)
		}

		candidates = append(candidates, recommendationPkg.Candidate{
			ID:        row.EntityID,
			Vector:    vector,
			OwnerID:   row.UserID,
			CreatedAt: row.CreatedAt,
		})
	}

	return candidates, nil
}

// gormSocialReader implements the recommendation.SocialReader interface
type gormSocialReader struct {
	db     *gorm.DB
	logger *logger.Logger
}

// NewGORMSocialReader creates a GORM-based reader for recency fallbacks and
// connection exclusions
func NewGORMSocialReader(db *gorm.DB, log *logger.Logger) recommendationPkg.SocialReader {
	return &gormSocialReader{
		db:     db,
		logger: log.WithComponent("gorm-social-reader"),
	}
}

func (r *gormSocialReader) RecentUserIDs(limit int, exclude uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID

	err := r.db.Table("users").
		Where("id != ?", exclude).
		Order("created_at DESC").
		Limit(limit).
		Pluck("id", &ids).Error
	if err != nil {
		r.logger.Error("Database error listing recent users: " + err.Error())
		return nil, fmt.Errorf("database error: %w", err)
	}

	return ids, nil
}

func (r *gormSocialReader) RecentPostIDs(limit int, excludeOwner uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID

	err := r.db.Table("posts").
		Where("user_id != ?", excludeOwner).
		Order("created_at DESC").
		Limit(limit).
		Pluck("id", &ids).Error
	if err != nil {
		r.logger.Error("Database error listing recent posts: " + err.Error())
		return nil, fmt.Errorf("database error: %w", err)
	}

	return ids, nil
}

func (r *gormSocialReader) ConnectedUserIDs(userID uuid.UUID) (map[uuid.UUID]struct{}, error) {
	var connections []*connectionPkg.Connection

	err := r.db.Where("requester_id = ? OR addressee_id = ?", userID, userID).
		Where("status = ?", connectionPkg.StatusAccepted).
		Find(&connections).Error
	if err != nil {
		r.logger.Error("Database error listing accepted connections: " + err.Error())
		return nil, fmt.Errorf("database error: %w", err)
	}

	connected := make(map[uuid.UUID]struct{}, len(connections))
	for _, conn := range connections {
		if conn.RequesterID == userID {
			connected[conn.AddresseeID] = struct{}{}
		} else {
			connected[conn.RequesterID] = struct{}{}
		}
	}

	return connected, nil
}
