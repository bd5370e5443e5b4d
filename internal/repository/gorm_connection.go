package repository

import (
	"fmt"

	connectionPkg "github.com/mlee/socialnet-backend/internal/connection"
	"github.com/mlee/socialnet-backend/pkg/logger"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// gormConnectionRepository implements the connection.Repository interface
type gormConnectionRepository struct {
	db     *gorm.DB
	logger *logger.Logger
}

// NewGORMConnectionRepository creates a new GORM-based connection repository
func NewGORMConnectionRepository(db *gorm.DB, log *logger.Logger) connectionPkg.Repository {
	return &gormConnectionRepository{
		db:     db,
		logger: log.WithComponent("gorm-connection-repository"),
	}
}

func (r *gormConnectionRepository) Create(conn *connectionPkg.Connection) error {
	if err := r.db.Create(conn).Error; err != nil {
		r.logger.Error("Failed to create connection: " + err.Error())
		return fmt.Errorf("failed to create connection: %w", err)
	}

	return nil
}

func (r *gormConnectionRepository) Find(requesterID, addresseeID uuid.UUID) (*connectionPkg.Connection, error) {
	var conn connectionPkg.Connection

	err := r.db.Where("requester_id = ? AND addressee_id = ?", requesterID, addresseeID).
		First(&conn).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}

		r.logger.Error("Database error finding connection: " + err.Error())
		return nil, fmt.Errorf("database error: %w", err)
	}

	return &conn, nil
}

func (r *gormConnectionRepository) UpdateStatus(requesterID, addresseeID uuid.UUID, status string) error {
	err := r.db.Model(&connectionPkg.Connection{}).
		Where("requester_id = ? AND addressee_id = ?", requesterID, addresseeID).
		Update("status", status).Error
	if err != nil {
		r.logger.Error("Failed to update connection status: " + err.Error())
		return fmt.Errorf("failed to update connection status: %w", err)
	}

	return nil
}

func (r *gormConnectionRepository) Delete(requesterID, addresseeID uuid.UUID) error {
	err := r.db.Where("requester_id = ? AND addressee_id = ?", requesterID, addresseeID).
		Delete(&connectionPkg.Connection{}).Error
	if err != nil {
		r.logger.Error("Failed to delete connection: " + err.Error())
		return fmt.Errorf("failed to delete connection: %w", err)
	}

	return nil
}

func (r *gormConnectionRepository) FindForUser(userID uuid.UUID) ([]*connectionPkg.Connection, error) {
	var connections []*connectionPkg.Connection

	err := r.db.Where("requester_id = ? OR addressee_id = ?", userID, userID).
		Order("created_at DESC").
		Find(&connections).Error
	if err != nil {
		r.logger.Error("Database error listing connections: " + err.Error())
		return nil, fmt.Errorf("database error: %w", err)
	}

	return connections, nil
}
