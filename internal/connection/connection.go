package connection

import (
	"time"

	"github.com/google/uuid"
)

// Connection status values
const (
	StatusPending  = "pending"
	StatusAccepted = "accepted"
)

// Connection represents a user-to-user connection keyed by the pair
type Connection struct {
	RequesterID uuid.UUID `json:"requester_id" gorm:"type:uuid;primaryKey"`
	AddresseeID uuid.UUID `json:"addressee_id" gorm:"type:uuid;primaryKey"`
	Status      string    `json:"status" gorm:"size:16;not null;default:'pending'"`
	CreatedAt   time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt   time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName returns the table name for GORM
func (Connection) TableName() string {
	return "connections"
}

// Repository defines the interface for connection data access.
// Find returns (nil, nil) when no connection exists for the pair.
type Repository interface {
	Create(conn *Connection) error
	Find(requesterID, addresseeID uuid.UUID) (*Connection, error)
	UpdateStatus(requesterID, addresseeID uuid.UUID, status string) error
	Delete(requesterID, addresseeID uuid.UUID) error
	FindForUser(userID uuid.UUID) ([]*Connection, error)
}

// Service defines the interface for connection business logic
type Service interface {
	Request(requesterID, addresseeID uuid.UUID) (*Connection, error)
	Accept(requesterID, addresseeID uuid.UUID) error
	Remove(userID, otherID uuid.UUID) error
	List(userID uuid.UUID) ([]*Connection, error)
}

// RequestConnectionRequest represents a connection request payload
type RequestConnectionRequest struct {
	AddresseeID uuid.UUID `json:"addressee_id" binding:"required"`
}
