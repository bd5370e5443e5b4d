package user

import (
	"time"

	"github.com/mlee/socialnet-backend/internal/embedding"
	"github.com/google/uuid"
)

// User represents a user in the system with optimized GORM tags. The
// Attributes/Biography/Meta fields feed the canonical text projection that
// drives embedding generation.
type User struct {
	ID           uuid.UUID      `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Email        string         `json:"email" gorm:"uniqueIndex;not null;size:255"`
	PasswordHash string         `json:"-" gorm:"not null;size:255"`
	Biography    string         `json:"biography" gorm:"type:text"`
	Attributes   map[string]any `json:"attributes" gorm:"serializer:json;type:jsonb"`
	Meta         map[string]any `json:"meta" gorm:"serializer:json;type:jsonb"`
	CreatedAt    time.Time      `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt    time.Time      `json:"updated_at" gorm:"autoUpdateTime"`

	// Associations - will be loaded explicitly when needed
	Posts []Post `json:"posts,omitempty" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
}

// Post represents the post entity (forward declaration for association)
type Post struct {
	ID      uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserID  uuid.UUID `gorm:"type:uuid;not null;index"`
	Content string
}

// Profile returns the projection view of this user
func (u *User) Profile() embedding.UserProfile {
	return embedding.UserProfile{
		ID:         u.ID,
		Attributes: u.Attributes,
		Biography:  u.Biography,
		Meta:       u.Meta,
	}
}

// Repository defines the interface for user data access
type Repository interface {
	Create(user *User) error
	Update(user *User) error
	FindByEmail(email string) (*User, error)
	FindByID(id uuid.UUID) (*User, error)
	FindUpdatedSince(since time.Time) ([]*User, error)
}

// Embedder keeps a user's embedding in sync with their profile
type Embedder interface {
	Ensure(e embedding.Entity, force bool) (*embedding.Result, error)
}

// Service defines the interface for user business logic
type Service interface {
	SignUp(email, password string) (*User, error)
	Login(email, password string) (string, error)
	GetUserByID(id uuid.UUID) (*User, error)
	ProfileByID(id uuid.UUID) (embedding.UserProfile, error)
	UpdateProfile(id uuid.UUID, req *UpdateProfileRequest) (*User, error)
	ValidateToken(tokenString string) (*User, error)
}

// CreateUserRequest represents user creation request
type CreateUserRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
}

// LoginRequest represents login request
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// UpdateProfileRequest represents a profile update; nil fields are untouched
type UpdateProfileRequest struct {
	Biography  *string        `json:"biography"`
	Attributes map[string]any `json:"attributes"`
	Meta       map[string]any `json:"meta"`
}

// UserResponse represents user in API responses (without password)
type UserResponse struct {
	ID         uuid.UUID      `json:"id"`
	Email      string         `json:"email"`
	Biography  string         `json:"biography"`
	Attributes map[string]any `json:"attributes"`
	Meta       map[string]any `json:"meta"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
}

// ToResponse converts User to UserResponse
func (u *User) ToResponse() *UserResponse {
	return &UserResponse{
		ID:         u.ID,
		Email:      u.Email,
		Biography:  u.Biography,
		Attributes: u.Attributes,
		Meta:       u.Meta,
		CreatedAt:  u.CreatedAt,
		UpdatedAt:  u.UpdatedAt,
	}
}

// TableName returns the table name for GORM
func (User) TableName() string {
	return "users"
}
