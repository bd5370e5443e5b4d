package recommendation

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Status is the lifecycle state of a recommendation record.
// generated -> viewed -> {dismissed, accepted}; the last two are terminal
// human decisions and are never overwritten by regeneration.
type Status string

const (
	StatusGenerated Status = "generated"
	StatusViewed    Status = "viewed"
	StatusDismissed Status = "dismissed"
	StatusAccepted  Status = "accepted"
)

// Valid reports whether s is a known status
func (s Status) Valid() bool {
	switch s {
	case StatusGenerated, StatusViewed, StatusDismissed, StatusAccepted:
		return true
	}
	return false
}

// Terminal reports whether s represents a final human decision
func (s Status) Terminal() bool {
	return s == StatusDismissed || s == StatusAccepted
}

// CanTransitionTo reports whether an explicit external action may move a
// record from s to next
func (s Status) CanTransitionTo(next Status) bool {
	if s.Terminal() || !next.Valid() {
		return false
	}

	switch s {
	case StatusGenerated:
		return next == StatusViewed || next.Terminal()
	case StatusViewed:
		return next.Terminal()
	}

	return false
}

// Record persists one ranked recommendation per (source, candidate) pair
type Record struct {
	SourceUserID    uuid.UUID         `json:"source_user_id" gorm:"type:uuid;primaryKey"`
	CandidateUserID uuid.UUID         `json:"candidate_user_id" gorm:"type:uuid;primaryKey"`
	SimilarityScore float64           `json:"similarity_score" gorm:"not null"`
	Status          Status            `json:"status" gorm:"size:16;not null;default:'generated'"`
	Context         map[string]string `json:"context" gorm:"serializer:json;type:jsonb"`
	CreatedAt       time.Time         `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt       time.Time         `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName returns the table name for GORM
func (Record) TableName() string {
	return "recommendations"
}

// Candidate is one scoreable entry in a ranking pool. OwnerID and CreatedAt
// are only populated for post candidates, where they drive owner exclusion
// and the freshness tie-break.
type Candidate struct {
	ID        uuid.UUID
	Vector    []float64
	OwnerID   uuid.UUID
	CreatedAt time.Time
}

// Scored is a ranked result entry
type Scored struct {
	ID    uuid.UUID
	Score float64
}

// ErrNoEmbedding means the source user has no precomputed vector; callers
// choose a fallback path instead of treating this as a crash
var ErrNoEmbedding = errors.New("source user has no embedding")

// EmbeddingReader supplies stored vectors to the ranking side.
// UserVector returns (nil, nil) when the user has no embedding yet.
type EmbeddingReader interface {
	UserVector(userID uuid.UUID) ([]float64, error)
	UserCandidates() ([]Candidate, error)
	PostCandidates() ([]Candidate, error)
}

// Repository defines the interface for recommendation persistence.
// Find returns (nil, nil) when no record exists for the pair.
type Repository interface {
	TerminalCandidateIDs(sourceUserID uuid.UUID) (map[uuid.UUID]struct{}, error)
	Find(sourceUserID, candidateUserID uuid.UUID) (*Record, error)
	Upsert(record *Record) error
	UpdateStatus(sourceUserID, candidateUserID uuid.UUID, status Status) error
}

// SocialReader supplies the recency fallbacks and connection exclusions
// owned by the surrounding CRUD features
type SocialReader interface {
	RecentUserIDs(limit int, exclude uuid.UUID) ([]uuid.UUID, error)
	RecentPostIDs(limit int, excludeOwner uuid.UUID) ([]uuid.UUID, error)
	ConnectedUserIDs(userID uuid.UUID) (map[uuid.UUID]struct{}, error)
}

// RecommendedUser represents a recommended user with scoring
type RecommendedUser struct {
	UserID uuid.UUID `json:"user_id"`
	Score  float64   `json:"score"`
	Reason string    `json:"reason"`
}

// RecommendedPost represents a recommended post with scoring
type RecommendedPost struct {
	PostID uuid.UUID `json:"post_id"`
	Score  float64   `json:"score"`
	Reason string    `json:"reason"`
}

// Service defines the interface for recommendation business logic
type Service interface {
	GetUserRecommendations(userID uuid.UUID, limit int) ([]*RecommendedUser, error)
	GetPostRecommendations(userID uuid.UUID, limit int) ([]*RecommendedPost, error)
	Refresh(userID uuid.UUID) (int, error)
	RefreshAll() error
	UpdateStatus(sourceUserID, candidateUserID uuid.UUID, status Status) error
}

// UserRecommendationResponse is the user query endpoint payload
type UserRecommendationResponse struct {
	Recommendations []*RecommendedUser `json:"recommendations"`
	UserID          uuid.UUID          `json:"user_id"`
	Count           int                `json:"count"`
	GeneratedAt     time.Time          `json:"generated_at"`
}

// PostRecommendationResponse is the post query endpoint payload
type PostRecommendationResponse struct {
	Recommendations []*RecommendedPost `json:"recommendations"`
	UserID          uuid.UUID          `json:"user_id"`
	Count           int                `json:"count"`
	GeneratedAt     time.Time          `json:"generated_at"`
}
