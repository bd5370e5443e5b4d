package embedding

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
)

// Kind identifies which entity type an embedding belongs to
type Kind string

const (
	KindUser Kind = "user"
	KindPost Kind = "post"
)

// Record stores one embedding per (entity kind, entity id). The content hash
// is a digest of the canonical text that produced the vector, so a record is
// stale whenever the entity's projection no longer hashes to it.
type Record struct {
	EntityKind   Kind            `gorm:"size:16;primaryKey"`
	EntityID     uuid.UUID       `gorm:"type:uuid;primaryKey"`
	Vector       pgvector.Vector `gorm:"type:vector(384)"`
	ModelVersion string          `gorm:"size:64;not null"`
	ContentHash  string          `gorm:"size:64;not null"`
	CreatedAt    time.Time       `gorm:"autoCreateTime"`
	UpdatedAt    time.Time       `gorm:"autoUpdateTime"`
}

// TableName returns the table name for GORM
func (Record) TableName() string {
	return "embeddings"
}

// Vector64 returns the stored vector as float64 values for similarity math
func (r *Record) Vector64() []float64 {
	raw := r.Vector.Slice()
	out := make([]float64, len(raw))
	for i, v := range raw {
		out[i] = float64(v)
	}
	return out
}

// SetVector64 stores float64 values in the pgvector column
func (r *Record) SetVector64(vector []float64) {
	raw := make([]float32, len(vector))
	for i, v := range vector {
		raw[i] = float32(v)
	}
	r.Vector = pgvector.NewVector(raw)
}

// Entity is the generator's unit of work: an identified piece of canonical text
type Entity struct {
	Kind Kind
	ID   uuid.UUID
	Text string
}

// Status reports what the generator did for an entity
type Status string

const (
	StatusCreated Status = "created"
	StatusUpdated Status = "updated"
	StatusSkipped Status = "skipped"
)

// Result is the outcome of an Ensure call
type Result struct {
	Status Status
	Vector []float64
}

// Provider is the external text-to-vector service
type Provider interface {
	Embed(text, model string) ([]float64, error)
}

// Store defines the interface for embedding persistence.
// FindByEntity returns (nil, nil) when no record exists.
type Store interface {
	FindByEntity(kind Kind, id uuid.UUID) (*Record, error)
	Upsert(record *Record) (created bool, err error)
	DeleteByEntity(kind Kind, id uuid.UUID) error
}

// ErrContentEmpty means the canonical projection produced nothing embeddable
var ErrContentEmpty = errors.New("canonical text projection is empty")

// ProviderError wraps a failure from the external embedding service
type ProviderError struct {
	Err error
}

func (e *ProviderError) Error() string {
	return "embedding provider: " + e.Err.Error()
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// ContentHash digests canonical text together with the model version, so
// switching embedding models forces regeneration even for unchanged text.
func ContentHash(text, model string) string {
	sum := sha256.Sum256([]byte(text + "\n" + model))
	return hex.EncodeToString(sum[:])
}
