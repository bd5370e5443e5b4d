package embedding

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/mlee/socialnet-backend/config"
	"github.com/mlee/socialnet-backend/pkg/logger"
)

// Generator turns entities into stored embeddings. Generation is gated by
// the content hash: an unchanged projection never triggers a provider call
// unless forced, because the external call is the dominant cost.
type Generator struct {
	provider Provider
	store    Store
	model    string
	logger   *logger.Logger
	locks    sync.Map // entity key -> *sync.Mutex
}

// NewGenerator creates an embedding generator with validation and defaults
func NewGenerator(cfg *config.EmbeddingConfig, provider Provider, store Store, log *logger.Logger) *Generator {
	model := "all-MiniLM-L6-v2"
	if cfg != nil && cfg.ModelVersion != "" {
		model = cfg.ModelVersion
	}

	return &Generator{
		provider: provider,
		store:    store,
		model:    model,
		logger:   log.WithComponent("embedding-generator"),
	}
}

// Model returns the configured embedding model version
func (g *Generator) Model() string {
	return g.model
}

// Ensure makes sure the entity has an up-to-date embedding record. It is a
// no-op when the stored content hash already matches (unless force is set).
// The check-call-upsert sequence is serialized per entity, so concurrent
// regeneration cannot leave a mismatched hash/vector pair.
func (g *Generator) Ensure(e Entity, force bool) (*Result, error) {
	text := strings.TrimSpace(e.Text)
	if text == "" {
		return nil, ErrContentEmpty
	}

	mu := g.entityLock(e)
	mu.Lock()
	defer mu.Unlock()

	hash := ContentHash(text, g.model)

	existing, err := g.store.FindByEntity(e.Kind, e.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load embedding record: %w", err)
	}

	if existing != nil && !force && existing.ContentHash == hash {
		g.logger.Debug("Embedding up to date for " + string(e.Kind) + " " + e.ID.String() + ", skipping")
		return &Result{Status: StatusSkipped, Vector: existing.Vector64()}, nil
	}

	vector, err := g.provider.Embed(text, g.model)
	if err != nil {
		return nil, &ProviderError{Err: err}
	}

	record := existing
	if record == nil {
		record = &Record{EntityKind: e.Kind, EntityID: e.ID}
	}
	record.SetVector64(vector)
	record.ModelVersion = g.model
	record.ContentHash = hash
	record.UpdatedAt = time.Now()

	created, err := g.store.Upsert(record)
	if err != nil {
		return nil, fmt.Errorf("failed to persist embedding: %w", err)
	}

	status := StatusUpdated
	if created {
		status = StatusCreated
	}

	g.logger.Info("Embedding " + string(status) + " for " + string(e.Kind) + " " + e.ID.String())

	return &Result{Status: status, Vector: vector}, nil
}

func (g *Generator) entityLock(e Entity) *sync.Mutex {
	key := string(e.Kind) + "/" + e.ID.String()
	mu, _ := g.locks.LoadOrStore(key, &sync.Mutex{})
	return mu.(*sync.Mutex)
}
