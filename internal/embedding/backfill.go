package embedding

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mlee/socialnet-backend/config"
	"github.com/mlee/socialnet-backend/pkg/logger"
)

// Source supplies entities that need embeddings, optionally filtered by a
// last-update cutoff (zero time means everything)
type Source interface {
	Name() string
	ListEntities(since time.Time) ([]Entity, error)
}

// ItemError records a single entity's failure during a batch run
type ItemError struct {
	Entity Entity
	Err    error
}

// Summary aggregates the outcome of a backfill run
type Summary struct {
	Processed int
	Created   int
	Updated   int
	Skipped   int
	Failed    int
	Errors    []ItemError
}

// Backfill walks all embeddable entities and regenerates stale embeddings.
// Entities are processed independently: one failure never aborts the run.
type Backfill struct {
	generator *Generator
	sources   []Source
	delay     time.Duration
	logger    *logger.Logger
}

// NewBackfill creates a backfill runner with validation and defaults
func NewBackfill(cfg *config.EmbeddingConfig, generator *Generator, sources []Source, log *logger.Logger) (*Backfill, error) {
	delay := 200 * time.Millisecond
	if cfg != nil && cfg.BackfillDelay != "" {
		duration, err := time.ParseDuration(cfg.BackfillDelay)
		if err != nil {
			return nil, fmt.Errorf("invalid backfill delay '%s': %v", cfg.BackfillDelay, err)
		}
		delay = duration
	}

	return &Backfill{
		generator: generator,
		sources:   sources,
		delay:     delay,
		logger:    log.WithComponent("embedding-backfill"),
	}, nil
}

// Run processes every entity from every source. The configured delay is
// applied after each provider call as a shared rate-limit courtesy; entities
// whose hash matched never trigger a call and therefore never wait.
// Cancellation takes effect between entities, leaving every written record
// consistent.
func (b *Backfill) Run(ctx context.Context, force bool, since time.Time) Summary {
	var summary Summary

	for _, source := range b.sources {
		entities, err := source.ListEntities(since)
		if err != nil {
			b.logger.Error("Failed to list entities from source " + source.Name() + ": " + err.Error())
			summary.Errors = append(summary.Errors, ItemError{Err: fmt.Errorf("source %s: %w", source.Name(), err)})
			continue
		}

		b.logger.Info(fmt.Sprintf("Backfilling %d entities from source %s", len(entities), source.Name()))

		for _, entity := range entities {
			if ctx.Err() != nil {
				b.logger.Warn("Backfill cancelled, stopping between entities")
				return summary
			}

			summary.Processed++

			result, err := b.generator.Ensure(entity, force)
			switch {
			case errors.Is(err, ErrContentEmpty):
				// nothing embeddable yet, not a failure
				summary.Skipped++
			case err != nil:
				summary.Failed++
				summary.Errors = append(summary.Errors, ItemError{Entity: entity, Err: err})
				b.logger.Error("Backfill failed for " + string(entity.Kind) + " " + entity.ID.String() + ": " + err.Error())
			case result.Status == StatusSkipped:
				summary.Skipped++
			default:
				if result.Status == StatusCreated {
					summary.Created++
				} else {
					summary.Updated++
				}
				b.throttle(ctx)
			}
		}
	}

	b.logger.Info(fmt.Sprintf("Backfill complete: %d processed, %d created, %d updated, %d skipped, %d failed",
		summary.Processed, summary.Created, summary.Updated, summary.Skipped, summary.Failed))

	return summary
}

func (b *Backfill) throttle(ctx context.Context) {
	if b.delay <= 0 {
		return
	}

	select {
	case <-ctx.Done():
	case <-time.After(b.delay):
	}
}
