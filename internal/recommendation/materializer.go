package recommendation

import (
	"fmt"
	"math"
	"strconv"

	"github.com/mlee/socialnet-backend/config"
	"github.com/mlee/socialnet-backend/pkg/logger"
	"github.com/google/uuid"
)

// Materializer computes and persists a user's top-N recommendation list.
// Candidates the user already dismissed or accepted stay excluded forever;
// everything else gets its score refreshed and its status reset to
// generated on each run. Records that fall out of the new top-N are left
// alone (accumulation, not replacement).
type Materializer struct {
	embeddings EmbeddingReader
	repo       Repository
	ranker     *Ranker
	algorithm  string
	topN       int
	logger     *logger.Logger
}

// NewMaterializer creates a materializer with validation and defaults
func NewMaterializer(cfg *config.RecommendationConfig, embeddings EmbeddingReader, repo Repository, ranker *Ranker, log *logger.Logger) (*Materializer, error) {
	algorithm := "cosine-v1"
	if cfg != nil && cfg.AlgorithmVersion != "" {
		algorithm = cfg.AlgorithmVersion
	}

	topN := 10
	if cfg != nil && cfg.TopN != "" {
		value, err := strconv.Atoi(cfg.TopN)
		if err != nil || value < 1 {
			return nil, fmt.Errorf("invalid recommendation top N '%s'", cfg.TopN)
		}
		topN = value
	}

	return &Materializer{
		embeddings: embeddings,
		repo:       repo,
		ranker:     ranker,
		algorithm:  algorithm,
		topN:       topN,
		logger:     log.WithComponent("recommendation-materializer"),
	}, nil
}

// Materialize ranks all other users' embeddings against the source user and
// upserts the top-N as recommendation records. Returns the number of records
// written. Fails with ErrNoEmbedding (and writes nothing) when the source
// user has no vector yet.
func (m *Materializer) Materialize(sourceUserID uuid.UUID, topN int) (int, error) {
	if topN < 1 {
		topN = m.topN
	}

	source, err := m.embeddings.UserVector(sourceUserID)
	if err != nil {
		return 0, fmt.Errorf("failed to load source embedding: %w", err)
	}
	if source == nil {
		return 0, ErrNoEmbedding
	}

	terminal, err := m.repo.TerminalCandidateIDs(sourceUserID)
	if err != nil {
		return 0, fmt.Errorf("failed to load terminal recommendations: %w", err)
	}

	candidates, err := m.embeddings.UserCandidates()
	if err != nil {
		return 0, fmt.Errorf("failed to load candidate embeddings: %w", err)
	}

	exclude := make(map[uuid.UUID]struct{}, len(terminal)+1)
	exclude[sourceUserID] = struct{}{}
	for id := range terminal {
		exclude[id] = struct{}{}
	}

	// no score floor and no freshness tie-break here: user embeddings carry
	// no content timestamp, so ordering is by score alone
	ranked := m.ranker.Rank(source, candidates, RankOptions{
		Exclude:  exclude,
		K:        topN,
		MinScore: math.Inf(-1),
	})

	processed := 0
	for _, entry := range ranked {
		record := &Record{
			SourceUserID:    sourceUserID,
			CandidateUserID: entry.ID,
			SimilarityScore: entry.Score,
			Status:          StatusGenerated,
			Context:         map[string]string{"algorithm": m.algorithm},
		}

		if err := m.repo.Upsert(record); err != nil {
			return processed, fmt.Errorf("failed to upsert recommendation for candidate %s: %w", entry.ID, err)
		}
		processed++
	}

	m.logger.Info(fmt.Sprintf("Materialized %d recommendations for user %s", processed, sourceUserID))

	return processed, nil
}
