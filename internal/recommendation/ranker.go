package recommendation

import (
	"fmt"
	"math"
	"sort"
	"strconv"

	"github.com/mlee/socialnet-backend/config"
	"github.com/mlee/socialnet-backend/internal/vectormath"
	"github.com/mlee/socialnet-backend/pkg/logger"
	"github.com/google/uuid"
)

// RankOptions controls one ranking pass. MinScore is an inclusive floor;
// pass math.Inf(-1) for no floor. K caps the result length when positive.
type RankOptions struct {
	Exclude           map[uuid.UUID]struct{}
	K                 int
	MinScore          float64
	FreshnessTieBreak bool
}

// Ranker scores candidate pools against a source vector. Candidates are
// passed in rather than fetched, which keeps the algorithm testable without
// a datastore.
type Ranker struct {
	tieEpsilon float64
	logger     *logger.Logger
}

// NewRanker creates a ranker with validation and defaults
func NewRanker(cfg *config.RecommendationConfig, log *logger.Logger) (*Ranker, error) {
	epsilon := 0.05
	if cfg != nil && cfg.TieEpsilon != "" {
		value, err := strconv.ParseFloat(cfg.TieEpsilon, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid tie epsilon '%s': %v", cfg.TieEpsilon, err)
		}
		epsilon = value
	}

	return &Ranker{
		tieEpsilon: epsilon,
		logger:     log.WithComponent("similarity-ranker"),
	}, nil
}

type scoredCandidate struct {
	candidate Candidate
	score     float64
}

// Rank filters, scores, sorts, and truncates a candidate pool. Candidates
// whose vector length mismatches the source are skipped rather than failing
// the whole pass. With FreshnessTieBreak on, scores closer than the
// configured epsilon prefer the more recent candidate.
func (r *Ranker) Rank(source []float64, candidates []Candidate, opts RankOptions) []Scored {
	scored := make([]scoredCandidate, 0, len(candidates))
	for _, candidate := range candidates {
		if _, excluded := opts.Exclude[candidate.ID]; excluded {
			continue
		}

		score, err := vectormath.CosineSimilarity(source, candidate.Vector)
		if err != nil {
			r.logger.Warn("Skipping candidate " + candidate.ID.String() + " with mismatched vector: " + err.Error())
			continue
		}

		if score < opts.MinScore {
			continue
		}

		scored = append(scored, scoredCandidate{candidate: candidate, score: score})
	}

	sorted := make([]scoredCandidate, len(scored))
	copy(sorted, scored)
	sort.SliceStable(sorted, func(i, j int) bool {
		if opts.FreshnessTieBreak && math.Abs(sorted[i].score-sorted[j].score) < r.tieEpsilon {
			return sorted[i].candidate.CreatedAt.After(sorted[j].candidate.CreatedAt)
		}
		return sorted[i].score > sorted[j].score
	})

	if opts.K > 0 && len(sorted) > opts.K {
		sorted = sorted[:opts.K]
	}

	results := make([]Scored, len(sorted))
	for i, entry := range sorted {
		results[i] = Scored{ID: entry.candidate.ID, Score: entry.score}
	}

	return results
}

// ContentResult is the tagged outcome of the content recommendation path.
// Insufficient marks the non-exceptional "not enough signal" branch, where
// callers substitute a recency-ordered listing.
type ContentResult struct {
	Items        []Scored
	Insufficient bool
}

// RecommendPosts ranks a post pool against a user's vector, excluding the
// user's own posts. The freshness tie-break applies here since every post
// candidate carries a creation timestamp.
func (r *Ranker) RecommendPosts(source []float64, pool []Candidate, excludeOwner uuid.UUID, minScore float64, k int) ContentResult {
	if len(source) == 0 || len(pool) == 0 {
		return ContentResult{Insufficient: true}
	}

	eligible := make([]Candidate, 0, len(pool))
	for _, candidate := range pool {
		if candidate.OwnerID == excludeOwner {
			continue
		}
		eligible = append(eligible, candidate)
	}

	items := r.Rank(source, eligible, RankOptions{
		K:                 k,
		MinScore:          minScore,
		FreshnessTieBreak: true,
	})

	if len(items) == 0 {
		return ContentResult{Insufficient: true}
	}

	return ContentResult{Items: items}
}
