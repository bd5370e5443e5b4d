package recommendation

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/mlee/socialnet-backend/config"
	"github.com/mlee/socialnet-backend/pkg/logger"
	"github.com/google/uuid"
)

// service implements the Service interface
type service struct {
	embeddings   EmbeddingReader
	repo         Repository
	social       SocialReader
	ranker       *Ranker
	materializer *Materializer
	minScore     float64
	logger       *logger.Logger
}

// NewService creates a recommendation service with validation and defaults
func NewService(cfg *config.RecommendationConfig, embeddings EmbeddingReader, repo Repository, social SocialReader, ranker *Ranker, materializer *Materializer, log *logger.Logger) (Service, error) {
	minScore := 0.0
	if cfg != nil && cfg.MinScore != "" {
		value, err := strconv.ParseFloat(cfg.MinScore, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid recommendation min score '%s': %v", cfg.MinScore, err)
		}
		minScore = value
	}

	return &service{
		embeddings:   embeddings,
		repo:         repo,
		social:       social,
		ranker:       ranker,
		materializer: materializer,
		minScore:     minScore,
		logger:       log.WithComponent("recommendation-service"),
	}, nil
}

func (s *service) GetUserRecommendations(userID uuid.UUID, limit int) ([]*RecommendedUser, error) {
	limit = clampLimit(limit)

	source, err := s.embeddings.UserVector(userID)
	if err != nil {
		s.logger.Error("Failed to load embedding for user " + userID.String() + ": " + err.Error())
		return nil, err
	}

	if source == nil {
		s.logger.Info("No embedding for user " + userID.String() + ", falling back to recent users")
		return s.recommendRecentUsers(userID, limit)
	}

	exclude, err := s.userExclusions(userID)
	if err != nil {
		return nil, err
	}

	candidates, err := s.embeddings.UserCandidates()
	if err != nil {
		s.logger.Error("Failed to load user candidates: " + err.Error())
		return nil, err
	}

	ranked := s.ranker.Rank(source, candidates, RankOptions{
		Exclude:  exclude,
		K:        limit,
		MinScore: s.minScore,
	})

	if len(ranked) == 0 {
		s.logger.Info("No similar users for " + userID.String() + ", falling back to recent users")
		return s.recommendRecentUsers(userID, limit)
	}

	recommendations := make([]*RecommendedUser, 0, len(ranked))
	for _, entry := range ranked {
		recommendations = append(recommendations, &RecommendedUser{
			UserID: entry.ID,
			Score:  entry.Score,
			Reason: "Similar profile",
		})
	}

	s.logger.Info(fmt.Sprintf("Generated %d user recommendations for %s", len(recommendations), userID))

	return recommendations, nil
}

func (s *service) GetPostRecommendations(userID uuid.UUID, limit int) ([]*RecommendedPost, error) {
	limit = clampLimit(limit)

	source, err := s.embeddings.UserVector(userID)
	if err != nil {
		s.logger.Error("Failed to load embedding for user " + userID.String() + ": " + err.Error())
		return nil, err
	}

	pool, err := s.embeddings.PostCandidates()
	if err != nil {
		s.logger.Error("Failed to load post candidates: " + err.Error())
		return nil, err
	}

	result := s.ranker.RecommendPosts(source, pool, userID, s.minScore, limit)
	if result.Insufficient {
		s.logger.Info("Insufficient similarity signal for user " + userID.String() + ", falling back to recent posts")
		return s.recommendRecentPosts(userID, limit)
	}

	recommendations := make([]*RecommendedPost, 0, len(result.Items))
	for _, entry := range result.Items {
		recommendations = append(recommendations, &RecommendedPost{
			PostID: entry.ID,
			Score:  entry.Score,
			Reason: "Similar to your profile",
		})
	}

	return recommendations, nil
}

func (s *service) Refresh(userID uuid.UUID) (int, error) {
	return s.materializer.Materialize(userID, 0)
}

// RefreshAll re-materializes recommendations for every user with an
// embedding. Individual failures are logged and skipped.
func (s *service) RefreshAll() error {
	candidates, err := s.embeddings.UserCandidates()
	if err != nil {
		return fmt.Errorf("failed to list users with embeddings: %w", err)
	}

	failures := 0
	for _, candidate := range candidates {
		if _, err := s.materializer.Materialize(candidate.ID, 0); err != nil {
			failures++
			s.logger.Error("Failed to refresh recommendations for user " + candidate.ID.String() + ": " + err.Error())
		}
	}

	s.logger.Info(fmt.Sprintf("Refreshed recommendations for %d users (%d failures)", len(candidates)-failures, failures))

	return nil
}

func (s *service) UpdateStatus(sourceUserID, candidateUserID uuid.UUID, status Status) error {
	if !status.Valid() {
		return fmt.Errorf("invalid status '%s'", status)
	}

	record, err := s.repo.Find(sourceUserID, candidateUserID)
	if err != nil {
		return err
	}
	if record == nil {
		return errors.New("recommendation not found")
	}

	if !record.Status.CanTransitionTo(status) {
		return fmt.Errorf("cannot transition recommendation from '%s' to '%s'", record.Status, status)
	}

	return s.repo.UpdateStatus(sourceUserID, candidateUserID, status)
}

// userExclusions collects the candidate ids never shown to this user:
// the user itself, terminal recommendations, and existing connections.
func (s *service) userExclusions(userID uuid.UUID) (map[uuid.UUID]struct{}, error) {
	terminal, err := s.repo.TerminalCandidateIDs(userID)
	if err != nil {
		s.logger.Error("Failed to load terminal recommendations for " + userID.String() + ": " + err.Error())
		return nil, err
	}

	connected, err := s.social.ConnectedUserIDs(userID)
	if err != nil {
		s.logger.Error("Failed to load connections for " + userID.String() + ": " + err.Error())
		return nil, err
	}

	exclude := make(map[uuid.UUID]struct{}, len(terminal)+len(connected)+1)
	exclude[userID] = struct{}{}
	for id := range terminal {
		exclude[id] = struct{}{}
	}
	for id := range connected {
		exclude[id] = struct{}{}
	}

	return exclude, nil
}

func (s *service) recommendRecentUsers(userID uuid.UUID, limit int) ([]*RecommendedUser, error) {
	exclude, err := s.userExclusions(userID)
	if err != nil {
		return nil, err
	}

	recent, err := s.social.RecentUserIDs(limit+len(exclude), userID)
	if err != nil {
		s.logger.Error("Failed to load recent users: " + err.Error())
		return nil, err
	}

	recommendations := make([]*RecommendedUser, 0, limit)
	for _, id := range recent {
		if _, skip := exclude[id]; skip {
			continue
		}

		recommendations = append(recommendations, &RecommendedUser{
			UserID: id,
			Reason: "Recently joined (no similarity signal yet)",
		})

		if len(recommendations) >= limit {
			break
		}
	}

	return recommendations, nil
}

func (s *service) recommendRecentPosts(userID uuid.UUID, limit int) ([]*RecommendedPost, error) {
	recent, err := s.social.RecentPostIDs(limit, userID)
	if err != nil {
		s.logger.Error("Failed to load recent posts: " + err.Error())
		return nil, err
	}

	recommendations := make([]*RecommendedPost, 0, len(recent))
	for _, id := range recent {
		recommendations = append(recommendations, &RecommendedPost{
			PostID: id,
			Reason: "Recently posted (no similarity signal yet)",
		})
	}

	return recommendations, nil
}

func clampLimit(limit int) int {
	if limit < 1 {
		return 10
	}
	if limit > 100 {
		return 100
	}
	return limit
}
