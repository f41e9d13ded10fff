package services

import (
	"context"
	"fmt"

	"tipster/domain/entities"
	"tipster/domain/interfaces"
)

type statsService struct {
	predictionRepo interfaces.PredictionRepository
	userRepo       interfaces.UserRepository
}

// NewStatsService creates a new statistics service
func NewStatsService(predictionRepo interfaces.PredictionRepository, userRepo interfaces.UserRepository) interfaces.StatsService {
	return &statsService{
		predictionRepo: predictionRepo,
		userRepo:       userRepo,
	}
}

// GetUserStats returns the stored statistics snapshot of a user
func (s *statsService) GetUserStats(ctx context.Context, userID string) (*entities.UserStats, error) {
	user, err := s.getUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	stats := user.Stats
	return &stats, nil
}

// GetOddsRangeBreakdown returns a user's finalized predictions grouped by odds bucket
func (s *statsService) GetOddsRangeBreakdown(ctx context.Context, userID string) ([]entities.OddsRangeStats, error) {
	if _, err := s.getUser(ctx, userID); err != nil {
		return nil, err
	}
	finalized, err := s.finalizedForUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return ComputeOddsRangeBreakdown(finalized), nil
}

// GetLeaderboard returns the ranked users for the given mode
func (s *statsService) GetLeaderboard(ctx context.Context, params entities.LeaderboardParams) ([]*entities.LeaderboardEntry, error) {
	users, err := s.userRepo.ListRanked(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list ranked users: %w", err)
	}

	var predictions []*entities.Prediction
	filter, recompute := leaderboardFilter(params)
	if recompute {
		predictions, err = s.predictionRepo.List(ctx, filter)
		if err != nil {
			return nil, fmt.Errorf("failed to list predictions for %s leaderboard: %w", params.Mode, err)
		}
	}

	return BuildLeaderboard(users, predictions, params), nil
}

// leaderboardFilter narrows the finalized predictions a filtered mode needs.
// BuildLeaderboard applies the same predicate again, so the filter only limits what is loaded.
func leaderboardFilter(params entities.LeaderboardParams) (entities.PredictionFilter, bool) {
	filter := entities.PredictionFilter{Statuses: entities.FinalizedStatuses}

	switch params.Mode {
	case entities.LeaderboardModeOddsRange:
		bounds, ok := params.OddsRange.Bounds()
		if !ok {
			return filter, true
		}
		filter.OddsMin = &bounds.Min
		filter.OddsMax = &bounds.Max
		return filter, true
	case entities.LeaderboardModeSport:
		if params.Sport == nil {
			return filter, false
		}
		sport := *params.Sport
		filter.Sport = &sport
		return filter, true
	case entities.LeaderboardModeExactScores:
		filter.WithProbableScore = true
		return filter, true
	}
	return filter, false
}

// GetUserBadges returns up to three performance badges for a user
func (s *statsService) GetUserBadges(ctx context.Context, userID string) ([]entities.Badge, error) {
	user, err := s.getUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return BuildPerformanceBadges(user.Stats), nil
}

// GetUserProfile returns the snapshot, odds breakdown and badges of a user
func (s *statsService) GetUserProfile(ctx context.Context, userID string) (*entities.UserProfile, error) {
	user, err := s.getUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	finalized, err := s.finalizedForUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &entities.UserProfile{
		User:      user,
		Stats:     user.Stats,
		OddsRange: ComputeOddsRangeBreakdown(finalized),
		Badges:    BuildPerformanceBadges(user.Stats),
	}, nil
}

func (s *statsService) getUser(ctx context.Context, userID string) (*entities.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user %s: %w", userID, err)
	}
	if user == nil {
		return nil, entities.ErrNotFound("user")
	}
	return user, nil
}

func (s *statsService) finalizedForUser(ctx context.Context, userID string) ([]*entities.Prediction, error) {
	uid := userID
	predictions, err := s.predictionRepo.List(ctx, entities.PredictionFilter{
		UserID:   &uid,
		Statuses: entities.FinalizedStatuses,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list finalized predictions for user %s: %w", userID, err)
	}
	return predictions, nil
}
