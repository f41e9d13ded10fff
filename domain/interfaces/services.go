package interfaces

import (
	"context"
	"time"

	"tipster/domain/entities"
)

// PredictionService defines the prediction lifecycle operations
type PredictionService interface {
	// SubmitPrediction validates the request and stores a pending prediction
	SubmitPrediction(ctx context.Context, req *entities.SubmitPredictionRequest) (*entities.Prediction, error)

	// ValidatePrediction moves a pending prediction to active
	ValidatePrediction(ctx context.Context, predictionID string, actor entities.Actor) error

	// RejectPrediction deletes a pending prediction
	RejectPrediction(ctx context.Context, predictionID string, actor entities.Actor) error

	// SweepExpiredActive moves every active prediction whose match started before now to waiting_result
	SweepExpiredActive(ctx context.Context, now time.Time) (int, error)

	// RecordResult finalizes a prediction waiting for its result and refreshes the owner's statistics
	RecordResult(ctx context.Context, predictionID string, outcome entities.Result, actor entities.Actor) error

	// DeletePrediction removes a prediction on behalf of its owner
	DeletePrediction(ctx context.Context, predictionID, ownerID string) error

	// ListPending returns the moderation queue
	ListPending(ctx context.Context, actor entities.Actor) ([]*entities.PredictionWithAuthor, error)

	// ListWaitingResults returns predictions whose outcome must be recorded
	ListWaitingResults(ctx context.Context, actor entities.Actor) ([]*entities.PredictionWithAuthor, error)

	// ListActive returns validated predictions whose match has not started yet
	ListActive(ctx context.Context) ([]*entities.PredictionWithAuthor, error)

	// ListByUser returns every prediction of a user, newest first
	ListByUser(ctx context.Context, userID string) ([]*entities.Prediction, error)
}

// StatsService defines the read-side statistics operations
type StatsService interface {
	// GetUserStats returns the statistics snapshot of a user
	GetUserStats(ctx context.Context, userID string) (*entities.UserStats, error)

	// GetOddsRangeBreakdown returns a user's success rate per odds bucket
	GetOddsRangeBreakdown(ctx context.Context, userID string) ([]entities.OddsRangeStats, error)

	// GetLeaderboard returns the ranked users for the given mode
	GetLeaderboard(ctx context.Context, params entities.LeaderboardParams) ([]*entities.LeaderboardEntry, error)

	// GetUserBadges returns up to three performance badges for a user
	GetUserBadges(ctx context.Context, userID string) ([]entities.Badge, error)

	// GetUserProfile returns the snapshot, breakdown and badges of a user
	GetUserProfile(ctx context.Context, userID string) (*entities.UserProfile, error)
}

// UserService defines account operations
type UserService interface {
	// Register creates an account with a pseudo, an email, or both
	Register(ctx context.Context, pseudo, email string) (*entities.User, error)

	// CheckAvailability reports whether a pseudo and an email are already taken
	CheckAvailability(ctx context.Context, pseudo, email string) (*entities.Availability, error)

	// ResolvePseudo returns the email attached to a pseudo
	ResolvePseudo(ctx context.Context, pseudo string) (string, error)

	// SetEmail attaches an email to an account
	SetEmail(ctx context.Context, userID, email string) error
}

// ModerationPolicy decides whether an actor may perform moderator actions
type ModerationPolicy interface {
	CanModerate(ctx context.Context, actor entities.Actor) (bool, error)
}
