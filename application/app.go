package application

import (
	"context"
	"fmt"
	"time"

	"tipster/domain/entities"
	"tipster/domain/interfaces"
	"tipster/domain/services"
	"tipster/infrastructure/observability"

	log "github.com/sirupsen/logrus"
)

var (
	_ interfaces.PredictionService = (*App)(nil)
	_ interfaces.StatsService      = (*App)(nil)
	_ interfaces.UserService       = (*App)(nil)
	_ interfaces.ModerationPolicy  = (*App)(nil)
)

// App is the application facade used by the transports.
// Writes run inside a unit of work so their events are only published after commit.
// Reads and the sweep use pool-backed repositories: the sweep promotes rows one by one
// and a failed statement must not abort the others.
type App struct {
	uowFactory     UnitOfWorkFactory
	predictionRepo interfaces.PredictionRepository
	userRepo       interfaces.UserRepository
	eventPublisher interfaces.EventPublisher
	accessCodeHash string
	lifecycle      services.PredictionServiceConfig
}

// AppConfig holds the settings the facade needs beyond its repositories
type AppConfig struct {
	AccessCodeHash string
	Lifecycle      services.PredictionServiceConfig
}

// NewApp creates the application facade
func NewApp(
	uowFactory UnitOfWorkFactory,
	predictionRepo interfaces.PredictionRepository,
	userRepo interfaces.UserRepository,
	eventPublisher interfaces.EventPublisher,
	cfg AppConfig,
) *App {
	return &App{
		uowFactory:     uowFactory,
		predictionRepo: predictionRepo,
		userRepo:       userRepo,
		eventPublisher: eventPublisher,
		accessCodeHash: cfg.AccessCodeHash,
		lifecycle:      cfg.Lifecycle,
	}
}

// predictionServiceFor binds the lifecycle service to a unit of work
func (a *App) predictionServiceFor(uow UnitOfWork) interfaces.PredictionService {
	users := uow.UserRepository()
	return services.NewPredictionService(
		uow.PredictionRepository(),
		users,
		services.NewModerationPolicy(users, a.accessCodeHash),
		uow.EventBus(),
		a.lifecycle,
	)
}

// readPredictionService is the lifecycle service over the pool-backed repositories
func (a *App) readPredictionService() interfaces.PredictionService {
	return services.NewPredictionService(
		a.predictionRepo,
		a.userRepo,
		services.NewModerationPolicy(a.userRepo, a.accessCodeHash),
		a.eventPublisher,
		a.lifecycle,
	)
}

// inUnitOfWork runs fn in a transaction, committing only when fn succeeds
func (a *App) inUnitOfWork(ctx context.Context, fn func(uow UnitOfWork) error) error {
	uow := a.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err := uow.Rollback(); err != nil {
			log.WithError(err).Error("Failed to rollback transaction")
		}
	}()

	if err := fn(uow); err != nil {
		return err
	}

	if err := uow.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// SubmitPrediction validates the request and stores a pending prediction
func (a *App) SubmitPrediction(ctx context.Context, req *entities.SubmitPredictionRequest) (*entities.Prediction, error) {
	var prediction *entities.Prediction
	err := a.inUnitOfWork(ctx, func(uow UnitOfWork) error {
		var err error
		prediction, err = a.predictionServiceFor(uow).SubmitPrediction(ctx, req)
		return err
	})
	if err != nil {
		return nil, err
	}

	observability.GetMetrics().RecordPredictionSubmitted(string(prediction.Sport))
	return prediction, nil
}

// ValidatePrediction moves a pending prediction to active
func (a *App) ValidatePrediction(ctx context.Context, predictionID string, actor entities.Actor) error {
	return a.transition(ctx, observability.TransitionValidated, func(svc interfaces.PredictionService) error {
		return svc.ValidatePrediction(ctx, predictionID, actor)
	})
}

// RejectPrediction deletes a pending prediction
func (a *App) RejectPrediction(ctx context.Context, predictionID string, actor entities.Actor) error {
	return a.transition(ctx, observability.TransitionRejected, func(svc interfaces.PredictionService) error {
		return svc.RejectPrediction(ctx, predictionID, actor)
	})
}

// RecordResult finalizes a prediction and refreshes its owner's statistics in one transaction
func (a *App) RecordResult(ctx context.Context, predictionID string, outcome entities.Result, actor entities.Actor) error {
	return a.transition(ctx, observability.TransitionResolved, func(svc interfaces.PredictionService) error {
		return svc.RecordResult(ctx, predictionID, outcome, actor)
	})
}

// DeletePrediction removes a prediction on behalf of its owner
func (a *App) DeletePrediction(ctx context.Context, predictionID, ownerID string) error {
	return a.transition(ctx, observability.TransitionDeleted, func(svc interfaces.PredictionService) error {
		return svc.DeletePrediction(ctx, predictionID, ownerID)
	})
}

func (a *App) transition(ctx context.Context, transition string, fn func(svc interfaces.PredictionService) error) error {
	err := a.inUnitOfWork(ctx, func(uow UnitOfWork) error {
		return fn(a.predictionServiceFor(uow))
	})
	if err != nil {
		return err
	}

	observability.GetMetrics().RecordTransition(transition)
	return nil
}

// SweepExpiredActive moves started matches to waiting_result
func (a *App) SweepExpiredActive(ctx context.Context, now time.Time) (int, error) {
	promoted, err := a.readPredictionService().SweepExpiredActive(ctx, now)
	if err != nil {
		observability.GetMetrics().RecordSweepFailure()
		return 0, err
	}

	metrics := observability.GetMetrics()
	metrics.RecordSweep(promoted)
	metrics.RecordTransitions(observability.TransitionExpired, promoted)
	return promoted, nil
}

// ListPending returns the moderation queue
func (a *App) ListPending(ctx context.Context, actor entities.Actor) ([]*entities.PredictionWithAuthor, error) {
	return a.readPredictionService().ListPending(ctx, actor)
}

// ListWaitingResults returns predictions whose outcome must be recorded
func (a *App) ListWaitingResults(ctx context.Context, actor entities.Actor) ([]*entities.PredictionWithAuthor, error) {
	return a.readPredictionService().ListWaitingResults(ctx, actor)
}

// ListActive returns validated predictions whose match has not started yet
func (a *App) ListActive(ctx context.Context) ([]*entities.PredictionWithAuthor, error) {
	return a.readPredictionService().ListActive(ctx)
}

// ListByUser returns every prediction of a user, newest first
func (a *App) ListByUser(ctx context.Context, userID string) ([]*entities.Prediction, error) {
	return a.readPredictionService().ListByUser(ctx, userID)
}

func (a *App) statsService() interfaces.StatsService {
	return services.NewStatsService(a.predictionRepo, a.userRepo)
}

// GetUserStats returns the statistics snapshot of a user
func (a *App) GetUserStats(ctx context.Context, userID string) (*entities.UserStats, error) {
	return a.statsService().GetUserStats(ctx, userID)
}

// GetOddsRangeBreakdown returns a user's success rate per odds bucket
func (a *App) GetOddsRangeBreakdown(ctx context.Context, userID string) ([]entities.OddsRangeStats, error) {
	return a.statsService().GetOddsRangeBreakdown(ctx, userID)
}

// GetLeaderboard returns the ranked users for the given mode
func (a *App) GetLeaderboard(ctx context.Context, params entities.LeaderboardParams) ([]*entities.LeaderboardEntry, error) {
	return a.statsService().GetLeaderboard(ctx, params)
}

// GetUserBadges returns up to three performance badges for a user
func (a *App) GetUserBadges(ctx context.Context, userID string) ([]entities.Badge, error) {
	return a.statsService().GetUserBadges(ctx, userID)
}

// GetUserProfile returns the snapshot, breakdown and badges of a user
func (a *App) GetUserProfile(ctx context.Context, userID string) (*entities.UserProfile, error) {
	return a.statsService().GetUserProfile(ctx, userID)
}

// Register creates an account with a pseudo, an email, or both
func (a *App) Register(ctx context.Context, pseudo, email string) (*entities.User, error) {
	var user *entities.User
	err := a.inUnitOfWork(ctx, func(uow UnitOfWork) error {
		var err error
		user, err = services.NewUserService(uow.UserRepository()).Register(ctx, pseudo, email)
		return err
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

// CheckAvailability reports whether a pseudo and an email are already taken
func (a *App) CheckAvailability(ctx context.Context, pseudo, email string) (*entities.Availability, error) {
	return services.NewUserService(a.userRepo).CheckAvailability(ctx, pseudo, email)
}

// ResolvePseudo returns the email attached to a pseudo
func (a *App) ResolvePseudo(ctx context.Context, pseudo string) (string, error) {
	return services.NewUserService(a.userRepo).ResolvePseudo(ctx, pseudo)
}

// SetEmail attaches an email to an account
func (a *App) SetEmail(ctx context.Context, userID, email string) error {
	return a.inUnitOfWork(ctx, func(uow UnitOfWork) error {
		return services.NewUserService(uow.UserRepository()).SetEmail(ctx, userID, email)
	})
}

// CanModerate reports whether the actor holds moderator rights
func (a *App) CanModerate(ctx context.Context, actor entities.Actor) (bool, error) {
	return services.NewModerationPolicy(a.userRepo, a.accessCodeHash).CanModerate(ctx, actor)
}
