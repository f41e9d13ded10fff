package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"tipster/domain/entities"
	"tipster/domain/events"
	"tipster/domain/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var appNow = time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

func newTestApp(t *testing.T) (*App, *memoryUnitOfWorkFactory, *time.Time) {
	t.Helper()
	now := appNow
	factory := newMemoryUnitOfWorkFactory()

	admin := "moderator"
	require.NoError(t, factory.users.Create(context.Background(), &entities.User{ID: "admin", Pseudo: &admin, Role: entities.RoleAdmin}))

	app := NewApp(factory, factory.predictions, factory.users, factory.publisher, AppConfig{
		Lifecycle: services.PredictionServiceConfig{
			Location: time.UTC,
			Now:      func() time.Time { return now },
		},
	})
	return app, factory, &now
}

func submitRequest(userID string) *entities.SubmitPredictionRequest {
	return &entities.SubmitPredictionRequest{
		UserID:         userID,
		Sport:          "rugby",
		Competition:    "RUG_TOP14",
		MatchName:      "Toulouse - La Rochelle",
		MatchDate:      "2025-03-10",
		MatchTime:      "15:00",
		Odds:           1.80,
		PredictionText: "Toulouse wins",
	}
}

func TestApp_LifecycleThroughUnitsOfWork(t *testing.T) {
	ctx := context.Background()
	app, factory, now := newTestApp(t)
	moderator := entities.Actor{UserID: "admin"}

	user, err := app.Register(ctx, "Dupont", "dupont@example.com")
	require.NoError(t, err)

	prediction, err := app.SubmitPrediction(ctx, submitRequest(user.ID))
	require.NoError(t, err)
	assert.Equal(t, entities.PredictionStatusPendingValidation, prediction.Status)

	require.NoError(t, app.ValidatePrediction(ctx, prediction.ID, moderator))

	*now = appNow.Add(4 * time.Hour)
	promoted, err := app.SweepExpiredActive(ctx, *now)
	require.NoError(t, err)
	assert.Equal(t, 1, promoted)

	require.NoError(t, app.RecordResult(ctx, prediction.ID, entities.ResultSuccess, moderator))

	stats, err := app.GetUserStats(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.TotalPredictions)
	assert.Equal(t, 1, stats.SuccessPredictions)
	assert.Equal(t, 100.0, stats.SuccessRate)
	assert.InDelta(t, 1.80, stats.AvgOdds, 0.0001)

	board, err := app.GetLeaderboard(ctx, entities.LeaderboardParams{Mode: entities.LeaderboardModeGlobal})
	require.NoError(t, err)
	require.Len(t, board, 1)
	assert.Equal(t, user.ID, board[0].UserID)

	assert.Equal(t, []events.EventType{
		events.EventTypePredictionSubmitted,
		events.EventTypePredictionValidated,
		events.EventTypePredictionExpired,
		events.EventTypePredictionResolved,
		events.EventTypeUserStatsRecomputed,
	}, factory.publisher.Types())

	// register, submit, validate, result
	assert.Equal(t, 4, factory.commits)
}

func TestApp_FailedWriteRollsBackAndDropsEvents(t *testing.T) {
	ctx := context.Background()
	app, factory, _ := newTestApp(t)

	err := app.ValidatePrediction(ctx, "missing", entities.Actor{UserID: "admin"})
	assert.True(t, entities.IsReason(err, entities.ReasonNotFound))

	err = app.ValidatePrediction(ctx, "missing", entities.Actor{UserID: "stranger"})
	assert.True(t, entities.IsReason(err, entities.ReasonForbidden))

	_, err = app.SubmitPrediction(ctx, &entities.SubmitPredictionRequest{UserID: "admin"})
	assert.True(t, entities.IsValidationError(err))

	assert.Equal(t, 0, factory.commits)
	assert.Equal(t, 3, factory.rollbacks)
	assert.Empty(t, factory.publisher.Events)
}

func TestApp_BeginFailure(t *testing.T) {
	app, factory, _ := newTestApp(t)
	factory.beginErr = errors.New("database unavailable")

	err := app.DeletePrediction(context.Background(), "p-1", "admin")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "database unavailable")
}

func TestApp_DeleteRespectsGracePeriod(t *testing.T) {
	ctx := context.Background()
	app, factory, now := newTestApp(t)

	prediction, err := app.SubmitPrediction(ctx, submitRequest("admin"))
	require.NoError(t, err)

	err = app.DeletePrediction(ctx, prediction.ID, "admin")
	assert.True(t, entities.IsReason(err, entities.ReasonTooRecent))

	*now = appNow.Add(72 * time.Hour)
	require.NoError(t, app.DeletePrediction(ctx, prediction.ID, "admin"))

	stored, err := factory.predictions.GetByID(ctx, prediction.ID)
	require.NoError(t, err)
	assert.Nil(t, stored)
}

func TestApp_Accounts(t *testing.T) {
	ctx := context.Background()
	app, _, _ := newTestApp(t)

	user, err := app.Register(ctx, "Ntamack", "")
	require.NoError(t, err)

	availability, err := app.CheckAvailability(ctx, "ntamack", "romain@example.com")
	require.NoError(t, err)
	assert.True(t, availability.PseudoTaken)
	assert.False(t, availability.EmailTaken)

	require.NoError(t, app.SetEmail(ctx, user.ID, "romain@example.com"))

	email, err := app.ResolvePseudo(ctx, "NTAMACK")
	require.NoError(t, err)
	assert.Equal(t, "romain@example.com", email)

	profile, err := app.GetUserProfile(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, user.ID, profile.User.ID)
	assert.Equal(t, entities.UserStats{}, profile.Stats)
}

func TestApp_Listings(t *testing.T) {
	ctx := context.Background()
	app, _, _ := newTestApp(t)
	moderator := entities.Actor{UserID: "admin"}

	first, err := app.SubmitPrediction(ctx, submitRequest("admin"))
	require.NoError(t, err)
	_, err = app.SubmitPrediction(ctx, submitRequest("admin"))
	require.NoError(t, err)
	require.NoError(t, app.ValidatePrediction(ctx, first.ID, moderator))

	pending, err := app.ListPending(ctx, moderator)
	require.NoError(t, err)
	assert.Len(t, pending, 1)

	_, err = app.ListWaitingResults(ctx, entities.Actor{UserID: "nobody"})
	assert.True(t, entities.IsReason(err, entities.ReasonForbidden))

	active, err := app.ListActive(ctx)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, first.ID, active[0].ID)

	mine, err := app.ListByUser(ctx, "admin")
	require.NoError(t, err)
	assert.Len(t, mine, 2)
}
