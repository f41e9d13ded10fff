package repository

import (
	"context"
	"testing"
	"time"

	"tipster/domain/entities"
	"tipster/repository/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPredictionRepository_CreateAndGet(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)
	ctx := context.Background()

	users := NewUserRepository(testDB.DB)
	repo := NewPredictionRepository(testDB.DB)

	owner := testutil.CreateTestUser("owner")
	require.NoError(t, users.Create(ctx, owner))

	t.Run("not found", func(t *testing.T) {
		prediction, err := repo.GetByID(ctx, "missing")
		require.NoError(t, err)
		assert.Nil(t, prediction)
	})

	t.Run("round trip", func(t *testing.T) {
		prediction := testutil.CreateTestPrediction(owner.ID)
		score := "2-1"
		prediction.ProbableScore = &score
		require.NoError(t, repo.Create(ctx, prediction))

		stored, err := repo.GetByID(ctx, prediction.ID)
		require.NoError(t, err)
		require.NotNil(t, stored)

		assert.Equal(t, owner.ID, stored.UserID)
		assert.Equal(t, entities.SportFootball, stored.Sport)
		assert.Equal(t, "2025-03-10", stored.MatchDate)
		assert.Equal(t, "21:00", stored.MatchTime)
		assert.InDelta(t, 2.50, stored.Odds, 0.0001)
		assert.Equal(t, entities.PredictionStatusPendingValidation, stored.Status)
		assert.Nil(t, stored.Result)
		assert.Nil(t, stored.Details)
		require.NotNil(t, stored.ProbableScore)
		assert.Equal(t, "2-1", *stored.ProbableScore)
		assert.WithinDuration(t, prediction.CreatedAt, stored.CreatedAt, time.Millisecond)
	})

	t.Run("create reports the stored odds", func(t *testing.T) {
		prediction := testutil.CreateTestPrediction(owner.ID)
		prediction.Odds = 1.509
		require.NoError(t, repo.Create(ctx, prediction))
		assert.Equal(t, 1.51, prediction.Odds)

		stored, err := repo.GetByID(ctx, prediction.ID)
		require.NoError(t, err)
		assert.Equal(t, stored.Odds, prediction.Odds)
	})

	t.Run("unknown owner is rejected", func(t *testing.T) {
		err := repo.Create(ctx, testutil.CreateTestPrediction("ghost"))
		assert.Error(t, err)
	})

	t.Run("status and result must agree", func(t *testing.T) {
		prediction := testutil.CreateTestPrediction(owner.ID)
		result := entities.ResultSuccess
		prediction.Result = &result
		err := repo.Create(ctx, prediction)
		assert.Error(t, err)
	})
}

func TestPredictionRepository_ConditionalWrites(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)
	ctx := context.Background()

	users := NewUserRepository(testDB.DB)
	repo := NewPredictionRepository(testDB.DB)

	owner := testutil.CreateTestUser("owner")
	require.NoError(t, users.Create(ctx, owner))

	t.Run("transition only from the expected status", func(t *testing.T) {
		prediction := testutil.CreateTestPrediction(owner.ID)
		require.NoError(t, repo.Create(ctx, prediction))

		ok, err := repo.TransitionStatus(ctx, prediction.ID, entities.PredictionStatusActive, entities.PredictionStatusWaitingResult)
		require.NoError(t, err)
		assert.False(t, ok)

		ok, err = repo.TransitionStatus(ctx, prediction.ID, entities.PredictionStatusPendingValidation, entities.PredictionStatusActive)
		require.NoError(t, err)
		assert.True(t, ok)

		ok, err = repo.TransitionStatus(ctx, prediction.ID, entities.PredictionStatusPendingValidation, entities.PredictionStatusActive)
		require.NoError(t, err)
		assert.False(t, ok, "second transition must not match")
	})

	t.Run("finalize sets status and result together", func(t *testing.T) {
		prediction := testutil.CreateTestPredictionWithStatus(owner.ID, entities.PredictionStatusWaitingResult)
		require.NoError(t, repo.Create(ctx, prediction))

		ok, err := repo.Finalize(ctx, prediction.ID, entities.ResultExactSuccess)
		require.NoError(t, err)
		assert.True(t, ok)

		stored, err := repo.GetByID(ctx, prediction.ID)
		require.NoError(t, err)
		assert.Equal(t, entities.PredictionStatusExactSuccess, stored.Status)
		require.NotNil(t, stored.Result)
		assert.Equal(t, entities.ResultExactSuccess, *stored.Result)

		ok, err = repo.Finalize(ctx, prediction.ID, entities.ResultFailed)
		require.NoError(t, err)
		assert.False(t, ok, "finalized predictions are immutable")
	})

	t.Run("finalize requires waiting_result", func(t *testing.T) {
		prediction := testutil.CreateTestPredictionWithStatus(owner.ID, entities.PredictionStatusActive)
		require.NoError(t, repo.Create(ctx, prediction))

		ok, err := repo.Finalize(ctx, prediction.ID, entities.ResultSuccess)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("delete with status", func(t *testing.T) {
		prediction := testutil.CreateTestPrediction(owner.ID)
		require.NoError(t, repo.Create(ctx, prediction))

		ok, err := repo.DeleteWithStatus(ctx, prediction.ID, entities.PredictionStatusActive)
		require.NoError(t, err)
		assert.False(t, ok)

		ok, err = repo.DeleteWithStatus(ctx, prediction.ID, entities.PredictionStatusPendingValidation)
		require.NoError(t, err)
		assert.True(t, ok)

		stored, err := repo.GetByID(ctx, prediction.ID)
		require.NoError(t, err)
		assert.Nil(t, stored)
	})

	t.Run("delete skips finalized predictions", func(t *testing.T) {
		finalized := testutil.CreateTestPredictionWithStatus(owner.ID, entities.PredictionStatusSuccess)
		require.NoError(t, repo.Create(ctx, finalized))

		ok, err := repo.Delete(ctx, finalized.ID)
		require.NoError(t, err)
		assert.False(t, ok)

		active := testutil.CreateTestPredictionWithStatus(owner.ID, entities.PredictionStatusActive)
		require.NoError(t, repo.Create(ctx, active))

		ok, err = repo.Delete(ctx, active.ID)
		require.NoError(t, err)
		assert.True(t, ok)
	})
}

func TestPredictionRepository_List(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)
	ctx := context.Background()

	users := NewUserRepository(testDB.DB)
	repo := NewPredictionRepository(testDB.DB)

	alice := testutil.CreateTestUser("alice")
	bob := testutil.CreateTestUser("bob")
	require.NoError(t, users.Create(ctx, alice))
	require.NoError(t, users.Create(ctx, bob))

	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	create := func(userID string, status entities.PredictionStatus, date, clock string, odds float64, sport entities.Sport, score *string, age time.Duration) *entities.Prediction {
		p := testutil.CreateTestPredictionWithStatus(userID, status)
		p.MatchDate = date
		p.MatchTime = clock
		p.Odds = odds
		p.Sport = sport
		p.ProbableScore = score
		p.CreatedAt = base.Add(-age)
		require.NoError(t, repo.Create(ctx, p))
		return p
	}
	score := "1-0"

	late := create(alice.ID, entities.PredictionStatusActive, "2025-03-12", "21:00", 1.50, entities.SportFootball, nil, time.Hour)
	early := create(alice.ID, entities.PredictionStatusActive, "2025-03-11", "18:30", 1.51, entities.SportRugby, nil, 2*time.Hour)
	sameDayLater := create(bob.ID, entities.PredictionStatusActive, "2025-03-11", "20:00", 5.00, entities.SportFootball, nil, 3*time.Hour)
	won := create(bob.ID, entities.PredictionStatusSuccess, "2025-03-01", "15:00", 999, entities.SportFootball, &score, 4*time.Hour)
	lost := create(alice.ID, entities.PredictionStatusFailed, "2025-02-20", "15:00", 1000, entities.SportHandball, &score, 5*time.Hour)
	pending := create(alice.ID, entities.PredictionStatusPendingValidation, "2025-03-20", "15:00", 3.0, entities.SportFootball, nil, 0)

	ids := func(predictions []*entities.Prediction) []string {
		out := make([]string, len(predictions))
		for i, p := range predictions {
			out[i] = p.ID
		}
		return out
	}

	t.Run("active ordered by schedule", func(t *testing.T) {
		predictions, err := repo.List(ctx, entities.PredictionFilter{
			Statuses: []entities.PredictionStatus{entities.PredictionStatusActive},
			OrderBy:  entities.OrderScheduleAsc,
		})
		require.NoError(t, err)
		assert.Equal(t, []string{early.ID, sameDayLater.ID, late.ID}, ids(predictions))
	})

	t.Run("user predictions newest first", func(t *testing.T) {
		uid := alice.ID
		predictions, err := repo.List(ctx, entities.PredictionFilter{UserID: &uid})
		require.NoError(t, err)
		assert.Equal(t, []string{pending.ID, late.ID, early.ID, lost.ID}, ids(predictions))
	})

	t.Run("finalized within odds bounds", func(t *testing.T) {
		min, max := 5.01, 999.0
		predictions, err := repo.List(ctx, entities.PredictionFilter{
			Statuses: entities.FinalizedStatuses,
			OddsMin:  &min,
			OddsMax:  &max,
		})
		require.NoError(t, err)
		assert.Equal(t, []string{won.ID}, ids(predictions))
	})

	t.Run("sport and probable score", func(t *testing.T) {
		sport := entities.SportHandball
		predictions, err := repo.List(ctx, entities.PredictionFilter{Sport: &sport, WithProbableScore: true})
		require.NoError(t, err)
		assert.Equal(t, []string{lost.ID}, ids(predictions))
	})

	t.Run("date range and limit", func(t *testing.T) {
		from, to := "2025-03-01", "2025-03-12"
		predictions, err := repo.List(ctx, entities.PredictionFilter{
			DateFrom: &from,
			DateTo:   &to,
			OrderBy:  entities.OrderScheduleDesc,
			Limit:    2,
		})
		require.NoError(t, err)
		assert.Equal(t, []string{late.ID, sameDayLater.ID}, ids(predictions))
	})
}
