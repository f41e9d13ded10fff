package testutil

import (
	"time"

	"tipster/domain/entities"

	"github.com/google/uuid"
)

// CreateTestUser creates an account with a pseudo and no statistics
func CreateTestUser(pseudo string) *entities.User {
	now := time.Now().UTC().Truncate(time.Microsecond)
	return &entities.User{
		ID:        uuid.NewString(),
		Pseudo:    &pseudo,
		Role:      entities.RoleUser,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// CreateTestAdmin creates an account with the admin role
func CreateTestAdmin(pseudo string) *entities.User {
	user := CreateTestUser(pseudo)
	user.Role = entities.RoleAdmin
	return user
}

// CreateTestPrediction creates a pending football prediction for the given owner
func CreateTestPrediction(userID string) *entities.Prediction {
	return &entities.Prediction{
		ID:             uuid.NewString(),
		UserID:         userID,
		Sport:          entities.SportFootball,
		Competition:    "FRA_L1",
		MatchName:      "PSG - OM",
		MatchDate:      "2025-03-10",
		MatchTime:      "21:00",
		Odds:           2.50,
		PredictionText: "PSG wins",
		Status:         entities.PredictionStatusPendingValidation,
		CreatedAt:      time.Now().UTC().Truncate(time.Microsecond),
	}
}

// CreateTestPredictionWithStatus creates a prediction in the given status.
// Finalized statuses get the matching result.
func CreateTestPredictionWithStatus(userID string, status entities.PredictionStatus) *entities.Prediction {
	prediction := CreateTestPrediction(userID)
	prediction.Status = status
	if status.IsFinalized() {
		result := entities.Result(status)
		prediction.Result = &result
	}
	return prediction
}
