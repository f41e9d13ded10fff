package application

import (
	"context"

	"tipster/domain/events"
)

// ModeratorNotifier tells moderators about predictions waiting for validation.
// It keeps the application layer independent of the chat platform.
type ModeratorNotifier interface {
	// NotifyPendingPrediction announces a freshly submitted prediction
	NotifyPendingPrediction(ctx context.Context, event events.PredictionSubmittedEvent) error
}
