package application

import (
	"context"
	"fmt"

	"tipster/domain/events"

	log "github.com/sirupsen/logrus"
)

// PredictionNotificationHandler forwards new submissions to the moderators
type PredictionNotificationHandler struct {
	notifier ModeratorNotifier
}

// NewPredictionNotificationHandler creates a new notification handler
func NewPredictionNotificationHandler(notifier ModeratorNotifier) *PredictionNotificationHandler {
	return &PredictionNotificationHandler{notifier: notifier}
}

// HandlePredictionSubmitted notifies moderators that a prediction awaits validation
func (h *PredictionNotificationHandler) HandlePredictionSubmitted(ctx context.Context, event events.Event) error {
	var submitted events.PredictionSubmittedEvent
	switch e := event.(type) {
	case events.PredictionSubmittedEvent:
		submitted = e
	case *events.PredictionSubmittedEvent:
		submitted = *e
	default:
		return fmt.Errorf("unexpected event type %T", event)
	}

	if err := h.notifier.NotifyPendingPrediction(ctx, submitted); err != nil {
		return fmt.Errorf("failed to notify moderators about prediction %s: %w", submitted.PredictionID, err)
	}

	log.WithFields(log.Fields{
		"predictionID": submitted.PredictionID,
		"userID":       submitted.UserID,
	}).Info("Moderators notified of pending prediction")
	return nil
}
