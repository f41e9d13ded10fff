package application

import (
	"tipster/domain/events"
	"tipster/domain/interfaces"
)

// RegisterApplicationSubscriptions registers all application-level event subscriptions
func RegisterApplicationSubscriptions(subscriber interfaces.EventSubscriber, notifier ModeratorNotifier) error {
	if notifier == nil {
		return nil
	}

	handler := NewPredictionNotificationHandler(notifier)
	return subscriber.Subscribe(events.EventTypePredictionSubmitted, handler.HandlePredictionSubmitted)
}
