package application

import (
	"context"
	"errors"
	"testing"

	"tipster/domain/events"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockNotifier struct {
	mock.Mock
}

func (m *mockNotifier) NotifyPendingPrediction(ctx context.Context, event events.PredictionSubmittedEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func TestPredictionNotificationHandler(t *testing.T) {
	event := events.PredictionSubmittedEvent{PredictionID: "p-1", UserID: "u-1", MatchName: "PSG - OM"}

	t.Run("value and pointer events", func(t *testing.T) {
		notifier := new(mockNotifier)
		notifier.On("NotifyPendingPrediction", mock.Anything, event).Return(nil).Twice()
		handler := NewPredictionNotificationHandler(notifier)

		require.NoError(t, handler.HandlePredictionSubmitted(context.Background(), event))
		require.NoError(t, handler.HandlePredictionSubmitted(context.Background(), &event))
		notifier.AssertExpectations(t)
	})

	t.Run("notifier failure is returned", func(t *testing.T) {
		notifier := new(mockNotifier)
		notifier.On("NotifyPendingPrediction", mock.Anything, event).Return(errors.New("webhook down"))

		err := NewPredictionNotificationHandler(notifier).HandlePredictionSubmitted(context.Background(), event)
		assert.ErrorContains(t, err, "webhook down")
	})

	t.Run("unexpected event", func(t *testing.T) {
		notifier := new(mockNotifier)
		err := NewPredictionNotificationHandler(notifier).HandlePredictionSubmitted(context.Background(), events.PredictionValidatedEvent{})
		assert.Error(t, err)
		notifier.AssertNotCalled(t, "NotifyPendingPrediction", mock.Anything, mock.Anything)
	})
}

func TestRegisterApplicationSubscriptions(t *testing.T) {
	bus := events.NewBus()
	notifier := new(mockNotifier)
	notifier.On("NotifyPendingPrediction", mock.Anything, mock.Anything).Return(nil).Once()

	require.NoError(t, RegisterApplicationSubscriptions(bus, notifier))
	require.NoError(t, bus.Publish(events.PredictionSubmittedEvent{PredictionID: "p-9"}))
	require.NoError(t, bus.Publish(events.PredictionValidatedEvent{PredictionID: "p-9"}))

	notifier.AssertExpectations(t)

	assert.NoError(t, RegisterApplicationSubscriptions(bus, nil))
}
