package infrastructure

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"tipster/domain/events"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memoryBus delivers published messages synchronously to subscribers of the same subject
type memoryBus struct {
	mu          sync.Mutex
	published   map[string][][]byte
	handlers    map[string]func([]byte) error
	publishErr  error
	deliveryErr []error
}

func newMemoryBus() *memoryBus {
	return &memoryBus{
		published: make(map[string][][]byte),
		handlers:  make(map[string]func([]byte) error),
	}
}

func (b *memoryBus) Publish(ctx context.Context, subject string, data []byte) error {
	if b.publishErr != nil {
		return b.publishErr
	}
	b.mu.Lock()
	b.published[subject] = append(b.published[subject], data)
	handler := b.handlers[subject]
	b.mu.Unlock()

	if handler != nil {
		if err := handler(data); err != nil {
			b.mu.Lock()
			b.deliveryErr = append(b.deliveryErr, err)
			b.mu.Unlock()
		}
	}
	return nil
}

func (b *memoryBus) Subscribe(subject string, handler func([]byte) error) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[subject] = handler
	return nil
}

func TestNATSEventPublisher_Envelope(t *testing.T) {
	bus := newMemoryBus()
	publisher := NewNATSEventPublisher(bus, NewEventSubjectMapper())

	event := events.PredictionResolvedEvent{PredictionID: "p-1", UserID: "u-1", Result: "success"}
	require.NoError(t, publisher.Publish(event))

	messages := bus.published["predictions.resolved"]
	require.Len(t, messages, 1)

	var envelope EventEnvelope
	require.NoError(t, json.Unmarshal(messages[0], &envelope))
	assert.NotEmpty(t, envelope.EventID)
	assert.Equal(t, "prediction_resolved", envelope.EventType)
	assert.Equal(t, "tipster", envelope.SourceService)
	assert.False(t, envelope.Timestamp.IsZero())

	var payload events.PredictionResolvedEvent
	require.NoError(t, json.Unmarshal(envelope.Payload, &payload))
	assert.Equal(t, event, payload)
}

func TestNATSEventPublisher_LocalHandlers(t *testing.T) {
	bus := newMemoryBus()
	publisher := NewNATSEventPublisher(bus, NewEventSubjectMapper())

	var received []events.Event
	publisher.RegisterLocalHandler(events.EventTypePredictionDeleted, func(ctx context.Context, e events.Event) error {
		received = append(received, e)
		return errors.New("handler failure does not block the broker")
	})

	event := events.PredictionDeletedEvent{PredictionID: "p-2", UserID: "u-1"}
	require.NoError(t, publisher.Publish(event))
	require.NoError(t, publisher.Publish(events.PredictionValidatedEvent{PredictionID: "p-3"}))

	assert.Equal(t, []events.Event{event}, received)
	assert.Len(t, bus.published["predictions.deleted"], 1)
	assert.Len(t, bus.published["predictions.validated"], 1)
}

func TestNATSEventPublisher_PublishErrors(t *testing.T) {
	t.Run("broker error is returned", func(t *testing.T) {
		bus := newMemoryBus()
		bus.publishErr = errors.New("connection refused")
		publisher := NewNATSEventPublisher(bus, NewEventSubjectMapper())

		assert.Error(t, publisher.Publish(events.PredictionValidatedEvent{PredictionID: "p"}))
	})

	t.Run("missing stream is tolerated", func(t *testing.T) {
		bus := newMemoryBus()
		bus.publishErr = errors.New("nats: no response from stream")
		publisher := NewNATSEventPublisher(bus, NewEventSubjectMapper())

		assert.NoError(t, publisher.Publish(events.PredictionValidatedEvent{PredictionID: "p"}))
	})
}

func TestNATSEventSubscriber_RoundTrip(t *testing.T) {
	bus := newMemoryBus()
	mapper := NewEventSubjectMapper()
	publisher := NewNATSEventPublisher(bus, mapper)
	subscriber := NewNATSEventSubscriber(bus, mapper)

	var received []events.Event
	require.NoError(t, subscriber.Subscribe(events.EventTypePredictionSubmitted, func(ctx context.Context, e events.Event) error {
		received = append(received, e)
		return nil
	}))

	score := "2-0"
	event := events.PredictionSubmittedEvent{
		PredictionID:   "p-1",
		UserID:         "u-1",
		AuthorName:     "Zizou",
		Sport:          "football",
		Competition:    "FRA_L1",
		MatchName:      "PSG - OM",
		MatchDate:      "2025-03-10",
		MatchTime:      "21:00",
		Odds:           1.85,
		PredictionText: "PSG wins",
		ProbableScore:  &score,
	}
	require.NoError(t, publisher.Publish(event))

	require.Len(t, received, 1)
	assert.Equal(t, event, received[0], "handlers receive value events")
	assert.Empty(t, bus.deliveryErr)
}

func TestNATSEventSubscriber_HandleMessageErrors(t *testing.T) {
	subscriber := NewNATSEventSubscriber(newMemoryBus(), NewEventSubjectMapper())

	t.Run("malformed envelope", func(t *testing.T) {
		assert.Error(t, subscriber.handleMessage("predictions.submitted", []byte("{not json")))
	})

	t.Run("unknown event type", func(t *testing.T) {
		data, err := json.Marshal(EventEnvelope{EventType: "mystery", Payload: json.RawMessage(`{}`)})
		require.NoError(t, err)
		assert.Error(t, subscriber.handleMessage("unknown.mystery", data))
	})

	t.Run("no handler for subject", func(t *testing.T) {
		data, err := json.Marshal(EventEnvelope{EventType: "prediction_expired", Payload: json.RawMessage(`{"prediction_id":"p"}`)})
		require.NoError(t, err)
		assert.Error(t, subscriber.handleMessage("predictions.expired", data))
	})

	t.Run("handler error is returned for redelivery", func(t *testing.T) {
		require.NoError(t, subscriber.Subscribe(events.EventTypePredictionRejected, func(ctx context.Context, e events.Event) error {
			return errors.New("try again")
		}))
		data, err := json.Marshal(EventEnvelope{EventType: "prediction_rejected", Payload: json.RawMessage(`{"prediction_id":"p"}`)})
		require.NoError(t, err)
		assert.EqualError(t, subscriber.handleMessage("predictions.rejected", data), "try again")
	})
}
