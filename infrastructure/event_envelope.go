package infrastructure

import (
	"encoding/json"
	"fmt"
	"time"

	"tipster/domain/events"

	"github.com/google/uuid"
)

const envelopeSource = "tipster"

// EventEnvelope wraps every event published on the broker
type EventEnvelope struct {
	EventID       string          `json:"event_id"`
	EventType     string          `json:"event_type"`
	Timestamp     time.Time       `json:"timestamp"`
	SourceService string          `json:"source_service"`
	Payload       json.RawMessage `json:"payload"`
}

// payloadDecoders turn a payload back into the value type handlers switch on
var payloadDecoders = map[events.EventType]func([]byte) (events.Event, error){
	events.EventTypePredictionSubmitted: decode[events.PredictionSubmittedEvent],
	events.EventTypePredictionValidated: decode[events.PredictionValidatedEvent],
	events.EventTypePredictionRejected:  decode[events.PredictionRejectedEvent],
	events.EventTypePredictionExpired:   decode[events.PredictionExpiredEvent],
	events.EventTypePredictionResolved:  decode[events.PredictionResolvedEvent],
	events.EventTypePredictionDeleted:   decode[events.PredictionDeletedEvent],
	events.EventTypeUserStatsRecomputed: decode[events.UserStatsRecomputedEvent],
}

func decode[T events.Event](payload []byte) (events.Event, error) {
	var event T
	if err := json.Unmarshal(payload, &event); err != nil {
		return nil, err
	}
	return event, nil
}

// sealEvent serializes an event inside a fresh envelope
func sealEvent(event events.Event) (EventEnvelope, []byte, error) {
	payload, err := json.Marshal(event)
	if err != nil {
		return EventEnvelope{}, nil, fmt.Errorf("failed to marshal %s payload: %w", event.Type(), err)
	}

	envelope := EventEnvelope{
		EventID:       uuid.NewString(),
		EventType:     string(event.Type()),
		Timestamp:     time.Now().UTC(),
		SourceService: envelopeSource,
		Payload:       payload,
	}
	data, err := json.Marshal(envelope)
	if err != nil {
		return EventEnvelope{}, nil, fmt.Errorf("failed to marshal envelope: %w", err)
	}
	return envelope, data, nil
}

// openEnvelope parses broker bytes and decodes the carried event
func openEnvelope(data []byte) (EventEnvelope, events.Event, error) {
	var envelope EventEnvelope
	if err := json.Unmarshal(data, &envelope); err != nil {
		return envelope, nil, fmt.Errorf("failed to unmarshal event envelope: %w", err)
	}

	decoder, ok := payloadDecoders[events.EventType(envelope.EventType)]
	if !ok {
		return envelope, nil, fmt.Errorf("unknown event type: %s", envelope.EventType)
	}
	event, err := decoder(envelope.Payload)
	if err != nil {
		return envelope, nil, fmt.Errorf("failed to decode %s payload: %w", envelope.EventType, err)
	}
	return envelope, event, nil
}
