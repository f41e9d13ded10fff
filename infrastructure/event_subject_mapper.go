package infrastructure

import (
	"fmt"

	"tipster/domain/events"
)

var subjectsByEventType = map[events.EventType]string{
	events.EventTypePredictionSubmitted: "predictions.submitted",
	events.EventTypePredictionValidated: "predictions.validated",
	events.EventTypePredictionRejected:  "predictions.rejected",
	events.EventTypePredictionExpired:   "predictions.expired",
	events.EventTypePredictionResolved:  "predictions.resolved",
	events.EventTypePredictionDeleted:   "predictions.deleted",
	events.EventTypeUserStatsRecomputed: "users.stats_recomputed",
}

// EventSubjectMapper handles mapping between domain events and NATS subjects
type EventSubjectMapper struct{}

// NewEventSubjectMapper creates a new event subject mapper
func NewEventSubjectMapper() *EventSubjectMapper {
	return &EventSubjectMapper{}
}

// MapEventToSubject converts a domain event to its corresponding NATS subject
func (m *EventSubjectMapper) MapEventToSubject(event events.Event) string {
	return m.MapEventTypeToSubject(event.Type())
}

// MapEventTypeToSubject converts an event type to its NATS subject
func (m *EventSubjectMapper) MapEventTypeToSubject(eventType events.EventType) string {
	if subject, ok := subjectsByEventType[eventType]; ok {
		return subject
	}
	return fmt.Sprintf("unknown.%s", eventType)
}

// MapSubjectToEventType converts a NATS subject back to an event type
func (m *EventSubjectMapper) MapSubjectToEventType(subject string) events.EventType {
	for eventType, s := range subjectsByEventType {
		if s == subject {
			return eventType
		}
	}
	return events.EventType(subject)
}

// GetAllSubjects returns all subjects that this service publishes to
func (m *EventSubjectMapper) GetAllSubjects() []string {
	return []string{
		"predictions.submitted",
		"predictions.validated",
		"predictions.rejected",
		"predictions.expired",
		"predictions.resolved",
		"predictions.deleted",
		"users.stats_recomputed",
	}
}
