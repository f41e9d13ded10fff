package infrastructure

import (
	"context"
	"fmt"
	"sync"

	"tipster/domain/events"
	"tipster/infrastructure/observability"

	log "github.com/sirupsen/logrus"
)

// NATSEventSubscriber consumes enveloped events and hands them to one handler per subject
type NATSEventSubscriber struct {
	bus      MessageBus
	subjects *EventSubjectMapper

	mu     sync.RWMutex
	routes map[string]LocalHandler
}

func NewNATSEventSubscriber(bus MessageBus, subjectMapper *EventSubjectMapper) *NATSEventSubscriber {
	return &NATSEventSubscriber{
		bus:      bus,
		subjects: subjectMapper,
		routes:   make(map[string]LocalHandler),
	}
}

// Subscribe routes events of the given type to handler through a durable consumer
func (s *NATSEventSubscriber) Subscribe(eventType events.EventType, handler func(context.Context, events.Event) error) error {
	subject := s.subjects.MapEventTypeToSubject(eventType)

	s.mu.Lock()
	s.routes[subject] = handler
	s.mu.Unlock()

	if err := s.bus.Subscribe(subject, func(data []byte) error {
		return s.handleMessage(subject, data)
	}); err != nil {
		return fmt.Errorf("failed to subscribe to %s: %w", eventType, err)
	}
	return nil
}

// handleMessage decodes one delivery; a returned error asks the broker to redeliver
func (s *NATSEventSubscriber) handleMessage(subject string, data []byte) error {
	logger := log.WithField("subject", subject)

	envelope, event, err := openEnvelope(data)
	if envelope.EventType != "" {
		observability.GetMetrics().RecordNATSMessageReceived(envelope.EventType)
		logger = logger.WithFields(log.Fields{
			"event_id":   envelope.EventID,
			"event_type": envelope.EventType,
		})
	}
	if err != nil {
		logger.WithError(err).Error("Discarding undecodable event")
		return err
	}

	s.mu.RLock()
	handle, ok := s.routes[subject]
	s.mu.RUnlock()
	if !ok {
		logger.Warn("No handler for subject")
		return fmt.Errorf("no handler registered for subject %s", subject)
	}

	if err := handle(context.Background(), event); err != nil {
		logger.WithError(err).Error("Event handler failed")
		return err
	}
	logger.Debug("Event handled")
	return nil
}
