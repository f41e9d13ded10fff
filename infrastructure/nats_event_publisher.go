package infrastructure

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"tipster/domain/events"
	"tipster/infrastructure/observability"

	log "github.com/sirupsen/logrus"
)

// LocalHandler reacts to an event in the publishing process
type LocalHandler func(context.Context, events.Event) error

// NATSEventPublisher sends domain events to JetStream after running in-process handlers
type NATSEventPublisher struct {
	bus      MessageBus
	subjects *EventSubjectMapper

	mu    sync.RWMutex
	local map[events.EventType][]LocalHandler
}

func NewNATSEventPublisher(bus MessageBus, subjectMapper *EventSubjectMapper) *NATSEventPublisher {
	return &NATSEventPublisher{
		bus:      bus,
		subjects: subjectMapper,
		local:    make(map[events.EventType][]LocalHandler),
	}
}

// Publish runs local handlers, then stores the enveloped event on its subject.
// Local handler failures are logged and never stop the broker publish.
func (p *NATSEventPublisher) Publish(event events.Event) error {
	ctx := context.Background()
	p.runLocal(ctx, event)

	envelope, data, err := sealEvent(event)
	if err != nil {
		return err
	}

	subject := p.subjects.MapEventToSubject(event)
	if err := p.bus.Publish(ctx, subject, data); err != nil {
		// No stream listens on the subject: nobody is subscribed, the event is dropped
		if strings.Contains(err.Error(), "no response from stream") {
			log.WithField("subject", subject).Debug("No stream bound to subject, event dropped")
			return nil
		}
		return fmt.Errorf("failed to publish %s to %s: %w", envelope.EventType, subject, err)
	}

	observability.GetMetrics().RecordNATSMessagePublished(envelope.EventType)
	log.WithFields(log.Fields{
		"event_id":   envelope.EventID,
		"event_type": envelope.EventType,
		"subject":    subject,
	}).Debug("Event published")
	return nil
}

func (p *NATSEventPublisher) runLocal(ctx context.Context, event events.Event) {
	p.mu.RLock()
	handlers := p.local[event.Type()]
	p.mu.RUnlock()

	for _, handle := range handlers {
		if err := handle(ctx, event); err != nil {
			log.WithError(err).WithField("event_type", event.Type()).Error("Local event handler failed")
		}
	}
}

// RegisterLocalHandler adds an in-process handler for one event type
func (p *NATSEventPublisher) RegisterLocalHandler(eventType events.EventType, handler func(context.Context, events.Event) error) {
	p.mu.Lock()
	p.local[eventType] = append(p.local[eventType], handler)
	p.mu.Unlock()
	log.WithField("event_type", eventType).Debug("Local event handler registered")
}

// EnsureEventStream creates the event stream covering every mapped subject
func EnsureEventStream(client *NATSClient, subjectMapper *EventSubjectMapper) error {
	return client.EnsureStream(EventStreamName, subjectMapper.GetAllSubjects())
}
