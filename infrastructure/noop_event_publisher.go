package infrastructure

import (
	"tipster/domain/events"
)

// NoopEventPublisher is an event publisher that does nothing.
// Used by one-shot CLI commands where nobody listens for events.
type NoopEventPublisher struct{}

// NewNoopEventPublisher creates a new no-op event publisher
func NewNoopEventPublisher() *NoopEventPublisher {
	return &NoopEventPublisher{}
}

// Publish does nothing with the event
func (n *NoopEventPublisher) Publish(event events.Event) error {
	return nil
}
