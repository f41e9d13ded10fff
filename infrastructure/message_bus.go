package infrastructure

import (
	"context"
)

// MessageBus is the broker surface the event publisher and subscriber rely on
type MessageBus interface {
	// Publish publishes a message to the specified subject
	Publish(ctx context.Context, subject string, data []byte) error

	// Subscribe registers a durable handler for messages on the specified subject
	Subscribe(subject string, handler func([]byte) error) error
}
