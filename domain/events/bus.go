package events

import (
	"context"
	"fmt"
	"sync"

	log "github.com/sirupsen/logrus"
)

// Handler reacts to one published event
type Handler func(ctx context.Context, event Event) error

// Bus is the in-process publisher and subscriber used when no broker is configured.
// Delivery is synchronous, in subscription order.
type Bus struct {
	mu     sync.RWMutex
	routes map[EventType][]Handler
}

func NewBus() *Bus {
	return &Bus{routes: make(map[EventType][]Handler)}
}

func (b *Bus) Subscribe(eventType EventType, handler func(context.Context, Event) error) error {
	b.mu.Lock()
	b.routes[eventType] = append(b.routes[eventType], handler)
	b.mu.Unlock()
	return nil
}

// Publish calls every handler of the event's type. A failing or panicking
// handler is logged and the remaining handlers still run; Publish never fails.
func (b *Bus) Publish(event Event) error {
	b.mu.RLock()
	handlers := append([]Handler(nil), b.routes[event.Type()]...)
	b.mu.RUnlock()

	ctx := context.Background()
	for i, handle := range handlers {
		if err := invoke(ctx, handle, event); err != nil {
			log.WithError(err).WithFields(log.Fields{
				"event_type": event.Type(),
				"handler":    i,
			}).Error("Event handler failed")
		}
	}
	return nil
}

func invoke(ctx context.Context, handle Handler, event Event) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("handler panicked: %v", r)
		}
	}()
	return handle(ctx, event)
}
