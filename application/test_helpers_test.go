package application

import (
	"context"
	"errors"

	"tipster/domain/events"
	"tipster/domain/interfaces"
	"tipster/domain/testhelpers"
)

// memoryUnitOfWork runs against shared in-memory repositories and buffers events until commit
type memoryUnitOfWork struct {
	factory  *memoryUnitOfWorkFactory
	started  bool
	finished bool
	pending  []events.Event
}

func (u *memoryUnitOfWork) Begin(ctx context.Context) error {
	if u.factory.beginErr != nil {
		return u.factory.beginErr
	}
	u.started = true
	return nil
}

func (u *memoryUnitOfWork) Commit() error {
	if !u.started || u.finished {
		return errors.New("no transaction to commit")
	}
	u.finished = true
	u.factory.commits++
	for _, e := range u.pending {
		_ = u.factory.publisher.Publish(e)
	}
	u.pending = nil
	return nil
}

func (u *memoryUnitOfWork) Rollback() error {
	if !u.started || u.finished {
		return nil
	}
	u.finished = true
	u.factory.rollbacks++
	u.pending = nil
	return nil
}

func (u *memoryUnitOfWork) PredictionRepository() interfaces.PredictionRepository {
	return u.factory.predictions
}

func (u *memoryUnitOfWork) UserRepository() interfaces.UserRepository {
	return u.factory.users
}

func (u *memoryUnitOfWork) EventBus() interfaces.EventPublisher {
	return publisherFunc(func(e events.Event) error {
		u.pending = append(u.pending, e)
		return nil
	})
}

type publisherFunc func(events.Event) error

func (f publisherFunc) Publish(e events.Event) error { return f(e) }

type memoryUnitOfWorkFactory struct {
	predictions *testhelpers.MemoryPredictionRepository
	users       *testhelpers.MemoryUserRepository
	publisher   *testhelpers.RecordingPublisher
	beginErr    error
	commits     int
	rollbacks   int
}

func newMemoryUnitOfWorkFactory() *memoryUnitOfWorkFactory {
	return &memoryUnitOfWorkFactory{
		predictions: testhelpers.NewMemoryPredictionRepository(),
		users:       testhelpers.NewMemoryUserRepository(),
		publisher:   &testhelpers.RecordingPublisher{},
	}
}

func (f *memoryUnitOfWorkFactory) Create() UnitOfWork {
	return &memoryUnitOfWork{factory: f}
}
