package repository

import (
	"context"
	"errors"
	"fmt"

	"tipster/application"
	"tipster/database"
	"tipster/domain/interfaces"

	"github.com/jackc/pgx/v5"
	log "github.com/sirupsen/logrus"
)

// UnitOfWorkFactory opens transactional units of work on the pool
type UnitOfWorkFactory struct {
	db *database.DB
}

func NewUnitOfWorkFactory(db *database.DB) *UnitOfWorkFactory {
	return &UnitOfWorkFactory{db: db}
}

// CreateWithPublisher returns a unit of work whose events are held by events
// until the transaction commits, and dropped if it rolls back
func (f *UnitOfWorkFactory) CreateWithPublisher(events interfaces.TransactionalEventPublisher) application.UnitOfWork {
	return &unitOfWork{db: f.db, events: events}
}

// txScope is the state of an open transaction
type txScope struct {
	ctx         context.Context
	tx          pgx.Tx
	predictions interfaces.PredictionRepository
	users       interfaces.UserRepository
}

type unitOfWork struct {
	db     *database.DB
	events interfaces.TransactionalEventPublisher
	scope  *txScope
}

func (u *unitOfWork) Begin(ctx context.Context) error {
	if u.scope != nil {
		return errors.New("unit of work already begun")
	}
	tx, err := u.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	u.scope = &txScope{
		ctx:         ctx,
		tx:          tx,
		predictions: newPredictionRepository(tx),
		users:       newUserRepository(tx),
	}
	return nil
}

// Commit commits, then flushes held events. A flush failure is logged only:
// the state change is already durable.
func (u *unitOfWork) Commit() error {
	scope := u.scope
	if scope == nil {
		return errors.New("commit without an open transaction")
	}
	u.scope = nil

	if err := scope.tx.Commit(scope.ctx); err != nil {
		u.discardEvents()
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	if u.events != nil {
		if err := u.events.Flush(scope.ctx); err != nil {
			log.WithError(err).Error("Committed but could not publish events")
		}
	}
	return nil
}

// Rollback is a no-op when no transaction is open
func (u *unitOfWork) Rollback() error {
	scope := u.scope
	if scope == nil {
		return nil
	}
	u.scope = nil
	u.discardEvents()

	if err := scope.tx.Rollback(scope.ctx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
		return fmt.Errorf("failed to roll back transaction: %w", err)
	}
	return nil
}

func (u *unitOfWork) discardEvents() {
	if u.events != nil {
		u.events.Discard()
	}
}

func (u *unitOfWork) open() *txScope {
	if u.scope == nil {
		panic("repository requested outside Begin/Commit")
	}
	return u.scope
}

func (u *unitOfWork) PredictionRepository() interfaces.PredictionRepository {
	return u.open().predictions
}

func (u *unitOfWork) UserRepository() interfaces.UserRepository {
	return u.open().users
}

func (u *unitOfWork) EventBus() interfaces.EventPublisher {
	if u.events == nil {
		panic("unit of work has no event publisher")
	}
	return u.events
}
