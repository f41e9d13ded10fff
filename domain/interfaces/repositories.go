package interfaces

import (
	"context"

	"tipster/domain/entities"
	"tipster/domain/events"
)

// PredictionRepository defines the interface for prediction data access.
// Missing rows are reported as (nil, nil); conditional writes report whether a row matched.
type PredictionRepository interface {
	// Create inserts a new prediction, filling ID and CreatedAt when empty
	Create(ctx context.Context, prediction *entities.Prediction) error

	// GetByID retrieves a prediction by its ID
	GetByID(ctx context.Context, id string) (*entities.Prediction, error)

	// List returns predictions matching the filter
	List(ctx context.Context, filter entities.PredictionFilter) ([]*entities.Prediction, error)

	// TransitionStatus moves a prediction from one status to another if it is still in the from status
	TransitionStatus(ctx context.Context, id string, from, to entities.PredictionStatus) (bool, error)

	// Finalize records the outcome of a prediction still waiting for its result
	Finalize(ctx context.Context, id string, outcome entities.Result) (bool, error)

	// DeleteWithStatus deletes a prediction only while it has the given status
	DeleteWithStatus(ctx context.Context, id string, status entities.PredictionStatus) (bool, error)

	// Delete removes a prediction unless it has been finalized
	Delete(ctx context.Context, id string) (bool, error)
}

// UserRepository defines the interface for user account data access
type UserRepository interface {
	// Create inserts a new account, filling ID and timestamps when empty
	Create(ctx context.Context, user *entities.User) error

	// GetByID retrieves an account by its ID
	GetByID(ctx context.Context, id string) (*entities.User, error)

	// GetByIDForUpdate retrieves an account and locks its row until the transaction ends.
	// Stats recomputations for the same owner are serialized on this lock.
	GetByIDForUpdate(ctx context.Context, id string) (*entities.User, error)

	// GetByIDs retrieves several accounts; unknown IDs are skipped
	GetByIDs(ctx context.Context, ids []string) ([]*entities.User, error)

	// GetByPseudo retrieves an account by pseudo, case-insensitively
	GetByPseudo(ctx context.Context, pseudo string) (*entities.User, error)

	// GetByEmail retrieves an account by email, case-insensitively
	GetByEmail(ctx context.Context, email string) (*entities.User, error)

	// ListRanked returns every account with at least one finalized prediction
	ListRanked(ctx context.Context) ([]*entities.User, error)

	// UpdateStats replaces the statistics snapshot of an account
	UpdateStats(ctx context.Context, userID string, stats entities.UserStats) error

	// UpdateEmail sets the email of an account, returning false if the account does not exist
	UpdateEmail(ctx context.Context, userID, email string) (bool, error)
}

// EventPublisher defines the interface for publishing events
type EventPublisher interface {
	Publish(event events.Event) error
}

// TransactionalEventPublisher holds events until the surrounding transaction completes
type TransactionalEventPublisher interface {
	EventPublisher
	Flush(ctx context.Context) error
	Discard()
}

// EventSubscriber registers handlers for domain events
type EventSubscriber interface {
	Subscribe(eventType events.EventType, handler func(context.Context, events.Event) error) error
}
