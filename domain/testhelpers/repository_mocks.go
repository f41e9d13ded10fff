package testhelpers

import (
	"context"

	"tipster/domain/entities"
	"tipster/domain/events"

	"github.com/stretchr/testify/mock"
)

// MockPredictionRepository is a mock implementation of PredictionRepository
type MockPredictionRepository struct {
	mock.Mock
}

func (m *MockPredictionRepository) Create(ctx context.Context, prediction *entities.Prediction) error {
	args := m.Called(ctx, prediction)
	return args.Error(0)
}

func (m *MockPredictionRepository) GetByID(ctx context.Context, id string) (*entities.Prediction, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Prediction), args.Error(1)
}

func (m *MockPredictionRepository) List(ctx context.Context, filter entities.PredictionFilter) ([]*entities.Prediction, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Prediction), args.Error(1)
}

func (m *MockPredictionRepository) TransitionStatus(ctx context.Context, id string, from, to entities.PredictionStatus) (bool, error) {
	args := m.Called(ctx, id, from, to)
	return args.Bool(0), args.Error(1)
}

func (m *MockPredictionRepository) Finalize(ctx context.Context, id string, outcome entities.Result) (bool, error) {
	args := m.Called(ctx, id, outcome)
	return args.Bool(0), args.Error(1)
}

func (m *MockPredictionRepository) DeleteWithStatus(ctx context.Context, id string, status entities.PredictionStatus) (bool, error) {
	args := m.Called(ctx, id, status)
	return args.Bool(0), args.Error(1)
}

func (m *MockPredictionRepository) Delete(ctx context.Context, id string) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

// MockUserRepository is a mock implementation of UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *entities.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) GetByID(ctx context.Context, id string) (*entities.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.User), args.Error(1)
}

func (m *MockUserRepository) GetByIDs(ctx context.Context, ids []string) ([]*entities.User, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.User), args.Error(1)
}

func (m *MockUserRepository) GetByPseudo(ctx context.Context, pseudo string) (*entities.User, error) {
	args := m.Called(ctx, pseudo)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.User), args.Error(1)
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*entities.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.User), args.Error(1)
}

func (m *MockUserRepository) GetByIDForUpdate(ctx context.Context, id string) (*entities.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.User), args.Error(1)
}

func (m *MockUserRepository) ListRanked(ctx context.Context) ([]*entities.User, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.User), args.Error(1)
}

func (m *MockUserRepository) UpdateStats(ctx context.Context, userID string, stats entities.UserStats) error {
	args := m.Called(ctx, userID, stats)
	return args.Error(0)
}

func (m *MockUserRepository) UpdateEmail(ctx context.Context, userID, email string) (bool, error) {
	args := m.Called(ctx, userID, email)
	return args.Bool(0), args.Error(1)
}

// MockEventPublisher is a mock implementation of EventPublisher
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(event events.Event) error {
	args := m.Called(event)
	return args.Error(0)
}

// MockModerationPolicy is a mock implementation of ModerationPolicy
type MockModerationPolicy struct {
	mock.Mock
}

func (m *MockModerationPolicy) CanModerate(ctx context.Context, actor entities.Actor) (bool, error) {
	args := m.Called(ctx, actor)
	return args.Bool(0), args.Error(1)
}

// AllowModeration returns a policy that accepts every actor
func AllowModeration() *MockModerationPolicy {
	p := new(MockModerationPolicy)
	p.On("CanModerate", mock.Anything, mock.Anything).Return(true, nil)
	return p
}

// DenyModeration returns a policy that rejects every actor
func DenyModeration() *MockModerationPolicy {
	p := new(MockModerationPolicy)
	p.On("CanModerate", mock.Anything, mock.Anything).Return(false, nil)
	return p
}
