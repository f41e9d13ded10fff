package testhelpers

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"tipster/domain/entities"
	"tipster/domain/events"
)

// MemoryPredictionRepository is an in-memory PredictionRepository for scenario tests.
// Conditional writes behave like their SQL counterparts.
type MemoryPredictionRepository struct {
	mu    sync.Mutex
	rows  map[string]*entities.Prediction
	order []string
}

// NewMemoryPredictionRepository creates an empty repository
func NewMemoryPredictionRepository() *MemoryPredictionRepository {
	return &MemoryPredictionRepository{rows: make(map[string]*entities.Prediction)}
}

func clonePrediction(p *entities.Prediction) *entities.Prediction {
	c := *p
	if p.Result != nil {
		r := *p.Result
		c.Result = &r
	}
	return &c
}

func (r *MemoryPredictionRepository) Create(ctx context.Context, prediction *entities.Prediction) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if prediction.CreatedAt.IsZero() {
		prediction.CreatedAt = time.Now().UTC()
	}
	r.rows[prediction.ID] = clonePrediction(prediction)
	r.order = append(r.order, prediction.ID)
	return nil
}

// Put stores a prediction as-is, replacing any existing row
func (r *MemoryPredictionRepository) Put(prediction *entities.Prediction) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.rows[prediction.ID]; !exists {
		r.order = append(r.order, prediction.ID)
	}
	r.rows[prediction.ID] = clonePrediction(prediction)
}

func (r *MemoryPredictionRepository) GetByID(ctx context.Context, id string) (*entities.Prediction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.rows[id]
	if !ok {
		return nil, nil
	}
	return clonePrediction(p), nil
}

func (r *MemoryPredictionRepository) List(ctx context.Context, filter entities.PredictionFilter) ([]*entities.Prediction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []*entities.Prediction
	for _, id := range r.order {
		p, ok := r.rows[id]
		if !ok || !matchesFilter(p, filter) {
			continue
		}
		out = append(out, clonePrediction(p))
	}

	switch filter.OrderBy {
	case entities.OrderScheduleAsc:
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].MatchDate+" "+out[i].MatchTime < out[j].MatchDate+" "+out[j].MatchTime
		})
	case entities.OrderScheduleDesc:
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].MatchDate+" "+out[i].MatchTime > out[j].MatchDate+" "+out[j].MatchTime
		})
	default:
		sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	}

	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

func matchesFilter(p *entities.Prediction, f entities.PredictionFilter) bool {
	if len(f.Statuses) > 0 {
		found := false
		for _, s := range f.Statuses {
			if p.Status == s {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if f.UserID != nil && p.UserID != *f.UserID {
		return false
	}
	if f.Sport != nil && p.Sport != *f.Sport {
		return false
	}
	if f.DateFrom != nil && p.MatchDate < *f.DateFrom {
		return false
	}
	if f.DateTo != nil && p.MatchDate > *f.DateTo {
		return false
	}
	if f.OddsMin != nil && p.Odds < *f.OddsMin {
		return false
	}
	if f.OddsMax != nil && p.Odds > *f.OddsMax {
		return false
	}
	if f.WithProbableScore && !p.HasProbableScore() {
		return false
	}
	return true
}

func (r *MemoryPredictionRepository) TransitionStatus(ctx context.Context, id string, from, to entities.PredictionStatus) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.rows[id]
	if !ok || p.Status != from {
		return false, nil
	}
	p.Status = to
	return true, nil
}

func (r *MemoryPredictionRepository) Finalize(ctx context.Context, id string, outcome entities.Result) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.rows[id]
	if !ok {
		return false, nil
	}
	return p.Finalize(outcome), nil
}

func (r *MemoryPredictionRepository) DeleteWithStatus(ctx context.Context, id string, status entities.PredictionStatus) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.rows[id]
	if !ok || p.Status != status {
		return false, nil
	}
	delete(r.rows, id)
	return true, nil
}

func (r *MemoryPredictionRepository) Delete(ctx context.Context, id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.rows[id]
	if !ok || p.IsFinalized() {
		return false, nil
	}
	delete(r.rows, id)
	return true, nil
}

// MemoryUserRepository is an in-memory UserRepository for scenario tests
type MemoryUserRepository struct {
	mu    sync.Mutex
	users map[string]*entities.User
}

// NewMemoryUserRepository creates a repository holding the given users
func NewMemoryUserRepository(users ...*entities.User) *MemoryUserRepository {
	r := &MemoryUserRepository{users: make(map[string]*entities.User)}
	for _, u := range users {
		c := *u
		r.users[u.ID] = &c
	}
	return r
}

func (r *MemoryUserRepository) Create(ctx context.Context, user *entities.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c := *user
	r.users[user.ID] = &c
	return nil
}

func (r *MemoryUserRepository) GetByID(ctx context.Context, id string) (*entities.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, nil
	}
	c := *u
	return &c, nil
}

// GetByIDForUpdate behaves like GetByID; the memory store has no row locks
func (r *MemoryUserRepository) GetByIDForUpdate(ctx context.Context, id string) (*entities.User, error) {
	return r.GetByID(ctx, id)
}

func (r *MemoryUserRepository) GetByIDs(ctx context.Context, ids []string) ([]*entities.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entities.User
	for _, id := range ids {
		if u, ok := r.users[id]; ok {
			c := *u
			out = append(out, &c)
		}
	}
	return out, nil
}

func (r *MemoryUserRepository) find(match func(*entities.User) bool) *entities.User {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if match(u) {
			c := *u
			return &c
		}
	}
	return nil
}

func (r *MemoryUserRepository) GetByPseudo(ctx context.Context, pseudo string) (*entities.User, error) {
	return r.find(func(u *entities.User) bool {
		return u.Pseudo != nil && strings.EqualFold(*u.Pseudo, pseudo)
	}), nil
}

func (r *MemoryUserRepository) GetByEmail(ctx context.Context, email string) (*entities.User, error) {
	return r.find(func(u *entities.User) bool {
		return u.Email != nil && strings.EqualFold(*u.Email, email)
	}), nil
}

func (r *MemoryUserRepository) ListRanked(ctx context.Context) ([]*entities.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entities.User
	for _, u := range r.users {
		if u.Stats.TotalPredictions > 0 {
			c := *u
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *MemoryUserRepository) UpdateStats(ctx context.Context, userID string, stats entities.UserStats) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.users[userID]; ok {
		u.Stats = stats
	}
	return nil
}

func (r *MemoryUserRepository) UpdateEmail(ctx context.Context, userID, email string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[userID]
	if !ok {
		return false, nil
	}
	u.Email = &email
	return true, nil
}

// RecordingPublisher keeps every published event
type RecordingPublisher struct {
	mu     sync.Mutex
	Events []events.Event
}

func (p *RecordingPublisher) Publish(event events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Events = append(p.Events, event)
	return nil
}

// Types returns the types of the recorded events in publish order
func (p *RecordingPublisher) Types() []events.EventType {
	p.mu.Lock()
	defer p.mu.Unlock()
	types := make([]events.EventType, len(p.Events))
	for i, e := range p.Events {
		types[i] = e.Type()
	}
	return types
}
