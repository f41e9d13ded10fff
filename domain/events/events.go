package events

// EventType represents different types of events in the system
type EventType string

const (
	EventTypePredictionSubmitted EventType = "prediction_submitted"
	EventTypePredictionValidated EventType = "prediction_validated"
	EventTypePredictionRejected  EventType = "prediction_rejected"
	EventTypePredictionExpired   EventType = "prediction_expired"
	EventTypePredictionResolved  EventType = "prediction_resolved"
	EventTypePredictionDeleted   EventType = "prediction_deleted"
	EventTypeUserStatsRecomputed EventType = "user_stats_recomputed"
)

// Event is the base interface for all events
type Event interface {
	Type() EventType
}

// PredictionSubmittedEvent is published when a user submits a new prediction
type PredictionSubmittedEvent struct {
	PredictionID   string  `json:"prediction_id"`
	UserID         string  `json:"user_id"`
	AuthorName     string  `json:"author_name"`
	Sport          string  `json:"sport"`
	Competition    string  `json:"competition"`
	MatchName      string  `json:"match_name"`
	MatchDate      string  `json:"match_date"`
	MatchTime      string  `json:"match_time"`
	Odds           float64 `json:"odds"`
	PredictionText string  `json:"prediction_text"`
	ProbableScore  *string `json:"probable_score,omitempty"`
	Details        *string `json:"details,omitempty"`
}

func (e PredictionSubmittedEvent) Type() EventType {
	return EventTypePredictionSubmitted
}

// PredictionValidatedEvent is published when a moderator accepts a prediction
type PredictionValidatedEvent struct {
	PredictionID string `json:"prediction_id"`
	ModeratorID  string `json:"moderator_id,omitempty"`
}

func (e PredictionValidatedEvent) Type() EventType {
	return EventTypePredictionValidated
}

// PredictionRejectedEvent is published when a moderator rejects (deletes) a prediction
type PredictionRejectedEvent struct {
	PredictionID string `json:"prediction_id"`
	ModeratorID  string `json:"moderator_id,omitempty"`
}

func (e PredictionRejectedEvent) Type() EventType {
	return EventTypePredictionRejected
}

// PredictionExpiredEvent is published when the sweep moves a started match to waiting_result
type PredictionExpiredEvent struct {
	PredictionID string `json:"prediction_id"`
	UserID       string `json:"user_id"`
}

func (e PredictionExpiredEvent) Type() EventType {
	return EventTypePredictionExpired
}

// PredictionResolvedEvent is published when a moderator records an outcome
type PredictionResolvedEvent struct {
	PredictionID string `json:"prediction_id"`
	UserID       string `json:"user_id"`
	Result       string `json:"result"`
	ModeratorID  string `json:"moderator_id,omitempty"`
}

func (e PredictionResolvedEvent) Type() EventType {
	return EventTypePredictionResolved
}

// PredictionDeletedEvent is published when an owner deletes a prediction
type PredictionDeletedEvent struct {
	PredictionID string `json:"prediction_id"`
	UserID       string `json:"user_id"`
}

func (e PredictionDeletedEvent) Type() EventType {
	return EventTypePredictionDeleted
}

// UserStatsRecomputedEvent carries a user's refreshed statistics snapshot
type UserStatsRecomputedEvent struct {
	UserID                string  `json:"user_id"`
	TotalPredictions      int     `json:"total_predictions"`
	SuccessPredictions    int     `json:"success_predictions"`
	ExactScorePredictions int     `json:"exact_score_predictions"`
	SuccessRate           float64 `json:"success_rate"`
	AvgOdds               float64 `json:"avg_odds"`
}

func (e UserStatsRecomputedEvent) Type() EventType {
	return EventTypeUserStatsRecomputed
}
