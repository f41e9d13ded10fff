package entities

import (
	"fmt"
	"strings"
	"time"
)

// Sport identifies the sport a prediction is about
type Sport string

const (
	SportFootball   Sport = "football"
	SportHandball   Sport = "handball"
	SportRugby      Sport = "rugby"
	SportBasketball Sport = "basketball"
)

// Sports lists every supported sport
var Sports = []Sport{SportFootball, SportHandball, SportRugby, SportBasketball}

// IsValid returns true if the sport is one of the supported sports
func (s Sport) IsValid() bool {
	for _, sport := range Sports {
		if s == sport {
			return true
		}
	}
	return false
}

// PredictionStatus represents the lifecycle state of a prediction
type PredictionStatus string

const (
	PredictionStatusPendingValidation PredictionStatus = "pending_validation"
	PredictionStatusActive            PredictionStatus = "active"
	PredictionStatusWaitingResult     PredictionStatus = "waiting_result"
	PredictionStatusSuccess           PredictionStatus = "success"
	PredictionStatusFailed            PredictionStatus = "failed"
	PredictionStatusExactSuccess      PredictionStatus = "exact_success"
)

// FinalizedStatuses are the terminal states that count towards statistics
var FinalizedStatuses = []PredictionStatus{
	PredictionStatusSuccess,
	PredictionStatusFailed,
	PredictionStatusExactSuccess,
}

// IsFinalized returns true for terminal states
func (s PredictionStatus) IsFinalized() bool {
	switch s {
	case PredictionStatusSuccess, PredictionStatusFailed, PredictionStatusExactSuccess:
		return true
	}
	return false
}

// Result is the outcome recorded by a moderator
type Result string

const (
	ResultSuccess      Result = "success"
	ResultFailed       Result = "failed"
	ResultExactSuccess Result = "exact_success"
)

// ParseResult converts a raw outcome value into a Result
func ParseResult(value string) (Result, bool) {
	switch r := Result(strings.TrimSpace(value)); r {
	case ResultSuccess, ResultFailed, ResultExactSuccess:
		return r, true
	}
	return "", false
}

// IsWin returns true if the outcome counts as a successful prediction
func (r Result) IsWin() bool {
	return r == ResultSuccess || r == ResultExactSuccess
}

// Status returns the terminal status matching the outcome
func (r Result) Status() PredictionStatus {
	return PredictionStatus(r)
}

// Prediction represents a forecast submitted by a user
type Prediction struct {
	ID             string           `json:"id"`
	UserID         string           `json:"user_id"`
	Sport          Sport            `json:"sport"`
	Competition    string           `json:"competition"`
	MatchName      string           `json:"match_name"`
	MatchDate      string           `json:"match_date"` // YYYY-MM-DD
	MatchTime      string           `json:"match_time"` // HH:MM or HH:MM:SS
	Odds           float64          `json:"odds"`
	PredictionText string           `json:"prediction_text"`
	ProbableScore  *string          `json:"probable_score,omitempty"`
	Details        *string          `json:"details,omitempty"`
	Status         PredictionStatus `json:"status"`
	Result         *Result          `json:"result,omitempty"`
	CreatedAt      time.Time        `json:"created_at"`
}

// HasProbableScore returns true if the prediction carries a probable score
func (p *Prediction) HasProbableScore() bool {
	return p.ProbableScore != nil && strings.TrimSpace(*p.ProbableScore) != ""
}

// IsFinalized returns true once an outcome has been recorded
func (p *Prediction) IsFinalized() bool {
	return p.Status.IsFinalized()
}

// IsWin returns true if the prediction was resolved as a success or an exact hit
func (p *Prediction) IsWin() bool {
	return p.Result != nil && p.Result.IsWin()
}

// IsExactHit returns true if the prediction was resolved as an exact score
func (p *Prediction) IsExactHit() bool {
	return p.Result != nil && *p.Result == ResultExactSuccess
}

// ScheduledAt returns the instant the match starts in the given location
func (p *Prediction) ScheduledAt(loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}
	return ParseMatchSchedule(p.MatchDate, p.MatchTime, loc)
}

// Activate moves a pending prediction to active
func (p *Prediction) Activate() bool {
	if p.Status != PredictionStatusPendingValidation {
		return false
	}
	p.Status = PredictionStatusActive
	return true
}

// MarkWaitingResult moves an active prediction to waiting_result
func (p *Prediction) MarkWaitingResult() bool {
	if p.Status != PredictionStatusActive {
		return false
	}
	p.Status = PredictionStatusWaitingResult
	return true
}

// Finalize records the outcome of a prediction waiting for its result
func (p *Prediction) Finalize(outcome Result) bool {
	if p.Status != PredictionStatusWaitingResult {
		return false
	}
	r := outcome
	p.Status = outcome.Status()
	p.Result = &r
	return true
}

// CheckOutcome verifies the outcome can be recorded for this prediction
func (p *Prediction) CheckOutcome(outcome Result) error {
	if _, ok := ParseResult(string(outcome)); !ok {
		return NewGuardViolation(ReasonInvalidOutcome, fmt.Sprintf("unknown outcome %q", outcome))
	}
	if outcome == ResultExactSuccess && !p.HasProbableScore() {
		return NewGuardViolation(ReasonInvalidOutcome, "exact_success requires a probable score")
	}
	return nil
}

// CheckDeletable verifies the prediction can be removed by its owner at the given time.
// Checks run in order: ownership, grace period, finalized state.
func (p *Prediction) CheckDeletable(ownerID string, now time.Time, grace time.Duration) error {
	if p.UserID != ownerID {
		return NewGuardViolation(ReasonForbidden, "only the owner can delete a prediction")
	}
	if now.Sub(p.CreatedAt) <= grace {
		return NewGuardViolation(ReasonTooRecent, "prediction is still within its grace period")
	}
	if p.IsFinalized() {
		return NewGuardViolation(ReasonCannotDeleteFinalized, "finalized predictions cannot be deleted")
	}
	return nil
}

// ParseMatchSchedule combines a match date and time into an instant
func ParseMatchSchedule(date, clock string, loc *time.Location) (time.Time, error) {
	date = strings.TrimSpace(date)
	clock = strings.TrimSpace(clock)
	for _, layout := range []string{"2006-01-02 15:04:05", "2006-01-02 15:04"} {
		if t, err := time.ParseInLocation(layout, date+" "+clock, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid match schedule %q %q", date, clock)
}

// ValidMatchTime returns true if the value parses as HH:MM or HH:MM:SS
func ValidMatchTime(clock string) bool {
	clock = strings.TrimSpace(clock)
	for _, layout := range []string{"15:04:05", "15:04"} {
		if _, err := time.Parse(layout, clock); err == nil {
			return true
		}
	}
	return false
}

// PredictionOrder controls how listings are sorted
type PredictionOrder string

const (
	OrderCreatedDesc  PredictionOrder = "created_desc"
	OrderScheduleAsc  PredictionOrder = "schedule_asc"
	OrderScheduleDesc PredictionOrder = "schedule_desc"
)

// PredictionFilter narrows prediction listings
type PredictionFilter struct {
	Statuses          []PredictionStatus
	UserID            *string
	Sport             *Sport
	DateFrom          *string // inclusive, YYYY-MM-DD
	DateTo            *string // inclusive, YYYY-MM-DD
	OddsMin           *float64
	OddsMax           *float64
	WithProbableScore bool
	OrderBy           PredictionOrder
	Limit             int
}

// Author holds the display information of a prediction owner
type Author struct {
	ID     string     `json:"id"`
	Pseudo *string    `json:"pseudo,omitempty"`
	Email  *string    `json:"email,omitempty"`
	Stats  *UserStats `json:"stats,omitempty"`
}

// PredictionWithAuthor is a prediction joined with its owner's display info
type PredictionWithAuthor struct {
	*Prediction
	Author *Author `json:"author,omitempty"`
}
