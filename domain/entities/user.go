package entities

import "time"

// Role determines what a user account is allowed to do
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// UserStats is the denormalized statistics snapshot kept on each account.
// It only ever reflects finalized predictions.
type UserStats struct {
	TotalPredictions      int     `json:"total_predictions"`
	SuccessPredictions    int     `json:"success_predictions"`
	ExactScorePredictions int     `json:"exact_score_predictions"`
	SuccessRate           float64 `json:"success_rate"`
	AvgOdds               float64 `json:"avg_odds"`
}

// User represents a registered account
type User struct {
	ID        string    `json:"id"`
	Pseudo    *string   `json:"pseudo,omitempty"`
	Email     *string   `json:"email,omitempty"`
	Role      Role      `json:"role"`
	Stats     UserStats `json:"stats"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// IsAdmin returns true if the account carries the admin role
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// DisplayName returns the pseudo, falling back to the email
func (u *User) DisplayName() string {
	if u.Pseudo != nil && *u.Pseudo != "" {
		return *u.Pseudo
	}
	if u.Email != nil && *u.Email != "" {
		return *u.Email
	}
	return "anonymous"
}

// ToAuthor returns the display information used in listings
func (u *User) ToAuthor(withStats bool) *Author {
	a := &Author{ID: u.ID, Pseudo: u.Pseudo, Email: u.Email}
	if withStats {
		stats := u.Stats
		a.Stats = &stats
	}
	return a
}

// Actor identifies who is performing an operation
type Actor struct {
	UserID     string
	AccessCode string
}

// Availability reports whether a pseudo and an email are already taken
type Availability struct {
	PseudoTaken bool `json:"pseudo_taken"`
	EmailTaken  bool `json:"email_taken"`
}

// UserProfile aggregates everything shown on a user's profile
type UserProfile struct {
	User      *User            `json:"user"`
	Stats     UserStats        `json:"stats"`
	OddsRange []OddsRangeStats `json:"odds_ranges"`
	Badges    []Badge          `json:"badges"`
}
