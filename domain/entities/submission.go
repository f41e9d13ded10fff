package entities

import (
	"errors"
	"fmt"
	"math"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

// MaxOdds is the largest odds value the predictions table can store (NUMERIC(8, 2))
const MaxOdds = 999999.99

func newValidator() *validator.Validate {
	v := validator.New()
	// Report json field names so messages match the request payload
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// SubmitPredictionRequest holds the fields a user provides when submitting a prediction
type SubmitPredictionRequest struct {
	UserID         string  `json:"user_id" validate:"required"`
	Sport          string  `json:"sport" validate:"required,oneof=football handball rugby basketball"`
	Competition    string  `json:"competition" validate:"required"`
	MatchName      string  `json:"match_name" validate:"required"`
	MatchDate      string  `json:"date" validate:"required,datetime=2006-01-02"`
	MatchTime      string  `json:"time" validate:"required"`
	Odds           float64 `json:"odds" validate:"gte=1,lte=999999.99"`
	PredictionText string  `json:"prediction_text" validate:"required"`
	ProbableScore  string  `json:"probable_score,omitempty"`
	Details        string  `json:"details,omitempty"`
}

// Normalize trims every free-text field
func (r *SubmitPredictionRequest) Normalize() {
	r.UserID = strings.TrimSpace(r.UserID)
	r.Sport = strings.ToLower(strings.TrimSpace(r.Sport))
	r.Competition = strings.TrimSpace(r.Competition)
	r.MatchName = strings.TrimSpace(r.MatchName)
	r.MatchDate = strings.TrimSpace(r.MatchDate)
	r.MatchTime = strings.TrimSpace(r.MatchTime)
	r.PredictionText = strings.TrimSpace(r.PredictionText)
	r.ProbableScore = strings.TrimSpace(r.ProbableScore)
	r.Details = strings.TrimSpace(r.Details)
}

// Validate checks the request and returns a *ValidationError listing every bad field
func (r *SubmitPredictionRequest) Validate() error {
	verr := &ValidationError{}

	if err := validate.Struct(r); err != nil {
		var fieldErrs validator.ValidationErrors
		if !errors.As(err, &fieldErrs) {
			return fmt.Errorf("failed to validate prediction request: %w", err)
		}
		for _, fe := range fieldErrs {
			verr.Add(fe.Field(), describeFieldError(fe))
		}
	}

	if _, bad := verr.Fields["odds"]; !bad && !hasCentPrecision(r.Odds) {
		verr.Add("odds", "must have at most 2 decimals")
	}

	if _, bad := verr.Fields["time"]; !bad && !ValidMatchTime(r.MatchTime) {
		verr.Add("time", "must be HH:MM or HH:MM:SS")
	}

	_, badSport := verr.Fields["sport"]
	_, badCompetition := verr.Fields["competition"]
	if !badSport && !badCompetition && !IsValidCompetition(Sport(r.Sport), r.Competition) {
		verr.Add("competition", fmt.Sprintf("unknown competition %q for sport %s", r.Competition, r.Sport))
	}

	if verr.HasErrors() {
		return verr
	}
	return nil
}

// ToPrediction builds a pending prediction from a validated request
func (r *SubmitPredictionRequest) ToPrediction() *Prediction {
	p := &Prediction{
		UserID:         r.UserID,
		Sport:          Sport(r.Sport),
		Competition:    r.Competition,
		MatchName:      r.MatchName,
		MatchDate:      r.MatchDate,
		MatchTime:      r.MatchTime,
		Odds:           r.Odds,
		PredictionText: r.PredictionText,
		Status:         PredictionStatusPendingValidation,
	}
	if r.ProbableScore != "" {
		score := r.ProbableScore
		p.ProbableScore = &score
	}
	if r.Details != "" {
		details := r.Details
		p.Details = &details
	}
	return p
}

// hasCentPrecision reports whether odds are stored exactly with two decimals
func hasCentPrecision(odds float64) bool {
	cents := odds * 100
	return math.Abs(cents-math.Round(cents)) < 1e-6
}

func describeFieldError(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "oneof":
		return fmt.Sprintf("must be one of: %s", fe.Param())
	case "gte":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "lte":
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "datetime":
		return "must be a date formatted YYYY-MM-DD"
	case "email":
		return "must be a valid email address"
	default:
		return fmt.Sprintf("failed %s validation", fe.Tag())
	}
}

// ValidateEmail checks a single email address
func ValidateEmail(email string) error {
	if err := validate.Var(email, "required,email"); err != nil {
		return NewValidationError("email", "must be a valid email address")
	}
	return nil
}
