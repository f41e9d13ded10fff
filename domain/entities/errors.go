package entities

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Reason tags a guard violation so callers can render a precise message
type Reason string

const (
	ReasonNotFound              Reason = "not_found"
	ReasonForbidden             Reason = "forbidden"
	ReasonInvalidOutcome        Reason = "invalid_outcome"
	ReasonTooRecent             Reason = "too_recent"
	ReasonCannotDeleteFinalized Reason = "cannot_delete_finalized"
	ReasonEmailInUse            Reason = "email_in_use"
	ReasonPseudoInUse           Reason = "pseudo_in_use"
)

// GuardViolation is returned when an operation is not allowed in the current state.
// Missing rows and rows in the wrong state are both reported as not_found.
type GuardViolation struct {
	Reason  Reason
	Message string
}

// NewGuardViolation creates a guard violation with the given reason
func NewGuardViolation(reason Reason, message string) *GuardViolation {
	return &GuardViolation{Reason: reason, Message: message}
}

// ErrNotFound creates a not_found guard violation
func ErrNotFound(what string) *GuardViolation {
	return NewGuardViolation(ReasonNotFound, fmt.Sprintf("%s not found or already processed", what))
}

// ErrForbidden creates a forbidden guard violation
func ErrForbidden(message string) *GuardViolation {
	return NewGuardViolation(ReasonForbidden, message)
}

func (e *GuardViolation) Error() string {
	if e.Message == "" {
		return string(e.Reason)
	}
	return fmt.Sprintf("%s: %s", e.Reason, e.Message)
}

// IsReason reports whether err is a guard violation with the given reason
func IsReason(err error, reason Reason) bool {
	var gv *GuardViolation
	if errors.As(err, &gv) {
		return gv.Reason == reason
	}
	return false
}

// ValidationError reports a malformed request, keyed by field name
type ValidationError struct {
	Fields map[string]string
}

// NewValidationError creates a validation error for a single field
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: message}}
}

// Add records a message for a field, keeping the first one
func (e *ValidationError) Add(field, message string) {
	if e.Fields == nil {
		e.Fields = make(map[string]string)
	}
	if _, exists := e.Fields[field]; !exists {
		e.Fields[field] = message
	}
}

// HasErrors returns true if any field failed validation
func (e *ValidationError) HasErrors() bool {
	return len(e.Fields) > 0
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, e.Fields[k]))
	}
	return "invalid payload: " + strings.Join(parts, "; ")
}

// IsValidationError reports whether err is a validation error
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
