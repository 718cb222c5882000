package services

import (
	"errors"
	"fmt"
	"strings"
)

// Common service errors
var (
	ErrNotFound         = errors.New("application not found")
	ErrIdentityMismatch = errors.New("approver email does not match the signed-in user")
	ErrAlreadyFinalized = errors.New("application has already been finalized")
	ErrUnauthorized     = errors.New("not authorized")
	ErrValidation       = errors.New("validation failed")
	ErrConfiguration    = errors.New("approver configuration missing")
)

// FieldError is one violated input constraint
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError lists every violated field of one request
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return ErrValidation.Error()
	}
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+": "+f.Message)
	}
	return ErrValidation.Error() + ": " + strings.Join(parts, "; ")
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// Add records a violation
func (e *ValidationError) Add(field, message string) {
	e.Fields = append(e.Fields, FieldError{Field: field, Message: message})
}

// OrNil returns e when at least one violation was recorded
func (e *ValidationError) OrNil() error {
	if len(e.Fields) == 0 {
		return nil
	}
	return e
}

func validationError(field, message string) error {
	return &ValidationError{Fields: []FieldError{{Field: field, Message: message}}}
}

// AuthorizationError names who is expected to act at the current stage
type AuthorizationError struct {
	Role  string
	Email string
}

func (e *AuthorizationError) Error() string {
	if e.Email == "" {
		return fmt.Sprintf("only the %s can act on this application", e.Role)
	}
	return fmt.Sprintf("only the %s (%s) can act on this application", e.Role, e.Email)
}

func (e *AuthorizationError) Is(target error) bool { return target == ErrUnauthorized }

// ConfigurationError reports a role with no resolvable approver email
type ConfigurationError struct {
	Role string
	Key  string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("no email configured for %s %q, contact the system administrator", e.Role, e.Key)
}

func (e *ConfigurationError) Is(target error) bool { return target == ErrConfiguration }

// stateChangedError is the race-guard flavor of ErrAlreadyFinalized
type stateChangedError struct{}

func (stateChangedError) Error() string {
	return "application state changed while the decision was being recorded, reload and try again"
}

func (stateChangedError) Is(target error) bool { return target == ErrAlreadyFinalized }

// ErrStateChanged is returned when a concurrent decision won the optimistic guard
var ErrStateChanged error = stateChangedError{}
