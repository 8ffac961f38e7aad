package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors shared by every layer. Gateways wrap driver failures into
// these; the REST layer maps each one to a status and error code.
var (
	ErrNotFound      = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")
	ErrValidation    = errors.New("validation error")
	ErrUnauthorized  = errors.New("unauthorized")
	ErrForbidden     = errors.New("forbidden")
	ErrConflict      = errors.New("conflict")
	ErrTransient     = errors.New("transient infrastructure error")
	ErrGeneration    = errors.New("qr generation failed")
)

// FieldError is one rejected input field.
type FieldError struct {
	Field   string
	Message string
}

// ValidationError carries every rejected field of one request. It matches
// ErrValidation.
type ValidationError struct {
	Errors []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Errors))
	for _, fe := range e.Errors {
		parts = append(parts, fe.Field+": "+fe.Message)
	}
	return "validation: " + strings.Join(parts, "; ")
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// Has reports whether field was rejected.
func (e *ValidationError) Has(field string) bool {
	for _, fe := range e.Errors {
		if fe.Field == field {
			return true
		}
	}
	return false
}

// NewValidationError rejects a single field.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Errors: []FieldError{{Field: field, Message: message}}}
}

// TransitionError reports a request the donation state graph does not allow,
// e.g. delivering a pending donation. It matches ErrConflict.
type TransitionError struct {
	Action string
	From   DisplayStatus
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("cannot %s a %s donation", e.Action, e.From)
}

func (e *TransitionError) Unwrap() error { return ErrConflict }
