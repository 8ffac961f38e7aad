package domain

import (
	"errors"
	"fmt"
	"testing"
)

func TestValidationError_SingleField(t *testing.T) {
	t.Parallel()

	err := NewValidationError("title", "required")

	if got := err.Error(); got != "validation: title: required" {
		t.Fatalf("unexpected Error(): %q", got)
	}
	if !errors.Is(err, ErrValidation) {
		t.Fatal("errors.Is(err, ErrValidation) = false")
	}
}

func TestValidationError_MultipleFields(t *testing.T) {
	t.Parallel()

	err := &ValidationError{Errors: []FieldError{
		{Field: "title", Message: "required"},
		{Field: "photo_urls", Message: "at least 2 required"},
	}}

	if got := err.Error(); got != "validation: title: required; photo_urls: at least 2 required" {
		t.Fatalf("unexpected Error(): %q", got)
	}
	if !errors.Is(err, ErrValidation) {
		t.Fatal("errors.Is(err, ErrValidation) = false")
	}
	if !err.Has("photo_urls") || err.Has("categories") {
		t.Fatalf("Has() mismatch for %v", err.Errors)
	}
}

func TestTransitionError_IsConflict(t *testing.T) {
	t.Parallel()

	err := fmt.Errorf("deliver d-1: %w", &TransitionError{Action: "deliver", From: DisplayStatusPending})

	if !errors.Is(err, ErrConflict) {
		t.Fatal("TransitionError should match ErrConflict")
	}
	var te *TransitionError
	if !errors.As(err, &te) {
		t.Fatal("errors.As should find TransitionError")
	}
	if te.Error() != "cannot deliver a pending donation" {
		t.Errorf("unexpected Error(): %q", te.Error())
	}
}

func TestSentinelErrors_AreDistinct(t *testing.T) {
	t.Parallel()

	sentinels := []error{
		ErrNotFound, ErrAlreadyExists, ErrValidation,
		ErrUnauthorized, ErrForbidden, ErrConflict,
		ErrTransient, ErrGeneration,
	}
	for i, a := range sentinels {
		for j, b := range sentinels {
			if i != j && errors.Is(a, b) {
				t.Errorf("sentinel errors %d and %d should not match", i, j)
			}
		}
	}
}
