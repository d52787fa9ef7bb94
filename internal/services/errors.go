// Package services defines the business logic for contact submissions.
// This file centralizes service-level error values so that they can be
// consistently returned by service methods and checked by callers.
//
// Translation into user-facing messages or HTTP status codes is performed at
// the handler layer.
package services

import (
	"errors"
	"strings"
)

var (
	// ErrInvalidContact is returned when one or more required submission
	// fields are absent or empty. The concrete error is a *ValidationError
	// naming the fields.
	ErrInvalidContact = errors.New("missing required fields")

	// ErrIdempotencyConflict is returned when a concurrent request claimed
	// the same Idempotency-Key but its outcome could not be read back.
	ErrIdempotencyConflict = errors.New("idempotency key in use")
)

// ValidationError lists the required fields that were missing from a
// submission, in declaration order (name, email, service, message).
type ValidationError struct {
	Missing []string
}

// Error implements error.
func (e *ValidationError) Error() string {
	if len(e.Missing) == 0 {
		return ErrInvalidContact.Error()
	}
	return ErrInvalidContact.Error() + ": " + strings.Join(e.Missing, ", ")
}

// Is makes errors.Is(err, ErrInvalidContact) hold for any ValidationError.
func (e *ValidationError) Is(target error) bool { return target == ErrInvalidContact }
