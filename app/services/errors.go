package services

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound            = errors.New("not found")
	ErrConflict            = errors.New("already exists")
	ErrInsufficientAnswers = errors.New("please answer at least 3 security questions")
	ErrVerificationFailed  = errors.New("security answers did not match")
	ErrUnauthorized        = errors.New("unauthorized")
	ErrValidation          = errors.New("invalid input")
	ErrInvalidTransition   = errors.New("invalid status transition")
)

// VerificationFailedError reports how many recovery answers matched when a
// reset was refused.
type VerificationFailedError struct {
	Matches int
}

func (e *VerificationFailedError) Error() string {
	return fmt.Sprintf("verification failed! only %d matched", e.Matches)
}

func (e *VerificationFailedError) Unwrap() error {
	return ErrVerificationFailed
}

func notFound(what string, id interface{}) error {
	return fmt.Errorf("%s %v: %w", what, id, ErrNotFound)
}

func invalid(format string, args ...interface{}) error {
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), ErrValidation)
}
