package model

import (
	"errors"
	"fmt"
)

var (
	ErrValidation             = errors.New("validation failed")
	ErrInsufficientFunds      = errors.New("insufficient funds")
	ErrMarketClosed           = errors.New("market closed")
	ErrDuplicateWager         = errors.New("duplicate wager")
	ErrNotFound               = errors.New("not found")
	ErrConcurrentModification = errors.New("concurrent modification")
	ErrAlreadySettled         = errors.New("already settled")
	ErrInvalidTransition      = errors.New("invalid status transition")
	ErrBetFailed              = errors.New("bet failed")
	ErrSettlementFailed       = errors.New("settlement failed")
)

// ValidationError is a rejected input. It matches ErrValidation with errors.Is.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("validation failed: %s", e.Reason)
	}

	return fmt.Sprintf("validation failed: %s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// Invalid builds a ValidationError with a formatted reason.
func Invalid(field, format string, args ...any) error {
	return &ValidationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}
