package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation marks user-correctable input problems.
	ErrValidation = errors.New("invalid reservation request")

	// ErrDateConflict means an active reservation already covers part of the
	// requested range.
	ErrDateConflict = errors.New("this book is already reserved for the selected date range")

	// ErrInvalidTransition means the requested status change is not a legal
	// lifecycle edge.
	ErrInvalidTransition = errors.New("invalid status transition")

	ErrNotFound = errors.New("reservation not found")
)

func validationError(msg string) error {
	return fmt.Errorf("%w: %s", ErrValidation, msg)
}
