package game

import (
	"errors"
	"fmt"
)

var (
	// ErrWinnerAlreadyFound rejects draws and auto-draw starts after the
	// game reached a winner.
	ErrWinnerAlreadyFound = errors.New("game already has a winner")

	// ErrCardExists is returned when registering over an existing card id
	// without the overwrite confirmation.
	ErrCardExists = errors.New("card id already registered")

	// ErrConfirmRequired is returned when reconfiguring would discard drawn
	// balls and the caller did not confirm.
	ErrConfirmRequired = errors.New("confirmation required: drawn balls will be discarded")

	// ErrUnsupportedPoolSize rejects configuration values outside PoolSizes.
	ErrUnsupportedPoolSize = errors.New("unsupported pool size")
)

// Validation error kinds for card registration.
const (
	KindRange     = "range"
	KindDuplicate = "duplicate"
)

// ValidationError reports invalid card numbers. The operation that raised it
// leaves the state untouched.
type ValidationError struct {
	Kind string
	Msg  string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid card: %s", e.Msg)
}

func rangeError(max int) *ValidationError {
	return &ValidationError{
		Kind: KindRange,
		Msg:  fmt.Sprintf("numbers must be between 1 and %d", max),
	}
}

func duplicateError() *ValidationError {
	return &ValidationError{
		Kind: KindDuplicate,
		Msg:  "a card cannot contain duplicate numbers",
	}
}
