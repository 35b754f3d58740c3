package ledger

import (
	"errors"
	"fmt"
)

var (
	// ErrRecordNotFound is returned when deleting a history record that does not exist.
	ErrRecordNotFound = errors.New("activity record not found")
	// ErrUnknownAction is returned by Award for action types without a point value.
	ErrUnknownAction = errors.New("unknown action type")
	// ErrNoDocument is returned by a Store when nothing was saved for the profile yet.
	ErrNoDocument = errors.New("ledger document not found")
)

// SerializationError means a persisted ledger document could not be used.
type SerializationError struct {
	Err error
}

func (e *SerializationError) Error() string {
	return fmt.Sprintf("corrupt ledger document: %v", e.Err)
}

func (e *SerializationError) Unwrap() error { return e.Err }
