package types

import (
	"errors"
	"fmt"
)

// Workflow error taxonomy. Handlers map these onto HTTP statuses; the
// workflow core only ever returns typed errors, never partial state.

var (
	ErrNotAvailable             = errors.New("travel option is not available")
	ErrInsufficientCapacity     = errors.New("not enough seats available")
	ErrCancellationWindowClosed = errors.New("cancellation window has closed")
	ErrAlreadyCancelled         = errors.New("booking is already cancelled")
)

type ValidationError struct {
	Field string
	Msg   string
}

func (e ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s", e.Field, e.Msg)
	}
	return e.Msg
}

type NotFoundError struct {
	Resource string
	Err      error
}

func (e NotFoundError) Error() string {
	if e.Resource == "" {
		return "not found"
	}
	return fmt.Sprintf("%s not found", e.Resource)
}

func (e NotFoundError) Unwrap() error { return e.Err }

// ConflictError is transient contention; the caller may retry a bounded
// number of times.
type ConflictError struct {
	Resource string
	Err      error
}

func (e ConflictError) Error() string {
	if e.Resource == "" {
		return "conflict"
	}
	return fmt.Sprintf("%s conflict", e.Resource)
}

func (e ConflictError) Unwrap() error { return e.Err }

// StorageError wraps durable-store failures as an opaque, never
// partially-applied failure.
type StorageError struct {
	Err error
}

func (e StorageError) Error() string {
	if e.Err == nil {
		return "storage failure"
	}
	return fmt.Sprintf("storage failure: %v", e.Err)
}

func (e StorageError) Unwrap() error { return e.Err }

func IsValidation(err error) bool {
	var target ValidationError
	return errors.As(err, &target)
}

func IsNotFound(err error) bool {
	var target NotFoundError
	return errors.As(err, &target)
}

func IsConflict(err error) bool {
	var target ConflictError
	return errors.As(err, &target)
}

func IsStorage(err error) bool {
	var target StorageError
	return errors.As(err, &target)
}
