package pipeline

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrNotFound means the comment, list or report does not exist.
	ErrNotFound = errors.New("not found")
	// ErrForbidden means the actor may not perform the transition.
	ErrForbidden = errors.New("forbidden")
	// ErrAlreadyProcessed means a concurrent moderator got there first.
	// Expected under concurrency; never an error-level event.
	ErrAlreadyProcessed = errors.New("already processed")
	// ErrItemExists means the suggestion is already an item on the list.
	ErrItemExists = errors.New("already on the list")
)

// ValidationError reports unacceptable input.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + ": " + e.Message
}

func invalid(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// RateLimitedError reports a cooldown that has not elapsed yet.
type RateLimitedError struct {
	RetryAfter time.Duration
	Scope      string // target, global or rejected
}

func (e *RateLimitedError) Error() string {
	return fmt.Sprintf("rate limited (%s): retry after %s", e.Scope, e.RetryAfter.Round(time.Second))
}

// ScopeRejected names the resubmission cooldown for rejected suggestions.
const ScopeRejected = "rejected"

// StorageError wraps a failure of a durable store. The operation had no
// effect that the caller can observe and may be retried with backoff.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return e.Op + ": " + e.Err.Error()
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// Temporary reports that the failure is transient.
func (e *StorageError) Temporary() bool {
	return true
}

func storageErr(op string, err error) error {
	return &StorageError{Op: op, Err: err}
}

// IsExpected reports whether err is an outcome the pipeline produces by
// design, as opposed to an infrastructure failure.
func IsExpected(err error) bool {
	var (
		verr *ValidationError
		rerr *RateLimitedError
	)
	switch {
	case errors.Is(err, ErrNotFound),
		errors.Is(err, ErrForbidden),
		errors.Is(err, ErrAlreadyProcessed),
		errors.Is(err, ErrItemExists),
		errors.As(err, &verr),
		errors.As(err, &rerr):
		return true
	}
	return false
}
