package store

import (
	"errors"
	"fmt"
	"strings"
)

// Error kinds surfaced to the presentation boundary. There is no
// transient class here: nothing is retried, every failure propagates.
var (
	// ErrNotFound means the referenced task, category or snapshot
	// does not exist.
	ErrNotFound = errors.New("not found")

	// ErrForbidden means the caller is not the resource's owner.
	// System categories have no owner, so they are forbidden for
	// every caller.
	ErrForbidden = errors.New("forbidden")

	// ErrInvalidInput covers malformed ids, inverted date ranges and
	// reorder lists that do not match the active set.
	ErrInvalidInput = errors.New("invalid input")
)

// Error carries the failing operation and entity alongside the kind.
type Error struct {
	Op     string // operation that failed, e.g. "tasks.reorder"
	Entity string // entity involved, e.g. "task"
	Err    error  // underlying kind or driver error
}

func (e *Error) Error() string {
	parts := []string{e.Op}
	if e.Entity != "" {
		parts = append(parts, e.Entity)
	}
	if e.Err != nil {
		parts = append(parts, e.Err.Error())
	}
	return strings.Join(parts, ": ")
}

func (e *Error) Unwrap() error {
	return e.Err
}

// E wraps err with operation context, keeping the kind reachable via
// errors.Is.
func E(op, entity string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Op: op, Entity: entity, Err: err}
}

// Invalid builds an ErrInvalidInput with a reason.
func Invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}
