// Package errors provides centralized error definitions for the coordination
// stores. It defines the error kinds every store operation must map to, a
// StoreError type carrying operation context, and classification helpers so
// the facade can render an actionable message without string matching.
package errors

import (
	"errors"
	"fmt"
)

// Re-export standard library functions for convenience.
// This allows callers to import only this package for all error handling.
var (
	Is     = errors.Is
	As     = errors.As
	Unwrap = errors.Unwrap
	New    = errors.New
	Join   = errors.Join
)

// Sentinel errors for the coordination stores. Every failure a store returns
// wraps exactly one of these.
var (
	// ErrNotFound indicates a referenced team, agent, or task does not exist.
	ErrNotFound = New("not found")

	// ErrAlreadyExists indicates a create collided with existing state,
	// such as duplicate team creation.
	ErrAlreadyExists = New("already exists")

	// ErrCorruptState indicates a persisted document failed to parse.
	// This is distinct from ErrNotFound: the data exists but is damaged.
	ErrCorruptState = New("corrupt state")

	// ErrBusy indicates a document lock could not be acquired within the
	// configured timeout.
	ErrBusy = New("lock busy")

	// ErrIO indicates an underlying storage failure (permissions, disk full).
	ErrIO = New("storage failure")
)

// StoreError wraps a sentinel kind with the operation and document path that
// produced it.
type StoreError struct {
	Op   string // operation, e.g. "team.create", "tasklist.accept"
	Path string // document path involved, if any
	Kind error  // one of the sentinel errors above
	Err  error  // underlying cause, if any
}

// Error returns the formatted error message.
func (e *StoreError) Error() string {
	msg := e.Op
	if e.Path != "" {
		msg += " " + e.Path
	}
	msg += ": " + e.Kind.Error()
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns the underlying cause.
func (e *StoreError) Unwrap() error { return e.Err }

// Is reports whether this error matches the target sentinel.
func (e *StoreError) Is(target error) bool { return errors.Is(e.Kind, target) }

// NewStoreError creates a StoreError with the given kind and context.
func NewStoreError(op, path string, kind, err error) *StoreError {
	return &StoreError{Op: op, Path: path, Kind: kind, Err: err}
}

// Wrapf wraps err with a formatted message, preserving the error chain.
// Returns nil if err is nil.
func Wrapf(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}

// IsNotFound reports whether err is (or wraps) ErrNotFound.
func IsNotFound(err error) bool { return errors.Is(err, ErrNotFound) }

// IsAlreadyExists reports whether err is (or wraps) ErrAlreadyExists.
func IsAlreadyExists(err error) bool { return errors.Is(err, ErrAlreadyExists) }

// IsCorruptState reports whether err is (or wraps) ErrCorruptState.
func IsCorruptState(err error) bool { return errors.Is(err, ErrCorruptState) }

// IsBusy reports whether err is (or wraps) ErrBusy.
func IsBusy(err error) bool { return errors.Is(err, ErrBusy) }

// IsRetryable reports whether the operation may succeed if retried.
// Lock contention is the only retryable store failure.
func IsRetryable(err error) bool { return errors.Is(err, ErrBusy) }
