// Package errors provides standardized domain errors that express business intent
// rather than infrastructure details. These errors should be used by use cases
// and mapped to appropriate HTTP status codes by handlers.
package errors

import (
	"errors"
	"fmt"
)

// Standard domain errors that can be used across all domain modules.
var (
	// ErrNotFound indicates the requested resource does not exist.
	ErrNotFound = errors.New("not found")

	// ErrConflict indicates a conflict with existing data (e.g., duplicate key).
	ErrConflict = errors.New("conflict")

	// ErrInvalidInput indicates the input data is invalid or fails validation.
	ErrInvalidInput = errors.New("invalid input")

	// ErrStorage indicates a local durable-store I/O failure. It is always
	// surfaced to the caller; a silently lost queue mutation would break the
	// offline-write guarantee.
	ErrStorage = errors.New("storage failure")

	// ErrQueueFull indicates the sync queue reached its configured capacity.
	// The originating write must be reported as failed, never silently dropped.
	ErrQueueFull = errors.New("sync queue is full")

	// ErrOffline indicates an operation that requires connectivity was attempted
	// while offline and cannot be queued (e.g., reads).
	ErrOffline = errors.New("offline")

	// ErrSendFailure indicates a transient network failure while replaying a
	// queued mutation. Handled by the retry path, never surfaced to UI callers.
	ErrSendFailure = errors.New("send failure")
)

// New creates a new error with the given message.
// This is a convenience wrapper around errors.New for consistency.
func New(message string) error {
	return errors.New(message)
}

// Wrap wraps an error with additional context while preserving the error chain.
// Use this to add context at each layer without losing the original error type.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Wrapf wraps an error with a formatted message while preserving the error chain.
func Wrapf(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}

// Is reports whether any error in err's tree matches target.
// This is a convenience wrapper around errors.Is.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's tree that matches target.
// This is a convenience wrapper around errors.As.
func As(err error, target any) bool {
	return errors.As(err, target)
}
