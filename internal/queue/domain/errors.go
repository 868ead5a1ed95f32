// Package domain defines core domain models and errors for the sync queue.
package domain

import (
	"github.com/allisson/courier-sync/internal/errors"
)

// Queue-specific error definitions.
var (
	// ErrRecordNotFound indicates the queue record does not exist (it may have
	// been completed and deleted already).
	ErrRecordNotFound = errors.Wrap(errors.ErrNotFound, "queue record not found")

	// ErrInvalidOperation indicates the operation tag is not in the fixed set
	// known at replay time.
	ErrInvalidOperation = errors.Wrap(errors.ErrInvalidInput, "invalid queue operation")
)
