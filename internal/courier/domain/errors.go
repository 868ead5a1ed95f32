package domain

import (
	apperrors "github.com/allisson/courier-sync/internal/errors"
)

var (
	// ErrDriverNotFound is returned when a driver does not exist in the local store.
	ErrDriverNotFound = apperrors.Wrap(apperrors.ErrNotFound, "driver not found")

	// ErrOrderNotFound is returned when an order does not exist in the local store.
	ErrOrderNotFound = apperrors.Wrap(apperrors.ErrNotFound, "order not found")

	// ErrInvalidStatusTransition is returned when an order status change is
	// not allowed by the delivery lifecycle.
	ErrInvalidStatusTransition = apperrors.Wrap(apperrors.ErrInvalidInput, "invalid order status transition")

	// ErrInvalidLocation is returned when a position report is off the globe.
	ErrInvalidLocation = apperrors.Wrap(apperrors.ErrInvalidInput, "invalid location coordinates")
)
