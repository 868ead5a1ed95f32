// Package dto provides data transfer objects for HTTP request and response handling.
package dto

import (
	validation "github.com/jellydator/validation"

	customValidation "github.com/allisson/courier-sync/internal/validation"
)

// UpsertDriverRequest represents the payload for creating or replacing a driver.
type UpsertDriverRequest struct {
	Name      string `json:"name"`
	Phone     string `json:"phone"`
	Vehicle   string `json:"vehicle"`
	Available bool   `json:"available"`
}

// Validate checks the upsert driver request fields.
func (r UpsertDriverRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.Required, customValidation.NotBlank, validation.Length(1, 255)),
		validation.Field(&r.Phone, validation.Required, customValidation.Phone),
		validation.Field(&r.Vehicle, validation.Required, customValidation.NotBlank, validation.Length(1, 64)),
	)
}

// UpdateLocationRequest represents a driver position report.
type UpdateLocationRequest struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Validate checks the location coordinates.
func (r UpdateLocationRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Latitude, validation.Min(-90.0), validation.Max(90.0)),
		validation.Field(&r.Longitude, validation.Min(-180.0), validation.Max(180.0)),
	)
}

// UpdateAvailabilityRequest represents a driver availability change.
type UpdateAvailabilityRequest struct {
	Available *bool `json:"available"`
}

// Validate checks the availability flag is present.
func (r UpdateAvailabilityRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Available, validation.NotNil),
	)
}

// CreateOrderRequest represents the payload for creating an order. The id is
// optional: clients creating orders offline supply their own so the record
// keeps its identity across sync.
type CreateOrderRequest struct {
	ID             string `json:"id"`
	PickupAddress  string `json:"pickup_address"`
	DropoffAddress string `json:"dropoff_address"`
	Notes          string `json:"notes"`
}

// Validate checks the create order request fields.
func (r CreateOrderRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.ID, customValidation.NoWhitespace, validation.Length(0, 64)),
		validation.Field(&r.PickupAddress, validation.Required, customValidation.NotBlank, validation.Length(1, 512)),
		validation.Field(&r.DropoffAddress, validation.Required, customValidation.NotBlank, validation.Length(1, 512)),
		validation.Field(&r.Notes, validation.Length(0, 1024)),
	)
}

// UpdateOrderStatusRequest represents an order lifecycle change.
type UpdateOrderStatusRequest struct {
	Status string `json:"status"`
}

// Validate checks the status value is present.
func (r UpdateOrderStatusRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Status, validation.Required, validation.In(
			"created", "assigned", "picked_up", "delivered", "cancelled",
		)),
	)
}

// AssignDriverRequest represents a driver assignment.
type AssignDriverRequest struct {
	DriverID string `json:"driver_id"`
}

// Validate checks the driver id is present.
func (r AssignDriverRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.DriverID, validation.Required, customValidation.NotBlank),
	)
}
