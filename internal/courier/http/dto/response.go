package dto

import (
	"time"

	courierDomain "github.com/allisson/courier-sync/internal/courier/domain"
)

// DriverResponse represents a driver in API responses.
type DriverResponse struct {
	ID         string     `json:"id"`
	Name       string     `json:"name"`
	Phone      string     `json:"phone"`
	Vehicle    string     `json:"vehicle"`
	Available  bool       `json:"available"`
	Latitude   *float64   `json:"latitude,omitempty"`
	Longitude  *float64   `json:"longitude,omitempty"`
	LocationAt *time.Time `json:"location_at,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

// MapDriverToResponse converts a domain driver to a response.
func MapDriverToResponse(driver *courierDomain.Driver) DriverResponse {
	return DriverResponse{
		ID:         driver.ID,
		Name:       driver.Name,
		Phone:      driver.Phone,
		Vehicle:    driver.Vehicle,
		Available:  driver.Available,
		Latitude:   driver.Latitude,
		Longitude:  driver.Longitude,
		LocationAt: driver.LocationAt,
		CreatedAt:  driver.CreatedAt,
		UpdatedAt:  driver.UpdatedAt,
	}
}

// ListDriversResponse represents a paginated list of drivers.
type ListDriversResponse struct {
	Data []DriverResponse `json:"data"`
}

// MapDriversToListResponse converts a slice of domain drivers to a list response.
func MapDriversToListResponse(drivers []*courierDomain.Driver) ListDriversResponse {
	data := make([]DriverResponse, 0, len(drivers))
	for _, driver := range drivers {
		data = append(data, MapDriverToResponse(driver))
	}
	return ListDriversResponse{Data: data}
}

// OrderResponse represents an order in API responses.
type OrderResponse struct {
	ID             string    `json:"id"`
	DriverID       *string   `json:"driver_id,omitempty"`
	Status         string    `json:"status"`
	PickupAddress  string    `json:"pickup_address"`
	DropoffAddress string    `json:"dropoff_address"`
	Notes          string    `json:"notes,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// MapOrderToResponse converts a domain order to a response.
func MapOrderToResponse(order *courierDomain.Order) OrderResponse {
	return OrderResponse{
		ID:             order.ID,
		DriverID:       order.DriverID,
		Status:         string(order.Status),
		PickupAddress:  order.PickupAddress,
		DropoffAddress: order.DropoffAddress,
		Notes:          order.Notes,
		CreatedAt:      order.CreatedAt,
		UpdatedAt:      order.UpdatedAt,
	}
}

// ListOrdersResponse represents a paginated list of orders.
type ListOrdersResponse struct {
	Data []OrderResponse `json:"data"`
}

// MapOrdersToListResponse converts a slice of domain orders to a list response.
func MapOrdersToListResponse(orders []*courierDomain.Order) ListOrdersResponse {
	data := make([]OrderResponse, 0, len(orders))
	for _, order := range orders {
		data = append(data, MapOrderToResponse(order))
	}
	return ListOrdersResponse{Data: data}
}
