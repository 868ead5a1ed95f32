package domain

import "time"

// OrderStatus is the delivery lifecycle state of an order.
type OrderStatus string

const (
	OrderStatusCreated   OrderStatus = "created"
	OrderStatusAssigned  OrderStatus = "assigned"
	OrderStatusPickedUp  OrderStatus = "picked_up"
	OrderStatusDelivered OrderStatus = "delivered"
	OrderStatusCancelled OrderStatus = "cancelled"
)

// Valid reports whether the status is a known lifecycle state.
func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusCreated, OrderStatusAssigned, OrderStatusPickedUp,
		OrderStatusDelivered, OrderStatusCancelled:
		return true
	default:
		return false
	}
}

// CanTransitionTo reports whether the lifecycle allows moving to next.
// Delivered and cancelled are terminal.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	switch s {
	case OrderStatusCreated:
		return next == OrderStatusAssigned || next == OrderStatusCancelled
	case OrderStatusAssigned:
		return next == OrderStatusPickedUp || next == OrderStatusCancelled
	case OrderStatusPickedUp:
		return next == OrderStatusDelivered || next == OrderStatusCancelled
	default:
		return false
	}
}

// Order is a delivery order in the local store.
type Order struct {
	ID             string      `json:"id"`
	DriverID       *string     `json:"driver_id"`
	Status         OrderStatus `json:"status"`
	PickupAddress  string      `json:"pickup_address"`
	DropoffAddress string      `json:"dropoff_address"`
	Notes          string      `json:"notes"`
	CreatedAt      time.Time   `json:"created_at"`
	UpdatedAt      time.Time   `json:"updated_at"`
}
