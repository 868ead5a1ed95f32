// Package usecase implements the courier-side write path: every mutation is
// applied to the local store and recorded in the sync queue inside one
// transaction, so the local state and the replay log never diverge.
package usecase

import (
	"context"

	courierDomain "github.com/allisson/courier-sync/internal/courier/domain"
)

// DriverRepository defines driver persistence operations.
type DriverRepository interface {
	Upsert(ctx context.Context, driver *courierDomain.Driver) error
	Get(ctx context.Context, id string) (*courierDomain.Driver, error)
	UpdateLocation(ctx context.Context, id string, location courierDomain.Location) error
	UpdateAvailability(ctx context.Context, id string, available bool) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, offset, limit int) ([]*courierDomain.Driver, error)
}

// OrderRepository defines order persistence operations.
type OrderRepository interface {
	Create(ctx context.Context, order *courierDomain.Order) error
	Get(ctx context.Context, id string) (*courierDomain.Order, error)
	UpdateStatus(ctx context.Context, id string, status courierDomain.OrderStatus) error
	AssignDriver(ctx context.Context, id, driverID string) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, offset, limit int) ([]*courierDomain.Order, error)
}

// CourierUseCase defines the courier write and read operations. Mutations
// also record a sync queue entry; reads only touch the local store.
type CourierUseCase interface {
	UpsertDriver(ctx context.Context, driver *courierDomain.Driver) (*courierDomain.Driver, error)
	GetDriver(ctx context.Context, id string) (*courierDomain.Driver, error)
	ListDrivers(ctx context.Context, offset, limit int) ([]*courierDomain.Driver, error)
	UpdateDriverLocation(ctx context.Context, id string, location courierDomain.Location) error
	UpdateDriverAvailability(ctx context.Context, id string, available bool) error
	DeleteDriver(ctx context.Context, id string) error

	CreateOrder(ctx context.Context, order *courierDomain.Order) (*courierDomain.Order, error)
	GetOrder(ctx context.Context, id string) (*courierDomain.Order, error)
	ListOrders(ctx context.Context, offset, limit int) ([]*courierDomain.Order, error)
	UpdateOrderStatus(ctx context.Context, id string, status courierDomain.OrderStatus) error
	AssignDriver(ctx context.Context, orderID, driverID string) error
	CancelOrder(ctx context.Context, id string) error
	DeleteOrder(ctx context.Context, id string) error
}
