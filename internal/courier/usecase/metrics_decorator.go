package usecase

import (
	"context"
	"time"

	courierDomain "github.com/allisson/courier-sync/internal/courier/domain"
	"github.com/allisson/courier-sync/internal/metrics"
)

// courierUseCaseWithMetrics decorates CourierUseCase with metrics
// instrumentation. Reads pass through unrecorded.
type courierUseCaseWithMetrics struct {
	next     CourierUseCase
	business metrics.BusinessMetrics
}

// NewCourierUseCaseWithMetrics wraps a CourierUseCase with metrics recording.
func NewCourierUseCaseWithMetrics(useCase CourierUseCase, business metrics.BusinessMetrics) CourierUseCase {
	return &courierUseCaseWithMetrics{next: useCase, business: business}
}

func (c *courierUseCaseWithMetrics) record(ctx context.Context, operation string, start time.Time, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	c.business.RecordOperation(ctx, "courier", operation, status)
	c.business.RecordDuration(ctx, "courier", operation, time.Since(start), status)
}

func (c *courierUseCaseWithMetrics) UpsertDriver(
	ctx context.Context,
	driver *courierDomain.Driver,
) (*courierDomain.Driver, error) {
	start := time.Now()
	result, err := c.next.UpsertDriver(ctx, driver)
	c.record(ctx, "driver_upsert", start, err)
	return result, err
}

func (c *courierUseCaseWithMetrics) GetDriver(ctx context.Context, id string) (*courierDomain.Driver, error) {
	return c.next.GetDriver(ctx, id)
}

func (c *courierUseCaseWithMetrics) ListDrivers(
	ctx context.Context,
	offset, limit int,
) ([]*courierDomain.Driver, error) {
	return c.next.ListDrivers(ctx, offset, limit)
}

func (c *courierUseCaseWithMetrics) UpdateDriverLocation(
	ctx context.Context,
	id string,
	location courierDomain.Location,
) error {
	start := time.Now()
	err := c.next.UpdateDriverLocation(ctx, id, location)
	c.record(ctx, "driver_location_update", start, err)
	return err
}

func (c *courierUseCaseWithMetrics) UpdateDriverAvailability(
	ctx context.Context,
	id string,
	available bool,
) error {
	start := time.Now()
	err := c.next.UpdateDriverAvailability(ctx, id, available)
	c.record(ctx, "driver_availability_update", start, err)
	return err
}

func (c *courierUseCaseWithMetrics) DeleteDriver(ctx context.Context, id string) error {
	start := time.Now()
	err := c.next.DeleteDriver(ctx, id)
	c.record(ctx, "driver_delete", start, err)
	return err
}

func (c *courierUseCaseWithMetrics) CreateOrder(
	ctx context.Context,
	order *courierDomain.Order,
) (*courierDomain.Order, error) {
	start := time.Now()
	result, err := c.next.CreateOrder(ctx, order)
	c.record(ctx, "order_create", start, err)
	return result, err
}

func (c *courierUseCaseWithMetrics) GetOrder(ctx context.Context, id string) (*courierDomain.Order, error) {
	return c.next.GetOrder(ctx, id)
}

func (c *courierUseCaseWithMetrics) ListOrders(
	ctx context.Context,
	offset, limit int,
) ([]*courierDomain.Order, error) {
	return c.next.ListOrders(ctx, offset, limit)
}

func (c *courierUseCaseWithMetrics) UpdateOrderStatus(
	ctx context.Context,
	id string,
	status courierDomain.OrderStatus,
) error {
	start := time.Now()
	err := c.next.UpdateOrderStatus(ctx, id, status)
	c.record(ctx, "order_status_update", start, err)
	return err
}

func (c *courierUseCaseWithMetrics) AssignDriver(ctx context.Context, orderID, driverID string) error {
	start := time.Now()
	err := c.next.AssignDriver(ctx, orderID, driverID)
	c.record(ctx, "order_assign_driver", start, err)
	return err
}

func (c *courierUseCaseWithMetrics) CancelOrder(ctx context.Context, id string) error {
	start := time.Now()
	err := c.next.CancelOrder(ctx, id)
	c.record(ctx, "order_cancel", start, err)
	return err
}

func (c *courierUseCaseWithMetrics) DeleteOrder(ctx context.Context, id string) error {
	start := time.Now()
	err := c.next.DeleteOrder(ctx, id)
	c.record(ctx, "order_delete", start, err)
	return err
}
