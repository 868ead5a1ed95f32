package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	courierDomain "github.com/allisson/courier-sync/internal/courier/domain"
	"github.com/allisson/courier-sync/internal/database"
	apperrors "github.com/allisson/courier-sync/internal/errors"
	queueDomain "github.com/allisson/courier-sync/internal/queue/domain"
	queueUsecase "github.com/allisson/courier-sync/internal/queue/usecase"
)

const (
	driverEntity = "driver"
	orderEntity  = "order"
)

// DefaultCourierUseCase implements CourierUseCase. Every mutation runs inside
// a transaction that covers both the local write and its queue record: the
// queue repository joins the transaction through the context.
type DefaultCourierUseCase struct {
	txManager  database.TxManager
	driverRepo DriverRepository
	orderRepo  OrderRepository
	queue      queueUsecase.QueueUseCase
	logger     *slog.Logger
	now        func() time.Time
}

// NewCourierUseCase creates a new DefaultCourierUseCase.
func NewCourierUseCase(
	txManager database.TxManager,
	driverRepo DriverRepository,
	orderRepo OrderRepository,
	queue queueUsecase.QueueUseCase,
	logger *slog.Logger,
) *DefaultCourierUseCase {
	return &DefaultCourierUseCase{
		txManager:  txManager,
		driverRepo: driverRepo,
		orderRepo:  orderRepo,
		queue:      queue,
		logger:     logger,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// UpsertDriver writes the driver locally and queues the profile for sync.
func (uc *DefaultCourierUseCase) UpsertDriver(
	ctx context.Context,
	driver *courierDomain.Driver,
) (*courierDomain.Driver, error) {
	now := uc.now()
	if driver.ID == "" {
		driver.ID = uuid.Must(uuid.NewV7()).String()
	}
	if driver.CreatedAt.IsZero() {
		driver.CreatedAt = now
	}
	driver.UpdatedAt = now

	err := uc.txManager.WithTx(ctx, func(ctx context.Context) error {
		if err := uc.driverRepo.Upsert(ctx, driver); err != nil {
			return err
		}
		return uc.enqueue(
			ctx,
			driverEntity,
			driver.ID,
			queueDomain.OperationUpdate,
			"PUT",
			fmt.Sprintf("/v1/drivers/%s", driver.ID),
			driver,
			queueDomain.PriorityNormal,
		)
	})
	if err != nil {
		return nil, err
	}
	return driver, nil
}

// GetDriver reads a driver from the local store.
func (uc *DefaultCourierUseCase) GetDriver(ctx context.Context, id string) (*courierDomain.Driver, error) {
	return uc.driverRepo.Get(ctx, id)
}

// ListDrivers reads drivers from the local store.
func (uc *DefaultCourierUseCase) ListDrivers(
	ctx context.Context,
	offset, limit int,
) ([]*courierDomain.Driver, error) {
	return uc.driverRepo.List(ctx, offset, limit)
}

// UpdateDriverLocation stores a position report and queues it for sync.
func (uc *DefaultCourierUseCase) UpdateDriverLocation(
	ctx context.Context,
	id string,
	location courierDomain.Location,
) error {
	if !location.Valid() {
		return courierDomain.ErrInvalidLocation
	}
	if location.Recorded.IsZero() {
		location.Recorded = uc.now()
	}

	return uc.txManager.WithTx(ctx, func(ctx context.Context) error {
		if err := uc.driverRepo.UpdateLocation(ctx, id, location); err != nil {
			return err
		}
		return uc.enqueue(
			ctx,
			driverEntity,
			id,
			queueDomain.OperationUpdateLocation,
			"PUT",
			fmt.Sprintf("/v1/drivers/%s/location", id),
			location,
			queueDomain.PriorityHigh,
		)
	})
}

// UpdateDriverAvailability flips availability and queues it for sync.
func (uc *DefaultCourierUseCase) UpdateDriverAvailability(
	ctx context.Context,
	id string,
	available bool,
) error {
	return uc.txManager.WithTx(ctx, func(ctx context.Context) error {
		if err := uc.driverRepo.UpdateAvailability(ctx, id, available); err != nil {
			return err
		}
		return uc.enqueue(
			ctx,
			driverEntity,
			id,
			queueDomain.OperationUpdateAvailability,
			"PUT",
			fmt.Sprintf("/v1/drivers/%s/availability", id),
			map[string]bool{"available": available},
			queueDomain.PriorityHigh,
		)
	})
}

// DeleteDriver removes the driver locally and queues the deletion.
func (uc *DefaultCourierUseCase) DeleteDriver(ctx context.Context, id string) error {
	return uc.txManager.WithTx(ctx, func(ctx context.Context) error {
		if err := uc.driverRepo.Delete(ctx, id); err != nil {
			return err
		}
		return uc.enqueue(
			ctx,
			driverEntity,
			id,
			queueDomain.OperationDelete,
			"DELETE",
			fmt.Sprintf("/v1/drivers/%s", id),
			nil,
			queueDomain.PriorityNormal,
		)
	})
}

// CreateOrder writes the order locally and queues it for sync.
func (uc *DefaultCourierUseCase) CreateOrder(
	ctx context.Context,
	order *courierDomain.Order,
) (*courierDomain.Order, error) {
	now := uc.now()
	if order.ID == "" {
		order.ID = uuid.Must(uuid.NewV7()).String()
	}
	if order.Status == "" {
		order.Status = courierDomain.OrderStatusCreated
	}
	if !order.Status.Valid() {
		return nil, apperrors.Wrapf(apperrors.ErrInvalidInput, "invalid order status: %s", order.Status)
	}
	order.CreatedAt = now
	order.UpdatedAt = now

	err := uc.txManager.WithTx(ctx, func(ctx context.Context) error {
		if err := uc.orderRepo.Create(ctx, order); err != nil {
			return err
		}
		return uc.enqueue(
			ctx,
			orderEntity,
			order.ID,
			queueDomain.OperationCreate,
			"POST",
			"/v1/orders",
			order,
			queueDomain.PriorityCritical,
		)
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

// GetOrder reads an order from the local store.
func (uc *DefaultCourierUseCase) GetOrder(ctx context.Context, id string) (*courierDomain.Order, error) {
	return uc.orderRepo.Get(ctx, id)
}

// ListOrders reads orders from the local store.
func (uc *DefaultCourierUseCase) ListOrders(
	ctx context.Context,
	offset, limit int,
) ([]*courierDomain.Order, error) {
	return uc.orderRepo.List(ctx, offset, limit)
}

// UpdateOrderStatus moves the order through its lifecycle and queues the
// change for sync.
func (uc *DefaultCourierUseCase) UpdateOrderStatus(
	ctx context.Context,
	id string,
	status courierDomain.OrderStatus,
) error {
	if !status.Valid() {
		return apperrors.Wrapf(apperrors.ErrInvalidInput, "invalid order status: %s", status)
	}

	return uc.txManager.WithTx(ctx, func(ctx context.Context) error {
		order, err := uc.orderRepo.Get(ctx, id)
		if err != nil {
			return err
		}
		if !order.Status.CanTransitionTo(status) {
			return apperrors.Wrapf(
				courierDomain.ErrInvalidStatusTransition,
				"%s to %s", order.Status, status,
			)
		}
		if err := uc.orderRepo.UpdateStatus(ctx, id, status); err != nil {
			return err
		}
		return uc.enqueue(
			ctx,
			orderEntity,
			id,
			queueDomain.OperationUpdateStatus,
			"PUT",
			fmt.Sprintf("/v1/orders/%s/status", id),
			map[string]string{"status": string(status)},
			queueDomain.PriorityCritical,
		)
	})
}

// AssignDriver attaches a driver to the order and queues the assignment.
func (uc *DefaultCourierUseCase) AssignDriver(ctx context.Context, orderID, driverID string) error {
	return uc.txManager.WithTx(ctx, func(ctx context.Context) error {
		if _, err := uc.driverRepo.Get(ctx, driverID); err != nil {
			return err
		}
		order, err := uc.orderRepo.Get(ctx, orderID)
		if err != nil {
			return err
		}
		if !order.Status.CanTransitionTo(courierDomain.OrderStatusAssigned) {
			return apperrors.Wrapf(
				courierDomain.ErrInvalidStatusTransition,
				"%s to %s", order.Status, courierDomain.OrderStatusAssigned,
			)
		}
		if err := uc.orderRepo.AssignDriver(ctx, orderID, driverID); err != nil {
			return err
		}
		return uc.enqueue(
			ctx,
			orderEntity,
			orderID,
			queueDomain.OperationAssignDriver,
			"PUT",
			fmt.Sprintf("/v1/orders/%s/driver", orderID),
			map[string]string{"driver_id": driverID},
			queueDomain.PriorityCritical,
		)
	})
}

// CancelOrder cancels the order and queues the cancellation.
func (uc *DefaultCourierUseCase) CancelOrder(ctx context.Context, id string) error {
	return uc.txManager.WithTx(ctx, func(ctx context.Context) error {
		order, err := uc.orderRepo.Get(ctx, id)
		if err != nil {
			return err
		}
		if !order.Status.CanTransitionTo(courierDomain.OrderStatusCancelled) {
			return apperrors.Wrapf(
				courierDomain.ErrInvalidStatusTransition,
				"%s to %s", order.Status, courierDomain.OrderStatusCancelled,
			)
		}
		if err := uc.orderRepo.UpdateStatus(ctx, id, courierDomain.OrderStatusCancelled); err != nil {
			return err
		}
		return uc.enqueue(
			ctx,
			orderEntity,
			id,
			queueDomain.OperationCancel,
			"PUT",
			fmt.Sprintf("/v1/orders/%s/status", id),
			map[string]string{"status": string(courierDomain.OrderStatusCancelled)},
			queueDomain.PriorityCritical,
		)
	})
}

// DeleteOrder removes the order locally and queues the deletion.
func (uc *DefaultCourierUseCase) DeleteOrder(ctx context.Context, id string) error {
	return uc.txManager.WithTx(ctx, func(ctx context.Context) error {
		if err := uc.orderRepo.Delete(ctx, id); err != nil {
			return err
		}
		return uc.enqueue(
			ctx,
			orderEntity,
			id,
			queueDomain.OperationDelete,
			"DELETE",
			fmt.Sprintf("/v1/orders/%s", id),
			nil,
			queueDomain.PriorityNormal,
		)
	})
}

// enqueue records exactly one sync queue entry for a mutation. Called inside
// the mutation's transaction so the pair commits atomically.
func (uc *DefaultCourierUseCase) enqueue(
	ctx context.Context,
	entityType, entityID string,
	operation queueDomain.Operation,
	method, path string,
	body any,
	priority queueDomain.Priority,
) error {
	var data json.RawMessage
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return apperrors.Wrap(apperrors.ErrInvalidInput, err.Error())
		}
		data = raw
	}

	_, err := uc.queue.Enqueue(ctx, entityType, entityID, operation, &queueDomain.Payload{
		Method:   method,
		Path:     path,
		Data:     data,
		Priority: priority,
	})
	return err
}
