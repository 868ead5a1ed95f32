package repository

import (
	"context"
	"database/sql"

	courierDomain "github.com/allisson/courier-sync/internal/courier/domain"
	"github.com/allisson/courier-sync/internal/database"
	apperrors "github.com/allisson/courier-sync/internal/errors"
)

// MySQLDriverRepository implements Driver persistence for MySQL databases.
type MySQLDriverRepository struct {
	db *sql.DB
}

// NewMySQLDriverRepository creates a new MySQLDriverRepository.
func NewMySQLDriverRepository(db *sql.DB) *MySQLDriverRepository {
	return &MySQLDriverRepository{db: db}
}

// Upsert inserts the driver or replaces its mutable fields when the id
// already exists.
func (m *MySQLDriverRepository) Upsert(ctx context.Context, driver *courierDomain.Driver) error {
	querier := database.GetTx(ctx, m.db)

	query := `INSERT INTO drivers (` + driverColumns + `)
			  VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			  ON DUPLICATE KEY UPDATE
				name = VALUES(name),
				phone = VALUES(phone),
				vehicle = VALUES(vehicle),
				available = VALUES(available),
				updated_at = VALUES(updated_at)`

	_, err := querier.ExecContext(
		ctx,
		query,
		driver.ID,
		driver.Name,
		driver.Phone,
		driver.Vehicle,
		driver.Available,
		driver.Latitude,
		driver.Longitude,
		driver.LocationAt,
		driver.CreatedAt,
		driver.UpdatedAt,
	)
	if err != nil {
		return apperrors.Wrap(apperrors.ErrStorage, err.Error())
	}
	return nil
}

// Get retrieves a driver by id.
func (m *MySQLDriverRepository) Get(ctx context.Context, id string) (*courierDomain.Driver, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT ` + driverColumns + ` FROM drivers WHERE id = ?`

	var driver courierDomain.Driver
	err := querier.QueryRowContext(ctx, query, id).Scan(
		&driver.ID,
		&driver.Name,
		&driver.Phone,
		&driver.Vehicle,
		&driver.Available,
		&driver.Latitude,
		&driver.Longitude,
		&driver.LocationAt,
		&driver.CreatedAt,
		&driver.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, courierDomain.ErrDriverNotFound
	}
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrStorage, err.Error())
	}
	return &driver, nil
}

// UpdateLocation stores the driver's latest position.
func (m *MySQLDriverRepository) UpdateLocation(
	ctx context.Context,
	id string,
	location courierDomain.Location,
) error {
	querier := database.GetTx(ctx, m.db)

	query := `UPDATE drivers
			  SET latitude = ?, longitude = ?, location_at = ?, updated_at = ?
			  WHERE id = ?`

	result, err := querier.ExecContext(
		ctx,
		query,
		location.Latitude,
		location.Longitude,
		location.Recorded,
		location.Recorded,
		id,
	)
	if err != nil {
		return apperrors.Wrap(apperrors.ErrStorage, err.Error())
	}
	return requireDriverRow(result)
}

// UpdateAvailability flips the driver's availability flag.
func (m *MySQLDriverRepository) UpdateAvailability(ctx context.Context, id string, available bool) error {
	querier := database.GetTx(ctx, m.db)

	query := `UPDATE drivers SET available = ?, updated_at = NOW() WHERE id = ?`

	result, err := querier.ExecContext(ctx, query, available, id)
	if err != nil {
		return apperrors.Wrap(apperrors.ErrStorage, err.Error())
	}
	return requireDriverRow(result)
}

// Delete removes a driver from the local store.
func (m *MySQLDriverRepository) Delete(ctx context.Context, id string) error {
	querier := database.GetTx(ctx, m.db)

	result, err := querier.ExecContext(ctx, `DELETE FROM drivers WHERE id = ?`, id)
	if err != nil {
		return apperrors.Wrap(apperrors.ErrStorage, err.Error())
	}
	return requireDriverRow(result)
}

// List returns drivers ordered by creation time.
func (m *MySQLDriverRepository) List(ctx context.Context, offset, limit int) ([]*courierDomain.Driver, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT ` + driverColumns + ` FROM drivers ORDER BY created_at DESC LIMIT ? OFFSET ?`

	rows, err := querier.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrStorage, err.Error())
	}
	defer func() { _ = rows.Close() }()

	var drivers []*courierDomain.Driver
	for rows.Next() {
		var driver courierDomain.Driver
		if err := rows.Scan(
			&driver.ID,
			&driver.Name,
			&driver.Phone,
			&driver.Vehicle,
			&driver.Available,
			&driver.Latitude,
			&driver.Longitude,
			&driver.LocationAt,
			&driver.CreatedAt,
			&driver.UpdatedAt,
		); err != nil {
			return nil, apperrors.Wrap(apperrors.ErrStorage, err.Error())
		}
		drivers = append(drivers, &driver)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrStorage, err.Error())
	}
	return drivers, nil
}

// MySQLOrderRepository implements Order persistence for MySQL databases.
type MySQLOrderRepository struct {
	db *sql.DB
}

// NewMySQLOrderRepository creates a new MySQLOrderRepository.
func NewMySQLOrderRepository(db *sql.DB) *MySQLOrderRepository {
	return &MySQLOrderRepository{db: db}
}

// Create inserts a new order.
func (m *MySQLOrderRepository) Create(ctx context.Context, order *courierDomain.Order) error {
	querier := database.GetTx(ctx, m.db)

	query := `INSERT INTO orders (` + orderColumns + `)
			  VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := querier.ExecContext(
		ctx,
		query,
		order.ID,
		order.DriverID,
		order.Status,
		order.PickupAddress,
		order.DropoffAddress,
		order.Notes,
		order.CreatedAt,
		order.UpdatedAt,
	)
	if err != nil {
		return apperrors.Wrap(apperrors.ErrStorage, err.Error())
	}
	return nil
}

// Get retrieves an order by id.
func (m *MySQLOrderRepository) Get(ctx context.Context, id string) (*courierDomain.Order, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = ?`

	var order courierDomain.Order
	err := querier.QueryRowContext(ctx, query, id).Scan(
		&order.ID,
		&order.DriverID,
		&order.Status,
		&order.PickupAddress,
		&order.DropoffAddress,
		&order.Notes,
		&order.CreatedAt,
		&order.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, courierDomain.ErrOrderNotFound
	}
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrStorage, err.Error())
	}
	return &order, nil
}

// UpdateStatus moves the order to a new lifecycle state.
func (m *MySQLOrderRepository) UpdateStatus(
	ctx context.Context,
	id string,
	status courierDomain.OrderStatus,
) error {
	querier := database.GetTx(ctx, m.db)

	query := `UPDATE orders SET status = ?, updated_at = NOW() WHERE id = ?`

	result, err := querier.ExecContext(ctx, query, status, id)
	if err != nil {
		return apperrors.Wrap(apperrors.ErrStorage, err.Error())
	}
	return requireOrderRow(result)
}

// AssignDriver attaches a driver to the order and marks it assigned.
func (m *MySQLOrderRepository) AssignDriver(ctx context.Context, id, driverID string) error {
	querier := database.GetTx(ctx, m.db)

	query := `UPDATE orders
			  SET driver_id = ?, status = ?, updated_at = NOW()
			  WHERE id = ?`

	result, err := querier.ExecContext(ctx, query, driverID, courierDomain.OrderStatusAssigned, id)
	if err != nil {
		return apperrors.Wrap(apperrors.ErrStorage, err.Error())
	}
	return requireOrderRow(result)
}

// Delete removes an order from the local store.
func (m *MySQLOrderRepository) Delete(ctx context.Context, id string) error {
	querier := database.GetTx(ctx, m.db)

	result, err := querier.ExecContext(ctx, `DELETE FROM orders WHERE id = ?`, id)
	if err != nil {
		return apperrors.Wrap(apperrors.ErrStorage, err.Error())
	}
	return requireOrderRow(result)
}

// List returns orders ordered by creation time.
func (m *MySQLOrderRepository) List(ctx context.Context, offset, limit int) ([]*courierDomain.Order, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT ` + orderColumns + ` FROM orders ORDER BY created_at DESC LIMIT ? OFFSET ?`

	rows, err := querier.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrStorage, err.Error())
	}
	defer func() { _ = rows.Close() }()

	var orders []*courierDomain.Order
	for rows.Next() {
		var order courierDomain.Order
		if err := rows.Scan(
			&order.ID,
			&order.DriverID,
			&order.Status,
			&order.PickupAddress,
			&order.DropoffAddress,
			&order.Notes,
			&order.CreatedAt,
			&order.UpdatedAt,
		); err != nil {
			return nil, apperrors.Wrap(apperrors.ErrStorage, err.Error())
		}
		orders = append(orders, &order)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrStorage, err.Error())
	}
	return orders, nil
}
