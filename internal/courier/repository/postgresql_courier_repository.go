// Package repository implements local-store persistence for drivers and
// orders. Repositories support both PostgreSQL and MySQL and join any
// transaction carried in the context, so a local write and its queue record
// commit or roll back together.
package repository

import (
	"context"
	"database/sql"

	courierDomain "github.com/allisson/courier-sync/internal/courier/domain"
	"github.com/allisson/courier-sync/internal/database"
	apperrors "github.com/allisson/courier-sync/internal/errors"
)

const driverColumns = `id, name, phone, vehicle, available, latitude, longitude, location_at, created_at, updated_at`

const orderColumns = `id, driver_id, status, pickup_address, dropoff_address, notes, created_at, updated_at`

// PostgreSQLDriverRepository implements Driver persistence for PostgreSQL databases.
type PostgreSQLDriverRepository struct {
	db *sql.DB
}

// NewPostgreSQLDriverRepository creates a new PostgreSQLDriverRepository.
func NewPostgreSQLDriverRepository(db *sql.DB) *PostgreSQLDriverRepository {
	return &PostgreSQLDriverRepository{db: db}
}

// Upsert inserts the driver or replaces its mutable fields when the id
// already exists.
func (p *PostgreSQLDriverRepository) Upsert(ctx context.Context, driver *courierDomain.Driver) error {
	querier := database.GetTx(ctx, p.db)

	query := `INSERT INTO drivers (` + driverColumns + `)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
			  ON CONFLICT (id) DO UPDATE SET
				name = EXCLUDED.name,
				phone = EXCLUDED.phone,
				vehicle = EXCLUDED.vehicle,
				available = EXCLUDED.available,
				updated_at = EXCLUDED.updated_at`

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
func (p *PostgreSQLDriverRepository) Get(ctx context.Context, id string) (*courierDomain.Driver, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT ` + driverColumns + ` FROM drivers WHERE id = $1`

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
func (p *PostgreSQLDriverRepository) UpdateLocation(
	ctx context.Context,
	id string,
	location courierDomain.Location,
) error {
	querier := database.GetTx(ctx, p.db)

	query := `UPDATE drivers
			  SET latitude = $2, longitude = $3, location_at = $4, updated_at = $4
			  WHERE id = $1`

	result, err := querier.ExecContext(ctx, query, id, location.Latitude, location.Longitude, location.Recorded)
	if err != nil {
		return apperrors.Wrap(apperrors.ErrStorage, err.Error())
	}
	return requireDriverRow(result)
}

// UpdateAvailability flips the driver's availability flag.
func (p *PostgreSQLDriverRepository) UpdateAvailability(ctx context.Context, id string, available bool) error {
	querier := database.GetTx(ctx, p.db)

	query := `UPDATE drivers SET available = $2, updated_at = NOW() WHERE id = $1`

	result, err := querier.ExecContext(ctx, query, id, available)
	if err != nil {
		return apperrors.Wrap(apperrors.ErrStorage, err.Error())
	}
	return requireDriverRow(result)
}

// Delete removes a driver from the local store.
func (p *PostgreSQLDriverRepository) Delete(ctx context.Context, id string) error {
	querier := database.GetTx(ctx, p.db)

	result, err := querier.ExecContext(ctx, `DELETE FROM drivers WHERE id = $1`, id)
	if err != nil {
		return apperrors.Wrap(apperrors.ErrStorage, err.Error())
	}
	return requireDriverRow(result)
}

// List returns drivers ordered by creation time.
func (p *PostgreSQLDriverRepository) List(ctx context.Context, offset, limit int) ([]*courierDomain.Driver, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT ` + driverColumns + ` FROM drivers ORDER BY created_at DESC LIMIT $1 OFFSET $2`

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

// PostgreSQLOrderRepository implements Order persistence for PostgreSQL databases.
type PostgreSQLOrderRepository struct {
	db *sql.DB
}

// NewPostgreSQLOrderRepository creates a new PostgreSQLOrderRepository.
func NewPostgreSQLOrderRepository(db *sql.DB) *PostgreSQLOrderRepository {
	return &PostgreSQLOrderRepository{db: db}
}

// Create inserts a new order.
func (p *PostgreSQLOrderRepository) Create(ctx context.Context, order *courierDomain.Order) error {
	querier := database.GetTx(ctx, p.db)

	query := `INSERT INTO orders (` + orderColumns + `)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

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
func (p *PostgreSQLOrderRepository) Get(ctx context.Context, id string) (*courierDomain.Order, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`

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
func (p *PostgreSQLOrderRepository) UpdateStatus(
	ctx context.Context,
	id string,
	status courierDomain.OrderStatus,
) error {
	querier := database.GetTx(ctx, p.db)

	query := `UPDATE orders SET status = $2, updated_at = NOW() WHERE id = $1`

	result, err := querier.ExecContext(ctx, query, id, status)
	if err != nil {
		return apperrors.Wrap(apperrors.ErrStorage, err.Error())
	}
	return requireOrderRow(result)
}

// AssignDriver attaches a driver to the order and marks it assigned.
func (p *PostgreSQLOrderRepository) AssignDriver(ctx context.Context, id, driverID string) error {
	querier := database.GetTx(ctx, p.db)

	query := `UPDATE orders
			  SET driver_id = $2, status = $3, updated_at = NOW()
			  WHERE id = $1`

	result, err := querier.ExecContext(ctx, query, id, driverID, courierDomain.OrderStatusAssigned)
	if err != nil {
		return apperrors.Wrap(apperrors.ErrStorage, err.Error())
	}
	return requireOrderRow(result)
}

// Delete removes an order from the local store.
func (p *PostgreSQLOrderRepository) Delete(ctx context.Context, id string) error {
	querier := database.GetTx(ctx, p.db)

	result, err := querier.ExecContext(ctx, `DELETE FROM orders WHERE id = $1`, id)
	if err != nil {
		return apperrors.Wrap(apperrors.ErrStorage, err.Error())
	}
	return requireOrderRow(result)
}

// List returns orders ordered by creation time.
func (p *PostgreSQLOrderRepository) List(ctx context.Context, offset, limit int) ([]*courierDomain.Order, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT ` + orderColumns + ` FROM orders ORDER BY created_at DESC LIMIT $1 OFFSET $2`

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

func requireDriverRow(result sql.Result) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return apperrors.Wrap(apperrors.ErrStorage, err.Error())
	}
	if rows == 0 {
		return courierDomain.ErrDriverNotFound
	}
	return nil
}

func requireOrderRow(result sql.Result) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return apperrors.Wrap(apperrors.ErrStorage, err.Error())
	}
	if rows == 0 {
		return courierDomain.ErrOrderNotFound
	}
	return nil
}
