// Package repository implements durable persistence for sync queue records.
// Repositories support both PostgreSQL and MySQL; each operation is a single
// atomic statement so enqueues and drain-side status mutations can interleave
// safely.
package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/allisson/courier-sync/internal/database"
	apperrors "github.com/allisson/courier-sync/internal/errors"
	queueDomain "github.com/allisson/courier-sync/internal/queue/domain"
)

// queueRecordColumns is the canonical column list scanned into a QueueRecord.
const queueRecordColumns = `id, entity_type, entity_id, operation, payload, priority, status,
		retry_count, last_error, expires_at, created_at, last_attempt_at, next_attempt_at`

// PostgreSQLQueueRepository handles queue record persistence for PostgreSQL.
type PostgreSQLQueueRepository struct {
	db *sql.DB
}

// NewPostgreSQLQueueRepository creates a new PostgreSQL queue repository instance.
func NewPostgreSQLQueueRepository(db *sql.DB) *PostgreSQLQueueRepository {
	return &PostgreSQLQueueRepository{db: db}
}

// Add inserts a new pending record, enforcing the queue capacity atomically
// with the insert. Returns ErrQueueFull without inserting when the active set
// (pending + syncing) already holds maxSize records. On success the
// store-assigned id is written back into record.ID.
func (r *PostgreSQLQueueRepository) Add(
	ctx context.Context,
	record *queueDomain.QueueRecord,
	maxSize int,
) error {
	querier := database.GetTx(ctx, r.db)

	query := `INSERT INTO sync_queue
		(entity_type, entity_id, operation, payload, priority, status, retry_count,
		 expires_at, created_at, next_attempt_at)
		SELECT $1, $2, $3, $4, $5, $6, 0, $7, $8, $8
		WHERE (SELECT COUNT(*) FROM sync_queue WHERE status IN ($9, $10)) < $11
		RETURNING id`

	err := querier.QueryRowContext(
		ctx,
		query,
		record.EntityType,
		record.EntityID,
		record.Operation,
		record.Payload,
		record.Priority,
		queueDomain.StatusPending,
		record.ExpiresAt,
		record.CreatedAt,
		queueDomain.StatusPending,
		queueDomain.StatusSyncing,
		maxSize,
	).Scan(&record.ID)
	if err != nil {
		if err == sql.ErrNoRows {
			return apperrors.ErrQueueFull
		}
		return apperrors.Wrap(apperrors.ErrStorage, err.Error())
	}

	record.Status = queueDomain.StatusPending
	record.NextAttemptAt = record.CreatedAt
	return nil
}

// GetPending retrieves pending records eligible for replay (backoff window
// elapsed), ordered by priority descending then created_at ascending.
func (r *PostgreSQLQueueRepository) GetPending(
	ctx context.Context,
	now time.Time,
) ([]*queueDomain.QueueRecord, error) {
	querier := database.GetTx(ctx, r.db)

	query := `SELECT ` + queueRecordColumns + `
		FROM sync_queue
		WHERE status = $1 AND next_attempt_at <= $2
		ORDER BY priority DESC, created_at ASC, id ASC`

	rows, err := querier.QueryContext(ctx, query, queueDomain.StatusPending, now)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrStorage, err.Error())
	}
	defer rows.Close() //nolint:errcheck

	return scanQueueRecords(rows)
}

// GetPendingByEntity retrieves the pending record for one entity and operation,
// used for enqueue-time deduplication.
func (r *PostgreSQLQueueRepository) GetPendingByEntity(
	ctx context.Context,
	entityType, entityID string,
	operation queueDomain.Operation,
) (*queueDomain.QueueRecord, error) {
	querier := database.GetTx(ctx, r.db)

	query := `SELECT ` + queueRecordColumns + `
		FROM sync_queue
		WHERE entity_type = $1 AND entity_id = $2 AND operation = $3 AND status = $4
		ORDER BY id ASC
		LIMIT 1`

	row := querier.QueryRowContext(ctx, query, entityType, entityID, operation, queueDomain.StatusPending)

	record, err := scanQueueRecord(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, queueDomain.ErrRecordNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrStorage, err.Error())
	}
	return record, nil
}

// UpdatePayload refreshes the payload, priority, and expiry of a pending record
// in place, preserving its created_at and therefore its replay position.
func (r *PostgreSQLQueueRepository) UpdatePayload(
	ctx context.Context,
	id int64,
	payload string,
	priority queueDomain.Priority,
	expiresAt time.Time,
) error {
	querier := database.GetTx(ctx, r.db)

	query := `UPDATE sync_queue
		SET payload = $1, priority = $2, expires_at = $3
		WHERE id = $4 AND status = $5`

	result, err := querier.ExecContext(ctx, query, payload, priority, expiresAt, id, queueDomain.StatusPending)
	if err != nil {
		return apperrors.Wrap(apperrors.ErrStorage, err.Error())
	}
	return requireRowAffected(result)
}

// MarkSyncing transitions a pending record to syncing. Only one caller can win
// the transition; a record already syncing or gone reports ErrRecordNotFound.
func (r *PostgreSQLQueueRepository) MarkSyncing(ctx context.Context, id int64, now time.Time) error {
	querier := database.GetTx(ctx, r.db)

	query := `UPDATE sync_queue
		SET status = $1, last_attempt_at = $2
		WHERE id = $3 AND status = $4`

	result, err := querier.ExecContext(ctx, query, queueDomain.StatusSyncing, now, id, queueDomain.StatusPending)
	if err != nil {
		return apperrors.Wrap(apperrors.ErrStorage, err.Error())
	}
	return requireRowAffected(result)
}

// Complete deletes a successfully replayed record. Completing an id that is
// already gone is a no-op.
func (r *PostgreSQLQueueRepository) Complete(ctx context.Context, id int64) error {
	querier := database.GetTx(ctx, r.db)

	_, err := querier.ExecContext(ctx, `DELETE FROM sync_queue WHERE id = $1`, id)
	if err != nil {
		return apperrors.Wrap(apperrors.ErrStorage, err.Error())
	}
	return nil
}

// MarkFailed records a failed send attempt: increments retry_count, stores the
// failure reason, and either re-queues the record as pending with the given
// backoff deadline or, once the retry limit is reached, parks it as failed.
func (r *PostgreSQLQueueRepository) MarkFailed(
	ctx context.Context,
	id int64,
	lastError string,
	retryLimit int,
	nextAttemptAt time.Time,
) error {
	querier := database.GetTx(ctx, r.db)

	query := `UPDATE sync_queue
		SET retry_count = retry_count + 1,
		    last_error = $1,
		    next_attempt_at = $2,
		    status = CASE WHEN retry_count + 1 >= $3 THEN $4 ELSE $5 END
		WHERE id = $6 AND status = $7`

	result, err := querier.ExecContext(
		ctx,
		query,
		lastError,
		nextAttemptAt,
		retryLimit,
		queueDomain.StatusFailed,
		queueDomain.StatusPending,
		id,
		queueDomain.StatusSyncing,
	)
	if err != nil {
		return apperrors.Wrap(apperrors.ErrStorage, err.Error())
	}
	return requireRowAffected(result)
}

// Delete removes a record regardless of status; used for expiry cleanup.
func (r *PostgreSQLQueueRepository) Delete(ctx context.Context, id int64) error {
	querier := database.GetTx(ctx, r.db)

	result, err := querier.ExecContext(ctx, `DELETE FROM sync_queue WHERE id = $1`, id)
	if err != nil {
		return apperrors.Wrap(apperrors.ErrStorage, err.Error())
	}
	return requireRowAffected(result)
}

// CountPending returns the number of pending records.
func (r *PostgreSQLQueueRepository) CountPending(ctx context.Context) (int, error) {
	querier := database.GetTx(ctx, r.db)

	var count int
	err := querier.QueryRowContext(
		ctx,
		`SELECT COUNT(*) FROM sync_queue WHERE status = $1`,
		queueDomain.StatusPending,
	).Scan(&count)
	if err != nil {
		return 0, apperrors.Wrap(apperrors.ErrStorage, err.Error())
	}
	return count, nil
}

// ListFailed returns failed records with their last error, newest first,
// for operator inspection.
func (r *PostgreSQLQueueRepository) ListFailed(
	ctx context.Context,
	offset, limit int,
) ([]*queueDomain.QueueRecord, error) {
	querier := database.GetTx(ctx, r.db)

	query := `SELECT ` + queueRecordColumns + `
		FROM sync_queue
		WHERE status = $1
		ORDER BY id DESC
		LIMIT $2 OFFSET $3`

	rows, err := querier.QueryContext(ctx, query, queueDomain.StatusFailed, limit, offset)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrStorage, err.Error())
	}
	defer rows.Close() //nolint:errcheck

	return scanQueueRecords(rows)
}

// ResetFailed returns a failed record to the pending set with a fresh retry
// budget so the next drain picks it up again.
func (r *PostgreSQLQueueRepository) ResetFailed(ctx context.Context, id int64, now time.Time) error {
	querier := database.GetTx(ctx, r.db)

	query := `UPDATE sync_queue
		SET status = $1, retry_count = 0, next_attempt_at = $2
		WHERE id = $3 AND status = $4`

	result, err := querier.ExecContext(ctx, query, queueDomain.StatusPending, now, id, queueDomain.StatusFailed)
	if err != nil {
		return apperrors.Wrap(apperrors.ErrStorage, err.Error())
	}
	return requireRowAffected(result)
}

// ResetAllFailed returns every failed record to the pending set. Returns the
// number of records reset.
func (r *PostgreSQLQueueRepository) ResetAllFailed(ctx context.Context, now time.Time) (int64, error) {
	querier := database.GetTx(ctx, r.db)

	query := `UPDATE sync_queue
		SET status = $1, retry_count = 0, next_attempt_at = $2
		WHERE status = $3`

	result, err := querier.ExecContext(ctx, query, queueDomain.StatusPending, now, queueDomain.StatusFailed)
	if err != nil {
		return 0, apperrors.Wrap(apperrors.ErrStorage, err.Error())
	}

	count, err := result.RowsAffected()
	if err != nil {
		return 0, apperrors.Wrap(apperrors.ErrStorage, err.Error())
	}
	return count, nil
}

// CountExpired returns the number of non-failed records whose expiry has
// passed. Failed records are excluded: they stay for manual retry no matter
// how old they are.
func (r *PostgreSQLQueueRepository) CountExpired(ctx context.Context, now time.Time) (int64, error) {
	querier := database.GetTx(ctx, r.db)

	var count int64
	err := querier.QueryRowContext(
		ctx,
		`SELECT COUNT(*) FROM sync_queue WHERE expires_at < $1 AND status != $2`,
		now,
		queueDomain.StatusFailed,
	).Scan(&count)
	if err != nil {
		return 0, apperrors.Wrap(apperrors.ErrStorage, err.Error())
	}
	return count, nil
}

// DeleteExpired removes every non-failed record whose expiry has passed.
// Returns the number of records removed.
func (r *PostgreSQLQueueRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	querier := database.GetTx(ctx, r.db)

	result, err := querier.ExecContext(
		ctx,
		`DELETE FROM sync_queue WHERE expires_at < $1 AND status != $2`,
		now,
		queueDomain.StatusFailed,
	)
	if err != nil {
		return 0, apperrors.Wrap(apperrors.ErrStorage, err.Error())
	}

	count, err := result.RowsAffected()
	if err != nil {
		return 0, apperrors.Wrap(apperrors.ErrStorage, err.Error())
	}
	return count, nil
}

// rowScanner abstracts *sql.Row and *sql.Rows for record scanning.
type rowScanner interface {
	Scan(dest ...any) error
}

// scanQueueRecord scans one record from a row.
func scanQueueRecord(row rowScanner) (*queueDomain.QueueRecord, error) {
	var record queueDomain.QueueRecord
	err := row.Scan(
		&record.ID,
		&record.EntityType,
		&record.EntityID,
		&record.Operation,
		&record.Payload,
		&record.Priority,
		&record.Status,
		&record.RetryCount,
		&record.LastError,
		&record.ExpiresAt,
		&record.CreatedAt,
		&record.LastAttemptAt,
		&record.NextAttemptAt,
	)
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// scanQueueRecords scans all records from a result set.
func scanQueueRecords(rows *sql.Rows) ([]*queueDomain.QueueRecord, error) {
	var records []*queueDomain.QueueRecord
	for rows.Next() {
		record, err := scanQueueRecord(rows)
		if err != nil {
			return nil, apperrors.Wrap(apperrors.ErrStorage, err.Error())
		}
		records = append(records, record)
	}

	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrStorage, err.Error())
	}

	return records, nil
}

// requireRowAffected maps a zero-row update to ErrRecordNotFound.
func requireRowAffected(result sql.Result) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return apperrors.Wrap(apperrors.ErrStorage, err.Error())
	}
	if affected == 0 {
		return queueDomain.ErrRecordNotFound
	}
	return nil
}
