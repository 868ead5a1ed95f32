package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/allisson/courier-sync/internal/database"
	apperrors "github.com/allisson/courier-sync/internal/errors"
	queueDomain "github.com/allisson/courier-sync/internal/queue/domain"
)

// MySQLQueueRepository handles queue record persistence for MySQL.
type MySQLQueueRepository struct {
	db *sql.DB
}

// NewMySQLQueueRepository creates a new MySQL queue repository instance.
func NewMySQLQueueRepository(db *sql.DB) *MySQLQueueRepository {
	return &MySQLQueueRepository{db: db}
}

// Add inserts a new pending record, enforcing the queue capacity atomically
// with the insert. The capacity subquery reads through a derived table because
// MySQL forbids referencing the insert target directly.
func (r *MySQLQueueRepository) Add(
	ctx context.Context,
	record *queueDomain.QueueRecord,
	maxSize int,
) error {
	querier := database.GetTx(ctx, r.db)

	query := `INSERT INTO sync_queue
		(entity_type, entity_id, operation, payload, priority, status, retry_count,
		 expires_at, created_at, next_attempt_at)
		SELECT ?, ?, ?, ?, ?, ?, 0, ?, ?, ?
		FROM DUAL
		WHERE (SELECT COUNT(*) FROM (SELECT id FROM sync_queue WHERE status IN (?, ?)) AS active) < ?`

	result, err := querier.ExecContext(
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
		record.CreatedAt,
		queueDomain.StatusPending,
		queueDomain.StatusSyncing,
		maxSize,
	)
	if err != nil {
		return apperrors.Wrap(apperrors.ErrStorage, err.Error())
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return apperrors.Wrap(apperrors.ErrStorage, err.Error())
	}
	if affected == 0 {
		return apperrors.ErrQueueFull
	}

	id, err := result.LastInsertId()
	if err != nil {
		return apperrors.Wrap(apperrors.ErrStorage, err.Error())
	}

	record.ID = id
	record.Status = queueDomain.StatusPending
	record.NextAttemptAt = record.CreatedAt
	return nil
}

// GetPending retrieves pending records eligible for replay (backoff window
// elapsed), ordered by priority descending then created_at ascending.
func (r *MySQLQueueRepository) GetPending(
	ctx context.Context,
	now time.Time,
) ([]*queueDomain.QueueRecord, error) {
	querier := database.GetTx(ctx, r.db)

	query := `SELECT ` + queueRecordColumns + `
		FROM sync_queue
		WHERE status = ? AND next_attempt_at <= ?
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
func (r *MySQLQueueRepository) GetPendingByEntity(
	ctx context.Context,
	entityType, entityID string,
	operation queueDomain.Operation,
) (*queueDomain.QueueRecord, error) {
	querier := database.GetTx(ctx, r.db)

	query := `SELECT ` + queueRecordColumns + `
		FROM sync_queue
		WHERE entity_type = ? AND entity_id = ? AND operation = ? AND status = ?
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
func (r *MySQLQueueRepository) UpdatePayload(
	ctx context.Context,
	id int64,
	payload string,
	priority queueDomain.Priority,
	expiresAt time.Time,
) error {
	querier := database.GetTx(ctx, r.db)

	query := `UPDATE sync_queue
		SET payload = ?, priority = ?, expires_at = ?
		WHERE id = ? AND status = ?`

	result, err := querier.ExecContext(ctx, query, payload, priority, expiresAt, id, queueDomain.StatusPending)
	if err != nil {
		return apperrors.Wrap(apperrors.ErrStorage, err.Error())
	}
	return requireRowAffected(result)
}

// MarkSyncing transitions a pending record to syncing. Only one caller can win
// the transition; a record already syncing or gone reports ErrRecordNotFound.
func (r *MySQLQueueRepository) MarkSyncing(ctx context.Context, id int64, now time.Time) error {
	querier := database.GetTx(ctx, r.db)

	query := `UPDATE sync_queue
		SET status = ?, last_attempt_at = ?
		WHERE id = ? AND status = ?`

	result, err := querier.ExecContext(ctx, query, queueDomain.StatusSyncing, now, id, queueDomain.StatusPending)
	if err != nil {
		return apperrors.Wrap(apperrors.ErrStorage, err.Error())
	}
	return requireRowAffected(result)
}

// Complete deletes a successfully replayed record. Completing an id that is
// already gone is a no-op.
func (r *MySQLQueueRepository) Complete(ctx context.Context, id int64) error {
	querier := database.GetTx(ctx, r.db)

	_, err := querier.ExecContext(ctx, `DELETE FROM sync_queue WHERE id = ?`, id)
	if err != nil {
		return apperrors.Wrap(apperrors.ErrStorage, err.Error())
	}
	return nil
}

// MarkFailed records a failed send attempt: increments retry_count, stores the
// failure reason, and either re-queues the record as pending with the given
// backoff deadline or, once the retry limit is reached, parks it as failed.
func (r *MySQLQueueRepository) MarkFailed(
	ctx context.Context,
	id int64,
	lastError string,
	retryLimit int,
	nextAttemptAt time.Time,
) error {
	querier := database.GetTx(ctx, r.db)

	query := `UPDATE sync_queue
		SET retry_count = retry_count + 1,
		    last_error = ?,
		    next_attempt_at = ?,
		    status = CASE WHEN retry_count >= ? THEN ? ELSE ? END
		WHERE id = ? AND status = ?`

	// MySQL applies SET clauses left to right, so retry_count has already been
	// incremented when the CASE runs; compare against the limit directly.
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
func (r *MySQLQueueRepository) Delete(ctx context.Context, id int64) error {
	querier := database.GetTx(ctx, r.db)

	result, err := querier.ExecContext(ctx, `DELETE FROM sync_queue WHERE id = ?`, id)
	if err != nil {
		return apperrors.Wrap(apperrors.ErrStorage, err.Error())
	}
	return requireRowAffected(result)
}

// CountPending returns the number of pending records.
func (r *MySQLQueueRepository) CountPending(ctx context.Context) (int, error) {
	querier := database.GetTx(ctx, r.db)

	var count int
	err := querier.QueryRowContext(
		ctx,
		`SELECT COUNT(*) FROM sync_queue WHERE status = ?`,
		queueDomain.StatusPending,
	).Scan(&count)
	if err != nil {
		return 0, apperrors.Wrap(apperrors.ErrStorage, err.Error())
	}
	return count, nil
}

// ListFailed returns failed records with their last error, newest first,
// for operator inspection.
func (r *MySQLQueueRepository) ListFailed(
	ctx context.Context,
	offset, limit int,
) ([]*queueDomain.QueueRecord, error) {
	querier := database.GetTx(ctx, r.db)

	query := `SELECT ` + queueRecordColumns + `
		FROM sync_queue
		WHERE status = ?
		ORDER BY id DESC
		LIMIT ? OFFSET ?`

	rows, err := querier.QueryContext(ctx, query, queueDomain.StatusFailed, limit, offset)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrStorage, err.Error())
	}
	defer rows.Close() //nolint:errcheck

	return scanQueueRecords(rows)
}

// ResetFailed returns a failed record to the pending set with a fresh retry
// budget so the next drain picks it up again.
func (r *MySQLQueueRepository) ResetFailed(ctx context.Context, id int64, now time.Time) error {
	querier := database.GetTx(ctx, r.db)

	query := `UPDATE sync_queue
		SET status = ?, retry_count = 0, next_attempt_at = ?
		WHERE id = ? AND status = ?`

	result, err := querier.ExecContext(ctx, query, queueDomain.StatusPending, now, id, queueDomain.StatusFailed)
	if err != nil {
		return apperrors.Wrap(apperrors.ErrStorage, err.Error())
	}
	return requireRowAffected(result)
}

// ResetAllFailed returns every failed record to the pending set. Returns the
// number of records reset.
func (r *MySQLQueueRepository) ResetAllFailed(ctx context.Context, now time.Time) (int64, error) {
	querier := database.GetTx(ctx, r.db)

	query := `UPDATE sync_queue
		SET status = ?, retry_count = 0, next_attempt_at = ?
		WHERE status = ?`

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
func (r *MySQLQueueRepository) CountExpired(ctx context.Context, now time.Time) (int64, error) {
	querier := database.GetTx(ctx, r.db)

	var count int64
	err := querier.QueryRowContext(
		ctx,
		`SELECT COUNT(*) FROM sync_queue WHERE expires_at < ? AND status != ?`,
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
func (r *MySQLQueueRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	querier := database.GetTx(ctx, r.db)

	result, err := querier.ExecContext(
		ctx,
		`DELETE FROM sync_queue WHERE expires_at < ? AND status != ?`,
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
