package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/allisson/courier-sync/internal/errors"
	queueDomain "github.com/allisson/courier-sync/internal/queue/domain"
)

func newMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	return db, mock
}

func queueRecordRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "entity_type", "entity_id", "operation", "payload", "priority", "status",
		"retry_count", "last_error", "expires_at", "created_at", "last_attempt_at", "next_attempt_at",
	})
}

func TestPostgreSQLQueueRepository_Add(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPostgreSQLQueueRepository(db)
	ctx := context.Background()

	now := time.Now().UTC()
	record := &queueDomain.QueueRecord{
		EntityType: "driver",
		EntityID:   "driver-1",
		Operation:  queueDomain.OperationUpdateLocation,
		Payload:    `{"method":"PUT","path":"/v1/drivers/driver-1/location"}`,
		Priority:   queueDomain.PriorityHigh,
		ExpiresAt:  now.Add(24 * time.Hour),
		CreatedAt:  now,
	}

	mock.ExpectQuery(`INSERT INTO sync_queue`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(42)))

	err := repo.Add(ctx, record, 1000)
	require.NoError(t, err)
	assert.Equal(t, int64(42), record.ID)
	assert.Equal(t, queueDomain.StatusPending, record.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgreSQLQueueRepository_Add_QueueFull(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPostgreSQLQueueRepository(db)
	ctx := context.Background()

	// The capacity-guarded insert returns no row when the active set is full.
	mock.ExpectQuery(`INSERT INTO sync_queue`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	record := &queueDomain.QueueRecord{
		EntityType: "order",
		EntityID:   "order-1",
		Operation:  queueDomain.OperationCreate,
		CreatedAt:  time.Now().UTC(),
	}

	err := repo.Add(ctx, record, 1000)
	assert.ErrorIs(t, err, apperrors.ErrQueueFull)
	assert.Zero(t, record.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgreSQLQueueRepository_Add_StorageError(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPostgreSQLQueueRepository(db)
	ctx := context.Background()

	mock.ExpectQuery(`INSERT INTO sync_queue`).WillReturnError(assert.AnError)

	record := &queueDomain.QueueRecord{
		EntityType: "order",
		EntityID:   "order-1",
		Operation:  queueDomain.OperationCreate,
		CreatedAt:  time.Now().UTC(),
	}

	err := repo.Add(ctx, record, 1000)
	assert.ErrorIs(t, err, apperrors.ErrStorage)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgreSQLQueueRepository_GetPending(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPostgreSQLQueueRepository(db)
	ctx := context.Background()

	now := time.Now().UTC()
	rows := queueRecordRows().
		AddRow(int64(1), "order", "order-1", "create", `{}`, int(queueDomain.PriorityCritical),
			"pending", 0, nil, now.Add(time.Hour), now, nil, now).
		AddRow(int64(2), "driver", "driver-1", "update_location", `{}`, int(queueDomain.PriorityHigh),
			"pending", 1, "timeout", now.Add(time.Hour), now, now, now)

	mock.ExpectQuery(`SELECT (.+) FROM sync_queue WHERE status = \$1 AND next_attempt_at <= \$2`).
		WithArgs(string(queueDomain.StatusPending), sqlmock.AnyArg()).
		WillReturnRows(rows)

	records, err := repo.GetPending(ctx, now)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, int64(1), records[0].ID)
	assert.Equal(t, queueDomain.PriorityCritical, records[0].Priority)
	assert.Nil(t, records[0].LastError)
	assert.Equal(t, "driver", records[1].EntityType)
	require.NotNil(t, records[1].LastError)
	assert.Equal(t, "timeout", *records[1].LastError)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgreSQLQueueRepository_GetPendingByEntity_NotFound(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPostgreSQLQueueRepository(db)
	ctx := context.Background()

	mock.ExpectQuery(`SELECT (.+) FROM sync_queue WHERE entity_type = \$1`).
		WillReturnRows(queueRecordRows())

	record, err := repo.GetPendingByEntity(ctx, "driver", "driver-1", queueDomain.OperationUpdateLocation)
	assert.ErrorIs(t, err, queueDomain.ErrRecordNotFound)
	assert.Nil(t, record)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgreSQLQueueRepository_MarkSyncing(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPostgreSQLQueueRepository(db)
	ctx := context.Background()

	mock.ExpectExec(`UPDATE sync_queue`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.MarkSyncing(ctx, 7, time.Now().UTC())
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgreSQLQueueRepository_MarkSyncing_AlreadyClaimed(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPostgreSQLQueueRepository(db)
	ctx := context.Background()

	// A record that is no longer pending cannot be claimed a second time.
	mock.ExpectExec(`UPDATE sync_queue`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.MarkSyncing(ctx, 7, time.Now().UTC())
	assert.ErrorIs(t, err, queueDomain.ErrRecordNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgreSQLQueueRepository_Complete_Idempotent(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPostgreSQLQueueRepository(db)
	ctx := context.Background()

	mock.ExpectExec(`DELETE FROM sync_queue WHERE id = \$1`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`DELETE FROM sync_queue WHERE id = \$1`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, repo.Complete(ctx, 7))
	// Completing the same id again is a no-op, not an error.
	assert.NoError(t, repo.Complete(ctx, 7))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgreSQLQueueRepository_MarkFailed(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPostgreSQLQueueRepository(db)
	ctx := context.Background()

	mock.ExpectExec(`UPDATE sync_queue`).
		WithArgs(
			"connection refused",
			sqlmock.AnyArg(),
			3,
			string(queueDomain.StatusFailed),
			string(queueDomain.StatusPending),
			int64(7),
			string(queueDomain.StatusSyncing),
		).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.MarkFailed(ctx, 7, "connection refused", 3, time.Now().UTC().Add(30*time.Second))
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgreSQLQueueRepository_Delete_NotFound(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPostgreSQLQueueRepository(db)
	ctx := context.Background()

	mock.ExpectExec(`DELETE FROM sync_queue`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Delete(ctx, 99)
	assert.ErrorIs(t, err, queueDomain.ErrRecordNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgreSQLQueueRepository_CountPending(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPostgreSQLQueueRepository(db)
	ctx := context.Background()

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM sync_queue WHERE status = \$1`).
		WithArgs(string(queueDomain.StatusPending)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(12))

	count, err := repo.CountPending(ctx)
	require.NoError(t, err)
	assert.Equal(t, 12, count)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgreSQLQueueRepository_ListFailed(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPostgreSQLQueueRepository(db)
	ctx := context.Background()

	now := time.Now().UTC()
	rows := queueRecordRows().
		AddRow(int64(5), "order", "order-9", "cancel", `{}`, int(queueDomain.PriorityCritical),
			"failed", 3, "backend returned 500", now.Add(time.Hour), now, now, now)

	mock.ExpectQuery(`SELECT (.+) FROM sync_queue WHERE status = \$1`).
		WithArgs(string(queueDomain.StatusFailed), 50, 0).
		WillReturnRows(rows)

	records, err := repo.ListFailed(ctx, 0, 50)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, queueDomain.StatusFailed, records[0].Status)
	assert.Equal(t, 3, records[0].RetryCount)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgreSQLQueueRepository_ResetAllFailed(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPostgreSQLQueueRepository(db)
	ctx := context.Background()

	mock.ExpectExec(`UPDATE sync_queue`).
		WillReturnResult(sqlmock.NewResult(0, 4))

	count, err := repo.ResetAllFailed(ctx, time.Now().UTC())
	require.NoError(t, err)
	assert.Equal(t, int64(4), count)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgreSQLQueueRepository_DeleteExpired(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPostgreSQLQueueRepository(db)
	ctx := context.Background()

	now := time.Now().UTC()

	// Failed records survive the purge for manual retry.
	mock.ExpectExec(`DELETE FROM sync_queue WHERE expires_at < \$1 AND status != \$2`).
		WithArgs(now, string(queueDomain.StatusFailed)).
		WillReturnResult(sqlmock.NewResult(0, 3))

	count, err := repo.DeleteExpired(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgreSQLQueueRepository_CountExpired(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPostgreSQLQueueRepository(db)
	ctx := context.Background()

	now := time.Now().UTC()

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM sync_queue WHERE expires_at < \$1 AND status != \$2`).
		WithArgs(now, string(queueDomain.StatusFailed)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))

	count, err := repo.CountExpired(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
	assert.NoError(t, mock.ExpectationsWereMet())
}
