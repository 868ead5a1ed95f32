// Package usecase implements the sync queue engine: enqueue with capacity,
// TTL, and deduplication semantics, and the connectivity-time drain that
// replays queued mutations in priority-then-FIFO order.
package usecase

import (
	"context"
	"time"

	queueDomain "github.com/allisson/courier-sync/internal/queue/domain"
)

// QueueRepository defines the queue record persistence operations used by the
// sync engine. Each operation is individually atomic; the engine never wraps a
// whole drain cycle in one transaction (partial progress is intended).
type QueueRepository interface {
	Add(ctx context.Context, record *queueDomain.QueueRecord, maxSize int) error
	GetPending(ctx context.Context, now time.Time) ([]*queueDomain.QueueRecord, error)
	GetPendingByEntity(
		ctx context.Context,
		entityType, entityID string,
		operation queueDomain.Operation,
	) (*queueDomain.QueueRecord, error)
	UpdatePayload(
		ctx context.Context,
		id int64,
		payload string,
		priority queueDomain.Priority,
		expiresAt time.Time,
	) error
	MarkSyncing(ctx context.Context, id int64, now time.Time) error
	Complete(ctx context.Context, id int64) error
	MarkFailed(ctx context.Context, id int64, lastError string, retryLimit int, nextAttemptAt time.Time) error
	Delete(ctx context.Context, id int64) error
	CountPending(ctx context.Context) (int, error)
	ListFailed(ctx context.Context, offset, limit int) ([]*queueDomain.QueueRecord, error)
	ResetFailed(ctx context.Context, id int64, now time.Time) error
	ResetAllFailed(ctx context.Context, now time.Time) (int64, error)
	CountExpired(ctx context.Context, now time.Time) (int64, error)
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

// DrainResult summarizes one drain cycle.
type DrainResult struct {
	// Completed is the number of records successfully replayed and deleted.
	Completed int
	// Failed is the number of records whose send attempt failed this cycle.
	Failed int
	// Expired is the number of records dropped without a send because their
	// expiry had passed. Not counted as processed.
	Expired int
	// Skipped reports that the drain was a no-op because another drain was
	// already in progress.
	Skipped bool
}

// QueueUseCase defines the interface for the sync queue engine.
type QueueUseCase interface {
	// Enqueue appends a mutation to the queue. An existing pending record for
	// the same entity and operation is refreshed in place (deduplication)
	// instead of inserting a duplicate.
	Enqueue(
		ctx context.Context,
		entityType, entityID string,
		operation queueDomain.Operation,
		payload *queueDomain.Payload,
	) (*queueDomain.QueueRecord, error)

	// Drain replays pending records through the network sender. At most one
	// drain runs at a time; a concurrent call is a no-op.
	Drain(ctx context.Context) (*DrainResult, error)

	// PendingCount returns the number of pending records.
	PendingCount(ctx context.Context) (int, error)

	// WatchPendingCount emits the pending count whenever it changes, until ctx
	// is cancelled. Side-effect free: watchers never mutate queue state.
	WatchPendingCount(ctx context.Context) <-chan int

	// ListFailed returns failed records for operator inspection.
	ListFailed(ctx context.Context, offset, limit int) ([]*queueDomain.QueueRecord, error)

	// RetryFailed returns one failed record to the pending set.
	RetryFailed(ctx context.Context, id int64) error

	// RetryAllFailed returns every failed record to the pending set.
	RetryAllFailed(ctx context.Context) (int64, error)

	// CleanupExpired purges expired records. With dryRun it only counts them.
	CleanupExpired(ctx context.Context, dryRun bool) (int64, error)
}
