package usecase

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/semaphore"

	apperrors "github.com/allisson/courier-sync/internal/errors"
	queueDomain "github.com/allisson/courier-sync/internal/queue/domain"
	"github.com/allisson/courier-sync/internal/sender"
)

// Config holds sync queue engine configuration.
type Config struct {
	// MaxSize caps the active set (pending + syncing records).
	MaxSize int
	// RetryLimit is the number of failed attempts before a record is parked as failed.
	RetryLimit int
	// RetryBackoff is the base delay of the exponential retry backoff.
	RetryBackoff time.Duration
	// RetryBackoffMax caps the exponential retry backoff.
	RetryBackoffMax time.Duration
	// DefaultTTL is applied when a payload carries no expiry.
	DefaultTTL time.Duration
	// PendingPollInterval is the period of the WatchPendingCount poll.
	PendingPollInterval time.Duration
}

// SyncQueueUseCase implements the sync queue engine over a QueueRepository and
// an abstract network sender.
type SyncQueueUseCase struct {
	config    Config
	queueRepo QueueRepository
	sender    sender.Sender
	logger    *slog.Logger

	// drainSem makes draining non-re-entrant: a second drain request while one
	// is in progress is a no-op, not a duplicate pass.
	drainSem *semaphore.Weighted

	// now is swappable for tests.
	now func() time.Time
}

// NewSyncQueueUseCase creates a new SyncQueueUseCase.
func NewSyncQueueUseCase(
	config Config,
	queueRepo QueueRepository,
	networkSender sender.Sender,
	logger *slog.Logger,
) *SyncQueueUseCase {
	return &SyncQueueUseCase{
		config:    config,
		queueRepo: queueRepo,
		sender:    networkSender,
		logger:    logger,
		drainSem:  semaphore.NewWeighted(1),
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Enqueue appends a mutation to the queue. If a pending record already exists
// for the same entity and operation, its payload, priority, and expiry are
// refreshed in place; the record keeps its created_at and with it its replay
// position. Returns ErrQueueFull when the active set is at capacity.
func (uc *SyncQueueUseCase) Enqueue(
	ctx context.Context,
	entityType, entityID string,
	operation queueDomain.Operation,
	payload *queueDomain.Payload,
) (*queueDomain.QueueRecord, error) {
	if !operation.Valid() {
		return nil, queueDomain.ErrInvalidOperation
	}
	if payload == nil {
		return nil, apperrors.Wrap(apperrors.ErrInvalidInput, "payload is required")
	}

	now := uc.now()
	if payload.ExpiresAt.IsZero() {
		payload.ExpiresAt = now.Add(uc.config.DefaultTTL)
	}

	raw, err := payload.Marshal()
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInvalidInput, err.Error())
	}

	// Best-effort deduplication by entity + operation.
	existing, err := uc.queueRepo.GetPendingByEntity(ctx, entityType, entityID, operation)
	if err == nil {
		updateErr := uc.queueRepo.UpdatePayload(ctx, existing.ID, raw, payload.Priority, payload.ExpiresAt)
		switch {
		case updateErr == nil:
			existing.Payload = raw
			existing.Priority = payload.Priority
			existing.ExpiresAt = payload.ExpiresAt

			if uc.logger != nil {
				uc.logger.Debug("refreshed queued mutation",
					slog.Int64("id", existing.ID),
					slog.String("entity_type", entityType),
					slog.String("entity_id", entityID),
					slog.String("operation", string(operation)),
				)
			}
			return existing, nil
		case apperrors.Is(updateErr, queueDomain.ErrRecordNotFound):
			// A concurrent drain claimed the record between the lookup and the
			// refresh. The mutation still has to survive, so insert it fresh.
		default:
			return nil, updateErr
		}
	} else if !apperrors.Is(err, queueDomain.ErrRecordNotFound) {
		return nil, err
	}

	record := &queueDomain.QueueRecord{
		EntityType: entityType,
		EntityID:   entityID,
		Operation:  operation,
		Payload:    raw,
		Priority:   payload.Priority,
		ExpiresAt:  payload.ExpiresAt,
		CreatedAt:  now,
	}

	if err := uc.queueRepo.Add(ctx, record, uc.config.MaxSize); err != nil {
		return nil, err
	}

	if uc.logger != nil {
		uc.logger.Info("queued mutation",
			slog.Int64("id", record.ID),
			slog.String("entity_type", entityType),
			slog.String("entity_id", entityID),
			slog.String("operation", string(operation)),
			slog.String("priority", payload.Priority.String()),
		)
	}
	return record, nil
}

// Drain replays pending records in priority-then-FIFO order. Expired records
// are dropped without a send. A failed send re-queues the record for a later
// cycle (never re-attempted within the same cycle) or parks it as failed once
// the retry limit is exhausted. When the sender reports a connectivity-class
// error the rest of the cycle is abandoned: the remaining records would fail
// the same way.
func (uc *SyncQueueUseCase) Drain(ctx context.Context) (*DrainResult, error) {
	if !uc.drainSem.TryAcquire(1) {
		return &DrainResult{Skipped: true}, nil
	}
	defer uc.drainSem.Release(1)

	records, err := uc.queueRepo.GetPending(ctx, uc.now())
	if err != nil {
		return nil, err
	}

	// The store is expected to return replay order, but the ordering contract
	// belongs to the engine: sort again regardless of physical row order.
	queueDomain.SortForReplay(records)

	result := &DrainResult{}
	if len(records) == 0 {
		return result, nil
	}

	if uc.logger != nil {
		uc.logger.Info("draining sync queue", slog.Int("pending", len(records)))
	}

	for _, record := range records {
		now := uc.now()

		if record.Expired(now) {
			if err := uc.queueRepo.Delete(ctx, record.ID); err != nil {
				uc.logError("failed to delete expired record", record.ID, err)
			}
			result.Expired++
			continue
		}

		if err := uc.queueRepo.MarkSyncing(ctx, record.ID, now); err != nil {
			// Lost the claim or the status write failed; leave the record for
			// a later cycle rather than risking a double send.
			uc.logError("failed to claim record", record.ID, err)
			continue
		}

		sendErr := uc.sendRecord(ctx, record)
		if sendErr != nil {
			backoff := uc.backoffFor(record.RetryCount)
			if err := uc.queueRepo.MarkFailed(ctx, record.ID, sendErr.Error(), uc.config.RetryLimit, now.Add(backoff)); err != nil {
				uc.logError("failed to record send failure", record.ID, err)
			}
			result.Failed++

			if sender.IsConnectivityError(sendErr) {
				if uc.logger != nil {
					uc.logger.Warn("connectivity lost mid-drain, abandoning cycle",
						slog.Int64("id", record.ID),
						slog.Any("error", sendErr),
					)
				}
				break
			}
			continue
		}

		if err := uc.queueRepo.Complete(ctx, record.ID); err != nil {
			uc.logError("failed to complete record", record.ID, err)
			continue
		}
		result.Completed++
	}

	if uc.logger != nil {
		uc.logger.Info("drain cycle finished",
			slog.Int("completed", result.Completed),
			slog.Int("failed", result.Failed),
			slog.Int("expired", result.Expired),
		)
	}
	return result, nil
}

// sendRecord reconstructs the request from the record payload and delivers it.
// The payload data is passed to the sender verbatim.
func (uc *SyncQueueUseCase) sendRecord(ctx context.Context, record *queueDomain.QueueRecord) error {
	payload, err := queueDomain.ParsePayload(record.Payload)
	if err != nil {
		return apperrors.Wrap(err, "malformed payload")
	}

	_, err = uc.sender.Send(ctx, &sender.Request{
		Method:  payload.Method,
		Path:    payload.Path,
		Headers: payload.Headers,
		Body:    payload.Data,
	})
	return err
}

// backoffFor computes the capped exponential delay before the next attempt.
func (uc *SyncQueueUseCase) backoffFor(retryCount int) time.Duration {
	backoff := uc.config.RetryBackoff
	for i := 0; i < retryCount; i++ {
		backoff *= 2
		if backoff >= uc.config.RetryBackoffMax {
			return uc.config.RetryBackoffMax
		}
	}
	if backoff > uc.config.RetryBackoffMax {
		return uc.config.RetryBackoffMax
	}
	return backoff
}

// PendingCount returns the number of pending records.
func (uc *SyncQueueUseCase) PendingCount(ctx context.Context) (int, error) {
	return uc.queueRepo.CountPending(ctx)
}

// WatchPendingCount polls the pending count and emits it on change until ctx
// is cancelled. The channel is closed on cancellation. Slow receivers observe
// the most recent value, not every intermediate one.
func (uc *SyncQueueUseCase) WatchPendingCount(ctx context.Context) <-chan int {
	ch := make(chan int, 1)

	go func() {
		defer close(ch)

		ticker := time.NewTicker(uc.config.PendingPollInterval)
		defer ticker.Stop()

		last := -1
		emit := func() {
			count, err := uc.queueRepo.CountPending(ctx)
			if err != nil {
				if ctx.Err() == nil {
					uc.logError("failed to poll pending count", 0, err)
				}
				return
			}
			if count == last {
				return
			}
			last = count

			// Replace a stale unread value instead of blocking the poll loop.
			select {
			case ch <- count:
			default:
				select {
				case <-ch:
				default:
				}
				ch <- count
			}
		}

		emit()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				emit()
			}
		}
	}()

	return ch
}

// ListFailed returns failed records for operator inspection.
func (uc *SyncQueueUseCase) ListFailed(
	ctx context.Context,
	offset, limit int,
) ([]*queueDomain.QueueRecord, error) {
	return uc.queueRepo.ListFailed(ctx, offset, limit)
}

// RetryFailed returns one failed record to the pending set with a fresh retry budget.
func (uc *SyncQueueUseCase) RetryFailed(ctx context.Context, id int64) error {
	return uc.queueRepo.ResetFailed(ctx, id, uc.now())
}

// RetryAllFailed returns every failed record to the pending set.
func (uc *SyncQueueUseCase) RetryAllFailed(ctx context.Context) (int64, error) {
	return uc.queueRepo.ResetAllFailed(ctx, uc.now())
}

// CleanupExpired purges expired records; with dryRun it only reports how many
// would be removed.
func (uc *SyncQueueUseCase) CleanupExpired(ctx context.Context, dryRun bool) (int64, error) {
	if dryRun {
		return uc.queueRepo.CountExpired(ctx, uc.now())
	}
	return uc.queueRepo.DeleteExpired(ctx, uc.now())
}

// logError logs a queue-internal failure without surfacing it to callers.
func (uc *SyncQueueUseCase) logError(msg string, id int64, err error) {
	if uc.logger == nil {
		return
	}
	attrs := []any{slog.Any("error", err)}
	if id != 0 {
		attrs = append(attrs, slog.Int64("id", id))
	}
	uc.logger.Error(msg, attrs...)
}
