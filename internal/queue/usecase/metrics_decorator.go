package usecase

import (
	"context"
	"time"

	"github.com/allisson/courier-sync/internal/metrics"
	queueDomain "github.com/allisson/courier-sync/internal/queue/domain"
)

// queueUseCaseWithMetrics decorates QueueUseCase with metrics instrumentation.
type queueUseCaseWithMetrics struct {
	next         QueueUseCase
	business     metrics.BusinessMetrics
	queueMetrics metrics.QueueMetrics
}

// NewQueueUseCaseWithMetrics wraps a QueueUseCase with metrics recording.
func NewQueueUseCaseWithMetrics(
	useCase QueueUseCase,
	business metrics.BusinessMetrics,
	queueMetrics metrics.QueueMetrics,
) QueueUseCase {
	return &queueUseCaseWithMetrics{
		next:         useCase,
		business:     business,
		queueMetrics: queueMetrics,
	}
}

// Enqueue records metrics for enqueue operations.
func (q *queueUseCaseWithMetrics) Enqueue(
	ctx context.Context,
	entityType, entityID string,
	operation queueDomain.Operation,
	payload *queueDomain.Payload,
) (*queueDomain.QueueRecord, error) {
	start := time.Now()
	record, err := q.next.Enqueue(ctx, entityType, entityID, operation, payload)

	status := "success"
	if err != nil {
		status = "error"
	}

	priority := "unknown"
	if payload != nil {
		priority = payload.Priority.String()
	}

	q.business.RecordOperation(ctx, "queue", "enqueue", status)
	q.business.RecordDuration(ctx, "queue", "enqueue", time.Since(start), status)
	q.queueMetrics.RecordEnqueue(ctx, priority, status)

	return record, err
}

// Drain records metrics for drain cycles.
func (q *queueUseCaseWithMetrics) Drain(ctx context.Context) (*DrainResult, error) {
	start := time.Now()
	result, err := q.next.Drain(ctx)

	status := "success"
	if err != nil {
		status = "error"
	}

	q.business.RecordOperation(ctx, "queue", "drain", status)
	q.business.RecordDuration(ctx, "queue", "drain", time.Since(start), status)

	if result != nil && !result.Skipped {
		q.queueMetrics.RecordDrain(ctx, result.Completed, result.Failed, result.Expired)
	}

	return result, err
}

// PendingCount records the live pending gauge on every read.
func (q *queueUseCaseWithMetrics) PendingCount(ctx context.Context) (int, error) {
	count, err := q.next.PendingCount(ctx)
	if err == nil {
		q.queueMetrics.SetPendingCount(ctx, count)
	}
	return count, err
}

// WatchPendingCount mirrors watched counts into the pending gauge.
func (q *queueUseCaseWithMetrics) WatchPendingCount(ctx context.Context) <-chan int {
	in := q.next.WatchPendingCount(ctx)
	out := make(chan int, 1)

	go func() {
		defer close(out)
		for count := range in {
			q.queueMetrics.SetPendingCount(ctx, count)
			select {
			case out <- count:
			default:
				select {
				case <-out:
				default:
				}
				out <- count
			}
		}
	}()

	return out
}

// ListFailed delegates without instrumentation.
func (q *queueUseCaseWithMetrics) ListFailed(
	ctx context.Context,
	offset, limit int,
) ([]*queueDomain.QueueRecord, error) {
	return q.next.ListFailed(ctx, offset, limit)
}

// RetryFailed records metrics for manual retries.
func (q *queueUseCaseWithMetrics) RetryFailed(ctx context.Context, id int64) error {
	err := q.next.RetryFailed(ctx, id)

	status := "success"
	if err != nil {
		status = "error"
	}
	q.business.RecordOperation(ctx, "queue", "retry_failed", status)

	return err
}

// RetryAllFailed records metrics for bulk manual retries.
func (q *queueUseCaseWithMetrics) RetryAllFailed(ctx context.Context) (int64, error) {
	count, err := q.next.RetryAllFailed(ctx)

	status := "success"
	if err != nil {
		status = "error"
	}
	q.business.RecordOperation(ctx, "queue", "retry_all_failed", status)

	return count, err
}

// CleanupExpired records metrics for expiry cleanup runs.
func (q *queueUseCaseWithMetrics) CleanupExpired(ctx context.Context, dryRun bool) (int64, error) {
	count, err := q.next.CleanupExpired(ctx, dryRun)

	status := "success"
	if err != nil {
		status = "error"
	}
	q.business.RecordOperation(ctx, "queue", "cleanup_expired", status)

	return count, err
}
