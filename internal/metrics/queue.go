package metrics

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// QueueMetrics defines the interface for recording sync queue metrics.
// Implementations expose the live pending count and per-drain outcomes.
type QueueMetrics interface {
	// SetPendingCount records the current number of pending queue records.
	SetPendingCount(ctx context.Context, count int)

	// RecordDrain records the outcome of one drain cycle.
	RecordDrain(ctx context.Context, completed, failed, expired int)

	// RecordEnqueue records an enqueue with its priority tier and outcome.
	RecordEnqueue(ctx context.Context, priority, status string)
}

// queueMetrics implements QueueMetrics using OpenTelemetry metrics.
type queueMetrics struct {
	pendingGauge   metric.Int64Gauge
	drainCounter   metric.Int64Counter
	enqueueCounter metric.Int64Counter
}

// NewQueueMetrics creates a new QueueMetrics implementation using the provided meter provider.
// Returns error if meters cannot be initialized.
func NewQueueMetrics(meterProvider metric.MeterProvider, namespace string) (QueueMetrics, error) {
	meter := meterProvider.Meter(namespace)

	pendingGauge, err := meter.Int64Gauge(
		fmt.Sprintf("%s_queue_pending_records", namespace),
		metric.WithDescription("Current number of pending sync queue records"),
		metric.WithUnit("{record}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create pending gauge: %w", err)
	}

	drainCounter, err := meter.Int64Counter(
		fmt.Sprintf("%s_queue_drain_records_total", namespace),
		metric.WithDescription("Total number of queue records handled by drain cycles"),
		metric.WithUnit("{record}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create drain counter: %w", err)
	}

	enqueueCounter, err := meter.Int64Counter(
		fmt.Sprintf("%s_queue_enqueues_total", namespace),
		metric.WithDescription("Total number of enqueue attempts"),
		metric.WithUnit("{record}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create enqueue counter: %w", err)
	}

	return &queueMetrics{
		pendingGauge:   pendingGauge,
		drainCounter:   drainCounter,
		enqueueCounter: enqueueCounter,
	}, nil
}

// SetPendingCount records the current pending count.
func (q *queueMetrics) SetPendingCount(ctx context.Context, count int) {
	q.pendingGauge.Record(ctx, int64(count))
}

// RecordDrain records one drain cycle's outcomes with a result label per class.
func (q *queueMetrics) RecordDrain(ctx context.Context, completed, failed, expired int) {
	q.drainCounter.Add(ctx, int64(completed),
		metric.WithAttributes(attribute.String("result", "completed")))
	q.drainCounter.Add(ctx, int64(failed),
		metric.WithAttributes(attribute.String("result", "failed")))
	q.drainCounter.Add(ctx, int64(expired),
		metric.WithAttributes(attribute.String("result", "expired")))
}

// RecordEnqueue increments the enqueue counter with priority and status labels.
func (q *queueMetrics) RecordEnqueue(ctx context.Context, priority, status string) {
	q.enqueueCounter.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("priority", priority),
			attribute.String("status", status),
		),
	)
}

// NoOpQueueMetrics is a no-op implementation of QueueMetrics for when metrics are disabled.
type NoOpQueueMetrics struct{}

// NewNoOpQueueMetrics creates a no-op QueueMetrics implementation.
func NewNoOpQueueMetrics() QueueMetrics {
	return &NoOpQueueMetrics{}
}

// SetPendingCount does nothing when metrics are disabled.
func (n *NoOpQueueMetrics) SetPendingCount(ctx context.Context, count int) {
	// No-op
}

// RecordDrain does nothing when metrics are disabled.
func (n *NoOpQueueMetrics) RecordDrain(ctx context.Context, completed, failed, expired int) {
	// No-op
}

// RecordEnqueue does nothing when metrics are disabled.
func (n *NoOpQueueMetrics) RecordEnqueue(ctx context.Context, priority, status string) {
	// No-op
}
