// Package dto provides data transfer objects for HTTP request and response handling.
package dto

import (
	"time"

	queueDomain "github.com/allisson/courier-sync/internal/queue/domain"
)

// QueueRecordResponse represents a sync queue record in API responses.
type QueueRecordResponse struct {
	ID            int64      `json:"id"`
	EntityType    string     `json:"entity_type"`
	EntityID      string     `json:"entity_id"`
	Operation     string     `json:"operation"`
	Priority      string     `json:"priority"`
	Status        string     `json:"status"`
	RetryCount    int        `json:"retry_count"`
	LastError     *string    `json:"last_error,omitempty"`
	ExpiresAt     *time.Time `json:"expires_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	NextAttemptAt time.Time  `json:"next_attempt_at"`
}

// MapQueueRecordToResponse converts a domain queue record to a response.
func MapQueueRecordToResponse(record *queueDomain.QueueRecord) QueueRecordResponse {
	response := QueueRecordResponse{
		ID:            record.ID,
		EntityType:    record.EntityType,
		EntityID:      record.EntityID,
		Operation:     string(record.Operation),
		Priority:      record.Priority.String(),
		Status:        string(record.Status),
		RetryCount:    record.RetryCount,
		LastError:     record.LastError,
		CreatedAt:     record.CreatedAt,
		NextAttemptAt: record.NextAttemptAt,
	}
	if !record.ExpiresAt.IsZero() {
		expiresAt := record.ExpiresAt
		response.ExpiresAt = &expiresAt
	}
	return response
}

// ListQueueRecordsResponse represents a paginated list of queue records.
type ListQueueRecordsResponse struct {
	Data []QueueRecordResponse `json:"data"`
}

// MapQueueRecordsToListResponse converts a slice of domain records to a list response.
func MapQueueRecordsToListResponse(records []*queueDomain.QueueRecord) ListQueueRecordsResponse {
	data := make([]QueueRecordResponse, 0, len(records))
	for _, record := range records {
		data = append(data, MapQueueRecordToResponse(record))
	}
	return ListQueueRecordsResponse{Data: data}
}

// PendingCountResponse reports the number of records waiting for replay.
type PendingCountResponse struct {
	PendingCount int `json:"pending_count"`
}

// DrainResponse summarizes a drain cycle triggered over the API.
type DrainResponse struct {
	Completed int  `json:"completed"`
	Failed    int  `json:"failed"`
	Expired   int  `json:"expired"`
	Skipped   bool `json:"skipped"`
}

// RetryAllResponse reports how many failed records were re-queued.
type RetryAllResponse struct {
	Retried int64 `json:"retried"`
}

// CleanupExpiredResponse reports how many expired records were removed, or
// would be removed on a dry run.
type CleanupExpiredResponse struct {
	Removed int64 `json:"removed"`
	DryRun  bool  `json:"dry_run"`
}
