// Package domain defines the core sync queue domain entities and types.
// A QueueRecord is a durably persisted description of one deferred mutation
// awaiting replay against the fleet backend.
package domain

import (
	"encoding/json"
	"sort"
	"time"
)

// Status represents the lifecycle state of a queue record.
// Valid transitions: pending -> syncing -> {completed (deleted) | pending (retry) | failed}.
type Status string

const (
	StatusPending Status = "pending"
	StatusSyncing Status = "syncing"
	// StatusCompleted is transient: completed records are deleted from the
	// active set rather than retained.
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// Operation identifies the remote-facing effect of a queued mutation.
type Operation string

const (
	OperationCreate             Operation = "create"
	OperationUpdate             Operation = "update"
	OperationUpdateLocation     Operation = "update_location"
	OperationUpdateAvailability Operation = "update_availability"
	OperationUpdateStatus       Operation = "update_status"
	OperationAssignDriver       Operation = "assign_driver"
	OperationDelete             Operation = "delete"
	OperationCancel             Operation = "cancel"
	OperationPost               Operation = "post"
	OperationPut                Operation = "put"
	OperationPatch              Operation = "patch"
)

// Valid reports whether the operation is one of the fixed set known at replay time.
func (o Operation) Valid() bool {
	switch o {
	case OperationCreate, OperationUpdate, OperationUpdateLocation,
		OperationUpdateAvailability, OperationUpdateStatus, OperationAssignDriver,
		OperationDelete, OperationCancel, OperationPost, OperationPut, OperationPatch:
		return true
	}
	return false
}

// QueueRecord represents one unit of deferred work in the sync queue.
type QueueRecord struct {
	// ID is assigned by the store on insert, monotonically increasing and immutable.
	ID int64
	// EntityType tags the affected domain entity kind (e.g. "driver", "order").
	EntityType string
	// EntityID identifies the affected domain entity; used for deduplication.
	EntityID string
	// Operation is the remote-facing effect described by the payload.
	Operation Operation
	// Payload is the opaque serialized request description, passed verbatim
	// to the network sender.
	Payload string
	// Priority orders replay; denormalized from the payload at enqueue time.
	Priority Priority
	// Status is the current lifecycle state.
	Status Status
	// RetryCount is incremented on each failed send attempt.
	RetryCount int
	// LastError holds the last failure reason (nil until a failure occurs).
	LastError *string
	// ExpiresAt marks when the record stops being worth sending; denormalized
	// from the payload at enqueue time.
	ExpiresAt time.Time
	// CreatedAt is the enqueue timestamp, the FIFO tiebreaker within a priority tier.
	CreatedAt time.Time
	// LastAttemptAt records the most recent send attempt (nil before the first).
	LastAttemptAt *time.Time
	// NextAttemptAt schedules the earliest next attempt (retry backoff).
	NextAttemptAt time.Time
}

// Expired reports whether the record's payload expired before now.
func (r *QueueRecord) Expired(now time.Time) bool {
	return !r.ExpiresAt.IsZero() && r.ExpiresAt.Before(now)
}

// Payload is the serialized structure attached to each queue record. It carries
// the exact endpoint and body the backend expects, plus the replay priority and
// absolute expiry. The sync engine never interprets Data.
type Payload struct {
	Method    string            `json:"method"`
	Path      string            `json:"path"`
	Headers   map[string]string `json:"headers,omitempty"`
	Data      json.RawMessage   `json:"data,omitempty"`
	Priority  Priority          `json:"priority"`
	ExpiresAt time.Time         `json:"expires_at"`
}

// Marshal serializes the payload to its stored JSON form.
func (p *Payload) Marshal() (string, error) {
	raw, err := json.Marshal(p)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

// ParsePayload deserializes a stored payload.
func ParsePayload(raw string) (*Payload, error) {
	var payload Payload
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

// SortForReplay sorts records into the replay contract order: priority
// descending, then CreatedAt ascending, then ID ascending. The sort is what the
// drain loop relies on; it must hold even if the store returned rows in a
// different physical order.
func SortForReplay(records []*QueueRecord) {
	sort.SliceStable(records, func(i, j int) bool {
		if records[i].Priority != records[j].Priority {
			return records[i].Priority > records[j].Priority
		}
		if !records[i].CreatedAt.Equal(records[j].CreatedAt) {
			return records[i].CreatedAt.Before(records[j].CreatedAt)
		}
		return records[i].ID < records[j].ID
	})
}
