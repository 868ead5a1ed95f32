package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOperation_Valid(t *testing.T) {
	valid := []Operation{
		OperationCreate, OperationUpdate, OperationUpdateLocation,
		OperationUpdateAvailability, OperationUpdateStatus, OperationAssignDriver,
		OperationDelete, OperationCancel, OperationPost, OperationPut, OperationPatch,
	}
	for _, op := range valid {
		assert.True(t, op.Valid(), "expected %s to be valid", op)
	}

	assert.False(t, Operation("drop_table").Valid())
	assert.False(t, Operation("").Valid())
}

func TestQueueRecord_Expired(t *testing.T) {
	now := time.Now().UTC()

	record := &QueueRecord{ExpiresAt: now.Add(-time.Hour)}
	assert.True(t, record.Expired(now))

	record = &QueueRecord{ExpiresAt: now.Add(time.Hour)}
	assert.False(t, record.Expired(now))

	// Zero expiry means the record never expires.
	record = &QueueRecord{}
	assert.False(t, record.Expired(now))
}

func TestPayload_MarshalParse(t *testing.T) {
	expiresAt := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	payload := &Payload{
		Method:    "PUT",
		Path:      "/v1/drivers/abc/location",
		Headers:   map[string]string{"X-Request-Id": "req-1"},
		Data:      json.RawMessage(`{"lat":1.5,"lng":-2.5}`),
		Priority:  PriorityHigh,
		ExpiresAt: expiresAt,
	}

	raw, err := payload.Marshal()
	require.NoError(t, err)

	parsed, err := ParsePayload(raw)
	require.NoError(t, err)
	assert.Equal(t, payload.Method, parsed.Method)
	assert.Equal(t, payload.Path, parsed.Path)
	assert.Equal(t, payload.Headers, parsed.Headers)
	assert.JSONEq(t, string(payload.Data), string(parsed.Data))
	assert.Equal(t, PriorityHigh, parsed.Priority)
	assert.True(t, expiresAt.Equal(parsed.ExpiresAt))
}

func TestParsePayload_Invalid(t *testing.T) {
	parsed, err := ParsePayload("{not json")
	assert.Error(t, err)
	assert.Nil(t, parsed)
}

func TestSortForReplay(t *testing.T) {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	records := []*QueueRecord{
		{ID: 3, Priority: PriorityLow, CreatedAt: base},
		{ID: 1, Priority: PriorityCritical, CreatedAt: base.Add(2 * time.Minute)},
		{ID: 4, Priority: PriorityNormal, CreatedAt: base.Add(time.Minute)},
		{ID: 2, Priority: PriorityCritical, CreatedAt: base},
		{ID: 5, Priority: PriorityNormal, CreatedAt: base},
	}

	SortForReplay(records)

	ids := make([]int64, 0, len(records))
	for _, r := range records {
		ids = append(ids, r.ID)
	}

	// Priority descending, createdAt ascending within a tier, id as final tiebreak.
	assert.Equal(t, []int64{2, 1, 5, 4, 3}, ids)
}

func TestSortForReplay_SamePriorityAndTime(t *testing.T) {
	ts := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	records := []*QueueRecord{
		{ID: 9, Priority: PriorityNormal, CreatedAt: ts},
		{ID: 4, Priority: PriorityNormal, CreatedAt: ts},
		{ID: 7, Priority: PriorityNormal, CreatedAt: ts},
	}

	SortForReplay(records)

	assert.Equal(t, int64(4), records[0].ID)
	assert.Equal(t, int64(7), records[1].ID)
	assert.Equal(t, int64(9), records[2].ID)
}

func TestPriority_String(t *testing.T) {
	assert.Equal(t, "low", PriorityLow.String())
	assert.Equal(t, "normal", PriorityNormal.String())
	assert.Equal(t, "high", PriorityHigh.String())
	assert.Equal(t, "critical", PriorityCritical.String())
	assert.Equal(t, "priority(42)", Priority(42).String())
}

func TestParsePriority(t *testing.T) {
	for name, want := range map[string]Priority{
		"low":      PriorityLow,
		"normal":   PriorityNormal,
		"high":     PriorityHigh,
		"critical": PriorityCritical,
	} {
		got, err := ParsePriority(name)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	_, err := ParsePriority("urgent")
	assert.Error(t, err)
}
