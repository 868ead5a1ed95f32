package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	apperrors "github.com/allisson/courier-sync/internal/errors"
	queueDomain "github.com/allisson/courier-sync/internal/queue/domain"
	"github.com/allisson/courier-sync/internal/sender"
)

// MockQueueRepository is a mock implementation of QueueRepository
type MockQueueRepository struct {
	mock.Mock
}

func (m *MockQueueRepository) Add(ctx context.Context, record *queueDomain.QueueRecord, maxSize int) error {
	args := m.Called(ctx, record, maxSize)
	return args.Error(0)
}

func (m *MockQueueRepository) GetPending(
	ctx context.Context,
	now time.Time,
) ([]*queueDomain.QueueRecord, error) {
	args := m.Called(ctx, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*queueDomain.QueueRecord), args.Error(1)
}

func (m *MockQueueRepository) GetPendingByEntity(
	ctx context.Context,
	entityType, entityID string,
	operation queueDomain.Operation,
) (*queueDomain.QueueRecord, error) {
	args := m.Called(ctx, entityType, entityID, operation)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*queueDomain.QueueRecord), args.Error(1)
}

func (m *MockQueueRepository) UpdatePayload(
	ctx context.Context,
	id int64,
	payload string,
	priority queueDomain.Priority,
	expiresAt time.Time,
) error {
	args := m.Called(ctx, id, payload, priority, expiresAt)
	return args.Error(0)
}

func (m *MockQueueRepository) MarkSyncing(ctx context.Context, id int64, now time.Time) error {
	args := m.Called(ctx, id, now)
	return args.Error(0)
}

func (m *MockQueueRepository) Complete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockQueueRepository) MarkFailed(
	ctx context.Context,
	id int64,
	lastError string,
	retryLimit int,
	nextAttemptAt time.Time,
) error {
	args := m.Called(ctx, id, lastError, retryLimit, nextAttemptAt)
	return args.Error(0)
}

func (m *MockQueueRepository) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockQueueRepository) CountPending(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

func (m *MockQueueRepository) ListFailed(
	ctx context.Context,
	offset, limit int,
) ([]*queueDomain.QueueRecord, error) {
	args := m.Called(ctx, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*queueDomain.QueueRecord), args.Error(1)
}

func (m *MockQueueRepository) ResetFailed(ctx context.Context, id int64, now time.Time) error {
	args := m.Called(ctx, id, now)
	return args.Error(0)
}

func (m *MockQueueRepository) ResetAllFailed(ctx context.Context, now time.Time) (int64, error) {
	args := m.Called(ctx, now)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockQueueRepository) CountExpired(ctx context.Context, now time.Time) (int64, error) {
	args := m.Called(ctx, now)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockQueueRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	args := m.Called(ctx, now)
	return args.Get(0).(int64), args.Error(1)
}

// MockSender is a mock implementation of sender.Sender
type MockSender struct {
	mock.Mock
}

func (m *MockSender) Send(ctx context.Context, req *sender.Request) (*sender.Response, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*sender.Response), args.Error(1)
}

var testNow = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

func testConfig() Config {
	return Config{
		MaxSize:             100,
		RetryLimit:          3,
		RetryBackoff:        30 * time.Second,
		RetryBackoffMax:     60 * time.Minute,
		DefaultTTL:          24 * time.Hour,
		PendingPollInterval: 10 * time.Millisecond,
	}
}

func newTestUseCase(repo *MockQueueRepository, netSender *MockSender) *SyncQueueUseCase {
	uc := NewSyncQueueUseCase(testConfig(), repo, netSender, nil)
	uc.now = func() time.Time { return testNow }
	return uc
}

func testPayload(priority queueDomain.Priority) *queueDomain.Payload {
	return &queueDomain.Payload{
		Method:   "POST",
		Path:     "/v1/orders",
		Data:     []byte(`{"pickup":"warehouse-7"}`),
		Priority: priority,
	}
}

func pendingRecord(id int64, priority queueDomain.Priority, createdAt time.Time) *queueDomain.QueueRecord {
	payload := testPayload(priority)
	payload.ExpiresAt = testNow.Add(time.Hour)
	raw, _ := payload.Marshal()
	return &queueDomain.QueueRecord{
		ID:         id,
		EntityType: "order",
		EntityID:   "order-1",
		Operation:  queueDomain.OperationCreate,
		Payload:    raw,
		Priority:   priority,
		Status:     queueDomain.StatusPending,
		ExpiresAt:  testNow.Add(time.Hour),
		CreatedAt:  createdAt,
	}
}

func TestSyncQueueUseCase_Enqueue(t *testing.T) {
	t.Run("NewRecord", func(t *testing.T) {
		repo := &MockQueueRepository{}
		uc := newTestUseCase(repo, &MockSender{})

		repo.On("GetPendingByEntity", mock.Anything, "order", "order-1", queueDomain.OperationCreate).
			Return(nil, queueDomain.ErrRecordNotFound)
		repo.On("Add", mock.Anything, mock.MatchedBy(func(r *queueDomain.QueueRecord) bool {
			return r.EntityType == "order" &&
				r.EntityID == "order-1" &&
				r.Operation == queueDomain.OperationCreate &&
				r.Priority == queueDomain.PriorityCritical &&
				r.CreatedAt.Equal(testNow)
		}), 100).Return(nil)

		record, err := uc.Enqueue(
			context.Background(),
			"order",
			"order-1",
			queueDomain.OperationCreate,
			testPayload(queueDomain.PriorityCritical),
		)

		require.NoError(t, err)
		assert.Equal(t, queueDomain.PriorityCritical, record.Priority)
		repo.AssertExpectations(t)
	})

	t.Run("AppliesDefaultTTL", func(t *testing.T) {
		repo := &MockQueueRepository{}
		uc := newTestUseCase(repo, &MockSender{})

		repo.On("GetPendingByEntity", mock.Anything, "order", "order-1", queueDomain.OperationCreate).
			Return(nil, queueDomain.ErrRecordNotFound)
		repo.On("Add", mock.Anything, mock.MatchedBy(func(r *queueDomain.QueueRecord) bool {
			return r.ExpiresAt.Equal(testNow.Add(24 * time.Hour))
		}), 100).Return(nil)

		payload := testPayload(queueDomain.PriorityNormal)
		require.True(t, payload.ExpiresAt.IsZero())

		_, err := uc.Enqueue(context.Background(), "order", "order-1", queueDomain.OperationCreate, payload)

		require.NoError(t, err)
		repo.AssertExpectations(t)
	})

	t.Run("KeepsExplicitExpiry", func(t *testing.T) {
		repo := &MockQueueRepository{}
		uc := newTestUseCase(repo, &MockSender{})

		expiresAt := testNow.Add(10 * time.Minute)
		repo.On("GetPendingByEntity", mock.Anything, "order", "order-1", queueDomain.OperationCreate).
			Return(nil, queueDomain.ErrRecordNotFound)
		repo.On("Add", mock.Anything, mock.MatchedBy(func(r *queueDomain.QueueRecord) bool {
			return r.ExpiresAt.Equal(expiresAt)
		}), 100).Return(nil)

		payload := testPayload(queueDomain.PriorityNormal)
		payload.ExpiresAt = expiresAt

		_, err := uc.Enqueue(context.Background(), "order", "order-1", queueDomain.OperationCreate, payload)

		require.NoError(t, err)
		repo.AssertExpectations(t)
	})

	t.Run("DeduplicatesPendingRecord", func(t *testing.T) {
		repo := &MockQueueRepository{}
		uc := newTestUseCase(repo, &MockSender{})

		createdAt := testNow.Add(-time.Hour)
		existing := pendingRecord(7, queueDomain.PriorityNormal, createdAt)

		repo.On("GetPendingByEntity", mock.Anything, "order", "order-1", queueDomain.OperationCreate).
			Return(existing, nil)
		repo.On("UpdatePayload", mock.Anything, int64(7), mock.Anything, queueDomain.PriorityHigh, mock.Anything).
			Return(nil)

		record, err := uc.Enqueue(
			context.Background(),
			"order",
			"order-1",
			queueDomain.OperationCreate,
			testPayload(queueDomain.PriorityHigh),
		)

		require.NoError(t, err)
		assert.Equal(t, int64(7), record.ID)
		assert.Equal(t, queueDomain.PriorityHigh, record.Priority)
		// The record keeps its original position in the queue.
		assert.Equal(t, createdAt, record.CreatedAt)
		repo.AssertNotCalled(t, "Add", mock.Anything, mock.Anything, mock.Anything)
		repo.AssertExpectations(t)
	})

	t.Run("InsertsFreshRecordWhenRefreshLosesToDrain", func(t *testing.T) {
		repo := &MockQueueRepository{}
		uc := newTestUseCase(repo, &MockSender{})

		// A concurrent drain claims the pending record between the dedup
		// lookup and the payload refresh. The mutation must still land.
		existing := pendingRecord(7, queueDomain.PriorityNormal, testNow.Add(-time.Hour))

		repo.On("GetPendingByEntity", mock.Anything, "order", "order-1", queueDomain.OperationCreate).
			Return(existing, nil)
		repo.On("UpdatePayload", mock.Anything, int64(7), mock.Anything, queueDomain.PriorityHigh, mock.Anything).
			Return(queueDomain.ErrRecordNotFound)
		repo.On("Add", mock.Anything, mock.MatchedBy(func(r *queueDomain.QueueRecord) bool {
			return r.EntityType == "order" &&
				r.EntityID == "order-1" &&
				r.Operation == queueDomain.OperationCreate &&
				r.Priority == queueDomain.PriorityHigh &&
				r.CreatedAt.Equal(testNow)
		}), 100).Return(nil)

		record, err := uc.Enqueue(
			context.Background(),
			"order",
			"order-1",
			queueDomain.OperationCreate,
			testPayload(queueDomain.PriorityHigh),
		)

		require.NoError(t, err)
		assert.Equal(t, queueDomain.PriorityHigh, record.Priority)
		assert.Equal(t, testNow, record.CreatedAt)
		repo.AssertExpectations(t)
	})

	t.Run("RefreshStorageErrorPropagates", func(t *testing.T) {
		repo := &MockQueueRepository{}
		uc := newTestUseCase(repo, &MockSender{})

		existing := pendingRecord(7, queueDomain.PriorityNormal, testNow.Add(-time.Hour))

		repo.On("GetPendingByEntity", mock.Anything, "order", "order-1", queueDomain.OperationCreate).
			Return(existing, nil)
		repo.On("UpdatePayload", mock.Anything, int64(7), mock.Anything, queueDomain.PriorityNormal, mock.Anything).
			Return(apperrors.ErrStorage)

		_, err := uc.Enqueue(
			context.Background(),
			"order",
			"order-1",
			queueDomain.OperationCreate,
			testPayload(queueDomain.PriorityNormal),
		)

		assert.ErrorIs(t, err, apperrors.ErrStorage)
		repo.AssertNotCalled(t, "Add", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("InvalidOperation", func(t *testing.T) {
		repo := &MockQueueRepository{}
		uc := newTestUseCase(repo, &MockSender{})

		_, err := uc.Enqueue(
			context.Background(),
			"order",
			"order-1",
			queueDomain.Operation("drop_table"),
			testPayload(queueDomain.PriorityNormal),
		)

		assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
		repo.AssertNotCalled(t, "Add", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("NilPayload", func(t *testing.T) {
		repo := &MockQueueRepository{}
		uc := newTestUseCase(repo, &MockSender{})

		_, err := uc.Enqueue(context.Background(), "order", "order-1", queueDomain.OperationCreate, nil)

		assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
	})

	t.Run("QueueFull", func(t *testing.T) {
		repo := &MockQueueRepository{}
		uc := newTestUseCase(repo, &MockSender{})

		repo.On("GetPendingByEntity", mock.Anything, "order", "order-1", queueDomain.OperationCreate).
			Return(nil, queueDomain.ErrRecordNotFound)
		repo.On("Add", mock.Anything, mock.Anything, 100).Return(apperrors.ErrQueueFull)

		_, err := uc.Enqueue(
			context.Background(),
			"order",
			"order-1",
			queueDomain.OperationCreate,
			testPayload(queueDomain.PriorityNormal),
		)

		assert.ErrorIs(t, err, apperrors.ErrQueueFull)
	})
}

func TestSyncQueueUseCase_Drain(t *testing.T) {
	t.Run("EmptyQueue", func(t *testing.T) {
		repo := &MockQueueRepository{}
		netSender := &MockSender{}
		uc := newTestUseCase(repo, netSender)

		repo.On("GetPending", mock.Anything, testNow).Return([]*queueDomain.QueueRecord{}, nil)

		result, err := uc.Drain(context.Background())

		require.NoError(t, err)
		assert.Equal(t, 0, result.Completed)
		assert.False(t, result.Skipped)
		netSender.AssertNotCalled(t, "Send", mock.Anything, mock.Anything)
	})

	t.Run("ReplaysInPriorityThenFIFOOrder", func(t *testing.T) {
		repo := &MockQueueRepository{}
		netSender := &MockSender{}
		uc := newTestUseCase(repo, netSender)

		// Returned out of order on purpose: the engine must re-sort.
		records := []*queueDomain.QueueRecord{
			pendingRecord(3, queueDomain.PriorityLow, testNow.Add(-3*time.Hour)),
			pendingRecord(1, queueDomain.PriorityCritical, testNow.Add(-time.Hour)),
			pendingRecord(2, queueDomain.PriorityCritical, testNow.Add(-2*time.Hour)),
		}

		// Ordering is observed through MarkSyncing, which carries the record id.
		var sentOrder []int64
		repo.On("GetPending", mock.Anything, testNow).Return(records, nil)
		repo.On("MarkSyncing", mock.Anything, mock.Anything, testNow).
			Run(func(args mock.Arguments) {
				sentOrder = append(sentOrder, args.Get(1).(int64))
			}).
			Return(nil)
		repo.On("Complete", mock.Anything, mock.Anything).Return(nil)
		netSender.On("Send", mock.Anything, mock.Anything).
			Return(&sender.Response{StatusCode: 200}, nil)

		result, err := uc.Drain(context.Background())

		require.NoError(t, err)
		assert.Equal(t, 3, result.Completed)
		// Critical before low; equal priority oldest first.
		assert.Equal(t, []int64{2, 1, 3}, sentOrder)
		repo.AssertExpectations(t)
	})

	t.Run("DropsExpiredWithoutSending", func(t *testing.T) {
		repo := &MockQueueRepository{}
		netSender := &MockSender{}
		uc := newTestUseCase(repo, netSender)

		expired := pendingRecord(1, queueDomain.PriorityHigh, testNow.Add(-2*time.Hour))
		expired.ExpiresAt = testNow.Add(-time.Minute)
		fresh := pendingRecord(2, queueDomain.PriorityNormal, testNow.Add(-time.Hour))

		repo.On("GetPending", mock.Anything, testNow).
			Return([]*queueDomain.QueueRecord{expired, fresh}, nil)
		repo.On("Delete", mock.Anything, int64(1)).Return(nil)
		repo.On("MarkSyncing", mock.Anything, int64(2), testNow).Return(nil)
		repo.On("Complete", mock.Anything, int64(2)).Return(nil)
		netSender.On("Send", mock.Anything, mock.Anything).
			Return(&sender.Response{StatusCode: 200}, nil).Once()

		result, err := uc.Drain(context.Background())

		require.NoError(t, err)
		assert.Equal(t, 1, result.Completed)
		assert.Equal(t, 1, result.Expired)
		assert.Equal(t, 0, result.Failed)
		repo.AssertExpectations(t)
		netSender.AssertExpectations(t)
	})

	t.Run("SendFailureReQueuesWithBackoff", func(t *testing.T) {
		repo := &MockQueueRepository{}
		netSender := &MockSender{}
		uc := newTestUseCase(repo, netSender)

		record := pendingRecord(1, queueDomain.PriorityNormal, testNow.Add(-time.Hour))
		record.RetryCount = 1

		repo.On("GetPending", mock.Anything, testNow).
			Return([]*queueDomain.QueueRecord{record}, nil)
		repo.On("MarkSyncing", mock.Anything, int64(1), testNow).Return(nil)
		// Second retry doubles the base backoff.
		repo.On("MarkFailed", mock.Anything, int64(1), mock.Anything, 3, testNow.Add(60*time.Second)).
			Return(nil)
		netSender.On("Send", mock.Anything, mock.Anything).
			Return(nil, apperrors.Wrap(apperrors.ErrSendFailure, "backend returned 500"))

		result, err := uc.Drain(context.Background())

		require.NoError(t, err)
		assert.Equal(t, 1, result.Failed)
		assert.Equal(t, 0, result.Completed)
		repo.AssertNotCalled(t, "Complete", mock.Anything, mock.Anything)
		repo.AssertExpectations(t)
	})

	t.Run("BackendErrorDoesNotAbortCycle", func(t *testing.T) {
		repo := &MockQueueRepository{}
		netSender := &MockSender{}
		uc := newTestUseCase(repo, netSender)

		first := pendingRecord(1, queueDomain.PriorityHigh, testNow.Add(-2*time.Hour))
		second := pendingRecord(2, queueDomain.PriorityNormal, testNow.Add(-time.Hour))

		repo.On("GetPending", mock.Anything, testNow).
			Return([]*queueDomain.QueueRecord{first, second}, nil)
		repo.On("MarkSyncing", mock.Anything, mock.Anything, testNow).Return(nil)
		repo.On("MarkFailed", mock.Anything, int64(1), mock.Anything, 3, mock.Anything).Return(nil)
		repo.On("Complete", mock.Anything, int64(2)).Return(nil)

		// A rejected request is the backend's verdict on one record, not a
		// statement about connectivity.
		netSender.On("Send", mock.Anything, mock.Anything).
			Return(nil, apperrors.Wrap(apperrors.ErrSendFailure, "backend returned 422")).Once()
		netSender.On("Send", mock.Anything, mock.Anything).
			Return(&sender.Response{StatusCode: 200}, nil).Once()

		result, err := uc.Drain(context.Background())

		require.NoError(t, err)
		assert.Equal(t, 1, result.Failed)
		assert.Equal(t, 1, result.Completed)
		repo.AssertExpectations(t)
		netSender.AssertExpectations(t)
	})

	t.Run("ConnectivityErrorAbandonsCycle", func(t *testing.T) {
		repo := &MockQueueRepository{}
		netSender := &MockSender{}
		uc := newTestUseCase(repo, netSender)

		first := pendingRecord(1, queueDomain.PriorityHigh, testNow.Add(-2*time.Hour))
		second := pendingRecord(2, queueDomain.PriorityNormal, testNow.Add(-time.Hour))

		repo.On("GetPending", mock.Anything, testNow).
			Return([]*queueDomain.QueueRecord{first, second}, nil)
		repo.On("MarkSyncing", mock.Anything, int64(1), testNow).Return(nil)
		repo.On("MarkFailed", mock.Anything, int64(1), mock.Anything, 3, mock.Anything).Return(nil)
		netSender.On("Send", mock.Anything, mock.Anything).
			Return(nil, &sender.ConnectivityError{Err: errors.New("connection refused")}).Once()

		result, err := uc.Drain(context.Background())

		require.NoError(t, err)
		assert.Equal(t, 1, result.Failed)
		assert.Equal(t, 0, result.Completed)
		// The second record is never claimed or sent.
		repo.AssertNotCalled(t, "MarkSyncing", mock.Anything, int64(2), mock.Anything)
		netSender.AssertNumberOfCalls(t, "Send", 1)
	})

	t.Run("LostClaimSkipsRecord", func(t *testing.T) {
		repo := &MockQueueRepository{}
		netSender := &MockSender{}
		uc := newTestUseCase(repo, netSender)

		record := pendingRecord(1, queueDomain.PriorityNormal, testNow.Add(-time.Hour))

		repo.On("GetPending", mock.Anything, testNow).
			Return([]*queueDomain.QueueRecord{record}, nil)
		repo.On("MarkSyncing", mock.Anything, int64(1), testNow).
			Return(queueDomain.ErrRecordNotFound)

		result, err := uc.Drain(context.Background())

		require.NoError(t, err)
		assert.Equal(t, 0, result.Completed)
		assert.Equal(t, 0, result.Failed)
		netSender.AssertNotCalled(t, "Send", mock.Anything, mock.Anything)
	})

	t.Run("ConcurrentDrainIsNoOp", func(t *testing.T) {
		repo := &MockQueueRepository{}
		netSender := &MockSender{}
		uc := newTestUseCase(repo, netSender)

		firstDrainStarted := make(chan struct{})
		releaseFirstDrain := make(chan struct{})

		repo.On("GetPending", mock.Anything, testNow).
			Run(func(args mock.Arguments) {
				close(firstDrainStarted)
				<-releaseFirstDrain
			}).
			Return([]*queueDomain.QueueRecord{}, nil).Once()

		var wg sync.WaitGroup
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := uc.Drain(context.Background())
			assert.NoError(t, err)
		}()

		<-firstDrainStarted
		result, err := uc.Drain(context.Background())
		require.NoError(t, err)
		assert.True(t, result.Skipped)

		close(releaseFirstDrain)
		wg.Wait()
		repo.AssertNumberOfCalls(t, "GetPending", 1)
	})

	t.Run("GetPendingError", func(t *testing.T) {
		repo := &MockQueueRepository{}
		uc := newTestUseCase(repo, &MockSender{})

		repo.On("GetPending", mock.Anything, testNow).
			Return(nil, apperrors.Wrap(apperrors.ErrStorage, "connection reset"))

		result, err := uc.Drain(context.Background())

		assert.ErrorIs(t, err, apperrors.ErrStorage)
		assert.Nil(t, result)
	})

	t.Run("SendsParsedPayload", func(t *testing.T) {
		repo := &MockQueueRepository{}
		netSender := &MockSender{}
		uc := newTestUseCase(repo, netSender)

		record := pendingRecord(1, queueDomain.PriorityNormal, testNow.Add(-time.Hour))

		repo.On("GetPending", mock.Anything, testNow).
			Return([]*queueDomain.QueueRecord{record}, nil)
		repo.On("MarkSyncing", mock.Anything, int64(1), testNow).Return(nil)
		repo.On("Complete", mock.Anything, int64(1)).Return(nil)
		netSender.On("Send", mock.Anything, mock.MatchedBy(func(req *sender.Request) bool {
			return req.Method == "POST" &&
				req.Path == "/v1/orders" &&
				string(req.Body) == `{"pickup":"warehouse-7"}`
		})).Return(&sender.Response{StatusCode: 201}, nil)

		result, err := uc.Drain(context.Background())

		require.NoError(t, err)
		assert.Equal(t, 1, result.Completed)
		netSender.AssertExpectations(t)
	})
}

func TestSyncQueueUseCase_BackoffFor(t *testing.T) {
	uc := newTestUseCase(&MockQueueRepository{}, &MockSender{})

	tests := []struct {
		retryCount int
		want       time.Duration
	}{
		{0, 30 * time.Second},
		{1, 60 * time.Second},
		{2, 120 * time.Second},
		{7, 60 * time.Minute}, // capped
		{40, 60 * time.Minute},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, uc.backoffFor(tt.retryCount))
	}
}

func TestSyncQueueUseCase_PendingCount(t *testing.T) {
	repo := &MockQueueRepository{}
	uc := newTestUseCase(repo, &MockSender{})

	repo.On("CountPending", mock.Anything).Return(42, nil)

	count, err := uc.PendingCount(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 42, count)
}

func TestSyncQueueUseCase_WatchPendingCount(t *testing.T) {
	defer goleak.VerifyNone(t)

	repo := &MockQueueRepository{}
	uc := newTestUseCase(repo, &MockSender{})

	repo.On("CountPending", mock.Anything).Return(3, nil).Times(2)
	repo.On("CountPending", mock.Anything).Return(5, nil)

	ctx, cancel := context.WithCancel(context.Background())
	ch := uc.WatchPendingCount(ctx)

	// First emission, then one only when the count changes.
	assert.Equal(t, 3, <-ch)
	assert.Equal(t, 5, <-ch)

	cancel()
	for range ch {
	}
}

func TestSyncQueueUseCase_FailedRecords(t *testing.T) {
	t.Run("ListFailed", func(t *testing.T) {
		repo := &MockQueueRepository{}
		uc := newTestUseCase(repo, &MockSender{})

		failed := pendingRecord(9, queueDomain.PriorityNormal, testNow.Add(-time.Hour))
		failed.Status = queueDomain.StatusFailed

		repo.On("ListFailed", mock.Anything, 0, 50).
			Return([]*queueDomain.QueueRecord{failed}, nil)

		records, err := uc.ListFailed(context.Background(), 0, 50)

		require.NoError(t, err)
		require.Len(t, records, 1)
		assert.Equal(t, int64(9), records[0].ID)
	})

	t.Run("RetryFailed", func(t *testing.T) {
		repo := &MockQueueRepository{}
		uc := newTestUseCase(repo, &MockSender{})

		repo.On("ResetFailed", mock.Anything, int64(9), testNow).Return(nil)

		err := uc.RetryFailed(context.Background(), 9)

		require.NoError(t, err)
		repo.AssertExpectations(t)
	})

	t.Run("RetryFailedNotFound", func(t *testing.T) {
		repo := &MockQueueRepository{}
		uc := newTestUseCase(repo, &MockSender{})

		repo.On("ResetFailed", mock.Anything, int64(404), testNow).
			Return(queueDomain.ErrRecordNotFound)

		err := uc.RetryFailed(context.Background(), 404)

		assert.ErrorIs(t, err, apperrors.ErrNotFound)
	})

	t.Run("RetryAllFailed", func(t *testing.T) {
		repo := &MockQueueRepository{}
		uc := newTestUseCase(repo, &MockSender{})

		repo.On("ResetAllFailed", mock.Anything, testNow).Return(int64(4), nil)

		count, err := uc.RetryAllFailed(context.Background())

		require.NoError(t, err)
		assert.Equal(t, int64(4), count)
	})
}

func TestSyncQueueUseCase_CleanupExpired(t *testing.T) {
	t.Run("DryRun", func(t *testing.T) {
		repo := &MockQueueRepository{}
		uc := newTestUseCase(repo, &MockSender{})

		repo.On("CountExpired", mock.Anything, testNow).Return(int64(2), nil)

		count, err := uc.CleanupExpired(context.Background(), true)

		require.NoError(t, err)
		assert.Equal(t, int64(2), count)
		repo.AssertNotCalled(t, "DeleteExpired", mock.Anything, mock.Anything)
	})

	t.Run("Delete", func(t *testing.T) {
		repo := &MockQueueRepository{}
		uc := newTestUseCase(repo, &MockSender{})

		repo.On("DeleteExpired", mock.Anything, testNow).Return(int64(2), nil)

		count, err := uc.CleanupExpired(context.Background(), false)

		require.NoError(t, err)
		assert.Equal(t, int64(2), count)
	})
}
