// Package http provides HTTP handlers for sync queue inspection and control:
// pending counts, failed record management, and manually triggered drains.
package http

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/allisson/courier-sync/internal/httputil"
	"github.com/allisson/courier-sync/internal/queue/http/dto"
	queueUseCase "github.com/allisson/courier-sync/internal/queue/usecase"
)

// QueueHandler handles HTTP requests for sync queue operations.
type QueueHandler struct {
	queueUseCase queueUseCase.QueueUseCase
	logger       *slog.Logger
}

// NewQueueHandler creates a new queue handler with required dependencies.
func NewQueueHandler(queueUseCase queueUseCase.QueueUseCase, logger *slog.Logger) *QueueHandler {
	return &QueueHandler{
		queueUseCase: queueUseCase,
		logger:       logger,
	}
}

// PendingCountHandler reports the number of records waiting for replay.
// GET /v1/queue/pending-count
func (h *QueueHandler) PendingCountHandler(c *gin.Context) {
	count, err := h.queueUseCase.PendingCount(c.Request.Context())
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.PendingCountResponse{PendingCount: count})
}

// ListFailedHandler returns failed records for operator inspection.
// GET /v1/queue/failed?offset=0&limit=50
func (h *QueueHandler) ListFailedHandler(c *gin.Context) {
	offset, limit, err := httputil.ParsePagination(c)
	if err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	records, err := h.queueUseCase.ListFailed(c.Request.Context(), offset, limit)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapQueueRecordsToListResponse(records))
}

// RetryFailedHandler returns one failed record to the pending set.
// POST /v1/queue/failed/:id/retry
func (h *QueueHandler) RetryFailedHandler(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		httputil.HandleBadRequestGin(c, fmt.Errorf("invalid record id: %s", c.Param("id")), h.logger)
		return
	}

	if err := h.queueUseCase.RetryFailed(c.Request.Context(), id); err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.Status(http.StatusNoContent)
}

// RetryAllFailedHandler returns every failed record to the pending set.
// POST /v1/queue/retry-all
func (h *QueueHandler) RetryAllFailedHandler(c *gin.Context) {
	retried, err := h.queueUseCase.RetryAllFailed(c.Request.Context())
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.RetryAllResponse{Retried: retried})
}

// DrainHandler triggers a drain cycle. A drain already in progress is
// reported as skipped, not an error.
// POST /v1/queue/drain
func (h *QueueHandler) DrainHandler(c *gin.Context) {
	result, err := h.queueUseCase.Drain(c.Request.Context())
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.DrainResponse{
		Completed: result.Completed,
		Failed:    result.Failed,
		Expired:   result.Expired,
		Skipped:   result.Skipped,
	})
}

// CleanupExpiredHandler purges expired records.
// POST /v1/queue/cleanup-expired?dry_run=true
func (h *QueueHandler) CleanupExpiredHandler(c *gin.Context) {
	dryRun := c.Query("dry_run") == "true"

	removed, err := h.queueUseCase.CleanupExpired(c.Request.Context(), dryRun)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.CleanupExpiredResponse{Removed: removed, DryRun: dryRun})
}
