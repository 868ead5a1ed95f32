// Package http provides HTTP handlers for the courier API: driver and order
// mutations that write locally and enter the sync queue, plus local reads.
package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	courierDomain "github.com/allisson/courier-sync/internal/courier/domain"
	"github.com/allisson/courier-sync/internal/courier/http/dto"
	courierUseCase "github.com/allisson/courier-sync/internal/courier/usecase"
	"github.com/allisson/courier-sync/internal/httputil"
)

// DriverHandler handles HTTP requests for driver operations.
type DriverHandler struct {
	courierUseCase courierUseCase.CourierUseCase
	logger         *slog.Logger
}

// NewDriverHandler creates a new driver handler with required dependencies.
func NewDriverHandler(courierUseCase courierUseCase.CourierUseCase, logger *slog.Logger) *DriverHandler {
	return &DriverHandler{
		courierUseCase: courierUseCase,
		logger:         logger,
	}
}

// UpsertHandler creates or replaces a driver profile.
// PUT /v1/drivers/:id
func (h *DriverHandler) UpsertHandler(c *gin.Context) {
	var request dto.UpsertDriverRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	if err := request.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	driver := &courierDomain.Driver{
		ID:        c.Param("id"),
		Name:      request.Name,
		Phone:     request.Phone,
		Vehicle:   request.Vehicle,
		Available: request.Available,
	}

	updated, err := h.courierUseCase.UpsertDriver(c.Request.Context(), driver)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapDriverToResponse(updated))
}

// GetHandler returns a driver from the local store.
// GET /v1/drivers/:id
func (h *DriverHandler) GetHandler(c *gin.Context) {
	driver, err := h.courierUseCase.GetDriver(c.Request.Context(), c.Param("id"))
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapDriverToResponse(driver))
}

// ListHandler returns drivers from the local store.
// GET /v1/drivers?offset=0&limit=50
func (h *DriverHandler) ListHandler(c *gin.Context) {
	offset, limit, err := httputil.ParsePagination(c)
	if err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	drivers, err := h.courierUseCase.ListDrivers(c.Request.Context(), offset, limit)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapDriversToListResponse(drivers))
}

// UpdateLocationHandler records a driver position report.
// PUT /v1/drivers/:id/location
func (h *DriverHandler) UpdateLocationHandler(c *gin.Context) {
	var request dto.UpdateLocationRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	if err := request.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	location := courierDomain.Location{
		Latitude:  request.Latitude,
		Longitude: request.Longitude,
		Recorded:  time.Now().UTC(),
	}

	if err := h.courierUseCase.UpdateDriverLocation(c.Request.Context(), c.Param("id"), location); err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.Status(http.StatusNoContent)
}

// UpdateAvailabilityHandler flips a driver's availability flag.
// PUT /v1/drivers/:id/availability
func (h *DriverHandler) UpdateAvailabilityHandler(c *gin.Context) {
	var request dto.UpdateAvailabilityRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	if err := request.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	if err := h.courierUseCase.UpdateDriverAvailability(c.Request.Context(), c.Param("id"), *request.Available); err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.Status(http.StatusNoContent)
}

// DeleteHandler removes a driver from the local store.
// DELETE /v1/drivers/:id
func (h *DriverHandler) DeleteHandler(c *gin.Context) {
	if err := h.courierUseCase.DeleteDriver(c.Request.Context(), c.Param("id")); err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.Status(http.StatusNoContent)
}
