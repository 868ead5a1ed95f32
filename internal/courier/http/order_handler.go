package http

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	courierDomain "github.com/allisson/courier-sync/internal/courier/domain"
	"github.com/allisson/courier-sync/internal/courier/http/dto"
	courierUseCase "github.com/allisson/courier-sync/internal/courier/usecase"
	"github.com/allisson/courier-sync/internal/httputil"
)

// OrderHandler handles HTTP requests for order operations.
type OrderHandler struct {
	courierUseCase courierUseCase.CourierUseCase
	logger         *slog.Logger
}

// NewOrderHandler creates a new order handler with required dependencies.
func NewOrderHandler(courierUseCase courierUseCase.CourierUseCase, logger *slog.Logger) *OrderHandler {
	return &OrderHandler{
		courierUseCase: courierUseCase,
		logger:         logger,
	}
}

// CreateHandler creates a new delivery order.
// POST /v1/orders
func (h *OrderHandler) CreateHandler(c *gin.Context) {
	var request dto.CreateOrderRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	if err := request.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	id := request.ID
	if id == "" {
		generated, err := uuid.NewV7()
		if err != nil {
			httputil.HandleErrorGin(c, err, h.logger)
			return
		}
		id = generated.String()
	}

	order := &courierDomain.Order{
		ID:             id,
		PickupAddress:  request.PickupAddress,
		DropoffAddress: request.DropoffAddress,
		Notes:          request.Notes,
	}

	created, err := h.courierUseCase.CreateOrder(c.Request.Context(), order)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusCreated, dto.MapOrderToResponse(created))
}

// GetHandler returns an order from the local store.
// GET /v1/orders/:id
func (h *OrderHandler) GetHandler(c *gin.Context) {
	order, err := h.courierUseCase.GetOrder(c.Request.Context(), c.Param("id"))
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapOrderToResponse(order))
}

// ListHandler returns orders from the local store.
// GET /v1/orders?offset=0&limit=50
func (h *OrderHandler) ListHandler(c *gin.Context) {
	offset, limit, err := httputil.ParsePagination(c)
	if err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	orders, err := h.courierUseCase.ListOrders(c.Request.Context(), offset, limit)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapOrdersToListResponse(orders))
}

// UpdateStatusHandler moves an order through its delivery lifecycle.
// PUT /v1/orders/:id/status
func (h *OrderHandler) UpdateStatusHandler(c *gin.Context) {
	var request dto.UpdateOrderStatusRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	if err := request.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	status := courierDomain.OrderStatus(request.Status)
	if err := h.courierUseCase.UpdateOrderStatus(c.Request.Context(), c.Param("id"), status); err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.Status(http.StatusNoContent)
}

// AssignDriverHandler assigns a driver to an order.
// PUT /v1/orders/:id/driver
func (h *OrderHandler) AssignDriverHandler(c *gin.Context) {
	var request dto.AssignDriverRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	if err := request.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	if err := h.courierUseCase.AssignDriver(c.Request.Context(), c.Param("id"), request.DriverID); err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.Status(http.StatusNoContent)
}

// CancelHandler cancels an order.
// POST /v1/orders/:id/cancel
func (h *OrderHandler) CancelHandler(c *gin.Context) {
	if err := h.courierUseCase.CancelOrder(c.Request.Context(), c.Param("id")); err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.Status(http.StatusNoContent)
}

// DeleteHandler removes an order from the local store.
// DELETE /v1/orders/:id
func (h *OrderHandler) DeleteHandler(c *gin.Context) {
	if err := h.courierUseCase.DeleteOrder(c.Request.Context(), c.Param("id")); err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.Status(http.StatusNoContent)
}
