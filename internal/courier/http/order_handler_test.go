package http

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	apperrors "github.com/allisson/courier-sync/internal/errors"

	courierDomain "github.com/allisson/courier-sync/internal/courier/domain"
)

func testOrder() *courierDomain.Order {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	return &courierDomain.Order{
		ID:             "order-1",
		Status:         courierDomain.OrderStatusCreated,
		PickupAddress:  "Av. Paulista 1000",
		DropoffAddress: "Rua Augusta 500",
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

func TestOrderHandler_Create(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		useCase := new(MockCourierUseCase)
		router := setupRouter(useCase)

		useCase.On("CreateOrder", mock.Anything, mock.MatchedBy(func(o *courierDomain.Order) bool {
			return o.ID == "order-1" && o.PickupAddress == "Av. Paulista 1000"
		})).Return(testOrder(), nil)

		recorder := performRequest(router, http.MethodPost, "/v1/orders", map[string]any{
			"id":              "order-1",
			"pickup_address":  "Av. Paulista 1000",
			"dropoff_address": "Rua Augusta 500",
		})

		assert.Equal(t, http.StatusCreated, recorder.Code)

		var response map[string]any
		require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &response))
		assert.Equal(t, "order-1", response["id"])
		assert.Equal(t, "created", response["status"])
		useCase.AssertExpectations(t)
	})

	t.Run("GeneratesIDWhenMissing", func(t *testing.T) {
		useCase := new(MockCourierUseCase)
		router := setupRouter(useCase)

		useCase.On("CreateOrder", mock.Anything, mock.MatchedBy(func(o *courierDomain.Order) bool {
			return o.ID != ""
		})).Return(testOrder(), nil)

		recorder := performRequest(router, http.MethodPost, "/v1/orders", map[string]any{
			"pickup_address":  "Av. Paulista 1000",
			"dropoff_address": "Rua Augusta 500",
		})

		assert.Equal(t, http.StatusCreated, recorder.Code)
		useCase.AssertExpectations(t)
	})

	t.Run("MissingAddresses", func(t *testing.T) {
		useCase := new(MockCourierUseCase)
		router := setupRouter(useCase)

		recorder := performRequest(router, http.MethodPost, "/v1/orders", map[string]any{
			"id": "order-1",
		})

		assert.Equal(t, http.StatusUnprocessableEntity, recorder.Code)
		useCase.AssertNotCalled(t, "CreateOrder")
	})

	t.Run("Conflict", func(t *testing.T) {
		useCase := new(MockCourierUseCase)
		router := setupRouter(useCase)

		useCase.On("CreateOrder", mock.Anything, mock.Anything).Return(nil, apperrors.ErrConflict)

		recorder := performRequest(router, http.MethodPost, "/v1/orders", map[string]any{
			"id":              "order-1",
			"pickup_address":  "Av. Paulista 1000",
			"dropoff_address": "Rua Augusta 500",
		})

		assert.Equal(t, http.StatusConflict, recorder.Code)
		useCase.AssertExpectations(t)
	})
}

func TestOrderHandler_Get(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		useCase := new(MockCourierUseCase)
		router := setupRouter(useCase)

		useCase.On("GetOrder", mock.Anything, "order-1").Return(testOrder(), nil)

		recorder := performRequest(router, http.MethodGet, "/v1/orders/order-1", nil)

		assert.Equal(t, http.StatusOK, recorder.Code)
		useCase.AssertExpectations(t)
	})

	t.Run("NotFound", func(t *testing.T) {
		useCase := new(MockCourierUseCase)
		router := setupRouter(useCase)

		useCase.On("GetOrder", mock.Anything, "missing").Return(nil, courierDomain.ErrOrderNotFound)

		recorder := performRequest(router, http.MethodGet, "/v1/orders/missing", nil)

		assert.Equal(t, http.StatusNotFound, recorder.Code)
		useCase.AssertExpectations(t)
	})
}

func TestOrderHandler_List(t *testing.T) {
	useCase := new(MockCourierUseCase)
	router := setupRouter(useCase)

	useCase.On("ListOrders", mock.Anything, 10, 20).Return([]*courierDomain.Order{testOrder()}, nil)

	recorder := performRequest(router, http.MethodGet, "/v1/orders?offset=10&limit=20", nil)

	assert.Equal(t, http.StatusOK, recorder.Code)

	var response map[string]any
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &response))
	assert.Len(t, response["data"], 1)
	useCase.AssertExpectations(t)
}

func TestOrderHandler_UpdateStatus(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		useCase := new(MockCourierUseCase)
		router := setupRouter(useCase)

		useCase.On("UpdateOrderStatus", mock.Anything, "order-1", courierDomain.OrderStatusAssigned).Return(nil)

		recorder := performRequest(router, http.MethodPut, "/v1/orders/order-1/status", map[string]any{
			"status": "assigned",
		})

		assert.Equal(t, http.StatusNoContent, recorder.Code)
		useCase.AssertExpectations(t)
	})

	t.Run("UnknownStatus", func(t *testing.T) {
		useCase := new(MockCourierUseCase)
		router := setupRouter(useCase)

		recorder := performRequest(router, http.MethodPut, "/v1/orders/order-1/status", map[string]any{
			"status": "teleported",
		})

		assert.Equal(t, http.StatusUnprocessableEntity, recorder.Code)
		useCase.AssertNotCalled(t, "UpdateOrderStatus")
	})

	t.Run("InvalidTransition", func(t *testing.T) {
		useCase := new(MockCourierUseCase)
		router := setupRouter(useCase)

		useCase.On("UpdateOrderStatus", mock.Anything, "order-1", courierDomain.OrderStatusDelivered).
			Return(courierDomain.ErrInvalidStatusTransition)

		recorder := performRequest(router, http.MethodPut, "/v1/orders/order-1/status", map[string]any{
			"status": "delivered",
		})

		assert.Equal(t, http.StatusUnprocessableEntity, recorder.Code)
		useCase.AssertExpectations(t)
	})
}

func TestOrderHandler_AssignDriver(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		useCase := new(MockCourierUseCase)
		router := setupRouter(useCase)

		useCase.On("AssignDriver", mock.Anything, "order-1", "driver-1").Return(nil)

		recorder := performRequest(router, http.MethodPut, "/v1/orders/order-1/driver", map[string]any{
			"driver_id": "driver-1",
		})

		assert.Equal(t, http.StatusNoContent, recorder.Code)
		useCase.AssertExpectations(t)
	})

	t.Run("MissingDriverID", func(t *testing.T) {
		useCase := new(MockCourierUseCase)
		router := setupRouter(useCase)

		recorder := performRequest(router, http.MethodPut, "/v1/orders/order-1/driver", map[string]any{})

		assert.Equal(t, http.StatusUnprocessableEntity, recorder.Code)
		useCase.AssertNotCalled(t, "AssignDriver")
	})
}

func TestOrderHandler_Cancel(t *testing.T) {
	useCase := new(MockCourierUseCase)
	router := setupRouter(useCase)

	useCase.On("CancelOrder", mock.Anything, "order-1").Return(nil)

	recorder := performRequest(router, http.MethodPost, "/v1/orders/order-1/cancel", nil)

	assert.Equal(t, http.StatusNoContent, recorder.Code)
	useCase.AssertExpectations(t)
}

func TestOrderHandler_Delete(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		useCase := new(MockCourierUseCase)
		router := setupRouter(useCase)

		useCase.On("DeleteOrder", mock.Anything, "order-1").Return(nil)

		recorder := performRequest(router, http.MethodDelete, "/v1/orders/order-1", nil)

		assert.Equal(t, http.StatusNoContent, recorder.Code)
		useCase.AssertExpectations(t)
	})

	t.Run("StorageFailure", func(t *testing.T) {
		useCase := new(MockCourierUseCase)
		router := setupRouter(useCase)

		useCase.On("DeleteOrder", mock.Anything, "order-1").Return(apperrors.ErrStorage)

		recorder := performRequest(router, http.MethodDelete, "/v1/orders/order-1", nil)

		assert.Equal(t, http.StatusInternalServerError, recorder.Code)
		useCase.AssertExpectations(t)
	})
}
