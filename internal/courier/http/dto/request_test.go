package dto

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUpsertDriverRequest_Validate(t *testing.T) {
	tests := []struct {
		name    string
		request UpsertDriverRequest
		wantErr bool
	}{
		{
			name:    "Valid",
			request: UpsertDriverRequest{Name: "Maria Silva", Phone: "+5511999990000", Vehicle: "motorcycle"},
			wantErr: false,
		},
		{
			name:    "MissingName",
			request: UpsertDriverRequest{Phone: "+5511999990000", Vehicle: "motorcycle"},
			wantErr: true,
		},
		{
			name:    "BlankName",
			request: UpsertDriverRequest{Name: "   ", Phone: "+5511999990000", Vehicle: "motorcycle"},
			wantErr: true,
		},
		{
			name:    "InvalidPhone",
			request: UpsertDriverRequest{Name: "Maria Silva", Phone: "call-me", Vehicle: "motorcycle"},
			wantErr: true,
		},
		{
			name:    "MissingVehicle",
			request: UpsertDriverRequest{Name: "Maria Silva", Phone: "+5511999990000"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.request.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestUpdateLocationRequest_Validate(t *testing.T) {
	tests := []struct {
		name    string
		request UpdateLocationRequest
		wantErr bool
	}{
		{name: "Valid", request: UpdateLocationRequest{Latitude: -23.55, Longitude: -46.63}, wantErr: false},
		{name: "Origin", request: UpdateLocationRequest{}, wantErr: false},
		{name: "LatitudeTooHigh", request: UpdateLocationRequest{Latitude: 90.5}, wantErr: true},
		{name: "LongitudeTooLow", request: UpdateLocationRequest{Longitude: -181}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.request.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestUpdateAvailabilityRequest_Validate(t *testing.T) {
	available := true

	assert.NoError(t, UpdateAvailabilityRequest{Available: &available}.Validate())
	assert.Error(t, UpdateAvailabilityRequest{}.Validate())
}

func TestCreateOrderRequest_Validate(t *testing.T) {
	tests := []struct {
		name    string
		request CreateOrderRequest
		wantErr bool
	}{
		{
			name:    "Valid",
			request: CreateOrderRequest{ID: "order-1", PickupAddress: "Av. Paulista 1000", DropoffAddress: "Rua Augusta 500"},
			wantErr: false,
		},
		{
			name:    "ValidWithoutID",
			request: CreateOrderRequest{PickupAddress: "Av. Paulista 1000", DropoffAddress: "Rua Augusta 500"},
			wantErr: false,
		},
		{
			name:    "IDWithWhitespace",
			request: CreateOrderRequest{ID: "order 1", PickupAddress: "Av. Paulista 1000", DropoffAddress: "Rua Augusta 500"},
			wantErr: true,
		},
		{
			name:    "MissingPickupAddress",
			request: CreateOrderRequest{DropoffAddress: "Rua Augusta 500"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.request.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestUpdateOrderStatusRequest_Validate(t *testing.T) {
	assert.NoError(t, UpdateOrderStatusRequest{Status: "picked_up"}.Validate())
	assert.Error(t, UpdateOrderStatusRequest{Status: "teleported"}.Validate())
	assert.Error(t, UpdateOrderStatusRequest{}.Validate())
}

func TestAssignDriverRequest_Validate(t *testing.T) {
	assert.NoError(t, AssignDriverRequest{DriverID: "driver-1"}.Validate())
	assert.Error(t, AssignDriverRequest{}.Validate())
}
