package service_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agroflow/agroflow-backend/internal/inventory/repository"
	"github.com/agroflow/agroflow-backend/internal/inventory/service"
	"github.com/agroflow/agroflow-backend/pkg/errors"
	"github.com/agroflow/agroflow-backend/pkg/testutil"
)

func validProduct() *repository.Product {
	fixture := testutil.NewFixtureFactory().Product()
	return &repository.Product{
		Code:           fixture.Code,
		Name:           fixture.Name,
		Category:       fixture.Category,
		Unit:           fixture.Unit,
		UnitPrice:      fixture.UnitPrice,
		AlertThreshold: fixture.AlertThreshold,
	}
}

func TestValidateProduct(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*repository.Product)
		wantErr string
	}{
		{"valid", func(p *repository.Product) {}, ""},
		{"missing code", func(p *repository.Product) { p.Code = "" }, "code"},
		{"missing name", func(p *repository.Product) { p.Name = "" }, "name"},
		{"unknown category", func(p *repository.Product) { p.Category = "divers" }, "category"},
		{"unknown unit", func(p *repository.Product) { p.Unit = "sac" }, "unit"},
		{"zero price", func(p *repository.Product) { p.UnitPrice = decimal.Zero }, "unit_price"},
		{"negative threshold", func(p *repository.Product) { p.AlertThreshold = decimal.NewFromInt(-1) }, "alert_threshold"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			product := validProduct()
			tt.mutate(product)

			err := service.ValidateProduct(product)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}

			var appErr *errors.AppError
			require.True(t, errors.As(err, &appErr))
			assert.Equal(t, "VALIDATION_ERROR", appErr.Code)
			assert.Contains(t, appErr.Details, tt.wantErr)
		})
	}
}

func TestValidateMovementWarehousePresence(t *testing.T) {
	wh1 := "11111111-1111-1111-1111-111111111111"
	wh2 := "22222222-2222-2222-2222-222222222222"

	tests := []struct {
		name    string
		input   service.MovementInput
		wantErr string
	}{
		{
			"entry needs destination",
			service.MovementInput{MovementType: repository.MovementEntry, ProductID: "p", Quantity: decimal.NewFromInt(1)},
			"destination_warehouse_id",
		},
		{
			"entry rejects source",
			service.MovementInput{MovementType: repository.MovementEntry, ProductID: "p", SourceID: &wh1, DestinationID: &wh2, Quantity: decimal.NewFromInt(1)},
			"source_warehouse_id",
		},
		{
			"exit needs source",
			service.MovementInput{MovementType: repository.MovementExit, ProductID: "p", Quantity: decimal.NewFromInt(1)},
			"source_warehouse_id",
		},
		{
			"transfer needs both",
			service.MovementInput{MovementType: repository.MovementTransfer, ProductID: "p", SourceID: &wh1, Quantity: decimal.NewFromInt(1)},
			"destination_warehouse_id",
		},
		{
			"transfer rejects same warehouse",
			service.MovementInput{MovementType: repository.MovementTransfer, ProductID: "p", SourceID: &wh1, DestinationID: &wh1, Quantity: decimal.NewFromInt(1)},
			"destination_warehouse_id",
		},
		{
			"unknown type",
			service.MovementInput{MovementType: "ajustement", ProductID: "p", DestinationID: &wh1, Quantity: decimal.NewFromInt(1)},
			"movement_type",
		},
		{
			"zero quantity",
			service.MovementInput{MovementType: repository.MovementEntry, ProductID: "p", DestinationID: &wh1, Quantity: decimal.Zero},
			"quantity",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := service.ValidateMovement(&tt.input)
			var appErr *errors.AppError
			require.True(t, errors.As(err, &appErr))
			assert.Contains(t, appErr.Details, tt.wantErr)
		})
	}
}

func TestValidateMovementAcceptsWellFormedInputs(t *testing.T) {
	wh1 := "11111111-1111-1111-1111-111111111111"
	wh2 := "22222222-2222-2222-2222-222222222222"

	assert.NoError(t, service.ValidateMovement(&service.MovementInput{
		MovementType: repository.MovementEntry, ProductID: "p",
		DestinationID: &wh1, Quantity: decimal.NewFromInt(5),
	}))
	assert.NoError(t, service.ValidateMovement(&service.MovementInput{
		MovementType: repository.MovementExit, ProductID: "p",
		SourceID: &wh1, Quantity: decimal.NewFromInt(5),
	}))
	assert.NoError(t, service.ValidateMovement(&service.MovementInput{
		MovementType: repository.MovementTransfer, ProductID: "p",
		SourceID: &wh1, DestinationID: &wh2, Quantity: decimal.NewFromInt(5),
	}))
}
