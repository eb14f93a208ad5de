package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agroflow/agroflow-backend/internal/inventory/repository"
	"github.com/agroflow/agroflow-backend/internal/inventory/service"
	"github.com/agroflow/agroflow-backend/pkg/database"
	"github.com/agroflow/agroflow-backend/pkg/errors"
	"github.com/agroflow/agroflow-backend/pkg/logger"
	"github.com/agroflow/agroflow-backend/pkg/testutil"
)

const (
	productID   = "11111111-1111-1111-1111-111111111111"
	warehouseID = "22222222-2222-2222-2222-222222222222"
	stockID     = "33333333-3333-3333-3333-333333333333"
)

func newMovementService(mockDB *testutil.MockDB) *service.InventoryService {
	log := logger.New("test", "test")
	db := database.NewFromSqlx(mockDB.DB, log)

	return service.NewInventoryService(
		db,
		repository.NewProductRepository(db),
		repository.NewWarehouseRepository(db),
		repository.NewStockRepository(db),
		repository.NewMovementRepository(db),
		nil, // employee resolver not used on the movement path
		nil, // no event publisher needed here
		log,
	)
}

func expectProductLookup(mockDB *testutil.MockDB, threshold string) {
	now := time.Now()
	mockDB.ExpectQuery("FROM products WHERE id = $1").
		WithArgs(productID).
		WillReturnRows(testutil.MockRows(
			"id", "code", "name", "description", "category", "unit",
			"unit_price", "alert_threshold", "is_active", "created_at", "updated_at",
		).AddRow(productID, "NPK-15", "Engrais NPK 15-15-15", nil, "intrant", "kg",
			"1.50", threshold, true, now, now))
}

func expectWarehouseLookup(mockDB *testutil.MockDB, id string) {
	now := time.Now()
	mockDB.ExpectQuery("FROM warehouses WHERE id = $1").
		WithArgs(id).
		WillReturnRows(testutil.MockRows(
			"id", "name", "location", "capacity", "responsible_id", "created_at", "updated_at",
		).AddRow(id, "Hangar principal", nil, "50000", "44444444-4444-4444-4444-444444444444", now, now))
}

func stockColumns() []string {
	return []string{
		"id", "product_id", "warehouse_id", "quantity", "unit_value",
		"lot", "expiry_date", "certifications", "created_at", "updated_at",
	}
}

func TestApplyMovementEntryCreatesBalance(t *testing.T) {
	mockDB := testutil.NewMockDB(t)
	defer mockDB.Close()
	svc := newMovementService(mockDB)

	expectProductLookup(mockDB, "200")
	expectWarehouseLookup(mockDB, warehouseID)

	mockDB.ExpectBegin()
	mockDB.ExpectQuery("FOR UPDATE").
		WithArgs(productID, warehouseID).
		WillReturnRows(testutil.MockRows(stockColumns()...))
	mockDB.ExpectQuery("INSERT INTO stocks").
		WillReturnRows(testutil.MockRows("created_at", "updated_at").AddRow(time.Now(), time.Now()))
	mockDB.ExpectQuery("INSERT INTO stock_movements").
		WillReturnRows(testutil.MockRows("created_at").AddRow(time.Now()))
	mockDB.ExpectCommit()

	dest := warehouseID
	movement, err := svc.ApplyMovement(context.Background(), &service.MovementInput{
		MovementType:  repository.MovementEntry,
		ProductID:     productID,
		DestinationID: &dest,
		Quantity:      decimal.NewFromInt(1000),
	})

	require.NoError(t, err)
	assert.Equal(t, repository.MovementEntry, movement.MovementType)
	assert.True(t, movement.Quantity.Equal(decimal.NewFromInt(1000)))
	assert.NotEmpty(t, movement.Reference)
	mockDB.ExpectationsWereMet(t)
}

func TestApplyMovementExitDebitsBalance(t *testing.T) {
	mockDB := testutil.NewMockDB(t)
	defer mockDB.Close()
	svc := newMovementService(mockDB)

	expectProductLookup(mockDB, "200")
	expectWarehouseLookup(mockDB, warehouseID)

	now := time.Now()
	mockDB.ExpectBegin()
	mockDB.ExpectQuery("FOR UPDATE").
		WithArgs(productID, warehouseID).
		WillReturnRows(testutil.MockRows(stockColumns()...).
			AddRow(stockID, productID, warehouseID, "1000", nil, nil, nil, nil, now, now))
	mockDB.ExpectExec("UPDATE stocks SET quantity").
		WithArgs(stockID, decimal.NewFromInt(800)).
		WillReturnResult(testutil.MockResult(1))
	mockDB.ExpectQuery("INSERT INTO stock_movements").
		WillReturnRows(testutil.MockRows("created_at").AddRow(now))
	mockDB.ExpectCommit()

	src := warehouseID
	movement, err := svc.ApplyMovement(context.Background(), &service.MovementInput{
		MovementType: repository.MovementExit,
		ProductID:    productID,
		SourceID:     &src,
		Quantity:     decimal.NewFromInt(200),
	})

	require.NoError(t, err)
	assert.Equal(t, repository.MovementExit, movement.MovementType)
	mockDB.ExpectationsWereMet(t)
}

func TestApplyMovementExitInsufficientStock(t *testing.T) {
	mockDB := testutil.NewMockDB(t)
	defer mockDB.Close()
	svc := newMovementService(mockDB)

	expectProductLookup(mockDB, "200")
	expectWarehouseLookup(mockDB, warehouseID)

	now := time.Now()
	mockDB.ExpectBegin()
	mockDB.ExpectQuery("FOR UPDATE").
		WithArgs(productID, warehouseID).
		WillReturnRows(testutil.MockRows(stockColumns()...).
			AddRow(stockID, productID, warehouseID, "100", nil, nil, nil, nil, now, now))
	mockDB.ExpectRollback()

	src := warehouseID
	_, err := svc.ApplyMovement(context.Background(), &service.MovementInput{
		MovementType: repository.MovementExit,
		ProductID:    productID,
		SourceID:     &src,
		Quantity:     decimal.NewFromInt(650),
	})

	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrInsufficientStock))

	var appErr *errors.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, "INSUFFICIENT_STOCK", appErr.Code)
	assert.Equal(t, productID, appErr.Details["product_id"])
	mockDB.ExpectationsWereMet(t)
}

func TestApplyMovementExitMissingBalanceRejected(t *testing.T) {
	mockDB := testutil.NewMockDB(t)
	defer mockDB.Close()
	svc := newMovementService(mockDB)

	expectProductLookup(mockDB, "200")
	expectWarehouseLookup(mockDB, warehouseID)

	mockDB.ExpectBegin()
	mockDB.ExpectQuery("FOR UPDATE").
		WithArgs(productID, warehouseID).
		WillReturnRows(testutil.MockRows(stockColumns()...))
	mockDB.ExpectRollback()

	src := warehouseID
	_, err := svc.ApplyMovement(context.Background(), &service.MovementInput{
		MovementType: repository.MovementExit,
		ProductID:    productID,
		SourceID:     &src,
		Quantity:     decimal.NewFromInt(1),
	})

	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrInsufficientStock))
	mockDB.ExpectationsWereMet(t)
}

func TestApplyMovementTransferMovesBetweenWarehouses(t *testing.T) {
	mockDB := testutil.NewMockDB(t)
	defer mockDB.Close()
	svc := newMovementService(mockDB)

	destWarehouseID := "55555555-5555-5555-5555-555555555555"
	destStockID := "66666666-6666-6666-6666-666666666666"

	expectProductLookup(mockDB, "200")
	expectWarehouseLookup(mockDB, warehouseID)
	expectWarehouseLookup(mockDB, destWarehouseID)

	now := time.Now()
	mockDB.ExpectBegin()
	mockDB.ExpectQuery("FOR UPDATE").
		WithArgs(productID, warehouseID).
		WillReturnRows(testutil.MockRows(stockColumns()...).
			AddRow(stockID, productID, warehouseID, "1000", nil, nil, nil, nil, now, now))
	mockDB.ExpectExec("UPDATE stocks SET quantity").
		WithArgs(stockID, decimal.NewFromInt(700)).
		WillReturnResult(testutil.MockResult(1))
	mockDB.ExpectQuery("FOR UPDATE").
		WithArgs(productID, destWarehouseID).
		WillReturnRows(testutil.MockRows(stockColumns()...).
			AddRow(destStockID, productID, destWarehouseID, "50", nil, nil, nil, nil, now, now))
	mockDB.ExpectExec("UPDATE stocks SET quantity").
		WithArgs(destStockID, decimal.NewFromInt(350)).
		WillReturnResult(testutil.MockResult(1))
	mockDB.ExpectQuery("INSERT INTO stock_movements").
		WillReturnRows(testutil.MockRows("created_at").AddRow(now))
	mockDB.ExpectCommit()

	src := warehouseID
	dest := destWarehouseID
	movement, err := svc.ApplyMovement(context.Background(), &service.MovementInput{
		MovementType:  repository.MovementTransfer,
		ProductID:     productID,
		SourceID:      &src,
		DestinationID: &dest,
		Quantity:      decimal.NewFromInt(300),
	})

	require.NoError(t, err)
	assert.Equal(t, repository.MovementTransfer, movement.MovementType)
	mockDB.ExpectationsWereMet(t)
}

func TestApplyMovementValidationRejectsBeforeTouchingDatabase(t *testing.T) {
	mockDB := testutil.NewMockDB(t)
	defer mockDB.Close()
	svc := newMovementService(mockDB)

	src := warehouseID
	dest := warehouseID
	_, err := svc.ApplyMovement(context.Background(), &service.MovementInput{
		MovementType:  repository.MovementTransfer,
		ProductID:     productID,
		SourceID:      &src,
		DestinationID: &dest,
		Quantity:      decimal.NewFromInt(10),
	})

	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrValidation))
	mockDB.ExpectationsWereMet(t)
}
