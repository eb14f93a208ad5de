package service

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/agroflow/agroflow-backend/internal/inventory/events"
	"github.com/agroflow/agroflow-backend/internal/inventory/repository"
	"github.com/agroflow/agroflow-backend/pkg/database"
	"github.com/agroflow/agroflow-backend/pkg/errors"
	"github.com/agroflow/agroflow-backend/pkg/logger"
)

// EmployeeResolver resolves employee references at write time.
// Implemented by the HR module's employee repository.
type EmployeeResolver interface {
	Exists(ctx context.Context, id string) (bool, error)
}

// InventoryService handles inventory business logic
type InventoryService struct {
	db            *database.DB
	productRepo   *repository.ProductRepository
	warehouseRepo *repository.WarehouseRepository
	stockRepo     *repository.StockRepository
	movementRepo  *repository.MovementRepository
	employees     EmployeeResolver
	publisher     *events.InventoryEventPublisher
	logger        *logger.Logger
}

// NewInventoryService creates a new inventory service
func NewInventoryService(
	db *database.DB,
	productRepo *repository.ProductRepository,
	warehouseRepo *repository.WarehouseRepository,
	stockRepo *repository.StockRepository,
	movementRepo *repository.MovementRepository,
	employees EmployeeResolver,
	publisher *events.InventoryEventPublisher,
	log *logger.Logger,
) *InventoryService {
	return &InventoryService{
		db:            db,
		productRepo:   productRepo,
		warehouseRepo: warehouseRepo,
		stockRepo:     stockRepo,
		movementRepo:  movementRepo,
		employees:     employees,
		publisher:     publisher,
		logger:        log,
	}
}

// Product operations

// CreateProduct validates and creates a product
func (s *InventoryService) CreateProduct(ctx context.Context, product *repository.Product) error {
	if err := ValidateProduct(product); err != nil {
		return err
	}
	if err := s.productRepo.Create(ctx, product); err != nil {
		return err
	}

	s.publisher.PublishProductCreated(ctx, product)
	return nil
}

// GetProduct gets a product by ID
func (s *InventoryService) GetProduct(ctx context.Context, id string) (*repository.Product, error) {
	return s.productRepo.GetByID(ctx, id)
}

// ListProducts lists products with pagination
func (s *InventoryService) ListProducts(ctx context.Context, page, perPage int, category string) ([]*repository.Product, int64, error) {
	return s.productRepo.List(ctx, page, perPage, category)
}

// ProductPatch carries the optional fields of a partial product update
type ProductPatch struct {
	Code           *string
	Name           *string
	Description    *string
	Category       *string
	Unit           *string
	UnitPrice      *decimal.Decimal
	AlertThreshold *decimal.Decimal
	IsActive       *bool
}

// UpdateProduct applies a partial update. Only supplied fields are mutated;
// the resulting full record is re-validated to catch cross-field violations
// introduced indirectly.
func (s *InventoryService) UpdateProduct(ctx context.Context, id string, patch ProductPatch) (*repository.Product, error) {
	product, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if patch.Code != nil {
		product.Code = *patch.Code
	}
	if patch.Name != nil {
		product.Name = *patch.Name
	}
	if patch.Description != nil {
		product.Description = patch.Description
	}
	if patch.Category != nil {
		product.Category = *patch.Category
	}
	if patch.Unit != nil {
		product.Unit = *patch.Unit
	}
	if patch.UnitPrice != nil {
		product.UnitPrice = *patch.UnitPrice
	}
	if patch.AlertThreshold != nil {
		product.AlertThreshold = *patch.AlertThreshold
	}
	if patch.IsActive != nil {
		product.IsActive = *patch.IsActive
	}

	if err := ValidateProduct(product); err != nil {
		return nil, err
	}

	if err := s.productRepo.Update(ctx, product); err != nil {
		return nil, err
	}

	return product, nil
}

// DeleteProduct removes a product unless stock movements reference it
func (s *InventoryService) DeleteProduct(ctx context.Context, id string) error {
	count, err := s.movementRepo.CountByProduct(ctx, id)
	if err != nil {
		return err
	}
	if count > 0 {
		return errors.Conflict("product is referenced by stock movements").WithDetails(map[string]string{
			"referenced_by": "stock_movement",
		})
	}

	return s.productRepo.Delete(ctx, id)
}

// Warehouse operations

// CreateWarehouse validates and creates a warehouse.
// The responsible party reference must resolve to an existing employee.
func (s *InventoryService) CreateWarehouse(ctx context.Context, warehouse *repository.Warehouse) error {
	if err := ValidateWarehouse(warehouse); err != nil {
		return err
	}

	exists, err := s.employees.Exists(ctx, warehouse.ResponsibleID)
	if err != nil {
		return err
	}
	if !exists {
		return errors.NotFound("employee")
	}

	return s.warehouseRepo.Create(ctx, warehouse)
}

// GetWarehouse gets a warehouse by ID
func (s *InventoryService) GetWarehouse(ctx context.Context, id string) (*repository.Warehouse, error) {
	return s.warehouseRepo.GetByID(ctx, id)
}

// ListWarehouses lists all warehouses
func (s *InventoryService) ListWarehouses(ctx context.Context) ([]*repository.Warehouse, error) {
	return s.warehouseRepo.List(ctx)
}

// UpdateWarehouse validates and updates a warehouse
func (s *InventoryService) UpdateWarehouse(ctx context.Context, warehouse *repository.Warehouse) error {
	if err := ValidateWarehouse(warehouse); err != nil {
		return err
	}

	exists, err := s.employees.Exists(ctx, warehouse.ResponsibleID)
	if err != nil {
		return err
	}
	if !exists {
		return errors.NotFound("employee")
	}

	return s.warehouseRepo.Update(ctx, warehouse)
}

// DeleteWarehouse removes a warehouse unless movements reference it
func (s *InventoryService) DeleteWarehouse(ctx context.Context, id string) error {
	count, err := s.movementRepo.CountByWarehouse(ctx, id)
	if err != nil {
		return err
	}
	if count > 0 {
		return errors.Conflict("warehouse is referenced by stock movements").WithDetails(map[string]string{
			"referenced_by": "stock_movement",
		})
	}

	return s.warehouseRepo.Delete(ctx, id)
}

// Stock reads

// GetStock gets the balance for a (product, warehouse) pair
func (s *InventoryService) GetStock(ctx context.Context, productID, warehouseID string) (*repository.Stock, error) {
	return s.stockRepo.GetByProductAndWarehouse(ctx, productID, warehouseID)
}

// ListStockByWarehouse lists balances in a warehouse
func (s *InventoryService) ListStockByWarehouse(ctx context.Context, warehouseID string) ([]*repository.Stock, error) {
	return s.stockRepo.ListByWarehouse(ctx, warehouseID)
}

// ListStockByProduct lists balances of a product across warehouses
func (s *InventoryService) ListStockByProduct(ctx context.Context, productID string) ([]*repository.Stock, error) {
	return s.stockRepo.ListByProduct(ctx, productID)
}

// ListMovements lists recent movements
func (s *InventoryService) ListMovements(ctx context.Context, page, perPage int) ([]*repository.StockMovement, int64, error) {
	return s.movementRepo.List(ctx, page, perPage)
}
