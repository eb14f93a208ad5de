package service

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"github.com/agroflow/agroflow-backend/internal/inventory/repository"
	"github.com/agroflow/agroflow-backend/pkg/errors"
)

// lowStockCheck is a balance to compare against the product threshold after commit
type lowStockCheck struct {
	warehouseID string
	balance     decimal.Decimal
}

// ApplyMovement applies a stock movement atomically.
//
// Balance rows touched by the movement are locked for the duration of the
// transaction, debits are rejected when they would drive a balance negative,
// and the movement record commits together with the balance updates. Alert
// events fire only after a successful commit.
func (s *InventoryService) ApplyMovement(ctx context.Context, input *MovementInput) (*repository.StockMovement, error) {
	if err := ValidateMovement(input); err != nil {
		return nil, err
	}

	product, err := s.productRepo.GetByID(ctx, input.ProductID)
	if err != nil {
		return nil, err
	}

	if input.SourceID != nil {
		if _, err := s.warehouseRepo.GetByID(ctx, *input.SourceID); err != nil {
			return nil, err
		}
	}
	if input.DestinationID != nil {
		if _, err := s.warehouseRepo.GetByID(ctx, *input.DestinationID); err != nil {
			return nil, err
		}
	}

	movement := &repository.StockMovement{
		MovementType:  input.MovementType,
		ProductID:     input.ProductID,
		SourceID:      input.SourceID,
		DestinationID: input.DestinationID,
		Quantity:      input.Quantity,
		PerformedBy:   input.PerformedBy,
		Note:          input.Note,
	}

	var checks []lowStockCheck

	err = s.db.Transaction(ctx, func(tx *sqlx.Tx) error {
		switch input.MovementType {
		case repository.MovementEntry:
			balance, err := s.credit(ctx, tx, input.ProductID, *input.DestinationID, input.Quantity)
			if err != nil {
				return err
			}
			checks = append(checks, lowStockCheck{*input.DestinationID, balance})

		case repository.MovementExit:
			balance, err := s.debit(ctx, tx, input.ProductID, *input.SourceID, input.Quantity)
			if err != nil {
				return err
			}
			checks = append(checks, lowStockCheck{*input.SourceID, balance})

		case repository.MovementTransfer:
			// Debit before credit so the insufficient-stock check runs first.
			debited, err := s.debit(ctx, tx, input.ProductID, *input.SourceID, input.Quantity)
			if err != nil {
				return err
			}
			credited, err := s.credit(ctx, tx, input.ProductID, *input.DestinationID, input.Quantity)
			if err != nil {
				return err
			}
			checks = append(checks,
				lowStockCheck{*input.SourceID, debited},
				lowStockCheck{*input.DestinationID, credited},
			)
		}

		return s.movementRepo.CreateTx(ctx, tx, movement)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("movement_id", movement.ID).
		Str("movement_type", movement.MovementType).
		Str("product_id", movement.ProductID).
		Str("quantity", movement.Quantity.String()).
		Msg("stock movement applied")

	s.publisher.PublishMovementApplied(ctx, movement)

	for _, check := range checks {
		if check.balance.LessThan(product.AlertThreshold) {
			s.publisher.PublishLowStockAlert(ctx, product, check.warehouseID, check.balance.String())
		}
	}

	return movement, nil
}

// credit adds quantity to the balance at a warehouse, creating the row on first receipt
func (s *InventoryService) credit(ctx context.Context, tx *sqlx.Tx, productID, warehouseID string, quantity decimal.Decimal) (decimal.Decimal, error) {
	stock, err := s.stockRepo.GetForUpdateTx(ctx, tx, productID, warehouseID)
	if err != nil {
		return decimal.Zero, err
	}

	if stock == nil {
		stock = &repository.Stock{
			ProductID:   productID,
			WarehouseID: warehouseID,
			Quantity:    quantity,
		}
		if err := s.stockRepo.CreateTx(ctx, tx, stock); err != nil {
			return decimal.Zero, err
		}
		return stock.Quantity, nil
	}

	balance := stock.Quantity.Add(quantity)
	if err := s.stockRepo.UpdateQuantityTx(ctx, tx, stock.ID, balance); err != nil {
		return decimal.Zero, err
	}

	return balance, nil
}

// debit removes quantity from the balance at a warehouse.
// A missing row counts as a zero balance and is rejected the same way
// as any debit that would go negative.
func (s *InventoryService) debit(ctx context.Context, tx *sqlx.Tx, productID, warehouseID string, quantity decimal.Decimal) (decimal.Decimal, error) {
	stock, err := s.stockRepo.GetForUpdateTx(ctx, tx, productID, warehouseID)
	if err != nil {
		return decimal.Zero, err
	}

	if stock == nil || stock.Quantity.LessThan(quantity) {
		return decimal.Zero, errors.InsufficientStock(productID, warehouseID)
	}

	balance := stock.Quantity.Sub(quantity)
	if err := s.stockRepo.UpdateQuantityTx(ctx, tx, stock.ID, balance); err != nil {
		return decimal.Zero, err
	}

	return balance, nil
}
