package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"github.com/agroflow/agroflow-backend/pkg/database"
	"github.com/agroflow/agroflow-backend/pkg/errors"
)

// Stock is the materialized balance of a product at a warehouse.
// It is mutated only through stock movements.
type Stock struct {
	ID             string           `db:"id" json:"id"`
	ProductID      string           `db:"product_id" json:"product_id"`
	WarehouseID    string           `db:"warehouse_id" json:"warehouse_id"`
	Quantity       decimal.Decimal  `db:"quantity" json:"quantity"`
	UnitValue      *decimal.Decimal `db:"unit_value" json:"unit_value,omitempty"`
	Lot            *string          `db:"lot" json:"lot,omitempty"`
	ExpiryDate     *time.Time       `db:"expiry_date" json:"expiry_date,omitempty"`
	Certifications *string          `db:"certifications" json:"certifications,omitempty"`
	CreatedAt      time.Time        `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time        `db:"updated_at" json:"updated_at"`
}

// StockRepository handles stock balance persistence
type StockRepository struct {
	db *database.DB
}

// NewStockRepository creates a new stock repository
func NewStockRepository(db *database.DB) *StockRepository {
	return &StockRepository{db: db}
}

// GetByProductAndWarehouse gets the balance row for a (product, warehouse) pair
func (r *StockRepository) GetByProductAndWarehouse(ctx context.Context, productID, warehouseID string) (*Stock, error) {
	var stock Stock

	query := `
		SELECT id, product_id, warehouse_id, quantity, unit_value, lot, expiry_date,
		       certifications, created_at, updated_at
		FROM stocks WHERE product_id = $1 AND warehouse_id = $2
	`
	err := r.db.GetContext(ctx, &stock, query, productID, warehouseID)
	if err == sql.ErrNoRows {
		return nil, errors.NotFound("stock")
	}
	if err != nil {
		return nil, err
	}

	return &stock, nil
}

// GetForUpdateTx loads a balance row with a row lock inside the given transaction.
// Concurrent movements on the same (product, warehouse) pair serialize on this lock,
// so the non-negative check never runs against a stale balance.
// Returns (nil, nil) when the row does not exist yet.
func (r *StockRepository) GetForUpdateTx(ctx context.Context, tx *sqlx.Tx, productID, warehouseID string) (*Stock, error) {
	var stock Stock

	query := `
		SELECT id, product_id, warehouse_id, quantity, unit_value, lot, expiry_date,
		       certifications, created_at, updated_at
		FROM stocks WHERE product_id = $1 AND warehouse_id = $2
		FOR UPDATE
	`
	err := tx.GetContext(ctx, &stock, query, productID, warehouseID)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return &stock, nil
}

// CreateTx inserts a new balance row inside the given transaction.
// Used on the first receipt of a product into a warehouse.
func (r *StockRepository) CreateTx(ctx context.Context, tx *sqlx.Tx, stock *Stock) error {
	if stock.ID == "" {
		stock.ID = uuid.New().String()
	}

	query := `
		INSERT INTO stocks (id, product_id, warehouse_id, quantity, unit_value, lot, expiry_date, certifications)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at, updated_at
	`

	err := tx.QueryRowxContext(ctx, query,
		stock.ID, stock.ProductID, stock.WarehouseID, stock.Quantity,
		stock.UnitValue, stock.Lot, stock.ExpiryDate, stock.Certifications,
	).Scan(&stock.CreatedAt, &stock.UpdatedAt)
	if err != nil {
		if appErr := database.MapPQError(err); appErr != nil {
			return appErr
		}
		return err
	}

	return nil
}

// UpdateQuantityTx sets the balance of a stock row inside the given transaction
func (r *StockRepository) UpdateQuantityTx(ctx context.Context, tx *sqlx.Tx, stockID string, quantity decimal.Decimal) error {
	result, err := tx.ExecContext(ctx,
		`UPDATE stocks SET quantity = $2, updated_at = NOW() WHERE id = $1`,
		stockID, quantity,
	)
	if err != nil {
		if appErr := database.MapPQError(err); appErr != nil {
			return appErr
		}
		return err
	}

	affected, _ := result.RowsAffected()
	if affected == 0 {
		return errors.NotFound("stock")
	}

	return nil
}

// ListByWarehouse lists balances for a warehouse
func (r *StockRepository) ListByWarehouse(ctx context.Context, warehouseID string) ([]*Stock, error) {
	var stocks []*Stock

	query := `
		SELECT id, product_id, warehouse_id, quantity, unit_value, lot, expiry_date,
		       certifications, created_at, updated_at
		FROM stocks WHERE warehouse_id = $1 ORDER BY product_id
	`
	if err := r.db.SelectContext(ctx, &stocks, query, warehouseID); err != nil {
		return nil, err
	}

	return stocks, nil
}

// ListByProduct lists balances of a product across all warehouses
func (r *StockRepository) ListByProduct(ctx context.Context, productID string) ([]*Stock, error) {
	var stocks []*Stock

	query := `
		SELECT id, product_id, warehouse_id, quantity, unit_value, lot, expiry_date,
		       certifications, created_at, updated_at
		FROM stocks WHERE product_id = $1 ORDER BY warehouse_id
	`
	if err := r.db.SelectContext(ctx, &stocks, query, productID); err != nil {
		return nil, err
	}

	return stocks, nil
}

// TotalValuation returns the sum of quantity * unit_value over all balances.
// Rows without a unit value fall back to the product's unit price.
func (r *StockRepository) TotalValuation(ctx context.Context) (decimal.Decimal, error) {
	var valuation decimal.NullDecimal

	query := `
		SELECT SUM(s.quantity * COALESCE(s.unit_value, p.unit_price))
		FROM stocks s
		JOIN products p ON p.id = s.product_id
	`
	if err := r.db.GetContext(ctx, &valuation, query); err != nil {
		return decimal.Zero, err
	}
	if !valuation.Valid {
		return decimal.Zero, nil
	}

	return valuation.Decimal, nil
}

// CountBelowThreshold returns the number of balances under their product's alert threshold
func (r *StockRepository) CountBelowThreshold(ctx context.Context) (int64, error) {
	var count int64

	query := `
		SELECT COUNT(*)
		FROM stocks s
		JOIN products p ON p.id = s.product_id
		WHERE s.quantity < p.alert_threshold
	`
	err := r.db.GetContext(ctx, &count, query)
	return count, err
}
