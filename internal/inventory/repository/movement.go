package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"github.com/agroflow/agroflow-backend/pkg/database"
)

// Movement types
const (
	MovementEntry    = "entree"
	MovementExit     = "sortie"
	MovementTransfer = "transfert"
)

// StockMovement records an entry, exit or transfer of product quantity.
// Transfers carry both warehouses, entries only a destination, exits only a source.
type StockMovement struct {
	ID            string          `db:"id" json:"id"`
	Reference     string          `db:"reference" json:"reference"`
	MovementType  string          `db:"movement_type" json:"movement_type"`
	ProductID     string          `db:"product_id" json:"product_id"`
	SourceID      *string         `db:"source_warehouse_id" json:"source_warehouse_id,omitempty"`
	DestinationID *string         `db:"destination_warehouse_id" json:"destination_warehouse_id,omitempty"`
	Quantity      decimal.Decimal `db:"quantity" json:"quantity"`
	PerformedBy   *string         `db:"performed_by" json:"performed_by,omitempty"`
	Note          *string         `db:"note" json:"note,omitempty"`
	CreatedAt     time.Time       `db:"created_at" json:"created_at"`
}

// MovementRepository handles stock movement persistence
type MovementRepository struct {
	db *database.DB
}

// NewMovementRepository creates a new movement repository
func NewMovementRepository(db *database.DB) *MovementRepository {
	return &MovementRepository{db: db}
}

// CreateTx inserts a movement record inside the given transaction,
// so the movement and its balance updates commit as one atomic unit.
func (r *MovementRepository) CreateTx(ctx context.Context, tx *sqlx.Tx, movement *StockMovement) error {
	if movement.ID == "" {
		movement.ID = uuid.New().String()
	}
	if movement.Reference == "" {
		movement.Reference = "MVT-" + uuid.New().String()[:8]
	}

	query := `
		INSERT INTO stock_movements (id, reference, movement_type, product_id,
			source_warehouse_id, destination_warehouse_id, quantity, performed_by, note)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING created_at
	`

	err := tx.QueryRowxContext(ctx, query,
		movement.ID, movement.Reference, movement.MovementType, movement.ProductID,
		movement.SourceID, movement.DestinationID, movement.Quantity,
		movement.PerformedBy, movement.Note,
	).Scan(&movement.CreatedAt)
	if err != nil {
		if appErr := database.MapPQError(err); appErr != nil {
			return appErr
		}
		return err
	}

	return nil
}

// ListByProduct lists movements of a product, newest first
func (r *MovementRepository) ListByProduct(ctx context.Context, productID string, limit int) ([]*StockMovement, error) {
	var movements []*StockMovement

	query := `
		SELECT id, reference, movement_type, product_id, source_warehouse_id,
		       destination_warehouse_id, quantity, performed_by, note, created_at
		FROM stock_movements
		WHERE product_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`
	if err := r.db.SelectContext(ctx, &movements, query, productID, limit); err != nil {
		return nil, err
	}

	return movements, nil
}

// List lists recent movements with pagination
func (r *MovementRepository) List(ctx context.Context, page, perPage int) ([]*StockMovement, int64, error) {
	var total int64
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM stock_movements`); err != nil {
		return nil, 0, err
	}

	var movements []*StockMovement
	offset := (page - 1) * perPage

	query := `
		SELECT id, reference, movement_type, product_id, source_warehouse_id,
		       destination_warehouse_id, quantity, performed_by, note, created_at
		FROM stock_movements
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`
	if err := r.db.SelectContext(ctx, &movements, query, perPage, offset); err != nil {
		return nil, 0, err
	}

	return movements, total, nil
}

// CountByProduct returns how many movements reference a product.
// Used to block hard deletes of products with history.
func (r *MovementRepository) CountByProduct(ctx context.Context, productID string) (int64, error) {
	var count int64
	err := r.db.GetContext(ctx, &count,
		`SELECT COUNT(*) FROM stock_movements WHERE product_id = $1`, productID)
	return count, err
}

// CountByWarehouse returns how many movements reference a warehouse as source or destination
func (r *MovementRepository) CountByWarehouse(ctx context.Context, warehouseID string) (int64, error) {
	var count int64
	err := r.db.GetContext(ctx, &count,
		`SELECT COUNT(*) FROM stock_movements WHERE source_warehouse_id = $1 OR destination_warehouse_id = $1`,
		warehouseID)
	return count, err
}
