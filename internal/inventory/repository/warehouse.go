package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/agroflow/agroflow-backend/pkg/database"
	"github.com/agroflow/agroflow-backend/pkg/errors"
)

// Warehouse represents a storage location
type Warehouse struct {
	ID            string          `db:"id" json:"id"`
	Name          string          `db:"name" json:"name"`
	Location      *string         `db:"location" json:"location,omitempty"`
	Capacity      decimal.Decimal `db:"capacity" json:"capacity"`
	ResponsibleID string          `db:"responsible_id" json:"responsible_id"`
	CreatedAt     time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time       `db:"updated_at" json:"updated_at"`
}

// WarehouseRepository handles warehouse persistence
type WarehouseRepository struct {
	db *database.DB
}

// NewWarehouseRepository creates a new warehouse repository
func NewWarehouseRepository(db *database.DB) *WarehouseRepository {
	return &WarehouseRepository{db: db}
}

// Create creates a new warehouse
func (r *WarehouseRepository) Create(ctx context.Context, warehouse *Warehouse) error {
	if warehouse.ID == "" {
		warehouse.ID = uuid.New().String()
	}

	query := `
		INSERT INTO warehouses (id, name, location, capacity, responsible_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at, updated_at
	`

	err := r.db.QueryRowxContext(ctx, query,
		warehouse.ID, warehouse.Name, warehouse.Location, warehouse.Capacity, warehouse.ResponsibleID,
	).Scan(&warehouse.CreatedAt, &warehouse.UpdatedAt)
	if err != nil {
		if appErr := database.MapPQError(err); appErr != nil {
			return appErr
		}
		return err
	}

	return nil
}

// GetByID gets a warehouse by ID
func (r *WarehouseRepository) GetByID(ctx context.Context, id string) (*Warehouse, error) {
	var warehouse Warehouse

	query := `
		SELECT id, name, location, capacity, responsible_id, created_at, updated_at
		FROM warehouses WHERE id = $1
	`
	err := r.db.GetContext(ctx, &warehouse, query, id)
	if err == sql.ErrNoRows {
		return nil, errors.NotFound("warehouse")
	}
	if err != nil {
		return nil, err
	}

	return &warehouse, nil
}

// List lists all warehouses
func (r *WarehouseRepository) List(ctx context.Context) ([]*Warehouse, error) {
	var warehouses []*Warehouse

	query := `
		SELECT id, name, location, capacity, responsible_id, created_at, updated_at
		FROM warehouses ORDER BY name
	`
	if err := r.db.SelectContext(ctx, &warehouses, query); err != nil {
		return nil, err
	}

	return warehouses, nil
}

// Update updates a warehouse
func (r *WarehouseRepository) Update(ctx context.Context, warehouse *Warehouse) error {
	query := `
		UPDATE warehouses SET
			name = $2, location = $3, capacity = $4, responsible_id = $5, updated_at = NOW()
		WHERE id = $1
	`

	result, err := r.db.ExecContext(ctx, query,
		warehouse.ID, warehouse.Name, warehouse.Location, warehouse.Capacity, warehouse.ResponsibleID,
	)
	if err != nil {
		if appErr := database.MapPQError(err); appErr != nil {
			return appErr
		}
		return err
	}

	affected, _ := result.RowsAffected()
	if affected == 0 {
		return errors.NotFound("warehouse")
	}

	return nil
}

// Delete removes a warehouse
func (r *WarehouseRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM warehouses WHERE id = $1`, id)
	if err != nil {
		if appErr := database.MapPQError(err); appErr != nil {
			return appErr
		}
		return err
	}

	affected, _ := result.RowsAffected()
	if affected == 0 {
		return errors.NotFound("warehouse")
	}

	return nil
}
