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

// Product categories
const (
	CategoryIntrant       = "intrant"
	CategoryEquipement    = "equipement"
	CategoryRecolte       = "recolte"
	CategoryEmballage     = "emballage"
	CategoryPieceRechange = "piece_rechange"
)

// Units of measure
const (
	UnitKilogram = "kg"
	UnitLitre    = "l"
	UnitPiece    = "unite"
	UnitTonne    = "t"
	UnitMetre    = "m"
)

// Product represents a product managed by the inventory module
type Product struct {
	ID             string          `db:"id" json:"id"`
	Code           string          `db:"code" json:"code"`
	Name           string          `db:"name" json:"name"`
	Description    *string         `db:"description" json:"description,omitempty"`
	Category       string          `db:"category" json:"category"`
	Unit           string          `db:"unit" json:"unit"`
	UnitPrice      decimal.Decimal `db:"unit_price" json:"unit_price"`
	AlertThreshold decimal.Decimal `db:"alert_threshold" json:"alert_threshold"`
	IsActive       bool            `db:"is_active" json:"is_active"`
	CreatedAt      time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time       `db:"updated_at" json:"updated_at"`
}

// ProductRepository handles product persistence
type ProductRepository struct {
	db *database.DB
}

// NewProductRepository creates a new product repository
func NewProductRepository(db *database.DB) *ProductRepository {
	return &ProductRepository{db: db}
}

// Create creates a new product
func (r *ProductRepository) Create(ctx context.Context, product *Product) error {
	if product.ID == "" {
		product.ID = uuid.New().String()
	}

	query := `
		INSERT INTO products (id, code, name, description, category, unit, unit_price, alert_threshold, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING created_at, updated_at
	`

	err := r.db.QueryRowxContext(ctx, query,
		product.ID, product.Code, product.Name, product.Description, product.Category,
		product.Unit, product.UnitPrice, product.AlertThreshold, product.IsActive,
	).Scan(&product.CreatedAt, &product.UpdatedAt)
	if err != nil {
		if appErr := database.MapPQError(err); appErr != nil {
			return appErr
		}
		return err
	}

	return nil
}

// GetByID gets a product by ID
func (r *ProductRepository) GetByID(ctx context.Context, id string) (*Product, error) {
	var product Product

	query := `
		SELECT id, code, name, description, category, unit, unit_price, alert_threshold,
		       is_active, created_at, updated_at
		FROM products WHERE id = $1
	`
	err := r.db.GetContext(ctx, &product, query, id)
	if err == sql.ErrNoRows {
		return nil, errors.NotFound("product")
	}
	if err != nil {
		return nil, err
	}

	return &product, nil
}

// GetByCode gets a product by its unique code
func (r *ProductRepository) GetByCode(ctx context.Context, code string) (*Product, error) {
	var product Product

	query := `
		SELECT id, code, name, description, category, unit, unit_price, alert_threshold,
		       is_active, created_at, updated_at
		FROM products WHERE code = $1
	`
	err := r.db.GetContext(ctx, &product, query, code)
	if err == sql.ErrNoRows {
		return nil, errors.NotFound("product")
	}
	if err != nil {
		return nil, err
	}

	return &product, nil
}

// List lists products with pagination and optional category filter
func (r *ProductRepository) List(ctx context.Context, page, perPage int, category string) ([]*Product, int64, error) {
	var total int64
	var products []*Product

	countQuery := `SELECT COUNT(*) FROM products`
	args := []interface{}{}

	if category != "" {
		countQuery += ` WHERE category = $1`
		args = append(args, category)
	}

	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * perPage
	query := `
		SELECT id, code, name, description, category, unit, unit_price, alert_threshold,
		       is_active, created_at, updated_at
		FROM products
	`
	if category != "" {
		query += ` WHERE category = $1 ORDER BY code LIMIT $2 OFFSET $3`
		args = append(args, perPage, offset)
	} else {
		query += ` ORDER BY code LIMIT $1 OFFSET $2`
		args = append(args, perPage, offset)
	}

	if err := r.db.SelectContext(ctx, &products, query, args...); err != nil {
		return nil, 0, err
	}

	return products, total, nil
}

// Update updates a product
func (r *ProductRepository) Update(ctx context.Context, product *Product) error {
	query := `
		UPDATE products SET
			code = $2, name = $3, description = $4, category = $5, unit = $6,
			unit_price = $7, alert_threshold = $8, is_active = $9, updated_at = NOW()
		WHERE id = $1
	`

	result, err := r.db.ExecContext(ctx, query,
		product.ID, product.Code, product.Name, product.Description, product.Category,
		product.Unit, product.UnitPrice, product.AlertThreshold, product.IsActive,
	)
	if err != nil {
		if appErr := database.MapPQError(err); appErr != nil {
			return appErr
		}
		return err
	}

	affected, _ := result.RowsAffected()
	if affected == 0 {
		return errors.NotFound("product")
	}

	return nil
}

// Delete removes a product. Callers must check for referencing movements first;
// products referenced by historical records are never hard-deleted.
func (r *ProductRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		if appErr := database.MapPQError(err); appErr != nil {
			return appErr
		}
		return err
	}

	affected, _ := result.RowsAffected()
	if affected == 0 {
		return errors.NotFound("product")
	}

	return nil
}

// Exists reports whether a product exists
func (r *ProductRepository) Exists(ctx context.Context, id string) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists,
		`SELECT EXISTS (SELECT 1 FROM products WHERE id = $1)`, id)
	return exists, err
}

// CountActive returns the number of active products
func (r *ProductRepository) CountActive(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM products WHERE is_active = TRUE`)
	return count, err
}
