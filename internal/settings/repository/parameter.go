package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/agroflow/agroflow-backend/pkg/database"
	"github.com/agroflow/agroflow-backend/pkg/errors"
)

// ModuleParameter is a module-scoped configuration entry
type ModuleParameter struct {
	ID           string    `db:"id" json:"id"`
	Module       string    `db:"module" json:"module"`
	Key          string    `db:"key" json:"key"`
	Value        string    `db:"value" json:"value"`
	IsVisible    bool      `db:"is_visible" json:"is_visible"`
	IsEditable   bool      `db:"is_editable" json:"is_editable"`
	DisplayOrder int       `db:"display_order" json:"display_order"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// ParameterRepository handles module parameter persistence
type ParameterRepository struct {
	db *database.DB
}

// NewParameterRepository creates a new parameter repository
func NewParameterRepository(db *database.DB) *ParameterRepository {
	return &ParameterRepository{db: db}
}

// ListByModule lists the visible parameters of a module in display order
func (r *ParameterRepository) ListByModule(ctx context.Context, module string, includeHidden bool) ([]*ModuleParameter, error) {
	var params []*ModuleParameter

	query := `
		SELECT id, module, key, value, is_visible, is_editable, display_order, created_at, updated_at
		FROM module_parameters
		WHERE module = $1
	`
	if !includeHidden {
		query += ` AND is_visible = TRUE`
	}
	query += ` ORDER BY display_order, key`

	if err := r.db.SelectContext(ctx, &params, query, module); err != nil {
		return nil, err
	}

	return params, nil
}

// Get gets a parameter by module and key
func (r *ParameterRepository) Get(ctx context.Context, module, key string) (*ModuleParameter, error) {
	var param ModuleParameter

	query := `
		SELECT id, module, key, value, is_visible, is_editable, display_order, created_at, updated_at
		FROM module_parameters WHERE module = $1 AND key = $2
	`
	err := r.db.GetContext(ctx, &param, query, module, key)
	if err == sql.ErrNoRows {
		return nil, errors.NotFound("parameter")
	}
	if err != nil {
		return nil, err
	}

	return &param, nil
}

// Upsert inserts or updates a parameter keyed by (module, key)
func (r *ParameterRepository) Upsert(ctx context.Context, param *ModuleParameter) error {
	if param.ID == "" {
		param.ID = uuid.New().String()
	}

	query := `
		INSERT INTO module_parameters (id, module, key, value, is_visible, is_editable, display_order)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (module, key) DO UPDATE
		SET value = EXCLUDED.value,
		    is_visible = EXCLUDED.is_visible,
		    is_editable = EXCLUDED.is_editable,
		    display_order = EXCLUDED.display_order,
		    updated_at = NOW()
		RETURNING id, created_at, updated_at
	`

	err := r.db.QueryRowxContext(ctx, query,
		param.ID, param.Module, param.Key, param.Value,
		param.IsVisible, param.IsEditable, param.DisplayOrder,
	).Scan(&param.ID, &param.CreatedAt, &param.UpdatedAt)
	if err != nil {
		if appErr := database.MapPQError(err); appErr != nil {
			return appErr
		}
		return err
	}

	return nil
}
