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

// TaskResource links a task to a product it consumes
type TaskResource struct {
	ID               string          `db:"id" json:"id"`
	TaskID           string          `db:"task_id" json:"task_id"`
	ProductID        string          `db:"product_id" json:"product_id"`
	QuantityRequired decimal.Decimal `db:"quantity_required" json:"quantity_required"`
	QuantityUsed     decimal.Decimal `db:"quantity_used" json:"quantity_used"`
	CreatedAt        time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time       `db:"updated_at" json:"updated_at"`
}

// ResourceRepository handles task resource persistence
type ResourceRepository struct {
	db *database.DB
}

// NewResourceRepository creates a new resource repository
func NewResourceRepository(db *database.DB) *ResourceRepository {
	return &ResourceRepository{db: db}
}

// Create inserts a task resource
func (r *ResourceRepository) Create(ctx context.Context, resource *TaskResource) error {
	if resource.ID == "" {
		resource.ID = uuid.New().String()
	}

	query := `
		INSERT INTO task_resources (id, task_id, product_id, quantity_required, quantity_used)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at, updated_at
	`

	err := r.db.QueryRowxContext(ctx, query,
		resource.ID, resource.TaskID, resource.ProductID,
		resource.QuantityRequired, resource.QuantityUsed,
	).Scan(&resource.CreatedAt, &resource.UpdatedAt)
	if err != nil {
		if appErr := database.MapPQError(err); appErr != nil {
			return appErr
		}
		return err
	}

	return nil
}

// GetByID gets a task resource by ID
func (r *ResourceRepository) GetByID(ctx context.Context, id string) (*TaskResource, error) {
	var resource TaskResource

	query := `
		SELECT id, task_id, product_id, quantity_required, quantity_used, created_at, updated_at
		FROM task_resources WHERE id = $1
	`
	err := r.db.GetContext(ctx, &resource, query, id)
	if err == sql.ErrNoRows {
		return nil, errors.NotFound("task_resource")
	}
	if err != nil {
		return nil, err
	}

	return &resource, nil
}

// ListByTask lists the resources of a task
func (r *ResourceRepository) ListByTask(ctx context.Context, taskID string) ([]*TaskResource, error) {
	var resources []*TaskResource

	query := `
		SELECT id, task_id, product_id, quantity_required, quantity_used, created_at, updated_at
		FROM task_resources WHERE task_id = $1 ORDER BY created_at
	`
	if err := r.db.SelectContext(ctx, &resources, query, taskID); err != nil {
		return nil, err
	}

	return resources, nil
}

// UpdateUsage sets the consumed quantity of a resource
func (r *ResourceRepository) UpdateUsage(ctx context.Context, id string, used decimal.Decimal) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE task_resources SET quantity_used = $2, updated_at = NOW() WHERE id = $1`,
		id, used,
	)
	if err != nil {
		if appErr := database.MapPQError(err); appErr != nil {
			return appErr
		}
		return err
	}

	affected, _ := result.RowsAffected()
	if affected == 0 {
		return errors.NotFound("task_resource")
	}

	return nil
}

// Delete removes a task resource
func (r *ResourceRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM task_resources WHERE id = $1`, id)
	if err != nil {
		return err
	}

	affected, _ := result.RowsAffected()
	if affected == 0 {
		return errors.NotFound("task_resource")
	}

	return nil
}
