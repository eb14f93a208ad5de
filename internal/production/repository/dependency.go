package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/agroflow/agroflow-backend/pkg/database"
	"github.com/agroflow/agroflow-backend/pkg/errors"
)

// Dependency types
const (
	DependencyFinishToStart  = "fin_debut"
	DependencyStartToStart   = "debut_debut"
	DependencyFinishToFinish = "fin_fin"
	DependencyStartToFinish  = "debut_fin"
)

// TaskDependency is an edge of the task precedence graph
type TaskDependency struct {
	ID             string    `db:"id" json:"id"`
	TaskID         string    `db:"task_id" json:"task_id"`
	DependsOnID    string    `db:"depends_on_id" json:"depends_on_id"`
	DependencyType string    `db:"dependency_type" json:"dependency_type"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
}

// DependencyRepository handles task dependency persistence
type DependencyRepository struct {
	db *database.DB
}

// NewDependencyRepository creates a new dependency repository
func NewDependencyRepository(db *database.DB) *DependencyRepository {
	return &DependencyRepository{db: db}
}

// Create inserts a dependency edge
func (r *DependencyRepository) Create(ctx context.Context, dep *TaskDependency) error {
	if dep.ID == "" {
		dep.ID = uuid.New().String()
	}

	query := `
		INSERT INTO task_dependencies (id, task_id, depends_on_id, dependency_type)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at
	`

	err := r.db.QueryRowxContext(ctx, query,
		dep.ID, dep.TaskID, dep.DependsOnID, dep.DependencyType,
	).Scan(&dep.CreatedAt)
	if err != nil {
		if appErr := database.MapPQError(err); appErr != nil {
			return appErr
		}
		return err
	}

	return nil
}

// ListByTask lists the dependencies of a task
func (r *DependencyRepository) ListByTask(ctx context.Context, taskID string) ([]*TaskDependency, error) {
	var deps []*TaskDependency

	query := `
		SELECT id, task_id, depends_on_id, dependency_type, created_at
		FROM task_dependencies WHERE task_id = $1 ORDER BY created_at
	`
	if err := r.db.SelectContext(ctx, &deps, query, taskID); err != nil {
		return nil, err
	}

	return deps, nil
}

// Delete removes a dependency edge
func (r *DependencyRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM task_dependencies WHERE id = $1`, id)
	if err != nil {
		return err
	}

	affected, _ := result.RowsAffected()
	if affected == 0 {
		return errors.NotFound("task_dependency")
	}

	return nil
}

// Reachable reports whether `to` is reachable from `from` by following
// dependency edges. Used to detect the cycle an edge insertion would close:
// task -> depends_on is cyclic exactly when task is already reachable
// from depends_on.
func (r *DependencyRepository) Reachable(ctx context.Context, from, to string) (bool, error) {
	var reachable bool

	query := `
		WITH RECURSIVE reach AS (
			SELECT depends_on_id FROM task_dependencies WHERE task_id = $1
			UNION
			SELECT td.depends_on_id
			FROM task_dependencies td
			JOIN reach r ON td.task_id = r.depends_on_id
		)
		SELECT EXISTS (SELECT 1 FROM reach WHERE depends_on_id = $2)
	`
	if err := r.db.GetContext(ctx, &reachable, query, from, to); err != nil {
		return false, err
	}

	return reachable, nil
}
