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

// Task statuses
const (
	StatusTodo       = "a_faire"
	StatusInProgress = "en_cours"
	StatusDone       = "terminee"
	StatusCancelled  = "annulee"
)

// Task priorities
const (
	PriorityLow      = "basse"
	PriorityNormal   = "normale"
	PriorityHigh     = "haute"
	PriorityCritical = "critique"
)

// Task is a unit of field or workshop work inside a project.
// Weather-dependent tasks carry the thresholds their execution is gated on.
type Task struct {
	ID                string           `db:"id" json:"id"`
	ProjectID         string           `db:"project_id" json:"project_id"`
	Title             string           `db:"title" json:"title"`
	Description       *string          `db:"description" json:"description,omitempty"`
	Status            string           `db:"status" json:"status"`
	Priority          string           `db:"priority" json:"priority"`
	ResponsibleID     *string          `db:"responsible_id" json:"responsible_id,omitempty"`
	StartDate         time.Time        `db:"start_date" json:"start_date"`
	DueDate           time.Time        `db:"due_date" json:"due_date"`
	CompletionPercent int              `db:"completion_percent" json:"completion_percent"`
	WeatherDependent  bool             `db:"weather_dependent" json:"weather_dependent"`
	MinTemperature    *decimal.Decimal `db:"min_temperature" json:"min_temperature,omitempty"`
	MaxTemperature    *decimal.Decimal `db:"max_temperature" json:"max_temperature,omitempty"`
	MaxWindSpeed      *decimal.Decimal `db:"max_wind_speed" json:"max_wind_speed,omitempty"`
	MaxPrecipitation  *decimal.Decimal `db:"max_precipitation" json:"max_precipitation,omitempty"`
	CreatedAt         time.Time        `db:"created_at" json:"created_at"`
	UpdatedAt         time.Time        `db:"updated_at" json:"updated_at"`
}

// TaskRepository handles task persistence
type TaskRepository struct {
	db *database.DB
}

// NewTaskRepository creates a new task repository
func NewTaskRepository(db *database.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

const taskColumns = `id, project_id, title, description, status, priority, responsible_id,
	start_date, due_date, completion_percent, weather_dependent,
	min_temperature, max_temperature, max_wind_speed, max_precipitation,
	created_at, updated_at`

// Create inserts a task
func (r *TaskRepository) Create(ctx context.Context, task *Task) error {
	if task.ID == "" {
		task.ID = uuid.New().String()
	}

	query := `
		INSERT INTO tasks (id, project_id, title, description, status, priority,
			responsible_id, start_date, due_date, completion_percent, weather_dependent,
			min_temperature, max_temperature, max_wind_speed, max_precipitation)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		RETURNING created_at, updated_at
	`

	err := r.db.QueryRowxContext(ctx, query,
		task.ID, task.ProjectID, task.Title, task.Description, task.Status, task.Priority,
		task.ResponsibleID, task.StartDate, task.DueDate, task.CompletionPercent,
		task.WeatherDependent, task.MinTemperature, task.MaxTemperature,
		task.MaxWindSpeed, task.MaxPrecipitation,
	).Scan(&task.CreatedAt, &task.UpdatedAt)
	if err != nil {
		if appErr := database.MapPQError(err); appErr != nil {
			return appErr
		}
		return err
	}

	return nil
}

// GetByID gets a task by ID
func (r *TaskRepository) GetByID(ctx context.Context, id string) (*Task, error) {
	var task Task

	err := r.db.GetContext(ctx, &task, `SELECT `+taskColumns+` FROM tasks WHERE id = $1`, id)
	if err == sql.ErrNoRows {
		return nil, errors.NotFound("task")
	}
	if err != nil {
		return nil, err
	}

	return &task, nil
}

// ListByProject lists the tasks of a project
func (r *TaskRepository) ListByProject(ctx context.Context, projectID string) ([]*Task, error) {
	var tasks []*Task

	query := `SELECT ` + taskColumns + ` FROM tasks WHERE project_id = $1 ORDER BY start_date, created_at`
	if err := r.db.SelectContext(ctx, &tasks, query, projectID); err != nil {
		return nil, err
	}

	return tasks, nil
}

// Update updates a task
func (r *TaskRepository) Update(ctx context.Context, task *Task) error {
	query := `
		UPDATE tasks
		SET title = $2, description = $3, status = $4, priority = $5, responsible_id = $6,
		    start_date = $7, due_date = $8, completion_percent = $9, weather_dependent = $10,
		    min_temperature = $11, max_temperature = $12, max_wind_speed = $13,
		    max_precipitation = $14, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`

	err := r.db.QueryRowxContext(ctx, query,
		task.ID, task.Title, task.Description, task.Status, task.Priority,
		task.ResponsibleID, task.StartDate, task.DueDate, task.CompletionPercent,
		task.WeatherDependent, task.MinTemperature, task.MaxTemperature,
		task.MaxWindSpeed, task.MaxPrecipitation,
	).Scan(&task.UpdatedAt)
	if err == sql.ErrNoRows {
		return errors.NotFound("task")
	}
	if err != nil {
		if appErr := database.MapPQError(err); appErr != nil {
			return appErr
		}
		return err
	}

	return nil
}

// Delete deletes a task
func (r *TaskRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = $1`, id)
	if err != nil {
		if appErr := database.MapPQError(err); appErr != nil {
			return appErr
		}
		return err
	}

	affected, _ := result.RowsAffected()
	if affected == 0 {
		return errors.NotFound("task")
	}

	return nil
}

// CountByStatus returns task counts grouped by status
func (r *TaskRepository) CountByStatus(ctx context.Context) (map[string]int64, error) {
	rows, err := r.db.QueryxContext(ctx, `SELECT status, COUNT(*) FROM tasks GROUP BY status`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int64)
	for rows.Next() {
		var status string
		var count int64
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		counts[status] = count
	}

	return counts, rows.Err()
}

// CountOverdue returns the number of unfinished tasks past their due date
func (r *TaskRepository) CountOverdue(ctx context.Context) (int64, error) {
	var count int64

	query := `
		SELECT COUNT(*) FROM tasks
		WHERE due_date < CURRENT_DATE AND status NOT IN ($1, $2)
	`
	err := r.db.GetContext(ctx, &count, query, StatusDone, StatusCancelled)
	return count, err
}
