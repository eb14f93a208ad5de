package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/agroflow/agroflow-backend/pkg/database"
	"github.com/agroflow/agroflow-backend/pkg/errors"
)

// Employee is a member of the workforce, optionally linked to a user account
type Employee struct {
	ID             string    `db:"id" json:"id"`
	EmployeeNumber string    `db:"employee_number" json:"employee_number"`
	FirstName      string    `db:"first_name" json:"first_name"`
	LastName       string    `db:"last_name" json:"last_name"`
	Email          *string   `db:"email" json:"email,omitempty"`
	Position       string    `db:"position" json:"position"`
	HireDate       time.Time `db:"hire_date" json:"hire_date"`
	IsActive       bool      `db:"is_active" json:"is_active"`
	UserID         *string   `db:"user_id" json:"user_id,omitempty"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time `db:"updated_at" json:"updated_at"`
}

// EmployeeRepository handles employee persistence
type EmployeeRepository struct {
	db *database.DB
}

// NewEmployeeRepository creates a new employee repository
func NewEmployeeRepository(db *database.DB) *EmployeeRepository {
	return &EmployeeRepository{db: db}
}

// Create inserts an employee
func (r *EmployeeRepository) Create(ctx context.Context, employee *Employee) error {
	if employee.ID == "" {
		employee.ID = uuid.New().String()
	}

	query := `
		INSERT INTO employees (id, employee_number, first_name, last_name, email,
			position, hire_date, is_active, user_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING created_at, updated_at
	`

	err := r.db.QueryRowxContext(ctx, query,
		employee.ID, employee.EmployeeNumber, employee.FirstName, employee.LastName,
		employee.Email, employee.Position, employee.HireDate, employee.IsActive, employee.UserID,
	).Scan(&employee.CreatedAt, &employee.UpdatedAt)
	if err != nil {
		if appErr := database.MapPQError(err); appErr != nil {
			return appErr
		}
		return err
	}

	return nil
}

// GetByID gets an employee by ID
func (r *EmployeeRepository) GetByID(ctx context.Context, id string) (*Employee, error) {
	var employee Employee

	query := `
		SELECT id, employee_number, first_name, last_name, email, position,
		       hire_date, is_active, user_id, created_at, updated_at
		FROM employees WHERE id = $1
	`
	err := r.db.GetContext(ctx, &employee, query, id)
	if err == sql.ErrNoRows {
		return nil, errors.NotFound("employee")
	}
	if err != nil {
		return nil, err
	}

	return &employee, nil
}

// Exists reports whether an employee exists
func (r *EmployeeRepository) Exists(ctx context.Context, id string) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists,
		`SELECT EXISTS (SELECT 1 FROM employees WHERE id = $1)`, id)
	return exists, err
}

// List lists employees with pagination
func (r *EmployeeRepository) List(ctx context.Context, page, perPage int, activeOnly bool) ([]*Employee, int64, error) {
	where := ""
	if activeOnly {
		where = " WHERE is_active = TRUE"
	}

	var total int64
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM employees`+where); err != nil {
		return nil, 0, err
	}

	var employees []*Employee
	offset := (page - 1) * perPage

	query := `
		SELECT id, employee_number, first_name, last_name, email, position,
		       hire_date, is_active, user_id, created_at, updated_at
		FROM employees` + where + `
		ORDER BY last_name, first_name
		LIMIT $1 OFFSET $2
	`
	if err := r.db.SelectContext(ctx, &employees, query, perPage, offset); err != nil {
		return nil, 0, err
	}

	return employees, total, nil
}

// Update updates an employee
func (r *EmployeeRepository) Update(ctx context.Context, employee *Employee) error {
	query := `
		UPDATE employees
		SET employee_number = $2, first_name = $3, last_name = $4, email = $5,
		    position = $6, hire_date = $7, is_active = $8, user_id = $9, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`

	err := r.db.QueryRowxContext(ctx, query,
		employee.ID, employee.EmployeeNumber, employee.FirstName, employee.LastName,
		employee.Email, employee.Position, employee.HireDate, employee.IsActive, employee.UserID,
	).Scan(&employee.UpdatedAt)
	if err == sql.ErrNoRows {
		return errors.NotFound("employee")
	}
	if err != nil {
		if appErr := database.MapPQError(err); appErr != nil {
			return appErr
		}
		return err
	}

	return nil
}

// Delete deletes an employee
func (r *EmployeeRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM employees WHERE id = $1`, id)
	if err != nil {
		if appErr := database.MapPQError(err); appErr != nil {
			return appErr
		}
		return err
	}

	affected, _ := result.RowsAffected()
	if affected == 0 {
		return errors.NotFound("employee")
	}

	return nil
}

// CountActive returns the number of active employees
func (r *EmployeeRepository) CountActive(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.GetContext(ctx, &count,
		`SELECT COUNT(*) FROM employees WHERE is_active = TRUE`)
	return count, err
}
