package database

import (
	"strings"

	"github.com/lib/pq"

	"github.com/agroflow/agroflow-backend/pkg/errors"
)

// MapPQError converts a PostgreSQL error to an AppError with meaningful messages.
// Returns nil if the error is not a pq.Error.
func MapPQError(err error) *errors.AppError {
	pqErr, ok := err.(*pq.Error)
	if !ok {
		return nil
	}

	switch pqErr.Code {
	// Check constraint violation (23514)
	case "23514":
		return mapCheckConstraint(pqErr)

	// Unique constraint violation (23505)
	case "23505":
		return errors.Conflict(formatConstraintMessage(pqErr))

	// Foreign key violation (23503)
	case "23503":
		return errors.BadRequest("referenced record does not exist")

	// Not null violation (23502)
	case "23502":
		col := pqErr.Column
		if col == "" {
			col = "required field"
		}
		return errors.Validation(map[string]string{
			col: "must not be empty",
		})

	default:
		return nil
	}
}

// mapCheckConstraint maps specific CHECK constraint names to user-friendly messages.
func mapCheckConstraint(pqErr *pq.Error) *errors.AppError {
	constraint := pqErr.Constraint

	switch {
	case strings.Contains(constraint, "quantity_non_negative"):
		return errors.Validation(map[string]string{
			"quantity": "must not be negative",
		})

	case strings.Contains(constraint, "capacity_non_negative"):
		return errors.Validation(map[string]string{
			"capacity": "must not be negative",
		})

	case strings.Contains(constraint, "completion_range"):
		return errors.Validation(map[string]string{
			"completion_percent": "must be between 0 and 100",
		})

	case strings.Contains(constraint, "due_after_start"):
		return errors.Validation(map[string]string{
			"due_date": "must not be before start_date",
		})

	case strings.Contains(constraint, "category_valid"):
		return errors.Validation(map[string]string{
			"category": "must be one of: intrant, equipement, recolte, emballage, piece_rechange",
		})

	case strings.Contains(constraint, "unit_valid"):
		return errors.Validation(map[string]string{
			"unit": "must be one of: kg, l, unite, t, m",
		})

	case strings.Contains(constraint, "task_status_valid"):
		return errors.Validation(map[string]string{
			"status": "must be one of: a_faire, en_cours, terminee, annulee",
		})

	case strings.Contains(constraint, "leave_status_valid"):
		return errors.Validation(map[string]string{
			"status": "must be one of: en_attente, approuve, rejete, annule",
		})

	case strings.Contains(constraint, "movement_type_valid"):
		return errors.Validation(map[string]string{
			"type": "must be one of: entree, sortie, transfert",
		})

	default:
		return errors.BadRequest("data validation failed: " + constraint)
	}
}

// formatConstraintMessage creates a user-friendly message for unique constraint violations.
func formatConstraintMessage(pqErr *pq.Error) string {
	constraint := pqErr.Constraint

	switch {
	case strings.Contains(constraint, "product_code"):
		return "a product with this code already exists"
	case strings.Contains(constraint, "employee_number"):
		return "an employee with this number already exists"
	case strings.Contains(constraint, "user_email"):
		return "a user with this email already exists"
	case strings.Contains(constraint, "stock_product_warehouse"):
		return "a stock balance for this product and warehouse already exists"
	case strings.Contains(constraint, "dependency_edge"):
		return "this task dependency already exists"
	default:
		return "a record with these values already exists"
	}
}
