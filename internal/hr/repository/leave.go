package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/agroflow/agroflow-backend/pkg/database"
	"github.com/agroflow/agroflow-backend/pkg/errors"
)

// Leave request statuses
const (
	LeavePending   = "en_attente"
	LeaveApproved  = "approuve"
	LeaveRejected  = "rejete"
	LeaveCancelled = "annule"
)

// LeaveRequest is a request for time off awaiting a decision
type LeaveRequest struct {
	ID           string     `db:"id" json:"id"`
	EmployeeID   string     `db:"employee_id" json:"employee_id"`
	LeaveType    string     `db:"leave_type" json:"leave_type"`
	StartDate    time.Time  `db:"start_date" json:"start_date"`
	EndDate      time.Time  `db:"end_date" json:"end_date"`
	Status       string     `db:"status" json:"status"`
	Reason       *string    `db:"reason" json:"reason,omitempty"`
	DecidedBy    *string    `db:"decided_by" json:"decided_by,omitempty"`
	DecidedAt    *time.Time `db:"decided_at" json:"decided_at,omitempty"`
	DecisionNote *string    `db:"decision_note" json:"decision_note,omitempty"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time  `db:"updated_at" json:"updated_at"`
}

// LeaveRepository handles leave request persistence
type LeaveRepository struct {
	db *database.DB
}

// NewLeaveRepository creates a new leave repository
func NewLeaveRepository(db *database.DB) *LeaveRepository {
	return &LeaveRepository{db: db}
}

// Create inserts a leave request
func (r *LeaveRepository) Create(ctx context.Context, leave *LeaveRequest) error {
	if leave.ID == "" {
		leave.ID = uuid.New().String()
	}
	if leave.Status == "" {
		leave.Status = LeavePending
	}

	query := `
		INSERT INTO leave_requests (id, employee_id, leave_type, start_date, end_date, status, reason)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at, updated_at
	`

	err := r.db.QueryRowxContext(ctx, query,
		leave.ID, leave.EmployeeID, leave.LeaveType, leave.StartDate,
		leave.EndDate, leave.Status, leave.Reason,
	).Scan(&leave.CreatedAt, &leave.UpdatedAt)
	if err != nil {
		if appErr := database.MapPQError(err); appErr != nil {
			return appErr
		}
		return err
	}

	return nil
}

// GetByID gets a leave request by ID
func (r *LeaveRepository) GetByID(ctx context.Context, id string) (*LeaveRequest, error) {
	var leave LeaveRequest

	query := `
		SELECT id, employee_id, leave_type, start_date, end_date, status, reason,
		       decided_by, decided_at, decision_note, created_at, updated_at
		FROM leave_requests WHERE id = $1
	`
	err := r.db.GetContext(ctx, &leave, query, id)
	if err == sql.ErrNoRows {
		return nil, errors.NotFound("leave_request")
	}
	if err != nil {
		return nil, err
	}

	return &leave, nil
}

// ListByEmployee lists the leave requests of an employee
func (r *LeaveRepository) ListByEmployee(ctx context.Context, employeeID string) ([]*LeaveRequest, error) {
	var leaves []*LeaveRequest

	query := `
		SELECT id, employee_id, leave_type, start_date, end_date, status, reason,
		       decided_by, decided_at, decision_note, created_at, updated_at
		FROM leave_requests WHERE employee_id = $1 ORDER BY created_at DESC
	`
	if err := r.db.SelectContext(ctx, &leaves, query, employeeID); err != nil {
		return nil, err
	}

	return leaves, nil
}

// ListByStatus lists leave requests in a given status
func (r *LeaveRepository) ListByStatus(ctx context.Context, status string) ([]*LeaveRequest, error) {
	var leaves []*LeaveRequest

	query := `
		SELECT id, employee_id, leave_type, start_date, end_date, status, reason,
		       decided_by, decided_at, decision_note, created_at, updated_at
		FROM leave_requests WHERE status = $1 ORDER BY created_at
	`
	if err := r.db.SelectContext(ctx, &leaves, query, status); err != nil {
		return nil, err
	}

	return leaves, nil
}

// Decide records a decision on a leave request
func (r *LeaveRepository) Decide(ctx context.Context, id, status, decidedBy string, note *string) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE leave_requests
		SET status = $2, decided_by = $3, decided_at = NOW(), decision_note = $4, updated_at = NOW()
		WHERE id = $1
	`, id, status, decidedBy, note)
	if err != nil {
		if appErr := database.MapPQError(err); appErr != nil {
			return appErr
		}
		return err
	}

	affected, _ := result.RowsAffected()
	if affected == 0 {
		return errors.NotFound("leave_request")
	}

	return nil
}

// CountPending returns the number of pending leave requests
func (r *LeaveRepository) CountPending(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.GetContext(ctx, &count,
		`SELECT COUNT(*) FROM leave_requests WHERE status = $1`, LeavePending)
	return count, err
}
