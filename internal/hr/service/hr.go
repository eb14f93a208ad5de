package service

import (
	"context"
	"time"

	"github.com/agroflow/agroflow-backend/internal/hr/events"
	"github.com/agroflow/agroflow-backend/internal/hr/repository"
	"github.com/agroflow/agroflow-backend/pkg/errors"
	"github.com/agroflow/agroflow-backend/pkg/logger"
	"github.com/agroflow/agroflow-backend/pkg/permissions"
)

// PermLeaveApprove is required to decide leave requests
const PermLeaveApprove = "rh.conges.approve"

// Actor identifies the caller of a permission-gated operation
type Actor struct {
	UserID      string
	Permissions []string
	IsSuperuser bool
}

// HRService handles HR business logic
type HRService struct {
	employeeRepo *repository.EmployeeRepository
	leaveRepo    *repository.LeaveRepository
	publisher    *events.HREventPublisher
	logger       *logger.Logger
}

// NewHRService creates a new HR service
func NewHRService(
	employeeRepo *repository.EmployeeRepository,
	leaveRepo *repository.LeaveRepository,
	publisher *events.HREventPublisher,
	log *logger.Logger,
) *HRService {
	return &HRService{
		employeeRepo: employeeRepo,
		leaveRepo:    leaveRepo,
		publisher:    publisher,
		logger:       log,
	}
}

// ValidateEmployee checks the structural correctness of an employee
func ValidateEmployee(employee *repository.Employee) error {
	details := make(map[string]string)

	if employee.EmployeeNumber == "" {
		details["employee_number"] = "this field is required"
	}
	if employee.FirstName == "" {
		details["first_name"] = "this field is required"
	}
	if employee.LastName == "" {
		details["last_name"] = "this field is required"
	}
	if employee.Position == "" {
		details["position"] = "this field is required"
	}
	if employee.HireDate.After(time.Now()) {
		details["hire_date"] = "must not be in the future"
	}

	if len(details) > 0 {
		return errors.Validation(details)
	}
	return nil
}

// Employee operations

// CreateEmployee validates and creates an employee
func (s *HRService) CreateEmployee(ctx context.Context, employee *repository.Employee) error {
	if err := ValidateEmployee(employee); err != nil {
		return err
	}
	return s.employeeRepo.Create(ctx, employee)
}

// GetEmployee gets an employee by ID
func (s *HRService) GetEmployee(ctx context.Context, id string) (*repository.Employee, error) {
	return s.employeeRepo.GetByID(ctx, id)
}

// ListEmployees lists employees with pagination
func (s *HRService) ListEmployees(ctx context.Context, page, perPage int, activeOnly bool) ([]*repository.Employee, int64, error) {
	return s.employeeRepo.List(ctx, page, perPage, activeOnly)
}

// UpdateEmployee validates and updates an employee
func (s *HRService) UpdateEmployee(ctx context.Context, employee *repository.Employee) error {
	if err := ValidateEmployee(employee); err != nil {
		return err
	}
	return s.employeeRepo.Update(ctx, employee)
}

// DeleteEmployee deletes an employee
func (s *HRService) DeleteEmployee(ctx context.Context, id string) error {
	return s.employeeRepo.Delete(ctx, id)
}

// Leave operations

// CreateLeaveRequest validates and creates a leave request in pending state
func (s *HRService) CreateLeaveRequest(ctx context.Context, leave *repository.LeaveRequest) error {
	details := make(map[string]string)
	if leave.EmployeeID == "" {
		details["employee_id"] = "this field is required"
	}
	if leave.EndDate.Before(leave.StartDate) {
		details["end_date"] = "must not be before start date"
	}
	if len(details) > 0 {
		return errors.Validation(details)
	}

	exists, err := s.employeeRepo.Exists(ctx, leave.EmployeeID)
	if err != nil {
		return err
	}
	if !exists {
		return errors.NotFound("employee")
	}

	leave.Status = repository.LeavePending
	if err := s.leaveRepo.Create(ctx, leave); err != nil {
		return err
	}

	s.publisher.PublishLeaveRequested(ctx, leave)
	return nil
}

// GetLeaveRequest gets a leave request by ID
func (s *HRService) GetLeaveRequest(ctx context.Context, id string) (*repository.LeaveRequest, error) {
	return s.leaveRepo.GetByID(ctx, id)
}

// ListLeaveRequests lists leave requests for an employee or by status
func (s *HRService) ListLeaveRequests(ctx context.Context, employeeID, status string) ([]*repository.LeaveRequest, error) {
	if employeeID != "" {
		return s.leaveRepo.ListByEmployee(ctx, employeeID)
	}
	if status == "" {
		status = repository.LeavePending
	}
	return s.leaveRepo.ListByStatus(ctx, status)
}

// DecideLeaveRequest approves or rejects a pending leave request.
// Only callers holding the approval permission may decide, and decisions
// apply to pending requests only.
func (s *HRService) DecideLeaveRequest(ctx context.Context, actor Actor, id, decision string, note *string) (*repository.LeaveRequest, error) {
	if decision != repository.LeaveApproved && decision != repository.LeaveRejected {
		return nil, errors.Validation(map[string]string{
			"decision": "must be one of: approuve, rejete",
		})
	}

	if !actor.IsSuperuser && !permissions.HasPermission(actor.Permissions, PermLeaveApprove) {
		return nil, errors.Forbidden("missing permission " + PermLeaveApprove)
	}

	leave, err := s.leaveRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if leave.Status != repository.LeavePending {
		return nil, errors.StateInconsistency(
			"leave request has already been decided",
			map[string]string{"status": leave.Status})
	}

	if err := s.leaveRepo.Decide(ctx, id, decision, actor.UserID, note); err != nil {
		return nil, err
	}

	leave, err = s.leaveRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("leave_id", leave.ID).
		Str("decision", decision).
		Str("decided_by", actor.UserID).
		Msg("leave request decided")

	s.publisher.PublishLeaveDecided(ctx, leave, decision, actor.UserID)
	return leave, nil
}
