package service_test

import (
	"context"
	"database/sql/driver"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agroflow/agroflow-backend/internal/hr/repository"
	"github.com/agroflow/agroflow-backend/internal/hr/service"
	"github.com/agroflow/agroflow-backend/pkg/database"
	"github.com/agroflow/agroflow-backend/pkg/errors"
	"github.com/agroflow/agroflow-backend/pkg/logger"
	"github.com/agroflow/agroflow-backend/pkg/testutil"
)

const (
	leaveID    = "11111111-1111-1111-1111-111111111111"
	employeeID = "22222222-2222-2222-2222-222222222222"
	approverID = "33333333-3333-3333-3333-333333333333"
)

func newHRService(mockDB *testutil.MockDB) *service.HRService {
	log := logger.New("test", "test")
	db := database.NewFromSqlx(mockDB.DB, log)

	return service.NewHRService(
		repository.NewEmployeeRepository(db),
		repository.NewLeaveRepository(db),
		nil, // no event publisher needed here
		log,
	)
}

func leaveColumns() []string {
	return []string{
		"id", "employee_id", "leave_type", "start_date", "end_date", "status",
		"reason", "decided_by", "decided_at", "decision_note", "created_at", "updated_at",
	}
}

func leaveRow(status string) []driver.Value {
	now := time.Now()
	return []driver.Value{
		leaveID, employeeID, "conge_paye", now, now.Add(5 * 24 * time.Hour), status,
		nil, nil, nil, nil, now, now,
	}
}

func approver() service.Actor {
	return service.Actor{
		UserID:      approverID,
		Permissions: []string{service.PermLeaveApprove},
	}
}

func TestValidateEmployeeHireDateInFuture(t *testing.T) {
	employee := &repository.Employee{
		EmployeeNumber: "EMP-001",
		FirstName:      "Awa",
		LastName:       "Diallo",
		Position:       "Chef de culture",
		HireDate:       time.Now().Add(48 * time.Hour),
	}

	err := service.ValidateEmployee(employee)
	var appErr *errors.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Contains(t, appErr.Details, "hire_date")
}

func TestCreateLeaveRequestEndBeforeStart(t *testing.T) {
	mockDB := testutil.NewMockDB(t)
	defer mockDB.Close()
	svc := newHRService(mockDB)

	start := time.Date(2026, 7, 10, 0, 0, 0, 0, time.UTC)
	err := svc.CreateLeaveRequest(context.Background(), &repository.LeaveRequest{
		EmployeeID: employeeID,
		StartDate:  start,
		EndDate:    start.Add(-24 * time.Hour),
	})

	var appErr *errors.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, "VALIDATION_ERROR", appErr.Code)
	assert.Contains(t, appErr.Details, "end_date")
	mockDB.ExpectationsWereMet(t)
}

func TestDecideLeaveRequestRequiresPermission(t *testing.T) {
	mockDB := testutil.NewMockDB(t)
	defer mockDB.Close()
	svc := newHRService(mockDB)

	actor := service.Actor{UserID: approverID, Permissions: []string{"rh.employes.read"}}
	_, err := svc.DecideLeaveRequest(context.Background(), actor, leaveID, repository.LeaveApproved, nil)

	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrForbidden))
	mockDB.ExpectationsWereMet(t)
}

func TestDecideLeaveRequestSuperuserBypassesPermission(t *testing.T) {
	mockDB := testutil.NewMockDB(t)
	defer mockDB.Close()
	svc := newHRService(mockDB)

	mockDB.ExpectQuery("FROM leave_requests WHERE id = $1").
		WithArgs(leaveID).
		WillReturnRows(testutil.MockRows(leaveColumns()...).AddRow(leaveRow(repository.LeavePending)...))
	mockDB.ExpectExec("UPDATE leave_requests").
		WillReturnResult(testutil.MockResult(1))
	mockDB.ExpectQuery("FROM leave_requests WHERE id = $1").
		WithArgs(leaveID).
		WillReturnRows(testutil.MockRows(leaveColumns()...).AddRow(leaveRow(repository.LeaveApproved)...))

	actor := service.Actor{UserID: approverID, IsSuperuser: true}
	leave, err := svc.DecideLeaveRequest(context.Background(), actor, leaveID, repository.LeaveApproved, nil)

	require.NoError(t, err)
	assert.Equal(t, repository.LeaveApproved, leave.Status)
	mockDB.ExpectationsWereMet(t)
}

func TestDecideLeaveRequestOnlyFromPending(t *testing.T) {
	mockDB := testutil.NewMockDB(t)
	defer mockDB.Close()
	svc := newHRService(mockDB)

	mockDB.ExpectQuery("FROM leave_requests WHERE id = $1").
		WithArgs(leaveID).
		WillReturnRows(testutil.MockRows(leaveColumns()...).AddRow(leaveRow(repository.LeaveApproved)...))

	_, err := svc.DecideLeaveRequest(context.Background(), approver(), leaveID, repository.LeaveRejected, nil)

	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrStateInconsistency))
	mockDB.ExpectationsWereMet(t)
}

func TestDecideLeaveRequestRejectsUnknownDecision(t *testing.T) {
	mockDB := testutil.NewMockDB(t)
	defer mockDB.Close()
	svc := newHRService(mockDB)

	_, err := svc.DecideLeaveRequest(context.Background(), approver(), leaveID, "annule", nil)

	var appErr *errors.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, "VALIDATION_ERROR", appErr.Code)
	mockDB.ExpectationsWereMet(t)
}
