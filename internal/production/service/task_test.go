package service_test

import (
	"context"
	"database/sql/driver"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agroflow/agroflow-backend/internal/production/repository"
	"github.com/agroflow/agroflow-backend/internal/production/service"
	"github.com/agroflow/agroflow-backend/pkg/database"
	"github.com/agroflow/agroflow-backend/pkg/errors"
	"github.com/agroflow/agroflow-backend/pkg/logger"
	"github.com/agroflow/agroflow-backend/pkg/testutil"
)

const (
	taskID      = "11111111-1111-1111-1111-111111111111"
	otherTaskID = "22222222-2222-2222-2222-222222222222"
	projectID   = "33333333-3333-3333-3333-333333333333"
)

type staticResolver bool

func (r staticResolver) Exists(ctx context.Context, id string) (bool, error) {
	return bool(r), nil
}

func newProductionService(mockDB *testutil.MockDB) *service.ProductionService {
	log := logger.New("test", "test")
	db := database.NewFromSqlx(mockDB.DB, log)

	return service.NewProductionService(
		repository.NewProjectRepository(db),
		repository.NewTaskRepository(db),
		repository.NewDependencyRepository(db),
		repository.NewResourceRepository(db),
		staticResolver(true),
		staticResolver(true),
		nil, // no event publisher needed here
		log,
	)
}

func taskColumns() []string {
	return []string{
		"id", "project_id", "title", "description", "status", "priority",
		"responsible_id", "start_date", "due_date", "completion_percent",
		"weather_dependent", "min_temperature", "max_temperature",
		"max_wind_speed", "max_precipitation", "created_at", "updated_at",
	}
}

func taskRow(id string, status string, completion int) []driver.Value {
	now := time.Now()
	return []driver.Value{
		id, projectID, "Semis du champ nord", nil, status, "normale",
		nil, now, now.Add(48 * time.Hour), completion,
		false, nil, nil, nil, nil, now, now,
	}
}

func TestDeriveStatus(t *testing.T) {
	assert.Equal(t, repository.StatusTodo, service.DeriveStatus(0))
	assert.Equal(t, repository.StatusInProgress, service.DeriveStatus(1))
	assert.Equal(t, repository.StatusInProgress, service.DeriveStatus(50))
	assert.Equal(t, repository.StatusInProgress, service.DeriveStatus(99))
	assert.Equal(t, repository.StatusDone, service.DeriveStatus(100))
}

func TestValidateTaskDueBeforeStart(t *testing.T) {
	start := time.Date(2026, 4, 10, 0, 0, 0, 0, time.UTC)
	task := &repository.Task{
		ProjectID: projectID,
		Title:     "Recolte parcelle est",
		Status:    repository.StatusTodo,
		Priority:  repository.PriorityNormal,
		StartDate: start,
		DueDate:   start.Add(-24 * time.Hour),
	}

	err := service.ValidateTask(task)
	var appErr *errors.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, "VALIDATION_ERROR", appErr.Code)
	assert.Contains(t, appErr.Details, "due_date")
}

func TestValidateTaskWeatherDependentNeedsThreshold(t *testing.T) {
	start := time.Date(2026, 4, 10, 0, 0, 0, 0, time.UTC)
	task := &repository.Task{
		ProjectID:        projectID,
		Title:            "Traitement phytosanitaire",
		Status:           repository.StatusTodo,
		Priority:         repository.PriorityHigh,
		StartDate:        start,
		DueDate:          start.Add(24 * time.Hour),
		WeatherDependent: true,
	}

	err := service.ValidateTask(task)
	var appErr *errors.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Contains(t, appErr.Details, "weather_dependent")

	task.MaxWindSpeed = dec("30")
	assert.NoError(t, service.ValidateTask(task))
}

func TestUpdateTaskStatusContradictsCompletion(t *testing.T) {
	mockDB := testutil.NewMockDB(t)
	defer mockDB.Close()
	svc := newProductionService(mockDB)

	mockDB.ExpectQuery("FROM tasks WHERE id = $1").
		WithArgs(taskID).
		WillReturnRows(testutil.MockRows(taskColumns()...).
			AddRow(taskRow(taskID, repository.StatusInProgress, 50)...))

	now := time.Now()
	task := &repository.Task{
		ID:                taskID,
		Title:             "Semis du champ nord",
		Status:            repository.StatusDone,
		Priority:          repository.PriorityNormal,
		StartDate:         now,
		DueDate:           now.Add(48 * time.Hour),
		CompletionPercent: 50,
	}

	err := svc.UpdateTask(context.Background(), task, "")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrStateInconsistency))

	var appErr *errors.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, "STATE_INCONSISTENCY", appErr.Code)
	mockDB.ExpectationsWereMet(t)
}

func TestUpdateTaskCompletionDerivesStatus(t *testing.T) {
	mockDB := testutil.NewMockDB(t)
	defer mockDB.Close()
	svc := newProductionService(mockDB)

	mockDB.ExpectQuery("FROM tasks WHERE id = $1").
		WithArgs(taskID).
		WillReturnRows(testutil.MockRows(taskColumns()...).
			AddRow(taskRow(taskID, repository.StatusInProgress, 50)...))
	mockDB.ExpectQuery("UPDATE tasks").
		WillReturnRows(testutil.MockRows("updated_at").AddRow(time.Now()))

	now := time.Now()
	task := &repository.Task{
		ID:                taskID,
		Title:             "Semis du champ nord",
		Status:            repository.StatusInProgress,
		Priority:          repository.PriorityNormal,
		StartDate:         now,
		DueDate:           now.Add(48 * time.Hour),
		CompletionPercent: 100,
	}

	err := svc.UpdateTask(context.Background(), task, "user-1")
	require.NoError(t, err)
	assert.Equal(t, repository.StatusDone, task.Status)
	mockDB.ExpectationsWereMet(t)
}

func TestUpdateTaskIdempotentWhenNothingChanges(t *testing.T) {
	mockDB := testutil.NewMockDB(t)
	defer mockDB.Close()
	svc := newProductionService(mockDB)

	mockDB.ExpectQuery("FROM tasks WHERE id = $1").
		WithArgs(taskID).
		WillReturnRows(testutil.MockRows(taskColumns()...).
			AddRow(taskRow(taskID, repository.StatusInProgress, 50)...))
	mockDB.ExpectQuery("UPDATE tasks").
		WillReturnRows(testutil.MockRows("updated_at").AddRow(time.Now()))

	now := time.Now()
	task := &repository.Task{
		ID:                taskID,
		Title:             "Semis du champ nord",
		Status:            repository.StatusInProgress,
		Priority:          repository.PriorityNormal,
		StartDate:         now,
		DueDate:           now.Add(48 * time.Hour),
		CompletionPercent: 50,
	}

	err := svc.UpdateTask(context.Background(), task, "")
	require.NoError(t, err)
	assert.Equal(t, repository.StatusInProgress, task.Status)
	mockDB.ExpectationsWereMet(t)
}

func TestAddDependencyRejectsSelf(t *testing.T) {
	mockDB := testutil.NewMockDB(t)
	defer mockDB.Close()
	svc := newProductionService(mockDB)

	err := svc.AddDependency(context.Background(), &repository.TaskDependency{
		TaskID:      taskID,
		DependsOnID: taskID,
	})

	var appErr *errors.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, "VALIDATION_ERROR", appErr.Code)
	assert.Contains(t, appErr.Details, "depends_on_id")
	mockDB.ExpectationsWereMet(t)
}

func TestAddDependencyRejectsCycle(t *testing.T) {
	mockDB := testutil.NewMockDB(t)
	defer mockDB.Close()
	svc := newProductionService(mockDB)

	mockDB.ExpectQuery("FROM tasks WHERE id = $1").
		WithArgs(taskID).
		WillReturnRows(testutil.MockRows(taskColumns()...).
			AddRow(taskRow(taskID, repository.StatusTodo, 0)...))
	mockDB.ExpectQuery("FROM tasks WHERE id = $1").
		WithArgs(otherTaskID).
		WillReturnRows(testutil.MockRows(taskColumns()...).
			AddRow(taskRow(otherTaskID, repository.StatusTodo, 0)...))
	mockDB.ExpectQuery("WITH RECURSIVE reach").
		WithArgs(otherTaskID, taskID).
		WillReturnRows(testutil.MockRows("exists").AddRow(true))

	err := svc.AddDependency(context.Background(), &repository.TaskDependency{
		TaskID:      taskID,
		DependsOnID: otherTaskID,
	})

	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCyclicDependency))

	var appErr *errors.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, "CYCLIC_DEPENDENCY", appErr.Code)
}

func TestAddDependencyAcyclicInserts(t *testing.T) {
	mockDB := testutil.NewMockDB(t)
	defer mockDB.Close()
	svc := newProductionService(mockDB)

	mockDB.ExpectQuery("FROM tasks WHERE id = $1").
		WithArgs(taskID).
		WillReturnRows(testutil.MockRows(taskColumns()...).
			AddRow(taskRow(taskID, repository.StatusTodo, 0)...))
	mockDB.ExpectQuery("FROM tasks WHERE id = $1").
		WithArgs(otherTaskID).
		WillReturnRows(testutil.MockRows(taskColumns()...).
			AddRow(taskRow(otherTaskID, repository.StatusTodo, 0)...))
	mockDB.ExpectQuery("WITH RECURSIVE reach").
		WithArgs(otherTaskID, taskID).
		WillReturnRows(testutil.MockRows("exists").AddRow(false))
	mockDB.ExpectQuery("INSERT INTO task_dependencies").
		WillReturnRows(testutil.MockRows("created_at").AddRow(time.Now()))

	dep := &repository.TaskDependency{
		TaskID:      taskID,
		DependsOnID: otherTaskID,
	}
	err := svc.AddDependency(context.Background(), dep)

	require.NoError(t, err)
	assert.Equal(t, repository.DependencyFinishToStart, dep.DependencyType)
	mockDB.ExpectationsWereMet(t)
}
