package service

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/agroflow/agroflow-backend/internal/production/events"
	"github.com/agroflow/agroflow-backend/internal/production/repository"
	"github.com/agroflow/agroflow-backend/pkg/errors"
	"github.com/agroflow/agroflow-backend/pkg/logger"
)

// EmployeeResolver resolves employee references at write time
type EmployeeResolver interface {
	Exists(ctx context.Context, id string) (bool, error)
}

// ProductResolver resolves product references at write time
type ProductResolver interface {
	Exists(ctx context.Context, id string) (bool, error)
}

// ProductionService handles production business logic
type ProductionService struct {
	projectRepo    *repository.ProjectRepository
	taskRepo       *repository.TaskRepository
	dependencyRepo *repository.DependencyRepository
	resourceRepo   *repository.ResourceRepository
	employees      EmployeeResolver
	products       ProductResolver
	publisher      *events.ProductionEventPublisher
	logger         *logger.Logger
}

// NewProductionService creates a new production service
func NewProductionService(
	projectRepo *repository.ProjectRepository,
	taskRepo *repository.TaskRepository,
	dependencyRepo *repository.DependencyRepository,
	resourceRepo *repository.ResourceRepository,
	employees EmployeeResolver,
	products ProductResolver,
	publisher *events.ProductionEventPublisher,
	log *logger.Logger,
) *ProductionService {
	return &ProductionService{
		projectRepo:    projectRepo,
		taskRepo:       taskRepo,
		dependencyRepo: dependencyRepo,
		resourceRepo:   resourceRepo,
		employees:      employees,
		products:       products,
		publisher:      publisher,
		logger:         log,
	}
}

var validStatuses = map[string]bool{
	repository.StatusTodo:       true,
	repository.StatusInProgress: true,
	repository.StatusDone:       true,
	repository.StatusCancelled:  true,
}

var validPriorities = map[string]bool{
	repository.PriorityLow:      true,
	repository.PriorityNormal:   true,
	repository.PriorityHigh:     true,
	repository.PriorityCritical: true,
}

var validDependencyTypes = map[string]bool{
	repository.DependencyFinishToStart:  true,
	repository.DependencyStartToStart:   true,
	repository.DependencyFinishToFinish: true,
	repository.DependencyStartToFinish:  true,
}

// DeriveStatus maps a completion percentage to the status it implies
func DeriveStatus(completionPercent int) string {
	switch {
	case completionPercent == 0:
		return repository.StatusTodo
	case completionPercent == 100:
		return repository.StatusDone
	default:
		return repository.StatusInProgress
	}
}

// ValidateTask checks the structural correctness of a task
func ValidateTask(task *repository.Task) error {
	details := make(map[string]string)

	if task.ProjectID == "" {
		details["project_id"] = "this field is required"
	}
	if task.Title == "" {
		details["title"] = "this field is required"
	}
	if !validStatuses[task.Status] {
		details["status"] = "must be one of: a_faire, en_cours, terminee, annulee"
	}
	if !validPriorities[task.Priority] {
		details["priority"] = "must be one of: basse, normale, haute, critique"
	}
	if task.CompletionPercent < 0 || task.CompletionPercent > 100 {
		details["completion_percent"] = "must be between 0 and 100"
	}
	if task.DueDate.Before(task.StartDate) {
		details["due_date"] = "must not be before start date"
	}
	if task.WeatherDependent && !hasWeatherThreshold(task) {
		details["weather_dependent"] = "at least one weather threshold is required"
	}
	if task.MinTemperature != nil && task.MaxTemperature != nil &&
		task.MinTemperature.GreaterThan(*task.MaxTemperature) {
		details["min_temperature"] = "must not exceed max temperature"
	}

	if len(details) > 0 {
		return errors.Validation(details)
	}
	return nil
}

// Project operations

// CreateProject validates and creates a project
func (s *ProductionService) CreateProject(ctx context.Context, project *repository.Project) error {
	if project.Name == "" {
		return errors.Validation(map[string]string{"name": "this field is required"})
	}
	if project.StartDate != nil && project.EndDate != nil && project.EndDate.Before(*project.StartDate) {
		return errors.Validation(map[string]string{"end_date": "must not be before start date"})
	}
	return s.projectRepo.Create(ctx, project)
}

// GetProject gets a project by ID
func (s *ProductionService) GetProject(ctx context.Context, id string) (*repository.Project, error) {
	return s.projectRepo.GetByID(ctx, id)
}

// ListProjects lists all projects
func (s *ProductionService) ListProjects(ctx context.Context) ([]*repository.Project, error) {
	return s.projectRepo.List(ctx)
}

// UpdateProject validates and updates a project
func (s *ProductionService) UpdateProject(ctx context.Context, project *repository.Project) error {
	if project.Name == "" {
		return errors.Validation(map[string]string{"name": "this field is required"})
	}
	if project.StartDate != nil && project.EndDate != nil && project.EndDate.Before(*project.StartDate) {
		return errors.Validation(map[string]string{"end_date": "must not be before start date"})
	}
	return s.projectRepo.Update(ctx, project)
}

// DeleteProject deletes a project
func (s *ProductionService) DeleteProject(ctx context.Context, id string) error {
	return s.projectRepo.Delete(ctx, id)
}

// Task operations

// CreateTask validates and creates a task. The initial status is derived
// from the completion percentage, never taken from the caller.
func (s *ProductionService) CreateTask(ctx context.Context, task *repository.Task) error {
	task.Status = DeriveStatus(task.CompletionPercent)
	if task.Priority == "" {
		task.Priority = repository.PriorityNormal
	}

	if err := ValidateTask(task); err != nil {
		return err
	}

	if _, err := s.projectRepo.GetByID(ctx, task.ProjectID); err != nil {
		return err
	}
	if task.ResponsibleID != nil {
		exists, err := s.employees.Exists(ctx, *task.ResponsibleID)
		if err != nil {
			return err
		}
		if !exists {
			return errors.NotFound("employee")
		}
	}

	if err := s.taskRepo.Create(ctx, task); err != nil {
		return err
	}

	s.publisher.PublishTaskCreated(ctx, task)
	return nil
}

// GetTask gets a task by ID
func (s *ProductionService) GetTask(ctx context.Context, id string) (*repository.Task, error) {
	return s.taskRepo.GetByID(ctx, id)
}

// ListTasks lists the tasks of a project
func (s *ProductionService) ListTasks(ctx context.Context, projectID string) ([]*repository.Task, error) {
	return s.taskRepo.ListByProject(ctx, projectID)
}

// UpdateTask applies a full task update. Status and completion must agree:
// when the completion percentage changes, the status is re-derived from it;
// a status change that contradicts the completion percentage is rejected.
// Cancelling is always allowed regardless of completion.
func (s *ProductionService) UpdateTask(ctx context.Context, task *repository.Task, completedBy string) error {
	current, err := s.taskRepo.GetByID(ctx, task.ID)
	if err != nil {
		return err
	}

	// Tasks never move between projects.
	task.ProjectID = current.ProjectID

	if task.Status != repository.StatusCancelled {
		derived := DeriveStatus(task.CompletionPercent)
		if task.CompletionPercent != current.CompletionPercent {
			task.Status = derived
		} else if task.Status != derived {
			return errors.StateInconsistency(
				"status does not match completion percentage",
				map[string]string{
					"status":          task.Status,
					"expected_status": derived,
				})
		}
	}

	if err := ValidateTask(task); err != nil {
		return err
	}

	if task.ResponsibleID != nil {
		exists, err := s.employees.Exists(ctx, *task.ResponsibleID)
		if err != nil {
			return err
		}
		if !exists {
			return errors.NotFound("employee")
		}
	}

	if err := s.taskRepo.Update(ctx, task); err != nil {
		return err
	}

	if task.Status == repository.StatusDone && current.Status != repository.StatusDone {
		s.publisher.PublishTaskCompleted(ctx, task, completedBy)
	}

	return nil
}

// DeleteTask deletes a task
func (s *ProductionService) DeleteTask(ctx context.Context, id string) error {
	return s.taskRepo.Delete(ctx, id)
}

// CheckSuitability evaluates a task's weather gating against observed conditions
func (s *ProductionService) CheckSuitability(ctx context.Context, taskID string, conditions Conditions) (*SuitabilityResult, error) {
	task, err := s.taskRepo.GetByID(ctx, taskID)
	if err != nil {
		return nil, err
	}

	result := EvaluateSuitability(task, conditions)
	return &result, nil
}

// Dependency operations

// AddDependency inserts a precedence edge after checking it closes no cycle.
// The edge task -> depends_on is cyclic exactly when the task is already
// reachable from the dependency target.
func (s *ProductionService) AddDependency(ctx context.Context, dep *repository.TaskDependency) error {
	details := make(map[string]string)
	if dep.TaskID == "" {
		details["task_id"] = "this field is required"
	}
	if dep.DependsOnID == "" {
		details["depends_on_id"] = "this field is required"
	}
	if dep.DependencyType == "" {
		dep.DependencyType = repository.DependencyFinishToStart
	}
	if !validDependencyTypes[dep.DependencyType] {
		details["dependency_type"] = "must be one of: fin_debut, debut_debut, fin_fin, debut_fin"
	}
	if dep.TaskID != "" && dep.TaskID == dep.DependsOnID {
		details["depends_on_id"] = "a task cannot depend on itself"
	}
	if len(details) > 0 {
		return errors.Validation(details)
	}

	if _, err := s.taskRepo.GetByID(ctx, dep.TaskID); err != nil {
		return err
	}
	if _, err := s.taskRepo.GetByID(ctx, dep.DependsOnID); err != nil {
		return err
	}

	cyclic, err := s.dependencyRepo.Reachable(ctx, dep.DependsOnID, dep.TaskID)
	if err != nil {
		return err
	}
	if cyclic {
		return errors.CyclicDependency(dep.TaskID, dep.DependsOnID)
	}

	return s.dependencyRepo.Create(ctx, dep)
}

// ListDependencies lists the dependencies of a task
func (s *ProductionService) ListDependencies(ctx context.Context, taskID string) ([]*repository.TaskDependency, error) {
	return s.dependencyRepo.ListByTask(ctx, taskID)
}

// RemoveDependency removes a precedence edge
func (s *ProductionService) RemoveDependency(ctx context.Context, id string) error {
	return s.dependencyRepo.Delete(ctx, id)
}

// Resource operations

// AddResource links a product to a task
func (s *ProductionService) AddResource(ctx context.Context, resource *repository.TaskResource) error {
	details := make(map[string]string)
	if resource.TaskID == "" {
		details["task_id"] = "this field is required"
	}
	if resource.ProductID == "" {
		details["product_id"] = "this field is required"
	}
	if !resource.QuantityRequired.IsPositive() {
		details["quantity_required"] = "must be greater than 0"
	}
	if resource.QuantityUsed.IsNegative() {
		details["quantity_used"] = "must not be negative"
	}
	if resource.QuantityUsed.GreaterThan(resource.QuantityRequired) {
		details["quantity_used"] = "must not exceed quantity required"
	}
	if len(details) > 0 {
		return errors.Validation(details)
	}

	if _, err := s.taskRepo.GetByID(ctx, resource.TaskID); err != nil {
		return err
	}
	exists, err := s.products.Exists(ctx, resource.ProductID)
	if err != nil {
		return err
	}
	if !exists {
		return errors.NotFound("product")
	}

	return s.resourceRepo.Create(ctx, resource)
}

// ListResources lists the resources of a task
func (s *ProductionService) ListResources(ctx context.Context, taskID string) ([]*repository.TaskResource, error) {
	return s.resourceRepo.ListByTask(ctx, taskID)
}

// UpdateResourceUsage records consumed quantity on a resource
func (s *ProductionService) UpdateResourceUsage(ctx context.Context, id string, used decimal.Decimal) error {
	resource, err := s.resourceRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if used.IsNegative() {
		return errors.Validation(map[string]string{"quantity_used": "must not be negative"})
	}
	if used.GreaterThan(resource.QuantityRequired) {
		return errors.Validation(map[string]string{"quantity_used": "must not exceed quantity required"})
	}

	return s.resourceRepo.UpdateUsage(ctx, id, used)
}

// RemoveResource removes a task resource
func (s *ProductionService) RemoveResource(ctx context.Context, id string) error {
	return s.resourceRepo.Delete(ctx, id)
}
