package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/agroflow/agroflow-backend/internal/production/repository"
	"github.com/agroflow/agroflow-backend/internal/production/service"
	"github.com/agroflow/agroflow-backend/pkg/httputil"
	"github.com/agroflow/agroflow-backend/pkg/logger"
)

// TaskHandler handles task, dependency and resource endpoints
type TaskHandler struct {
	service *service.ProductionService
	logger  *logger.Logger
}

// NewTaskHandler creates a new task handler
func NewTaskHandler(svc *service.ProductionService, log *logger.Logger) *TaskHandler {
	return &TaskHandler{
		service: svc,
		logger:  log,
	}
}

// Get gets a task by ID
func (h *TaskHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	task, err := h.service.GetTask(r.Context(), id)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, task)
}

// Create creates a new task
func (h *TaskHandler) Create(w http.ResponseWriter, r *http.Request) {
	var task repository.Task
	if err := httputil.DecodeJSON(r, &task); err != nil {
		httputil.Error(w, err)
		return
	}

	if err := h.service.CreateTask(r.Context(), &task); err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.Created(w, task)
}

// Update updates a task
func (h *TaskHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var task repository.Task
	if err := httputil.DecodeJSON(r, &task); err != nil {
		httputil.Error(w, err)
		return
	}

	task.ID = id
	if err := h.service.UpdateTask(r.Context(), &task, httputil.GetUserID(r.Context())); err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, task)
}

// Delete deletes a task
func (h *TaskHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.service.DeleteTask(r.Context(), id); err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.NoContent(w)
}

// Suitability evaluates a task's weather gating against supplied conditions
func (h *TaskHandler) Suitability(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var conditions service.Conditions
	if err := httputil.DecodeJSON(r, &conditions); err != nil {
		httputil.Error(w, err)
		return
	}

	result, err := h.service.CheckSuitability(r.Context(), id, conditions)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, result)
}

// Dependencies lists the dependencies of a task
func (h *TaskHandler) Dependencies(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	deps, err := h.service.ListDependencies(r.Context(), id)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, deps)
}

type dependencyRequest struct {
	DependsOnID    string `json:"depends_on_id"`
	DependencyType string `json:"dependency_type"`
}

// AddDependency adds a dependency edge to a task
func (h *TaskHandler) AddDependency(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req dependencyRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.Error(w, err)
		return
	}

	dep := &repository.TaskDependency{
		TaskID:         id,
		DependsOnID:    req.DependsOnID,
		DependencyType: req.DependencyType,
	}
	if err := h.service.AddDependency(r.Context(), dep); err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.Created(w, dep)
}

// RemoveDependency removes a dependency edge
func (h *TaskHandler) RemoveDependency(w http.ResponseWriter, r *http.Request) {
	depID := chi.URLParam(r, "depID")

	if err := h.service.RemoveDependency(r.Context(), depID); err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.NoContent(w)
}

// Resources lists the resources of a task
func (h *TaskHandler) Resources(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	resources, err := h.service.ListResources(r.Context(), id)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, resources)
}

type resourceRequest struct {
	ProductID        string          `json:"product_id"`
	QuantityRequired decimal.Decimal `json:"quantity_required"`
	QuantityUsed     decimal.Decimal `json:"quantity_used"`
}

// AddResource links a product to a task
func (h *TaskHandler) AddResource(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req resourceRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.Error(w, err)
		return
	}

	resource := &repository.TaskResource{
		TaskID:           id,
		ProductID:        req.ProductID,
		QuantityRequired: req.QuantityRequired,
		QuantityUsed:     req.QuantityUsed,
	}
	if err := h.service.AddResource(r.Context(), resource); err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.Created(w, resource)
}

type resourceUsageRequest struct {
	QuantityUsed decimal.Decimal `json:"quantity_used"`
}

// UpdateResourceUsage records consumed quantity on a resource
func (h *TaskHandler) UpdateResourceUsage(w http.ResponseWriter, r *http.Request) {
	resourceID := chi.URLParam(r, "resourceID")

	var req resourceUsageRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.Error(w, err)
		return
	}

	if err := h.service.UpdateResourceUsage(r.Context(), resourceID, req.QuantityUsed); err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.NoContent(w)
}

// RemoveResource removes a task resource
func (h *TaskHandler) RemoveResource(w http.ResponseWriter, r *http.Request) {
	resourceID := chi.URLParam(r, "resourceID")

	if err := h.service.RemoveResource(r.Context(), resourceID); err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.NoContent(w)
}
