package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/agroflow/agroflow-backend/internal/production/repository"
	"github.com/agroflow/agroflow-backend/internal/production/service"
	"github.com/agroflow/agroflow-backend/pkg/httputil"
	"github.com/agroflow/agroflow-backend/pkg/logger"
)

// ProjectHandler handles project endpoints
type ProjectHandler struct {
	service *service.ProductionService
	logger  *logger.Logger
}

// NewProjectHandler creates a new project handler
func NewProjectHandler(svc *service.ProductionService, log *logger.Logger) *ProjectHandler {
	return &ProjectHandler{
		service: svc,
		logger:  log,
	}
}

// List lists projects
func (h *ProjectHandler) List(w http.ResponseWriter, r *http.Request) {
	projects, err := h.service.ListProjects(r.Context())
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, projects)
}

// Get gets a project by ID
func (h *ProjectHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	project, err := h.service.GetProject(r.Context(), id)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, project)
}

// Create creates a new project
func (h *ProjectHandler) Create(w http.ResponseWriter, r *http.Request) {
	var project repository.Project
	if err := httputil.DecodeJSON(r, &project); err != nil {
		httputil.Error(w, err)
		return
	}

	if err := h.service.CreateProject(r.Context(), &project); err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.Created(w, project)
}

// Update updates a project
func (h *ProjectHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var project repository.Project
	if err := httputil.DecodeJSON(r, &project); err != nil {
		httputil.Error(w, err)
		return
	}

	project.ID = id
	if err := h.service.UpdateProject(r.Context(), &project); err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, project)
}

// Delete deletes a project
func (h *ProjectHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.service.DeleteProject(r.Context(), id); err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.NoContent(w)
}

// Tasks lists the tasks of a project
func (h *ProjectHandler) Tasks(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	tasks, err := h.service.ListTasks(r.Context(), id)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, tasks)
}
