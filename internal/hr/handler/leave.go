package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/agroflow/agroflow-backend/internal/hr/repository"
	"github.com/agroflow/agroflow-backend/internal/hr/service"
	"github.com/agroflow/agroflow-backend/pkg/httputil"
	"github.com/agroflow/agroflow-backend/pkg/logger"
)

// LeaveHandler handles leave request endpoints
type LeaveHandler struct {
	service *service.HRService
	logger  *logger.Logger
}

// NewLeaveHandler creates a new leave handler
func NewLeaveHandler(svc *service.HRService, log *logger.Logger) *LeaveHandler {
	return &LeaveHandler{
		service: svc,
		logger:  log,
	}
}

// List lists leave requests filtered by employee or status
func (h *LeaveHandler) List(w http.ResponseWriter, r *http.Request) {
	employeeID := r.URL.Query().Get("employee_id")
	status := r.URL.Query().Get("status")

	leaves, err := h.service.ListLeaveRequests(r.Context(), employeeID, status)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, leaves)
}

// Get gets a leave request by ID
func (h *LeaveHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	leave, err := h.service.GetLeaveRequest(r.Context(), id)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, leave)
}

// Create creates a new leave request
func (h *LeaveHandler) Create(w http.ResponseWriter, r *http.Request) {
	var leave repository.LeaveRequest
	if err := httputil.DecodeJSON(r, &leave); err != nil {
		httputil.Error(w, err)
		return
	}

	if err := h.service.CreateLeaveRequest(r.Context(), &leave); err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.Created(w, leave)
}

type decisionRequest struct {
	Decision string  `json:"decision"`
	Note     *string `json:"note"`
}

// Decide approves or rejects a leave request
func (h *LeaveHandler) Decide(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req decisionRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.Error(w, err)
		return
	}

	actor := service.Actor{
		UserID:      httputil.GetUserID(r.Context()),
		Permissions: httputil.GetPermissions(r.Context()),
		IsSuperuser: httputil.IsSuperuser(r.Context()),
	}

	leave, err := h.service.DecideLeaveRequest(r.Context(), actor, id, req.Decision, req.Note)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, leave)
}
