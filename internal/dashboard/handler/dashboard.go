package handler

import (
	"net/http"

	"github.com/agroflow/agroflow-backend/internal/dashboard/service"
	"github.com/agroflow/agroflow-backend/pkg/httputil"
	"github.com/agroflow/agroflow-backend/pkg/logger"
)

// DashboardHandler handles the dashboard snapshot endpoint
type DashboardHandler struct {
	service *service.DashboardService
	logger  *logger.Logger
}

// NewDashboardHandler creates a new dashboard handler
func NewDashboardHandler(svc *service.DashboardService, log *logger.Logger) *DashboardHandler {
	return &DashboardHandler{
		service: svc,
		logger:  log,
	}
}

// Get returns the dashboard snapshot for the authenticated user
func (h *DashboardHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID := httputil.GetUserID(r.Context())

	snapshot, err := h.service.GetSnapshot(r.Context(), userID)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, snapshot)
}
