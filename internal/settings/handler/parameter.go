package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/agroflow/agroflow-backend/internal/settings/repository"
	"github.com/agroflow/agroflow-backend/pkg/errors"
	"github.com/agroflow/agroflow-backend/pkg/httputil"
	"github.com/agroflow/agroflow-backend/pkg/logger"
	"github.com/agroflow/agroflow-backend/pkg/permissions"
)

// ParameterHandler handles module parameter endpoints
type ParameterHandler struct {
	repo   *repository.ParameterRepository
	logger *logger.Logger
}

// NewParameterHandler creates a new parameter handler
func NewParameterHandler(repo *repository.ParameterRepository, log *logger.Logger) *ParameterHandler {
	return &ParameterHandler{
		repo:   repo,
		logger: log,
	}
}

// List lists the parameters of a module. Hidden parameters are included
// only for callers with settings administration rights.
func (h *ParameterHandler) List(w http.ResponseWriter, r *http.Request) {
	module := chi.URLParam(r, "module")

	includeHidden := httputil.IsSuperuser(r.Context()) ||
		permissions.HasPermission(httputil.GetPermissions(r.Context()), "parametres.admin")

	params, err := h.repo.ListByModule(r.Context(), module, includeHidden)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, params)
}

type parameterRequest struct {
	Value        string `json:"value"`
	IsVisible    *bool  `json:"is_visible"`
	IsEditable   *bool  `json:"is_editable"`
	DisplayOrder *int   `json:"display_order"`
}

// Upsert creates or updates a parameter
func (h *ParameterHandler) Upsert(w http.ResponseWriter, r *http.Request) {
	module := chi.URLParam(r, "module")
	key := chi.URLParam(r, "key")

	var req parameterRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.Error(w, err)
		return
	}

	param := &repository.ModuleParameter{
		Module:     module,
		Key:        key,
		Value:      req.Value,
		IsVisible:  true,
		IsEditable: true,
	}

	if existing, err := h.repo.Get(r.Context(), module, key); err == nil {
		if !existing.IsEditable {
			httputil.Error(w, errors.Conflict("parameter is not editable"))
			return
		}
		param.IsVisible = existing.IsVisible
		param.IsEditable = existing.IsEditable
		param.DisplayOrder = existing.DisplayOrder
	}

	if req.IsVisible != nil {
		param.IsVisible = *req.IsVisible
	}
	if req.IsEditable != nil {
		param.IsEditable = *req.IsEditable
	}
	if req.DisplayOrder != nil {
		param.DisplayOrder = *req.DisplayOrder
	}

	if err := h.repo.Upsert(r.Context(), param); err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, param)
}
