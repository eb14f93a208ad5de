package handler

import (
	"net/http"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/agroflow/agroflow-backend/internal/inventory/service"
	"github.com/agroflow/agroflow-backend/pkg/httputil"
	"github.com/agroflow/agroflow-backend/pkg/logger"
)

// MovementHandler handles stock movement endpoints
type MovementHandler struct {
	service *service.InventoryService
	logger  *logger.Logger
}

// NewMovementHandler creates a new movement handler
func NewMovementHandler(svc *service.InventoryService, log *logger.Logger) *MovementHandler {
	return &MovementHandler{
		service: svc,
		logger:  log,
	}
}

type movementRequest struct {
	MovementType  string          `json:"movement_type" validate:"required,oneof=entree sortie transfert"`
	ProductID     string          `json:"product_id" validate:"required,uuid"`
	SourceID      *string         `json:"source_warehouse_id" validate:"omitempty,uuid"`
	DestinationID *string         `json:"destination_warehouse_id" validate:"omitempty,uuid"`
	Quantity      decimal.Decimal `json:"quantity"`
	Note          *string         `json:"note"`
}

// Create applies a stock movement
func (h *MovementHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req movementRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.Error(w, err)
		return
	}
	if err := httputil.Validate(&req); err != nil {
		httputil.Error(w, err)
		return
	}

	input := &service.MovementInput{
		MovementType:  req.MovementType,
		ProductID:     req.ProductID,
		SourceID:      req.SourceID,
		DestinationID: req.DestinationID,
		Quantity:      req.Quantity,
		Note:          req.Note,
	}
	if userID := httputil.GetUserID(r.Context()); userID != "" {
		input.PerformedBy = &userID
	}

	movement, err := h.service.ApplyMovement(r.Context(), input)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.Created(w, movement)
}

// List lists stock movements
func (h *MovementHandler) List(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	if page < 1 {
		page = 1
	}

	perPage, _ := strconv.Atoi(r.URL.Query().Get("per_page"))
	if perPage < 1 || perPage > 100 {
		perPage = 20
	}

	movements, total, err := h.service.ListMovements(r.Context(), page, perPage)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	totalPages := int(total) / perPage
	if int(total)%perPage > 0 {
		totalPages++
	}

	httputil.JSONWithMeta(w, http.StatusOK, movements, &httputil.Meta{
		Page:       page,
		PerPage:    perPage,
		Total:      total,
		TotalPages: totalPages,
	})
}
