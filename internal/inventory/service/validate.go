package service

import (
	"github.com/shopspring/decimal"

	"github.com/agroflow/agroflow-backend/internal/inventory/repository"
	"github.com/agroflow/agroflow-backend/pkg/errors"
)

var validCategories = map[string]bool{
	repository.CategoryIntrant:       true,
	repository.CategoryEquipement:    true,
	repository.CategoryRecolte:       true,
	repository.CategoryEmballage:     true,
	repository.CategoryPieceRechange: true,
}

var validUnits = map[string]bool{
	repository.UnitKilogram: true,
	repository.UnitLitre:    true,
	repository.UnitPiece:    true,
	repository.UnitTonne:    true,
	repository.UnitMetre:    true,
}

// ValidateProduct checks the structural correctness of a product before persistence.
// Pure, never touches the database; referential checks belong to the service methods.
func ValidateProduct(product *repository.Product) error {
	details := make(map[string]string)

	if product.Code == "" {
		details["code"] = "this field is required"
	}
	if product.Name == "" {
		details["name"] = "this field is required"
	}
	if !validCategories[product.Category] {
		details["category"] = "must be one of: intrant, equipement, recolte, emballage, piece_rechange"
	}
	if !validUnits[product.Unit] {
		details["unit"] = "must be one of: kg, l, unite, t, m"
	}
	if !product.UnitPrice.IsPositive() {
		details["unit_price"] = "must be greater than 0"
	}
	if product.AlertThreshold.IsNegative() {
		details["alert_threshold"] = "must not be negative"
	}

	if len(details) > 0 {
		return errors.Validation(details)
	}
	return nil
}

// ValidateWarehouse checks the structural correctness of a warehouse.
func ValidateWarehouse(warehouse *repository.Warehouse) error {
	details := make(map[string]string)

	if warehouse.Name == "" {
		details["name"] = "this field is required"
	}
	if warehouse.Capacity.IsNegative() {
		details["capacity"] = "must not be negative"
	}
	if warehouse.ResponsibleID == "" {
		details["responsible_id"] = "this field is required"
	}

	if len(details) > 0 {
		return errors.Validation(details)
	}
	return nil
}

// MovementInput is the request to apply a stock movement
type MovementInput struct {
	MovementType  string
	ProductID     string
	SourceID      *string
	DestinationID *string
	Quantity      decimal.Decimal
	PerformedBy   *string
	Note          *string
}

// ValidateMovement checks entry/exit/transfer consistency of warehouse presence.
// Entries require a destination only, exits a source only, transfers both.
func ValidateMovement(input *MovementInput) error {
	details := make(map[string]string)

	if input.ProductID == "" {
		details["product_id"] = "this field is required"
	}
	if !input.Quantity.IsPositive() {
		details["quantity"] = "must be greater than 0"
	}

	switch input.MovementType {
	case repository.MovementEntry:
		if input.DestinationID == nil || *input.DestinationID == "" {
			details["destination_warehouse_id"] = "required for an entry movement"
		}
		if input.SourceID != nil && *input.SourceID != "" {
			details["source_warehouse_id"] = "must be empty for an entry movement"
		}
	case repository.MovementExit:
		if input.SourceID == nil || *input.SourceID == "" {
			details["source_warehouse_id"] = "required for an exit movement"
		}
		if input.DestinationID != nil && *input.DestinationID != "" {
			details["destination_warehouse_id"] = "must be empty for an exit movement"
		}
	case repository.MovementTransfer:
		if input.SourceID == nil || *input.SourceID == "" {
			details["source_warehouse_id"] = "required for a transfer movement"
		}
		if input.DestinationID == nil || *input.DestinationID == "" {
			details["destination_warehouse_id"] = "required for a transfer movement"
		}
		if input.SourceID != nil && input.DestinationID != nil && *input.SourceID == *input.DestinationID && *input.SourceID != "" {
			details["destination_warehouse_id"] = "must differ from source warehouse"
		}
	default:
		details["movement_type"] = "must be one of: entree, sortie, transfert"
	}

	if len(details) > 0 {
		return errors.Validation(details)
	}
	return nil
}
