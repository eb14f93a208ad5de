package events

import (
	"context"

	"github.com/agroflow/agroflow-backend/internal/inventory/repository"
	"github.com/agroflow/agroflow-backend/pkg/logger"
	"github.com/agroflow/agroflow-backend/pkg/messaging"
)

// InventoryEventPublisher publishes inventory-related events
type InventoryEventPublisher struct {
	publisher *messaging.Publisher
	logger    *logger.Logger
}

// NewInventoryEventPublisher creates a new inventory event publisher
func NewInventoryEventPublisher(rmq *messaging.RabbitMQ, log *logger.Logger) (*InventoryEventPublisher, error) {
	publisher, err := messaging.NewPublisher(rmq, messaging.ExchangeInventoryEvents, "erp-server", log)
	if err != nil {
		return nil, err
	}

	return &InventoryEventPublisher{
		publisher: publisher,
		logger:    log,
	}, nil
}

// PublishProductCreated publishes a product created event
func (p *InventoryEventPublisher) PublishProductCreated(ctx context.Context, product *repository.Product) {
	if p == nil {
		return
	}

	data := map[string]string{
		"product_id": product.ID,
		"code":       product.Code,
		"category":   product.Category,
	}

	if err := p.publisher.Publish(ctx, messaging.EventProductCreated, data); err != nil {
		p.logger.Error().Err(err).Str("product_id", product.ID).Msg("failed to publish product created event")
	}
}

// PublishMovementApplied publishes a movement applied event
func (p *InventoryEventPublisher) PublishMovementApplied(ctx context.Context, movement *repository.StockMovement) {
	if p == nil {
		return
	}

	data := messaging.MovementAppliedEvent{
		MovementID:   movement.ID,
		MovementType: movement.MovementType,
		ProductID:    movement.ProductID,
		Quantity:     movement.Quantity.String(),
	}
	if movement.SourceID != nil {
		data.SourceID = *movement.SourceID
	}
	if movement.DestinationID != nil {
		data.DestinationID = *movement.DestinationID
	}
	if movement.PerformedBy != nil {
		data.PerformedBy = *movement.PerformedBy
	}

	if err := p.publisher.Publish(ctx, messaging.EventMovementApplied, data); err != nil {
		p.logger.Error().Err(err).Str("movement_id", movement.ID).Msg("failed to publish movement applied event")
	}
}

// PublishLowStockAlert publishes a low stock alert event.
// Informational and non-blocking, delivery belongs to the notification sink.
func (p *InventoryEventPublisher) PublishLowStockAlert(ctx context.Context, product *repository.Product, warehouseID string, balance string) {
	if p == nil {
		return
	}

	data := messaging.LowStockAlertEvent{
		ProductID:   product.ID,
		ProductCode: product.Code,
		WarehouseID: warehouseID,
		Balance:     balance,
		Threshold:   product.AlertThreshold.String(),
	}

	if err := p.publisher.Publish(ctx, messaging.EventLowStockAlert, data); err != nil {
		p.logger.Error().Err(err).Str("product_id", product.ID).Msg("failed to publish low stock alert")
	}
}
