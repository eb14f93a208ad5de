package consumers

import (
	"context"
	"fmt"

	"github.com/agroflow/agroflow-backend/internal/notification/repository"
	"github.com/agroflow/agroflow-backend/pkg/logger"
	"github.com/agroflow/agroflow-backend/pkg/messaging"
)

// RecipientResolver lists the users who should receive alerts for a module
type RecipientResolver interface {
	ListAlertRecipientIDs(ctx context.Context, module string) ([]string, error)
}

// LowStockConsumer turns low stock alert events into notifications
type LowStockConsumer struct {
	consumer   *messaging.Consumer
	repo       *repository.NotificationRepository
	recipients RecipientResolver
	logger     *logger.Logger
}

// NewLowStockConsumer creates a new low stock consumer
func NewLowStockConsumer(
	rmq *messaging.RabbitMQ,
	repo *repository.NotificationRepository,
	recipients RecipientResolver,
	log *logger.Logger,
) (*LowStockConsumer, error) {
	consumer, err := messaging.NewConsumer(rmq, "erp-server.low-stock-alerts", log)
	if err != nil {
		return nil, err
	}

	if err := consumer.Subscribe(messaging.ExchangeInventoryEvents, "inventaire.stock.#"); err != nil {
		return nil, err
	}

	c := &LowStockConsumer{
		consumer:   consumer,
		repo:       repo,
		recipients: recipients,
		logger:     log,
	}

	consumer.RegisterHandler(messaging.EventLowStockAlert, c.handleLowStock)

	return c, nil
}

// Start starts consuming messages
func (c *LowStockConsumer) Start(ctx context.Context) error {
	return c.consumer.Start(ctx)
}

func (c *LowStockConsumer) handleLowStock(ctx context.Context, event *messaging.Event) error {
	var data messaging.LowStockAlertEvent
	if err := event.UnmarshalData(&data); err != nil {
		return err
	}

	recipientIDs, err := c.recipients.ListAlertRecipientIDs(ctx, "inventaire")
	if err != nil {
		return err
	}

	for _, recipientID := range recipientIDs {
		notification := &repository.Notification{
			RecipientID:      recipientID,
			NotificationType: repository.TypeWarning,
			Module:           "inventaire",
			Title:            "Stock bas: " + data.ProductCode,
			Message: fmt.Sprintf("Le stock du produit %s est de %s, sous le seuil d'alerte de %s.",
				data.ProductCode, data.Balance, data.Threshold),
		}
		if err := c.repo.Create(ctx, notification); err != nil {
			return err
		}
	}

	c.logger.Info().
		Str("product_id", data.ProductID).
		Int("recipients", len(recipientIDs)).
		Msg("low stock notifications created")

	return nil
}
