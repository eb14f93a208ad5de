package events

import (
	"context"

	"github.com/agroflow/agroflow-backend/internal/production/repository"
	"github.com/agroflow/agroflow-backend/pkg/logger"
	"github.com/agroflow/agroflow-backend/pkg/messaging"
)

// ProductionEventPublisher publishes production-related events
type ProductionEventPublisher struct {
	publisher *messaging.Publisher
	logger    *logger.Logger
}

// NewProductionEventPublisher creates a new production event publisher
func NewProductionEventPublisher(rmq *messaging.RabbitMQ, log *logger.Logger) (*ProductionEventPublisher, error) {
	publisher, err := messaging.NewPublisher(rmq, messaging.ExchangeProductionEvents, "erp-server", log)
	if err != nil {
		return nil, err
	}

	return &ProductionEventPublisher{
		publisher: publisher,
		logger:    log,
	}, nil
}

// PublishTaskCreated publishes a task created event
func (p *ProductionEventPublisher) PublishTaskCreated(ctx context.Context, task *repository.Task) {
	if p == nil {
		return
	}

	data := map[string]string{
		"task_id":    task.ID,
		"project_id": task.ProjectID,
		"title":      task.Title,
		"priority":   task.Priority,
	}

	if err := p.publisher.Publish(ctx, messaging.EventTaskCreated, data); err != nil {
		p.logger.Error().Err(err).Str("task_id", task.ID).Msg("failed to publish task created event")
	}
}

// PublishTaskCompleted publishes a task completed event
func (p *ProductionEventPublisher) PublishTaskCompleted(ctx context.Context, task *repository.Task, completedBy string) {
	if p == nil {
		return
	}

	data := messaging.TaskCompletedEvent{
		TaskID:      task.ID,
		ProjectID:   task.ProjectID,
		CompletedBy: completedBy,
	}

	if err := p.publisher.Publish(ctx, messaging.EventTaskCompleted, data); err != nil {
		p.logger.Error().Err(err).Str("task_id", task.ID).Msg("failed to publish task completed event")
	}
}
