package events

import (
	"context"

	"github.com/agroflow/agroflow-backend/internal/identity/repository"
	"github.com/agroflow/agroflow-backend/pkg/logger"
	"github.com/agroflow/agroflow-backend/pkg/messaging"
)

// IdentityEventPublisher publishes account-related events
type IdentityEventPublisher struct {
	publisher *messaging.Publisher
	logger    *logger.Logger
}

// NewIdentityEventPublisher creates a new identity event publisher
func NewIdentityEventPublisher(rmq *messaging.RabbitMQ, log *logger.Logger) (*IdentityEventPublisher, error) {
	publisher, err := messaging.NewPublisher(rmq, messaging.ExchangeIdentityEvents, "erp-server", log)
	if err != nil {
		return nil, err
	}

	return &IdentityEventPublisher{
		publisher: publisher,
		logger:    log,
	}, nil
}

// PublishUserCreated publishes a user created event
func (p *IdentityEventPublisher) PublishUserCreated(ctx context.Context, user *repository.User) {
	if p == nil {
		return
	}

	data := messaging.UserCreatedEvent{
		UserID:      user.ID,
		Email:       user.Email,
		Role:        user.Role,
		IsSuperuser: user.IsSuperuser,
	}

	if err := p.publisher.Publish(ctx, messaging.EventUserCreated, data); err != nil {
		p.logger.Error().Err(err).Str("user_id", user.ID).Msg("failed to publish user created event")
	}
}
