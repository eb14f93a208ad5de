package events

import (
	"context"

	"github.com/agroflow/agroflow-backend/internal/hr/repository"
	"github.com/agroflow/agroflow-backend/pkg/logger"
	"github.com/agroflow/agroflow-backend/pkg/messaging"
)

// HREventPublisher publishes HR-related events
type HREventPublisher struct {
	publisher *messaging.Publisher
	logger    *logger.Logger
}

// NewHREventPublisher creates a new HR event publisher
func NewHREventPublisher(rmq *messaging.RabbitMQ, log *logger.Logger) (*HREventPublisher, error) {
	publisher, err := messaging.NewPublisher(rmq, messaging.ExchangeHREvents, "erp-server", log)
	if err != nil {
		return nil, err
	}

	return &HREventPublisher{
		publisher: publisher,
		logger:    log,
	}, nil
}

// PublishLeaveRequested publishes a leave requested event
func (p *HREventPublisher) PublishLeaveRequested(ctx context.Context, leave *repository.LeaveRequest) {
	if p == nil {
		return
	}

	data := map[string]string{
		"leave_id":    leave.ID,
		"employee_id": leave.EmployeeID,
		"leave_type":  leave.LeaveType,
	}

	if err := p.publisher.Publish(ctx, messaging.EventLeaveRequested, data); err != nil {
		p.logger.Error().Err(err).Str("leave_id", leave.ID).Msg("failed to publish leave requested event")
	}
}

// PublishLeaveDecided publishes a leave decided event
func (p *HREventPublisher) PublishLeaveDecided(ctx context.Context, leave *repository.LeaveRequest, decision, decidedBy string) {
	if p == nil {
		return
	}

	data := messaging.LeaveDecidedEvent{
		LeaveID:    leave.ID,
		EmployeeID: leave.EmployeeID,
		Decision:   decision,
		DecidedBy:  decidedBy,
	}

	if err := p.publisher.Publish(ctx, messaging.EventLeaveDecided, data); err != nil {
		p.logger.Error().Err(err).Str("leave_id", leave.ID).Msg("failed to publish leave decided event")
	}
}
