package messaging

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Event types
const (
	// Inventory events
	EventMovementApplied = "inventaire.movement.applied"
	EventLowStockAlert   = "inventaire.stock.low"
	EventProductCreated  = "inventaire.product.created"

	// Production events
	EventTaskCreated   = "production.task.created"
	EventTaskCompleted = "production.task.completed"

	// HR events
	EventLeaveRequested = "rh.conge.requested"
	EventLeaveDecided   = "rh.conge.decided"

	// Identity events
	EventUserCreated = "identite.user.created"
)

// Exchange names
const (
	ExchangeInventoryEvents  = "inventaire.events"
	ExchangeProductionEvents = "production.events"
	ExchangeHREvents         = "rh.events"
	ExchangeIdentityEvents   = "identite.events"
)

// Event is the base event structure
type Event struct {
	ID            string          `json:"id"`
	Type          string          `json:"type"`
	Source        string          `json:"source"`
	Timestamp     time.Time       `json:"timestamp"`
	CorrelationID string          `json:"correlation_id"`
	Data          json.RawMessage `json:"data"`
}

// NewEvent creates a new event with the given type and data
func NewEvent(eventType, source, correlationID string, data interface{}) (*Event, error) {
	dataBytes, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}

	return &Event{
		ID:            uuid.New().String(),
		Type:          eventType,
		Source:        source,
		Timestamp:     time.Now().UTC(),
		CorrelationID: correlationID,
		Data:          dataBytes,
	}, nil
}

// UnmarshalData unmarshals the event data into the provided struct
func (e *Event) UnmarshalData(v interface{}) error {
	return json.Unmarshal(e.Data, v)
}

// MovementAppliedEvent is published after a stock movement commits.
type MovementAppliedEvent struct {
	MovementID    string `json:"movement_id"`
	MovementType  string `json:"movement_type"`
	ProductID     string `json:"product_id"`
	Quantity      string `json:"quantity"`
	SourceID      string `json:"source_warehouse_id,omitempty"`
	DestinationID string `json:"destination_warehouse_id,omitempty"`
	PerformedBy   string `json:"performed_by"`
}

// LowStockAlertEvent is published when a balance drops below the product's
// alert threshold. Informational, delivery is the notification sink's concern.
type LowStockAlertEvent struct {
	ProductID   string `json:"product_id"`
	ProductCode string `json:"product_code"`
	WarehouseID string `json:"warehouse_id"`
	Balance     string `json:"balance"`
	Threshold   string `json:"threshold"`
}

// TaskCompletedEvent is published when a task reaches 100 percent completion.
type TaskCompletedEvent struct {
	TaskID      string `json:"task_id"`
	ProjectID   string `json:"project_id"`
	CompletedBy string `json:"completed_by"`
}

// LeaveDecidedEvent is published when a leave request is approved or rejected.
type LeaveDecidedEvent struct {
	LeaveID    string `json:"leave_id"`
	EmployeeID string `json:"employee_id"`
	Decision   string `json:"decision"`
	DecidedBy  string `json:"decided_by"`
}

// UserCreatedEvent is published when a user account is created.
type UserCreatedEvent struct {
	UserID      string `json:"user_id"`
	Email       string `json:"email"`
	Role        string `json:"role"`
	IsSuperuser bool   `json:"is_superuser"`
}
