package model

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Broadcast event names, one per gateway operation. They double as the
// AMQP message type.
const (
	EventOrderCreated       = "order-created"
	EventOrderUpdated       = "order-updated"
	EventOrderStatusChanged = "order-status-changed"
	EventOrderDeleted       = "order-deleted"
)

type OutboxStatus string

const (
	OutboxPending   OutboxStatus = "pending"
	OutboxPublished OutboxStatus = "published"
	OutboxFailed    OutboxStatus = "failed"
)

// OutboxEvent is a broadcast intent recorded in the same transaction as
// the order change it describes. Its ID is the idempotency key carried
// on the wire as the AMQP MessageId.
type OutboxEvent struct {
	ID          string
	Type        string
	OrderID     string
	CustomerID  string
	Payload     json.RawMessage
	Status      OutboxStatus
	Attempts    int
	CreatedAt   time.Time
	PublishedAt *time.Time
}

// eventEnvelope is the wire shape consumers see; Data carries the
// operation-specific body.
type eventEnvelope struct {
	Event      string `json:"event"`
	OrderID    string `json:"orderId"`
	CustomerID string `json:"customerId,omitempty"`
	Data       any    `json:"data"`
}

func NewOutboxEvent(eventType, orderID, customerID string, payload any) (OutboxEvent, error) {
	body, err := json.Marshal(eventEnvelope{
		Event:      eventType,
		OrderID:    orderID,
		CustomerID: customerID,
		Data:       payload,
	})
	if err != nil {
		return OutboxEvent{}, fmt.Errorf("marshal %s payload: %w", eventType, err)
	}
	return OutboxEvent{
		ID:         uuid.NewString(),
		Type:       eventType,
		OrderID:    orderID,
		CustomerID: customerID,
		Payload:    body,
		Status:     OutboxPending,
	}, nil
}
