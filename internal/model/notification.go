package model

import "time"

type NotificationType string

const (
	NotifyOrderAccepted  NotificationType = "order_accepted"
	NotifyOrderRejected  NotificationType = "order_rejected"
	NotifyOrderCompleted NotificationType = "order_completed"
)

// Notification is a durable per-recipient record of a lifecycle event.
// No deduplication: dispatching the same event twice yields two rows.
type Notification struct {
	ID          string           `json:"id"`
	OrderID     string           `json:"order"`
	RecipientID string           `json:"recipient"`
	Type        NotificationType `json:"type"`
	Message     string           `json:"message"`
	Read        bool             `json:"read"`
	CreatedAt   time.Time        `json:"createdAt"`
}
