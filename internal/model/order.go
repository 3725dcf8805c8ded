package model

import (
	"crypto/rand"
	"errors"
	"fmt"
	"time"
)

type OrderStatus string

const (
	StatusPending   OrderStatus = "pending"
	StatusAccepted  OrderStatus = "accepted"
	StatusRejected  OrderStatus = "rejected"
	StatusCompleted OrderStatus = "completed"
	StatusCancelled OrderStatus = "cancelled"
)

type RejectionReason string

const (
	RejectNoMilk          RejectionReason = "no_milk"
	RejectNoCoffeeBeans   RejectionReason = "no_coffee_beans"
	RejectSizeUnavailable RejectionReason = "size_unavailable"
	RejectEquipmentIssue  RejectionReason = "equipment_issue"
	RejectCustom          RejectionReason = "custom"
)

func (r RejectionReason) Valid() bool {
	switch r {
	case RejectNoMilk, RejectNoCoffeeBeans, RejectSizeUnavailable, RejectEquipmentIssue, RejectCustom:
		return true
	}
	return false
}

type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentCompleted PaymentStatus = "completed"
	PaymentFailed    PaymentStatus = "failed"
)

func ValidPaymentMethod(m string) bool {
	switch m {
	case "cash", "card", "stripe":
		return true
	}
	return false
}

func ValidSize(s string) bool {
	switch s {
	case "small", "medium", "large":
		return true
	}
	return false
}

var (
	ErrInvalidStatusTransition = errors.New("invalid status transition")
	ErrPrepTimeRequired        = errors.New("estimated prep time required to accept an order")
	ErrRejectionReasonRequired = errors.New("a valid rejection reason is required to reject an order")
)

// OrderLine is owned by its Order; it has no identity or lifecycle of
// its own. PriceAtOrder is a snapshot taken at creation, never
// re-derived from the catalog.
type OrderLine struct {
	MenuItemID          string   `json:"menuItem"`
	Quantity            int      `json:"quantity"`
	Size                string   `json:"size"`
	ToppingIDs          []string `json:"toppings"`
	SpecialInstructions string   `json:"specialInstructions,omitempty"`
	PriceAtOrder        float64  `json:"priceAtOrder"`
}

type Order struct {
	ID                string           `json:"id"`
	OrderNumber       string           `json:"orderNumber"`
	CustomerID        string           `json:"customer"`
	LocationID        string           `json:"location"`
	Items             []OrderLine      `json:"items"`
	Status            OrderStatus      `json:"status"`
	TotalPrice        float64          `json:"totalPrice"`
	EstimatedPrepTime *int             `json:"estimatedPrepTime,omitempty"`
	RejectionReason   *RejectionReason `json:"rejectionReason,omitempty"`
	RejectionComment  string           `json:"rejectionComment,omitempty"`
	PaymentStatus     PaymentStatus    `json:"paymentStatus"`
	PaymentMethod     string           `json:"paymentMethod"`
	Notes             string           `json:"notes,omitempty"`
	CreatedAt         time.Time        `json:"createdAt"`
	UpdatedAt         time.Time        `json:"updatedAt"`
}

// validTransitions is the lifecycle table: pending branches to accepted
// or rejected, only accepted reaches completed. cancelled is terminal
// and reachable through no exposed operation.
var validTransitions = map[OrderStatus][]OrderStatus{
	StatusPending:   {StatusAccepted, StatusRejected},
	StatusAccepted:  {StatusCompleted},
	StatusRejected:  {},
	StatusCompleted: {},
	StatusCancelled: {},
}

func (o *Order) CanTransitionTo(next OrderStatus) bool {
	for _, s := range validTransitions[o.Status] {
		if s == next {
			return true
		}
	}
	return false
}

// StatusUpdate carries an operations-side order update. Status is
// optional; a nil status only touches the auxiliary fields.
type StatusUpdate struct {
	Status            *OrderStatus     `json:"status,omitempty"`
	EstimatedPrepTime *int             `json:"estimatedPrepTime,omitempty"`
	RejectionReason   *RejectionReason `json:"rejectionReason,omitempty"`
	RejectionComment  *string          `json:"rejectionComment,omitempty"`
}

// ApplyStatusUpdate validates and applies an update in place. Accepting
// demands an estimated prep time (supplied now or earlier), rejecting
// demands a reason from the closed set.
func (o *Order) ApplyStatusUpdate(u StatusUpdate, now time.Time) error {
	if u.Status != nil {
		next := *u.Status
		if !o.CanTransitionTo(next) {
			return ErrInvalidStatusTransition
		}
		switch next {
		case StatusAccepted:
			if u.EstimatedPrepTime == nil && o.EstimatedPrepTime == nil {
				return ErrPrepTimeRequired
			}
		case StatusRejected:
			if u.RejectionReason == nil || !u.RejectionReason.Valid() {
				return ErrRejectionReasonRequired
			}
		}
		o.Status = next
	}

	if u.EstimatedPrepTime != nil {
		o.EstimatedPrepTime = u.EstimatedPrepTime
	}
	if u.RejectionReason != nil {
		o.RejectionReason = u.RejectionReason
	}
	if u.RejectionComment != nil {
		o.RejectionComment = *u.RejectionComment
	}
	o.UpdatedAt = now
	return nil
}

const orderNumberCharset = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"

// NewOrderNumber builds the human-readable order number. The format is
// an external contract: ORD-<unix millis>-<5 base36 chars>. Uniqueness
// is ultimately enforced by the database constraint.
func NewOrderNumber(now time.Time) string {
	b := make([]byte, 5)
	_, _ = rand.Read(b)
	for i := range b {
		b[i] = orderNumberCharset[int(b[i])%len(orderNumberCharset)]
	}
	return fmt.Sprintf("ORD-%d-%s", now.UnixMilli(), b)
}
