package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"yurt/internal/model"
)

var ErrForbidden = errors.New("not allowed to access this order")

// ClosedLocationError rejects creation against a location that is not
// currently accepting orders; Reason comes straight from the
// availability resolver so the caller can show it.
type ClosedLocationError struct {
	Reason string
}

func (e *ClosedLocationError) Error() string { return e.Reason }

type OrderStore interface {
	CreateOrder(ctx context.Context, order *model.Order, events []model.OutboxEvent) error
	GetOrder(ctx context.Context, id string) (*model.Order, error)
	UpdateOrder(ctx context.Context, order *model.Order, events []model.OutboxEvent) error
	ListOrdersByCustomer(ctx context.Context, customerID string, limit int) ([]model.Order, error)
	ListOrders(ctx context.Context, status string, limit int) ([]model.Order, error)
}

type LocationStore interface {
	GetLocation(ctx context.Context, id string) (*model.Location, error)
}

type StaffDirectory interface {
	ListAdminIDs(ctx context.Context) ([]string, error)
}

type Notifier interface {
	Notify(ctx context.Context, orderID, recipientID string, typ model.NotificationType, message string) error
}

type PointsAwarder interface {
	AwardForOrder(ctx context.Context, userID, orderID string, amount float64) (int, *model.LoyaltyAccount, error)
}

// OrderService is the orchestrator: it gates creation on availability,
// persists the aggregate together with its broadcast intents, and then
// runs the notification and loyalty side effects best-effort.
type OrderService struct {
	orders    OrderStore
	locations LocationStore
	staff     StaffDirectory
	notifier  Notifier
	loyalty   PointsAwarder
}

func NewOrderService(orders OrderStore, locations LocationStore, staff StaffDirectory, notifier Notifier, loyalty PointsAwarder) *OrderService {
	return &OrderService{orders: orders, locations: locations, staff: staff, notifier: notifier, loyalty: loyalty}
}

type CreateOrderLine struct {
	MenuItemID          string
	Quantity            int
	Size                string
	ToppingIDs          []string
	SpecialInstructions string
}

type CreateOrderInput struct {
	LocationID    string
	Items         []CreateOrderLine
	TotalPrice    float64
	PaymentMethod string
	Notes         string
}

// Create places a new pending order for the customer. The order row and
// its order-created event commit in one transaction; admin notifications
// and the loyalty award run after it and their failures are logged and
// swallowed, never rolled back into the creation.
func (s *OrderService) Create(ctx context.Context, customerID string, in CreateOrderInput) (*model.Order, error) {
	location, err := s.locations.GetLocation(ctx, in.LocationID)
	if err != nil {
		return nil, fmt.Errorf("load location: %w", err)
	}

	now := time.Now()
	availability := location.AvailabilityAt(now)
	if !availability.Open {
		reason := availability.Reason
		if reason == "" {
			reason = "Location is currently closed"
		}
		return nil, &ClosedLocationError{Reason: reason}
	}

	// The total is split evenly across lines regardless of each line's
	// actual size/topping cost; the per-line snapshot is this share.
	share := in.TotalPrice / float64(len(in.Items))
	items := make([]model.OrderLine, 0, len(in.Items))
	for _, line := range in.Items {
		toppings := line.ToppingIDs
		if toppings == nil {
			toppings = []string{}
		}
		items = append(items, model.OrderLine{
			MenuItemID:          line.MenuItemID,
			Quantity:            line.Quantity,
			Size:                line.Size,
			ToppingIDs:          toppings,
			SpecialInstructions: line.SpecialInstructions,
			PriceAtOrder:        share,
		})
	}

	order := &model.Order{
		ID:            uuid.NewString(),
		OrderNumber:   model.NewOrderNumber(now),
		CustomerID:    customerID,
		LocationID:    in.LocationID,
		Items:         items,
		Status:        model.StatusPending,
		TotalPrice:    in.TotalPrice,
		PaymentStatus: model.PaymentPending,
		PaymentMethod: in.PaymentMethod,
		Notes:         in.Notes,
	}

	created, err := model.NewOutboxEvent(model.EventOrderCreated, order.ID, customerID, order)
	if err != nil {
		return nil, err
	}

	if err := s.orders.CreateOrder(ctx, order, []model.OutboxEvent{created}); err != nil {
		return nil, fmt.Errorf("persist order: %w", err)
	}

	s.notifyStaffCreated(ctx, order)
	s.awardPoints(ctx, order)

	return order, nil
}

// notifyStaffCreated writes one notification per admin account. The
// record type reuses order_accepted for the staff new-order record,
// matching the closed notification type set.
func (s *OrderService) notifyStaffCreated(ctx context.Context, order *model.Order) {
	admins, err := s.staff.ListAdminIDs(ctx)
	if err != nil {
		slog.Error("order persisted but staff lookup failed, notifications skipped",
			"order", order.OrderNumber, "error", err)
		return
	}
	for _, adminID := range admins {
		msg := fmt.Sprintf("New order %s received", order.OrderNumber)
		if err := s.notifier.Notify(ctx, order.ID, adminID, model.NotifyOrderAccepted, msg); err != nil {
			slog.Error("order persisted but staff notification failed",
				"order", order.OrderNumber, "recipient", adminID, "error", err)
		}
	}
}

func (s *OrderService) awardPoints(ctx context.Context, order *model.Order) {
	earned, _, err := s.loyalty.AwardForOrder(ctx, order.CustomerID, order.ID, order.TotalPrice)
	if err != nil {
		slog.Warn("order persisted without loyalty effects",
			"order", order.OrderNumber, "customer", order.CustomerID, "error", err)
		return
	}
	slog.Info("loyalty points awarded", "order", order.OrderNumber, "points", earned)
}

// UpdateStatus applies an operations-side update. The status change and
// its broadcast intents commit atomically; the customer notification is
// best-effort afterwards.
func (s *OrderService) UpdateStatus(ctx context.Context, orderID string, update model.StatusUpdate) (*model.Order, error) {
	order, err := s.orders.GetOrder(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("load order: %w", err)
	}

	if err := order.ApplyStatusUpdate(update, time.Now()); err != nil {
		return nil, err
	}

	events := make([]model.OutboxEvent, 0, 2)
	updated, err := model.NewOutboxEvent(model.EventOrderUpdated, order.ID, order.CustomerID, order)
	if err != nil {
		return nil, err
	}
	events = append(events, updated)
	if update.Status != nil {
		changed, err := model.NewOutboxEvent(model.EventOrderStatusChanged, order.ID, order.CustomerID,
			map[string]any{"orderId": order.ID, "status": *update.Status})
		if err != nil {
			return nil, err
		}
		events = append(events, changed)
	}

	if err := s.orders.UpdateOrder(ctx, order, events); err != nil {
		return nil, fmt.Errorf("persist order update: %w", err)
	}

	if update.Status != nil {
		s.notifyCustomer(ctx, order, update)
	}

	return order, nil
}

func (s *OrderService) notifyCustomer(ctx context.Context, order *model.Order, update model.StatusUpdate) {
	var (
		typ model.NotificationType
		msg string
	)
	switch *update.Status {
	case model.StatusAccepted:
		typ = model.NotifyOrderAccepted
		prep := 0
		if order.EstimatedPrepTime != nil {
			prep = *order.EstimatedPrepTime
		}
		msg = fmt.Sprintf("Your order %s has been accepted. Estimated time: %d minutes", order.OrderNumber, prep)
	case model.StatusRejected:
		typ = model.NotifyOrderRejected
		reason := model.RejectCustom
		if order.RejectionReason != nil {
			reason = *order.RejectionReason
		}
		msg = fmt.Sprintf("Your order %s has been rejected. Reason: %s", order.OrderNumber, reason)
	case model.StatusCompleted:
		typ = model.NotifyOrderCompleted
		msg = fmt.Sprintf("Your order %s is ready for pickup!", order.OrderNumber)
	default:
		return
	}

	if err := s.notifier.Notify(ctx, order.ID, order.CustomerID, typ, msg); err != nil {
		slog.Error("status persisted but customer notification failed",
			"order", order.OrderNumber, "status", order.Status, "error", err)
	}
}

// Get enforces ownership: customers read only their own orders, staff
// read any.
func (s *OrderService) Get(ctx context.Context, orderID, userID, role string) (*model.Order, error) {
	order, err := s.orders.GetOrder(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("load order: %w", err)
	}
	if order.CustomerID != userID && role != model.RoleAdmin {
		return nil, ErrForbidden
	}
	return order, nil
}

func (s *OrderService) ListByCustomer(ctx context.Context, customerID string) ([]model.Order, error) {
	return s.orders.ListOrdersByCustomer(ctx, customerID, 20)
}

func (s *OrderService) ListAll(ctx context.Context, status string) ([]model.Order, error) {
	return s.orders.ListOrders(ctx, status, 100)
}
