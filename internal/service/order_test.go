package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"yurt/internal/model"
)

type stubOrderStore struct {
	createFn func(ctx context.Context, o *model.Order, events []model.OutboxEvent) error
	getFn    func(ctx context.Context, id string) (*model.Order, error)
	updateFn func(ctx context.Context, o *model.Order, events []model.OutboxEvent) error
}

func (s *stubOrderStore) CreateOrder(ctx context.Context, o *model.Order, events []model.OutboxEvent) error {
	return s.createFn(ctx, o, events)
}
func (s *stubOrderStore) GetOrder(ctx context.Context, id string) (*model.Order, error) {
	return s.getFn(ctx, id)
}
func (s *stubOrderStore) UpdateOrder(ctx context.Context, o *model.Order, events []model.OutboxEvent) error {
	return s.updateFn(ctx, o, events)
}
func (s *stubOrderStore) ListOrdersByCustomer(ctx context.Context, customerID string, limit int) ([]model.Order, error) {
	return nil, nil
}
func (s *stubOrderStore) ListOrders(ctx context.Context, status string, limit int) ([]model.Order, error) {
	return nil, nil
}

type stubLocationStore struct {
	location *model.Location
	err      error
}

func (s *stubLocationStore) GetLocation(ctx context.Context, id string) (*model.Location, error) {
	return s.location, s.err
}

type stubStaff struct {
	ids []string
	err error
}

func (s *stubStaff) ListAdminIDs(ctx context.Context) ([]string, error) { return s.ids, s.err }

type stubNotifier struct {
	sent []model.NotificationType
	err  error
}

func (s *stubNotifier) Notify(ctx context.Context, orderID, recipientID string, typ model.NotificationType, message string) error {
	if s.err != nil {
		return s.err
	}
	s.sent = append(s.sent, typ)
	return nil
}

type stubAwarder struct {
	called bool
	amount float64
	err    error
}

func (s *stubAwarder) AwardForOrder(ctx context.Context, userID, orderID string, amount float64) (int, *model.LoyaltyAccount, error) {
	s.called = true
	s.amount = amount
	return int(amount), nil, s.err
}

func openLocation() *model.Location {
	hours := model.DayHours{Open: "00:00", Close: "24:00"}
	return &model.Location{
		ID:       "loc-1",
		IsActive: true,
		WorkingHours: model.WeeklyHours{
			"monday": hours, "tuesday": hours, "wednesday": hours,
			"thursday": hours, "friday": hours, "saturday": hours, "sunday": hours,
		},
	}
}

func createInput() CreateOrderInput {
	return CreateOrderInput{
		LocationID:    "loc-1",
		TotalPrice:    12.0,
		PaymentMethod: "card",
		Items: []CreateOrderLine{
			{MenuItemID: "latte", Quantity: 1, Size: "medium"},
			{MenuItemID: "espresso", Quantity: 2, Size: "small"},
			{MenuItemID: "mocha", Quantity: 1, Size: "large"},
		},
	}
}

func TestCreateOrder(t *testing.T) {
	var persisted *model.Order
	var persistedEvents []model.OutboxEvent
	orders := &stubOrderStore{
		createFn: func(ctx context.Context, o *model.Order, events []model.OutboxEvent) error {
			persisted = o
			persistedEvents = events
			return nil
		},
	}
	notifier := &stubNotifier{}
	awarder := &stubAwarder{}
	svc := NewOrderService(orders, &stubLocationStore{location: openLocation()}, &stubStaff{ids: []string{"a1", "a2"}}, notifier, awarder)

	order, err := svc.Create(context.Background(), "cust-1", createInput())

	require.NoError(t, err)
	require.NotNil(t, persisted)
	assert.Equal(t, model.StatusPending, order.Status)
	assert.Equal(t, model.PaymentPending, order.PaymentStatus)
	assert.Equal(t, "cust-1", order.CustomerID)
	assert.NotEmpty(t, order.ID)
	assert.NotEmpty(t, order.OrderNumber)

	// Even split: 12.0 over 3 lines.
	for _, line := range order.Items {
		assert.Equal(t, 4.0, line.PriceAtOrder)
	}

	require.Len(t, persistedEvents, 1)
	assert.Equal(t, model.EventOrderCreated, persistedEvents[0].Type)
	assert.Equal(t, "cust-1", persistedEvents[0].CustomerID)

	// One notification per admin, loyalty awarded once.
	assert.Len(t, notifier.sent, 2)
	assert.True(t, awarder.called)
	assert.Equal(t, 12.0, awarder.amount)
}

func TestCreateOrderClosedLocation(t *testing.T) {
	location := openLocation()
	location.IsActive = false
	orders := &stubOrderStore{
		createFn: func(ctx context.Context, o *model.Order, events []model.OutboxEvent) error {
			t.Fatal("order must not be persisted for a closed location")
			return nil
		},
	}
	svc := NewOrderService(orders, &stubLocationStore{location: location}, &stubStaff{}, &stubNotifier{}, &stubAwarder{})

	_, err := svc.Create(context.Background(), "cust-1", createInput())

	var closed *ClosedLocationError
	require.ErrorAs(t, err, &closed)
	assert.Equal(t, "Location is currently inactive", closed.Reason)
}

func TestCreateOrderSideEffectFailuresAreSwallowed(t *testing.T) {
	orders := &stubOrderStore{
		createFn: func(ctx context.Context, o *model.Order, events []model.OutboxEvent) error { return nil },
	}
	notifier := &stubNotifier{err: errors.New("notifications down")}
	awarder := &stubAwarder{err: errors.New("loyalty down")}
	svc := NewOrderService(orders, &stubLocationStore{location: openLocation()}, &stubStaff{ids: []string{"a1"}}, notifier, awarder)

	order, err := svc.Create(context.Background(), "cust-1", createInput())

	require.NoError(t, err)
	assert.NotNil(t, order)
}

func TestUpdateStatusAccept(t *testing.T) {
	existing := &model.Order{ID: "o1", OrderNumber: "ORD-1-AAAAA", CustomerID: "cust-1", Status: model.StatusPending}
	var persistedEvents []model.OutboxEvent
	orders := &stubOrderStore{
		getFn: func(ctx context.Context, id string) (*model.Order, error) { return existing, nil },
		updateFn: func(ctx context.Context, o *model.Order, events []model.OutboxEvent) error {
			persistedEvents = events
			return nil
		},
	}
	notifier := &stubNotifier{}
	svc := NewOrderService(orders, &stubLocationStore{}, &stubStaff{}, notifier, &stubAwarder{})

	status := model.StatusAccepted
	prep := 15
	order, err := svc.UpdateStatus(context.Background(), "o1", model.StatusUpdate{Status: &status, EstimatedPrepTime: &prep})

	require.NoError(t, err)
	assert.Equal(t, model.StatusAccepted, order.Status)

	require.Len(t, persistedEvents, 2)
	assert.Equal(t, model.EventOrderUpdated, persistedEvents[0].Type)
	assert.Equal(t, model.EventOrderStatusChanged, persistedEvents[1].Type)

	require.Len(t, notifier.sent, 1)
	assert.Equal(t, model.NotifyOrderAccepted, notifier.sent[0])
}

func TestUpdateStatusInvalidTransitionNotPersisted(t *testing.T) {
	existing := &model.Order{ID: "o1", Status: model.StatusCompleted}
	orders := &stubOrderStore{
		getFn: func(ctx context.Context, id string) (*model.Order, error) { return existing, nil },
		updateFn: func(ctx context.Context, o *model.Order, events []model.OutboxEvent) error {
			t.Fatal("invalid transition must not be persisted")
			return nil
		},
	}
	svc := NewOrderService(orders, &stubLocationStore{}, &stubStaff{}, &stubNotifier{}, &stubAwarder{})

	status := model.StatusPending
	_, err := svc.UpdateStatus(context.Background(), "o1", model.StatusUpdate{Status: &status})

	assert.ErrorIs(t, err, model.ErrInvalidStatusTransition)
}

func TestGetEnforcesOwnership(t *testing.T) {
	existing := &model.Order{ID: "o1", CustomerID: "cust-1"}
	orders := &stubOrderStore{
		getFn: func(ctx context.Context, id string) (*model.Order, error) { return existing, nil },
	}
	svc := NewOrderService(orders, &stubLocationStore{}, &stubStaff{}, &stubNotifier{}, &stubAwarder{})

	_, err := svc.Get(context.Background(), "o1", "cust-2", model.RoleCustomer)
	assert.ErrorIs(t, err, ErrForbidden)

	order, err := svc.Get(context.Background(), "o1", "cust-1", model.RoleCustomer)
	assert.NoError(t, err)
	assert.Equal(t, existing, order)

	order, err = svc.Get(context.Background(), "o1", "staff-1", model.RoleAdmin)
	assert.NoError(t, err)
	assert.Equal(t, existing, order)
}
