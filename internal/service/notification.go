package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"yurt/internal/model"
)

type NotificationStore interface {
	CreateNotification(ctx context.Context, n *model.Notification) error
	ListNotifications(ctx context.Context, recipientID string, unreadOnly bool, limit int) ([]model.Notification, error)
	MarkNotificationRead(ctx context.Context, id, recipientID string) (*model.Notification, error)
}

type NotificationService struct {
	store NotificationStore
}

func NewNotificationService(store NotificationStore) *NotificationService {
	return &NotificationService{store: store}
}

func (s *NotificationService) Notify(ctx context.Context, orderID, recipientID string, typ model.NotificationType, message string) error {
	n := &model.Notification{
		ID:          uuid.NewString(),
		OrderID:     orderID,
		RecipientID: recipientID,
		Type:        typ,
		Message:     message,
	}
	if err := s.store.CreateNotification(ctx, n); err != nil {
		return fmt.Errorf("create notification: %w", err)
	}
	return nil
}

func (s *NotificationService) List(ctx context.Context, recipientID string, unreadOnly bool) ([]model.Notification, error) {
	return s.store.ListNotifications(ctx, recipientID, unreadOnly, 50)
}

func (s *NotificationService) MarkRead(ctx context.Context, id, recipientID string) (*model.Notification, error) {
	return s.store.MarkNotificationRead(ctx, id, recipientID)
}
