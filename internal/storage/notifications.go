package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"yurt/internal/model"
)

func (s *Store) CreateNotification(ctx context.Context, n *model.Notification) error {
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO notifications (id, order_id, recipient_id, type, message)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at
	`, n.ID, n.OrderID, n.RecipientID, n.Type, n.Message).Scan(&n.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert notification: %w", err)
	}
	return nil
}

func (s *Store) ListNotifications(ctx context.Context, recipientID string, unreadOnly bool, limit int) ([]model.Notification, error) {
	query := `
		SELECT id, order_id, recipient_id, type, message, read, created_at
		FROM notifications WHERE recipient_id = $1`
	if unreadOnly {
		query += ` AND read = FALSE`
	}
	query += fmt.Sprintf(` ORDER BY created_at DESC LIMIT %d`, limit)

	rows, err := s.db.QueryContext(ctx, query, recipientID)
	if err != nil {
		return nil, fmt.Errorf("query notifications: %w", err)
	}
	defer rows.Close()

	var notifications []model.Notification
	for rows.Next() {
		var n model.Notification
		if err := rows.Scan(&n.ID, &n.OrderID, &n.RecipientID, &n.Type, &n.Message, &n.Read, &n.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan notification: %w", err)
		}
		notifications = append(notifications, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration failed: %w", err)
	}
	return notifications, nil
}

// MarkNotificationRead flips the read flag; the recipient check keeps
// one customer from touching another's records.
func (s *Store) MarkNotificationRead(ctx context.Context, id, recipientID string) (*model.Notification, error) {
	row := s.db.QueryRowContext(ctx, `
		UPDATE notifications SET read = TRUE
		WHERE id = $1 AND recipient_id = $2
		RETURNING id, order_id, recipient_id, type, message, read, created_at
	`, id, recipientID)

	var n model.Notification
	err := row.Scan(&n.ID, &n.OrderID, &n.RecipientID, &n.Type, &n.Message, &n.Read, &n.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("mark notification read: %w", err)
	}
	return &n, nil
}
