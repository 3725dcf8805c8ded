package storage

import (
	"context"
	"database/sql"
	"fmt"

	"yurt/internal/model"
)

func insertEvents(ctx context.Context, tx *sql.Tx, events []model.OutboxEvent) error {
	for _, ev := range events {
		var customerID any
		if ev.CustomerID != "" {
			customerID = ev.CustomerID
		}
		_, err := tx.ExecContext(ctx, `
			INSERT INTO outbox_events (id, event_type, order_id, customer_id, payload, status)
			VALUES ($1, $2, $3, $4, $5, $6)
		`, ev.ID, ev.Type, ev.OrderID, customerID, []byte(ev.Payload), model.OutboxPending)
		if err != nil {
			return fmt.Errorf("insert outbox event %s: %w", ev.Type, err)
		}
	}
	return nil
}

// PendingEvents returns the oldest undelivered broadcast intents.
func (s *Store) PendingEvents(ctx context.Context, limit int) ([]model.OutboxEvent, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, event_type, order_id, COALESCE(customer_id::text, ''), payload, status, attempts, created_at
		FROM outbox_events
		WHERE status = 'pending'
		ORDER BY created_at ASC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("query outbox: %w", err)
	}
	defer rows.Close()

	var events []model.OutboxEvent
	for rows.Next() {
		var ev model.OutboxEvent
		var payload []byte
		if err := rows.Scan(&ev.ID, &ev.Type, &ev.OrderID, &ev.CustomerID, &payload, &ev.Status, &ev.Attempts, &ev.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan outbox event: %w", err)
		}
		ev.Payload = payload
		events = append(events, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration failed: %w", err)
	}
	return events, nil
}

func (s *Store) MarkEventPublished(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE outbox_events SET status = 'published', published_at = NOW() WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("mark event published: %w", err)
	}
	return nil
}

// RecordEventAttempt bumps the attempt counter; the event stays pending
// and will be retried on a later tick.
func (s *Store) RecordEventAttempt(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE outbox_events SET attempts = attempts + 1 WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("record event attempt: %w", err)
	}
	return nil
}

// AbandonEvent parks an event that exhausted its retries so the loop
// stops picking it up; the failure stays visible in the table and logs.
func (s *Store) AbandonEvent(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE outbox_events SET status = 'failed', attempts = attempts + 1 WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("abandon event: %w", err)
	}
	return nil
}
