package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"yurt/internal/model"
)

// CreateOrder persists a new order together with its broadcast intents
// in one transaction, so a crash cannot leave an order without its
// outbox events or vice versa.
func (s *Store) CreateOrder(ctx context.Context, order *model.Order, events []model.OutboxEvent) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	items, err := json.Marshal(order.Items)
	if err != nil {
		return fmt.Errorf("marshal items: %w", err)
	}

	err = tx.QueryRowContext(ctx, `
		INSERT INTO orders (id, order_number, customer_id, location_id, items, status,
			total_price, payment_status, payment_method, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING created_at, updated_at
	`, order.ID, order.OrderNumber, order.CustomerID, order.LocationID, items, order.Status,
		order.TotalPrice, order.PaymentStatus, order.PaymentMethod, order.Notes,
	).Scan(&order.CreatedAt, &order.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert order: %w", err)
	}

	if err := insertEvents(ctx, tx, events); err != nil {
		return err
	}

	return tx.Commit()
}

// UpdateOrder writes the full mutable part of the aggregate plus the
// events describing the change, atomically.
func (s *Store) UpdateOrder(ctx context.Context, order *model.Order, events []model.OutboxEvent) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		UPDATE orders
		SET status = $1, estimated_prep_time = $2, rejection_reason = $3,
			rejection_comment = $4, payment_status = $5, updated_at = $6
		WHERE id = $7
	`, order.Status, nullInt(order.EstimatedPrepTime), nullReason(order.RejectionReason),
		nullStr(order.RejectionComment), order.PaymentStatus, order.UpdatedAt, order.ID)
	if err != nil {
		return fmt.Errorf("update order: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}

	if err := insertEvents(ctx, tx, events); err != nil {
		return err
	}

	return tx.Commit()
}

func (s *Store) GetOrder(ctx context.Context, id string) (*model.Order, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, order_number, customer_id, location_id, items, status, total_price,
			estimated_prep_time, rejection_reason, rejection_comment,
			payment_status, payment_method, notes, created_at, updated_at
		FROM orders WHERE id = $1
	`, id)
	return scanOrder(row)
}

func (s *Store) ListOrdersByCustomer(ctx context.Context, customerID string, limit int) ([]model.Order, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, order_number, customer_id, location_id, items, status, total_price,
			estimated_prep_time, rejection_reason, rejection_comment,
			payment_status, payment_method, notes, created_at, updated_at
		FROM orders WHERE customer_id = $1
		ORDER BY created_at DESC LIMIT $2
	`, customerID, limit)
	if err != nil {
		return nil, fmt.Errorf("query orders: %w", err)
	}
	defer rows.Close()
	return collectOrders(rows)
}

// ListOrders is the operations-side listing; status filters when
// non-empty.
func (s *Store) ListOrders(ctx context.Context, status string, limit int) ([]model.Order, error) {
	query := `
		SELECT id, order_number, customer_id, location_id, items, status, total_price,
			estimated_prep_time, rejection_reason, rejection_comment,
			payment_status, payment_method, notes, created_at, updated_at
		FROM orders`
	args := []any{}
	if status != "" {
		query += ` WHERE status = $1`
		args = append(args, status)
	}
	query += fmt.Sprintf(` ORDER BY created_at DESC LIMIT %d`, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query orders: %w", err)
	}
	defer rows.Close()
	return collectOrders(rows)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOrder(row rowScanner) (*model.Order, error) {
	var (
		o        model.Order
		items    []byte
		prepTime sql.NullInt64
		reason   sql.NullString
		comment  sql.NullString
	)
	err := row.Scan(&o.ID, &o.OrderNumber, &o.CustomerID, &o.LocationID, &items, &o.Status,
		&o.TotalPrice, &prepTime, &reason, &comment,
		&o.PaymentStatus, &o.PaymentMethod, &o.Notes, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("scan order: %w", err)
	}

	if err := json.Unmarshal(items, &o.Items); err != nil {
		return nil, fmt.Errorf("unmarshal items: %w", err)
	}
	if prepTime.Valid {
		v := int(prepTime.Int64)
		o.EstimatedPrepTime = &v
	}
	if reason.Valid {
		r := model.RejectionReason(reason.String)
		o.RejectionReason = &r
	}
	if comment.Valid {
		o.RejectionComment = comment.String
	}
	return &o, nil
}

func collectOrders(rows *sql.Rows) ([]model.Order, error) {
	var orders []model.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, *o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration failed: %w", err)
	}
	return orders, nil
}

func nullInt(v *int) any {
	if v == nil {
		return nil
	}
	return *v
}

func nullReason(r *model.RejectionReason) any {
	if r == nil {
		return nil
	}
	return string(*r)
}

func nullStr(s string) any {
	if s == "" {
		return nil
	}
	return s
}
