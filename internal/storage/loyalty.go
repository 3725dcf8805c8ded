package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"yurt/internal/model"
)

func (s *Store) GetLoyaltyByUser(ctx context.Context, userID string) (*model.LoyaltyAccount, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, user_id, total_points, available_points, tier, total_spent, order_count,
			last_order_date, birthday, birthday_bonus_used,
			redemption_history, points_history, created_at, updated_at
		FROM loyalty_accounts WHERE user_id = $1
	`, userID)

	var (
		a           model.LoyaltyAccount
		redemptions []byte
		points      []byte
		lastOrder   sql.NullTime
		birthday    sql.NullTime
	)
	err := row.Scan(&a.ID, &a.UserID, &a.TotalPoints, &a.AvailablePoints, &a.Tier,
		&a.TotalSpent, &a.OrderCount, &lastOrder, &birthday, &a.BirthdayBonusUsed,
		&redemptions, &points, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("scan loyalty account: %w", err)
	}

	if lastOrder.Valid {
		a.LastOrderDate = &lastOrder.Time
	}
	if birthday.Valid {
		a.Birthday = &birthday.Time
	}
	if err := json.Unmarshal(redemptions, &a.RedemptionHistory); err != nil {
		return nil, fmt.Errorf("unmarshal redemption history: %w", err)
	}
	if err := json.Unmarshal(points, &a.PointsHistory); err != nil {
		return nil, fmt.Errorf("unmarshal points history: %w", err)
	}
	return &a, nil
}

func (s *Store) CreateLoyaltyAccount(ctx context.Context, a *model.LoyaltyAccount) error {
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO loyalty_accounts (id, user_id, tier)
		VALUES (uuid_generate_v4(), $1, $2)
		RETURNING id, created_at, updated_at
	`, a.UserID, a.Tier).Scan(&a.ID, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert loyalty account: %w", err)
	}
	return nil
}

// SaveLoyaltyAccount writes the whole account back. This is plain
// read-modify-write: there is no version column, and concurrent saves
// for the same customer can lose an update.
func (s *Store) SaveLoyaltyAccount(ctx context.Context, a *model.LoyaltyAccount) error {
	redemptions, err := json.Marshal(a.RedemptionHistory)
	if err != nil {
		return fmt.Errorf("marshal redemption history: %w", err)
	}
	points, err := json.Marshal(a.PointsHistory)
	if err != nil {
		return fmt.Errorf("marshal points history: %w", err)
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE loyalty_accounts
		SET total_points = $1, available_points = $2, tier = $3, total_spent = $4,
			order_count = $5, last_order_date = $6, birthday = $7,
			birthday_bonus_used = $8, redemption_history = $9, points_history = $10,
			updated_at = NOW()
		WHERE id = $11
	`, a.TotalPoints, a.AvailablePoints, a.Tier, a.TotalSpent,
		a.OrderCount, a.LastOrderDate, a.Birthday,
		a.BirthdayBonusUsed, redemptions, points, a.ID)
	if err != nil {
		return fmt.Errorf("update loyalty account: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}
