package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"yurt/internal/model"
)

func (s *Store) GetLocation(ctx context.Context, id string) (*model.Location, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, address, city, zip_code, phone, working_hours, holidays, is_active,
			created_at, updated_at
		FROM locations WHERE id = $1
	`, id)

	var (
		l        model.Location
		hours    []byte
		holidays []byte
	)
	err := row.Scan(&l.ID, &l.Name, &l.Address, &l.City, &l.ZipCode, &l.Phone,
		&hours, &holidays, &l.IsActive, &l.CreatedAt, &l.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("scan location: %w", err)
	}

	if err := json.Unmarshal(hours, &l.WorkingHours); err != nil {
		return nil, fmt.Errorf("unmarshal working hours: %w", err)
	}
	if err := json.Unmarshal(holidays, &l.Holidays); err != nil {
		return nil, fmt.Errorf("unmarshal holidays: %w", err)
	}
	return &l, nil
}
