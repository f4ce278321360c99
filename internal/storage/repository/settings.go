package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/clubkasse/membership-tally/internal/models"
)

// Setting returns the value of one settings key.
func (s *Storage) Setting(ctx context.Context, name string) (string, error) {
	const op = "storage.Setting"
	select {
	case <-ctx.Done():
		return "", fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT value FROM settings WHERE name = $1`
	var value string
	err := s.DB.QueryRowContext(ctx, query, name).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("%s: %q: %w", op, name, models.ErrSettingNotFound)
	}
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return value, nil
}

// SetSetting creates or replaces a settings value.
func (s *Storage) SetSetting(ctx context.Context, name, value string) error {
	const op = "storage.SetSetting"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO settings (name, value)
			  VALUES ($1, $2)
			  ON CONFLICT (name) DO UPDATE SET value = EXCLUDED.value`
	if _, err := s.DB.ExecContext(ctx, query, name, value); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// ListSettings returns all settings ordered by name.
func (s *Storage) ListSettings(ctx context.Context) ([]models.Setting, error) {
	const op = "storage.ListSettings"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT name, value FROM settings ORDER BY name`
	rows, err := s.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []models.Setting
	for rows.Next() {
		var item models.Setting
		if err := rows.Scan(&item.Name, &item.Value); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, item)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}
