package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/clubkasse/membership-tally/internal/models"
)

// CreateOperator registers a new operator and returns its uid.
func (s *Storage) CreateOperator(ctx context.Context, username, passwordHash, role string) (string, error) {
	const op = "storage.CreateOperator"
	select {
	case <-ctx.Done():
		return "", fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO operators (username, password_hash, role)
			  VALUES ($1, $2, $3)
			  RETURNING uid`
	var uid string
	err := s.DB.QueryRowContext(ctx, query, username, passwordHash, role).Scan(&uid)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return uid, nil
}

// OperatorByUsername loads one operator by username.
func (s *Storage) OperatorByUsername(ctx context.Context, username string) (*models.Operator, error) {
	const op = "storage.OperatorByUsername"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT uid, username, password_hash, role, created_at
			  FROM operators
			  WHERE username = $1`
	var result models.Operator
	err := s.DB.QueryRowContext(ctx, query, username).Scan(&result.UID, &result.Username,
		&result.PasswordHash, &result.Role, &result.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", op, models.ErrOperatorNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &result, nil
}
