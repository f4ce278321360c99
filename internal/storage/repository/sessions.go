package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/clubkasse/membership-tally/internal/models"
)

// CreateSession inserts a training session and returns its id.
func (s *Storage) CreateSession(ctx context.Context, session models.Session) (int64, error) {
	const op = "storage.CreateSession"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO sessions (name, membership_fee)
			  VALUES ($1, $2)
			  RETURNING id`
	var newID int64
	err := s.DB.QueryRowContext(ctx, query, session.Name, session.MembershipFee).Scan(&newID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return newID, nil
}

// ListSessions returns all training sessions ordered by id.
func (s *Storage) ListSessions(ctx context.Context) ([]models.Session, error) {
	const op = "storage.ListSessions"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, name, membership_fee FROM sessions ORDER BY id`
	rows, err := s.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []models.Session
	for rows.Next() {
		var item models.Session
		if err := rows.Scan(&item.ID, &item.Name, &item.MembershipFee); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, item)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// AddParticipation opens a participation of a member in a session.
func (s *Storage) AddParticipation(ctx context.Context, p models.Participation) error {
	const op = "storage.AddParticipation"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO participations (member_id, session_id, since, until)
			  VALUES ($1, $2, $3, $4)`
	_, err := s.DB.ExecContext(ctx, query, p.MemberID, p.SessionID, p.Since, p.Until)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// EndParticipation sets the until date of an open participation and
// returns the number of closed rows.
func (s *Storage) EndParticipation(ctx context.Context, memberID, sessionID int64, until time.Time) (int64, error) {
	const op = "storage.EndParticipation"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE participations
			  SET until = $1
			  WHERE member_id = $2 AND session_id = $3 AND until IS NULL`
	result, err := s.DB.ExecContext(ctx, query, until, memberID, sessionID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return rowsAffected, nil
}

// DeleteEndedParticipations removes participations whose until date
// lies before the given time.
func (s *Storage) DeleteEndedParticipations(ctx context.Context, before time.Time) (int64, error) {
	const op = "storage.DeleteEndedParticipations"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `DELETE FROM participations WHERE until IS NOT NULL AND until < $1`
	result, err := s.DB.ExecContext(ctx, query, before)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return rowsAffected, nil
}

// SetTrainer marks or unmarks a member as trainer.
func (s *Storage) SetTrainer(ctx context.Context, memberID int64, trainer bool) error {
	const op = "storage.SetTrainer"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	var query string
	if trainer {
		query = `INSERT INTO trainers (member_id) VALUES ($1) ON CONFLICT DO NOTHING`
	} else {
		query = `DELETE FROM trainers WHERE member_id = $1`
	}
	if _, err := s.DB.ExecContext(ctx, query, memberID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
