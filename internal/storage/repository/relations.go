package repository

import (
	"context"
	"fmt"
)

// Relation edges are stored normalized with first_id < second_id, so
// one undirected relation occupies exactly one row.

// RelativeIDs returns the ids of all members directly related to the
// given one.
func (s *Storage) RelativeIDs(ctx context.Context, memberID int64) ([]int64, error) {
	const op = "storage.RelativeIDs"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT second_id FROM relations WHERE first_id = $1
			  UNION
			  SELECT first_id FROM relations WHERE second_id = $1
			  ORDER BY 1`
	rows, err := s.DB.QueryContext(ctx, query, memberID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, id)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// AddRelation inserts one undirected edge; inserting an existing edge
// is a no-op.
func (s *Storage) AddRelation(ctx context.Context, firstID, secondID int64) error {
	const op = "storage.AddRelation"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO relations (first_id, second_id)
			  VALUES (LEAST($1, $2), GREATEST($1, $2))
			  ON CONFLICT DO NOTHING`
	if _, err := s.DB.ExecContext(ctx, query, firstID, secondID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// RemoveRelation deletes one undirected edge if it exists.
func (s *Storage) RemoveRelation(ctx context.Context, firstID, secondID int64) error {
	const op = "storage.RemoveRelation"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `DELETE FROM relations
			  WHERE first_id = LEAST($1, $2) AND second_id = GREATEST($1, $2)`
	if _, err := s.DB.ExecContext(ctx, query, firstID, secondID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// ClearRelations deletes every edge touching the member.
func (s *Storage) ClearRelations(ctx context.Context, memberID int64) error {
	const op = "storage.ClearRelations"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `DELETE FROM relations WHERE first_id = $1 OR second_id = $1`
	if _, err := s.DB.ExecContext(ctx, query, memberID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
