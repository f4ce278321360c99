package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/clubkasse/membership-tally/internal/models"
)

// CommitTally inserts the tally row and archives the outstanding
// one-time fees of the debited members in a single transaction, so a
// failure can never leave fees collected but unarchived. Returns the id
// of the new tally.
func (s *Storage) CommitTally(ctx context.Context, tally *models.Tally, debitedMemberIDs []int64) (int64, error) {
	const op = "storage.CommitTally"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	query := `INSERT INTO tallies (creation_time, collection_date, total_amount, compressed_contents)
			  VALUES ($1, $2, $3, $4)
			  RETURNING id`
	var newID int64
	err = tx.QueryRowContext(ctx, query,
		tally.CreationTime, tally.CollectionDate, tally.TotalAmount, tally.CompressedContents).Scan(&newID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	if len(debitedMemberIDs) > 0 {
		archive := `INSERT INTO archived_one_time_fees (member_id, reason, amount, billed)
				    SELECT member_id, reason, amount, $1
				    FROM one_time_fees
				    WHERE member_id = ANY($2)`
		if _, err = tx.ExecContext(ctx, archive, tally.CreationTime, debitedMemberIDs); err != nil {
			return 0, fmt.Errorf("%s: %w", op, err)
		}
		purge := `DELETE FROM one_time_fees WHERE member_id = ANY($1)`
		if _, err = tx.ExecContext(ctx, purge, debitedMemberIDs); err != nil {
			return 0, fmt.Errorf("%s: %w", op, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return newID, nil
}

// ListTallies returns the stored tallies without their contents,
// ordered by collection date.
func (s *Storage) ListTallies(ctx context.Context) ([]models.Tally, error) {
	const op = "storage.ListTallies"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, creation_time, collection_date, total_amount
			  FROM tallies
			  ORDER BY collection_date`
	rows, err := s.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []models.Tally
	for rows.Next() {
		var item models.Tally
		if err := rows.Scan(&item.ID, &item.CreationTime, &item.CollectionDate, &item.TotalAmount); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, item)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// Tally loads one tally including its compressed contents.
func (s *Storage) Tally(ctx context.Context, id int64) (*models.Tally, error) {
	const op = "storage.Tally"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, creation_time, collection_date, total_amount, compressed_contents
			  FROM tallies
			  WHERE id = $1`
	var result models.Tally
	err := s.DB.QueryRowContext(ctx, query, id).Scan(&result.ID, &result.CreationTime,
		&result.CollectionDate, &result.TotalAmount, &result.CompressedContents)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", op, models.ErrTallyNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &result, nil
}
