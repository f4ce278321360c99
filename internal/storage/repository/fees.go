package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/clubkasse/membership-tally/internal/models"
	"github.com/clubkasse/membership-tally/internal/services/fees"
)

// FixedCost returns the configured amount for a fixed-cost key.
func (s *Storage) FixedCost(ctx context.Context, key string) (decimal.Decimal, error) {
	const op = "storage.FixedCost"
	select {
	case <-ctx.Done():
		return decimal.Zero, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT value FROM fixed_costs WHERE name = $1`
	var value decimal.Decimal
	err := s.DB.QueryRowContext(ctx, query, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return decimal.Zero, fmt.Errorf("%s: %q: %w", op, key, models.ErrFixedCostNotFound)
	}
	if err != nil {
		return decimal.Zero, fmt.Errorf("%s: %w", op, err)
	}
	return value, nil
}

// UpsertFixedCost creates or replaces a fixed-cost amount.
func (s *Storage) UpsertFixedCost(ctx context.Context, key string, value decimal.Decimal) error {
	const op = "storage.UpsertFixedCost"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO fixed_costs (name, value)
			  VALUES ($1, $2)
			  ON CONFLICT (name) DO UPDATE SET value = EXCLUDED.value`
	if _, err := s.DB.ExecContext(ctx, query, key, value); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// SetFeeOverride creates or replaces the member's fee override.
func (s *Storage) SetFeeOverride(ctx context.Context, memberID int64, amount decimal.Decimal) error {
	const op = "storage.SetFeeOverride"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO fee_overrides (member_id, amount)
			  VALUES ($1, $2)
			  ON CONFLICT (member_id) DO UPDATE SET amount = EXCLUDED.amount`
	if _, err := s.DB.ExecContext(ctx, query, memberID, amount); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// ClearFeeOverride removes the member's fee override if present.
func (s *Storage) ClearFeeOverride(ctx context.Context, memberID int64) error {
	const op = "storage.ClearFeeOverride"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `DELETE FROM fee_overrides WHERE member_id = $1`
	if _, err := s.DB.ExecContext(ctx, query, memberID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// CreateOneTimeFee charges a member with a one-time fee and returns its
// id.
func (s *Storage) CreateOneTimeFee(ctx context.Context, fee models.OneTimeFee) (int64, error) {
	const op = "storage.CreateOneTimeFee"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO one_time_fees (member_id, reason, amount)
			  VALUES ($1, $2, $3)
			  RETURNING id`
	var newID int64
	err := s.DB.QueryRowContext(ctx, query, fee.MemberID, fee.Reason, fee.Amount).Scan(&newID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return newID, nil
}

// OneTimeFeeTotal sums the member's outstanding one-time fees.
func (s *Storage) OneTimeFeeTotal(ctx context.Context, memberID int64) (decimal.Decimal, error) {
	const op = "storage.OneTimeFeeTotal"
	select {
	case <-ctx.Done():
		return decimal.Zero, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT COALESCE(SUM(amount), 0) FROM one_time_fees WHERE member_id = $1`
	var total decimal.Decimal
	if err := s.DB.QueryRowContext(ctx, query, memberID).Scan(&total); err != nil {
		return decimal.Zero, fmt.Errorf("%s: %w", op, err)
	}
	return total, nil
}

// DeleteOldArchivedFees removes archived one-time fees collected before
// the given time.
func (s *Storage) DeleteOldArchivedFees(ctx context.Context, before time.Time) (int64, error) {
	const op = "storage.DeleteOldArchivedFees"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `DELETE FROM archived_one_time_fees WHERE billed < $1`
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

// FeeMember loads the fee aggregate of one member: the member row,
// trainer flag, fee override and all participations with their session
// fees.
func (s *Storage) FeeMember(ctx context.Context, memberID int64) (*fees.FeeMember, error) {
	const op = "storage.FeeMember"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	members, err := s.loadFeeMembers(ctx, `m.id = $1`, memberID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if len(members) == 0 {
		return nil, fmt.Errorf("%s: %w", op, models.ErrMemberNotFound)
	}
	return members[0], nil
}

// Relatives loads the fee aggregates of all members related to the
// given one, excluding the member itself.
func (s *Storage) Relatives(ctx context.Context, memberID int64) ([]*fees.FeeMember, error) {
	const op = "storage.Relatives"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	condition := `m.id IN (
		SELECT second_id FROM relations WHERE first_id = $1
		UNION
		SELECT first_id FROM relations WHERE second_id = $1
	)`
	members, err := s.loadFeeMembers(ctx, condition, memberID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return members, nil
}

func (s *Storage) loadFeeMembers(ctx context.Context, condition string, args ...any) ([]*fees.FeeMember, error) {
	query := `SELECT m.id, m.birthday, m.entry_date, m.exit_date, m.is_honorary_member,
			      EXISTS (SELECT 1 FROM trainers t WHERE t.member_id = m.id) AS is_trainer,
			      o.amount
			  FROM members m
			  LEFT JOIN fee_overrides o ON o.member_id = m.id
			  WHERE ` + condition + `
			  ORDER BY m.id`
	rows, err := s.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*fees.FeeMember
	byID := make(map[int64]*fees.FeeMember)
	for rows.Next() {
		var item fees.FeeMember
		var exitDate sql.NullTime
		var override decimal.NullDecimal
		if err := rows.Scan(&item.ID, &item.Birthday, &item.EntryDate, &exitDate,
			&item.Honorary, &item.Trainer, &override); err != nil {
			return nil, err
		}
		if exitDate.Valid {
			t := exitDate.Time
			item.ExitDate = &t
		}
		if override.Valid {
			v := override.Decimal
			item.Override = &v
		}
		result = append(result, &item)
		byID[item.ID] = &item
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	if len(result) == 0 {
		return nil, nil
	}

	query = `SELECT p.member_id, s.name, s.membership_fee, p.since, p.until
			 FROM participations p
			 JOIN sessions s ON s.id = p.session_id
			 JOIN members m ON m.id = p.member_id
			 WHERE ` + condition
	partRows, err := s.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = partRows.Close()
	}()

	for partRows.Next() {
		var memberID int64
		var p fees.SessionParticipation
		var until sql.NullTime
		if err := partRows.Scan(&memberID, &p.SessionName, &p.Fee, &p.Since, &until); err != nil {
			return nil, err
		}
		if until.Valid {
			t := until.Time
			p.Until = &t
		}
		if member, ok := byID[memberID]; ok {
			member.Participations = append(member.Participations, p)
		}
	}
	if err = partRows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
