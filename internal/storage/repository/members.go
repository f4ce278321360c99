package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/clubkasse/membership-tally/internal/models"
)

const memberColumns = `id, first_name, last_name, gender, birthday,
	street, street_number, postal_code, city,
	phone_number, email_address,
	iban, bic, account_owner, sepa_mandate_date,
	entry_date, exit_date, is_honorary_member`

func scanMember(row interface{ Scan(...any) error }) (models.Member, error) {
	var m models.Member
	var phone, email, iban, bic, owner sql.NullString
	var mandateDate, exitDate sql.NullTime

	err := row.Scan(&m.ID, &m.FirstName, &m.LastName, &m.Gender, &m.Birthday,
		&m.Street, &m.StreetNumber, &m.PostalCode, &m.City,
		&phone, &email,
		&iban, &bic, &owner, &mandateDate,
		&m.EntryDate, &exitDate, &m.IsHonoraryMember)
	if err != nil {
		return models.Member{}, err
	}

	m.PhoneNumber = phone.String
	m.EmailAddress = email.String
	m.IBAN = iban.String
	m.BIC = bic.String
	m.AccountOwner = owner.String
	if mandateDate.Valid {
		t := mandateDate.Time
		m.SepaMandateDate = &t
	}
	if exitDate.Valid {
		t := exitDate.Time
		m.ExitDate = &t
	}
	return m, nil
}

// CreateMember inserts a new member and returns its id.
func (s *Storage) CreateMember(ctx context.Context, m models.Member) (int64, error) {
	const op = "storage.CreateMember"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO members (first_name, last_name, gender, birthday,
			      street, street_number, postal_code, city,
			      phone_number, email_address,
			      iban, bic, account_owner, sepa_mandate_date,
			      entry_date, exit_date, is_honorary_member)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
			  RETURNING id`
	var newID int64
	err := s.DB.QueryRowContext(ctx, query,
		m.FirstName, m.LastName, m.Gender, m.Birthday,
		m.Street, m.StreetNumber, m.PostalCode, m.City,
		nullString(m.PhoneNumber), nullString(m.EmailAddress),
		nullString(m.IBAN), nullString(m.BIC), nullString(m.AccountOwner), m.SepaMandateDate,
		m.EntryDate, m.ExitDate, m.IsHonoraryMember).Scan(&newID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return newID, nil
}

// ReadMember loads one member by id.
func (s *Storage) ReadMember(ctx context.Context, id int64) (*models.Member, error) {
	const op = "storage.ReadMember"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + memberColumns + ` FROM members WHERE id = $1`
	m, err := scanMember(s.DB.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", op, models.ErrMemberNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &m, nil
}

// UpdateMember replaces the member's row and returns the number of
// updated rows.
func (s *Storage) UpdateMember(ctx context.Context, m models.Member) (int64, error) {
	const op = "storage.UpdateMember"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE members
			  SET first_name = $1, last_name = $2, gender = $3, birthday = $4,
			      street = $5, street_number = $6, postal_code = $7, city = $8,
			      phone_number = $9, email_address = $10,
			      iban = $11, bic = $12, account_owner = $13, sepa_mandate_date = $14,
			      entry_date = $15, exit_date = $16, is_honorary_member = $17
			  WHERE id = $18`
	result, err := s.DB.ExecContext(ctx, query,
		m.FirstName, m.LastName, m.Gender, m.Birthday,
		m.Street, m.StreetNumber, m.PostalCode, m.City,
		nullString(m.PhoneNumber), nullString(m.EmailAddress),
		nullString(m.IBAN), nullString(m.BIC), nullString(m.AccountOwner), m.SepaMandateDate,
		m.EntryDate, m.ExitDate, m.IsHonoraryMember, m.ID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return rowsAffected, nil
}

// ListMembers returns members ordered by id with pagination.
func (s *Storage) ListMembers(ctx context.Context, limit, offset int) ([]models.Member, error) {
	const op = "storage.ListMembers"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + memberColumns + `
			  FROM members
			  ORDER BY id
			  LIMIT $1 OFFSET $2`
	rows, err := s.DB.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []models.Member
	for rows.Next() {
		m, err := scanMember(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, m)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// AllMembers returns every member ordered by id, without pagination.
// The tally assembly iterates all of them; exited members can still owe
// one-time fees.
func (s *Storage) AllMembers(ctx context.Context) ([]models.Member, error) {
	const op = "storage.AllMembers"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + memberColumns + ` FROM members ORDER BY id`
	rows, err := s.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []models.Member
	for rows.Next() {
		m, err := scanMember(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, m)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// DeleteExitedMembers removes members whose exit date lies before the
// given time, together with their dependent rows.
func (s *Storage) DeleteExitedMembers(ctx context.Context, before time.Time) (int64, error) {
	const op = "storage.DeleteExitedMembers"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `DELETE FROM members WHERE exit_date IS NOT NULL AND exit_date < $1`
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

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
