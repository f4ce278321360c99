// Package models contains the domain structures of the club: members,
// training sessions, fee records and generated tallies. The structs are
// used both by the business logic and by the storage layer.
package models

import "time"

// Member is a club member. Optional dates are pointers, nil meaning
// "not set". The three banking fields plus SepaMandateDate form the SEPA
// mandate and are only valid as a complete set.
type Member struct {
	ID        int64
	FirstName string
	LastName  string
	Gender    string
	Birthday  time.Time

	// Address
	Street       string
	StreetNumber string
	PostalCode   string
	City         string

	// Contact, optional
	PhoneNumber  string
	EmailAddress string

	// SEPA mandate
	IBAN            string
	BIC             string
	AccountOwner    string
	SepaMandateDate *time.Time

	EntryDate        time.Time
	ExitDate         *time.Time
	IsHonoraryMember bool
}

// ActiveAt reports whether the member is an active member at the given
// date: already entered and not yet exited. The exit date itself counts
// as no longer active.
func (m *Member) ActiveAt(at time.Time) bool {
	if m.EntryDate.After(at) {
		return false
	}
	if m.ExitDate == nil {
		return true
	}
	return m.ExitDate.After(at)
}

// HasMandate reports whether a SEPA mandate signature date is present.
func (m *Member) HasMandate() bool {
	return m.SepaMandateDate != nil
}

// MandateComplete reports whether the banking details required for a
// direct debit are present. The account owner is not required; an empty
// owner falls back to the member's own name.
func (m *Member) MandateComplete() bool {
	return m.IBAN != "" && m.BIC != "" && m.SepaMandateDate != nil
}

// DisplayName returns the member's name as "Last, First", the form used
// on the payment documents.
func (m *Member) DisplayName() string {
	return m.LastName + ", " + m.FirstName
}
