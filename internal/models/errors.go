package models

import "errors"

// Sentinel errors shared between the storage layer, the services and
// the HTTP handlers.
var (
	ErrMemberNotFound    = errors.New("member not found")
	ErrFixedCostNotFound = errors.New("fixed cost not found")
	ErrSettingNotFound   = errors.New("setting not found")
	ErrOperatorNotFound  = errors.New("operator not found")
	ErrTallyNotFound     = errors.New("tally not found")

	// ErrIncompleteMandate marks a member that should be debited but
	// lacks IBAN, BIC or a signed mandate.
	ErrIncompleteMandate = errors.New("incomplete SEPA direct debit mandate")

	// ErrOutputDirMissing is returned before any fee is computed when
	// the tally output directory does not exist.
	ErrOutputDirMissing = errors.New("tally output directory does not exist")
)
