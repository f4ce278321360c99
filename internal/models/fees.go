package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Keys of the fixed-cost table. A missing key is a configuration error
// and aborts the whole fee computation.
const (
	BasicFeeYouthsKey   = "basic_fee_youths"
	BasicFeeAdultsKey   = "basic_fee_adults"
	BasicFeeTrainersKey = "basic_fee_trainers"
	AdmissionFeeKey     = "admission_fee"
	ProcessingFeeKey    = "processing_fee"
)

// FixedCost is a club-wide configured amount, addressed by name.
type FixedCost struct {
	ID   int64
	Name string
	Cost decimal.Decimal
}

// FeeOverride replaces a member's computed monthly fee with a fixed
// amount. At most one override exists per member.
type FeeOverride struct {
	MemberID int64
	Amount   decimal.Decimal
}

// OneTimeFee is a single outstanding charge against a member, e.g. the
// admission fee. It is consumed (archived) when included in a tally.
type OneTimeFee struct {
	ID       int64
	MemberID int64
	Reason   string
	Amount   decimal.Decimal
}

// ArchivedOneTimeFee is the immutable copy of a consumed one-time fee,
// kept for a bounded retention window.
type ArchivedOneTimeFee struct {
	ID       int64
	MemberID int64
	Reason   string
	Amount   decimal.Decimal
	Billed   time.Time
}
