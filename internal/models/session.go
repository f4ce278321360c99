package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Session is a training group with a monthly membership fee. Members
// join a session through time-windowed participations and may also act
// as trainers of a session.
type Session struct {
	ID            int64
	Name          string
	MembershipFee decimal.Decimal
}

// Participation links a member to a session for a period of time. Until
// is nil for open-ended participations.
type Participation struct {
	MemberID  int64
	SessionID int64
	Since     time.Time
	Until     *time.Time
}

// ActiveAt reports whether the participation window covers the given
// date. The until date itself is exclusive.
func (p *Participation) ActiveAt(at time.Time) bool {
	if p.Since.After(at) {
		return false
	}
	if p.Until == nil {
		return true
	}
	return p.Until.After(at)
}
