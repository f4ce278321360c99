// Package fees computes the monthly and total dues of club members:
// base fee by age tier or trainer status, tiered session fees, fee
// overrides, the family discount and outstanding one-time fees.
//
// The computation itself is pure: it operates on pre-loaded member
// aggregates and never touches storage, so that a failure can only come
// from missing configuration, not from I/O mid-computation.
package fees

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/clubkasse/membership-tally/internal/lib/dates"
)

const adultAge = 18

var (
	secondSessionShare = decimal.RequireFromString("0.75")
	halfFactor         = decimal.RequireFromString("0.5")
)

// FixedCosts holds the three configured base-fee amounts. All three
// must be configured before any fee can be computed.
type FixedCosts struct {
	YouthBase   decimal.Decimal
	AdultBase   decimal.Decimal
	TrainerBase decimal.Decimal
}

// SessionParticipation is one session membership of a member together
// with its time window and the session's monthly fee.
type SessionParticipation struct {
	SessionName string
	Fee         decimal.Decimal
	Since       time.Time
	Until       *time.Time
}

// ActiveAt reports whether the participation window covers the given
// date; the until date is exclusive.
func (p *SessionParticipation) ActiveAt(at time.Time) bool {
	if p.Since.After(at) {
		return false
	}
	if p.Until == nil {
		return true
	}
	return p.Until.After(at)
}

// FeeMember aggregates everything the engine needs to know about one
// member. Override, when non-nil, replaces the computed monthly fee
// entirely.
type FeeMember struct {
	ID        int64
	Birthday  time.Time
	EntryDate time.Time
	ExitDate  *time.Time
	Honorary  bool
	Trainer   bool
	Override  *decimal.Decimal

	Participations []SessionParticipation
}

// ActiveAt reports whether the member is active at the given date.
func (m *FeeMember) ActiveAt(at time.Time) bool {
	if m.EntryDate.After(at) {
		return false
	}
	if m.ExitDate == nil {
		return true
	}
	return m.ExitDate.After(at)
}

func (m *FeeMember) childAt(at time.Time) bool {
	return dates.AgeAt(m.Birthday, at) < adultAge
}

// MonthlyFee computes the member's recurring monthly due at the given
// date, including the family discount derived from the relatives.
// Relatives may contain inactive members; they are ignored.
func MonthlyFee(m *FeeMember, relatives []*FeeMember, costs FixedCosts, at time.Time) decimal.Decimal {
	if !m.ActiveAt(at) {
		return decimal.Zero
	}
	if m.Override != nil {
		return *m.Override
	}

	fee := undiscountedFee(m, costs, at)
	return fee.Mul(discountFactor(m, relatives, costs, at))
}

// undiscountedFee is the monthly fee before any family discount. It is
// the only variant the discount computation itself calls on relatives,
// which bounds the recursion to a single level.
func undiscountedFee(m *FeeMember, costs FixedCosts, at time.Time) decimal.Decimal {
	if !m.ActiveAt(at) {
		return decimal.Zero
	}
	if m.Override != nil {
		return *m.Override
	}

	var fee decimal.Decimal
	switch {
	case m.Honorary:
		// Honorary members are exempt from the base fee only.
	case m.Trainer:
		fee = costs.TrainerBase
	case m.childAt(at):
		fee = costs.YouthBase
	default:
		fee = costs.AdultBase
	}

	sessionFees := make([]decimal.Decimal, 0, len(m.Participations))
	for i := range m.Participations {
		if m.Participations[i].ActiveAt(at) {
			sessionFees = append(sessionFees, m.Participations[i].Fee)
		}
	}
	sort.Slice(sessionFees, func(i, j int) bool {
		return sessionFees[i].GreaterThan(sessionFees[j])
	})

	// Most expensive session at 100%, second at 75%, the rest free.
	if len(sessionFees) >= 1 {
		fee = fee.Add(sessionFees[0])
	}
	if len(sessionFees) >= 2 {
		fee = fee.Add(secondSessionShare.Mul(sessionFees[1]))
	}

	return fee
}

type rankedMember struct {
	member *FeeMember
	fee    decimal.Decimal
}

// rankByFee orders members by undiscounted fee descending, ties broken
// by member id descending.
func rankByFee(members []rankedMember) {
	sort.Slice(members, func(i, j int) bool {
		if c := members[i].fee.Cmp(members[j].fee); c != 0 {
			return c > 0
		}
		return members[i].member.ID > members[j].member.ID
	})
}

// discountFactor derives the family discount factor of the member from
// the fees of its active relatives. All fees entering the ranking are
// undiscounted.
func discountFactor(m *FeeMember, relatives []*FeeMember, costs FixedCosts, at time.Time) decimal.Decimal {
	full := decimal.NewFromInt(1)

	family := make([]*FeeMember, 0, len(relatives)+1)
	family = append(family, m)
	for _, r := range relatives {
		if r.ActiveAt(at) {
			family = append(family, r)
		}
	}
	if len(family) == 1 {
		return full
	}

	var children, adults []rankedMember
	for _, member := range family {
		ranked := rankedMember{member: member, fee: undiscountedFee(member, costs, at)}
		if member.childAt(at) {
			children = append(children, ranked)
		} else {
			adults = append(adults, ranked)
		}
	}

	if len(adults) >= 2 && len(children) >= 2 {
		return familyPoolFactor(m, children, adults, at)
	}

	if m.childAt(at) && len(children) >= 2 {
		return siblingFactor(m, children)
	}

	return full
}

// familyPoolFactor ranks all children together with the two
// highest-paying adults: the top two entries pay full, positions three
// and four pay half, children below that train for free. Adults outside
// the pool, and adults ranked below position four, never drop under the
// half factor.
func familyPoolFactor(m *FeeMember, children, adults []rankedMember, at time.Time) decimal.Decimal {
	full := decimal.NewFromInt(1)

	rankByFee(adults)
	pool := make([]rankedMember, 0, len(children)+2)
	pool = append(pool, children...)
	pool = append(pool, adults[:2]...)
	rankByFee(pool)

	position := -1
	for i := range pool {
		if pool[i].member.ID == m.ID {
			position = i
			break
		}
	}
	if position == -1 {
		// Adult outside the discount pool.
		return full
	}

	switch {
	case position < 2:
		return full
	case position < 4:
		return halfFactor
	case m.childAt(at):
		return decimal.Zero
	default:
		return halfFactor
	}
}

// siblingFactor applies the plain sibling rule: the most expensive
// child pays full, every other child half. Fee ties are resolved in
// favor of the lowest member id, which alone pays full.
func siblingFactor(m *FeeMember, children []rankedMember) decimal.Decimal {
	full := decimal.NewFromInt(1)

	var own decimal.Decimal
	maxOther := decimal.Zero
	haveOther := false
	for i := range children {
		if children[i].member.ID == m.ID {
			own = children[i].fee
			continue
		}
		if !haveOther || children[i].fee.GreaterThan(maxOther) {
			maxOther = children[i].fee
			haveOther = true
		}
	}
	if !haveOther {
		return full
	}

	switch own.Cmp(maxOther) {
	case -1:
		return halfFactor
	case 1:
		return full
	}

	// Tied at the maximum: the tied child with the lowest member id
	// pays full, all others pay half.
	fullPayer := m.ID
	for i := range children {
		if children[i].fee.Equal(own) && children[i].member.ID < fullPayer {
			fullPayer = children[i].member.ID
		}
	}
	if fullPayer == m.ID {
		return full
	}
	return halfFactor
}
