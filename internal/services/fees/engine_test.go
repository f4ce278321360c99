package fees

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

var (
	targetDate = time.Date(2026, time.June, 1, 0, 0, 0, 0, time.UTC)

	testCosts = FixedCosts{
		YouthBase:   decimal.NewFromInt(4),
		AdultBase:   decimal.NewFromInt(5),
		TrainerBase: decimal.NewFromInt(3),
	}
)

func childMember(id int64) *FeeMember {
	return &FeeMember{
		ID:        id,
		Birthday:  time.Date(2014, time.March, 10, 0, 0, 0, 0, time.UTC),
		EntryDate: time.Date(2022, time.January, 1, 0, 0, 0, 0, time.UTC),
	}
}

func adultMember(id int64) *FeeMember {
	return &FeeMember{
		ID:        id,
		Birthday:  time.Date(1985, time.March, 10, 0, 0, 0, 0, time.UTC),
		EntryDate: time.Date(2010, time.January, 1, 0, 0, 0, 0, time.UTC),
	}
}

func participation(name string, fee int64, since time.Time, until *time.Time) SessionParticipation {
	return SessionParticipation{
		SessionName: name,
		Fee:         decimal.NewFromInt(fee),
		Since:       since,
		Until:       until,
	}
}

func openEnded(name string, fee int64) SessionParticipation {
	return participation(name, fee, time.Date(2022, time.January, 1, 0, 0, 0, 0, time.UTC), nil)
}

func assertFee(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	assert.True(t, got.Equal(decimal.RequireFromString(want)),
		"fee = %s, want %s", got, want)
}

func TestMonthlyFee_BaseTier(t *testing.T) {
	t.Run("child pays youth base", func(t *testing.T) {
		assertFee(t, "4", MonthlyFee(childMember(1), nil, testCosts, targetDate))
	})

	t.Run("adult pays adult base", func(t *testing.T) {
		assertFee(t, "5", MonthlyFee(adultMember(1), nil, testCosts, targetDate))
	})

	t.Run("age tier flips on the birthday", func(t *testing.T) {
		m := childMember(1)
		m.Birthday = time.Date(2008, time.June, 1, 0, 0, 0, 0, time.UTC)
		assertFee(t, "5", MonthlyFee(m, nil, testCosts, targetDate))

		m.Birthday = time.Date(2008, time.June, 2, 0, 0, 0, 0, time.UTC)
		assertFee(t, "4", MonthlyFee(m, nil, testCosts, targetDate))
	})

	t.Run("trainer pays trainer base regardless of age", func(t *testing.T) {
		m := adultMember(1)
		m.Trainer = true
		assertFee(t, "3", MonthlyFee(m, nil, testCosts, targetDate))
	})

	t.Run("honorary member pays no base fee", func(t *testing.T) {
		m := adultMember(1)
		m.Honorary = true
		assertFee(t, "0", MonthlyFee(m, nil, testCosts, targetDate))
	})

	t.Run("honorary member still pays session fees", func(t *testing.T) {
		m := adultMember(1)
		m.Honorary = true
		m.Participations = []SessionParticipation{openEnded("short", 8)}
		assertFee(t, "8", MonthlyFee(m, nil, testCosts, targetDate))
	})
}

func TestMonthlyFee_ActivityWindow(t *testing.T) {
	t.Run("before entry date", func(t *testing.T) {
		m := adultMember(1)
		m.EntryDate = targetDate.AddDate(0, 1, 0)
		assertFee(t, "0", MonthlyFee(m, nil, testCosts, targetDate))
	})

	t.Run("at exit date", func(t *testing.T) {
		m := adultMember(1)
		exit := targetDate
		m.ExitDate = &exit
		assertFee(t, "0", MonthlyFee(m, nil, testCosts, targetDate))
	})

	t.Run("day before exit date", func(t *testing.T) {
		m := adultMember(1)
		exit := targetDate.AddDate(0, 0, 1)
		m.ExitDate = &exit
		assertFee(t, "5", MonthlyFee(m, nil, testCosts, targetDate))
	})
}

func TestMonthlyFee_SessionFees(t *testing.T) {
	t.Run("single session in full", func(t *testing.T) {
		m := adultMember(1)
		m.Participations = []SessionParticipation{openEnded("medium", 20)}
		assertFee(t, "25", MonthlyFee(m, nil, testCosts, targetDate))
	})

	t.Run("top two sessions, 100% plus 75%", func(t *testing.T) {
		m := adultMember(1)
		m.Participations = []SessionParticipation{
			openEnded("long", 28),
			openEnded("short", 8),
			openEnded("medium", 20),
		}
		// 5 + 28 + 0.75*20, the short session is free.
		assertFee(t, "48", MonthlyFee(m, nil, testCosts, targetDate))
	})

	t.Run("ended participation does not count", func(t *testing.T) {
		until := targetDate.AddDate(0, -1, 0)
		m := adultMember(1)
		m.Participations = []SessionParticipation{
			openEnded("short", 8),
			participation("long", 28, time.Date(2022, time.January, 1, 0, 0, 0, 0, time.UTC), &until),
		}
		assertFee(t, "13", MonthlyFee(m, nil, testCosts, targetDate))
	})

	t.Run("participation ending today does not count", func(t *testing.T) {
		until := targetDate
		m := adultMember(1)
		m.Participations = []SessionParticipation{
			participation("long", 28, time.Date(2022, time.January, 1, 0, 0, 0, 0, time.UTC), &until),
		}
		assertFee(t, "5", MonthlyFee(m, nil, testCosts, targetDate))
	})

	t.Run("not yet started participation does not count", func(t *testing.T) {
		m := adultMember(1)
		m.Participations = []SessionParticipation{
			participation("long", 28, targetDate.AddDate(0, 0, 1), nil),
		}
		assertFee(t, "5", MonthlyFee(m, nil, testCosts, targetDate))
	})
}

func TestMonthlyFee_Override(t *testing.T) {
	t.Run("override replaces everything", func(t *testing.T) {
		m := adultMember(1)
		m.Participations = []SessionParticipation{openEnded("long", 28)}
		override := decimal.RequireFromString("7.50")
		m.Override = &override

		sibling := childMember(2)
		assertFee(t, "7.50", MonthlyFee(m, []*FeeMember{sibling}, testCosts, targetDate))
	})

	t.Run("override wins over exit zeroing only while active", func(t *testing.T) {
		m := adultMember(1)
		exit := targetDate.AddDate(0, -1, 0)
		m.ExitDate = &exit
		override := decimal.NewFromInt(9)
		m.Override = &override
		assertFee(t, "0", MonthlyFee(m, nil, testCosts, targetDate))
	})
}

func TestMonthlyFee_SiblingDiscount(t *testing.T) {
	t.Run("lower id sibling pays full, other pays half", func(t *testing.T) {
		sally := childMember(1)
		sam := childMember(2)

		assertFee(t, "4", MonthlyFee(sally, []*FeeMember{sam}, testCosts, targetDate))
		assertFee(t, "2", MonthlyFee(sam, []*FeeMember{sally}, testCosts, targetDate))
	})

	t.Run("cheaper sibling pays half without a tie", func(t *testing.T) {
		expensive := childMember(1)
		expensive.Participations = []SessionParticipation{openEnded("short", 8)}
		cheap := childMember(2)

		assertFee(t, "12", MonthlyFee(expensive, []*FeeMember{cheap}, testCosts, targetDate))
		assertFee(t, "2", MonthlyFee(cheap, []*FeeMember{expensive}, testCosts, targetDate))
	})

	t.Run("three-way tie, only the lowest id pays full", func(t *testing.T) {
		a, b, c := childMember(1), childMember(2), childMember(3)

		assertFee(t, "4", MonthlyFee(a, []*FeeMember{b, c}, testCosts, targetDate))
		assertFee(t, "2", MonthlyFee(b, []*FeeMember{a, c}, testCosts, targetDate))
		assertFee(t, "2", MonthlyFee(c, []*FeeMember{a, b}, testCosts, targetDate))
	})

	t.Run("overridden sibling counts with its override amount", func(t *testing.T) {
		sally := childMember(1)
		zero := decimal.Zero
		sally.Override = &zero
		sam := childMember(2)

		// Sally contributes 0, so Sam is the sole fee-bearing sibling
		// and keeps the full fee.
		assertFee(t, "0", MonthlyFee(sally, []*FeeMember{sam}, testCosts, targetDate))
		assertFee(t, "4", MonthlyFee(sam, []*FeeMember{sally}, testCosts, targetDate))
	})

	t.Run("exited sibling is ignored", func(t *testing.T) {
		sam := childMember(2)
		sally := childMember(1)
		exit := targetDate.AddDate(0, -2, 0)
		sally.ExitDate = &exit

		assertFee(t, "4", MonthlyFee(sam, []*FeeMember{sally}, testCosts, targetDate))
	})

	t.Run("adult with one child gets no discount", func(t *testing.T) {
		parent := adultMember(1)
		child := childMember(2)

		assertFee(t, "5", MonthlyFee(parent, []*FeeMember{child}, testCosts, targetDate))
		assertFee(t, "4", MonthlyFee(child, []*FeeMember{parent}, testCosts, targetDate))
	})
}

func TestMonthlyFee_FamilyPool(t *testing.T) {
	// Two adults (ids 10, 11, fee 5 each) and three children: id 1 with
	// a session (fee 12), ids 2 and 3 without (fee 4 each). The pool is
	// ranked fee descending, ties by id descending:
	//   1. child 1 (12)   -> full
	//   2. adult 11 (5)   -> full
	//   3. adult 10 (5)   -> half
	//   4. child 3 (4)    -> half
	//   5. child 2 (4)    -> free
	c1 := childMember(1)
	c1.Participations = []SessionParticipation{openEnded("short", 8)}
	c2 := childMember(2)
	c3 := childMember(3)
	a10 := adultMember(10)
	a11 := adultMember(11)

	family := []*FeeMember{c1, c2, c3, a10, a11}
	others := func(m *FeeMember) []*FeeMember {
		rest := make([]*FeeMember, 0, len(family)-1)
		for _, x := range family {
			if x.ID != m.ID {
				rest = append(rest, x)
			}
		}
		return rest
	}

	assertFee(t, "12", MonthlyFee(c1, others(c1), testCosts, targetDate))
	assertFee(t, "5", MonthlyFee(a11, others(a11), testCosts, targetDate))
	assertFee(t, "2.5", MonthlyFee(a10, others(a10), testCosts, targetDate))
	assertFee(t, "2", MonthlyFee(c3, others(c3), testCosts, targetDate))
	assertFee(t, "0", MonthlyFee(c2, others(c2), testCosts, targetDate))
}

func TestMonthlyFee_FamilyPoolThirdAdult(t *testing.T) {
	// A third adult with the lowest fee stays outside the pool and pays
	// full despite the big family.
	c1 := childMember(1)
	c2 := childMember(2)
	a10 := adultMember(10)
	a10.Participations = []SessionParticipation{openEnded("short", 8)}
	a11 := adultMember(11)
	a11.Participations = []SessionParticipation{openEnded("medium", 20)}
	a12 := adultMember(12)

	relatives := []*FeeMember{c1, c2, a10, a11}
	assertFee(t, "5", MonthlyFee(a12, relatives, testCosts, targetDate))
}
