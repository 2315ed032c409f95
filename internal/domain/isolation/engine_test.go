package isolation

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2024, time.April, 15, 12, 0, 0, 0, time.UTC)

// unpaidFor builds an overdue snapshot invoice for the given period with a
// due date long past the default grace window.
func unpaidFor(year int, month time.Month) SnapshotInvoice {
	return SnapshotInvoice{
		PeriodYear:  year,
		PeriodMonth: month,
		DueDate:     time.Date(year, month, 20, 0, 0, 0, 0, time.UTC),
		Status:      StatusOverdue,
	}
}

func TestParseMethod(t *testing.T) {
	for _, valid := range []string{"address_list", "profile", "disable"} {
		m, err := ParseMethod(valid)
		require.NoError(t, err)
		assert.Equal(t, valid, string(m))
	}

	_, err := ParseMethod("firewall")
	assert.Error(t, err)
}

func TestEvaluate(t *testing.T) {
	policy := DefaultPolicy()

	t.Run("isolates after three consecutive overdue months", func(t *testing.T) {
		s := Snapshot{
			CustomerStatus: "active",
			TotalDebt:      decimal.NewFromInt(450000),
			Unpaid: []SnapshotInvoice{
				unpaidFor(2024, time.January),
				unpaidFor(2024, time.February),
				unpaidFor(2024, time.March),
			},
		}

		v := Evaluate(s, policy, testNow)

		assert.True(t, v.Isolate)
		assert.Equal(t, ReasonConsecutiveOverdue, v.Reason)
		assert.Equal(t, 3, v.ConsecutiveOverdueMonths)
	})

	t.Run("gap in periods breaks the run", func(t *testing.T) {
		// 2024-01, 2024-02, 2024-04: the gap at 03 leaves a run of 1
		// counting back from the latest period.
		s := Snapshot{
			Unpaid: []SnapshotInvoice{
				unpaidFor(2024, time.January),
				unpaidFor(2024, time.February),
				unpaidFor(2024, time.April),
			},
		}

		now := time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC)
		v := Evaluate(s, policy, now)

		assert.False(t, v.Isolate)
		assert.Equal(t, ReasonNotOverdueEnough, v.Reason)
		assert.Equal(t, 1, v.ConsecutiveOverdueMonths)
	})

	t.Run("invoice inside grace period does not count", func(t *testing.T) {
		s := Snapshot{
			Unpaid: []SnapshotInvoice{
				unpaidFor(2024, time.February),
				unpaidFor(2024, time.March),
				{
					PeriodYear:  2024,
					PeriodMonth: time.April,
					DueDate:     testNow.AddDate(0, 0, -3), // within 7-day grace
					Status:      StatusPending,
				},
			},
		}

		v := Evaluate(s, policy, testNow)

		assert.False(t, v.Isolate)
		assert.Equal(t, 2, v.ConsecutiveOverdueMonths)
	})

	t.Run("recent payment amnesty overrides a long overdue run", func(t *testing.T) {
		yesterday := testNow.AddDate(0, 0, -1)
		s := Snapshot{
			Unpaid: []SnapshotInvoice{
				unpaidFor(2023, time.October),
				unpaidFor(2023, time.November),
				unpaidFor(2023, time.December),
				unpaidFor(2024, time.January),
				unpaidFor(2024, time.February),
				unpaidFor(2024, time.March),
			},
			LastPaymentAt: &yesterday,
		}

		v := Evaluate(s, policy, testNow)

		assert.False(t, v.Isolate)
		assert.Equal(t, ReasonRecentPayment, v.Reason)
	})

	t.Run("stale payment outside amnesty window does not protect", func(t *testing.T) {
		longAgo := testNow.AddDate(0, 0, -policy.RecentPaymentAmnestyDays-1)
		s := Snapshot{
			Unpaid: []SnapshotInvoice{
				unpaidFor(2024, time.January),
				unpaidFor(2024, time.February),
				unpaidFor(2024, time.March),
			},
			LastPaymentAt: &longAgo,
		}

		v := Evaluate(s, policy, testNow)

		assert.True(t, v.Isolate)
	})

	t.Run("empty snapshot yields zero run", func(t *testing.T) {
		v := Evaluate(Snapshot{}, policy, testNow)

		assert.False(t, v.Isolate)
		assert.Equal(t, ReasonNotOverdueEnough, v.Reason)
		assert.Equal(t, 0, v.ConsecutiveOverdueMonths)
	})
}

func TestEvaluateLumpSum(t *testing.T) {
	policy := DefaultPolicy() // tolerance 3

	t.Run("skips lump-sum customer at exactly tolerance", func(t *testing.T) {
		s := Snapshot{
			LumpSum: true,
			Unpaid: []SnapshotInvoice{
				unpaidFor(2024, time.January),
				unpaidFor(2024, time.February),
				unpaidFor(2024, time.March),
			},
		}

		v := Evaluate(s, policy, testNow)

		assert.False(t, v.Isolate)
		assert.Equal(t, ReasonLumpSumCustomer, v.Reason)
	})

	t.Run("isolates lump-sum customer past tolerance", func(t *testing.T) {
		s := Snapshot{
			LumpSum: true,
			Unpaid: []SnapshotInvoice{
				unpaidFor(2023, time.December),
				unpaidFor(2024, time.January),
				unpaidFor(2024, time.February),
				unpaidFor(2024, time.March),
			},
		}

		v := Evaluate(s, policy, testNow)

		assert.True(t, v.Isolate)
		assert.Equal(t, 4, v.ConsecutiveOverdueMonths)
	})

	t.Run("customer override beats global tolerance", func(t *testing.T) {
		s := Snapshot{
			LumpSum:                true,
			LumpSumToleranceMonths: 5,
			Unpaid: []SnapshotInvoice{
				unpaidFor(2023, time.December),
				unpaidFor(2024, time.January),
				unpaidFor(2024, time.February),
				unpaidFor(2024, time.March),
			},
		}

		v := Evaluate(s, policy, testNow)

		assert.False(t, v.Isolate)
		assert.Equal(t, ReasonLumpSumCustomer, v.Reason)
	})

	t.Run("tolerance exception takes priority over scattered unpaid count", func(t *testing.T) {
		// Scattered periods would never form a run, but the lump-sum gate
		// fires on count alone before the run is ever computed.
		s := Snapshot{
			LumpSum: true,
			Unpaid: []SnapshotInvoice{
				unpaidFor(2023, time.June),
				unpaidFor(2023, time.September),
				unpaidFor(2024, time.January),
			},
		}

		v := Evaluate(s, policy, testNow)

		assert.False(t, v.Isolate)
		assert.Equal(t, ReasonLumpSumCustomer, v.Reason)
	})
}

func TestReopenEligible(t *testing.T) {
	t.Run("eligible when no overdue invoice remains", func(t *testing.T) {
		s := Snapshot{
			CustomerStatus: "isolated",
			Unpaid: []SnapshotInvoice{
				{PeriodYear: 2024, PeriodMonth: time.April, Status: StatusPending},
			},
		}

		assert.True(t, ReopenEligible(s, testNow))
	})

	t.Run("payment two hours ago reopens despite overdue invoice", func(t *testing.T) {
		paidAt := testNow.Add(-2 * time.Hour)
		s := Snapshot{
			Unpaid:        []SnapshotInvoice{unpaidFor(2024, time.February)},
			LastPaymentAt: &paidAt,
		}

		assert.True(t, ReopenEligible(s, testNow))
	})

	t.Run("payment 25 hours ago does not reopen with overdue invoice", func(t *testing.T) {
		paidAt := testNow.Add(-25 * time.Hour)
		s := Snapshot{
			Unpaid:        []SnapshotInvoice{unpaidFor(2024, time.February)},
			LastPaymentAt: &paidAt,
		}

		assert.False(t, ReopenEligible(s, testNow))
	})
}

func TestConsecutiveOverdueRun(t *testing.T) {
	t.Run("counts across a year boundary", func(t *testing.T) {
		run := consecutiveOverdueRun([]SnapshotInvoice{
			unpaidFor(2023, time.November),
			unpaidFor(2023, time.December),
			unpaidFor(2024, time.January),
		})
		assert.Equal(t, 3, run)
	})

	t.Run("order of input does not matter", func(t *testing.T) {
		run := consecutiveOverdueRun([]SnapshotInvoice{
			unpaidFor(2024, time.March),
			unpaidFor(2024, time.January),
			unpaidFor(2024, time.February),
		})
		assert.Equal(t, 3, run)
	})

	t.Run("single invoice is a run of one", func(t *testing.T) {
		assert.Equal(t, 1, consecutiveOverdueRun([]SnapshotInvoice{unpaidFor(2024, time.March)}))
	})

	t.Run("empty input is zero", func(t *testing.T) {
		assert.Equal(t, 0, consecutiveOverdueRun(nil))
	})
}
