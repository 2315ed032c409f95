package isolation

import (
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// Invoice statuses the engine recognizes on snapshot invoices. Anything in
// this set counts as unpaid; only StatusOverdue blocks reopening.
const (
	StatusPending = "pending"
	StatusPartial = "partial"
	StatusOverdue = "overdue"
)

// SnapshotInvoice is one unpaid or overdue invoice in the billing projection
type SnapshotInvoice struct {
	PeriodYear  int
	PeriodMonth time.Month
	DueDate     time.Time
	Status      string
}

// Period returns the first day of the invoice's billing month
func (i SnapshotInvoice) Period() time.Time {
	return time.Date(i.PeriodYear, i.PeriodMonth, 1, 0, 0, 0, 0, time.UTC)
}

// Snapshot is the read-only billing projection the engine evaluates. It is
// owned by the billing subsystem; the engine never mutates it.
type Snapshot struct {
	CustomerStatus string
	TotalDebt      decimal.Decimal
	// Unpaid holds every pending/partial/overdue invoice, any order.
	Unpaid []SnapshotInvoice
	// LumpSum marks a customer whose habit is to pay several periods at once.
	LumpSum bool
	// LumpSumToleranceMonths overrides the policy default when > 0.
	LumpSumToleranceMonths int
	LastPaymentAt          *time.Time
}

// Evaluate decides whether a customer should be isolated. Rules are applied
// in order, short-circuiting on the first match:
//
//  1. lump-sum tolerance: unpaid invoice count within tolerance is skipped
//  2. recent-payment amnesty
//  3. grace-period filter on due dates
//  4. consecutive calendar-month run counted from the latest period backward
//
// The exceptions run before the overdue-run calculation so a lump-sum payer
// with scattered unpaid invoices is only isolated once their count exceeds
// the personal tolerance. The engine is total over well-formed input and
// performs no I/O.
func Evaluate(s Snapshot, p Policy, now time.Time) Verdict {
	if s.LumpSum {
		tolerance := p.LumpSumToleranceMonths
		if s.LumpSumToleranceMonths > 0 {
			tolerance = s.LumpSumToleranceMonths
		}
		if len(s.Unpaid) <= tolerance {
			return Verdict{
				Isolate: false,
				Reason:  ReasonLumpSumCustomer,
				Message: fmt.Sprintf("lump-sum customer within tolerance: %d unpaid (limit %d)", len(s.Unpaid), tolerance),
			}
		}
	}

	if s.LastPaymentAt != nil {
		amnesty := time.Duration(p.RecentPaymentAmnestyDays) * 24 * time.Hour
		if sincePayment := now.Sub(*s.LastPaymentAt); sincePayment >= 0 && sincePayment <= amnesty {
			return Verdict{
				Isolate: false,
				Reason:  ReasonRecentPayment,
				Message: fmt.Sprintf("payment recorded %d days ago (amnesty %d days)", int(sincePayment.Hours()/24), p.RecentPaymentAmnestyDays),
			}
		}
	}

	pastGrace := make([]SnapshotInvoice, 0, len(s.Unpaid))
	for _, inv := range s.Unpaid {
		graceEnd := inv.DueDate.AddDate(0, 0, p.GracePeriodDays)
		if now.After(graceEnd) {
			pastGrace = append(pastGrace, inv)
		}
	}

	run := consecutiveOverdueRun(pastGrace)
	if run >= p.OverdueMonthsThreshold {
		return Verdict{
			Isolate:                  true,
			Reason:                   ReasonConsecutiveOverdue,
			ConsecutiveOverdueMonths: run,
			Message:                  fmt.Sprintf("%d consecutive overdue months (threshold %d)", run, p.OverdueMonthsThreshold),
		}
	}

	return Verdict{
		Isolate:                  false,
		Reason:                   ReasonNotOverdueEnough,
		ConsecutiveOverdueMonths: run,
	}
}

// reopenPaymentWindow is the fixed lookback for reopen permissiveness: one
// payment inside this window reopens access even if older overdue invoices
// linger at a lesser status.
const reopenPaymentWindow = 24 * time.Hour

// ReopenEligible reports whether an isolated customer qualifies for
// reopening: either no invoice remains in overdue status, or a payment was
// recorded within the last 24 hours. Reopening is deliberately more
// permissive than isolation.
func ReopenEligible(s Snapshot, now time.Time) bool {
	hasOverdue := false
	for _, inv := range s.Unpaid {
		if inv.Status == StatusOverdue {
			hasOverdue = true
			break
		}
	}

	recentPayment := s.LastPaymentAt != nil &&
		now.Sub(*s.LastPaymentAt) >= 0 &&
		now.Sub(*s.LastPaymentAt) <= reopenPaymentWindow

	return !hasOverdue || recentPayment
}

// consecutiveOverdueRun counts unbroken monthly periods starting from the
// most recent invoice backward. A gap of more than one calendar month breaks
// the run.
func consecutiveOverdueRun(invoices []SnapshotInvoice) int {
	if len(invoices) == 0 {
		return 0
	}

	sorted := make([]SnapshotInvoice, len(invoices))
	copy(sorted, invoices)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Period().After(sorted[j].Period())
	})

	run := 1
	previous := sorted[0].Period()
	for _, inv := range sorted[1:] {
		expected := previous.AddDate(0, -1, 0)
		if !inv.Period().Equal(expected) {
			break
		}
		run++
		previous = inv.Period()
	}

	return run
}
