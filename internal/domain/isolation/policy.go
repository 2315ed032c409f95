package isolation

// Policy holds the isolation decision thresholds. It is loaded once from
// configuration and passed into Evaluate explicitly, keeping the engine a
// pure function of (snapshot, policy, now).
type Policy struct {
	// OverdueMonthsThreshold is the consecutive-overdue-month run length at
	// which a customer is isolated.
	OverdueMonthsThreshold int
	// GracePeriodDays is the number of days after an invoice due date before
	// it counts toward the overdue run.
	GracePeriodDays int
	// RecentPaymentAmnestyDays skips isolation when any payment was recorded
	// within this many days.
	RecentPaymentAmnestyDays int
	// LumpSumToleranceMonths is the default number of unpaid invoices a
	// lump-sum payer may accumulate before isolation. A per-customer override
	// on the snapshot takes precedence.
	LumpSumToleranceMonths int
}

// DefaultPolicy mirrors the deployment defaults: three months overdue, one
// week grace, one month payment amnesty, three months lump-sum tolerance.
func DefaultPolicy() Policy {
	return Policy{
		OverdueMonthsThreshold:   3,
		GracePeriodDays:          7,
		RecentPaymentAmnestyDays: 30,
		LumpSumToleranceMonths:   3,
	}
}
