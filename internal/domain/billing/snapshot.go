package billing

import (
	"github.com/digitallenteranusa-bot/javaindonusa-sub001/internal/domain/isolation"
)

// BuildSnapshot projects a customer and their unpaid invoices into the
// read-only form the isolation engine evaluates. Settled invoices are
// filtered out here so callers can pass whatever invoice set they have.
func BuildSnapshot(customer *Customer, invoices []Invoice) isolation.Snapshot {
	unpaid := make([]isolation.SnapshotInvoice, 0, len(invoices))
	for _, inv := range invoices {
		if !inv.IsUnpaid() {
			continue
		}
		unpaid = append(unpaid, isolation.SnapshotInvoice{
			PeriodYear:  inv.PeriodYear,
			PeriodMonth: inv.PeriodMonth,
			DueDate:     inv.DueDate,
			Status:      string(inv.Status),
		})
	}

	return isolation.Snapshot{
		CustomerStatus:         string(customer.Status),
		TotalDebt:              customer.TotalDebt,
		Unpaid:                 unpaid,
		LumpSum:                customer.LumpSum,
		LumpSumToleranceMonths: customer.LumpSumToleranceMonths,
		LastPaymentAt:          customer.LastPaymentAt,
	}
}
