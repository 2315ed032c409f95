package billing

import (
	"testing"
	"time"

	"github.com/digitallenteranusa-bot/javaindonusa-sub001/internal/domain/isolation"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildSnapshot(t *testing.T) {
	customer := newTestCustomer(t)
	require.NoError(t, customer.MarkLumpSum(6))
	require.NoError(t, customer.AddDebt(decimal.NewFromInt(450000)))

	paidAt := time.Date(2025, 5, 20, 0, 0, 0, 0, time.UTC)
	require.NoError(t, customer.RecordPayment(decimal.NewFromInt(150000), paidAt))

	mkInvoice := func(month time.Month) Invoice {
		inv, err := NewInvoice(customer.ID, 2025, month,
			decimal.NewFromInt(150000),
			time.Date(2025, month, 10, 0, 0, 0, 0, time.UTC))
		require.NoError(t, err)
		return *inv
	}

	paid := mkInvoice(time.January)
	_, err := paid.ApplyPayment(decimal.NewFromInt(150000), paidAt)
	require.NoError(t, err)

	overdue := mkInvoice(time.February)
	require.True(t, overdue.MarkOverdue(time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)))

	pending := mkInvoice(time.March)

	snapshot := BuildSnapshot(customer, []Invoice{paid, overdue, pending})

	assert.Equal(t, string(CustomerStatusActive), snapshot.CustomerStatus)
	assert.True(t, snapshot.TotalDebt.Equal(decimal.NewFromInt(300000)))
	assert.True(t, snapshot.LumpSum)
	assert.Equal(t, 6, snapshot.LumpSumToleranceMonths)
	require.NotNil(t, snapshot.LastPaymentAt)
	assert.Equal(t, paidAt, *snapshot.LastPaymentAt)

	// Only unpaid invoices survive the projection.
	require.Len(t, snapshot.Unpaid, 2)
	assert.Equal(t, isolation.StatusOverdue, snapshot.Unpaid[0].Status)
	assert.Equal(t, time.February, snapshot.Unpaid[0].PeriodMonth)
	assert.Equal(t, isolation.StatusPending, snapshot.Unpaid[1].Status)
}

func TestBillingLogBuilders(t *testing.T) {
	customerID := uuid.New()
	routerID := uuid.New()

	entry := NewBillingLog(LogActionIsolate, true, "isolated via profile", "system").
		ForCustomer(customerID).
		ForRouter(routerID).
		WithMethod("profile")

	assert.Equal(t, LogActionIsolate, entry.Action)
	assert.True(t, entry.Success)
	require.NotNil(t, entry.CustomerID)
	assert.Equal(t, customerID, *entry.CustomerID)
	require.NotNil(t, entry.RouterID)
	assert.Equal(t, routerID, *entry.RouterID)
	assert.Equal(t, "profile", entry.Method)
}
