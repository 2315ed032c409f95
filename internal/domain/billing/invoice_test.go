package billing

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestInvoice(t *testing.T, amount int64) *Invoice {
	t.Helper()
	invoice, err := NewInvoice(
		uuid.New(),
		2025, time.March,
		decimal.NewFromInt(amount),
		time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC),
	)
	require.NoError(t, err)
	return invoice
}

func TestNewInvoice(t *testing.T) {
	t.Run("creates pending invoice with period number", func(t *testing.T) {
		invoice := newTestInvoice(t, 150000)

		assert.Equal(t, InvoiceStatusPending, invoice.Status)
		assert.True(t, invoice.PaidAmount.IsZero())
		assert.Contains(t, invoice.Number, "INV-202503-")
		assert.Equal(t, time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC), invoice.Period())
	})

	t.Run("rejects nil customer", func(t *testing.T) {
		_, err := NewInvoice(uuid.Nil, 2025, time.March, decimal.NewFromInt(100), time.Now())
		require.Error(t, err)
	})

	t.Run("rejects non-positive amount", func(t *testing.T) {
		_, err := NewInvoice(uuid.New(), 2025, time.March, decimal.Zero, time.Now())
		require.Error(t, err)
	})

	t.Run("rejects month out of range", func(t *testing.T) {
		_, err := NewInvoice(uuid.New(), 2025, time.Month(13), decimal.NewFromInt(100), time.Now())
		require.Error(t, err)
	})
}

func TestInvoiceApplyPayment(t *testing.T) {
	paidAt := time.Date(2025, 4, 2, 9, 0, 0, 0, time.UTC)

	t.Run("partial payment", func(t *testing.T) {
		invoice := newTestInvoice(t, 150000)

		applied, err := invoice.ApplyPayment(decimal.NewFromInt(50000), paidAt)
		require.NoError(t, err)

		assert.True(t, applied.Equal(decimal.NewFromInt(50000)))
		assert.Equal(t, InvoiceStatusPartial, invoice.Status)
		assert.True(t, invoice.Outstanding().Equal(decimal.NewFromInt(100000)))
		assert.Nil(t, invoice.PaidAt)
	})

	t.Run("full payment settles the invoice", func(t *testing.T) {
		invoice := newTestInvoice(t, 150000)

		applied, err := invoice.ApplyPayment(decimal.NewFromInt(150000), paidAt)
		require.NoError(t, err)

		assert.True(t, applied.Equal(decimal.NewFromInt(150000)))
		assert.Equal(t, InvoiceStatusPaid, invoice.Status)
		require.NotNil(t, invoice.PaidAt)
		assert.Equal(t, paidAt, *invoice.PaidAt)
	})

	t.Run("overpayment only consumes the outstanding balance", func(t *testing.T) {
		invoice := newTestInvoice(t, 150000)

		applied, err := invoice.ApplyPayment(decimal.NewFromInt(400000), paidAt)
		require.NoError(t, err)

		assert.True(t, applied.Equal(decimal.NewFromInt(150000)))
		assert.Equal(t, InvoiceStatusPaid, invoice.Status)
	})

	t.Run("settled invoice rejects further payments", func(t *testing.T) {
		invoice := newTestInvoice(t, 150000)
		_, err := invoice.ApplyPayment(decimal.NewFromInt(150000), paidAt)
		require.NoError(t, err)

		_, err = invoice.ApplyPayment(decimal.NewFromInt(10), paidAt)
		assert.Error(t, err)
	})
}

func TestInvoiceMarkOverdue(t *testing.T) {
	due := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)

	t.Run("unpaid invoice past due is marked", func(t *testing.T) {
		invoice := newTestInvoice(t, 150000)

		marked := invoice.MarkOverdue(due.AddDate(0, 0, 1))
		assert.True(t, marked)
		assert.Equal(t, InvoiceStatusOverdue, invoice.Status)
	})

	t.Run("marking twice reports no change", func(t *testing.T) {
		invoice := newTestInvoice(t, 150000)
		require.True(t, invoice.MarkOverdue(due.AddDate(0, 0, 1)))
		assert.False(t, invoice.MarkOverdue(due.AddDate(0, 0, 2)))
	})

	t.Run("before due date nothing happens", func(t *testing.T) {
		invoice := newTestInvoice(t, 150000)
		assert.False(t, invoice.MarkOverdue(due.AddDate(0, 0, -1)))
		assert.Equal(t, InvoiceStatusPending, invoice.Status)
	})

	t.Run("paid invoice is never marked", func(t *testing.T) {
		invoice := newTestInvoice(t, 150000)
		_, err := invoice.ApplyPayment(decimal.NewFromInt(150000), due)
		require.NoError(t, err)

		assert.False(t, invoice.MarkOverdue(due.AddDate(0, 1, 0)))
		assert.Equal(t, InvoiceStatusPaid, invoice.Status)
	})
}

func TestInvoiceCancel(t *testing.T) {
	t.Run("pending invoice can be cancelled", func(t *testing.T) {
		invoice := newTestInvoice(t, 150000)
		require.NoError(t, invoice.Cancel())
		assert.Equal(t, InvoiceStatusCancelled, invoice.Status)
		assert.False(t, invoice.IsUnpaid())
	})

	t.Run("paid invoice cannot be cancelled", func(t *testing.T) {
		invoice := newTestInvoice(t, 150000)
		_, err := invoice.ApplyPayment(decimal.NewFromInt(150000), time.Now())
		require.NoError(t, err)
		assert.Error(t, invoice.Cancel())
	})
}
