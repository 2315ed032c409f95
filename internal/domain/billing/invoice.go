package billing

import (
	"fmt"
	"time"

	"github.com/digitallenteranusa-bot/javaindonusa-sub001/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// InvoiceStatus represents the payment state of an invoice
type InvoiceStatus string

const (
	InvoiceStatusPending   InvoiceStatus = "pending"
	InvoiceStatusPartial   InvoiceStatus = "partial"
	InvoiceStatusPaid      InvoiceStatus = "paid"
	InvoiceStatusOverdue   InvoiceStatus = "overdue"
	InvoiceStatusCancelled InvoiceStatus = "cancelled"
)

// Invoice represents one billing period's charge for a customer
type Invoice struct {
	shared.BaseAggregateRoot
	CustomerID  uuid.UUID       `gorm:"type:uuid;not null;index;uniqueIndex:idx_invoice_customer_period,priority:1"`
	Number      string          `gorm:"type:varchar(50);not null;uniqueIndex"`
	PeriodYear  int             `gorm:"not null;uniqueIndex:idx_invoice_customer_period,priority:2"`
	PeriodMonth time.Month      `gorm:"not null;uniqueIndex:idx_invoice_customer_period,priority:3"`
	DueDate     time.Time       `gorm:"not null;index"`
	Amount      decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	PaidAmount  decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	Status      InvoiceStatus   `gorm:"type:varchar(20);not null;default:'pending';index"`
	PaidAt      *time.Time
	Notes       string `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (Invoice) TableName() string {
	return "invoices"
}

// NewInvoice creates a pending invoice for one billing period
func NewInvoice(customerID uuid.UUID, year int, month time.Month, amount decimal.Decimal, dueDate time.Time) (*Invoice, error) {
	if customerID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_CUSTOMER", "Invoice customer cannot be empty")
	}
	if year < 2000 || year > 2200 {
		return nil, shared.NewDomainError("INVALID_PERIOD", "Invoice period year out of range")
	}
	if month < time.January || month > time.December {
		return nil, shared.NewDomainError("INVALID_PERIOD", "Invoice period month out of range")
	}
	if !amount.IsPositive() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Invoice amount must be positive")
	}

	invoice := &Invoice{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		CustomerID:        customerID,
		PeriodYear:        year,
		PeriodMonth:       month,
		DueDate:           dueDate,
		Amount:            amount,
		PaidAmount:        decimal.Zero,
		Status:            InvoiceStatusPending,
	}
	invoice.Number = fmt.Sprintf("INV-%04d%02d-%s", year, int(month), shortID(invoice.ID))

	return invoice, nil
}

// Period returns the first day of the invoice's billing month
func (i *Invoice) Period() time.Time {
	return time.Date(i.PeriodYear, i.PeriodMonth, 1, 0, 0, 0, 0, time.UTC)
}

// Outstanding returns the amount still owed on this invoice
func (i *Invoice) Outstanding() decimal.Decimal {
	return i.Amount.Sub(i.PaidAmount)
}

// IsSettled returns true once nothing is owed
func (i *Invoice) IsSettled() bool {
	return i.Status == InvoiceStatusPaid || i.Status == InvoiceStatusCancelled
}

// IsUnpaid returns true while any balance is outstanding
func (i *Invoice) IsUnpaid() bool {
	switch i.Status {
	case InvoiceStatusPending, InvoiceStatusPartial, InvoiceStatusOverdue:
		return true
	}
	return false
}

// ApplyPayment consumes up to the outstanding balance from amount and returns
// how much was applied. Callers allocate payments oldest invoice first.
func (i *Invoice) ApplyPayment(amount decimal.Decimal, paidAt time.Time) (decimal.Decimal, error) {
	if !amount.IsPositive() {
		return decimal.Zero, shared.NewDomainError("INVALID_AMOUNT", "Payment amount must be positive")
	}
	if i.IsSettled() {
		return decimal.Zero, shared.NewDomainError("INVALID_STATE", "Invoice is already settled")
	}

	applied := decimal.Min(amount, i.Outstanding())
	i.PaidAmount = i.PaidAmount.Add(applied)

	if i.Outstanding().IsZero() {
		i.Status = InvoiceStatusPaid
		i.PaidAt = &paidAt
	} else {
		i.Status = InvoiceStatusPartial
	}
	i.UpdatedAt = time.Now()
	i.IncrementVersion()

	return applied, nil
}

// MarkOverdue flags an unpaid invoice whose due date has passed. Settled
// invoices are never touched.
func (i *Invoice) MarkOverdue(now time.Time) bool {
	if !i.IsUnpaid() || i.Status == InvoiceStatusOverdue {
		return false
	}
	if !now.After(i.DueDate) {
		return false
	}

	i.Status = InvoiceStatusOverdue
	i.UpdatedAt = time.Now()
	i.IncrementVersion()

	return true
}

// Cancel voids the invoice (billing mistake, churned customer)
func (i *Invoice) Cancel() error {
	if i.Status == InvoiceStatusPaid {
		return shared.NewDomainError("INVALID_STATE", "Paid invoice cannot be cancelled")
	}
	if i.Status == InvoiceStatusCancelled {
		return shared.NewDomainError("ALREADY_CANCELLED", "Invoice is already cancelled")
	}

	i.Status = InvoiceStatusCancelled
	i.UpdatedAt = time.Now()
	i.IncrementVersion()

	return nil
}

func shortID(id uuid.UUID) string {
	s := id.String()
	return s[:8]
}
