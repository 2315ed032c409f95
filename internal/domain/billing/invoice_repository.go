package billing

import (
	"context"
	"time"

	"github.com/digitallenteranusa-bot/javaindonusa-sub001/internal/domain/shared"
	"github.com/google/uuid"
)

// InvoiceRepository defines the interface for invoice persistence
type InvoiceRepository interface {
	// FindByID finds an invoice by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*Invoice, error)

	// FindByNumber finds an invoice by its unique number
	FindByNumber(ctx context.Context, number string) (*Invoice, error)

	// FindByCustomer finds all invoices for a customer
	FindByCustomer(ctx context.Context, customerID uuid.UUID, filter shared.Filter) ([]Invoice, error)

	// FindUnpaidByCustomer finds the customer's pending, partial and overdue
	// invoices ordered oldest period first, the order payments are
	// allocated in.
	FindUnpaidByCustomer(ctx context.Context, customerID uuid.UUID) ([]Invoice, error)

	// FindUnpaidDueBefore finds unpaid invoices whose due date has passed,
	// the candidate set for overdue marking.
	FindUnpaidDueBefore(ctx context.Context, cutoff time.Time) ([]Invoice, error)

	// ExistsForPeriod reports whether the customer already has an invoice for
	// the given billing period.
	ExistsForPeriod(ctx context.Context, customerID uuid.UUID, year int, month time.Month) (bool, error)

	// Save creates or updates an invoice
	Save(ctx context.Context, invoice *Invoice) error

	// SaveBatch creates or updates multiple invoices
	SaveBatch(ctx context.Context, invoices []*Invoice) error

	// Count counts invoices matching the filter
	Count(ctx context.Context, filter shared.Filter) (int64, error)
}
