package billing

import (
	"context"
	"time"

	"github.com/digitallenteranusa-bot/javaindonusa-sub001/internal/domain/shared"
	"github.com/google/uuid"
)

// PaymentRepository defines the interface for payment persistence
type PaymentRepository interface {
	// FindByID finds a payment by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*Payment, error)

	// FindByCustomer finds payments for a customer, newest first
	FindByCustomer(ctx context.Context, customerID uuid.UUID, filter shared.Filter) ([]Payment, error)

	// FindSince finds payments recorded at or after the given time
	FindSince(ctx context.Context, since time.Time) ([]Payment, error)

	// Save stores a payment record
	Save(ctx context.Context, payment *Payment) error

	// Count counts payments matching the filter
	Count(ctx context.Context, filter shared.Filter) (int64, error)
}

// BillingLogRepository defines the interface for the audit trail
type BillingLogRepository interface {
	// Save appends an audit entry
	Save(ctx context.Context, log *BillingLog) error

	// FindByCustomer finds audit entries for a customer, newest first
	FindByCustomer(ctx context.Context, customerID uuid.UUID, filter shared.Filter) ([]BillingLog, error)

	// FindRecent finds the latest audit entries across all customers
	FindRecent(ctx context.Context, limit int) ([]BillingLog, error)
}
