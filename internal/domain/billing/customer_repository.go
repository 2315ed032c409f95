package billing

import (
	"context"

	"github.com/digitallenteranusa-bot/javaindonusa-sub001/internal/domain/shared"
	"github.com/google/uuid"
)

// CustomerRepository defines the interface for customer persistence
type CustomerRepository interface {
	// FindByID finds a customer by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*Customer, error)

	// FindByCode finds a customer by its code
	FindByCode(ctx context.Context, code string) (*Customer, error)

	// FindByPPPoEUsername finds a customer by PPPoE username
	FindByPPPoEUsername(ctx context.Context, username string) (*Customer, error)

	// FindAll finds all customers matching the filter
	FindAll(ctx context.Context, filter shared.Filter) ([]Customer, error)

	// FindByStatus finds customers by service status
	FindByStatus(ctx context.Context, status CustomerStatus, filter shared.Filter) ([]Customer, error)

	// FindByRouter finds customers terminated on a router
	FindByRouter(ctx context.Context, routerID uuid.UUID) ([]Customer, error)

	// FindWithDebt finds active customers carrying outstanding debt,
	// the candidate set for an isolation sweep.
	FindWithDebt(ctx context.Context) ([]Customer, error)

	// FindIsolated finds all currently isolated customers
	FindIsolated(ctx context.Context) ([]Customer, error)

	// FindBillable finds customers that receive a monthly invoice
	// (active or isolated, not churned).
	FindBillable(ctx context.Context) ([]Customer, error)

	// Save creates or updates a customer
	Save(ctx context.Context, customer *Customer) error

	// Delete deletes a customer
	Delete(ctx context.Context, id uuid.UUID) error

	// Count counts customers matching the filter
	Count(ctx context.Context, filter shared.Filter) (int64, error)

	// CountByStatus counts customers by service status
	CountByStatus(ctx context.Context, status CustomerStatus) (int64, error)
}
