package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/digitallenteranusa-bot/javaindonusa-sub001/internal/domain/billing"
	"github.com/digitallenteranusa-bot/javaindonusa-sub001/internal/domain/shared"
)

var invoiceOrderColumns = map[string]bool{
	"number":       true,
	"period_year":  true,
	"period_month": true,
	"due_date":     true,
	"status":       true,
	"amount":       true,
	"created_at":   true,
}

// Statuses that still carry an outstanding balance
var unpaidStatuses = []billing.InvoiceStatus{
	billing.InvoiceStatusPending,
	billing.InvoiceStatusPartial,
	billing.InvoiceStatusOverdue,
}

// GormInvoiceRepository implements billing.InvoiceRepository using GORM
type GormInvoiceRepository struct {
	db *gorm.DB
}

// NewGormInvoiceRepository creates a new GormInvoiceRepository
func NewGormInvoiceRepository(db *gorm.DB) *GormInvoiceRepository {
	return &GormInvoiceRepository{db: db}
}

// FindByID finds an invoice by its ID
func (r *GormInvoiceRepository) FindByID(ctx context.Context, id uuid.UUID) (*billing.Invoice, error) {
	var invoice billing.Invoice
	if err := session(ctx, r.db).First(&invoice, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &invoice, nil
}

// FindByNumber finds an invoice by its unique number
func (r *GormInvoiceRepository) FindByNumber(ctx context.Context, number string) (*billing.Invoice, error) {
	var invoice billing.Invoice
	if err := session(ctx, r.db).
		Where("number = ?", number).
		First(&invoice).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &invoice, nil
}

// FindByCustomer finds all invoices for a customer
func (r *GormInvoiceRepository) FindByCustomer(ctx context.Context, customerID uuid.UUID, filter shared.Filter) ([]billing.Invoice, error) {
	var invoices []billing.Invoice
	query := session(ctx, r.db).
		Model(&billing.Invoice{}).
		Where("customer_id = ?", customerID)
	query = applyOrdering(query, filter, invoiceOrderColumns, "period_year DESC, period_month DESC")
	query = paginate(query, filter)

	if err := query.Find(&invoices).Error; err != nil {
		return nil, err
	}
	return invoices, nil
}

// FindUnpaidByCustomer finds unpaid invoices oldest period first, the order
// payments are allocated in
func (r *GormInvoiceRepository) FindUnpaidByCustomer(ctx context.Context, customerID uuid.UUID) ([]billing.Invoice, error) {
	var invoices []billing.Invoice
	if err := session(ctx, r.db).
		Where("customer_id = ? AND status IN ?", customerID, unpaidStatuses).
		Order("period_year ASC, period_month ASC").
		Find(&invoices).Error; err != nil {
		return nil, err
	}
	return invoices, nil
}

// FindUnpaidDueBefore finds not yet overdue unpaid invoices past their due date
func (r *GormInvoiceRepository) FindUnpaidDueBefore(ctx context.Context, cutoff time.Time) ([]billing.Invoice, error) {
	var invoices []billing.Invoice
	if err := session(ctx, r.db).
		Where("status IN ? AND due_date < ?", []billing.InvoiceStatus{
			billing.InvoiceStatusPending,
			billing.InvoiceStatusPartial,
		}, cutoff).
		Order("due_date ASC").
		Find(&invoices).Error; err != nil {
		return nil, err
	}
	return invoices, nil
}

// ExistsForPeriod reports whether the customer already has an invoice for the period
func (r *GormInvoiceRepository) ExistsForPeriod(ctx context.Context, customerID uuid.UUID, year int, month time.Month) (bool, error) {
	var count int64
	if err := session(ctx, r.db).
		Model(&billing.Invoice{}).
		Where("customer_id = ? AND period_year = ? AND period_month = ?", customerID, year, int(month)).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Save creates or updates an invoice
func (r *GormInvoiceRepository) Save(ctx context.Context, invoice *billing.Invoice) error {
	return session(ctx, r.db).Save(invoice).Error
}

// SaveBatch creates or updates multiple invoices
func (r *GormInvoiceRepository) SaveBatch(ctx context.Context, invoices []*billing.Invoice) error {
	if len(invoices) == 0 {
		return nil
	}
	return session(ctx, r.db).Save(invoices).Error
}

// Count counts invoices matching the filter
func (r *GormInvoiceRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	query := session(ctx, r.db).Model(&billing.Invoice{})
	for key, value := range filter.Filters {
		switch key {
		case "status":
			query = query.Where("status = ?", value)
		case "customer_id":
			query = query.Where("customer_id = ?", value)
		}
	}
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

var _ billing.InvoiceRepository = (*GormInvoiceRepository)(nil)
