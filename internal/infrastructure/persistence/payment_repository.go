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

// GormPaymentRepository implements billing.PaymentRepository using GORM
type GormPaymentRepository struct {
	db *gorm.DB
}

// NewGormPaymentRepository creates a new GormPaymentRepository
func NewGormPaymentRepository(db *gorm.DB) *GormPaymentRepository {
	return &GormPaymentRepository{db: db}
}

// FindByID finds a payment by its ID
func (r *GormPaymentRepository) FindByID(ctx context.Context, id uuid.UUID) (*billing.Payment, error) {
	var payment billing.Payment
	if err := session(ctx, r.db).First(&payment, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &payment, nil
}

// FindByCustomer finds payments for a customer, newest first
func (r *GormPaymentRepository) FindByCustomer(ctx context.Context, customerID uuid.UUID, filter shared.Filter) ([]billing.Payment, error) {
	var payments []billing.Payment
	query := session(ctx, r.db).
		Where("customer_id = ?", customerID).
		Order("paid_at DESC")
	query = paginate(query, filter)

	if err := query.Find(&payments).Error; err != nil {
		return nil, err
	}
	return payments, nil
}

// FindSince finds payments recorded at or after the given time
func (r *GormPaymentRepository) FindSince(ctx context.Context, since time.Time) ([]billing.Payment, error) {
	var payments []billing.Payment
	if err := session(ctx, r.db).
		Where("paid_at >= ?", since).
		Order("paid_at DESC").
		Find(&payments).Error; err != nil {
		return nil, err
	}
	return payments, nil
}

// Save stores a payment record
func (r *GormPaymentRepository) Save(ctx context.Context, payment *billing.Payment) error {
	return session(ctx, r.db).Save(payment).Error
}

// Count counts payments matching the filter
func (r *GormPaymentRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	query := session(ctx, r.db).Model(&billing.Payment{})
	if v, ok := filter.Filters["customer_id"]; ok {
		query = query.Where("customer_id = ?", v)
	}
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

var _ billing.PaymentRepository = (*GormPaymentRepository)(nil)

// GormBillingLogRepository implements billing.BillingLogRepository using GORM
type GormBillingLogRepository struct {
	db *gorm.DB
}

// NewGormBillingLogRepository creates a new GormBillingLogRepository
func NewGormBillingLogRepository(db *gorm.DB) *GormBillingLogRepository {
	return &GormBillingLogRepository{db: db}
}

// Save appends an audit entry
func (r *GormBillingLogRepository) Save(ctx context.Context, log *billing.BillingLog) error {
	return session(ctx, r.db).Save(log).Error
}

// FindByCustomer finds audit entries for a customer, newest first
func (r *GormBillingLogRepository) FindByCustomer(ctx context.Context, customerID uuid.UUID, filter shared.Filter) ([]billing.BillingLog, error) {
	var logs []billing.BillingLog
	query := session(ctx, r.db).
		Where("customer_id = ?", customerID).
		Order("created_at DESC")
	query = paginate(query, filter)

	if err := query.Find(&logs).Error; err != nil {
		return nil, err
	}
	return logs, nil
}

// FindRecent finds the latest audit entries across all customers
func (r *GormBillingLogRepository) FindRecent(ctx context.Context, limit int) ([]billing.BillingLog, error) {
	if limit <= 0 {
		limit = 50
	}
	var logs []billing.BillingLog
	if err := session(ctx, r.db).
		Order("created_at DESC").
		Limit(limit).
		Find(&logs).Error; err != nil {
		return nil, err
	}
	return logs, nil
}

var _ billing.BillingLogRepository = (*GormBillingLogRepository)(nil)
