package persistence

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/digitallenteranusa-bot/javaindonusa-sub001/internal/domain/billing"
	"github.com/digitallenteranusa-bot/javaindonusa-sub001/internal/domain/shared"
)

var customerOrderColumns = map[string]bool{
	"code":            true,
	"name":            true,
	"status":          true,
	"total_debt":      true,
	"last_payment_at": true,
	"created_at":      true,
}

// GormCustomerRepository implements billing.CustomerRepository using GORM
type GormCustomerRepository struct {
	db *gorm.DB
}

// NewGormCustomerRepository creates a new GormCustomerRepository
func NewGormCustomerRepository(db *gorm.DB) *GormCustomerRepository {
	return &GormCustomerRepository{db: db}
}

// FindByID finds a customer by its ID
func (r *GormCustomerRepository) FindByID(ctx context.Context, id uuid.UUID) (*billing.Customer, error) {
	var customer billing.Customer
	if err := session(ctx, r.db).First(&customer, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &customer, nil
}

// FindByCode finds a customer by its code
func (r *GormCustomerRepository) FindByCode(ctx context.Context, code string) (*billing.Customer, error) {
	var customer billing.Customer
	if err := session(ctx, r.db).
		Where("code = ?", strings.ToUpper(code)).
		First(&customer).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &customer, nil
}

// FindByPPPoEUsername finds a customer by PPPoE username
func (r *GormCustomerRepository) FindByPPPoEUsername(ctx context.Context, username string) (*billing.Customer, error) {
	var customer billing.Customer
	if err := session(ctx, r.db).
		Where("pppoe_username = ?", username).
		First(&customer).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &customer, nil
}

// FindAll finds all customers matching the filter
func (r *GormCustomerRepository) FindAll(ctx context.Context, filter shared.Filter) ([]billing.Customer, error) {
	var customers []billing.Customer
	query := r.applyFilter(session(ctx, r.db).Model(&billing.Customer{}), filter)
	if err := query.Find(&customers).Error; err != nil {
		return nil, err
	}
	return customers, nil
}

// FindByStatus finds customers by service status
func (r *GormCustomerRepository) FindByStatus(ctx context.Context, status billing.CustomerStatus, filter shared.Filter) ([]billing.Customer, error) {
	var customers []billing.Customer
	query := r.applyFilter(
		session(ctx, r.db).Model(&billing.Customer{}).Where("status = ?", status),
		filter,
	)
	if err := query.Find(&customers).Error; err != nil {
		return nil, err
	}
	return customers, nil
}

// FindByRouter finds customers terminated on a router
func (r *GormCustomerRepository) FindByRouter(ctx context.Context, routerID uuid.UUID) ([]billing.Customer, error) {
	var customers []billing.Customer
	if err := session(ctx, r.db).
		Where("router_id = ?", routerID).
		Order("code ASC").
		Find(&customers).Error; err != nil {
		return nil, err
	}
	return customers, nil
}

// FindWithDebt finds active customers carrying outstanding debt
func (r *GormCustomerRepository) FindWithDebt(ctx context.Context) ([]billing.Customer, error) {
	var customers []billing.Customer
	if err := session(ctx, r.db).
		Where("status = ? AND total_debt > 0", billing.CustomerStatusActive).
		Order("code ASC").
		Find(&customers).Error; err != nil {
		return nil, err
	}
	return customers, nil
}

// FindIsolated finds all currently isolated customers
func (r *GormCustomerRepository) FindIsolated(ctx context.Context) ([]billing.Customer, error) {
	var customers []billing.Customer
	if err := session(ctx, r.db).
		Where("status = ?", billing.CustomerStatusIsolated).
		Order("code ASC").
		Find(&customers).Error; err != nil {
		return nil, err
	}
	return customers, nil
}

// FindBillable finds customers that receive a monthly invoice
func (r *GormCustomerRepository) FindBillable(ctx context.Context) ([]billing.Customer, error) {
	var customers []billing.Customer
	if err := session(ctx, r.db).
		Where("status IN ?", []billing.CustomerStatus{
			billing.CustomerStatusActive,
			billing.CustomerStatusIsolated,
		}).
		Order("code ASC").
		Find(&customers).Error; err != nil {
		return nil, err
	}
	return customers, nil
}

// Save creates or updates a customer
func (r *GormCustomerRepository) Save(ctx context.Context, customer *billing.Customer) error {
	return session(ctx, r.db).Save(customer).Error
}

// Delete deletes a customer
func (r *GormCustomerRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := session(ctx, r.db).Delete(&billing.Customer{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Count counts customers matching the filter
func (r *GormCustomerRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	query := r.applySearch(session(ctx, r.db).Model(&billing.Customer{}), filter)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// CountByStatus counts customers by service status
func (r *GormCustomerRepository) CountByStatus(ctx context.Context, status billing.CustomerStatus) (int64, error) {
	var count int64
	if err := session(ctx, r.db).
		Model(&billing.Customer{}).
		Where("status = ?", status).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *GormCustomerRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	query = r.applySearch(query, filter)
	query = applyOrdering(query, filter, customerOrderColumns, "code ASC")
	return paginate(query, filter)
}

func (r *GormCustomerRepository) applySearch(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		pattern := "%" + strings.ToLower(filter.Search) + "%"
		query = query.Where(
			"LOWER(name) LIKE ? OR LOWER(code) LIKE ? OR LOWER(pppoe_username) LIKE ? OR phone LIKE ?",
			pattern, pattern, pattern, "%"+filter.Search+"%",
		)
	}

	for key, value := range filter.Filters {
		switch key {
		case "status":
			query = query.Where("status = ?", value)
		case "router_id":
			query = query.Where("router_id = ?", value)
		case "lump_sum":
			query = query.Where("lump_sum = ?", value)
		case "has_debt":
			if value == true {
				query = query.Where("total_debt > 0")
			} else {
				query = query.Where("total_debt = 0")
			}
		}
	}

	return query
}

var _ billing.CustomerRepository = (*GormCustomerRepository)(nil)
