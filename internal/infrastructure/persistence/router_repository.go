package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/digitallenteranusa-bot/javaindonusa-sub001/internal/domain/network"
	"github.com/digitallenteranusa-bot/javaindonusa-sub001/internal/domain/shared"
)

var routerOrderColumns = map[string]bool{
	"name":         true,
	"status":       true,
	"last_seen_at": true,
	"created_at":   true,
}

// GormRouterRepository implements network.RouterRepository using GORM
type GormRouterRepository struct {
	db *gorm.DB
}

// NewGormRouterRepository creates a new GormRouterRepository
func NewGormRouterRepository(db *gorm.DB) *GormRouterRepository {
	return &GormRouterRepository{db: db}
}

// FindByID finds a router by its ID
func (r *GormRouterRepository) FindByID(ctx context.Context, id uuid.UUID) (*network.Router, error) {
	var router network.Router
	if err := session(ctx, r.db).First(&router, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &router, nil
}

// FindByName finds a router by its unique name
func (r *GormRouterRepository) FindByName(ctx context.Context, name string) (*network.Router, error) {
	var router network.Router
	if err := session(ctx, r.db).
		Where("name = ?", name).
		First(&router).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &router, nil
}

// FindAll finds all routers matching the filter
func (r *GormRouterRepository) FindAll(ctx context.Context, filter shared.Filter) ([]network.Router, error) {
	var routers []network.Router
	query := session(ctx, r.db).Model(&network.Router{})
	query = applyOrdering(query, filter, routerOrderColumns, "name ASC")
	query = paginate(query, filter)

	if err := query.Find(&routers).Error; err != nil {
		return nil, err
	}
	return routers, nil
}

// FindByStatus finds routers by status
func (r *GormRouterRepository) FindByStatus(ctx context.Context, status network.RouterStatus, filter shared.Filter) ([]network.Router, error) {
	var routers []network.Router
	query := session(ctx, r.db).
		Model(&network.Router{}).
		Where("status = ?", status)
	query = applyOrdering(query, filter, routerOrderColumns, "name ASC")
	query = paginate(query, filter)

	if err := query.Find(&routers).Error; err != nil {
		return nil, err
	}
	return routers, nil
}

// FindActive finds all routers not parked in maintenance
func (r *GormRouterRepository) FindActive(ctx context.Context) ([]network.Router, error) {
	var routers []network.Router
	if err := session(ctx, r.db).
		Where("status <> ?", network.RouterStatusMaintenance).
		Order("name ASC").
		Find(&routers).Error; err != nil {
		return nil, err
	}
	return routers, nil
}

// Save creates or updates a router
func (r *GormRouterRepository) Save(ctx context.Context, router *network.Router) error {
	return session(ctx, r.db).Save(router).Error
}

// Delete deletes a router
func (r *GormRouterRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := session(ctx, r.db).Delete(&network.Router{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Count counts routers matching the filter
func (r *GormRouterRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	query := session(ctx, r.db).Model(&network.Router{})
	if v, ok := filter.Filters["status"]; ok {
		query = query.Where("status = ?", v)
	}
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

var _ network.RouterRepository = (*GormRouterRepository)(nil)
