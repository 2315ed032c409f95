package network

import (
	"context"

	"github.com/digitallenteranusa-bot/javaindonusa-sub001/internal/domain/shared"
	"github.com/google/uuid"
)

// RouterRepository defines the interface for router persistence
type RouterRepository interface {
	// FindByID finds a router by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*Router, error)

	// FindByName finds a router by its unique name
	FindByName(ctx context.Context, name string) (*Router, error)

	// FindAll finds all routers matching the filter
	FindAll(ctx context.Context, filter shared.Filter) ([]Router, error)

	// FindByStatus finds routers by reachability status
	FindByStatus(ctx context.Context, status RouterStatus, filter shared.Filter) ([]Router, error)

	// FindActive finds all routers that are not in maintenance
	FindActive(ctx context.Context) ([]Router, error)

	// Save creates or updates a router
	Save(ctx context.Context, router *Router) error

	// Delete deletes a router
	Delete(ctx context.Context, id uuid.UUID) error

	// Count counts routers matching the filter
	Count(ctx context.Context, filter shared.Filter) (int64, error)
}
