package network

import (
	"github.com/digitallenteranusa-bot/javaindonusa-sub001/internal/domain/shared"
	"github.com/google/uuid"
)

// Aggregate type constant
const AggregateTypeRouter = "Router"

// Event type constants
const (
	EventTypeRouterOnline  = "RouterOnline"
	EventTypeRouterOffline = "RouterOffline"
)

// RouterOnlineEvent is published when a router comes back online
type RouterOnlineEvent struct {
	shared.BaseDomainEvent
	RouterID uuid.UUID `json:"router_id"`
	Name     string    `json:"name"`
	Host     string    `json:"host"`
}

// NewRouterOnlineEvent creates a new RouterOnlineEvent
func NewRouterOnlineEvent(router *Router) *RouterOnlineEvent {
	return &RouterOnlineEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeRouterOnline, AggregateTypeRouter, router.ID),
		RouterID:        router.ID,
		Name:            router.Name,
		Host:            router.Host,
	}
}

// RouterOfflineEvent is published when a router stops answering health checks
type RouterOfflineEvent struct {
	shared.BaseDomainEvent
	RouterID     uuid.UUID `json:"router_id"`
	Name         string    `json:"name"`
	Host         string    `json:"host"`
	FailureCount int       `json:"failure_count"`
}

// NewRouterOfflineEvent creates a new RouterOfflineEvent
func NewRouterOfflineEvent(router *Router) *RouterOfflineEvent {
	return &RouterOfflineEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeRouterOffline, AggregateTypeRouter, router.ID),
		RouterID:        router.ID,
		Name:            router.Name,
		Host:            router.Host,
		FailureCount:    router.FailureCount,
	}
}
