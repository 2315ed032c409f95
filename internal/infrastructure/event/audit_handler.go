package event

import (
	"context"

	"github.com/digitallenteranusa-bot/javaindonusa-sub001/internal/domain/shared"
	"go.uber.org/zap"
)

// AuditHandler records every domain event to the structured log. It is
// registered as a wildcard handler so new event types need no wiring.
type AuditHandler struct {
	logger *zap.Logger
}

// NewAuditHandler creates an audit handler
func NewAuditHandler(logger *zap.Logger) *AuditHandler {
	return &AuditHandler{logger: logger.Named("audit")}
}

// Handle implements shared.EventHandler
func (h *AuditHandler) Handle(_ context.Context, evt shared.DomainEvent) error {
	h.logger.Info("domain event",
		zap.String("event_type", evt.EventType()),
		zap.String("event_id", evt.EventID().String()),
		zap.String("aggregate_type", evt.AggregateType()),
		zap.String("aggregate_id", evt.AggregateID().String()),
		zap.Time("occurred_at", evt.OccurredAt()),
	)
	return nil
}

// EventTypes returns an empty slice so the handler subscribes to all events
func (h *AuditHandler) EventTypes() []string {
	return nil
}

var _ shared.EventHandler = (*AuditHandler)(nil)
