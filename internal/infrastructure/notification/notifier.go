// Package notification delivers isolation transition notices to operators.
package notification

import (
	"context"

	"github.com/digitallenteranusa-bot/javaindonusa-sub001/internal/domain/billing"
	"go.uber.org/zap"
)

// LogNotifier writes notifications to the structured log. It stands in for
// external channels (WhatsApp gateway, email) in deployments without one.
type LogNotifier struct {
	logger *zap.Logger
}

// NewLogNotifier creates a log-backed notifier
func NewLogNotifier(logger *zap.Logger) *LogNotifier {
	return &LogNotifier{logger: logger.Named("notify")}
}

// NotifyIsolated records that a customer's service was restricted
func (n *LogNotifier) NotifyIsolated(_ context.Context, customer *billing.Customer, reason string) {
	n.logger.Info("customer isolated",
		zap.String("customer_code", customer.Code),
		zap.String("customer_name", customer.Name),
		zap.String("phone", customer.Phone),
		zap.String("reason", reason),
		zap.String("total_debt", customer.TotalDebt.String()),
	)
}

// NotifyReopened records that a customer's service was restored
func (n *LogNotifier) NotifyReopened(_ context.Context, customer *billing.Customer) {
	n.logger.Info("customer reopened",
		zap.String("customer_code", customer.Code),
		zap.String("customer_name", customer.Name),
		zap.String("phone", customer.Phone),
	)
}

// CompositeNotifier fans a notification out to several channels
type CompositeNotifier struct {
	notifiers []Notifier
}

// Notifier mirrors the consumer-side port so channels can be composed
type Notifier interface {
	NotifyIsolated(ctx context.Context, customer *billing.Customer, reason string)
	NotifyReopened(ctx context.Context, customer *billing.Customer)
}

// NewCompositeNotifier creates a notifier that delivers through every channel
func NewCompositeNotifier(notifiers ...Notifier) *CompositeNotifier {
	return &CompositeNotifier{notifiers: notifiers}
}

// NotifyIsolated delivers to all channels
func (n *CompositeNotifier) NotifyIsolated(ctx context.Context, customer *billing.Customer, reason string) {
	for _, notifier := range n.notifiers {
		notifier.NotifyIsolated(ctx, customer, reason)
	}
}

// NotifyReopened delivers to all channels
func (n *CompositeNotifier) NotifyReopened(ctx context.Context, customer *billing.Customer) {
	for _, notifier := range n.notifiers {
		notifier.NotifyReopened(ctx, customer)
	}
}
