// Package billing holds the application services for invoicing and payments:
// the monthly debt run, overdue marking and payment intake with oldest-first
// allocation.
package billing

import (
	"context"
	"fmt"
	"time"

	"github.com/digitallenteranusa-bot/javaindonusa-sub001/internal/domain/billing"
	"github.com/digitallenteranusa-bot/javaindonusa-sub001/internal/domain/isolation"
	"github.com/digitallenteranusa-bot/javaindonusa-sub001/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Reopener restores service for a customer whose debt was cleared.
// The isolation application service satisfies it.
type Reopener interface {
	Reopen(ctx context.Context, customerID uuid.UUID, performedBy string) error
}

// TxRunner executes fn atomically: repository writes made with the derived
// context either all commit or all roll back. persistence.TxManager satisfies
// it.
type TxRunner interface {
	InTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// Config carries the billing run settings
type Config struct {
	// DueDay is the day of month invoices fall due.
	DueDay int
	// Policy is consulted when deciding whether a payment reopens service.
	Policy isolation.Policy
}

// Service implements the billing flows around the customer and invoice
// aggregates.
type Service struct {
	customers billing.CustomerRepository
	invoices  billing.InvoiceRepository
	payments  billing.PaymentRepository
	logs      billing.BillingLogRepository
	publisher shared.EventPublisher
	reopener  Reopener
	tx        TxRunner
	cfg       Config
	logger    *zap.Logger
}

// NewService creates the billing service. The reopener may be nil; payments
// then never trigger automatic reopening. A nil tx runs the flows without
// transactional guarantees (in-memory tests).
func NewService(
	customers billing.CustomerRepository,
	invoices billing.InvoiceRepository,
	payments billing.PaymentRepository,
	logs billing.BillingLogRepository,
	publisher shared.EventPublisher,
	reopener Reopener,
	tx TxRunner,
	cfg Config,
	logger *zap.Logger,
) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.DueDay <= 0 || cfg.DueDay > 28 {
		cfg.DueDay = 10
	}
	return &Service{
		customers: customers,
		invoices:  invoices,
		payments:  payments,
		logs:      logs,
		publisher: publisher,
		reopener:  reopener,
		tx:        tx,
		cfg:       cfg,
		logger:    logger,
	}
}

// inTx runs fn under the transaction runner when one is configured
func (s *Service) inTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if s.tx == nil {
		return fn(ctx)
	}
	return s.tx.InTx(ctx, fn)
}

// RunResult summarizes one monthly debt run
type RunResult struct {
	Period   string `json:"period"`
	Invoiced int    `json:"invoiced"`
	Skipped  int    `json:"skipped"`
	Failed   int    `json:"failed"`
}

// MonthlyRun creates the period's invoice for every billable customer and
// adds the fee to their outstanding debt. Customers already invoiced for the
// period, and customers without a fee, are skipped; the run is safe to
// repeat.
func (s *Service) MonthlyRun(ctx context.Context, year int, month time.Month) (*RunResult, error) {
	result := &RunResult{Period: fmt.Sprintf("%04d-%02d", year, int(month))}

	customers, err := s.customers.FindBillable(ctx)
	if err != nil {
		return nil, err
	}

	dueDate := time.Date(year, month, s.cfg.DueDay, 0, 0, 0, 0, time.UTC)

	for i := range customers {
		customer := &customers[i]

		if !customer.MonthlyFee.IsPositive() {
			result.Skipped++
			continue
		}

		exists, err := s.invoices.ExistsForPeriod(ctx, customer.ID, year, month)
		if err != nil {
			result.Failed++
			s.logger.Error("debt run period check failed", zap.String("customer", customer.Code), zap.Error(err))
			continue
		}
		if exists {
			result.Skipped++
			continue
		}

		invoice, err := billing.NewInvoice(customer.ID, year, month, customer.MonthlyFee, dueDate)
		if err != nil {
			result.Failed++
			continue
		}

		// The invoice and the matching debt increment must land together.
		err = s.inTx(ctx, func(ctx context.Context) error {
			if err := s.invoices.Save(ctx, invoice); err != nil {
				return err
			}
			if err := customer.AddDebt(customer.MonthlyFee); err != nil {
				return err
			}
			return s.customers.Save(ctx, customer)
		})
		if err != nil {
			result.Failed++
			s.logger.Error("debt run failed for customer", zap.String("customer", customer.Code), zap.Error(err))
			continue
		}

		result.Invoiced++
	}

	entry := billing.NewBillingLog(billing.LogActionDebtRun, result.Failed == 0,
		fmt.Sprintf("period=%s invoiced=%d skipped=%d failed=%d",
			result.Period, result.Invoiced, result.Skipped, result.Failed),
		"system")
	if err := s.logs.Save(ctx, entry); err != nil {
		s.logger.Error("audit write failed", zap.Error(err))
	}

	s.logger.Info("monthly debt run finished",
		zap.String("period", result.Period),
		zap.Int("invoiced", result.Invoiced),
		zap.Int("skipped", result.Skipped),
		zap.Int("failed", result.Failed))

	return result, nil
}

// MarkOverdue flags every unpaid invoice whose due date has passed. It runs
// ahead of the isolation sweep so the engine sees current statuses.
func (s *Service) MarkOverdue(ctx context.Context, now time.Time) (int, error) {
	due, err := s.invoices.FindUnpaidDueBefore(ctx, now)
	if err != nil {
		return 0, err
	}

	marked := 0
	for i := range due {
		invoice := &due[i]
		if !invoice.MarkOverdue(now) {
			continue
		}
		if err := s.invoices.Save(ctx, invoice); err != nil {
			return marked, err
		}
		marked++
	}

	if marked > 0 {
		s.logger.Info("invoices marked overdue", zap.Int("count", marked))
	}
	return marked, nil
}

// PaymentResult reports how a payment was allocated
type PaymentResult struct {
	PaymentID       uuid.UUID       `json:"payment_id"`
	Allocated       decimal.Decimal `json:"allocated"`
	Unallocated     decimal.Decimal `json:"unallocated"` // Credit beyond all open invoices
	InvoicesSettled int             `json:"invoices_settled"`
	RemainingDebt   decimal.Decimal `json:"remaining_debt"`
	Reopened        bool            `json:"reopened"`
}

// ProcessPayment records a payment and allocates it across the customer's
// unpaid invoices oldest period first. If the customer is isolated and now
// qualifies, service is reopened in the same flow.
func (s *Service) ProcessPayment(ctx context.Context, customerID uuid.UUID, amount decimal.Decimal, method billing.PaymentMethod, reference, receivedBy string) (*PaymentResult, error) {
	customer, err := s.customers.FindByID(ctx, customerID)
	if err != nil {
		return nil, err
	}

	now := time.Now()

	payment, err := billing.NewPayment(customer.ID, amount, method, now)
	if err != nil {
		return nil, err
	}
	payment.Reference = reference
	payment.ReceivedBy = receivedBy

	result := &PaymentResult{PaymentID: payment.ID, Allocated: decimal.Zero}

	// Payment row, invoice allocation and the customer's debt move as one
	// atomic write; a failure anywhere rolls the whole payment back.
	err = s.inTx(ctx, func(ctx context.Context) error {
		if err := s.payments.Save(ctx, payment); err != nil {
			return err
		}

		unpaid, err := s.invoices.FindUnpaidByCustomer(ctx, customer.ID)
		if err != nil {
			return err
		}

		remaining := amount
		for i := range unpaid {
			if !remaining.IsPositive() {
				break
			}
			invoice := &unpaid[i]
			applied, err := invoice.ApplyPayment(remaining, now)
			if err != nil {
				return err
			}
			if err := s.invoices.Save(ctx, invoice); err != nil {
				return err
			}
			remaining = remaining.Sub(applied)
			result.Allocated = result.Allocated.Add(applied)
			if invoice.IsSettled() {
				result.InvoicesSettled++
			}
		}
		result.Unallocated = remaining

		if err := customer.RecordPayment(amount, now); err != nil {
			return err
		}
		return s.customers.Save(ctx, customer)
	})
	if err != nil {
		return nil, err
	}
	result.RemainingDebt = customer.TotalDebt

	events := customer.GetDomainEvents()
	if len(events) > 0 {
		if err := s.publisher.Publish(ctx, events...); err != nil {
			s.logger.Error("event publish failed", zap.Error(err))
		}
		customer.ClearDomainEvents()
	}

	entry := billing.NewBillingLog(billing.LogActionPayment, true,
		fmt.Sprintf("amount=%s allocated=%s settled=%d", amount, result.Allocated, result.InvoicesSettled),
		receivedBy).ForCustomer(customer.ID)
	if err := s.logs.Save(ctx, entry); err != nil {
		s.logger.Error("audit write failed", zap.Error(err))
	}

	if customer.IsIsolated() && s.reopener != nil {
		stillUnpaid, err := s.invoices.FindUnpaidByCustomer(ctx, customer.ID)
		if err != nil {
			return nil, err
		}
		snapshot := billing.BuildSnapshot(customer, stillUnpaid)
		if isolation.ReopenEligible(snapshot, now) {
			if err := s.reopener.Reopen(ctx, customer.ID, receivedBy); err != nil {
				s.logger.Error("reopen after payment failed",
					zap.String("customer", customer.Code),
					zap.Error(err))
			} else {
				result.Reopened = true
			}
		}
	}

	s.logger.Info("payment processed",
		zap.String("customer", customer.Code),
		zap.String("amount", amount.String()),
		zap.Bool("reopened", result.Reopened))

	return result, nil
}
