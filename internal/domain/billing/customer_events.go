package billing

import (
	"time"

	"github.com/digitallenteranusa-bot/javaindonusa-sub001/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Aggregate type constant
const AggregateTypeCustomer = "Customer"

// Event type constants
const (
	EventTypeCustomerIsolated = "CustomerIsolated"
	EventTypeCustomerReopened = "CustomerReopened"
	EventTypePaymentRecorded  = "PaymentRecorded"
)

// CustomerIsolatedEvent is published when a subscriber's service is restricted
type CustomerIsolatedEvent struct {
	shared.BaseDomainEvent
	CustomerID uuid.UUID       `json:"customer_id"`
	Code       string          `json:"code"`
	Method     string          `json:"method"`
	Reason     string          `json:"reason"`
	TotalDebt  decimal.Decimal `json:"total_debt"`
	RouterID   *uuid.UUID      `json:"router_id,omitempty"`
}

// NewCustomerIsolatedEvent creates a new CustomerIsolatedEvent
func NewCustomerIsolatedEvent(customer *Customer) *CustomerIsolatedEvent {
	return &CustomerIsolatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeCustomerIsolated, AggregateTypeCustomer, customer.ID),
		CustomerID:      customer.ID,
		Code:            customer.Code,
		Method:          customer.IsolationMethod,
		Reason:          customer.IsolationReason,
		TotalDebt:       customer.TotalDebt,
		RouterID:        customer.RouterID,
	}
}

// CustomerReopenedEvent is published when a subscriber's service is restored
type CustomerReopenedEvent struct {
	shared.BaseDomainEvent
	CustomerID uuid.UUID  `json:"customer_id"`
	Code       string     `json:"code"`
	Method     string     `json:"method"` // The method that had been applied
	RouterID   *uuid.UUID `json:"router_id,omitempty"`
}

// NewCustomerReopenedEvent creates a new CustomerReopenedEvent
func NewCustomerReopenedEvent(customer *Customer, method string) *CustomerReopenedEvent {
	return &CustomerReopenedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeCustomerReopened, AggregateTypeCustomer, customer.ID),
		CustomerID:      customer.ID,
		Code:            customer.Code,
		Method:          method,
		RouterID:        customer.RouterID,
	}
}

// PaymentRecordedEvent is published when a payment reduces a customer's debt
type PaymentRecordedEvent struct {
	shared.BaseDomainEvent
	CustomerID    uuid.UUID       `json:"customer_id"`
	Code          string          `json:"code"`
	Amount        decimal.Decimal `json:"amount"`
	RemainingDebt decimal.Decimal `json:"remaining_debt"`
	PaidAt        time.Time       `json:"paid_at"`
}

// NewPaymentRecordedEvent creates a new PaymentRecordedEvent
func NewPaymentRecordedEvent(customer *Customer, amount decimal.Decimal, paidAt time.Time) *PaymentRecordedEvent {
	return &PaymentRecordedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePaymentRecorded, AggregateTypeCustomer, customer.ID),
		CustomerID:      customer.ID,
		Code:            customer.Code,
		Amount:          amount,
		RemainingDebt:   customer.TotalDebt,
		PaidAt:          paidAt,
	}
}
