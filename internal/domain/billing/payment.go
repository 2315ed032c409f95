package billing

import (
	"time"

	"github.com/digitallenteranusa-bot/javaindonusa-sub001/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentMethod represents how a payment was made
type PaymentMethod string

const (
	PaymentMethodCash     PaymentMethod = "cash"
	PaymentMethodTransfer PaymentMethod = "transfer"
	PaymentMethodGateway  PaymentMethod = "gateway"
)

// Payment is an immutable record of money received from a customer
type Payment struct {
	shared.BaseEntity
	CustomerID uuid.UUID       `gorm:"type:uuid;not null;index"`
	Amount     decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Method     PaymentMethod   `gorm:"type:varchar(20);not null"`
	Reference  string          `gorm:"type:varchar(100)"` // Bank or gateway reference
	PaidAt     time.Time       `gorm:"not null;index"`
	ReceivedBy string          `gorm:"type:varchar(100)"` // Operator who recorded it
	Notes      string          `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (Payment) TableName() string {
	return "payments"
}

// NewPayment creates a payment record
func NewPayment(customerID uuid.UUID, amount decimal.Decimal, method PaymentMethod, paidAt time.Time) (*Payment, error) {
	if customerID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_CUSTOMER", "Payment customer cannot be empty")
	}
	if !amount.IsPositive() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Payment amount must be positive")
	}
	switch method {
	case PaymentMethodCash, PaymentMethodTransfer, PaymentMethodGateway:
	default:
		return nil, shared.NewDomainError("INVALID_METHOD", "Unknown payment method")
	}

	return &Payment{
		BaseEntity: shared.NewBaseEntity(),
		CustomerID: customerID,
		Amount:     amount,
		Method:     method,
		PaidAt:     paidAt,
	}, nil
}
