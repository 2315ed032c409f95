package billing

import (
	"strings"
	"time"

	"github.com/digitallenteranusa-bot/javaindonusa-sub001/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CustomerStatus represents the service state of a subscriber
type CustomerStatus string

const (
	CustomerStatusActive   CustomerStatus = "active"
	CustomerStatusIsolated CustomerStatus = "isolated" // Service restricted for unpaid debt
	CustomerStatusInactive CustomerStatus = "inactive" // Churned, no longer billed
)

// Customer represents a subscriber in the billing context.
// It is the aggregate root for debt, payments and isolation state.
type Customer struct {
	shared.BaseAggregateRoot
	Code          string         `gorm:"type:varchar(50);not null;uniqueIndex"`
	Name          string         `gorm:"type:varchar(200);not null"`
	Phone         string         `gorm:"type:varchar(50);index"`
	Address       string         `gorm:"type:text"`
	PPPoEUsername string         `gorm:"column:pppoe_username;type:varchar(100);not null;uniqueIndex"`
	PPPoEPassword string         `gorm:"column:pppoe_password;type:varchar(255)"`
	Profile       string         `gorm:"type:varchar(100);not null;default:'default'"` // Normal bandwidth profile
	StaticIP      string         `gorm:"type:varchar(45)"`                             // Used by the address-list method
	RouterID      *uuid.UUID     `gorm:"type:uuid;index"`
	Status        CustomerStatus `gorm:"type:varchar(20);not null;default:'active'"`
	MonthlyFee    decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"` // Subscription price per period
	TotalDebt     decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	// LumpSum marks a customer whose habit is to pay several periods at once;
	// they get extra slack before isolation.
	LumpSum                bool `gorm:"not null;default:false"`
	LumpSumToleranceMonths int  `gorm:"not null;default:0"` // 0 means use the policy default
	LastPaymentAt          *time.Time
	IsolatedAt             *time.Time
	IsolationMethod        string `gorm:"type:varchar(20)"` // Method applied, needed to reverse it
	IsolationReason        string `gorm:"type:varchar(255)"`
}

// TableName returns the table name for GORM
func (Customer) TableName() string {
	return "customers"
}

// NewCustomer creates a new active subscriber
func NewCustomer(code, name, pppoeUsername string) (*Customer, error) {
	if err := validateCustomerCode(code); err != nil {
		return nil, err
	}
	if name == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Customer name cannot be empty")
	}
	if strings.TrimSpace(pppoeUsername) == "" {
		return nil, shared.NewDomainError("INVALID_PPPOE_USERNAME", "PPPoE username cannot be empty")
	}

	customer := &Customer{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Code:              strings.ToUpper(code),
		Name:              name,
		PPPoEUsername:     pppoeUsername,
		Profile:           "default",
		Status:            CustomerStatusActive,
		MonthlyFee:        decimal.Zero,
		TotalDebt:         decimal.Zero,
	}

	return customer, nil
}

// AssignRouter binds the subscriber to the device terminating their session
func (c *Customer) AssignRouter(routerID uuid.UUID, staticIP string) {
	c.RouterID = &routerID
	c.StaticIP = staticIP
	c.UpdatedAt = time.Now()
	c.IncrementVersion()
}

// SetProfile changes the subscriber's normal bandwidth profile
func (c *Customer) SetProfile(profile string) error {
	if profile == "" {
		return shared.NewDomainError("INVALID_PROFILE", "Profile cannot be empty")
	}
	c.Profile = profile
	c.UpdatedAt = time.Now()
	c.IncrementVersion()
	return nil
}

// SetMonthlyFee changes the subscription price charged each period
func (c *Customer) SetMonthlyFee(fee decimal.Decimal) error {
	if fee.IsNegative() {
		return shared.NewDomainError("INVALID_FEE", "Monthly fee cannot be negative")
	}
	c.MonthlyFee = fee
	c.UpdatedAt = time.Now()
	c.IncrementVersion()
	return nil
}

// MarkLumpSum flags the customer as a lump-sum payer. A tolerance of 0 falls
// back to the policy default.
func (c *Customer) MarkLumpSum(toleranceMonths int) error {
	if toleranceMonths < 0 {
		return shared.NewDomainError("INVALID_TOLERANCE", "Lump-sum tolerance cannot be negative")
	}
	c.LumpSum = true
	c.LumpSumToleranceMonths = toleranceMonths
	c.UpdatedAt = time.Now()
	c.IncrementVersion()
	return nil
}

// ClearLumpSum removes the lump-sum flag
func (c *Customer) ClearLumpSum() {
	c.LumpSum = false
	c.LumpSumToleranceMonths = 0
	c.UpdatedAt = time.Now()
	c.IncrementVersion()
}

// Isolate transitions the subscriber into the isolated state. The method is
// recorded so Reopen can reverse exactly what was applied.
func (c *Customer) Isolate(method, reason string) error {
	if c.Status == CustomerStatusIsolated {
		return shared.NewDomainError("ALREADY_ISOLATED", "Customer is already isolated")
	}
	if c.Status == CustomerStatusInactive {
		return shared.NewDomainError("INVALID_STATE", "Inactive customer cannot be isolated")
	}

	now := time.Now()
	c.Status = CustomerStatusIsolated
	c.IsolatedAt = &now
	c.IsolationMethod = method
	c.IsolationReason = reason
	c.UpdatedAt = now
	c.IncrementVersion()

	c.AddDomainEvent(NewCustomerIsolatedEvent(c))

	return nil
}

// Reopen restores the subscriber to active service
func (c *Customer) Reopen() error {
	if c.Status != CustomerStatusIsolated {
		return shared.NewDomainError("NOT_ISOLATED", "Customer is not isolated")
	}

	method := c.IsolationMethod

	c.Status = CustomerStatusActive
	c.IsolatedAt = nil
	c.IsolationMethod = ""
	c.IsolationReason = ""
	c.UpdatedAt = time.Now()
	c.IncrementVersion()

	c.AddDomainEvent(NewCustomerReopenedEvent(c, method))

	return nil
}

// AddDebt increases the outstanding balance (monthly billing run)
func (c *Customer) AddDebt(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return shared.NewDomainError("INVALID_AMOUNT", "Debt amount must be positive")
	}

	c.TotalDebt = c.TotalDebt.Add(amount)
	c.UpdatedAt = time.Now()
	c.IncrementVersion()

	return nil
}

// RecordPayment reduces the outstanding balance and stamps the payment time.
// The balance never goes below zero; overpayment is clamped.
func (c *Customer) RecordPayment(amount decimal.Decimal, paidAt time.Time) error {
	if !amount.IsPositive() {
		return shared.NewDomainError("INVALID_AMOUNT", "Payment amount must be positive")
	}

	c.TotalDebt = c.TotalDebt.Sub(amount)
	if c.TotalDebt.IsNegative() {
		c.TotalDebt = decimal.Zero
	}
	c.LastPaymentAt = &paidAt
	c.UpdatedAt = time.Now()
	c.IncrementVersion()

	c.AddDomainEvent(NewPaymentRecordedEvent(c, amount, paidAt))

	return nil
}

// Deactivate churns the subscriber out of billing
func (c *Customer) Deactivate() error {
	if c.Status == CustomerStatusInactive {
		return shared.NewDomainError("ALREADY_INACTIVE", "Customer is already inactive")
	}

	c.Status = CustomerStatusInactive
	c.UpdatedAt = time.Now()
	c.IncrementVersion()

	return nil
}

// IsActive returns true if the customer receives normal service
func (c *Customer) IsActive() bool {
	return c.Status == CustomerStatusActive
}

// IsIsolated returns true if the customer's service is restricted
func (c *Customer) IsIsolated() bool {
	return c.Status == CustomerStatusIsolated
}

// HasDebt returns true if any balance is outstanding
func (c *Customer) HasDebt() bool {
	return c.TotalDebt.GreaterThan(decimal.Zero)
}

// HasRouter returns true if a terminating router is assigned
func (c *Customer) HasRouter() bool {
	return c.RouterID != nil
}

func validateCustomerCode(code string) error {
	if code == "" {
		return shared.NewDomainError("INVALID_CODE", "Customer code cannot be empty")
	}
	if len(code) > 50 {
		return shared.NewDomainError("INVALID_CODE", "Customer code cannot exceed 50 characters")
	}
	for _, r := range code {
		if !((r >= 'A' && r <= 'Z') || (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '_' || r == '-') {
			return shared.NewDomainError("INVALID_CODE", "Customer code can only contain letters, numbers, underscores, and hyphens")
		}
	}
	return nil
}
