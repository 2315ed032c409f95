package billing

import (
	"github.com/digitallenteranusa-bot/javaindonusa-sub001/internal/domain/shared"
	"github.com/google/uuid"
)

// BillingLogAction identifies what the audit entry records
type BillingLogAction string

const (
	LogActionIsolate  BillingLogAction = "isolate"
	LogActionReopen   BillingLogAction = "reopen"
	LogActionSweep    BillingLogAction = "sweep"
	LogActionPayment  BillingLogAction = "payment"
	LogActionDebtRun  BillingLogAction = "debt_run"
	LogActionOverride BillingLogAction = "override" // Manual operator action
)

// BillingLog is an append-only audit record of billing and isolation actions.
// Entries are written for failures as well; Success distinguishes them.
type BillingLog struct {
	shared.BaseEntity
	CustomerID  *uuid.UUID       `gorm:"type:uuid;index"`
	RouterID    *uuid.UUID       `gorm:"type:uuid;index"`
	Action      BillingLogAction `gorm:"type:varchar(20);not null;index"`
	Method      string           `gorm:"type:varchar(20)"` // Isolation method, when relevant
	Success     bool             `gorm:"not null"`
	Detail      string           `gorm:"type:text"`
	PerformedBy string           `gorm:"type:varchar(100)"` // Operator, or 'system' for scheduled runs
}

// TableName returns the table name for GORM
func (BillingLog) TableName() string {
	return "billing_logs"
}

// NewBillingLog creates an audit entry
func NewBillingLog(action BillingLogAction, success bool, detail, performedBy string) *BillingLog {
	return &BillingLog{
		BaseEntity:  shared.NewBaseEntity(),
		Action:      action,
		Success:     success,
		Detail:      detail,
		PerformedBy: performedBy,
	}
}

// ForCustomer attaches the customer the entry concerns
func (l *BillingLog) ForCustomer(id uuid.UUID) *BillingLog {
	l.CustomerID = &id
	return l
}

// ForRouter attaches the router the entry concerns
func (l *BillingLog) ForRouter(id uuid.UUID) *BillingLog {
	l.RouterID = &id
	return l
}

// WithMethod records the isolation method applied
func (l *BillingLog) WithMethod(method string) *BillingLog {
	l.Method = method
	return l
}
