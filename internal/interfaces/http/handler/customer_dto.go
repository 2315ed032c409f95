package handler

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/digitallenteranusa-bot/javaindonusa-sub001/internal/domain/billing"
)

// CreateCustomerRequest is the payload for registering a subscriber
type CreateCustomerRequest struct {
	Code          string          `json:"code" binding:"required,max=50"`
	Name          string          `json:"name" binding:"required,max=200"`
	Phone         string          `json:"phone" binding:"max=50"`
	Address       string          `json:"address"`
	PPPoEUsername string          `json:"pppoe_username" binding:"required,max=100"`
	PPPoEPassword string          `json:"pppoe_password" binding:"max=255"`
	Profile       string          `json:"profile" binding:"max=100"`
	MonthlyFee    decimal.Decimal `json:"monthly_fee"`
	RouterID      *uuid.UUID      `json:"router_id"`
	StaticIP      string          `json:"static_ip" binding:"omitempty,ip"`
}

// UpdateCustomerRequest carries the mutable subscriber fields. Nil fields are
// left untouched.
type UpdateCustomerRequest struct {
	Name       *string          `json:"name" binding:"omitempty,max=200"`
	Phone      *string          `json:"phone" binding:"omitempty,max=50"`
	Address    *string          `json:"address"`
	Profile    *string          `json:"profile" binding:"omitempty,max=100"`
	MonthlyFee *decimal.Decimal `json:"monthly_fee"`
}

// AssignRouterRequest binds a subscriber to their terminating router
type AssignRouterRequest struct {
	RouterID uuid.UUID `json:"router_id" binding:"required"`
	StaticIP string    `json:"static_ip" binding:"omitempty,ip"`
}

// LumpSumRequest flags or unflags a subscriber as a lump-sum payer
type LumpSumRequest struct {
	Enabled         bool `json:"enabled"`
	ToleranceMonths int  `json:"tolerance_months" binding:"min=0,max=24"`
}

// CustomerResponse is the subscriber representation returned by the API.
// The PPPoE password never leaves the server.
type CustomerResponse struct {
	ID              uuid.UUID       `json:"id"`
	Code            string          `json:"code"`
	Name            string          `json:"name"`
	Phone           string          `json:"phone,omitempty"`
	Address         string          `json:"address,omitempty"`
	PPPoEUsername   string          `json:"pppoe_username"`
	Profile         string          `json:"profile"`
	StaticIP        string          `json:"static_ip,omitempty"`
	RouterID        *uuid.UUID      `json:"router_id,omitempty"`
	Status          string          `json:"status"`
	MonthlyFee      decimal.Decimal `json:"monthly_fee"`
	TotalDebt       decimal.Decimal `json:"total_debt"`
	LumpSum         bool            `json:"lump_sum"`
	LastPaymentAt   *time.Time      `json:"last_payment_at,omitempty"`
	IsolatedAt      *time.Time      `json:"isolated_at,omitempty"`
	IsolationMethod string          `json:"isolation_method,omitempty"`
	IsolationReason string          `json:"isolation_reason,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

func toCustomerResponse(c *billing.Customer) CustomerResponse {
	return CustomerResponse{
		ID:              c.ID,
		Code:            c.Code,
		Name:            c.Name,
		Phone:           c.Phone,
		Address:         c.Address,
		PPPoEUsername:   c.PPPoEUsername,
		Profile:         c.Profile,
		StaticIP:        c.StaticIP,
		RouterID:        c.RouterID,
		Status:          string(c.Status),
		MonthlyFee:      c.MonthlyFee,
		TotalDebt:       c.TotalDebt,
		LumpSum:         c.LumpSum,
		LastPaymentAt:   c.LastPaymentAt,
		IsolatedAt:      c.IsolatedAt,
		IsolationMethod: c.IsolationMethod,
		IsolationReason: c.IsolationReason,
		CreatedAt:       c.CreatedAt,
		UpdatedAt:       c.UpdatedAt,
	}
}

func toCustomerResponses(customers []billing.Customer) []CustomerResponse {
	out := make([]CustomerResponse, len(customers))
	for i := range customers {
		out[i] = toCustomerResponse(&customers[i])
	}
	return out
}
