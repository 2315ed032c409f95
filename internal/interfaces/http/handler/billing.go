package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	appbilling "github.com/digitallenteranusa-bot/javaindonusa-sub001/internal/application/billing"
	"github.com/digitallenteranusa-bot/javaindonusa-sub001/internal/domain/billing"
	"github.com/digitallenteranusa-bot/javaindonusa-sub001/internal/interfaces/http/dto"
)

// BillingHandler exposes invoicing, payment and audit trail endpoints
type BillingHandler struct {
	BaseHandler
	svc      *appbilling.Service
	invoices billing.InvoiceRepository
	payments billing.PaymentRepository
	logs     billing.BillingLogRepository
}

// NewBillingHandler creates a BillingHandler
func NewBillingHandler(
	svc *appbilling.Service,
	invoices billing.InvoiceRepository,
	payments billing.PaymentRepository,
	logs billing.BillingLogRepository,
	logger *zap.Logger,
) *BillingHandler {
	return &BillingHandler{
		BaseHandler: NewBaseHandler(logger),
		svc:         svc,
		invoices:    invoices,
		payments:    payments,
		logs:        logs,
	}
}

// MonthlyRunRequest names the billing period to invoice. Zero values mean the
// current month.
type MonthlyRunRequest struct {
	Year  int `json:"year" binding:"omitempty,min=2000,max=2200"`
	Month int `json:"month" binding:"omitempty,min=1,max=12"`
}

// PaymentRequest records money received from a subscriber
type PaymentRequest struct {
	Amount    decimal.Decimal `json:"amount" binding:"required"`
	Method    string          `json:"method" binding:"required,oneof=cash transfer gateway"`
	Reference string          `json:"reference" binding:"max=100"`
}

// MonthlyRun creates the period's invoices for every billable subscriber
// POST /api/v1/billing/runs
func (h *BillingHandler) MonthlyRun(c *gin.Context) {
	var req MonthlyRunRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err)
		return
	}

	now := time.Now()
	year, month := req.Year, time.Month(req.Month)
	if req.Year == 0 {
		year = now.Year()
	}
	if req.Month == 0 {
		month = now.Month()
	}

	h.logger.Info("manual debt run requested",
		zap.Int("year", year),
		zap.Int("month", int(month)),
		zap.String("by", actor(c)))

	result, err := h.svc.MonthlyRun(c.Request.Context(), year, month)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// MarkOverdue flags every unpaid invoice past its due date
// POST /api/v1/billing/mark-overdue
func (h *BillingHandler) MarkOverdue(c *gin.Context) {
	marked, err := h.svc.MarkOverdue(c.Request.Context(), time.Now())
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, gin.H{"marked": marked})
}

// RecordPayment records a payment and allocates it oldest invoice first
// POST /api/v1/customers/:id/payments
func (h *BillingHandler) RecordPayment(c *gin.Context) {
	id, ok := h.bindID(c)
	if !ok {
		return
	}

	var req PaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err)
		return
	}

	result, err := h.svc.ProcessPayment(c.Request.Context(), id,
		req.Amount, billing.PaymentMethod(req.Method), req.Reference, actor(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, result)
}

// ListInvoices returns a subscriber's invoices, newest period first
// GET /api/v1/customers/:id/invoices
func (h *BillingHandler) ListInvoices(c *gin.Context) {
	id, ok := h.bindID(c)
	if !ok {
		return
	}

	var req dto.ListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, err)
		return
	}
	filter := req.ToFilter()
	filter.Filters["customer_id"] = id
	if status := c.Query("status"); status != "" {
		filter.Filters["status"] = status
	}

	invoices, err := h.invoices.FindByCustomer(c.Request.Context(), id, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	total, err := h.invoices.Count(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, invoices, filter.Page, filter.PageSize, total)
}

// ListPayments returns a subscriber's payments, newest first
// GET /api/v1/customers/:id/payments
func (h *BillingHandler) ListPayments(c *gin.Context) {
	id, ok := h.bindID(c)
	if !ok {
		return
	}

	var req dto.ListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, err)
		return
	}
	filter := req.ToFilter()
	filter.Filters["customer_id"] = id

	payments, err := h.payments.FindByCustomer(c.Request.Context(), id, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	total, err := h.payments.Count(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, payments, filter.Page, filter.PageSize, total)
}

// ListCustomerLogs returns a subscriber's audit trail, newest first
// GET /api/v1/customers/:id/logs
func (h *BillingHandler) ListCustomerLogs(c *gin.Context) {
	id, ok := h.bindID(c)
	if !ok {
		return
	}

	var req dto.ListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, err)
		return
	}
	filter := req.ToFilter()

	logs, err := h.logs.FindByCustomer(c.Request.Context(), id, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, logs)
}

// ListRecentLogs returns the latest audit entries across all subscribers
// GET /api/v1/logs
func (h *BillingHandler) ListRecentLogs(c *gin.Context) {
	var req dto.ListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, err)
		return
	}
	filter := req.ToFilter()

	logs, err := h.logs.FindRecent(c.Request.Context(), filter.PageSize)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, logs)
}
