package handler

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/digitallenteranusa-bot/javaindonusa-sub001/internal/domain/billing"
	"github.com/digitallenteranusa-bot/javaindonusa-sub001/internal/domain/shared"
	"github.com/digitallenteranusa-bot/javaindonusa-sub001/internal/interfaces/http/dto"
)

// CustomerHandler exposes subscriber management endpoints
type CustomerHandler struct {
	BaseHandler
	customers billing.CustomerRepository
}

// NewCustomerHandler creates a CustomerHandler
func NewCustomerHandler(customers billing.CustomerRepository, logger *zap.Logger) *CustomerHandler {
	return &CustomerHandler{
		BaseHandler: NewBaseHandler(logger),
		customers:   customers,
	}
}

// Create registers a new subscriber
// POST /api/v1/customers
func (h *CustomerHandler) Create(c *gin.Context) {
	var req CreateCustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err)
		return
	}

	if _, err := h.customers.FindByCode(c.Request.Context(), req.Code); err == nil {
		h.HandleError(c, shared.ErrAlreadyExists)
		return
	}

	customer, err := billing.NewCustomer(req.Code, req.Name, req.PPPoEUsername)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	customer.Phone = req.Phone
	customer.Address = req.Address
	customer.PPPoEPassword = req.PPPoEPassword
	if req.Profile != "" {
		if err := customer.SetProfile(req.Profile); err != nil {
			h.HandleError(c, err)
			return
		}
	}
	if req.MonthlyFee.IsPositive() {
		if err := customer.SetMonthlyFee(req.MonthlyFee); err != nil {
			h.HandleError(c, err)
			return
		}
	}
	if req.RouterID != nil {
		customer.AssignRouter(*req.RouterID, req.StaticIP)
	}

	if err := h.customers.Save(c.Request.Context(), customer); err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, toCustomerResponse(customer))
}

// List returns subscribers matching the query
// GET /api/v1/customers
func (h *CustomerHandler) List(c *gin.Context) {
	var req dto.ListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, err)
		return
	}

	filter := req.ToFilter()
	if status := c.Query("status"); status != "" {
		filter.Filters["status"] = status
	}
	if c.Query("has_debt") == "true" {
		filter.Filters["has_debt"] = true
	}

	customers, err := h.customers.FindAll(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	total, err := h.customers.Count(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, toCustomerResponses(customers), filter.Page, filter.PageSize, total)
}

// Get returns one subscriber by ID
// GET /api/v1/customers/:id
func (h *CustomerHandler) Get(c *gin.Context) {
	id, ok := h.bindID(c)
	if !ok {
		return
	}

	customer, err := h.customers.FindByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, toCustomerResponse(customer))
}

// GetByCode returns one subscriber by their code
// GET /api/v1/customers/code/:code
func (h *CustomerHandler) GetByCode(c *gin.Context) {
	customer, err := h.customers.FindByCode(c.Request.Context(), c.Param("code"))
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, toCustomerResponse(customer))
}

// Update changes the mutable subscriber fields
// PUT /api/v1/customers/:id
func (h *CustomerHandler) Update(c *gin.Context) {
	id, ok := h.bindID(c)
	if !ok {
		return
	}

	var req UpdateCustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err)
		return
	}

	customer, err := h.customers.FindByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	if req.Name != nil {
		customer.Name = *req.Name
	}
	if req.Phone != nil {
		customer.Phone = *req.Phone
	}
	if req.Address != nil {
		customer.Address = *req.Address
	}
	if req.Profile != nil {
		if err := customer.SetProfile(*req.Profile); err != nil {
			h.HandleError(c, err)
			return
		}
	}
	if req.MonthlyFee != nil {
		if err := customer.SetMonthlyFee(*req.MonthlyFee); err != nil {
			h.HandleError(c, err)
			return
		}
	}

	if err := h.customers.Save(c.Request.Context(), customer); err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, toCustomerResponse(customer))
}

// AssignRouter binds the subscriber to their terminating router
// PUT /api/v1/customers/:id/router
func (h *CustomerHandler) AssignRouter(c *gin.Context) {
	id, ok := h.bindID(c)
	if !ok {
		return
	}

	var req AssignRouterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err)
		return
	}

	customer, err := h.customers.FindByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	customer.AssignRouter(req.RouterID, req.StaticIP)
	if err := h.customers.Save(c.Request.Context(), customer); err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, toCustomerResponse(customer))
}

// SetLumpSum flags or unflags the subscriber as a lump-sum payer
// PUT /api/v1/customers/:id/lump-sum
func (h *CustomerHandler) SetLumpSum(c *gin.Context) {
	id, ok := h.bindID(c)
	if !ok {
		return
	}

	var req LumpSumRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err)
		return
	}

	customer, err := h.customers.FindByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	if req.Enabled {
		if err := customer.MarkLumpSum(req.ToleranceMonths); err != nil {
			h.HandleError(c, err)
			return
		}
	} else {
		customer.ClearLumpSum()
	}

	if err := h.customers.Save(c.Request.Context(), customer); err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, toCustomerResponse(customer))
}

// Deactivate churns the subscriber out of billing
// POST /api/v1/customers/:id/deactivate
func (h *CustomerHandler) Deactivate(c *gin.Context) {
	id, ok := h.bindID(c)
	if !ok {
		return
	}

	customer, err := h.customers.FindByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	if err := customer.Deactivate(); err != nil {
		h.HandleError(c, err)
		return
	}
	if err := h.customers.Save(c.Request.Context(), customer); err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, toCustomerResponse(customer))
}
