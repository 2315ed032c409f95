package handler

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	appisolation "github.com/digitallenteranusa-bot/javaindonusa-sub001/internal/application/isolation"
	"github.com/digitallenteranusa-bot/javaindonusa-sub001/internal/domain/isolation"
)

// IsolationHandler exposes the isolation, reopen and sweep operations
type IsolationHandler struct {
	BaseHandler
	svc           *appisolation.Service
	defaultMethod isolation.Method
}

// NewIsolationHandler creates an IsolationHandler. defaultMethod is applied
// when an isolate request names none.
func NewIsolationHandler(svc *appisolation.Service, defaultMethod isolation.Method, logger *zap.Logger) *IsolationHandler {
	return &IsolationHandler{
		BaseHandler:   NewBaseHandler(logger),
		svc:           svc,
		defaultMethod: defaultMethod,
	}
}

// IsolateRequest is the payload for a manual isolation
type IsolateRequest struct {
	Method string `json:"method" binding:"omitempty,oneof=address_list profile disable"`
	Reason string `json:"reason" binding:"required,max=255"`
}

// VerdictResponse is the wire form of an evaluation verdict
type VerdictResponse struct {
	Isolate                  bool   `json:"isolate"`
	Reason                   string `json:"reason"`
	ConsecutiveOverdueMonths int    `json:"consecutive_overdue_months"`
	Message                  string `json:"message"`
}

// Isolate restricts one subscriber's service
// POST /api/v1/customers/:id/isolate
func (h *IsolationHandler) Isolate(c *gin.Context) {
	id, ok := h.bindID(c)
	if !ok {
		return
	}

	var req IsolateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err)
		return
	}

	method := h.defaultMethod
	if req.Method != "" {
		parsed, err := isolation.ParseMethod(req.Method)
		if err != nil {
			h.HandleError(c, err)
			return
		}
		method = parsed
	}

	if err := h.svc.Isolate(c.Request.Context(), id, method, req.Reason, actor(c)); err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, gin.H{"isolated": true, "method": string(method)})
}

// Reopen restores one subscriber's service
// POST /api/v1/customers/:id/reopen
func (h *IsolationHandler) Reopen(c *gin.Context) {
	id, ok := h.bindID(c)
	if !ok {
		return
	}

	if err := h.svc.Reopen(c.Request.Context(), id, actor(c)); err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, gin.H{"reopened": true})
}

// Evaluate previews what a sweep would decide for one subscriber
// GET /api/v1/customers/:id/evaluate
func (h *IsolationHandler) Evaluate(c *gin.Context) {
	id, ok := h.bindID(c)
	if !ok {
		return
	}

	verdict, err := h.svc.Evaluate(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, VerdictResponse{
		Isolate:                  verdict.Isolate,
		Reason:                   string(verdict.Reason),
		ConsecutiveOverdueMonths: verdict.ConsecutiveOverdueMonths,
		Message:                  verdict.Message,
	})
}

// Probe reports what the device actually enforces for one subscriber
// GET /api/v1/customers/:id/probe
func (h *IsolationHandler) Probe(c *gin.Context) {
	id, ok := h.bindID(c)
	if !ok {
		return
	}

	probe, err := h.svc.ProbeStatus(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, probe)
}

// Sweep runs a full isolation sweep over the subscriber base
// POST /api/v1/isolation/sweep
func (h *IsolationHandler) Sweep(c *gin.Context) {
	h.logger.Info("manual sweep requested", zap.String("by", actor(c)))

	result, err := h.svc.Sweep(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}
