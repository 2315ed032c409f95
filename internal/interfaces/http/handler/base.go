// Package handler contains the gin HTTP handlers.
package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/digitallenteranusa-bot/javaindonusa-sub001/internal/domain/shared"
	"github.com/digitallenteranusa-bot/javaindonusa-sub001/internal/infrastructure/auth"
	"github.com/digitallenteranusa-bot/javaindonusa-sub001/internal/interfaces/http/dto"
)

// BaseHandler provides the response helpers shared by all handlers
type BaseHandler struct {
	logger *zap.Logger
}

// NewBaseHandler creates a BaseHandler
func NewBaseHandler(logger *zap.Logger) BaseHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return BaseHandler{logger: logger}
}

// Success writes a 200 with the data wrapped in the standard envelope
func (h *BaseHandler) Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, dto.NewSuccessResponse(data))
}

// SuccessWithMeta writes a 200 list response with pagination metadata
func (h *BaseHandler) SuccessWithMeta(c *gin.Context, data any, page, pageSize int, total int64) {
	c.JSON(http.StatusOK, dto.NewSuccessResponseWithMeta(data, page, pageSize, total))
}

// Created writes a 201 with the data wrapped in the standard envelope
func (h *BaseHandler) Created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, dto.NewSuccessResponse(data))
}

// NoContent writes a 204
func (h *BaseHandler) NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// BadRequest writes a 400 validation failure. Binding errors coming from the
// validator are broken out per field.
func (h *BaseHandler) BadRequest(c *gin.Context, err error) {
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		details := make([]dto.FieldDetail, 0, len(validationErrs))
		for _, e := range validationErrs {
			details = append(details, dto.FieldDetail{
				Field:   e.Field(),
				Message: fieldMessage(e),
			})
		}
		c.JSON(http.StatusBadRequest, dto.NewValidationErrorResponse("Request validation failed", details))
		return
	}
	c.JSON(http.StatusBadRequest, dto.NewErrorResponse(dto.CodeValidation, err.Error()))
}

func fieldMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "This field is required"
	case "uuid":
		return "Must be a valid UUID"
	case "ip":
		return "Must be a valid IP address"
	case "oneof":
		return "Must be one of: " + e.Param()
	case "min":
		return "Must be at least " + e.Param()
	case "max":
		return "Must be at most " + e.Param()
	default:
		return "Invalid value"
	}
}

// HandleError maps an error to its HTTP status. Domain errors carry their own
// code; anything else is a 500 with the detail kept out of the response.
func (h *BaseHandler) HandleError(c *gin.Context, err error) {
	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) {
		c.JSON(dto.GetHTTPStatus(domainErr.Code), dto.NewErrorResponse(domainErr.Code, domainErr.Message))
		return
	}

	h.logger.Error("request failed",
		zap.String("path", c.FullPath()),
		zap.String("method", c.Request.Method),
		zap.Error(err))
	c.JSON(http.StatusInternalServerError, dto.NewErrorResponse(dto.CodeInternal, "Internal server error"))
}

// bindID parses the :id path parameter as a UUID
func (h *BaseHandler) bindID(c *gin.Context) (uuid.UUID, bool) {
	var req dto.IDRequest
	if err := c.ShouldBindUri(&req); err != nil {
		h.BadRequest(c, err)
		return uuid.Nil, false
	}
	id, err := uuid.Parse(req.ID)
	if err != nil {
		h.BadRequest(c, err)
		return uuid.Nil, false
	}
	return id, true
}

// actor returns the authenticated username for audit attribution
func actor(c *gin.Context) string {
	if username, ok := c.Get(auth.ContextKeyUsername); ok {
		if s, ok := username.(string); ok && s != "" {
			return s
		}
	}
	return "unknown"
}
