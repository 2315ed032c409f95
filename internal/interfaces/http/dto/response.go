// Package dto defines the request and response envelopes shared by all HTTP
// handlers.
package dto

import (
	"github.com/digitallenteranusa-bot/javaindonusa-sub001/internal/domain/shared"
)

// Response is the envelope every endpoint returns
type Response struct {
	Success bool       `json:"success"`
	Data    any        `json:"data,omitempty"`
	Error   *ErrorInfo `json:"error,omitempty"`
	Meta    *Meta      `json:"meta,omitempty"`
}

// ErrorInfo carries a machine-readable code next to the human message
type ErrorInfo struct {
	Code    string        `json:"code"`
	Message string        `json:"message"`
	Details []FieldDetail `json:"details,omitempty"`
}

// FieldDetail points a validation message at the offending field
type FieldDetail struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Meta carries pagination information for list responses
type Meta struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
}

// NewSuccessResponse wraps data in a success envelope
func NewSuccessResponse(data any) Response {
	return Response{Success: true, Data: data}
}

// NewSuccessResponseWithMeta wraps a list in a success envelope with pagination
func NewSuccessResponseWithMeta(data any, page, pageSize int, total int64) Response {
	totalPages := 0
	if pageSize > 0 {
		totalPages = int(total) / pageSize
		if int(total)%pageSize > 0 {
			totalPages++
		}
	}
	return Response{
		Success: true,
		Data:    data,
		Meta: &Meta{
			Page:       page,
			PageSize:   pageSize,
			Total:      total,
			TotalPages: totalPages,
		},
	}
}

// NewErrorResponse wraps an error code and message in a failure envelope
func NewErrorResponse(code, message string) Response {
	return Response{Success: false, Error: &ErrorInfo{Code: code, Message: message}}
}

// NewValidationErrorResponse wraps per-field validation failures
func NewValidationErrorResponse(message string, details []FieldDetail) Response {
	return Response{Success: false, Error: &ErrorInfo{Code: CodeValidation, Message: message, Details: details}}
}

// ListRequest carries the common query parameters of list endpoints
type ListRequest struct {
	Page     int    `form:"page"`
	PageSize int    `form:"page_size"`
	OrderBy  string `form:"order_by"`
	OrderDir string `form:"order_dir"`
	Search   string `form:"search"`
}

// maxPageSize caps page_size so a single request cannot drag the whole table
const maxPageSize = 200

// ToFilter converts the request into a repository filter, clamping page and
// page size to sane values.
func (r ListRequest) ToFilter() shared.Filter {
	filter := shared.Filter{
		Page:     r.Page,
		PageSize: r.PageSize,
		OrderBy:  r.OrderBy,
		OrderDir: r.OrderDir,
		Search:   r.Search,
		Filters:  make(map[string]interface{}),
	}
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize < 1 {
		filter.PageSize = 20
	}
	if filter.PageSize > maxPageSize {
		filter.PageSize = maxPageSize
	}
	return filter
}

// IDRequest binds a UUID path parameter
type IDRequest struct {
	ID string `uri:"id" binding:"required,uuid"`
}
