package dto

import (
	"net/http"
	"strings"
)

// Codes not produced by the domain layer
const (
	CodeValidation = "VALIDATION_ERROR"
	CodeInternal   = "INTERNAL_ERROR"
)

// errorCodeHTTPStatus maps domain error codes to HTTP statuses. Codes absent
// here fall back by prefix in GetHTTPStatus.
var errorCodeHTTPStatus = map[string]int{
	"NOT_FOUND":            http.StatusNotFound,
	"ALREADY_EXISTS":       http.StatusConflict,
	"CONCURRENCY_CONFLICT": http.StatusConflict,

	"ALREADY_ISOLATED":       http.StatusConflict,
	"NOT_ISOLATED":           http.StatusConflict,
	"ALREADY_INACTIVE":       http.StatusConflict,
	"ALREADY_IN_MAINTENANCE": http.StatusConflict,
	"NOT_IN_MAINTENANCE":     http.StatusConflict,

	// Another worker holds the per-customer lock
	"LOCKED": http.StatusConflict,

	// Valid request, but the customer record cannot support the operation
	"NO_ROUTER_ASSIGNED": http.StatusUnprocessableEntity,
	"NO_STATIC_IP":       http.StatusUnprocessableEntity,
	"INVALID_STATE":      http.StatusUnprocessableEntity,

	CodeValidation: http.StatusBadRequest,
	CodeInternal:   http.StatusInternalServerError,
}

// GetHTTPStatus returns the HTTP status for a domain error code. INVALID_*
// codes are client mistakes; anything unknown is treated as internal.
func GetHTTPStatus(code string) int {
	if status, ok := errorCodeHTTPStatus[code]; ok {
		return status
	}
	if strings.HasPrefix(code, "INVALID_") {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
