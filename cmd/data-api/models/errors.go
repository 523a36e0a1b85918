package models

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/msdss/data-api/pkg/filter"
)

// APIError is a client-correctable failure raised by the guard or a manager.
// The transport layer maps it to the HTTP status in Status; everything else
// surfaces as an internal server error.
type APIError struct {
	Status  int    `json:"status"`
	Code    string `json:"error"`
	Message string `json:"message"`
}

func (e *APIError) Error() string {
	return e.Message
}

func NewMalformedFilter(detail string) *APIError {
	return &APIError{
		Status:  http.StatusBadRequest,
		Code:    "malformed_filter",
		Message: detail,
	}
}

func NewUnsupportedOperator(operator string) *APIError {
	return &APIError{
		Status:  http.StatusBadRequest,
		Code:    "unsupported_operator",
		Message: fmt.Sprintf("operator %s is not supported - valid operators are: %s", operator, strings.Join(filter.SupportedOperators(), ", ")),
	}
}

func NewUnsupportedAggregate(function string, supported []string) *APIError {
	return &APIError{
		Status:  http.StatusBadRequest,
		Code:    "unsupported_operator",
		Message: fmt.Sprintf("aggregate function %s is not supported - valid functions are: %s", function, strings.Join(supported, ", ")),
	}
}

func NewInvalidSortOrder(direction string) *APIError {
	return &APIError{
		Status:  http.StatusBadRequest,
		Code:    "malformed_filter",
		Message: fmt.Sprintf("sort direction %s is not valid - use asc or desc", direction),
	}
}

func NewForbidden(dataset string) *APIError {
	return &APIError{
		Status:  http.StatusUnauthorized,
		Code:    "forbidden",
		Message: fmt.Sprintf("access to dataset %s is not allowed", dataset),
	}
}

func NewNotFound(dataset string) *APIError {
	return &APIError{
		Status:  http.StatusNotFound,
		Code:    "not_found",
		Message: "dataset not found",
	}
}

func NewAlreadyExists(dataset string) *APIError {
	return &APIError{
		Status:  http.StatusBadRequest,
		Code:    "already_exists",
		Message: "dataset already exists",
	}
}

func NewMissingFilter() *APIError {
	return &APIError{
		Status:  http.StatusBadRequest,
		Code:    "missing_filter",
		Message: "a where filter is required for this operation unless the apply-to-all flag is set",
	}
}

func NewUnknownColumn(column string, dataset string) *APIError {
	return &APIError{
		Status:  http.StatusBadRequest,
		Code:    "unknown_column",
		Message: fmt.Sprintf("column %s does not exist in dataset %s", column, dataset),
	}
}

func NewLengthMismatch(first string, second string) *APIError {
	return &APIError{
		Status:  http.StatusBadRequest,
		Code:    "length_mismatch",
		Message: fmt.Sprintf("parameters %s and %s must have the same number of elements", first, second),
	}
}

// NewConfigurationError is raised at wiring time only, never while serving a
// request. Status is carried for uniformity but is not sent on the wire.
func NewConfigurationError(detail string) *APIError {
	return &APIError{
		Status:  http.StatusInternalServerError,
		Code:    "configuration_error",
		Message: detail,
	}
}
