package dto

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/kormoapp/kormo/internal/domain"
)

// ErrorResponse is the standard error response format.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail contains error code and message.
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// NewErrorResponse creates a new error response.
func NewErrorResponse(code, message string) ErrorResponse {
	return ErrorResponse{
		Error: ErrorDetail{
			Code:    code,
			Message: message,
		},
	}
}

// MapDomainError maps domain errors to HTTP status codes and error codes.
func MapDomainError(err error) (status int, code string, message string) {
	message = err.Error()

	switch {
	// Not found
	case errors.Is(err, domain.ErrTaskNotFound):
		return http.StatusNotFound, "TASK_NOT_FOUND", message
	case errors.Is(err, domain.ErrCategoryNotFound):
		return http.StatusNotFound, "CATEGORY_NOT_FOUND", message

	// Conflicts
	case errors.Is(err, domain.ErrInvalidTransition):
		return http.StatusConflict, "INVALID_TRANSITION", message
	case errors.Is(err, domain.ErrCategoryExists):
		return http.StatusConflict, "CATEGORY_EXISTS", message

	// Validation errors
	case errors.Is(err, domain.ErrTitleRequired),
		errors.Is(err, domain.ErrInvalidStatus),
		errors.Is(err, domain.ErrInvalidPriority),
		errors.Is(err, domain.ErrNotTemplate),
		errors.Is(err, domain.ErrRecurringInstance),
		errors.Is(err, domain.ErrRecurrenceTypeRequired),
		errors.Is(err, domain.ErrInvalidRecurrenceType),
		errors.Is(err, domain.ErrRecurrenceDaysRequired):
		return http.StatusUnprocessableEntity, "VALIDATION_ERROR", message

	// Default: internal server error
	default:
		slog.Error("unmapped domain error returned to client",
			"error", err,
			"error_type", fmt.Sprintf("%T", err),
		)
		return http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error"
	}
}
