package common

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
)

// APIError is the body of every error response. StatusCode only selects the HTTP status.
type APIError struct {
	StatusCode int         `json:"-"`
	Code       string      `json:"code"`
	Message    string      `json:"message"`
	Details    interface{} `json:"details,omitempty"`
}

func (e *APIError) Error() string {
	if e.Details != nil {
		return fmt.Sprintf("%s (%d): %s: %v", e.Code, e.StatusCode, e.Message, e.Details)
	}
	return fmt.Sprintf("%s (%d): %s", e.Code, e.StatusCode, e.Message)
}

func NewAPIError(statusCode int, code, message string) *APIError {
	return &APIError{StatusCode: statusCode, Code: code, Message: message}
}

// WithDetails returns a copy of e carrying details. Sentinels are shared, so never mutate them.
func (e *APIError) WithDetails(details interface{}) *APIError {
	cp := *e
	cp.Details = details
	return &cp
}

var (
	ErrBadRequest         = NewAPIError(http.StatusBadRequest, "BAD_REQUEST", "The request is invalid.")
	ErrUnauthorized       = NewAPIError(http.StatusUnauthorized, "UNAUTHORIZED", "A valid access token is required.")
	ErrNotFound           = NewAPIError(http.StatusNotFound, "NOT_FOUND", "The requested resource could not be found.")
	ErrMethodNotAllowed   = NewAPIError(http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "The method is not allowed for the requested URL.")
	ErrInternalServer     = NewAPIError(http.StatusInternalServerError, "INTERNAL_SERVER_ERROR", "An unexpected error occurred on the server.")
	ErrServiceUnavailable = NewAPIError(http.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", "A backing service is unavailable.")
)

func IsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

// NewValidationAPIError is the 422 returned when a well-formed body breaks a field rule.
func NewValidationAPIError(details interface{}) *APIError {
	return &APIError{
		StatusCode: http.StatusUnprocessableEntity,
		Code:       "VALIDATION_ERROR",
		Message:    "Input validation failed.",
		Details:    details,
	}
}

// FormatValidationErrors maps each failing field (by JSON name) to a readable message.
func FormatValidationErrors(errs validator.ValidationErrors) map[string]string {
	out := make(map[string]string, len(errs))
	for _, e := range errs {
		field := e.Field()
		switch e.Tag() {
		case "required":
			out[field] = fmt.Sprintf("%s is required.", field)
		case "min":
			out[field] = fmt.Sprintf("%s must be at least %s characters long.", field, e.Param())
		case "max":
			out[field] = fmt.Sprintf("%s may not be longer than %s characters.", field, e.Param())
		case "gt":
			out[field] = fmt.Sprintf("%s must be greater than %s.", field, e.Param())
		case "gte":
			out[field] = fmt.Sprintf("%s must not be below %s.", field, e.Param())
		case "oneof":
			out[field] = fmt.Sprintf("%s must be one of: %s.", field, e.Param())
		default:
			out[field] = fmt.Sprintf("%s failed the '%s' rule.", field, e.Tag())
		}
	}
	return out
}
