// Package dto provides Data Transfer Objects for HTTP request/response handling.
package dto

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/trace"

	"github.com/jsamuelsen/quote-manager/internal/domain"
	"github.com/jsamuelsen/quote-manager/internal/platform/logging"
)

// ErrorResponse is the standard error envelope for all error responses.
type ErrorResponse struct {
	Error   ErrorDetail `json:"error"`
	TraceID string      `json:"traceId,omitempty"`
}

// ErrorDetail contains the error information.
type ErrorDetail struct {
	// Code is a machine-readable error code (e.g., "NO_QUOTES", "VALIDATION_ERROR").
	Code string `json:"code"`

	// Message is a human-readable error message.
	Message string `json:"message"`

	// Details carries field-level messages for validation failures.
	Details map[string]string `json:"details,omitempty"`
}

// Error codes for machine-readable error identification.
const (
	ErrorCodeNotFound        = "NOT_FOUND"
	ErrorCodeNoQuotes        = "NO_QUOTES"
	ErrorCodeValidation      = "VALIDATION_ERROR"
	ErrorCodeImportParse     = "IMPORT_PARSE_ERROR"
	ErrorCodeUnavailable     = "SERVICE_UNAVAILABLE"
	ErrorCodeInternal        = "INTERNAL_ERROR"
	ErrorCodeTimeout         = "TIMEOUT"
	ErrorCodeBadRequest      = "BAD_REQUEST"
	ErrorCodePayloadTooLarge = "PAYLOAD_TOO_LARGE"
)

// NewErrorResponse creates a new error response with the given code and message.
func NewErrorResponse(code, message string) *ErrorResponse {
	return &ErrorResponse{
		Error: ErrorDetail{
			Code:    code,
			Message: message,
		},
	}
}

// NewErrorResponseWithDetails creates an error response with additional details.
func NewErrorResponseWithDetails(code, message string, details map[string]string) *ErrorResponse {
	return &ErrorResponse{
		Error: ErrorDetail{
			Code:    code,
			Message: message,
			Details: details,
		},
	}
}

// WithTraceID adds a trace ID to the error response.
func (e *ErrorResponse) WithTraceID(traceID string) *ErrorResponse {
	e.TraceID = traceID
	return e
}

// HTTPStatusFromCode maps error codes to HTTP status codes.
func HTTPStatusFromCode(code string) int {
	switch code {
	case ErrorCodeNotFound, ErrorCodeNoQuotes:
		return http.StatusNotFound
	case ErrorCodeValidation, ErrorCodeImportParse, ErrorCodeBadRequest:
		return http.StatusBadRequest
	case ErrorCodePayloadTooLarge:
		return http.StatusRequestEntityTooLarge
	case ErrorCodeUnavailable:
		return http.StatusServiceUnavailable
	case ErrorCodeTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// MapDomainError maps a domain error to an HTTP status code and error response.
// Unknown errors become 500 with a generic message.
func MapDomainError(err error) (int, *ErrorResponse) {
	var noQuotes *domain.NoQuotesError

	switch {
	case err == nil:
		return http.StatusOK, nil

	case errors.As(err, &noQuotes):
		return http.StatusNotFound, NewErrorResponse(ErrorCodeNoQuotes, err.Error())

	case domain.IsNotFound(err):
		return http.StatusNotFound, NewErrorResponse(ErrorCodeNotFound, err.Error())

	case domain.IsValidation(err):
		resp := NewErrorResponse(ErrorCodeValidation, err.Error())

		var validationErr *domain.ValidationError
		if errors.As(err, &validationErr) && validationErr.Field != "" {
			resp.Error.Details = map[string]string{validationErr.Field: validationErr.Message}
		}

		return http.StatusBadRequest, resp

	case domain.IsImportParse(err):
		return http.StatusBadRequest, NewErrorResponse(ErrorCodeImportParse, err.Error())

	case domain.IsUnavailable(err), domain.IsFetch(err), domain.IsSubmit(err):
		return http.StatusServiceUnavailable, NewErrorResponse(ErrorCodeUnavailable, err.Error())

	default:
		return http.StatusInternalServerError, NewErrorResponse(ErrorCodeInternal, "an internal error occurred")
	}
}

// HandleError writes the mapped error response. Internal errors are logged
// with their full text since the client only sees a generic message.
func HandleError(c *gin.Context, err error) {
	status, resp := MapDomainError(err)
	resp.TraceID = GetTraceID(c)

	if status == http.StatusInternalServerError {
		logging.FromContext(c.Request.Context()).ErrorContext(c.Request.Context(), "internal error",
			slog.Any("error", err),
			slog.String("trace_id", resp.TraceID),
		)
	}

	c.JSON(status, resp)
}

// RespondWithCode writes an adapter-level error that did not come from the domain.
func RespondWithCode(c *gin.Context, code, message string) {
	c.JSON(HTTPStatusFromCode(code), NewErrorResponse(code, message).WithTraceID(GetTraceID(c)))
}

// RespondWithValidationErrors writes a 400 response with field-level validation errors.
func RespondWithValidationErrors(c *gin.Context, fieldErrors map[string]string) {
	resp := NewErrorResponseWithDetails(ErrorCodeValidation, "request validation failed", fieldErrors)
	c.JSON(http.StatusBadRequest, resp.WithTraceID(GetTraceID(c)))
}

// AbortWithCode aborts the handler chain with an adapter-level error.
func AbortWithCode(c *gin.Context, code, message string) {
	c.AbortWithStatusJSON(HTTPStatusFromCode(code), NewErrorResponse(code, message).WithTraceID(GetTraceID(c)))
}

// ContextKeyTraceID is the gin key consulted when no span is active.
const ContextKeyTraceID = "trace_id"

// GetTraceID returns the active span's trace ID, falling back to a trace ID
// stored on the gin context. Returns "" when neither is present.
func GetTraceID(c *gin.Context) string {
	if c.Request != nil {
		if sc := trace.SpanFromContext(c.Request.Context()).SpanContext(); sc.HasTraceID() {
			return sc.TraceID().String()
		}
	}

	if id, ok := c.Get(ContextKeyTraceID); ok {
		if s, ok := id.(string); ok {
			return s
		}
	}

	return ""
}
