package acl

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/jsamuelsen/quote-manager/internal/adapters/clients"
	"github.com/jsamuelsen/quote-manager/internal/domain"
)

// maxErrorBody bounds how much of an error response is read for a message.
const maxErrorBody = 4 << 10

// ErrorResponse is an error body in either nested ({"error":{...}}) or flat form.
type ErrorResponse struct {
	Error   ErrorDetail `json:"error"`
	Code    string      `json:"code,omitempty"`
	Message string      `json:"message,omitempty"`
}

// ErrorDetail is the nested error object.
type ErrorDetail struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Details map[string]string `json:"details,omitempty"`
}

func (e *ErrorResponse) GetCode() string {
	if e.Error.Code != "" {
		return e.Error.Code
	}

	return e.Code
}

func (e *ErrorResponse) GetMessage() string {
	if e.Error.Message != "" {
		return e.Error.Message
	}

	return e.Message
}

// ParseErrorResponse returns nil when body is empty or carries no code or message.
func ParseErrorResponse(body io.Reader) *ErrorResponse {
	if body == nil {
		return nil
	}

	var errResp ErrorResponse
	if err := json.NewDecoder(io.LimitReader(body, maxErrorBody)).Decode(&errResp); err != nil {
		return nil
	}

	if errResp.GetCode() == "" && errResp.GetMessage() == "" {
		return nil
	}

	return &errResp
}

// MapHTTPError converts a client failure or a non-2xx response into a domain error.
// Exactly one of resp and clientErr is expected to be set.
func MapHTTPError(resp *http.Response, clientErr error, serviceName, operation string) error {
	if clientErr != nil {
		return mapClientError(clientErr, serviceName, operation)
	}

	if resp == nil {
		return domain.NewUnavailableError(serviceName, "no response received")
	}

	if resp.StatusCode >= http.StatusOK && resp.StatusCode < http.StatusMultipleChoices {
		return nil
	}

	return mapStatusCode(resp.StatusCode, ParseErrorResponse(resp.Body), serviceName, operation)
}

func mapClientError(err error, serviceName, operation string) error {
	var statusErr *clients.StatusError

	switch {
	case errors.Is(err, clients.ErrCircuitOpen):
		return domain.NewUnavailableError(serviceName, "circuit breaker open during "+operation)

	case errors.As(err, &statusErr):
		return domain.NewUnavailableError(serviceName,
			fmt.Sprintf("%s failed with HTTP %d after retries", operation, statusErr.StatusCode))

	default:
		return domain.NewUnavailableError(serviceName, fmt.Sprintf("%s failed: %v", operation, err))
	}
}

func mapStatusCode(status int, errResp *ErrorResponse, serviceName, operation string) error {
	message := fmt.Sprintf("%s failed with HTTP %d", operation, status)
	if errResp != nil && errResp.GetMessage() != "" {
		message = errResp.GetMessage()
	}

	switch {
	case status == http.StatusNotFound:
		return domain.NewNotFoundError(serviceName, operation)

	case status == http.StatusBadRequest, status == http.StatusUnprocessableEntity:
		if errResp != nil {
			for field, msg := range errResp.Error.Details {
				return domain.NewValidationError(field, msg)
			}
		}

		return domain.NewValidationError("", message)

	case status == http.StatusTooManyRequests:
		return domain.NewUnavailableError(serviceName, "rate limit exceeded")

	default:
		return domain.NewUnavailableError(serviceName, message)
	}
}
