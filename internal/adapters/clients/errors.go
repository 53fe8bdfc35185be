// Package clients provides the instrumented HTTP client used to reach the quote server.
package clients

import (
	"errors"
	"fmt"
)

// Infrastructure failures. Adapters translate these into domain errors.
var (
	// ErrCircuitOpen is returned without touching the network while the breaker is open.
	ErrCircuitOpen = errors.New("circuit breaker open")

	// ErrMaxRetriesExceeded wraps the last attempt's error once retries are exhausted.
	ErrMaxRetriesExceeded = errors.New("max retries exceeded")
)

// StatusError is a 5xx response that exhausted the retry budget.
type StatusError struct {
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("server error: HTTP %d", e.StatusCode)
}
