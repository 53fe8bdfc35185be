// Package domain contains business logic types and errors.
// Domain errors represent business-level failures, NOT HTTP errors.
// They are infrastructure-agnostic and can be mapped to HTTP/CLI output by adapters.
package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors for use with errors.Is().
var (
	// ErrNotFound indicates the requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrValidation indicates business rule validation failed.
	ErrValidation = errors.New("validation failed")

	// ErrUnavailable indicates a required dependency is unavailable.
	ErrUnavailable = errors.New("unavailable")

	// ErrImportParse indicates an imported document is not a quote array.
	ErrImportParse = errors.New("import parse failed")

	// ErrFetch indicates the remote quote list could not be fetched or decoded.
	ErrFetch = errors.New("fetch failed")

	// ErrSubmit indicates a quote could not be submitted to the remote source.
	ErrSubmit = errors.New("submit failed")
)

// NotFoundError provides context for not found errors.
type NotFoundError struct {
	Entity string
	ID     string
}

// Error implements the error interface.
func (e *NotFoundError) Error() string {
	if e.ID != "" {
		return fmt.Sprintf("%s with id %q not found", e.Entity, e.ID)
	}

	return e.Entity + " not found"
}

// Unwrap returns the sentinel error for errors.Is() support.
func (e *NotFoundError) Unwrap() error {
	return ErrNotFound
}

// NewNotFoundError creates a not found error with context.
func NewNotFoundError(entity, id string) error {
	return &NotFoundError{Entity: entity, ID: id}
}

// NoQuotesError signals that a random pick had nothing to choose from.
type NoQuotesError struct {
	Category string
}

// Error implements the error interface.
func (e *NoQuotesError) Error() string {
	if e.Category == "" || e.Category == CategoryAll {
		return "no quotes available"
	}

	return fmt.Sprintf("no quotes available for category %q", e.Category)
}

// Unwrap returns the sentinel error for errors.Is() support.
func (e *NoQuotesError) Unwrap() error {
	return ErrNotFound
}

// NewNoQuotesError creates the "no quotes available" signal for a filter.
func NewNoQuotesError(category string) error {
	return &NoQuotesError{Category: category}
}

// ValidationError provides context for validation errors.
type ValidationError struct {
	Field   string
	Message string
	Value   any
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation failed for %s: %s", e.Field, e.Message)
	}

	return "validation failed: " + e.Message
}

// Unwrap returns the sentinel error for errors.Is() support.
func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// NewValidationError creates a validation error with context.
func NewValidationError(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// NewValidationErrorWithValue creates a validation error including the invalid value.
func NewValidationErrorWithValue(field, message string, value any) error {
	return &ValidationError{Field: field, Message: message, Value: value}
}

// UnavailableError provides context for unavailable errors.
type UnavailableError struct {
	Service string
	Reason  string
}

// Error implements the error interface.
func (e *UnavailableError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("service %q unavailable: %s", e.Service, e.Reason)
	}

	return fmt.Sprintf("service %q unavailable", e.Service)
}

// Unwrap returns the sentinel error for errors.Is() support.
func (e *UnavailableError) Unwrap() error {
	return ErrUnavailable
}

// NewUnavailableError creates an unavailable error with context.
func NewUnavailableError(service, reason string) error {
	return &UnavailableError{Service: service, Reason: reason}
}

// ImportParseError reports why an imported document was rejected.
// Index is the offending array element, or -1 when the document itself is malformed.
type ImportParseError struct {
	Index  int
	Reason string
	Cause  error
}

// Error implements the error interface.
func (e *ImportParseError) Error() string {
	msg := "import rejected: " + e.Reason
	if e.Index >= 0 {
		msg = fmt.Sprintf("import rejected: item %d: %s", e.Index, e.Reason)
	}

	if e.Cause != nil {
		return msg + ": " + e.Cause.Error()
	}

	return msg
}

// Unwrap returns both the sentinel and the underlying cause.
func (e *ImportParseError) Unwrap() []error {
	if e.Cause != nil {
		return []error{ErrImportParse, e.Cause}
	}

	return []error{ErrImportParse}
}

// NewImportParseError creates an error for a malformed import document.
func NewImportParseError(reason string, cause error) error {
	return &ImportParseError{Index: -1, Reason: reason, Cause: cause}
}

// NewImportItemError creates an error for an invalid element of an import array.
func NewImportItemError(index int, reason string) error {
	return &ImportParseError{Index: index, Reason: reason}
}

// FetchError wraps a failure to read the remote quote list.
type FetchError struct {
	Source string
	Cause  error
}

// Error implements the error interface.
func (e *FetchError) Error() string {
	return fmt.Sprintf("fetching quotes from %s: %v", e.Source, e.Cause)
}

// Unwrap returns both the sentinel and the underlying cause.
func (e *FetchError) Unwrap() []error {
	return []error{ErrFetch, e.Cause}
}

// NewFetchError creates a fetch error for the named source.
func NewFetchError(source string, cause error) error {
	return &FetchError{Source: source, Cause: cause}
}

// SubmitError wraps a failure to post a quote to the remote source.
type SubmitError struct {
	Source string
	Quote  Quote
	Cause  error
}

// Error implements the error interface.
func (e *SubmitError) Error() string {
	return fmt.Sprintf("submitting quote to %s: %v", e.Source, e.Cause)
}

// Unwrap returns both the sentinel and the underlying cause.
func (e *SubmitError) Unwrap() []error {
	return []error{ErrSubmit, e.Cause}
}

// NewSubmitError creates a submit error for the named source.
func NewSubmitError(source string, q Quote, cause error) error {
	return &SubmitError{Source: source, Quote: q, Cause: cause}
}

// IsNotFound checks if an error is a not found error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsValidation checks if an error is a validation error.
func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation)
}

// IsUnavailable checks if an error is an unavailable error.
func IsUnavailable(err error) bool {
	return errors.Is(err, ErrUnavailable)
}

// IsImportParse checks if an error is an import parse error.
func IsImportParse(err error) bool {
	return errors.Is(err, ErrImportParse)
}

// IsFetch checks if an error is a fetch error.
func IsFetch(err error) bool {
	return errors.Is(err, ErrFetch)
}

// IsSubmit checks if an error is a submit error.
func IsSubmit(err error) bool {
	return errors.Is(err, ErrSubmit)
}
