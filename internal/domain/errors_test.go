package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSentinelErrors_AreDistinct(t *testing.T) {
	sentinels := []error{
		ErrNotFound,
		ErrValidation,
		ErrUnavailable,
		ErrImportParse,
		ErrFetch,
		ErrSubmit,
	}

	for i, a := range sentinels {
		for j, b := range sentinels {
			if i != j {
				assert.NotErrorIs(t, a, b,
					"sentinels should be distinct: %v vs %v", a, b)
			}
		}
	}
}

func TestNotFoundError(t *testing.T) {
	tests := []struct {
		name        string
		entity      string
		id          string
		expectedMsg string
	}{
		{
			name:        "with entity and ID",
			entity:      "quote",
			id:          "123",
			expectedMsg: `quote with id "123" not found`,
		},
		{
			name:        "with entity only",
			entity:      "quote",
			id:          "",
			expectedMsg: "quote not found",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewNotFoundError(tt.entity, tt.id)

			assert.Equal(t, tt.expectedMsg, err.Error())
			require.ErrorIs(t, err, ErrNotFound)

			var notFound *NotFoundError
			require.ErrorAs(t, err, &notFound)
			assert.Equal(t, tt.entity, notFound.Entity)
			assert.Equal(t, tt.id, notFound.ID)
		})
	}
}

func TestNoQuotesError(t *testing.T) {
	tests := []struct {
		name        string
		category    string
		expectedMsg string
	}{
		{"all filter", CategoryAll, "no quotes available"},
		{"empty filter", "", "no quotes available"},
		{"named category", "Wisdom", `no quotes available for category "Wisdom"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewNoQuotesError(tt.category)

			assert.Equal(t, tt.expectedMsg, err.Error())
			assert.True(t, IsNotFound(err))

			var noQuotes *NoQuotesError
			require.ErrorAs(t, err, &noQuotes)
			assert.Equal(t, tt.category, noQuotes.Category)
		})
	}
}

func TestValidationError(t *testing.T) {
	tests := []struct {
		name        string
		field       string
		message     string
		expectedMsg string
	}{
		{
			name:        "with field",
			field:       "text",
			message:     "must not be empty",
			expectedMsg: "validation failed for text: must not be empty",
		},
		{
			name:        "without field",
			field:       "",
			message:     "general validation error",
			expectedMsg: "validation failed: general validation error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewValidationError(tt.field, tt.message)

			assert.Equal(t, tt.expectedMsg, err.Error())
			require.ErrorIs(t, err, ErrValidation)

			var validation *ValidationError
			require.ErrorAs(t, err, &validation)
			assert.Equal(t, tt.field, validation.Field)
			assert.Equal(t, tt.message, validation.Message)
		})
	}
}

func TestValidationErrorWithValue(t *testing.T) {
	err := NewValidationErrorWithValue("category", "unknown", "Nope")

	var validation *ValidationError
	require.ErrorAs(t, err, &validation)
	assert.Equal(t, "Nope", validation.Value)
}

func TestUnavailableError(t *testing.T) {
	tests := []struct {
		name        string
		service     string
		reason      string
		expectedMsg string
	}{
		{
			name:        "with reason",
			service:     "quote-server",
			reason:      "connection timeout",
			expectedMsg: `service "quote-server" unavailable: connection timeout`,
		},
		{
			name:        "without reason",
			service:     "storage",
			reason:      "",
			expectedMsg: `service "storage" unavailable`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewUnavailableError(tt.service, tt.reason)

			assert.Equal(t, tt.expectedMsg, err.Error())
			require.ErrorIs(t, err, ErrUnavailable)

			var unavailable *UnavailableError
			require.ErrorAs(t, err, &unavailable)
			assert.Equal(t, tt.service, unavailable.Service)
			assert.Equal(t, tt.reason, unavailable.Reason)
		})
	}
}

func TestImportParseError(t *testing.T) {
	cause := errors.New("unexpected EOF")

	t.Run("document level keeps cause", func(t *testing.T) {
		err := NewImportParseError("invalid JSON", cause)

		assert.Equal(t, "import rejected: invalid JSON: unexpected EOF", err.Error())
		assert.True(t, IsImportParse(err))
		require.ErrorIs(t, err, cause)

		var parseErr *ImportParseError
		require.ErrorAs(t, err, &parseErr)
		assert.Equal(t, -1, parseErr.Index)
	})

	t.Run("item level reports index", func(t *testing.T) {
		err := NewImportItemError(2, "text is required")

		assert.Equal(t, "import rejected: item 2: text is required", err.Error())
		assert.True(t, IsImportParse(err))
		assert.False(t, IsValidation(err))
	})
}

func TestFetchAndSubmitErrors(t *testing.T) {
	cause := NewUnavailableError("quote-server", "HTTP 503")

	fetchErr := NewFetchError("quote-server", cause)
	assert.True(t, IsFetch(fetchErr))
	assert.True(t, IsUnavailable(fetchErr))
	assert.False(t, IsSubmit(fetchErr))
	assert.Contains(t, fetchErr.Error(), "fetching quotes from quote-server")

	q := Quote{Text: "A", Category: "B"}
	submitErr := NewSubmitError("quote-server", q, cause)
	assert.True(t, IsSubmit(submitErr))
	assert.True(t, IsUnavailable(submitErr))
	assert.False(t, IsFetch(submitErr))

	var typed *SubmitError
	require.ErrorAs(t, submitErr, &typed)
	assert.Equal(t, q, typed.Quote)
}

func TestIsHelpers(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		isFunc   func(error) bool
		expected bool
	}{
		{"IsNotFound with NotFoundError", NewNotFoundError("quote", "123"), IsNotFound, true},
		{"IsNotFound with NoQuotesError", NewNoQuotesError("x"), IsNotFound, true},
		{"IsNotFound with wrapped", fmt.Errorf("wrapped: %w", ErrNotFound), IsNotFound, true},
		{"IsNotFound with other error", ErrValidation, IsNotFound, false},
		{"IsNotFound with nil", nil, IsNotFound, false},

		{"IsValidation with ValidationError", NewValidationError("text", "empty"), IsValidation, true},
		{"IsValidation with wrapped", fmt.Errorf("wrapped: %w", ErrValidation), IsValidation, true},
		{"IsValidation with other error", ErrNotFound, IsValidation, false},
		{"IsValidation with nil", nil, IsValidation, false},

		{"IsUnavailable with UnavailableError", NewUnavailableError("db", "timeout"), IsUnavailable, true},
		{"IsUnavailable with other error", ErrNotFound, IsUnavailable, false},

		{"IsImportParse with wrapped", fmt.Errorf("import: %w", NewImportItemError(0, "bad")), IsImportParse, true},
		{"IsImportParse with nil", nil, IsImportParse, false},

		{"IsFetch with sentinel", ErrFetch, IsFetch, true},
		{"IsSubmit with sentinel", ErrSubmit, IsSubmit, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.isFunc(tt.err))
		})
	}
}
