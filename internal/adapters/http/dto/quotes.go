package dto

import (
	"time"

	"github.com/jsamuelsen/quote-manager/internal/app"
	"github.com/jsamuelsen/quote-manager/internal/domain"
	"github.com/jsamuelsen/quote-manager/internal/ports"
)

// QuoteResponse is a single quote.
type QuoteResponse struct {
	Text     string `json:"text"`
	Category string `json:"category"`
}

// ToQuoteResponse converts a domain quote.
func ToQuoteResponse(q domain.Quote) QuoteResponse {
	return QuoteResponse{Text: q.Text, Category: q.Category}
}

// ToQuoteResponses converts a slice of domain quotes.
func ToQuoteResponses(quotes []domain.Quote) []QuoteResponse {
	out := make([]QuoteResponse, len(quotes))
	for i, q := range quotes {
		out[i] = ToQuoteResponse(q)
	}

	return out
}

// AddQuoteRequest is the body of POST /quotes.
type AddQuoteRequest struct {
	Text     string `json:"text" validate:"notempty"`
	Category string `json:"category" validate:"notempty"`
}

// ListQuotesRequest holds the query parameters of GET /quotes.
type ListQuotesRequest struct {
	PaginationRequest

	// Category narrows the list; empty or "all" lists everything.
	Category string `form:"category"`
}

// RandomQuoteRequest holds the query parameters of GET /quotes/random.
type RandomQuoteRequest struct {
	// Category overrides the selected filter for this pick.
	Category string `form:"category"`
}

// CategoriesResponse lists the filter options.
type CategoriesResponse struct {
	Categories []string `json:"categories"`
	Selected   string   `json:"selected"`
}

// SelectCategoryRequest is the body of PUT /categories/selected.
type SelectCategoryRequest struct {
	Category string `json:"category"`
}

// SelectCategoryResponse reports the stored filter.
type SelectCategoryResponse struct {
	Selected string `json:"selected"`
}

// ImportResponse reports the outcome of an import.
type ImportResponse struct {
	Imported int    `json:"imported"`
	Total    int    `json:"total"`
	Message  string `json:"message"`
}

// ToImportResponse converts an import result.
func ToImportResponse(r app.ImportResult) ImportResponse {
	return ImportResponse{Imported: r.Imported, Total: r.Total, Message: app.MsgQuotesImported}
}

// SyncResponse describes a finished or in-flight sync.
type SyncResponse struct {
	State      string `json:"state"`
	Fetched    int    `json:"fetched,omitempty"`
	Total      int    `json:"total,omitempty"`
	DurationMS int64  `json:"durationMs,omitempty"`
	Message    string `json:"message,omitempty"`
	Error      string `json:"error,omitempty"`
}

// ToSyncResponse converts a sync result.
func ToSyncResponse(r app.SyncResult, state app.SyncState) SyncResponse {
	resp := SyncResponse{
		State:      string(state),
		Fetched:    r.Fetched,
		Total:      r.Total,
		DurationMS: r.Duration.Milliseconds(),
		Message:    app.MsgQuotesSynced,
	}

	if r.Err != nil {
		resp.Error = r.Err.Error()
	}

	return resp
}

// NotificationResponse is an active user-facing notification.
type NotificationResponse struct {
	ID        string    `json:"id"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"createdAt"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// ToNotificationResponses converts the active notifications.
func ToNotificationResponses(ns []ports.Notification) []NotificationResponse {
	out := make([]NotificationResponse, len(ns))
	for i, n := range ns {
		out[i] = NotificationResponse{ID: n.ID, Message: n.Message, CreatedAt: n.CreatedAt, ExpiresAt: n.ExpiresAt}
	}

	return out
}
