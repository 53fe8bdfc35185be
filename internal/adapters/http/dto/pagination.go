package dto

import (
	"encoding/base64"
	"encoding/json"
	"errors"
)

// DefaultLimit is the default number of items per page.
const DefaultLimit = 20

// MaxLimit is the maximum allowed items per page.
const MaxLimit = 100

// Cursor errors.
var (
	// ErrInvalidCursor is returned when cursor decoding fails.
	ErrInvalidCursor = errors.New("invalid cursor")

	// ErrNoCursor signals a first page request.
	ErrNoCursor = errors.New("no cursor provided")
)

// PaginationRequest represents pagination parameters from the request.
type PaginationRequest struct {
	// Cursor is an opaque string from a previous response's NextCursor.
	Cursor string `form:"cursor"`

	// Limit is the maximum number of items to return (1-100, default 20).
	Limit int `form:"limit" validate:"omitempty,gte=1,lte=100"`
}

// GetLimit returns the limit with defaults applied.
func (p *PaginationRequest) GetLimit() int {
	if p.Limit <= 0 {
		return DefaultLimit
	}

	return min(p.Limit, MaxLimit)
}

// DecodeCursor decodes the cursor string into CursorData.
// Returns ErrNoCursor if cursor is empty.
func (p *PaginationRequest) DecodeCursor() (*CursorData, error) {
	return DecodeCursor(p.Cursor)
}

// PaginatedResponse is a generic paginated response structure.
type PaginatedResponse[T any] struct {
	Items      []T    `json:"items"`
	NextCursor string `json:"nextCursor,omitempty"`
	HasMore    bool   `json:"hasMore"`
	Total      int    `json:"total"`
}

// CursorData is the position encoded in a pagination cursor.
// The quote list has no identifiers, so positions are list offsets scoped to
// the filter the first page was requested with.
type CursorData struct {
	Offset   int    `json:"o"`
	Category string `json:"c,omitempty"`
}

// EncodeCursor encodes cursor data to a base64 string.
func EncodeCursor(data *CursorData) string {
	if data == nil {
		return ""
	}

	jsonBytes, err := json.Marshal(data)
	if err != nil {
		return ""
	}

	return base64.URLEncoding.EncodeToString(jsonBytes)
}

// DecodeCursor decodes a base64 cursor string to cursor data.
// Returns ErrNoCursor if the encoded string is empty.
func DecodeCursor(encoded string) (*CursorData, error) {
	if encoded == "" {
		return nil, ErrNoCursor
	}

	jsonBytes, err := base64.URLEncoding.DecodeString(encoded)
	if err != nil {
		return nil, ErrInvalidCursor
	}

	var data CursorData
	if err := json.Unmarshal(jsonBytes, &data); err != nil || data.Offset < 0 {
		return nil, ErrInvalidCursor
	}

	return &data, nil
}

// Paginate returns the page of items starting at offset.
func Paginate[T any](items []T, offset, limit int, category string) *PaginatedResponse[T] {
	total := len(items)
	offset = min(max(offset, 0), total)
	end := min(offset+limit, total)

	page := make([]T, end-offset)
	copy(page, items[offset:end])

	resp := &PaginatedResponse[T]{
		Items:   page,
		HasMore: end < total,
		Total:   total,
	}

	if resp.HasMore {
		resp.NextCursor = EncodeCursor(&CursorData{Offset: end, Category: category})
	}

	return resp
}
