package domain

import "strings"

const (
	// CategoryAll is the filter sentinel that matches every quote.
	CategoryAll = "all"

	// CategoryServer is assigned to every quote sourced from the remote server.
	CategoryServer = "Server"
)

// Quote is a quotation with a user-assigned category.
// It has no identifier: two quotes are the same quote when their Text is equal.
type Quote struct {
	// Text is the quotation itself. Never empty.
	Text string `json:"text"`

	// Category groups quotes for filtering.
	Category string `json:"category"`
}

// NewQuote validates and builds a quote from user input.
// Surrounding whitespace is trimmed from both fields.
func NewQuote(text, category string) (Quote, error) {
	text = strings.TrimSpace(text)
	category = strings.TrimSpace(category)

	if text == "" {
		return Quote{}, NewValidationError("text", "must not be empty")
	}

	if category == "" {
		return Quote{}, NewValidationError("category", "must not be empty")
	}

	return Quote{Text: text, Category: category}, nil
}

// ServerQuote builds the local representation of a remotely sourced item.
func ServerQuote(title string) Quote {
	return Quote{Text: title, Category: CategoryServer}
}

// Matches reports whether the quote passes the category filter.
func (q Quote) Matches(filter string) bool {
	return filter == CategoryAll || q.Category == filter
}

// SeedQuotes returns the quotes a fresh installation starts with.
func SeedQuotes() []Quote {
	return []Quote{
		{Text: "The only limit to our realization of tomorrow is our doubts of today.", Category: "Motivation"},
		{Text: "In the end, we will remember not the words of our enemies, but the silence of our friends.", Category: "Wisdom"},
		{Text: "Life is 10% what happens to us and 90% how we react to it.", Category: "Life"},
	}
}

// Merge combines server and local quotes, server first, keeping the first
// occurrence of every text. A local quote shadowed by a server quote with the
// same text is dropped; locally unique quotes survive in their original order.
// Merge(s, Merge(s, l)) == Merge(s, l).
func Merge(server, local []Quote) []Quote {
	merged := make([]Quote, 0, len(server)+len(local))
	seen := make(map[string]struct{}, len(server)+len(local))

	for _, list := range [][]Quote{server, local} {
		for _, q := range list {
			if _, dup := seen[q.Text]; dup {
				continue
			}

			seen[q.Text] = struct{}{}
			merged = append(merged, q)
		}
	}

	return merged
}

// Categories returns the distinct categories in order of first appearance.
func Categories(quotes []Quote) []string {
	categories := make([]string, 0)
	seen := make(map[string]struct{})

	for _, q := range quotes {
		if _, ok := seen[q.Category]; ok {
			continue
		}

		seen[q.Category] = struct{}{}
		categories = append(categories, q.Category)
	}

	return categories
}

// Filter returns the quotes that pass the category filter.
func Filter(quotes []Quote, filter string) []Quote {
	if filter == CategoryAll {
		return quotes
	}

	matched := make([]Quote, 0, len(quotes))
	for _, q := range quotes {
		if q.Matches(filter) {
			matched = append(matched, q)
		}
	}

	return matched
}
