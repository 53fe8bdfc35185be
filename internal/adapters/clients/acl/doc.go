// Package acl is the anti-corruption layer between the quote server's wire
// format and the domain.
//
// External DTOs stay unexported in this package. Every failure leaving it is a
// domain error:
//   - transport errors, open circuits and exhausted retries → [domain.ErrUnavailable]
//   - 404 → [domain.ErrNotFound]
//   - 400/422 → [domain.ErrValidation]
//   - 429 and 5xx → [domain.ErrUnavailable]
//   - undecodable bodies → [domain.ErrFetch]
//
// [PostsSource] implements ports.RemoteSource over a JSONPlaceholder-style
// /posts resource: GET lists posts whose titles become server quotes, POST
// submits a new quote.
package acl
