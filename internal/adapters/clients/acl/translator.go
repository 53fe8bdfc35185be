package acl

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/jsamuelsen/quote-manager/internal/adapters/clients"
)

// BaseAdapter holds what every quote server adapter needs.
type BaseAdapter struct {
	client      *clients.Client
	serviceName string
}

// NewBaseAdapter creates a base adapter reporting errors as serviceName.
func NewBaseAdapter(client *clients.Client, serviceName string) BaseAdapter {
	return BaseAdapter{
		client:      client,
		serviceName: serviceName,
	}
}

// ServiceName returns the name used in domain errors.
func (a *BaseAdapter) ServiceName() string {
	return a.serviceName
}

// Get performs a GET and returns the body of a 2xx response. The caller closes it.
func (a *BaseAdapter) Get(ctx context.Context, path, operation string) (io.ReadCloser, error) {
	resp, err := a.client.Get(ctx, path)

	return a.bodyOrError(resp, err, operation)
}

// Post performs a POST and returns the body of a 2xx response. The caller closes it.
func (a *BaseAdapter) Post(ctx context.Context, path string, body io.Reader, operation string, opts ...clients.RequestOption) (io.ReadCloser, error) {
	resp, err := a.client.Post(ctx, path, body, opts...)

	return a.bodyOrError(resp, err, operation)
}

func (a *BaseAdapter) bodyOrError(resp *http.Response, err error, operation string) (io.ReadCloser, error) {
	if err != nil {
		return nil, MapHTTPError(nil, err, a.serviceName, operation)
	}

	if resp.StatusCode >= http.StatusMultipleChoices {
		defer func() { _ = resp.Body.Close() }()

		return nil, MapHTTPError(resp, nil, a.serviceName, operation)
	}

	return resp.Body, nil
}

// DecodeResponse decodes a JSON body into T and closes it.
func DecodeResponse[T any](body io.ReadCloser) (T, error) {
	var result T

	if body == nil {
		return result, errors.New("response body is nil")
	}
	defer func() { _ = body.Close() }()

	if err := json.NewDecoder(body).Decode(&result); err != nil {
		return result, fmt.Errorf("decoding response: %w", err)
	}

	return result, nil
}

// Translator converts one external DTO into a domain value.
type Translator[E, D any] func(ext E) (D, error)

// TranslateSlice applies translate to every item and stops at the first error.
func TranslateSlice[E, D any](items []E, translate Translator[E, D]) ([]D, error) {
	result := make([]D, 0, len(items))

	for i, item := range items {
		translated, err := translate(item)
		if err != nil {
			return nil, fmt.Errorf("translating item %d: %w", i, err)
		}

		result = append(result, translated)
	}

	return result, nil
}
