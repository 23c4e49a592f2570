package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/FruitsAI/orange-client/internal/core/domain"
)

// Doer is satisfied by *Gateway; API modules depend on it rather than on the
// concrete gateway so they can be tested against a stub.
type Doer interface {
	Do(ctx context.Context, req Request) (*domain.Envelope[json.RawMessage], error)
}

// Send issues one call and decodes the envelope data into T. A null or
// missing data field leaves Data at its zero value.
func Send[T any](ctx context.Context, d Doer, method, path string, body any, query url.Values) (*domain.Envelope[T], error) {
	raw, err := d.Do(ctx, Request{Method: method, Path: path, Body: body, Query: query})
	if err != nil {
		return nil, err
	}

	out := &domain.Envelope[T]{Code: raw.Code, Message: raw.Message}
	if len(raw.Data) == 0 || string(raw.Data) == "null" {
		return out, nil
	}
	if err := json.Unmarshal(raw.Data, &out.Data); err != nil {
		return nil, &domain.TransportError{
			Status: http.StatusOK,
			Err:    fmt.Errorf("decode %s %s data: %w", method, path, err),
		}
	}
	return out, nil
}

// Get is Send with GET and no body.
func Get[T any](ctx context.Context, d Doer, path string, query url.Values) (*domain.Envelope[T], error) {
	return Send[T](ctx, d, http.MethodGet, path, nil, query)
}

// Post is Send with POST.
func Post[T any](ctx context.Context, d Doer, path string, body any) (*domain.Envelope[T], error) {
	return Send[T](ctx, d, http.MethodPost, path, body, nil)
}

// Put is Send with PUT.
func Put[T any](ctx context.Context, d Doer, path string, body any) (*domain.Envelope[T], error) {
	return Send[T](ctx, d, http.MethodPut, path, body, nil)
}

// Delete is Send with DELETE.
func Delete[T any](ctx context.Context, d Doer, path string) (*domain.Envelope[T], error) {
	return Send[T](ctx, d, http.MethodDelete, path, nil, nil)
}
