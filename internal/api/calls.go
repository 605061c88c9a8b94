package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
)

// Typed call helpers. Methods cannot be generic, so these are package
// functions over a *Client.

func decode[T any](raw json.RawMessage) (T, error) {
	var out T
	if len(raw) == 0 {
		return out, nil
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return out, &Error{Message: "unreadable server response", Cause: err}
	}
	return out, nil
}

// Get fetches and decodes a single resource.
func Get[T any](ctx context.Context, c *Client, path string, query url.Values, fallback string) (T, error) {
	raw, err := c.Do(ctx, http.MethodGet, path, nil, query, fallback)
	if err != nil {
		var zero T
		return zero, err
	}
	return decode[T](raw)
}

// FetchPage fetches a list endpoint and normalizes either response shape.
func FetchPage[T any](ctx context.Context, c *Client, path string, query url.Values, fallback string) (Page[T], error) {
	raw, err := c.Do(ctx, http.MethodGet, path, nil, query, fallback)
	if err != nil {
		return Page[T]{}, err
	}
	page, err := NormalizePage[T](raw)
	if err != nil {
		return Page[T]{}, &Error{Message: fallback, Cause: err}
	}
	return page, nil
}

// Post creates a resource and decodes the server's representation of it.
func Post[T any](ctx context.Context, c *Client, path string, body any, fallback string) (T, error) {
	raw, err := c.Do(ctx, http.MethodPost, path, body, nil, fallback)
	if err != nil {
		var zero T
		return zero, err
	}
	return decode[T](raw)
}

// Patch partially updates a resource and decodes the updated record.
func Patch[T any](ctx context.Context, c *Client, path string, body any, fallback string) (T, error) {
	raw, err := c.Do(ctx, http.MethodPatch, path, body, nil, fallback)
	if err != nil {
		var zero T
		return zero, err
	}
	return decode[T](raw)
}

// Delete removes a resource. A 204 with no body is the happy path.
func Delete(ctx context.Context, c *Client, path string, fallback string) error {
	_, err := c.Do(ctx, http.MethodDelete, path, nil, nil, fallback)
	return err
}
