// Package api is the HTTP gateway to the remote finance API: one
// configured client that attaches credentials, renews them once on a 401,
// and normalizes every failure into *Error.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"findash/internal/log"
	"findash/internal/token"
)

// Navigator abstracts the hard redirects the browser port performs at
// success/failure boundaries. Injected, never ambient.
type Navigator interface {
	NavigateTo(path string)
}

// NavigatorFunc adapts a function to the Navigator interface.
type NavigatorFunc func(path string)

func (f NavigatorFunc) NavigateTo(path string) { f(path) }

// NopNavigator ignores navigation. Useful for workers and tests.
var NopNavigator Navigator = NavigatorFunc(func(string) {})

type Client struct {
	httpClient *http.Client
	baseURL    string
	tokens     token.Store
	nav        Navigator
	log        *log.Logger
}

func NewClient(baseURL string, timeout time.Duration, tokens token.Store, nav Navigator, logger *log.Logger) *Client {
	if nav == nil {
		nav = NopNavigator
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    strings.TrimRight(baseURL, "/"),
		tokens:     tokens,
		nav:        nav,
		log:        logger.WithComponent("gateway"),
	}
}

// request is the in-flight descriptor. replays counts renewal replays
// already consumed; do never exceeds maxReplays.
type request struct {
	method   string
	path     string
	body     any
	query    url.Values
	fallback string
	replays  int
}

const maxReplays = 1

// Do issues a request and returns the raw response body on any 2xx.
// fallback is the message used when the error body yields nothing
// readable.
func (c *Client) Do(ctx context.Context, method, path string, body any, query url.Values, fallback string) (json.RawMessage, error) {
	return c.do(ctx, &request{
		method:   method,
		path:     path,
		body:     body,
		query:    query,
		fallback: fallback,
	})
}

func (c *Client) do(ctx context.Context, req *request) (json.RawMessage, error) {
	var payload io.Reader
	if req.body != nil {
		encoded, err := json.Marshal(req.body)
		if err != nil {
			return nil, &Error{Message: req.fallback, Cause: fmt.Errorf("encode request body: %w", err)}
		}
		payload = bytes.NewReader(encoded)
	}

	target := c.baseURL + req.path
	if q := cleanQuery(req.query); len(q) > 0 {
		target += "?" + q.Encode()
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.method, target, payload)
	if err != nil {
		return nil, &Error{Message: req.fallback, Cause: err}
	}
	httpReq.Header.Set("Accept", "application/json")
	if req.body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	if !isPublic(req.path) {
		if access := c.tokens.Access(); access != "" {
			httpReq.Header.Set("Authorization", "Bearer "+access)
		}
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, &Error{Message: req.fallback, Cause: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &Error{Status: resp.StatusCode, Message: req.fallback, Cause: err}
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return raw, nil
	}

	if resp.StatusCode == http.StatusUnauthorized && !isPublic(req.path) && req.replays < maxReplays {
		req.replays++
		if c.renewAccess(ctx) {
			c.log.Debug("replaying request after credential renewal", "method", req.method, "path", req.path)
			return c.do(ctx, req)
		}
		// Renewal is terminal: drop credentials and push the caller to
		// the login boundary, then surface the original failure.
		if err := c.tokens.Clear(); err != nil {
			c.log.Error("failed to clear credentials", "error", err)
		}
		c.nav.NavigateTo(PathLogin)
	}

	return nil, &Error{Status: resp.StatusCode, Message: messageFromBody(raw, req.fallback)}
}

// renewAccess exchanges the refresh credential for a new access token and
// stores it. Returns false when no refresh credential is held or the
// exchange fails.
func (c *Client) renewAccess(ctx context.Context) bool {
	refresh := c.tokens.Refresh()
	if refresh == "" {
		return false
	}

	raw, err := c.do(ctx, &request{
		method:   http.MethodPost,
		path:     EndpointRefresh,
		body:     map[string]string{"refresh": refresh},
		fallback: "session renewal failed",
	})
	if err != nil {
		c.log.Warn("credential renewal failed", "error", err)
		return false
	}

	var renewed token.Pair
	if err := json.Unmarshal(raw, &renewed); err != nil {
		c.log.Warn("credential renewal returned an unreadable body", "error", err)
		return false
	}
	if renewed.Access == "" {
		return false
	}
	if renewed.Refresh == "" {
		// Rotation is optional; keep the current refresh token.
		renewed.Refresh = refresh
	}
	if err := c.tokens.Set(renewed); err != nil {
		c.log.Error("failed to store renewed credentials", "error", err)
		return false
	}
	return true
}

// cleanQuery drops nil and empty-string values; everything else is passed
// through for URL encoding. Key order is whatever Encode produces, which
// callers must not depend on.
func cleanQuery(q url.Values) url.Values {
	if len(q) == 0 {
		return nil
	}
	out := url.Values{}
	for key, values := range q {
		for _, v := range values {
			if strings.TrimSpace(v) == "" {
				continue
			}
			out.Add(key, v)
		}
	}
	return out
}
