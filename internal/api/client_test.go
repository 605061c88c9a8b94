package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"

	"findash/internal/log"
	"findash/internal/token"
)

type navRecorder struct {
	paths []string
}

func (n *navRecorder) NavigateTo(path string) { n.paths = append(n.paths, path) }

func newTestClient(t *testing.T, baseURL string, tokens token.Store, nav Navigator) *Client {
	t.Helper()
	return NewClient(baseURL, 5*time.Second, tokens, nav, log.Discard())
}

func TestAuthorizationHeaderAttachment(t *testing.T) {
	var protectedAuth, publicAuth string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case EndpointToken:
			publicAuth = r.Header.Get("Authorization")
		case EndpointAccounts:
			protectedAuth = r.Header.Get("Authorization")
		}
		w.Write([]byte(`{}`))
	}))
	defer ts.Close()

	tokens := token.NewMemory()
	tokens.Set(token.Pair{Access: "acc", Refresh: "ref"})
	c := newTestClient(t, ts.URL, tokens, nil)

	if _, err := c.Do(context.Background(), http.MethodGet, EndpointAccounts, nil, nil, "x"); err != nil {
		t.Fatalf("protected call: %v", err)
	}
	if _, err := c.Do(context.Background(), http.MethodPost, EndpointToken, map[string]string{}, nil, "x"); err != nil {
		t.Fatalf("public call: %v", err)
	}

	if protectedAuth != "Bearer acc" {
		t.Fatalf("protected auth header = %q", protectedAuth)
	}
	if publicAuth != "" {
		t.Fatalf("public endpoints must not carry credentials, got %q", publicAuth)
	}
}

func TestQueryCleaning(t *testing.T) {
	var gotQuery url.Values
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query()
		w.Write([]byte(`[]`))
	}))
	defer ts.Close()

	c := newTestClient(t, ts.URL, token.NewMemory(), nil)
	q := url.Values{}
	q.Set("account", "3")
	q.Set("category", "")
	q.Set("search", "  ")
	q.Set("date_from", "2025-01-01")

	if _, err := c.Do(context.Background(), http.MethodGet, EndpointTransactions, nil, q, "x"); err != nil {
		t.Fatalf("do: %v", err)
	}

	if gotQuery.Get("account") != "3" || gotQuery.Get("date_from") != "2025-01-01" {
		t.Fatalf("kept params missing: %v", gotQuery)
	}
	if _, present := gotQuery["category"]; present {
		t.Fatalf("empty param must be dropped: %v", gotQuery)
	}
	if _, present := gotQuery["search"]; present {
		t.Fatalf("blank param must be dropped: %v", gotQuery)
	}
}

// One 401 means exactly one renewal and one replay with the new token.
func TestRenewalReplaysOnce(t *testing.T) {
	var protectedHits, refreshHits atomic.Int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case EndpointRefresh:
			refreshHits.Add(1)
			json.NewEncoder(w).Encode(map[string]string{"access": "renewed"})
		case EndpointTransactions:
			protectedHits.Add(1)
			if r.Header.Get("Authorization") != "Bearer renewed" {
				w.WriteHeader(http.StatusUnauthorized)
				w.Write([]byte(`{"detail":"token expired"}`))
				return
			}
			w.Write([]byte(`[{"id":1}]`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer ts.Close()

	tokens := token.NewMemory()
	tokens.Set(token.Pair{Access: "stale", Refresh: "ref"})
	nav := &navRecorder{}
	c := newTestClient(t, ts.URL, tokens, nav)

	raw, err := c.Do(context.Background(), http.MethodGet, EndpointTransactions, nil, nil, "x")
	if err != nil {
		t.Fatalf("expected the replay to succeed, got %v", err)
	}
	if string(raw) != `[{"id":1}]` {
		t.Fatalf("unexpected body %s", raw)
	}

	if protectedHits.Load() != 2 {
		t.Fatalf("protected endpoint hit %d times, want 2", protectedHits.Load())
	}
	if refreshHits.Load() != 1 {
		t.Fatalf("refresh endpoint hit %d times, want 1", refreshHits.Load())
	}
	if tokens.Access() != "renewed" {
		t.Fatalf("renewed access token not stored, got %q", tokens.Access())
	}
	// Refresh rotation is optional; the old refresh token survives.
	if tokens.Refresh() != "ref" {
		t.Fatalf("refresh token lost, got %q", tokens.Refresh())
	}
	if len(nav.paths) != 0 {
		t.Fatalf("no navigation expected, got %v", nav.paths)
	}
}

// Renewal itself unauthorized: credentials cleared, one hard navigation
// to the login boundary, no second replay.
func TestRenewalFailureForcesLogout(t *testing.T) {
	var protectedHits, refreshHits atomic.Int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case EndpointRefresh:
			refreshHits.Add(1)
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"detail":"refresh expired"}`))
		case EndpointTransactions:
			protectedHits.Add(1)
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"detail":"token expired"}`))
		}
	}))
	defer ts.Close()

	tokens := token.NewMemory()
	tokens.Set(token.Pair{Access: "stale", Refresh: "stale-too"})
	nav := &navRecorder{}
	c := newTestClient(t, ts.URL, tokens, nav)

	_, err := c.Do(context.Background(), http.MethodGet, EndpointTransactions, nil, nil, "fallback")
	if !IsStatus(err, http.StatusUnauthorized) {
		t.Fatalf("expected the original 401 to propagate, got %v", err)
	}
	if err.Error() != "token expired" {
		t.Fatalf("expected the original failure message, got %q", err.Error())
	}

	if protectedHits.Load() != 1 {
		t.Fatalf("protected endpoint hit %d times, want 1", protectedHits.Load())
	}
	if refreshHits.Load() != 1 {
		t.Fatalf("refresh endpoint hit %d times, want 1", refreshHits.Load())
	}
	if tokens.Access() != "" || tokens.Refresh() != "" {
		t.Fatalf("credentials must be cleared")
	}
	if len(nav.paths) != 1 || nav.paths[0] != PathLogin {
		t.Fatalf("expected one navigation to %s, got %v", PathLogin, nav.paths)
	}
}

// No refresh credential is terminal: no renewal attempt, forced logout.
func TestMissingRefreshIsTerminal(t *testing.T) {
	var refreshHits atomic.Int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == EndpointRefresh {
			refreshHits.Add(1)
		}
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"detail":"unauthorized"}`))
	}))
	defer ts.Close()

	tokens := token.NewMemory()
	tokens.Set(token.Pair{Access: "stale"})
	nav := &navRecorder{}
	c := newTestClient(t, ts.URL, tokens, nav)

	_, err := c.Do(context.Background(), http.MethodGet, EndpointAccounts, nil, nil, "fallback")
	if !IsStatus(err, http.StatusUnauthorized) {
		t.Fatalf("expected 401, got %v", err)
	}
	if refreshHits.Load() != 0 {
		t.Fatalf("renewal must not be attempted without a refresh credential")
	}
	if len(nav.paths) != 1 || nav.paths[0] != PathLogin {
		t.Fatalf("expected navigation to login, got %v", nav.paths)
	}
}

func TestErrorNormalization(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"amount":["A valid number is required."]}`))
	}))
	defer ts.Close()

	c := newTestClient(t, ts.URL, token.NewMemory(), nil)
	_, err := c.Do(context.Background(), http.MethodPost, EndpointTransactions, map[string]string{}, nil, "failed to create transaction")
	if err == nil {
		t.Fatalf("expected an error")
	}
	if err.Error() != "A valid number is required." {
		t.Fatalf("got %q", err.Error())
	}
}

func TestTransportErrorUsesFallback(t *testing.T) {
	c := newTestClient(t, "http://127.0.0.1:1", token.NewMemory(), nil)
	_, err := Get[struct{}](context.Background(), c, EndpointAccounts, nil, "failed to load accounts")
	if err == nil {
		t.Fatalf("expected an error")
	}
	if err.Error() != "failed to load accounts" {
		t.Fatalf("got %q", err.Error())
	}
}
