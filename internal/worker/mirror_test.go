package worker

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"findash/internal/api"
	"findash/internal/core"
	"findash/internal/events"
	"findash/internal/log"
	"findash/internal/store"
	"findash/internal/token"
)

type recordingAppender struct {
	rows []core.TransactionDetails
	err  error
}

func (a *recordingAppender) Append(_ context.Context, tx core.TransactionDetails) error {
	if a.err != nil {
		return a.err
	}
	a.rows = append(a.rows, tx)
	return nil
}

// newMirrorFixture builds a mirror against a test server with one account
// and one category prefetched into the stores.
func newMirrorFixture(t *testing.T, transactions http.HandlerFunc) (*Mirror, *recordingAppender, *atomic.Int32) {
	t.Helper()

	var txHits atomic.Int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case api.EndpointAccounts:
			w.Write([]byte(`[{"id":1,"name":"Checking","balance":"10.00"}]`))
		case api.EndpointCategories:
			w.Write([]byte(`[{"id":5,"name":"Groceries","type":"EXPENSE"}]`))
		default:
			txHits.Add(1)
			transactions(w, r)
		}
	}))
	t.Cleanup(ts.Close)

	gw := api.NewClient(ts.URL, 5*time.Second, token.NewMemory(), api.NopNavigator, log.Discard())
	stores := store.NewStores(gw, nil, log.Discard())
	stores.PrefetchSupporting(context.Background())

	appender := &recordingAppender{}
	return NewMirror(gw, stores, appender, log.Discard()), appender, &txHits
}

func TestHandleSkipsIrrelevantEvents(t *testing.T) {
	m, appender, txHits := newMirrorFixture(t, func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})

	skipped := []*events.MutationMessage{
		events.NewMutationMessage("account", events.ActionCreated, 1),
		events.NewMutationMessage("category", events.ActionUpdated, 5),
		events.NewMutationMessage("transaction", events.ActionDeleted, 7),
	}
	for _, msg := range skipped {
		if err := m.Handle(context.Background(), msg); err != nil {
			t.Fatalf("%s/%s: skipped events must ack cleanly, got %v", msg.Entity, msg.Action, err)
		}
	}

	if txHits.Load() != 0 {
		t.Fatalf("skipped events must not re-read anything, got %d fetches", txHits.Load())
	}
	if len(appender.rows) != 0 {
		t.Fatalf("skipped events must not append rows, got %v", appender.rows)
	}
}

func TestHandleReReadFailure(t *testing.T) {
	m, appender, _ := newMirrorFixture(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"detail":"Not found."}`))
	})

	err := m.Handle(context.Background(), events.NewMutationMessage("transaction", events.ActionCreated, 7))
	if err == nil {
		t.Fatal("expected the re-read failure to propagate for a redelivery")
	}
	if len(appender.rows) != 0 {
		t.Fatalf("no row may be appended on a failed re-read, got %v", appender.rows)
	}
}

func TestHandleAppendsResolvedRow(t *testing.T) {
	m, appender, txHits := newMirrorFixture(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != api.EntityPath(api.EndpointTransactions, 7) {
			t.Errorf("unexpected path %s", r.URL.Path)
			http.NotFound(w, r)
			return
		}
		w.Write([]byte(`{"id":7,"account":1,"category":5,"amount":"12.50","date":"2025-06-01","description":"weekly shop"}`))
	})

	msg := events.NewMutationMessage("transaction", events.ActionCreated, 7)
	if err := m.Handle(context.Background(), msg); err != nil {
		t.Fatalf("handle: %v", err)
	}

	if txHits.Load() != 1 {
		t.Fatalf("expected exactly one re-read, got %d", txHits.Load())
	}
	if len(appender.rows) != 1 {
		t.Fatalf("expected one appended row, got %d", len(appender.rows))
	}
	row := appender.rows[0]
	if row.ID != 7 || row.Amount != "12.50" {
		t.Fatalf("wrong transaction mirrored: %+v", row.Transaction)
	}
	if row.AccountDetail.Name != "Checking" {
		t.Fatalf("account not resolved from the prefetched store: %+v", row.AccountDetail)
	}
	if row.CategoryDetail == nil || row.CategoryDetail.Name != "Groceries" {
		t.Fatalf("category not resolved from the prefetched store: %+v", row.CategoryDetail)
	}
}

func TestHandleAppendFailurePropagates(t *testing.T) {
	m, appender, _ := newMirrorFixture(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"id":7,"account":1,"amount":"12.50","date":"2025-06-01"}`))
	})
	appender.err = errors.New("sheet unavailable")

	err := m.Handle(context.Background(), events.NewMutationMessage("transaction", events.ActionUpdated, 7))
	if err == nil {
		t.Fatal("expected the append failure to propagate for a redelivery")
	}
}
