package token

import (
	"path/filepath"
	"testing"
)

func TestSQLiteStorePersistence(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "tokens.db")

	s, err := NewSQLiteStore(dbPath)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}

	if s.Access() != "" || s.Refresh() != "" {
		t.Fatalf("expected empty store")
	}

	if err := s.Set(Pair{Access: "a1", Refresh: "r1"}); err != nil {
		t.Fatalf("set: %v", err)
	}
	// Overwrite, as a renewal would.
	if err := s.Set(Pair{Access: "a2", Refresh: "r1"}); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	// Credentials survive a reopen.
	reopened, err := NewSQLiteStore(dbPath)
	if err != nil {
		t.Fatalf("reopen store: %v", err)
	}
	defer reopened.Close()

	if got := reopened.Access(); got != "a2" {
		t.Fatalf("access = %q, want a2", got)
	}
	if got := reopened.Refresh(); got != "r1" {
		t.Fatalf("refresh = %q, want r1", got)
	}

	if err := reopened.Clear(); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if reopened.Access() != "" || reopened.Refresh() != "" {
		t.Fatalf("expected cleared store")
	}
}
