package token

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

const (
	keyAccess  = "access_token"
	keyRefresh = "refresh_token"
)

// SQLiteStore persists the credential pair in a two-row key/value table so
// a session survives process restarts.
type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func (s *SQLiteStore) Set(p Pair) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	const upsert = `INSERT INTO credentials (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value`
	if _, err := tx.Exec(upsert, keyAccess, p.Access); err != nil {
		return fmt.Errorf("store access token: %w", err)
	}
	if _, err := tx.Exec(upsert, keyRefresh, p.Refresh); err != nil {
		return fmt.Errorf("store refresh token: %w", err)
	}
	return tx.Commit()
}

func (s *SQLiteStore) get(key string) string {
	var value string
	err := s.db.QueryRow(`SELECT value FROM credentials WHERE key = ?`, key).Scan(&value)
	if err != nil {
		// A read failure behaves like an absent credential; the caller
		// ends up on the login boundary either way.
		return ""
	}
	return value
}

func (s *SQLiteStore) Access() string  { return s.get(keyAccess) }
func (s *SQLiteStore) Refresh() string { return s.get(keyRefresh) }

func (s *SQLiteStore) Clear() error {
	if _, err := s.db.Exec(`DELETE FROM credentials WHERE key IN (?, ?)`, keyAccess, keyRefresh); err != nil {
		return fmt.Errorf("clear credentials: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Valid() bool {
	return accessValid(s.Access())
}
