package sqlite

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/mattn/go-sqlite3"

	"tagtrack/internal/store"
)

type SQLiteStore struct {
	store.BaseStore
}

// New opens a SQLite database and applies the embedded migrations, translated
// to SQLite dialect. The pool is pinned to a single connection so concurrent
// writers serialize instead of surfacing SQLITE_BUSY.
func New(dsn string) (*SQLiteStore, error) {
	db, err := sqlx.Connect("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	s := &SQLiteStore{BaseStore: store.BaseStore{
		DB: db,
		Converter: func(query string) string {
			return query
		},
		IsUniqueViolation: func(err error) bool {
			var sqliteErr sqlite3.Error
			if !errors.As(err, &sqliteErr) {
				return false
			}
			return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
				sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
		},
	}}

	if err := s.ApplyMigrations(translateToSQLite); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply migrations: %w", err)
	}

	return s, nil
}

// translateToSQLite converts the Postgres DDL to SQLite dialect.
func translateToSQLite(ddl string) string {
	replacements := map[string]string{
		"UUID":        "TEXT",
		"TIMESTAMPTZ": "DATETIME",
		"now()":       "CURRENT_TIMESTAMP",
	}
	out := ddl
	for from, to := range replacements {
		out = strings.ReplaceAll(out, from, to)
	}
	return out
}
