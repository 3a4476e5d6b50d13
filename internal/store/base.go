package store

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"sort"

	"github.com/jmoiron/sqlx"
)

//go:embed migrations/*.sql
var migrationFS embed.FS

// BaseStore holds the behaviour shared by the Postgres and SQLite backends.
// Queries are written with `?` placeholders and run through Converter so the
// Postgres backend can rewrite them to $n form. IsUniqueViolation lets each
// backend translate its driver's constraint error.
type BaseStore struct {
	DB                *sqlx.DB
	Converter         func(string) string
	IsUniqueViolation func(error) bool
}

func (s *BaseStore) Close() error {
	if s.DB != nil {
		return s.DB.Close()
	}
	return nil
}

// ApplyMigrations runs the embedded migrations in filename order, translating
// dialect if needed.
func (s *BaseStore) ApplyMigrations(translateSQL func(string) string) error {
	entries, err := migrationFS.ReadDir("migrations")
	if err != nil {
		return fmt.Errorf("failed to read migrations: %w", err)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	for _, entry := range entries {
		content, err := migrationFS.ReadFile("migrations/" + entry.Name())
		if err != nil {
			return fmt.Errorf("failed to read migration %s: %w", entry.Name(), err)
		}

		ddl := string(content)
		if translateSQL != nil {
			ddl = translateSQL(ddl)
		}

		if _, err := s.DB.Exec(ddl); err != nil {
			return fmt.Errorf("failed to apply migration %s: %w", entry.Name(), err)
		}
	}

	return nil
}

func (s *BaseStore) unique(err error) bool {
	return s.IsUniqueViolation != nil && s.IsUniqueViolation(err)
}

// get runs a single-row query and maps sql.ErrNoRows onto ErrNotFound.
func (s *BaseStore) get(ctx context.Context, dest interface{}, query string, args ...interface{}) error {
	err := s.DB.GetContext(ctx, dest, s.Converter(query), args...)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

// mustAffect checks that a write touched a row, mapping zero rows to ErrNotFound.
func mustAffect(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
