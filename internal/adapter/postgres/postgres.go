// Package postgres implements the domain repositories using PostgreSQL.
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"spillthepill/internal/migrations"

	_ "github.com/lib/pq"
)

// DB wraps a *sql.DB and implements domain repository interfaces.
type DB struct {
	sql *sql.DB
	now func() time.Time
}

// Open connects to PostgreSQL, pings, and runs migrations.
func Open(ctx context.Context, connStr string, log *slog.Logger) (*DB, error) {
	s, err := Connect(ctx, connStr)
	if err != nil {
		return nil, err
	}
	if err := migrations.Up(ctx, s, migrations.Postgres, log); err != nil {
		_ = s.Close()
		return nil, err
	}
	return New(s), nil
}

// Connect opens a pooled connection and checks it is reachable.
func Connect(ctx context.Context, connStr string) (*sql.DB, error) {
	s, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	s.SetMaxOpenConns(10)
	s.SetMaxIdleConns(5)
	s.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := s.PingContext(ctx); err != nil {
		_ = s.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return s, nil
}

// New wraps an open connection pool. The schema must already exist.
func New(s *sql.DB) *DB {
	return &DB{sql: s, now: time.Now}
}

// Close closes the underlying database connection.
func (d *DB) Close() error {
	return d.sql.Close()
}
