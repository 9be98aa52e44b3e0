// Package migrations embeds the SQL schema for the relational stores and
// applies it with goose.
package migrations

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"

	"github.com/pressly/goose/v3"
)

//go:embed postgres/*.sql sqlite/*.sql
var FS embed.FS

// Dialect names a migration directory and its goose dialect.
type Dialect string

const (
	Postgres Dialect = "postgres"
	SQLite   Dialect = "sqlite"
)

func (d Dialect) goose() string {
	if d == SQLite {
		return "sqlite3"
	}
	return "postgres"
}

// goose keeps its dialect, filesystem and logger in package globals.
var mu sync.Mutex

func setup(d Dialect, log *slog.Logger) error {
	goose.SetBaseFS(FS)
	goose.SetLogger(gooseLogger{log: log})
	if err := goose.SetDialect(d.goose()); err != nil {
		return fmt.Errorf("goose dialect %s: %w", d, err)
	}
	return nil
}

// Up applies all pending migrations for dialect.
func Up(ctx context.Context, db *sql.DB, d Dialect, log *slog.Logger) error {
	mu.Lock()
	defer mu.Unlock()

	if err := setup(d, log); err != nil {
		return err
	}
	if err := goose.UpContext(ctx, db, string(d)); err != nil {
		return fmt.Errorf("migrate up: %w", err)
	}
	return nil
}

// Status logs the applied state of every migration for dialect.
func Status(ctx context.Context, db *sql.DB, d Dialect, log *slog.Logger) error {
	mu.Lock()
	defer mu.Unlock()

	if err := setup(d, log); err != nil {
		return err
	}
	if err := goose.StatusContext(ctx, db, string(d)); err != nil {
		return fmt.Errorf("migrate status: %w", err)
	}
	return nil
}

type gooseLogger struct {
	log *slog.Logger
}

func (l gooseLogger) Printf(format string, v ...any) {
	l.log.Info(strings.TrimSpace(fmt.Sprintf(format, v...)), "component", "migrations")
}

func (l gooseLogger) Fatalf(format string, v ...any) {
	l.log.Error(strings.TrimSpace(fmt.Sprintf(format, v...)), "component", "migrations")
	os.Exit(1)
}
