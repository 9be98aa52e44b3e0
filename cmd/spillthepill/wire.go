package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"

	"spillthepill/internal/adapter/boltdb"
	"spillthepill/internal/adapter/dailymed"
	"spillthepill/internal/adapter/memory"
	"spillthepill/internal/adapter/openfda"
	"spillthepill/internal/adapter/postgres"
	"spillthepill/internal/adapter/rxnav"
	"spillthepill/internal/adapter/sqlite"
	"spillthepill/internal/adapter/staticdrugs"
	"spillthepill/internal/app"
	"spillthepill/internal/config"
	"spillthepill/internal/domain"
	"spillthepill/internal/logging"
	"spillthepill/internal/migrations"
)

// openStore opens the user store selected by cfg.Driver. SQL stores are
// migrated on open.
func openStore(ctx context.Context, cfg config.StoreConfig, log *slog.Logger) (domain.UserRepository, error) {
	switch cfg.Driver {
	case config.StorePostgres:
		return postgres.Open(ctx, cfg.DatabaseURL, log)
	case config.StoreSQLite:
		return sqlite.Open(ctx, cfg.SQLitePath, log)
	case config.StoreBolt:
		return boltdb.Open(cfg.BoltPath)
	case config.StoreMemory:
		log.Warn("using the in-memory store, users are lost on restart")
		return memory.New(), nil
	default:
		return nil, fmt.Errorf("%w: unknown store driver %q", config.ErrInvalidConfig, cfg.Driver)
	}
}

// drugDeps assembles the drug ports for the configured source strategy.
// RxNav always backs the concept lookups.
func drugDeps(cfg config.DrugsConfig, hc *http.Client) app.DrugDeps {
	rx := rxnav.New(cfg.RxNavBaseURL, hc)
	deps := app.DrugDeps{
		Suggester: rx,
		Reference: rx,
		Labels:    dailymed.New(cfg.DailyMedBaseURL, hc),
	}
	switch cfg.Source {
	case config.DrugSourceOpenFDA:
		deps.Source = openfda.New(cfg.OpenFDABaseURL, cfg.OpenFDAAPIKey, hc, rx)
	case config.DrugSourceLLM:
		deps.Source = staticdrugs.Placeholder{}
	default:
		deps.Source = staticdrugs.Source{}
		deps.Suggester = staticdrugs.Suggester{}
	}
	return deps
}

type migrateFunc func(ctx context.Context, db *sql.DB, d migrations.Dialect, log *slog.Logger) error

func runMigrations(ctx context.Context, run migrateFunc) error {
	cfg, log, err := setup()
	if err != nil {
		return err
	}
	log = logging.Component(log, "migrate")

	var (
		db      *sql.DB
		dialect migrations.Dialect
	)
	switch cfg.Store.Driver {
	case config.StorePostgres:
		db, err = postgres.Connect(ctx, cfg.Store.DatabaseURL)
		dialect = migrations.Postgres
	case config.StoreSQLite:
		db, err = sqlite.Connect(ctx, cfg.Store.SQLitePath)
		dialect = migrations.SQLite
	default:
		log.Warn("store has no migrations", "driver", cfg.Store.Driver)
		return nil
	}
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	return run(ctx, db, dialect, log)
}
