// db.go
//
// Content backend wiring for the globe server.
// Responsibilities:
//   - Opening SQLite (with safe defaults: WAL, busy timeout, foreign keys) or PostgreSQL.
//   - Applying the content schema and seeding an empty database from the fixture.
//   - Choosing the content.Store named by CONTENT_BACKEND and wrapping SQL
//     stores in a circuit breaker.

package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog"

	"github.com/narharikale/globe/internal/config"
	"github.com/narharikale/globe/internal/content"
)

// openDB opens the SQL database for the configured backend.
// For SQLite the parent directory of the file is created if missing.
func openDB(ctx context.Context, cfg *config.Config) (*sqlx.DB, error) {
	switch cfg.ContentBackend {
	case config.BackendSQLite:
		dir := filepath.Dir(cfg.SQLitePath)
		if dir != "." && dir != "" {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("mkdir %s: %w", dir, err)
			}
		}
		db, err := sqlx.ConnectContext(ctx, "sqlite3", cfg.SQLitePath+"?_busy_timeout=5000&_journal_mode=WAL")
		if err != nil {
			return nil, fmt.Errorf("open sqlite: %w", err)
		}
		if _, err := db.ExecContext(ctx, `PRAGMA foreign_keys = ON; PRAGMA journal_mode = WAL;`); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("set pragmas: %w", err)
		}
		return db, nil
	case config.BackendPostgres:
		db, err := sqlx.ConnectContext(ctx, "postgres", cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("open postgres: %w", err)
		}
		return db, nil
	default:
		return nil, fmt.Errorf("backend %q has no database", cfg.ContentBackend)
	}
}

// openContent returns the content store for cfg and a func releasing its resources.
func openContent(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (content.Store, func() error, error) {
	if cfg.ContentBackend == config.BackendFixture {
		f, err := content.LoadFixture(cfg.FixtureFile)
		if err != nil {
			return nil, nil, err
		}
		return f, func() error { return nil }, nil
	}

	db, err := openDB(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	sqlStore := content.NewSQLStore(db)
	if err := seed(ctx, sqlStore, cfg.FixtureFile, logger); err != nil {
		_ = db.Close()
		return nil, nil, err
	}

	bc := content.DefaultBreakerConfig("content-" + cfg.ContentBackend)
	bc.MaxRequests = cfg.BreakerMaxRequests
	bc.Interval = cfg.BreakerInterval
	bc.Timeout = cfg.BreakerTimeout
	bc.FailureThreshold = cfg.BreakerFailureThreshold
	bc.MinRequests = cfg.BreakerMinRequests
	return content.NewBreaker(sqlStore, bc, logger), db.Close, nil
}

// seed applies the schema and imports the fixture into an empty database.
func seed(ctx context.Context, s *content.SQLStore, fixtureFile string, logger zerolog.Logger) error {
	if err := s.EnsureSchema(ctx); err != nil {
		return err
	}
	empty, err := s.Empty(ctx)
	if err != nil {
		return err
	}
	if !empty {
		return nil
	}
	f, err := content.LoadFixture(fixtureFile)
	if err != nil {
		return err
	}
	countries, err := f.ListCountries(ctx)
	if err != nil {
		return err
	}
	if err := s.Import(ctx, countries); err != nil {
		return fmt.Errorf("seed content: %w", err)
	}
	logger.Info().Int("countries", len(countries)).Msg("seeded empty content database")
	return nil
}
