// Package postgres stores model artifacts through sqlx. The same queries run
// against PostgreSQL (lib/pq) and embedded SQLite (modernc.org/sqlite).
package postgres

import (
	"context"
	"fmt"
	"time"

	"gundash/internal/config"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

// Open connects to the configured database and verifies the connection
func Open(ctx context.Context, cfg config.DatabaseConfig) (*sqlx.DB, error) {
	driver := cfg.Driver()
	switch driver {
	case "postgres", "sqlite":
	default:
		return nil, fmt.Errorf("no SQL driver for database url %q", cfg.URL)
	}

	db, err := sqlx.Open(driver, cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open %s database: %w", driver, err)
	}
	if driver == "sqlite" {
		// a single writer keeps SQLite from returning SQLITE_BUSY
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(10)
		db.SetConnMaxIdleTime(5 * time.Minute)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to %s database: %w", driver, err)
	}
	return db, nil
}
