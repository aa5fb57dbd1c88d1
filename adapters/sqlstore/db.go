// Package sqlstore keeps report runs in a SQL database through sqlx. The same
// queries serve postgres and sqlite; placeholders are rebound per driver.
package sqlstore

import (
	"context"
	"fmt"

	"jobmetrics/internal/errors"
	"jobmetrics/internal/migration"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

// Supported driver names.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite3"
)

// Open connects to the database and applies the schema migrations.
func Open(ctx context.Context, driver, url string) (*sqlx.DB, error) {
	switch driver {
	case DriverPostgres, DriverSQLite:
	default:
		return nil, errors.ConfigInvalid(fmt.Sprintf("unsupported database driver %q", driver))
	}
	if url == "" {
		return nil, errors.ConfigInvalid("DATABASE_URL is required")
	}

	db, err := sqlx.ConnectContext(ctx, driver, url)
	if err != nil {
		return nil, errors.WithCode(errors.CodeDatabaseError, errors.Wrap(err, "failed to connect to database"))
	}
	if driver == DriverSQLite {
		// each sqlite connection to :memory: is a separate database
		db.SetMaxOpenConns(1)
	}

	if err := migration.NewRunner().Run(ctx, db); err != nil {
		db.Close()
		return nil, errors.WithCode(errors.CodeDatabaseError, errors.Wrap(err, "database migration failed"))
	}
	return db, nil
}
