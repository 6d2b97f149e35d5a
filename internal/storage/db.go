// Package storage opens the relational store, creates the schema and builds
// the go-repository-bun repositories used by every other package.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"time"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/mysqldialect"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/schema"
)

// Supported database/sql driver names.
const (
	DriverSQLite   = "sqlite3"
	DriverPostgres = "postgres"
	DriverMySQL    = "mysql"
)

// Options configures the connection pool.
type Options struct {
	Driver       string
	DSN          string
	MaxOpenConns int
}

// Open connects to the database and verifies the connection.
func Open(ctx context.Context, opts Options) (*bun.DB, error) {
	dialect, err := dialectFor(opts.Driver)
	if err != nil {
		return nil, err
	}

	sqldb, err := sql.Open(opts.Driver, opts.DSN)
	if err != nil {
		return nil, fmt.Errorf("open %s database: %w", opts.Driver, err)
	}

	if opts.MaxOpenConns > 0 {
		sqldb.SetMaxOpenConns(opts.MaxOpenConns)
		sqldb.SetMaxIdleConns(opts.MaxOpenConns)
	}
	sqldb.SetConnMaxLifetime(5 * time.Minute)

	if err := sqldb.PingContext(ctx); err != nil {
		sqldb.Close()
		return nil, fmt.Errorf("ping %s database: %w", opts.Driver, err)
	}

	log.Printf("storage: connected to %s database", opts.Driver)
	return bun.NewDB(sqldb, dialect), nil
}

func dialectFor(driver string) (schema.Dialect, error) {
	switch driver {
	case DriverSQLite:
		return sqlitedialect.New(), nil
	case DriverPostgres:
		return pgdialect.New(), nil
	case DriverMySQL:
		return mysqldialect.New(), nil
	}
	return nil, fmt.Errorf("unsupported database driver %q", driver)
}
