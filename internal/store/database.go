package store

import (
	"context"
	"database/sql"
	"fmt"
	"runtime"
	"time"

	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/extra/bundebug"

	"github.com/goliatone/go-game-config/configuration"
)

// Supported drivers.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Options configures database initialization.
type Options struct {
	Driver          string
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	Debug           bool
}

// Open creates a bun database for the configured driver and pings it.
func Open(ctx context.Context, opts Options) (*bun.DB, error) {
	if opts.DSN == "" {
		return nil, fmt.Errorf("database dsn must be specified")
	}

	var db *bun.DB
	switch opts.Driver {
	case DriverPostgres:
		sqlDB, err := sql.Open("postgres", opts.DSN)
		if err != nil {
			return nil, fmt.Errorf("open database: %w", err)
		}
		configurePool(sqlDB, opts)
		db = bun.NewDB(sqlDB, pgdialect.New())

	case DriverSQLite:
		sqlDB, err := sql.Open("sqlite3", opts.DSN)
		if err != nil {
			return nil, fmt.Errorf("open database: %w", err)
		}
		// sqlite serializes writers; a single connection also keeps
		// in-memory databases from splitting per connection.
		sqlDB.SetMaxOpenConns(1)
		db = bun.NewDB(sqlDB, sqlitedialect.New())

	default:
		return nil, fmt.Errorf("unsupported database driver: %q", opts.Driver)
	}

	if opts.Debug {
		db.AddQueryHook(bundebug.NewQueryHook(bundebug.WithVerbose(true)))
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return db, nil
}

func configurePool(sqlDB *sql.DB, opts Options) {
	numCPU := runtime.NumCPU()

	maxOpenConns := opts.MaxOpenConns
	if maxOpenConns <= 0 {
		maxOpenConns = numCPU * 4
	}
	sqlDB.SetMaxOpenConns(maxOpenConns)

	maxIdleConns := opts.MaxIdleConns
	if maxIdleConns <= 0 {
		maxIdleConns = numCPU * 2
	}
	sqlDB.SetMaxIdleConns(maxIdleConns)

	connMaxLifetime := opts.ConnMaxLifetime
	if connMaxLifetime == 0 {
		connMaxLifetime = 10 * time.Minute
	}
	sqlDB.SetConnMaxLifetime(connMaxLifetime)
}

// Migrate creates the configurations table and its unique name index.
// Both statements are idempotent.
func Migrate(ctx context.Context, db bun.IDB) error {
	_, err := db.NewCreateTable().
		Model((*configuration.Record)(nil)).
		IfNotExists().
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("create configurations table: %w", err)
	}

	_, err = db.NewCreateIndex().
		Model((*configuration.Record)(nil)).
		Index("ux_configurations_name").
		Unique().
		Column("name").
		IfNotExists().
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("create configurations name index: %w", err)
	}

	return nil
}
