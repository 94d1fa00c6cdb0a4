package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	_ "github.com/jackc/pgx/v5/stdlib"  // PostgreSQL driver ("pgx")
	_ "github.com/mattn/go-sqlite3"     // SQLite driver ("sqlite3")
	_ "github.com/microsoft/go-mssqldb" // SQL Server driver ("sqlserver")
)

// Pool defaults.
const (
	// defaultConnectionTimeout bounds the initial ping.
	defaultConnectionTimeout = 90 * time.Second

	// defaultMaxOpenConns matches the pool size of the archive server.
	defaultMaxOpenConns = 10

	// connMaxIdleTime is how long idle connections are kept open.
	connMaxIdleTime = 30 * time.Second

	// connMaxLifetime forces periodic reconnects to the archive.
	connMaxLifetime = time.Hour
)

// DB wraps a sqlx.DB connection to the archive database.
type DB struct {
	*sqlx.DB
	dialect dialect
}

// Config contains database configuration options.
// These map to the source section of config.yaml.
type Config struct {
	// Driver is one of sqlserver, pgx or sqlite3.
	Driver string

	// DSN is the driver-specific connection string.
	DSN string

	// MaxOpenConns caps the pool. Zero selects the default of 10.
	MaxOpenConns int

	// MaxIdleConns caps idle connections. Zero selects MaxOpenConns.
	MaxIdleConns int

	// ConnectionTimeout bounds the initial connectivity check. Default: 90s.
	ConnectionTimeout time.Duration
}

// Open connects to the archive database and verifies the connection.
//
// Parameters:
//   - ctx: Context for the initial ping
//   - cfg: Database configuration
//
// Returns:
//   - *DB: Connected database wrapper
//   - error: If the driver is unsupported or the database is unreachable
func Open(ctx context.Context, cfg Config) (*DB, error) {
	d, err := dialectFor(cfg.Driver)
	if err != nil {
		return nil, err
	}

	sqlxDB, err := sqlx.Open(d.driver, cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	maxOpen := cfg.MaxOpenConns
	if maxOpen <= 0 {
		maxOpen = defaultMaxOpenConns
	}
	maxIdle := cfg.MaxIdleConns
	if maxIdle <= 0 || maxIdle > maxOpen {
		maxIdle = maxOpen
	}
	sqlxDB.SetMaxOpenConns(maxOpen)
	sqlxDB.SetMaxIdleConns(maxIdle)
	sqlxDB.SetConnMaxIdleTime(connMaxIdleTime)
	sqlxDB.SetConnMaxLifetime(connMaxLifetime)

	timeout := cfg.ConnectionTimeout
	if timeout <= 0 {
		timeout = defaultConnectionTimeout
	}
	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if err := sqlxDB.PingContext(pingCtx); err != nil {
		sqlxDB.Close() //nolint:errcheck // Best effort cleanup on error path
		return nil, fmt.Errorf("verifying database connection: %w", err)
	}

	return &DB{DB: sqlxDB, dialect: d}, nil
}

// Close closes the database connection gracefully.
func (db *DB) Close() error {
	if db.DB == nil {
		return nil
	}
	if err := db.DB.Close(); err != nil {
		return fmt.Errorf("closing database: %w", err)
	}
	return nil
}

// Driver returns the driver name the connection was opened with.
func (db *DB) Driver() string {
	return db.dialect.driver
}

// HealthCheck verifies the database is accessible and functioning.
//
// Parameters:
//   - ctx: Context for timeout/cancellation
//
// Returns:
//   - error: nil if healthy, error describing the issue otherwise
func (db *DB) HealthCheck(ctx context.Context) error {
	if db.DB == nil {
		return ErrNotConnected
	}
	var result int
	if err := db.QueryRowxContext(ctx, "SELECT 1").Scan(&result); err != nil {
		return fmt.Errorf("database health check failed: %w", err)
	}
	return nil
}

// Stats returns database connection pool statistics.
func (db *DB) Stats() sql.DBStats {
	return db.DB.Stats()
}
