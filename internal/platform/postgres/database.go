package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // registers the "pgx" driver
	"github.com/phrazzld/folio-api/internal/store"
)

// PoolConfig sizes the shared connection pool. Zero values keep the
// database/sql defaults.
type PoolConfig struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// Database owns the connection pool and hands out stores that share it.
// It is safe for concurrent use.
type Database struct {
	db     *sql.DB
	logger *slog.Logger
	posts  *PostgresPostStore
	tags   *PostgresTagStore
}

// Open connects to PostgreSQL and verifies the connection.
// An empty databaseURL is a configuration error.
func Open(ctx context.Context, databaseURL string, pool PoolConfig, logger *slog.Logger) (*Database, error) {
	if databaseURL == "" {
		return nil, fmt.Errorf("%w: database URL is empty", store.ErrConfiguration)
	}
	if logger == nil {
		logger = slog.Default()
	}

	db, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to open database: %w", store.ErrConfiguration, err)
	}
	if pool.MaxOpenConns > 0 {
		db.SetMaxOpenConns(pool.MaxOpenConns)
	}
	if pool.MaxIdleConns > 0 {
		db.SetMaxIdleConns(pool.MaxIdleConns)
	}
	if pool.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(pool.ConnMaxLifetime)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database at %s: %w", MaskDatabaseURL(databaseURL), err)
	}

	logger.Info("database connection established",
		slog.String("url", MaskDatabaseURL(databaseURL)),
		slog.Int("max_open_conns", pool.MaxOpenConns))

	return NewDatabase(db, logger), nil
}

// NewDatabase wraps an existing pool.
func NewDatabase(db *sql.DB, logger *slog.Logger) *Database {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Database{
		db:     db,
		logger: logger,
		posts:  NewPostgresPostStore(db, logger),
		tags:   NewPostgresTagStore(db, logger),
	}
}

// Posts returns the pool-backed post store.
func (d *Database) Posts() store.PostStore { return d.posts }

// Tags returns the pool-backed tag store.
func (d *Database) Tags() store.TagStore { return d.tags }

// DB returns the underlying pool.
func (d *Database) DB() *sql.DB { return d.db }

// Ping checks that the database is reachable.
func (d *Database) Ping(ctx context.Context) error {
	return d.db.PingContext(ctx)
}

// Transaction runs fn with stores bound to a single transaction. Everything
// fn does through them commits together, or not at all.
func (d *Database) Transaction(ctx context.Context, fn func(ctx context.Context, posts store.PostStore, tags store.TagStore) error) error {
	return store.RunInTransaction(ctx, d.db, func(ctx context.Context, tx *sql.Tx) error {
		return fn(ctx, d.posts.WithTx(tx), d.tags.WithTx(tx))
	})
}

// Close releases the pool.
func (d *Database) Close() error {
	d.logger.Info("closing database connection")
	return d.db.Close()
}

// MaskDatabaseURL masks the password in a database URL for safe logging.
func MaskDatabaseURL(dbURL string) string {
	parsedURL, err := url.Parse(dbURL)
	if err != nil {
		return "invalid-url"
	}

	if parsedURL.User != nil {
		if _, hasPassword := parsedURL.User.Password(); hasPassword {
			parsedURL.User = url.UserPassword(parsedURL.User.Username(), "****")
		}
	}

	return parsedURL.String()
}
