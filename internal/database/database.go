// Package database opens the PostgreSQL pool and keeps the schema current.
package database

import (
	"context"
	"fmt"
	"time"

	"resto-collect/internal/config"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// PoolOptions holds connection pool limits.
type PoolOptions struct {
	MaxOpenConns    int32
	MaxIdleConns    int32
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
}

// DefaultPoolOptions returns the small pool used by command line tools.
func DefaultPoolOptions() *PoolOptions {
	return &PoolOptions{
		MaxOpenConns:    4,
		MaxIdleConns:    1,
		ConnMaxLifetime: 1 * time.Hour,
		ConnMaxIdleTime: 30 * time.Minute,
	}
}

// OptionsFromConfig maps the service database configuration to pool options.
func OptionsFromConfig(cfg config.DatabaseConfig) *PoolOptions {
	return &PoolOptions{
		MaxOpenConns:    int32(cfg.MaxConnections),
		MaxIdleConns:    int32(cfg.MinConnections),
		ConnMaxLifetime: time.Duration(cfg.MaxConnLifetime) * time.Second,
		ConnMaxIdleTime: 30 * time.Minute,
	}
}

// NewPool creates the API server's PostgreSQL connection pool.
func NewPool(ctx context.Context, cfg config.DatabaseConfig, logger zerolog.Logger) (*pgxpool.Pool, error) {
	logger.Info().
		Str("host", cfg.Host).
		Int("port", cfg.Port).
		Str("database", cfg.Database).
		Int("max_connections", cfg.MaxConnections).
		Int("min_connections", cfg.MinConnections).
		Msg("creating database connection pool")

	pool, err := OpenURL(ctx, cfg.ConnectionString(), OptionsFromConfig(cfg))
	if err != nil {
		logger.Error().Err(err).Msg("database unavailable")
		return nil, err
	}

	logger.Info().Msg("database connection pool created successfully")
	return pool, nil
}

// OpenURL creates a connection pool from a connection string and verifies
// connectivity by pinging the database. A nil opts uses DefaultPoolOptions.
func OpenURL(ctx context.Context, connString string, opts *PoolOptions) (*pgxpool.Pool, error) {
	if opts == nil {
		opts = DefaultPoolOptions()
	}

	poolConfig, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("failed to parse connection string: %w", err)
	}

	poolConfig.MaxConns = opts.MaxOpenConns
	poolConfig.MinConns = opts.MaxIdleConns
	poolConfig.MaxConnLifetime = opts.ConnMaxLifetime
	poolConfig.MaxConnIdleTime = opts.ConnMaxIdleTime
	poolConfig.HealthCheckPeriod = 1 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return pool, nil
}
