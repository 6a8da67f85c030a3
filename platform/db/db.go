// Package db opens the Postgres pool that backs the booking store.
package db

import (
	"context"
	"fmt"
	"time"

	"booking_portal_backend/platform/config"

	"github.com/jackc/pgx/v5/pgxpool"
)

const applicationName = "booking-portal"

// NewPool connects to the booking database and pings it once.
func NewPool(ctx context.Context, cfg config.DatabaseConfig) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.GetDatabaseURL())
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}
	configurePool(poolConfig, cfg)

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("open database pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return pool, nil
}

// configurePool applies the configured limits. A statement timeout keeps a
// stuck booking update from holding a portal view past its commit deadline.
func configurePool(pc *pgxpool.Config, cfg config.DatabaseConfig) {
	pc.MaxConns = cfg.GetDBMaxConns()
	pc.MinConns = cfg.GetDBMinConns()
	if lifetime := cfg.GetDBConnMaxLifetime(); lifetime > 0 {
		pc.MaxConnLifetime = lifetime
		pc.MaxConnIdleTime = lifetime / 2
	}
	pc.HealthCheckPeriod = time.Minute

	params := pc.ConnConfig.RuntimeParams
	params["application_name"] = applicationName
	if timeout := cfg.GetDBStatementTimeout(); timeout > 0 {
		params["statement_timeout"] = fmt.Sprintf("%d", timeout.Milliseconds())
	}
}
