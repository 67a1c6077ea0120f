// Package database opens the shared connection pool for the postgres backend.
package database

import (
	"context"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

// Supported database/sql driver names.
const (
	DriverPostgres = "postgres"
	DriverPgx      = "pgx"
)

type DBConfig struct {
	Driver           string
	URL              string
	ConnMaxLifetime  time.Duration
	MaxOpenConns     int
	MaxIdleConns     int
	StatementTimeout time.Duration
}

func NewDBConfig(url string) *DBConfig {
	return &DBConfig{
		Driver:           DriverPostgres,
		URL:              url,
		ConnMaxLifetime:  10 * time.Minute,
		MaxOpenConns:     10,
		MaxIdleConns:     5,
		StatementTimeout: 30 * time.Second,
	}
}

func (cfg *DBConfig) Validate() error {
	if cfg.URL == "" {
		return fmt.Errorf("database url is required")
	}
	switch cfg.Driver {
	case "", DriverPostgres, DriverPgx:
		return nil
	default:
		return fmt.Errorf("unsupported database driver %q (want %s or %s)", cfg.Driver, DriverPostgres, DriverPgx)
	}
}

// Open configures the pool without touching the network.
func (cfg *DBConfig) Open() (*sqlx.DB, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	driver := cfg.Driver
	if driver == "" {
		driver = DriverPostgres
	}

	db, err := sqlx.Open(driver, cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}

	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)

	return db, nil
}

// Connect opens the pool, pings it and applies the session statement timeout.
func (cfg *DBConfig) Connect(ctx context.Context) (*sqlx.DB, error) {
	db, err := cfg.Open()
	if err != nil {
		return nil, err
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if cfg.StatementTimeout > 0 {
		_, err = db.ExecContext(ctx, fmt.Sprintf("SET statement_timeout = '%dms'", cfg.StatementTimeout.Milliseconds()))
		if err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to set statement timeout: %w", err)
		}
	}

	return db, nil
}
