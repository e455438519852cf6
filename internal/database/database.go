// Campusrec - Campus Event Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/campusrec

package database

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"time"

	_ "github.com/lib/pq"
	"github.com/rs/zerolog"

	"github.com/tomtom215/campusrec/internal/config"
	"github.com/tomtom215/campusrec/internal/metrics"
)

// Schema is the DDL of the tables the provider reads.
//
//go:embed schema.sql
var Schema string

const (
	defaultQueryTimeout = 5 * time.Second
	driverName          = "postgres"
)

// DB wraps the PostgreSQL connection pool.
type DB struct {
	conn   *sql.DB
	cfg    config.DatabaseConfig
	logger zerolog.Logger
}

// Open connects to PostgreSQL and verifies the connection.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func Open(ctx context.Context, cfg *config.DatabaseConfig, logger zerolog.Logger) (*DB, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("database url is required")
	}

	conn, err := sql.Open(driverName, cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db := New(conn, cfg, logger)

	pingCtx, cancel := context.WithTimeout(ctx, db.queryTimeout())
	defer cancel()
	if err := conn.PingContext(pingCtx); err != nil {
		closeQuietly(conn)
		return nil, fmt.Errorf("ping database: %w", err)
	}

	db.logger.Info().
		Int("max_open_conns", cfg.MaxOpenConns).
		Int("max_idle_conns", cfg.MaxIdleConns).
		Msg("database connected")
	return db, nil
}

// New wraps an existing connection pool and applies the pool settings.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func New(conn *sql.DB, cfg *config.DatabaseConfig, logger zerolog.Logger) *DB {
	if cfg.MaxOpenConns > 0 {
		conn.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		conn.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		conn.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}
	return &DB{
		conn:   conn,
		cfg:    *cfg,
		logger: logger.With().Str("component", "database").Logger(),
	}
}

// Conn returns the underlying pool.
func (db *DB) Conn() *sql.DB {
	return db.conn
}

// Close closes the pool.
func (db *DB) Close() error {
	if db == nil || db.conn == nil {
		return nil
	}
	db.logger.Info().Msg("closing database")
	return db.conn.Close()
}

// Ping runs SELECT 1.
func (db *DB) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, db.queryTimeout())
	defer cancel()

	start := time.Now()
	var one int
	err := db.conn.QueryRowContext(ctx, "SELECT 1").Scan(&one)
	db.record("ping", "", start, err)
	if err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

// EnsureSchema creates the tables in Schema if they are missing.
func (db *DB) EnsureSchema(ctx context.Context) error {
	if _, err := db.conn.ExecContext(ctx, Schema); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

// ReportPoolStats publishes pool statistics to metrics.
func (db *DB) ReportPoolStats() {
	metrics.DBOpenConnections.Set(float64(db.conn.Stats().OpenConnections))
}

func (db *DB) queryTimeout() time.Duration {
	if db.cfg.QueryTimeout > 0 {
		return db.cfg.QueryTimeout
	}
	return defaultQueryTimeout
}

func (db *DB) record(operation, table string, start time.Time, err error) {
	took := time.Since(start)
	metrics.RecordDBQuery(operation, table, took, err)
	if err != nil {
		db.logger.Error().Err(err).
			Str("operation", operation).
			Str("table", table).
			Str("error_type", errorType(err)).
			Dur("took", took).
			Msg("query failed")
	}
}
