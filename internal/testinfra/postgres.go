// Campusrec - Campus Event Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/campusrec

//go:build integration

package testinfra

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
)

const (
	// DefaultPostgresImage is the PostgreSQL image used by integration tests.
	DefaultPostgresImage = "postgres:16-alpine"

	defaultPostgresDB       = "campusrec"
	defaultPostgresUser     = "campusrec"
	defaultPostgresPassword = "campusrec"
)

// PostgresContainer is a running PostgreSQL container.
type PostgresContainer struct {
	*postgres.PostgresContainer
	// DSN is a lib/pq connection string with sslmode disabled.
	DSN string
}

// PostgresOption configures the PostgreSQL container.
type PostgresOption func(*postgresConfig)

type postgresConfig struct {
	image        string
	database     string
	initScripts  []string
	startTimeout time.Duration
}

// WithPostgresImage sets a custom PostgreSQL image.
func WithPostgresImage(image string) PostgresOption {
	return func(c *postgresConfig) {
		c.image = image
	}
}

// WithPostgresDatabase sets the database name.
func WithPostgresDatabase(name string) PostgresOption {
	return func(c *postgresConfig) {
		c.database = name
	}
}

// WithInitScripts runs the given SQL files when the container first starts.
func WithInitScripts(paths ...string) PostgresOption {
	return func(c *postgresConfig) {
		c.initScripts = append(c.initScripts, paths...)
	}
}

// WithPostgresStartTimeout sets how long to wait for the database to accept
// connections.
func WithPostgresStartTimeout(d time.Duration) PostgresOption {
	return func(c *postgresConfig) {
		c.startTimeout = d
	}
}

// NewPostgresContainer starts PostgreSQL and returns its DSN.
func NewPostgresContainer(ctx context.Context, opts ...PostgresOption) (*PostgresContainer, error) {
	cfg := &postgresConfig{
		image:        DefaultPostgresImage,
		database:     defaultPostgresDB,
		startTimeout: 2 * time.Minute,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	startCtx, cancel := context.WithTimeout(ctx, cfg.startTimeout)
	defer cancel()

	runOpts := []testcontainers.ContainerCustomizer{
		postgres.WithDatabase(cfg.database),
		postgres.WithUsername(defaultPostgresUser),
		postgres.WithPassword(defaultPostgresPassword),
		postgres.BasicWaitStrategies(),
	}
	if len(cfg.initScripts) > 0 {
		runOpts = append(runOpts, postgres.WithInitScripts(cfg.initScripts...))
	}

	ctr, err := postgres.Run(startCtx, cfg.image, runOpts...)
	if err != nil {
		return nil, fmt.Errorf("start postgres container: %w", err)
	}

	dsn, err := ctr.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		_ = ctr.Terminate(ctx)
		return nil, fmt.Errorf("postgres connection string: %w", err)
	}

	return &PostgresContainer{PostgresContainer: ctr, DSN: dsn}, nil
}

// StartPostgres starts PostgreSQL for t, skipping the test when Docker is
// unavailable. The container is terminated on cleanup.
func StartPostgres(t *testing.T, opts ...PostgresOption) *PostgresContainer {
	t.Helper()
	SkipIfNoDocker(t)

	ctr, err := NewPostgresContainer(context.Background(), opts...)
	if err != nil {
		t.Fatalf("postgres container: %v", err)
	}
	CleanupContainer(t, ctr)
	return ctr
}
