// Campusrec - Campus Event Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/campusrec

// Package testinfra starts PostgreSQL and Redis containers for integration
// tests with testcontainers-go.
//
// Everything here is behind the integration build tag:
//
//	go test -tags integration ./...
//
// # PostgreSQL
//
//	func TestProvider(t *testing.T) {
//	    pg := testinfra.StartPostgres(t)
//	    db, err := database.Open(ctx, &config.DatabaseConfig{URL: pg.DSN}, zerolog.Nop())
//	    ...
//	}
//
// # Redis
//
//	rc := testinfra.StartRedis(t)
//	opts, _ := redis.ParseURL(rc.URL)
//
// Tests are skipped when Docker is not available.
package testinfra
