// Campusrec - Campus Event Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/campusrec

/*
Package database reads the campus schema from PostgreSQL for the recommender.

The service never writes campus data. Provider implements
recommend.DataProvider with one query per method:

  - FollowedClubs: club_members for one user
  - Clubs: every club, for the catalog
  - Events: non-cancelled public events, filtered by date and exclusions
  - UserHistory: attended and favorited events since a cutoff
  - ClubMemberCounts, ClubEventCounts: popularity inputs

Each query runs under the configured query timeout, in its own tracing span,
and is recorded in the campusrec_db_* metrics.

# Circuit Breaker

ResilientProvider wraps a provider with a gobreaker circuit breaker. While
open, calls fail fast with ErrCircuitOpen and the engine serves its
fallback list. Ping bypasses the breaker.

	db, err := database.Open(ctx, &cfg.Database, logger)
	provider := database.NewResilientProvider(database.NewProvider(db), &cfg.Database.Breaker, logger)

# Schema

Schema holds the DDL of the tables read here. EnsureSchema applies it, which
integration tests use to seed a fresh container.
*/
package database
