// Campusrec - Campus Event Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/campusrec

// Package recommend implements a hybrid recommender for campus club events.
//
// # Architecture
//
// A request flows through a small state machine:
//
//	start -> candidates fetched -> scored -> selected -> formatted
//	                           \-> empty
//	any failure or a user without followed clubs -> fallback
//
// Feature scorers (see package algorithms) each produce a FeatureTable over
// the candidate events:
//
//   - Content: TF-IDF similarity between followed clubs and event text
//   - Temporal: exponential decay on days until the event starts
//   - Affinity: club membership and past attendance
//   - Popularity: member and recent event counts of the owning club
//
// The tables are merged onto the candidate list, combined with the
// configured weights, boosted when the title match is strong, filtered by a
// minimum score and sorted. A Selector then picks the final list and every
// result is explained by the first matching reason rule.
//
// # Fallback
//
// Users without followed clubs and any data or scoring failure are served
// the earliest upcoming public events with a neutral score. If even that
// fails the response is an empty list with metadata.error set. Recommend
// never returns an error.
//
// # Configuration
//
// ConfigStore holds the active Config behind an atomic pointer. Weight
// patches and reloads are validated on a private copy and swapped in whole,
// so in-flight requests keep the snapshot they started with.
//
// # Usage
//
//	store, _ := recommend.NewConfigStore(recommend.DefaultConfig(), nil, nil)
//	engine, _ := recommend.NewEngine(store, provider, logger)
//
//	engine.RegisterScorer(algorithms.NewContent())
//	engine.RegisterScorer(algorithms.NewTemporal())
//	engine.RegisterScorer(algorithms.NewAffinity())
//	engine.RegisterScorer(algorithms.NewPopularity())
//	engine.RegisterSelector(reranking.NewDiversityFromStore(store))
//
//	resp := engine.Recommend(ctx, recommend.Request{UserID: 42, Limit: 5})
//
// # Thread Safety
//
// Engine is safe for concurrent use. The club catalog and its index are
// rebuilt under a mutex and published atomically.
package recommend
