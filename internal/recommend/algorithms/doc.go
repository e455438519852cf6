// Campusrec - Campus Event Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/campusrec

// Package algorithms implements the feature scorers of the hybrid engine.
//
// Each scorer implements recommend.FeatureScorer and emits a disjoint group
// of features over the candidate events, so their tables can be merged in
// any order.
//
// # Scorers
//
// Content:
//   - content_similarity: 0.6 x club similarity + 0.4 x event-text similarity
//   - title_match_score: the event-text similarity alone
//
// Temporal:
//   - temporal_score: exponential decay over days until the event
//   - days_until_event: the raw day count, 999 when unscheduled
//
// Affinity:
//   - is_following_club, past_club_attendance
//   - user_affinity_score: 0.6 x following + 0.4 x normalized attendance
//
// Popularity:
//   - club_member_count, club_event_count
//   - popularity_score: 0.6 x normalized members + 0.4 x normalized events
//
// # Usage
//
//	engine.RegisterScorer(algorithms.NewContent())
//	engine.RegisterScorer(algorithms.NewTemporal())
//	engine.RegisterScorer(algorithms.NewAffinity())
//	engine.RegisterScorer(algorithms.NewPopularity())
//
// # Thread Safety
//
// Scorers hold no per-request state and are safe for concurrent use.
package algorithms
