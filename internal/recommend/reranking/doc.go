// Campusrec - Campus Event Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/campusrec

// Package reranking implements result selectors that trade relevance for
// variety.
//
// Selectors run after ranking and pick the final events from a list sorted
// by descending score:
//
//	Scorers -> Rank -> Selector -> Recommendations
//
// # Available Selectors
//
// Diversity:
//   - Caps the events taken from any one club
//   - The cap is max(1, floor(limit x diversity_factor))
//   - The first limit/2 slots ignore the cap
//   - Leftover slots are filled by score regardless of club
//
// # Interface
//
// All selectors implement recommend.Selector:
//
//	type Selector interface {
//	    Name() string
//	    Select(ranked []ScoredEvent, limit int) []ScoredEvent
//	}
package reranking
