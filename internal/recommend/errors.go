// Campusrec - Campus Event Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/campusrec

package recommend

import "errors"

var (
	// ErrDataUnavailable wraps failures of the data provider.
	ErrDataUnavailable = errors.New("data unavailable")

	// ErrNoFollowedClubs means the user follows no clubs and cannot be personalized.
	ErrNoFollowedClubs = errors.New("user follows no clubs")

	// ErrScoringFailure wraps scorer errors and recovered panics.
	ErrScoringFailure = errors.New("scoring failed")

	// ErrNoPersister is returned when weights are patched without a persister.
	ErrNoPersister = errors.New("no weight persister configured")
)
