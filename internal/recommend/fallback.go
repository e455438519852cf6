// Campusrec - Campus Event Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/campusrec

package recommend

import (
	"context"
	"sort"
	"time"

	"github.com/rs/zerolog"
)

const (
	// FallbackScore is the neutral score of non-personalized results.
	FallbackScore = 0.5

	// noEventsReason is reported when the fallback finds nothing to show.
	noEventsReason = "No events available"
)

// fallback returns the earliest upcoming public events. It does not fail: a
// provider error yields an empty list flagged as an error.
//
//nolint:gocritic // hugeParam: req passed by value for immutability
func (e *Engine) fallback(ctx context.Context, req Request, cfg *Config, now time.Time, logger zerolog.Logger) (resp *Response) {
	meta := e.baseMetadata(req, cfg, now)

	defer func() {
		if r := recover(); r != nil {
			logger.Error().Interface("panic", r).Msg("fallback recommendation panicked")
			meta.Error = true
			resp = &Response{Recommendations: []Recommendation{}, Metadata: meta, State: StateFallback}
		}
	}()

	filter := req.Filter
	if filter.MinDate.IsZero() {
		filter.MinDate = now
	}

	events, err := e.provider.Events(ctx, filter)
	if err != nil {
		logger.Error().Err(err).Msg("fallback recommendation failed")
		meta.Error = true
		return &Response{Recommendations: []Recommendation{}, Metadata: meta, State: StateFallback}
	}

	meta.Fallback = true

	upcoming := make([]Event, 0, len(events))
	for i := range events {
		if events[i].IsCandidate() {
			upcoming = append(upcoming, events[i])
		}
	}

	if len(upcoming) == 0 {
		meta.Reason = noEventsReason
		return &Response{Recommendations: []Recommendation{}, Metadata: meta, State: StateFallback}
	}

	sort.SliceStable(upcoming, func(i, j int) bool {
		return upcoming[i].StartAt.Before(upcoming[j].StartAt)
	})
	if len(upcoming) > req.Limit {
		upcoming = upcoming[:req.Limit]
	}

	recs := make([]Recommendation, 0, len(upcoming))
	for i := range upcoming {
		recs = append(recs, Recommendation{
			EventID: upcoming[i].ID,
			Score:   FallbackScore,
			Reason:  fallbackReason(),
		})
	}

	meta.TotalCandidates = len(recs)
	logger.Info().Int("returned", len(recs)).Msg("served fallback recommendations")

	return &Response{Recommendations: recs, Metadata: meta, State: StateFallback}
}
