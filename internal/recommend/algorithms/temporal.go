// Campusrec - Campus Event Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/campusrec

package algorithms

import (
	"context"
	"math"
	"time"

	"github.com/tomtom215/campusrec/internal/recommend"
)

// UnscheduledDays is the day count assigned to events without a start time.
const UnscheduledDays = 999

// beyondHorizonScore is the flat score of events past the lookahead horizon.
const beyondHorizonScore = 0.1

// Temporal favors events starting soon:
//
//	score(d) = 0                                   if d < 0
//	score(d) = 0.1                                 if d > max_days_ahead
//	score(d) = exp(-d/decay) * w + (1 - w) * 0.5   otherwise
//
// where d is the fractional number of days until the event starts and w is
// the recency weight.
type Temporal struct {
	BaseScorer
}

// NewTemporal creates a temporal scorer.
func NewTemporal() *Temporal {
	return &Temporal{BaseScorer: NewBaseScorer("temporal")}
}

// DaysUntil returns the fractional days between now and start.
func DaysUntil(start, now time.Time) float64 {
	if start.IsZero() {
		return UnscheduledDays
	}
	return start.Sub(now).Seconds() / 86400
}

// TemporalScore applies the decay curve to a day count.
//
//nolint:gocritic // settings passed by value for clarity
func TemporalScore(days float64, s recommend.TemporalSettings) float64 {
	switch {
	case days < 0:
		return 0
	case days > s.MaxDaysAhead:
		return beyondHorizonScore
	default:
		return clamp01(math.Exp(-days/s.DecayDays)*s.RecencyWeight + (1-s.RecencyWeight)*0.5)
	}
}

// Score computes temporal features for every candidate event.
func (t *Temporal) Score(ctx context.Context, in *recommend.ScoringInput) (recommend.FeatureTable, error) {
	table := recommend.NewFeatureTable(t.Name(), len(in.Events))
	if err := checkContext(ctx); err != nil {
		return table, err
	}

	settings := in.Config.Temporal
	for i := range in.Events {
		days := DaysUntil(in.Events[i].StartAt, in.Now)
		rec := table.Add(&in.Events[i])
		rec.Set(recommend.FeatureTemporal, TemporalScore(days, settings))
		rec.Set(recommend.FeatureDaysUntil, days)
	}
	return table, nil
}
