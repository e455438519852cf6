// Campusrec - Campus Event Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/campusrec

package algorithms

import (
	"context"

	"github.com/tomtom215/campusrec/internal/recommend"
)

// Popularity scores the owning club's size and recent activity:
//
//	popularity_score = 0.6 * members / max(members, 1) + 0.4 * events / max(events, 1)
//
// Both maxima are taken over every club in the counts, not just the
// candidates. Clubs missing from the counts score 0.
type Popularity struct {
	BaseScorer
}

// NewPopularity creates a popularity scorer.
func NewPopularity() *Popularity {
	return &Popularity{BaseScorer: NewBaseScorer("popularity")}
}

// Score computes popularity features for every candidate event.
func (p *Popularity) Score(ctx context.Context, in *recommend.ScoringInput) (recommend.FeatureTable, error) {
	table := recommend.NewFeatureTable(p.Name(), len(in.Events))
	if err := checkContext(ctx); err != nil {
		return table, err
	}

	members := in.Metrics.MemberCounts
	events := in.Metrics.EventCounts
	maxMembers := float64(maxCount(members, 1))
	maxEvents := float64(maxCount(events, 1))

	for i := range in.Events {
		ev := &in.Events[i]
		m := members[ev.ClubID]
		n := events[ev.ClubID]

		rec := table.Add(ev)
		rec.Set(recommend.FeatureClubMemberCount, float64(m))
		rec.Set(recommend.FeatureClubEventCount, float64(n))
		rec.Set(recommend.FeaturePopularity, clamp01(0.6*float64(m)/maxMembers+0.4*float64(n)/maxEvents))
	}
	return table, nil
}
