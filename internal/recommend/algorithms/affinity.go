// Campusrec - Campus Event Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/campusrec

package algorithms

import (
	"context"

	"github.com/tomtom215/campusrec/internal/recommend"
)

// Affinity scores the user's relationship with the owning club:
//
//	is_following_club    = 1 if the user follows the club, else 0
//	past_club_attendance = attended events of the club in the history window
//	user_affinity_score  = 0.6 * following + 0.4 * attendance / max(attendance)
//
// The attendance maximum is taken over the candidate events.
type Affinity struct {
	BaseScorer
}

// NewAffinity creates an affinity scorer.
func NewAffinity() *Affinity {
	return &Affinity{BaseScorer: NewBaseScorer("affinity")}
}

// Score computes affinity features for every candidate event.
func (a *Affinity) Score(ctx context.Context, in *recommend.ScoringInput) (recommend.FeatureTable, error) {
	table := recommend.NewFeatureTable(a.Name(), len(in.Events))
	if err := checkContext(ctx); err != nil {
		return table, err
	}

	following := in.FollowingSet()

	attended := make(map[int]int)
	for i := range in.History {
		if in.History[i].Attended {
			attended[in.History[i].ClubID]++
		}
	}

	var maxAttendance int
	for i := range in.Events {
		if n := attended[in.Events[i].ClubID]; n > maxAttendance {
			maxAttendance = n
		}
	}

	for i := range in.Events {
		ev := &in.Events[i]

		var follow float64
		if _, ok := following[ev.ClubID]; ok {
			follow = 1
		}

		count := attended[ev.ClubID]
		var norm float64
		if maxAttendance > 0 {
			norm = float64(count) / float64(maxAttendance)
		}

		rec := table.Add(ev)
		rec.Set(recommend.FeatureFollowingClub, follow)
		rec.Set(recommend.FeaturePastAttendance, float64(count))
		rec.Set(recommend.FeatureUserAffinity, clamp01(0.6*follow+0.4*norm))
	}
	return table, nil
}
