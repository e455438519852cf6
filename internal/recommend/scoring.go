// Campusrec - Campus Event Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/campusrec

package recommend

import (
	"sort"

	"github.com/rs/zerolog"
)

const (
	// TitleBoostThreshold is the title_match_score above which the boost applies.
	TitleBoostThreshold = 0.4

	// TitleBoostFactor multiplies the weighted score of strongly matching events.
	TitleBoostFactor = 1.15

	// debugTopN is the number of ranked events logged at debug level.
	debugTopN = 10
)

type weightedFeature struct {
	weight  float64
	feature Feature
}

// weightedFeatures pairs each weight with the feature it scales.
func weightedFeatures(w *ScoringWeights) [6]weightedFeature {
	return [6]weightedFeature{
		{w.ContentSimilarity, FeatureContentSimilarity},
		{w.TitleMatch, FeatureTitleMatch},
		{w.TemporalScore, FeatureTemporal},
		{w.UserPastBehavior, FeatureUserAffinity},
		{w.ClubPopularity, FeaturePopularity},
		{w.ClubMembershipMatch, FeatureFollowingClub},
	}
}

// WeightedScore returns the linear, un-boosted score of a feature record.
func WeightedScore(r *FeatureRecord, w *ScoringWeights) float64 {
	var score float64
	for _, wf := range weightedFeatures(w) {
		score += wf.weight * r.Get(wf.feature)
	}
	return score
}

// FinalScore applies the title boost to the weighted score.
func FinalScore(r *FeatureRecord, w *ScoringWeights) float64 {
	score := WeightedScore(r, w)
	if r.Get(FeatureTitleMatch) > TitleBoostThreshold {
		score *= TitleBoostFactor
	}
	return score
}

// Rank scores merged feature rows, drops those below threshold, and sorts the
// rest by descending score. Ties keep their input order.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func Rank(rows []FeatureRow, w *ScoringWeights, threshold float64, logger zerolog.Logger) []ScoredEvent {
	ranked := make([]ScoredEvent, 0, len(rows))
	for i := range rows {
		score := FinalScore(&rows[i].Features, w)
		if score < threshold {
			continue
		}
		ranked = append(ranked, ScoredEvent{
			EventID:  rows[i].EventID,
			ClubID:   rows[i].ClubID,
			Score:    score,
			Features: rows[i].Features,
		})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})

	if logger.GetLevel() <= zerolog.DebugLevel {
		for i := 0; i < len(ranked) && i < debugTopN; i++ {
			logger.Debug().
				Int("rank", i+1).
				Int("event_id", ranked[i].EventID).
				Int("club_id", ranked[i].ClubID).
				Float64("score", ranked[i].Score).
				Msg("ranked event")
		}
	}

	return ranked
}
