// Campusrec - Campus Event Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/campusrec

package algorithms

import (
	"context"
	"strings"

	"github.com/tomtom215/campusrec/internal/recommend"
	"github.com/tomtom215/campusrec/internal/recommend/textindex"
)

// Content scores how closely an event matches the clubs a user follows.
//
// Two similarities are computed per event:
//
//	club = cos(mean(followed club vectors), owning club vector)
//	text = 0.7 * cos(interests, event text) + 0.3 * jaccard(interests, event text)
//
// where interests is the name, description and purpose of every followed
// club, and the event text is compared through a two-document index fitted
// for that pair alone. The emitted features are:
//
//	content_similarity = 0.6 * club + 0.4 * text
//	title_match_score  = text
type Content struct {
	BaseScorer

	clubWeight float64
	textWeight float64
}

// NewContent creates a content scorer with the 0.6/0.4 club/text blend.
func NewContent() *Content {
	return &Content{
		BaseScorer: NewBaseScorer("content"),
		clubWeight: 0.6,
		textWeight: 0.4,
	}
}

// Score computes content features for every candidate event.
func (c *Content) Score(ctx context.Context, in *recommend.ScoringInput) (recommend.FeatureTable, error) {
	table := recommend.NewFeatureTable(c.Name(), len(in.Events))
	if len(in.Events) == 0 || len(in.FollowedClubs) == 0 {
		return table, nil
	}
	if err := checkContext(ctx); err != nil {
		return table, err
	}

	if !in.Catalog.IndexAvailable() {
		for i := range in.Events {
			rec := table.Add(&in.Events[i])
			rec.Set(recommend.FeatureContentSimilarity, 0)
			rec.Set(recommend.FeatureTitleMatch, 0)
		}
		return table, nil
	}

	index := in.Catalog.Index
	profile := index.MeanVector(in.FollowedClubs)
	interests := interestText(in)
	maxFeatures := in.Config.Content.TextMaxFeatures

	// Events of the same club share a club similarity.
	clubSim := make(map[int]float64)

	for i := range in.Events {
		ev := &in.Events[i]

		club, ok := clubSim[ev.ClubID]
		if !ok {
			if profile != nil {
				club = index.Similarity(profile, ev.ClubID)
			}
			clubSim[ev.ClubID] = club
		}

		var text float64
		if interests != "" {
			text = textindex.TextSimilarity(interests, ev.WeightedText(), maxFeatures)
		}

		rec := table.Add(ev)
		rec.Set(recommend.FeatureContentSimilarity, clamp01(c.clubWeight*club+c.textWeight*text))
		rec.Set(recommend.FeatureTitleMatch, text)
	}

	return table, nil
}

// interestText concatenates the text of every followed club in the catalog.
func interestText(in *recommend.ScoringInput) string {
	parts := make([]string, 0, len(in.FollowedClubs))
	for _, id := range in.FollowedClubs {
		if club, ok := in.Catalog.Club(id); ok {
			if t := club.InterestText(); t != "" {
				parts = append(parts, t)
			}
		}
	}
	return strings.Join(parts, " ")
}
