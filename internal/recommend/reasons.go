// Campusrec - Campus Event Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/campusrec

package recommend

import (
	"fmt"
	"math"
)

// ReasonCategory tags the rule that explained a recommendation.
type ReasonCategory int

const (
	// ReasonPopular is the default when no other rule matches.
	ReasonPopular ReasonCategory = iota
	// ReasonClubMembership means the user follows the owning club.
	ReasonClubMembership
	// ReasonHighlyRelevant means the event text strongly matches the user.
	ReasonHighlyRelevant
	// ReasonUserHistory means the user attended events of the owning club.
	ReasonUserHistory
	// ReasonSimilarContent means the owning club resembles followed clubs.
	ReasonSimilarContent
	// ReasonRelevantTopic means the event text moderately matches the user.
	ReasonRelevantTopic
	// ReasonUpcomingSoon means the event starts soon.
	ReasonUpcomingSoon
	// ReasonFallback marks non-personalized results.
	ReasonFallback

	reasonCategoryCount
)

var reasonCategoryNames = [reasonCategoryCount]string{
	ReasonPopular:        "popular",
	ReasonClubMembership: "club_membership",
	ReasonHighlyRelevant: "highly_relevant",
	ReasonUserHistory:    "user_history",
	ReasonSimilarContent: "similar_content",
	ReasonRelevantTopic:  "relevant_topic",
	ReasonUpcomingSoon:   "upcoming_soon",
	ReasonFallback:       "fallback",
}

// String returns the wire tag.
func (c ReasonCategory) String() string {
	if c < 0 || c >= reasonCategoryCount {
		return "unknown"
	}
	return reasonCategoryNames[c]
}

// MarshalText encodes the category as its wire tag.
func (c ReasonCategory) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalText decodes a wire tag.
func (c *ReasonCategory) UnmarshalText(text []byte) error {
	for i, name := range reasonCategoryNames {
		if name == string(text) {
			*c = ReasonCategory(i)
			return nil
		}
	}
	return fmt.Errorf("unknown reason category %q", text)
}

// reasonRule is one step of the explanation cascade.
type reasonRule struct {
	category ReasonCategory
	matches  func(r *FeatureRecord) bool
	details  func(r *FeatureRecord) string
}

func fixed(s string) func(*FeatureRecord) string {
	return func(*FeatureRecord) string { return s }
}

func percent(v float64) int {
	return int(v * 100)
}

// reasonRules is evaluated top to bottom; the first match wins. The last
// rule always matches.
var reasonRules = []reasonRule{
	{
		category: ReasonClubMembership,
		matches:  func(r *FeatureRecord) bool { return r.Get(FeatureFollowingClub) > 0 },
		details:  fixed("You're a member of this club"),
	},
	{
		category: ReasonHighlyRelevant,
		matches:  func(r *FeatureRecord) bool { return r.Get(FeatureTitleMatch) > 0.5 },
		details: func(r *FeatureRecord) string {
			return fmt.Sprintf("Event content strongly matches your interests (%d%% match)", percent(r.Get(FeatureTitleMatch)))
		},
	},
	{
		category: ReasonUserHistory,
		matches:  func(r *FeatureRecord) bool { return r.Get(FeaturePastAttendance) > 0 },
		details: func(r *FeatureRecord) string {
			return fmt.Sprintf("You've attended %d event(s) from this club", int(r.Get(FeaturePastAttendance)))
		},
	},
	{
		category: ReasonSimilarContent,
		matches:  func(r *FeatureRecord) bool { return r.Get(FeatureContentSimilarity) > 0.4 },
		details: func(r *FeatureRecord) string {
			return fmt.Sprintf("Similar to clubs you follow (%d%% similarity)", percent(r.Get(FeatureContentSimilarity)))
		},
	},
	{
		category: ReasonRelevantTopic,
		matches:  func(r *FeatureRecord) bool { return r.Get(FeatureTitleMatch) > 0.3 },
		details: func(r *FeatureRecord) string {
			return fmt.Sprintf("Event topic matches your interests (%d%% match)", percent(r.Get(FeatureTitleMatch)))
		},
	},
	{
		category: ReasonUpcomingSoon,
		matches:  func(r *FeatureRecord) bool { return r.Get(FeatureTemporal) > 0.5 },
		details: func(r *FeatureRecord) string {
			d := r.Get(FeatureDaysUntil)
			switch {
			case d < 1:
				return "Happening today!"
			case d < 3:
				return fmt.Sprintf("Happening in %d day(s)", int(d))
			default:
				return "Upcoming event"
			}
		},
	},
	{
		category: ReasonPopular,
		matches:  func(*FeatureRecord) bool { return true },
		details:  fixed("Popular event in your campus"),
	},
}

// Explain returns the reason for a scored feature record.
func Explain(r *FeatureRecord) Reason {
	reason := Reason{Primary: ReasonPopular, Details: "Popular event in your campus"}
	for i := range reasonRules {
		if reasonRules[i].matches(r) {
			reason.Primary = reasonRules[i].category
			reason.Details = reasonRules[i].details(r)
			break
		}
	}
	reason.Features = map[string]float64{
		"content_similarity": round3(r.Get(FeatureContentSimilarity)),
		"title_match":        round3(r.Get(FeatureTitleMatch)),
		"temporal_score":     round3(r.Get(FeatureTemporal)),
		"user_affinity":      round3(r.Get(FeatureUserAffinity)),
		"popularity":         round3(r.Get(FeaturePopularity)),
	}
	return reason
}

// fallbackReason explains a non-personalized result.
func fallbackReason() Reason {
	return Reason{
		Primary:  ReasonFallback,
		Details:  "Upcoming public event",
		Features: map[string]float64{},
	}
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
