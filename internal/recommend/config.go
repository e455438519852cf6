// Campusrec - Campus Event Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/campusrec

package recommend

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"
)

// ErrInvalidConfig wraps every configuration validation failure.
var ErrInvalidConfig = errors.New("invalid recommender config")

// Config contains all configuration for the recommendation engine.
type Config struct {
	// Model identifies the scoring model reported in responses.
	Model ModelInfo `json:"model"`

	// Weights is the contribution of each signal to the final score.
	// Weights do not need to sum to 1.0.
	Weights ScoringWeights `json:"scoring_weights"`

	// Ranking controls limits, thresholds and result selection.
	Ranking RankingSettings `json:"ranking_settings"`

	// Content controls text vectorization.
	Content ContentSettings `json:"content_settings"`

	// Temporal controls the start-time decay.
	Temporal TemporalSettings `json:"temporal_settings"`

	// Data controls lookback windows and catalog caching.
	Data DataSettings `json:"data_settings"`
}

// ModelInfo identifies the model.
type ModelInfo struct {
	// Name is the model name.
	// Default: "hybrid-event-recommender".
	Name string `json:"name"`

	// Version is reported as modelVersion in response metadata.
	// Default: "1.0.0".
	Version string `json:"version"`
}

// Weight names accepted in partial updates.
const (
	WeightContentSimilarity   = "content_similarity"
	WeightTitleMatch          = "title_match"
	WeightTemporalScore       = "temporal_score"
	WeightUserPastBehavior    = "user_past_behavior"
	WeightClubPopularity      = "club_popularity"
	WeightClubMembershipMatch = "club_membership_match"
)

// ScoringWeights defines the linear weight of each signal.
type ScoringWeights struct {
	// ContentSimilarity weighs content_similarity.
	// Default: 0.20.
	ContentSimilarity float64 `json:"content_similarity"`

	// TitleMatch weighs title_match_score.
	// Default: 0.15.
	TitleMatch float64 `json:"title_match"`

	// TemporalScore weighs temporal_score.
	// Default: 0.15.
	TemporalScore float64 `json:"temporal_score"`

	// UserPastBehavior weighs user_affinity_score.
	// Default: 0.15.
	UserPastBehavior float64 `json:"user_past_behavior"`

	// ClubPopularity weighs popularity_score.
	// Default: 0.05.
	ClubPopularity float64 `json:"club_popularity"`

	// ClubMembershipMatch weighs is_following_club.
	// Default: 0.30.
	ClubMembershipMatch float64 `json:"club_membership_match"`
}

// ToMap returns the weights keyed by name.
//
//nolint:gocritic // value receiver is intentional for immutable semantics
func (w ScoringWeights) ToMap() map[string]float64 {
	return map[string]float64{
		WeightContentSimilarity:   w.ContentSimilarity,
		WeightTitleMatch:          w.TitleMatch,
		WeightTemporalScore:       w.TemporalScore,
		WeightUserPastBehavior:    w.UserPastBehavior,
		WeightClubPopularity:      w.ClubPopularity,
		WeightClubMembershipMatch: w.ClubMembershipMatch,
	}
}

// field returns a pointer to the named weight, or nil if unknown.
func (w *ScoringWeights) field(name string) *float64 {
	switch name {
	case WeightContentSimilarity:
		return &w.ContentSimilarity
	case WeightTitleMatch:
		return &w.TitleMatch
	case WeightTemporalScore:
		return &w.TemporalScore
	case WeightUserPastBehavior:
		return &w.UserPastBehavior
	case WeightClubPopularity:
		return &w.ClubPopularity
	case WeightClubMembershipMatch:
		return &w.ClubMembershipMatch
	default:
		return nil
	}
}

// IsWeightName reports whether name is a scoring weight accepted by Merge.
func IsWeightName(name string) bool {
	var w ScoringWeights
	return w.field(name) != nil
}

// Merge returns a copy of w with every entry of patch applied. A zero turns
// its signal off. Unknown names are rejected before anything is applied.
//
//nolint:gocritic // value receiver is intentional for immutable semantics
func (w ScoringWeights) Merge(patch map[string]float64) (ScoringWeights, error) {
	var unknown []string
	for name := range patch {
		if w.field(name) == nil {
			unknown = append(unknown, name)
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return w, fmt.Errorf("%w: unknown scoring weight(s): %s", ErrInvalidConfig, strings.Join(unknown, ", "))
	}

	out := w
	for name, v := range patch {
		*out.field(name) = v
	}
	return out, nil
}

// SelectionMode decides how many ranked events are returned.
type SelectionMode string

const (
	// SelectTop1 returns only the best event regardless of the requested limit.
	SelectTop1 SelectionMode = "top1"
	// SelectTopN returns the best events up to the requested limit.
	SelectTopN SelectionMode = "top_n"
	// SelectDiverse returns up to the requested limit through the diversity selector.
	SelectDiverse SelectionMode = "diverse"
)

// Valid reports whether m is a known mode.
func (m SelectionMode) Valid() bool {
	switch m {
	case SelectTop1, SelectTopN, SelectDiverse:
		return true
	default:
		return false
	}
}

// RankingSettings controls limits, thresholds and selection.
type RankingSettings struct {
	// MaxLimit caps the requested result count.
	// Default: 50.
	MaxLimit int `json:"max_limit"`

	// DefaultLimit is used when a request omits the limit.
	// Default: 10.
	DefaultLimit int `json:"default_limit"`

	// MinScoreThreshold drops events scoring below it after boosting.
	// Default: 0.05.
	MinScoreThreshold float64 `json:"min_score_threshold"`

	// DiversityFactor is the share of the limit one club may fill when the
	// diversity selector is used.
	// Default: 0.2.
	DiversityFactor float64 `json:"diversity_factor"`

	// SelectionMode is top1, top_n or diverse.
	// Default: "top1".
	SelectionMode SelectionMode `json:"selection_mode"`
}

// ContentSettings controls text vectorization.
type ContentSettings struct {
	// MaxFeatures caps the club index vocabulary.
	// Default: 200.
	MaxFeatures int `json:"tfidf_max_features"`

	// UseStopwords enables stopword removal for the club index.
	// Default: true.
	UseStopwords bool `json:"use_stopwords"`

	// Stopwords is the stopword list. Default: DefaultStopwords.
	Stopwords []string `json:"stopwords"`

	// TextMaxFeatures caps the vocabulary of ad-hoc event-text comparisons.
	// Default: 100.
	TextMaxFeatures int `json:"text_max_features"`
}

// ActiveStopwords returns the stopword list when enabled, else nil.
func (c *ContentSettings) ActiveStopwords() []string {
	if !c.UseStopwords {
		return nil
	}
	return c.Stopwords
}

// TemporalSettings controls the start-time decay.
type TemporalSettings struct {
	// DecayDays is the e-folding time of the decay curve.
	// Default: 30.
	DecayDays float64 `json:"decay_days"`

	// MaxDaysAhead is the horizon past which events get a flat low score.
	// Default: 90.
	MaxDaysAhead float64 `json:"max_days_ahead"`

	// RecencyWeight blends the decay curve with a neutral 0.5.
	// Default: 0.7.
	RecencyWeight float64 `json:"recency_weight"`
}

// DataSettings controls lookback windows and catalog caching.
type DataSettings struct {
	// HistoryLookbackDays bounds the interaction history read per request.
	// Default: 365.
	HistoryLookbackDays int `json:"history_lookback_days"`

	// EventCountLookbackDays bounds the recent event count per club.
	// Default: 30.
	EventCountLookbackDays int `json:"event_count_lookback_days"`

	// CatalogTTL is the maximum age of the cached club catalog and index.
	// Default: 5m.
	CatalogTTL time.Duration `json:"catalog_ttl"`
}

// DefaultStopwords is a compact Turkish stopword list used by the club index.
var DefaultStopwords = []string{
	"acaba", "ama", "ancak", "bana", "bazı", "belki", "ben", "beni", "benim",
	"bile", "bir", "biri", "birkaç", "biz", "bize", "bizi", "bu", "buna",
	"bunu", "bunun", "çok", "çünkü", "da", "daha", "de", "defa", "diye",
	"en", "gibi", "göre", "hem", "hep", "hepsi", "her", "hiç", "için",
	"ile", "ise", "kadar", "ki", "kim", "mı", "mu", "mü", "nasıl", "ne",
	"neden", "nerede", "niçin", "o", "olan", "olarak", "oldu", "olduğu",
	"olsun", "onlar", "onu", "onun", "sen", "siz", "şey", "şu", "tüm",
	"ve", "veya", "ya", "yani",
}

// DefaultConfig returns a Config with production defaults.
func DefaultConfig() *Config {
	stop := make([]string, len(DefaultStopwords))
	copy(stop, DefaultStopwords)

	return &Config{
		Model: ModelInfo{
			Name:    "hybrid-event-recommender",
			Version: "1.0.0",
		},
		Weights: ScoringWeights{
			ContentSimilarity:   0.20,
			TitleMatch:          0.15,
			TemporalScore:       0.15,
			UserPastBehavior:    0.15,
			ClubPopularity:      0.05,
			ClubMembershipMatch: 0.30,
		},
		Ranking: RankingSettings{
			MaxLimit:          50,
			DefaultLimit:      10,
			MinScoreThreshold: 0.05,
			DiversityFactor:   0.2,
			SelectionMode:     SelectTop1,
		},
		Content: ContentSettings{
			MaxFeatures:     200,
			UseStopwords:    true,
			Stopwords:       stop,
			TextMaxFeatures: 100,
		},
		Temporal: TemporalSettings{
			DecayDays:     30,
			MaxDaysAhead:  90,
			RecencyWeight: 0.7,
		},
		Data: DataSettings{
			HistoryLookbackDays:    365,
			EventCountLookbackDays: 30,
			CatalogTTL:             5 * time.Minute,
		},
	}
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrInvalidConfig}, args...)...)
}

// Validate checks the configuration for errors.
//
//nolint:gocyclo // validation needs to check many fields
func (c *Config) Validate() error {
	if c.Model.Version == "" {
		return invalid("model.version must not be empty")
	}

	for name, v := range c.Weights.ToMap() {
		if v < 0 {
			return invalid("scoring_weights.%s must be non-negative, got %f", name, v)
		}
	}

	if c.Ranking.MaxLimit < 1 {
		return invalid("ranking_settings.max_limit must be positive, got %d", c.Ranking.MaxLimit)
	}
	if c.Ranking.DefaultLimit < 1 || c.Ranking.DefaultLimit > c.Ranking.MaxLimit {
		return invalid("ranking_settings.default_limit must be in [1, %d], got %d", c.Ranking.MaxLimit, c.Ranking.DefaultLimit)
	}
	if c.Ranking.MinScoreThreshold < 0 {
		return invalid("ranking_settings.min_score_threshold must be non-negative, got %f", c.Ranking.MinScoreThreshold)
	}
	if c.Ranking.DiversityFactor <= 0 || c.Ranking.DiversityFactor > 1 {
		return invalid("ranking_settings.diversity_factor must be in (0, 1], got %f", c.Ranking.DiversityFactor)
	}
	if !c.Ranking.SelectionMode.Valid() {
		return invalid("ranking_settings.selection_mode must be one of top1, top_n, diverse, got %q", c.Ranking.SelectionMode)
	}

	if c.Content.MaxFeatures < 1 {
		return invalid("content_settings.tfidf_max_features must be positive, got %d", c.Content.MaxFeatures)
	}
	if c.Content.TextMaxFeatures < 1 {
		return invalid("content_settings.text_max_features must be positive, got %d", c.Content.TextMaxFeatures)
	}

	if c.Temporal.DecayDays <= 0 {
		return invalid("temporal_settings.decay_days must be positive, got %f", c.Temporal.DecayDays)
	}
	if c.Temporal.MaxDaysAhead <= 0 {
		return invalid("temporal_settings.max_days_ahead must be positive, got %f", c.Temporal.MaxDaysAhead)
	}
	if c.Temporal.RecencyWeight < 0 || c.Temporal.RecencyWeight > 1 {
		return invalid("temporal_settings.recency_weight must be in [0, 1], got %f", c.Temporal.RecencyWeight)
	}

	if c.Data.HistoryLookbackDays < 1 {
		return invalid("data_settings.history_lookback_days must be positive, got %d", c.Data.HistoryLookbackDays)
	}
	if c.Data.EventCountLookbackDays < 1 {
		return invalid("data_settings.event_count_lookback_days must be positive, got %d", c.Data.EventCountLookbackDays)
	}
	if c.Data.CatalogTTL <= 0 {
		return invalid("data_settings.catalog_ttl must be positive, got %v", c.Data.CatalogTTL)
	}

	return nil
}

// Clone returns a deep copy of the configuration.
func (c *Config) Clone() *Config {
	out := *c
	if c.Content.Stopwords != nil {
		out.Content.Stopwords = make([]string, len(c.Content.Stopwords))
		copy(out.Content.Stopwords, c.Content.Stopwords)
	}
	return &out
}
