// Campusrec - Campus Event Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/campusrec

package metrics

import (
	"time"

	"github.com/tomtom215/campusrec/internal/recommend"
)

// Outcome labels for recommendation metrics.
const (
	OutcomePersonalized = "personalized"
	OutcomeEmpty        = "empty"
	OutcomeFallback     = "fallback"
	OutcomeError        = "error"
	OutcomeCached       = "cached"
)

// Recorder exports engine activity to Prometheus. It implements
// recommend.Observer and provides the catalog rebuild hook.
type Recorder struct{}

var _ recommend.Observer = Recorder{}

// Outcome classifies a response for metric labels.
func Outcome(resp *recommend.Response) string {
	switch {
	case resp.Metadata.Error:
		return OutcomeError
	case resp.Metadata.Fallback:
		return OutcomeFallback
	case resp.Metadata.CacheHit:
		return OutcomeCached
	case len(resp.Recommendations) == 0:
		return OutcomeEmpty
	default:
		return OutcomePersonalized
	}
}

// ObserveRecommendation records one finished request.
func (Recorder) ObserveRecommendation(resp *recommend.Response, took time.Duration) {
	outcome := Outcome(resp)
	RecommendationsTotal.WithLabelValues(outcome).Inc()
	RecommendationDuration.WithLabelValues(outcome).Observe(took.Seconds())
	RecommendationResults.Observe(float64(len(resp.Recommendations)))
	if outcome != OutcomeCached {
		RecommendationCandidates.Observe(float64(resp.Metadata.TotalCandidates))
	}
	for i := range resp.Recommendations {
		RecommendationReasons.WithLabelValues(resp.Recommendations[i].Reason.Primary.String()).Inc()
	}
}

// ObserveCatalogRebuild records a finished catalog rebuild. It matches
// the ClubCatalog.OnRebuild hook.
func (Recorder) ObserveCatalogRebuild(snap *recommend.CatalogSnapshot, took time.Duration) {
	CatalogRebuildDuration.Observe(took.Seconds())
	CatalogClubs.Set(float64(len(snap.Clubs)))
	CatalogVocabulary.Set(float64(snap.Index.VocabularySize()))
	if snap.IndexAvailable() {
		CatalogIndexAvailable.Set(1)
	} else {
		CatalogIndexAvailable.Set(0)
	}
	CatalogLastRebuild.Set(float64(snap.BuiltAt.Unix()))
}
