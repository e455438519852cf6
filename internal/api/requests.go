// Campusrec - Campus Event Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/campusrec

package api

import (
	"time"

	"github.com/tomtom215/campusrec/internal/recommend"
)

// RecommendRequest is the body of POST /recommend.
type RecommendRequest struct {
	UserID  int               `json:"userId" validate:"required,gte=1"`
	Limit   int               `json:"limit" validate:"gte=0"`
	Context *RecommendContext `json:"context" validate:"omitempty"`
}

// RecommendContext narrows the candidate events.
type RecommendContext struct {
	ExcludeEventIDs []int             `json:"excludeEventIds" validate:"omitempty,max=1000,dive,gte=1"`
	Filters         *RecommendFilters `json:"filters" validate:"omitempty"`
}

// RecommendFilters bounds event start times.
type RecommendFilters struct {
	MinDate *time.Time `json:"minDate"`
	MaxDate *time.Time `json:"maxDate"`
}

// toEngineRequest converts the body to an engine request.
func (r *RecommendRequest) toEngineRequest(requestID string) recommend.Request {
	req := recommend.Request{
		UserID:    r.UserID,
		Limit:     r.Limit,
		RequestID: requestID,
	}
	if r.Context == nil {
		return req
	}

	req.Filter.ExcludeEventIDs = r.Context.ExcludeEventIDs
	if f := r.Context.Filters; f != nil {
		if f.MinDate != nil {
			req.Filter.MinDate = f.MinDate.UTC()
		}
		if f.MaxDate != nil {
			req.Filter.MaxDate = f.MaxDate.UTC()
		}
	}
	return req
}

// ConfigPatchRequest is the body of PUT /config.
type ConfigPatchRequest struct {
	ScoringWeights map[string]float64 `json:"scoring_weights" validate:"required,min=1,dive,keys,weightname,endkeys,gte=0"`
}

// ConfigView is the public view of the recommender configuration.
type ConfigView struct {
	Model    recommend.ModelInfo        `json:"model"`
	Weights  recommend.ScoringWeights   `json:"scoring_weights"`
	Ranking  recommend.RankingSettings  `json:"ranking_settings"`
	Content  recommend.ContentSettings  `json:"content_settings"`
	Temporal recommend.TemporalSettings `json:"temporal_settings"`
}

func newConfigView(cfg *recommend.Config) ConfigView {
	return ConfigView{
		Model:    cfg.Model,
		Weights:  cfg.Weights,
		Ranking:  cfg.Ranking,
		Content:  cfg.Content,
		Temporal: cfg.Temporal,
	}
}

// ConfigChangeResponse acknowledges PUT /config and POST /reload-config.
type ConfigChangeResponse struct {
	Status     string    `json:"status"`
	Timestamp  time.Time `json:"timestamp"`
	Version    string    `json:"version"`
	Generation uint64    `json:"generation"`
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status    string    `json:"status"`
	Database  string    `json:"database"`
	Version   string    `json:"version"`
	Timestamp time.Time `json:"timestamp"`
	Uptime    float64   `json:"uptime_seconds"`
}
