// Campusrec - Campus Event Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/campusrec

package recommend

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"

	"github.com/tomtom215/campusrec/internal/tracing"
)

// PipelineState is the state a request ended in.
type PipelineState int

// Pipeline states. Empty, Fallback and Formatted are terminal.
const (
	StateStart PipelineState = iota
	StateCandidatesFetched
	StateScored
	StateSelected
	StateFormatted
	StateEmpty
	StateFallback
)

var pipelineStateNames = [...]string{
	StateStart:             "start",
	StateCandidatesFetched: "candidates_fetched",
	StateScored:            "scored",
	StateSelected:          "selected",
	StateFormatted:         "formatted",
	StateEmpty:             "empty",
	StateFallback:          "fallback",
}

// String returns the state name.
func (s PipelineState) String() string {
	if s < 0 || int(s) >= len(pipelineStateNames) {
		return "unknown"
	}
	return pipelineStateNames[s]
}

// Observer receives the outcome of every request.
type Observer interface {
	ObserveRecommendation(resp *Response, took time.Duration)
}

// Engine orchestrates candidate retrieval, scoring, selection and the
// fallback path. It is safe for concurrent use.
type Engine struct {
	store    *ConfigStore
	provider DataProvider
	catalog  *ClubCatalog
	logger   zerolog.Logger
	now      func() time.Time

	// Registered scorers and selectors
	scorers   []FeatureScorer
	selectors map[string]Selector
	regMu     sync.RWMutex

	cache    ResponseCache
	observer Observer

	// Stats
	requestCount  atomic.Int64
	latencyNanos  atomic.Int64
	lastRequest   atomic.Int64
	fallbackCount atomic.Int64
	errorCount    atomic.Int64
	emptyCount    atomic.Int64
	cacheHits     atomic.Int64
}

// NewEngine creates an engine reading configuration from store and data from
// provider.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewEngine(store *ConfigStore, provider DataProvider, logger zerolog.Logger) (*Engine, error) {
	if store == nil {
		return nil, errors.New("config store is required")
	}
	if provider == nil {
		return nil, errors.New("data provider is required")
	}

	return &Engine{
		store:     store,
		provider:  provider,
		catalog:   NewClubCatalog(provider, logger),
		logger:    logger.With().Str("component", "recommend").Logger(),
		now:       time.Now,
		selectors: make(map[string]Selector),
	}, nil
}

// RegisterScorer adds a feature scorer. Scorers run in registration order.
func (e *Engine) RegisterScorer(s FeatureScorer) {
	e.regMu.Lock()
	defer e.regMu.Unlock()

	e.scorers = append(e.scorers, s)
	e.logger.Info().Str("scorer", s.Name()).Msg("registered scorer")
}

// RegisterSelector adds a selector, replacing any with the same name.
func (e *Engine) RegisterSelector(s Selector) {
	e.regMu.Lock()
	defer e.regMu.Unlock()

	e.selectors[s.Name()] = s
	e.logger.Info().Str("selector", s.Name()).Msg("registered selector")
}

// SetClock replaces the time source of the engine and its catalog.
func (e *Engine) SetClock(now func() time.Time) {
	e.now = now
	e.catalog.now = now
}

// SetCache enables response caching.
func (e *Engine) SetCache(c ResponseCache) {
	e.cache = c
}

// SetObserver installs a request observer.
func (e *Engine) SetObserver(o Observer) {
	e.observer = o
}

// Catalog returns the club catalog.
func (e *Engine) Catalog() *ClubCatalog {
	return e.catalog
}

// Config returns the config store.
func (e *Engine) Config() *ConfigStore {
	return e.store
}

func (e *Engine) getScorers() []FeatureScorer {
	e.regMu.RLock()
	defer e.regMu.RUnlock()
	return e.scorers
}

func (e *Engine) selector(name string) Selector {
	e.regMu.RLock()
	defer e.regMu.RUnlock()
	return e.selectors[name]
}

// Recommend returns recommendations for one user. It never fails: data or
// scoring failures and users without followed clubs are served by the
// fallback path, and a failing fallback yields an empty list flagged as an
// error in the metadata.
//
//nolint:gocritic // hugeParam: req passed by value for immutability
func (e *Engine) Recommend(ctx context.Context, req Request) *Response {
	start := e.now()
	cfg := e.store.Get()
	req = e.prepareRequest(req, cfg)
	logger := e.createRequestLogger(req)

	ctx, endSpan := tracing.StartSpan(ctx, "recommend.Recommend",
		attribute.Int("user_id", req.UserID),
		attribute.Int("limit", req.Limit),
	)

	key := e.cacheKey(req)
	if resp := e.tryGetCachedResponse(ctx, key, req, start, logger); resp != nil {
		endSpan(nil)
		e.finish(resp, start)
		return resp
	}

	resp, err := e.personalize(ctx, req, cfg, start, logger)
	switch {
	case err == nil:
		e.cacheResponse(ctx, key, resp)
		endSpan(nil)
	case errors.Is(err, ErrNoFollowedClubs):
		logger.Info().Msg("user follows no clubs, using fallback")
		resp = e.fallback(ctx, req, cfg, start, logger)
		endSpan(nil)
	default:
		logger.Error().Err(err).Msg("personalized recommendation failed, using fallback")
		resp = e.fallback(ctx, req, cfg, start, logger)
		endSpan(err)
	}

	e.finish(resp, start)

	logger.Debug().
		Str("state", resp.State.String()).
		Int("returned", len(resp.Recommendations)).
		Float64("latency_ms", resp.Metadata.ComputationTimeMS).
		Msg("recommendation complete")

	return resp
}

// prepareRequest applies limit defaults and the request ID.
//
//nolint:gocritic // hugeParam: req passed by value for immutability
func (e *Engine) prepareRequest(req Request, cfg *Config) Request {
	if req.Limit <= 0 {
		req.Limit = cfg.Ranking.DefaultLimit
	}
	if req.Limit > cfg.Ranking.MaxLimit {
		req.Limit = cfg.Ranking.MaxLimit
	}
	if req.RequestID == "" {
		req.RequestID = uuid.NewString()
	}
	return req
}

// createRequestLogger creates a logger with request context.
//
//nolint:gocritic // hugeParam: req passed by value for immutability
func (e *Engine) createRequestLogger(req Request) zerolog.Logger {
	return e.logger.With().
		Str("request_id", req.RequestID).
		Int("user_id", req.UserID).
		Int("limit", req.Limit).
		Logger()
}

// personalize runs the scoring pipeline. Panics are converted into
// ErrScoringFailure.
//
//nolint:gocritic // hugeParam: req passed by value for immutability
func (e *Engine) personalize(ctx context.Context, req Request, cfg *Config, now time.Time, logger zerolog.Logger) (resp *Response, err error) {
	defer func() {
		if r := recover(); r != nil {
			resp = nil
			err = fmt.Errorf("%w: panic: %v", ErrScoringFailure, r)
		}
	}()

	followed, err := e.provider.FollowedClubs(ctx, req.UserID)
	if err != nil {
		return nil, fmt.Errorf("%w: followed clubs: %v", ErrDataUnavailable, err)
	}
	if len(followed) == 0 {
		return nil, ErrNoFollowedClubs
	}

	events, history, err := e.fetchCandidates(ctx, req, cfg, now)
	if err != nil {
		return nil, err
	}

	meta := e.baseMetadata(req, cfg, now)
	meta.TotalCandidates = len(events)
	meta.UserFollowsClubs = len(followed)

	if len(events) == 0 {
		logger.Debug().Msg("no candidates after exclusions")
		return &Response{Recommendations: []Recommendation{}, Metadata: meta, State: StateEmpty}, nil
	}

	in, err := e.scoringInput(ctx, req, cfg, now, followed, events, history)
	if err != nil {
		return nil, err
	}

	ranked, err := e.score(ctx, in, logger)
	if err != nil {
		return nil, err
	}

	selected, mode := e.selectEvents(cfg.Ranking.SelectionMode, ranked, req.Limit)
	meta.SelectionMode = mode

	recs := make([]Recommendation, 0, len(selected))
	for i := range selected {
		recs = append(recs, Recommendation{
			EventID: selected[i].EventID,
			Score:   selected[i].Score,
			Reason:  Explain(&selected[i].Features),
		})
	}

	return &Response{Recommendations: recs, Metadata: meta, State: StateFormatted}, nil
}

// fetchCandidates loads candidate events and removes excluded, invalid and
// already attended ones.
//
//nolint:gocritic // hugeParam: req passed by value for immutability
func (e *Engine) fetchCandidates(ctx context.Context, req Request, cfg *Config, now time.Time) ([]Event, []Interaction, error) {
	filter := req.Filter
	if filter.MinDate.IsZero() {
		filter.MinDate = now
	}

	events, err := e.provider.Events(ctx, filter)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: events: %v", ErrDataUnavailable, err)
	}

	since := now.AddDate(0, 0, -cfg.Data.HistoryLookbackDays)
	history, err := e.provider.UserHistory(ctx, req.UserID, since)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: user history: %v", ErrDataUnavailable, err)
	}

	exclude := make(map[int]struct{}, len(filter.ExcludeEventIDs)+len(history))
	for _, id := range filter.ExcludeEventIDs {
		exclude[id] = struct{}{}
	}
	for i := range history {
		if history[i].Attended {
			exclude[history[i].EventID] = struct{}{}
		}
	}

	out := make([]Event, 0, len(events))
	for i := range events {
		if !events[i].IsCandidate() {
			continue
		}
		if _, skip := exclude[events[i].ID]; skip {
			continue
		}
		out = append(out, events[i])
	}

	return out, history, nil
}

// scoringInput gathers the catalog and popularity counts for the scorers.
//
//nolint:gocritic // hugeParam: req passed by value for immutability
func (e *Engine) scoringInput(ctx context.Context, req Request, cfg *Config, now time.Time, followed []int, events []Event, history []Interaction) (*ScoringInput, error) {
	snap, err := e.catalog.Get(ctx, cfg)
	if err != nil {
		return nil, err
	}

	members, err := e.provider.ClubMemberCounts(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: member counts: %v", ErrDataUnavailable, err)
	}

	since := now.AddDate(0, 0, -cfg.Data.EventCountLookbackDays)
	counts, err := e.provider.ClubEventCounts(ctx, since)
	if err != nil {
		return nil, fmt.Errorf("%w: event counts: %v", ErrDataUnavailable, err)
	}

	return &ScoringInput{
		Now:           now,
		UserID:        req.UserID,
		FollowedClubs: followed,
		Events:        events,
		Catalog:       snap,
		History:       history,
		Metrics:       ClubMetrics{MemberCounts: members, EventCounts: counts},
		Config:        cfg,
	}, nil
}

// score runs every scorer over the candidates, merges their tables onto the
// candidate list, and ranks the result.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func (e *Engine) score(ctx context.Context, in *ScoringInput, logger zerolog.Logger) ([]ScoredEvent, error) {
	scorers := e.getScorers()
	if len(scorers) == 0 {
		return nil, fmt.Errorf("%w: no scorers registered", ErrScoringFailure)
	}

	tables := make([]FeatureTable, 0, len(scorers)+1)
	base := NewFeatureTable("candidates", len(in.Events))
	for i := range in.Events {
		base.Add(&in.Events[i])
	}
	tables = append(tables, base)

	for _, s := range scorers {
		t, err := s.Score(ctx, in)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrScoringFailure, s.Name(), err)
		}
		tables = append(tables, t)
	}

	rows := MergeFeatures(tables...)
	return Rank(rows, &in.Config.Weights, in.Config.Ranking.MinScoreThreshold, logger), nil
}

// baseMetadata returns metadata common to every response kind.
//
//nolint:gocritic // hugeParam: req passed by value for immutability
func (e *Engine) baseMetadata(req Request, cfg *Config, now time.Time) ResponseMetadata {
	return ResponseMetadata{
		ModelVersion: cfg.Model.Version,
		ComputedAt:   now.UTC(),
		RequestID:    req.RequestID,
	}
}

// finish stamps timing and records stats.
func (e *Engine) finish(resp *Response, start time.Time) {
	took := e.now().Sub(start)
	resp.Metadata.ComputationTimeMS = float64(took.Microseconds()) / 1000

	e.requestCount.Add(1)
	e.latencyNanos.Add(took.Nanoseconds())
	e.lastRequest.Store(e.now().UnixNano())

	switch {
	case resp.Metadata.Error:
		e.errorCount.Add(1)
	case resp.Metadata.Fallback:
		e.fallbackCount.Add(1)
	case resp.State == StateEmpty:
		e.emptyCount.Add(1)
	}

	if e.observer != nil {
		e.observer.ObserveRecommendation(resp, took)
	}
}

// cacheKey identifies a request for the response cache. The config
// generation is part of the key so any config change bypasses old entries.
//
//nolint:gocritic // hugeParam: req passed by value for simplicity
func (e *Engine) cacheKey(req Request) string {
	var b strings.Builder
	b.WriteString("rec:")
	b.WriteString(strconv.FormatUint(e.store.Generation(), 10))
	b.WriteByte(':')
	b.WriteString(strconv.Itoa(req.UserID))
	b.WriteByte(':')
	b.WriteString(strconv.Itoa(req.Limit))
	b.WriteByte(':')
	if !req.Filter.MinDate.IsZero() {
		b.WriteString(strconv.FormatInt(req.Filter.MinDate.Unix(), 10))
	}
	b.WriteByte(':')
	if !req.Filter.MaxDate.IsZero() {
		b.WriteString(strconv.FormatInt(req.Filter.MaxDate.Unix(), 10))
	}
	b.WriteByte(':')
	excl := append([]int(nil), req.Filter.ExcludeEventIDs...)
	sort.Ints(excl)
	for i, id := range excl {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.Itoa(id))
	}
	return b.String()
}

// tryGetCachedResponse returns a cached response stamped for this request.
//
//nolint:gocritic // hugeParam: req passed by value for immutability
func (e *Engine) tryGetCachedResponse(ctx context.Context, key string, req Request, start time.Time, logger zerolog.Logger) *Response {
	if e.cache == nil {
		return nil
	}

	cached, ok := e.cacheGet(ctx, key, logger)
	if !ok || cached == nil {
		return nil
	}

	e.cacheHits.Add(1)
	resp := copyResponse(cached)
	resp.Metadata.CacheHit = true
	resp.Metadata.RequestID = req.RequestID
	resp.Metadata.ComputedAt = start.UTC()
	if len(resp.Recommendations) == 0 {
		resp.State = StateEmpty
	} else {
		resp.State = StateFormatted
	}
	logger.Debug().Msg("cache hit")
	return resp
}

// cacheResponse stores personalized responses. Fallback and error responses
// are never cached.
func (e *Engine) cacheResponse(ctx context.Context, key string, resp *Response) {
	if e.cache == nil || resp.Metadata.Fallback || resp.Metadata.Error {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error().Interface("panic", r).Msg("response cache set panicked")
		}
	}()
	e.cache.Set(ctx, key, copyResponse(resp))
}

// cacheGet treats a panicking cache backend as a miss.
func (e *Engine) cacheGet(ctx context.Context, key string, logger zerolog.Logger) (resp *Response, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error().Interface("panic", r).Msg("response cache get panicked")
			resp, ok = nil, false
		}
	}()
	return e.cache.Get(ctx, key)
}

func copyResponse(resp *Response) *Response {
	out := *resp
	out.Recommendations = make([]Recommendation, len(resp.Recommendations))
	for i, rec := range resp.Recommendations {
		feats := make(map[string]float64, len(rec.Reason.Features))
		for k, v := range rec.Reason.Features {
			feats[k] = v
		}
		rec.Reason.Features = feats
		out.Recommendations[i] = rec
	}
	return &out
}

// RefreshCatalog forces a rebuild of the club catalog and index.
func (e *Engine) RefreshCatalog(ctx context.Context) error {
	ctx, end := tracing.StartSpan(ctx, "recommend.RefreshCatalog")
	_, err := e.catalog.Rebuild(ctx, e.store.Get())
	end(err)
	return err
}

// Ping checks the data provider.
func (e *Engine) Ping(ctx context.Context) error {
	return e.provider.Ping(ctx)
}

// Stats is a point-in-time view of engine counters.
type Stats struct {
	TotalRequests   int64      `json:"total_requests"`
	AvgLatencyMS    float64    `json:"avg_latency_ms"`
	LastRequestTime *time.Time `json:"last_request_time"`
	ModelVersion    string     `json:"model_version"`
	FallbackCount   int64      `json:"fallback_count"`
	ErrorCount      int64      `json:"error_count"`
	EmptyCount      int64      `json:"empty_count"`
	CacheHits       int64      `json:"cache_hits"`
	CatalogBuiltAt  *time.Time `json:"catalog_built_at"`
	CatalogSize     int        `json:"catalog_size"`
}

// GetStats returns the current engine counters.
func (e *Engine) GetStats() Stats {
	s := Stats{
		TotalRequests: e.requestCount.Load(),
		ModelVersion:  e.store.Get().Model.Version,
		FallbackCount: e.fallbackCount.Load(),
		ErrorCount:    e.errorCount.Load(),
		EmptyCount:    e.emptyCount.Load(),
		CacheHits:     e.cacheHits.Load(),
	}

	if s.TotalRequests > 0 {
		s.AvgLatencyMS = float64(e.latencyNanos.Load()) / float64(s.TotalRequests) / float64(time.Millisecond)
	}
	if last := e.lastRequest.Load(); last > 0 {
		t := time.Unix(0, last).UTC()
		s.LastRequestTime = &t
	}
	if snap := e.catalog.Current(); snap != nil {
		built := snap.BuiltAt.UTC()
		s.CatalogBuiltAt = &built
		s.CatalogSize = len(snap.Clubs)
	}
	return s
}
