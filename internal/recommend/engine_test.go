// Campusrec - Campus Event Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/campusrec

package recommend_test

import (
	"context"
	"errors"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/tomtom215/campusrec/internal/cache"
	"github.com/tomtom215/campusrec/internal/recommend"
	"github.com/tomtom215/campusrec/internal/recommend/algorithms"
	"github.com/tomtom215/campusrec/internal/recommend/recommendtest"
	"github.com/tomtom215/campusrec/internal/recommend/reranking"
)

var now = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

func inDays(d float64) time.Time {
	return now.Add(time.Duration(d * 24 * float64(time.Hour)))
}

func publicEvent(id, club int, days float64, title string) recommend.Event {
	return recommend.Event{ID: id, ClubID: club, Title: title, StartAt: inDays(days), IsPublic: true}
}

func newEngine(t *testing.T, p *recommendtest.Provider, mutate func(*recommend.Config)) *recommend.Engine {
	t.Helper()

	cfg := recommend.DefaultConfig()
	if mutate != nil {
		mutate(cfg)
	}
	store, err := recommend.NewConfigStore(cfg, nil, nil)
	if err != nil {
		t.Fatalf("NewConfigStore() error = %v", err)
	}
	return newEngineWithStore(t, p, store)
}

func newEngineWithStore(t *testing.T, p *recommendtest.Provider, store *recommend.ConfigStore) *recommend.Engine {
	t.Helper()

	e, err := recommend.NewEngine(store, p, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewEngine() error = %v", err)
	}
	e.SetClock(func() time.Time { return now })
	e.RegisterScorer(algorithms.NewContent())
	e.RegisterScorer(algorithms.NewTemporal())
	e.RegisterScorer(algorithms.NewAffinity())
	e.RegisterScorer(algorithms.NewPopularity())
	e.RegisterSelector(reranking.NewDiversityFromStore(store))
	return e
}

func eventIDs(resp *recommend.Response) []int {
	out := make([]int, len(resp.Recommendations))
	for i, r := range resp.Recommendations {
		out[i] = r.EventID
	}
	return out
}

func equalIDs(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestNewEngine_RequiresDependencies(t *testing.T) {
	store, _ := recommend.NewConfigStore(nil, nil, nil)
	if _, err := recommend.NewEngine(nil, &recommendtest.Provider{}, zerolog.Nop()); err == nil {
		t.Error("expected error for nil store")
	}
	if _, err := recommend.NewEngine(store, nil, zerolog.Nop()); err == nil {
		t.Error("expected error for nil provider")
	}
}

// A member's own club event outranks an identical event from another club
// that starts later.
func TestRecommend_FollowedClubWins(t *testing.T) {
	p := &recommendtest.Provider{
		ClubList: []recommend.Club{
			{ID: 5, Name: "Robotics Club", Description: "robots and drones"},
			{ID: 9, Name: "Maker Space", Description: "hardware hacking"},
		},
		EventList: []recommend.Event{
			publicEvent(1, 5, 2, "Robot building workshop"),
			publicEvent(2, 9, 20, "Robot building workshop"),
		},
		Memberships: []recommendtest.Membership{{UserID: 42, ClubID: 5}},
	}

	t.Run("top1", func(t *testing.T) {
		resp := newEngine(t, p, nil).Recommend(context.Background(), recommend.Request{UserID: 42})

		if got := eventIDs(resp); !equalIDs(got, []int{1}) {
			t.Fatalf("recommendations = %v, want [1]", got)
		}
		if resp.Recommendations[0].Reason.Primary != recommend.ReasonClubMembership {
			t.Errorf("reason = %v, want club_membership", resp.Recommendations[0].Reason.Primary)
		}
		if resp.Metadata.Fallback || resp.Metadata.Error {
			t.Errorf("metadata = %+v, want normal", resp.Metadata)
		}
		if resp.Metadata.TotalCandidates != 2 || resp.Metadata.UserFollowsClubs != 1 {
			t.Errorf("metadata counts = %+v", resp.Metadata)
		}
		if resp.State != recommend.StateFormatted {
			t.Errorf("state = %v, want formatted", resp.State)
		}
	})

	t.Run("top_n", func(t *testing.T) {
		e := newEngine(t, p, func(c *recommend.Config) { c.Ranking.SelectionMode = recommend.SelectTopN })
		resp := e.Recommend(context.Background(), recommend.Request{UserID: 42, Limit: 5})

		if got := eventIDs(resp); !equalIDs(got, []int{1, 2}) {
			t.Fatalf("recommendations = %v, want [1 2]", got)
		}
		if resp.Recommendations[0].Score <= resp.Recommendations[1].Score {
			t.Errorf("scores not descending: %v", resp.Recommendations)
		}
		for _, r := range resp.Recommendations {
			for name, v := range r.Reason.Features {
				if v < 0 || v > 1 {
					t.Errorf("event %d feature %s = %f out of range", r.EventID, name, v)
				}
			}
		}
	})
}

// Users without followed clubs get the earliest upcoming public events.
func TestRecommend_NoFollowedClubsFallsBack(t *testing.T) {
	p := &recommendtest.Provider{
		EventList: []recommend.Event{
			publicEvent(3, 1, 10, "c"),
			publicEvent(1, 2, 1, "a"),
			publicEvent(2, 3, 5, "b"),
			{ID: 4, ClubID: 1, StartAt: inDays(2), IsPublic: true, IsCancelled: true},
			{ID: 5, ClubID: 1, StartAt: inDays(2)},
			publicEvent(6, 1, -1, "past"),
		},
	}

	resp := newEngine(t, p, nil).Recommend(context.Background(), recommend.Request{UserID: 7})

	if got := eventIDs(resp); !equalIDs(got, []int{1, 2, 3}) {
		t.Fatalf("recommendations = %v, want [1 2 3]", got)
	}
	for _, r := range resp.Recommendations {
		if r.Score != recommend.FallbackScore {
			t.Errorf("event %d score = %f, want 0.5", r.EventID, r.Score)
		}
		if r.Reason.Primary != recommend.ReasonFallback || r.Reason.Details != "Upcoming public event" {
			t.Errorf("event %d reason = %+v", r.EventID, r.Reason)
		}
		if len(r.Reason.Features) != 0 {
			t.Errorf("event %d features = %v, want empty", r.EventID, r.Reason.Features)
		}
	}
	if !resp.Metadata.Fallback || resp.Metadata.Error {
		t.Errorf("metadata = %+v, want fallback", resp.Metadata)
	}
	if resp.State != recommend.StateFallback {
		t.Errorf("state = %v, want fallback", resp.State)
	}
}

func TestRecommend_FallbackRespectsLimit(t *testing.T) {
	p := &recommendtest.Provider{}
	for i := 1; i <= 8; i++ {
		p.EventList = append(p.EventList, publicEvent(i, 1, float64(i), "e"))
	}

	resp := newEngine(t, p, nil).Recommend(context.Background(), recommend.Request{UserID: 7, Limit: 3})
	if got := eventIDs(resp); !equalIDs(got, []int{1, 2, 3}) {
		t.Errorf("recommendations = %v, want [1 2 3]", got)
	}
}

// Scores that all fall below the threshold yield an empty, normal response.
func TestRecommend_AllBelowThreshold(t *testing.T) {
	p := &recommendtest.Provider{
		EventList: []recommend.Event{
			publicEvent(1, 2, 120, "Far away gathering"),
			publicEvent(2, 3, 150, "Another distant meetup"),
		},
		Memberships: []recommendtest.Membership{{UserID: 42, ClubID: 1}},
	}

	resp := newEngine(t, p, nil).Recommend(context.Background(), recommend.Request{UserID: 42})

	if len(resp.Recommendations) != 0 {
		t.Fatalf("recommendations = %v, want none", eventIDs(resp))
	}
	if resp.Recommendations == nil {
		t.Error("recommendations should be an empty list, not nil")
	}
	if resp.Metadata.Fallback || resp.Metadata.Error {
		t.Errorf("metadata = %+v, want normal", resp.Metadata)
	}
	if resp.Metadata.TotalCandidates != 2 {
		t.Errorf("TotalCandidates = %d, want 2", resp.Metadata.TotalCandidates)
	}
}

func TestRecommend_NoCandidates(t *testing.T) {
	p := &recommendtest.Provider{
		EventList: []recommend.Event{
			publicEvent(1, 1, 2, "attended"),
			publicEvent(2, 1, 3, "excluded"),
		},
		Memberships: []recommendtest.Membership{{UserID: 42, ClubID: 1}},
		History: []recommend.Interaction{
			{UserID: 42, EventID: 1, ClubID: 1, StartAt: inDays(2), Attended: true},
		},
	}

	resp := newEngine(t, p, nil).Recommend(context.Background(), recommend.Request{
		UserID: 42,
		Filter: recommend.EventFilter{ExcludeEventIDs: []int{2}},
	})

	if len(resp.Recommendations) != 0 {
		t.Fatalf("recommendations = %v, want none", eventIDs(resp))
	}
	if resp.State != recommend.StateEmpty {
		t.Errorf("state = %v, want empty", resp.State)
	}
	if resp.Metadata.Fallback || resp.Metadata.Error {
		t.Errorf("metadata = %+v, want normal", resp.Metadata)
	}
}

func TestRecommend_FavoritedEventsStayCandidates(t *testing.T) {
	p := &recommendtest.Provider{
		EventList:   []recommend.Event{publicEvent(1, 1, 2, "favorited only")},
		Memberships: []recommendtest.Membership{{UserID: 42, ClubID: 1}},
		History: []recommend.Interaction{
			{UserID: 42, EventID: 1, ClubID: 1, StartAt: inDays(2), Favorited: true},
		},
	}

	resp := newEngine(t, p, nil).Recommend(context.Background(), recommend.Request{UserID: 42})
	if got := eventIDs(resp); !equalIDs(got, []int{1}) {
		t.Errorf("recommendations = %v, want [1]", got)
	}
}

func TestRecommend_DateFilters(t *testing.T) {
	p := &recommendtest.Provider{
		EventList: []recommend.Event{
			publicEvent(1, 1, 1, "a"),
			publicEvent(2, 1, 5, "b"),
			publicEvent(3, 1, 20, "c"),
		},
		Memberships: []recommendtest.Membership{{UserID: 42, ClubID: 1}},
	}

	e := newEngine(t, p, func(c *recommend.Config) { c.Ranking.SelectionMode = recommend.SelectTopN })
	resp := e.Recommend(context.Background(), recommend.Request{
		UserID: 42,
		Filter: recommend.EventFilter{MinDate: inDays(2), MaxDate: inDays(10)},
	})

	if got := eventIDs(resp); !equalIDs(got, []int{2}) {
		t.Errorf("recommendations = %v, want [2]", got)
	}
}

func TestRecommend_FailuresFallBack(t *testing.T) {
	boom := errors.New("connection reset")

	tests := []struct {
		name         string
		setup        func(p *recommendtest.Provider)
		wantFallback bool
		wantError    bool
		wantIDs      []int
	}{
		{
			name:         "followed clubs unavailable",
			setup:        func(p *recommendtest.Provider) { p.FollowedErr = boom },
			wantFallback: true,
			wantIDs:      []int{1, 2},
		},
		{
			name:         "history unavailable",
			setup:        func(p *recommendtest.Provider) { p.HistoryErr = boom },
			wantFallback: true,
			wantIDs:      []int{1, 2},
		},
		{
			name:         "clubs unavailable",
			setup:        func(p *recommendtest.Provider) { p.ClubsErr = boom },
			wantFallback: true,
			wantIDs:      []int{1, 2},
		},
		{
			name:         "member counts unavailable",
			setup:        func(p *recommendtest.Provider) { p.MemberCountErr = boom },
			wantFallback: true,
			wantIDs:      []int{1, 2},
		},
		{
			name:         "event counts unavailable",
			setup:        func(p *recommendtest.Provider) { p.EventCountErr = boom },
			wantFallback: true,
			wantIDs:      []int{1, 2},
		},
		{
			name:      "events unavailable everywhere",
			setup:     func(p *recommendtest.Provider) { p.EventsErr = boom },
			wantError: true,
			wantIDs:   []int{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &recommendtest.Provider{
				ClubList:    []recommend.Club{{ID: 1, Name: "Robotics"}},
				EventList:   []recommend.Event{publicEvent(2, 1, 4, "b"), publicEvent(1, 1, 2, "a")},
				Memberships: []recommendtest.Membership{{UserID: 42, ClubID: 1}},
			}
			tt.setup(p)

			resp := newEngine(t, p, nil).Recommend(context.Background(), recommend.Request{UserID: 42})

			if resp.Metadata.Fallback != tt.wantFallback || resp.Metadata.Error != tt.wantError {
				t.Errorf("metadata fallback/error = %v/%v, want %v/%v",
					resp.Metadata.Fallback, resp.Metadata.Error, tt.wantFallback, tt.wantError)
			}
			if got := eventIDs(resp); !equalIDs(got, tt.wantIDs) {
				t.Errorf("recommendations = %v, want %v", got, tt.wantIDs)
			}
			if resp.State != recommend.StateFallback {
				t.Errorf("state = %v, want fallback", resp.State)
			}
		})
	}
}

func TestRecommend_NoEventsAvailable(t *testing.T) {
	resp := newEngine(t, &recommendtest.Provider{}, nil).Recommend(context.Background(), recommend.Request{UserID: 7})

	if len(resp.Recommendations) != 0 {
		t.Fatalf("recommendations = %v, want none", eventIDs(resp))
	}
	if !resp.Metadata.Fallback || resp.Metadata.Reason != "No events available" {
		t.Errorf("metadata = %+v", resp.Metadata)
	}
}

type panickingScorer struct{}

func (panickingScorer) Name() string { return "panicking" }

func (panickingScorer) Score(context.Context, *recommend.ScoringInput) (recommend.FeatureTable, error) {
	panic("index out of range")
}

type failingScorer struct{}

func (failingScorer) Name() string { return "failing" }

func (failingScorer) Score(context.Context, *recommend.ScoringInput) (recommend.FeatureTable, error) {
	return recommend.FeatureTable{}, errors.New("matrix is singular")
}

func TestRecommend_ScorerFailuresFallBack(t *testing.T) {
	tests := []struct {
		name   string
		scorer recommend.FeatureScorer
	}{
		{"panic", panickingScorer{}},
		{"error", failingScorer{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &recommendtest.Provider{
				EventList:   []recommend.Event{publicEvent(1, 1, 2, "a")},
				Memberships: []recommendtest.Membership{{UserID: 42, ClubID: 1}},
			}
			e := newEngine(t, p, nil)
			e.RegisterScorer(tt.scorer)

			resp := e.Recommend(context.Background(), recommend.Request{UserID: 42})
			if !resp.Metadata.Fallback {
				t.Errorf("metadata = %+v, want fallback", resp.Metadata)
			}
			if got := eventIDs(resp); !equalIDs(got, []int{1}) {
				t.Errorf("recommendations = %v, want [1]", got)
			}
		})
	}
}

func TestRecommend_SelectionModes(t *testing.T) {
	p := &recommendtest.Provider{
		ClubList:    []recommend.Club{{ID: 1, Name: "A"}, {ID: 2, Name: "B"}},
		Memberships: []recommendtest.Membership{{UserID: 42, ClubID: 1}},
	}
	// Club 1 events score highest; club 2 events follow.
	for i := 1; i <= 6; i++ {
		p.EventList = append(p.EventList, publicEvent(i, 1, float64(i), "club one"))
	}
	for i := 7; i <= 10; i++ {
		p.EventList = append(p.EventList, publicEvent(i, 2, float64(i-6), "club two"))
	}

	tests := []struct {
		name      string
		mode      recommend.SelectionMode
		limit     int
		wantLen   int
		wantMode  string
		maxClub1  int
		checkClub bool
	}{
		{"top1 ignores limit", recommend.SelectTop1, 10, 1, "top1", 0, false},
		{"top_n honours limit", recommend.SelectTopN, 4, 4, "top_n", 0, false},
		// limit 8, factor 0.25: cap 2, half 4. Four club 1 events, then
		// club 2 up to its cap, then the fill pass.
		{"diverse caps clubs", recommend.SelectDiverse, 8, 8, "diverse", 6, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newEngine(t, p, func(c *recommend.Config) {
				c.Ranking.SelectionMode = tt.mode
				c.Ranking.DiversityFactor = 0.25
			})
			resp := e.Recommend(context.Background(), recommend.Request{UserID: 42, Limit: tt.limit})

			if len(resp.Recommendations) != tt.wantLen {
				t.Fatalf("len = %d, want %d", len(resp.Recommendations), tt.wantLen)
			}
			if resp.Metadata.SelectionMode != tt.wantMode {
				t.Errorf("SelectionMode = %q, want %q", resp.Metadata.SelectionMode, tt.wantMode)
			}
			if tt.checkClub {
				// Slots 5 and 6 must come from club 2 even though club 1
				// events score higher.
				ids := eventIDs(resp)
				for _, id := range ids[4:6] {
					if id < 7 {
						t.Errorf("recommendations = %v, want club 2 events in slots 5-6", ids)
					}
				}
			}
		})
	}
}

func TestRecommend_DiverseWithoutSelectorUsesTopN(t *testing.T) {
	p := &recommendtest.Provider{
		EventList:   []recommend.Event{publicEvent(1, 1, 1, "a"), publicEvent(2, 1, 2, "b")},
		Memberships: []recommendtest.Membership{{UserID: 42, ClubID: 1}},
	}
	cfg := recommend.DefaultConfig()
	cfg.Ranking.SelectionMode = recommend.SelectDiverse
	store, _ := recommend.NewConfigStore(cfg, nil, nil)
	e, _ := recommend.NewEngine(store, p, zerolog.Nop())
	e.SetClock(func() time.Time { return now })
	e.RegisterScorer(algorithms.NewTemporal())
	e.RegisterScorer(algorithms.NewAffinity())

	resp := e.Recommend(context.Background(), recommend.Request{UserID: 42, Limit: 5})
	if resp.Metadata.SelectionMode != "top_n" || len(resp.Recommendations) != 2 {
		t.Errorf("mode = %q, len = %d", resp.Metadata.SelectionMode, len(resp.Recommendations))
	}
}

func TestRecommend_LimitIsCapped(t *testing.T) {
	p := &recommendtest.Provider{}
	for i := 1; i <= 60; i++ {
		p.EventList = append(p.EventList, publicEvent(i, 1, float64(i)/10, "e"))
	}

	resp := newEngine(t, p, nil).Recommend(context.Background(), recommend.Request{UserID: 7, Limit: 500})
	if len(resp.Recommendations) != 50 {
		t.Errorf("len = %d, want 50", len(resp.Recommendations))
	}

	resp = newEngine(t, p, nil).Recommend(context.Background(), recommend.Request{UserID: 7})
	if len(resp.Recommendations) != 10 {
		t.Errorf("default len = %d, want 10", len(resp.Recommendations))
	}
}

func TestRecommend_TitleBoost(t *testing.T) {
	p := &recommendtest.Provider{
		ClubList: []recommend.Club{
			{ID: 1, Name: "Astronomy Society", Description: "telescopes stars planets night sky observation"},
		},
		EventList: []recommend.Event{
			publicEvent(1, 2, 5, "Astronomy night: telescopes stars planets sky observation"),
		},
		Memberships: []recommendtest.Membership{{UserID: 42, ClubID: 1}},
	}

	resp := newEngine(t, p, nil).Recommend(context.Background(), recommend.Request{UserID: 42})
	if len(resp.Recommendations) != 1 {
		t.Fatalf("len = %d, want 1", len(resp.Recommendations))
	}

	r := resp.Recommendations[0]
	title := r.Reason.Features["title_match"]
	if title <= 0.4 {
		t.Skipf("title match %f too low to exercise the boost", title)
	}

	w := recommend.DefaultConfig().Weights
	var rec recommend.FeatureRecord
	rec.Set(recommend.FeatureContentSimilarity, r.Reason.Features["content_similarity"])
	rec.Set(recommend.FeatureTitleMatch, title)
	rec.Set(recommend.FeatureTemporal, r.Reason.Features["temporal_score"])
	rec.Set(recommend.FeatureUserAffinity, r.Reason.Features["user_affinity"])
	rec.Set(recommend.FeaturePopularity, r.Reason.Features["popularity"])

	// Reason features are rounded, so compare loosely.
	want := recommend.WeightedScore(&rec, &w) * recommend.TitleBoostFactor
	if math.Abs(r.Score-want) > 0.002 {
		t.Errorf("score = %f, want about %f", r.Score, want)
	}
}

// memoryCache is a minimal ResponseCache.
type memoryCache struct {
	mu    sync.Mutex
	items map[string]*recommend.Response
	sets  int
}

func (c *memoryCache) Get(_ context.Context, key string) (*recommend.Response, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	r, ok := c.items[key]
	return r, ok
}

func (c *memoryCache) Set(_ context.Context, key string, r *recommend.Response) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.items == nil {
		c.items = make(map[string]*recommend.Response)
	}
	c.items[key] = r
	c.sets++
}

func TestRecommend_Cache(t *testing.T) {
	p := &recommendtest.Provider{
		EventList:   []recommend.Event{publicEvent(1, 1, 2, "a")},
		Memberships: []recommendtest.Membership{{UserID: 42, ClubID: 1}},
	}
	e := newEngine(t, p, nil)
	mc := &memoryCache{}
	e.SetCache(mc)

	first := e.Recommend(context.Background(), recommend.Request{UserID: 42})
	if first.Metadata.CacheHit {
		t.Error("first request should miss")
	}
	calls := p.EventCalls()

	second := e.Recommend(context.Background(), recommend.Request{UserID: 42, RequestID: "req-2"})
	if !second.Metadata.CacheHit {
		t.Error("second request should hit")
	}
	if second.Metadata.RequestID != "req-2" {
		t.Errorf("RequestID = %q, want req-2", second.Metadata.RequestID)
	}
	if p.EventCalls() != calls {
		t.Error("cache hit should not query events")
	}
	if !equalIDs(eventIDs(first), eventIDs(second)) {
		t.Errorf("cached = %v, want %v", eventIDs(second), eventIDs(first))
	}

	// Fallback responses are not cached.
	e.Recommend(context.Background(), recommend.Request{UserID: 7})
	e.Recommend(context.Background(), recommend.Request{UserID: 7})
	if mc.sets != 1 {
		t.Errorf("cache sets = %d, want 1", mc.sets)
	}

	if got := e.GetStats().CacheHits; got != 1 {
		t.Errorf("CacheHits = %d, want 1", got)
	}
}

func TestRecommend_CacheBypassedAfterConfigChange(t *testing.T) {
	p := &recommendtest.Provider{
		EventList:   []recommend.Event{publicEvent(1, 1, 2, "a")},
		Memberships: []recommendtest.Membership{{UserID: 42, ClubID: 1}},
	}
	loader := func(context.Context) (*recommend.Config, error) {
		cfg := recommend.DefaultConfig()
		cfg.Weights.TitleMatch = 0.3
		return cfg, nil
	}
	store, err := recommend.NewConfigStore(recommend.DefaultConfig(), loader, nil)
	if err != nil {
		t.Fatalf("NewConfigStore() error = %v", err)
	}
	e := newEngineWithStore(t, p, store)
	e.SetCache(&memoryCache{})

	e.Recommend(context.Background(), recommend.Request{UserID: 42})

	if _, err := e.Config().Reload(context.Background()); err != nil {
		t.Fatalf("Reload() error = %v", err)
	}

	if resp := e.Recommend(context.Background(), recommend.Request{UserID: 42}); resp.Metadata.CacheHit {
		t.Error("config change should invalidate cached responses")
	}
}

// panickingCache fails every call the way a misconfigured collector would.
type panickingCache struct{}

func (panickingCache) Get(context.Context, string) (*recommend.Response, bool) {
	panic("cache get exploded")
}

func (panickingCache) Set(context.Context, string, *recommend.Response) {
	panic("cache set exploded")
}

func TestRecommend_CacheFailuresAreMisses(t *testing.T) {
	unreachable := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 100 * time.Millisecond,
		MaxRetries:  -1,
	})
	t.Cleanup(func() { _ = unreachable.Close() })

	tests := []struct {
		name  string
		cache recommend.ResponseCache
	}{
		{"redis unreachable", cache.NewRedisCache(unreachable, "test:", time.Minute, zerolog.Nop())},
		{"panicking backend", panickingCache{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &recommendtest.Provider{
				EventList:   []recommend.Event{publicEvent(1, 1, 2, "a")},
				Memberships: []recommendtest.Membership{{UserID: 1, ClubID: 1}},
			}
			e := newEngine(t, p, nil)
			e.SetCache(tt.cache)

			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			var resp *recommend.Response
			func() {
				defer func() {
					if r := recover(); r != nil {
						t.Fatalf("Recommend() panicked: %v", r)
					}
				}()
				resp = e.Recommend(ctx, recommend.Request{UserID: 1})
			}()

			if resp.Metadata.Fallback || resp.Metadata.Error || resp.Metadata.CacheHit {
				t.Errorf("metadata = %+v, want a personalized miss", resp.Metadata)
			}
			if !equalIDs(eventIDs(resp), []int{1}) {
				t.Errorf("events = %v, want [1]", eventIDs(resp))
			}
		})
	}
}

func TestEngine_Stats(t *testing.T) {
	p := &recommendtest.Provider{
		ClubList:    []recommend.Club{{ID: 1, Name: "Robotics", Description: "robots"}},
		EventList:   []recommend.Event{publicEvent(1, 1, 2, "a")},
		Memberships: []recommendtest.Membership{{UserID: 42, ClubID: 1}},
	}
	e := newEngine(t, p, nil)

	e.Recommend(context.Background(), recommend.Request{UserID: 42})
	e.Recommend(context.Background(), recommend.Request{UserID: 7})

	s := e.GetStats()
	if s.TotalRequests != 2 || s.FallbackCount != 1 || s.ErrorCount != 0 {
		t.Errorf("stats = %+v", s)
	}
	if s.ModelVersion != "1.0.0" {
		t.Errorf("ModelVersion = %q, want 1.0.0", s.ModelVersion)
	}
	if s.LastRequestTime == nil || s.CatalogBuiltAt == nil || s.CatalogSize != 1 {
		t.Errorf("stats = %+v", s)
	}
}

func TestEngine_RefreshCatalog(t *testing.T) {
	p := &recommendtest.Provider{ClubList: []recommend.Club{{ID: 1, Name: "Robotics"}}}
	e := newEngine(t, p, nil)

	if err := e.RefreshCatalog(context.Background()); err != nil {
		t.Fatalf("RefreshCatalog() error = %v", err)
	}
	if err := e.RefreshCatalog(context.Background()); err != nil {
		t.Fatalf("RefreshCatalog() error = %v", err)
	}
	if p.ClubCalls() != 2 {
		t.Errorf("Clubs() calls = %d, want 2", p.ClubCalls())
	}

	p.Update(func(p *recommendtest.Provider) { p.ClubsErr = errors.New("down") })
	if err := e.RefreshCatalog(context.Background()); !errors.Is(err, recommend.ErrDataUnavailable) {
		t.Errorf("RefreshCatalog() error = %v, want ErrDataUnavailable", err)
	}
}

func TestEngine_Ping(t *testing.T) {
	p := &recommendtest.Provider{}
	e := newEngine(t, p, nil)
	if err := e.Ping(context.Background()); err != nil {
		t.Errorf("Ping() error = %v", err)
	}
	p.Update(func(p *recommendtest.Provider) { p.PingErr = errors.New("down") })
	if err := e.Ping(context.Background()); err == nil {
		t.Error("expected ping error")
	}
}

func TestEngine_ConcurrentRecommend(t *testing.T) {
	p := &recommendtest.Provider{
		ClubList:    []recommend.Club{{ID: 1, Name: "Robotics", Description: "robots"}},
		EventList:   []recommend.Event{publicEvent(1, 1, 2, "a"), publicEvent(2, 1, 3, "b")},
		Memberships: []recommendtest.Membership{{UserID: 42, ClubID: 1}},
	}
	e := newEngine(t, p, nil)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			resp := e.Recommend(context.Background(), recommend.Request{UserID: 42})
			if len(resp.Recommendations) != 1 {
				t.Errorf("len = %d, want 1", len(resp.Recommendations))
			}
		}()
	}
	wg.Wait()

	if got := e.GetStats().TotalRequests; got != 20 {
		t.Errorf("TotalRequests = %d, want 20", got)
	}
}
