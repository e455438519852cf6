// Campusrec - Campus Event Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/campusrec

package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/tomtom215/campusrec/internal/auth"
	"github.com/tomtom215/campusrec/internal/authz"
	"github.com/tomtom215/campusrec/internal/config"
	"github.com/tomtom215/campusrec/internal/recommend"
	"github.com/tomtom215/campusrec/internal/recommend/algorithms"
	"github.com/tomtom215/campusrec/internal/recommend/recommendtest"
	"github.com/tomtom215/campusrec/internal/recommend/reranking"
)

const testAPIKey = "test-admin-key-123"

var testNow = time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC)

type memoryPersister struct {
	mu    sync.Mutex
	saved []recommend.ScoringWeights
	err   error
}

func (p *memoryPersister) SaveWeights(_ context.Context, w recommend.ScoringWeights) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.saved = append(p.saved, w)
	return nil
}

type testServer struct {
	handler   http.Handler
	engine    *recommend.Engine
	authMW    *auth.Middleware
	provider  *recommendtest.Provider
	persister *memoryPersister
	loaderCfg *recommend.Config
	loaderErr error
}

func newTestProvider() *recommendtest.Provider {
	return &recommendtest.Provider{
		ClubList: []recommend.Club{
			{ID: 5, Name: "Robotics Club", Description: "robots and drones"},
			{ID: 9, Name: "Chess Society", Description: "chess tournaments"},
		},
		EventList: []recommend.Event{
			{ID: 1, ClubID: 5, Title: "Robot building workshop", StartAt: testNow.Add(48 * time.Hour), IsPublic: true},
			{ID: 2, ClubID: 9, Title: "Blitz chess night", StartAt: testNow.Add(72 * time.Hour), IsPublic: true},
			{ID: 3, ClubID: 9, Title: "Chess openings lecture", StartAt: testNow.Add(96 * time.Hour), IsPublic: true},
		},
		Memberships: []recommendtest.Membership{{UserID: 42, ClubID: 5}},
	}
}

func newTestServer(t *testing.T, authCfg *config.AuthConfig) *testServer {
	t.Helper()

	ts := &testServer{provider: newTestProvider(), persister: &memoryPersister{}}
	loader := func(context.Context) (*recommend.Config, error) {
		if ts.loaderErr != nil {
			return nil, ts.loaderErr
		}
		if ts.loaderCfg != nil {
			return ts.loaderCfg, nil
		}
		return recommend.DefaultConfig(), nil
	}

	store, err := recommend.NewConfigStore(recommend.DefaultConfig(), loader, ts.persister)
	if err != nil {
		t.Fatalf("NewConfigStore: %v", err)
	}
	engine, err := recommend.NewEngine(store, ts.provider, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	engine.SetClock(func() time.Time { return testNow })
	engine.RegisterScorer(algorithms.NewContent())
	engine.RegisterScorer(algorithms.NewTemporal())
	engine.RegisterScorer(algorithms.NewAffinity())
	engine.RegisterScorer(algorithms.NewPopularity())
	engine.RegisterSelector(reranking.NewDiversityFromStore(store))
	ts.engine = engine

	if authCfg == nil {
		authCfg = &config.AuthConfig{APIKey: testAPIKey}
	}
	mw, err := auth.NewMiddleware(authCfg, nil, AuthErrorWriter)
	if err != nil {
		t.Fatalf("NewMiddleware: %v", err)
	}

	ts.authMW = mw

	h := NewHandler(engine, mw)
	h.now = func() time.Time { return testNow }
	ts.handler = NewRouter(h, mw, RouterOptions{
		Middleware:    &ChiMiddlewareConfig{RateLimitDisabled: true},
		ReloadLimiter: auth.NewRateLimiter(0, 1),
	}).Handler()
	return ts
}

func (ts *testServer) do(method, path, body string, headers map[string]string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
	return v
}

func adminHeaders() map[string]string {
	return map[string]string{auth.APIKeyHeader: testAPIKey}
}

func TestHealth(t *testing.T) {
	tests := []struct {
		name       string
		pingErr    error
		wantStatus int
		wantBody   HealthResponse
	}{
		{"connected", nil, http.StatusOK, HealthResponse{Status: "ok", Database: "connected"}},
		{"database down", errors.New("connection refused"), http.StatusServiceUnavailable, HealthResponse{Status: "degraded", Database: "disconnected"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := newTestServer(t, nil)
			ts.provider.Update(func(p *recommendtest.Provider) { p.PingErr = tt.pingErr })

			rec := ts.do(http.MethodGet, "/api/v1/health", "", nil)
			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			got := decode[HealthResponse](t, rec)
			if got.Status != tt.wantBody.Status || got.Database != tt.wantBody.Database {
				t.Errorf("body = %+v", got)
			}
			if got.Version != recommend.DefaultConfig().Model.Version {
				t.Errorf("version = %q", got.Version)
			}
			if !strings.Contains(rec.Body.String(), `"version":`) {
				t.Errorf("body %s lacks the version key", rec.Body.String())
			}
			if rec.Header().Get("X-Request-ID") == "" {
				t.Error("missing X-Request-ID")
			}
		})
	}
}

func TestRecommend(t *testing.T) {
	ts := newTestServer(t, nil)

	t.Run("follower gets own club event", func(t *testing.T) {
		rec := ts.do(http.MethodPost, "/api/v1/recommend", `{"userId":42}`, nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
		}
		resp := decode[recommend.Response](t, rec)
		if len(resp.Recommendations) != 1 || resp.Recommendations[0].EventID != 1 {
			t.Fatalf("recommendations = %+v", resp.Recommendations)
		}
		if resp.Recommendations[0].Reason.Primary != recommend.ReasonClubMembership {
			t.Errorf("reason = %v", resp.Recommendations[0].Reason.Primary)
		}
		if resp.Metadata.Fallback || resp.Metadata.Error {
			t.Errorf("metadata = %+v", resp.Metadata)
		}
		if resp.Metadata.RequestID == "" {
			t.Error("metadata.requestId should carry the request ID")
		}
	})

	t.Run("exclusions reach the engine", func(t *testing.T) {
		rec := ts.do(http.MethodPost, "/api/v1/recommend",
			`{"userId":42,"context":{"excludeEventIds":[1]}}`, nil)
		resp := decode[recommend.Response](t, rec)
		for _, r := range resp.Recommendations {
			if r.EventID == 1 {
				t.Error("excluded event returned")
			}
		}
	})

	t.Run("cold start falls back", func(t *testing.T) {
		rec := ts.do(http.MethodPost, "/api/v1/recommend", `{"userId":7,"limit":2}`, nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d", rec.Code)
		}
		resp := decode[recommend.Response](t, rec)
		if !resp.Metadata.Fallback {
			t.Errorf("metadata = %+v, want fallback", resp.Metadata)
		}
		if len(resp.Recommendations) != 2 {
			t.Errorf("got %d recommendations, want 2", len(resp.Recommendations))
		}
	})
}

func TestRecommend_BadRequests(t *testing.T) {
	ts := newTestServer(t, nil)

	tests := []struct {
		name     string
		body     string
		wantCode string
	}{
		{"empty body", "", ErrCodeBadRequest},
		{"malformed json", `{"userId":`, ErrCodeBadRequest},
		{"missing user", `{"limit":3}`, ErrCodeValidation},
		{"zero user", `{"userId":0}`, ErrCodeValidation},
		{"negative limit", `{"userId":1,"limit":-1}`, ErrCodeValidation},
		{"bad exclusion", `{"userId":1,"context":{"excludeEventIds":[0]}}`, ErrCodeValidation},
		{"inverted dates", `{"userId":1,"context":{"filters":{"minDate":"2026-04-01T00:00:00Z","maxDate":"2026-03-01T00:00:00Z"}}}`, ErrCodeValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := ts.do(http.MethodPost, "/api/v1/recommend", tt.body, nil)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400: %s", rec.Code, rec.Body.String())
			}
			env := decode[APIResponse](t, rec)
			if env.Status != "error" || env.Error == nil || env.Error.Code != tt.wantCode {
				t.Errorf("envelope = %+v", env)
			}
		})
	}
}

func TestGetConfig(t *testing.T) {
	ts := newTestServer(t, nil)
	rec := ts.do(http.MethodGet, "/api/v1/config", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	var body map[string]json.RawMessage
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	for _, key := range []string{"model", "scoring_weights", "ranking_settings", "content_settings", "temporal_settings"} {
		if _, ok := body[key]; !ok {
			t.Errorf("missing %s", key)
		}
	}
	if _, ok := body["data_settings"]; ok {
		t.Error("data_settings should not be exposed")
	}
}

func TestUpdateConfig(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		headers    map[string]string
		persistErr error
		wantStatus int
		wantCode   string
	}{
		{name: "patch", body: `{"scoring_weights":{"club_membership_match":0.5,"title_match":0}}`, headers: adminHeaders(), wantStatus: http.StatusOK},
		{name: "unauthenticated", body: `{"scoring_weights":{"title_match":0.2}}`, wantStatus: http.StatusUnauthorized, wantCode: ErrCodeUnauthorized},
		{name: "unknown weight", body: `{"scoring_weights":{"vibes":0.2}}`, headers: adminHeaders(), wantStatus: http.StatusBadRequest, wantCode: ErrCodeValidation},
		{name: "negative weight", body: `{"scoring_weights":{"title_match":-1}}`, headers: adminHeaders(), wantStatus: http.StatusBadRequest, wantCode: ErrCodeValidation},
		{name: "empty patch", body: `{"scoring_weights":{}}`, headers: adminHeaders(), wantStatus: http.StatusBadRequest, wantCode: ErrCodeValidation},
		{name: "persist failure", body: `{"scoring_weights":{"title_match":0.2}}`, headers: adminHeaders(), persistErr: errors.New("disk full"), wantStatus: http.StatusInternalServerError, wantCode: ErrCodeInternalError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := newTestServer(t, nil)
			ts.persister.err = tt.persistErr
			before := ts.engine.Config().Get().Weights

			rec := ts.do(http.MethodPut, "/api/v1/config", tt.body, tt.headers)
			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d: %s", rec.Code, tt.wantStatus, rec.Body.String())
			}

			after := ts.engine.Config().Get().Weights
			if tt.wantCode != "" {
				env := decode[APIResponse](t, rec)
				if env.Error == nil || env.Error.Code != tt.wantCode {
					t.Errorf("envelope = %+v, want code %s", env, tt.wantCode)
				}
				if after != before {
					t.Errorf("weights changed on failure: %+v", after)
				}
				return
			}

			got := decode[ConfigChangeResponse](t, rec)
			if got.Status != "updated" || got.Generation == 0 {
				t.Errorf("response = %+v", got)
			}
			if after.ClubMembershipMatch != 0.5 {
				t.Errorf("club_membership_match = %v, want 0.5", after.ClubMembershipMatch)
			}
			if after.TitleMatch != 0 {
				t.Errorf("title_match = %v, want 0 after patching it off", after.TitleMatch)
			}
			if len(ts.persister.saved) != 1 {
				t.Errorf("persisted %d times, want 1", len(ts.persister.saved))
			}
		})
	}
}

func TestReloadConfig(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		ts := newTestServer(t, nil)
		next := recommend.DefaultConfig()
		next.Model.Version = "2.0.0"
		ts.loaderCfg = next

		rec := ts.do(http.MethodPost, "/api/v1/reload-config", "", adminHeaders())
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
		}
		got := decode[ConfigChangeResponse](t, rec)
		if got.Status != "reloaded" || got.Version != "2.0.0" {
			t.Errorf("response = %+v", got)
		}
		if v := ts.engine.Config().Get().Model.Version; v != "2.0.0" {
			t.Errorf("active version = %q", v)
		}
	})

	t.Run("invalid config keeps previous", func(t *testing.T) {
		ts := newTestServer(t, nil)
		bad := recommend.DefaultConfig()
		bad.Ranking.MaxLimit = -1
		ts.loaderCfg = bad

		rec := ts.do(http.MethodPost, "/api/v1/reload-config", "", adminHeaders())
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("status = %d, want 400", rec.Code)
		}
		if got := ts.engine.Config().Get().Ranking.MaxLimit; got != recommend.DefaultConfig().Ranking.MaxLimit {
			t.Errorf("max_limit = %d, previous config not kept", got)
		}
	})

	t.Run("loader failure", func(t *testing.T) {
		ts := newTestServer(t, nil)
		ts.loaderErr = errors.New("badger closed")

		rec := ts.do(http.MethodPost, "/api/v1/reload-config", "", adminHeaders())
		if rec.Code != http.StatusInternalServerError {
			t.Fatalf("status = %d, want 500", rec.Code)
		}
		if strings.Contains(rec.Body.String(), "badger") {
			t.Error("internal error leaked to client")
		}
	})

	t.Run("admin disabled", func(t *testing.T) {
		ts := newTestServer(t, &config.AuthConfig{})
		rec := ts.do(http.MethodPost, "/api/v1/reload-config", "", adminHeaders())
		if rec.Code != http.StatusForbidden {
			t.Fatalf("status = %d, want 403", rec.Code)
		}
	})
}

func TestStats(t *testing.T) {
	ts := newTestServer(t, nil)
	ts.do(http.MethodPost, "/api/v1/recommend", `{"userId":42}`, nil)
	ts.do(http.MethodPost, "/api/v1/recommend", `{"userId":7}`, nil)

	rec := ts.do(http.MethodGet, "/api/v1/stats", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	stats := decode[recommend.Stats](t, rec)
	if stats.TotalRequests != 2 || stats.FallbackCount != 1 {
		t.Errorf("stats = %+v", stats)
	}
	if stats.LastRequestTime == nil {
		t.Error("last_request_time should be set")
	}
}

func TestRouter_NotFoundAndMethod(t *testing.T) {
	ts := newTestServer(t, nil)

	rec := ts.do(http.MethodGet, "/api/v1/nope", "", nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
	if env := decode[APIResponse](t, rec); env.Error == nil || env.Error.Code != ErrCodeNotFound {
		t.Errorf("envelope = %+v", env)
	}

	rec = ts.do(http.MethodDelete, "/api/v1/config", "", nil)
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want 405", rec.Code)
	}
}

func TestRouter_Metrics(t *testing.T) {
	ts := newTestServer(t, nil)
	ts.do(http.MethodGet, "/api/v1/health", "", nil)

	rec := ts.do(http.MethodGet, "/metrics", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "campusrec_api_requests_total") {
		t.Error("metrics output missing campusrec_api_requests_total")
	}
}

func TestAdminRoutePolicy(t *testing.T) {
	const secret = "0123456789abcdef0123456789abcdef"
	ts := newTestServer(t, &config.AuthConfig{JWTSecret: secret})

	enforcer, err := authz.NewEnforcer(nil)
	if err != nil {
		t.Fatalf("NewEnforcer: %v", err)
	}
	ts.authMW.SetAuthorizer(enforcer)

	jwtm, err := auth.NewJWTManager(secret, "")
	if err != nil {
		t.Fatal(err)
	}
	bearer := func(role string) map[string]string {
		token, err := jwtm.GenerateToken("ops-"+role, role, time.Hour)
		if err != nil {
			t.Fatal(err)
		}
		return map[string]string{"Authorization": "Bearer " + token}
	}

	tests := []struct {
		name       string
		role       string
		method     string
		path       string
		body       string
		wantStatus int
	}{
		{"operator reloads", "operator", http.MethodPost, "/api/v1/reload-config", "", http.StatusOK},
		{"operator cannot patch", "operator", http.MethodPut, "/api/v1/config", `{"scoring_weights":{"temporal_score":0.3}}`, http.StatusForbidden},
		{"admin patches", "admin", http.MethodPut, "/api/v1/config", `{"scoring_weights":{"temporal_score":0.3}}`, http.StatusOK},
		{"viewer denied", "viewer", http.MethodPost, "/api/v1/reload-config", "", http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := ts.do(tt.method, tt.path, tt.body, bearer(tt.role))
			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d: %s", rec.Code, tt.wantStatus, rec.Body.String())
			}
		})
	}
}
