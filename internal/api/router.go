// Campusrec - Campus Event Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/campusrec

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/tomtom215/campusrec/internal/auth"
	"github.com/tomtom215/campusrec/internal/middleware"
)

// Router wires handlers to routes.
type Router struct {
	handler        *Handler
	auth           *auth.Middleware
	reloadLimiter  *auth.RateLimiter
	chiMiddleware  *ChiMiddleware
	requestTimeout time.Duration
}

// RouterOptions configures NewRouter.
type RouterOptions struct {
	Middleware     *ChiMiddlewareConfig
	ReloadLimiter  *auth.RateLimiter
	RequestTimeout time.Duration
}

// NewRouter creates a router. authMW guards the admin routes.
func NewRouter(handler *Handler, authMW *auth.Middleware, opts RouterOptions) *Router {
	limiter := opts.ReloadLimiter
	if limiter == nil {
		limiter = auth.NewRateLimiter(0, 1)
	}
	timeout := opts.RequestTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Router{
		handler:        handler,
		auth:           authMW,
		reloadLimiter:  limiter,
		chiMiddleware:  NewChiMiddleware(opts.Middleware),
		requestTimeout: timeout,
	}
}

// Handler returns the HTTP handler serving every route.
func (router *Router) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(router.chiMiddleware.CORS())
	r.Use(middleware.PrometheusMetrics)

	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		respondError(w, req, http.StatusNotFound, ErrCodeNotFound, "Endpoint not found", nil)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, req *http.Request) {
		respondError(w, req, http.StatusMethodNotAllowed, ErrCodeMethodNotAllowed, "Method not allowed", nil)
	})

	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(chimiddleware.Timeout(router.requestTimeout))

		r.Get("/health", router.handler.Health)
		r.Get("/stats", router.handler.Stats)
		r.Get("/config", router.handler.GetConfig)

		r.With(router.chiMiddleware.RateLimit("/api/v1/recommend")).
			Post("/recommend", router.handler.Recommend)

		r.With(router.auth.RequireAdmin(actionConfigPatch)).
			Put("/config", router.handler.UpdateConfig)
		r.With(router.auth.RequireAdmin(actionConfigReload), router.auth.Throttle(router.reloadLimiter)).
			Post("/reload-config", router.handler.ReloadConfig)
	})

	return otelhttp.NewHandler(r, "campusrec",
		otelhttp.WithSpanNameFormatter(func(_ string, req *http.Request) string {
			return req.Method + " " + req.URL.Path
		}),
		otelhttp.WithFilter(func(req *http.Request) bool {
			return req.URL.Path != "/metrics"
		}),
	)
}
