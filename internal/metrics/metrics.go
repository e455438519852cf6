// Campusrec - Campus Event Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/campusrec

package metrics

import (
	"context"
	"database/sql"
	"errors"
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "campusrec"

var startTime = time.Now()

// PostgreSQL
var (
	DBQueryDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace, Subsystem: "db", Name: "query_duration_seconds",
		Help:    "Duration of PostgreSQL queries in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation", "table"})

	DBQueryErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace, Subsystem: "db", Name: "query_errors_total",
		Help: "PostgreSQL query errors by class (timeout, canceled, no_rows, query)",
	}, []string{"operation", "table", "error_type"})

	DBOpenConnections = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace, Subsystem: "db", Name: "open_connections",
		Help: "Open connections in the database pool",
	})
)

// HTTP API
var (
	APIRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace, Subsystem: "api", Name: "requests_total",
		Help: "API requests by route pattern and status",
	}, []string{"method", "endpoint", "status_code"})

	APIRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace, Subsystem: "api", Name: "request_duration_seconds",
		Help:    "API request latency in seconds",
		Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
	}, []string{"method", "endpoint"})

	APIActiveRequests = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace, Subsystem: "api", Name: "active_requests",
		Help: "Requests currently being served",
	})

	APIRateLimitHits = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace, Subsystem: "api", Name: "rate_limit_hits_total",
		Help: "Requests rejected with 429",
	}, []string{"endpoint"})
)

// Recommendation engine
var (
	RecommendationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace, Name: "recommendations_total",
		Help: "Recommendation responses by outcome",
	}, []string{"outcome"})

	RecommendationDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace, Subsystem: "recommendation", Name: "duration_seconds",
		Help:    "Time to compute a recommendation response",
		Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
	}, []string{"outcome"})

	RecommendationCandidates = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace, Subsystem: "recommendation", Name: "candidates",
		Help:    "Candidate events considered per request",
		Buckets: []float64{0, 1, 5, 10, 25, 50, 100, 250, 500, 1000},
	})

	RecommendationResults = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace, Subsystem: "recommendation", Name: "results",
		Help:    "Events returned per request",
		Buckets: []float64{0, 1, 2, 5, 10, 20, 50},
	})

	RecommendationReasons = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace, Subsystem: "recommendation", Name: "reasons_total",
		Help: "Returned recommendations by primary reason",
	}, []string{"reason"})
)

// Club catalog
var (
	CatalogRebuildDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace, Subsystem: "catalog", Name: "rebuild_duration_seconds",
		Help:    "Duration of club catalog and index rebuilds",
		Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
	})

	CatalogClubs = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace, Subsystem: "catalog", Name: "clubs",
		Help: "Clubs in the current catalog snapshot",
	})

	CatalogVocabulary = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace, Subsystem: "catalog", Name: "vocabulary_size",
		Help: "Vocabulary size of the club text index",
	})

	CatalogIndexAvailable = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace, Subsystem: "catalog", Name: "index_available",
		Help: "1 if the club text index is usable, 0 otherwise",
	})

	CatalogLastRebuild = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace, Subsystem: "catalog", Name: "last_rebuild_timestamp",
		Help: "Unix time of the last catalog rebuild",
	})
)

// Recommender config
var (
	ConfigChanges = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace, Subsystem: "config", Name: "changes_total",
		Help: "Config patches, reloads and file-watch reloads by result",
	}, []string{"kind", "result"})

	ConfigGeneration = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace, Subsystem: "config", Name: "generation",
		Help: "Generation of the active recommender config",
	})
)

// Response cache
var (
	CacheHits = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace, Subsystem: "cache", Name: "hits_total",
		Help: "Response cache hits",
	}, []string{"backend"})

	CacheMisses = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace, Subsystem: "cache", Name: "misses_total",
		Help: "Response cache misses",
	}, []string{"backend"})

	CacheErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace, Subsystem: "cache", Name: "errors_total",
		Help: "Response cache backend errors",
	}, []string{"backend", "operation"})

	CacheSize = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace, Subsystem: "cache", Name: "entries",
		Help: "Entries currently cached",
	}, []string{"backend"})

	CacheEvictions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace, Subsystem: "cache", Name: "evictions_total",
		Help: "Entries evicted for capacity or expiry",
	}, []string{"backend"})
)

// Circuit breakers
var (
	CircuitBreakerState = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace, Subsystem: "circuit_breaker", Name: "state",
		Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
	}, []string{"name"})

	CircuitBreakerRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace, Subsystem: "circuit_breaker", Name: "requests_total",
		Help: "Calls through a circuit breaker by result (success, failure, rejected)",
	}, []string{"name", "result"})

	CircuitBreakerTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace, Subsystem: "circuit_breaker", Name: "state_transitions_total",
		Help: "Circuit breaker state changes",
	}, []string{"name", "from_state", "to_state"})
)

// Process
var (
	AppInfo = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace, Subsystem: "app", Name: "info",
		Help: "Build information; the value is always 1",
	}, []string{"version", "model_version", "go_version"})

	_ = promauto.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: namespace, Subsystem: "app", Name: "uptime_seconds",
		Help: "Seconds since the process started",
	}, func() float64 { return time.Since(startTime).Seconds() })
)

// SetAppInfo publishes the build and model versions.
func SetAppInfo(version, modelVersion string) {
	AppInfo.Reset()
	AppInfo.WithLabelValues(version, modelVersion, runtime.Version()).Set(1)
}

// dbErrorType keeps the error_type label to a fixed set.
func dbErrorType(err error) string {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.Is(err, context.Canceled):
		return "canceled"
	case errors.Is(err, sql.ErrNoRows):
		return "no_rows"
	default:
		return "query"
	}
}

// RecordDBQuery observes one query against table.
func RecordDBQuery(operation, table string, duration time.Duration, err error) {
	DBQueryDuration.WithLabelValues(operation, table).Observe(duration.Seconds())
	if err != nil {
		DBQueryErrors.WithLabelValues(operation, table, dbErrorType(err)).Inc()
	}
}

// RecordAPIRequest observes one served request. endpoint is the chi route
// pattern, not the raw path.
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
		return
	}
	APIActiveRequests.Dec()
}

// RecordConfigChange counts a patch, reload or watch-triggered reload and
// publishes the resulting generation.
func RecordConfigChange(kind string, err error, generation uint64) {
	result := "success"
	if err != nil {
		result = "failure"
	}
	ConfigChanges.WithLabelValues(kind, result).Inc()
	ConfigGeneration.Set(float64(generation))
}

func RecordCacheLookup(backend string, hit bool) {
	if hit {
		CacheHits.WithLabelValues(backend).Inc()
		return
	}
	CacheMisses.WithLabelValues(backend).Inc()
}
