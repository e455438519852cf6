// Campusrec - Campus Event Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/campusrec

/*
Package metrics provides the Prometheus instrumentation for campusrec.

Metrics are registered with promauto on the default registry and exposed at
/metrics in Prometheus text format.

# Available Metrics

Recommendation Metrics:
  - campusrec_recommendations_total: responses by outcome (counter)
    Labels: outcome (personalized, empty, fallback, error, cached)
  - campusrec_recommendation_duration_seconds: compute time (histogram)
  - campusrec_recommendation_candidates: candidates per request (histogram)
  - campusrec_recommendation_results: returned events per request (histogram)
  - campusrec_recommendation_reasons_total: results by primary reason (counter)

Catalog Metrics:
  - campusrec_catalog_rebuild_duration_seconds (histogram)
  - campusrec_catalog_clubs, campusrec_catalog_vocabulary_size (gauges)
  - campusrec_catalog_index_available: 1 when the text index is usable
  - campusrec_catalog_last_rebuild_timestamp (gauge)

Config Metrics:
  - campusrec_config_changes_total: patches and reloads by result
  - campusrec_config_generation: active config generation

Other subsystems:
  - campusrec_api_*: requests_total, request_duration_seconds, active_requests, rate_limit_hits_total
  - campusrec_db_*: query_duration_seconds, query_errors_total (error_type: timeout, canceled, no_rows, query), open_connections
  - campusrec_cache_*: hits_total, misses_total, errors_total, entries, evictions_total
  - campusrec_circuit_breaker_*: state, requests_total, state_transitions_total
  - campusrec_app_info (version, model_version, go_version), campusrec_app_uptime_seconds

# Usage

Recorder implements recommend.Observer:

	engine.SetObserver(metrics.Recorder{})
	engine.Catalog().OnRebuild = metrics.Recorder{}.ObserveCatalogRebuild

# Testing

Tests read values with prometheus/testutil:

	before := testutil.ToFloat64(metrics.RecommendationsTotal.WithLabelValues("fallback"))
*/
package metrics
