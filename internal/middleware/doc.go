// Campusrec - Campus Event Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/campusrec

/*
Package middleware provides the HTTP middleware shared by every route.

  - RequestID: reuses a sane upstream X-Request-ID or generates a UUID, and
    stores it in the context read by logging.Ctx
  - PrometheusMetrics: records campusrec_api_requests_total,
    campusrec_api_request_duration_seconds and campusrec_api_active_requests,
    labelled by chi route pattern

Both are plain func(http.Handler) http.Handler and are mounted on the chi
router in internal/api:

	r.Use(middleware.RequestID)
	r.Use(middleware.PrometheusMetrics)
*/
package middleware
