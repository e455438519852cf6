// Campusrec - Campus Event Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/campusrec

/*
Package api provides the HTTP surface of the recommendation service, routed
with chi.

Routes (all under /api/v1 except /metrics):

	GET  /health          database ping; 200 ok or 503 degraded
	POST /recommend       ranked events for one user (per-IP rate limited)
	GET  /stats           engine counters and catalog age
	GET  /config          model, weights, ranking, content and temporal settings
	PUT  /config          admin: patch and persist scoring weights
	POST /reload-config   admin: all-or-nothing reload (per-subject throttled)
	GET  /metrics         Prometheus exposition

Successful responses are bare JSON documents. Failures use the envelope

	{"status":"error","error":{"code":"VALIDATION_ERROR","message":"..."},"metadata":{...}}

with the ErrCode* constants as codes. POST /recommend answers 200 for every
valid body: fallback and error results are flagged in the response metadata.

Middleware order: request ID, real IP, panic recovery, CORS, Prometheus,
then a per-request timeout on /api/v1. The whole router is wrapped in
otelhttp so spans started by the engine join the request trace.
*/
package api
