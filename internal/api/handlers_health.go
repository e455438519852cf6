// Campusrec - Campus Event Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/campusrec

package api

import (
	"net/http"

	"github.com/tomtom215/campusrec/internal/logging"
)

// Health handles GET /api/v1/health. It returns 503 when the database
// cannot be reached.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	now := h.now()
	resp := HealthResponse{
		Status:    "ok",
		Database:  "connected",
		Version:   h.engine.Config().Get().Model.Version,
		Timestamp: now.UTC(),
		Uptime:    now.Sub(h.startTime).Seconds(),
	}

	status := http.StatusOK
	if err := h.engine.Ping(r.Context()); err != nil {
		logging.Ctx(r.Context()).Warn().Err(err).Msg("health check: database unreachable")
		resp.Status = "degraded"
		resp.Database = "disconnected"
		status = http.StatusServiceUnavailable
	}

	respondJSON(w, status, resp)
}

// Stats handles GET /api/v1/stats.
func (h *Handler) Stats(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, h.engine.GetStats())
}
