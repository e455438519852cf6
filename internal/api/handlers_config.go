// Campusrec - Campus Event Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/campusrec

package api

import (
	"errors"
	"net/http"
	"sort"
	"strings"

	"github.com/tomtom215/campusrec/internal/logging"
	"github.com/tomtom215/campusrec/internal/metrics"
	"github.com/tomtom215/campusrec/internal/recommend"
)

const (
	actionConfigPatch  = "config_patch"
	actionConfigReload = "config_reload"
)

// GetConfig handles GET /api/v1/config.
func (h *Handler) GetConfig(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, newConfigView(h.engine.Config().Snapshot()))
}

// UpdateConfig handles PUT /api/v1/config. Only scoring weights may be
// patched. Every named weight is applied, so 0 switches a signal off. The
// result is persisted before it takes effect.
func (h *Handler) UpdateConfig(w http.ResponseWriter, r *http.Request) {
	var body ConfigPatchRequest
	if !decodeAndValidate(w, r, &body) {
		return
	}

	store := h.engine.Config()
	cfg, err := store.PatchWeights(r.Context(), body.ScoringWeights)
	metrics.RecordConfigChange("patch", err, store.Generation())
	h.audit(r, actionConfigPatch, err, map[string]string{"weights": weightNames(body.ScoringWeights)})

	if err != nil {
		h.respondConfigError(w, r, err)
		return
	}

	logging.Ctx(r.Context()).Info().
		Interface("scoring_weights", cfg.Weights.ToMap()).
		Uint64("generation", store.Generation()).
		Msg("scoring weights updated")

	respondJSON(w, http.StatusOK, ConfigChangeResponse{
		Status:     "updated",
		Timestamp:  h.now().UTC(),
		Version:    cfg.Model.Version,
		Generation: store.Generation(),
	})
}

// ReloadConfig handles POST /api/v1/reload-config. The reload is
// all-or-nothing: on failure the running configuration is untouched.
func (h *Handler) ReloadConfig(w http.ResponseWriter, r *http.Request) {
	store := h.engine.Config()
	cfg, err := store.Reload(r.Context())
	metrics.RecordConfigChange("reload", err, store.Generation())
	h.audit(r, actionConfigReload, err, nil)

	if err != nil {
		h.respondConfigError(w, r, err)
		return
	}

	logging.Ctx(r.Context()).Info().
		Str("model_version", cfg.Model.Version).
		Uint64("generation", store.Generation()).
		Msg("recommender config reloaded")

	respondJSON(w, http.StatusOK, ConfigChangeResponse{
		Status:     "reloaded",
		Timestamp:  h.now().UTC(),
		Version:    cfg.Model.Version,
		Generation: store.Generation(),
	})
}

func (h *Handler) respondConfigError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, recommend.ErrInvalidConfig):
		respondError(w, r, http.StatusBadRequest, ErrCodeInvalidConfig, err.Error(), nil)
	case errors.Is(err, recommend.ErrNoPersister):
		respondError(w, r, http.StatusServiceUnavailable, ErrCodeServiceUnavailable,
			"Weight persistence is not configured", err)
	default:
		respondError(w, r, http.StatusInternalServerError, ErrCodeInternalError,
			"Failed to apply configuration", err)
	}
}

func weightNames(patch map[string]float64) string {
	names := make([]string, 0, len(patch))
	for name := range patch {
		names = append(names, name)
	}
	sort.Strings(names)
	return strings.Join(names, ",")
}
