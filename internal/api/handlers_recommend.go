// Campusrec - Campus Event Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/campusrec

package api

import (
	"net/http"

	"github.com/tomtom215/campusrec/internal/logging"
)

// Recommend handles POST /api/v1/recommend.
//
// The response is always 200 once the body is valid: fallback and error
// results are flagged in metadata rather than failing the request.
func (h *Handler) Recommend(w http.ResponseWriter, r *http.Request) {
	var body RecommendRequest
	if !decodeAndValidate(w, r, &body) {
		return
	}

	if f := body.Context; f != nil && f.Filters != nil && f.Filters.MinDate != nil && f.Filters.MaxDate != nil &&
		f.Filters.MaxDate.Before(*f.Filters.MinDate) {
		respondError(w, r, http.StatusBadRequest, ErrCodeValidation, "maxDate must not be before minDate", nil)
		return
	}

	req := body.toEngineRequest(logging.RequestIDFromContext(r.Context()))
	resp := h.engine.Recommend(r.Context(), req)

	respondJSON(w, http.StatusOK, resp)
}
