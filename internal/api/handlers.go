// Campusrec - Campus Event Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/campusrec

package api

import (
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/campusrec/internal/auth"
	"github.com/tomtom215/campusrec/internal/recommend"
	"github.com/tomtom215/campusrec/internal/validation"
)

const maxBodyBytes = 1 << 20

var errEmptyBody = errors.New("request body required")

// Handler serves the recommendation API.
//
// Handler methods are split across files:
//   - handlers.go: Handler struct, constructor, body decoding (this file)
//   - handlers_health.go: health and stats
//   - handlers_recommend.go: POST /recommend
//   - handlers_config.go: config view, weight patch and reload
type Handler struct {
	engine    *recommend.Engine
	auth      *auth.Middleware
	startTime time.Time
	now       func() time.Time
}

// NewHandler creates a handler around engine. authMW may be nil, in which
// case admin actions are not audited.
func NewHandler(engine *recommend.Engine, authMW *auth.Middleware) *Handler {
	return &Handler{
		engine:    engine,
		auth:      authMW,
		startTime: time.Now(),
		now:       time.Now,
	}
}

// decodeBody reads a size-limited JSON body into v.
func decodeBody(w http.ResponseWriter, r *http.Request, v interface{}) error {
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
	err := json.NewDecoder(body).Decode(v)
	if errors.Is(err, io.EOF) {
		return errEmptyBody
	}
	return err
}

// decodeAndValidate decodes the body into v and validates it, writing the
// 400 response itself. It reports whether the handler may continue.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := decodeBody(w, r, v); err != nil {
		message := "Invalid JSON body"
		if errors.Is(err, errEmptyBody) {
			message = "Request body required"
		}
		respondError(w, r, http.StatusBadRequest, ErrCodeBadRequest, message, nil)
		return false
	}

	if verr := validation.ValidateStruct(v); verr != nil {
		apiErr := verr.ToAPIError()
		respondErrorWithDetails(w, r, http.StatusBadRequest, &APIError{
			Code:    ErrCodeValidation,
			Message: apiErr.Message,
			Details: apiErr.Details,
		}, nil)
		return false
	}
	return true
}

func (h *Handler) audit(r *http.Request, action string, err error, details map[string]string) {
	if h.auth != nil {
		h.auth.Audit(r, action, err, details)
	}
}
