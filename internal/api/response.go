// Campusrec - Campus Event Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/campusrec

package api

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/campusrec/internal/auth"
	"github.com/tomtom215/campusrec/internal/logging"
)

// APIResponse is the error envelope. Successful responses are written as
// bare documents so existing clients of the recommend contract keep working.
type APIResponse struct {
	Status   string    `json:"status"`
	Error    *APIError `json:"error,omitempty"`
	Metadata Metadata  `json:"metadata"`
}

// APIError is a machine-readable error.
type APIError struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// Metadata identifies the failed request.
type Metadata struct {
	Timestamp time.Time `json:"timestamp"`
	RequestID string    `json:"request_id,omitempty"`
}

// Error codes for API responses
const (
	ErrCodeBadRequest         = "BAD_REQUEST"
	ErrCodeValidation         = "VALIDATION_ERROR"
	ErrCodeUnauthorized       = "UNAUTHORIZED"
	ErrCodeForbidden          = "FORBIDDEN"
	ErrCodeNotFound           = "NOT_FOUND"
	ErrCodeMethodNotAllowed   = "METHOD_NOT_ALLOWED"
	ErrCodeTooManyRequests    = "TOO_MANY_REQUESTS"
	ErrCodeInvalidConfig      = "INVALID_CONFIG"
	ErrCodeInternalError      = "INTERNAL_ERROR"
	ErrCodeServiceUnavailable = "SERVICE_UNAVAILABLE"
)

// respondJSON writes payload as JSON with status.
func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	data, err := json.Marshal(payload)
	if err != nil {
		logging.Error().Err(err).Msg("Failed to marshal JSON response")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	if _, err := w.Write(data); err != nil {
		logging.Error().Err(err).Msg("Failed to write JSON response")
	}
}

// respondError writes the error envelope. err, if set, is logged but never
// sent to the client.
func respondError(w http.ResponseWriter, r *http.Request, status int, code, message string, err error) {
	respondErrorWithDetails(w, r, status, &APIError{Code: code, Message: message}, err)
}

func respondErrorWithDetails(w http.ResponseWriter, r *http.Request, status int, apiErr *APIError, err error) {
	if err != nil {
		logging.Ctx(r.Context()).Error().
			Str("code", apiErr.Code).
			Str("error", sanitizeLogValue(err.Error())).
			Msg("API Error")
	}

	respondJSON(w, status, &APIResponse{
		Status: "error",
		Error:  apiErr,
		Metadata: Metadata{
			Timestamp: time.Now().UTC(),
			RequestID: logging.RequestIDFromContext(r.Context()),
		},
	})
}

// AuthErrorWriter renders auth middleware failures in the error envelope.
// It is passed to auth.NewMiddleware.
func AuthErrorWriter(w http.ResponseWriter, r *http.Request, status int, err error) {
	code := ErrCodeUnauthorized
	message := "Valid admin credentials required"
	switch {
	case status == http.StatusTooManyRequests:
		code, message = ErrCodeTooManyRequests, "Too many reload requests"
	case errors.Is(err, auth.ErrAdminDisabled):
		code, message = ErrCodeForbidden, "Admin endpoints are disabled"
	case status == http.StatusForbidden:
		code, message = ErrCodeForbidden, "Admin role required"
	case errors.Is(err, auth.ErrExpiredCredentials):
		message = "Credentials expired"
	}
	respondError(w, r, status, code, message, nil)
}

// sanitizeLogValue strips control characters so client-influenced strings
// cannot forge log lines.
func sanitizeLogValue(s string) string {
	return strings.Map(func(r rune) rune {
		if r < 0x20 || r == 0x7f {
			return ' '
		}
		return r
	}, s)
}
