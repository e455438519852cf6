// Campusrec - Campus Event Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/campusrec

package logging

import (
	"strings"

	"github.com/rs/zerolog"
)

// AdminEvent records an administrative action or an authentication attempt
// against an admin endpoint.
type AdminEvent struct {
	// Action is what was attempted, e.g. "config_patch", "config_reload", "auth".
	Action string
	// Subject identifies the caller: a JWT subject or a masked API key.
	Subject string
	// Method is the credential kind: "api_key" or "jwt".
	Method string
	// RemoteAddr is the client address.
	RemoteAddr string
	// Success reports whether the action succeeded.
	Success bool
	// Error is the failure message, if any.
	Error string
	// Details are extra fields, e.g. the patched weight names.
	Details map[string]string
}

// AuditLogger writes admin events under the "audit" component.
type AuditLogger struct {
	logger zerolog.Logger
}

// NewAuditLogger creates an audit logger from logger.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func NewAuditLogger(logger zerolog.Logger) *AuditLogger {
	return &AuditLogger{logger: logger.With().Str("component", "audit").Logger()}
}

// Log writes event. Failures are logged at warn level.
func (a *AuditLogger) Log(event *AdminEvent) {
	e := a.logger.Info()
	status := "success"
	if !event.Success {
		e = a.logger.Warn()
		status = "failed"
	}

	e = e.Str("action", event.Action).Str("status", status)
	if event.Subject != "" {
		e = e.Str("subject", event.Subject)
	}
	if event.Method != "" {
		e = e.Str("method", event.Method)
	}
	if event.RemoteAddr != "" {
		e = e.Str("remote_addr", event.RemoteAddr)
	}
	if event.Error != "" {
		e = e.Str("error", event.Error)
	}
	for k, v := range event.Details {
		e = e.Str(k, v)
	}
	e.Msg("admin event")
}

// MaskSecret keeps the first four characters of a credential and masks the
// rest so it can be logged.
func MaskSecret(s string) string {
	if s == "" {
		return ""
	}
	if len(s) <= 4 {
		return strings.Repeat("*", len(s))
	}
	return s[:4] + strings.Repeat("*", 8)
}
