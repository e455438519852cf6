// Campusrec - Campus Event Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/campusrec

// Package logging provides the zerolog-based structured logging used across
// campusrec.
//
// # Quick Start
//
//	logging.Init(logging.Config{Level: "info", Format: "json"})
//
//	logging.Info().Str("addr", ":8000").Msg("HTTP server listening")
//	logging.Error().Err(err).Msg("catalog refresh failed")
//
//	// Request-scoped fields
//	logging.Ctx(ctx).Info().Int("user_id", id).Msg("recommendation served")
//
// # Components
//
// Long-lived components take a zerolog.Logger and tag it:
//
//	logger := logging.WithComponent("catalog")
//
// # slog Bridge
//
// SlogHandler adapts zerolog to log/slog for libraries that require it, such
// as sutureslog in the supervisor tree.
//
// # Audit
//
// AuditLogger records admin actions (weight patches, reloads) and failed
// authentication attempts. Credentials pass through MaskSecret first.
//
// Always terminate event chains with Msg or Send; an unterminated event is
// never written.
package logging
