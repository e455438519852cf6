// Campusrec - Campus Event Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/campusrec

/*
Package auth protects the admin endpoints (PUT /config, POST /reload-config).

Two credential kinds are accepted, tried in this order:

  - X-API-Key: compared in constant time with the configured key, or with
    bcrypt against ADMIN_API_KEY_HASH
  - Authorization: Bearer <jwt>: HS256, signed with JWT_SECRET, must carry
    role=admin and, when JWT_ISSUER is set, a matching iss claim

A request with no credential of either kind falls through the chain and is
refused with 401. A credential that is present but wrong stops the chain.

Usage:

	mw, err := auth.NewMiddleware(&cfg.Auth, logging.NewAuditLogger(logger), api.AuthErrorWriter)
	limiter := auth.NewRateLimiter(cfg.Auth.ReloadRateLimit, cfg.Auth.ReloadBurst)

	r.With(mw.RequireAdmin("config_reload"), mw.Throttle(limiter)).
	    Post("/reload-config", h.ReloadConfig)

Every refusal is written to the audit log with the key masked, and counted
in campusrec_admin_auth_attempts_total.
*/
package auth
