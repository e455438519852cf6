// Campusrec - Campus Event Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/campusrec

// Package authz decides which admin routes a caller may use, with a Casbin
// RBAC model.
//
// The default model and policy are embedded:
//
//	p, admin, /api/v1/*, *
//	p, operator, /api/v1/reload-config, POST
//	p, operator, /api/v1/config, GET
//
// An admin may patch weights and reload; an operator may only reload. A
// policy file set through AUTHZ_POLICY_PATH replaces the embedded policy and
// may also grant roles to individual subjects:
//
//	g, ops-bot, operator
//
// Objects are request paths matched with keyMatch2; actions are HTTP
// methods, with "*" matching any method. Decisions are cached for a short
// TTL and counted in campusrec_authz_decisions_total.
//
//	enforcer, err := authz.NewEnforcer(&authz.EnforcerConfig{PolicyPath: cfg.Auth.PolicyPath})
//	authMW.SetAuthorizer(enforcer)
package authz
