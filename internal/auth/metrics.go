// Campusrec - Campus Event Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/campusrec

package auth

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// AuthAttempts is labelled by credential method (api_key, jwt, none) and
// outcome (success, unauthorized, forbidden, error).
var AuthAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "campusrec", Subsystem: "admin", Name: "auth_attempts_total",
	Help: "Admin endpoint authentication attempts",
}, []string{"method", "outcome"})

// ReloadThrottled counts reloads refused with 429.
var ReloadThrottled = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "campusrec", Subsystem: "admin", Name: "reload_throttled_total",
	Help: "Config reload requests rejected by the reload rate limiter",
})
