// Campusrec - Campus Event Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/campusrec

package authz

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// DecisionsTotal counts authorization decisions.
var DecisionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "campusrec_authz_decisions_total",
		Help: "Admin route authorization decisions",
	},
	[]string{"decision", "cached"},
)

func recordDecision(allowed, cached bool) {
	d := "deny"
	if allowed {
		d = "allow"
	}
	DecisionsTotal.WithLabelValues(d, strconv.FormatBool(cached)).Inc()
}
