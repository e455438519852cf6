// Campusrec - Campus Event Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/campusrec

package database

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"net"

	"github.com/lib/pq"
	"github.com/rs/zerolog"
)

// closeWithLog closes a resource and logs any error.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func closeWithLog(closer io.Closer, logger zerolog.Logger, resourceType string) {
	if closer == nil {
		return
	}
	if err := closer.Close(); err != nil {
		logger.Warn().Str("type", resourceType).Err(err).Msg("failed to close resource")
	}
}

// closeQuietly closes a resource in error paths where Close errors are not
// actionable.
func closeQuietly(closer io.Closer) {
	if closer != nil {
		_ = closer.Close()
	}
}

// errorType returns a short, low-cardinality label for err.
func errorType(err error) string {
	var pqErr *pq.Error
	var netErr net.Error
	switch {
	case err == nil:
		return ""
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.Is(err, context.Canceled):
		return "canceled"
	case errors.Is(err, sql.ErrConnDone):
		return "connection"
	case errors.As(err, &pqErr):
		return "pq_" + string(pqErr.Code.Class())
	case errors.As(err, &netErr):
		return "network"
	default:
		return "other"
	}
}

// IsTransient reports whether err is likely to succeed on retry. Constraint
// and syntax errors are not.
func IsTransient(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code.Class() {
		case "08", "53", "57", "40": // connection, resources, operator intervention, rollback
			return true
		default:
			return false
		}
	}
	var netErr net.Error
	return errors.As(err, &netErr) || errors.Is(err, context.DeadlineExceeded) || errors.Is(err, sql.ErrConnDone)
}
