// Campusrec - Campus Event Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/campusrec

package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net"
	"testing"

	"github.com/lib/pq"
	"github.com/rs/zerolog"
)

type closer struct {
	err    error
	closed bool
}

func (c *closer) Close() error {
	c.closed = true
	return c.err
}

func TestCloseHelpers(t *testing.T) {
	c := &closer{err: errors.New("already closed")}
	closeWithLog(c, zerolog.Nop(), "rows")
	if !c.closed {
		t.Error("closeWithLog did not close")
	}

	c = &closer{}
	closeQuietly(c)
	if !c.closed {
		t.Error("closeQuietly did not close")
	}

	closeWithLog(nil, zerolog.Nop(), "rows")
	closeQuietly(nil)
}

func TestErrorType(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, ""},
		{"deadline", fmt.Errorf("query: %w", context.DeadlineExceeded), "timeout"},
		{"canceled", context.Canceled, "canceled"},
		{"conn done", sql.ErrConnDone, "connection"},
		{"pq undefined table", &pq.Error{Code: "42P01"}, "pq_42"},
		{"pq connection", &pq.Error{Code: "08006"}, "pq_08"},
		{"network", &net.OpError{Op: "dial", Err: errors.New("refused")}, "network"},
		{"other", errors.New("boom"), "other"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := errorType(tt.err); got != tt.want {
				t.Errorf("errorType() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestIsTransient(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"connection failure", &pq.Error{Code: "08006"}, true},
		{"too many connections", &pq.Error{Code: "53300"}, true},
		{"admin shutdown", &pq.Error{Code: "57P01"}, true},
		{"serialization", &pq.Error{Code: "40001"}, true},
		{"undefined column", &pq.Error{Code: "42703"}, false},
		{"unique violation", &pq.Error{Code: "23505"}, false},
		{"network", &net.OpError{Op: "read", Err: errors.New("reset")}, true},
		{"deadline", context.DeadlineExceeded, true},
		{"plain", errors.New("boom"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsTransient(tt.err); got != tt.want {
				t.Errorf("IsTransient() = %v, want %v", got, tt.want)
			}
		})
	}
}
