// Campusrec - Campus Event Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/campusrec

//go:build integration

package testinfra

import (
	"testing"

	"github.com/testcontainers/testcontainers-go"
)

// SkipIfNoDocker skips t when no healthy container provider is reachable,
// so `go test -tags integration` still passes on machines without Docker.
func SkipIfNoDocker(t *testing.T) {
	t.Helper()
	testcontainers.SkipIfProviderIsNotHealthy(t)
}

// CleanupContainer terminates ctr when t finishes. A nil container is
// ignored.
func CleanupContainer(t *testing.T, ctr testcontainers.Container) {
	t.Helper()
	testcontainers.CleanupContainer(t, ctr)
}
