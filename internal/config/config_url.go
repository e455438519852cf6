// Campusrec - Campus Event Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/campusrec

package config

import (
	"fmt"
	"net/url"
	"strings"
)

// validateURLScheme checks that rawURL parses, has a host and uses one of
// schemes.
func validateURLScheme(rawURL, fieldName string, schemes ...string) error {
	parsedURL, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("%s failed to parse URL: %w", fieldName, err)
	}

	ok := false
	for _, s := range schemes {
		if parsedURL.Scheme == s {
			ok = true
			break
		}
	}
	if !ok {
		return fmt.Errorf("%s scheme must be one of %s, got: %q", fieldName, strings.Join(schemes, ", "), parsedURL.Scheme)
	}

	if parsedURL.Host == "" {
		return fmt.Errorf("%s host is required", fieldName)
	}
	return nil
}

// validateDatabaseURL accepts postgres:// URLs and lib/pq key=value
// connection strings.
func validateDatabaseURL(raw string) error {
	if !strings.Contains(raw, "://") {
		if !strings.Contains(raw, "=") {
			return fmt.Errorf("DATABASE_URL must be a postgres:// URL or key=value connection string")
		}
		return nil
	}
	return validateURLScheme(raw, "DATABASE_URL", "postgres", "postgresql")
}

// validateRedisURL accepts redis:// and rediss:// URLs.
func validateRedisURL(raw string) error {
	return validateURLScheme(raw, "REDIS_URL", "redis", "rediss")
}
