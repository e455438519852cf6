// Campusrec - Campus Event Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/campusrec

package cache

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/campusrec/internal/config"
	"github.com/tomtom215/campusrec/internal/recommend"
)

// Cache is a response cache that owns resources.
type Cache interface {
	recommend.ResponseCache
	io.Closer
}

// Stats tracks cache performance.
type Stats struct {
	Hits        int64
	Misses      int64
	Evictions   int64
	TotalKeys   int64
	LastCleanup time.Time
}

// HitRate returns hits as a percentage of lookups.
func (s Stats) HitRate() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0.0
	}
	return float64(s.Hits) / float64(total) * 100.0
}

// New builds the backend selected by cfg. It returns nil for "none".
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func New(ctx context.Context, cfg *config.CacheConfig, logger zerolog.Logger) (Cache, error) {
	switch cfg.Backend {
	case "", "none":
		return nil, nil
	case backendMemory:
		c := NewMemoryCache(cfg.MaxEntries, cfg.TTL)
		c.StartCleanup(ctx, cleanupInterval(cfg.TTL))
		return c, nil
	case backendRedis:
		return NewRedisCacheFromURL(ctx, cfg.RedisURL, cfg.RedisPrefix, cfg.TTL, logger)
	default:
		return nil, fmt.Errorf("unknown cache backend %q", cfg.Backend)
	}
}

func cleanupInterval(ttl time.Duration) time.Duration {
	if ttl < time.Minute {
		return time.Minute
	}
	return ttl
}
