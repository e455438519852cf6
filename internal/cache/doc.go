// Campusrec - Campus Event Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/campusrec

// Package cache provides the recommendation response cache backends.
//
//   - MemoryCache: in-process LRU with TTL expiry (default)
//   - RedisCache: shared cache for several replicas, via go-redis
//
// Both implement recommend.ResponseCache. The engine only caches
// personalized responses, and its keys carry the config generation, so a
// weight patch or reload never serves stale rankings.
//
//	c, err := cache.New(ctx, &cfg.Cache, logger)
//	if c != nil {
//	    engine.SetCache(c)
//	    defer c.Close()
//	}
//
// Lookups are counted in campusrec_cache_hits_total and
// campusrec_cache_misses_total by backend.
package cache
