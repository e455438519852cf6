// Campusrec - Campus Event Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/campusrec

package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/tomtom215/campusrec/internal/metrics"
	"github.com/tomtom215/campusrec/internal/recommend"
)

const backendRedis = "redis"

// RedisCache stores responses in Redis so replicas share hits. It
// implements recommend.ResponseCache. Redis failures are logged and counted,
// then treated as misses: the cache never fails a request.
type RedisCache struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
	logger zerolog.Logger
}

var _ recommend.ResponseCache = (*RedisCache)(nil)

// NewRedisCache wraps client. Keys are stored as prefix+key.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func NewRedisCache(client *redis.Client, prefix string, ttl time.Duration, logger zerolog.Logger) *RedisCache {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &RedisCache{
		client: client,
		prefix: prefix,
		ttl:    ttl,
		logger: logger.With().Str("component", "cache").Str("backend", backendRedis).Logger(),
	}
}

// NewRedisCacheFromURL connects to the redis:// URL and verifies it with PING.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func NewRedisCacheFromURL(ctx context.Context, url, prefix string, ttl time.Duration, logger zerolog.Logger) (*RedisCache, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)

	c := NewRedisCache(client, prefix, ttl, logger)
	if err := c.Ping(ctx); err != nil {
		_ = client.Close()
		return nil, err
	}
	return c, nil
}

// Get returns the response stored under key.
func (c *RedisCache) Get(ctx context.Context, key string) (*recommend.Response, bool) {
	data, err := c.client.Get(ctx, c.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		metrics.RecordCacheLookup(backendRedis, false)
		return nil, false
	}
	if err != nil {
		c.fail("get", err)
		metrics.RecordCacheLookup(backendRedis, false)
		return nil, false
	}

	var resp recommend.Response
	if err := json.Unmarshal(data, &resp); err != nil {
		c.fail("decode", err)
		metrics.RecordCacheLookup(backendRedis, false)
		return nil, false
	}

	metrics.RecordCacheLookup(backendRedis, true)
	return &resp, true
}

// Set stores resp under key with the cache TTL.
func (c *RedisCache) Set(ctx context.Context, key string, resp *recommend.Response) {
	data, err := json.Marshal(resp)
	if err != nil {
		c.fail("encode", err)
		return
	}
	if err := c.client.Set(ctx, c.prefix+key, data, c.ttl).Err(); err != nil {
		c.fail("set", err)
	}
}

// Clear deletes every key under the prefix and returns how many were removed.
func (c *RedisCache) Clear(ctx context.Context) (int, error) {
	removed := 0
	iter := c.client.Scan(ctx, 0, c.prefix+"*", 500).Iterator()
	batch := make([]string, 0, 500)

	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		n, err := c.client.Del(ctx, batch...).Result()
		if err != nil {
			return err
		}
		removed += int(n)
		batch = batch[:0]
		return nil
	}

	for iter.Next(ctx) {
		batch = append(batch, iter.Val())
		if len(batch) == cap(batch) {
			if err := flush(); err != nil {
				return removed, fmt.Errorf("clear redis cache: %w", err)
			}
		}
	}
	if err := iter.Err(); err != nil {
		return removed, fmt.Errorf("scan redis cache: %w", err)
	}
	if err := flush(); err != nil {
		return removed, fmt.Errorf("clear redis cache: %w", err)
	}

	metrics.CacheEvictions.WithLabelValues(backendRedis).Add(float64(removed))
	return removed, nil
}

// Ping checks the connection.
func (c *RedisCache) Ping(ctx context.Context) error {
	if err := c.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping: %w", err)
	}
	return nil
}

// Close closes the client.
func (c *RedisCache) Close() error {
	return c.client.Close()
}

func (c *RedisCache) fail(op string, err error) {
	metrics.CacheErrors.WithLabelValues(backendRedis, op).Inc()
	c.logger.Warn().Err(err).Str("operation", op).Msg("response cache operation failed")
}
