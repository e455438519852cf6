// Campusrec - Campus Event Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/campusrec

//go:build integration

package testinfra

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

const (
	// DefaultRedisImage is the Redis image used by integration tests.
	DefaultRedisImage = "redis:7-alpine"

	redisPort = "6379/tcp"
)

// RedisContainer is a running Redis container.
type RedisContainer struct {
	testcontainers.Container
	// URL is a redis:// URL accepted by redis.ParseURL.
	URL string
}

// NewRedisContainer starts Redis with persistence disabled.
func NewRedisContainer(ctx context.Context) (*RedisContainer, error) {
	req := testcontainers.ContainerRequest{
		Image:        DefaultRedisImage,
		ExposedPorts: []string{redisPort},
		Cmd:          []string{"redis-server", "--save", "", "--appendonly", "no"},
		WaitingFor: wait.ForAll(
			wait.ForLog("Ready to accept connections"),
			wait.ForListeningPort(redisPort),
		).WithDeadline(time.Minute),
	}

	ctr, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		return nil, fmt.Errorf("start redis container: %w", err)
	}

	host, err := ctr.Host(ctx)
	if err != nil {
		_ = ctr.Terminate(ctx)
		return nil, fmt.Errorf("redis host: %w", err)
	}
	port, err := ctr.MappedPort(ctx, redisPort)
	if err != nil {
		_ = ctr.Terminate(ctx)
		return nil, fmt.Errorf("redis port: %w", err)
	}

	return &RedisContainer{
		Container: ctr,
		URL:       fmt.Sprintf("redis://%s:%s/0", host, port.Port()),
	}, nil
}

// StartRedis starts Redis for t, skipping the test when Docker is
// unavailable. The container is terminated on cleanup.
func StartRedis(t *testing.T) *RedisContainer {
	t.Helper()
	SkipIfNoDocker(t)

	ctr, err := NewRedisContainer(context.Background())
	if err != nil {
		t.Fatalf("redis container: %v", err)
	}
	CleanupContainer(t, ctr)
	return ctr
}
