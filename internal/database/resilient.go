// Campusrec - Campus Event Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/campusrec

package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tomtom215/campusrec/internal/config"
	"github.com/tomtom215/campusrec/internal/metrics"
	"github.com/tomtom215/campusrec/internal/recommend"
)

// ErrCircuitOpen is returned while the breaker rejects calls.
var ErrCircuitOpen = errors.New("database circuit breaker open")

// ResilientProvider wraps a DataProvider with a circuit breaker. Once the
// database keeps failing, calls are rejected immediately and the engine
// serves its fallback path without waiting on query timeouts.
//
// The breaker uses real time for its interval and timeout.
type ResilientProvider struct {
	next recommend.DataProvider
	cb   *gobreaker.CircuitBreaker[any]
	name string
}

var _ recommend.DataProvider = (*ResilientProvider)(nil)

// NewResilientProvider wraps next with a breaker configured by cfg.
//
// Defaults: 3 probe requests in half-open state, 1 minute measurement
// window, 30 second open timeout, opening at a 60% failure rate over at
// least 10 requests.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func NewResilientProvider(next recommend.DataProvider, cfg *config.BreakerConfig, logger zerolog.Logger) *ResilientProvider {
	name := "postgres"
	logger = logger.With().Str("component", "circuit_breaker").Str("name", name).Logger()

	maxRequests := cfg.MaxRequests
	if maxRequests == 0 {
		maxRequests = 3
	}
	interval := cfg.Interval
	if interval <= 0 {
		interval = time.Minute
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	minRequests := cfg.MinRequests
	if minRequests == 0 {
		minRequests = 10
	}
	ratio := cfg.FailureRatio
	if ratio <= 0 {
		ratio = 0.6
	}

	metrics.CircuitBreakerState.WithLabelValues(name).Set(0)

	cb := gobreaker.NewCircuitBreaker[any](gobreaker.Settings{
		Name:        name,
		MaxRequests: maxRequests,
		Interval:    interval,
		Timeout:     timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < minRequests {
				return false
			}
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			if failureRatio >= ratio {
				logger.Warn().
					Uint32("failures", counts.TotalFailures).
					Float64("failure_rate", failureRatio).
					Msg("opening circuit")
				return true
			}
			return false
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Info().Str("from", from.String()).Str("to", to.String()).Msg("circuit state transition")
			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateToFloat(to))
			metrics.CircuitBreakerTransitions.WithLabelValues(name, from.String(), to.String()).Inc()
		},
		// A canceled request says nothing about database health.
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
	})

	return &ResilientProvider{next: next, cb: cb, name: name}
}

// State returns the current breaker state.
func (r *ResilientProvider) State() gobreaker.State {
	return r.cb.State()
}

func (r *ResilientProvider) execute(fn func() (any, error)) (any, error) {
	result, err := r.cb.Execute(fn)
	switch {
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		metrics.CircuitBreakerRequests.WithLabelValues(r.name, "rejected").Inc()
		return nil, fmt.Errorf("%w: %v", ErrCircuitOpen, err)
	case err != nil:
		metrics.CircuitBreakerRequests.WithLabelValues(r.name, "failure").Inc()
		return nil, err
	default:
		metrics.CircuitBreakerRequests.WithLabelValues(r.name, "success").Inc()
		return result, nil
	}
}

// call runs fn through the breaker and type-asserts its result.
func call[T any](r *ResilientProvider, fn func() (T, error)) (T, error) {
	var zero T
	result, err := r.execute(func() (any, error) {
		return fn()
	})
	if err != nil {
		return zero, err
	}
	typed, ok := result.(T)
	if !ok {
		return zero, fmt.Errorf("circuit breaker: unexpected result type %T", result)
	}
	return typed, nil
}

func stateToFloat(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}

// FollowedClubs implements recommend.DataProvider.
func (r *ResilientProvider) FollowedClubs(ctx context.Context, userID int) ([]int, error) {
	return call(r, func() ([]int, error) { return r.next.FollowedClubs(ctx, userID) })
}

// Clubs implements recommend.DataProvider.
func (r *ResilientProvider) Clubs(ctx context.Context) ([]recommend.Club, error) {
	return call(r, func() ([]recommend.Club, error) { return r.next.Clubs(ctx) })
}

// Events implements recommend.DataProvider.
//
//nolint:gocritic // hugeParam: filter passed by value per the interface
func (r *ResilientProvider) Events(ctx context.Context, filter recommend.EventFilter) ([]recommend.Event, error) {
	return call(r, func() ([]recommend.Event, error) { return r.next.Events(ctx, filter) })
}

// UserHistory implements recommend.DataProvider.
func (r *ResilientProvider) UserHistory(ctx context.Context, userID int, since time.Time) ([]recommend.Interaction, error) {
	return call(r, func() ([]recommend.Interaction, error) { return r.next.UserHistory(ctx, userID, since) })
}

// ClubMemberCounts implements recommend.DataProvider.
func (r *ResilientProvider) ClubMemberCounts(ctx context.Context) (map[int]int, error) {
	return call(r, func() (map[int]int, error) { return r.next.ClubMemberCounts(ctx) })
}

// ClubEventCounts implements recommend.DataProvider.
func (r *ResilientProvider) ClubEventCounts(ctx context.Context, since time.Time) (map[int]int, error) {
	return call(r, func() (map[int]int, error) { return r.next.ClubEventCounts(ctx, since) })
}

// Ping bypasses the breaker so health checks always reflect the database.
func (r *ResilientProvider) Ping(ctx context.Context) error {
	return r.next.Ping(ctx)
}
