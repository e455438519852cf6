// Campusrec - Campus Event Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/campusrec

package services

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// defaultRefreshTimeout bounds a single catalog rebuild.
const defaultRefreshTimeout = 2 * time.Minute

// CatalogRefresher rebuilds the club catalog. *recommend.Engine satisfies it.
type CatalogRefresher interface {
	RefreshCatalog(ctx context.Context) error
}

// CatalogRefreshService keeps the club TF-IDF index in step with the
// database. It refreshes once on start and then every interval. Failed
// refreshes are logged and retried on the next tick; the engine keeps
// serving the previous catalog meanwhile.
type CatalogRefreshService struct {
	refresher CatalogRefresher
	interval  time.Duration
	timeout   time.Duration
	logger    zerolog.Logger
	name      string
}

// NewCatalogRefreshService creates the service. A non-positive interval
// disables the periodic refresh; the start-up refresh still runs.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func NewCatalogRefreshService(refresher CatalogRefresher, interval time.Duration, logger zerolog.Logger) *CatalogRefreshService {
	return &CatalogRefreshService{
		refresher: refresher,
		interval:  interval,
		timeout:   defaultRefreshTimeout,
		logger:    logger.With().Str("service", "catalog-refresh").Logger(),
		name:      "catalog-refresh",
	}
}

// Serve implements suture.Service.
func (s *CatalogRefreshService) Serve(ctx context.Context) error {
	s.logger.Info().Dur("interval", s.interval).Msg("catalog refresh service starting")

	s.refresh(ctx)

	if s.interval <= 0 {
		<-ctx.Done()
		return ctx.Err()
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info().Msg("catalog refresh service shutting down")
			return ctx.Err()
		case <-ticker.C:
			s.refresh(ctx)
		}
	}
}

func (s *CatalogRefreshService) refresh(ctx context.Context) {
	refreshCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	start := time.Now()
	if err := s.refresher.RefreshCatalog(refreshCtx); err != nil {
		if ctx.Err() == nil {
			s.logger.Warn().Err(err).Msg("catalog refresh failed, keeping previous catalog")
		}
		return
	}
	s.logger.Debug().Dur("duration", time.Since(start)).Msg("catalog refreshed")
}

// String names the service in supervisor logs.
func (s *CatalogRefreshService) String() string {
	return s.name
}
