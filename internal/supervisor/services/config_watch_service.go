// Campusrec - Campus Event Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/campusrec

package services

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/campusrec/internal/config"
	"github.com/tomtom215/campusrec/internal/metrics"
	"github.com/tomtom215/campusrec/internal/recommend"
)

// defaultDebounce coalesces the burst of events editors emit on save.
const defaultDebounce = 500 * time.Millisecond

// ConfigReloader swaps in a freshly loaded recommender config.
// *recommend.ConfigStore satisfies it.
type ConfigReloader interface {
	Reload(ctx context.Context) (*recommend.Config, error)
	Generation() uint64
}

// WatchFunc starts watching path and calls cb on every change. It returns a
// function that stops the watch.
type WatchFunc func(path string, cb func(err error)) (stop func() error, err error)

// ConfigWatchService reloads the recommender config whenever its file
// changes. A reload that fails validation leaves the active config in place.
type ConfigWatchService struct {
	reloader ConfigReloader
	path     string
	watch    WatchFunc
	debounce time.Duration
	logger   zerolog.Logger
	name     string
}

// NewConfigWatchService watches path with config.WatchConfigFile.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func NewConfigWatchService(reloader ConfigReloader, path string, logger zerolog.Logger) *ConfigWatchService {
	return &ConfigWatchService{
		reloader: reloader,
		path:     path,
		watch:    config.WatchConfigFile,
		debounce: defaultDebounce,
		logger:   logger.With().Str("service", "config-watch").Str("path", path).Logger(),
		name:     "config-watch",
	}
}

// WithWatchFunc replaces the file watcher.
func (s *ConfigWatchService) WithWatchFunc(fn WatchFunc) *ConfigWatchService {
	s.watch = fn
	return s
}

// WithDebounce sets the quiet period after a change before reloading.
func (s *ConfigWatchService) WithDebounce(d time.Duration) *ConfigWatchService {
	s.debounce = d
	return s
}

// Serve implements suture.Service. A watcher error is returned so the
// supervisor re-establishes the watch.
func (s *ConfigWatchService) Serve(ctx context.Context) error {
	changes := make(chan struct{}, 1)
	watchErrs := make(chan error, 1)

	stop, err := s.watch(s.path, func(err error) {
		if err != nil {
			select {
			case watchErrs <- err:
			default:
			}
			return
		}
		select {
		case changes <- struct{}{}:
		default:
		}
	})
	if err != nil {
		return fmt.Errorf("start config watch: %w", err)
	}
	defer func() {
		if err := stop(); err != nil {
			s.logger.Debug().Err(err).Msg("stop config watch")
		}
	}()

	s.logger.Info().Msg("watching recommender config")

	var timer *time.Timer
	var fire <-chan time.Time
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case err := <-watchErrs:
			return fmt.Errorf("config watch: %w", err)
		case <-changes:
			if timer == nil {
				timer = time.NewTimer(s.debounce)
			} else {
				timer.Reset(s.debounce)
			}
			fire = timer.C
		case <-fire:
			fire = nil
			s.reload(ctx)
		}
	}
}

func (s *ConfigWatchService) reload(ctx context.Context) {
	cfg, err := s.reloader.Reload(ctx)
	metrics.RecordConfigChange("watch", err, s.reloader.Generation())
	if err != nil {
		s.logger.Error().Err(err).Msg("config reload rejected, keeping active config")
		return
	}
	s.logger.Info().
		Str("model_version", cfg.Model.Version).
		Uint64("generation", s.reloader.Generation()).
		Msg("recommender config reloaded")
}

// String names the service in supervisor logs.
func (s *ConfigWatchService) String() string {
	return s.name
}
