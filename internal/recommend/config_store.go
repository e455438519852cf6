// Campusrec - Campus Event Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/campusrec

package recommend

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
)

// WeightPersister stores patched scoring weights so they survive a reload.
type WeightPersister interface {
	SaveWeights(ctx context.Context, w ScoringWeights) error
}

// ConfigLoader builds a complete configuration from persisted storage.
type ConfigLoader func(ctx context.Context) (*Config, error)

// ConfigStore owns the live configuration. Readers get an immutable snapshot;
// writers clone, validate, then swap, so a failed update leaves the previous
// configuration in place.
type ConfigStore struct {
	current    atomic.Pointer[Config]
	generation atomic.Uint64
	writeMu    sync.Mutex

	loader    ConfigLoader
	persister WeightPersister
}

// NewConfigStore validates cfg and returns a store holding it.
func NewConfigStore(cfg *Config, loader ConfigLoader, persister WeightPersister) (*ConfigStore, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	s := &ConfigStore{loader: loader, persister: persister}
	s.current.Store(cfg.Clone())
	s.generation.Store(1)
	return s, nil
}

// Get returns the current configuration. Callers must not modify it.
func (s *ConfigStore) Get() *Config {
	return s.current.Load()
}

// Snapshot returns a deep copy of the current configuration.
func (s *ConfigStore) Snapshot() *Config {
	return s.current.Load().Clone()
}

// Generation increments on every successful change.
func (s *ConfigStore) Generation() uint64 {
	return s.generation.Load()
}

// PatchWeights merges every entry of patch, zeros included, into the scoring weights,
// persists the result, and swaps it in. Nothing changes if any step fails.
func (s *ConfigStore) PatchWeights(ctx context.Context, patch map[string]float64) (*Config, error) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	next := s.current.Load().Clone()
	merged, err := next.Weights.Merge(patch)
	if err != nil {
		return nil, err
	}
	next.Weights = merged

	if err := next.Validate(); err != nil {
		return nil, err
	}

	if s.persister == nil {
		return nil, ErrNoPersister
	}
	if err := s.persister.SaveWeights(ctx, merged); err != nil {
		return nil, fmt.Errorf("persist weights: %w", err)
	}

	s.swap(next)
	return next.Clone(), nil
}

// Reload rebuilds the whole configuration through the loader. The previous
// configuration is kept when loading or validation fails.
func (s *ConfigStore) Reload(ctx context.Context) (*Config, error) {
	if s.loader == nil {
		return nil, fmt.Errorf("%w: no config loader", ErrInvalidConfig)
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	next, err := s.loader(ctx)
	if err != nil {
		return nil, fmt.Errorf("reload config: %w", err)
	}
	if err := next.Validate(); err != nil {
		return nil, err
	}

	s.swap(next.Clone())
	return next.Clone(), nil
}

func (s *ConfigStore) swap(cfg *Config) {
	s.current.Store(cfg)
	s.generation.Add(1)
}
