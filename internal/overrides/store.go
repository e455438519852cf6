// Campusrec - Campus Event Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/campusrec

package overrides

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/tomtom215/campusrec/internal/config"
	"github.com/tomtom215/campusrec/internal/recommend"
)

const weightsKey = "overrides:scoring_weights"

// Record is a persisted weight override.
type Record struct {
	Weights   recommend.ScoringWeights `json:"scoring_weights"`
	UpdatedAt time.Time                `json:"updated_at"`
}

// Store persists scoring weight patches in BadgerDB. It implements
// recommend.WeightPersister.
type Store struct {
	db     *badger.DB
	logger zerolog.Logger
	now    func() time.Time
}

var _ recommend.WeightPersister = (*Store)(nil)

// Open opens the store at path. An empty path keeps everything in memory,
// so patches are lost on restart.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func Open(path string, logger zerolog.Logger) (*Store, error) {
	opts := badger.DefaultOptions(path)
	if path == "" {
		opts = badger.DefaultOptions("").WithInMemory(true)
	}
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger db for overrides: %w", err)
	}
	return New(db, logger), nil
}

// New wraps an open BadgerDB.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func New(db *badger.DB, logger zerolog.Logger) *Store {
	return &Store{
		db:     db,
		logger: logger.With().Str("component", "overrides").Logger(),
		now:    time.Now,
	}
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// SaveWeights persists w as the current override.
func (s *Store) SaveWeights(ctx context.Context, w recommend.ScoringWeights) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := json.Marshal(Record{Weights: w, UpdatedAt: s.now().UTC()})
	if err != nil {
		return fmt.Errorf("marshal weights: %w", err)
	}

	if err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(weightsKey), data)
	}); err != nil {
		return fmt.Errorf("save weights: %w", err)
	}

	s.logger.Info().Interface("weights", w.ToMap()).Msg("scoring weights persisted")
	return nil
}

// LoadWeights returns the persisted override, or nil if none was saved.
func (s *Store) LoadWeights(ctx context.Context) (*Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var rec *Record
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(weightsKey))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			rec = &Record{}
			return json.Unmarshal(val, rec)
		})
	})
	if err != nil {
		return nil, fmt.Errorf("load weights: %w", err)
	}
	return rec, nil
}

// Clear removes the persisted override.
func (s *Store) Clear(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.db.Update(func(txn *badger.Txn) error {
		err := txn.Delete([]byte(weightsKey))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		return err
	})
}

// Apply replaces cfg's weights with the persisted override, if any. It
// reports whether an override was applied.
func (s *Store) Apply(ctx context.Context, cfg *recommend.Config) (bool, error) {
	rec, err := s.LoadWeights(ctx)
	if err != nil {
		return false, err
	}
	if rec == nil {
		return false, nil
	}
	cfg.Weights = rec.Weights
	return true, nil
}

// Loader returns a recommend.ConfigLoader that reads the recommender file at
// path and lays the persisted weights over it. It serves both startup and
// the all-or-nothing reload.
func (s *Store) Loader(path string) recommend.ConfigLoader {
	return func(ctx context.Context) (*recommend.Config, error) {
		cfg, err := config.LoadRecommenderConfig(path)
		if err != nil {
			return nil, err
		}
		applied, err := s.Apply(ctx, cfg)
		if err != nil {
			return nil, fmt.Errorf("apply weight overrides: %w", err)
		}
		if applied {
			s.logger.Debug().Str("path", path).Msg("weight overrides applied")
		}
		return cfg, nil
	}
}
