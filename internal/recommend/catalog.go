// Campusrec - Campus Event Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/campusrec

package recommend

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/campusrec/internal/recommend/textindex"
)

// CatalogSnapshot is an immutable view of the club catalog and its fitted
// text index.
type CatalogSnapshot struct {
	// Clubs maps club ID to club.
	Clubs map[int]Club

	// Index is the fitted club index. Nil when the corpus was empty.
	Index *textindex.Index

	// IndexErr is the fit error when Index is nil.
	IndexErr error

	// BuiltAt is when the snapshot was built.
	BuiltAt time.Time

	// Options are the index options the snapshot was built with.
	Options textindex.Options
}

// IndexAvailable reports whether content similarity can be computed.
func (s *CatalogSnapshot) IndexAvailable() bool {
	return s != nil && s.Index.Available()
}

// Club returns the club with the given ID.
func (s *CatalogSnapshot) Club(id int) (Club, bool) {
	if s == nil {
		return Club{}, false
	}
	c, ok := s.Clubs[id]
	return c, ok
}

// ClubCatalog owns the cached catalog snapshot. Readers never block on a
// rebuild; concurrent rebuilds are collapsed into one.
type ClubCatalog struct {
	provider DataProvider
	logger   zerolog.Logger
	now      func() time.Time

	current   atomic.Pointer[CatalogSnapshot]
	rebuildMu sync.Mutex

	// OnRebuild is called after every successful rebuild.
	OnRebuild func(s *CatalogSnapshot, took time.Duration)
}

// NewClubCatalog creates a catalog backed by provider.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewClubCatalog(provider DataProvider, logger zerolog.Logger) *ClubCatalog {
	return &ClubCatalog{
		provider: provider,
		logger:   logger.With().Str("component", "club_catalog").Logger(),
		now:      time.Now,
	}
}

// indexOptions derives the index options from the content settings.
func indexOptions(cfg *Config) textindex.Options {
	return textindex.Options{
		MaxFeatures: cfg.Content.MaxFeatures,
		Stopwords:   cfg.Content.ActiveStopwords(),
		NGramMax:    2,
	}
}

func sameOptions(a, b textindex.Options) bool {
	return a.MaxFeatures == b.MaxFeatures &&
		a.NGramMax == b.NGramMax &&
		slices.Equal(a.Stopwords, b.Stopwords)
}

// fresh reports whether s can serve cfg at time now.
func fresh(s *CatalogSnapshot, cfg *Config, now time.Time) bool {
	return s != nil &&
		now.Sub(s.BuiltAt) <= cfg.Data.CatalogTTL &&
		sameOptions(s.Options, indexOptions(cfg))
}

// Current returns the last built snapshot without checking its age.
func (c *ClubCatalog) Current() *CatalogSnapshot {
	return c.current.Load()
}

// Get returns a snapshot no older than the configured TTL, rebuilding it when
// stale or when the content settings changed.
func (c *ClubCatalog) Get(ctx context.Context, cfg *Config) (*CatalogSnapshot, error) {
	if s := c.current.Load(); fresh(s, cfg, c.now()) {
		return s, nil
	}

	c.rebuildMu.Lock()
	defer c.rebuildMu.Unlock()

	if s := c.current.Load(); fresh(s, cfg, c.now()) {
		return s, nil
	}
	return c.rebuildLocked(ctx, cfg)
}

// Rebuild forces a rebuild regardless of age.
func (c *ClubCatalog) Rebuild(ctx context.Context, cfg *Config) (*CatalogSnapshot, error) {
	c.rebuildMu.Lock()
	defer c.rebuildMu.Unlock()
	return c.rebuildLocked(ctx, cfg)
}

func (c *ClubCatalog) rebuildLocked(ctx context.Context, cfg *Config) (*CatalogSnapshot, error) {
	start := c.now()

	clubs, err := c.provider.Clubs(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: load clubs: %v", ErrDataUnavailable, err)
	}

	opts := indexOptions(cfg)
	snap := &CatalogSnapshot{
		Clubs:   make(map[int]Club, len(clubs)),
		BuiltAt: start,
		Options: opts,
	}

	docs := make([]textindex.Document, 0, len(clubs))
	for i := range clubs {
		snap.Clubs[clubs[i].ID] = clubs[i]
		docs = append(docs, textindex.Document{ID: clubs[i].ID, Text: clubs[i].IndexText()})
	}

	snap.Index, snap.IndexErr = textindex.Fit(docs, opts)
	if snap.IndexErr != nil {
		c.logger.Warn().Err(snap.IndexErr).Int("clubs", len(clubs)).Msg("club index unavailable")
	}

	c.current.Store(snap)

	took := c.now().Sub(start)
	c.logger.Info().
		Int("clubs", len(snap.Clubs)).
		Int("vocabulary", snap.Index.VocabularySize()).
		Dur("took", took).
		Msg("club catalog rebuilt")

	if c.OnRebuild != nil {
		c.OnRebuild(snap, took)
	}
	return snap, nil
}
