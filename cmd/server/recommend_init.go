// Campusrec - Campus Event Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/campusrec

package main

import (
	"context"
	"fmt"

	"github.com/tomtom215/campusrec/internal/config"
	"github.com/tomtom215/campusrec/internal/database"
	"github.com/tomtom215/campusrec/internal/logging"
	"github.com/tomtom215/campusrec/internal/metrics"
	"github.com/tomtom215/campusrec/internal/overrides"
	"github.com/tomtom215/campusrec/internal/recommend"
	"github.com/tomtom215/campusrec/internal/recommend/algorithms"
	"github.com/tomtom215/campusrec/internal/recommend/reranking"
)

// RecommendComponents holds the wired recommender.
type RecommendComponents struct {
	Engine    *recommend.Engine
	Refresher *poolReportingRefresher
}

// poolReportingRefresher rebuilds the catalog and publishes connection pool
// gauges on the same schedule.
type poolReportingRefresher struct {
	engine *recommend.Engine
	db     *database.DB
}

func (r *poolReportingRefresher) RefreshCatalog(ctx context.Context) error {
	defer r.db.ReportPoolStats()
	return r.engine.RefreshCatalog(ctx)
}

// initRecommend loads the recommender config, lays persisted weight
// overrides over it and builds the engine with all four scorers and the
// diversity selector.
func initRecommend(ctx context.Context, cfg *config.Config, db *database.DB, store *overrides.Store) (*RecommendComponents, error) {
	logger := logging.WithComponent("recommend")

	loader := store.Loader(cfg.Recommender.ConfigPath)
	initial, err := loader(ctx)
	if err != nil {
		return nil, fmt.Errorf("load recommender config: %w", err)
	}

	configStore, err := recommend.NewConfigStore(initial, loader, store)
	if err != nil {
		return nil, fmt.Errorf("create config store: %w", err)
	}

	provider := database.NewResilientProvider(database.NewProvider(db), &cfg.Database.Breaker, logging.WithComponent("provider"))

	engine, err := recommend.NewEngine(configStore, provider, logger)
	if err != nil {
		return nil, fmt.Errorf("create engine: %w", err)
	}

	engine.RegisterScorer(algorithms.NewContent())
	engine.RegisterScorer(algorithms.NewTemporal())
	engine.RegisterScorer(algorithms.NewAffinity())
	engine.RegisterScorer(algorithms.NewPopularity())
	engine.RegisterSelector(reranking.NewDiversityFromStore(configStore))
	engine.SetObserver(metrics.Recorder{})
	engine.Catalog().OnRebuild = metrics.Recorder{}.ObserveCatalogRebuild

	logger.Info().
		Str("model", initial.Model.Name).
		Str("version", initial.Model.Version).
		Str("config_path", cfg.Recommender.ConfigPath).
		Msg("recommendation engine initialized")

	return &RecommendComponents{
		Engine:    engine,
		Refresher: &poolReportingRefresher{engine: engine, db: db},
	}, nil
}
