// Campusrec - Campus Event Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/campusrec

// Package overrides persists scoring weight patches in BadgerDB.
//
// PUT /api/v1/config patches weights through recommend.ConfigStore, which
// saves them here before swapping the new configuration in. Store.Loader
// reads the recommender file and lays the saved weights over it, so a patch
// survives both restarts and POST /api/v1/reload-config.
//
//	store, err := overrides.Open(cfg.Recommender.OverridesPath, logger)
//	loader := store.Loader(cfg.Recommender.ConfigPath)
//	recCfg, err := loader(ctx)
//	cs, err := recommend.NewConfigStore(recCfg, loader, store)
package overrides
