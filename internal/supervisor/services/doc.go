// Campusrec - Campus Event Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/campusrec

// Package services wraps campusrec's long-running components as suture
// services.
//
//   - HTTPServerService runs an *http.Server and shuts it down gracefully
//   - CatalogRefreshService rebuilds the club catalog on an interval
//   - ConfigWatchService reloads the recommender config when its file changes
//
// Each service returns ctx.Err() on shutdown and an error for anything the
// supervisor should restart.
package services
