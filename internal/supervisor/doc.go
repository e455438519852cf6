// Campusrec - Campus Event Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/campusrec

/*
Package supervisor runs the long-lived parts of campusrec under a suture v4
supervision tree.

	campusrec (root)
	├── background-layer
	│   ├── catalog-refresh   rebuilds the club TF-IDF index on an interval
	│   └── config-watch      reloads the recommender config when its file changes
	└── api-layer
	    └── http-server

A service that returns an error or panics is restarted with backoff. Once
FailureThreshold failures accumulate (decaying at FailureDecay per second)
the supervisor waits FailureBackoff before trying again. Supervisor events
go to zerolog through sutureslog and logging.SlogHandler:

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.DefaultTreeConfig())
	tree.AddBackgroundService(services.NewCatalogRefreshService(engine, 5*time.Minute, logger))
	tree.AddAPIService(services.NewHTTPServerService(server, 10*time.Second, logger))
	err = tree.Serve(ctx)

The service wrappers live in the services subpackage.
*/
package supervisor
