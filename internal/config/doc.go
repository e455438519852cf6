// Campusrec - Campus Event Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/campusrec

/*
Package config loads campusrec service configuration with koanf v2.

# Layers

Configuration is merged from three sources, later ones winning:

 1. Built-in defaults (defaultConfig)
 2. An optional YAML file: $CONFIG_PATH, else the first of DefaultConfigPaths
 3. Environment variables listed in envMappings (DATABASE_URL, HTTP_PORT, ...)

Comma-separated environment values are split for slice fields such as
CORS_ORIGINS. Unknown environment variables are ignored.

# Validation

Validate runs the validator struct tags (via internal/validation) and then
semantic checks: URL schemes, pool sizes, cache and tracing settings.

# Recommender Settings

The scoring weights and ranking settings are not part of the service file.
LoadRecommenderConfig reads them from Recommender.ConfigPath, a JSON document
laid over recommend.DefaultConfig:

	{
	  "scoring_weights": {"content_similarity": 0.25},
	  "ranking_settings": {"selection_mode": "top_n"}
	}

With Recommender.WatchConfig set, WatchConfigFile triggers a reload whenever
that file changes. A reload that fails validation leaves the running
configuration untouched.

# Example

	cfg, err := config.LoadWithKoanf()
	if err != nil {
	    logging.Fatal().Err(err).Msg("invalid configuration")
	}
	recCfg, err := config.LoadRecommenderConfig(cfg.Recommender.ConfigPath)
*/
package config
