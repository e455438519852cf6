// Campusrec - Campus Event Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/campusrec

package config

import (
	"fmt"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"

	"github.com/tomtom215/campusrec/internal/recommend"
)

// LoadRecommenderConfig reads the recommender settings from path on top of
// recommend.DefaultConfig. Keys missing from the file keep their defaults.
// An empty path returns the defaults.
//
// The file is JSON (YAML is accepted too); durations such as
// data_settings.catalog_ttl may be written as "5m". The result is validated
// and errors wrap recommend.ErrInvalidConfig.
func LoadRecommenderConfig(path string) (*recommend.Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(recommend.DefaultConfig(), "json"), nil); err != nil {
		return nil, fmt.Errorf("failed to load recommender defaults: %w", err)
	}

	if path != "" {
		// YAML is a superset of JSON, so one parser reads both.
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: read %s: %v", recommend.ErrInvalidConfig, path, err)
		}
	}

	cfg := &recommend.Config{}
	if err := k.UnmarshalWithConf("", cfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, fmt.Errorf("%w: decode %s: %v", recommend.ErrInvalidConfig, path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
