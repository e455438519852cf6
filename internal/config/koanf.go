// Campusrec - Campus Event Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/campusrec

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"

	"github.com/tomtom215/campusrec/internal/logging"
	"github.com/tomtom215/campusrec/internal/tracing"
)

// DefaultConfigPaths lists the paths searched for a config file, in order.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/campusrec/config.yaml",
	"/etc/campusrec/config.yml",
}

// ConfigPathEnvVar overrides the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:              "0.0.0.0",
			Port:              8000,
			ReadTimeout:       15 * time.Second,
			WriteTimeout:      30 * time.Second,
			IdleTimeout:       60 * time.Second,
			ShutdownTimeout:   15 * time.Second,
			RequestTimeout:    10 * time.Second,
			CORSOrigins:       []string{"*"},
			RateLimitRequests: 100,
			RateLimitWindow:   time.Minute,
		},
		Database: DatabaseConfig{
			MaxOpenConns:    20,
			MaxIdleConns:    5,
			ConnMaxLifetime: 30 * time.Minute,
			QueryTimeout:    5 * time.Second,
			Breaker: BreakerConfig{
				Enabled:      true,
				MaxRequests:  3,
				Interval:     time.Minute,
				Timeout:      30 * time.Second,
				MinRequests:  10,
				FailureRatio: 0.6,
			},
		},
		Recommender: RecommenderConfig{
			ConfigPath:             "",
			OverridesPath:          "/data/overrides",
			CatalogRefreshInterval: 5 * time.Minute,
			WatchConfig:            false,
		},
		Cache: CacheConfig{
			Backend:     "memory",
			TTL:         30 * time.Second,
			MaxEntries:  10000,
			RedisPrefix: "campusrec:rec:",
		},
		Auth: AuthConfig{
			JWTIssuer:       "",
			ReloadRateLimit: 0.2,
			ReloadBurst:     2,
		},
		Logging: logging.Config{
			Level:  "info",
			Format: "json",
		},
		Tracing: tracing.Config{
			Enabled:      false,
			ServiceName:  "campusrec",
			Environment:  "development",
			OTLPEndpoint: "localhost:4318",
			SamplingRate: 1.0,
			Insecure:     true,
		},
	}
}

// LoadWithKoanf loads configuration from defaults, an optional YAML file and
// the environment, in increasing priority, then validates it.
func LoadWithKoanf() (*Config, error) {
	return load(findConfigFile())
}

// LoadFile is LoadWithKoanf with an explicit config file path.
func LoadFile(path string) (*Config, error) {
	return load(path)
}

func load(configPath string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// findConfigFile returns the first existing config file, or "".
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}

	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// sliceConfigPaths are parsed from comma-separated environment values.
var sliceConfigPaths = []string{
	"server.cors_origins",
}

// processSliceFields splits comma-separated strings for slice fields.
func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		strVal, ok := k.Get(path).(string)
		if !ok || strVal == "" {
			continue
		}

		parts := strings.Split(strVal, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if len(trimmed) > 0 {
			if err := k.Set(path, trimmed); err != nil {
				return fmt.Errorf("failed to set %s: %w", path, err)
			}
		}
	}
	return nil
}

// envMappings maps environment variable names (lower-cased) to koanf paths.
// Unmapped variables are ignored.
var envMappings = map[string]string{
	// Server
	"http_host":           "server.host",
	"http_port":           "server.port",
	"port":                "server.port",
	"http_read_timeout":   "server.read_timeout",
	"http_write_timeout":  "server.write_timeout",
	"http_idle_timeout":   "server.idle_timeout",
	"shutdown_timeout":    "server.shutdown_timeout",
	"request_timeout":     "server.request_timeout",
	"cors_origins":        "server.cors_origins",
	"rate_limit_requests": "server.rate_limit_requests",
	"rate_limit_window":   "server.rate_limit_window",
	"disable_rate_limit":  "server.rate_limit_disabled",

	// Database
	"database_url":             "database.url",
	"db_max_open_conns":        "database.max_open_conns",
	"db_max_idle_conns":        "database.max_idle_conns",
	"db_conn_max_lifetime":     "database.conn_max_lifetime",
	"db_query_timeout":         "database.query_timeout",
	"db_breaker_enabled":       "database.breaker.enabled",
	"db_breaker_timeout":       "database.breaker.timeout",
	"db_breaker_min_requests":  "database.breaker.min_requests",
	"db_breaker_failure_ratio": "database.breaker.failure_ratio",

	// Recommender
	"recommender_config_path":    "recommender.config_path",
	"recommender_overrides_path": "recommender.overrides_path",
	"catalog_refresh_interval":   "recommender.catalog_refresh_interval",
	"recommender_watch_config":   "recommender.watch_config",

	// Cache
	"cache_backend":     "cache.backend",
	"cache_ttl":         "cache.ttl",
	"cache_max_entries": "cache.max_entries",
	"redis_url":         "cache.redis_url",
	"redis_prefix":      "cache.redis_prefix",

	// Auth
	"admin_api_key":      "auth.api_key",
	"admin_api_key_hash": "auth.api_key_hash",
	"jwt_secret":         "auth.jwt_secret",
	"jwt_issuer":         "auth.jwt_issuer",
	"authz_policy_path":  "auth.policy_path",
	"reload_rate_limit":  "auth.reload_rate_limit",
	"reload_burst":       "auth.reload_burst",

	// Logging
	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",

	// Tracing
	"tracing_enabled":             "tracing.enabled",
	"otel_service_name":           "tracing.service_name",
	"tracing_environment":         "tracing.environment",
	"otel_exporter_otlp_endpoint": "tracing.otlp_endpoint",
	"tracing_sampling_rate":       "tracing.sampling_rate",
	"tracing_insecure":            "tracing.insecure",
}

// envTransformFunc maps an environment variable name to its koanf path.
//
// Examples:
//   - DATABASE_URL -> database.url
//   - HTTP_PORT -> server.port
//   - CACHE_BACKEND -> cache.backend
func envTransformFunc(key string) string {
	if mapped, ok := envMappings[strings.ToLower(key)]; ok {
		return mapped
	}
	return ""
}

// WatchConfigFile calls callback whenever the file at path changes.
// Watch errors are passed to callback so the caller can log them.
func WatchConfigFile(path string, callback func(err error)) (stop func() error, err error) {
	provider := file.Provider(path)
	if err := provider.Watch(func(_ interface{}, err error) {
		callback(err)
	}); err != nil {
		return nil, fmt.Errorf("watch %s: %w", path, err)
	}
	return provider.Unwatch, nil
}
