// Fincheck - Model Inference Metrics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fincheck

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
)

// DefaultConfigPaths lists the config file locations searched in order.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/fincheck/config.yaml",
	"/etc/fincheck/config.yml",
}

// ConfigPathEnvVar overrides the config file location.
const ConfigPathEnvVar = "CONFIG_PATH"

// DefaultModels is the canonical model list reported by the MNIST backend.
var DefaultModels = []string{"baseline", "kd", "lrf", "pruned", "quantized", "ws"}

// defaultConfig returns a Config with every default applied. File and
// environment values are layered on top.
func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            3000,
			Host:            "0.0.0.0",
			Timeout:         30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			Environment:     "development",
			MaxUploadBytes:  20 << 20, // 20MB, zip datasets included
			DefaultPageSize: 20,
			MaxPageSize:     100,
		},
		Database: DatabaseConfig{
			Path:      "/data/fincheck.duckdb",
			MaxMemory: "1GB",
			Threads:   0,

			MaintenanceInterval: 5 * time.Minute,
		},
		Security: SecurityConfig{
			JWTSecret:           "",
			SessionTimeout:      24 * time.Hour,
			BcryptCost:          10,
			CookieSecure:        true,
			RateLimitReqs:       100,
			RateLimitWindow:     time.Minute,
			RateLimitDisabled:   false,
			CORSOrigins:         []string{"*"},
			RevocationStore:     "badger",
			RevocationStorePath: "/data/revocations",
		},
		Inference: InferenceConfig{
			BaseURL:            "http://127.0.0.1:8000",
			Timeout:            2 * time.Minute, // MNIST_500 runs are slow on CPU
			RequestsPerSecond:  5,
			Burst:              10,
			BreakerMaxFailures: 5,
			BreakerOpenTimeout: 30 * time.Second,
			MaxConcurrentRuns:  2,
		},
		Ranking: RankingConfig{
			Models:           append([]string(nil), DefaultModels...),
			MissingPolicy:    "last",
			RecommendPolicy:  "fastest",
			ConfidenceWeight: 0.5,
			LatencyWeight:    0.5,
		},
		Audit: AuditConfig{
			Enabled:       true,
			RetentionDays: 90,
			BufferSize:    1000,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
	}
}

// LoadWithKoanf loads configuration with Koanf v2 in three layers:
//  1. Defaults
//  2. Optional YAML config file
//  3. Environment variables (highest priority)
//
// The result is validated before it is returned.
func LoadWithKoanf() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if configPath := findConfigFile(); configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	// HTTP_PORT -> server.port, INFERENCE_URL -> inference.base_url, ...
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

// sliceConfigPaths are split on commas when they arrive as strings.
var sliceConfigPaths = []string{
	"security.cors_origins",
	"ranking.models",
}

// processSliceFields converts comma-separated env values into slices.
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
		if len(trimmed) == 0 {
			continue
		}
		if err := k.Set(path, trimmed); err != nil {
			return fmt.Errorf("failed to set %s: %w", path, err)
		}
	}
	return nil
}

// envMappings maps environment variable names (lower-cased) to koanf paths.
var envMappings = map[string]string{
	// Server
	"http_port":             "server.port",
	"http_host":             "server.host",
	"http_timeout":          "server.timeout",
	"http_shutdown_timeout": "server.shutdown_timeout",
	"environment":           "server.environment",
	"max_upload_bytes":      "server.max_upload_bytes",
	"api_default_page_size": "server.default_page_size",
	"api_max_page_size":     "server.max_page_size",

	// Database
	"duckdb_path":          "database.path",
	"duckdb_max_memory":    "database.max_memory",
	"duckdb_threads":       "database.threads",
	"maintenance_interval": "database.maintenance_interval",

	// Security
	"jwt_secret":            "security.jwt_secret",
	"session_timeout":       "security.session_timeout",
	"bcrypt_cost":           "security.bcrypt_cost",
	"cookie_secure":         "security.cookie_secure",
	"rate_limit_requests":   "security.rate_limit_reqs",
	"rate_limit_window":     "security.rate_limit_window",
	"disable_rate_limit":    "security.rate_limit_disabled",
	"cors_origins":          "security.cors_origins",
	"revocation_store":      "security.revocation_store",
	"revocation_store_path": "security.revocation_store_path",
	"admin_username":        "security.admin_username",
	"admin_password":        "security.admin_password",

	// Inference backend
	"inference_url":                  "inference.base_url",
	"inference_timeout":              "inference.timeout",
	"inference_rps":                  "inference.requests_per_second",
	"inference_burst":                "inference.burst",
	"inference_breaker_max_failures": "inference.breaker_max_failures",
	"inference_breaker_open_timeout": "inference.breaker_open_timeout",
	"inference_max_concurrent_runs":  "inference.max_concurrent_runs",

	// Ranking
	"ranking_models":            "ranking.models",
	"ranking_missing_policy":    "ranking.missing_policy",
	"ranking_recommend_policy":  "ranking.recommend_policy",
	"ranking_confidence_weight": "ranking.confidence_weight",
	"ranking_latency_weight":    "ranking.latency_weight",

	// Audit
	"audit_enabled":        "audit.enabled",
	"audit_retention_days": "audit.retention_days",
	"audit_buffer_size":    "audit.buffer_size",
	"audit_log_stdout":     "audit.log_to_stdout",

	// Logging
	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",
}

// envTransformFunc maps an environment variable name to a koanf path.
// Unmapped variables return "" and are skipped.
func envTransformFunc(key string) string {
	return envMappings[strings.ToLower(key)]
}
