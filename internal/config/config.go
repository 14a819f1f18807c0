// Fincheck - Model Inference Metrics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fincheck

package config

import "time"

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig    `koanf:"server"`
	Database  DatabaseConfig  `koanf:"database"`
	Security  SecurityConfig  `koanf:"security"`
	Inference InferenceConfig `koanf:"inference"`
	Ranking   RankingConfig   `koanf:"ranking"`
	Audit     AuditConfig     `koanf:"audit"`
	Logging   LoggingConfig   `koanf:"logging"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port            int           `koanf:"port"`
	Host            string        `koanf:"host"`
	Timeout         time.Duration `koanf:"timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
	Environment     string        `koanf:"environment"` // development or production

	// MaxUploadBytes caps image and zip uploads.
	MaxUploadBytes int64 `koanf:"max_upload_bytes"`

	DefaultPageSize int `koanf:"default_page_size"`
	MaxPageSize     int `koanf:"max_page_size"`
}

// DatabaseConfig holds DuckDB settings.
type DatabaseConfig struct {
	Path      string `koanf:"path"`
	MaxMemory string `koanf:"max_memory"`
	Threads   int    `koanf:"threads"` // 0 = runtime.NumCPU()

	// MaintenanceInterval schedules checkpoints and revocation-store GC.
	MaintenanceInterval time.Duration `koanf:"maintenance_interval"`
}

// SecurityConfig holds authentication and rate limiting settings.
type SecurityConfig struct {
	JWTSecret      string        `koanf:"jwt_secret"`
	SessionTimeout time.Duration `koanf:"session_timeout"`
	BcryptCost     int           `koanf:"bcrypt_cost"`
	CookieSecure   bool          `koanf:"cookie_secure"`

	RateLimitReqs     int           `koanf:"rate_limit_reqs"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
	CORSOrigins       []string      `koanf:"cors_origins"`

	// RevocationStore is "badger" (persistent) or "memory".
	RevocationStore     string `koanf:"revocation_store"`
	RevocationStorePath string `koanf:"revocation_store_path"`

	// AdminUsername and AdminPassword bootstrap an admin account when the
	// user table is empty. Both optional.
	AdminUsername string `koanf:"admin_username"`
	AdminPassword string `koanf:"admin_password"`
}

// InferenceConfig holds settings for the external inference backend.
type InferenceConfig struct {
	BaseURL string        `koanf:"base_url"`
	Timeout time.Duration `koanf:"timeout"`

	// RequestsPerSecond throttles outbound calls; 0 disables throttling.
	RequestsPerSecond float64 `koanf:"requests_per_second"`
	Burst             int     `koanf:"burst"`

	BreakerMaxFailures uint32        `koanf:"breaker_max_failures"`
	BreakerOpenTimeout time.Duration `koanf:"breaker_open_timeout"`

	// MaxConcurrentRuns bounds parallel dataset runs per request.
	MaxConcurrentRuns int `koanf:"max_concurrent_runs"`
}

// RankingConfig holds the canonical model list and ranking policies.
type RankingConfig struct {
	Models           []string `koanf:"models"`
	MissingPolicy    string   `koanf:"missing_policy"`   // last or zero
	RecommendPolicy  string   `koanf:"recommend_policy"` // fastest or weighted
	ConfidenceWeight float64  `koanf:"confidence_weight"`
	LatencyWeight    float64  `koanf:"latency_weight"`
}

// AuditConfig controls the security audit trail.
type AuditConfig struct {
	Enabled       bool `koanf:"enabled"`
	RetentionDays int  `koanf:"retention_days"` // 0 keeps events forever
	BufferSize    int  `koanf:"buffer_size"`
	LogToStdout   bool `koanf:"log_to_stdout"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: trace, debug, info, warn, error.
	Level string `koanf:"level"`

	// Format is json (production) or console (development).
	Format string `koanf:"format"`

	// Caller adds file:line to each entry.
	Caller bool `koanf:"caller"`
}

// Load reads configuration from defaults, config file and environment.
func Load() (*Config, error) {
	return LoadWithKoanf()
}
