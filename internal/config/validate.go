// Fincheck - Model Inference Metrics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fincheck

package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/tomtom215/fincheck/internal/ranking"
)

const (
	minRateLimitRequests = 1
	maxRateLimitRequests = 100000
	minRateLimitWindow   = time.Second
	maxRateLimitWindow   = time.Hour
	minJWTSecretLength   = 32

	minAdminPasswordLength = 8
)

// Validate checks that the configuration is complete and consistent.
func (c *Config) Validate() error {
	if err := c.validateServer(); err != nil {
		return err
	}
	if err := c.validateDatabase(); err != nil {
		return err
	}
	if err := c.validateSecurity(); err != nil {
		return err
	}
	if err := c.validateInference(); err != nil {
		return err
	}
	if err := c.validateRanking(); err != nil {
		return err
	}
	if err := c.validateAudit(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateServer() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("HTTP_PORT must be between 1 and 65535")
	}
	if c.Server.MaxUploadBytes <= 0 {
		return fmt.Errorf("MAX_UPLOAD_BYTES must be positive")
	}
	if c.Server.DefaultPageSize < 1 || c.Server.DefaultPageSize > c.Server.MaxPageSize {
		return fmt.Errorf("API_DEFAULT_PAGE_SIZE must be between 1 and API_MAX_PAGE_SIZE (%d)", c.Server.MaxPageSize)
	}
	return nil
}

func (c *Config) validateAudit() error {
	if c.Audit.RetentionDays < 0 {
		return fmt.Errorf("AUDIT_RETENTION_DAYS must not be negative")
	}
	if c.Audit.Enabled && c.Audit.BufferSize < 1 {
		return fmt.Errorf("AUDIT_BUFFER_SIZE must be positive")
	}
	return nil
}

func (c *Config) validateDatabase() error {
	if c.Database.Path == "" {
		return fmt.Errorf("DUCKDB_PATH is required")
	}
	if c.Database.Threads < 0 {
		return fmt.Errorf("DUCKDB_THREADS must not be negative")
	}
	if c.Database.MaintenanceInterval < 0 {
		return fmt.Errorf("MAINTENANCE_INTERVAL must not be negative")
	}
	return nil
}

func (c *Config) validateSecurity() error {
	if err := c.validateJWTSecret(); err != nil {
		return err
	}
	if c.Security.SessionTimeout <= 0 {
		return fmt.Errorf("SESSION_TIMEOUT must be positive")
	}
	if c.Security.BcryptCost < bcrypt.MinCost || c.Security.BcryptCost > bcrypt.MaxCost {
		return fmt.Errorf("BCRYPT_COST must be between %d and %d", bcrypt.MinCost, bcrypt.MaxCost)
	}
	if err := c.validateRateLimits(); err != nil {
		return err
	}
	if err := c.validateCORS(); err != nil {
		return err
	}
	if err := c.validateAdminBootstrap(); err != nil {
		return err
	}
	return c.validateRevocationStore()
}

func (c *Config) validateAdminBootstrap() error {
	if c.Security.AdminUsername == "" && c.Security.AdminPassword == "" {
		return nil
	}
	if c.Security.AdminUsername == "" || c.Security.AdminPassword == "" {
		return fmt.Errorf("ADMIN_USERNAME and ADMIN_PASSWORD must be set together")
	}
	if len(c.Security.AdminPassword) < minAdminPasswordLength {
		return fmt.Errorf("ADMIN_PASSWORD must be at least %d characters", minAdminPasswordLength)
	}
	return nil
}

func (c *Config) validateJWTSecret() error {
	if c.Security.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	if len(c.Security.JWTSecret) < minJWTSecretLength {
		return fmt.Errorf("JWT_SECRET must be at least %d characters for security", minJWTSecretLength)
	}
	if containsPlaceholder(c.Security.JWTSecret) {
		return fmt.Errorf("JWT_SECRET contains a placeholder value - generate a secure secret with: openssl rand -base64 32")
	}
	return nil
}

func (c *Config) validateRateLimits() error {
	if c.Security.RateLimitDisabled {
		return nil
	}
	if c.Security.RateLimitReqs < minRateLimitRequests || c.Security.RateLimitReqs > maxRateLimitRequests {
		return fmt.Errorf("RATE_LIMIT_REQUESTS must be between %d and %d", minRateLimitRequests, maxRateLimitRequests)
	}
	if c.Security.RateLimitWindow < minRateLimitWindow || c.Security.RateLimitWindow > maxRateLimitWindow {
		return fmt.Errorf("RATE_LIMIT_WINDOW must be between %v and %v", minRateLimitWindow, maxRateLimitWindow)
	}
	return nil
}

// validateCORS rejects wildcard origins in production, where the session
// cookie would otherwise be usable from any site.
func (c *Config) validateCORS() error {
	if !c.IsProduction() {
		return nil
	}
	for _, origin := range c.Security.CORSOrigins {
		if origin == "*" {
			return fmt.Errorf("CORS_ORIGINS must not contain * when ENVIRONMENT=production")
		}
	}
	return nil
}

func (c *Config) validateRevocationStore() error {
	switch c.Security.RevocationStore {
	case "memory":
		return nil
	case "badger":
		if c.Security.RevocationStorePath == "" {
			return fmt.Errorf("REVOCATION_STORE_PATH is required when REVOCATION_STORE=badger")
		}
		return nil
	default:
		return fmt.Errorf("REVOCATION_STORE must be one of: badger, memory")
	}
}

func (c *Config) validateInference() error {
	if err := validateHTTPURL(c.Inference.BaseURL, "INFERENCE_URL"); err != nil {
		return err
	}
	if c.Inference.Timeout <= 0 {
		return fmt.Errorf("INFERENCE_TIMEOUT must be positive")
	}
	if c.Inference.RequestsPerSecond < 0 {
		return fmt.Errorf("INFERENCE_RPS must not be negative")
	}
	if c.Inference.RequestsPerSecond > 0 && c.Inference.Burst < 1 {
		return fmt.Errorf("INFERENCE_BURST must be at least 1 when INFERENCE_RPS is set")
	}
	if c.Inference.BreakerMaxFailures == 0 {
		return fmt.Errorf("INFERENCE_BREAKER_MAX_FAILURES must be at least 1")
	}
	if c.Inference.MaxConcurrentRuns < 1 {
		return fmt.Errorf("INFERENCE_MAX_CONCURRENT_RUNS must be at least 1")
	}
	return nil
}

func (c *Config) validateRanking() error {
	if len(c.Ranking.Models) == 0 {
		return fmt.Errorf("RANKING_MODELS must list at least one model")
	}
	seen := make(map[string]bool, len(c.Ranking.Models))
	for _, m := range c.Ranking.Models {
		if strings.TrimSpace(m) == "" {
			return fmt.Errorf("RANKING_MODELS contains an empty model id")
		}
		if seen[m] {
			return fmt.Errorf("RANKING_MODELS contains duplicate model %q", m)
		}
		seen[m] = true
	}
	if _, err := ranking.ParseMissingPolicy(c.Ranking.MissingPolicy); err != nil {
		return fmt.Errorf("RANKING_MISSING_POLICY: %w", err)
	}
	if _, err := ranking.ParseRecommendPolicy(c.Ranking.RecommendPolicy); err != nil {
		return fmt.Errorf("RANKING_RECOMMEND_POLICY: %w", err)
	}
	if c.Ranking.ConfidenceWeight < 0 || c.Ranking.LatencyWeight < 0 {
		return fmt.Errorf("ranking weights must not be negative")
	}
	if c.Ranking.ConfidenceWeight+c.Ranking.LatencyWeight == 0 {
		return fmt.Errorf("ranking weights must not both be zero")
	}
	return nil
}

var validLogLevels = map[string]bool{
	"trace": true,
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

var validLogFormats = map[string]bool{
	"json":    true,
	"console": true,
}

func (c *Config) validateLogging() error {
	if !validLogLevels[c.Logging.Level] {
		return fmt.Errorf("LOG_LEVEL must be one of: trace, debug, info, warn, error")
	}
	if c.Logging.Format != "" && !validLogFormats[c.Logging.Format] {
		return fmt.Errorf("LOG_FORMAT must be one of: json, console")
	}
	return nil
}

// IsProduction reports whether ENVIRONMENT is production.
func (c *Config) IsProduction() bool {
	env := strings.ToLower(c.Server.Environment)
	return env == "production" || env == "prod"
}

// RankingOptions converts the ranking section into ranking.Options. The
// section is assumed to have passed Validate.
func (c *Config) RankingOptions() ranking.Options {
	missing, _ := ranking.ParseMissingPolicy(c.Ranking.MissingPolicy)
	policy, _ := ranking.ParseRecommendPolicy(c.Ranking.RecommendPolicy)
	return ranking.Options{
		Missing: missing,
		Policy:  policy,
		Weights: ranking.Weights{
			Confidence: c.Ranking.ConfidenceWeight,
			Latency:    c.Ranking.LatencyWeight,
		},
	}
}

// placeholderPatterns catch secrets copied from example configs.
var placeholderPatterns = []string{
	"REPLACE",
	"CHANGEME",
	"CHANGE_ME",
	"YOUR_SECRET",
	"PLACEHOLDER",
	"EXAMPLE",
}

func containsPlaceholder(value string) bool {
	upper := strings.ToUpper(value)
	for _, p := range placeholderPatterns {
		if strings.Contains(upper, p) {
			return true
		}
	}
	return false
}

// validateHTTPURL checks for an http(s) base URL without query parameters.
func validateHTTPURL(rawURL, fieldName string) error {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("%s failed to parse URL: %w", fieldName, err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("%s scheme must be http or https, got: %s", fieldName, parsed.Scheme)
	}
	if parsed.Host == "" {
		return fmt.Errorf("%s host is required", fieldName)
	}
	if parsed.RawQuery != "" {
		return fmt.Errorf("%s should not contain query parameters, remove: ?%s", fieldName, parsed.RawQuery)
	}
	return nil
}
