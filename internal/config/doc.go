// Fincheck - Model Inference Metrics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fincheck

// Package config loads Fincheck configuration with Koanf v2.
//
// Sources are layered, later ones winning:
//
//  1. Built-in defaults (defaultConfig)
//  2. An optional YAML file: $CONFIG_PATH, ./config.yaml or /etc/fincheck/config.yaml
//  3. Environment variables, through an explicit name mapping table
//
// # Example config.yaml
//
//	server:
//	  port: 3000
//	database:
//	  path: /data/fincheck.duckdb
//	security:
//	  jwt_secret: "..."
//	inference:
//	  base_url: http://inference:8000
//	ranking:
//	  models: [baseline, kd, lrf, pruned, quantized, ws]
//	  missing_policy: last
//	  recommend_policy: fastest
//
// # Environment Variables
//
// Only variables listed in envTransformFunc are read, for example HTTP_PORT,
// DUCKDB_PATH, JWT_SECRET, INFERENCE_URL, RANKING_MODELS, LOG_LEVEL.
// List values (CORS_ORIGINS, RANKING_MODELS) are comma separated.
package config
