// Fincheck - Model Inference Metrics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fincheck

/*
Package main is the entry point for the Fincheck server.

Fincheck lets users upload a digit image or pick a named evaluation dataset,
has an external inference backend run six MNIST model variants over it, stores
the per-model metrics, and serves ranked, polarity-aware comparisons with a
single recommended model.

# Application Architecture

Services run under a Suture v4 supervisor tree:

	RootSupervisor ("fincheck")
	├── DataSupervisor ("data-layer")
	│   └── Maintenance (DuckDB checkpoint, badger value-log GC)
	└── APISupervisor ("api-layer")
	    └── HTTP Server

Component initialization order:

 1. Configuration: Koanf v2 (defaults, config.yaml, environment)
 2. Logging: zerolog, JSON or console
 3. Database: DuckDB users and model_results tables, versioned migrations
 4. Revocation store: badger (persistent) or in-memory
 5. Authentication: JWT (HS256) with bcrypt password hashes
 6. Admin bootstrap: ADMIN_USERNAME/ADMIN_PASSWORD on an empty user table
 7. Inference client: circuit breaker and token-bucket limiter
 8. HTTP server: chi router under the supervisor tree

# Configuration

Required:
  - JWT_SECRET: 32+ character secret for token signing

Common:
  - HTTP_PORT, HTTP_HOST: listen address (default 0.0.0.0:3000)
  - DUCKDB_PATH: database file
  - INFERENCE_URL: base URL of the inference backend
  - RANKING_MODELS: comma-separated canonical model list
  - RANKING_MISSING_POLICY: last or zero
  - RANKING_RECOMMEND_POLICY: fastest or weighted
  - REVOCATION_STORE, REVOCATION_STORE_PATH: badger or memory

# Signal Handling

SIGINT and SIGTERM cancel the root context. The HTTP server stops accepting
connections and drains in-flight requests within HTTP_SHUTDOWN_TIMEOUT, then
the database and revocation store are closed.

# Example Usage

	export JWT_SECRET=$(openssl rand -base64 32)
	export INFERENCE_URL=http://inference:5000
	export ADMIN_USERNAME=admin
	export ADMIN_PASSWORD=secure-password
	./fincheck-server
*/
package main
