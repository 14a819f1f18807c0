// Fincheck - Model Inference Metrics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fincheck

/*
Package database provides the DuckDB-backed store for user accounts and stored
inference results.

Results keep the backend's per-model metric document verbatim in a JSON text
column; ranking happens at read time in package ranking, so the stored
document is never rewritten.

Schema changes are applied through versioned migrations tracked in
schema_migrations (see migrations.go). Every query records its duration and
failures through package metrics.

Usage:

	db, err := database.New(&cfg.Database)
	if err != nil {
	    return err
	}
	defer db.Close()

	id, err := db.InsertResult(ctx, result)
*/
package database
