// Fincheck - Model Inference Metrics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fincheck

/*
Package services provides suture.Service wrappers for Fincheck components.

Each wrapper translates a component's lifecycle into suture's
Serve(ctx) error pattern and implements fmt.Stringer so supervisor events
name it.

  - HTTPServerService: ListenAndServe with graceful Shutdown on cancel.
  - MaintenanceService: periodic storage chores (badger value-log GC for
    the token revocation store, DuckDB checkpoints).

Serve returns ctx.Err() on a requested shutdown and a wrapped error on
failure, which suture answers with a restart under its backoff policy.
*/
package services
