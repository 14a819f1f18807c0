// Fincheck - Model Inference Metrics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fincheck

/*
Package audit records security-relevant account events.

Events (sign-up, sign-in, sign-out, admin access) are handed to a Logger,
which writes them asynchronously to a Store so request handlers never block
on audit persistence. DuckDBStore keeps them in the audit_events table
created by the database migrations; MemoryStore is a bounded in-process
alternative.

	logger := audit.NewLogger(audit.NewDuckDBStore(db.Conn()), &audit.Config{
		Enabled:       true,
		BufferSize:    1000,
		RetentionDays: 90,
	})
	defer logger.Close()

	logger.Log(audit.NewEvent(audit.EventSignIn, audit.OutcomeSuccess, "alice").
		WithRequest(r))

Retention is enforced by Logger.Cleanup, which the server schedules as a
maintenance task.
*/
package audit
