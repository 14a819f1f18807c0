// Fincheck - Model Inference Metrics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fincheck

/*
Package auth provides account authentication for the Fincheck API.

Components:

  - JWTManager: issues and validates HS256 tokens carrying username, role
    and a unique token ID (jti).
  - Password hashing: bcrypt with a configurable cost, plus a PasswordPolicy
    for sign-up.
  - RevocationStore: remembers signed-out token IDs until the token would
    have expired. BadgerRevocationStore persists across restarts;
    MemoryRevocationStore is for tests and single-process development.
  - Middleware: accepts a Bearer header or the "token" cookie, rejects
    revoked tokens and stores the claims in the request context.

Example:

	jwtManager, err := auth.NewJWTManager(&cfg.Security)
	store, err := auth.NewRevocationStore(&cfg.Security)
	mw := auth.NewMiddleware(jwtManager, store)

	r.With(mw.Authenticate).Get("/api/v1/results", handler.ListResults)
*/
package auth
