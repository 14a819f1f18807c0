// Fincheck - Model Inference Metrics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fincheck

// Package models defines the data shared between the database, API and
// inference layers: users, stored inference results and the API envelope.
package models
