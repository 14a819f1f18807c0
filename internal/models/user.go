// Fincheck - Model Inference Metrics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fincheck

package models

import "time"

// Roles assigned to accounts.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User is a dashboard account. PasswordHash is a bcrypt hash and is never
// serialized.
type User struct {
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
}
