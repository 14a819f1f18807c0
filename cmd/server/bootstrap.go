// Fincheck - Model Inference Metrics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fincheck

package main

import (
	"context"
	"fmt"

	"github.com/tomtom215/fincheck/internal/audit"
	"github.com/tomtom215/fincheck/internal/auth"
	"github.com/tomtom215/fincheck/internal/config"
	"github.com/tomtom215/fincheck/internal/logging"
	"github.com/tomtom215/fincheck/internal/models"
)

type userStore interface {
	CountUsers(ctx context.Context) (int64, error)
	CreateUser(ctx context.Context, user *models.User) error
}

// bootstrapAdmin creates the configured admin account on an empty user
// table. Existing installations are left untouched. auditLog may be nil.
func bootstrapAdmin(ctx context.Context, store userStore, sec *config.SecurityConfig, auditLog *audit.Logger) error {
	if sec.AdminUsername == "" {
		return nil
	}

	count, err := store.CountUsers(ctx)
	if err != nil {
		return fmt.Errorf("count users: %w", err)
	}
	if count > 0 {
		logging.Debug().Int64("users", count).Msg("Skipping admin bootstrap, users already exist")
		return nil
	}

	hash, err := auth.HashPassword(sec.AdminPassword, sec.BcryptCost)
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}
	if err := store.CreateUser(ctx, &models.User{
		Username:     sec.AdminUsername,
		PasswordHash: hash,
		Role:         models.RoleAdmin,
	}); err != nil {
		return fmt.Errorf("create admin user: %w", err)
	}

	auditLog.Log(audit.NewEvent(audit.EventAdminCreated, audit.OutcomeSuccess, sec.AdminUsername))
	logging.Info().Str("username", sec.AdminUsername).Msg("Admin account created")
	return nil
}
