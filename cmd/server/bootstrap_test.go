// Fincheck - Model Inference Metrics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fincheck

package main

import (
	"context"
	"errors"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"github.com/tomtom215/fincheck/internal/auth"
	"github.com/tomtom215/fincheck/internal/config"
	"github.com/tomtom215/fincheck/internal/models"
)

type recordingStore struct {
	count    int64
	countErr error
	created  []*models.User
}

func (s *recordingStore) CountUsers(context.Context) (int64, error) {
	return s.count, s.countErr
}

func (s *recordingStore) CreateUser(_ context.Context, user *models.User) error {
	s.created = append(s.created, user)
	return nil
}

func TestBootstrapAdmin(t *testing.T) {
	t.Parallel()

	sec := &config.SecurityConfig{
		AdminUsername: "root",
		AdminPassword: "correct-horse-battery",
		BcryptCost:    bcrypt.MinCost,
	}

	t.Run("creates admin on empty table", func(t *testing.T) {
		t.Parallel()
		store := &recordingStore{}
		if err := bootstrapAdmin(context.Background(), store, sec, nil); err != nil {
			t.Fatalf("bootstrapAdmin() error = %v", err)
		}
		if len(store.created) != 1 {
			t.Fatalf("created %d users, want 1", len(store.created))
		}
		user := store.created[0]
		if user.Username != "root" || user.Role != models.RoleAdmin {
			t.Errorf("created user = %+v", user)
		}
		if err := auth.CheckPassword(user.PasswordHash, sec.AdminPassword); err != nil {
			t.Errorf("stored hash does not match password: %v", err)
		}
	})

	t.Run("skips when users exist", func(t *testing.T) {
		t.Parallel()
		store := &recordingStore{count: 3}
		if err := bootstrapAdmin(context.Background(), store, sec, nil); err != nil {
			t.Fatalf("bootstrapAdmin() error = %v", err)
		}
		if len(store.created) != 0 {
			t.Errorf("created %d users, want 0", len(store.created))
		}
	})

	t.Run("skips when not configured", func(t *testing.T) {
		t.Parallel()
		store := &recordingStore{countErr: errors.New("must not be called")}
		if err := bootstrapAdmin(context.Background(), store, &config.SecurityConfig{}, nil); err != nil {
			t.Fatalf("bootstrapAdmin() error = %v", err)
		}
	})

	t.Run("count failure", func(t *testing.T) {
		t.Parallel()
		store := &recordingStore{countErr: errors.New("db down")}
		if err := bootstrapAdmin(context.Background(), store, sec, nil); err == nil {
			t.Fatal("bootstrapAdmin() error = nil, want error")
		}
	})
}
