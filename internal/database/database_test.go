// Fincheck - Model Inference Metrics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fincheck

package database

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/tomtom215/fincheck/internal/config"
	"github.com/tomtom215/fincheck/internal/models"
)

// testDBSemaphore limits concurrent database creation; DuckDB's CGO layer
// does not cope well with many parallel instances in CI.
var testDBSemaphore = make(chan struct{}, 1)

func setupTestDB(t *testing.T) *DB {
	t.Helper()

	// Held for the whole test, not just creation.
	testDBSemaphore <- struct{}{}
	t.Cleanup(func() {
		<-testDBSemaphore
	})

	db, err := New(&config.DatabaseConfig{
		Path:      ":memory:",
		MaxMemory: "512MB",
		Threads:   1,
	})
	if err != nil {
		t.Fatalf("Failed to create test database: %v", err)
	}
	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Errorf("close: %v", err)
		}
	})
	return db
}

func TestNew_AppliesMigrations(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	version, err := db.CurrentSchemaVersion(ctx)
	if err != nil {
		t.Fatalf("CurrentSchemaVersion: %v", err)
	}
	if version != len(migrations) {
		t.Errorf("schema version = %d, want %d", version, len(migrations))
	}

	// Re-running is a no-op.
	if err := db.runVersionedMigrations(); err != nil {
		t.Fatalf("second migration run: %v", err)
	}

	if err := db.Ping(ctx); err != nil {
		t.Errorf("Ping: %v", err)
	}
}

func TestCreateUser(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	user := &models.User{Username: "alice", PasswordHash: "hash"}
	if err := db.CreateUser(ctx, user); err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	if user.Role != models.RoleUser {
		t.Errorf("default role = %q, want %q", user.Role, models.RoleUser)
	}

	err := db.CreateUser(ctx, &models.User{Username: "alice", PasswordHash: "other"})
	if !errors.Is(err, ErrUserExists) {
		t.Errorf("duplicate CreateUser error = %v, want ErrUserExists", err)
	}

	got, err := db.GetUserByUsername(ctx, "alice")
	if err != nil {
		t.Fatalf("GetUserByUsername: %v", err)
	}
	if got.PasswordHash != "hash" {
		t.Errorf("first registration must win, got hash %q", got.PasswordHash)
	}

	if _, err := db.GetUserByUsername(ctx, "bob"); !errors.Is(err, ErrNotFound) {
		t.Errorf("missing user error = %v, want ErrNotFound", err)
	}

	n, err := db.CountUsers(ctx)
	if err != nil || n != 1 {
		t.Errorf("CountUsers = %d, %v; want 1", n, err)
	}
}

func TestInsertAndGetResult(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	in := &models.ModelResult{
		Owner:       "alice",
		Source:      models.SourceDataset,
		DatasetType: "MNIST_100",
		NumImages:   100,
		Data: map[string]map[string]any{
			"baseline":  {"confidence_percent": 97.5, "latency_ms": 3.2},
			"quantized": {"confidence_percent": 95.0, "latency_ms": 1.1, "note": "int8"},
		},
	}

	id, err := db.InsertResult(ctx, in)
	if err != nil {
		t.Fatalf("InsertResult: %v", err)
	}
	if id == "" || id != in.ID {
		t.Fatalf("InsertResult id = %q, result.ID = %q", id, in.ID)
	}

	got, err := db.GetResult(ctx, id)
	if err != nil {
		t.Fatalf("GetResult: %v", err)
	}
	if got.Owner != "alice" || got.DatasetType != "MNIST_100" || got.NumImages != 100 {
		t.Errorf("unexpected result row: %+v", got)
	}
	if v, ok := got.Data["baseline"]["latency_ms"].(float64); !ok || v != 3.2 {
		t.Errorf("baseline latency = %v", got.Data["baseline"]["latency_ms"])
	}
	if got.Data["quantized"]["note"] != "int8" {
		t.Errorf("non-numeric values must round-trip verbatim, got %v", got.Data["quantized"]["note"])
	}

	if _, err := db.GetResult(ctx, "does-not-exist"); !errors.Is(err, ErrNotFound) {
		t.Errorf("missing result error = %v, want ErrNotFound", err)
	}
}

func TestInsertResult_ImageHasNoDatasetType(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	id, err := db.InsertResult(ctx, &models.ModelResult{Owner: "alice", Source: models.SourceImage, NumImages: 1})
	if err != nil {
		t.Fatalf("InsertResult: %v", err)
	}
	got, err := db.GetResult(ctx, id)
	if err != nil {
		t.Fatalf("GetResult: %v", err)
	}
	if got.DatasetType != "" {
		t.Errorf("DatasetType = %q, want empty", got.DatasetType)
	}
	if got.Data == nil || len(got.Data) != 0 {
		t.Errorf("nil data should be stored as an empty document, got %v", got.Data)
	}
}

func TestListResults(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	for i, owner := range []string{"alice", "bob", "alice", "alice"} {
		_, err := db.InsertResult(ctx, &models.ModelResult{
			ID:        string(rune('a' + i)),
			Owner:     owner,
			Source:    models.SourceImage,
			NumImages: 1,
			Data:      map[string]map[string]any{"baseline": {"latency_ms": float64(i)}},
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		})
		if err != nil {
			t.Fatalf("InsertResult %d: %v", i, err)
		}
	}

	tests := []struct {
		name   string
		owner  string
		limit  int
		offset int
		want   []string
	}{
		{"owner newest first", "alice", 10, 0, []string{"d", "c", "a"}},
		{"limit", "alice", 2, 0, []string{"d", "c"}},
		{"offset", "alice", 2, 2, []string{"a"}},
		{"all owners", "", 10, 0, []string{"d", "c", "b", "a"}},
		{"past the end", "bob", 10, 5, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := db.ListResults(ctx, tt.owner, tt.limit, tt.offset)
			if err != nil {
				t.Fatalf("ListResults: %v", err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("got %d results, want %d", len(got), len(tt.want))
			}
			for i, s := range got {
				if s.ID != tt.want[i] {
					t.Errorf("result[%d] = %s, want %s", i, s.ID, tt.want[i])
				}
				if s.ModelCount != 1 {
					t.Errorf("result[%d] model count = %d, want 1", i, s.ModelCount)
				}
			}
		})
	}

	total, err := db.CountResults(ctx, "alice")
	if err != nil || total != 3 {
		t.Errorf("CountResults(alice) = %d, %v; want 3", total, err)
	}
	total, err = db.CountResults(ctx, "")
	if err != nil || total != 4 {
		t.Errorf("CountResults() = %d, %v; want 4", total, err)
	}
}

func TestIsUniqueConstraintError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		err  error
		want bool
	}{
		{nil, false},
		{errors.New("Constraint Error: Duplicate key \"username: alice\" violates primary key constraint"), true},
		{errors.New("UNIQUE constraint failed"), true},
		{errors.New("connection reset"), false},
	}
	for _, tt := range tests {
		if got := isUniqueConstraintError(tt.err); got != tt.want {
			t.Errorf("isUniqueConstraintError(%v) = %v, want %v", tt.err, got, tt.want)
		}
	}
}
